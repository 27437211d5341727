// Package api implements app.Runner for the API server process.
package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apphttp "github.com/attnlabs/viral-middleware/pkg/app/http"
	"github.com/attnlabs/viral-middleware/pkg/auth"
	"github.com/attnlabs/viral-middleware/pkg/clanker"
	"github.com/attnlabs/viral-middleware/pkg/config"
	"github.com/attnlabs/viral-middleware/pkg/limits"
	"github.com/attnlabs/viral-middleware/pkg/memathon"
	"github.com/attnlabs/viral-middleware/pkg/payments"
	"github.com/attnlabs/viral-middleware/pkg/pgutil"
	"github.com/attnlabs/viral-middleware/pkg/ratelimit"
	reconcilerpkg "github.com/attnlabs/viral-middleware/pkg/reconciler"
	"github.com/attnlabs/viral-middleware/pkg/social"
	"github.com/attnlabs/viral-middleware/pkg/splits"
	"github.com/attnlabs/viral-middleware/pkg/token"
	tokenservice "github.com/attnlabs/viral-middleware/pkg/token/service"
)

const defaultRequestTimeout = 60 // seconds

// Server holds cfg to init the api server.
type Server struct {
	cfg *config.APIServerConfig
}

// NewServer initializes new api server.
func NewServer(cfg *config.APIServerConfig) *Server {
	return &Server{cfg: cfg}
}

func (s *Server) Run() error {
	if s.cfg == nil {
		return fmt.Errorf("api server config is nil")
	}
	cfg := s.cfg

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting API server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
	)

	db, err := pgutil.ConnectDB(&cfg.Database)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	defer func() { _ = db.Close() }()

	logger.Info("Connected to database",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.Database),
	)

	gateway, err := clanker.NewClient(clanker.Config{
		BaseURL:        cfg.Gateway.BaseURL,
		APIKey:         os.Getenv(cfg.Gateway.APIKeyEnv),
		RequestTimeout: cfg.Gateway.RequestTimeout,
	}, clanker.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("create gateway client: %w", err)
	}

	splitter, err := splits.NewClient(splits.Config{
		BaseURL:        cfg.Splits.BaseURL,
		PlatformWallet: cfg.Splits.PlatformWallet,
		RequestTimeout: cfg.Splits.RequestTimeout,
	}, splits.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("create splits client: %w", err)
	}

	var poster social.Poster = social.NopPoster{}
	if cfg.Social.Enabled {
		poster = social.NewHTTPPoster(cfg.Social.BaseURL, logger)
		logger.Info("Social announcements enabled", zap.String("base_url", cfg.Social.BaseURL))
	}

	stripeKey := os.Getenv(cfg.Stripe.SecretKeyEnv)
	if stripeKey == "" {
		return fmt.Errorf("stripe secret key not set: env=%s", cfg.Stripe.SecretKeyEnv)
	}
	webhookSecret := os.Getenv(cfg.Stripe.WebhookSecretEnv)
	if webhookSecret == "" {
		logger.Warn("Stripe webhook secret not set, webhook endpoint disabled",
			zap.String("env", cfg.Stripe.WebhookSecretEnv),
		)
	}

	tokenStore := token.NewStore(db)
	limitsService := limits.NewService(limits.NewStore(db), cfg.Limits, logger)
	paymentsService := payments.NewService(
		payments.NewStore(db),
		payments.NewStripeClient(cfg.Stripe.BaseURL, stripeKey),
		cfg.Limits.CreationPriceCents,
		logger,
	)
	memathonService := memathon.NewService(memathon.NewStore(db), logger)

	orchestrator := tokenservice.NewOrchestrator(
		tokenStore,
		limitsService,
		paymentsService,
		gateway,
		splitter,
		memathonService,
		poster,
		logger,
	)

	rec := reconcilerpkg.New(tokenStore, cfg.Reconciliation.GracePeriod, logger)
	s.runInitialSweep(ctx, rec, logger)

	stopSweep := s.startPeriodicSweep(rec, logger)
	// We will call stopSweep explicitly after ServeAndWait returns for deterministic shutdown order.
	// Keep this defer as a safety net.
	defer stopSweep()

	router := s.setupRouter(routerDeps{
		limits:        limitsService,
		payments:      paymentsService,
		memathon:      memathonService,
		orchestrator:  orchestrator,
		webhookSecret: webhookSecret,
		logger:        logger,
	})

	err = apphttp.ServeAndWait(ctx, router, logger, &cfg.Server)

	// Stop background work before deferred DB closes kick in.
	stopSweep()

	return err
}

func (s *Server) runInitialSweep(ctx context.Context, rec *reconcilerpkg.Reconciler, logger *zap.Logger) {
	if s.cfg.Reconciliation.InitialTimeout <= 0 {
		return
	}

	logger.Info("Running initial pending-deploy sweep",
		zap.Duration("timeout", s.cfg.Reconciliation.InitialTimeout),
	)

	startupCtx, cancel := context.WithTimeout(ctx, s.cfg.Reconciliation.InitialTimeout)
	defer cancel()

	if err := rec.Sweep(startupCtx); err != nil {
		logger.Warn("Initial sweep failed (will retry periodically)", zap.Error(err))
		return
	}

	logger.Info("Initial pending-deploy sweep completed")
}

func (s *Server) startPeriodicSweep(rec *reconcilerpkg.Reconciler, logger *zap.Logger) func() {
	if s.cfg.Reconciliation.Interval <= 0 {
		return func() {}
	}

	logger.Info("Starting periodic pending-deploy sweep",
		zap.Duration("interval", s.cfg.Reconciliation.Interval),
	)
	rec.StartPeriodicSweep(s.cfg.Reconciliation.Interval)

	// Return stopper for deterministic shutdown ordering.
	return func() { rec.Stop() }
}

type routerDeps struct {
	limits        *limits.Service
	payments      *payments.Service
	memathon      *memathon.Service
	orchestrator  *tokenservice.Orchestrator
	webhookSecret string
	logger        *zap.Logger
}

func (s *Server) setupRouter(deps routerDeps) chi.Router {
	cfg := s.cfg
	logger := deps.logger

	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Second * defaultRequestTimeout))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	if cfg.Monitoring.Enabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	// Public reads
	tokenservice.RegisterPublicRoutes(r, deps.orchestrator, logger)
	memathon.RegisterRoutes(r, deps.memathon, logger)

	// Provider callback, authenticated by signature instead of bearer token
	if deps.webhookSecret != "" {
		payments.RegisterWebhook(r, deps.payments, deps.webhookSecret, logger)
	}

	authenticate := auth.Middleware(auth.NewJWTValidator(cfg.Auth.JWKSURL, cfg.Auth.Issuer), logger)

	// Authenticated endpoints
	r.Group(func(r chi.Router) {
		r.Use(authenticate)

		limits.RegisterRoutes(r, deps.limits, logger)
		payments.RegisterRoutes(r, deps.payments, logger)
		tokenservice.RegisterRoutes(r, deps.orchestrator, logger)
	})

	// Deploys additionally require a verified email and are rate limited per IP
	r.Group(func(r chi.Router) {
		limiter := ratelimit.NewIPLimiter(cfg.RateLimit.DeployPerMinute, cfg.RateLimit.Burst)
		r.Use(limiter.Middleware)
		r.Use(authenticate)
		r.Use(auth.RequireVerifiedEmail)

		tokenservice.RegisterDeployRoute(r, deps.orchestrator, logger)
	})

	// Operator endpoints
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAdmin(os.Getenv(cfg.Auth.AdminTokenEnv)))

		memathon.RegisterAdminRoutes(r, deps.memathon, logger)
	})

	return r
}
