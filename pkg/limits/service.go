package limits

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/attnlabs/viral-middleware/internal/metrics"
	"github.com/attnlabs/viral-middleware/pkg/config"
)

// Service evaluates quota state and records successful creations.
type Service struct {
	store    Store
	defaults Defaults
	price    int64
	logger   *zap.Logger
}

// NewService creates a new quota ledger service
func NewService(store Store, cfg config.LimitsConfig, logger *zap.Logger) *Service {
	return &Service{
		store: store,
		defaults: Defaults{
			FreeLimit:          cfg.FreeLimit,
			DailyLimit:         cfg.DailyLimit,
			PlatformDailyLimit: cfg.PlatformDailyLimit,
		},
		price:  cfg.CreationPriceCents,
		logger: logger,
	}
}

// CheckUserCanCreate answers whether the identity may create a token now.
//
// Evaluation order: platform-wide hard stop, then the per-user daily cap,
// then the free tier. Exhausting the free tier while daily and platform
// caps still allow creation gates the request on payment rather than
// blocking it.
func (s *Service) CheckUserCanCreate(
	ctx context.Context,
	userID, walletAddress, twitterUsername string,
) (*CheckResult, error) {
	platform, err := s.store.GetOrCreatePlatformLimits(ctx, s.defaults)
	if err != nil {
		return nil, fmt.Errorf("failed to load platform limits: %w", err)
	}

	user, err := s.store.GetOrCreateUserLimits(ctx, userID, walletAddress, twitterUsername, s.defaults)
	if err != nil {
		return nil, fmt.Errorf("failed to load user limits: %w", err)
	}

	result := &CheckResult{
		PlatformRemaining:  remaining(platform.DailyLimit, platform.DailyCreated),
		UserDailyRemaining: remaining(user.DailyLimit, user.DailyCreated),
		UserRemaining:      remaining(user.FreeLimit, user.DailyCreated),
	}

	if result.PlatformRemaining == 0 {
		metrics.QuotaDenialsTotal.WithLabelValues("platform").Inc()
		return result, nil
	}
	if result.UserDailyRemaining == 0 {
		metrics.QuotaDenialsTotal.WithLabelValues("user_daily").Inc()
		return result, nil
	}

	result.CanCreate = true
	if result.UserRemaining == 0 {
		result.RequiresPayment = true
		result.PaymentAmountCents = s.price
	}
	return result, nil
}

// RecordCreation updates the ledger after a deployment has been persisted.
// Never called speculatively: a failed deployment must not consume quota.
func (s *Service) RecordCreation(ctx context.Context, userID string, paid bool) error {
	userApplied, err := s.store.IncrementUserCreated(ctx, userID, paid)
	if err != nil {
		return fmt.Errorf("failed to update user ledger: %w", err)
	}
	if !userApplied {
		// Deployment already happened; the guarded update lost a race to
		// the daily cap. The counter stays at the cap.
		s.logger.Warn("User ledger increment skipped at daily cap", zap.String("user_id", userID))
	}

	platformApplied, err := s.store.IncrementPlatformCreated(ctx, paid)
	if err != nil {
		return fmt.Errorf("failed to update platform ledger: %w", err)
	}
	if !platformApplied {
		s.logger.Warn("Platform ledger increment skipped at daily cap")
	}
	return nil
}

// Snapshot returns the current per-user and platform counters for display.
func (s *Service) Snapshot(ctx context.Context, userID, walletAddress, twitterUsername string) (*UserLimits, *PlatformLimits, error) {
	user, err := s.store.GetOrCreateUserLimits(ctx, userID, walletAddress, twitterUsername, s.defaults)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load user limits: %w", err)
	}
	platform, err := s.store.GetOrCreatePlatformLimits(ctx, s.defaults)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load platform limits: %w", err)
	}
	return user, platform, nil
}

// CreationPriceCents returns the configured paid-creation price.
func (s *Service) CreationPriceCents() int64 {
	return s.price
}

func remaining(limit, used int) int {
	if used >= limit {
		return 0
	}
	return limit - used
}
