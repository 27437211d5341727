// Package service orchestrates token creation: quota gating, payment
// verification, split-wallet generation, the external deploy, and the
// post-success enrichment steps.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/attnlabs/viral-middleware/internal/metrics"
	apperrors "github.com/attnlabs/viral-middleware/pkg/app/errors"
	"github.com/attnlabs/viral-middleware/pkg/auth"
	"github.com/attnlabs/viral-middleware/pkg/clanker"
	"github.com/attnlabs/viral-middleware/pkg/limits"
	"github.com/attnlabs/viral-middleware/pkg/social"
	"github.com/attnlabs/viral-middleware/pkg/token"
)

var (
	ErrEmailNotVerified = errors.New("email not verified")
	ErrLimitReached     = errors.New("creation limit reached")
	ErrPaymentRequired  = errors.New("payment required")
	ErrPaymentInvalid   = errors.New("payment could not be verified")
	ErrInvalidWallet    = errors.New("invalid wallet address")
)

// enrichmentTimeout bounds the post-success attribution and social calls.
const enrichmentTimeout = 30 * time.Second

// QuotaLedger defines the quota behavior the orchestrator needs.
type QuotaLedger interface {
	CheckUserCanCreate(ctx context.Context, userID, walletAddress, twitterUsername string) (*limits.CheckResult, error)
	RecordCreation(ctx context.Context, userID string, paid bool) error
}

// PaymentVerifier defines the payment behavior the orchestrator needs.
type PaymentVerifier interface {
	// Verify consumes the payment; true at most once per payment ID.
	Verify(ctx context.Context, userID, paymentID string) (bool, error)
	// Release returns a consumed payment to usable after a failed deploy.
	Release(ctx context.Context, paymentID string) error
}

// DeployGateway submits deploys to the external minting service.
type DeployGateway interface {
	DeployToken(ctx context.Context, params clanker.DeployParams) (*clanker.DeployResult, error)
}

// SplitGenerator produces the revenue-split wallet a deploy pays into.
type SplitGenerator interface {
	Generate(ctx context.Context, creatorWallet, influencerAddress string) (string, error)
}

// Attributor records contest participation for sponsored source tweets.
type Attributor interface {
	Attribute(ctx context.Context, originalPostURL, userID, contractAddress string, marketCap decimal.Decimal) error
}

// Orchestrator runs the token creation pipeline.
type Orchestrator struct {
	store    token.Store
	quota    QuotaLedger
	payments PaymentVerifier
	gateway  DeployGateway
	splits   SplitGenerator
	memathon Attributor
	poster   social.Poster
	logger   *zap.Logger
}

// NewOrchestrator creates a new token creation orchestrator
func NewOrchestrator(
	store token.Store,
	quota QuotaLedger,
	payments PaymentVerifier,
	gateway DeployGateway,
	splits SplitGenerator,
	memathon Attributor,
	poster social.Poster,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		store:    store,
		quota:    quota,
		payments: payments,
		gateway:  gateway,
		splits:   splits,
		memathon: memathon,
		poster:   poster,
		logger:   logger,
	}
}

// DeployRequest is the client's token creation request.
type DeployRequest struct {
	Name              string            `json:"name" validate:"required,max=128"`
	Symbol            string            `json:"symbol" validate:"required,max=32"`
	ImageURL          string            `json:"image_url,omitempty" validate:"omitempty,url"`
	Description       string            `json:"description,omitempty" validate:"max=1024"`
	OriginalPost      string            `json:"original_post,omitempty" validate:"omitempty,url"`
	InfluencerTwitter string            `json:"influencer_twitter,omitempty" validate:"max=64"`
	GeneratedCaption  string            `json:"generated_caption,omitempty"`
	PaymentID         string            `json:"payment_id,omitempty"`
	Metadata          map[string]string `json:"metadata,omitempty"`
}

// Deploy runs the full pipeline for one creation request. Gating failures
// come back as categorized service errors with structured details; a
// gateway failure consumes neither quota nor payment.
func (o *Orchestrator) Deploy(ctx context.Context, req *DeployRequest, identity *auth.Identity) (*token.Token, error) {
	if !identity.EmailVerified {
		metrics.DeploysTotal.WithLabelValues("gated").Inc()
		return nil, apperrors.ForbiddenError(ErrEmailNotVerified, "email verification required")
	}

	wallet := auth.NormalizeAddress(identity.WalletAddress)
	if !auth.ValidateEVMAddress(wallet) {
		metrics.DeploysTotal.WithLabelValues("gated").Inc()
		return nil, apperrors.BadRequestError(ErrInvalidWallet, "a valid wallet address is required")
	}

	check, err := o.quota.CheckUserCanCreate(ctx, identity.UserID, wallet, identity.TwitterUsername)
	if err != nil {
		metrics.DeploysTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("quota check failed: %w", err)
	}
	if !check.CanCreate {
		metrics.DeploysTotal.WithLabelValues("gated").Inc()
		return nil, apperrors.WithDetails(
			apperrors.PaymentRequiredError(ErrLimitReached, "creation limit reached"),
			map[string]any{
				"daily_remaining":    check.UserDailyRemaining,
				"platform_remaining": check.PlatformRemaining,
			})
	}
	if check.RequiresPayment && req.PaymentID == "" {
		metrics.DeploysTotal.WithLabelValues("gated").Inc()
		return nil, apperrors.WithDetails(
			apperrors.PaymentRequiredError(ErrPaymentRequired, "free creations used, payment required"),
			map[string]any{
				"payment_amount": check.PaymentAmountCents,
				"remaining":      check.UserRemaining,
			})
	}

	paid := false
	if req.PaymentID != "" {
		// A referenced payment must verify even when quota alone would
		// have allowed a free creation.
		ok, err := o.payments.Verify(ctx, identity.UserID, req.PaymentID)
		if err != nil {
			metrics.DeploysTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("payment verification failed: %w", err)
		}
		if !ok {
			metrics.DeploysTotal.WithLabelValues("gated").Inc()
			return nil, apperrors.PaymentRequiredError(ErrPaymentInvalid, "payment could not be verified")
		}
		paid = true
	}

	attempt := &token.PendingDeploy{
		AttemptID:    uuid.NewString(),
		UserID:       identity.UserID,
		Name:         req.Name,
		Symbol:       req.Symbol,
		OwnerAddress: wallet,
		OriginalPost: req.OriginalPost,
	}
	if err := o.store.CreatePendingDeploy(ctx, attempt); err != nil {
		o.releaseOnFailure(ctx, paid, req.PaymentID)
		metrics.DeploysTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to record deploy attempt: %w", err)
	}

	splitAddress, err := o.splits.Generate(ctx, wallet, "")
	if err != nil {
		o.abortAttempt(ctx, attempt.AttemptID, paid, req.PaymentID)
		metrics.DeploysTotal.WithLabelValues("dependency_error").Inc()
		return nil, apperrors.DependencyError(err, "split wallet generation failed")
	}
	attempt.SplitAddress = splitAddress

	start := time.Now()
	result, err := o.gateway.DeployToken(ctx, clanker.DeployParams{
		Name:            req.Name,
		Symbol:          req.Symbol,
		ImageURL:        req.ImageURL,
		Description:     req.Description,
		RequestorAddr:   wallet,
		RewardRecipient: splitAddress,
		OriginalPostURL: req.OriginalPost,
	})
	metrics.DeployDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		o.abortAttempt(ctx, attempt.AttemptID, paid, req.PaymentID)
		metrics.DeploysTotal.WithLabelValues("dependency_error").Inc()
		return nil, apperrors.DependencyError(err, "token deployment failed")
	}

	// From here a token exists on-chain. The journal entry keeps the
	// contract and split addresses so the reconciler can repair a lost
	// database write.
	if err := o.store.SetPendingContract(ctx, attempt.AttemptID, result.ContractAddress, splitAddress); err != nil {
		o.logger.Error("Failed to journal contract address",
			zap.String("attempt_id", attempt.AttemptID),
			zap.String("contract_address", result.ContractAddress),
			zap.Error(err))
	}

	minted := &token.Token{
		ContractAddress:   result.ContractAddress,
		Name:              req.Name,
		Symbol:            req.Symbol,
		OwnerTwitter:      identity.TwitterUsername,
		OwnerAddress:      wallet,
		InfluencerTwitter: req.InfluencerTwitter,
		Unclaimed:         req.InfluencerTwitter != "",
		OriginalPost:      req.OriginalPost,
		GeneratedImage:    req.ImageURL,
		GeneratedCaption:  req.GeneratedCaption,
		SplitAddress:      splitAddress,
		Metadata:          req.Metadata,
	}
	if err := o.store.CreateToken(ctx, minted); err != nil {
		// The journal entry stays; the reconciler will re-insert the
		// token from it.
		metrics.DeploysTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to persist token %s: %w", result.ContractAddress, err)
	}

	if err := o.quota.RecordCreation(ctx, identity.UserID, paid); err != nil {
		o.logger.Error("Failed to update quota ledger after deploy",
			zap.String("user_id", identity.UserID),
			zap.String("contract_address", result.ContractAddress),
			zap.Error(err))
	}

	if err := o.store.DeletePendingDeploy(ctx, attempt.AttemptID); err != nil {
		o.logger.Warn("Failed to clear deploy journal entry",
			zap.String("attempt_id", attempt.AttemptID),
			zap.Error(err))
	}

	o.enrich(ctx, req, identity, minted, result.StartingMarketCap)

	metrics.DeploysTotal.WithLabelValues("success").Inc()
	o.logger.Info("Token created",
		zap.String("contract_address", minted.ContractAddress),
		zap.String("symbol", minted.Symbol),
		zap.String("user_id", identity.UserID),
		zap.Bool("paid", paid))
	return minted, nil
}

// enrich runs the best-effort post-success steps. Failures are logged and
// never surfaced; the token already exists.
func (o *Orchestrator) enrich(ctx context.Context, req *DeployRequest, identity *auth.Identity, minted *token.Token, marketCap decimal.Decimal) {
	ectx, cancel := context.WithTimeout(context.WithoutCancel(ctx), enrichmentTimeout)
	defer cancel()

	var wg sync.WaitGroup

	if req.OriginalPost != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := o.memathon.Attribute(ectx, req.OriginalPost, identity.UserID, minted.ContractAddress, marketCap); err != nil {
				o.logger.Warn("Sponsorship attribution failed",
					zap.String("contract_address", minted.ContractAddress),
					zap.Error(err))
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		err := o.poster.Post(ectx, social.Announcement{
			TokenName:       minted.Name,
			TokenSymbol:     minted.Symbol,
			ContractAddress: minted.ContractAddress,
			OriginalPostURL: minted.OriginalPost,
			CreatorUsername: identity.TwitterUsername,
		})
		if err != nil {
			o.logger.Warn("Launch announcement failed",
				zap.String("contract_address", minted.ContractAddress),
				zap.Error(err))
		}
	}()

	wg.Wait()
}

// abortAttempt clears the journal entry and returns the payment when a
// deploy attempt died before anything reached the chain.
func (o *Orchestrator) abortAttempt(ctx context.Context, attemptID string, paid bool, paymentID string) {
	if err := o.store.DeletePendingDeploy(ctx, attemptID); err != nil {
		o.logger.Warn("Failed to clear aborted deploy attempt",
			zap.String("attempt_id", attemptID),
			zap.Error(err))
	}
	o.releaseOnFailure(ctx, paid, paymentID)
}

func (o *Orchestrator) releaseOnFailure(ctx context.Context, paid bool, paymentID string) {
	if !paid {
		return
	}
	if err := o.payments.Release(ctx, paymentID); err != nil {
		o.logger.Error("Failed to release payment after aborted deploy",
			zap.String("payment_id", paymentID),
			zap.Error(err))
	}
}

// Get returns the token at the given contract address.
func (o *Orchestrator) Get(ctx context.Context, contractAddress string) (*token.Token, error) {
	t, err := o.store.GetByContractAddress(ctx, auth.NormalizeAddress(contractAddress))
	if err != nil {
		if errors.Is(err, token.ErrTokenNotFound) {
			return nil, apperrors.ResourceNotFoundError(err, "token not found")
		}
		return nil, err
	}
	return t, nil
}

// Claim assigns the influencer's wallet to an unclaimed token minted for
// their Twitter handle. The flip happens at most once.
func (o *Orchestrator) Claim(ctx context.Context, contractAddress string, identity *auth.Identity) (*token.Token, error) {
	if identity.TwitterUsername == "" {
		return nil, apperrors.ForbiddenError(nil, "a linked Twitter account is required to claim")
	}
	wallet := auth.NormalizeAddress(identity.WalletAddress)
	if !auth.ValidateEVMAddress(wallet) {
		return nil, apperrors.BadRequestError(ErrInvalidWallet, "a valid wallet address is required")
	}

	addr := auth.NormalizeAddress(contractAddress)
	claimed, err := o.store.ClaimToken(ctx, addr, identity.TwitterUsername, wallet)
	if err != nil {
		return nil, fmt.Errorf("claim failed: %w", err)
	}
	if !claimed {
		return nil, apperrors.ConflictError(nil, "token is not claimable by this account")
	}

	o.logger.Info("Token claimed",
		zap.String("contract_address", addr),
		zap.String("influencer", identity.TwitterUsername))
	return o.Get(ctx, addr)
}

// ListByOwner returns the caller's minted tokens, newest first.
func (o *Orchestrator) ListByOwner(ctx context.Context, ownerAddress string, limit int) ([]*token.Token, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return o.store.ListByOwner(ctx, auth.NormalizeAddress(ownerAddress), limit)
}
