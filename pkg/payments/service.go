package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/attnlabs/viral-middleware/internal/metrics"
	apperrors "github.com/attnlabs/viral-middleware/pkg/app/errors"
)

var (
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	ErrPaymentNotCompleted = errors.New("payment not in completed state")
)

// Service implements payment creation, confirmation, and single-use
// verification for both rails.
type Service struct {
	store  Store
	card   CardProvider
	price  int64
	logger *zap.Logger
}

// NewService creates a new payment service. price is the token creation
// price in minor currency units.
func NewService(store Store, card CardProvider, price int64, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		card:   card,
		price:  price,
		logger: logger,
	}
}

// CreateIntentResult is returned to the client so it can complete the card
// flow with the provider SDK.
type CreateIntentResult struct {
	PaymentID    string `json:"payment_id"`
	ClientSecret string `json:"client_secret"`
	AmountCents  int64  `json:"amount_cents"`
}

// CreateStripeIntent creates a pending Payment backed by a new Stripe
// payment intent.
func (s *Service) CreateStripeIntent(ctx context.Context, userID, walletAddress string) (*CreateIntentResult, error) {
	intent, err := s.card.CreateIntent(ctx, s.price, userID)
	if err != nil {
		metrics.PaymentsTotal.WithLabelValues(string(ProviderStripe), "provider_error").Inc()
		return nil, apperrors.DependencyError(err, "payment provider unavailable")
	}

	payment := &Payment{
		ID:                    uuid.NewString(),
		UserID:                userID,
		WalletAddress:         walletAddress,
		AmountCents:           s.price,
		Provider:              ProviderStripe,
		StripePaymentIntentID: intent.ID,
		Status:                StatusPending,
	}
	if err := s.store.CreatePayment(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}

	metrics.PaymentsTotal.WithLabelValues(string(ProviderStripe), "created").Inc()
	s.logger.Info("Stripe payment intent created",
		zap.String("payment_id", payment.ID),
		zap.String("intent_id", intent.ID),
		zap.String("user_id", userID))

	return &CreateIntentResult{
		PaymentID:    payment.ID,
		ClientSecret: intent.ClientSecret,
		AmountCents:  s.price,
	}, nil
}

// ConfirmStripe checks the provider-side intent state and transitions the
// Payment to completed when the charge succeeded. Safe to call repeatedly;
// only the first confirmation changes state.
func (s *Service) ConfirmStripe(ctx context.Context, userID, paymentID string) (*Payment, error) {
	payment, err := s.store.GetPayment(ctx, paymentID)
	if err != nil {
		if errors.Is(err, ErrPaymentNotFound) {
			return nil, apperrors.ResourceNotFoundError(err, "payment not found")
		}
		return nil, fmt.Errorf("failed to load payment: %w", err)
	}
	if payment.UserID != userID {
		return nil, apperrors.ForbiddenError(nil, "payment belongs to another user")
	}
	if payment.Provider != ProviderStripe {
		return nil, apperrors.BadRequestError(nil, "payment is not a card payment")
	}

	if payment.Status == StatusPending {
		intent, err := s.card.GetIntent(ctx, payment.StripePaymentIntentID)
		if err != nil {
			return nil, apperrors.DependencyError(err, "payment provider unavailable")
		}
		if intent.Status != intentStatusSucceeded {
			return nil, apperrors.PaymentRequiredError(ErrPaymentNotCompleted, "payment has not succeeded")
		}

		if _, err := s.store.CompletePayment(ctx, payment.ID); err != nil {
			return nil, fmt.Errorf("failed to complete payment: %w", err)
		}
		metrics.PaymentsTotal.WithLabelValues(string(ProviderStripe), "completed").Inc()
		payment.Status = StatusCompleted
	}

	return payment, nil
}

// UseWallet charges the token creation price against the user's custodial
// balance. The balance check and debit are one guarded update; the Payment
// row is written completed only after the debit applied.
func (s *Service) UseWallet(ctx context.Context, userID, walletAddress string) (*Payment, error) {
	debited, err := s.store.DebitWallet(ctx, userID, s.price)
	if err != nil {
		return nil, fmt.Errorf("failed to debit wallet: %w", err)
	}
	if !debited {
		metrics.PaymentsTotal.WithLabelValues(string(ProviderWallet), "insufficient").Inc()
		return nil, apperrors.PaymentRequiredError(ErrInsufficientBalance, "insufficient wallet balance")
	}

	payment := &Payment{
		ID:            uuid.NewString(),
		UserID:        userID,
		WalletAddress: walletAddress,
		AmountCents:   s.price,
		Provider:      ProviderWallet,
		Status:        StatusCompleted,
	}
	if err := s.store.CreatePayment(ctx, payment); err != nil {
		// The debit already happened; roll it back so funds are not lost.
		if creditErr := s.store.CreditWallet(ctx, userID, s.price); creditErr != nil {
			s.logger.Error("Failed to refund wallet after payment save failure",
				zap.String("user_id", userID),
				zap.Error(creditErr))
		}
		return nil, fmt.Errorf("failed to save payment: %w", err)
	}

	metrics.PaymentsTotal.WithLabelValues(string(ProviderWallet), "completed").Inc()
	s.logger.Info("Wallet payment completed",
		zap.String("payment_id", payment.ID),
		zap.String("user_id", userID))

	return payment, nil
}

// Verify authorizes one token creation against the payment. True is
// returned at most once per payment: the completed -> consumed flip is a
// single atomic guarded update, so a second call with the same ID (or a
// concurrent duplicate request) reports false.
func (s *Service) Verify(ctx context.Context, userID, paymentID string) (bool, error) {
	consumed, err := s.store.ConsumePayment(ctx, paymentID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to verify payment: %w", err)
	}
	if consumed {
		metrics.PaymentsTotal.WithLabelValues("any", "consumed").Inc()
	}
	return consumed, nil
}

// Release undoes a consumption whose deploy never happened, returning the
// payment to completed so the user can retry with it.
func (s *Service) Release(ctx context.Context, paymentID string) error {
	released, err := s.store.ReleasePayment(ctx, paymentID)
	if err != nil {
		return fmt.Errorf("failed to release payment: %w", err)
	}
	if released {
		s.logger.Info("Payment released after failed deploy", zap.String("payment_id", paymentID))
	}
	return nil
}

// HandleIntentSucceeded transitions the payment holding the given intent
// to completed. Called by the webhook handler; duplicate deliveries apply
// nothing.
func (s *Service) HandleIntentSucceeded(ctx context.Context, intentID string) error {
	applied, err := s.store.CompleteByIntentID(ctx, intentID)
	if err != nil {
		return fmt.Errorf("failed to apply webhook: %w", err)
	}
	if applied {
		metrics.PaymentsTotal.WithLabelValues(string(ProviderStripe), "completed").Inc()
		s.logger.Info("Payment completed via webhook", zap.String("intent_id", intentID))
	} else {
		s.logger.Debug("Webhook matched no pending payment", zap.String("intent_id", intentID))
	}
	return nil
}

// WalletBalance returns the user's custodial balance in minor units.
func (s *Service) WalletBalance(ctx context.Context, userID string) (int64, error) {
	return s.store.WalletBalance(ctx, userID)
}
