package payments

import (
	"context"
	"errors"
)

// ErrPaymentNotFound is returned when a payment lookup finds no matching record.
var ErrPaymentNotFound = errors.New("payment not found")

// Store defines payment and custodial wallet persistence.
//
// All status transitions are status-guarded single-row updates reporting
// whether they applied, so two concurrent requests can never both win the
// same transition.
type Store interface {
	CreatePayment(ctx context.Context, p *Payment) error
	GetPayment(ctx context.Context, id string) (*Payment, error)

	// CompletePayment transitions pending -> completed for the given
	// payment ID. Reports whether the transition applied.
	CompletePayment(ctx context.Context, id string) (bool, error)

	// CompleteByIntentID transitions pending -> completed for the payment
	// holding the given Stripe payment intent. Idempotent: a second webhook
	// delivery finds no pending row and applies nothing.
	CompleteByIntentID(ctx context.Context, intentID string) (bool, error)

	// FailPayment transitions pending -> failed.
	FailPayment(ctx context.Context, id string) error

	// ConsumePayment transitions completed -> consumed for the payment
	// owned by userID. Reports whether the transition applied; false means
	// the payment was missing, not completed, owned by someone else, or
	// already consumed.
	ConsumePayment(ctx context.Context, id, userID string) (bool, error)

	// ReleasePayment transitions consumed -> completed, undoing a
	// consumption whose deploy never happened.
	ReleasePayment(ctx context.Context, id string) (bool, error)

	// DebitWallet subtracts amountCents from the user's custodial balance
	// only when the balance covers it. Reports whether the debit applied.
	DebitWallet(ctx context.Context, userID string, amountCents int64) (bool, error)

	// CreditWallet adds amountCents to the user's custodial balance,
	// creating the row on first use.
	CreditWallet(ctx context.Context, userID string, amountCents int64) error

	// WalletBalance returns the user's custodial balance; zero when the
	// user has no balance row.
	WalletBalance(ctx context.Context, userID string) (int64, error)
}
