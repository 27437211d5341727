// Package payments implements the payment rails that gate paid token
// creation: Stripe card payments, custodial wallet debits, and the
// single-use verification that authorizes a deploy.
package payments

import "time"

// Provider identifies the payment rail a Payment was made on.
type Provider string

const (
	ProviderStripe Provider = "stripe"
	ProviderWallet Provider = "wallet"
)

// Status is the lifecycle state of a Payment.
//
// pending -> completed -> consumed
// pending -> failed
//
// A Payment authorizes at most one token creation: the completed ->
// consumed transition happens exactly once, enforced by a status-guarded
// database update.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusConsumed  Status = "consumed"
)

// Payment is one charge attributable to a user.
type Payment struct {
	ID                    string
	UserID                string
	WalletAddress         string
	AmountCents           int64
	Provider              Provider
	StripePaymentIntentID string
	Status                Status
	CreatedAt             time.Time
}
