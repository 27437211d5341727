// Package limits implements the token-creation quota ledger. It tracks
// per-user and platform-wide daily/lifetime creation counts and answers
// whether an identity may create a token now and whether payment is required.
package limits

import "time"

// UserLimits is the per-identity quota counter set.
type UserLimits struct {
	UserID          string
	WalletAddress   string
	TwitterUsername string
	DailyCreated    int
	TotalCreated    int
	TotalPaid       int
	FreeLimit       int
	DailyLimit      int
	LastResetDate   time.Time
}

// PlatformLimits is the singleton platform-wide counter set.
type PlatformLimits struct {
	DailyCreated  int
	TotalCreated  int
	TotalPaid     int
	DailyLimit    int
	LastResetDate time.Time
}

// CheckResult is the outcome of a quota check for one identity.
type CheckResult struct {
	CanCreate          bool  `json:"can_create"`
	RequiresPayment    bool  `json:"requires_payment"`
	UserRemaining      int   `json:"user_remaining"`
	UserDailyRemaining int   `json:"user_daily_remaining"`
	PlatformRemaining  int   `json:"platform_remaining"`
	PaymentAmountCents int64 `json:"payment_amount_cents,omitempty"`
}

// UTCDay truncates t to its UTC day boundary. Daily counters reset lazily
// when the stored reset date is before the current UTC day.
func UTCDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
