package limits

import (
	"context"
	"errors"
)

// ErrLimitsNotFound is returned when a limits lookup finds no matching record.
var ErrLimitsNotFound = errors.New("limits record not found")

// Defaults carries the configured quota values applied when a ledger row is
// lazily created on first check.
type Defaults struct {
	FreeLimit          int
	DailyLimit         int
	PlatformDailyLimit int
}

// Store defines the quota ledger persistence operations.
//
// Counter mutations are single conditional updates executed by the
// database, never process-level read-modify-write, so concurrent requests
// for the same identity cannot both pass a full counter.
type Store interface {
	// GetOrCreateUserLimits loads the per-user counters, creating the row
	// with the supplied defaults on first use and applying the lazy UTC-day
	// reset before returning.
	GetOrCreateUserLimits(ctx context.Context, userID, walletAddress, twitterUsername string, d Defaults) (*UserLimits, error)

	// GetOrCreatePlatformLimits loads the singleton platform counters with
	// the same lazy-reset semantics.
	GetOrCreatePlatformLimits(ctx context.Context, d Defaults) (*PlatformLimits, error)

	// IncrementUserCreated increments daily_created/total_created (and
	// total_paid when paid) only while daily_created < daily_limit.
	// Reports whether the increment applied.
	IncrementUserCreated(ctx context.Context, userID string, paid bool) (bool, error)

	// IncrementPlatformCreated is the platform-wide counterpart.
	IncrementPlatformCreated(ctx context.Context, paid bool) (bool, error)
}
