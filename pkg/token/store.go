package token

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrTokenNotFound is returned when a token lookup finds no matching record.
	ErrTokenNotFound = errors.New("token not found")
	// ErrDuplicateContract is returned when a contract address is already recorded.
	ErrDuplicateContract = errors.New("contract address already recorded")
)

// Store defines token and pending-deploy persistence.
type Store interface {
	// CreateToken inserts a token row. ErrDuplicateContract when the
	// contract address already exists.
	CreateToken(ctx context.Context, t *Token) error

	// UpsertToken inserts a token row, applying nothing when the contract
	// address already exists. Used by the reconciler.
	UpsertToken(ctx context.Context, t *Token) error

	GetByContractAddress(ctx context.Context, contractAddress string) (*Token, error)
	ListByOwner(ctx context.Context, ownerAddress string, limit int) ([]*Token, error)

	// ClaimToken flips unclaimed and sets the influencer address exactly
	// once: the update is guarded on unclaimed and the influencer's
	// Twitter handle. Reports whether the claim applied.
	ClaimToken(ctx context.Context, contractAddress, influencerTwitter, influencerAddress string) (bool, error)

	CreatePendingDeploy(ctx context.Context, p *PendingDeploy) error
	SetPendingContract(ctx context.Context, attemptID, contractAddress, splitAddress string) error
	DeletePendingDeploy(ctx context.Context, attemptID string) error

	// StalePendingDeploys returns journal entries created before the
	// cutoff, oldest first.
	StalePendingDeploys(ctx context.Context, cutoff time.Time, limit int) ([]*PendingDeploy, error)
}
