package memathon

import (
	"context"
	"errors"
)

var (
	// ErrSponsoredTweetNotFound is returned when a lookup finds no matching campaign.
	ErrSponsoredTweetNotFound = errors.New("sponsored tweet not found")
	// ErrParticipantNotFound is returned when a participant lookup finds nothing.
	ErrParticipantNotFound = errors.New("memathon participant not found")
)

// Store defines sponsorship and contest participation persistence.
type Store interface {
	CreateSponsoredTweet(ctx context.Context, t *SponsoredTweet) error
	GetActiveByTweetID(ctx context.Context, tweetID string) (*SponsoredTweet, error)
	ListActive(ctx context.Context, season int, category string) ([]*SponsoredTweet, error)
	DeactivateSponsoredTweet(ctx context.Context, id string) error

	CreateParticipant(ctx context.Context, p *MemathonParticipant) error

	// IncrementTweetStats atomically bumps the coin and participant
	// counters on one sponsored tweet.
	IncrementTweetStats(ctx context.Context, sponsoredTweetID string) error

	// Leaderboard returns a season's participants ordered by winner score,
	// highest first.
	Leaderboard(ctx context.Context, season int, limit int) ([]*MemathonParticipant, error)

	// MarkWinner flips is_winner on one participant. Reports whether the
	// participant existed and was not already a winner.
	MarkWinner(ctx context.Context, participantID string) (bool, error)
}
