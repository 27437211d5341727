package memathon

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/attnlabs/viral-middleware/internal/metrics"
	apperrors "github.com/attnlabs/viral-middleware/pkg/app/errors"
)

// Service implements sponsorship attribution and contest administration.
type Service struct {
	store  Store
	logger *zap.Logger
}

// NewService creates a new memathon service
func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Attribute traces a minted token back to an active sponsored tweet and
// records contest participation. A post URL without a tweet ID, or a tweet
// ID with no active sponsorship, is a no-op, not an error. The same user
// may participate multiple times in one sponsorship.
func (s *Service) Attribute(ctx context.Context, originalPostURL, userID, contractAddress string, marketCap decimal.Decimal) error {
	tweetID := ExtractTweetID(originalPostURL)
	if tweetID == "" {
		metrics.AttributionsTotal.WithLabelValues("no_tweet_id").Inc()
		return nil
	}

	sponsored, err := s.store.GetActiveByTweetID(ctx, tweetID)
	if err != nil {
		if errors.Is(err, ErrSponsoredTweetNotFound) {
			metrics.AttributionsTotal.WithLabelValues("unsponsored").Inc()
			return nil
		}
		metrics.AttributionsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to look up sponsorship: %w", err)
	}

	participant := &MemathonParticipant{
		ID:                   uuid.NewString(),
		UserID:               userID,
		SponsoredTweetID:     sponsored.ID,
		TokenContractAddress: contractAddress,
		InitialMarketCap:     marketCap,
		CurrentMarketCap:     marketCap,
	}
	if err := s.store.CreateParticipant(ctx, participant); err != nil {
		metrics.AttributionsTotal.WithLabelValues("error").Inc()
		return err
	}

	if err := s.store.IncrementTweetStats(ctx, sponsored.ID); err != nil {
		metrics.AttributionsTotal.WithLabelValues("error").Inc()
		return err
	}

	metrics.AttributionsTotal.WithLabelValues("attributed").Inc()
	s.logger.Info("Token attributed to sponsorship",
		zap.String("tweet_id", tweetID),
		zap.String("sponsored_tweet_id", sponsored.ID),
		zap.String("user_id", userID),
		zap.String("contract_address", contractAddress))
	return nil
}

// CreateSponsoredTweetParams carries admin input for a new campaign entry.
type CreateSponsoredTweetParams struct {
	TweetID        string `json:"tweet_id" validate:"required,numeric"`
	SponsorName    string `json:"sponsor_name" validate:"required"`
	Category       string `json:"category" validate:"required"`
	MemathonSeason int    `json:"memathon_season" validate:"required,gt=0"`
	Priority       int    `json:"priority" validate:"gte=0"`
}

// CreateSponsoredTweet registers a new active sponsored tweet.
func (s *Service) CreateSponsoredTweet(ctx context.Context, params CreateSponsoredTweetParams) (*SponsoredTweet, error) {
	tweet := &SponsoredTweet{
		ID:             uuid.NewString(),
		TweetID:        params.TweetID,
		SponsorName:    params.SponsorName,
		Category:       params.Category,
		MemathonSeason: params.MemathonSeason,
		Priority:       params.Priority,
		IsActive:       true,
	}
	if err := s.store.CreateSponsoredTweet(ctx, tweet); err != nil {
		return nil, err
	}

	s.logger.Info("Sponsored tweet created",
		zap.String("id", tweet.ID),
		zap.String("tweet_id", tweet.TweetID),
		zap.String("sponsor", tweet.SponsorName))
	return tweet, nil
}

// ListActive returns the active sponsored tweets, optionally filtered by
// season and category.
func (s *Service) ListActive(ctx context.Context, season int, category string) ([]*SponsoredTweet, error) {
	return s.store.ListActive(ctx, season, category)
}

// Deactivate ends a campaign; attributed participants keep their entries.
func (s *Service) Deactivate(ctx context.Context, id string) error {
	err := s.store.DeactivateSponsoredTweet(ctx, id)
	if errors.Is(err, ErrSponsoredTweetNotFound) {
		return apperrors.ResourceNotFoundError(err, "sponsored tweet not found")
	}
	return err
}

// Leaderboard returns the season's participants ranked by winner score.
func (s *Service) Leaderboard(ctx context.Context, season, limit int) ([]*MemathonParticipant, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.store.Leaderboard(ctx, season, limit)
}

// SelectWinner marks a participant as a contest winner.
func (s *Service) SelectWinner(ctx context.Context, participantID string) error {
	marked, err := s.store.MarkWinner(ctx, participantID)
	if err != nil {
		return err
	}
	if !marked {
		return apperrors.ResourceNotFoundError(ErrParticipantNotFound, "participant not found or already a winner")
	}

	s.logger.Info("Memathon winner selected", zap.String("participant_id", participantID))
	return nil
}
