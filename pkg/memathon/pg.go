package memathon

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
)

type pgStore struct {
	db *bun.DB
}

// NewStore creates a new postgres implementation of the memathon store
func NewStore(db *bun.DB) *pgStore {
	return &pgStore{db: db}
}

func (s *pgStore) CreateSponsoredTweet(ctx context.Context, t *SponsoredTweet) error {
	_, err := s.db.NewInsert().
		Model(toSponsoredTweetDao(t)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create sponsored tweet: %w", err)
	}
	return nil
}

func (s *pgStore) GetActiveByTweetID(ctx context.Context, tweetID string) (*SponsoredTweet, error) {
	dao := new(SponsoredTweetDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("tweet_id = ?", tweetID).
		Where("is_active = TRUE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSponsoredTweetNotFound
		}
		return nil, fmt.Errorf("failed to get sponsored tweet: %w", err)
	}
	return toSponsoredTweet(dao), nil
}

func (s *pgStore) ListActive(ctx context.Context, season int, category string) ([]*SponsoredTweet, error) {
	var daos []*SponsoredTweetDao
	q := s.db.NewSelect().
		Model(&daos).
		Where("is_active = TRUE").
		Order("priority DESC", "created_at DESC")
	if season > 0 {
		q = q.Where("memathon_season = ?", season)
	}
	if category != "" {
		q = q.Where("category = ?", category)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list sponsored tweets: %w", err)
	}

	tweets := make([]*SponsoredTweet, len(daos))
	for i, dao := range daos {
		tweets[i] = toSponsoredTweet(dao)
	}
	return tweets, nil
}

func (s *pgStore) DeactivateSponsoredTweet(ctx context.Context, id string) error {
	res, err := s.db.NewUpdate().
		Model((*SponsoredTweetDao)(nil)).
		Set("is_active = FALSE").
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to deactivate sponsored tweet: %w", err)
	}
	changed, err := rowsChanged(res)
	if err != nil {
		return err
	}
	if !changed {
		return ErrSponsoredTweetNotFound
	}
	return nil
}

func (s *pgStore) CreateParticipant(ctx context.Context, p *MemathonParticipant) error {
	_, err := s.db.NewInsert().
		Model(toParticipantDao(p)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create participant: %w", err)
	}
	return nil
}

func (s *pgStore) IncrementTweetStats(ctx context.Context, sponsoredTweetID string) error {
	res, err := s.db.NewUpdate().
		Model((*SponsoredTweetDao)(nil)).
		Set("stats_coins = stats_coins + 1").
		Set("stats_participants = stats_participants + 1").
		Set("updated_at = NOW()").
		Where("id = ?", sponsoredTweetID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to increment tweet stats: %w", err)
	}
	changed, err := rowsChanged(res)
	if err != nil {
		return err
	}
	if !changed {
		return ErrSponsoredTweetNotFound
	}
	return nil
}

func (s *pgStore) Leaderboard(ctx context.Context, season int, limit int) ([]*MemathonParticipant, error) {
	var daos []*MemathonParticipantDao
	q := s.db.NewSelect().
		Model(&daos).
		Order("winner_score DESC", "created_at ASC").
		Limit(limit)
	if season > 0 {
		q = q.Join("JOIN sponsored_tweets AS st ON st.id = mp.sponsored_tweet_id").
			Where("st.memathon_season = ?", season)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}

	participants := make([]*MemathonParticipant, len(daos))
	for i, dao := range daos {
		participants[i] = toParticipant(dao)
	}
	return participants, nil
}

func (s *pgStore) MarkWinner(ctx context.Context, participantID string) (bool, error) {
	res, err := s.db.NewUpdate().
		Model((*MemathonParticipantDao)(nil)).
		Set("is_winner = TRUE").
		Set("updated_at = NOW()").
		Where("id = ?", participantID).
		Where("is_winner = FALSE").
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to mark winner: %w", err)
	}
	return rowsChanged(res)
}

func rowsChanged(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n == 1, nil
}
