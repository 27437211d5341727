package token

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

type pgStore struct {
	db *bun.DB
}

// NewStore creates a new postgres implementation of the token store
func NewStore(db *bun.DB) *pgStore {
	return &pgStore{db: db}
}

func (s *pgStore) CreateToken(ctx context.Context, t *Token) error {
	_, err := s.db.NewInsert().
		Model(toTokenDao(t)).
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateContract
		}
		return fmt.Errorf("failed to create token: %w", err)
	}
	return nil
}

func (s *pgStore) UpsertToken(ctx context.Context, t *Token) error {
	_, err := s.db.NewInsert().
		Model(toTokenDao(t)).
		On("CONFLICT (contract_address) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert token: %w", err)
	}
	return nil
}

func (s *pgStore) GetByContractAddress(ctx context.Context, contractAddress string) (*Token, error) {
	dao := new(TokenDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("contract_address = ?", contractAddress).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	return toToken(dao), nil
}

func (s *pgStore) ListByOwner(ctx context.Context, ownerAddress string, limit int) ([]*Token, error) {
	var daos []*TokenDao
	err := s.db.NewSelect().
		Model(&daos).
		Where("owner_address = ?", ownerAddress).
		Order("created_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}

	tokens := make([]*Token, len(daos))
	for i, dao := range daos {
		tokens[i] = toToken(dao)
	}
	return tokens, nil
}

func (s *pgStore) ClaimToken(ctx context.Context, contractAddress, influencerTwitter, influencerAddress string) (bool, error) {
	res, err := s.db.NewUpdate().
		Model((*TokenDao)(nil)).
		Set("unclaimed = FALSE").
		Set("influencer_address = ?", influencerAddress).
		Set("updated_at = NOW()").
		Where("contract_address = ?", contractAddress).
		Where("unclaimed = TRUE").
		Where("influencer_twitter = ?", influencerTwitter).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to claim token: %w", err)
	}
	return rowsChanged(res)
}

func (s *pgStore) CreatePendingDeploy(ctx context.Context, p *PendingDeploy) error {
	_, err := s.db.NewInsert().
		Model(toPendingDeployDao(p)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to record pending deploy: %w", err)
	}
	return nil
}

func (s *pgStore) SetPendingContract(ctx context.Context, attemptID, contractAddress, splitAddress string) error {
	_, err := s.db.NewUpdate().
		Model((*PendingDeployDao)(nil)).
		Set("contract_address = ?", contractAddress).
		Set("split_address = ?", splitAddress).
		Where("attempt_id = ?", attemptID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update pending deploy: %w", err)
	}
	return nil
}

func (s *pgStore) DeletePendingDeploy(ctx context.Context, attemptID string) error {
	_, err := s.db.NewDelete().
		Model((*PendingDeployDao)(nil)).
		Where("attempt_id = ?", attemptID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete pending deploy: %w", err)
	}
	return nil
}

func (s *pgStore) StalePendingDeploys(ctx context.Context, cutoff time.Time, limit int) ([]*PendingDeploy, error) {
	var daos []*PendingDeployDao
	err := s.db.NewSelect().
		Model(&daos).
		Where("created_at < ?", cutoff).
		Order("created_at ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale pending deploys: %w", err)
	}

	out := make([]*PendingDeploy, len(daos))
	for i, dao := range daos {
		out[i] = toPendingDeploy(dao)
	}
	return out, nil
}

func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	if errors.As(err, &pgErr) {
		// SQLSTATE 23505, unique_violation.
		return pgErr.Field('C') == "23505"
	}
	return false
}

func rowsChanged(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n == 1, nil
}
