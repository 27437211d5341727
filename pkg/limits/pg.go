package limits

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

type pgStore struct {
	db *bun.DB
}

// NewStore creates a new postgres implementation of the quota ledger store
func NewStore(db *bun.DB) *pgStore {
	return &pgStore{db: db}
}

func (s *pgStore) GetOrCreateUserLimits(
	ctx context.Context,
	userID, walletAddress, twitterUsername string,
	d Defaults,
) (*UserLimits, error) {
	today := UTCDay(time.Now())

	dao := &UserLimitsDao{
		UserID:        userID,
		FreeLimit:     d.FreeLimit,
		DailyLimit:    d.DailyLimit,
		LastResetDate: today,
	}
	if walletAddress != "" {
		dao.WalletAddress = &walletAddress
	}
	if twitterUsername != "" {
		dao.TwitterUsername = &twitterUsername
	}

	// First check for an identity creates its row; concurrent first checks
	// collapse onto the existing one.
	_, err := s.db.NewInsert().
		Model(dao).
		On("CONFLICT (user_id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create user limits: %w", err)
	}

	if err := s.resetUserDaily(ctx, userID, today); err != nil {
		return nil, err
	}

	out := new(UserLimitsDao)
	err = s.db.NewSelect().
		Model(out).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLimitsNotFound
		}
		return nil, fmt.Errorf("failed to get user limits: %w", err)
	}

	return toUserLimits(out), nil
}

// resetUserDaily zeroes the daily counter when the stored reset date is
// before the current UTC day. Evaluated on read; there is no reset job.
func (s *pgStore) resetUserDaily(ctx context.Context, userID string, today time.Time) error {
	_, err := s.db.NewUpdate().
		Model((*UserLimitsDao)(nil)).
		Set("daily_created = 0").
		Set("last_reset_date = ?", today).
		Set("updated_at = NOW()").
		Where("user_id = ?", userID).
		Where("last_reset_date < ?", today).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to reset user daily counter: %w", err)
	}
	return nil
}

func (s *pgStore) GetOrCreatePlatformLimits(ctx context.Context, d Defaults) (*PlatformLimits, error) {
	today := UTCDay(time.Now())

	dao := &PlatformLimitsDao{
		ID:            platformRowID,
		DailyLimit:    d.PlatformDailyLimit,
		LastResetDate: today,
	}
	_, err := s.db.NewInsert().
		Model(dao).
		On("CONFLICT (id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create platform limits: %w", err)
	}

	_, err = s.db.NewUpdate().
		Model((*PlatformLimitsDao)(nil)).
		Set("daily_created = 0").
		Set("last_reset_date = ?", today).
		Set("updated_at = NOW()").
		Where("id = ?", platformRowID).
		Where("last_reset_date < ?", today).
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to reset platform daily counter: %w", err)
	}

	out := new(PlatformLimitsDao)
	err = s.db.NewSelect().
		Model(out).
		Where("id = ?", platformRowID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLimitsNotFound
		}
		return nil, fmt.Errorf("failed to get platform limits: %w", err)
	}

	return toPlatformLimits(out), nil
}

func (s *pgStore) IncrementUserCreated(ctx context.Context, userID string, paid bool) (bool, error) {
	q := s.db.NewUpdate().
		Model((*UserLimitsDao)(nil)).
		Set("daily_created = daily_created + 1").
		Set("total_created = total_created + 1").
		Set("updated_at = NOW()").
		Where("user_id = ?", userID).
		Where("daily_created < daily_limit")
	if paid {
		q = q.Set("total_paid = total_paid + 1")
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to increment user counters: %w", err)
	}
	return rowsChanged(res)
}

func (s *pgStore) IncrementPlatformCreated(ctx context.Context, paid bool) (bool, error) {
	q := s.db.NewUpdate().
		Model((*PlatformLimitsDao)(nil)).
		Set("daily_created = daily_created + 1").
		Set("total_created = total_created + 1").
		Set("updated_at = NOW()").
		Where("id = ?", platformRowID).
		Where("daily_created < daily_limit")
	if paid {
		q = q.Set("total_paid = total_paid + 1")
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to increment platform counters: %w", err)
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
