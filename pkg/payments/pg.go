package payments

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

// NewStore creates a new postgres implementation of the payment store
func NewStore(db *bun.DB) *pgStore {
	return &pgStore{db: db}
}

func (s *pgStore) CreatePayment(ctx context.Context, p *Payment) error {
	dao := toPaymentDao(p)

	_, err := s.db.NewInsert().
		Model(dao).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (s *pgStore) GetPayment(ctx context.Context, id string) (*Payment, error) {
	dao := new(PaymentDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return toPayment(dao), nil
}

func (s *pgStore) CompletePayment(ctx context.Context, id string) (bool, error) {
	res, err := s.db.NewUpdate().
		Model((*PaymentDao)(nil)).
		Set("status = ?", string(StatusCompleted)).
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Where("status = ?", string(StatusPending)).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to complete payment: %w", err)
	}
	return rowsChanged(res)
}

func (s *pgStore) CompleteByIntentID(ctx context.Context, intentID string) (bool, error) {
	res, err := s.db.NewUpdate().
		Model((*PaymentDao)(nil)).
		Set("status = ?", string(StatusCompleted)).
		Set("updated_at = NOW()").
		Where("stripe_payment_intent_id = ?", intentID).
		Where("status = ?", string(StatusPending)).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to complete payment by intent: %w", err)
	}
	return rowsChanged(res)
}

func (s *pgStore) FailPayment(ctx context.Context, id string) error {
	_, err := s.db.NewUpdate().
		Model((*PaymentDao)(nil)).
		Set("status = ?", string(StatusFailed)).
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Where("status = ?", string(StatusPending)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to fail payment: %w", err)
	}
	return nil
}

// ConsumePayment is the correctness-critical transition: check and flip in
// one guarded update so two concurrent verifications of the same payment
// cannot both succeed.
func (s *pgStore) ConsumePayment(ctx context.Context, id, userID string) (bool, error) {
	res, err := s.db.NewUpdate().
		Model((*PaymentDao)(nil)).
		Set("status = ?", string(StatusConsumed)).
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Where("user_id = ?", userID).
		Where("status = ?", string(StatusCompleted)).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to consume payment: %w", err)
	}
	return rowsChanged(res)
}

func (s *pgStore) ReleasePayment(ctx context.Context, id string) (bool, error) {
	res, err := s.db.NewUpdate().
		Model((*PaymentDao)(nil)).
		Set("status = ?", string(StatusCompleted)).
		Set("updated_at = NOW()").
		Where("id = ?", id).
		Where("status = ?", string(StatusConsumed)).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to release payment: %w", err)
	}
	return rowsChanged(res)
}

func (s *pgStore) DebitWallet(ctx context.Context, userID string, amountCents int64) (bool, error) {
	res, err := s.db.NewUpdate().
		Model((*WalletBalanceDao)(nil)).
		Set("balance_cents = balance_cents - ?", amountCents).
		Set("updated_at = NOW()").
		Where("user_id = ?", userID).
		Where("balance_cents >= ?", amountCents).
		Exec(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to debit wallet: %w", err)
	}
	return rowsChanged(res)
}

func (s *pgStore) CreditWallet(ctx context.Context, userID string, amountCents int64) error {
	dao := &WalletBalanceDao{
		UserID:       userID,
		BalanceCents: amountCents,
	}
	_, err := s.db.NewInsert().
		Model(dao).
		On("CONFLICT (user_id) DO UPDATE").
		Set("balance_cents = wb.balance_cents + EXCLUDED.balance_cents").
		Set("updated_at = NOW()").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to credit wallet: %w", err)
	}
	return nil
}

func (s *pgStore) WalletBalance(ctx context.Context, userID string) (int64, error) {
	dao := new(WalletBalanceDao)
	err := s.db.NewSelect().
		Model(dao).
		Where("user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get wallet balance: %w", err)
	}
	return dao.BalanceCents, nil
}

func rowsChanged(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n == 1, nil
}
