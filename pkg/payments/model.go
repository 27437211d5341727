package payments

import (
	"time"

	"github.com/uptrace/bun"
)

// PaymentDao is a data access object that maps directly to the 'payments' table in PostgreSQL.
type PaymentDao struct {
	bun.BaseModel         `bun:"table:payments,alias:p"`
	ID                    string    `bun:"id,pk,type:uuid"`
	UserID                string    `bun:"user_id,notnull,type:varchar(128)"`
	WalletAddress         *string   `bun:"wallet_address,type:varchar(42)"`
	AmountCents           int64     `bun:"amount_cents,notnull"`
	Provider              string    `bun:"provider,notnull,type:varchar(16)"`
	StripePaymentIntentID *string   `bun:"stripe_payment_intent_id,type:varchar(255)"`
	Status                string    `bun:"status,notnull,type:varchar(16)"`
	CreatedAt             time.Time `bun:"created_at,nullzero,default:current_timestamp"`
	UpdatedAt             time.Time `bun:"updated_at,nullzero,default:current_timestamp"`
}

// WalletBalanceDao maps to the 'wallet_balances' table holding custodial
// balances in minor currency units.
type WalletBalanceDao struct {
	bun.BaseModel `bun:"table:wallet_balances,alias:wb"`
	UserID        string    `bun:"user_id,pk,type:varchar(128)"`
	BalanceCents  int64     `bun:"balance_cents,notnull,default:0"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,default:current_timestamp"`
}

func toPaymentDao(p *Payment) *PaymentDao {
	dao := &PaymentDao{
		ID:          p.ID,
		UserID:      p.UserID,
		AmountCents: p.AmountCents,
		Provider:    string(p.Provider),
		Status:      string(p.Status),
	}
	if p.WalletAddress != "" {
		dao.WalletAddress = &p.WalletAddress
	}
	if p.StripePaymentIntentID != "" {
		dao.StripePaymentIntentID = &p.StripePaymentIntentID
	}
	return dao
}

func toPayment(dao *PaymentDao) *Payment {
	p := &Payment{
		ID:          dao.ID,
		UserID:      dao.UserID,
		AmountCents: dao.AmountCents,
		Provider:    Provider(dao.Provider),
		Status:      Status(dao.Status),
		CreatedAt:   dao.CreatedAt,
	}
	if dao.WalletAddress != nil {
		p.WalletAddress = *dao.WalletAddress
	}
	if dao.StripePaymentIntentID != nil {
		p.StripePaymentIntentID = *dao.StripePaymentIntentID
	}
	return p
}
