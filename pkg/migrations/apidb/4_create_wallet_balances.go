package apidb

import (
	"context"
	"log"

	mghelper "github.com/attnlabs/viral-middleware/pkg/pgutil/migrations"

	"github.com/uptrace/bun"

	"github.com/attnlabs/viral-middleware/pkg/payments"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating wallet_balances table...")
		return mghelper.CreateSchema(ctx, db, &payments.WalletBalanceDao{})
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping wallet_balances table...")
		return mghelper.DropTables(ctx, db, &payments.WalletBalanceDao{})
	})
}
