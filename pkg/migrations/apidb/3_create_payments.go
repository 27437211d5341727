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
		log.Println("creating payments table...")
		if err := mghelper.CreateSchema(ctx, db, &payments.PaymentDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &payments.PaymentDao{}, "user_id", "stripe_payment_intent_id")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping payments table...")
		return mghelper.DropTables(ctx, db, &payments.PaymentDao{})
	})
}
