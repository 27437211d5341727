package apidb

import (
	"context"
	"log"

	mghelper "github.com/attnlabs/viral-middleware/pkg/pgutil/migrations"

	"github.com/uptrace/bun"

	"github.com/attnlabs/viral-middleware/pkg/limits"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating user_limits table...")
		if err := mghelper.CreateSchema(ctx, db, &limits.UserLimitsDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &limits.UserLimitsDao{}, "wallet_address")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping user_limits table...")
		return mghelper.DropTables(ctx, db, &limits.UserLimitsDao{})
	})
}
