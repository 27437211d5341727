package apidb

import (
	"context"
	"log"

	mghelper "github.com/attnlabs/viral-middleware/pkg/pgutil/migrations"

	"github.com/uptrace/bun"

	"github.com/attnlabs/viral-middleware/pkg/token"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating pending_deploys table...")
		if err := mghelper.CreateSchema(ctx, db, &token.PendingDeployDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &token.PendingDeployDao{}, "created_at")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping pending_deploys table...")
		return mghelper.DropTables(ctx, db, &token.PendingDeployDao{})
	})
}
