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
		log.Println("creating platform_limits table...")
		return mghelper.CreateSchema(ctx, db, &limits.PlatformLimitsDao{})
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping platform_limits table...")
		return mghelper.DropTables(ctx, db, &limits.PlatformLimitsDao{})
	})
}
