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
		log.Println("creating tokens table...")
		if err := mghelper.CreateSchema(ctx, db, &token.TokenDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &token.TokenDao{}, "owner_address", "influencer_twitter")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping tokens table...")
		return mghelper.DropTables(ctx, db, &token.TokenDao{})
	})
}
