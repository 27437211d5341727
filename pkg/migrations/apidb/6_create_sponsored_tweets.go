package apidb

import (
	"context"
	"log"

	mghelper "github.com/attnlabs/viral-middleware/pkg/pgutil/migrations"

	"github.com/uptrace/bun"

	"github.com/attnlabs/viral-middleware/pkg/memathon"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating sponsored_tweets table...")
		if err := mghelper.CreateSchema(ctx, db, &memathon.SponsoredTweetDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &memathon.SponsoredTweetDao{}, "memathon_season", "category")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping sponsored_tweets table...")
		return mghelper.DropTables(ctx, db, &memathon.SponsoredTweetDao{})
	})
}
