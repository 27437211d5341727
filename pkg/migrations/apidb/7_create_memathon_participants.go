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
		log.Println("creating memathon_participants table...")
		if err := mghelper.CreateSchema(ctx, db, &memathon.MemathonParticipantDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &memathon.MemathonParticipantDao{},
			"user_id", "sponsored_tweet_id", "token_contract_address")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping memathon_participants table...")
		return mghelper.DropTables(ctx, db, &memathon.MemathonParticipantDao{})
	})
}
