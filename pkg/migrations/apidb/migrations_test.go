package apidb_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun/migrate"

	"github.com/attnlabs/viral-middleware/pkg/migrations/apidb"
	"github.com/attnlabs/viral-middleware/pkg/pgutil"
)

func TestMigrationsUp(t *testing.T) {
	db, cleanup := pgutil.SetupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	migrator := migrate.NewMigrator(db, apidb.Migrations)
	require.NoError(t, migrator.Init(ctx))

	_, err := migrator.Migrate(ctx)
	require.NoError(t, err)

	for _, table := range []string{
		"user_limits",
		"platform_limits",
		"payments",
		"wallet_balances",
		"tokens",
		"sponsored_tweets",
		"memathon_participants",
		"pending_deploys",
	} {
		pgutil.AssertTableExists(t, db, table)
	}
}

func TestMigrationsRollback(t *testing.T) {
	db, cleanup := pgutil.SetupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	migrator := migrate.NewMigrator(db, apidb.Migrations)
	require.NoError(t, migrator.Init(ctx))

	_, err := migrator.Migrate(ctx)
	require.NoError(t, err)

	_, err = migrator.Rollback(ctx)
	require.NoError(t, err)
}
