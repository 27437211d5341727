package limits_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attnlabs/viral-middleware/pkg/limits"
	"github.com/attnlabs/viral-middleware/pkg/pgutil"
	mghelper "github.com/attnlabs/viral-middleware/pkg/pgutil/migrations"
)

func setupStore(t *testing.T) (limits.Store, func()) {
	t.Helper()
	db, cleanup := pgutil.SetupTestDB(t)

	ctx := context.Background()
	require.NoError(t, mghelper.CreateSchema(ctx, db, &limits.UserLimitsDao{}, &limits.PlatformLimitsDao{}))

	return limits.NewStore(db), cleanup
}

func testDefaults() limits.Defaults {
	return limits.Defaults{FreeLimit: 3, DailyLimit: 5, PlatformDailyLimit: 100}
}

func TestGetOrCreateUserLimits(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	user, err := store.GetOrCreateUserLimits(ctx, "user-1", "0xabc", "meme_lord", testDefaults())
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.UserID)
	assert.Equal(t, 3, user.FreeLimit)
	assert.Equal(t, 5, user.DailyLimit)
	assert.Zero(t, user.DailyCreated)

	// A second call finds the same row.
	again, err := store.GetOrCreateUserLimits(ctx, "user-1", "0xabc", "meme_lord", testDefaults())
	require.NoError(t, err)
	assert.Equal(t, user.UserID, again.UserID)
}

func TestIncrementUserCreatedStopsAtCap(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	_, err := store.GetOrCreateUserLimits(ctx, "user-1", "", "", testDefaults())
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		applied, err := store.IncrementUserCreated(ctx, "user-1", false)
		require.NoError(t, err)
		assert.True(t, applied, "increment %d", i)
	}

	// The guarded update refuses the sixth increment.
	applied, err := store.IncrementUserCreated(ctx, "user-1", false)
	require.NoError(t, err)
	assert.False(t, applied)

	user, err := store.GetOrCreateUserLimits(ctx, "user-1", "", "", testDefaults())
	require.NoError(t, err)
	assert.Equal(t, 5, user.DailyCreated)
	assert.Equal(t, 5, user.TotalCreated)
}

func TestIncrementUserCreatedConcurrent(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	_, err := store.GetOrCreateUserLimits(ctx, "user-1", "", "", testDefaults())
	require.NoError(t, err)

	const attempts = 20
	var wg sync.WaitGroup
	results := make(chan bool, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			applied, err := store.IncrementUserCreated(ctx, "user-1", false)
			assert.NoError(t, err)
			results <- applied
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for applied := range results {
		if applied {
			wins++
		}
	}
	assert.Equal(t, 5, wins)

	user, err := store.GetOrCreateUserLimits(ctx, "user-1", "", "", testDefaults())
	require.NoError(t, err)
	assert.Equal(t, 5, user.DailyCreated)
}

func TestIncrementPaidTracksTotalPaid(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	_, err := store.GetOrCreateUserLimits(ctx, "user-1", "", "", testDefaults())
	require.NoError(t, err)

	_, err = store.IncrementUserCreated(ctx, "user-1", false)
	require.NoError(t, err)
	_, err = store.IncrementUserCreated(ctx, "user-1", true)
	require.NoError(t, err)

	user, err := store.GetOrCreateUserLimits(ctx, "user-1", "", "", testDefaults())
	require.NoError(t, err)
	assert.Equal(t, 2, user.TotalCreated)
	assert.Equal(t, 1, user.TotalPaid)
}

func TestPlatformLimitsSingleton(t *testing.T) {
	store, cleanup := setupStore(t)
	defer cleanup()
	ctx := context.Background()

	platform, err := store.GetOrCreatePlatformLimits(ctx, testDefaults())
	require.NoError(t, err)
	assert.Equal(t, 100, platform.DailyLimit)

	applied, err := store.IncrementPlatformCreated(ctx, true)
	require.NoError(t, err)
	assert.True(t, applied)

	platform, err = store.GetOrCreatePlatformLimits(ctx, testDefaults())
	require.NoError(t, err)
	assert.Equal(t, 1, platform.DailyCreated)
	assert.Equal(t, 1, platform.TotalCreated)
	assert.Equal(t, 1, platform.TotalPaid)
}
