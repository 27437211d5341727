package reconciler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/attnlabs/viral-middleware/pkg/token"
)

type fakeStore struct {
	mu      sync.Mutex
	tokens  map[string]*token.Token
	pending map[string]*token.PendingDeploy
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		tokens:  make(map[string]*token.Token),
		pending: make(map[string]*token.PendingDeploy),
	}
}

func (f *fakeStore) CreateToken(_ context.Context, t *token.Token) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tokens[t.ContractAddress]; ok {
		return token.ErrDuplicateContract
	}
	cp := *t
	f.tokens[t.ContractAddress] = &cp
	return nil
}

func (f *fakeStore) UpsertToken(_ context.Context, t *token.Token) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tokens[t.ContractAddress]; !ok {
		cp := *t
		f.tokens[t.ContractAddress] = &cp
	}
	return nil
}

func (f *fakeStore) GetByContractAddress(_ context.Context, addr string) (*token.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[addr]
	if !ok {
		return nil, token.ErrTokenNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeStore) ListByOwner(context.Context, string, int) ([]*token.Token, error) {
	return nil, nil
}

func (f *fakeStore) ClaimToken(context.Context, string, string, string) (bool, error) {
	return false, nil
}

func (f *fakeStore) CreatePendingDeploy(_ context.Context, p *token.PendingDeploy) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	f.pending[p.AttemptID] = &cp
	return nil
}

func (f *fakeStore) SetPendingContract(_ context.Context, attemptID, addr, splitAddr string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.pending[attemptID]; ok {
		p.ContractAddress = addr
		p.SplitAddress = splitAddr
	}
	return nil
}

func (f *fakeStore) DeletePendingDeploy(_ context.Context, attemptID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.pending, attemptID)
	return nil
}

func (f *fakeStore) StalePendingDeploys(_ context.Context, cutoff time.Time, limit int) ([]*token.PendingDeploy, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*token.PendingDeploy
	for _, p := range f.pending {
		if p.CreatedAt.Before(cutoff) && len(out) < limit {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func TestSweepRecoversOrphanedToken(t *testing.T) {
	store := newFakeStore()
	require.NoError(t, store.CreatePendingDeploy(context.Background(), &token.PendingDeploy{
		AttemptID:       "attempt-1",
		UserID:          "user-1",
		Name:            "Doge Two",
		Symbol:          "DOGE2",
		OwnerAddress:    "0xowner",
		SplitAddress:    "0xsplit",
		ContractAddress: "0xcontract",
	}))
	store.pending["attempt-1"].CreatedAt = time.Now().Add(-time.Hour)

	r := New(store, 10*time.Minute, zap.NewNop())
	require.NoError(t, r.Sweep(context.Background()))

	recovered, err := store.GetByContractAddress(context.Background(), "0xcontract")
	require.NoError(t, err)
	assert.Equal(t, "DOGE2", recovered.Symbol)
	assert.Equal(t, "0xsplit", recovered.SplitAddress)
	assert.Empty(t, store.pending)
}

func TestSweepIsIdempotentAgainstExistingToken(t *testing.T) {
	store := newFakeStore()
	require.NoError(t, store.CreateToken(context.Background(), &token.Token{
		ContractAddress: "0xcontract",
		Name:            "Original Name",
		Symbol:          "ORIG",
	}))
	require.NoError(t, store.CreatePendingDeploy(context.Background(), &token.PendingDeploy{
		AttemptID:       "attempt-1",
		Symbol:          "STALE",
		ContractAddress: "0xcontract",
	}))
	store.pending["attempt-1"].CreatedAt = time.Now().Add(-time.Hour)

	r := New(store, 10*time.Minute, zap.NewNop())
	require.NoError(t, r.Sweep(context.Background()))

	// The existing row wins; the journal entry is still cleared.
	existing, err := store.GetByContractAddress(context.Background(), "0xcontract")
	require.NoError(t, err)
	assert.Equal(t, "ORIG", existing.Symbol)
	assert.Empty(t, store.pending)
}

func TestSweepClearsAbandonedAttempts(t *testing.T) {
	store := newFakeStore()
	require.NoError(t, store.CreatePendingDeploy(context.Background(), &token.PendingDeploy{
		AttemptID: "attempt-1",
		Symbol:    "DOGE2",
		// No contract address: the gateway never answered.
	}))
	store.pending["attempt-1"].CreatedAt = time.Now().Add(-time.Hour)

	r := New(store, 10*time.Minute, zap.NewNop())
	require.NoError(t, r.Sweep(context.Background()))

	assert.Empty(t, store.tokens)
	assert.Empty(t, store.pending)
}

func TestSweepLeavesRecentAttemptsAlone(t *testing.T) {
	store := newFakeStore()
	require.NoError(t, store.CreatePendingDeploy(context.Background(), &token.PendingDeploy{
		AttemptID:       "attempt-1",
		ContractAddress: "0xcontract",
	}))
	store.pending["attempt-1"].CreatedAt = time.Now()

	r := New(store, 10*time.Minute, zap.NewNop())
	require.NoError(t, r.Sweep(context.Background()))

	assert.Empty(t, store.tokens)
	assert.Len(t, store.pending, 1)
}

func TestStartStopPeriodicSweep(t *testing.T) {
	r := New(newFakeStore(), 10*time.Minute, zap.NewNop())
	r.StartPeriodicSweep(time.Hour)
	r.Stop()
}
