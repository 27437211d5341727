package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/attnlabs/viral-middleware/pkg/app/errors"
	"github.com/attnlabs/viral-middleware/pkg/auth"
	"github.com/attnlabs/viral-middleware/pkg/clanker"
	"github.com/attnlabs/viral-middleware/pkg/limits"
	"github.com/attnlabs/viral-middleware/pkg/social"
	"github.com/attnlabs/viral-middleware/pkg/token"
)

const (
	testWallet   = "0x1111111111111111111111111111111111111111"
	testContract = "0x2222222222222222222222222222222222222222"
	testSplit    = "0x3333333333333333333333333333333333333333"
)

type fakeTokenStore struct {
	mu      sync.Mutex
	tokens  map[string]*token.Token
	pending map[string]*token.PendingDeploy

	createTokenErr error
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{
		tokens:  make(map[string]*token.Token),
		pending: make(map[string]*token.PendingDeploy),
	}
}

func (f *fakeTokenStore) CreateToken(_ context.Context, t *token.Token) error {
	if f.createTokenErr != nil {
		return f.createTokenErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tokens[t.ContractAddress]; ok {
		return token.ErrDuplicateContract
	}
	cp := *t
	f.tokens[t.ContractAddress] = &cp
	return nil
}

func (f *fakeTokenStore) UpsertToken(_ context.Context, t *token.Token) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tokens[t.ContractAddress]; !ok {
		cp := *t
		f.tokens[t.ContractAddress] = &cp
	}
	return nil
}

func (f *fakeTokenStore) GetByContractAddress(_ context.Context, addr string) (*token.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[addr]
	if !ok {
		return nil, token.ErrTokenNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTokenStore) ListByOwner(_ context.Context, ownerAddress string, limit int) ([]*token.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*token.Token
	for _, t := range f.tokens {
		if t.OwnerAddress == ownerAddress && len(out) < limit {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeTokenStore) ClaimToken(_ context.Context, addr, influencerTwitter, influencerAddress string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[addr]
	if !ok || !t.Unclaimed || t.InfluencerTwitter != influencerTwitter {
		return false, nil
	}
	t.Unclaimed = false
	t.InfluencerAddress = influencerAddress
	return true, nil
}

func (f *fakeTokenStore) CreatePendingDeploy(_ context.Context, p *token.PendingDeploy) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	f.pending[p.AttemptID] = &cp
	return nil
}

func (f *fakeTokenStore) SetPendingContract(_ context.Context, attemptID, contractAddress, splitAddress string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.pending[attemptID]; ok {
		p.ContractAddress = contractAddress
		p.SplitAddress = splitAddress
	}
	return nil
}

func (f *fakeTokenStore) DeletePendingDeploy(_ context.Context, attemptID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.pending, attemptID)
	return nil
}

func (f *fakeTokenStore) StalePendingDeploys(_ context.Context, cutoff time.Time, limit int) ([]*token.PendingDeploy, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*token.PendingDeploy
	for _, p := range f.pending {
		if len(out) < limit {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeQuota struct {
	check      limits.CheckResult
	checkErr   error
	recordings int
	paidCount  int
}

func (f *fakeQuota) CheckUserCanCreate(context.Context, string, string, string) (*limits.CheckResult, error) {
	if f.checkErr != nil {
		return nil, f.checkErr
	}
	cp := f.check
	return &cp, nil
}

func (f *fakeQuota) RecordCreation(_ context.Context, _ string, paid bool) error {
	f.recordings++
	if paid {
		f.paidCount++
	}
	return nil
}

type fakePayments struct {
	verifyOK  bool
	verified  []string
	released  []string
}

func (f *fakePayments) Verify(_ context.Context, _, paymentID string) (bool, error) {
	f.verified = append(f.verified, paymentID)
	return f.verifyOK, nil
}

func (f *fakePayments) Release(_ context.Context, paymentID string) error {
	f.released = append(f.released, paymentID)
	return nil
}

type fakeGateway struct {
	calls  int
	err    error
	result clanker.DeployResult
}

func (f *fakeGateway) DeployToken(context.Context, clanker.DeployParams) (*clanker.DeployResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	cp := f.result
	return &cp, nil
}

type fakeSplits struct {
	calls int
	err   error
}

func (f *fakeSplits) Generate(context.Context, string, string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return testSplit, nil
}

type fakeAttributor struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeAttributor) Attribute(_ context.Context, postURL, _, contractAddress string, _ decimal.Decimal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, contractAddress)
	return nil
}

type fixture struct {
	store    *fakeTokenStore
	quota    *fakeQuota
	payments *fakePayments
	gateway  *fakeGateway
	splits   *fakeSplits
	memathon *fakeAttributor
	orch     *Orchestrator
}

func newFixture() *fixture {
	f := &fixture{
		store:    newFakeTokenStore(),
		quota:    &fakeQuota{check: limits.CheckResult{CanCreate: true}},
		payments: &fakePayments{verifyOK: true},
		gateway:  &fakeGateway{result: clanker.DeployResult{ContractAddress: testContract}},
		splits:   &fakeSplits{},
		memathon: &fakeAttributor{},
	}
	f.orch = NewOrchestrator(f.store, f.quota, f.payments, f.gateway, f.splits, f.memathon, social.NopPoster{}, zap.NewNop())
	return f
}

func testIdentity() *auth.Identity {
	return &auth.Identity{
		UserID:          "user-1",
		WalletAddress:   testWallet,
		TwitterUsername: "meme_lord",
		EmailVerified:   true,
	}
}

func TestDeployHappyPath(t *testing.T) {
	f := newFixture()

	minted, err := f.orch.Deploy(context.Background(), &DeployRequest{
		Name:         "Doge Two",
		Symbol:       "DOGE2",
		OriginalPost: "https://x.com/a/status/123",
	}, testIdentity())
	require.NoError(t, err)

	assert.Equal(t, testContract, minted.ContractAddress)
	assert.Equal(t, testWallet, minted.OwnerAddress)
	assert.Equal(t, "0x3333333333333333333333333333333333333333", minted.SplitAddress)

	// Persisted, ledger updated, journal cleared, attribution ran.
	_, err = f.store.GetByContractAddress(context.Background(), testContract)
	require.NoError(t, err)
	assert.Equal(t, 1, f.quota.recordings)
	assert.Empty(t, f.store.pending)
	assert.Equal(t, []string{testContract}, f.memathon.calls)
}

func TestDeployEmailUnverified(t *testing.T) {
	f := newFixture()
	identity := testIdentity()
	identity.EmailVerified = false

	_, err := f.orch.Deploy(context.Background(), &DeployRequest{Name: "X", Symbol: "X"}, identity)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CategoryForbidden))
	assert.Zero(t, f.gateway.calls)
}

func TestDeployLimitReached(t *testing.T) {
	f := newFixture()
	f.quota.check = limits.CheckResult{CanCreate: false, UserDailyRemaining: 0, PlatformRemaining: 17}

	_, err := f.orch.Deploy(context.Background(), &DeployRequest{Name: "X", Symbol: "X"}, testIdentity())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CategoryPaymentRequired))
	assert.Zero(t, f.splits.calls)
	assert.Zero(t, f.gateway.calls)
}

func TestDeployPaymentRequiredButMissing(t *testing.T) {
	f := newFixture()
	f.quota.check = limits.CheckResult{CanCreate: true, RequiresPayment: true, PaymentAmountCents: 500}

	_, err := f.orch.Deploy(context.Background(), &DeployRequest{Name: "X", Symbol: "X"}, testIdentity())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CategoryPaymentRequired))

	// Rejection happens before any external call.
	assert.Zero(t, f.gateway.calls)
	assert.Zero(t, f.splits.calls)
	assert.Empty(t, f.payments.verified)
}

func TestDeployPaymentInvalid(t *testing.T) {
	f := newFixture()
	f.quota.check = limits.CheckResult{CanCreate: true, RequiresPayment: true}
	f.payments.verifyOK = false

	_, err := f.orch.Deploy(context.Background(), &DeployRequest{
		Name: "X", Symbol: "X", PaymentID: "pay-1",
	}, testIdentity())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CategoryPaymentRequired))
	assert.Zero(t, f.gateway.calls)
}

func TestDeployReferencedPaymentMustVerifyEvenWhenFree(t *testing.T) {
	f := newFixture()
	f.quota.check = limits.CheckResult{CanCreate: true, RequiresPayment: false}
	f.payments.verifyOK = false

	_, err := f.orch.Deploy(context.Background(), &DeployRequest{
		Name: "X", Symbol: "X", PaymentID: "pay-1",
	}, testIdentity())
	require.Error(t, err)
	assert.Equal(t, []string{"pay-1"}, f.payments.verified)
	assert.Zero(t, f.gateway.calls)
}

func TestDeployGatewayFailure(t *testing.T) {
	f := newFixture()
	f.quota.check = limits.CheckResult{CanCreate: true, RequiresPayment: true}
	f.gateway.err = errors.New("chain congested")

	_, err := f.orch.Deploy(context.Background(), &DeployRequest{
		Name: "X", Symbol: "X", PaymentID: "pay-1",
	}, testIdentity())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CategoryDependencyFailure))

	// No token, no quota consumed, payment handed back, journal cleared.
	assert.Empty(t, f.store.tokens)
	assert.Zero(t, f.quota.recordings)
	assert.Equal(t, []string{"pay-1"}, f.payments.released)
	assert.Empty(t, f.store.pending)
}

func TestDeploySplitFailure(t *testing.T) {
	f := newFixture()
	f.splits.err = errors.New("splits down")

	_, err := f.orch.Deploy(context.Background(), &DeployRequest{Name: "X", Symbol: "X"}, testIdentity())
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CategoryDependencyFailure))
	assert.Zero(t, f.gateway.calls)
	assert.Empty(t, f.store.pending)
}

func TestDeployPersistFailureKeepsJournal(t *testing.T) {
	f := newFixture()
	f.store.createTokenErr = errors.New("db down")

	_, err := f.orch.Deploy(context.Background(), &DeployRequest{Name: "X", Symbol: "X"}, testIdentity())
	require.Error(t, err)

	// The journal entry survives with the contract and split addresses
	// so the reconciler can repair the gap.
	require.Len(t, f.store.pending, 1)
	for _, p := range f.store.pending {
		assert.Equal(t, testContract, p.ContractAddress)
		assert.Equal(t, testSplit, p.SplitAddress)
	}
	assert.Zero(t, f.quota.recordings)
}

func TestDeployAttributionFailureDoesNotFailDeploy(t *testing.T) {
	f := newFixture()

	minted, err := f.orch.Deploy(context.Background(), &DeployRequest{
		Name: "X", Symbol: "X",
		// No original post, so attribution is skipped entirely.
	}, testIdentity())
	require.NoError(t, err)
	assert.Equal(t, testContract, minted.ContractAddress)
	assert.Empty(t, f.memathon.calls)
}

func TestDeployPaidCreationRecordsPaid(t *testing.T) {
	f := newFixture()
	f.quota.check = limits.CheckResult{CanCreate: true, RequiresPayment: true}

	_, err := f.orch.Deploy(context.Background(), &DeployRequest{
		Name: "X", Symbol: "X", PaymentID: "pay-1",
	}, testIdentity())
	require.NoError(t, err)
	assert.Equal(t, 1, f.quota.paidCount)
}

func TestClaim(t *testing.T) {
	f := newFixture()

	_, err := f.orch.Deploy(context.Background(), &DeployRequest{
		Name: "X", Symbol: "X", InfluencerTwitter: "influencer",
	}, testIdentity())
	require.NoError(t, err)

	claimer := &auth.Identity{
		UserID:          "user-2",
		WalletAddress:   "0x4444444444444444444444444444444444444444",
		TwitterUsername: "influencer",
		EmailVerified:   true,
	}
	claimed, err := f.orch.Claim(context.Background(), testContract, claimer)
	require.NoError(t, err)
	assert.False(t, claimed.Unclaimed)
	assert.Equal(t, "0x4444444444444444444444444444444444444444", claimed.InfluencerAddress)

	// A second claim finds nothing to flip.
	_, err = f.orch.Claim(context.Background(), testContract, claimer)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CategoryDataConflict))
}

func TestClaimWrongTwitterHandle(t *testing.T) {
	f := newFixture()

	_, err := f.orch.Deploy(context.Background(), &DeployRequest{
		Name: "X", Symbol: "X", InfluencerTwitter: "influencer",
	}, testIdentity())
	require.NoError(t, err)

	imposter := &auth.Identity{
		UserID:          "user-3",
		WalletAddress:   "0x5555555555555555555555555555555555555555",
		TwitterUsername: "someone_else",
		EmailVerified:   true,
	}
	_, err = f.orch.Claim(context.Background(), testContract, imposter)
	require.Error(t, err)
}
