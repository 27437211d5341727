package memathon

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStore struct {
	tweets       map[string]*SponsoredTweet
	participants []*MemathonParticipant
}

func newFakeStore() *fakeStore {
	return &fakeStore{tweets: make(map[string]*SponsoredTweet)}
}

func (f *fakeStore) CreateSponsoredTweet(_ context.Context, t *SponsoredTweet) error {
	cp := *t
	f.tweets[t.ID] = &cp
	return nil
}

func (f *fakeStore) GetActiveByTweetID(_ context.Context, tweetID string) (*SponsoredTweet, error) {
	for _, t := range f.tweets {
		if t.TweetID == tweetID && t.IsActive {
			cp := *t
			return &cp, nil
		}
	}
	return nil, ErrSponsoredTweetNotFound
}

func (f *fakeStore) ListActive(_ context.Context, season int, category string) ([]*SponsoredTweet, error) {
	var out []*SponsoredTweet
	for _, t := range f.tweets {
		if !t.IsActive {
			continue
		}
		if season > 0 && t.MemathonSeason != season {
			continue
		}
		if category != "" && t.Category != category {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeStore) DeactivateSponsoredTweet(_ context.Context, id string) error {
	t, ok := f.tweets[id]
	if !ok {
		return ErrSponsoredTweetNotFound
	}
	t.IsActive = false
	return nil
}

func (f *fakeStore) CreateParticipant(_ context.Context, p *MemathonParticipant) error {
	cp := *p
	f.participants = append(f.participants, &cp)
	return nil
}

func (f *fakeStore) IncrementTweetStats(_ context.Context, sponsoredTweetID string) error {
	t, ok := f.tweets[sponsoredTweetID]
	if !ok {
		return ErrSponsoredTweetNotFound
	}
	t.Stats.Coins++
	t.Stats.Participants++
	return nil
}

func (f *fakeStore) Leaderboard(_ context.Context, season, limit int) ([]*MemathonParticipant, error) {
	out := f.participants
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeStore) MarkWinner(_ context.Context, participantID string) (bool, error) {
	for _, p := range f.participants {
		if p.ID == participantID && !p.IsWinner {
			p.IsWinner = true
			return true, nil
		}
	}
	return false, nil
}

func TestExtractTweetID(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://x.com/someone/status/1790000000000000001", "1790000000000000001"},
		{"https://twitter.com/someone/status/42?s=20", "42"},
		{"https://x.com/someone", ""},
		{"not a url", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtractTweetID(tt.url), "url %q", tt.url)
	}
}

func seedSponsored(t *testing.T, store *fakeStore, svc *Service, tweetID string) *SponsoredTweet {
	t.Helper()
	tweet, err := svc.CreateSponsoredTweet(context.Background(), CreateSponsoredTweetParams{
		TweetID:        tweetID,
		SponsorName:    "Acme",
		Category:       "animals",
		MemathonSeason: 3,
		Priority:       1,
	})
	require.NoError(t, err)
	return tweet
}

func TestAttribute(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, zap.NewNop())
	tweet := seedSponsored(t, store, svc, "1790000000000000001")

	mcap := decimal.NewFromInt(12500)
	err := svc.Attribute(context.Background(),
		"https://x.com/acme/status/1790000000000000001", "user-1", "0xdeadbeef", mcap)
	require.NoError(t, err)

	require.Len(t, store.participants, 1)
	p := store.participants[0]
	assert.Equal(t, "user-1", p.UserID)
	assert.Equal(t, tweet.ID, p.SponsoredTweetID)
	assert.Equal(t, "0xdeadbeef", p.TokenContractAddress)
	assert.True(t, mcap.Equal(p.InitialMarketCap))

	updated := store.tweets[tweet.ID]
	assert.Equal(t, 1, updated.Stats.Coins)
	assert.Equal(t, 1, updated.Stats.Participants)
}

func TestAttributeNoTweetID(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, zap.NewNop())
	seedSponsored(t, store, svc, "123")

	err := svc.Attribute(context.Background(), "https://example.com/blog", "user-1", "0xabc", decimal.Zero)
	require.NoError(t, err)
	assert.Empty(t, store.participants)
}

func TestAttributeUnsponsored(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, zap.NewNop())
	seedSponsored(t, store, svc, "123")

	err := svc.Attribute(context.Background(), "https://x.com/a/status/999", "user-1", "0xabc", decimal.Zero)
	require.NoError(t, err)
	assert.Empty(t, store.participants)
}

func TestAttributeInactiveSponsorship(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, zap.NewNop())
	tweet := seedSponsored(t, store, svc, "123")
	require.NoError(t, svc.Deactivate(context.Background(), tweet.ID))

	err := svc.Attribute(context.Background(), "https://x.com/a/status/123", "user-1", "0xabc", decimal.Zero)
	require.NoError(t, err)
	assert.Empty(t, store.participants)
}

func TestAttributeAllowsRepeatParticipation(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, zap.NewNop())
	tweet := seedSponsored(t, store, svc, "123")

	for _, contract := range []string{"0xaaa", "0xbbb"} {
		err := svc.Attribute(context.Background(), "https://x.com/a/status/123", "user-1", contract, decimal.Zero)
		require.NoError(t, err)
	}

	assert.Len(t, store.participants, 2)
	assert.Equal(t, 2, store.tweets[tweet.ID].Stats.Coins)
}

func TestSelectWinner(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, zap.NewNop())
	seedSponsored(t, store, svc, "123")

	require.NoError(t, svc.Attribute(context.Background(), "https://x.com/a/status/123", "user-1", "0xabc", decimal.Zero))
	participantID := store.participants[0].ID

	require.NoError(t, svc.SelectWinner(context.Background(), participantID))
	assert.True(t, store.participants[0].IsWinner)

	// Selecting the same winner twice reports not found.
	err := svc.SelectWinner(context.Background(), participantID)
	require.Error(t, err)
}

func TestSelectWinnerUnknownParticipant(t *testing.T) {
	svc := NewService(newFakeStore(), zap.NewNop())
	require.Error(t, svc.SelectWinner(context.Background(), "missing"))
}
