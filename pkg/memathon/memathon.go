// Package memathon links minted tokens back to sponsored tweets for the
// recurring meme-creation contest, and tracks participant scoring.
package memathon

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

// tweetIDPattern extracts the numeric status ID from a tweet URL.
var tweetIDPattern = regexp.MustCompile(`status/(\d+)`)

// ExtractTweetID returns the tweet ID embedded in a post URL, or "" when
// the URL carries none.
func ExtractTweetID(postURL string) string {
	m := tweetIDPattern.FindStringSubmatch(postURL)
	if m == nil {
		return ""
	}
	return m[1]
}

// TweetStats counts the activity attributed to one sponsored tweet.
type TweetStats struct {
	Coins        int `json:"coins"`
	Participants int `json:"participants"`
}

// SponsoredTweet is an admin-created campaign entry tokens can be
// attributed to.
type SponsoredTweet struct {
	ID             string     `json:"id"`
	TweetID        string     `json:"tweet_id"`
	SponsorName    string     `json:"sponsor_name"`
	Category       string     `json:"category"`
	MemathonSeason int        `json:"memathon_season"`
	Priority       int        `json:"priority"`
	IsActive       bool       `json:"is_active"`
	Stats          TweetStats `json:"stats"`
	CreatedAt      time.Time  `json:"created_at"`
}

// MemathonParticipant links one attributed token creation to a sponsored
// tweet. WinnerScore is recalculated by an external scoring job.
type MemathonParticipant struct {
	ID                   string          `json:"id"`
	UserID               string          `json:"user_id"`
	SponsoredTweetID     string          `json:"sponsored_tweet_id"`
	TokenContractAddress string          `json:"token_contract_address"`
	WinnerScore          float64         `json:"winner_score"`
	InitialMarketCap     decimal.Decimal `json:"initial_market_cap"`
	CurrentMarketCap     decimal.Decimal `json:"current_market_cap"`
	IsWinner             bool            `json:"is_winner"`
	CreatedAt            time.Time       `json:"created_at"`
}
