package memathon

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// SponsoredTweetDao maps to the 'sponsored_tweets' table in PostgreSQL.
type SponsoredTweetDao struct {
	bun.BaseModel     `bun:"table:sponsored_tweets,alias:st"`
	ID                string    `bun:"id,pk,type:uuid"`
	TweetID           string    `bun:"tweet_id,unique,notnull,type:varchar(32)"`
	SponsorName       string    `bun:"sponsor_name,notnull,type:varchar(128)"`
	Category          string    `bun:"category,notnull,type:varchar(64)"`
	MemathonSeason    int       `bun:"memathon_season,notnull"`
	Priority          int       `bun:"priority,notnull,default:0"`
	IsActive          bool      `bun:"is_active,notnull,default:true"`
	StatsCoins        int       `bun:"stats_coins,notnull,default:0"`
	StatsParticipants int       `bun:"stats_participants,notnull,default:0"`
	CreatedAt         time.Time `bun:"created_at,nullzero,default:current_timestamp"`
	UpdatedAt         time.Time `bun:"updated_at,nullzero,default:current_timestamp"`
}

// MemathonParticipantDao maps to the 'memathon_participants' table.
type MemathonParticipantDao struct {
	bun.BaseModel        `bun:"table:memathon_participants,alias:mp"`
	ID                   string          `bun:"id,pk,type:uuid"`
	UserID               string          `bun:"user_id,notnull,type:varchar(128)"`
	SponsoredTweetID     string          `bun:"sponsored_tweet_id,notnull,type:uuid"`
	TokenContractAddress string          `bun:"token_contract_address,notnull,type:varchar(42)"`
	WinnerScore          float64         `bun:"winner_score,notnull,default:0"`
	InitialMarketCap     decimal.Decimal `bun:"initial_market_cap,notnull,type:numeric(30,10)"`
	CurrentMarketCap     decimal.Decimal `bun:"current_market_cap,notnull,type:numeric(30,10)"`
	IsWinner             bool            `bun:"is_winner,notnull,default:false"`
	CreatedAt            time.Time       `bun:"created_at,nullzero,default:current_timestamp"`
	UpdatedAt            time.Time       `bun:"updated_at,nullzero,default:current_timestamp"`
}

func toSponsoredTweetDao(t *SponsoredTweet) *SponsoredTweetDao {
	return &SponsoredTweetDao{
		ID:                t.ID,
		TweetID:           t.TweetID,
		SponsorName:       t.SponsorName,
		Category:          t.Category,
		MemathonSeason:    t.MemathonSeason,
		Priority:          t.Priority,
		IsActive:          t.IsActive,
		StatsCoins:        t.Stats.Coins,
		StatsParticipants: t.Stats.Participants,
	}
}

func toSponsoredTweet(dao *SponsoredTweetDao) *SponsoredTweet {
	return &SponsoredTweet{
		ID:             dao.ID,
		TweetID:        dao.TweetID,
		SponsorName:    dao.SponsorName,
		Category:       dao.Category,
		MemathonSeason: dao.MemathonSeason,
		Priority:       dao.Priority,
		IsActive:       dao.IsActive,
		Stats: TweetStats{
			Coins:        dao.StatsCoins,
			Participants: dao.StatsParticipants,
		},
		CreatedAt: dao.CreatedAt,
	}
}

func toParticipantDao(p *MemathonParticipant) *MemathonParticipantDao {
	return &MemathonParticipantDao{
		ID:                   p.ID,
		UserID:               p.UserID,
		SponsoredTweetID:     p.SponsoredTweetID,
		TokenContractAddress: p.TokenContractAddress,
		WinnerScore:          p.WinnerScore,
		InitialMarketCap:     p.InitialMarketCap,
		CurrentMarketCap:     p.CurrentMarketCap,
		IsWinner:             p.IsWinner,
	}
}

func toParticipant(dao *MemathonParticipantDao) *MemathonParticipant {
	return &MemathonParticipant{
		ID:                   dao.ID,
		UserID:               dao.UserID,
		SponsoredTweetID:     dao.SponsoredTweetID,
		TokenContractAddress: dao.TokenContractAddress,
		WinnerScore:          dao.WinnerScore,
		InitialMarketCap:     dao.InitialMarketCap,
		CurrentMarketCap:     dao.CurrentMarketCap,
		IsWinner:             dao.IsWinner,
		CreatedAt:            dao.CreatedAt,
	}
}
