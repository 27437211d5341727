package token

import (
	"time"

	"github.com/uptrace/bun"
)

// TokenDao maps to the 'tokens' table in PostgreSQL.
type TokenDao struct {
	bun.BaseModel     `bun:"table:tokens,alias:t"`
	ID                int64             `bun:"id,pk,autoincrement"`
	ContractAddress   string            `bun:"contract_address,unique,notnull,type:varchar(42)"`
	Name              string            `bun:"name,notnull,type:varchar(128)"`
	Symbol            string            `bun:"symbol,notnull,type:varchar(32)"`
	OwnerTwitter      *string           `bun:"owner_twitter,type:varchar(64)"`
	OwnerAddress      string            `bun:"owner_address,notnull,type:varchar(42)"`
	InfluencerTwitter *string           `bun:"influencer_twitter,type:varchar(64)"`
	InfluencerAddress *string           `bun:"influencer_address,type:varchar(42)"`
	Unclaimed         bool              `bun:"unclaimed,notnull,default:false"`
	OriginalPost      *string           `bun:"original_post,type:text"`
	GeneratedImage    *string           `bun:"generated_image,type:text"`
	GeneratedCaption  *string           `bun:"generated_caption,type:text"`
	SplitAddress      *string           `bun:"split_address,type:varchar(42)"`
	TweetURL          *string           `bun:"tweet_url,type:text"`
	Metadata          map[string]string `bun:"metadata,type:jsonb"`
	CreatedAt         time.Time         `bun:"created_at,nullzero,default:current_timestamp"`
	UpdatedAt         time.Time         `bun:"updated_at,nullzero,default:current_timestamp"`
}

// PendingDeployDao maps to the 'pending_deploys' table.
type PendingDeployDao struct {
	bun.BaseModel   `bun:"table:pending_deploys,alias:pd"`
	AttemptID       string    `bun:"attempt_id,pk,type:uuid"`
	UserID          string    `bun:"user_id,notnull,type:varchar(128)"`
	Name            string    `bun:"name,notnull,type:varchar(128)"`
	Symbol          string    `bun:"symbol,notnull,type:varchar(32)"`
	OwnerAddress    string    `bun:"owner_address,notnull,type:varchar(42)"`
	OriginalPost    *string   `bun:"original_post,type:text"`
	SplitAddress    *string   `bun:"split_address,type:varchar(42)"`
	ContractAddress *string   `bun:"contract_address,type:varchar(42)"`
	CreatedAt       time.Time `bun:"created_at,nullzero,default:current_timestamp"`
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func strVal(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func toTokenDao(t *Token) *TokenDao {
	return &TokenDao{
		ContractAddress:   t.ContractAddress,
		Name:              t.Name,
		Symbol:            t.Symbol,
		OwnerTwitter:      strPtr(t.OwnerTwitter),
		OwnerAddress:      t.OwnerAddress,
		InfluencerTwitter: strPtr(t.InfluencerTwitter),
		InfluencerAddress: strPtr(t.InfluencerAddress),
		Unclaimed:         t.Unclaimed,
		OriginalPost:      strPtr(t.OriginalPost),
		GeneratedImage:    strPtr(t.GeneratedImage),
		GeneratedCaption:  strPtr(t.GeneratedCaption),
		SplitAddress:      strPtr(t.SplitAddress),
		TweetURL:          strPtr(t.TweetURL),
		Metadata:          t.Metadata,
	}
}

func toToken(dao *TokenDao) *Token {
	return &Token{
		ContractAddress:   dao.ContractAddress,
		Name:              dao.Name,
		Symbol:            dao.Symbol,
		OwnerTwitter:      strVal(dao.OwnerTwitter),
		OwnerAddress:      dao.OwnerAddress,
		InfluencerTwitter: strVal(dao.InfluencerTwitter),
		InfluencerAddress: strVal(dao.InfluencerAddress),
		Unclaimed:         dao.Unclaimed,
		OriginalPost:      strVal(dao.OriginalPost),
		GeneratedImage:    strVal(dao.GeneratedImage),
		GeneratedCaption:  strVal(dao.GeneratedCaption),
		SplitAddress:      strVal(dao.SplitAddress),
		TweetURL:          strVal(dao.TweetURL),
		Metadata:          dao.Metadata,
		CreatedAt:         dao.CreatedAt,
	}
}

func toPendingDeployDao(p *PendingDeploy) *PendingDeployDao {
	return &PendingDeployDao{
		AttemptID:       p.AttemptID,
		UserID:          p.UserID,
		Name:            p.Name,
		Symbol:          p.Symbol,
		OwnerAddress:    p.OwnerAddress,
		OriginalPost:    strPtr(p.OriginalPost),
		SplitAddress:    strPtr(p.SplitAddress),
		ContractAddress: strPtr(p.ContractAddress),
	}
}

func toPendingDeploy(dao *PendingDeployDao) *PendingDeploy {
	return &PendingDeploy{
		AttemptID:       dao.AttemptID,
		UserID:          dao.UserID,
		Name:            dao.Name,
		Symbol:          dao.Symbol,
		OwnerAddress:    dao.OwnerAddress,
		OriginalPost:    strVal(dao.OriginalPost),
		SplitAddress:    strVal(dao.SplitAddress),
		ContractAddress: strVal(dao.ContractAddress),
		CreatedAt:       dao.CreatedAt,
	}
}
