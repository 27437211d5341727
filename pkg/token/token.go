// Package token holds the minted token records and the pending-deploy
// journal the orchestrator and the reconciler share.
package token

import "time"

// Token is one minted meme coin. The contract address is assigned by the
// deployment service and never changes.
type Token struct {
	ContractAddress   string            `json:"contract_address"`
	Name              string            `json:"name"`
	Symbol            string            `json:"symbol"`
	OwnerTwitter      string            `json:"owner_twitter,omitempty"`
	OwnerAddress      string            `json:"owner_address"`
	InfluencerTwitter string            `json:"influencer_twitter,omitempty"`
	InfluencerAddress string            `json:"influencer_address,omitempty"`
	Unclaimed         bool              `json:"unclaimed"`
	OriginalPost      string            `json:"original_post,omitempty"`
	GeneratedImage    string            `json:"generated_image,omitempty"`
	GeneratedCaption  string            `json:"generated_caption,omitempty"`
	SplitAddress      string            `json:"split_address,omitempty"`
	TweetURL          string            `json:"tweet_url,omitempty"`
	Metadata          map[string]string `json:"metadata,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
}

// PendingDeploy is a journal entry written before the deployment service
// is called and cleared once the token row lands. Entries that outlive the
// grace period with a known contract address mark an on-chain token the
// database missed.
type PendingDeploy struct {
	AttemptID       string
	UserID          string
	Name            string
	Symbol          string
	OwnerAddress    string
	OriginalPost    string
	SplitAddress    string
	ContractAddress string
	CreatedAt       time.Time
}
