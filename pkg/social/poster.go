// Package social posts token launch announcements. Posting is best-effort:
// callers log failures and move on.
package social

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Announcement describes a freshly launched token.
type Announcement struct {
	TokenName       string `json:"token_name"`
	TokenSymbol     string `json:"token_symbol"`
	ContractAddress string `json:"contract_address"`
	OriginalPostURL string `json:"original_post_url,omitempty"`
	CreatorUsername string `json:"creator_username,omitempty"`
}

// Poster publishes launch announcements.
type Poster interface {
	Post(ctx context.Context, a Announcement) error
}

// HTTPPoster posts announcements through a relay service.
type HTTPPoster struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHTTPPoster creates a poster backed by the relay at baseURL.
func NewHTTPPoster(baseURL string, logger *zap.Logger) *HTTPPoster {
	return &HTTPPoster{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

func (p *HTTPPoster) Post(ctx context.Context, a Announcement) error {
	body, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to encode announcement: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/announce", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build announcement request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("announcement request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("announcement rejected (status %d)", resp.StatusCode)
	}

	p.logger.Debug("Launch announcement posted", zap.String("symbol", a.TokenSymbol))
	return nil
}

// NopPoster discards announcements. Used when social posting is disabled.
type NopPoster struct{}

func (NopPoster) Post(context.Context, Announcement) error { return nil }
