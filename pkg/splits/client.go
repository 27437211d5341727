// Package splits generates fee split wallets that route token rewards
// between the platform, the creator, and an optional influencer.
package splits

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/creasty/defaults"
	"go.uber.org/zap"

	"github.com/attnlabs/viral-middleware/internal/metrics"
)

// Config contains the settings required to reach the splits service.
type Config struct {
	BaseURL        string
	PlatformWallet string
	RequestTimeout time.Duration `default:"30s"`
}

func (cfg *Config) validate() error {
	if cfg == nil {
		return errors.New("nil config")
	}
	if err := defaults.Set(cfg); err != nil {
		return err
	}
	if cfg.BaseURL == "" {
		return errors.New("base URL is required")
	}
	if cfg.PlatformWallet == "" {
		return errors.New("platform wallet is required")
	}
	return nil
}

// Client talks to the splits service REST API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures client settings.
type Option func(*Client)

// WithLogger sets a custom logger for the client.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a splits service client.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid splits config: %w", err)
	}
	c := &Client{
		cfg:        cfg,
		httpClient: http.DefaultClient,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

type generateRequest struct {
	PlatformWallet    string `json:"platformWallet"`
	CreatorWallet     string `json:"creatorWallet"`
	InfluencerAddress string `json:"influencerAddress,omitempty"`
}

type generateResponse struct {
	SplitAddress string `json:"splitAddress"`
}

// Generate creates a split wallet routing rewards between the platform,
// the creator, and an optional influencer. Called once per deploy attempt.
func (c *Client) Generate(ctx context.Context, creatorWallet, influencerAddress string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	body, err := json.Marshal(&generateRequest{
		PlatformWallet:    c.cfg.PlatformWallet,
		CreatorWallet:     creatorWallet,
		InfluencerAddress: influencerAddress,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode split request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/splits/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build split request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.GatewayRequestDuration.WithLabelValues("split_generate").Observe(time.Since(start).Seconds())
	if err != nil {
		return "", fmt.Errorf("split request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return "", fmt.Errorf("failed to read split response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("split generation rejected (status %d)", resp.StatusCode)
	}

	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("failed to decode split response: %w", err)
	}
	if out.SplitAddress == "" {
		return "", fmt.Errorf("split response missing address")
	}

	c.logger.Debug("Split wallet generated", zap.String("split_address", out.SplitAddress))
	return out.SplitAddress, nil
}
