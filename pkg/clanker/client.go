package clanker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/attnlabs/viral-middleware/internal/metrics"
)

// Client talks to the deployment service REST API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a deployment service client.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid clanker config: %w", err)
	}
	s := applyOptions(opts)
	return &Client{
		cfg:        cfg,
		httpClient: s.httpClient,
		logger:     s.logger,
	}, nil
}

// DeployParams describes the token to deploy.
type DeployParams struct {
	Name            string `json:"name"`
	Symbol          string `json:"symbol"`
	ImageURL        string `json:"image,omitempty"`
	RequestorAddr   string `json:"requestorAddress"`
	RewardRecipient string `json:"rewardRecipient"`
	OriginalPostURL string `json:"socialMediaUrls,omitempty"`
	Description     string `json:"description,omitempty"`
}

// DeployResult is the service's answer to a successful deploy.
type DeployResult struct {
	ContractAddress   string          `json:"contractAddress"`
	TransactionHash   string          `json:"transactionHash"`
	PoolAddress       string          `json:"poolAddress"`
	StartingMarketCap decimal.Decimal `json:"startingMarketCap"`
}

type deployError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// DeployToken submits a deploy request and waits for the contract address.
// The call is bounded by the configured request timeout; the caller decides
// what to do when the deadline is hit before an answer arrives.
func (c *Client) DeployToken(ctx context.Context, params DeployParams) (*DeployResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	body, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode deploy request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/tokens/deploy", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build deploy request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.cfg.APIKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.GatewayRequestDuration.WithLabelValues("deploy").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("deploy request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read deploy response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var derr deployError
		if json.Unmarshal(raw, &derr) == nil && (derr.Message != "" || derr.Error != "") {
			msg := derr.Message
			if msg == "" {
				msg = derr.Error
			}
			return nil, fmt.Errorf("deploy rejected (status %d): %s", resp.StatusCode, msg)
		}
		return nil, fmt.Errorf("deploy rejected (status %d)", resp.StatusCode)
	}

	var result DeployResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("failed to decode deploy response: %w", err)
	}
	if result.ContractAddress == "" {
		return nil, fmt.Errorf("deploy response missing contract address")
	}

	c.logger.Info("Token deployed",
		zap.String("symbol", params.Symbol),
		zap.String("contract_address", result.ContractAddress))
	return &result, nil
}
