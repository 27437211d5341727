// Package clanker is a thin client for the external token deployment
// service. It submits deploy requests and reports the resulting contract
// address; it performs no retries.
package clanker

import (
	"errors"
	"time"

	"github.com/creasty/defaults"
)

// Config contains the settings required to reach the deployment service.
type Config struct {
	BaseURL        string
	APIKey         string
	RequestTimeout time.Duration `default:"45s"`
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
	if cfg.APIKey == "" {
		return errors.New("API key is required")
	}
	return nil
}
