// Package minting calls the credential-minting service that issues the
// verification NFT after a manual approval.
package minting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/gsdclabs/gsdc-backend/pkg/config"
)

// Client posts mint-credential requests to the minting service. Calls are
// best-effort from the review workflow's perspective.
type Client struct {
	url    string
	secret string
	http   *http.Client
	logger *zap.Logger
}

// NewClient creates a minting service client.
func NewClient(cfg *config.MintingConfig, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		url:    cfg.URL,
		secret: cfg.Secret,
		http:   &http.Client{Timeout: timeout},
		logger: logger,
	}
}

type mintRequest struct {
	Address string `json:"address"`
	Secret  string `json:"secret"`
}

// MintCredential asks the minting service to issue the verification
// credential to the address. The shared secret gates the call.
func (c *Client) MintCredential(ctx context.Context, address string) error {
	if c.url == "" {
		return fmt.Errorf("minting service not configured")
	}

	body, err := json.Marshal(&mintRequest{Address: address, Secret: c.secret})
	if err != nil {
		return fmt.Errorf("failed to marshal mint request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build mint request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("mint request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("mint request returned status %d", resp.StatusCode)
	}

	c.logger.Debug("Credential mint requested", zap.String("address", address))
	return nil
}
