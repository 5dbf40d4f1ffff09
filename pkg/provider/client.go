// Package provider integrates with the third-party identity-verification
// service: the signed applicant-status API and the webhook synchronizer
// that replays manual review outcomes.
package provider

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/creasty/defaults"
	"go.uber.org/zap"
)

// ClientConfig holds the applicant-API client settings.
type ClientConfig struct {
	BaseURL   string
	AppToken  string
	SecretKey string
	LevelName string        `default:"id-and-liveness"`
	Timeout   time.Duration `default:"15s"`
}

// ApplicantStatus is the slice of the provider's status response the
// backend consumes.
type ApplicantStatus struct {
	ReviewStatus string       `json:"reviewStatus"`
	ReviewResult ReviewResult `json:"reviewResult"`
	LevelName    string       `json:"levelName"`
	CreateDate   string       `json:"createDate"`
}

// Completed reports whether the provider finished reviewing the applicant.
func (s *ApplicantStatus) Completed() bool {
	return s.ReviewStatus == "completed"
}

// Approved reports whether the review completed with a GREEN answer.
func (s *ApplicantStatus) Approved() bool {
	return s.Completed() && s.ReviewResult.ReviewAnswer == "GREEN"
}

// Client talks to the provider's applicant API with HMAC request signing.
type Client struct {
	cfg    ClientConfig
	http   *http.Client
	logger *zap.Logger

	now func() time.Time
}

// NewClient creates a provider API client, applying config defaults.
func NewClient(cfg ClientConfig, logger *zap.Logger) (*Client, error) {
	if err := defaults.Set(&cfg); err != nil {
		return nil, fmt.Errorf("failed to apply provider client defaults: %w", err)
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("provider base URL is required")
	}

	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
		now:    time.Now,
	}, nil
}

// GetApplicantStatus fetches the current review status for an applicant.
func (c *Client) GetApplicantStatus(ctx context.Context, applicantID string) (*ApplicantStatus, error) {
	if applicantID == "" {
		return nil, fmt.Errorf("applicant id is required")
	}

	path := "/resources/applicants/" + applicantID + "/status"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build applicant status request: %w", err)
	}
	c.sign(req, path, nil)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("applicant status request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read applicant status response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("applicant status request returned %d: %s", resp.StatusCode, string(body))
	}

	var status ApplicantStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, fmt.Errorf("failed to decode applicant status: %w", err)
	}
	return &status, nil
}

// sign attaches the provider's HMAC-SHA256 request signature headers:
// the signature covers ts + method + path + body.
func (c *Client) sign(req *http.Request, path string, body []byte) {
	ts := strconv.FormatInt(c.now().Unix(), 10)

	mac := hmac.New(sha256.New, []byte(c.cfg.SecretKey))
	mac.Write([]byte(ts))
	mac.Write([]byte(req.Method))
	mac.Write([]byte(path))
	mac.Write(body)

	req.Header.Set("X-App-Token", c.cfg.AppToken)
	req.Header.Set("X-App-Access-Ts", ts)
	req.Header.Set("X-App-Access-Sig", hex.EncodeToString(mac.Sum(nil)))
	req.Header.Set("Accept", "application/json")
}
