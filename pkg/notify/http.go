package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// httpSender posts {to, type, data} to the notification endpoint.
type httpSender struct {
	endpoint string
	http     *http.Client
	logger   *zap.Logger
}

// NewHTTPSender creates a sender backed by the HTTP notification endpoint.
func NewHTTPSender(endpoint string, logger *zap.Logger) Sender {
	return &httpSender{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 15 * time.Second},
		logger:   logger,
	}
}

type notificationRequest struct {
	To   string         `json:"to"`
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

func (s *httpSender) Send(ctx context.Context, _ string, msg *Message) error {
	body, err := json.Marshal(&notificationRequest{
		To:   msg.To,
		Type: msg.Type,
		Data: msg.Data,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("notification request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
