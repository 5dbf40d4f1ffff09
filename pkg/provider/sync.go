package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReviewEvent describes a manual review outcome to replay to the
// provider's webhook receiver.
type ReviewEvent struct {
	UserAddress  string
	ApplicantID  string
	InspectionID string
	Approved     bool
	Reason       string
}

// WebhookPayload is the fixed JSON shape the provider would have sent for
// an automated review. Downstream consumers of the provider's webhook
// need no special-casing for manually-reviewed users.
type WebhookPayload struct {
	ApplicantID       string       `json:"applicantId"`
	InspectionID      string       `json:"inspectionId"`
	CorrelationID     string       `json:"correlationId"`
	ExternalUserID    string       `json:"externalUserId"`
	LevelName         string       `json:"levelName"`
	Type              string       `json:"type"`
	ReviewResult      ReviewResult `json:"reviewResult"`
	ReviewStatus      string       `json:"reviewStatus"`
	ModerationComment string       `json:"moderationComment,omitempty"`
	CreatedAtMs       int64        `json:"createdAtMs"`
}

// ReviewResult carries the provider's verdict.
type ReviewResult struct {
	ReviewAnswer string `json:"reviewAnswer"`
}

// WebhookEvent is an inbound applicant-reviewed event from the provider.
type WebhookEvent struct {
	ApplicantID       string       `json:"applicantId"`
	InspectionID      string       `json:"inspectionId"`
	ExternalUserID    string       `json:"externalUserId"`
	Type              string       `json:"type"`
	ReviewResult      ReviewResult `json:"reviewResult"`
	ReviewStatus      string       `json:"reviewStatus"`
	ModerationComment string       `json:"moderationComment"`
	RawPayload        []byte       `json:"-"`
}

// EventTypeApplicantReviewed is the only inbound event type the backend acts on.
const EventTypeApplicantReviewed = "applicantReviewed"

// Synchronizer replays manual review outcomes as synthetic provider
// webhook events so all systems agree on the outcome.
type Synchronizer struct {
	webhookURL string
	levelName  string
	http       *http.Client
	logger     *zap.Logger

	now func() time.Time
}

// NewSynchronizer creates a webhook synchronizer. A nil return means no
// webhook URL is configured and replay is disabled.
func NewSynchronizer(webhookURL, levelName string, timeout time.Duration, logger *zap.Logger) *Synchronizer {
	if levelName == "" {
		levelName = "id-and-liveness"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Synchronizer{
		webhookURL: webhookURL,
		levelName:  levelName,
		http:       &http.Client{Timeout: timeout},
		logger:     logger,
		now:        time.Now,
	}
}

// Replay posts a synthetic applicant-reviewed event for the outcome.
// Identifiers are synthesized when the record has none, since no real
// provider-side applicant exists for manual review. The caller treats any
// error as best-effort: logged, never fatal.
func (s *Synchronizer) Replay(ctx context.Context, ev *ReviewEvent) error {
	if s.webhookURL == "" {
		return fmt.Errorf("webhook URL not configured")
	}

	nowMs := s.now().UnixMilli()
	payload := &WebhookPayload{
		ApplicantID:    ev.ApplicantID,
		InspectionID:   ev.InspectionID,
		CorrelationID:  fmt.Sprintf("req-%d-%s", nowMs, randomSuffix()),
		ExternalUserID: strings.ToLower(ev.UserAddress),
		LevelName:      s.levelName,
		Type:           EventTypeApplicantReviewed,
		ReviewStatus:   "completed",
		CreatedAtMs:    nowMs,
	}
	if payload.ApplicantID == "" {
		payload.ApplicantID = syntheticID(nowMs)
	}
	if payload.InspectionID == "" {
		payload.InspectionID = syntheticID(nowMs)
	}
	if ev.Approved {
		payload.ReviewResult.ReviewAnswer = "GREEN"
	} else {
		payload.ReviewResult.ReviewAnswer = "RED"
		payload.ModerationComment = ev.Reason
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("webhook replay failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook replay returned status %d", resp.StatusCode)
	}

	s.logger.Debug("Webhook replay delivered",
		zap.String("external_user_id", payload.ExternalUserID),
		zap.String("review_answer", payload.ReviewResult.ReviewAnswer))
	return nil
}

// syntheticID builds a manual-review identifier: timestamp plus a random
// suffix, since no provider-side applicant exists.
func syntheticID(nowMs int64) string {
	return fmt.Sprintf("manual-%d-%s", nowMs, randomSuffix())
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
