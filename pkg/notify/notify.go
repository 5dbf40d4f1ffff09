// Package notify sends transactional email, best-effort. Every message is
// written to the emails outbox table first, then handed to the configured
// sender; the outbox row records the delivery outcome.
package notify

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/gsdclabs/gsdc-backend/pkg/config"
)

// Delivery states recorded on the outbox row.
const (
	StatusPending = "pending"
	StatusSent    = "sent"
	StatusFailed  = "failed"
)

// Message is one transactional email.
type Message struct {
	To      string
	Type    string
	Subject string
	HTML    string
	Data    map[string]any
}

// Sender delivers a message over one transport.
type Sender interface {
	Send(ctx context.Context, from string, msg *Message) error
}

// Store persists outbox rows.
type Store interface {
	CreateEmail(ctx context.Context, email *Email) error
	UpdateEmailStatus(ctx context.Context, id int64, status string, sentAt *time.Time) error
}

// Email is an outbox row.
type Email struct {
	ID        int64
	To        string
	From      string
	Subject   string
	HTML      string
	Status    string
	SentAt    *time.Time
	CreatedAt time.Time
}

// Service writes the outbox row and attempts delivery.
type Service struct {
	store  Store
	sender Sender
	from   string
	logger *zap.Logger
}

// NewService creates the notification service with the sender selected by
// the notification mode.
func NewService(store Store, sender Sender, cfg *config.NotificationConfig, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		sender: sender,
		from:   cfg.FromAddress,
		logger: logger,
	}
}

// NewSender builds the sender for the configured delivery mode.
func NewSender(cfg *config.NotificationConfig, logger *zap.Logger) Sender {
	switch cfg.Mode {
	case "http":
		return NewHTTPSender(cfg.EndpointURL, logger)
	case "smtp":
		return NewSMTPSender(&cfg.SMTP, logger)
	default:
		return NewLogSender(logger)
	}
}

// SendKYCDecision emails the user about a review outcome. Failures are
// recorded on the outbox row and returned for the caller to log; the
// review workflow treats them as best-effort.
func (s *Service) SendKYCDecision(ctx context.Context, to string, approved bool, reason string) error {
	if to == "" {
		return fmt.Errorf("no recipient address on file")
	}

	msg := kycDecisionMessage(to, approved, reason)

	email := &Email{
		To:      msg.To,
		From:    s.from,
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Status:  StatusPending,
	}
	if err := s.store.CreateEmail(ctx, email); err != nil {
		return fmt.Errorf("failed to record outbox row: %w", err)
	}

	if err := s.sender.Send(ctx, s.from, msg); err != nil {
		if updateErr := s.store.UpdateEmailStatus(ctx, email.ID, StatusFailed, nil); updateErr != nil {
			s.logger.Warn("Failed to mark email failed", zap.Int64("email_id", email.ID), zap.Error(updateErr))
		}
		return fmt.Errorf("failed to deliver email: %w", err)
	}

	now := time.Now().UTC()
	if err := s.store.UpdateEmailStatus(ctx, email.ID, StatusSent, &now); err != nil {
		s.logger.Warn("Failed to mark email sent", zap.Int64("email_id", email.ID), zap.Error(err))
	}
	return nil
}

func kycDecisionMessage(to string, approved bool, reason string) *Message {
	if approved {
		return &Message{
			To:      to,
			Type:    "kyc_approved",
			Subject: "Your identity verification was approved",
			HTML:    "<p>Your KYC verification has been approved. You can now mint GSDC.</p>",
			Data:    map[string]any{},
		}
	}
	return &Message{
		To:      to,
		Type:    "kyc_rejected",
		Subject: "Your identity verification was rejected",
		HTML:    fmt.Sprintf("<p>Your KYC verification was rejected.</p><p>Reason: %s</p>", reason),
		Data:    map[string]any{"reason": reason},
	}
}

// logSender only records the attempt; used when no delivery transport is
// configured (development, tests).
type logSender struct {
	logger *zap.Logger
}

// NewLogSender creates a sender that logs instead of delivering.
func NewLogSender(logger *zap.Logger) Sender {
	return &logSender{logger: logger}
}

func (s *logSender) Send(_ context.Context, from string, msg *Message) error {
	s.logger.Info("Email delivery skipped (log mode)",
		zap.String("from", from),
		zap.String("to", msg.To),
		zap.String("type", msg.Type),
		zap.String("subject", msg.Subject))
	return nil
}
