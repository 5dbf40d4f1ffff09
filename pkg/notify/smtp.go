package notify

import (
	"context"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/gsdclabs/gsdc-backend/pkg/config"
)

// smtpSender delivers directly over SMTP.
type smtpSender struct {
	dialer *gomail.Dialer
	logger *zap.Logger
}

// NewSMTPSender creates a sender that delivers via the configured SMTP relay.
func NewSMTPSender(cfg *config.SMTPConfig, logger *zap.Logger) Sender {
	return &smtpSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		logger: logger,
	}
}

func (s *smtpSender) Send(_ context.Context, from string, msg *Message) error {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)

	return s.dialer.DialAndSend(m)
}
