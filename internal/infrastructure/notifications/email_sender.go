package notifications

import (
	"context"
	"fmt"
	"log"
	"net/smtp"
	"time"

	"github.com/waitwell/edflow/backend/pkg/config"
	"github.com/waitwell/edflow/backend/pkg/retry"
)

// EmailSender delivers status-sharing emails over SMTP.
type EmailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPSender is the production EmailSender implementation.
type SMTPSender struct {
	cfg  config.SMTPConfig
	send func(addr string, auth smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPSender creates a new SMTP email sender
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{
		cfg:  cfg,
		send: smtp.SendMail,
	}
}

// Send delivers one email with a short retry; transient SMTP failures
// are common enough that a single attempt drops too much mail.
func (s *SMTPSender) Send(ctx context.Context, to, subject, body string) error {
	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n%s\r\n",
		s.cfg.From, to, subject, body,
	))

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)

	retryConfig := retry.DefaultConfig()
	retryConfig.MaxAttempts = 3

	err := retry.DoWithLog(
		ctx,
		retryConfig,
		"SMTP",
		func() error {
			return s.send(s.cfg.SMTPAddr(), auth, s.cfg.From, []string{to}, msg)
		},
		func(attempt int, err error, nextDelay time.Duration) {
			log.Printf("Email delivery attempt %d to %s failed: %v. Retrying in %v...", attempt, to, err, nextDelay)
		},
	)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}
