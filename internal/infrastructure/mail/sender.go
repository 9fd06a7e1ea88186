package mail

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"portfolio-cms/internal/config"
)

// Message is a single outbound email.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers email.
//
//go:generate mockgen -destination=mocks/mock_sender.go -package=mocks portfolio-cms/internal/infrastructure/mail Sender
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NewSender builds the Sender selected by cfg.Provider.
func NewSender(cfg config.MailConfig) (Sender, error) {
	switch cfg.Provider {
	case config.MailProviderSMTP:
		return NewSMTPSender(cfg.SMTP, cfg.From), nil
	case config.MailProviderResend:
		timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
		return NewResendSender(cfg.Resend, cfg.From, &http.Client{Timeout: timeout}), nil
	case config.MailProviderLog, "":
		return NewLogSender(), nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Provider)
	}
}
