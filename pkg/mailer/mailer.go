package mailer

import (
	"context"
	"fmt"

	"task-notifier/config"
	"task-notifier/pkg/logger"
)

// Sender is the transport capability: deliver a rendered message to one address.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// New selects a Sender implementation based on configuration.
func New(cfg *config.Mailer, log *logger.Logger) (Sender, error) {
	switch cfg.Mode {
	case config.MailerModeGateway:
		return NewGatewaySender(cfg, log)
	case config.MailerModeTelegram:
		return NewTelegramSender(cfg, log)
	default:
		return nil, fmt.Errorf("unknown mailer mode %q", cfg.Mode)
	}
}
