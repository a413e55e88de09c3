package mailer

import (
	"context"
	"fmt"

	"task-notifier/config"
	"task-notifier/pkg/logger"

	"github.com/go-resty/resty/v2"
)

// GatewaySender delivers messages through an HTTP mail gateway.
type GatewaySender struct {
	client *resty.Client
	from   string
	log    *logger.Logger
}

type gatewayMessage struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func NewGatewaySender(cfg *config.Mailer, log *logger.Logger) (*GatewaySender, error) {
	if cfg.GatewayURL == "" {
		return nil, fmt.Errorf("mailer gateway URL is not configured")
	}
	if cfg.FromAddress == "" {
		return nil, fmt.Errorf("mailer from address is not configured")
	}

	client := resty.New().
		SetBaseURL(cfg.GatewayURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json").
		SetAuthToken(cfg.GatewayToken)

	return &GatewaySender{
		client: client,
		from:   cfg.FromAddress,
		log:    log,
	}, nil
}

func (s *GatewaySender) Send(ctx context.Context, to, subject, body string) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(gatewayMessage{
			From:    s.from,
			To:      to,
			Subject: subject,
			Body:    body,
		}).
		Post("/messages")
	if err != nil {
		return fmt.Errorf("mail gateway request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("mail gateway returned status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}
