package mailer

import (
	"context"
	"fmt"
	"strconv"

	"task-notifier/config"
	"task-notifier/pkg/logger"

	"gopkg.in/telebot.v3"
)

// TelegramSender delivers messages as Telegram chat messages. The recipient
// address is the numeric chat id.
type TelegramSender struct {
	bot *telebot.Bot
	log *logger.Logger
}

func NewTelegramSender(cfg *config.Mailer, log *logger.Logger) (*TelegramSender, error) {
	if cfg.TelegramBotToken == "" {
		return nil, fmt.Errorf("telegram bot token is not configured")
	}

	bot, err := telebot.NewBot(telebot.Settings{
		Token: cfg.TelegramBotToken,
		OnError: func(err error, c telebot.Context) {
			log.Error("Telegram bot error", logger.ErrorField(err))
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	return &TelegramSender{bot: bot, log: log}, nil
}

func (s *TelegramSender) Send(ctx context.Context, to, subject, body string) error {
	chatID, err := strconv.ParseInt(to, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid telegram chat id %q: %w", to, err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	text := fmt.Sprintf("%s\n\n%s", subject, body)
	if _, err := s.bot.Send(&telebot.Chat{ID: chatID}, text); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}
