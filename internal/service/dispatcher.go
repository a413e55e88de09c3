package service

import (
	"context"
	"fmt"

	"task-notifier/config"
	"task-notifier/internal/model"
	"task-notifier/pkg/logger"
	"task-notifier/pkg/mailer"
	"task-notifier/pkg/ratelimit"
	"task-notifier/pkg/render"
)

// NotificationDispatcher renders and delivers one notification to one
// resolved recipient. A failed delivery is logged and returned, never
// escalated: the scheduler's fan-out continues with the next recipient.
type NotificationDispatcher interface {
	Dispatch(ctx context.Context, task *model.PeriodicTask, contact model.User) error
}

type notificationDispatcher struct {
	cfg      *config.Config
	log      *logger.Logger
	renderer *render.Registry
	sender   mailer.Sender
	limiter  *ratelimit.Limiter
}

func NewNotificationDispatcher(
	cfg *config.Config,
	log *logger.Logger,
	renderer *render.Registry,
	sender mailer.Sender,
	limiter *ratelimit.Limiter,
) (NotificationDispatcher, error) {
	if !renderer.Has(render.TemplateTaskReminder) {
		return nil, fmt.Errorf("template %q is not registered", render.TemplateTaskReminder)
	}
	return &notificationDispatcher{
		cfg:      cfg,
		log:      log,
		renderer: renderer,
		sender:   sender,
		limiter:  limiter,
	}, nil
}

// address picks the delivery address matching the configured transport.
func (d *notificationDispatcher) address(contact model.User) string {
	if d.cfg.Mailer.Mode == config.MailerModeTelegram {
		return contact.TelegramChatID
	}
	return contact.Email
}

func (d *notificationDispatcher) Dispatch(ctx context.Context, task *model.PeriodicTask, contact model.User) error {
	addr := d.address(contact)
	if addr == "" {
		err := fmt.Errorf("recipient %d has no delivery address for mode %q", contact.ID, d.cfg.Mailer.Mode)
		d.log.WarnContext(ctx, "Skipping recipient without address",
			logger.IntField("task_id", int(task.ID)),
			logger.IntField("recipient_id", int(contact.ID)),
		)
		return err
	}

	body, err := d.renderer.Render(render.TemplateTaskReminder, render.Fields{
		FirstName: contact.FirstName,
		LastName:  contact.LastName,
		TaskTitle: task.Title,
		ActionURL: fmt.Sprintf("%s/tasks/%d", d.cfg.Notification.ActionURLBase, task.ID),
	})
	if err != nil {
		d.log.ErrorContext(ctx, "Failed to render notification",
			logger.ErrorField(err),
			logger.IntField("task_id", int(task.ID)),
			logger.IntField("recipient_id", int(contact.ID)),
		)
		return err
	}

	// One slow recipient must not stall the fan-out for the others.
	sendCtx, cancel := context.WithTimeout(ctx, d.cfg.Scheduler.DispatchTimeout)
	defer cancel()

	if err := d.limiter.Wait(sendCtx); err != nil {
		return fmt.Errorf("rate limiter wait aborted: %w", err)
	}

	if err := d.sender.Send(sendCtx, addr, d.cfg.Notification.Subject, body); err != nil {
		d.log.ErrorContext(ctx, "Failed to deliver notification",
			logger.ErrorField(err),
			logger.IntField("task_id", int(task.ID)),
			logger.IntField("recipient_id", int(contact.ID)),
			logger.StringField("address", addr),
		)
		return err
	}

	d.log.InfoContext(ctx, "Notification delivered",
		logger.IntField("task_id", int(task.ID)),
		logger.IntField("recipient_id", int(contact.ID)),
	)
	return nil
}
