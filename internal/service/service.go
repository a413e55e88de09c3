package service

import (
	"task-notifier/config"
	"task-notifier/internal/repository"
	"task-notifier/pkg/cache"
	"task-notifier/pkg/logger"
	"task-notifier/pkg/mailer"
	"task-notifier/pkg/ratelimit"
	"task-notifier/pkg/render"
)

type Service struct {
	TaskService TaskService
	Scheduler   Scheduler
	Resolver    RecipientResolver
	Dispatcher  NotificationDispatcher
}

func NewService(
	cfg *config.Config,
	log *logger.Logger,
	repo *repository.Repository,
	inmemoryCache cache.Cache,
	sender mailer.Sender,
	renderer *render.Registry,
) (*Service, error) {
	resolver := NewRecipientResolver(log, repo.UserRepo, inmemoryCache, cfg.Cache.DefaultExpiration)

	limiter := ratelimit.New(cfg.Scheduler.SendRatePerSecond, cfg.Scheduler.SendBurst)
	dispatcher, err := NewNotificationDispatcher(cfg, log, renderer, sender, limiter)
	if err != nil {
		return nil, err
	}

	scheduler := NewTaskScheduler(cfg, log, repo.TaskRepo, repo.NotificationLogRepo, resolver, dispatcher)
	taskService := NewTaskService(cfg, log, repo.TaskRepo, repo.UserRepo, scheduler)

	return &Service{
		TaskService: taskService,
		Scheduler:   scheduler,
		Resolver:    resolver,
		Dispatcher:  dispatcher,
	}, nil
}
