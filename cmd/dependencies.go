package cmd

import (
	"context"

	"task-notifier/config"
	"task-notifier/pkg/cache"
	"task-notifier/pkg/logger"
	"task-notifier/pkg/mailer"
	"task-notifier/pkg/postgres"
	"task-notifier/pkg/render"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type AppDependency struct {
	db        *postgres.DB
	cfg       *config.Config
	log       *logger.Logger
	validator *goValidator.Validate
	echo      *echo.Echo
	cache     cache.Cache
	sender    mailer.Sender
	renderer  *render.Registry
}

func NewAppDependency(ctx context.Context) (*AppDependency, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		return nil, err
	}

	db, err := postgres.NewDB(cfg.DB, log)
	if err != nil {
		log.Error("Failed to connect to database", zap.Error(err))
		return nil, err
	}

	sender, err := mailer.New(&cfg.Mailer, log)
	if err != nil {
		log.Error("Failed to create notification transport", zap.Error(err))
		return nil, err
	}

	renderer, err := render.NewRegistry()
	if err != nil {
		log.Error("Failed to compile notification templates", zap.Error(err))
		return nil, err
	}

	e := echo.New()
	return &AppDependency{
		cfg:       cfg,
		log:       log,
		validator: goValidator.New(),
		db:        db,
		echo:      e,
		cache:     cache.NewCache(cfg.Cache.DefaultExpiration, cfg.Cache.CleanupInterval),
		sender:    sender,
		renderer:  renderer,
	}, nil
}

func (d *AppDependency) Close() error {
	d.log.Info("Closing app dependency")
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}
