package repository

import (
	"task-notifier/config"
	"task-notifier/pkg/logger"

	"gorm.io/gorm"
)

type Repository struct {
	TaskRepo            TaskRepository
	UserRepo            UserRepository
	NotificationLogRepo NotificationLogRepository
}

func NewRepository(cfg *config.Config, db *gorm.DB, log *logger.Logger) (*Repository, error) {
	return &Repository{
		TaskRepo:            NewTaskRepository(db),
		UserRepo:            NewUserRepository(db),
		NotificationLogRepo: NewNotificationLogRepository(db),
	}, nil
}
