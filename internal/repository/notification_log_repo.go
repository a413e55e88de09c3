package repository

import (
	"context"

	"task-notifier/internal/model"
	"task-notifier/pkg/utils"

	"gorm.io/gorm"
)

type NotificationLogRepository interface {
	Create(ctx context.Context, log *model.NotificationLog, opts ...utils.DBOption) error
	FindByTaskID(ctx context.Context, taskID uint, opts ...utils.DBOption) ([]model.NotificationLog, error)
}

type notificationLogRepository struct {
	db *gorm.DB
}

func NewNotificationLogRepository(db *gorm.DB) NotificationLogRepository {
	return &notificationLogRepository{db: db}
}

func (r *notificationLogRepository) Create(ctx context.Context, log *model.NotificationLog, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Create(log).Error
}

func (r *notificationLogRepository) FindByTaskID(ctx context.Context, taskID uint, opts ...utils.DBOption) ([]model.NotificationLog, error) {
	var logs []model.NotificationLog
	tx := utils.ApplyOptions(r.db.WithContext(ctx), append(opts, utils.WithWhere("task_id = ?", taskID))...)
	if err := tx.Order("fired_at DESC").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
