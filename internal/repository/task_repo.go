package repository

import (
	"context"

	"task-notifier/internal/model"
	"task-notifier/pkg/utils"

	"gorm.io/gorm"
)

type TaskRepository interface {
	Create(ctx context.Context, task *model.PeriodicTask, opts ...utils.DBOption) error
	Update(ctx context.Context, task *model.PeriodicTask, opts ...utils.DBOption) error
	ReplaceRecipients(ctx context.Context, task *model.PeriodicTask, recipients []model.User, opts ...utils.DBOption) error
	Delete(ctx context.Context, id uint, opts ...utils.DBOption) error
	FindByID(ctx context.Context, id uint, opts ...utils.DBOption) (*model.PeriodicTask, error)
	Get(ctx context.Context, param *model.GetTaskParam, opts ...utils.DBOption) ([]model.PeriodicTask, error)
	// Transaction runs fn inside a database transaction; fn receives the
	// option that routes repository calls through that transaction.
	Transaction(ctx context.Context, fn func(opt utils.DBOption) error) error
}

type taskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, task *model.PeriodicTask, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Create(task).Error
}

func (r *taskRepository) Update(ctx context.Context, task *model.PeriodicTask, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	// Explicit column list so zero-valued fields (e.g. active=false) are written too.
	return tx.Model(task).Select("title", "description", "send_date", "execution_time", "periodicity", "active").Updates(task).Error
}

func (r *taskRepository) ReplaceRecipients(ctx context.Context, task *model.PeriodicTask, recipients []model.User, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	return tx.Model(task).Association("Recipients").Replace(recipients)
}

func (r *taskRepository) Delete(ctx context.Context, id uint, opts ...utils.DBOption) error {
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	task := model.PeriodicTask{ID: id}
	if err := tx.Model(&task).Association("Recipients").Clear(); err != nil {
		return err
	}
	return tx.Delete(&task).Error
}

// FindByID returns nil, nil when the task does not exist.
func (r *taskRepository) FindByID(ctx context.Context, id uint, opts ...utils.DBOption) (*model.PeriodicTask, error) {
	var task model.PeriodicTask
	tx := utils.ApplyOptions(r.db.WithContext(ctx), append(opts, utils.WithPreload("Recipients"))...)

	result := tx.First(&task, id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}

	return &task, nil
}

func (r *taskRepository) Get(ctx context.Context, param *model.GetTaskParam, opts ...utils.DBOption) ([]model.PeriodicTask, error) {
	var tasks []model.PeriodicTask
	db := utils.ApplyOptions(r.db.WithContext(ctx), opts...).Model(&model.PeriodicTask{})

	if len(param.IDs) > 0 {
		db = db.Where("periodic_tasks.id IN ?", param.IDs)
	}
	if param.Active != nil {
		db = db.Where("periodic_tasks.active = ?", *param.Active)
	}
	if param.RecipientID != nil {
		db = db.Joins("JOIN task_recipients ON task_recipients.periodic_task_id = periodic_tasks.id").
			Where("task_recipients.user_id = ?", *param.RecipientID)
	}
	if param.Limit != nil {
		db = db.Limit(*param.Limit)
	}

	db = utils.ApplyOptions(db, utils.WithPreload("Recipients"))
	result := db.Order("periodic_tasks.id").Find(&tasks)
	if result.Error != nil {
		return nil, result.Error
	}
	return tasks, nil
}

func (r *taskRepository) Transaction(ctx context.Context, fn func(opt utils.DBOption) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(utils.WithTx(tx))
	})
}
