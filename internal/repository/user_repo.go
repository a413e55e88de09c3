package repository

import (
	"context"

	"task-notifier/internal/model"
	"task-notifier/pkg/utils"

	"gorm.io/gorm"
)

type UserRepository interface {
	FindByID(ctx context.Context, id uint, opts ...utils.DBOption) (*model.User, error)
	FindByIDs(ctx context.Context, ids []uint, opts ...utils.DBOption) ([]model.User, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// FindByID returns nil, nil when the user does not exist.
func (r *userRepository) FindByID(ctx context.Context, id uint, opts ...utils.DBOption) (*model.User, error) {
	var user model.User
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	result := tx.First(&user, id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}

	return &user, nil
}

func (r *userRepository) FindByIDs(ctx context.Context, ids []uint, opts ...utils.DBOption) ([]model.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var users []model.User
	tx := utils.ApplyOptions(r.db.WithContext(ctx), append(opts, utils.WithWhere("id IN ?", ids))...)
	if err := tx.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
