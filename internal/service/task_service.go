package service

import (
	"context"
	"fmt"
	"time"

	"task-notifier/config"
	"task-notifier/internal/dto"
	"task-notifier/internal/model"
	"task-notifier/internal/repository"
	"task-notifier/pkg/logger"
	"task-notifier/pkg/utils"
)

// TaskService orchestrates the CRUD surface: it validates, persists and
// keeps the scheduler in sync with the persisted state.
type TaskService interface {
	Create(ctx context.Context, req *dto.CreateTaskRequest) (*model.PeriodicTask, error)
	Update(ctx context.Context, id uint, req *dto.UpdateTaskRequest) (*model.PeriodicTask, error)
	Delete(ctx context.Context, id uint) error
	Get(ctx context.Context, id uint) (*model.PeriodicTask, error)
	List(ctx context.Context) ([]model.PeriodicTask, error)
	ListByUser(ctx context.Context, userID uint) ([]model.PeriodicTask, error)
}

type taskService struct {
	cfg       *config.Config
	log       *logger.Logger
	taskRepo  repository.TaskRepository
	userRepo  repository.UserRepository
	scheduler Scheduler
}

func NewTaskService(
	cfg *config.Config,
	log *logger.Logger,
	taskRepo repository.TaskRepository,
	userRepo repository.UserRepository,
	scheduler Scheduler,
) TaskService {
	return &taskService{
		cfg:       cfg,
		log:       log,
		taskRepo:  taskRepo,
		userRepo:  userRepo,
		scheduler: scheduler,
	}
}

// loadRecipients is the strict creation-time check: every id must exist.
func (s *taskService) loadRecipients(ctx context.Context, ids []uint) ([]model.User, error) {
	if len(ids) == 0 {
		return nil, ErrEmptyRecipients
	}
	users, err := s.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to look up recipients: %w", err)
	}
	if len(users) != len(uniqueIDs(ids)) {
		return nil, ErrUnknownRecipient
	}
	return users, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (s *taskService) Create(ctx context.Context, req *dto.CreateTaskRequest) (*model.PeriodicTask, error) {
	sendDate, err := time.Parse(dto.DateLayout, req.SendDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}
	if _, err := time.Parse(dto.ClockLayout, req.ExecutionTime); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}

	recipients, err := s.loadRecipients(ctx, req.Recipients)
	if err != nil {
		return nil, err
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	task := &model.PeriodicTask{
		Title:         req.Title,
		Description:   req.Description,
		SendDate:      sendDate,
		ExecutionTime: req.ExecutionTime,
		Periodicity:   model.Periodicity(req.Periodicity),
		Active:        active,
		Recipients:    recipients,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to persist task: %w", err)
	}

	if err := s.scheduler.Schedule(ctx, task); err != nil {
		// The row exists; the recovery sweep will retry the arming.
		s.log.ErrorContext(ctx, "Failed to schedule created task",
			logger.ErrorField(err),
			logger.IntField("task_id", int(task.ID)),
		)
	}

	return task, nil
}

func (s *taskService) Update(ctx context.Context, id uint, req *dto.UpdateTaskRequest) (*model.PeriodicTask, error) {
	task, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load task: %w", err)
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}

	timingChanged := false

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.SendDate != nil {
		sendDate, err := time.Parse(dto.DateLayout, *req.SendDate)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
		}
		if !sendDate.Equal(task.SendDate) {
			task.SendDate = sendDate
			timingChanged = true
		}
	}
	if req.ExecutionTime != nil {
		if _, err := time.Parse(dto.ClockLayout, *req.ExecutionTime); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
		}
		if *req.ExecutionTime != task.ExecutionTime {
			task.ExecutionTime = *req.ExecutionTime
			timingChanged = true
		}
	}
	if req.Periodicity != nil {
		p := model.Periodicity(*req.Periodicity)
		if p != task.Periodicity {
			task.Periodicity = p
			timingChanged = true
		}
	}
	if req.Active != nil && *req.Active != task.Active {
		task.Active = *req.Active
		timingChanged = true
	}

	var recipients []model.User
	if req.Recipients != nil {
		recipients, err = s.loadRecipients(ctx, req.Recipients)
		if err != nil {
			return nil, err
		}
		timingChanged = true
	}

	// Column updates and the recipient set change together or not at all.
	err = s.taskRepo.Transaction(ctx, func(opt utils.DBOption) error {
		if err := s.taskRepo.Update(ctx, task, opt); err != nil {
			return err
		}
		if req.Recipients != nil {
			if err := s.taskRepo.ReplaceRecipients(ctx, task, recipients, opt); err != nil {
				return err
			}
			task.Recipients = recipients
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist task: %w", err)
	}

	if timingChanged {
		if err := s.scheduler.Schedule(ctx, task); err != nil {
			s.log.ErrorContext(ctx, "Failed to reschedule updated task",
				logger.ErrorField(err),
				logger.IntField("task_id", int(task.ID)),
			)
		}
	}

	return task, nil
}

func (s *taskService) Delete(ctx context.Context, id uint) error {
	task, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load task: %w", err)
	}
	if task == nil {
		return ErrTaskNotFound
	}

	if err := s.taskRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	if s.scheduler.Cancel(id) {
		s.log.InfoContext(ctx, "Cancelled pending timer for deleted task",
			logger.IntField("task_id", int(id)),
		)
	}
	return nil
}

func (s *taskService) Get(ctx context.Context, id uint) (*model.PeriodicTask, error) {
	task, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load task: %w", err)
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

func (s *taskService) List(ctx context.Context) ([]model.PeriodicTask, error) {
	return s.taskRepo.Get(ctx, &model.GetTaskParam{})
}

func (s *taskService) ListByUser(ctx context.Context, userID uint) ([]model.PeriodicTask, error) {
	param := &model.GetTaskParam{RecipientID: &userID}
	return s.taskRepo.Get(ctx, param)
}
