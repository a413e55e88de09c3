package dto

import (
	"time"

	"task-notifier/internal/model"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

type CreateTaskRequest struct {
	Title         string `json:"title" validate:"required,max=255"`
	Description   string `json:"description"`
	SendDate      string `json:"sendDate" validate:"required,datetime=2006-01-02"`
	ExecutionTime string `json:"executionTime" validate:"required,datetime=15:04"`
	Periodicity   string `json:"periodicityClass" validate:"required,oneof=DAILY MONTHLY YEARLY"`
	Recipients    []uint `json:"recipients" validate:"required,min=1,dive,gt=0"`
	Active        *bool  `json:"active"`
}

// UpdateTaskRequest is a partial update: nil fields are left untouched.
type UpdateTaskRequest struct {
	Title         *string `json:"title" validate:"omitempty,max=255"`
	Description   *string `json:"description"`
	SendDate      *string `json:"sendDate" validate:"omitempty,datetime=2006-01-02"`
	ExecutionTime *string `json:"executionTime" validate:"omitempty,datetime=15:04"`
	Periodicity   *string `json:"periodicityClass" validate:"omitempty,oneof=DAILY MONTHLY YEARLY"`
	Recipients    []uint  `json:"recipients" validate:"omitempty,min=1,dive,gt=0"`
	Active        *bool   `json:"active"`
}

type RecipientSummary struct {
	ID        uint   `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

type TaskResponse struct {
	ID            uint               `json:"id"`
	Title         string             `json:"title"`
	Description   string             `json:"description"`
	SendDate      string             `json:"sendDate"`
	ExecutionTime string             `json:"executionTime"`
	Periodicity   string             `json:"periodicityClass"`
	Active        bool               `json:"active"`
	Recipients    []RecipientSummary `json:"recipients"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

func NewTaskResponse(task *model.PeriodicTask) *TaskResponse {
	recipients := make([]RecipientSummary, 0, len(task.Recipients))
	for _, r := range task.Recipients {
		recipients = append(recipients, RecipientSummary{
			ID:        r.ID,
			FirstName: r.FirstName,
			LastName:  r.LastName,
			Email:     r.Email,
		})
	}
	return &TaskResponse{
		ID:            task.ID,
		Title:         task.Title,
		Description:   task.Description,
		SendDate:      task.SendDate.Format(DateLayout),
		ExecutionTime: task.ExecutionTime,
		Periodicity:   string(task.Periodicity),
		Active:        task.Active,
		Recipients:    recipients,
		CreatedAt:     task.CreatedAt,
		UpdatedAt:     task.UpdatedAt,
	}
}

func NewTaskListResponse(tasks []model.PeriodicTask) []*TaskResponse {
	out := make([]*TaskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, NewTaskResponse(&tasks[i]))
	}
	return out
}
