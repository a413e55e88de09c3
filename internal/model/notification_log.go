package model

import (
	"time"

	"gorm.io/datatypes"
)

const (
	NotificationStatusSent    = "SENT"
	NotificationStatusPartial = "PARTIAL"
	NotificationStatusFailed  = "FAILED"
	NotificationStatusSkipped = "SKIPPED"
)

// NotificationLog records the outcome of one task fire. Detail holds the
// per-recipient results as a JSON array.
type NotificationLog struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	TaskID    uint           `gorm:"not null" json:"task_id"`
	FiredAt   time.Time      `gorm:"not null" json:"fired_at"`
	Status    string         `gorm:"type:varchar(20);not null" json:"status"`
	Detail    datatypes.JSON `gorm:"type:jsonb" json:"detail"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (NotificationLog) TableName() string {
	return "notification_logs"
}

// DispatchOutcome is one element of NotificationLog.Detail.
type DispatchOutcome struct {
	RecipientID uint   `json:"recipient_id"`
	Address     string `json:"address"`
	Sent        bool   `json:"sent"`
	Error       string `json:"error,omitempty"`
}
