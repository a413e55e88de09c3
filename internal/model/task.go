package model

import (
	"time"
)

// Periodicity selects the weekend-adjustment policy for a task's fire date.
// Despite the name it is not a recurrence interval: a task fires once.
// Whether recurring delivery was ever intended is an open product question.
type Periodicity string

const (
	PeriodicityDaily   Periodicity = "DAILY"
	PeriodicityMonthly Periodicity = "MONTHLY"
	PeriodicityYearly  Periodicity = "YEARLY"
)

// AdjustsForWeekend reports whether fire dates of this class are moved
// off Saturday/Sunday to the following Monday.
func (p Periodicity) AdjustsForWeekend() bool {
	return p == PeriodicityMonthly || p == PeriodicityYearly
}

func (p Periodicity) Valid() bool {
	switch p {
	case PeriodicityDaily, PeriodicityMonthly, PeriodicityYearly:
		return true
	}
	return false
}

// PeriodicTask is a deferred notification: at SendDate+ExecutionTime a
// reminder is rendered and fanned out to every recipient.
type PeriodicTask struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	Title         string      `gorm:"type:varchar(255);not null" json:"title"`
	Description   string      `gorm:"type:text" json:"description"`
	SendDate      time.Time   `gorm:"type:date;not null" json:"send_date"`
	ExecutionTime string      `gorm:"type:varchar(5);not null" json:"execution_time"`
	Periodicity   Periodicity `gorm:"type:varchar(20);not null" json:"periodicity_class"`
	Active        bool        `gorm:"default:true" json:"active"`
	CreatedAt     time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time   `gorm:"autoUpdateTime" json:"updated_at"`

	Recipients []User `gorm:"many2many:task_recipients" json:"recipients"`
}

func (PeriodicTask) TableName() string {
	return "periodic_tasks"
}

// RecipientIDs returns the ids of the loaded recipient association.
func (t *PeriodicTask) RecipientIDs() []uint {
	ids := make([]uint, 0, len(t.Recipients))
	for _, r := range t.Recipients {
		ids = append(ids, r.ID)
	}
	return ids
}

type GetTaskParam struct {
	IDs         []uint `json:"ids"`
	RecipientID *uint  `json:"recipient_id"`
	Active      *bool  `json:"active"`
	Limit       *int   `json:"limit"`
}
