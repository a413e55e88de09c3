package model

import "time"

// User is a notification recipient: a contact record resolved at fire time.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	FirstName      string    `gorm:"not null" json:"first_name"`
	LastName       string    `json:"last_name"`
	Email          string    `gorm:"not null" json:"email"`
	TelegramChatID string    `gorm:"type:varchar(64)" json:"telegram_chat_id,omitempty"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
