package entities

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Username         string    `gorm:"size:64;uniqueIndex" json:"username"`
	PasswordHash     string    `json:"-"`
	Role             string    `gorm:"size:16;default:user" json:"role"`
	TelegramID       *int64    `json:"telegram_id,omitempty"`
	TelegramUsername *string   `gorm:"size:64" json:"telegram_username,omitempty"`
	Timestamp
}

func (u *User) BeforeCreate(_ *gorm.DB) error {
	ensureID(&u.ID)
	return nil
}
