package entities

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"time"
)

type LinkCode struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Code     string    `gorm:"size:6;index" json:"code"`
	Username string    `gorm:"size:64" json:"username"`
	ExpAt    time.Time `json:"exp_at"`
	Used     bool      `gorm:"default:false" json:"used"`
	Timestamp
}

func (l *LinkCode) BeforeCreate(_ *gorm.DB) error {
	ensureID(&l.ID)
	return nil
}
