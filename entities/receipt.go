package entities

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"time"
)

// Receipt is a raw submission keyed by its QR payload. Rows are never updated.
type Receipt struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QR          string    `gorm:"column:qr;uniqueIndex:idx_receipts_qr" json:"qr"`
	ReceivedAt  time.Time `gorm:"index" json:"received_at"`
	Source      string    `gorm:"size:32" json:"source"`
	SubmittedBy string    `gorm:"size:64" json:"submitted_by"`
	Timestamp
}

func (r *Receipt) BeforeCreate(_ *gorm.DB) error {
	ensureID(&r.ID)
	if r.ReceivedAt.IsZero() {
		r.ReceivedAt = time.Now().UTC()
	}
	return nil
}
