package entities

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"time"
)

const (
	OperationStatusDraft   = "draft"
	OperationStatusPosted  = "posted"
	OperationStatusDeleted = "deleted"
)

type Operation struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Date       time.Time `gorm:"index" json:"date"`
	Seller     string    `json:"seller"`
	Amount     float64   `json:"amount"`
	Status     string    `gorm:"size:16;index" json:"status"`
	StoreID    *string   `gorm:"size:64" json:"store_id,omitempty"`
	QR         *string   `gorm:"column:qr;uniqueIndex:idx_operations_qr" json:"qr,omitempty"`
	UploadedBy *string   `gorm:"size:64;uniqueIndex:idx_operations_open_draft,where:status = 'draft'" json:"uploaded_by,omitempty"`
	// RawPayload keeps the verification response verbatim.
	RawPayload datatypes.JSON `json:"raw,omitempty"`

	Items []*OperationItem `gorm:"foreignKey:OperationID" json:"items"`
	Timestamp
}

type OperationItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	OperationID uuid.UUID `gorm:"type:uuid;index" json:"-"`
	Position    int       `json:"-"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Quantity    float64   `json:"quantity"`
	ProductID   *string   `gorm:"size:64" json:"product_id,omitempty"`
}

func (o *Operation) BeforeCreate(_ *gorm.DB) error {
	ensureID(&o.ID)
	if o.Status == "" {
		o.Status = OperationStatusDraft
	}
	return nil
}

func (i *OperationItem) BeforeCreate(_ *gorm.DB) error {
	ensureID(&i.ID)
	return nil
}
