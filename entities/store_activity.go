package entities

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"time"
)

const (
	ActivityItemAdded    = "item_added"
	ActivityPriceSet     = "price_set"
	ActivityPriceUpdated = "price_updated"
	ActivityItemRemoved  = "item_removed"
)

// StoreActivity is an append-only price event. Names are snapshots taken at write time.
type StoreActivity struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StoreID     string    `gorm:"size:64;index" json:"store_id"`
	ProductID   *string   `gorm:"size:64" json:"product_id,omitempty"`
	Kind        string    `gorm:"size:32" json:"kind"`
	Ts          time.Time `gorm:"index" json:"ts"`
	Price       *float64  `json:"price,omitempty"`
	ProductName *string   `json:"product_name,omitempty"`
	StoreName   *string   `json:"store_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (a *StoreActivity) BeforeCreate(_ *gorm.DB) error {
	ensureID(&a.ID)
	return nil
}
