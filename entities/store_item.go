package entities

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StoreItem is the current price of a product in a store.
type StoreItem struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StoreID   string    `gorm:"size:64;uniqueIndex:idx_store_items_pair" json:"store_id"`
	ProductID string    `gorm:"size:64;uniqueIndex:idx_store_items_pair;index" json:"product_id"`
	Price     float64   `json:"price"`
	Timestamp
}

func (s *StoreItem) BeforeCreate(_ *gorm.DB) error {
	ensureID(&s.ID)
	return nil
}
