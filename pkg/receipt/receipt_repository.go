package receipt

import (
	"context"
	"errors"
	"fmt"
	"gorm.io/gorm"
	"pricecrowd-backend/entities"
	"pricecrowd-backend/internal/utils"
)

var ErrDuplicateReceipt = errors.New("receipt already stored")

type (
	ReceiptRepository interface {
		FindByQR(ctx context.Context, qr string) (*entities.Receipt, error)
		Create(ctx context.Context, receipt *entities.Receipt) error
		ListRecent(ctx context.Context, limit int) ([]*entities.Receipt, error)
	}

	receiptRepository struct {
		db *gorm.DB
	}
)

func NewReceiptRepository(db *gorm.DB) ReceiptRepository {
	return &receiptRepository{db: db}
}

// FindByQR returns nil, nil when no receipt carries qr.
func (r *receiptRepository) FindByQR(ctx context.Context, qr string) (*entities.Receipt, error) {
	var receipt entities.Receipt
	err := r.db.WithContext(ctx).Where("qr = ?", qr).Take(&receipt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &receipt, nil
}

func (r *receiptRepository) Create(ctx context.Context, receipt *entities.Receipt) error {
	err := r.db.WithContext(ctx).Create(receipt).Error
	if utils.IsDuplicateKey(err) {
		return ErrDuplicateReceipt
	}
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *receiptRepository) ListRecent(ctx context.Context, limit int) ([]*entities.Receipt, error) {
	var receipts []*entities.Receipt
	if err := r.db.WithContext(ctx).Order("received_at desc").Limit(limit).Find(&receipts).Error; err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return receipts, nil
}
