package operation

import (
	"context"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"pricecrowd-backend/entities"
	"pricecrowd-backend/internal/utils"
	"time"
)

var (
	ErrDuplicateOperation = errors.New("operation violates a uniqueness constraint")
	ErrNotDraft           = errors.New("operation is not a draft")
)

type (
	// DraftPatch carries the fields of a draft edit; Set* flags mark presence.
	DraftPatch struct {
		SetStore bool
		StoreID  *string
		SetItems bool
		Items    []*entities.OperationItem
	}

	OperationRepository interface {
		Create(ctx context.Context, op *entities.Operation) error
		FindByID(ctx context.Context, id uuid.UUID) (*entities.Operation, error)
		List(ctx context.Context, limit int) ([]*entities.Operation, error)
		QRUsed(ctx context.Context, qr string) (bool, error)
		HasOpenDraft(ctx context.Context, uploadedBy string) (bool, error)
		UpdateDraft(ctx context.Context, id uuid.UUID, patch DraftPatch) error
		SetStatus(ctx context.Context, id uuid.UUID, from []string, to string) (bool, error)
	}

	operationRepository struct {
		db *gorm.DB
	}
)

func NewOperationRepository(db *gorm.DB) OperationRepository {
	return &operationRepository{db: db}
}

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("position asc")
}

func (r *operationRepository) Create(ctx context.Context, op *entities.Operation) error {
	err := r.db.WithContext(ctx).Create(op).Error
	if utils.IsDuplicateKey(err) {
		return ErrDuplicateOperation
	}
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// FindByID returns nil, nil when the operation does not exist.
func (r *operationRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.Operation, error) {
	var op entities.Operation
	err := r.db.WithContext(ctx).Preload("Items", orderedItems).Where("id = ?", id).Take(&op).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &op, nil
}

func (r *operationRepository) List(ctx context.Context, limit int) ([]*entities.Operation, error) {
	var ops []*entities.Operation
	err := r.db.WithContext(ctx).
		Preload("Items", orderedItems).
		Order("date desc").
		Limit(limit).
		Find(&ops).Error
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return ops, nil
}

func (r *operationRepository) QRUsed(ctx context.Context, qr string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entities.Operation{}).Where("qr = ?", qr).Count(&count).Error; err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return count > 0, nil
}

func (r *operationRepository) HasOpenDraft(ctx context.Context, uploadedBy string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Operation{}).
		Where("uploaded_by = ? AND status = ?", uploadedBy, entities.OperationStatusDraft).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return count > 0, nil
}

// UpdateDraft applies patch only while the operation is still a draft and
// replaces the item list wholesale when SetItems is true.
func (r *operationRepository) UpdateDraft(ctx context.Context, id uuid.UUID, patch DraftPatch) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{"updated_at": time.Now().UTC()}
		if patch.SetStore {
			updates["store_id"] = patch.StoreID
		}
		res := tx.Model(&entities.Operation{}).
			Where("id = ? AND status = ?", id, entities.OperationStatusDraft).
			Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("db error: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotDraft
		}

		if !patch.SetItems {
			return nil
		}
		if err := tx.Where("operation_id = ?", id).Delete(&entities.OperationItem{}).Error; err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		if len(patch.Items) == 0 {
			return nil
		}
		for i, item := range patch.Items {
			item.OperationID = id
			item.Position = i
		}
		if err := tx.Create(&patch.Items).Error; err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		return nil
	})
}

// SetStatus moves the operation to `to` if its current status is one of
// `from`. It reports whether a row changed.
func (r *operationRepository) SetStatus(ctx context.Context, id uuid.UUID, from []string, to string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&entities.Operation{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(map[string]any{"status": to, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return false, fmt.Errorf("db error: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
