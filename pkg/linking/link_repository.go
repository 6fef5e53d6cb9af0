package linking

import (
	"context"
	"errors"
	"fmt"
	"gorm.io/gorm"
	"pricecrowd-backend/entities"
	"time"
)

type (
	LinkRepository interface {
		Create(ctx context.Context, code *entities.LinkCode) error
		FindActive(ctx context.Context, code string, now time.Time) (*entities.LinkCode, error)
		Burn(ctx context.Context, id string, now time.Time) (bool, error)
	}

	linkRepository struct {
		db *gorm.DB
	}
)

func NewLinkRepository(db *gorm.DB) LinkRepository {
	return &linkRepository{db: db}
}

func (r *linkRepository) Create(ctx context.Context, code *entities.LinkCode) error {
	if err := r.db.WithContext(ctx).Create(code).Error; err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// FindActive returns the newest unused, unexpired code, or nil.
func (r *linkRepository) FindActive(ctx context.Context, code string, now time.Time) (*entities.LinkCode, error) {
	var link entities.LinkCode
	err := r.db.WithContext(ctx).
		Where("code = ? AND used = ? AND exp_at > ?", code, false, now).
		Order("exp_at DESC").
		Take(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &link, nil
}

// Burn marks the code used if it is still unused and unexpired. It reports
// whether this call was the one that consumed it.
func (r *linkRepository) Burn(ctx context.Context, id string, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&entities.LinkCode{}).
		Where("id = ? AND used = ? AND exp_at > ?", id, false, now).
		Update("used", true)
	if res.Error != nil {
		return false, fmt.Errorf("db error: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}
