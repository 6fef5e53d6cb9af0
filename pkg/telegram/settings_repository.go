package telegram

import (
	"context"
	"errors"
	"fmt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"pricecrowd-backend/entities"
)

type (
	SettingsRepository interface {
		Get(ctx context.Context) (*entities.TelegramSettings, error)
		Save(ctx context.Context, settings *entities.TelegramSettings) error
	}

	settingsRepository struct {
		db *gorm.DB
	}
)

func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

// Get returns nil, nil when the settings row was never written.
func (r *settingsRepository) Get(ctx context.Context) (*entities.TelegramSettings, error) {
	var settings entities.TelegramSettings
	err := r.db.WithContext(ctx).Where("key = ?", entities.TelegramSettingsKey).Take(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &settings, nil
}

func (r *settingsRepository) Save(ctx context.Context, settings *entities.TelegramSettings) error {
	settings.Key = entities.TelegramSettingsKey
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"token", "chat_id", "webhook_url", "enabled", "webhook_enabled", "updated_at"}),
	}).Create(settings).Error
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
