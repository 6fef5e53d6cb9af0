package user

import (
	"context"
	"errors"
	"fmt"
	"gorm.io/gorm"
	"pricecrowd-backend/entities"
)

type (
	UserRepository interface {
		FindByUsername(ctx context.Context, username string) (*entities.User, error)
		Create(ctx context.Context, user *entities.User) error
		UpdatePassword(ctx context.Context, username, passwordHash, role string) error
		SetTelegram(ctx context.Context, username string, telegramID int64, telegramUsername *string) (bool, error)
		ClearTelegram(ctx context.Context, username string) error
	}

	userRepository struct {
		db *gorm.DB
	}
)

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// FindByUsername returns nil, nil for unknown users.
func (r *userRepository) FindByUsername(ctx context.Context, username string) (*entities.User, error) {
	var user entities.User
	err := r.db.WithContext(ctx).Where("username = ?", username).Take(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *entities.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, username, passwordHash, role string) error {
	err := r.db.WithContext(ctx).Model(&entities.User{}).
		Where("username = ?", username).
		Updates(map[string]any{"password_hash": passwordHash, "role": role}).Error
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *userRepository) SetTelegram(ctx context.Context, username string, telegramID int64, telegramUsername *string) (bool, error) {
	updates := map[string]any{"telegram_id": telegramID}
	if telegramUsername != nil {
		updates["telegram_username"] = *telegramUsername
	}
	res := r.db.WithContext(ctx).Model(&entities.User{}).Where("username = ?", username).Updates(updates)
	if res.Error != nil {
		return false, fmt.Errorf("db error: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *userRepository) ClearTelegram(ctx context.Context, username string) error {
	err := r.db.WithContext(ctx).Model(&entities.User{}).
		Where("username = ?", username).
		Updates(map[string]any{"telegram_id": nil, "telegram_username": nil}).Error
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
