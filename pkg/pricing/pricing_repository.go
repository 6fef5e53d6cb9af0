package pricing

import (
	"context"
	"errors"
	"fmt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"pricecrowd-backend/entities"
)

type (
	PricingRepository interface {
		UpsertPrice(ctx context.Context, storeID, productID string, price float64) error
		AppendActivity(ctx context.Context, activity *entities.StoreActivity) error
		StoreName(ctx context.Context, storeID string) (*string, error)
		ProductTitle(ctx context.Context, productID string) (*string, error)
		ListActivities(ctx context.Context, storeID string, limit int) ([]*entities.StoreActivity, error)
		ListPrices(ctx context.Context, storeID, productID string) ([]*entities.StoreItem, error)
	}

	pricingRepository struct {
		db *gorm.DB
	}
)

func NewPricingRepository(db *gorm.DB) PricingRepository {
	return &pricingRepository{db: db}
}

// UpsertPrice overwrites the current price of the pair unconditionally.
func (r *pricingRepository) UpsertPrice(ctx context.Context, storeID, productID string, price float64) error {
	item := &entities.StoreItem{StoreID: storeID, ProductID: productID, Price: price}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "store_id"}, {Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"price", "updated_at"}),
	}).Create(item).Error
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *pricingRepository) AppendActivity(ctx context.Context, activity *entities.StoreActivity) error {
	if err := r.db.WithContext(ctx).Create(activity).Error; err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *pricingRepository) StoreName(ctx context.Context, storeID string) (*string, error) {
	var store entities.Store
	err := r.db.WithContext(ctx).Where("id = ?", storeID).Take(&store).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &store.Name, nil
}

func (r *pricingRepository) ProductTitle(ctx context.Context, productID string) (*string, error) {
	var product entities.Product
	err := r.db.WithContext(ctx).Where("id = ?", productID).Take(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return &product.Title, nil
}

func (r *pricingRepository) ListActivities(ctx context.Context, storeID string, limit int) ([]*entities.StoreActivity, error) {
	var activities []*entities.StoreActivity
	query := r.db.WithContext(ctx)
	if storeID != "" {
		query = query.Where("store_id = ?", storeID)
	}
	if err := query.Order("ts desc").Order("created_at desc").Limit(limit).Find(&activities).Error; err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return activities, nil
}

func (r *pricingRepository) ListPrices(ctx context.Context, storeID, productID string) ([]*entities.StoreItem, error) {
	var items []*entities.StoreItem
	query := r.db.WithContext(ctx)
	if storeID != "" {
		query = query.Where("store_id = ?", storeID)
	}
	if productID != "" {
		query = query.Where("product_id = ?", productID)
	}
	if err := query.Order("store_id asc").Order("product_id asc").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return items, nil
}
