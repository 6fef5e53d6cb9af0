package migration

import (
	"fmt"
	"gorm.io/gorm"
	"pricecrowd-backend/entities"
)

func Models() []any {
	return []any{
		&entities.User{},
		&entities.Receipt{},
		&entities.Operation{},
		&entities.OperationItem{},
		&entities.StoreItem{},
		&entities.StoreActivity{},
		&entities.LinkCode{},
		&entities.TelegramSettings{},
		&entities.Store{},
		&entities.Product{},
	}
}

func Migrate(db *gorm.DB) error {
	for _, model := range Models() {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("migrate %T: %w", model, err)
		}
	}

	fmt.Println("Database migration complete")
	return nil
}
