package database

import (
	"fmt"

	"inventory-backend/internal/config"
	"inventory-backend/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens the Postgres connection. The returned handle is passed down
// explicitly; the process entry point owns its lifecycle.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("could not connect to database: %w", err)
	}
	return db, nil
}

// Migrate creates or updates the schema for every model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Supplier{},
		&models.Warehouse{},
		&models.Product{},
		&models.StockRecord{},
		&models.StockMovement{},
		&models.PurchaseOrder{},
		&models.PurchaseOrderItem{},
	)
}
