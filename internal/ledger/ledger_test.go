package ledger

import (
	"testing"

	"inventory-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestEngine(t *testing.T) (*Engine, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Supplier{},
		&models.Warehouse{},
		&models.Product{},
		&models.StockRecord{},
		&models.StockMovement{},
		&models.PurchaseOrder{},
		&models.PurchaseOrderItem{},
	))

	return New(db), db
}

func createProduct(t *testing.T, db *gorm.DB, sku string) *models.Product {
	t.Helper()
	price := decimal.RequireFromString("9.99")
	product := models.Product{
		SKU:       sku,
		Name:      "Product " + sku,
		UnitPrice: &price,
		IsActive:  true,
	}
	require.NoError(t, db.Create(&product).Error)
	return &product
}

func createWarehouse(t *testing.T, db *gorm.DB, name string) *models.Warehouse {
	t.Helper()
	warehouse := models.Warehouse{Name: name, Address: name + " street", IsActive: true}
	require.NoError(t, db.Create(&warehouse).Error)
	return &warehouse
}

func createSupplier(t *testing.T, db *gorm.DB, name string) *models.Supplier {
	t.Helper()
	supplier := models.Supplier{Name: name, IsActive: true}
	require.NoError(t, db.Create(&supplier).Error)
	return &supplier
}

func testActor() uuid.UUID {
	return uuid.MustParse("00000000-0000-0000-0000-000000000001")
}

func countMovements(t *testing.T, db *gorm.DB, productID uuid.UUID) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.StockMovement{}).Where("product_id = ?", productID).Count(&count).Error)
	return count
}
