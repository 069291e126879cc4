package models

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StockStatus string

const (
	StockStatusInStock    StockStatus = "in_stock"
	StockStatusLowStock   StockStatus = "low_stock"
	StockStatusOutOfStock StockStatus = "out_of_stock"
)

// StockRecord tracks quantities for one product in one warehouse.
// AvailableQuantity is never stored; it is always derived from the other two.
type StockRecord struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID        uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_stock_product_warehouse"`
	Product          Product
	WarehouseID      uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_stock_product_warehouse"`
	Warehouse        Warehouse
	Quantity         int `gorm:"not null;default:0"`
	ReservedQuantity int `gorm:"not null;default:0"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (r *StockRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Available is the only quantity safe to newly commit.
func (r *StockRecord) Available() int {
	return r.Quantity - r.ReservedQuantity
}

func (r *StockRecord) IsOutOfStock() bool {
	return r.Available() <= 0
}

// IsLowStock requires the product relation to be loaded; a product without a
// reorder point is never low via this rule.
func (r *StockRecord) IsLowStock() bool {
	if r.Product.ReorderPoint <= 0 {
		return false
	}
	return r.Available() <= r.Product.ReorderPoint
}

func (r *StockRecord) Status() StockStatus {
	if r.IsOutOfStock() {
		return StockStatusOutOfStock
	}
	if r.IsLowStock() {
		return StockStatusLowStock
	}
	return StockStatusInStock
}

// StockPercentage reports available stock relative to the product's max
// stock, or nil when no max stock is configured.
func (r *StockRecord) StockPercentage() *int {
	if r.Product.MaxStock == nil || *r.Product.MaxStock == 0 {
		return nil
	}
	pct := int(math.Round(float64(r.Available()) / float64(*r.Product.MaxStock) * 100))
	return &pct
}

func (r *StockRecord) FormattedQuantity() string {
	return fmt.Sprintf("%d available (%d total, %d reserved)", r.Available(), r.Quantity, r.ReservedQuantity)
}
