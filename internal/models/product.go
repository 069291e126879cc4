package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	SKU          string     `gorm:"size:100;not null;uniqueIndex"`
	Name         string     `gorm:"size:255;not null"`
	Description  string     `gorm:"type:text"`
	CategoryID   *uuid.UUID `gorm:"type:uuid;index"`
	Category     *Category
	SupplierID   *uuid.UUID `gorm:"type:uuid;index"`
	Supplier     *Supplier
	UnitPrice    *decimal.Decimal `gorm:"type:decimal(10,2)"`
	ReorderPoint int              `gorm:"not null;default:0"` // 0 = no reorder point configured
	MaxStock     *int
	IsActive     bool `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
