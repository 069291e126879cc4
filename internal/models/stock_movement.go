package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MovementType string

const (
	MovementIn         MovementType = "in"
	MovementOut        MovementType = "out"
	MovementTransfer   MovementType = "transfer"
	MovementAdjustment MovementType = "adjustment"
)

type ReferenceType string

const (
	ReferencePurchaseOrder ReferenceType = "purchase_order"
	ReferenceSale          ReferenceType = "sale"
	ReferenceTransfer      ReferenceType = "transfer"
	ReferenceAdjustment    ReferenceType = "adjustment"
)

// StockMovement is the append-only audit trail of stock changes. Rows are
// inserted in the same transaction as the quantity change and never updated
// or deleted afterwards.
type StockMovement struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Product       Product
	WarehouseID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Warehouse     Warehouse
	MovementType  MovementType   `gorm:"size:20;not null;index"`
	Quantity      int            `gorm:"not null"`
	ReferenceType *ReferenceType `gorm:"size:20"`
	ReferenceID   *uuid.UUID     `gorm:"type:uuid"`
	Notes         string         `gorm:"type:text"`
	CreatedBy     uuid.UUID      `gorm:"type:uuid;not null"`
	CreatedAt     time.Time      `gorm:"index"`
}

func (m *StockMovement) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// IsInbound reports whether the movement adds stock to the warehouse.
func (m *StockMovement) IsInbound() bool {
	return m.MovementType == MovementIn || m.MovementType == MovementAdjustment
}

func (m *StockMovement) IsOutbound() bool {
	return m.MovementType == MovementOut
}

// EffectiveQuantity is positive for inbound movements, negative for outbound.
func (m *StockMovement) EffectiveQuantity() int {
	if m.IsOutbound() {
		return -m.Quantity
	}
	return m.Quantity
}

func (m *StockMovement) Summary() string {
	name := m.Product.Name
	if name == "" {
		name = "product"
	}
	return fmt.Sprintf("%s %d units of %s", strings.ToUpper(string(m.MovementType)), m.Quantity, name)
}

// ReferenceSummary renders the movement's origin for display.
func (m *StockMovement) ReferenceSummary() string {
	if m.ReferenceType == nil || m.ReferenceID == nil {
		return "Manual"
	}
	labels := map[ReferenceType]string{
		ReferencePurchaseOrder: "Purchase Order",
		ReferenceSale:          "Sale",
		ReferenceTransfer:      "Transfer",
		ReferenceAdjustment:    "Adjustment",
	}
	return fmt.Sprintf("%s #%s", labels[*m.ReferenceType], m.ReferenceID.String()[:8])
}
