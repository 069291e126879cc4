package models

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ItemReceiptStatus string

const (
	ItemNotReceived       ItemReceiptStatus = "not_received"
	ItemPartiallyReceived ItemReceiptStatus = "partially_received"
	ItemFullyReceived     ItemReceiptStatus = "fully_received"
)

type PurchaseOrderItem struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	PurchaseOrderID  uuid.UUID `gorm:"type:uuid;not null;index"`
	ProductID        uuid.UUID `gorm:"type:uuid;not null;index"`
	Product          Product
	Quantity         int             `gorm:"not null"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	ReceivedQuantity int             `gorm:"not null;default:0"`
	CreatedAt        time.Time
}

func (i *PurchaseOrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TotalPrice is always quantity x unit price, never stored.
func (i *PurchaseOrderItem) TotalPrice() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (i *PurchaseOrderItem) IsFullyReceived() bool {
	return i.ReceivedQuantity >= i.Quantity
}

func (i *PurchaseOrderItem) IsPartiallyReceived() bool {
	return i.ReceivedQuantity > 0 && i.ReceivedQuantity < i.Quantity
}

// RemainingQuantity is how many units can still be received.
func (i *PurchaseOrderItem) RemainingQuantity() int {
	if i.ReceivedQuantity >= i.Quantity {
		return 0
	}
	return i.Quantity - i.ReceivedQuantity
}

func (i *PurchaseOrderItem) ReceivedPercentage() int {
	if i.Quantity == 0 {
		return 0
	}
	return int(math.Round(float64(i.ReceivedQuantity) / float64(i.Quantity) * 100))
}

func (i *PurchaseOrderItem) ReceiptStatus() ItemReceiptStatus {
	if i.IsFullyReceived() {
		return ItemFullyReceived
	}
	if i.IsPartiallyReceived() {
		return ItemPartiallyReceived
	}
	return ItemNotReceived
}

func (i *PurchaseOrderItem) Summary() string {
	name := i.Product.Name
	if name == "" {
		name = "product"
	}
	return fmt.Sprintf("%d x %s @ $%s", i.Quantity, name, i.UnitPrice.StringFixed(2))
}
