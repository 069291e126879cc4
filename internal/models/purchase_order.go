package models

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PurchaseOrderStatus string

const (
	OrderStatusDraft             PurchaseOrderStatus = "draft"
	OrderStatusPending           PurchaseOrderStatus = "pending"
	OrderStatusApproved          PurchaseOrderStatus = "approved"
	OrderStatusOrdered           PurchaseOrderStatus = "ordered"
	OrderStatusPartiallyReceived PurchaseOrderStatus = "partially_received"
	OrderStatusReceived          PurchaseOrderStatus = "received"
	OrderStatusCancelled         PurchaseOrderStatus = "cancelled"
)

// allowedTransitions is the single source of truth for the order lifecycle.
// Cancellation is only possible before goods are in transit; received and
// cancelled are terminal.
var allowedTransitions = map[PurchaseOrderStatus][]PurchaseOrderStatus{
	OrderStatusDraft:             {OrderStatusPending, OrderStatusCancelled},
	OrderStatusPending:           {OrderStatusApproved, OrderStatusCancelled},
	OrderStatusApproved:          {OrderStatusOrdered, OrderStatusCancelled},
	OrderStatusOrdered:           {OrderStatusPartiallyReceived, OrderStatusReceived},
	OrderStatusPartiallyReceived: {OrderStatusReceived},
	OrderStatusReceived:          {},
	OrderStatusCancelled:         {},
}

func (s PurchaseOrderStatus) Valid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

func (s PurchaseOrderStatus) CanTransitionTo(next PurchaseOrderStatus) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// PurchaseOrder aggregates line items bought from a supplier. TotalAmount is
// kept equal to the sum of item totals while the order is still editable.
type PurchaseOrder struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey"`
	PONumber             string    `gorm:"size:100;not null;uniqueIndex"`
	SupplierID           uuid.UUID `gorm:"type:uuid;not null;index"`
	Supplier             Supplier
	Status               PurchaseOrderStatus `gorm:"size:20;not null;default:draft;index"`
	TotalAmount          decimal.Decimal     `gorm:"type:decimal(12,2);not null"`
	OrderDate            time.Time           `gorm:"not null"`
	ExpectedDeliveryDate *time.Time
	ActualDeliveryDate   *time.Time
	CreatedBy            uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt            time.Time `gorm:"index"`
	UpdatedAt            time.Time

	Items []PurchaseOrderItem `gorm:"foreignKey:PurchaseOrderID;constraint:OnDelete:CASCADE"`
}

func (o *PurchaseOrder) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// IsLocked reports whether the order has reached a terminal state and may no
// longer be edited.
func (o *PurchaseOrder) IsLocked() bool {
	return o.Status == OrderStatusReceived || o.Status == OrderStatusCancelled
}

func (o *PurchaseOrder) CanBeApproved() bool {
	return o.Status == OrderStatusDraft || o.Status == OrderStatusPending
}

func (o *PurchaseOrder) CanBeOrdered() bool {
	return o.Status == OrderStatusApproved
}

func (o *PurchaseOrder) CanBeReceived() bool {
	return o.Status == OrderStatusOrdered || o.Status == OrderStatusPartiallyReceived
}

func (o *PurchaseOrder) CanBeCancelled() bool {
	return o.Status.CanTransitionTo(OrderStatusCancelled)
}

// CalculateTotalAmount derives the order total from its items.
func (o *PurchaseOrder) CalculateTotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.TotalPrice())
	}
	return total
}

func (o *PurchaseOrder) ItemsCount() int {
	return len(o.Items)
}

func (o *PurchaseOrder) ReceivedItemsCount() int {
	count := 0
	for _, item := range o.Items {
		if item.ReceivedQuantity > 0 {
			count++
		}
	}
	return count
}

// IsFullyReceived reports whether every item has been received in full.
// An order without items is never fully received.
func (o *PurchaseOrder) IsFullyReceived() bool {
	if len(o.Items) == 0 {
		return false
	}
	for _, item := range o.Items {
		if item.ReceivedQuantity < item.Quantity {
			return false
		}
	}
	return true
}

func (o *PurchaseOrder) IsPartiallyReceived() bool {
	return !o.IsFullyReceived() && o.ReceivedItemsCount() > 0
}

// ReceiptStatus derives the effective status from item receipt progress; it
// returns the current status unchanged when nothing has been received yet.
func (o *PurchaseOrder) ReceiptStatus() PurchaseOrderStatus {
	if o.IsFullyReceived() {
		return OrderStatusReceived
	}
	if o.IsPartiallyReceived() {
		return OrderStatusPartiallyReceived
	}
	return o.Status
}

func (o *PurchaseOrder) IsOverdue() bool {
	if o.ExpectedDeliveryDate == nil || o.Status == OrderStatusReceived {
		return false
	}
	return time.Now().After(*o.ExpectedDeliveryDate)
}

func (o *PurchaseOrder) DaysUntilDelivery() *int {
	if o.ExpectedDeliveryDate == nil {
		return nil
	}
	days := int(math.Ceil(time.Until(*o.ExpectedDeliveryDate).Hours() / 24))
	return &days
}

func (o *PurchaseOrder) Summary() string {
	supplier := o.Supplier.Name
	if supplier == "" {
		supplier = "supplier"
	}
	return fmt.Sprintf("PO #%s - %s (%s)", o.PONumber, supplier, o.Status)
}
