package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"inventory-backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderItemInput struct {
	ProductID uuid.UUID
	Quantity  int
	UnitPrice decimal.Decimal
}

type CreateOrderInput struct {
	SupplierID           uuid.UUID
	Status               models.PurchaseOrderStatus // draft or pending; empty means pending
	OrderDate            *time.Time
	ExpectedDeliveryDate *time.Time
	Items                []OrderItemInput
	CreatedBy            uuid.UUID
}

type UpdateOrderInput struct {
	SupplierID           *uuid.UUID
	OrderDate            *time.Time
	ExpectedDeliveryDate *time.Time
	Items                []OrderItemInput // nil leaves items untouched
}

// CreateOrder validates the supplier and every line item, generates the PO
// number and derives the total before anything is written.
func (e *Engine) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.PurchaseOrder, error) {
	status := input.Status
	if status == "" {
		status = models.OrderStatusPending
	}
	if status != models.OrderStatusDraft && status != models.OrderStatusPending {
		return nil, fmt.Errorf("%w: new orders start as draft or pending, not %s", ErrInvalidStatusTransition, status)
	}

	orderDate := time.Now()
	if input.OrderDate != nil {
		orderDate = *input.OrderDate
	}

	var order models.PurchaseOrder
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureSupplier(tx, input.SupplierID); err != nil {
			return err
		}
		items, err := buildOrderItems(tx, input.Items)
		if err != nil {
			return err
		}

		order = models.PurchaseOrder{
			PONumber:             generatePONumber(),
			SupplierID:           input.SupplierID,
			Status:               status,
			OrderDate:            orderDate,
			ExpectedDeliveryDate: input.ExpectedDeliveryDate,
			CreatedBy:            input.CreatedBy,
			Items:                items,
		}
		order.TotalAmount = order.CalculateTotalAmount()
		return tx.Create(&order).Error
	})
	if err != nil {
		return nil, err
	}
	return e.GetOrder(ctx, order.ID)
}

// UpdateOrderStatus moves the order along the lifecycle table. Any step not
// in the allowed set is rejected and leaves the status unchanged.
func (e *Engine) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, next models.PurchaseOrderStatus) (*models.PurchaseOrder, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidStatusTransition, next)
	}

	unlock := e.locks.lock(orderLockKey(orderID))
	defer unlock()

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := findOrder(tx, orderID, false)
		if err != nil {
			return err
		}
		if !order.Status.CanTransitionTo(next) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, order.Status, next)
		}

		order.Status = next
		if next == models.OrderStatusOrdered && order.OrderDate.IsZero() {
			order.OrderDate = time.Now()
		}
		if next == models.OrderStatusReceived && order.ActualDeliveryDate == nil {
			now := time.Now()
			order.ActualDeliveryDate = &now
		}
		return tx.Save(order).Error
	})
	if err != nil {
		return nil, err
	}
	return e.GetOrder(ctx, orderID)
}

// UpdateOrder edits supplier, dates and (while still pre-ordered) the item
// list. Terminal orders are immutable.
func (e *Engine) UpdateOrder(ctx context.Context, orderID uuid.UUID, input UpdateOrderInput) (*models.PurchaseOrder, error) {
	unlock := e.locks.lock(orderLockKey(orderID))
	defer unlock()

	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := findOrder(tx, orderID, true)
		if err != nil {
			return err
		}
		if order.IsLocked() {
			return fmt.Errorf("%w: status is %s", ErrOrderLocked, order.Status)
		}

		if input.SupplierID != nil {
			if err := ensureSupplier(tx, *input.SupplierID); err != nil {
				return err
			}
			order.SupplierID = *input.SupplierID
		}
		if input.OrderDate != nil {
			order.OrderDate = *input.OrderDate
		}
		if input.ExpectedDeliveryDate != nil {
			order.ExpectedDeliveryDate = input.ExpectedDeliveryDate
		}

		if input.Items != nil {
			if err := rewriteOrderItems(tx, order, input.Items); err != nil {
				return err
			}
		}

		order.TotalAmount = order.CalculateTotalAmount()
		return tx.Omit(clause.Associations).Save(order).Error
	})
	if err != nil {
		return nil, err
	}
	return e.GetOrder(ctx, orderID)
}

// UpdateOrderItems replaces the item list of a pre-ordered order and
// re-derives the total.
func (e *Engine) UpdateOrderItems(ctx context.Context, orderID uuid.UUID, items []OrderItemInput) (*models.PurchaseOrder, error) {
	if items == nil {
		items = []OrderItemInput{}
	}
	return e.UpdateOrder(ctx, orderID, UpdateOrderInput{Items: items})
}

// ReceiveItems records that goods for one line item arrived. The order's
// effective status is recomputed from its items as a side effect; receiving
// is monotonic and idempotent at order level. When warehouseID is given the
// received units are stocked in the same serialized scope, and the movement
// references the purchase order.
func (e *Engine) ReceiveItems(ctx context.Context, itemID uuid.UUID, amount int, actor uuid.UUID, warehouseID *uuid.UUID) (*models.PurchaseOrderItem, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidAmount, amount)
	}

	// The item's order never changes, so the lookup can happen before the
	// order lock is taken.
	var probe models.PurchaseOrderItem
	err := e.db.WithContext(ctx).First(&probe, "id = ?", itemID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderItemNotFound
	}
	if err != nil {
		return nil, err
	}

	unlock := e.locks.lock(orderLockKey(probe.PurchaseOrderID))
	defer unlock()
	if warehouseID != nil {
		key := StockKey{ProductID: probe.ProductID, WarehouseID: *warehouseID}
		unlockStock := e.locks.lock(key.lockKey())
		defer unlockStock()
	}

	var received models.PurchaseOrderItem
	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.PurchaseOrderItem
		if err := tx.First(&item, "id = ?", itemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderItemNotFound
			}
			return err
		}
		order, err := findOrder(tx, item.PurchaseOrderID, true)
		if err != nil {
			return err
		}

		if order.Status == models.OrderStatusCancelled {
			return fmt.Errorf("%w: order is cancelled", ErrOrderLocked)
		}
		// Receiving against an already-received order falls through to the
		// over-receipt check below.
		if !order.CanBeReceived() && order.Status != models.OrderStatusReceived {
			return fmt.Errorf("%w: cannot receive against a %s order", ErrInvalidStatusTransition, order.Status)
		}
		if amount > item.RemainingQuantity() {
			return fmt.Errorf("%w: requested %d, remaining %d", ErrOverReceipt, amount, item.RemainingQuantity())
		}

		item.ReceivedQuantity += amount
		if err := tx.Save(&item).Error; err != nil {
			return err
		}

		// Keep the in-memory aggregate in sync for the status derivation.
		for idx := range order.Items {
			if order.Items[idx].ID == item.ID {
				order.Items[idx].ReceivedQuantity = item.ReceivedQuantity
			}
		}
		next := order.ReceiptStatus()
		if next != order.Status {
			updates := map[string]any{"status": next}
			if next == models.OrderStatusReceived && order.ActualDeliveryDate == nil {
				updates["actual_delivery_date"] = time.Now()
			}
			if err := tx.Model(&models.PurchaseOrder{}).Where("id = ?", order.ID).Updates(updates).Error; err != nil {
				return err
			}
		}

		if warehouseID != nil {
			key := StockKey{ProductID: item.ProductID, WarehouseID: *warehouseID}
			if err := stockReceivedUnits(tx, key, amount, actor, order.ID); err != nil {
				return err
			}
		}

		received = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &received, nil
}

// DeleteOrder removes an order that has not progressed past pending.
func (e *Engine) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	unlock := e.locks.lock(orderLockKey(orderID))
	defer unlock()

	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := findOrder(tx, orderID, false)
		if err != nil {
			return err
		}
		if order.Status != models.OrderStatusDraft && order.Status != models.OrderStatusPending {
			return fmt.Errorf("%w: only draft or pending orders can be deleted", ErrOrderLocked)
		}
		if err := tx.Where("purchase_order_id = ?", orderID).Delete(&models.PurchaseOrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(order).Error
	})
}

// GetOrder loads the order with supplier, items and item products.
func (e *Engine) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.PurchaseOrder, error) {
	var order models.PurchaseOrder
	err := e.db.WithContext(ctx).
		Preload("Supplier").
		Preload("Items").
		Preload("Items.Product").
		First(&order, "id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func findOrder(tx *gorm.DB, orderID uuid.UUID, withItems bool) (*models.PurchaseOrder, error) {
	var order models.PurchaseOrder
	q := tx
	if withItems {
		q = q.Preload("Items")
	}
	err := q.First(&order, "id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func buildOrderItems(tx *gorm.DB, inputs []OrderItemInput) ([]models.PurchaseOrderItem, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: purchase order must have at least one item", ErrInvalidOrderItem)
	}
	items := make([]models.PurchaseOrderItem, 0, len(inputs))
	for _, in := range inputs {
		if in.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive", ErrInvalidOrderItem)
		}
		if !in.UnitPrice.IsPositive() {
			return nil, fmt.Errorf("%w: unit price must be positive", ErrInvalidOrderItem)
		}
		if err := ensureProduct(tx, in.ProductID); err != nil {
			if errors.Is(err, ErrProductNotFound) {
				return nil, fmt.Errorf("%w: product %s not found", ErrInvalidOrderItem, in.ProductID)
			}
			return nil, err
		}
		items = append(items, models.PurchaseOrderItem{
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			UnitPrice: in.UnitPrice,
		})
	}
	return items, nil
}

// rewriteOrderItems replaces the item list in place. Allowed only while
// the order is pre-ordered; afterwards only receiving may touch items.
func rewriteOrderItems(tx *gorm.DB, order *models.PurchaseOrder, inputs []OrderItemInput) error {
	switch order.Status {
	case models.OrderStatusDraft, models.OrderStatusPending, models.OrderStatusApproved:
	default:
		return fmt.Errorf("%w: items cannot be edited once the order is %s", ErrOrderLocked, order.Status)
	}

	items, err := buildOrderItems(tx, inputs)
	if err != nil {
		return err
	}
	if err := tx.Where("purchase_order_id = ?", order.ID).Delete(&models.PurchaseOrderItem{}).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].PurchaseOrderID = order.ID
	}
	if err := tx.Create(&items).Error; err != nil {
		return err
	}
	order.Items = items
	return nil
}

// stockReceivedUnits books received goods into the warehouse inside the
// receiving transaction, creating the stock record on first stocking.
func stockReceivedUnits(tx *gorm.DB, key StockKey, amount int, actor, orderID uuid.UUID) error {
	r, err := findStockRecord(tx, key)
	if errors.Is(err, ErrStockRecordNotFound) {
		if err := ensureWarehouse(tx, key.WarehouseID); err != nil {
			return err
		}
		r = &models.StockRecord{ProductID: key.ProductID, WarehouseID: key.WarehouseID}
		if err := tx.Create(r).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	r.Quantity += amount
	if err := tx.Save(r).Error; err != nil {
		return err
	}
	return appendMovement(tx, key, models.MovementIn, amount, actor, purchaseOrderRef(orderID), "")
}

// generatePONumber matches the established numbering scheme; the unique
// index on po_number backs it up.
func generatePONumber() string {
	return fmt.Sprintf("PO-%d-%d", time.Now().UnixMilli(), rand.Intn(1000))
}
