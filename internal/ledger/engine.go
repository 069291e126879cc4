package ledger

import (
	"fmt"

	"inventory-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Engine applies stock mutations and purchase-order transitions. Every
// mutating operation validates first, then commits record change and
// movement row in one transaction, serialized per key by an in-process
// keyed mutex (this is a single-instance deployment).
type Engine struct {
	db    *gorm.DB
	locks *keyedLocks
}

func New(db *gorm.DB) *Engine {
	return &Engine{db: db, locks: newKeyedLocks()}
}

// StockKey identifies the bookkeeping row for one product in one warehouse.
type StockKey struct {
	ProductID   uuid.UUID
	WarehouseID uuid.UUID
}

func (k StockKey) lockKey() string {
	return fmt.Sprintf("stock:%s:%s", k.ProductID, k.WarehouseID)
}

func orderLockKey(orderID uuid.UUID) string {
	return "order:" + orderID.String()
}

// MovementRef links a movement to the record that caused it.
type MovementRef struct {
	Type models.ReferenceType
	ID   uuid.UUID
}

func purchaseOrderRef(orderID uuid.UUID) *MovementRef {
	return &MovementRef{Type: models.ReferencePurchaseOrder, ID: orderID}
}
