package ledger

import "errors"

// Caller-facing validation failures. Every mutation is validated in full
// before any write; none of these leaves partial state behind.
var (
	ErrInsufficientAvailableStock = errors.New("insufficient available stock")
	ErrReservationUnderflow       = errors.New("reserved quantity underflow")
	ErrDuplicateStockRecord       = errors.New("stock record already exists for this product in this warehouse")
	ErrStockNotEmpty              = errors.New("cannot delete stock record with existing stock")
	ErrInvalidStatusTransition    = errors.New("invalid status transition")
	ErrOrderLocked                = errors.New("purchase order can no longer be modified")
	ErrOverReceipt                = errors.New("receive amount exceeds remaining quantity")
	ErrInvalidOrderItem           = errors.New("invalid order item")
	ErrInvalidAmount              = errors.New("amount must be a positive integer")
	ErrInvalidAdjustment          = errors.New("reserved quantity cannot exceed quantity")
)

// Missing-row lookups, kept separate from the validation taxonomy so the
// HTTP layer can answer 404 instead of 400.
var (
	ErrStockRecordNotFound = errors.New("stock record not found")
	ErrOrderNotFound       = errors.New("purchase order not found")
	ErrOrderItemNotFound   = errors.New("purchase order item not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrWarehouseNotFound   = errors.New("warehouse not found")
	ErrSupplierNotFound    = errors.New("supplier not found")
)

// IsNotFound reports whether err is one of the missing-row errors.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrStockRecordNotFound) ||
		errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrOrderItemNotFound) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrWarehouseNotFound) ||
		errors.Is(err, ErrSupplierNotFound)
}
