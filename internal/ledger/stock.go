package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"inventory-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateStockRecord creates the bookkeeping row for a (product, warehouse)
// pair, optionally seeded with starting quantities.
func (e *Engine) CreateStockRecord(ctx context.Context, key StockKey, quantity, reserved int, actor uuid.UUID) (*models.StockRecord, error) {
	if quantity < 0 || reserved < 0 {
		return nil, fmt.Errorf("%w: quantities cannot be negative", ErrInvalidAmount)
	}
	if reserved > quantity {
		return nil, fmt.Errorf("%w: reserved %d, quantity %d", ErrInvalidAdjustment, reserved, quantity)
	}

	unlock := e.locks.lock(key.lockKey())
	defer unlock()

	var record models.StockRecord
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureProduct(tx, key.ProductID); err != nil {
			return err
		}
		if err := ensureWarehouse(tx, key.WarehouseID); err != nil {
			return err
		}

		var existing models.StockRecord
		err := tx.Where("product_id = ? AND warehouse_id = ?", key.ProductID, key.WarehouseID).
			First(&existing).Error
		if err == nil {
			return ErrDuplicateStockRecord
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		record = models.StockRecord{
			ProductID:        key.ProductID,
			WarehouseID:      key.WarehouseID,
			Quantity:         quantity,
			ReservedQuantity: reserved,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		// Seeding stock on creation is still a stock change; it must show
		// up in the movement log like any other.
		if quantity > 0 {
			return appendMovement(tx, key, models.MovementIn, quantity, actor, nil, "initial stock")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return e.GetStockRecord(ctx, key)
}

// AddStock increases the physical quantity. The record is created on first
// stocking of a product into a warehouse.
func (e *Engine) AddStock(ctx context.Context, key StockKey, amount int, actor uuid.UUID, ref *MovementRef) (*models.StockRecord, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidAmount, amount)
	}

	unlock := e.locks.lock(key.lockKey())
	defer unlock()

	var record models.StockRecord
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := findStockRecord(tx, key)
		if errors.Is(err, ErrStockRecordNotFound) {
			if err := ensureProduct(tx, key.ProductID); err != nil {
				return err
			}
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
		record = *r
		return appendMovement(tx, key, models.MovementIn, amount, actor, ref, "")
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// RemoveStock decreases the physical quantity. It never touches reserved
// units: only available stock can leave the warehouse.
func (e *Engine) RemoveStock(ctx context.Context, key StockKey, amount int, actor uuid.UUID, ref *MovementRef) (*models.StockRecord, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidAmount, amount)
	}

	unlock := e.locks.lock(key.lockKey())
	defer unlock()

	var record models.StockRecord
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := findStockRecord(tx, key)
		if err != nil {
			return err
		}
		if r.Available() < amount {
			return fmt.Errorf("%w: requested %d, available %d", ErrInsufficientAvailableStock, amount, r.Available())
		}

		r.Quantity -= amount
		if err := tx.Save(r).Error; err != nil {
			return err
		}
		record = *r
		return appendMovement(tx, key, models.MovementOut, amount, actor, ref, "")
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ReserveStock earmarks available units without moving them. Reservations
// are bookkeeping only, so no movement row is written.
func (e *Engine) ReserveStock(ctx context.Context, key StockKey, amount int) (*models.StockRecord, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidAmount, amount)
	}

	unlock := e.locks.lock(key.lockKey())
	defer unlock()

	var record models.StockRecord
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := findStockRecord(tx, key)
		if err != nil {
			return err
		}
		if r.Available() < amount {
			return fmt.Errorf("%w: requested %d, available %d", ErrInsufficientAvailableStock, amount, r.Available())
		}

		r.ReservedQuantity += amount
		if err := tx.Save(r).Error; err != nil {
			return err
		}
		record = *r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ReleaseReservedStock returns earmarked units to the available pool.
func (e *Engine) ReleaseReservedStock(ctx context.Context, key StockKey, amount int) (*models.StockRecord, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidAmount, amount)
	}

	unlock := e.locks.lock(key.lockKey())
	defer unlock()

	var record models.StockRecord
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := findStockRecord(tx, key)
		if err != nil {
			return err
		}
		if r.ReservedQuantity < amount {
			return fmt.Errorf("%w: requested %d, reserved %d", ErrReservationUnderflow, amount, r.ReservedQuantity)
		}

		r.ReservedQuantity -= amount
		if err := tx.Save(r).Error; err != nil {
			return err
		}
		record = *r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// AdjustStock sets both quantities directly, for stock counts and
// corrections. The delta in physical quantity is logged as an adjustment.
func (e *Engine) AdjustStock(ctx context.Context, key StockKey, quantity, reserved int, actor uuid.UUID, notes string) (*models.StockRecord, error) {
	if quantity < 0 || reserved < 0 {
		return nil, fmt.Errorf("%w: quantities cannot be negative", ErrInvalidAmount)
	}
	if reserved > quantity {
		return nil, fmt.Errorf("%w: reserved %d, quantity %d", ErrInvalidAdjustment, reserved, quantity)
	}

	unlock := e.locks.lock(key.lockKey())
	defer unlock()

	var record models.StockRecord
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := findStockRecord(tx, key)
		if err != nil {
			return err
		}

		delta := quantity - r.Quantity
		r.Quantity = quantity
		r.ReservedQuantity = reserved
		if err := tx.Save(r).Error; err != nil {
			return err
		}
		record = *r

		if delta == 0 {
			return nil
		}
		if delta < 0 {
			delta = -delta
		}
		ref := &MovementRef{Type: models.ReferenceAdjustment, ID: r.ID}
		return appendMovement(tx, key, models.MovementAdjustment, delta, actor, ref, notes)
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// TransferStock moves available units between two warehouses atomically.
// Both keys are locked in deterministic order so concurrent opposite
// transfers cannot deadlock.
func (e *Engine) TransferStock(ctx context.Context, productID, fromWarehouse, toWarehouse uuid.UUID, amount int, actor uuid.UUID) error {
	if amount <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidAmount, amount)
	}
	if fromWarehouse == toWarehouse {
		return fmt.Errorf("%w: source and destination warehouse are the same", ErrInvalidAmount)
	}

	src := StockKey{ProductID: productID, WarehouseID: fromWarehouse}
	dst := StockKey{ProductID: productID, WarehouseID: toWarehouse}

	keys := []string{src.lockKey(), dst.lockKey()}
	sort.Strings(keys)
	for _, k := range keys {
		unlock := e.locks.lock(k)
		defer unlock()
	}

	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		from, err := findStockRecord(tx, src)
		if err != nil {
			return err
		}
		if from.Available() < amount {
			return fmt.Errorf("%w: requested %d, available %d", ErrInsufficientAvailableStock, amount, from.Available())
		}

		to, err := findStockRecord(tx, dst)
		if errors.Is(err, ErrStockRecordNotFound) {
			if err := ensureWarehouse(tx, toWarehouse); err != nil {
				return err
			}
			to = &models.StockRecord{ProductID: productID, WarehouseID: toWarehouse}
			if err := tx.Create(to).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		from.Quantity -= amount
		to.Quantity += amount
		if err := tx.Save(from).Error; err != nil {
			return err
		}
		if err := tx.Save(to).Error; err != nil {
			return err
		}

		ref := &MovementRef{Type: models.ReferenceTransfer, ID: to.ID}
		if err := appendMovement(tx, src, models.MovementTransfer, amount, actor, ref,
			fmt.Sprintf("transfer to warehouse %s", toWarehouse)); err != nil {
			return err
		}
		ref = &MovementRef{Type: models.ReferenceTransfer, ID: from.ID}
		return appendMovement(tx, dst, models.MovementTransfer, amount, actor, ref,
			fmt.Sprintf("transfer from warehouse %s", fromWarehouse))
	})
}

// DeleteStockRecord removes the bookkeeping row. Only empty records may go:
// the movement history of a stocked record must stay explainable.
func (e *Engine) DeleteStockRecord(ctx context.Context, key StockKey) error {
	unlock := e.locks.lock(key.lockKey())
	defer unlock()

	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r, err := findStockRecord(tx, key)
		if err != nil {
			return err
		}
		if r.Quantity > 0 {
			return fmt.Errorf("%w: quantity is %d", ErrStockNotEmpty, r.Quantity)
		}
		return tx.Delete(r).Error
	})
}

// GetStockRecord loads the record with its product and warehouse.
func (e *Engine) GetStockRecord(ctx context.Context, key StockKey) (*models.StockRecord, error) {
	var record models.StockRecord
	err := e.db.WithContext(ctx).
		Preload("Product").Preload("Warehouse").
		Where("product_id = ? AND warehouse_id = ?", key.ProductID, key.WarehouseID).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrStockRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func findStockRecord(tx *gorm.DB, key StockKey) (*models.StockRecord, error) {
	var record models.StockRecord
	err := tx.Where("product_id = ? AND warehouse_id = ?", key.ProductID, key.WarehouseID).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrStockRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func appendMovement(tx *gorm.DB, key StockKey, movementType models.MovementType, quantity int, actor uuid.UUID, ref *MovementRef, notes string) error {
	movement := models.StockMovement{
		ProductID:    key.ProductID,
		WarehouseID:  key.WarehouseID,
		MovementType: movementType,
		Quantity:     quantity,
		Notes:        notes,
		CreatedBy:    actor,
	}
	if ref != nil {
		movement.ReferenceType = &ref.Type
		movement.ReferenceID = &ref.ID
	}
	return tx.Create(&movement).Error
}

func ensureProduct(tx *gorm.DB, id uuid.UUID) error {
	var count int64
	if err := tx.Model(&models.Product{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%w: %s", ErrProductNotFound, id)
	}
	return nil
}

func ensureWarehouse(tx *gorm.DB, id uuid.UUID) error {
	var count int64
	if err := tx.Model(&models.Warehouse{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%w: %s", ErrWarehouseNotFound, id)
	}
	return nil
}

func ensureSupplier(tx *gorm.DB, id uuid.UUID) error {
	var count int64
	if err := tx.Model(&models.Supplier{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("%w: %s", ErrSupplierNotFound, id)
	}
	return nil
}
