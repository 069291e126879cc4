package inventory

import (
	"errors"

	"inventory-backend/internal/ledger"

	"github.com/gofiber/fiber/v2"
)

// ledgerError maps engine errors onto HTTP statuses: validation failures are
// 400, missing rows are 404, anything else bubbles up as a 500.
func ledgerError(err error) error {
	switch {
	case ledger.IsNotFound(err):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrInsufficientAvailableStock),
		errors.Is(err, ledger.ErrReservationUnderflow),
		errors.Is(err, ledger.ErrDuplicateStockRecord),
		errors.Is(err, ledger.ErrStockNotEmpty),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidAdjustment):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return err
	}
}
