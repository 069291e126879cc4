package orders

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
	case errors.Is(err, ledger.ErrInvalidStatusTransition),
		errors.Is(err, ledger.ErrOrderLocked),
		errors.Is(err, ledger.ErrOverReceipt),
		errors.Is(err, ledger.ErrInvalidOrderItem),
		errors.Is(err, ledger.ErrInvalidAmount):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	default:
		return err
	}
}
