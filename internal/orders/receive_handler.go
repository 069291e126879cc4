package orders

import (
	"inventory-backend/internal/auth"
	"inventory-backend/internal/ledger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ReceiveItemsRequest struct {
	Amount      int        `json:"amount"`
	WarehouseID *uuid.UUID `json:"warehouse_id"` // optional: stock the received units
}

// POST /api/purchase-orders/items/:id/receive
func ReceiveItemsHandler(eng *ledger.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		itemID, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "item id must be a valid uuid")
		}
		var body ReceiveItemsRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		actor, err := auth.ActorID(c)
		if err != nil {
			return err
		}

		item, err := eng.ReceiveItems(c.Context(), itemID, body.Amount, actor, body.WarehouseID)
		if err != nil {
			return ledgerError(err)
		}
		return c.JSON(fiber.Map{
			"id":                  item.ID,
			"product_id":          item.ProductID,
			"quantity":            item.Quantity,
			"received_quantity":   item.ReceivedQuantity,
			"remaining_quantity":  item.RemainingQuantity(),
			"received_percentage": item.ReceivedPercentage(),
			"receipt_status":      item.ReceiptStatus(),
		})
	}
}
