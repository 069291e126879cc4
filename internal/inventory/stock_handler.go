package inventory

import (
	"inventory-backend/internal/auth"
	"inventory-backend/internal/ledger"
	"inventory-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type CreateStockRecordRequest struct {
	ProductID        uuid.UUID `json:"product_id"`
	WarehouseID      uuid.UUID `json:"warehouse_id"`
	Quantity         int       `json:"quantity"`
	ReservedQuantity int       `json:"reserved_quantity"`
}

type StockMutationRequest struct {
	ProductID     uuid.UUID  `json:"product_id"`
	WarehouseID   uuid.UUID  `json:"warehouse_id"`
	Amount        int        `json:"amount"`
	ReferenceType *string    `json:"reference_type"`
	ReferenceID   *uuid.UUID `json:"reference_id"`
}

type AdjustStockRequest struct {
	ProductID        uuid.UUID `json:"product_id"`
	WarehouseID      uuid.UUID `json:"warehouse_id"`
	Quantity         int       `json:"quantity"`
	ReservedQuantity int       `json:"reserved_quantity"`
	Notes            string    `json:"notes"`
}

type TransferStockRequest struct {
	ProductID       uuid.UUID `json:"product_id"`
	FromWarehouseID uuid.UUID `json:"from_warehouse_id"`
	ToWarehouseID   uuid.UUID `json:"to_warehouse_id"`
	Amount          int       `json:"amount"`
}

type StockRecordResponse struct {
	ID                uuid.UUID          `json:"id"`
	ProductID         uuid.UUID          `json:"product_id"`
	ProductName       string             `json:"product_name,omitempty"`
	ProductSKU        string             `json:"product_sku,omitempty"`
	WarehouseID       uuid.UUID          `json:"warehouse_id"`
	WarehouseName     string             `json:"warehouse_name,omitempty"`
	Quantity          int                `json:"quantity"`
	ReservedQuantity  int                `json:"reserved_quantity"`
	AvailableQuantity int                `json:"available_quantity"`
	StockStatus       models.StockStatus `json:"stock_status"`
	StockPercentage   *int               `json:"stock_percentage,omitempty"`
	Formatted         string             `json:"formatted"`
}

func stockRecordResponse(r *models.StockRecord) StockRecordResponse {
	return StockRecordResponse{
		ID:                r.ID,
		ProductID:         r.ProductID,
		ProductName:       r.Product.Name,
		ProductSKU:        r.Product.SKU,
		WarehouseID:       r.WarehouseID,
		WarehouseName:     r.Warehouse.Name,
		Quantity:          r.Quantity,
		ReservedQuantity:  r.ReservedQuantity,
		AvailableQuantity: r.Available(),
		StockStatus:       r.Status(),
		StockPercentage:   r.StockPercentage(),
		Formatted:         r.FormattedQuantity(),
	}
}

func parseMutation(c *fiber.Ctx) (StockMutationRequest, ledger.StockKey, error) {
	var body StockMutationRequest
	if err := c.BodyParser(&body); err != nil {
		return body, ledger.StockKey{}, fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if body.ProductID == uuid.Nil || body.WarehouseID == uuid.Nil {
		return body, ledger.StockKey{}, fiber.NewError(fiber.StatusBadRequest, "product_id and warehouse_id are required")
	}
	return body, ledger.StockKey{ProductID: body.ProductID, WarehouseID: body.WarehouseID}, nil
}

func movementRef(body StockMutationRequest) *ledger.MovementRef {
	if body.ReferenceType == nil || body.ReferenceID == nil {
		return nil
	}
	return &ledger.MovementRef{Type: models.ReferenceType(*body.ReferenceType), ID: *body.ReferenceID}
}

func stockKeyFromQuery(c *fiber.Ctx) (ledger.StockKey, error) {
	productID, err := uuid.Parse(c.Query("product_id"))
	if err != nil {
		return ledger.StockKey{}, fiber.NewError(fiber.StatusBadRequest, "product_id must be a valid uuid")
	}
	warehouseID, err := uuid.Parse(c.Query("warehouse_id"))
	if err != nil {
		return ledger.StockKey{}, fiber.NewError(fiber.StatusBadRequest, "warehouse_id must be a valid uuid")
	}
	return ledger.StockKey{ProductID: productID, WarehouseID: warehouseID}, nil
}

// POST /api/stock
func CreateStockRecordHandler(eng *ledger.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateStockRecordRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if body.ProductID == uuid.Nil || body.WarehouseID == uuid.Nil {
			return fiber.NewError(fiber.StatusBadRequest, "product_id and warehouse_id are required")
		}

		actor, err := auth.ActorID(c)
		if err != nil {
			return err
		}

		key := ledger.StockKey{ProductID: body.ProductID, WarehouseID: body.WarehouseID}
		record, err := eng.CreateStockRecord(c.Context(), key, body.Quantity, body.ReservedQuantity, actor)
		if err != nil {
			return ledgerError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(stockRecordResponse(record))
	}
}

// GET /api/stock/record?product_id=&warehouse_id=
func GetStockRecordHandler(eng *ledger.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key, err := stockKeyFromQuery(c)
		if err != nil {
			return err
		}
		record, err := eng.GetStockRecord(c.Context(), key)
		if err != nil {
			return ledgerError(err)
		}
		return c.JSON(stockRecordResponse(record))
	}
}

// DELETE /api/stock/record?product_id=&warehouse_id=
func DeleteStockRecordHandler(eng *ledger.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key, err := stockKeyFromQuery(c)
		if err != nil {
			return err
		}
		if err := eng.DeleteStockRecord(c.Context(), key); err != nil {
			return ledgerError(err)
		}
		return c.JSON(fiber.Map{"message": "stock record deleted"})
	}
}

// POST /api/stock/add
func AddStockHandler(eng *ledger.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body, key, err := parseMutation(c)
		if err != nil {
			return err
		}
		actor, err := auth.ActorID(c)
		if err != nil {
			return err
		}
		record, err := eng.AddStock(c.Context(), key, body.Amount, actor, movementRef(body))
		if err != nil {
			return ledgerError(err)
		}
		return c.JSON(stockRecordResponse(record))
	}
}

// POST /api/stock/remove
func RemoveStockHandler(eng *ledger.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body, key, err := parseMutation(c)
		if err != nil {
			return err
		}
		actor, err := auth.ActorID(c)
		if err != nil {
			return err
		}
		record, err := eng.RemoveStock(c.Context(), key, body.Amount, actor, movementRef(body))
		if err != nil {
			return ledgerError(err)
		}
		return c.JSON(stockRecordResponse(record))
	}
}

// POST /api/stock/reserve
func ReserveStockHandler(eng *ledger.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body, key, err := parseMutation(c)
		if err != nil {
			return err
		}
		record, err := eng.ReserveStock(c.Context(), key, body.Amount)
		if err != nil {
			return ledgerError(err)
		}
		return c.JSON(stockRecordResponse(record))
	}
}

// POST /api/stock/release
func ReleaseStockHandler(eng *ledger.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		body, key, err := parseMutation(c)
		if err != nil {
			return err
		}
		record, err := eng.ReleaseReservedStock(c.Context(), key, body.Amount)
		if err != nil {
			return ledgerError(err)
		}
		return c.JSON(stockRecordResponse(record))
	}
}

// POST /api/stock/adjust
func AdjustStockHandler(eng *ledger.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body AdjustStockRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		actor, err := auth.ActorID(c)
		if err != nil {
			return err
		}
		key := ledger.StockKey{ProductID: body.ProductID, WarehouseID: body.WarehouseID}
		record, err := eng.AdjustStock(c.Context(), key, body.Quantity, body.ReservedQuantity, actor, body.Notes)
		if err != nil {
			return ledgerError(err)
		}
		return c.JSON(stockRecordResponse(record))
	}
}

// POST /api/stock/transfer
func TransferStockHandler(eng *ledger.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body TransferStockRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		actor, err := auth.ActorID(c)
		if err != nil {
			return err
		}
		if err := eng.TransferStock(c.Context(), body.ProductID, body.FromWarehouseID, body.ToWarehouseID, body.Amount, actor); err != nil {
			return ledgerError(err)
		}
		return c.JSON(fiber.Map{"message": "stock transferred"})
	}
}
