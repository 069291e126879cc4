package orders

import (
	"time"

	"inventory-backend/internal/auth"
	"inventory-backend/internal/ledger"
	"inventory-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderItemRequest struct {
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type CreateOrderRequest struct {
	SupplierID           uuid.UUID          `json:"supplier_id"`
	Status               string             `json:"status"`
	OrderDate            string             `json:"order_date"`             // "2006-01-02", optional
	ExpectedDeliveryDate string             `json:"expected_delivery_date"` // "2006-01-02", optional
	Items                []OrderItemRequest `json:"items"`
}

type UpdateOrderRequest struct {
	SupplierID           *uuid.UUID          `json:"supplier_id"`
	OrderDate            string              `json:"order_date"`
	ExpectedDeliveryDate string              `json:"expected_delivery_date"`
	Items                *[]OrderItemRequest `json:"items"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type OrderItemResponse struct {
	ID                 uuid.UUID       `json:"id"`
	ProductID          uuid.UUID       `json:"product_id"`
	ProductName        string          `json:"product_name,omitempty"`
	ProductSKU         string          `json:"product_sku,omitempty"`
	Quantity           int             `json:"quantity"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	TotalPrice         decimal.Decimal `json:"total_price"`
	ReceivedQuantity   int             `json:"received_quantity"`
	RemainingQuantity  int             `json:"remaining_quantity"`
	ReceivedPercentage int             `json:"received_percentage"`
	ReceiptStatus      string          `json:"receipt_status"`
}

type OrderResponse struct {
	ID                   uuid.UUID           `json:"id"`
	PONumber             string              `json:"po_number"`
	SupplierID           uuid.UUID           `json:"supplier_id"`
	SupplierName         string              `json:"supplier_name,omitempty"`
	Status               string              `json:"status"`
	TotalAmount          decimal.Decimal     `json:"total_amount"`
	OrderDate            time.Time           `json:"order_date"`
	ExpectedDeliveryDate *time.Time          `json:"expected_delivery_date,omitempty"`
	ActualDeliveryDate   *time.Time          `json:"actual_delivery_date,omitempty"`
	IsOverdue            bool                `json:"is_overdue"`
	Items                []OrderItemResponse `json:"items"`
	CreatedAt            time.Time           `json:"created_at"`
}

func orderResponse(o *models.PurchaseOrder) OrderResponse {
	items := make([]OrderItemResponse, 0, len(o.Items))
	for i := range o.Items {
		item := &o.Items[i]
		items = append(items, OrderItemResponse{
			ID:                 item.ID,
			ProductID:          item.ProductID,
			ProductName:        item.Product.Name,
			ProductSKU:         item.Product.SKU,
			Quantity:           item.Quantity,
			UnitPrice:          item.UnitPrice,
			TotalPrice:         item.TotalPrice(),
			ReceivedQuantity:   item.ReceivedQuantity,
			RemainingQuantity:  item.RemainingQuantity(),
			ReceivedPercentage: item.ReceivedPercentage(),
			ReceiptStatus:      string(item.ReceiptStatus()),
		})
	}
	return OrderResponse{
		ID:                   o.ID,
		PONumber:             o.PONumber,
		SupplierID:           o.SupplierID,
		SupplierName:         o.Supplier.Name,
		Status:               string(o.Status),
		TotalAmount:          o.TotalAmount,
		OrderDate:            o.OrderDate,
		ExpectedDeliveryDate: o.ExpectedDeliveryDate,
		ActualDeliveryDate:   o.ActualDeliveryDate,
		IsOverdue:            o.IsOverdue(),
		Items:                items,
		CreatedAt:            o.CreatedAt,
	}
}

func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	d, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "dates must use the 'YYYY-MM-DD' format")
	}
	return &d, nil
}

func itemInputs(items []OrderItemRequest) []ledger.OrderItemInput {
	inputs := make([]ledger.OrderItemInput, 0, len(items))
	for _, it := range items {
		inputs = append(inputs, ledger.OrderItemInput{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	return inputs
}

// POST /api/purchase-orders
func CreateOrderHandler(eng *ledger.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if body.SupplierID == uuid.Nil {
			return fiber.NewError(fiber.StatusBadRequest, "supplier_id is required")
		}

		orderDate, err := parseDate(body.OrderDate)
		if err != nil {
			return err
		}
		expected, err := parseDate(body.ExpectedDeliveryDate)
		if err != nil {
			return err
		}
		actor, err := auth.ActorID(c)
		if err != nil {
			return err
		}

		order, err := eng.CreateOrder(c.Context(), ledger.CreateOrderInput{
			SupplierID:           body.SupplierID,
			Status:               models.PurchaseOrderStatus(body.Status),
			OrderDate:            orderDate,
			ExpectedDeliveryDate: expected,
			Items:                itemInputs(body.Items),
			CreatedBy:            actor,
		})
		if err != nil {
			return ledgerError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(orderResponse(order))
	}
}

// GET /api/purchase-orders/:id
func GetOrderHandler(eng *ledger.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "order id must be a valid uuid")
		}
		order, err := eng.GetOrder(c.Context(), id)
		if err != nil {
			return ledgerError(err)
		}
		return c.JSON(orderResponse(order))
	}
}

// GET /api/purchase-orders?supplier_id=&status=
func ListOrdersHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := db.WithContext(c.Context()).
			Preload("Supplier").
			Preload("Items").
			Preload("Items.Product").
			Order("created_at DESC")

		if v := c.Query("supplier_id"); v != "" {
			id, err := uuid.Parse(v)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "supplier_id must be a valid uuid")
			}
			q = q.Where("supplier_id = ?", id)
		}
		if v := c.Query("status"); v != "" {
			q = q.Where("status = ?", v)
		}

		var list []models.PurchaseOrder
		if err := q.Find(&list).Error; err != nil {
			return err
		}

		out := make([]OrderResponse, 0, len(list))
		for i := range list {
			out = append(out, orderResponse(&list[i]))
		}
		return c.JSON(out)
	}
}

// PUT /api/purchase-orders/:id
func UpdateOrderHandler(eng *ledger.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "order id must be a valid uuid")
		}
		var body UpdateOrderRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		orderDate, err := parseDate(body.OrderDate)
		if err != nil {
			return err
		}
		expected, err := parseDate(body.ExpectedDeliveryDate)
		if err != nil {
			return err
		}

		input := ledger.UpdateOrderInput{
			SupplierID:           body.SupplierID,
			OrderDate:            orderDate,
			ExpectedDeliveryDate: expected,
		}
		if body.Items != nil {
			input.Items = itemInputs(*body.Items)
		}

		order, err := eng.UpdateOrder(c.Context(), id, input)
		if err != nil {
			return ledgerError(err)
		}
		return c.JSON(orderResponse(order))
	}
}

// PUT /api/purchase-orders/:id/items
func UpdateOrderItemsHandler(eng *ledger.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "order id must be a valid uuid")
		}
		var body struct {
			Items []OrderItemRequest `json:"items"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		order, err := eng.UpdateOrderItems(c.Context(), id, itemInputs(body.Items))
		if err != nil {
			return ledgerError(err)
		}
		return c.JSON(orderResponse(order))
	}
}

// PUT /api/purchase-orders/:id/status
func UpdateOrderStatusHandler(eng *ledger.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "order id must be a valid uuid")
		}
		var body UpdateStatusRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}

		order, err := eng.UpdateOrderStatus(c.Context(), id, models.PurchaseOrderStatus(body.Status))
		if err != nil {
			return ledgerError(err)
		}
		return c.JSON(orderResponse(order))
	}
}

// DELETE /api/purchase-orders/:id
func DeleteOrderHandler(eng *ledger.Engine) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "order id must be a valid uuid")
		}
		if err := eng.DeleteOrder(c.Context(), id); err != nil {
			return ledgerError(err)
		}
		return c.JSON(fiber.Map{"message": "purchase order deleted"})
	}
}
