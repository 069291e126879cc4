package inventory

import (
	"inventory-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GET /api/stock?warehouse_id=&product_id=
func ListStockRecordsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := db.WithContext(c.Context()).
			Preload("Product").Preload("Warehouse").
			Order("created_at DESC")

		if v := c.Query("warehouse_id"); v != "" {
			id, err := uuid.Parse(v)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "warehouse_id must be a valid uuid")
			}
			q = q.Where("warehouse_id = ?", id)
		}
		if v := c.Query("product_id"); v != "" {
			id, err := uuid.Parse(v)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "product_id must be a valid uuid")
			}
			q = q.Where("product_id = ?", id)
		}

		var records []models.StockRecord
		if err := q.Find(&records).Error; err != nil {
			return err
		}

		out := make([]StockRecordResponse, 0, len(records))
		for i := range records {
			out = append(out, stockRecordResponse(&records[i]))
		}
		return c.JSON(out)
	}
}

// GET /api/stock/low
func ListLowStockHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var records []models.StockRecord
		err := db.WithContext(c.Context()).
			Preload("Product").Preload("Warehouse").
			Joins("JOIN products ON products.id = stock_records.product_id").
			Where("products.reorder_point > 0").
			Where("stock_records.quantity - stock_records.reserved_quantity <= products.reorder_point").
			Order("stock_records.quantity ASC").
			Find(&records).Error
		if err != nil {
			return err
		}

		out := make([]StockRecordResponse, 0, len(records))
		for i := range records {
			out = append(out, stockRecordResponse(&records[i]))
		}
		return c.JSON(out)
	}
}
