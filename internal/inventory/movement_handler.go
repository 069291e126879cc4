package inventory

import (
	"time"

	"inventory-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type MovementResponse struct {
	ID                uuid.UUID           `json:"id"`
	ProductID         uuid.UUID           `json:"product_id"`
	ProductName       string              `json:"product_name,omitempty"`
	WarehouseID       uuid.UUID           `json:"warehouse_id"`
	WarehouseName     string              `json:"warehouse_name,omitempty"`
	MovementType      models.MovementType `json:"movement_type"`
	Quantity          int                 `json:"quantity"`
	EffectiveQuantity int                 `json:"effective_quantity"`
	Reference         string              `json:"reference"`
	Notes             string              `json:"notes,omitempty"`
	CreatedBy         uuid.UUID           `json:"created_by"`
	CreatedAt         time.Time           `json:"created_at"`
}

// GET /api/stock/movements?product_id=&warehouse_id=&movement_type=&limit=
func ListMovementsHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", 50)
		if limit <= 0 || limit > 500 {
			limit = 50
		}

		q := db.WithContext(c.Context()).
			Preload("Product").Preload("Warehouse").
			Order("created_at DESC").
			Limit(limit)

		if v := c.Query("product_id"); v != "" {
			id, err := uuid.Parse(v)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "product_id must be a valid uuid")
			}
			q = q.Where("product_id = ?", id)
		}
		if v := c.Query("warehouse_id"); v != "" {
			id, err := uuid.Parse(v)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "warehouse_id must be a valid uuid")
			}
			q = q.Where("warehouse_id = ?", id)
		}
		if v := c.Query("movement_type"); v != "" {
			q = q.Where("movement_type = ?", v)
		}

		var movements []models.StockMovement
		if err := q.Find(&movements).Error; err != nil {
			return err
		}

		out := make([]MovementResponse, 0, len(movements))
		for i := range movements {
			m := &movements[i]
			out = append(out, MovementResponse{
				ID:                m.ID,
				ProductID:         m.ProductID,
				ProductName:       m.Product.Name,
				WarehouseID:       m.WarehouseID,
				WarehouseName:     m.Warehouse.Name,
				MovementType:      m.MovementType,
				Quantity:          m.Quantity,
				EffectiveQuantity: m.EffectiveQuantity(),
				Reference:         m.ReferenceSummary(),
				Notes:             m.Notes,
				CreatedBy:         m.CreatedBy,
				CreatedAt:         m.CreatedAt,
			})
		}
		return c.JSON(out)
	}
}
