package inventory

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"inventory-backend/internal/auth"
	"inventory-backend/internal/ledger"
	"inventory-backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Category{},
		&models.Supplier{},
		&models.Warehouse{},
		&models.Product{},
		&models.StockRecord{},
		&models.StockMovement{},
	))

	eng := ledger.New(db)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{"error": e.Message})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
		},
	})
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(auth.CtxUserIDKey, uuid.MustParse("00000000-0000-0000-0000-000000000001"))
		return c.Next()
	})

	app.Post("/api/stock", CreateStockRecordHandler(eng))
	app.Get("/api/stock", ListStockRecordsHandler(db))
	app.Get("/api/stock/low", ListLowStockHandler(db))
	app.Get("/api/stock/movements", ListMovementsHandler(db))
	app.Get("/api/stock/record", GetStockRecordHandler(eng))
	app.Post("/api/stock/add", AddStockHandler(eng))
	app.Post("/api/stock/remove", RemoveStockHandler(eng))
	app.Post("/api/stock/reserve", ReserveStockHandler(eng))

	return app, db
}

func seedProductAndWarehouse(t *testing.T, db *gorm.DB) (*models.Product, *models.Warehouse) {
	t.Helper()
	unitPrice := decimal.RequireFromString("1299.99")
	product := models.Product{
		SKU:          "ELEC-001",
		Name:         "Gaming Laptop",
		UnitPrice:    &unitPrice,
		ReorderPoint: 5,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&product).Error)
	warehouse := models.Warehouse{Name: "Main Warehouse", Address: "100 Storage Road", IsActive: true}
	require.NoError(t, db.Create(&warehouse).Error)
	return &product, &warehouse
}

func doJSON(t *testing.T, app *fiber.App, method, target string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestCreateAndMutateStockOverHTTP(t *testing.T) {
	app, db := newTestApp(t)
	product, warehouse := seedProductAndWarehouse(t, db)

	resp, body := doJSON(t, app, fiber.MethodPost, "/api/stock", fiber.Map{
		"product_id":   product.ID,
		"warehouse_id": warehouse.ID,
		"quantity":     15,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.EqualValues(t, 15, body["quantity"])
	assert.EqualValues(t, 15, body["available_quantity"])
	assert.Equal(t, "Gaming Laptop", body["product_name"])

	resp, body = doJSON(t, app, fiber.MethodPost, "/api/stock/reserve", fiber.Map{
		"product_id":   product.ID,
		"warehouse_id": warehouse.ID,
		"amount":       2,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 13, body["available_quantity"])

	// 13 available, so removing 14 must be rejected.
	resp, body = doJSON(t, app, fiber.MethodPost, "/api/stock/remove", fiber.Map{
		"product_id":   product.ID,
		"warehouse_id": warehouse.ID,
		"amount":       14,
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "insufficient available stock")

	resp, body = doJSON(t, app, fiber.MethodPost, "/api/stock/add", fiber.Map{
		"product_id":   product.ID,
		"warehouse_id": warehouse.ID,
		"amount":       5,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 20, body["quantity"])
	assert.EqualValues(t, 18, body["available_quantity"])
}

func TestGetStockRecordNotFound(t *testing.T) {
	app, _ := newTestApp(t)

	target := "/api/stock/record?product_id=" + uuid.NewString() + "&warehouse_id=" + uuid.NewString()
	req := httptest.NewRequest(fiber.MethodGet, target, nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestCreateStockRecordRejectsDuplicate(t *testing.T) {
	app, db := newTestApp(t)
	product, warehouse := seedProductAndWarehouse(t, db)

	payload := fiber.Map{
		"product_id":   product.ID,
		"warehouse_id": warehouse.ID,
		"quantity":     5,
	}
	resp, _ := doJSON(t, app, fiber.MethodPost, "/api/stock", payload)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, app, fiber.MethodPost, "/api/stock", payload)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "already exists")
}

func TestListLowStock(t *testing.T) {
	app, db := newTestApp(t)
	product, warehouse := seedProductAndWarehouse(t, db)

	// Reorder point is 5; 4 on hand is low.
	resp, _ := doJSON(t, app, fiber.MethodPost, "/api/stock", fiber.Map{
		"product_id":   product.ID,
		"warehouse_id": warehouse.ID,
		"quantity":     4,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	req := httptest.NewRequest(fiber.MethodGet, "/api/stock/low", nil)
	resp2, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp2.StatusCode)

	var records []map[string]any
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&records))
	require.Len(t, records, 1)
	assert.Equal(t, "low_stock", records[0]["stock_status"])
}
