package main

import (
	"strings"

	"inventory-backend/internal/auth"
	"inventory-backend/internal/config"
	"inventory-backend/internal/database"
	"inventory-backend/internal/inventory"
	"inventory-backend/internal/ledger"
	"inventory-backend/internal/orders"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()

	db, err := database.Connect(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("could not connect to database")
	}
	if err := database.Migrate(db); err != nil {
		logrus.WithError(err).Fatal("could not run migrations")
	}

	engine := ledger.New(db)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			logrus.WithError(err).Error("unexpected error")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "internal server error",
			})
		},
	})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(db))
	api.Post("/auth/login", auth.LoginHandler(db, cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler(db))

	// Stock ledger
	protected.Post("/stock", inventory.CreateStockRecordHandler(engine))
	protected.Get("/stock", inventory.ListStockRecordsHandler(db))
	protected.Get("/stock/low", inventory.ListLowStockHandler(db))
	protected.Get("/stock/movements", inventory.ListMovementsHandler(db))
	protected.Get("/stock/record", inventory.GetStockRecordHandler(engine))
	protected.Delete("/stock/record", inventory.DeleteStockRecordHandler(engine))
	protected.Post("/stock/add", inventory.AddStockHandler(engine))
	protected.Post("/stock/remove", inventory.RemoveStockHandler(engine))
	protected.Post("/stock/reserve", inventory.ReserveStockHandler(engine))
	protected.Post("/stock/release", inventory.ReleaseStockHandler(engine))
	protected.Post("/stock/adjust", inventory.AdjustStockHandler(engine))
	protected.Post("/stock/transfer", inventory.TransferStockHandler(engine))

	// Purchase orders
	protected.Post("/purchase-orders", orders.CreateOrderHandler(engine))
	protected.Get("/purchase-orders", orders.ListOrdersHandler(db))
	protected.Get("/purchase-orders/:id", orders.GetOrderHandler(engine))
	protected.Put("/purchase-orders/:id", orders.UpdateOrderHandler(engine))
	protected.Delete("/purchase-orders/:id", orders.DeleteOrderHandler(engine))
	protected.Put("/purchase-orders/:id/items", orders.UpdateOrderItemsHandler(engine))
	protected.Put("/purchase-orders/:id/status", orders.UpdateOrderStatusHandler(engine))
	protected.Post("/purchase-orders/items/:id/receive", orders.ReceiveItemsHandler(engine))

	logrus.WithField("port", cfg.HTTPPort).Info("server listening")
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		logrus.Fatal(err)
	}
}
