package main

import (
	"context"
	"time"

	"inventory-backend/internal/config"
	"inventory-backend/internal/database"
	"inventory-backend/internal/ledger"
	"inventory-backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seeds a development database with a small but complete data set:
// users, master data, opening stock and one purchase order in flight.
func main() {
	cfg := config.Load()

	db, err := database.Connect(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("could not connect to database")
	}
	if err := database.Migrate(db); err != nil {
		logrus.WithError(err).Fatal("could not run migrations")
	}

	var count int64
	db.Model(&models.User{}).Count(&count)
	if count > 0 {
		logrus.Info("database already seeded, nothing to do")
		return
	}

	admin := seedUser(db, "admin@inventory.local", "admin123", "System", "Admin", models.RoleAdmin)
	seedUser(db, "manager@inventory.local", "manager123", "Warehouse", "Manager", models.RoleManager)
	seedUser(db, "operator@inventory.local", "operator123", "Stock", "Operator", models.RoleOperator)

	electronics := seedCategory(db, "Electronics", "Electronic devices and accessories")
	clothing := seedCategory(db, "Clothing", "Apparel and garments")
	seedCategory(db, "Office Supplies", "Office equipment and stationery")

	techCorp := seedSupplier(db, models.Supplier{
		Name:          "TechCorp Electronics",
		Email:         "orders@techcorp.com",
		Phone:         "+1-555-0101",
		ContactPerson: "John Smith",
		Address:       "123 Tech Street, Silicon Valley",
	})
	fashionHub := seedSupplier(db, models.Supplier{
		Name:          "Fashion Hub Ltd",
		Email:         "sales@fashionhub.com",
		Phone:         "+1-555-0102",
		ContactPerson: "Emma Wilson",
		Address:       "456 Fashion Avenue, New York",
	})
	seedSupplier(db, models.Supplier{
		Name:          "Office Pro Supplies",
		Email:         "info@officepro.com",
		Phone:         "+1-555-0103",
		ContactPerson: "Mike Johnson",
		Address:       "789 Business Park, Chicago",
	})

	mainWh := seedWarehouse(db, "Main Warehouse", "100 Storage Road, Central City", intPtr(10000))
	eastWh := seedWarehouse(db, "East Distribution Center", "200 East Boulevard, Eastville", intPtr(5000))
	seedWarehouse(db, "West Depot", "300 West Lane, Westburg", intPtr(3000))

	laptop := seedProduct(db, models.Product{
		SKU:          "ELEC-001",
		Name:         "Gaming Laptop",
		Description:  "High performance gaming laptop",
		CategoryID:   &electronics.ID,
		SupplierID:   &techCorp.ID,
		UnitPrice:    decPtr("1299.99"),
		ReorderPoint: 5,
		MaxStock:     intPtr(50),
	})
	phone := seedProduct(db, models.Product{
		SKU:          "ELEC-002",
		Name:         "Smartphone Pro",
		Description:  "Latest flagship smartphone",
		CategoryID:   &electronics.ID,
		SupplierID:   &techCorp.ID,
		UnitPrice:    decPtr("899.99"),
		ReorderPoint: 10,
		MaxStock:     intPtr(100),
	})
	tshirt := seedProduct(db, models.Product{
		SKU:          "CLTH-001",
		Name:         "Cotton T-Shirt",
		Description:  "Premium cotton t-shirt",
		CategoryID:   &clothing.ID,
		SupplierID:   &fashionHub.ID,
		UnitPrice:    decPtr("19.99"),
		ReorderPoint: 50,
		MaxStock:     intPtr(500),
	})

	engine := ledger.New(db)
	ctx := context.Background()

	seedStock(ctx, engine, laptop.ID, mainWh.ID, 15, admin.ID)
	seedStock(ctx, engine, phone.ID, mainWh.ID, 42, admin.ID)
	seedStock(ctx, engine, phone.ID, eastWh.ID, 8, admin.ID)
	seedStock(ctx, engine, tshirt.ID, eastWh.ID, 120, admin.ID)

	expected := time.Now().AddDate(0, 0, 14)
	order, err := engine.CreateOrder(ctx, ledger.CreateOrderInput{
		SupplierID:           techCorp.ID,
		ExpectedDeliveryDate: &expected,
		Items: []ledger.OrderItemInput{
			{ProductID: laptop.ID, Quantity: 10, UnitPrice: decimal.RequireFromString("1199.99")},
			{ProductID: phone.ID, Quantity: 25, UnitPrice: decimal.RequireFromString("849.99")},
		},
		CreatedBy: admin.ID,
	})
	if err != nil {
		logrus.WithError(err).Fatal("could not seed purchase order")
	}

	logrus.WithFields(logrus.Fields{
		"users":    3,
		"products": 3,
		"order":    order.PONumber,
	}).Info("seed complete")
}

func seedUser(db *gorm.DB, email, password, first, last string, role models.UserRole) *models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logrus.WithError(err).Fatal("could not hash password")
	}
	user := models.User{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    first,
		LastName:     last,
		Role:         role,
		IsActive:     true,
	}
	if err := db.Create(&user).Error; err != nil {
		logrus.WithError(err).WithField("email", email).Fatal("could not seed user")
	}
	return &user
}

func seedCategory(db *gorm.DB, name, description string) *models.Category {
	category := models.Category{Name: name, Description: description}
	if err := db.Create(&category).Error; err != nil {
		logrus.WithError(err).WithField("name", name).Fatal("could not seed category")
	}
	return &category
}

func seedSupplier(db *gorm.DB, supplier models.Supplier) *models.Supplier {
	supplier.IsActive = true
	if err := db.Create(&supplier).Error; err != nil {
		logrus.WithError(err).WithField("name", supplier.Name).Fatal("could not seed supplier")
	}
	return &supplier
}

func seedWarehouse(db *gorm.DB, name, address string, capacity *int) *models.Warehouse {
	warehouse := models.Warehouse{Name: name, Address: address, Capacity: capacity, IsActive: true}
	if err := db.Create(&warehouse).Error; err != nil {
		logrus.WithError(err).WithField("name", name).Fatal("could not seed warehouse")
	}
	return &warehouse
}

func seedProduct(db *gorm.DB, product models.Product) *models.Product {
	product.IsActive = true
	if err := db.Create(&product).Error; err != nil {
		logrus.WithError(err).WithField("sku", product.SKU).Fatal("could not seed product")
	}
	return &product
}

func seedStock(ctx context.Context, engine *ledger.Engine, productID, warehouseID uuid.UUID, quantity int, actor uuid.UUID) {
	key := ledger.StockKey{ProductID: productID, WarehouseID: warehouseID}
	if _, err := engine.CreateStockRecord(ctx, key, quantity, 0, actor); err != nil {
		logrus.WithError(err).Fatal("could not seed stock record")
	}
}

func intPtr(v int) *int { return &v }

func decPtr(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}
