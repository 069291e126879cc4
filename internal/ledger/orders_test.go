package ledger

import (
	"context"
	"testing"
	"time"

	"inventory-backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func createOrderedOrder(t *testing.T, eng *Engine, supplierID uuid.UUID, items []OrderItemInput) *models.PurchaseOrder {
	t.Helper()
	ctx := context.Background()

	order, err := eng.CreateOrder(ctx, CreateOrderInput{
		SupplierID: supplierID,
		Items:      items,
		CreatedBy:  testActor(),
	})
	require.NoError(t, err)

	order, err = eng.UpdateOrderStatus(ctx, order.ID, models.OrderStatusApproved)
	require.NoError(t, err)
	order, err = eng.UpdateOrderStatus(ctx, order.ID, models.OrderStatusOrdered)
	require.NoError(t, err)
	return order
}

func TestCreateOrder(t *testing.T) {
	eng, db := newTestEngine(t)
	ctx := context.Background()
	supplier := createSupplier(t, db, "TechCorp")
	laptop := createProduct(t, db, "ELEC-001")
	tshirt := createProduct(t, db, "CLTH-001")

	order, err := eng.CreateOrder(ctx, CreateOrderInput{
		SupplierID: supplier.ID,
		Items: []OrderItemInput{
			{ProductID: laptop.ID, Quantity: 2, UnitPrice: price("1299.99")},
			{ProductID: tshirt.ID, Quantity: 1, UnitPrice: price("19.99")},
		},
		CreatedBy: testActor(),
	})
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.NotEmpty(t, order.PONumber)
	assert.Len(t, order.Items, 2)
	assert.True(t, order.TotalAmount.Equal(price("2619.97")), "got %s", order.TotalAmount)
	assert.Equal(t, supplier.ID, order.Supplier.ID)
}

func TestCreateOrderAsDraft(t *testing.T) {
	eng, db := newTestEngine(t)
	ctx := context.Background()
	supplier := createSupplier(t, db, "TechCorp")
	laptop := createProduct(t, db, "ELEC-001")

	order, err := eng.CreateOrder(ctx, CreateOrderInput{
		SupplierID: supplier.ID,
		Status:     models.OrderStatusDraft,
		Items:      []OrderItemInput{{ProductID: laptop.ID, Quantity: 1, UnitPrice: price("10.00")}},
		CreatedBy:  testActor(),
	})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDraft, order.Status)

	_, err = eng.CreateOrder(ctx, CreateOrderInput{
		SupplierID: supplier.ID,
		Status:     models.OrderStatusApproved,
		Items:      []OrderItemInput{{ProductID: laptop.ID, Quantity: 1, UnitPrice: price("10.00")}},
		CreatedBy:  testActor(),
	})
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
}

func TestCreateOrderValidation(t *testing.T) {
	eng, db := newTestEngine(t)
	ctx := context.Background()
	supplier := createSupplier(t, db, "TechCorp")
	laptop := createProduct(t, db, "ELEC-001")

	_, err := eng.CreateOrder(ctx, CreateOrderInput{
		SupplierID: supplier.ID,
		CreatedBy:  testActor(),
	})
	assert.ErrorIs(t, err, ErrInvalidOrderItem)

	_, err = eng.CreateOrder(ctx, CreateOrderInput{
		SupplierID: supplier.ID,
		Items:      []OrderItemInput{{ProductID: laptop.ID, Quantity: 0, UnitPrice: price("10.00")}},
		CreatedBy:  testActor(),
	})
	assert.ErrorIs(t, err, ErrInvalidOrderItem)

	_, err = eng.CreateOrder(ctx, CreateOrderInput{
		SupplierID: supplier.ID,
		Items:      []OrderItemInput{{ProductID: laptop.ID, Quantity: 1, UnitPrice: price("0")}},
		CreatedBy:  testActor(),
	})
	assert.ErrorIs(t, err, ErrInvalidOrderItem)

	_, err = eng.CreateOrder(ctx, CreateOrderInput{
		SupplierID: supplier.ID,
		Items:      []OrderItemInput{{ProductID: uuid.New(), Quantity: 1, UnitPrice: price("10.00")}},
		CreatedBy:  testActor(),
	})
	assert.ErrorIs(t, err, ErrInvalidOrderItem)

	_, err = eng.CreateOrder(ctx, CreateOrderInput{
		SupplierID: uuid.New(),
		Items:      []OrderItemInput{{ProductID: laptop.ID, Quantity: 1, UnitPrice: price("10.00")}},
		CreatedBy:  testActor(),
	})
	assert.ErrorIs(t, err, ErrSupplierNotFound)
}

func TestOrderLifecycle(t *testing.T) {
	eng, db := newTestEngine(t)
	ctx := context.Background()
	supplier := createSupplier(t, db, "TechCorp")
	laptop := createProduct(t, db, "ELEC-001")

	order, err := eng.CreateOrder(ctx, CreateOrderInput{
		SupplierID: supplier.ID,
		Status:     models.OrderStatusDraft,
		Items:      []OrderItemInput{{ProductID: laptop.ID, Quantity: 1, UnitPrice: price("10.00")}},
		CreatedBy:  testActor(),
	})
	require.NoError(t, err)

	// A draft cannot jump straight to ordered.
	_, err = eng.UpdateOrderStatus(ctx, order.ID, models.OrderStatusOrdered)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)

	for _, next := range []models.PurchaseOrderStatus{
		models.OrderStatusPending,
		models.OrderStatusApproved,
		models.OrderStatusOrdered,
		models.OrderStatusReceived,
	} {
		order, err = eng.UpdateOrderStatus(ctx, order.ID, next)
		require.NoError(t, err)
		assert.Equal(t, next, order.Status)
	}
	require.NotNil(t, order.ActualDeliveryDate)

	// Received is terminal.
	_, err = eng.UpdateOrderStatus(ctx, order.ID, models.OrderStatusCancelled)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)

	_, err = eng.UpdateOrderStatus(ctx, order.ID, "shipped")
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)
}

func TestCancelOrder(t *testing.T) {
	eng, db := newTestEngine(t)
	ctx := context.Background()
	supplier := createSupplier(t, db, "TechCorp")
	laptop := createProduct(t, db, "ELEC-001")

	order, err := eng.CreateOrder(ctx, CreateOrderInput{
		SupplierID: supplier.ID,
		Items:      []OrderItemInput{{ProductID: laptop.ID, Quantity: 1, UnitPrice: price("10.00")}},
		CreatedBy:  testActor(),
	})
	require.NoError(t, err)

	order, err = eng.UpdateOrderStatus(ctx, order.ID, models.OrderStatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, order.Status)

	_, err = eng.UpdateOrderStatus(ctx, order.ID, models.OrderStatusPending)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)

	// Cancelled orders are immutable.
	_, err = eng.UpdateOrder(ctx, order.ID, UpdateOrderInput{})
	assert.ErrorIs(t, err, ErrOrderLocked)
}

func TestUpdateOrder(t *testing.T) {
	eng, db := newTestEngine(t)
	ctx := context.Background()
	supplier := createSupplier(t, db, "TechCorp")
	other := createSupplier(t, db, "Fashion Hub")
	laptop := createProduct(t, db, "ELEC-001")
	tshirt := createProduct(t, db, "CLTH-001")

	order, err := eng.CreateOrder(ctx, CreateOrderInput{
		SupplierID: supplier.ID,
		Items:      []OrderItemInput{{ProductID: laptop.ID, Quantity: 2, UnitPrice: price("1299.99")}},
		CreatedBy:  testActor(),
	})
	require.NoError(t, err)

	expected := time.Now().AddDate(0, 0, 7)
	order, err = eng.UpdateOrder(ctx, order.ID, UpdateOrderInput{
		SupplierID:           &other.ID,
		ExpectedDeliveryDate: &expected,
		Items: []OrderItemInput{
			{ProductID: tshirt.ID, Quantity: 10, UnitPrice: price("19.99")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, other.ID, order.SupplierID)
	require.NotNil(t, order.ExpectedDeliveryDate)
	require.Len(t, order.Items, 1)
	assert.Equal(t, tshirt.ID, order.Items[0].ProductID)
	assert.True(t, order.TotalAmount.Equal(price("199.90")), "got %s", order.TotalAmount)
}

func TestUpdateOrderItemsLockedAfterOrdered(t *testing.T) {
	eng, db := newTestEngine(t)
	ctx := context.Background()
	supplier := createSupplier(t, db, "TechCorp")
	laptop := createProduct(t, db, "ELEC-001")

	order := createOrderedOrder(t, eng, supplier.ID, []OrderItemInput{
		{ProductID: laptop.ID, Quantity: 2, UnitPrice: price("1299.99")},
	})

	_, err := eng.UpdateOrderItems(ctx, order.ID, []OrderItemInput{
		{ProductID: laptop.ID, Quantity: 5, UnitPrice: price("1299.99")},
	})
	assert.ErrorIs(t, err, ErrOrderLocked)

	// Dates may still change while goods are in transit.
	expected := time.Now().AddDate(0, 0, 3)
	_, err = eng.UpdateOrder(ctx, order.ID, UpdateOrderInput{ExpectedDeliveryDate: &expected})
	assert.NoError(t, err)
}

func TestReceiveItems(t *testing.T) {
	eng, db := newTestEngine(t)
	ctx := context.Background()
	supplier := createSupplier(t, db, "TechCorp")
	laptop := createProduct(t, db, "ELEC-001")
	tshirt := createProduct(t, db, "CLTH-001")

	order := createOrderedOrder(t, eng, supplier.ID, []OrderItemInput{
		{ProductID: laptop.ID, Quantity: 2, UnitPrice: price("1299.99")},
		{ProductID: tshirt.ID, Quantity: 1, UnitPrice: price("19.99")},
	})

	var laptopItem, tshirtItem models.PurchaseOrderItem
	for _, item := range order.Items {
		if item.ProductID == laptop.ID {
			laptopItem = item
		} else {
			tshirtItem = item
		}
	}

	item, err := eng.ReceiveItems(ctx, laptopItem.ID, 2, testActor(), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, item.ReceivedQuantity)
	assert.True(t, item.IsFullyReceived())

	order2, err := eng.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPartiallyReceived, order2.Status)

	item, err = eng.ReceiveItems(ctx, tshirtItem.ID, 1, testActor(), nil)
	require.NoError(t, err)
	assert.True(t, item.IsFullyReceived())

	order2, err = eng.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusReceived, order2.Status)
	assert.NotNil(t, order2.ActualDeliveryDate)
	assert.True(t, order2.TotalAmount.Equal(price("2619.97")), "got %s", order2.TotalAmount)
}

func TestReceiveItemsPartialThenRest(t *testing.T) {
	eng, db := newTestEngine(t)
	ctx := context.Background()
	supplier := createSupplier(t, db, "TechCorp")
	laptop := createProduct(t, db, "ELEC-001")

	order := createOrderedOrder(t, eng, supplier.ID, []OrderItemInput{
		{ProductID: laptop.ID, Quantity: 10, UnitPrice: price("1299.99")},
	})
	itemID := order.Items[0].ID

	item, err := eng.ReceiveItems(ctx, itemID, 4, testActor(), nil)
	require.NoError(t, err)
	assert.Equal(t, 6, item.RemainingQuantity())

	_, err = eng.ReceiveItems(ctx, itemID, 7, testActor(), nil)
	assert.ErrorIs(t, err, ErrOverReceipt)

	item, err = eng.ReceiveItems(ctx, itemID, 6, testActor(), nil)
	require.NoError(t, err)
	assert.True(t, item.IsFullyReceived())

	// Nothing remains, so any further receipt is an over-receipt.
	_, err = eng.ReceiveItems(ctx, itemID, 1, testActor(), nil)
	assert.ErrorIs(t, err, ErrOverReceipt)
}

func TestReceiveItemsGuards(t *testing.T) {
	eng, db := newTestEngine(t)
	ctx := context.Background()
	supplier := createSupplier(t, db, "TechCorp")
	laptop := createProduct(t, db, "ELEC-001")

	order, err := eng.CreateOrder(ctx, CreateOrderInput{
		SupplierID: supplier.ID,
		Items:      []OrderItemInput{{ProductID: laptop.ID, Quantity: 2, UnitPrice: price("10.00")}},
		CreatedBy:  testActor(),
	})
	require.NoError(t, err)
	itemID := order.Items[0].ID

	// Goods cannot arrive for an order that was never placed.
	_, err = eng.ReceiveItems(ctx, itemID, 1, testActor(), nil)
	assert.ErrorIs(t, err, ErrInvalidStatusTransition)

	_, err = eng.UpdateOrderStatus(ctx, order.ID, models.OrderStatusCancelled)
	require.NoError(t, err)
	_, err = eng.ReceiveItems(ctx, itemID, 1, testActor(), nil)
	assert.ErrorIs(t, err, ErrOrderLocked)

	_, err = eng.ReceiveItems(ctx, uuid.New(), 1, testActor(), nil)
	assert.ErrorIs(t, err, ErrOrderItemNotFound)

	_, err = eng.ReceiveItems(ctx, itemID, 0, testActor(), nil)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestReceiveItemsIntoWarehouse(t *testing.T) {
	eng, db := newTestEngine(t)
	ctx := context.Background()
	supplier := createSupplier(t, db, "TechCorp")
	laptop := createProduct(t, db, "ELEC-001")
	warehouse := createWarehouse(t, db, "Main")

	order := createOrderedOrder(t, eng, supplier.ID, []OrderItemInput{
		{ProductID: laptop.ID, Quantity: 5, UnitPrice: price("1299.99")},
	})
	itemID := order.Items[0].ID

	_, err := eng.ReceiveItems(ctx, itemID, 3, testActor(), &warehouse.ID)
	require.NoError(t, err)

	key := StockKey{ProductID: laptop.ID, WarehouseID: warehouse.ID}
	record, err := eng.GetStockRecord(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 3, record.Quantity)

	var movement models.StockMovement
	require.NoError(t, db.Where("product_id = ?", laptop.ID).First(&movement).Error)
	assert.Equal(t, models.MovementIn, movement.MovementType)
	require.NotNil(t, movement.ReferenceType)
	assert.Equal(t, models.ReferencePurchaseOrder, *movement.ReferenceType)
	require.NotNil(t, movement.ReferenceID)
	assert.Equal(t, order.ID, *movement.ReferenceID)
}

func TestDeleteOrder(t *testing.T) {
	eng, db := newTestEngine(t)
	ctx := context.Background()
	supplier := createSupplier(t, db, "TechCorp")
	laptop := createProduct(t, db, "ELEC-001")

	order, err := eng.CreateOrder(ctx, CreateOrderInput{
		SupplierID: supplier.ID,
		Items:      []OrderItemInput{{ProductID: laptop.ID, Quantity: 1, UnitPrice: price("10.00")}},
		CreatedBy:  testActor(),
	})
	require.NoError(t, err)

	require.NoError(t, eng.DeleteOrder(ctx, order.ID))
	_, err = eng.GetOrder(ctx, order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	var count int64
	require.NoError(t, db.Model(&models.PurchaseOrderItem{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)

	order = createOrderedOrder(t, eng, supplier.ID, []OrderItemInput{
		{ProductID: laptop.ID, Quantity: 1, UnitPrice: price("10.00")},
	})
	err = eng.DeleteOrder(ctx, order.ID)
	assert.ErrorIs(t, err, ErrOrderLocked)
}
