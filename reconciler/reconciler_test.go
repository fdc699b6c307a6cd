package reconciler

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/sokoni-app/sokoni-api/initializers"
	"github.com/sokoni-app/sokoni-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, initializers.SyncDatabase(db))
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, product *models.Product, qty int, age time.Duration,
	status models.OrderStatus, paymentStatus models.PaymentStatus) models.Order {
	t.Helper()

	order := models.Order{
		OrderNumber:   fmt.Sprintf("ORD-%d", time.Now().UnixNano()),
		UserID:        1,
		Status:        status,
		PaymentStatus: paymentStatus,
		PaymentMethod: models.PaymentMethodCard,
		Total:         decimal.RequireFromString("10.00"),
		OrderItems: []models.OrderItem{{
			ProductId: int(product.ID),
			SellerID:  product.SellerID,
			Quantity:  qty,
			UnitPrice: product.Price,
			Subtotal:  product.Price.Mul(decimal.NewFromInt(int64(qty))),
			Status:    status,
		}},
	}
	require.NoError(t, db.Create(&order).Error)
	require.NoError(t, db.Model(&models.Order{}).
		Where("id = ?", order.ID).
		Update("created_at", time.Now().Add(-age)).Error)
	return order
}

func seedProduct(t *testing.T, db *gorm.DB, stock int) models.Product {
	t.Helper()
	product := models.Product{
		Name:     "Sweep Target",
		Sku:      fmt.Sprintf("SKU-%d", time.Now().UnixNano()),
		Price:    decimal.RequireFromString("10.00"),
		Stock:    stock,
		Active:   true,
		SellerID: 1,
	}
	require.NoError(t, db.Create(&product).Error)
	return product
}

func TestSweepCancelsStaleUnpaidOrders(t *testing.T) {
	db := newTestDB(t)
	product := seedProduct(t, db, 5)

	stale := seedOrder(t, db, &product, 3, 48*time.Hour,
		models.OrderStatusPending, models.PaymentStatusPending)

	r := New(db, 24*time.Hour, time.Hour)
	cancelled, err := r.Sweep()
	require.NoError(t, err)
	assert.Equal(t, 1, cancelled)

	var reloaded models.Order
	require.NoError(t, db.Preload("OrderItems").First(&reloaded, stale.ID).Error)
	assert.Equal(t, models.OrderStatusCancelled, reloaded.Status)
	for _, item := range reloaded.OrderItems {
		assert.Equal(t, models.OrderStatusCancelled, item.Status)
	}

	// Reserved stock went back.
	var p models.Product
	require.NoError(t, db.First(&p, product.ID).Error)
	assert.Equal(t, 8, p.Stock)
}

func TestSweepLeavesFreshAndPaidOrdersAlone(t *testing.T) {
	db := newTestDB(t)
	product := seedProduct(t, db, 5)

	fresh := seedOrder(t, db, &product, 1, time.Hour,
		models.OrderStatusPending, models.PaymentStatusPending)
	paid := seedOrder(t, db, &product, 1, 48*time.Hour,
		models.OrderStatusPending, models.PaymentStatusPaid)
	confirmed := seedOrder(t, db, &product, 1, 48*time.Hour,
		models.OrderStatusConfirmed, models.PaymentStatusPending)

	r := New(db, 24*time.Hour, time.Hour)
	cancelled, err := r.Sweep()
	require.NoError(t, err)
	assert.Equal(t, 0, cancelled)

	for _, id := range []uint{fresh.ID, paid.ID, confirmed.ID} {
		var reloaded models.Order
		require.NoError(t, db.First(&reloaded, id).Error)
		assert.NotEqual(t, models.OrderStatusCancelled, reloaded.Status)
	}

	var p models.Product
	require.NoError(t, db.First(&p, product.ID).Error)
	assert.Equal(t, 5, p.Stock)
}

func TestSweepIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	product := seedProduct(t, db, 5)
	seedOrder(t, db, &product, 2, 48*time.Hour,
		models.OrderStatusPending, models.PaymentStatusPending)

	r := New(db, 24*time.Hour, time.Hour)
	cancelled, err := r.Sweep()
	require.NoError(t, err)
	assert.Equal(t, 1, cancelled)

	// A second pass finds nothing: cancelled orders are out of scope.
	cancelled, err = r.Sweep()
	require.NoError(t, err)
	assert.Equal(t, 0, cancelled)

	var p models.Product
	require.NoError(t, db.First(&p, product.ID).Error)
	assert.Equal(t, 7, p.Stock)
}
