// internal/services/order_service_tx_test.go
package services

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/shoploop/shoploop-backend/internal/apperrors"
	"github.com/shoploop/shoploop-backend/internal/config"
	"github.com/shoploop/shoploop-backend/internal/models"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

func commerceConfig() *config.Config {
	return &config.Config{
		Commerce: config.CommerceConfig{
			TaxRate:               0.08,
			FreeShippingThreshold: 35.0,
			ShippingFee:           5.99,
			OrderNumberPrefix:     "AMZ",
			DeliveryEstimateDays:  5,
		},
	}
}

func expectOwnershipChecks(mock sqlmock.Sqlmock, userID, shippingID, billingID, paymentID uuid.UUID) {
	mock.ExpectQuery(`SELECT \* FROM "addresses" WHERE .*id = \$1 AND user_id = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id"}).
			AddRow(shippingID.String(), userID.String()))
	mock.ExpectQuery(`SELECT \* FROM "addresses" WHERE .*id = \$1 AND user_id = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id"}).
			AddRow(billingID.String(), userID.String()))
	mock.ExpectQuery(`SELECT \* FROM "payment_methods" WHERE .*id = \$1 AND user_id = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id"}).
			AddRow(paymentID.String(), userID.String()))
}

func TestPlaceOrderInsufficientStockWritesNothing(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewOrderService(db, commerceConfig(), nil)

	userID := uuid.New()
	shippingID := uuid.New()
	billingID := uuid.New()
	paymentID := uuid.New()
	productID := uuid.New()

	expectOwnershipChecks(mock, userID, shippingID, billingID, paymentID)
	mock.ExpectQuery(`SELECT \* FROM "products" WHERE id IN \(\$1\)`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "price", "stock_quantity", "in_stock", "status"}).
			AddRow(productID.String(), "Walnut Desk Organizer", 24.99, 1, true, "ACTIVE"))

	_, err := svc.PlaceOrder(userID, &PlaceOrderRequest{
		Items:             []OrderItemRequest{{ProductID: productID, Quantity: 2}},
		ShippingAddressID: shippingID,
		BillingAddressID:  billingID,
		PaymentMethodID:   paymentID,
	})

	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "insufficient stock")

	// No transaction was opened: an oversold request leaves zero writes.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlaceOrderSelloutDuringTransactionRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewOrderService(db, commerceConfig(), nil)

	userID := uuid.New()
	shippingID := uuid.New()
	billingID := uuid.New()
	paymentID := uuid.New()
	productID := uuid.New()

	expectOwnershipChecks(mock, userID, shippingID, billingID, paymentID)
	mock.ExpectQuery(`SELECT \* FROM "products" WHERE id IN \(\$1\)`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "price", "stock_quantity", "in_stock", "status"}).
			AddRow(productID.String(), "Walnut Desk Organizer", 24.99, 1, true, "ACTIVE"))

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "orders"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.NewString()))
	mock.ExpectQuery(`INSERT INTO "order_items"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.NewString()))
	// The last unit went to a concurrent order between the read and the
	// guarded decrement: zero rows match, so only the loser rolls back.
	mock.ExpectExec(`UPDATE "products" SET "stock_quantity"=stock_quantity - \$1 WHERE id = \$2 AND stock_quantity >= \$3`).
		WithArgs(1, productID.String(), 1).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := svc.PlaceOrder(userID, &PlaceOrderRequest{
		Items:             []OrderItemRequest{{ProductID: productID, Quantity: 1}},
		ShippingAddressID: shippingID,
		BillingAddressID:  billingID,
		PaymentMethodID:   paymentID,
	})

	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 1)
	assert.Contains(t, verr.Fields[0].Message, "sold out")

	// Rollback was issued: no tracking event, no cart wipe.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelOrderRestoresStock(t *testing.T) {
	db, mock := newMockDB(t)
	mock.MatchExpectationsInOrder(false)
	svc := NewOrderService(db, commerceConfig(), nil)

	userID := uuid.New()
	orderID := uuid.New()
	itemID := uuid.New()
	productID := uuid.New()
	shippingID := uuid.New()
	billingID := uuid.New()
	paymentID := uuid.New()

	orderColumns := []string{"id", "user_id", "status", "shipping_address_id", "billing_address_id", "payment_method_id"}

	mock.ExpectQuery(`SELECT \* FROM "orders" WHERE .*id = \$1 AND user_id = \$2`).
		WillReturnRows(sqlmock.NewRows(orderColumns).
			AddRow(orderID.String(), userID.String(), "PENDING", shippingID.String(), billingID.String(), paymentID.String()))
	mock.ExpectQuery(`SELECT \* FROM "order_items" WHERE "order_items"\."order_id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "product_id", "quantity", "unit_price"}).
			AddRow(itemID.String(), orderID.String(), productID.String(), 3, 24.99))

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "orders" SET "status"=\$1,"updated_at"=\$2 WHERE id = \$3`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "products" SET "stock_quantity"=stock_quantity \+ \$1 WHERE id = \$2`).
		WithArgs(3, productID.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "products" SET "in_stock"=stock_quantity > 0 WHERE id = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "order_trackings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.NewString()))
	mock.ExpectCommit()

	// Reload after commit.
	mock.ExpectQuery(`SELECT \* FROM "orders" WHERE "orders"\."id" = \$1`).
		WillReturnRows(sqlmock.NewRows(orderColumns).
			AddRow(orderID.String(), userID.String(), "CANCELLED", shippingID.String(), billingID.String(), paymentID.String()))
	mock.ExpectQuery(`SELECT \* FROM "addresses" WHERE "addresses"\."id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(billingID.String()))
	mock.ExpectQuery(`SELECT \* FROM "order_items" WHERE "order_items"\."order_id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "product_id", "quantity", "unit_price"}).
			AddRow(itemID.String(), orderID.String(), productID.String(), 3, 24.99))
	mock.ExpectQuery(`SELECT \* FROM "products" WHERE "products"\."id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).
			AddRow(productID.String(), "Walnut Desk Organizer"))
	mock.ExpectQuery(`SELECT \* FROM "payment_methods" WHERE "payment_methods"\."id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(paymentID.String()))
	mock.ExpectQuery(`SELECT \* FROM "addresses" WHERE "addresses"\."id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(shippingID.String()))
	mock.ExpectQuery(`SELECT \* FROM "order_trackings" WHERE "order_trackings"\."order_id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "status", "description"}).
			AddRow(uuid.NewString(), orderID.String(), "CANCELLED", "Order cancelled"))

	order, err := svc.CancelOrder(orderID, userID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, order.Status)

	// The restock UPDATE with the item quantity was part of the
	// transaction.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelOrderRejectedOutsidePendingConfirmed(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewOrderService(db, commerceConfig(), nil)

	userID := uuid.New()
	orderID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "orders" WHERE .*id = \$1 AND user_id = \$2`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "status"}).
			AddRow(orderID.String(), userID.String(), "SHIPPED"))
	mock.ExpectQuery(`SELECT \* FROM "order_items" WHERE "order_items"\."order_id" = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "product_id", "quantity"}))

	_, err := svc.CancelOrder(orderID, userID)

	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Message, "cannot be cancelled")

	// No transaction, no status write, no restock.
	assert.NoError(t, mock.ExpectationsWereMet())
}
