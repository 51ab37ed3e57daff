package repository_test

import (
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopora/shopora-platform/internal/models"
	repository "github.com/shopora/shopora-platform/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupOrderRepoTest(t *testing.T) (repository.OrderRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err, "Failed to create sqlmock")

	t.Cleanup(func() {
		db.Close()
	})

	return repository.NewOrderRepo(db), mock
}

func sampleOrder(userID uuid.UUID) *models.Order {
	return &models.Order{
		ID:     uuid.New(),
		UserID: userID,
		Items: []models.OrderItem{
			{ProductID: uuid.New(), Name: "Widget", Price: 10.0, Quantity: 2},
			{ProductID: uuid.New(), Name: "Gadget", Price: 5.0, Quantity: 1},
		},
		Total: 25.0,
		ShippingAddress: models.Address{
			Street:     "1 Main St",
			City:       "Springfield",
			PostalCode: "12345",
			Country:    "US",
		},
		PaymentMethod: "card",
		Status:        models.OrderStatusPending,
	}
}

func TestCreateOrderTransaction(t *testing.T) {
	ctx := t.Context()
	userID := uuid.New()
	cartID := uuid.New()
	now := time.Now()

	insertSQL := regexp.QuoteMeta(`
			INSERT INTO orders (id, user_id, items, total, shipping_address, payment_method, payment_details, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
			RETURNING created_at, updated_at
		`)
	decrementSQL := regexp.QuoteMeta(`
			UPDATE products SET stock = stock - $1, updated_at = NOW()
			WHERE id = $2 AND stock >= $1
		`)
	emptyCartSQL := regexp.QuoteMeta(`
			UPDATE carts SET items = '[]', total = 0, updated_at = NOW() WHERE id = $1
		`)

	t.Run("Success - Order Committed", func(t *testing.T) {
		// Arrange
		repo, mock := setupOrderRepoTest(t)
		order := sampleOrder(userID)

		mock.ExpectBegin()
		mock.ExpectQuery(insertSQL).
			WithArgs(order.ID, order.UserID, sqlmock.AnyArg(), order.Total, sqlmock.AnyArg(),
				order.PaymentMethod, sqlmock.AnyArg(), order.Status).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
		mock.ExpectExec(decrementSQL).
			WithArgs(order.Items[0].Quantity, order.Items[0].ProductID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(decrementSQL).
			WithArgs(order.Items[1].Quantity, order.Items[1].ProductID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(emptyCartSQL).
			WithArgs(cartID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		// Act
		err := repo.CreateOrder(ctx, order, cartID)

		// Assert
		require.NoError(t, err, "CreateOrder should not return an error on success")
		assert.WithinDuration(t, now, order.CreatedAt, time.Second)
		require.NoError(t, mock.ExpectationsWereMet(), "SQL mock expectations were not met")
	})

	t.Run("Failure - Conditional Decrement Misses", func(t *testing.T) {
		// Arrange
		repo, mock := setupOrderRepoTest(t)
		order := sampleOrder(userID)

		mock.ExpectBegin()
		mock.ExpectQuery(insertSQL).
			WithArgs(order.ID, order.UserID, sqlmock.AnyArg(), order.Total, sqlmock.AnyArg(),
				order.PaymentMethod, sqlmock.AnyArg(), order.Status).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
		mock.ExpectExec(decrementSQL).
			WithArgs(order.Items[0].Quantity, order.Items[0].ProductID).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		// Act
		err := repo.CreateOrder(ctx, order, cartID)

		// Assert
		require.Error(t, err, "CreateOrder should return an error when the decrement matches no row")

		var conflict *repository.StockConflictError

		require.ErrorAs(t, err, &conflict)
		assert.Equal(t, order.Items[0].ProductID, conflict.ProductID)
		require.NoError(t, mock.ExpectationsWereMet(), "SQL mock expectations were not met")
	})

	t.Run("Failure - Insert Error Rolls Back", func(t *testing.T) {
		// Arrange
		repo, mock := setupOrderRepoTest(t)
		order := sampleOrder(userID)
		dbError := errors.New("database insertion error")

		mock.ExpectBegin()
		mock.ExpectQuery(insertSQL).
			WithArgs(order.ID, order.UserID, sqlmock.AnyArg(), order.Total, sqlmock.AnyArg(),
				order.PaymentMethod, sqlmock.AnyArg(), order.Status).
			WillReturnError(dbError)
		mock.ExpectRollback()

		// Act
		err := repo.CreateOrder(ctx, order, cartID)

		// Assert
		require.Error(t, err)
		assert.ErrorIs(t, err, dbError)
		require.NoError(t, mock.ExpectationsWereMet(), "SQL mock expectations were not met")
	})

	t.Run("Failure - Cart Emptying Error Rolls Back", func(t *testing.T) {
		// Arrange
		repo, mock := setupOrderRepoTest(t)
		order := sampleOrder(userID)
		dbError := errors.New("cart update error")

		mock.ExpectBegin()
		mock.ExpectQuery(insertSQL).
			WithArgs(order.ID, order.UserID, sqlmock.AnyArg(), order.Total, sqlmock.AnyArg(),
				order.PaymentMethod, sqlmock.AnyArg(), order.Status).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))
		mock.ExpectExec(decrementSQL).
			WithArgs(order.Items[0].Quantity, order.Items[0].ProductID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(decrementSQL).
			WithArgs(order.Items[1].Quantity, order.Items[1].ProductID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(emptyCartSQL).
			WithArgs(cartID).
			WillReturnError(dbError)
		mock.ExpectRollback()

		// Act
		err := repo.CreateOrder(ctx, order, cartID)

		// Assert
		require.Error(t, err)
		assert.ErrorIs(t, err, dbError)
		require.NoError(t, mock.ExpectationsWereMet(), "SQL mock expectations were not met")
	})
}

func TestGetOrderByID(t *testing.T) {
	repo, mock := setupOrderRepoTest(t)
	ctx := t.Context()
	orderID := uuid.New()
	userID := uuid.New()
	productID := uuid.New()
	now := time.Now()

	itemsJSON := []byte(`[{"product_id":"` + productID.String() + `","name":"Widget","price":10,"quantity":2}]`)
	addressJSON := []byte(`{"street":"1 Main St","city":"Springfield","postal_code":"12345","country":"US"}`)

	expectedSQL := regexp.QuoteMeta(
		`SELECT id, user_id, items, total, shipping_address, payment_method, payment_details, status, created_at, updated_at FROM orders WHERE id = $1`)

	t.Run("Success", func(t *testing.T) {
		// Arrange
		rows := sqlmock.NewRows([]string{"id", "user_id", "items", "total", "shipping_address",
			"payment_method", "payment_details", "status", "created_at", "updated_at"}).
			AddRow(orderID, userID, itemsJSON, 20.0, addressJSON, "card", nil, "pending", now, now)
		mock.ExpectQuery(expectedSQL).WithArgs(orderID).WillReturnRows(rows)

		// Act
		order, err := repo.GetOrderByID(ctx, orderID)

		// Assert
		require.NoError(t, err)
		require.NotNil(t, order)
		assert.Equal(t, orderID, order.ID)
		assert.Equal(t, models.OrderStatusPending, order.Status)
		require.Len(t, order.Items, 1)
		assert.Equal(t, "Widget", order.Items[0].Name)
		assert.Equal(t, "Springfield", order.ShippingAddress.City)
		require.NoError(t, mock.ExpectationsWereMet(), "SQL mock expectations were not met")
	})

	t.Run("Failure - Not Found", func(t *testing.T) {
		// Arrange
		mock.ExpectQuery(expectedSQL).WithArgs(orderID).WillReturnError(sql.ErrNoRows)

		// Act
		order, err := repo.GetOrderByID(ctx, orderID)

		// Assert
		require.Error(t, err)
		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, order)
		require.NoError(t, mock.ExpectationsWereMet(), "SQL mock expectations were not met")
	})
}

func TestUpdateOrderStatusQuery(t *testing.T) {
	repo, mock := setupOrderRepoTest(t)
	ctx := t.Context()
	orderID := uuid.New()
	userID := uuid.New()
	now := time.Now()

	itemsJSON := []byte(`[]`)
	addressJSON := []byte(`{"street":"1 Main St","city":"Springfield","postal_code":"12345","country":"US"}`)

	expectedSQL := regexp.QuoteMeta(`
			UPDATE orders SET status = $1, updated_at = NOW()
			WHERE id = $2
			RETURNING id, user_id, items, total, shipping_address, payment_method, payment_details, status, created_at, updated_at`)

	t.Run("Success", func(t *testing.T) {
		// Arrange
		rows := sqlmock.NewRows([]string{"id", "user_id", "items", "total", "shipping_address",
			"payment_method", "payment_details", "status", "created_at", "updated_at"}).
			AddRow(orderID, userID, itemsJSON, 0.0, addressJSON, "card", nil, "shipped", now, now)
		mock.ExpectQuery(expectedSQL).WithArgs(models.OrderStatusShipped, orderID).WillReturnRows(rows)

		// Act
		order, err := repo.UpdateOrderStatus(ctx, orderID, models.OrderStatusShipped)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, models.OrderStatusShipped, order.Status)
		require.NoError(t, mock.ExpectationsWereMet(), "SQL mock expectations were not met")
	})

	t.Run("Failure - Not Found", func(t *testing.T) {
		// Arrange
		mock.ExpectQuery(expectedSQL).WithArgs(models.OrderStatusShipped, orderID).WillReturnError(sql.ErrNoRows)

		// Act
		order, err := repo.UpdateOrderStatus(ctx, orderID, models.OrderStatusShipped)

		// Assert
		require.Error(t, err)
		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, order)
		require.NoError(t, mock.ExpectationsWereMet(), "SQL mock expectations were not met")
	})
}

func TestHasDeliveredOrderWithProduct(t *testing.T) {
	repo, mock := setupOrderRepoTest(t)
	ctx := t.Context()
	userID := uuid.New()
	productID := uuid.New()

	expectedSQL := regexp.QuoteMeta(`
			SELECT EXISTS (
				SELECT 1 FROM orders
				WHERE user_id = $1 AND status = $2 AND items @> $3
			)
		`)

	t.Run("Success - Delivered Order Found", func(t *testing.T) {
		// Arrange
		mock.ExpectQuery(expectedSQL).
			WithArgs(userID, models.OrderStatusDelivered, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		// Act
		eligible, err := repo.HasDeliveredOrderWithProduct(ctx, userID, productID)

		// Assert
		require.NoError(t, err)
		assert.True(t, eligible)
		require.NoError(t, mock.ExpectationsWereMet(), "SQL mock expectations were not met")
	})

	t.Run("Success - No Delivered Order", func(t *testing.T) {
		// Arrange
		mock.ExpectQuery(expectedSQL).
			WithArgs(userID, models.OrderStatusDelivered, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		// Act
		eligible, err := repo.HasDeliveredOrderWithProduct(ctx, userID, productID)

		// Assert
		require.NoError(t, err)
		assert.False(t, eligible)
		require.NoError(t, mock.ExpectationsWereMet(), "SQL mock expectations were not met")
	})
}
