package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopora/shopora-platform/internal/models"
	"github.com/shopora/shopora-platform/internal/utils"
)

// StockConflictError reports a conditional stock decrement that matched no
// row, meaning available stock dropped below the ordered quantity after the
// pre-check. The checkout transaction is rolled back when it occurs.
type StockConflictError struct {
	ProductID uuid.UUID
}

func (e *StockConflictError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s", e.ProductID)
}

type OrderRepository interface {
	// CreateOrder persists the order, decrements every ordered product's stock
	// and empties the originating cart in a single transaction.
	CreateOrder(ctx context.Context, order *models.Order, cartID uuid.UUID) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]*models.Order, error)
	ListAllOrders(ctx context.Context) ([]*models.Order, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error)
	HasDeliveredOrderWithProduct(ctx context.Context, userID, productID uuid.UUID) (bool, error)
}

type orderRepository struct {
	DB *sql.DB
}

func NewOrderRepo(db *sql.DB) OrderRepository {
	return &orderRepository{DB: db}
}

// storedOrderItem is the immutable snapshot persisted at checkout.
type storedOrderItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Quantity  int       `json:"quantity"`
}

const orderColumns = `id, user_id, items, total, shipping_address, payment_method, payment_details, status, created_at, updated_at`

func (r *orderRepository) CreateOrder(ctx context.Context, order *models.Order, cartID uuid.UUID) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	itemsJSON, err := marshalOrderItems(order.Items)
	if err != nil {
		return err
	}

	addressJSON, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return fmt.Errorf("failed to marshal shipping address: %w", err)
	}

	var detailsJSON []byte
	if order.PaymentDetails != nil {
		detailsJSON, err = json.Marshal(order.PaymentDetails)
		if err != nil {
			return fmt.Errorf("failed to marshal payment details: %w", err)
		}
	}

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer tx.Rollback()

	insertQuery := `
		INSERT INTO orders (id, user_id, items, total, shipping_address, payment_method, payment_details, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err = tx.QueryRowContext(dbCtx, insertQuery, order.ID, order.UserID, itemsJSON, order.Total,
		addressJSON, order.PaymentMethod, detailsJSON, order.Status).
		Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	// Conditional decrement: a row-count miss means a concurrent checkout won
	// the remaining stock, so the whole order is aborted.
	decrementQuery := `
		UPDATE products SET stock = stock - $1, updated_at = NOW()
		WHERE id = $2 AND stock >= $1
	`

	for _, item := range order.Items {
		result, err := tx.ExecContext(dbCtx, decrementQuery, item.Quantity, item.ProductID)
		if err != nil {
			return fmt.Errorf("failed to decrement stock: %w", err)
		}

		updated, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get updated rows: %w", err)
		}

		if updated == 0 {
			return &StockConflictError{ProductID: item.ProductID}
		}
	}

	if _, err := tx.ExecContext(dbCtx, `
		UPDATE carts SET items = '[]', total = 0, updated_at = NOW() WHERE id = $1
	`, cartID); err != nil {
		return fmt.Errorf("failed to empty cart: %w", err)
	}

	return tx.Commit()
}

func (r *orderRepository) GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.DB.QueryRowContext(dbCtx, query, id))
	if err != nil {
		return nil, err
	}

	return order, nil
}

func (r *orderRepository) ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]*models.Order, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(dbCtx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	defer rows.Close()

	return collectOrders(rows)
}

// ListAllOrders returns every order, newest first, with the owning user's
// username and email joined in for the admin console.
func (r *orderRepository) ListAllOrders(ctx context.Context) ([]*models.Order, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT o.id, o.user_id, o.items, o.total, o.shipping_address, o.payment_method,
		       o.payment_details, o.status, o.created_at, o.updated_at, u.username, u.email
		FROM orders o
		LEFT JOIN users u ON o.user_id = u.id
		ORDER BY o.created_at DESC
	`

	rows, err := r.DB.QueryContext(dbCtx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	defer rows.Close()

	var orders []*models.Order

	for rows.Next() {
		order := &models.Order{}

		var (
			itemsJSON, addressJSON, detailsJSON []byte
			username, email                     sql.NullString
		)

		err := rows.Scan(&order.ID, &order.UserID, &itemsJSON, &order.Total, &addressJSON,
			&order.PaymentMethod, &detailsJSON, &order.Status, &order.CreatedAt, &order.UpdatedAt,
			&username, &email)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}

		if err := unmarshalOrderFields(order, itemsJSON, addressJSON, detailsJSON); err != nil {
			return nil, err
		}

		order.Username = username.String
		order.UserEmail = email.String

		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *orderRepository) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE orders SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + orderColumns

	order, err := scanOrder(r.DB.QueryRowContext(dbCtx, query, status, id))
	if err != nil {
		return nil, err
	}

	return order, nil
}

// HasDeliveredOrderWithProduct reports whether the user owns a delivered
// order containing the product; it gates review creation.
func (r *orderRepository) HasDeliveredOrderWithProduct(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT EXISTS (
			SELECT 1 FROM orders
			WHERE user_id = $1 AND status = $2 AND items @> $3
		)
	`

	var exists bool

	err := r.DB.QueryRowContext(dbCtx, query, userID, models.OrderStatusDelivered,
		fmt.Sprintf(`[{"product_id": %q}]`, productID)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check purchase history: %w", err)
	}

	return exists, nil
}

func collectOrders(rows *sql.Rows) ([]*models.Order, error) {
	var orders []*models.Order

	for rows.Next() {
		order := &models.Order{}

		var itemsJSON, addressJSON, detailsJSON []byte

		err := rows.Scan(&order.ID, &order.UserID, &itemsJSON, &order.Total, &addressJSON,
			&order.PaymentMethod, &detailsJSON, &order.Status, &order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}

		if err := unmarshalOrderFields(order, itemsJSON, addressJSON, detailsJSON); err != nil {
			return nil, err
		}

		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

func scanOrder(row *sql.Row) (*models.Order, error) {
	order := &models.Order{}

	var itemsJSON, addressJSON, detailsJSON []byte

	err := row.Scan(&order.ID, &order.UserID, &itemsJSON, &order.Total, &addressJSON,
		&order.PaymentMethod, &detailsJSON, &order.Status, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get the order: %w", err)
	}

	if err := unmarshalOrderFields(order, itemsJSON, addressJSON, detailsJSON); err != nil {
		return nil, err
	}

	return order, nil
}

func unmarshalOrderFields(order *models.Order, itemsJSON, addressJSON, detailsJSON []byte) error {

	var stored []storedOrderItem
	if err := json.Unmarshal(itemsJSON, &stored); err != nil {
		return fmt.Errorf("failed to unmarshal order items: %w", err)
	}

	order.Items = make([]models.OrderItem, len(stored))
	for i, item := range stored {
		order.Items[i] = models.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		}
	}

	if err := json.Unmarshal(addressJSON, &order.ShippingAddress); err != nil {
		return fmt.Errorf("failed to unmarshal shipping address: %w", err)
	}

	if len(detailsJSON) > 0 {
		if err := json.Unmarshal(detailsJSON, &order.PaymentDetails); err != nil {
			return fmt.Errorf("failed to unmarshal payment details: %w", err)
		}
	}

	return nil
}

func marshalOrderItems(items []models.OrderItem) ([]byte, error) {
	stored := make([]storedOrderItem, len(items))

	for i, item := range items {
		stored[i] = storedOrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		}
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order items: %w", err)
	}

	return data, nil
}
