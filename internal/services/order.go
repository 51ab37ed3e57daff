package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/shopora/shopora-platform/internal/api/middleware"
	apperrors "github.com/shopora/shopora-platform/internal/errors"
	"github.com/shopora/shopora-platform/internal/metrics"
	"github.com/shopora/shopora-platform/internal/models"
	repository "github.com/shopora/shopora-platform/internal/repositories"
)

// OrderNotifier sends the post-checkout confirmation. Failures are logged and
// never surfaced to the buyer.
type OrderNotifier interface {
	SendOrderConfirmation(ctx context.Context, user *models.User, order *models.Order) error
}

type OrderService interface {
	Checkout(ctx context.Context, user *models.User, req *models.CreateOrderRequest) (*models.Order, error)
	GetOrderByID(ctx context.Context, actor *models.User, id uuid.UUID) (*models.Order, error)
	ListMyOrders(ctx context.Context, userID uuid.UUID) ([]*models.Order, error)
	ListAllOrders(ctx context.Context) ([]*models.Order, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	notifier    OrderNotifier
}

func NewOrderService(orderRepo repository.OrderRepository, cartRepo repository.CartRepository, productRepo repository.ProductRepository, notifier OrderNotifier) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		notifier:    notifier,
	}
}

// Checkout converts the user's cart into an order. Item prices are the
// snapshots taken when each item entered the cart, not current catalog prices.
// Stock is checked up front so every short product can be named in one error,
// then decremented conditionally inside the order transaction so concurrent
// checkouts cannot oversell.
func (s *orderService) Checkout(ctx context.Context, user *models.User, req *models.CreateOrderRequest) (*models.Order, error) {

	cart, err := s.cartRepo.GetCartByUserID(ctx, user.ID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		metrics.ObserveCheckout("error")

		return nil, apperrors.DatabaseError("Failed to fetch cart").WithError(err)
	}

	// no cart yet is the same as an empty one
	if err != nil || len(cart.Items) == 0 {
		metrics.ObserveCheckout("empty_cart")

		return nil, apperrors.EmptyCartError()
	}

	ids := make([]uuid.UUID, len(cart.Items))
	for i, item := range cart.Items {
		ids[i] = item.ProductID
	}

	products, err := s.productRepo.GetProductsByIDs(ctx, ids)
	if err != nil {
		metrics.ObserveCheckout("error")

		return nil, apperrors.DatabaseError("Failed to verify product availability").WithError(err)
	}

	var short []string

	for _, item := range cart.Items {
		product, ok := products[item.ProductID]
		if !ok {
			metrics.ObserveCheckout("error")

			return nil, apperrors.NotFoundError("A product in your cart is no longer available")
		}

		if product.Stock < item.Quantity {
			short = append(short, product.Name)
		}
	}

	if len(short) > 0 {
		metrics.ObserveCheckout("insufficient_stock")

		return nil, apperrors.InsufficientStockError(short)
	}

	items := make([]models.OrderItem, len(cart.Items))
	for i, item := range cart.Items {
		items[i] = models.OrderItem{
			ProductID: item.ProductID,
			Name:      products[item.ProductID].Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		}
	}

	order := &models.Order{
		ID:              uuid.New(),
		UserID:          user.ID,
		Items:           items,
		Total:           cart.Total,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		PaymentDetails:  req.PaymentDetails,
		Status:          models.OrderStatusPending,
	}

	if err := s.orderRepo.CreateOrder(ctx, order, cart.ID); err != nil {
		var conflict *repository.StockConflictError
		if errors.As(err, &conflict) {
			metrics.ObserveCheckout("insufficient_stock")

			name := conflict.ProductID.String()
			if product, ok := products[conflict.ProductID]; ok {
				name = product.Name
			}

			return nil, apperrors.InsufficientStockError([]string{name})
		}

		metrics.ObserveCheckout("error")

		return nil, apperrors.DatabaseError("Failed to create order").WithError(err)
	}

	metrics.ObserveCheckout("success")

	if s.notifier != nil {
		if err := s.notifier.SendOrderConfirmation(ctx, user, order); err != nil {
			middleware.LoggerFromContext(ctx).Warn("failed to send order confirmation",
				"orderId", order.ID, "error", err)
		}
	}

	return s.withDisplayFields(ctx, order), nil
}

// GetOrderByID returns the order when the actor owns it or is an admin.
func (s *orderService) GetOrderByID(ctx context.Context, actor *models.User, id uuid.UUID) (*models.Order, error) {

	order, err := s.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, apperrors.NotFoundError("Order not found").WithError(err)
	}

	if order.UserID != actor.ID && actor.Role != models.RoleAdmin {
		return nil, apperrors.ForbiddenError("You do not have access to this order")
	}

	return s.withDisplayFields(ctx, order), nil
}

func (s *orderService) ListMyOrders(ctx context.Context, userID uuid.UUID) ([]*models.Order, error) {

	orders, err := s.orderRepo.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.DatabaseError("Failed to fetch orders").WithError(err)
	}

	return s.listWithDisplayFields(ctx, orders), nil
}

func (s *orderService) ListAllOrders(ctx context.Context) ([]*models.Order, error) {

	orders, err := s.orderRepo.ListAllOrders(ctx)
	if err != nil {
		return nil, apperrors.DatabaseError("Failed to fetch orders").WithError(err)
	}

	return s.listWithDisplayFields(ctx, orders), nil
}

func (s *orderService) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error) {

	if !models.ValidOrderStatus(status) {
		return nil, apperrors.ValidationError("Invalid order status")
	}

	order, err := s.orderRepo.UpdateOrderStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFoundError("Order not found")
		}

		return nil, apperrors.DatabaseError("Failed to update order status").WithError(err)
	}

	return s.withDisplayFields(ctx, order), nil
}

// withDisplayFields attaches current product images to the snapshot items.
// A deleted product simply leaves the image empty; the snapshot fields stand
// on their own.
func (s *orderService) withDisplayFields(ctx context.Context, order *models.Order) *models.Order {

	if len(order.Items) == 0 {
		return order
	}

	ids := make([]uuid.UUID, len(order.Items))
	for i, item := range order.Items {
		ids[i] = item.ProductID
	}

	products, err := s.productRepo.GetProductsByIDs(ctx, ids)
	if err != nil {
		middleware.LoggerFromContext(ctx).Warn("failed to resolve order item images",
			"orderId", order.ID, "error", err)

		return order
	}

	for i := range order.Items {
		if product, ok := products[order.Items[i].ProductID]; ok {
			order.Items[i].ImageURL = product.ImageURL
		}
	}

	return order
}

func (s *orderService) listWithDisplayFields(ctx context.Context, orders []*models.Order) []*models.Order {
	for _, order := range orders {
		s.withDisplayFields(ctx, order)
	}

	return orders
}
