package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	apperrors "github.com/shopora/shopora-platform/internal/errors"
	"github.com/shopora/shopora-platform/internal/models"
	repository "github.com/shopora/shopora-platform/internal/repositories"
)

type CartService interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	AddItem(ctx context.Context, userID uuid.UUID, req *models.AddItemRequest) (*models.Cart, error)
	UpdateQuantity(ctx context.Context, userID uuid.UUID, req *models.UpdateQuantityRequest) (*models.Cart, error)
	RemoveItem(ctx context.Context, userID uuid.UUID, productID uuid.UUID) (*models.Cart, error)
	ClearCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) CartService {
	return &cartService{cartRepo: cartRepo, productRepo: productRepo}
}

// GetCart returns the user's cart, lazily creating an empty one on first
// access.
func (s *cartService) GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {

	cart, err := s.getOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.withDisplayFields(ctx, cart)
}

func (s *cartService) AddItem(ctx context.Context, userID uuid.UUID, req *models.AddItemRequest) (*models.Cart, error) {

	product, err := s.productRepo.GetProductByID(ctx, req.ProductID)
	if err != nil {
		return nil, apperrors.NotFoundError("Product not found").WithError(err)
	}

	cart, err := s.getOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	// An item already in the cart absorbs the new quantity; the combined
	// quantity is what must fit in stock.
	idx := cart.FindItem(req.ProductID)

	inCart := 0
	if idx >= 0 {
		inCart = cart.Items[idx].Quantity
	}

	newTotalQuantity := req.Quantity + inCart

	if product.Stock < newTotalQuantity {
		return nil, apperrors.InsufficientStockError([]string{product.Name}).
			WithDetail(fmt.Sprintf("Cannot add %d more items. Available stock: %d, Already in cart: %d",
				req.Quantity, product.Stock, inCart))
	}

	if idx >= 0 {
		cart.Items[idx].Quantity = newTotalQuantity
	} else {
		cart.Items = append(cart.Items, models.CartItem{
			ProductID: product.ID,
			Quantity:  req.Quantity,
			Price:     product.Price, // price snapshot, not repriced later
		})
	}

	return s.save(ctx, cart)
}

func (s *cartService) UpdateQuantity(ctx context.Context, userID uuid.UUID, req *models.UpdateQuantityRequest) (*models.Cart, error) {

	if req.Quantity < 1 {
		return nil, apperrors.ValidationError("Quantity must be at least 1")
	}

	product, err := s.productRepo.GetProductByID(ctx, req.ProductID)
	if err != nil {
		return nil, apperrors.NotFoundError("Product not found").WithError(err)
	}

	// The requested quantity replaces the old one, so it is checked against
	// stock as an absolute value.
	if product.Stock < req.Quantity {
		return nil, apperrors.InsufficientStockError([]string{product.Name}).
			WithDetail(fmt.Sprintf("Requested quantity exceeds available stock. Maximum available: %d", product.Stock))
	}

	cart, err := s.cartRepo.GetCartByUserID(ctx, userID)
	if err != nil {
		return nil, apperrors.NotFoundError("Cart not found").WithError(err)
	}

	idx := cart.FindItem(req.ProductID)
	if idx < 0 {
		return nil, apperrors.NotFoundError("Item not found in cart")
	}

	cart.Items[idx].Quantity = req.Quantity

	return s.save(ctx, cart)
}

// RemoveItem filters the product out of the cart; removing an absent product
// is not an error.
func (s *cartService) RemoveItem(ctx context.Context, userID uuid.UUID, productID uuid.UUID) (*models.Cart, error) {

	cart, err := s.cartRepo.GetCartByUserID(ctx, userID)
	if err != nil {
		return nil, apperrors.NotFoundError("Cart not found").WithError(err)
	}

	kept := cart.Items[:0]
	for _, item := range cart.Items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	cart.Items = kept

	return s.save(ctx, cart)
}

func (s *cartService) ClearCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {

	cart, err := s.cartRepo.GetCartByUserID(ctx, userID)
	if err != nil {
		return nil, apperrors.NotFoundError("Cart not found").WithError(err)
	}

	cart.Items = []models.CartItem{}

	return s.save(ctx, cart)
}

func (s *cartService) getOrCreate(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {

	cart, err := s.cartRepo.GetCartByUserID(ctx, userID)
	if err == nil {
		return cart, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.DatabaseError("Failed to fetch cart").WithError(err)
	}

	cart = models.NewCart(userID)

	if err := s.cartRepo.CreateCart(ctx, cart); err != nil {
		return nil, apperrors.DatabaseError("Failed to create cart").WithError(err)
	}

	return cart, nil
}

func (s *cartService) save(ctx context.Context, cart *models.Cart) (*models.Cart, error) {

	cart.RecomputeTotal()

	if err := s.cartRepo.UpdateCart(ctx, cart); err != nil {
		return nil, apperrors.DatabaseError("Failed to update cart").WithError(err)
	}

	return s.withDisplayFields(ctx, cart)
}

// withDisplayFields resolves name and image from the live products so the
// client can render the cart without extra lookups.
func (s *cartService) withDisplayFields(ctx context.Context, cart *models.Cart) (*models.Cart, error) {

	if len(cart.Items) == 0 {
		return cart, nil
	}

	ids := make([]uuid.UUID, len(cart.Items))
	for i, item := range cart.Items {
		ids[i] = item.ProductID
	}

	products, err := s.productRepo.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.DatabaseError("Failed to fetch cart products").WithError(err)
	}

	for i := range cart.Items {
		if product, ok := products[cart.Items[i].ProductID]; ok {
			cart.Items[i].Name = product.Name
			cart.Items[i].ImageURL = product.ImageURL
		}
	}

	return cart, nil
}
