package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopora/shopora-platform/internal/models"
	"github.com/shopora/shopora-platform/internal/utils"
)

type ProductRepository interface {
	CreateProduct(ctx context.Context, product *models.Product) error
	GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetProductsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Product, error)
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	ListProducts(ctx context.Context, q *models.ListProductsQuery) ([]*models.Product, int, error)
}

type productRepository struct {
	DB *sql.DB
}

func NewProductRepo(db *sql.DB) ProductRepository {
	return &productRepository{DB: db}
}

const productColumns = `id, name, description, price, image_url, image_public_id, images, images_public_ids, category, stock, featured, created_at, updated_at`

func (r *productRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	imagesJSON, publicIDsJSON, err := marshalProductImages(product)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO products (id, name, description, price, image_url, image_public_id, images, images_public_ids, category, stock, featured, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	return r.DB.QueryRowContext(dbCtx, query, product.ID, product.Name, product.Description,
		product.Price, product.ImageURL, product.ImagePublicID, imagesJSON, publicIDsJSON,
		product.Category, product.Stock, product.Featured).Scan(&product.CreatedAt, &product.UpdatedAt)
}

func (r *productRepository) GetProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	return scanProduct(r.DB.QueryRowContext(dbCtx, query, id))
}

func (r *productRepository) GetProductsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.Product, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]*models.Product{}, nil
	}

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))

	for i, id := range ids {
		placeholders[i] = "$" + strconv.Itoa(i+1)
		args[i] = id
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE id IN (` + strings.Join(placeholders, ", ") + `)`

	rows, err := r.DB.QueryContext(dbCtx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	defer rows.Close()

	products := make(map[uuid.UUID]*models.Product, len(ids))

	for rows.Next() {
		product, err := scanProductRow(rows)
		if err != nil {
			return nil, err
		}

		products[product.ID] = product
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}

func (r *productRepository) UpdateProduct(ctx context.Context, product *models.Product) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	imagesJSON, publicIDsJSON, err := marshalProductImages(product)
	if err != nil {
		return err
	}

	query := `
		UPDATE products
		SET name = $1, description = $2, price = $3, image_url = $4, image_public_id = $5,
		    images = $6, images_public_ids = $7, category = $8, stock = $9, featured = $10, updated_at = NOW()
		WHERE id = $11
		RETURNING updated_at
	`

	err = r.DB.QueryRowContext(dbCtx, query, product.Name, product.Description, product.Price,
		product.ImageURL, product.ImagePublicID, imagesJSON, publicIDsJSON, product.Category,
		product.Stock, product.Featured, product.ID).Scan(&product.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("failed to update product: %w", err)
	}

	return nil
}

// DeleteProduct removes a product together with everything referencing it:
// its reviews are deleted and it is stripped from every cart, with each
// affected cart's total recomputed. The whole cascade runs in one transaction.
func (r *productRepository) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer tx.Rollback()

	if _, err := tx.ExecContext(dbCtx, `DELETE FROM reviews WHERE product_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete product reviews: %w", err)
	}

	if err := removeProductFromCarts(dbCtx, tx, id); err != nil {
		return err
	}

	result, err := tx.ExecContext(dbCtx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get deleted rows: %w", err)
	}

	if deleted == 0 {
		return sql.ErrNoRows
	}

	return tx.Commit()
}

// removeProductFromCarts filters the product out of every cart that holds it
// and rewrites each cart with a recomputed total.
func removeProductFromCarts(ctx context.Context, tx *sql.Tx, productID uuid.UUID) error {

	rows, err := tx.QueryContext(ctx, `
		SELECT id, items FROM carts WHERE items @> $1
	`, fmt.Sprintf(`[{"product_id": %q}]`, productID))
	if err != nil {
		return fmt.Errorf("failed to find carts holding product: %w", err)
	}

	type affectedCart struct {
		id    uuid.UUID
		items []storedCartItem
	}

	var affected []affectedCart

	for rows.Next() {
		var (
			cartID    uuid.UUID
			itemsJSON []byte
		)

		if err := rows.Scan(&cartID, &itemsJSON); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan cart: %w", err)
		}

		var items []storedCartItem
		if err := json.Unmarshal(itemsJSON, &items); err != nil {
			rows.Close()
			return fmt.Errorf("failed to unmarshal cart items: %w", err)
		}

		kept := items[:0]
		for _, item := range items {
			if item.ProductID != productID {
				kept = append(kept, item)
			}
		}

		affected = append(affected, affectedCart{id: cartID, items: kept})
	}

	rows.Close()

	if err := rows.Err(); err != nil {
		return err
	}

	for _, cart := range affected {
		itemsJSON, err := json.Marshal(cart.items)
		if err != nil {
			return fmt.Errorf("failed to marshal cart items: %w", err)
		}

		var total float64
		for _, item := range cart.items {
			total += item.Price * float64(item.Quantity)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE carts SET items = $1, total = $2, updated_at = NOW() WHERE id = $3
		`, itemsJSON, total, cart.id); err != nil {
			return fmt.Errorf("failed to rewrite cart: %w", err)
		}
	}

	return nil
}

func (r *productRepository) ListProducts(ctx context.Context, q *models.ListProductsQuery) ([]*models.Product, int, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	where, args := buildProductFilter(q)

	var total int

	countQuery := `SELECT COUNT(*) FROM products` + where

	if err := r.DB.QueryRowContext(dbCtx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	query := `SELECT ` + productColumns + ` FROM products` + where + orderClause(q.Sort)

	if q.Limit > 0 {
		offset := (q.Page - 1) * q.Limit
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, q.Limit, offset)
	}

	rows, err := r.DB.QueryContext(dbCtx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}

	defer rows.Close()

	var products []*models.Product

	for rows.Next() {
		product, err := scanProductRow(rows)
		if err != nil {
			return nil, 0, err
		}

		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func buildProductFilter(q *models.ListProductsQuery) (string, []any) {

	var (
		conditions []string
		args       []any
	)

	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if q.Category != "" {
		conditions = append(conditions, "category = "+arg(q.Category))
	}

	if q.Featured {
		conditions = append(conditions, "featured = TRUE")
	}

	if q.Search != "" {
		pattern := "%" + q.Search + "%"
		p1 := arg(pattern)
		p2 := arg(pattern)
		conditions = append(conditions, "(name ILIKE "+p1+" OR description ILIKE "+p2+")")
	}

	if q.MinPrice != nil {
		conditions = append(conditions, "price >= "+arg(*q.MinPrice))
	}

	if q.MaxPrice != nil {
		conditions = append(conditions, "price <= "+arg(*q.MaxPrice))
	}

	if len(conditions) == 0 {
		return "", args
	}

	return " WHERE " + strings.Join(conditions, " AND "), args
}

func orderClause(sort string) string {
	switch sort {
	case models.SortPriceAsc:
		return " ORDER BY price ASC"
	case models.SortPriceDesc:
		return " ORDER BY price DESC"
	case models.SortNameAsc:
		return " ORDER BY name ASC"
	case models.SortNameDesc:
		return " ORDER BY name DESC"
	default:
		return " ORDER BY created_at DESC"
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row *sql.Row) (*models.Product, error) {
	product, err := scanProductRow(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, err
	}

	return product, nil
}

func scanProductRow(s rowScanner) (*models.Product, error) {
	product := &models.Product{}

	var imagesJSON, publicIDsJSON []byte

	err := s.Scan(&product.ID, &product.Name, &product.Description, &product.Price,
		&product.ImageURL, &product.ImagePublicID, &imagesJSON, &publicIDsJSON,
		&product.Category, &product.Stock, &product.Featured, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}

	if len(imagesJSON) > 0 {
		if err := json.Unmarshal(imagesJSON, &product.Images); err != nil {
			return nil, fmt.Errorf("failed to unmarshal product images: %w", err)
		}
	}

	if len(publicIDsJSON) > 0 {
		if err := json.Unmarshal(publicIDsJSON, &product.ImagesPublicIDs); err != nil {
			return nil, fmt.Errorf("failed to unmarshal image public ids: %w", err)
		}
	}

	return product, nil
}

func marshalProductImages(product *models.Product) ([]byte, []byte, error) {
	if product.Images == nil {
		product.Images = []string{}
	}

	imagesJSON, err := json.Marshal(product.Images)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal product images: %w", err)
	}

	if product.ImagesPublicIDs == nil {
		product.ImagesPublicIDs = []string{}
	}

	publicIDsJSON, err := json.Marshal(product.ImagesPublicIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal image public ids: %w", err)
	}

	return imagesJSON, publicIDsJSON, nil
}
