package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopora/shopora-platform/internal/models"
	"github.com/shopora/shopora-platform/internal/utils"
)

type ReviewRepository interface {
	CreateReview(ctx context.Context, review *models.Review) error
	GetReviewByID(ctx context.Context, id uuid.UUID) (*models.Review, error)
	UpdateReview(ctx context.Context, review *models.Review) error
	DeleteReview(ctx context.Context, id uuid.UUID) error
	ListReviewsByProduct(ctx context.Context, productID uuid.UUID) ([]*models.Review, error)
	ListReviewsByUser(ctx context.Context, userID uuid.UUID) ([]*models.Review, error)
	ReviewExists(ctx context.Context, userID, productID uuid.UUID) (bool, error)
}

type reviewRepository struct {
	DB *sql.DB
}

func NewReviewRepo(db *sql.DB) ReviewRepository {
	return &reviewRepository{DB: db}
}

func (r *reviewRepository) CreateReview(ctx context.Context, review *models.Review) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO reviews (id, user_id, product_id, rating, comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	return r.DB.QueryRowContext(dbCtx, query, review.ID, review.UserID, review.ProductID,
		review.Rating, review.Comment).Scan(&review.CreatedAt, &review.UpdatedAt)
}

func (r *reviewRepository) GetReviewByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT id, user_id, product_id, rating, comment, created_at, updated_at
		FROM reviews
		WHERE id = $1
	`

	review := &models.Review{}

	err := r.DB.QueryRowContext(dbCtx, query, id).Scan(&review.ID, &review.UserID,
		&review.ProductID, &review.Rating, &review.Comment, &review.CreatedAt, &review.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("querying database: %w", err)
	}

	return review, nil
}

func (r *reviewRepository) UpdateReview(ctx context.Context, review *models.Review) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		UPDATE reviews SET rating = $1, comment = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING updated_at
	`

	err := r.DB.QueryRowContext(dbCtx, query, review.Rating, review.Comment, review.ID).
		Scan(&review.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("failed to update review: %w", err)
	}

	return nil
}

func (r *reviewRepository) DeleteReview(ctx context.Context, id uuid.UUID) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := r.DB.ExecContext(dbCtx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get deleted rows: %w", err)
	}

	if deleted == 0 {
		return sql.ErrNoRows
	}

	return nil
}

// ListReviewsByProduct returns a product's reviews newest first with the
// reviewer's username joined in.
func (r *reviewRepository) ListReviewsByProduct(ctx context.Context, productID uuid.UUID) ([]*models.Review, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT r.id, r.user_id, r.product_id, r.rating, r.comment, r.created_at, r.updated_at, u.username
		FROM reviews r
		LEFT JOIN users u ON r.user_id = u.id
		WHERE r.product_id = $1
		ORDER BY r.created_at DESC
	`

	rows, err := r.DB.QueryContext(dbCtx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}

	defer rows.Close()

	var reviews []*models.Review

	for rows.Next() {
		review := &models.Review{}

		var username sql.NullString

		err := rows.Scan(&review.ID, &review.UserID, &review.ProductID, &review.Rating,
			&review.Comment, &review.CreatedAt, &review.UpdatedAt, &username)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}

		review.Username = username.String

		reviews = append(reviews, review)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return reviews, nil
}

// ListReviewsByUser returns a user's reviews newest first with product
// display fields joined in.
func (r *reviewRepository) ListReviewsByUser(ctx context.Context, userID uuid.UUID) ([]*models.Review, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		SELECT r.id, r.user_id, r.product_id, r.rating, r.comment, r.created_at, r.updated_at, p.name, p.image_url
		FROM reviews r
		LEFT JOIN products p ON r.product_id = p.id
		WHERE r.user_id = $1
		ORDER BY r.created_at DESC
	`

	rows, err := r.DB.QueryContext(dbCtx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}

	defer rows.Close()

	var reviews []*models.Review

	for rows.Next() {
		review := &models.Review{}

		var productName, productImage sql.NullString

		err := rows.Scan(&review.ID, &review.UserID, &review.ProductID, &review.Rating,
			&review.Comment, &review.CreatedAt, &review.UpdatedAt, &productName, &productImage)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}

		review.ProductName = productName.String
		review.ProductImageURL = productImage.String

		reviews = append(reviews, review)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return reviews, nil
}

func (r *reviewRepository) ReviewExists(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT EXISTS (SELECT 1 FROM reviews WHERE user_id = $1 AND product_id = $2)`

	var exists bool

	if err := r.DB.QueryRowContext(dbCtx, query, userID, productID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check existing review: %w", err)
	}

	return exists, nil
}
