package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	apperrors "github.com/shopora/shopora-platform/internal/errors"
	"github.com/shopora/shopora-platform/internal/models"
	repository "github.com/shopora/shopora-platform/internal/repositories"
)

type ReviewService interface {
	CreateReview(ctx context.Context, user *models.User, productID uuid.UUID, req *models.CreateReviewRequest) (*models.Review, error)
	UpdateReview(ctx context.Context, actor *models.User, id uuid.UUID, req *models.UpdateReviewRequest) (*models.Review, error)
	DeleteReview(ctx context.Context, actor *models.User, id uuid.UUID) error
	ListReviewsByProduct(ctx context.Context, productID uuid.UUID) ([]*models.Review, error)
	ListMyReviews(ctx context.Context, userID uuid.UUID) ([]*models.Review, error)
}

type reviewService struct {
	reviewRepo  repository.ReviewRepository
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	sanitizer   *bluemonday.Policy
}

func NewReviewService(reviewRepo repository.ReviewRepository, orderRepo repository.OrderRepository, productRepo repository.ProductRepository) ReviewService {
	return &reviewService{
		reviewRepo:  reviewRepo,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		sanitizer:   bluemonday.StrictPolicy(),
	}
}

// CreateReview gates on purchase proof: the user must have a delivered order
// containing the product, and at most one review per (user, product) pair.
func (s *reviewService) CreateReview(ctx context.Context, user *models.User, productID uuid.UUID, req *models.CreateReviewRequest) (*models.Review, error) {

	if _, err := s.productRepo.GetProductByID(ctx, productID); err != nil {
		return nil, apperrors.NotFoundError("Product not found").WithError(err)
	}

	eligible, err := s.orderRepo.HasDeliveredOrderWithProduct(ctx, user.ID, productID)
	if err != nil {
		return nil, apperrors.DatabaseError("Failed to verify purchase history").WithError(err)
	}

	if !eligible {
		return nil, apperrors.NotEligibleError()
	}

	exists, err := s.reviewRepo.ReviewExists(ctx, user.ID, productID)
	if err != nil {
		return nil, apperrors.DatabaseError("Failed to check existing review").WithError(err)
	}

	if exists {
		return nil, apperrors.AlreadyReviewedError()
	}

	review := &models.Review{
		ID:        uuid.New(),
		UserID:    user.ID,
		ProductID: productID,
		Rating:    req.Rating,
		Comment:   s.sanitizer.Sanitize(req.Comment),
	}

	if err := s.reviewRepo.CreateReview(ctx, review); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.AlreadyReviewedError()
		}

		return nil, apperrors.DatabaseError("Failed to create review").WithError(err)
	}

	review.Username = user.Username

	return review, nil
}

// UpdateReview is owner only; admins moderate through DeleteReview.
func (s *reviewService) UpdateReview(ctx context.Context, actor *models.User, id uuid.UUID, req *models.UpdateReviewRequest) (*models.Review, error) {

	review, err := s.reviewRepo.GetReviewByID(ctx, id)
	if err != nil {
		return nil, apperrors.NotFoundError("Review not found").WithError(err)
	}

	if review.UserID != actor.ID {
		return nil, apperrors.ForbiddenError("You can only edit your own reviews")
	}

	review.Rating = req.Rating
	review.Comment = s.sanitizer.Sanitize(req.Comment)

	if err := s.reviewRepo.UpdateReview(ctx, review); err != nil {
		return nil, apperrors.DatabaseError("Failed to update review").WithError(err)
	}

	return review, nil
}

func (s *reviewService) DeleteReview(ctx context.Context, actor *models.User, id uuid.UUID) error {

	review, err := s.reviewRepo.GetReviewByID(ctx, id)
	if err != nil {
		return apperrors.NotFoundError("Review not found").WithError(err)
	}

	if review.UserID != actor.ID && actor.Role != models.RoleAdmin {
		return apperrors.ForbiddenError("You can only delete your own reviews")
	}

	if err := s.reviewRepo.DeleteReview(ctx, id); err != nil {
		return apperrors.DatabaseError("Failed to delete review").WithError(err)
	}

	return nil
}

func (s *reviewService) ListReviewsByProduct(ctx context.Context, productID uuid.UUID) ([]*models.Review, error) {

	if _, err := s.productRepo.GetProductByID(ctx, productID); err != nil {
		return nil, apperrors.NotFoundError("Product not found").WithError(err)
	}

	reviews, err := s.reviewRepo.ListReviewsByProduct(ctx, productID)
	if err != nil {
		return nil, apperrors.DatabaseError("Failed to fetch reviews").WithError(err)
	}

	return reviews, nil
}

func (s *reviewService) ListMyReviews(ctx context.Context, userID uuid.UUID) ([]*models.Review, error) {

	reviews, err := s.reviewRepo.ListReviewsByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.DatabaseError("Failed to fetch reviews").WithError(err)
	}

	return reviews, nil
}
