package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	apperrors "github.com/shopora/shopora-platform/internal/errors"
	"github.com/shopora/shopora-platform/internal/models"
	repository "github.com/shopora/shopora-platform/internal/repositories"
	"golang.org/x/crypto/bcrypt"
)

type UserService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, req *models.UpdateProfileRequest) (*models.User, error)
	UpdateAddress(ctx context.Context, id uuid.UUID, address *models.Address) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	UpdateRole(ctx context.Context, actor *models.User, id uuid.UUID, role string) (*models.User, error)
	UpdateActive(ctx context.Context, actor *models.User, id uuid.UUID, active bool) (*models.User, error)
	DeleteUser(ctx context.Context, actor *models.User, id uuid.UUID) error
}

type userService struct {
	repo        repository.UserRepository
	rateLimiter repository.RateLimitRepository
	jwtKey      []byte
	tokenExpiry time.Duration
}

func NewUserService(repo repository.UserRepository, rateLimiter repository.RateLimitRepository, jwtKey []byte, tokenExpiry time.Duration) UserService {
	return &userService{
		repo:        repo,
		rateLimiter: rateLimiter,
		jwtKey:      jwtKey,
		tokenExpiry: tokenExpiry,
	}
}

func (s *userService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {

	if existing, _ := s.repo.GetUserByEmail(ctx, req.Email); existing != nil {
		return nil, apperrors.DuplicateEntryError("Email already registered")
	}

	if existing, _ := s.repo.GetUserByUsername(ctx, req.Username); existing != nil {
		return nil, apperrors.DuplicateEntryError("Username already taken")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.InternalError("Failed to secure password").WithError(err)
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
		Password: string(hashedPassword),
		Role:     models.RoleUser,
		Active:   true,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperrors.DuplicateEntryError("Email or username already registered")
		}

		return nil, apperrors.DatabaseError("Failed to create user").WithError(err)
	}

	return user, nil
}

func (s *userService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {

	// check rate limit
	allowed, remaining, retryAfter, err := s.rateLimiter.CheckLoginRateLimit(ctx, req.Email)
	if err != nil {
		return nil, apperrors.ThirdPartyError("Rate limit check failed").WithError(err)
	}

	if !allowed {
		return &models.LoginResponse{
			Success:    false,
			Message:    "Too many login attempts. Please try again later.",
			RetryAfter: retryAfter,
		}, nil
	}

	user, err := s.repo.GetUserByEmail(ctx, req.Email)
	if err != nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return &models.LoginResponse{
			Success:        false,
			Message:        "Invalid email or password",
			RemainingTries: remaining,
		}, nil
	}

	if !user.Active {
		return &models.LoginResponse{
			Success: false,
			Message: "Account is deactivated",
		}, nil
	}

	tokenString, expiresAt, err := s.issueToken(user)
	if err != nil {
		return nil, apperrors.InternalError("Failed to generate authentication token").WithError(err)
	}

	return &models.LoginResponse{
		Success:   true,
		Token:     tokenString,
		User:      user,
		ExpiresIn: int(time.Until(expiresAt).Seconds()),
	}, nil
}

func (s *userService) issueToken(user *models.User) (string, time.Time, error) {

	expiresAt := time.Now().Add(s.tokenExpiry)

	claims := &models.Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString(s.jwtKey)
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

func (s *userService) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {

	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, apperrors.NotFoundError("User not found").WithError(err)
	}

	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, id uuid.UUID, req *models.UpdateProfileRequest) (*models.User, error) {

	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, apperrors.NotFoundError("User not found").WithError(err)
	}

	if req.Email != user.Email {
		if existing, _ := s.repo.GetUserByEmail(ctx, req.Email); existing != nil {
			return nil, apperrors.DuplicateEntryError("Email already registered")
		}
	}

	if req.Username != user.Username {
		if existing, _ := s.repo.GetUserByUsername(ctx, req.Username); existing != nil {
			return nil, apperrors.DuplicateEntryError("Username already taken")
		}
	}

	// A password change requires proof of the current one.
	if req.NewPassword != "" {
		if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)) != nil {
			return nil, apperrors.UnauthorizedError("Current password is incorrect")
		}

		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, apperrors.InternalError("Failed to secure password").WithError(err)
		}

		user.Password = string(hashedPassword)
	}

	user.Username = req.Username
	user.Email = req.Email

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return nil, apperrors.DatabaseError("Failed to update profile").WithError(err)
	}

	return user, nil
}

func (s *userService) UpdateAddress(ctx context.Context, id uuid.UUID, address *models.Address) (*models.User, error) {

	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, apperrors.NotFoundError("User not found").WithError(err)
	}

	user.Address = address

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return nil, apperrors.DatabaseError("Failed to update address").WithError(err)
	}

	return user, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]*models.User, error) {

	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, apperrors.DatabaseError("Failed to list users").WithError(err)
	}

	return users, nil
}

// UpdateRole changes a user's role. An admin cannot demote themself, which
// keeps at least the acting admin able to administer.
func (s *userService) UpdateRole(ctx context.Context, actor *models.User, id uuid.UUID, role string) (*models.User, error) {

	if actor.ID == id && role != models.RoleAdmin {
		return nil, apperrors.BadRequestError("Cannot demote your own account")
	}

	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, apperrors.NotFoundError("User not found").WithError(err)
	}

	user.Role = role

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return nil, apperrors.DatabaseError("Failed to update role").WithError(err)
	}

	return user, nil
}

// UpdateActive toggles a user's active flag. Deactivating your own account is
// rejected for the same self-lockout reason as UpdateRole.
func (s *userService) UpdateActive(ctx context.Context, actor *models.User, id uuid.UUID, active bool) (*models.User, error) {

	if actor.ID == id && !active {
		return nil, apperrors.BadRequestError("Cannot deactivate your own account")
	}

	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, apperrors.NotFoundError("User not found").WithError(err)
	}

	user.Active = active

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return nil, apperrors.DatabaseError("Failed to update user").WithError(err)
	}

	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, actor *models.User, id uuid.UUID) error {

	if actor.ID == id {
		return apperrors.BadRequestError("Cannot delete your own account")
	}

	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return apperrors.NotFoundError("User not found").WithError(err)
	}

	return nil
}
