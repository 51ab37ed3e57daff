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

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	ListUsers(ctx context.Context) ([]*models.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepo(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

const userColumns = `id, username, email, password, role, active, address, created_at, updated_at`

func (r *userRepository) CreateUser(ctx context.Context, user *models.User) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	addressJSON, err := marshalAddress(user.Address)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO users (id, username, email, password, role, active, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	return r.DB.QueryRowContext(dbCtx, query, user.ID, user.Username, user.Email, user.Password,
		user.Role, user.Active, addressJSON).Scan(&user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.getUserWhere(ctx, "id = $1", id)
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getUserWhere(ctx, "email = $1", email)
}

func (r *userRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getUserWhere(ctx, "username = $1", username)
}

func (r *userRepository) getUserWhere(ctx context.Context, where string, arg any) (*models.User, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where

	user := &models.User{}

	var addressJSON []byte

	err := r.DB.QueryRowContext(dbCtx, query, arg).Scan(&user.ID, &user.Username, &user.Email,
		&user.Password, &user.Role, &user.Active, &addressJSON, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("querying database: %w", err)
	}

	if err := unmarshalAddress(addressJSON, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (r *userRepository) UpdateUser(ctx context.Context, user *models.User) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	addressJSON, err := marshalAddress(user.Address)
	if err != nil {
		return err
	}

	query := `
		UPDATE users
		SET username = $1, email = $2, password = $3, role = $4, active = $5, address = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING updated_at
	`

	err = r.DB.QueryRowContext(dbCtx, query, user.Username, user.Email, user.Password,
		user.Role, user.Active, addressJSON, user.ID).Scan(&user.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return err
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	return nil
}

func (r *userRepository) ListUsers(ctx context.Context) ([]*models.User, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC`

	rows, err := r.DB.QueryContext(dbCtx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	defer rows.Close()

	var users []*models.User

	for rows.Next() {
		user := &models.User{}

		var addressJSON []byte

		err := rows.Scan(&user.ID, &user.Username, &user.Email, &user.Password,
			&user.Role, &user.Active, &addressJSON, &user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}

		if err := unmarshalAddress(addressJSON, user); err != nil {
			return nil, err
		}

		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func (r *userRepository) DeleteUser(ctx context.Context, id uuid.UUID) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := r.DB.ExecContext(dbCtx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
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

func marshalAddress(address *models.Address) ([]byte, error) {
	if address == nil {
		return nil, nil
	}

	data, err := json.Marshal(address)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal address: %w", err)
	}

	return data, nil
}

func unmarshalAddress(data []byte, user *models.User) error {
	if len(data) == 0 {
		return nil
	}

	user.Address = &models.Address{}
	if err := json.Unmarshal(data, user.Address); err != nil {
		return fmt.Errorf("failed to unmarshal address: %w", err)
	}

	return nil
}
