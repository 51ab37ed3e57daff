package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/shopora/shopora-platform/internal/models"
	"github.com/shopora/shopora-platform/internal/utils"
)

type SettingsRepository interface {
	GetSetting(ctx context.Context, key string) (*models.Setting, error)
	UpsertSetting(ctx context.Context, key string, value json.RawMessage) (*models.Setting, error)
}

type settingsRepository struct {
	DB *sql.DB
}

func NewSettingsRepo(db *sql.DB) SettingsRepository {
	return &settingsRepository{DB: db}
}

func (r *settingsRepository) GetSetting(ctx context.Context, key string) (*models.Setting, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT key, value, updated_at FROM settings WHERE key = $1`

	setting := &models.Setting{}

	err := r.DB.QueryRowContext(dbCtx, query, key).Scan(&setting.Key, &setting.Value, &setting.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("querying database: %w", err)
	}

	return setting, nil
}

func (r *settingsRepository) UpsertSetting(ctx context.Context, key string, value json.RawMessage) (*models.Setting, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO settings (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
		RETURNING key, value, updated_at
	`

	setting := &models.Setting{}

	err := r.DB.QueryRowContext(dbCtx, query, key, []byte(value)).
		Scan(&setting.Key, &setting.Value, &setting.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert setting: %w", err)
	}

	return setting, nil
}
