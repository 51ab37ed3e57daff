package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/shopora/shopora-platform/internal/config"
)

const uniqueViolationCode = "23505"

// Repositories bundles every store over a shared connection pool.
type Repositories struct {
	DB       *sql.DB
	User     UserRepository
	Product  ProductRepository
	Cart     CartRepository
	Order    OrderRepository
	Review   ReviewRepository
	Settings SettingsRepository
}

func New(cfg *config.Config) (*Repositories, error) {

	db, err := sql.Open("postgres", cfg.Database.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.Database.ConnMaxIdleTime)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Repositories{
		DB:       db,
		User:     NewUserRepo(db),
		Product:  NewProductRepo(db),
		Cart:     NewCartRepo(db),
		Order:    NewOrderRepo(db),
		Review:   NewReviewRepo(db),
		Settings: NewSettingsRepo(db),
	}, nil
}

func (r *Repositories) Close() error {
	return r.DB.Close()
}

// IsUniqueViolation reports whether err is a Postgres unique-constraint error.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolationCode
}
