package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the Postgres SQLSTATE for a unique constraint failure.
const uniqueViolation = "23505"

func ConnectPostgres(ctx context.Context, dsn string, logger *slog.Logger) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, errors.New("DATABASE_URL not set")
	}

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres connection failed: %w", err)
	}

	logger.Info("connected to postgres")

	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	logger.Info("postgres schema initialized")
	return pool, nil
}

// initSchema creates the document tables. Each table keeps the full entity
// as JSONB next to the handful of columns that are filtered, indexed or
// version-checked.
func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []string{
		// -------------------------------
		// USERS
		// -------------------------------
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			email VARCHAR(255) UNIQUE NOT NULL,
			password VARCHAR(255) NOT NULL,
			version INT NOT NULL DEFAULT 1,
			doc JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,

		// -------------------------------
		// MENUS
		// -------------------------------
		`CREATE TABLE IF NOT EXISTS menus (
			id UUID PRIMARY KEY,
			uploaded_by UUID NOT NULL,
			restaurant_name VARCHAR(255) NOT NULL,
			is_public BOOLEAN NOT NULL DEFAULT false,
			lng DOUBLE PRECISION NOT NULL DEFAULT 0,
			lat DOUBLE PRECISION NOT NULL DEFAULT 0,
			average_health_score INT NOT NULL DEFAULT 0,
			version INT NOT NULL DEFAULT 1,
			doc JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS menus_lat_lng_idx ON menus (lat, lng)`,

		// -------------------------------
		// DISHES (menu_id is a plain reference, no cascade)
		// -------------------------------
		`CREATE TABLE IF NOT EXISTS dishes (
			id UUID PRIMARY KEY,
			menu_id UUID NOT NULL,
			category VARCHAR(32) NOT NULL,
			health_score INT NOT NULL DEFAULT 50,
			is_available BOOLEAN NOT NULL DEFAULT true,
			version INT NOT NULL DEFAULT 1,
			doc JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS dishes_menu_id_idx ON dishes (menu_id)`,
		`CREATE INDEX IF NOT EXISTS dishes_tags_idx ON dishes USING GIN ((doc->'dietaryTags'))`,
	}

	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// IsUniqueViolation reports whether err is a Postgres unique constraint error.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// ValidID reports whether id can be stored in a UUID column. Ids that fail
// this check can never match a row.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
