package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"menuwise/internal/apperror"
	"menuwise/internal/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, u *User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	u.Version = 1

	doc, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO users (id, email, password, version, doc, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, u.ID, u.Email, u.Password, u.Version, doc, u.CreatedAt, u.UpdatedAt)
	if db.IsUniqueViolation(err) {
		return apperror.Duplicate("email", "email already registered")
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*User, error) {
	if !db.ValidID(id) {
		return nil, apperror.NotFound("user", id)
	}
	return r.scanOne(ctx, id, `SELECT doc, password FROM users WHERE id = $1`, id)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.scanOne(ctx, email, `SELECT doc, password FROM users WHERE email = $1`, email)
}

func (r *PostgresRepository) scanOne(ctx context.Context, key, query string, arg any) (*User, error) {
	var (
		doc      []byte
		password string
	)
	err := r.db.QueryRow(ctx, query, arg).Scan(&doc, &password)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NotFound("user", key)
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}

	u := &User{}
	if err := json.Unmarshal(doc, u); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", key, err)
	}
	u.Password = password
	return u, nil
}

func (r *PostgresRepository) Update(ctx context.Context, u *User) error {
	next := *u
	next.Version = u.Version + 1
	next.UpdatedAt = time.Now().UTC()

	doc, err := json.Marshal(&next)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET email = $1, password = $2, version = $3, doc = $4, updated_at = $5
		WHERE id = $6 AND version = $7
	`, next.Email, next.Password, next.Version, doc, next.UpdatedAt, u.ID, u.Version)
	if db.IsUniqueViolation(err) {
		return apperror.Duplicate("email", "email already registered")
	}
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, u.ID); err != nil {
			return err
		}
		return apperror.ErrStale
	}

	u.Version, u.UpdatedAt = next.Version, next.UpdatedAt
	return nil
}
