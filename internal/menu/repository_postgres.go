package menu

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"menuwise/internal/apperror"
	"menuwise/internal/db"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// --------------------------------------------------
// CREATE
// --------------------------------------------------
func (r *PostgresRepository) Create(ctx context.Context, m *Menu) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if !db.ValidID(m.UploadedBy) {
		return apperror.ValidationFailed("uploadedBy", "uploader must be a valid id")
	}
	now := time.Now().UTC()
	m.CreatedAt, m.UpdatedAt = now, now
	m.Version = 1

	doc, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode menu: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO menus (
			id, uploaded_by, restaurant_name, is_public, lng, lat,
			average_health_score, version, doc, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, m.ID, m.UploadedBy, m.RestaurantName, m.IsPublic, m.Location.Lng(), m.Location.Lat(),
		m.AverageHealthScore, m.Version, doc, m.CreatedAt, m.UpdatedAt)
	if db.IsUniqueViolation(err) {
		return apperror.Duplicate("id", "menu already exists")
	}
	if err != nil {
		return fmt.Errorf("insert menu: %w", err)
	}
	return nil
}

// --------------------------------------------------
// READ
// --------------------------------------------------
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Menu, error) {
	if !db.ValidID(id) {
		return nil, apperror.NotFound("menu", id)
	}

	var doc []byte
	err := r.db.QueryRow(ctx, `SELECT doc FROM menus WHERE id = $1`, id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NotFound("menu", id)
	}
	if err != nil {
		return nil, fmt.Errorf("select menu: %w", err)
	}
	return decode(doc)
}

func (r *PostgresRepository) List(ctx context.Context, f ListFilter) ([]*Menu, error) {
	q := psql.Select("doc").From("menus").OrderBy("created_at", "id")

	if f.UploadedBy != "" {
		if !db.ValidID(f.UploadedBy) {
			return []*Menu{}, nil
		}
		q = q.Where(sq.Eq{"uploaded_by": f.UploadedBy})
	}
	if f.PublicOnly {
		q = q.Where(sq.Eq{"is_public": true})
	}
	if f.Tag != "" {
		tag, _ := json.Marshal([]string{f.Tag})
		q = q.Where(sq.Expr("doc->'tags' @> ?::jsonb", string(tag)))
	}
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build menu query: %w", err)
	}
	return r.query(ctx, query, args...)
}

// Nearby computes haversine distance in SQL after a latitude pre-filter.
func (r *PostgresRepository) Nearby(ctx context.Context, lng, lat, radius float64, limit int) ([]*Menu, error) {
	minLat, maxLat := latitudeWindow(lat, radius)
	if limit <= 0 {
		limit = 100
	}

	return r.query(ctx, `
		SELECT doc FROM (
			SELECT doc, 2 * $1::float8 * asin(least(1, sqrt(
				power(sin(radians(lat - $3::float8) / 2), 2) +
				cos(radians($3::float8)) * cos(radians(lat)) *
				power(sin(radians(lng - $2::float8) / 2), 2)
			))) AS distance
			FROM menus
			WHERE lat BETWEEN $4 AND $5
		) candidates
		WHERE distance <= $6
		ORDER BY distance
		LIMIT $7
	`, earthRadiusMeters, lng, lat, minLat, maxLat, radius, limit)
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]*Menu, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select menus: %w", err)
	}
	defer rows.Close()

	out := []*Menu{}
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan menu: %w", err)
		}
		m, err := decode(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// --------------------------------------------------
// UPDATE (VERSION CHECKED)
// --------------------------------------------------
func (r *PostgresRepository) Update(ctx context.Context, m *Menu) error {
	next := *m
	next.Version = m.Version + 1
	next.UpdatedAt = time.Now().UTC()

	doc, err := json.Marshal(&next)
	if err != nil {
		return fmt.Errorf("encode menu: %w", err)
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE menus
		SET restaurant_name = $1,
		    is_public = $2,
		    lng = $3,
		    lat = $4,
		    average_health_score = $5,
		    version = $6,
		    doc = $7,
		    updated_at = $8
		WHERE id = $9 AND version = $10
	`, next.RestaurantName, next.IsPublic, next.Location.Lng(), next.Location.Lat(),
		next.AverageHealthScore, next.Version, doc, next.UpdatedAt, m.ID, m.Version)
	if err != nil {
		return fmt.Errorf("update menu: %w", err)
	}

	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, m.ID); err != nil {
			return err
		}
		return apperror.ErrStale
	}

	m.Version, m.UpdatedAt = next.Version, next.UpdatedAt
	return nil
}

func decode(doc []byte) (*Menu, error) {
	m := &Menu{}
	if err := json.Unmarshal(doc, m); err != nil {
		return nil, fmt.Errorf("decode menu: %w", err)
	}
	return m, nil
}
