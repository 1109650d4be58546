package dish

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

func (r *PostgresRepository) Create(ctx context.Context, d *Dish) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if !db.ValidID(d.MenuID) {
		return apperror.ValidationFailed("menuId", "menuId must be a valid id")
	}
	now := time.Now().UTC()
	d.CreatedAt, d.UpdatedAt = now, now
	d.Version = 1

	doc, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode dish: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO dishes (id, menu_id, category, health_score, is_available, version, doc, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, d.ID, d.MenuID, d.Category, d.HealthScore, d.IsAvailable, d.Version, doc, d.CreatedAt, d.UpdatedAt)
	if db.IsUniqueViolation(err) {
		return apperror.Duplicate("id", "dish already exists")
	}
	if err != nil {
		return fmt.Errorf("insert dish: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Dish, error) {
	if !db.ValidID(id) {
		return nil, apperror.NotFound("dish", id)
	}

	var doc []byte
	err := r.db.QueryRow(ctx, `SELECT doc FROM dishes WHERE id = $1`, id).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperror.NotFound("dish", id)
	}
	if err != nil {
		return nil, fmt.Errorf("select dish: %w", err)
	}
	return decode(doc)
}

func (r *PostgresRepository) GetByIDs(ctx context.Context, ids []string) ([]*Dish, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if db.ValidID(id) {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return []*Dish{}, nil
	}

	found, err := r.query(ctx, psql.Select("doc").From("dishes").Where(sq.Eq{"id": valid}))
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*Dish, len(found))
	for _, d := range found {
		byID[d.ID] = d
	}
	out := make([]*Dish, 0, len(found))
	for _, id := range ids {
		if d, ok := byID[id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *PostgresRepository) List(ctx context.Context, f Filter) ([]*Dish, error) {
	q := psql.Select("doc").From("dishes").OrderBy("created_at", "id")

	if f.MenuID != "" {
		if !db.ValidID(f.MenuID) {
			return []*Dish{}, nil
		}
		q = q.Where(sq.Eq{"menu_id": f.MenuID})
	}
	if f.Category != "" {
		q = q.Where(sq.Eq{"category": f.Category})
	}
	if f.Tag != "" {
		tag, _ := json.Marshal([]string{string(f.Tag)})
		q = q.Where(sq.Expr("doc->'dietaryTags' @> ?::jsonb", string(tag)))
	}
	if f.MinScore != nil {
		q = q.Where(sq.GtOrEq{"health_score": *f.MinScore})
	}
	if f.Available != nil {
		q = q.Where(sq.Eq{"is_available": *f.Available})
	}
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	if f.Offset > 0 {
		q = q.Offset(uint64(f.Offset))
	}

	return r.query(ctx, q)
}

func (r *PostgresRepository) query(ctx context.Context, q sq.SelectBuilder) ([]*Dish, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build dish query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select dishes: %w", err)
	}
	defer rows.Close()

	out := []*Dish{}
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan dish: %w", err)
		}
		d, err := decode(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Update(ctx context.Context, d *Dish) error {
	if !db.ValidID(d.MenuID) {
		return apperror.ValidationFailed("menuId", "menuId must be a valid id")
	}

	next := *d
	next.Version = d.Version + 1
	next.UpdatedAt = time.Now().UTC()

	doc, err := json.Marshal(&next)
	if err != nil {
		return fmt.Errorf("encode dish: %w", err)
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE dishes
		SET menu_id = $1, category = $2, health_score = $3, is_available = $4,
		    version = $5, doc = $6, updated_at = $7
		WHERE id = $8 AND version = $9
	`, next.MenuID, next.Category, next.HealthScore, next.IsAvailable,
		next.Version, doc, next.UpdatedAt, d.ID, d.Version)
	if err != nil {
		return fmt.Errorf("update dish: %w", err)
	}

	if tag.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, d.ID); err != nil {
			return err
		}
		return apperror.ErrStale
	}

	d.Version, d.UpdatedAt = next.Version, next.UpdatedAt
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if !db.ValidID(id) {
		return apperror.NotFound("dish", id)
	}

	tag, err := r.db.Exec(ctx, `DELETE FROM dishes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete dish: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("dish", id)
	}
	return nil
}

func decode(doc []byte) (*Dish, error) {
	d := &Dish{}
	if err := json.Unmarshal(doc, d); err != nil {
		return nil, fmt.Errorf("decode dish: %w", err)
	}
	return d, nil
}
