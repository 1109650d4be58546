package dish

import (
	"context"

	"menuwise/internal/health"
)

// Filter narrows List. Zero values mean "any".
type Filter struct {
	MenuID    string
	Category  Category
	Tag       health.DietaryTag
	MinScore  *int
	Available *bool
	Limit     int
	Offset    int
}

// Repository defines the data-access contract.
// Update is a compare-and-swap on Version: it fails with apperror.ErrStale
// when the stored version differs, and bumps d.Version on success.
type Repository interface {
	Create(ctx context.Context, d *Dish) error
	GetByID(ctx context.Context, id string) (*Dish, error)
	// GetByIDs returns the dishes that exist, in the order of ids.
	GetByIDs(ctx context.Context, ids []string) ([]*Dish, error)
	List(ctx context.Context, f Filter) ([]*Dish, error)
	Update(ctx context.Context, d *Dish) error
	Delete(ctx context.Context, id string) error
}
