package menu

import "context"

// ListFilter narrows List. Zero values mean "any".
type ListFilter struct {
	UploadedBy string
	Tag        string
	PublicOnly bool
	Limit      int
	Offset     int
}

// Repository defines all database operations for menus.
// Update is a compare-and-swap on Version: it fails with apperror.ErrStale
// when the stored version differs, and bumps m.Version on success.
type Repository interface {
	Create(ctx context.Context, m *Menu) error
	GetByID(ctx context.Context, id string) (*Menu, error)
	List(ctx context.Context, f ListFilter) ([]*Menu, error)
	Update(ctx context.Context, m *Menu) error

	// Nearby returns menus within radius meters of the point, closest first.
	Nearby(ctx context.Context, lng, lat, radius float64, limit int) ([]*Menu, error)
}
