package user

import "context"

// Repository defines the data-access contract.
// Update is a compare-and-swap on Version: it fails with apperror.ErrStale
// when the stored version differs, and bumps u.Version on success.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
}
