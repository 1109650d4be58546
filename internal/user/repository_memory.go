package user

import (
	"context"
	"sync"
	"time"

	"menuwise/internal/apperror"

	"github.com/google/uuid"
)

type InMemoryRepository struct {
	mu    sync.RWMutex
	users map[string]*User
	email map[string]string
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		users: make(map[string]*User),
		email: make(map[string]string),
	}
}

func (r *InMemoryRepository) Create(ctx context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.email[u.Email]; taken {
		return apperror.Duplicate("email", "email already registered")
	}

	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	u.Version = 1

	r.users[u.ID] = clone(u)
	r.email[u.Email] = u.ID
	return nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	return clone(u), nil
}

func (r *InMemoryRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.email[email]
	if !ok {
		return nil, apperror.NotFound("user", email)
	}
	return clone(r.users[id]), nil
}

func (r *InMemoryRepository) Update(ctx context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[u.ID]
	if !ok {
		return apperror.NotFound("user", u.ID)
	}
	if stored.Version != u.Version {
		return apperror.ErrStale
	}
	if stored.Email != u.Email {
		if _, taken := r.email[u.Email]; taken {
			return apperror.Duplicate("email", "email already registered")
		}
		delete(r.email, stored.Email)
		r.email[u.Email] = u.ID
	}

	u.Version++
	u.UpdatedAt = time.Now().UTC()
	r.users[u.ID] = clone(u)
	return nil
}

func clone(u *User) *User {
	c := *u
	c.MedicalConditions = copyList(u.MedicalConditions)
	c.Allergies = copyList(u.Allergies)
	c.DietaryPreferences = copyList(u.DietaryPreferences)
	if u.LastActiveDate != nil {
		t := *u.LastActiveDate
		c.LastActiveDate = &t
	}
	return &c
}

func copyList(s []string) []string {
	if s == nil {
		return nil
	}
	return append(make([]string, 0, len(s)), s...)
}
