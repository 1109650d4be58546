package dish

import (
	"context"
	"sync"
	"time"

	"menuwise/internal/apperror"

	"github.com/google/uuid"
)

type InMemoryRepository struct {
	mu     sync.RWMutex
	dishes map[string]*Dish
	order  []string
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{dishes: make(map[string]*Dish)}
}

func (r *InMemoryRepository) Create(ctx context.Context, d *Dish) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if _, exists := r.dishes[d.ID]; exists {
		return apperror.Duplicate("id", "dish already exists")
	}
	now := time.Now().UTC()
	d.CreatedAt, d.UpdatedAt = now, now
	d.Version = 1

	r.dishes[d.ID] = clone(d)
	r.order = append(r.order, d.ID)
	return nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Dish, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.dishes[id]
	if !ok {
		return nil, apperror.NotFound("dish", id)
	}
	return clone(d), nil
}

func (r *InMemoryRepository) GetByIDs(ctx context.Context, ids []string) ([]*Dish, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Dish, 0, len(ids))
	for _, id := range ids {
		if d, ok := r.dishes[id]; ok {
			out = append(out, clone(d))
		}
	}
	return out, nil
}

func (r *InMemoryRepository) List(ctx context.Context, f Filter) ([]*Dish, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*Dish{}
	skipped := 0
	for _, id := range r.order {
		d := r.dishes[id]
		if !f.matches(d) {
			continue
		}
		if skipped < f.Offset {
			skipped++
			continue
		}
		out = append(out, clone(d))
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

func (f Filter) matches(d *Dish) bool {
	if f.MenuID != "" && d.MenuID != f.MenuID {
		return false
	}
	if f.Category != "" && d.Category != f.Category {
		return false
	}
	if f.Tag != "" {
		found := false
		for _, t := range d.DietaryTags {
			if t == f.Tag {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.MinScore != nil && d.HealthScore < *f.MinScore {
		return false
	}
	if f.Available != nil && d.IsAvailable != *f.Available {
		return false
	}
	return true
}

func (r *InMemoryRepository) Update(ctx context.Context, d *Dish) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.dishes[d.ID]
	if !ok {
		return apperror.NotFound("dish", d.ID)
	}
	if stored.Version != d.Version {
		return apperror.ErrStale
	}

	d.Version++
	d.UpdatedAt = time.Now().UTC()
	r.dishes[d.ID] = clone(d)
	return nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.dishes[id]; !ok {
		return apperror.NotFound("dish", id)
	}
	delete(r.dishes, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func clone(d *Dish) *Dish {
	c := *d
	c.Allergens = copyOf(d.Allergens)
	c.DietaryTags = copyOf(d.DietaryTags)
	c.Ratings = copyOf(d.Ratings)
	c.Ingredients = copyOf(d.Ingredients)
	for i := range c.Ingredients {
		c.Ingredients[i].Allergens = copyOf(c.Ingredients[i].Allergens)
	}
	return &c
}

func copyOf[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}
