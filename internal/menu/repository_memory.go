package menu

import (
	"context"
	"sort"
	"sync"
	"time"

	"menuwise/internal/apperror"

	"github.com/google/uuid"
)

type InMemoryRepository struct {
	mu    sync.RWMutex
	menus map[string]*Menu
	order []string
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{menus: make(map[string]*Menu)}
}

func (r *InMemoryRepository) Create(ctx context.Context, m *Menu) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if _, exists := r.menus[m.ID]; exists {
		return apperror.Duplicate("id", "menu already exists")
	}
	now := time.Now().UTC()
	m.CreatedAt, m.UpdatedAt = now, now
	m.Version = 1

	r.menus[m.ID] = clone(m)
	r.order = append(r.order, m.ID)
	return nil
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Menu, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.menus[id]
	if !ok {
		return nil, apperror.NotFound("menu", id)
	}
	return clone(m), nil
}

func (r *InMemoryRepository) List(ctx context.Context, f ListFilter) ([]*Menu, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*Menu{}
	skipped := 0
	for _, id := range r.order {
		m := r.menus[id]
		if !f.matches(m) {
			continue
		}
		if skipped < f.Offset {
			skipped++
			continue
		}
		out = append(out, clone(m))
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

func (f ListFilter) matches(m *Menu) bool {
	if f.UploadedBy != "" && m.UploadedBy != f.UploadedBy {
		return false
	}
	if f.PublicOnly && !m.IsPublic {
		return false
	}
	if f.Tag != "" {
		for _, t := range m.Tags {
			if t == f.Tag {
				return true
			}
		}
		return false
	}
	return true
}

func (r *InMemoryRepository) Update(ctx context.Context, m *Menu) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.menus[m.ID]
	if !ok {
		return apperror.NotFound("menu", m.ID)
	}
	if stored.Version != m.Version {
		return apperror.ErrStale
	}

	m.Version++
	m.UpdatedAt = time.Now().UTC()
	r.menus[m.ID] = clone(m)
	return nil
}

func (r *InMemoryRepository) Nearby(ctx context.Context, lng, lat, radius float64, limit int) ([]*Menu, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	type hit struct {
		menu     *Menu
		distance float64
	}
	var hits []hit
	for _, id := range r.order {
		m := r.menus[id]
		d := DistanceMeters(lng, lat, m.Location.Lng(), m.Location.Lat())
		if d <= radius {
			hits = append(hits, hit{clone(m), d})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].distance < hits[j].distance })

	out := []*Menu{}
	for _, h := range hits {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, h.menu)
	}
	return out, nil
}

func clone(m *Menu) *Menu {
	c := *m
	c.Dishes = append(make([]string, 0, len(m.Dishes)), m.Dishes...)
	c.Tags = append(make([]string, 0, len(m.Tags)), m.Tags...)
	c.Location.Coordinates = append([]float64(nil), m.Location.Coordinates...)
	return &c
}
