package menu

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"menuwise/internal/apperror"
	"menuwise/internal/db"
	"menuwise/internal/dish"
	"menuwise/internal/health"
	"menuwise/internal/realtime"

	"github.com/google/uuid"
)

// Storage stores an uploaded menu image and returns its public URL.
type Storage interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

// Dishes resolves the dish references a menu holds.
type Dishes interface {
	Get(ctx context.Context, id string) (*dish.Dish, error)
	GetMany(ctx context.Context, ids []string) ([]*dish.Dish, error)
}

type Service struct {
	repo    Repository
	dishes  Dishes
	storage Storage
	events  realtime.Publisher
	logger  *slog.Logger
}

// NewService wires the menu service. storage may be nil, in which case
// uploads fail as unavailable.
func NewService(repo Repository, dishes Dishes, storage Storage, events realtime.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		dishes:  dishes,
		storage: storage,
		events:  realtime.OrDiscard(events),
		logger:  logger,
	}
}

// Owners answers which user uploaded a menu. The dish service uses it to
// limit dish writes to that user.
type Owners struct {
	repo Repository
}

func NewOwners(repo Repository) *Owners {
	return &Owners{repo: repo}
}

func (o *Owners) MenuOwner(ctx context.Context, menuID string) (string, error) {
	m, err := o.repo.GetByID(ctx, menuID)
	if err != nil {
		return "", err
	}
	return m.UploadedBy, nil
}

// PointInput is a location given as plain coordinates.
type PointInput struct {
	Lng     float64 `json:"lng" yaml:"lng"`
	Lat     float64 `json:"lat" yaml:"lat"`
	Address string  `json:"address" yaml:"address"`
}

// Input carries the writable menu fields. On update, nil fields keep
// their stored value. Dish references change only through AttachDish.
type Input struct {
	RestaurantName *string         `json:"restaurantName" yaml:"restaurantName"`
	ImageURL       *string         `json:"imageUrl" yaml:"imageUrl"`
	AssetID        *string         `json:"assetId" yaml:"assetId"`
	OCRText        *string         `json:"ocrText" yaml:"ocrText"`
	AnalysisStatus *AnalysisStatus `json:"analysisStatus" yaml:"analysisStatus"`
	Location       *PointInput     `json:"location" yaml:"location"`
	Tags           []string        `json:"tags" yaml:"tags"`
	IsPublic       *bool           `json:"isPublic" yaml:"isPublic"`
}

func (in Input) apply(m *Menu) {
	if in.RestaurantName != nil {
		m.RestaurantName = *in.RestaurantName
	}
	if in.ImageURL != nil {
		m.ImageURL = *in.ImageURL
	}
	if in.AssetID != nil {
		m.AssetID = *in.AssetID
	}
	if in.OCRText != nil {
		m.OCRText = *in.OCRText
	}
	if in.AnalysisStatus != nil {
		m.AnalysisStatus = *in.AnalysisStatus
	}
	if in.Location != nil {
		m.Location = NewPoint(in.Location.Lng, in.Location.Lat, in.Location.Address)
	}
	if in.Tags != nil {
		m.Tags = in.Tags
	}
	if in.IsPublic != nil {
		m.IsPublic = *in.IsPublic
	}
}

// UploadInput is a menu image plus the fields of the menu it creates.
type UploadInput struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
	Menu        Input
}

// MenuSummary is the recommendation breakdown of a menu's live dishes next
// to the stored average.
type MenuSummary struct {
	MenuID             string         `json:"menuId"`
	StoredHealthScore  int            `json:"storedHealthScore"`
	Summary            health.Summary `json:"summary"`
	UnresolvedDishRefs int            `json:"unresolvedDishRefs"`
}

func (s *Service) Create(ctx context.Context, uploadedBy string, in Input) (*Menu, error) {
	m := New(uploadedBy)
	in.apply(m)
	m.Normalize()
	if err := m.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}

	s.logger.Info("menu created",
		slog.String("menu_id", m.ID),
		slog.String("uploaded_by", m.UploadedBy),
	)
	return m, nil
}

// Upload stores the image first and then creates a pending menu pointing
// at it.
func (s *Service) Upload(ctx context.Context, uploadedBy string, in UploadInput) (*Menu, error) {
	if s.storage == nil {
		return nil, apperror.Unavailable("menu image storage is not configured")
	}
	if err := ValidateFileExtension(in.Filename); err != nil {
		return nil, err
	}
	if err := ValidateFileSize(in.Size); err != nil {
		return nil, err
	}
	if in.Menu.RestaurantName == nil || strings.TrimSpace(*in.Menu.RestaurantName) == "" {
		return nil, apperror.ValidationFailed("restaurantName", "restaurant name is required")
	}
	if p := in.Menu.Location; p != nil {
		if err := validateLngLat(p.Lng, p.Lat); err != nil {
			return nil, err
		}
	}

	key := fmt.Sprintf("menus/%s/%s%s", uploadedBy, uuid.NewString(), strings.ToLower(filepath.Ext(in.Filename)))
	url, err := s.storage.Upload(ctx, key, in.Body, contentTypeFor(in.Filename, in.ContentType))
	if err != nil {
		return nil, fmt.Errorf("upload menu image: %w", err)
	}

	fields := in.Menu
	fields.ImageURL = &url
	fields.AssetID = &key
	pending := StatusPending
	fields.AnalysisStatus = &pending

	m, err := s.Create(ctx, uploadedBy, fields)
	if err != nil {
		return nil, err
	}
	s.logger.Info("menu image uploaded", slog.String("menu_id", m.ID), slog.String("asset_id", key))
	return m, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Menu, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]*Menu, error) {
	return s.repo.List(ctx, f)
}

// Update applies a partial change. Only the uploader may edit a menu.
func (s *Service) Update(ctx context.Context, id, userID string, in Input) (*Menu, error) {
	var updated *Menu
	err := db.RetryOptimistic(ctx, "menu", id, func(ctx context.Context) error {
		m, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if m.UploadedBy != userID {
			return apperror.Forbidden("only the uploader can edit this menu")
		}

		in.apply(m)
		m.Normalize()
		if err := m.Validate(); err != nil {
			return err
		}

		if err := s.repo.Update(ctx, m); err != nil {
			return err
		}
		updated = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// AttachDish adds a dish reference to the menu. The dish must exist and
// already belong to the menu. Attaching twice is a no-op.
func (s *Service) AttachDish(ctx context.Context, id, dishID string) (*Menu, error) {
	d, err := s.dishes.Get(ctx, dishID)
	if err != nil {
		return nil, err
	}
	if d.MenuID != id {
		return nil, apperror.ValidationFailed("dishId", "dish belongs to a different menu")
	}

	var updated *Menu
	err = db.RetryOptimistic(ctx, "menu", id, func(ctx context.Context) error {
		m, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if !m.AttachDish(dishID) {
			updated = m
			return nil
		}
		if err := s.repo.Update(ctx, m); err != nil {
			return err
		}
		updated = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Recalculate refreshes the stored average from the live scores of the
// dishes the menu references. Missing dishes are skipped.
func (s *Service) Recalculate(ctx context.Context, id string) (*Menu, error) {
	var updated *Menu
	err := db.RetryOptimistic(ctx, "menu", id, func(ctx context.Context) error {
		m, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		resolved, err := s.dishes.GetMany(ctx, m.Dishes)
		if err != nil {
			return err
		}
		m.RecalculateHealthScore(resolved)

		if err := s.repo.Update(ctx, m); err != nil {
			return err
		}
		updated = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("menu health score recalculated",
		slog.String("menu_id", id),
		slog.Int("average_health_score", updated.AverageHealthScore),
	)
	s.events.Publish(realtime.MenuTopic(id), realtime.EventMenuScore, map[string]any{
		"averageHealthScore": updated.AverageHealthScore,
	})
	return updated, nil
}

// Summary reads live dish scores without touching the stored average.
func (s *Service) Summary(ctx context.Context, id string) (*MenuSummary, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resolved, err := s.dishes.GetMany(ctx, m.Dishes)
	if err != nil {
		return nil, err
	}

	return &MenuSummary{
		MenuID:             m.ID,
		StoredHealthScore:  m.AverageHealthScore,
		Summary:            health.Summarize(scores(resolved)),
		UnresolvedDishRefs: len(m.Dishes) - len(resolved),
	}, nil
}

// Nearby finds menus within radius meters of the point. A zero radius
// means DefaultNearbyRadius.
func (s *Service) Nearby(ctx context.Context, lng, lat, radius float64, limit int) ([]*Menu, error) {
	if err := validateLngLat(lng, lat); err != nil {
		return nil, err
	}
	if radius < 0 || !finite(radius) {
		return nil, apperror.ValidationFailed("radius", "radius must be a positive number of meters")
	}
	if radius == 0 {
		radius = DefaultNearbyRadius
	}
	return s.repo.Nearby(ctx, lng, lat, radius, limit)
}
