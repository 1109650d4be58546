package dish

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"menuwise/internal/apperror"
	"menuwise/internal/db"
	"menuwise/internal/health"
	"menuwise/internal/realtime"
)

// ProfileLookup resolves the health profile a suitability check runs against.
type ProfileLookup interface {
	HealthProfile(ctx context.Context, userID string) (health.Profile, error)
}

// MenuOwners resolves the uploader of a menu. Only that user may create,
// edit or delete the menu's dishes.
type MenuOwners interface {
	MenuOwner(ctx context.Context, menuID string) (string, error)
}

type Service struct {
	repo     Repository
	profiles ProfileLookup
	owners   MenuOwners
	events   realtime.Publisher
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(repo Repository, profiles ProfileLookup, owners MenuOwners, events realtime.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		profiles: profiles,
		owners:   owners,
		events:   realtime.OrDiscard(events),
		logger:   logger,
		now:      time.Now,
	}
}

// Input carries the writable dish fields. On update, nil fields keep their
// stored value.
type Input struct {
	Name            *string               `json:"name" yaml:"name"`
	Description     *string               `json:"description" yaml:"description"`
	Price           *float64              `json:"price" yaml:"price"`
	Currency        *string               `json:"currency" yaml:"currency"`
	MenuID          *string               `json:"menuId" yaml:"menuId"`
	Category        *Category             `json:"category" yaml:"category"`
	Ingredients     []Ingredient          `json:"ingredients" yaml:"ingredients"`
	NutritionalInfo *health.Nutrition     `json:"nutritionalInfo" yaml:"nutritionalInfo"`
	Allergens       []string              `json:"allergens" yaml:"allergens"`
	DietaryTags     []health.DietaryTag   `json:"dietaryTags" yaml:"dietaryTags"`
	SpiceLevel      *SpiceLevel           `json:"spiceLevel" yaml:"spiceLevel"`
	CookingMethod   *health.CookingMethod `json:"cookingMethod" yaml:"cookingMethod"`
	ImageURL        *string               `json:"imageUrl" yaml:"imageUrl"`
	IsAvailable     *bool                 `json:"isAvailable" yaml:"isAvailable"`
	PreparationTime *int                  `json:"preparationTime" yaml:"preparationTime"`
}

func (in Input) apply(d *Dish) {
	if in.Name != nil {
		d.Name = *in.Name
	}
	if in.Description != nil {
		d.Description = *in.Description
	}
	if in.Price != nil {
		d.Price = *in.Price
	}
	if in.Currency != nil {
		d.Currency = *in.Currency
	}
	if in.MenuID != nil {
		d.MenuID = *in.MenuID
	}
	if in.Category != nil {
		d.Category = *in.Category
	}
	if in.Ingredients != nil {
		d.Ingredients = in.Ingredients
	}
	if in.NutritionalInfo != nil {
		d.NutritionalInfo = *in.NutritionalInfo
	}
	if in.Allergens != nil {
		d.Allergens = in.Allergens
	}
	if in.DietaryTags != nil {
		d.DietaryTags = in.DietaryTags
	}
	if in.SpiceLevel != nil {
		d.SpiceLevel = *in.SpiceLevel
	}
	if in.CookingMethod != nil {
		d.CookingMethod = *in.CookingMethod
	}
	if in.ImageURL != nil {
		d.ImageURL = *in.ImageURL
	}
	if in.IsAvailable != nil {
		d.IsAvailable = *in.IsAvailable
	}
	if in.PreparationTime != nil {
		d.PreparationTime = *in.PreparationTime
	}
}

type RateInput struct {
	Rating int          `json:"rating"`
	Review string       `json:"review"`
	Taste  health.Taste `json:"taste"`
}

// Suitability is a dish assessed against one user's health profile.
type Suitability struct {
	DishID         string                `json:"dishId"`
	HealthScore    int                   `json:"healthScore"`
	Recommendation health.Recommendation `json:"recommendation"`
	Suitable       bool                  `json:"suitable"`
	Warnings       []health.Warning      `json:"warnings"`
	Adjustments    []health.Adjustment   `json:"adjustments"`
}

// prepare normalizes, validates and scores d. It is the last step before
// every persist.
func prepare(d *Dish) error {
	d.Normalize()
	if err := d.Validate(); err != nil {
		return err
	}
	return d.Rescore()
}

func (s *Service) authorize(ctx context.Context, menuID, userID string) error {
	owner, err := s.owners.MenuOwner(ctx, menuID)
	if err != nil {
		return err
	}
	if owner != userID {
		return apperror.Forbidden("only the menu's uploader can change its dishes")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, userID string, in Input) (*Dish, error) {
	d := New()
	in.apply(d)
	if err := prepare(d); err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, d.MenuID, userID); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}

	s.logger.Info("dish created",
		slog.String("dish_id", d.ID),
		slog.String("menu_id", d.MenuID),
		slog.Int("health_score", d.HealthScore),
	)
	return d, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Dish, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetMany(ctx context.Context, ids []string) ([]*Dish, error) {
	return s.repo.GetByIDs(ctx, ids)
}

func (s *Service) List(ctx context.Context, f Filter) ([]*Dish, error) {
	return s.repo.List(ctx, f)
}

// Update applies a partial change and rescores the dish. Menus that list
// the dish keep their stored average until they are recalculated. A dish
// never moves to another menu.
func (s *Service) Update(ctx context.Context, id, userID string, in Input) (*Dish, error) {
	var updated *Dish
	err := db.RetryOptimistic(ctx, "dish", id, func(ctx context.Context) error {
		d, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if in.MenuID != nil && strings.TrimSpace(*in.MenuID) != d.MenuID {
			return apperror.ValidationFailed("menuId", "a dish cannot move to another menu")
		}
		if err := s.authorize(ctx, d.MenuID, userID); err != nil {
			return err
		}

		in.apply(d)
		if err := prepare(d); err != nil {
			return err
		}

		if err := s.repo.Update(ctx, d); err != nil {
			return err
		}
		updated = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(realtime.DishTopic(id), realtime.EventDishScored, map[string]any{
		"healthScore":    updated.HealthScore,
		"recommendation": health.Recommend(updated.HealthScore),
	})
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id, userID string) error {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, d.MenuID, userID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("dish deleted", slog.String("dish_id", id))
	return nil
}

// Rate appends a rating by userID. Concurrent raters are serialized by the
// version check, so no rating is lost.
func (s *Service) Rate(ctx context.Context, id, userID string, in RateInput) (*Dish, error) {
	var updated *Dish
	err := db.RetryOptimistic(ctx, "dish", id, func(ctx context.Context) error {
		d, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if err := d.AddRating(userID, in.Rating, in.Review, in.Taste, s.now()); err != nil {
			return err
		}

		if err := s.repo.Update(ctx, d); err != nil {
			return err
		}
		updated = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(realtime.DishTopic(id), realtime.EventDishRated, map[string]any{
		"averageRating": updated.AverageRating,
		"ratings":       len(updated.Ratings),
	})
	return updated, nil
}

func (s *Service) TasteProfile(ctx context.Context, id string) (map[health.Taste]int, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return d.TasteProfile(), nil
}

// Suitability checks a dish against the allergies, dietary preferences and
// medical conditions of userID.
func (s *Service) Suitability(ctx context.Context, id, userID string) (*Suitability, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	profile, err := s.profiles.HealthProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	breakdown, err := health.Explain(d.NutritionalInfo, d.DietaryTags, d.CookingMethod)
	if err != nil {
		return nil, err
	}

	warnings := health.Assess(profile, d.Facts())
	suitable := true
	for _, w := range warnings {
		if w.Severity == health.SeverityHigh {
			suitable = false
			break
		}
	}

	return &Suitability{
		DishID:         d.ID,
		HealthScore:    breakdown.Score,
		Recommendation: breakdown.Recommendation,
		Suitable:       suitable,
		Warnings:       warnings,
		Adjustments:    breakdown.Adjustments,
	}, nil
}
