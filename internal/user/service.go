package user

import (
	"context"
	"log/slog"
	"time"

	"menuwise/internal/apperror"
	"menuwise/internal/db"
	"menuwise/internal/health"
	"menuwise/internal/realtime"
)

type Service struct {
	repo   Repository
	events realtime.Publisher
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo Repository, events realtime.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		events: realtime.OrDiscard(events),
		logger: logger,
		now:    time.Now,
	}
}

// UpdateInput is a partial profile update; nil fields are left alone.
type UpdateInput struct {
	Name               *string               `json:"name"`
	Age                *int                  `json:"age"`
	Gender             *health.Gender        `json:"gender"`
	Weight             *float64              `json:"weight"`
	Height             *float64              `json:"height"`
	ActivityLevel      *health.ActivityLevel `json:"activityLevel"`
	MedicalConditions  []string              `json:"medicalConditions"`
	Allergies          []string              `json:"allergies"`
	DietaryPreferences []string              `json:"dietaryPreferences"`
	ProfilePicture     *string               `json:"profilePicture"`
}

func (in UpdateInput) apply(u *User) {
	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.Age != nil {
		u.Age = *in.Age
	}
	if in.Gender != nil {
		u.Gender = *in.Gender
	}
	if in.Weight != nil {
		u.Weight = *in.Weight
	}
	if in.Height != nil {
		u.Height = *in.Height
	}
	if in.ActivityLevel != nil {
		u.ActivityLevel = *in.ActivityLevel
	}
	if in.MedicalConditions != nil {
		u.MedicalConditions = in.MedicalConditions
	}
	if in.Allergies != nil {
		u.Allergies = in.Allergies
	}
	if in.DietaryPreferences != nil {
		u.DietaryPreferences = in.DietaryPreferences
	}
	if in.ProfilePicture != nil {
		u.ProfilePicture = *in.ProfilePicture
	}
}

type BMIResult struct {
	BMI      string `json:"bmi"`
	Category string `json:"category"`
}

func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// Update applies a partial profile change and refreshes the calorie goal
// before persisting.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*User, error) {
	var updated *User
	err := db.RetryOptimistic(ctx, "user", id, func(ctx context.Context) error {
		u, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		in.apply(u)
		u.Normalize()
		if err := u.Validate(); err != nil {
			return err
		}
		u.RefreshCalorieGoal()

		if err := s.repo.Update(ctx, u); err != nil {
			return err
		}
		updated = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user profile updated", slog.String("user_id", id), slog.Int("daily_calorie_goal", updated.DailyCalorieGoal))
	return updated, nil
}

// UpdateHealth blends a 1-5 dish rating into the user's rolling health score.
func (s *Service) UpdateHealth(ctx context.Context, id string, dishRating float64) (*User, error) {
	if _, err := health.RatingToScore(dishRating); err != nil {
		return nil, err
	}

	var updated *User
	err := db.RetryOptimistic(ctx, "user", id, func(ctx context.Context) error {
		u, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		score, err := health.UpdateUserHealthScore(u.HealthScore, dishRating)
		if err != nil {
			return err
		}
		u.HealthScore = score
		u.RecordActivity(s.now())

		if err := s.repo.Update(ctx, u); err != nil {
			return err
		}
		updated = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(realtime.UserTopic(id), realtime.EventUserHealth, map[string]any{"healthScore": updated.HealthScore})
	return updated, nil
}

func (s *Service) BMI(ctx context.Context, id string) (BMIResult, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return BMIResult{}, err
	}

	bmi, err := health.BMI(u.Weight, u.Height)
	if err != nil {
		return BMIResult{}, err
	}
	return BMIResult{BMI: health.FormatBMI(bmi), Category: health.BMICategory(bmi)}, nil
}

// LogConsumption records calories eaten today.
func (s *Service) LogConsumption(ctx context.Context, id string, calories int) (*User, error) {
	var updated *User
	err := db.RetryOptimistic(ctx, "user", id, func(ctx context.Context) error {
		u, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}

		now := s.now()
		if err := u.LogCalories(calories, now); err != nil {
			return err
		}
		u.RecordActivity(now)

		if err := s.repo.Update(ctx, u); err != nil {
			return err
		}
		updated = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(realtime.UserTopic(id), realtime.EventUserCalorie, map[string]any{
		"consumedCaloriesToday": updated.ConsumedCaloriesToday,
		"remainingCalories":     updated.RemainingCalories(),
	})
	return updated, nil
}

// RecordLogin updates LastActiveDate and the activity streak.
func (s *Service) RecordLogin(ctx context.Context, id string) (*User, error) {
	var updated *User
	err := db.RetryOptimistic(ctx, "user", id, func(ctx context.Context) error {
		u, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		u.RecordActivity(s.now())
		if err := s.repo.Update(ctx, u); err != nil {
			return err
		}
		updated = u
		return nil
	})
	return updated, err
}

// Register persists a new, already validated and hashed user.
func (s *Service) Register(ctx context.Context, u *User) error {
	u.Normalize()
	if err := u.Validate(); err != nil {
		return err
	}
	if u.Password == "" {
		return apperror.ValidationFailed("password", "password is required")
	}

	u.HealthScore = health.DefaultUserScore
	u.RefreshCalorieGoal()
	u.RecordActivity(s.now())

	if err := s.repo.Create(ctx, u); err != nil {
		return err
	}

	s.logger.Info("user registered", slog.String("user_id", u.ID))
	return nil
}

// HealthProfile returns the allergy, diet and condition lists of a user.
func (s *Service) HealthProfile(ctx context.Context, id string) (health.Profile, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return health.Profile{}, err
	}
	return u.HealthProfile(), nil
}

func (s *Service) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.GetByEmail(ctx, email)
}
