package user

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"menuwise/internal/apperror"
	"menuwise/internal/health"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// User is the domain entity. Password holds the bcrypt hash and never
// leaves the process as JSON.
type User struct {
	ID       string `json:"id" bson:"_id"`
	Name     string `json:"name" bson:"name"`
	Email    string `json:"email" bson:"email"`
	Password string `json:"-" bson:"password"`

	Age           int                  `json:"age" bson:"age"`
	Gender        health.Gender        `json:"gender" bson:"gender"`
	Weight        float64              `json:"weight" bson:"weight"`
	Height        float64              `json:"height" bson:"height"`
	ActivityLevel health.ActivityLevel `json:"activityLevel" bson:"activityLevel"`

	MedicalConditions  []string `json:"medicalConditions" bson:"medicalConditions"`
	Allergies          []string `json:"allergies" bson:"allergies"`
	DietaryPreferences []string `json:"dietaryPreferences" bson:"dietaryPreferences"`

	DailyCalorieGoal      int    `json:"dailyCalorieGoal" bson:"dailyCalorieGoal"`
	ConsumedCaloriesToday int    `json:"consumedCaloriesToday" bson:"consumedCaloriesToday"`
	ConsumedOn            string `json:"consumedOn,omitempty" bson:"consumedOn,omitempty"`

	HealthScore    int        `json:"healthScore" bson:"healthScore"`
	Streak         int        `json:"streak" bson:"streak"`
	LastActiveDate *time.Time `json:"lastActiveDate,omitempty" bson:"lastActiveDate,omitempty"`
	ProfilePicture string     `json:"profilePicture,omitempty" bson:"profilePicture,omitempty"`

	Version   int       `json:"version" bson:"version"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

func (u *User) Biometrics() health.Biometrics {
	return health.Biometrics{
		WeightKg:      u.Weight,
		HeightCm:      u.Height,
		AgeYears:      u.Age,
		Gender:        u.Gender,
		ActivityLevel: u.ActivityLevel,
	}
}

// RefreshCalorieGoal recomputes the cached DailyCalorieGoal. Call it after
// any change to weight, height, age, gender or activity level.
func (u *User) RefreshCalorieGoal() {
	u.DailyCalorieGoal = health.DailyCalorieGoal(u.Biometrics())
}

func (u *User) HealthProfile() health.Profile {
	return health.Profile{
		Allergies:          u.Allergies,
		DietaryPreferences: u.DietaryPreferences,
		MedicalConditions:  u.MedicalConditions,
	}
}

// Normalize lower-cases the email, trims the name, fills defaults and
// cleans the profile lists.
func (u *User) Normalize() {
	u.Name = strings.TrimSpace(u.Name)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.ActivityLevel == "" {
		u.ActivityLevel = health.ActivityModerate
	}
	u.MedicalConditions = CleanList(u.MedicalConditions)
	u.Allergies = CleanList(u.Allergies)
	u.DietaryPreferences = CleanList(u.DietaryPreferences)
}

func (u *User) Validate() error {
	if n := utf8.RuneCountInString(u.Name); n < 2 || n > 50 {
		return apperror.ValidationFailed("name", "name must be between 2 and 50 characters")
	}
	if !emailPattern.MatchString(u.Email) {
		return apperror.ValidationFailed("email", "please provide a valid email")
	}
	if u.Age < 1 || u.Age > 120 {
		return apperror.ValidationFailed("age", "age must be between 1 and 120")
	}
	if !u.Gender.Valid() {
		return apperror.ValidationFailed("gender", "gender must be male, female or other")
	}
	if u.Weight < 1 {
		return apperror.ValidationFailed("weight", "weight must be at least 1 kg")
	}
	if u.Height < 1 {
		return apperror.ValidationFailed("height", "height must be at least 1 cm")
	}
	if !u.ActivityLevel.Valid() {
		return apperror.ValidationFailed("activityLevel", "unknown activity level "+string(u.ActivityLevel))
	}
	return nil
}

// RecordActivity moves LastActiveDate to now and maintains the streak of
// consecutive active days.
func (u *User) RecordActivity(now time.Time) {
	today := day(now)
	switch {
	case u.LastActiveDate == nil:
		u.Streak = 1
	case day(*u.LastActiveDate).Equal(today):
		if u.Streak == 0 {
			u.Streak = 1
		}
	case day(*u.LastActiveDate).AddDate(0, 0, 1).Equal(today):
		u.Streak++
	default:
		u.Streak = 1
	}
	t := now.UTC()
	u.LastActiveDate = &t
}

// LogCalories adds to today's consumption, starting over on a new day.
func (u *User) LogCalories(calories int, now time.Time) error {
	if calories < 0 {
		return apperror.ValidationFailed("calories", "calories must not be negative")
	}
	date := now.UTC().Format(time.DateOnly)
	if u.ConsumedOn != date {
		u.ConsumedOn = date
		u.ConsumedCaloriesToday = 0
	}
	u.ConsumedCaloriesToday += calories
	return nil
}

// RemainingCalories is the part of the daily goal not yet consumed. It can
// go negative.
func (u *User) RemainingCalories() int {
	return u.DailyCalorieGoal - u.ConsumedCaloriesToday
}

func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CleanList trims entries, drops empties and removes duplicates while
// keeping first-seen order.
func CleanList(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
