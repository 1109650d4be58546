package user

import (
	"testing"
	"time"

	"menuwise/internal/apperror"
	"menuwise/internal/health"

	"github.com/stretchr/testify/assert"
)

func validUser() *User {
	return &User{
		Name:          "Sam Rivera",
		Email:         "sam@example.com",
		Password:      "$2a$10$hash",
		Age:           28,
		Gender:        health.GenderMale,
		Weight:        70,
		Height:        175,
		ActivityLevel: health.ActivityModerate,
	}
}

func TestNormalize(t *testing.T) {
	u := validUser()
	u.Name = "  Sam Rivera "
	u.Email = " Sam@Example.COM "
	u.ActivityLevel = ""
	u.Allergies = []string{" peanuts", "peanuts", "", "shellfish"}

	u.Normalize()

	assert.Equal(t, "Sam Rivera", u.Name)
	assert.Equal(t, "sam@example.com", u.Email)
	assert.Equal(t, health.ActivityModerate, u.ActivityLevel)
	assert.Equal(t, []string{"peanuts", "shellfish"}, u.Allergies)
	assert.Equal(t, []string{}, u.MedicalConditions)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(u *User)
		field string
	}{
		{"short name", func(u *User) { u.Name = "S" }, "name"},
		{"bad email", func(u *User) { u.Email = "sam.example.com" }, "email"},
		{"age zero", func(u *User) { u.Age = 0 }, "age"},
		{"age too high", func(u *User) { u.Age = 121 }, "age"},
		{"unknown gender", func(u *User) { u.Gender = "robot" }, "gender"},
		{"weight below one", func(u *User) { u.Weight = 0.5 }, "weight"},
		{"height below one", func(u *User) { u.Height = 0 }, "height"},
		{"unknown activity", func(u *User) { u.ActivityLevel = "couch" }, "activityLevel"},
	}

	assert.NoError(t, validUser().Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := validUser()
			tt.edit(u)
			err := u.Validate()
			assert.ErrorIs(t, err, apperror.ErrValidation)
			assert.Equal(t, tt.field, apperror.Field(err))
		})
	}
}

func TestRefreshCalorieGoal(t *testing.T) {
	u := validUser()
	u.RefreshCalorieGoal()
	assert.Equal(t, 2571, u.DailyCalorieGoal)

	u.ActivityLevel = health.ActivityLight
	u.RefreshCalorieGoal()
	assert.Equal(t, 2281, u.DailyCalorieGoal)
}

func TestRecordActivityStreak(t *testing.T) {
	day1 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	u := validUser()

	u.RecordActivity(day1)
	assert.Equal(t, 1, u.Streak)

	u.RecordActivity(day1.Add(5 * time.Hour))
	assert.Equal(t, 1, u.Streak, "same day does not extend the streak")

	u.RecordActivity(day1.AddDate(0, 0, 1))
	assert.Equal(t, 2, u.Streak)

	u.RecordActivity(day1.AddDate(0, 0, 2).Add(14 * time.Hour))
	assert.Equal(t, 3, u.Streak)

	u.RecordActivity(day1.AddDate(0, 0, 5))
	assert.Equal(t, 1, u.Streak, "a missed day resets the streak")
	assert.Equal(t, day1.AddDate(0, 0, 5), *u.LastActiveDate)
}

func TestLogCaloriesResetsDaily(t *testing.T) {
	u := validUser()
	u.RefreshCalorieGoal()
	morning := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	assert.NoError(t, u.LogCalories(500, morning))
	assert.NoError(t, u.LogCalories(700, morning.Add(4*time.Hour)))
	assert.Equal(t, 1200, u.ConsumedCaloriesToday)
	assert.Equal(t, 2571-1200, u.RemainingCalories())

	assert.NoError(t, u.LogCalories(300, morning.AddDate(0, 0, 1)))
	assert.Equal(t, 300, u.ConsumedCaloriesToday)
	assert.Equal(t, "2026-03-02", u.ConsumedOn)

	assert.ErrorIs(t, u.LogCalories(-1, morning), apperror.ErrValidation)
}
