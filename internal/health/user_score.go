package health

import (
	"math"

	"menuwise/internal/apperror"
)

const (
	DefaultUserScore = 50

	// EMA weights: how much of the previous score is kept per observation.
	emaKeep    = 0.9
	emaObserve = 0.1

	MinRating = 1
	MaxRating = 5
)

// RatingToScore rescales a 1..5 dish rating onto the 0..100 health-score
// axis so it can be blended into a user's rolling score.
func RatingToScore(rating float64) (float64, error) {
	if !finite(rating) || rating < MinRating || rating > MaxRating {
		return 0, apperror.ValidationFailed("dishRating", "dish rating must be between 1 and 5")
	}
	return rating / MaxRating * 100, nil
}

// BlendHealthScore folds one observation on the 0..100 scale into the
// current score with a 90/10 exponential moving average.
func BlendHealthScore(current int, observation float64) (int, error) {
	if current < MinScore || current > MaxScore {
		return 0, apperror.ValidationFailed("healthScore", "current health score must be between 0 and 100")
	}
	if !finite(observation) || observation < MinScore || observation > MaxScore {
		return 0, apperror.ValidationFailed("observation", "observation must be between 0 and 100")
	}
	next := int(math.Round(float64(current)*emaKeep + observation*emaObserve))
	return clamp(next, MinScore, MaxScore), nil
}

// UpdateUserHealthScore blends a raw 1..5 dish rating into the current
// user score after rescaling it to 0..100.
func UpdateUserHealthScore(current int, rating float64) (int, error) {
	observation, err := RatingToScore(rating)
	if err != nil {
		return 0, err
	}
	return BlendHealthScore(current, observation)
}
