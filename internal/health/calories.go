package health

import (
	"math"
	"strconv"

	"menuwise/internal/apperror"
)

// defaultActivityMultiplier applies when the activity level is missing or unknown.
const defaultActivityMultiplier = 1.55

var activityMultipliers = map[ActivityLevel]float64{
	ActivitySedentary:   1.2,
	ActivityLight:       1.375,
	ActivityModerate:    1.55,
	ActivityVeryActive:  1.725,
	ActivityExtraActive: 1.9,
}

// Biometrics is the subset of a user profile the calorie goal depends on.
type Biometrics struct {
	WeightKg      float64
	HeightCm      float64
	AgeYears      int
	Gender        Gender
	ActivityLevel ActivityLevel
}

// BMR is the Mifflin-St Jeor basal metabolic rate in kcal/day. Every
// gender other than male uses the female constant.
func BMR(b Biometrics) float64 {
	bmr := 10*b.WeightKg + 6.25*b.HeightCm - 5*float64(b.AgeYears)
	if b.Gender == GenderMale {
		return bmr + 5
	}
	return bmr - 161
}

// DailyCalorieGoal scales the BMR by the activity multiplier and rounds to
// whole kcal. Inputs are expected to be validated by the caller.
func DailyCalorieGoal(b Biometrics) int {
	mult, ok := activityMultipliers[b.ActivityLevel]
	if !ok {
		mult = defaultActivityMultiplier
	}
	return int(math.Round(BMR(b) * mult))
}

// BMI returns weight / height² (height in metres) rounded to one decimal.
func BMI(weightKg, heightCm float64) (float64, error) {
	if !finite(weightKg) || weightKg <= 0 {
		return 0, apperror.ValidationFailed("weight", "weight must be a positive number")
	}
	if !finite(heightCm) || heightCm <= 0 {
		return 0, apperror.ValidationFailed("height", "height must be a positive number")
	}
	h := heightCm / 100
	return round1(weightKg / (h * h)), nil
}

// FormatBMI renders a BMI with exactly one decimal digit, e.g. "22.9".
func FormatBMI(bmi float64) string {
	return strconv.FormatFloat(bmi, 'f', 1, 64)
}

func BMICategory(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "Underweight"
	case bmi < 25.0:
		return "Normal weight"
	case bmi < 30.0:
		return "Overweight"
	case bmi < 35.0:
		return "Obesity class I"
	case bmi < 40.0:
		return "Obesity class II"
	default:
		return "Obesity class III"
	}
}
