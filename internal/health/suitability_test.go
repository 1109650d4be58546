package health

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssessFlagsAllergens(t *testing.T) {
	warnings := Assess(
		Profile{Allergies: []string{" Peanuts "}},
		DishFacts{Name: "Satay", Allergens: []string{"peanuts", "soy"}},
	)

	require.Len(t, warnings, 1)
	assert.Equal(t, "allergen", warnings[0].Code)
	assert.Equal(t, SeverityHigh, warnings[0].Severity)
}

func TestAssessDietaryPreference(t *testing.T) {
	warnings := Assess(
		Profile{DietaryPreferences: []string{"vegan", "spicy food"}},
		DishFacts{Name: "Paneer Tikka", DietaryTags: []DietaryTag{TagVegetarian}},
	)

	require.Len(t, warnings, 1, "free-text preferences outside the tag vocabulary are ignored")
	assert.Equal(t, "dietary_preference", warnings[0].Code)
	assert.Equal(t, SeverityCaution, warnings[0].Severity)
}

func TestAssessMedicalConditions(t *testing.T) {
	warnings := Assess(
		Profile{MedicalConditions: []string{"Diabetes"}},
		DishFacts{Name: "Gulab Jamun", Nutrition: Nutrition{Sugar: 30, Carbs: 40}},
	)

	require.Len(t, warnings, 1)
	assert.Equal(t, "condition_diabetes", warnings[0].Code)
	assert.Equal(t, "sugar", warnings[0].Metric)
	assert.Equal(t, 30.0, warnings[0].Value)
	assert.Equal(t, 20.0, warnings[0].Limit)
}

func TestAssessCleanDish(t *testing.T) {
	warnings := Assess(
		Profile{Allergies: []string{"shellfish"}, MedicalConditions: []string{"hypertension"}},
		DishFacts{Name: "Idli", Nutrition: Nutrition{Sodium: 300}},
	)
	assert.Empty(t, warnings)
}
