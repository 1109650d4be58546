package dish

import (
	"testing"
	"time"

	"menuwise/internal/apperror"
	"menuwise/internal/health"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	d := New()
	assert.Equal(t, "USD", d.Currency)
	assert.Equal(t, SpiceMild, d.SpiceLevel)
	assert.Equal(t, 50, d.HealthScore)
	assert.True(t, d.IsAvailable)
}

func TestNormalizeAndValidate(t *testing.T) {
	d := New()
	d.Name = "  Dal  "
	d.MenuID = "m1"
	d.Category = CategoryMainCourse
	d.Currency = "inr"
	d.Allergens = []string{"dairy", " dairy", ""}
	d.DietaryTags = []health.DietaryTag{health.TagVegan, health.TagVegan}

	d.Normalize()
	require.NoError(t, d.Validate())
	assert.Equal(t, "Dal", d.Name)
	assert.Equal(t, "INR", d.Currency)
	assert.Equal(t, []string{"dairy"}, d.Allergens)
	assert.Equal(t, []health.DietaryTag{health.TagVegan}, d.DietaryTags)
	assert.Equal(t, []Rating{}, d.Ratings)
}

func TestValidateFields(t *testing.T) {
	base := func() *Dish {
		d := New()
		d.Name, d.MenuID, d.Category = "Soup", "m1", CategorySoup
		return d
	}

	tests := []struct {
		name  string
		edit  func(d *Dish)
		field string
	}{
		{"missing name", func(d *Dish) { d.Name = "" }, "name"},
		{"missing menu", func(d *Dish) { d.MenuID = "" }, "menuId"},
		{"negative price", func(d *Dish) { d.Price = -1 }, "price"},
		{"unknown category", func(d *Dish) { d.Category = "brunch" }, "category"},
		{"unknown spice", func(d *Dish) { d.SpiceLevel = "nuclear" }, "spiceLevel"},
		{"negative prep time", func(d *Dish) { d.PreparationTime = -5 }, "preparationTime"},
		{"unnamed ingredient", func(d *Dish) { d.Ingredients = []Ingredient{{}} }, "ingredients[0].name"},
		{"bad ingredient nutrition", func(d *Dish) {
			d.Ingredients = []Ingredient{{Name: "salt", NutritionalValue: health.Nutrition{Sodium: -3}}}
		}, "ingredients[0].nutritionalInfo.sodium"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := base()
			tt.edit(d)
			err := d.Validate()
			assert.ErrorIs(t, err, apperror.ErrValidation)
			assert.Equal(t, tt.field, apperror.Field(err))
		})
	}
}

func TestRescore(t *testing.T) {
	d := New()
	d.NutritionalInfo = health.Nutrition{Protein: 25, Fiber: 6}
	d.DietaryTags = []health.DietaryTag{health.TagVegan}
	d.CookingMethod = health.MethodGrilled

	require.NoError(t, d.Rescore())
	assert.Equal(t, 90, d.HealthScore)

	d.CookingMethod = "deep_fried"
	assert.ErrorIs(t, d.Rescore(), apperror.ErrValidation)
	assert.Equal(t, 90, d.HealthScore, "a failed rescore leaves the score alone")
}

func TestAddRatingAndTasteProfile(t *testing.T) {
	d := New()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	require.NoError(t, d.AddRating("u1", 5, "great", health.TasteSpicy, now))
	require.NoError(t, d.AddRating("u1", 4, "", health.TasteSpicy, now))
	require.NoError(t, d.AddRating("u2", 2, "", health.TasteSalty, now))

	assert.Len(t, d.Ratings, 3, "the same user may rate again")
	assert.Equal(t, 3.7, d.AverageRating)
	assert.Equal(t, now, d.Ratings[0].CreatedAt)

	profile := d.TasteProfile()
	assert.Equal(t, map[health.Taste]int{health.TasteSpicy: 2, health.TasteSalty: 1}, profile)
	_, hasSweet := profile[health.TasteSweet]
	assert.False(t, hasSweet)

	total := 0
	for _, n := range profile {
		total += n
	}
	assert.Equal(t, len(d.Ratings), total)
}

func TestAddRatingValidation(t *testing.T) {
	d := New()
	now := time.Now()

	assert.ErrorIs(t, d.AddRating("u1", 0, "", health.TasteSweet, now), apperror.ErrValidation)
	assert.ErrorIs(t, d.AddRating("u1", 6, "", health.TasteSweet, now), apperror.ErrValidation)
	assert.ErrorIs(t, d.AddRating("u1", 3, "", "crunchy", now), apperror.ErrValidation)
	assert.ErrorIs(t, d.AddRating("", 3, "", health.TasteSweet, now), apperror.ErrValidation)

	assert.Empty(t, d.Ratings)
	assert.Equal(t, 0.0, d.AverageRating)
	assert.Empty(t, d.TasteProfile())
}

func TestAllAllergensMergesIngredients(t *testing.T) {
	d := New()
	d.Allergens = []string{"gluten"}
	d.Ingredients = []Ingredient{
		{Name: "paneer", Allergens: []string{"dairy"}},
		{Name: "naan", Allergens: []string{"gluten", "dairy"}},
	}

	assert.Equal(t, []string{"gluten", "dairy"}, d.AllAllergens())
}
