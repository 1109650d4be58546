package health

import (
	"fmt"
	"math"

	"menuwise/internal/apperror"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

type ActivityLevel string

const (
	ActivitySedentary   ActivityLevel = "sedentary"
	ActivityLight       ActivityLevel = "light"
	ActivityModerate    ActivityLevel = "moderate"
	ActivityVeryActive  ActivityLevel = "very_active"
	ActivityExtraActive ActivityLevel = "extra_active"
)

func (a ActivityLevel) Valid() bool {
	_, ok := activityMultipliers[a]
	return ok
}

type DietaryTag string

const (
	TagVegetarian DietaryTag = "vegetarian"
	TagVegan      DietaryTag = "vegan"
	TagGlutenFree DietaryTag = "gluten_free"
	TagDairyFree  DietaryTag = "dairy_free"
	TagNutFree    DietaryTag = "nut_free"
	TagLowCarb    DietaryTag = "low_carb"
	TagKeto       DietaryTag = "keto"
	TagPaleo      DietaryTag = "paleo"
	TagHalal      DietaryTag = "halal"
	TagKosher     DietaryTag = "kosher"
)

var dietaryTags = map[DietaryTag]struct{}{
	TagVegetarian: {}, TagVegan: {}, TagGlutenFree: {}, TagDairyFree: {}, TagNutFree: {},
	TagLowCarb: {}, TagKeto: {}, TagPaleo: {}, TagHalal: {}, TagKosher: {},
}

func (t DietaryTag) Valid() bool {
	_, ok := dietaryTags[t]
	return ok
}

type CookingMethod string

const (
	MethodGrilled CookingMethod = "grilled"
	MethodBaked   CookingMethod = "baked"
	MethodFried   CookingMethod = "fried"
	MethodSteamed CookingMethod = "steamed"
	MethodBoiled  CookingMethod = "boiled"
	MethodRaw     CookingMethod = "raw"
	MethodSauteed CookingMethod = "sauteed"
	MethodRoasted CookingMethod = "roasted"
	MethodOther   CookingMethod = "other"
)

var cookingMethods = map[CookingMethod]struct{}{
	MethodGrilled: {}, MethodBaked: {}, MethodFried: {}, MethodSteamed: {}, MethodBoiled: {},
	MethodRaw: {}, MethodSauteed: {}, MethodRoasted: {}, MethodOther: {},
}

// Valid reports whether m is a known cooking method. The zero value is
// valid: the method is optional on a dish.
func (m CookingMethod) Valid() bool {
	if m == "" {
		return true
	}
	_, ok := cookingMethods[m]
	return ok
}

type Taste string

const (
	TasteSweet  Taste = "sweet"
	TasteSalty  Taste = "salty"
	TasteSour   Taste = "sour"
	TasteBitter Taste = "bitter"
	TasteUmami  Taste = "umami"
	TasteSpicy  Taste = "spicy"
)

func (t Taste) Valid() bool {
	switch t {
	case TasteSweet, TasteSalty, TasteSour, TasteBitter, TasteUmami, TasteSpicy:
		return true
	}
	return false
}

// ValidateTags rejects any tag outside the closed dietary vocabulary.
func ValidateTags(tags []DietaryTag) error {
	for _, t := range tags {
		if !t.Valid() {
			return apperror.ValidationFailed("dietaryTags", fmt.Sprintf("unknown dietary tag %q", t))
		}
	}
	return nil
}

func hasTag(tags []DietaryTag, want DietaryTag) bool {
	for _, t := range tags {
		if t == want {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
