package health

import (
	"fmt"
	"sort"
	"strings"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityCaution Severity = "caution"
	SeverityHigh    Severity = "high"
)

// Warning is a structured finding about a dish for one user profile.
type Warning struct {
	Code     string   `json:"code"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Metric   string   `json:"metric,omitempty"`
	Value    float64  `json:"value,omitempty"`
	Limit    float64  `json:"limit,omitempty"`
}

// Profile is what the suitability check needs to know about a user.
type Profile struct {
	Allergies          []string
	DietaryPreferences []string
	MedicalConditions  []string
}

// DishFacts is what the suitability check needs to know about a dish.
// Allergens should include both dish-level and ingredient-level entries.
type DishFacts struct {
	Name        string
	Allergens   []string
	DietaryTags []DietaryTag
	Nutrition   Nutrition
}

type conditionLimit struct {
	condition string
	metric    string
	limit     float64
	severity  Severity
	value     func(n Nutrition) float64
}

var conditionLimits = []conditionLimit{
	{"diabetes", "sugar", 20, SeverityHigh, func(n Nutrition) float64 { return n.Sugar }},
	{"diabetes", "carbs", 75, SeverityCaution, func(n Nutrition) float64 { return n.Carbs }},
	{"hypertension", "sodium", 1000, SeverityHigh, func(n Nutrition) float64 { return n.Sodium }},
	{"high_cholesterol", "cholesterol", 300, SeverityHigh, func(n Nutrition) float64 { return n.Cholesterol }},
	{"high_cholesterol", "saturatedFat", 10, SeverityCaution, func(n Nutrition) float64 { return n.SaturatedFat }},
	{"heart_disease", "transFat", 0, SeverityHigh, func(n Nutrition) float64 { return n.TransFat }},
	{"heart_disease", "sodium", 1000, SeverityCaution, func(n Nutrition) float64 { return n.Sodium }},
	{"obesity", "calories", 800, SeverityCaution, func(n Nutrition) float64 { return n.Calories }},
}

// Assess checks a dish against a user's allergies, dietary preferences and
// medical conditions. Matching is case-insensitive; an empty result means
// nothing was flagged.
func Assess(p Profile, d DishFacts) []Warning {
	warnings := []Warning{}

	allergens := normalizedSet(d.Allergens)
	for _, allergy := range normalizedList(p.Allergies) {
		if _, ok := allergens[allergy]; ok {
			warnings = append(warnings, Warning{
				Code:     "allergen",
				Severity: SeverityHigh,
				Message:  fmt.Sprintf("%s contains %s, which is listed in your allergies", d.Name, allergy),
			})
		}
	}

	for _, pref := range normalizedList(p.DietaryPreferences) {
		tag := DietaryTag(pref)
		if !tag.Valid() {
			continue
		}
		if !hasTag(d.DietaryTags, tag) {
			warnings = append(warnings, Warning{
				Code:     "dietary_preference",
				Severity: SeverityCaution,
				Message:  fmt.Sprintf("%s is not marked %s", d.Name, strings.ReplaceAll(pref, "_", " ")),
			})
		}
	}

	conditions := normalizedSet(p.MedicalConditions)
	for _, cl := range conditionLimits {
		if _, ok := conditions[cl.condition]; !ok {
			continue
		}
		v := cl.value(d.Nutrition)
		if v > cl.limit {
			warnings = append(warnings, Warning{
				Code:     "condition_" + cl.condition,
				Severity: cl.severity,
				Message:  fmt.Sprintf("%s is above the %s limit for %s", cl.metric, strings.ReplaceAll(cl.condition, "_", " "), d.Name),
				Metric:   cl.metric,
				Value:    v,
				Limit:    cl.limit,
			})
		}
	}

	return warnings
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func normalizedSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		if n := normalize(v); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}

func normalizedList(values []string) []string {
	set := normalizedSet(values)
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
