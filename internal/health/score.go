package health

import (
	"fmt"

	"menuwise/internal/apperror"
)

const (
	BaseScore = 50
	MinScore  = 0
	MaxScore  = 100
)

// Nutrition holds per-serving macro and micro nutrient facts. Masses are
// grams except sodium and cholesterol, which are milligrams.
type Nutrition struct {
	Calories     float64 `json:"calories" bson:"calories" yaml:"calories"`
	Protein      float64 `json:"protein" bson:"protein" yaml:"protein"`
	Carbs        float64 `json:"carbs" bson:"carbs" yaml:"carbs"`
	Fat          float64 `json:"fat" bson:"fat" yaml:"fat"`
	Fiber        float64 `json:"fiber" bson:"fiber" yaml:"fiber"`
	Sugar        float64 `json:"sugar" bson:"sugar" yaml:"sugar"`
	Sodium       float64 `json:"sodium" bson:"sodium" yaml:"sodium"`
	Cholesterol  float64 `json:"cholesterol" bson:"cholesterol" yaml:"cholesterol"`
	SaturatedFat float64 `json:"saturatedFat" bson:"saturatedFat" yaml:"saturatedFat"`
	TransFat     float64 `json:"transFat" bson:"transFat" yaml:"transFat"`
}

func (n Nutrition) Validate() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"calories", n.Calories},
		{"protein", n.Protein},
		{"carbs", n.Carbs},
		{"fat", n.Fat},
		{"fiber", n.Fiber},
		{"sugar", n.Sugar},
		{"sodium", n.Sodium},
		{"cholesterol", n.Cholesterol},
		{"saturatedFat", n.SaturatedFat},
		{"transFat", n.TransFat},
	}
	for _, f := range fields {
		if !finite(f.value) || f.value < 0 {
			return apperror.ValidationFailed(
				"nutritionalInfo."+f.name,
				fmt.Sprintf("%s must be a non-negative number", f.name),
			)
		}
	}
	return nil
}

// Adjustment is one scoring rule that fired for a dish.
type Adjustment struct {
	Reason string `json:"reason" yaml:"reason"`
	Delta  int    `json:"delta" yaml:"delta"`
}

// Breakdown is a dish score together with the rules that produced it.
type Breakdown struct {
	Score          int            `json:"score" yaml:"score"`
	Recommendation Recommendation `json:"recommendation" yaml:"recommendation"`
	Adjustments    []Adjustment   `json:"adjustments" yaml:"adjustments"`
}

type scoreInput struct {
	n      Nutrition
	tags   []DietaryTag
	method CookingMethod
}

type scoringRule struct {
	reason  string
	delta   int
	applies func(in scoreInput) bool
}

// Rules are additive and independent: every rule that applies contributes.
var scoringRules = []scoringRule{
	{"high protein", +10, func(in scoreInput) bool { return in.n.Protein > 20 }},
	{"high fiber", +10, func(in scoreInput) bool { return in.n.Fiber > 5 }},
	{"vegetarian", +5, func(in scoreInput) bool { return hasTag(in.tags, TagVegetarian) }},
	{"vegan", +10, func(in scoreInput) bool { return hasTag(in.tags, TagVegan) }},
	{"gluten free", +5, func(in scoreInput) bool { return hasTag(in.tags, TagGlutenFree) }},
	{"light cooking method", +10, func(in scoreInput) bool {
		return in.method == MethodGrilled || in.method == MethodSteamed || in.method == MethodBaked
	}},
	{"high sodium", -15, func(in scoreInput) bool { return in.n.Sodium > 1000 }},
	{"high sugar", -10, func(in scoreInput) bool { return in.n.Sugar > 20 }},
	{"high saturated fat", -10, func(in scoreInput) bool { return in.n.SaturatedFat > 10 }},
	{"contains trans fat", -20, func(in scoreInput) bool { return in.n.TransFat > 0 }},
	{"fried", -15, func(in scoreInput) bool { return in.method == MethodFried }},
	{"high calorie", -10, func(in scoreInput) bool { return in.n.Calories > 800 }},
}

// ScoreDish maps nutrition facts, dietary tags and cooking method to a
// health score in [0,100]. Callers must re-run it whenever any of the
// three inputs change.
func ScoreDish(n Nutrition, tags []DietaryTag, method CookingMethod) (int, error) {
	b, err := Explain(n, tags, method)
	if err != nil {
		return 0, err
	}
	return b.Score, nil
}

// Explain is ScoreDish plus the list of rules that fired, in rule order.
func Explain(n Nutrition, tags []DietaryTag, method CookingMethod) (Breakdown, error) {
	if err := n.Validate(); err != nil {
		return Breakdown{}, err
	}
	if err := ValidateTags(tags); err != nil {
		return Breakdown{}, err
	}
	if !method.Valid() {
		return Breakdown{}, apperror.ValidationFailed("cookingMethod", fmt.Sprintf("unknown cooking method %q", method))
	}

	in := scoreInput{n: n, tags: tags, method: method}
	score := BaseScore
	adjustments := []Adjustment{}
	for _, r := range scoringRules {
		if r.applies(in) {
			score += r.delta
			adjustments = append(adjustments, Adjustment{Reason: r.reason, Delta: r.delta})
		}
	}

	score = clamp(score, MinScore, MaxScore)
	return Breakdown{
		Score:          score,
		Recommendation: Recommend(score),
		Adjustments:    adjustments,
	}, nil
}

type Recommendation string

const (
	RecommendExcellent Recommendation = "excellent"
	RecommendGood      Recommendation = "good"
	RecommendCaution   Recommendation = "caution"
	RecommendAvoid     Recommendation = "avoid"
)

func Recommend(score int) Recommendation {
	switch {
	case score >= 80:
		return RecommendExcellent
	case score >= 60:
		return RecommendGood
	case score >= 30:
		return RecommendCaution
	default:
		return RecommendAvoid
	}
}
