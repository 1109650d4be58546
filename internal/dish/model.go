package dish

import (
	"fmt"
	"strings"
	"time"

	"menuwise/internal/apperror"
	"menuwise/internal/health"
)

const DefaultCurrency = "USD"

type Category string

const (
	CategoryAppetizer  Category = "appetizer"
	CategoryMainCourse Category = "main_course"
	CategoryDessert    Category = "dessert"
	CategoryBeverage   Category = "beverage"
	CategorySideDish   Category = "side_dish"
	CategorySoup       Category = "soup"
	CategorySalad      Category = "salad"
	CategoryOther      Category = "other"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryAppetizer, CategoryMainCourse, CategoryDessert, CategoryBeverage,
		CategorySideDish, CategorySoup, CategorySalad, CategoryOther:
		return true
	}
	return false
}

type SpiceLevel string

const (
	SpiceMild    SpiceLevel = "mild"
	SpiceMedium  SpiceLevel = "medium"
	SpiceHot     SpiceLevel = "hot"
	SpiceVeryHot SpiceLevel = "very_hot"
)

func (s SpiceLevel) Valid() bool {
	switch s {
	case SpiceMild, SpiceMedium, SpiceHot, SpiceVeryHot:
		return true
	}
	return false
}

type Ingredient struct {
	Name             string           `json:"name" bson:"name" yaml:"name"`
	Quantity         string           `json:"quantity,omitempty" bson:"quantity,omitempty" yaml:"quantity"`
	Allergens        []string         `json:"allergens" bson:"allergens" yaml:"allergens"`
	NutritionalValue health.Nutrition `json:"nutritionalValue" bson:"nutritionalValue" yaml:"nutritionalValue"`
}

// Rating is one append-only review entry.
type Rating struct {
	UserID    string       `json:"user" bson:"user"`
	Rating    int          `json:"rating" bson:"rating"`
	Review    string       `json:"review,omitempty" bson:"review,omitempty"`
	Taste     health.Taste `json:"taste" bson:"taste"`
	CreatedAt time.Time    `json:"createdAt" bson:"createdAt"`
}

type Dish struct {
	ID          string  `json:"id" bson:"_id"`
	Name        string  `json:"name" bson:"name"`
	Description string  `json:"description,omitempty" bson:"description,omitempty"`
	Price       float64 `json:"price" bson:"price"`
	Currency    string  `json:"currency" bson:"currency"`
	MenuID      string  `json:"menuId" bson:"menuId"`

	Category        Category             `json:"category" bson:"category"`
	Ingredients     []Ingredient         `json:"ingredients" bson:"ingredients"`
	NutritionalInfo health.Nutrition     `json:"nutritionalInfo" bson:"nutritionalInfo"`
	Allergens       []string             `json:"allergens" bson:"allergens"`
	DietaryTags     []health.DietaryTag  `json:"dietaryTags" bson:"dietaryTags"`
	HealthScore     int                  `json:"healthScore" bson:"healthScore"`
	SpiceLevel      SpiceLevel           `json:"spiceLevel" bson:"spiceLevel"`
	CookingMethod   health.CookingMethod `json:"cookingMethod,omitempty" bson:"cookingMethod,omitempty"`

	Ratings       []Rating `json:"ratings" bson:"ratings"`
	AverageRating float64  `json:"averageRating" bson:"averageRating"`

	ImageURL        string `json:"imageUrl,omitempty" bson:"imageUrl,omitempty"`
	IsAvailable     bool   `json:"isAvailable" bson:"isAvailable"`
	PreparationTime int    `json:"preparationTime,omitempty" bson:"preparationTime,omitempty"`

	Version   int       `json:"version" bson:"version"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// New returns a dish with the documented defaults applied.
func New() *Dish {
	return &Dish{
		Currency:    DefaultCurrency,
		SpiceLevel:  SpiceMild,
		HealthScore: health.BaseScore,
		IsAvailable: true,
	}
}

// Normalize trims strings and removes blank or repeated list entries.
func (d *Dish) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.MenuID = strings.TrimSpace(d.MenuID)
	d.Currency = strings.ToUpper(strings.TrimSpace(d.Currency))
	if d.Currency == "" {
		d.Currency = DefaultCurrency
	}
	if d.SpiceLevel == "" {
		d.SpiceLevel = SpiceMild
	}
	d.Allergens = cleanList(d.Allergens)

	tags := make([]health.DietaryTag, 0, len(d.DietaryTags))
	seen := make(map[health.DietaryTag]struct{}, len(d.DietaryTags))
	for _, t := range d.DietaryTags {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}
	d.DietaryTags = tags

	if d.Ingredients == nil {
		d.Ingredients = []Ingredient{}
	}
	for i := range d.Ingredients {
		d.Ingredients[i].Name = strings.TrimSpace(d.Ingredients[i].Name)
		d.Ingredients[i].Allergens = cleanList(d.Ingredients[i].Allergens)
	}
	if d.Ratings == nil {
		d.Ratings = []Rating{}
	}
}

func (d *Dish) Validate() error {
	if d.Name == "" {
		return apperror.ValidationFailed("name", "dish name is required")
	}
	if d.MenuID == "" {
		return apperror.ValidationFailed("menuId", "menu is required")
	}
	if d.Price < 0 {
		return apperror.ValidationFailed("price", "price cannot be negative")
	}
	if !d.Category.Valid() {
		return apperror.ValidationFailed("category", fmt.Sprintf("unknown category %q", d.Category))
	}
	if !d.SpiceLevel.Valid() {
		return apperror.ValidationFailed("spiceLevel", fmt.Sprintf("unknown spice level %q", d.SpiceLevel))
	}
	if d.PreparationTime < 0 {
		return apperror.ValidationFailed("preparationTime", "preparation time cannot be negative")
	}
	for i, ing := range d.Ingredients {
		if ing.Name == "" {
			return apperror.ValidationFailed(fmt.Sprintf("ingredients[%d].name", i), "ingredient name is required")
		}
		if err := ing.NutritionalValue.Validate(); err != nil {
			return apperror.ValidationFailed(fmt.Sprintf("ingredients[%d].%s", i, apperror.Field(err)), apperror.Message(err))
		}
	}
	return nil
}

// Rescore recomputes HealthScore from nutrition, tags and cooking method.
// Services call it before every persist that may have changed those.
func (d *Dish) Rescore() error {
	score, err := health.ScoreDish(d.NutritionalInfo, d.DietaryTags, d.CookingMethod)
	if err != nil {
		return err
	}
	d.HealthScore = score
	return nil
}

// AddRating appends a rating and refreshes AverageRating. A user may rate
// the same dish any number of times.
func (d *Dish) AddRating(userID string, rating int, review string, taste health.Taste, now time.Time) error {
	if userID == "" {
		return apperror.ValidationFailed("user", "rating user is required")
	}
	if rating < health.MinRating || rating > health.MaxRating {
		return apperror.ValidationFailed("rating", "rating must be between 1 and 5")
	}
	if !taste.Valid() {
		return apperror.ValidationFailed("taste", fmt.Sprintf("unknown taste %q", taste))
	}

	d.Ratings = append(d.Ratings, Rating{
		UserID:    userID,
		Rating:    rating,
		Review:    strings.TrimSpace(review),
		Taste:     taste,
		CreatedAt: now.UTC(),
	})
	d.refreshAverageRating()
	return nil
}

func (d *Dish) refreshAverageRating() {
	values := make([]int, len(d.Ratings))
	for i, r := range d.Ratings {
		values[i] = r.Rating
	}
	d.AverageRating = health.AverageRating(values)
}

func (d *Dish) TasteProfile() map[health.Taste]int {
	tastes := make([]health.Taste, len(d.Ratings))
	for i, r := range d.Ratings {
		tastes[i] = r.Taste
	}
	return health.TasteProfile(tastes)
}

// AllAllergens merges dish-level and ingredient-level allergens.
func (d *Dish) AllAllergens() []string {
	all := append([]string(nil), d.Allergens...)
	for _, ing := range d.Ingredients {
		all = append(all, ing.Allergens...)
	}
	return cleanList(all)
}

func (d *Dish) Facts() health.DishFacts {
	return health.DishFacts{
		Name:        d.Name,
		Allergens:   d.AllAllergens(),
		DietaryTags: d.DietaryTags,
		Nutrition:   d.NutritionalInfo,
	}
}

func cleanList(values []string) []string {
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
