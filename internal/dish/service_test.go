package dish

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"menuwise/internal/apperror"
	"menuwise/internal/health"
	"menuwise/internal/realtime"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profileStub map[string]health.Profile

func (p profileStub) HealthProfile(ctx context.Context, userID string) (health.Profile, error) {
	profile, ok := p[userID]
	if !ok {
		return health.Profile{}, apperror.NotFound("user", userID)
	}
	return profile, nil
}

type recorder struct {
	mu    sync.Mutex
	types []string
}

func (r *recorder) Publish(topic, eventType string, data any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types = append(r.types, eventType)
}

const (
	owner       = "owner"
	unknownMenu = "missing-menu"
)

// menuOwnedBy reports one uploader for every menu except unknownMenu.
type menuOwnedBy string

func (o menuOwnedBy) MenuOwner(ctx context.Context, menuID string) (string, error) {
	if menuID == unknownMenu {
		return "", apperror.NotFound("menu", menuID)
	}
	return string(o), nil
}

func ptr[T any](v T) *T { return &v }

func newTestService(t *testing.T) (*Service, *recorder) {
	t.Helper()
	events := &recorder{}
	profiles := profileStub{
		"allergic": {Allergies: []string{"Peanuts"}, DietaryPreferences: []string{"vegan"}},
		"diabetic": {MedicalConditions: []string{"diabetes"}},
	}
	svc := NewService(NewInMemoryRepository(), profiles, menuOwnedBy(owner), events, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return svc, events
}

func bowlInput(menuID string) Input {
	return Input{
		Name:            ptr("Grilled Tofu Bowl"),
		Price:           ptr(12.5),
		MenuID:          ptr(menuID),
		Category:        ptr(CategoryMainCourse),
		NutritionalInfo: &health.Nutrition{Calories: 520, Protein: 25, Fiber: 6, Sugar: 22},
		DietaryTags:     []health.DietaryTag{health.TagVegan},
		CookingMethod:   ptr(health.MethodGrilled),
		Ingredients: []Ingredient{
			{Name: "tofu", Allergens: []string{"soy"}},
			{Name: "satay sauce", Allergens: []string{"peanuts"}},
		},
	}
}

func TestCreateScoresBeforePersisting(t *testing.T) {
	svc, _ := newTestService(t)

	d, err := svc.Create(context.Background(), owner, bowlInput(uuid.NewString()))
	require.NoError(t, err)
	assert.Equal(t, 80, d.HealthScore)
	assert.True(t, d.IsAvailable)

	stored, err := svc.Get(context.Background(), d.ID)
	require.NoError(t, err)
	assert.Equal(t, 80, stored.HealthScore)
	assert.Equal(t, 1, stored.Version)
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService(t)

	in := bowlInput(uuid.NewString())
	in.MenuID = nil
	_, err := svc.Create(context.Background(), owner, in)
	assert.Equal(t, "menuId", apperror.Field(err))

	in = bowlInput(uuid.NewString())
	in.DietaryTags = []health.DietaryTag{"carnivore"}
	_, err = svc.Create(context.Background(), owner, in)
	assert.ErrorIs(t, err, apperror.ErrValidation)

	dishes, err := svc.List(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Empty(t, dishes)
}

func TestUpdateRescores(t *testing.T) {
	svc, events := newTestService(t)
	d, err := svc.Create(context.Background(), owner, bowlInput(uuid.NewString()))
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), d.ID, owner, Input{CookingMethod: ptr(health.MethodFried)})
	require.NoError(t, err)
	assert.Equal(t, 55, updated.HealthScore)
	assert.Equal(t, "Grilled Tofu Bowl", updated.Name)
	assert.Equal(t, 2, updated.Version)
	assert.Equal(t, []string{realtime.EventDishScored}, events.types)

	_, err = svc.Update(context.Background(), "missing", owner, Input{})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUpdateKeepsDishOnItsMenu(t *testing.T) {
	svc, events := newTestService(t)
	menuID := uuid.NewString()
	d, err := svc.Create(context.Background(), owner, bowlInput(menuID))
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), d.ID, owner, Input{MenuID: ptr(uuid.NewString())})
	assert.ErrorIs(t, err, apperror.ErrValidation)
	assert.Equal(t, "menuId", apperror.Field(err))

	stored, err := svc.Get(context.Background(), d.ID)
	require.NoError(t, err)
	assert.Equal(t, menuID, stored.MenuID)
	assert.Equal(t, 1, stored.Version)
	assert.Empty(t, events.types)

	same, err := svc.Update(context.Background(), d.ID, owner, Input{MenuID: ptr(" " + menuID + " "), Price: ptr(14.0)})
	require.NoError(t, err)
	assert.Equal(t, menuID, same.MenuID)
	assert.Equal(t, 14.0, same.Price)
}

func TestWritesRequireMenuUploader(t *testing.T) {
	svc, events := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, "intruder", bowlInput(uuid.NewString()))
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	_, err = svc.Create(ctx, owner, bowlInput(unknownMenu))
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	d, err := svc.Create(ctx, owner, bowlInput(uuid.NewString()))
	require.NoError(t, err)

	_, err = svc.Update(ctx, d.ID, "intruder", Input{CookingMethod: ptr(health.MethodFried)})
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, d.ID, "intruder"), apperror.ErrForbidden)

	stored, err := svc.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, 80, stored.HealthScore)
	assert.Equal(t, 1, stored.Version)
	assert.Empty(t, events.types)

	// Rating stays open to every user.
	_, err = svc.Rate(ctx, d.ID, "intruder", RateInput{Rating: 3, Taste: health.TasteSweet})
	assert.NoError(t, err)
}

func TestListFilters(t *testing.T) {
	svc, _ := newTestService(t)
	menuA, menuB := uuid.NewString(), uuid.NewString()

	_, err := svc.Create(context.Background(), owner, bowlInput(menuA))
	require.NoError(t, err)

	fries := Input{
		Name:            ptr("Fries"),
		MenuID:          ptr(menuB),
		Category:        ptr(CategorySideDish),
		NutritionalInfo: &health.Nutrition{Calories: 900, Sodium: 1100},
		CookingMethod:   ptr(health.MethodFried),
		IsAvailable:     ptr(false),
	}
	_, err = svc.Create(context.Background(), owner, fries)
	require.NoError(t, err)

	all, _ := svc.List(context.Background(), Filter{})
	assert.Len(t, all, 2)

	byMenu, _ := svc.List(context.Background(), Filter{MenuID: menuB})
	require.Len(t, byMenu, 1)
	assert.Equal(t, "Fries", byMenu[0].Name)

	vegan, _ := svc.List(context.Background(), Filter{Tag: health.TagVegan})
	require.Len(t, vegan, 1)
	assert.Equal(t, "Grilled Tofu Bowl", vegan[0].Name)

	healthy, _ := svc.List(context.Background(), Filter{MinScore: ptr(60)})
	assert.Len(t, healthy, 1)

	available, _ := svc.List(context.Background(), Filter{Available: ptr(false)})
	require.Len(t, available, 1)
	assert.Equal(t, 10, available[0].HealthScore)

	paged, _ := svc.List(context.Background(), Filter{Offset: 1, Limit: 5})
	require.Len(t, paged, 1)
	assert.Equal(t, "Fries", paged[0].Name)
}

func TestDeleteDoesNotCascade(t *testing.T) {
	svc, _ := newTestService(t)
	d, err := svc.Create(context.Background(), owner, bowlInput(uuid.NewString()))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), d.ID, owner))
	assert.ErrorIs(t, svc.Delete(context.Background(), d.ID, owner), apperror.ErrNotFound)

	found, err := svc.GetMany(context.Background(), []string{d.ID})
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestRateAndTasteProfile(t *testing.T) {
	svc, events := newTestService(t)
	d, err := svc.Create(context.Background(), owner, bowlInput(uuid.NewString()))
	require.NoError(t, err)

	_, err = svc.Rate(context.Background(), d.ID, "u1", RateInput{Rating: 5, Taste: health.TasteUmami})
	require.NoError(t, err)
	rated, err := svc.Rate(context.Background(), d.ID, "u2", RateInput{Rating: 4, Taste: health.TasteSpicy, Review: "hot!"})
	require.NoError(t, err)
	assert.Equal(t, 4.5, rated.AverageRating)

	profile, err := svc.TasteProfile(context.Background(), d.ID)
	require.NoError(t, err)
	assert.Equal(t, map[health.Taste]int{health.TasteUmami: 1, health.TasteSpicy: 1}, profile)
	assert.Equal(t, []string{realtime.EventDishRated, realtime.EventDishRated}, events.types)

	_, err = svc.Rate(context.Background(), d.ID, "u1", RateInput{Rating: 9, Taste: health.TasteUmami})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestConcurrentRatingsAreAllKept(t *testing.T) {
	svc, _ := newTestService(t)
	d, err := svc.Create(context.Background(), owner, bowlInput(uuid.NewString()))
	require.NoError(t, err)

	const raters = 5
	var wg sync.WaitGroup
	for i := 0; i < raters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Rate(context.Background(), d.ID, uuid.NewString(), RateInput{Rating: i%5 + 1, Taste: health.TasteSweet})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	stored, err := svc.Get(context.Background(), d.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Ratings, raters)
	assert.Equal(t, 3.0, stored.AverageRating)
	assert.Equal(t, 1+raters, stored.Version)
}

func TestSuitability(t *testing.T) {
	svc, _ := newTestService(t)
	d, err := svc.Create(context.Background(), owner, bowlInput(uuid.NewString()))
	require.NoError(t, err)

	report, err := svc.Suitability(context.Background(), d.ID, "allergic")
	require.NoError(t, err)
	assert.False(t, report.Suitable)
	assert.Equal(t, 80, report.HealthScore)
	assert.Equal(t, health.RecommendExcellent, report.Recommendation)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, "allergen", report.Warnings[0].Code)

	report, err = svc.Suitability(context.Background(), d.ID, "diabetic")
	require.NoError(t, err)
	assert.False(t, report.Suitable)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, "sugar", report.Warnings[0].Metric)

	_, err = svc.Suitability(context.Background(), d.ID, "nobody")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
