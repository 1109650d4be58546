package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"menuwise/internal/app"
	"menuwise/internal/config"
	"menuwise/internal/menu"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureYAML = `
users:
  - name: Asha Rao
    email: asha@example.com
    password: secret123
    age: 30
    gender: female
    weight: 60
    height: 165
    activityLevel: moderate
menus:
  - uploadedBy: asha@example.com
    menu:
      restaurantName: Green Leaf
      imageUrl: https://cdn.test/menus/green-leaf.jpg
      assetId: menus/green-leaf.jpg
      isPublic: true
      location:
        lng: 77.59
        lat: 12.97
    dishes:
      - name: Grilled Tofu Bowl
        category: main_course
        nutritionalInfo:
          protein: 25
          fiber: 6
        dietaryTags: [vegan]
        cookingMethod: grilled
      - name: Masala Fries
        category: side_dish
        nutritionalInfo:
          sodium: 1200
        cookingMethod: fried
`

// memoryOpener hands every command the same in-memory app so state
// survives between invocations.
func memoryOpener(t *testing.T) (opener, *app.App) {
	t.Helper()
	cfg := &config.Config{JWTSecret: "test", TokenTTL: time.Hour, StoreDriver: config.DriverMemory}
	a, err := app.New(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return func(context.Context) (*app.App, error) { return a, nil }, a
}

func execute(t *testing.T, open opener, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(open)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestScoreCommand(t *testing.T) {
	path := writeFile(t, "dish.yaml", `
name: Grilled Tofu Bowl
nutritionalInfo:
  protein: 25
  fiber: 6
dietaryTags: [vegan]
cookingMethod: grilled
`)

	out, err := execute(t, nil, "score", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "health score:   90")
	assert.Contains(t, out, "recommendation: excellent")
	assert.Contains(t, out, "high protein")

	out, err = execute(t, nil, "score", "-f", path, "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"score": 90`)
}

func TestScoreCommandRejectsBadInput(t *testing.T) {
	path := writeFile(t, "dish.yaml", "cookingMethod: microwaved\n")
	_, err := execute(t, nil, "score", "-f", path)
	assert.Error(t, err)

	_, err = execute(t, nil, "score")
	assert.Error(t, err, "file flag is required")
}

func TestCaloriesCommand(t *testing.T) {
	out, err := execute(t, nil, "calories", "--weight", "70", "--height", "175", "--age", "28", "--gender", "male", "--activity", "moderate")
	require.NoError(t, err)
	assert.Equal(t, "2571\n", out)

	_, err = execute(t, nil, "calories", "--weight", "70", "--height", "175", "--age", "30", "--activity", "couch")
	assert.Error(t, err)
}

func TestBMICommand(t *testing.T) {
	out, err := execute(t, nil, "bmi", "--weight", "70", "--height", "175")
	require.NoError(t, err)
	assert.Equal(t, "22.9 (Normal weight)\n", out)

	_, err = execute(t, nil, "bmi", "--weight", "70")
	assert.Error(t, err)
}

func TestSeedAndRecalculate(t *testing.T) {
	open, a := memoryOpener(t)
	path := writeFile(t, "fixtures.yaml", fixtureYAML)

	out, err := execute(t, open, "seed", "-f", path)
	require.NoError(t, err)
	assert.Equal(t, "seeded 1 users, 1 menus, 2 dishes\n", out)

	menus, err := a.Menus.List(context.Background(), menu.ListFilter{})
	require.NoError(t, err)
	require.Len(t, menus, 1)
	m := menus[0]
	assert.Len(t, m.Dishes, 2)
	assert.Equal(t, 55, m.AverageHealthScore)
	assert.True(t, m.IsPublic)

	out, err = execute(t, open, "recalculate", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, m.ID+"\t55\tGreen Leaf")
	assert.Contains(t, out, "recalculated 1 menus")

	out, err = execute(t, open, "recalculate", m.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, m.ID))

	_, err = execute(t, open, "recalculate")
	assert.Error(t, err)
	_, err = execute(t, open, "recalculate", "--all", m.ID)
	assert.Error(t, err)
}

func TestSeedUnknownUploader(t *testing.T) {
	open, _ := memoryOpener(t)
	path := writeFile(t, "fixtures.yaml", `
menus:
  - uploadedBy: nobody@example.com
    menu:
      restaurantName: Ghost Kitchen
      imageUrl: https://cdn.test/x.jpg
      assetId: x.jpg
`)

	_, err := execute(t, open, "seed", "-f", path)
	assert.ErrorContains(t, err, "nobody@example.com")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, nil, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "menuwise version dev")
}
