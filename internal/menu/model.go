package menu

import (
	"fmt"
	"math"
	"strings"
	"time"

	"menuwise/internal/apperror"
	"menuwise/internal/dish"
	"menuwise/internal/health"
)

type AnalysisStatus string

const (
	StatusPending    AnalysisStatus = "pending"
	StatusProcessing AnalysisStatus = "processing"
	StatusCompleted  AnalysisStatus = "completed"
	StatusFailed     AnalysisStatus = "failed"
)

func (s AnalysisStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Location is a GeoJSON point. Coordinates are [lng, lat].
type Location struct {
	Type        string    `json:"type" bson:"type"`
	Coordinates []float64 `json:"coordinates" bson:"coordinates"`
	Address     string    `json:"address,omitempty" bson:"address,omitempty"`
}

func NewPoint(lng, lat float64, address string) Location {
	return Location{Type: "Point", Coordinates: []float64{lng, lat}, Address: address}
}

func (l Location) Lng() float64 { return l.Coordinates[0] }
func (l Location) Lat() float64 { return l.Coordinates[1] }

func (l Location) Validate() error {
	if l.Type != "Point" {
		return apperror.ValidationFailed("location.type", `location type must be "Point"`)
	}
	if len(l.Coordinates) != 2 {
		return apperror.ValidationFailed("location.coordinates", "coordinates must be [lng, lat]")
	}
	return validateLngLat(l.Lng(), l.Lat())
}

func validateLngLat(lng, lat float64) error {
	if !finite(lng) {
		return apperror.ValidationFailed("lng", "longitude must be a finite number")
	}
	if !finite(lat) {
		return apperror.ValidationFailed("lat", "latitude must be a finite number")
	}
	if lng < -180 || lng > 180 {
		return apperror.ValidationFailed("lng", "longitude must be between -180 and 180")
	}
	if lat < -90 || lat > 90 {
		return apperror.ValidationFailed("lat", "latitude must be between -90 and 90")
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

type Menu struct {
	ID             string `json:"id" bson:"_id"`
	RestaurantName string `json:"restaurantName" bson:"restaurantName"`
	UploadedBy     string `json:"uploadedBy" bson:"uploadedBy"`
	ImageURL       string `json:"imageUrl" bson:"imageUrl"`
	AssetID        string `json:"assetId" bson:"assetId"`

	// Dishes lists dish ids in menu order. Entries may point at deleted
	// dishes; resolution skips them.
	Dishes []string `json:"dishes" bson:"dishes"`

	AnalysisStatus     AnalysisStatus `json:"analysisStatus" bson:"analysisStatus"`
	OCRText            string         `json:"ocrText" bson:"ocrText"`
	Location           Location       `json:"location" bson:"location"`
	Tags               []string       `json:"tags" bson:"tags"`
	AverageHealthScore int            `json:"averageHealthScore" bson:"averageHealthScore"`
	IsPublic           bool           `json:"isPublic" bson:"isPublic"`

	Version   int       `json:"version" bson:"version"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

func New(uploadedBy string) *Menu {
	return &Menu{
		UploadedBy:     uploadedBy,
		Dishes:         []string{},
		AnalysisStatus: StatusPending,
		Location:       NewPoint(0, 0, ""),
		Tags:           []string{},
	}
}

func (m *Menu) Normalize() {
	m.RestaurantName = strings.TrimSpace(m.RestaurantName)
	m.ImageURL = strings.TrimSpace(m.ImageURL)
	m.AssetID = strings.TrimSpace(m.AssetID)
	if m.AnalysisStatus == "" {
		m.AnalysisStatus = StatusPending
	}
	if m.Location.Type == "" {
		m.Location.Type = "Point"
	}
	if m.Location.Coordinates == nil {
		m.Location.Coordinates = []float64{0, 0}
	}
	m.Tags = uniqueStrings(m.Tags)
	m.Dishes = uniqueStrings(m.Dishes)
}

func (m *Menu) Validate() error {
	if m.RestaurantName == "" {
		return apperror.ValidationFailed("restaurantName", "restaurant name is required")
	}
	if m.UploadedBy == "" {
		return apperror.ValidationFailed("uploadedBy", "uploader is required")
	}
	if m.ImageURL == "" {
		return apperror.ValidationFailed("imageUrl", "menu image URL is required")
	}
	if m.AssetID == "" {
		return apperror.ValidationFailed("assetId", "asset id is required")
	}
	if !m.AnalysisStatus.Valid() {
		return apperror.ValidationFailed("analysisStatus", fmt.Sprintf("unknown analysis status %q", m.AnalysisStatus))
	}
	return m.Location.Validate()
}

// AttachDish appends a dish reference once. It reports whether the list
// changed.
func (m *Menu) AttachDish(dishID string) bool {
	for _, id := range m.Dishes {
		if id == dishID {
			return false
		}
	}
	m.Dishes = append(m.Dishes, dishID)
	return true
}

// RecalculateHealthScore sets AverageHealthScore from the given live
// dishes, which the caller resolves from Dishes.
func (m *Menu) RecalculateHealthScore(resolved []*dish.Dish) int {
	m.AverageHealthScore = health.AverageHealthScore(scores(resolved))
	return m.AverageHealthScore
}

func scores(dishes []*dish.Dish) []int {
	out := make([]int, len(dishes))
	for i, d := range dishes {
		out[i] = d.HealthScore
	}
	return out
}

func uniqueStrings(values []string) []string {
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
