// Package model contains domain records passed between layers.
package model

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Category classifies a shoe's intended use.
type Category string

// The fixed category enumeration.
const (
	CategoryDaily   Category = "daily"
	CategoryWorkout Category = "workout"
	CategoryRace    Category = "race"
)

// Categories lists every valid category in declaration order.
var Categories = []Category{CategoryDaily, CategoryWorkout, CategoryRace}

// Valid reports whether c is part of the fixed enumeration.
func (c Category) Valid() bool {
	switch c {
	case CategoryDaily, CategoryWorkout, CategoryRace:
		return true
	}
	return false
}

func (c Category) String() string { return string(c) }

// ParseCategory converts a raw string into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}

// TagVocabulary is the controlled vocabulary of descriptive shoe tags.
var TagVocabulary = []string{
	"cushioned",
	"responsive",
	"lightweight",
	"stable",
	"neutral",
	"plush",
	"firm",
	"breathable",
	"durable",
	"versatile",
	"fast",
	"comfortable",
}

var tagSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(TagVocabulary))
	for _, t := range TagVocabulary {
		m[t] = struct{}{}
	}
	return m
}()

// ValidTag reports whether t belongs to the controlled vocabulary.
func ValidTag(t string) bool {
	_, ok := tagSet[t]
	return ok
}

// Shoe is a catalog entry. Weight is in grams; drop and stack heights in mm.
type Shoe struct {
	ID                  string    `json:"id"`
	Brand               string    `json:"brand"`
	Name                string    `json:"name"`
	Category            Category  `json:"category"`
	Tags                []string  `json:"tags"`
	Weight              float64   `json:"weight"`
	Drop                float64   `json:"drop"`
	StackHeightHeel     float64   `json:"stack_height_heel"`
	StackHeightForefoot float64   `json:"stack_height_forefoot"`
	ImageURL            string    `json:"image_url,omitempty"`
	CreatedAt           time.Time `json:"created_at,omitempty"`
	UpdatedAt           time.Time `json:"updated_at,omitempty"`
}

// Validate rejects malformed shoe records before they reach storage or
// scoring. Empty tag lists are legal; unknown tags and non-positive or
// non-finite weights are not.
func (s Shoe) Validate() error {
	if strings.TrimSpace(s.Brand) == "" {
		return fmt.Errorf("%w: missing brand", ErrInvalidShoe)
	}
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidShoe)
	}
	if !s.Category.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, s.Category)
	}
	if math.IsNaN(s.Weight) || math.IsInf(s.Weight, 0) || s.Weight <= 0 {
		return fmt.Errorf("%w: weight must be a positive number", ErrInvalidShoe)
	}
	for _, t := range s.Tags {
		if !ValidTag(t) {
			return fmt.Errorf("%w: %q", ErrUnknownTag, t)
		}
	}
	return nil
}

// TagSet returns the shoe's tags as a set for overlap math.
func (s Shoe) TagSet() map[string]struct{} {
	set := make(map[string]struct{}, len(s.Tags))
	for _, t := range s.Tags {
		set[t] = struct{}{}
	}
	return set
}

// RotationShoe is a catalog shoe currently in a user's active rotation.
type RotationShoe struct {
	Shoe
	UserID    string    `json:"user_id"`
	StartDate time.Time `json:"start_date"`
}

// RetiredShoe is a catalog shoe a user has moved to the graveyard.
// Review and MilesRun are optional and stay nil when never supplied.
type RetiredShoe struct {
	Shoe
	UserID    string    `json:"user_id"`
	RetiredAt time.Time `json:"retired_at"`
	Rating    int       `json:"rating"`
	Review    *string   `json:"review,omitempty"`
	MilesRun  *float64  `json:"miles_run,omitempty"`
}

// Profile holds a user's account details and stated preferences.
type Profile struct {
	ID                  string     `json:"id"`
	UserID              string     `json:"user_id"`
	FirstName           string     `json:"first_name"`
	LastName            string     `json:"last_name"`
	Email               string     `json:"email"`
	AvgMilesPerWeek     float64    `json:"avg_miles_per_week"`
	PreferredCategories []Category `json:"preferred_categories"`
	CreatedAt           time.Time  `json:"created_at,omitempty"`
	UpdatedAt           time.Time  `json:"updated_at,omitempty"`
}

// UserShoeStats summarizes a user's shoe inventory: active rotation count,
// graveyard count, their sum, and the average graveyard rating rounded to
// one decimal (0 when nothing is retired).
type UserShoeStats struct {
	ActiveShoes  int     `json:"active_shoes"`
	RetiredShoes int     `json:"retired_shoes"`
	TotalShoes   int     `json:"total_shoes"`
	AvgRating    float64 `json:"avg_rating"`
}

// Preferences carries the subset of a profile the scorer consumes.
type Preferences struct {
	PreferredCategories []Category
}

// Preferences projects the profile onto the scorer's input shape.
func (p Profile) Preferences() Preferences {
	return Preferences{PreferredCategories: p.PreferredCategories}
}

// Recommendation pairs a candidate shoe with its match score and a
// human-readable explanation.
type Recommendation struct {
	Shoe        Shoe    `json:"shoe"`
	Score       float64 `json:"score"`
	Explanation string  `json:"explanation"`
}

// RecommendationSet is the full answer to a recommendation request:
// the ranked picks plus the IDs of the top-rated shoes they were based on.
type RecommendationSet struct {
	Recommendations []Recommendation `json:"recommendations"`
	BasedOnShoes    []string         `json:"based_on_shoes"`
}
