// Package placesearch looks up nearby venues on external map providers.
package placesearch

import (
	"context"
	"errors"
	"fmt"

	"placechat/internal/models"
)

var (
	// ErrNotConfigured means the provider credentials are missing.
	ErrNotConfigured = errors.New("place search provider is not configured")
	// ErrUpstream wraps provider transport and HTTP failures.
	ErrUpstream = errors.New("place search provider failed")
	// ErrPlaceNotCached is returned by lookups for ids that were never returned by a search.
	ErrPlaceNotCached = errors.New("external place not found")
)

// Place is a venue returned by an external provider.
type Place struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Address     string   `json:"address"`
	RoadAddress string   `json:"road_address"`
	Category    string   `json:"category"`
	Telephone   string   `json:"telephone"`
	Description string   `json:"description"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	Distance    *float64 `json:"distance,omitempty"`
}

// Result is one page of search results.
type Result struct {
	Places     []Place `json:"places"`
	IsEnd      bool    `json:"is_end"`
	TotalCount int     `json:"total_count"`
}

// Query describes a nearby search. Category takes precedence over the free-text query.
type Query struct {
	Query     string
	Category  string
	Latitude  float64
	Longitude float64
	Page      int
	Display   int
}

// Provider is an external map search backend.
type Provider interface {
	Name() string
	Search(ctx context.Context, q Query) (Result, error)
}

// Searcher is what the HTTP layer depends on.
type Searcher interface {
	Search(ctx context.Context, q Query) (Result, error)
	Lookup(ctx context.Context, externalID string) (Place, error)
}

// DefaultQuery is used when neither a query nor a category is given.
const DefaultQuery = "카페"

var categoryKeywords = map[string]string{
	models.PlaceCategoryCafe:       "카페",
	models.PlaceCategoryRestaurant: "식당",
	models.PlaceCategoryBar:        "술집",
	models.PlaceCategoryOther:      "가게",
}

var keywordCategories = map[string]string{
	"카페": models.PlaceCategoryCafe,
	"식당": models.PlaceCategoryRestaurant,
	"술집": models.PlaceCategoryBar,
}

// categoryKeyword maps a place category to the keyword used for text search.
func categoryKeyword(category string) string {
	if kw, ok := categoryKeywords[category]; ok {
		return kw
	}
	return categoryKeywords[models.PlaceCategoryOther]
}

func upstreamError(provider string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUpstream, provider, err)
}

func upstreamStatus(provider string, status int, body string) error {
	return fmt.Errorf("%w: %s returned %d: %s", ErrUpstream, provider, status, body)
}
