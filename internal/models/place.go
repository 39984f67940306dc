package models

import "time"

// Place categories.
const (
	PlaceCategoryCafe       = "cafe"
	PlaceCategoryRestaurant = "restaurant"
	PlaceCategoryBar        = "bar"
	PlaceCategoryLibrary    = "library"
	PlaceCategoryCoWorking  = "co_working"
	PlaceCategoryOther      = "other"
)

// ValidPlaceCategory reports whether c is a known place category.
func ValidPlaceCategory(c string) bool {
	switch c {
	case PlaceCategoryCafe, PlaceCategoryRestaurant, PlaceCategoryBar,
		PlaceCategoryLibrary, PlaceCategoryCoWorking, PlaceCategoryOther:
		return true
	}
	return false
}

// Place is a physical venue that hosts rooms.
type Place struct {
	ID            string    `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	Address       string    `db:"address" json:"address"`
	Latitude      *float64  `db:"latitude" json:"latitude"`
	Longitude     *float64  `db:"longitude" json:"longitude"`
	Category      string    `db:"category" json:"category"`
	Description   *string   `db:"description" json:"description"`
	TotalSeats    int       `db:"total_seats" json:"total_seats"`
	WifiAvailable bool      `db:"wifi_available" json:"wifi_available"`
	PowerOutlets  bool      `db:"power_outlets" json:"power_outlets"`
	CreatedBy     *string   `db:"created_by" json:"created_by"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// PlaceSummary is embedded in room and match responses.
type PlaceSummary struct {
	ID      string `db:"id" json:"id"`
	Name    string `db:"name" json:"name"`
	Address string `db:"address" json:"address,omitempty"`
}

// PlaceWithRooms is the list/detail view of a place.
type PlaceWithRooms struct {
	Place
	Rooms    []Room   `json:"rooms"`
	Distance *float64 `json:"distance,omitempty"`
}

// PlaceUpdate carries the mutable place fields; nil means unchanged.
type PlaceUpdate struct {
	Name          *string  `json:"name"`
	Address       *string  `json:"address"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	Category      *string  `json:"category"`
	Description   *string  `json:"description"`
	TotalSeats    *int     `json:"total_seats"`
	WifiAvailable *bool    `json:"wifi_available"`
	PowerOutlets  *bool    `json:"power_outlets"`
}
