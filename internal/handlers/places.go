package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"placechat/internal/geo"
	"placechat/internal/middleware"
	"placechat/internal/models"
	"placechat/internal/placesearch"
	"placechat/internal/repositories"
)

// PlaceHandler serves stored places and nearby search.
type PlaceHandler struct {
	places repositories.PlaceRepository
	rooms  repositories.RoomRepository
	search placesearch.Searcher
}

// NewPlaceHandler builds a PlaceHandler.
func NewPlaceHandler(places repositories.PlaceRepository, rooms repositories.RoomRepository, search placesearch.Searcher) *PlaceHandler {
	return &PlaceHandler{places: places, rooms: rooms, search: search}
}

// ListPlaces handles GET /places.
func (h *PlaceHandler) ListPlaces(c *gin.Context) {
	limit, offset := pagination(c, 50)
	category := c.Query("category")

	places, err := h.places.ListPlaces(c.Request.Context(), repositories.PlaceFilter{Category: category, Limit: limit, Offset: offset})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load places"})
		return
	}

	origin, hasOrigin := queryPoint(c)
	if hasOrigin {
		located := places[:0]
		for _, p := range places {
			if p.Latitude != nil && p.Longitude != nil {
				located = append(located, p)
			}
		}
		places = located
	}

	ids := make([]string, 0, len(places))
	for _, p := range places {
		ids = append(ids, p.ID)
	}
	rooms, err := h.rooms.ListRoomsForPlaces(c.Request.Context(), ids)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load rooms"})
		return
	}
	roomsByPlace := map[string][]models.Room{}
	for _, r := range rooms {
		roomsByPlace[r.PlaceID] = append(roomsByPlace[r.PlaceID], r)
	}

	resp := make([]models.PlaceWithRooms, 0, len(places))
	for _, p := range places {
		item := models.PlaceWithRooms{Place: p, Rooms: roomsByPlace[p.ID]}
		if item.Rooms == nil {
			item.Rooms = []models.Room{}
		}
		if hasOrigin {
			d := geo.DistanceKm(origin, geo.Point{Lat: *p.Latitude, Lng: *p.Longitude})
			item.Distance = &d
		}
		resp = append(resp, item)
	}
	if hasOrigin {
		geo.SortByDistance(resp, func(p models.PlaceWithRooms) float64 { return *p.Distance })
	}

	c.JSON(http.StatusOK, gin.H{"places": resp})
}

// CreatePlace handles POST /places.
func (h *PlaceHandler) CreatePlace(c *gin.Context) {
	var req struct {
		Name          string   `json:"name" binding:"required"`
		Address       string   `json:"address" binding:"required"`
		Latitude      *float64 `json:"latitude"`
		Longitude     *float64 `json:"longitude"`
		Category      string   `json:"category"`
		Description   *string  `json:"description"`
		TotalSeats    int      `json:"total_seats"`
		WifiAvailable bool     `json:"wifi_available"`
		PowerOutlets  bool     `json:"power_outlets"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and address are required"})
		return
	}
	if req.Category == "" {
		req.Category = models.PlaceCategoryCafe
	}
	if !models.ValidPlaceCategory(req.Category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category"})
		return
	}
	if req.TotalSeats < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "total_seats must not be negative"})
		return
	}

	userID := c.GetString(middleware.UserIDKey)
	place, err := h.places.CreatePlace(c.Request.Context(), models.Place{
		Name:          strings.TrimSpace(req.Name),
		Address:       strings.TrimSpace(req.Address),
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		Category:      req.Category,
		Description:   req.Description,
		TotalSeats:    req.TotalSeats,
		WifiAvailable: req.WifiAvailable,
		PowerOutlets:  req.PowerOutlets,
		CreatedBy:     &userID,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create place"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"place": place})
}

// GetPlace handles GET /places/:id.
func (h *PlaceHandler) GetPlace(c *gin.Context) {
	place, ok := h.loadPlace(c)
	if !ok {
		return
	}

	rooms, err := h.rooms.ListRoomsForPlaces(c.Request.Context(), []string{place.ID})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load rooms"})
		return
	}
	if rooms == nil {
		rooms = []models.Room{}
	}

	c.JSON(http.StatusOK, gin.H{"place": models.PlaceWithRooms{Place: place, Rooms: rooms}})
}

// UpdatePlace handles PUT /places/:id. Only the creator may update.
func (h *PlaceHandler) UpdatePlace(c *gin.Context) {
	place, ok := h.loadOwnedPlace(c)
	if !ok {
		return
	}

	var update models.PlaceUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if update.Category != nil && !models.ValidPlaceCategory(*update.Category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category"})
		return
	}
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name must not be empty"})
		return
	}

	updated, err := h.places.UpdatePlace(c.Request.Context(), place.ID, update)
	if err != nil {
		if errors.Is(err, repositories.ErrPlaceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "place not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update place"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"place": updated})
}

// DeletePlace handles DELETE /places/:id. Only the creator may delete.
func (h *PlaceHandler) DeletePlace(c *gin.Context) {
	place, ok := h.loadOwnedPlace(c)
	if !ok {
		return
	}

	if err := h.places.DeletePlace(c.Request.Context(), place.ID); err != nil {
		if errors.Is(err, repositories.ErrPlaceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "place not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete place"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "place deleted"})
}

// Nearby handles GET /places/nearby using the configured map provider.
func (h *PlaceHandler) Nearby(c *gin.Context) {
	origin, ok := queryPoint(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "latitude and longitude are required"})
		return
	}

	q := placesearch.Query{
		Query:     strings.TrimSpace(c.Query("query")),
		Category:  c.Query("category"),
		Latitude:  origin.Lat,
		Longitude: origin.Lng,
		Page:      queryInt(c, "page", 1),
		Display:   queryInt(c, "display", 15),
	}

	result, err := h.search.Search(c.Request.Context(), q)
	if err != nil {
		log.Printf("nearby search failed: query=%q category=%s err=%v", q.Query, q.Category, err)
		switch {
		case errors.Is(err, placesearch.ErrNotConfigured):
			c.JSON(http.StatusInternalServerError, gin.H{"error": "place search is not configured"})
		case errors.Is(err, placesearch.ErrUpstream):
			c.JSON(http.StatusBadGateway, gin.H{"error": "place search provider failed"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "place search failed"})
		}
		return
	}
	if result.Places == nil {
		result.Places = []placesearch.Place{}
	}

	c.JSON(http.StatusOK, result)
}

// ExternalPlace handles GET /places/external/:external_id.
func (h *PlaceHandler) ExternalPlace(c *gin.Context) {
	place, err := h.search.Lookup(c.Request.Context(), c.Param("external_id"))
	if err != nil {
		if errors.Is(err, placesearch.ErrPlaceNotCached) {
			c.JSON(http.StatusNotFound, gin.H{"error": "place not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load place"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"place": place})
}

func (h *PlaceHandler) loadPlace(c *gin.Context) (models.Place, bool) {
	placeID, ok := pathID(c, "id", "place")
	if !ok {
		return models.Place{}, false
	}
	place, err := h.places.GetPlace(c.Request.Context(), placeID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlaceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "place not found"})
			return models.Place{}, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load place"})
		return models.Place{}, false
	}
	return place, true
}

func (h *PlaceHandler) loadOwnedPlace(c *gin.Context) (models.Place, bool) {
	place, ok := h.loadPlace(c)
	if !ok {
		return place, false
	}
	if place.CreatedBy == nil || *place.CreatedBy != c.GetString(middleware.UserIDKey) {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the creator can modify this place"})
		return place, false
	}
	return place, true
}

// queryPoint parses latitude/longitude query params. Both must be present and valid.
func queryPoint(c *gin.Context) (geo.Point, bool) {
	lat, errLat := strconv.ParseFloat(c.Query("latitude"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("longitude"), 64)
	if errLat != nil || errLng != nil {
		return geo.Point{}, false
	}
	p := geo.Point{Lat: lat, Lng: lng}
	return p, p.Valid()
}

func queryInt(c *gin.Context, key string, fallback int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
