package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"placechat/internal/middleware"
	"placechat/internal/models"
	"placechat/internal/observability"
	"placechat/internal/repositories"
	"placechat/internal/telemetry"
	"placechat/internal/ws"
)

// RoomHandler manages rooms and their participants.
type RoomHandler struct {
	rooms  repositories.RoomRepository
	places repositories.PlaceRepository
	hub    *ws.Hub
	audit  *telemetry.AuditEmitter
}

// NewRoomHandler builds a RoomHandler. Leaving or deleting a room drops the
// affected websocket subscriptions from hub.
func NewRoomHandler(rooms repositories.RoomRepository, places repositories.PlaceRepository, hub *ws.Hub, audit *telemetry.AuditEmitter) *RoomHandler {
	return &RoomHandler{rooms: rooms, places: places, hub: hub, audit: audit}
}

// ListRooms handles GET /rooms.
func (h *RoomHandler) ListRooms(c *gin.Context) {
	limit, offset := pagination(c, 50)
	filter := repositories.RoomFilter{Limit: limit, Offset: offset}
	if raw := c.Query("place_id"); raw != "" {
		placeID, ok := parseID(raw)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid place_id"})
			return
		}
		filter.PlaceID = placeID
	}
	if raw := c.Query("is_active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid is_active"})
			return
		}
		filter.IsActive = &active
	}

	rooms, err := h.rooms.ListRooms(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load rooms"})
		return
	}
	if rooms == nil {
		rooms = []models.RoomWithPlace{}
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

// CreateRoom handles POST /rooms.
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var req struct {
		PlaceID         string  `json:"place_id" binding:"required"`
		Name            string  `json:"name" binding:"required"`
		SeatNumber      *string `json:"seat_number"`
		Description     *string `json:"description"`
		MaxParticipants *int    `json:"max_participants"`
		RoomType        string  `json:"room_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "place_id and name are required"})
		return
	}
	placeID, ok := parseID(req.PlaceID)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid place_id"})
		return
	}
	req.PlaceID = placeID

	maxParticipants := models.DefaultMaxParticipants
	if req.MaxParticipants != nil {
		maxParticipants = *req.MaxParticipants
	}
	if maxParticipants < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "max_participants must be at least 1"})
		return
	}
	if req.RoomType == "" {
		req.RoomType = models.RoomTypePublic
	}
	if !models.ValidRoomType(req.RoomType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room_type"})
		return
	}

	if _, err := h.places.GetPlace(c.Request.Context(), req.PlaceID); err != nil {
		if errors.Is(err, repositories.ErrPlaceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "place not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load place"})
		return
	}

	userID := c.GetString(middleware.UserIDKey)
	room, err := h.rooms.CreateRoom(c.Request.Context(), models.Room{
		PlaceID:         req.PlaceID,
		Name:            strings.TrimSpace(req.Name),
		SeatNumber:      req.SeatNumber,
		Description:     req.Description,
		MaxParticipants: maxParticipants,
		IsActive:        true,
		RoomType:        req.RoomType,
		CreatedBy:       &userID,
	})
	if err != nil {
		if errors.Is(err, repositories.ErrPlaceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "place not found"})
			return
		}
		emitAudit(c, h.audit, telemetry.AuditRecord{Level: telemetry.LevelError, Action: "room.create_failed", Text: "internal error"})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create room"})
		return
	}

	emitAudit(c, h.audit, telemetry.AuditRecord{Action: "room.created", Text: "Room created", Resource: "room:" + room.ID})
	c.JSON(http.StatusCreated, gin.H{"room": room})
}

// GetRoom handles GET /rooms/:id.
func (h *RoomHandler) GetRoom(c *gin.Context) {
	room, ok := h.loadRoom(c)
	if !ok {
		return
	}

	participants, err := h.rooms.ListParticipants(c.Request.Context(), room.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load participants"})
		return
	}
	if participants == nil {
		participants = []models.ParticipantWithProfile{}
	}

	c.JSON(http.StatusOK, gin.H{"room": models.RoomDetail{RoomWithPlace: room, Participants: participants}})
}

// UpdateRoom handles PUT /rooms/:id. Only the creator may update.
func (h *RoomHandler) UpdateRoom(c *gin.Context) {
	room, ok := h.loadOwnedRoom(c)
	if !ok {
		return
	}

	var update models.RoomUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if update.MaxParticipants != nil && *update.MaxParticipants < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "max_participants must be at least 1"})
		return
	}
	if update.RoomType != nil && !models.ValidRoomType(*update.RoomType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room_type"})
		return
	}
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name must not be empty"})
		return
	}

	updated, err := h.rooms.UpdateRoom(c.Request.Context(), room.ID, update)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrRoomNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		case errors.Is(err, repositories.ErrCapacityTooLow):
			c.JSON(http.StatusBadRequest, gin.H{"error": "max_participants cannot be below current participants"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update room"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"room": updated})
}

// DeleteRoom handles DELETE /rooms/:id. Only the creator may delete.
func (h *RoomHandler) DeleteRoom(c *gin.Context) {
	room, ok := h.loadOwnedRoom(c)
	if !ok {
		return
	}

	if err := h.rooms.DeleteRoom(c.Request.Context(), room.ID); err != nil {
		if errors.Is(err, repositories.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete room"})
		return
	}
	if n := h.hub.CloseRoom(room.ID); n > 0 {
		log.Printf("room deleted, closed websockets: room_id=%s count=%d", room.ID, n)
	}
	emitAudit(c, h.audit, telemetry.AuditRecord{Action: "room.deleted", Text: "Room deleted", Resource: "room:" + room.ID})
	c.JSON(http.StatusOK, gin.H{"message": "room deleted"})
}

// ListParticipants handles GET /rooms/:id/participants.
func (h *RoomHandler) ListParticipants(c *gin.Context) {
	room, ok := h.loadRoom(c)
	if !ok {
		return
	}

	participants, err := h.rooms.ListParticipants(c.Request.Context(), room.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load participants"})
		return
	}
	if participants == nil {
		participants = []models.ParticipantWithProfile{}
	}
	c.JSON(http.StatusOK, gin.H{"participants": participants})
}

// JoinRoom handles POST /rooms/:id/participants.
func (h *RoomHandler) JoinRoom(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)
	roomID, ok := pathID(c, "id", "room")
	if !ok {
		return
	}

	participant, err := h.rooms.JoinRoom(c.Request.Context(), roomID, userID)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrRoomNotFound):
			observability.IncRoomJoin("not_found")
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		case errors.Is(err, repositories.ErrRoomInactive):
			observability.IncRoomJoin("inactive")
			c.JSON(http.StatusBadRequest, gin.H{"error": "room is not active"})
		case errors.Is(err, repositories.ErrAlreadyParticipant):
			observability.IncRoomJoin("already_participant")
			c.JSON(http.StatusBadRequest, gin.H{"error": "already a participant"})
		case errors.Is(err, repositories.ErrRoomFull):
			observability.IncRoomJoin("full")
			c.JSON(http.StatusBadRequest, gin.H{"error": "room is full"})
		default:
			observability.IncRoomJoin("error")
			log.Printf("join room failed: room_id=%s user_id=%s err=%v", roomID, userID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not join room"})
		}
		return
	}

	observability.IncRoomJoin("joined")

	emitAudit(c, h.audit, telemetry.AuditRecord{Action: "room.joined", Text: "Room joined", Resource: "room:" + participant.RoomID})
	c.JSON(http.StatusCreated, gin.H{"participant": participant})
}

// LeaveRoom handles DELETE /rooms/:id/participants.
func (h *RoomHandler) LeaveRoom(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)
	roomID, ok := pathID(c, "id", "room")
	if !ok {
		return
	}

	if err := h.rooms.LeaveRoom(c.Request.Context(), roomID, userID); err != nil {
		if errors.Is(err, repositories.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		log.Printf("leave room failed: room_id=%s user_id=%s err=%v", roomID, userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not leave room"})
		return
	}
	h.hub.DisconnectUser(roomID, userID)

	c.JSON(http.StatusOK, gin.H{"message": "left room"})
}

func (h *RoomHandler) loadRoom(c *gin.Context) (models.RoomWithPlace, bool) {
	roomID, ok := pathID(c, "id", "room")
	if !ok {
		return models.RoomWithPlace{}, false
	}
	room, err := h.rooms.GetRoom(c.Request.Context(), roomID)
	if err != nil {
		if errors.Is(err, repositories.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return models.RoomWithPlace{}, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load room"})
		return models.RoomWithPlace{}, false
	}
	return room, true
}

func (h *RoomHandler) loadOwnedRoom(c *gin.Context) (models.RoomWithPlace, bool) {
	room, ok := h.loadRoom(c)
	if !ok {
		return room, false
	}
	if room.CreatedBy == nil || *room.CreatedBy != c.GetString(middleware.UserIDKey) {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the creator can modify this room"})
		return room, false
	}
	return room, true
}
