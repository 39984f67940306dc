package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"placechat/internal/middleware"
	"placechat/internal/models"
	"placechat/internal/repositories"
	"placechat/internal/ws"
)

// MessageHandler serves room chat history and posting.
type MessageHandler struct {
	rooms    repositories.RoomRepository
	messages repositories.MessageRepository
	hub      *ws.Hub
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(rooms repositories.RoomRepository, messages repositories.MessageRepository, hub *ws.Hub) *MessageHandler {
	return &MessageHandler{rooms: rooms, messages: messages, hub: hub}
}

// ListMessages handles GET /rooms/:id/messages.
func (h *MessageHandler) ListMessages(c *gin.Context) {
	roomID, ok := pathID(c, "id", "room")
	if !ok || !h.requireParticipant(c, roomID) {
		return
	}

	limit, offset := pagination(c, 50)
	msgs, err := h.messages.ListRoomMessages(c.Request.Context(), roomID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	if msgs == nil {
		msgs = []models.MessageWithSender{}
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// PostMessage handles POST /rooms/:id/messages and broadcasts the stored message.
func (h *MessageHandler) PostMessage(c *gin.Context) {
	roomID, ok := pathID(c, "id", "room")
	if !ok || !h.requireParticipant(c, roomID) {
		return
	}

	var req struct {
		Content     string `json:"content"`
		MessageType string `json:"message_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content is required"})
		return
	}
	if req.MessageType == "" {
		req.MessageType = models.MessageTypeText
	}
	if !models.ValidMessageType(req.MessageType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message_type"})
		return
	}

	msg, err := h.messages.CreateRoomMessage(c.Request.Context(), roomID, c.GetString(middleware.UserIDKey), content, req.MessageType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save message"})
		return
	}

	h.hub.BroadcastMessage(roomID, msg)
	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

func (h *MessageHandler) requireParticipant(c *gin.Context, roomID string) bool {
	member, err := h.rooms.IsActiveParticipant(c.Request.Context(), roomID, c.GetString(middleware.UserIDKey))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify membership"})
		return false
	}
	if member {
		return true
	}

	// tell a missing room apart from one the caller is not in
	if _, err := h.rooms.GetRoom(c.Request.Context(), roomID); err != nil {
		if errors.Is(err, repositories.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load room"})
		return false
	}
	c.JSON(http.StatusForbidden, gin.H{"error": "not a room participant"})
	return false
}
