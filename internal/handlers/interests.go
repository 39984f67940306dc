package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"placechat/internal/middleware"
	"placechat/internal/models"
	"placechat/internal/observability"
	"placechat/internal/repositories"
	"placechat/internal/telemetry"
	"placechat/internal/ws"
)

// InterestHandler manages interests and turns reciprocated ones into matches.
type InterestHandler struct {
	interests repositories.InterestRepository
	matches   repositories.MatchRepository
	rooms     repositories.RoomRepository
	users     repositories.UserRepository
	hub       *ws.Hub
	audit     *telemetry.AuditEmitter
}

// NewInterestHandler builds an InterestHandler.
func NewInterestHandler(interests repositories.InterestRepository, matches repositories.MatchRepository, rooms repositories.RoomRepository, users repositories.UserRepository, hub *ws.Hub, audit *telemetry.AuditEmitter) *InterestHandler {
	return &InterestHandler{
		interests: interests,
		matches:   matches,
		rooms:     rooms,
		users:     users,
		hub:       hub,
		audit:     audit,
	}
}

// ListInterests handles GET /interests?type=sent|received&status=.
func (h *InterestHandler) ListInterests(c *gin.Context) {
	direction := c.DefaultQuery("type", repositories.InterestsReceived)
	if direction != repositories.InterestsSent && direction != repositories.InterestsReceived {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be sent or received"})
		return
	}
	status := c.Query("status")
	if status != "" && !validInterestStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	list, err := h.interests.ListInterests(c.Request.Context(), c.GetString(middleware.UserIDKey), direction, status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load interests"})
		return
	}
	if list == nil {
		list = []models.InterestView{}
	}
	c.JSON(http.StatusOK, gin.H{"interests": list})
}

// CreateInterest handles POST /interests. A withdrawn interest is re-expressed in place.
func (h *InterestHandler) CreateInterest(c *gin.Context) {
	var req struct {
		ToUserID string `json:"to_user_id" binding:"required"`
		RoomID   string `json:"room_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to_user_id and room_id are required"})
		return
	}

	toUserID, okUser := parseID(req.ToUserID)
	roomID, okRoom := parseID(req.RoomID)
	if !okUser || !okRoom {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to_user_id and room_id must be valid ids"})
		return
	}
	req.ToUserID, req.RoomID = toUserID, roomID

	userID := c.GetString(middleware.UserIDKey)
	if sameUser(req.ToUserID, userID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot express interest in yourself"})
		return
	}

	if _, err := h.rooms.GetRoom(c.Request.Context(), req.RoomID); err != nil {
		if errors.Is(err, repositories.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load room"})
		return
	}

	status := http.StatusCreated
	interest, err := h.interests.FindInterest(c.Request.Context(), userID, req.ToUserID, req.RoomID)
	switch {
	case err == nil:
		if interest.Status != models.InterestWithdrawn {
			c.JSON(http.StatusBadRequest, gin.H{"error": "interest already expressed"})
			return
		}
		interest, err = h.interests.UpdateInterestStatus(c.Request.Context(), interest.ID, models.InterestPending)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not express interest"})
			return
		}
		status = http.StatusOK
	case errors.Is(err, repositories.ErrInterestNotFound):
		interest, err = h.interests.CreateInterest(c.Request.Context(), userID, req.ToUserID, req.RoomID)
		if err != nil {
			switch {
			case errors.Is(err, repositories.ErrInterestExists):
				c.JSON(http.StatusBadRequest, gin.H{"error": "interest already expressed"})
				return
			case errors.Is(err, repositories.ErrUserNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
				return
			case errors.Is(err, repositories.ErrRoomNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
				return
			}
			emitAudit(c, h.audit, telemetry.AuditRecord{Level: telemetry.LevelError, Action: "interest.create_failed", Text: "internal error"})
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not express interest"})
			return
		}
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load interest"})
		return
	}

	observability.PublishDomainEvent(c.Request.Context(), observability.EventInterestCreated, interest, requestIDFromContext(c))
	emitAudit(c, h.audit, telemetry.AuditRecord{Action: "interest.created", Text: "Interest expressed", Resource: "interest:" + interest.ID})

	match := h.reconcile(c, userID, req.ToUserID, req.RoomID)
	resp := gin.H{"interest": interest, "matched": match != nil}
	if match != nil {
		interest.Status = models.InterestAccepted
		resp["interest"] = interest
		resp["match"] = match
		if partner, ok := h.partnerSummary(c, req.ToUserID); ok {
			resp["partner"] = partner
		}
	}
	c.JSON(status, resp)
}

// UpdateInterest handles PUT /interests/:id. Only the recipient may respond to a pending interest.
func (h *InterestHandler) UpdateInterest(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}
	if req.Status != models.InterestAccepted && req.Status != models.InterestRejected {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be accepted or rejected"})
		return
	}

	userID := c.GetString(middleware.UserIDKey)
	interest, ok := h.loadInterest(c, func(i models.Interest) bool { return i.ToUserID == userID })
	if !ok {
		return
	}
	if interest.Status != models.InterestPending {
		c.JSON(http.StatusBadRequest, gin.H{"error": "interest is not pending"})
		return
	}

	var match *models.Match
	if req.Status == models.InterestAccepted {
		match = h.reconcile(c, interest.FromUserID, userID, interest.RoomID)
	}

	if match != nil {
		interest.Status = models.InterestAccepted
	} else {
		updated, err := h.interests.UpdateInterestStatus(c.Request.Context(), interest.ID, req.Status)
		if err != nil {
			if errors.Is(err, repositories.ErrInterestNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "interest not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update interest"})
			return
		}
		interest = updated
	}

	resp := gin.H{"interest": interest, "matched": match != nil}
	if match != nil {
		resp["match"] = match
	}
	c.JSON(http.StatusOK, resp)
}

// WithdrawInterest handles DELETE /interests/:id. Only the sender may withdraw.
func (h *InterestHandler) WithdrawInterest(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)
	interest, ok := h.loadInterest(c, func(i models.Interest) bool { return i.FromUserID == userID })
	if !ok {
		return
	}

	if _, err := h.interests.UpdateInterestStatus(c.Request.Context(), interest.ID, models.InterestWithdrawn); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not withdraw interest"})
		return
	}

	match, err := h.matches.UnmatchByInterest(c.Request.Context(), interest.ID)
	if err != nil {
		log.Printf("unmatch after withdraw failed: interest_id=%s err=%v", interest.ID, err)
	} else if match != nil {
		observability.PublishDomainEvent(c.Request.Context(), observability.EventMatchUnmatched, match, requestIDFromContext(c))
	}

	emitAudit(c, h.audit, telemetry.AuditRecord{Action: "interest.withdrawn", Text: "Interest withdrawn", Resource: "interest:" + interest.ID})
	c.JSON(http.StatusOK, gin.H{"message": "interest withdrawn"})
}

// reconcile runs match reconciliation for fromUserID -> toUserID. Failures are
// logged and reported as no match.
func (h *InterestHandler) reconcile(c *gin.Context, fromUserID, toUserID, roomID string) *models.Match {
	match, err := h.matches.ReconcileMatch(c.Request.Context(), fromUserID, toUserID, roomID)
	if err != nil {
		log.Printf("match reconciliation failed: from=%s to=%s room=%s err=%v", fromUserID, toUserID, roomID, err)
		return nil
	}
	if match == nil {
		return nil
	}

	observability.IncMatchCreated()
	h.hub.BroadcastMatch(roomID, *match)
	observability.PublishDomainEvent(c.Request.Context(), observability.EventMatchCreated, match, requestIDFromContext(c))
	emitAudit(c, h.audit, telemetry.AuditRecord{Action: "match.created", Text: "Match created", Resource: "match:" + match.ID})
	return match
}

func (h *InterestHandler) partnerSummary(c *gin.Context, userID string) (models.ProfileSummary, bool) {
	profiles, err := h.users.BulkProfiles(c.Request.Context(), []string{userID})
	if err != nil {
		log.Printf("load match partner failed: user_id=%s err=%v", userID, err)
		return models.ProfileSummary{}, false
	}
	p, ok := profiles[userID]
	return p, ok
}

// loadInterest fetches the :id interest and answers 404 unless visible(interest).
func (h *InterestHandler) loadInterest(c *gin.Context, visible func(models.Interest) bool) (models.Interest, bool) {
	interestID, ok := pathID(c, "id", "interest")
	if !ok {
		return models.Interest{}, false
	}
	interest, err := h.interests.GetInterest(c.Request.Context(), interestID)
	if err != nil {
		if errors.Is(err, repositories.ErrInterestNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "interest not found"})
			return models.Interest{}, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load interest"})
		return models.Interest{}, false
	}
	if !visible(interest) {
		c.JSON(http.StatusNotFound, gin.H{"error": "interest not found"})
		return models.Interest{}, false
	}
	return interest, true
}

func validInterestStatus(s string) bool {
	switch s {
	case models.InterestPending, models.InterestAccepted, models.InterestRejected, models.InterestWithdrawn:
		return true
	}
	return false
}
