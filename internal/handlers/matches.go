package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"placechat/internal/middleware"
	"placechat/internal/models"
	"placechat/internal/observability"
	"placechat/internal/repositories"
)

// MatchHandler lists and dissolves matches.
type MatchHandler struct {
	matches repositories.MatchRepository
}

// NewMatchHandler builds a MatchHandler.
func NewMatchHandler(matches repositories.MatchRepository) *MatchHandler {
	return &MatchHandler{matches: matches}
}

// ListMatches handles GET /matches.
func (h *MatchHandler) ListMatches(c *gin.Context) {
	list, err := h.matches.ListActiveMatches(c.Request.Context(), c.GetString(middleware.UserIDKey))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load matches"})
		return
	}
	if list == nil {
		list = []models.MatchView{}
	}
	c.JSON(http.StatusOK, gin.H{"matches": list})
}

// Unmatch handles DELETE /matches/:id.
func (h *MatchHandler) Unmatch(c *gin.Context) {
	matchID, ok := pathID(c, "id", "match")
	if !ok {
		return
	}
	match, err := h.matches.GetMatch(c.Request.Context(), matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "match not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load match"})
		return
	}
	if !match.Involves(c.GetString(middleware.UserIDKey)) {
		c.JSON(http.StatusNotFound, gin.H{"error": "match not found"})
		return
	}

	updated, err := h.matches.Unmatch(c.Request.Context(), match.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not unmatch"})
		return
	}

	observability.PublishDomainEvent(c.Request.Context(), observability.EventMatchUnmatched, updated, requestIDFromContext(c))
	c.JSON(http.StatusOK, gin.H{"message": "unmatched"})
}
