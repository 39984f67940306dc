package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"placechat/internal/middleware"
	"placechat/internal/telemetry"
)

func requestIDFromContext(c *gin.Context) string {
	if val, ok := c.Get(middleware.RequestIDKey); ok {
		if id, ok := val.(string); ok && id != "" {
			return id
		}
	}

	requestID := c.GetHeader(middleware.RequestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set(middleware.RequestIDKey, requestID)
	return requestID
}

func userIDFromContext(c *gin.Context) *string {
	if userID := c.GetString(middleware.UserIDKey); userID != "" {
		return &userID
	}
	return nil
}

// emitAudit stamps the record with the request and caller before emitting it.
func emitAudit(c *gin.Context, emitter *telemetry.AuditEmitter, rec telemetry.AuditRecord) {
	if emitter == nil {
		return
	}
	rec.RequestID = requestIDFromContext(c)
	if rec.UserID == nil {
		rec.UserID = userIDFromContext(c)
	}
	emitter.Emit(c.Request.Context(), rec)
}

// pagination reads limit/offset query params, falling back to the defaults on bad input.
func pagination(c *gin.Context, defaultLimit int) (int, int) {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	if limit > 100 {
		limit = 100
	}
	offset, err := strconv.Atoi(c.Query("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}
