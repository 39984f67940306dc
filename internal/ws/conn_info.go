package ws

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"placechat/internal/middleware"
)

// DeviceIDHeader lets mobile clients tag their room subscriptions.
const DeviceIDHeader = "X-Device-Id"

// ConnInfo identifies a room subscription in logs and ws events.
type ConnInfo struct {
	ConnID      string
	UserID      string
	DeviceID    string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}

func newConnInfo(c *gin.Context, userID, traceID string) ConnInfo {
	requestID := c.GetString(middleware.RequestIDKey)
	if requestID == "" {
		requestID = c.GetHeader(middleware.RequestIDHeader)
	}
	return ConnInfo{
		ConnID:      uuid.NewString(),
		UserID:      userID,
		DeviceID:    c.GetHeader(DeviceIDHeader),
		IP:          c.ClientIP(),
		RequestID:   requestID,
		TraceID:     traceID,
		ConnectedAt: time.Now(),
	}
}

// connectedFor is zero for a connection that never finished registering.
func (i ConnInfo) connectedFor() time.Duration {
	if i.ConnectedAt.IsZero() {
		return 0
	}
	return time.Since(i.ConnectedAt)
}

func (i ConnInfo) identity() map[string]interface{} {
	return map[string]interface{}{
		"user_id":   i.UserID,
		"device_id": i.DeviceID,
		"ip":        i.IP,
	}
}
