package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"placechat/internal/telemetry"
	"placechat/internal/ws"
)

// RegisterDebugRoutes wires operator-only endpoints for checking the audit
// pipeline and live room subscriptions. Nothing is registered unless enabled.
func RegisterDebugRoutes(router gin.IRouter, emitter *telemetry.AuditEmitter, hub *ws.Hub, enabled bool) {
	if !enabled {
		return
	}

	debug := router.Group("/debug")
	debug.GET("/audit-test", func(c *gin.Context) {
		if emitter == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "audit emitter not configured"})
			return
		}
		emitAudit(c, emitter, telemetry.AuditRecord{Action: "debug.audit_test", Text: "audit test"})
		c.JSON(http.StatusOK, gin.H{"status": "ok", "request_id": requestIDFromContext(c)})
	})
	debug.GET("/rooms/:id/connections", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"room_id": c.Param("id"), "connections": hub.ClientCount(c.Param("id"))})
	})
}
