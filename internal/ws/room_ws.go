package ws

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"placechat/internal/auth"
	"placechat/internal/observability"
	"placechat/internal/repositories"
)

// RoomWebSocketHandler serves realtime room subscriptions.
type RoomWebSocketHandler struct {
	hub   *Hub
	rooms repositories.RoomRepository
	authn *auth.Authenticator
}

// NewRoomWebSocketHandler constructs a RoomWebSocketHandler.
func NewRoomWebSocketHandler(hub *Hub, rooms repositories.RoomRepository, authn *auth.Authenticator) *RoomWebSocketHandler {
	return &RoomWebSocketHandler{hub: hub, rooms: rooms, authn: authn}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle authenticates the caller, checks room membership, then upgrades the
// connection and registers it with the hub. Browsers cannot set headers on a
// websocket handshake, so the token may also come from the query string.
func (h *RoomWebSocketHandler) Handle(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
		return
	}

	ctx, span := otel.Tracer("placechat/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token, ok := auth.BearerToken(c.GetHeader("Authorization"))
	if !ok {
		token = c.Query("token")
	}
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
		return
	}

	claims, err := h.authn.Authenticate(ctx, token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	member, err := h.rooms.IsActiveParticipant(ctx, roomID.String(), claims.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to check membership"})
		return
	}
	if !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a participant of this room"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	info := newConnInfo(c, claims.UserID, span.SpanContext().TraceID().String())
	h.hub.AddRoomClient(roomID.String(), conn, info)
	observability.IncWSActive()
	publishWSEvent(ctx, "ws_connect", roomID.String(), info, "")

	// the handshake span ends with this handler; the read loop outlives the request
	go h.readLoop(context.WithoutCancel(ctx), roomID.String(), conn, info)
}

// readLoop drains client frames until the peer goes away, then unregisters the connection.
func (h *RoomWebSocketHandler) readLoop(ctx context.Context, roomID string, conn *websocket.Conn, info ConnInfo) {
	var closeReason string
	defer func() {
		h.hub.RemoveRoomClient(roomID, conn)
		observability.DecWSActive()
		publishWSEvent(ctx, "ws_disconnect", roomID, info, closeReason)
		conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			closeReason = err.Error()
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				publishWSEvent(ctx, "ws_error", roomID, info, closeReason)
			}
			return
		}
	}
}
