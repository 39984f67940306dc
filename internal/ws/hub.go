package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"placechat/internal/models"
	"placechat/internal/observability"
)

const writeWait = 10 * time.Second

// Room event types.
const (
	EventMessage = "message"
	EventMatch   = "match"
)

type client struct {
	conn *websocket.Conn
	info ConnInfo
	// gorilla connections allow one concurrent writer
	mu sync.Mutex
}

func (cl *client) write(payload []byte) error {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return cl.conn.WriteMessage(websocket.TextMessage, payload)
}

// close sends a close frame carrying reason, then drops the connection.
// The read loop of the connection observes the error and unregisters it.
func (cl *client) close(reason string) {
	if cl.conn == nil {
		return
	}
	msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason)
	_ = cl.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	_ = cl.conn.Close()
}

// Hub maintains the websocket subscribers of each room.
type Hub struct {
	rooms map[string]map[*websocket.Conn]*client
	mu    sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*websocket.Conn]*client)}
}

// AddRoomClient registers a websocket connection to a room.
func (h *Hub) AddRoomClient(roomID string, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[*websocket.Conn]*client)
	}
	h.rooms[roomID][conn] = &client{conn: conn, info: info}
}

// RemoveRoomClient removes a websocket connection from a room.
func (h *Hub) RemoveRoomClient(roomID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.rooms[roomID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// DisconnectUser closes every connection userID holds in the room and
// returns how many were closed.
func (h *Hub) DisconnectUser(roomID, userID string) int {
	if h == nil {
		return 0
	}
	h.mu.Lock()
	var dropped []*client
	for conn, cl := range h.rooms[roomID] {
		if cl.info.UserID == userID {
			dropped = append(dropped, cl)
			delete(h.rooms[roomID], conn)
		}
	}
	if conns, ok := h.rooms[roomID]; ok && len(conns) == 0 {
		delete(h.rooms, roomID)
	}
	h.mu.Unlock()

	for _, cl := range dropped {
		cl.close("left room")
	}
	return len(dropped)
}

// CloseRoom closes all connections of the room and forgets it.
func (h *Hub) CloseRoom(roomID string) int {
	if h == nil {
		return 0
	}
	h.mu.Lock()
	conns := h.rooms[roomID]
	delete(h.rooms, roomID)
	h.mu.Unlock()

	for _, cl := range conns {
		cl.close("room deleted")
	}
	return len(conns)
}

// ClientCount returns the number of subscribers of a room.
func (h *Hub) ClientCount(roomID string) int {
	if h == nil {
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// BroadcastMessage sends a chat message to all subscribers of the room.
func (h *Hub) BroadcastMessage(roomID string, msg models.MessageWithSender) {
	h.broadcast(roomID, models.RoomEvent{Type: EventMessage, Message: &msg})
}

// BroadcastMatch announces a match to all subscribers of the room.
func (h *Hub) BroadcastMatch(roomID string, match models.Match) {
	h.broadcast(roomID, models.RoomEvent{Type: EventMatch, Match: &match})
}

func (h *Hub) broadcast(roomID string, event models.RoomEvent) {
	if h == nil {
		return
	}
	h.mu.RLock()
	clients := make([]*client, 0, len(h.rooms[roomID]))
	for _, cl := range h.rooms[roomID] {
		clients = append(clients, cl)
	}
	h.mu.RUnlock()
	if len(clients) == 0 {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("websocket encode error: room=%s err=%v", roomID, err)
		return
	}
	for _, cl := range clients {
		if err := cl.write(payload); err != nil {
			log.Printf("websocket write error: room=%s conn=%s err=%v", roomID, cl.info.ConnID, err)
			cl.conn.Close()
			h.RemoveRoomClient(roomID, cl.conn)
			publishWSEvent(context.Background(), "ws_error", roomID, cl.info, err.Error())
			continue
		}
		observability.IncWSEvent(event.Type)
	}
}

func publishWSEvent(ctx context.Context, event, roomID string, info ConnInfo, reason string) {
	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"room_id":     roomID,
			"event":       event,
			"conn_id":     info.ConnID,
			"duration_ms": info.connectedFor().Milliseconds(),
			"reason":      reason,
		},
		"identity": info.identity(),
	}

	_ = observability.PublishEvent(ctx, observability.WSRoutingKey, observability.EventEnvelope{
		EventType:  "ws_events",
		EventName:  event,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}, observability.BuildHeaders(info.RequestID, info.TraceID))
	observability.IncWSEvent(event)
}
