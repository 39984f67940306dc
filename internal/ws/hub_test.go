package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"placechat/internal/auth"
	"placechat/internal/mocks"
	"placechat/internal/models"
)

func TestHubAddAndRemoveRoomClient(t *testing.T) {
	hub := NewHub()

	hub.AddRoomClient("room-1", nil, ConnInfo{})
	if hub.ClientCount("room-1") != 1 {
		t.Fatalf("expected room to be created")
	}

	hub.RemoveRoomClient("room-1", nil)
	if len(hub.rooms) != 0 {
		t.Fatalf("expected room to be removed")
	}
}

func TestNilHubBroadcastIsNoop(t *testing.T) {
	var hub *Hub
	assert.NotPanics(t, func() { hub.BroadcastMessage("room-1", models.MessageWithSender{}) })
}

const (
	roomOne = "5b0f8a4e-3c1d-4a5e-9f21-0d6c7b8e9a01"
	roomTwo = "5b0f8a4e-3c1d-4a5e-9f21-0d6c7b8e9a02"
)

type wsFixture struct {
	server *httptest.Server
	hub    *Hub
	rooms  *mocks.RoomRepositoryMock
	authn  *auth.Authenticator
	token  string
}

func newWSFixture(t *testing.T) *wsFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	authn := auth.NewAuthenticator(auth.NewTokenManager("secret", time.Hour), nil)
	token, _, err := authn.Tokens().Issue("user-1")
	require.NoError(t, err)

	hub := NewHub()
	rooms := new(mocks.RoomRepositoryMock)
	handler := NewRoomWebSocketHandler(hub, rooms, authn)

	r := gin.New()
	r.GET("/ws/rooms/:id", handler.Handle)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &wsFixture{server: srv, hub: hub, rooms: rooms, authn: authn, token: token}
}

func (f *wsFixture) dial(t *testing.T, roomID, userID string) *websocket.Conn {
	t.Helper()
	token, _, err := f.authn.Tokens().Issue(userID)
	require.NoError(t, err)
	f.rooms.On("IsActiveParticipant", mock.Anything, roomID, userID).Return(true, nil).Once()
	conn, _, err := websocket.DefaultDialer.Dial(f.url(roomID, token), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func (f *wsFixture) url(roomID, token string) string {
	return "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws/rooms/" + roomID + "?token=" + token
}

func waitForClients(t *testing.T, hub *Hub, roomID string, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.ClientCount(roomID) == n }, 2*time.Second, 10*time.Millisecond)
}

func TestRoomWebSocketReceivesBroadcasts(t *testing.T) {
	f := newWSFixture(t)
	f.rooms.On("IsActiveParticipant", mock.Anything, roomOne, "user-1").Return(true, nil).Once()

	conn, _, err := websocket.DefaultDialer.Dial(f.url(roomOne, f.token), nil)
	require.NoError(t, err)
	defer conn.Close()
	waitForClients(t, f.hub, roomOne, 1)

	f.hub.BroadcastMessage(roomOne, models.MessageWithSender{Message: models.Message{ID: "m1", Content: "hi"}})
	f.hub.BroadcastMatch(roomOne, models.Match{ID: "match-1", User1ID: "a", User2ID: "b"})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var first, second models.RoomEvent
	require.NoError(t, conn.ReadJSON(&first))
	require.NoError(t, conn.ReadJSON(&second))
	assert.Equal(t, EventMessage, first.Type)
	require.NotNil(t, first.Message)
	assert.Equal(t, "hi", first.Message.Content)
	assert.Equal(t, EventMatch, second.Type)
	require.NotNil(t, second.Match)
	assert.Equal(t, "match-1", second.Match.ID)

	conn.Close()
	waitForClients(t, f.hub, roomOne, 0)
	f.rooms.AssertExpectations(t)
}

func TestRoomWebSocketRejectsHandshake(t *testing.T) {
	f := newWSFixture(t)
	f.rooms.On("IsActiveParticipant", mock.Anything, roomTwo, "user-1").Return(false, nil).Once()

	_, resp, err := websocket.DefaultDialer.Dial(f.url(roomTwo, f.token), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(f.url(roomTwo, "bogus"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	f.rooms.AssertExpectations(t)
}

func TestRoomEventJSONShape(t *testing.T) {
	body, err := json.Marshal(models.RoomEvent{Type: EventMatch, Match: &models.Match{ID: "m"}})
	require.NoError(t, err)
	assert.NotContains(t, string(body), `"message"`)
	assert.Contains(t, string(body), `"type":"match"`)
}

func TestNewConnInfoFromRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/ws/rooms/r1", nil)
	c.Request.RemoteAddr = "203.0.113.7:5555"
	c.Request.Header.Set(DeviceIDHeader, "ios-1")
	c.Request.Header.Set("X-Request-ID", "req-9")

	info := newConnInfo(c, "user-1", "trace-1")

	assert.NotEmpty(t, info.ConnID)
	assert.Equal(t, "user-1", info.UserID)
	assert.Equal(t, "ios-1", info.DeviceID)
	assert.Equal(t, "203.0.113.7", info.IP)
	assert.Equal(t, "req-9", info.RequestID)
	assert.Equal(t, "trace-1", info.TraceID)
	assert.Equal(t, "user-1", info.identity()["user_id"])
	assert.Zero(t, ConnInfo{}.connectedFor())
}

func TestRoomWebSocketRejectsMalformedRoomID(t *testing.T) {
	f := newWSFixture(t)

	_, resp, err := websocket.DefaultDialer.Dial(f.url("not-a-uuid", f.token), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	f.rooms.AssertNotCalled(t, "IsActiveParticipant", mock.Anything, mock.Anything, mock.Anything)
}

func TestHubDisconnectUserClosesOnlyThatUser(t *testing.T) {
	f := newWSFixture(t)
	leaver := f.dial(t, roomOne, "user-1")
	stayer := f.dial(t, roomOne, "user-2")
	waitForClients(t, f.hub, roomOne, 2)

	assert.Equal(t, 1, f.hub.DisconnectUser(roomOne, "user-1"))
	assert.Equal(t, 1, f.hub.ClientCount(roomOne))

	_ = leaver.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := leaver.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.ClosePolicyViolation))

	f.hub.BroadcastMessage(roomOne, models.MessageWithSender{Message: models.Message{ID: "m1", Content: "still here"}})
	_ = stayer.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event models.RoomEvent
	require.NoError(t, stayer.ReadJSON(&event))
	require.NotNil(t, event.Message)
	assert.Equal(t, "still here", event.Message.Content)

	assert.Zero(t, f.hub.DisconnectUser(roomOne, "user-1"))
	assert.Zero(t, f.hub.DisconnectUser(roomTwo, "user-2"))
}

func TestHubCloseRoomDropsEveryConnection(t *testing.T) {
	f := newWSFixture(t)
	first := f.dial(t, roomOne, "user-1")
	second := f.dial(t, roomOne, "user-2")
	waitForClients(t, f.hub, roomOne, 2)

	assert.Equal(t, 2, f.hub.CloseRoom(roomOne))
	assert.Zero(t, f.hub.ClientCount(roomOne))

	for _, conn := range []*websocket.Conn{first, second} {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, _, err := conn.ReadMessage()
		assert.Error(t, err)
	}
	assert.Zero(t, f.hub.CloseRoom(roomOne))
}

func TestNilHubDisconnectIsNoop(t *testing.T) {
	var hub *Hub
	assert.Zero(t, hub.DisconnectUser(roomOne, "user-1"))
	assert.Zero(t, hub.CloseRoom(roomOne))
}
