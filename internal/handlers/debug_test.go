package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"placechat/internal/mocks"
	"placechat/internal/models"
	"placechat/internal/telemetry"
	"placechat/internal/ws"
)

func TestDebugRoutesDisabled(t *testing.T) {
	r := newTestRouter(userA)
	RegisterDebugRoutes(r, nil, nil, false)

	assert.Equal(t, http.StatusNotFound, doRequest(r, http.MethodGet, "/debug/audit-test", "").Code)
}

func TestDebugAuditTestPublishesEnvelope(t *testing.T) {
	pub := new(mocks.AuditPublisherMock)
	emitter := telemetry.NewAuditEmitter(pub, "audit.placechat", "placechat", "test")
	r := newTestRouter(userA)
	RegisterDebugRoutes(r, emitter, ws.NewHub(), true)

	var published telemetry.AuditEnvelope
	pub.On("Publish", mock.Anything, "audit.placechat", mock.MatchedBy(func(e telemetry.AuditEnvelope) bool {
		published = e
		return e.Payload.Action == "debug.audit_test"
	})).Return(nil).Once()

	rec := doRequest(r, http.MethodGet, "/debug/audit-test", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, published.RequestID, decodeBody(t, rec)["request_id"])
	require.NotNil(t, published.UserID)
	assert.Equal(t, userA, *published.UserID)
	pub.AssertExpectations(t)
}

func TestDebugAuditTestWithoutEmitter(t *testing.T) {
	r := newTestRouter(userA)
	RegisterDebugRoutes(r, nil, nil, true)

	assert.Equal(t, http.StatusServiceUnavailable, doRequest(r, http.MethodGet, "/debug/audit-test", "").Code)
}

func TestDebugRoomConnections(t *testing.T) {
	hub := ws.NewHub()
	hub.AddRoomClient(roomID, nil, ws.ConnInfo{ConnID: "c1"})
	r := newTestRouter(userA)
	RegisterDebugRoutes(r, nil, hub, true)

	rec := doRequest(r, http.MethodGet, "/debug/rooms/"+roomID+"/connections", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decodeBody(t, rec)["connections"])
}

func TestCreateRoomEmitsAudit(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	places := new(mocks.PlaceRepositoryMock)
	pub := new(mocks.AuditPublisherMock)
	emitter := telemetry.NewAuditEmitter(pub, "audit.placechat", "placechat", "test")
	router := setupRoomRouter(NewRoomHandler(rooms, places, nil, emitter), userA)

	places.On("GetPlace", mock.Anything, placeID).Return(models.Place{ID: placeID}, nil).Once()
	rooms.On("CreateRoom", mock.Anything, mock.Anything).Return(models.Room{ID: roomID, PlaceID: placeID}, nil).Once()
	pub.On("Publish", mock.Anything, "audit.placechat", mock.MatchedBy(func(e telemetry.AuditEnvelope) bool {
		return e.Payload.Action == "room.created" && e.Payload.Resource == "room:"+roomID &&
			e.UserID != nil && *e.UserID == userA
	})).Return(nil).Once()

	rec := doRequest(router, http.MethodPost, "/rooms", `{"place_id":"`+placeID+`","name":"bar seat"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	pub.AssertExpectations(t)
}
