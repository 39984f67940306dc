package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"placechat/internal/mocks"
	"placechat/internal/models"
	"placechat/internal/repositories"
	"placechat/internal/ws"
)

func setupRoomRouter(handler *RoomHandler, userID string) http.Handler {
	r := newTestRouter(userID)
	r.GET("/rooms", handler.ListRooms)
	r.POST("/rooms", handler.CreateRoom)
	r.GET("/rooms/:id", handler.GetRoom)
	r.PUT("/rooms/:id", handler.UpdateRoom)
	r.DELETE("/rooms/:id", handler.DeleteRoom)
	r.GET("/rooms/:id/participants", handler.ListParticipants)
	r.POST("/rooms/:id/participants", handler.JoinRoom)
	r.DELETE("/rooms/:id/participants", handler.LeaveRoom)
	return r
}

func ownedRoom(owner string) models.RoomWithPlace {
	return models.RoomWithPlace{Room: models.Room{ID: roomID, Name: "window", MaxParticipants: 4, CurrentParticipants: 2, IsActive: true, CreatedBy: &owner}}
}

func TestJoinRoomSuccess(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	router := setupRoomRouter(NewRoomHandler(rooms, nil, nil, nil), userA)

	rooms.On("JoinRoom", mock.Anything, roomID, userA).
		Return(models.RoomParticipant{ID: "p-1", RoomID: roomID, UserID: userA, Status: models.ParticipantActive}, nil).Once()

	rec := doRequest(router, http.MethodPost, "/rooms/"+roomID+"/participants", "")

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, models.ParticipantActive, decodeBody(t, rec)["participant"].(map[string]any)["status"])
	rooms.AssertExpectations(t)
}

func TestJoinRoomRejections(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"full", repositories.ErrRoomFull, http.StatusBadRequest},
		{"inactive", repositories.ErrRoomInactive, http.StatusBadRequest},
		{"already joined", repositories.ErrAlreadyParticipant, http.StatusBadRequest},
		{"missing", repositories.ErrRoomNotFound, http.StatusNotFound},
		{"db error", assert.AnError, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rooms := new(mocks.RoomRepositoryMock)
			router := setupRoomRouter(NewRoomHandler(rooms, nil, nil, nil), userA)
			rooms.On("JoinRoom", mock.Anything, roomID, userA).Return(nil, tc.err).Once()

			rec := doRequest(router, http.MethodPost, "/rooms/"+roomID+"/participants", "")

			assert.Equal(t, tc.status, rec.Code)
			rooms.AssertExpectations(t)
		})
	}
}

func TestLeaveRoom(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	router := setupRoomRouter(NewRoomHandler(rooms, nil, nil, nil), userA)

	rooms.On("LeaveRoom", mock.Anything, roomID, userA).Return(nil).Once()
	rooms.On("LeaveRoom", mock.Anything, missingID, userA).Return(repositories.ErrRoomNotFound).Once()

	assert.Equal(t, http.StatusOK, doRequest(router, http.MethodDelete, "/rooms/"+roomID+"/participants", "").Code)
	assert.Equal(t, http.StatusNotFound, doRequest(router, http.MethodDelete, "/rooms/"+missingID+"/participants", "").Code)
	rooms.AssertExpectations(t)
}

func TestLeaveRoomDropsCallerWebsockets(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	hub := ws.NewHub()
	hub.AddRoomClient(roomID, nil, ws.ConnInfo{UserID: userA})
	router := setupRoomRouter(NewRoomHandler(rooms, nil, hub, nil), userA)

	rooms.On("LeaveRoom", mock.Anything, roomID, userA).Return(nil).Once()

	rec := doRequest(router, http.MethodDelete, "/rooms/"+roomID+"/participants", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, hub.ClientCount(roomID))
	rooms.AssertExpectations(t)
}

func TestLeaveRoomFailureKeepsWebsockets(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	hub := ws.NewHub()
	hub.AddRoomClient(roomID, nil, ws.ConnInfo{UserID: userA})
	router := setupRoomRouter(NewRoomHandler(rooms, nil, hub, nil), userA)

	rooms.On("LeaveRoom", mock.Anything, roomID, userA).Return(assert.AnError).Once()

	rec := doRequest(router, http.MethodDelete, "/rooms/"+roomID+"/participants", "")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 1, hub.ClientCount(roomID))
}

func TestRoomRoutesRejectMalformedIDs(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	places := new(mocks.PlaceRepositoryMock)
	router := setupRoomRouter(NewRoomHandler(rooms, places, nil, nil), userA)

	for _, tc := range []struct{ method, path, body string }{
		{http.MethodGet, "/rooms/not-a-uuid", ""},
		{http.MethodPut, "/rooms/not-a-uuid", `{"name":"x"}`},
		{http.MethodDelete, "/rooms/not-a-uuid", ""},
		{http.MethodGet, "/rooms/not-a-uuid/participants", ""},
		{http.MethodPost, "/rooms/not-a-uuid/participants", ""},
		{http.MethodDelete, "/rooms/not-a-uuid/participants", ""},
		{http.MethodGet, "/rooms?place_id=not-a-uuid", ""},
		{http.MethodPost, "/rooms", `{"place_id":"not-a-uuid","name":"x"}`},
	} {
		rec := doRequest(router, tc.method, tc.path, tc.body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "%s %s", tc.method, tc.path)
	}

	rooms.AssertNotCalled(t, "GetRoom", mock.Anything, mock.Anything)
	rooms.AssertNotCalled(t, "ListRooms", mock.Anything, mock.Anything)
	places.AssertNotCalled(t, "GetPlace", mock.Anything, mock.Anything)
}

func TestCreateRoomDefaults(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	places := new(mocks.PlaceRepositoryMock)
	router := setupRoomRouter(NewRoomHandler(rooms, places, nil, nil), userA)

	places.On("GetPlace", mock.Anything, placeID).Return(models.Place{ID: placeID}, nil).Once()
	rooms.On("CreateRoom", mock.Anything, mock.MatchedBy(func(r models.Room) bool {
		return r.PlaceID == placeID && r.Name == "table 3" &&
			r.MaxParticipants == models.DefaultMaxParticipants && r.RoomType == models.RoomTypePublic &&
			r.IsActive && r.CreatedBy != nil && *r.CreatedBy == userA
	})).Return(models.Room{ID: roomID, PlaceID: placeID, Name: "table 3"}, nil).Once()

	rec := doRequest(router, http.MethodPost, "/rooms", `{"place_id":"`+strings.ToUpper(placeID)+`","name":" table 3 "}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	rooms.AssertExpectations(t)
	places.AssertExpectations(t)
}

func TestCreateRoomValidation(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	places := new(mocks.PlaceRepositoryMock)
	router := setupRoomRouter(NewRoomHandler(rooms, places, nil, nil), userA)

	assert.Equal(t, http.StatusBadRequest, doRequest(router, http.MethodPost, "/rooms", `{"name":"x"}`).Code)
	assert.Equal(t, http.StatusBadRequest, doRequest(router, http.MethodPost, "/rooms", `{"place_id":"`+placeID+`","name":"x","max_participants":0}`).Code)
	assert.Equal(t, http.StatusBadRequest, doRequest(router, http.MethodPost, "/rooms", `{"place_id":"`+placeID+`","name":"x","room_type":"secret"}`).Code)

	places.On("GetPlace", mock.Anything, missingID).Return(nil, repositories.ErrPlaceNotFound).Once()
	assert.Equal(t, http.StatusNotFound, doRequest(router, http.MethodPost, "/rooms", `{"place_id":"`+missingID+`","name":"x"}`).Code)

	rooms.AssertNotCalled(t, "CreateRoom", mock.Anything, mock.Anything)
	places.AssertExpectations(t)
}

func TestGetRoomWithParticipants(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	router := setupRoomRouter(NewRoomHandler(rooms, nil, nil, nil), userA)

	rooms.On("GetRoom", mock.Anything, roomID).Return(ownedRoom(userB), nil).Once()
	rooms.On("ListParticipants", mock.Anything, roomID).Return([]models.ParticipantWithProfile{
		{RoomParticipant: models.RoomParticipant{UserID: userB}, Profile: models.ProfileSummary{ID: userB}},
	}, nil).Once()

	rec := doRequest(router, http.MethodGet, "/rooms/"+roomID, "")

	require.Equal(t, http.StatusOK, rec.Code)
	room := decodeBody(t, rec)["room"].(map[string]any)
	assert.Len(t, room["participants"], 1)
	rooms.AssertExpectations(t)
}

func TestUpdateRoomOnlyCreator(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	router := setupRoomRouter(NewRoomHandler(rooms, nil, nil, nil), userA)

	rooms.On("GetRoom", mock.Anything, roomID).Return(ownedRoom(userB), nil).Once()

	rec := doRequest(router, http.MethodPut, "/rooms/"+roomID, `{"name":"mine now"}`)

	require.Equal(t, http.StatusForbidden, rec.Code)
	rooms.AssertNotCalled(t, "UpdateRoom", mock.Anything, mock.Anything, mock.Anything)
	rooms.AssertExpectations(t)
}

func TestUpdateRoomCapacityBelowCurrent(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	router := setupRoomRouter(NewRoomHandler(rooms, nil, nil, nil), userA)

	rooms.On("GetRoom", mock.Anything, roomID).Return(ownedRoom(userA), nil).Once()
	rooms.On("UpdateRoom", mock.Anything, roomID, mock.Anything).Return(nil, repositories.ErrCapacityTooLow).Once()

	rec := doRequest(router, http.MethodPut, "/rooms/"+roomID, `{"max_participants":1}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	rooms.AssertExpectations(t)
}

func TestDeleteRoomByCreator(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	hub := ws.NewHub()
	hub.AddRoomClient(roomID, nil, ws.ConnInfo{UserID: userB})
	router := setupRoomRouter(NewRoomHandler(rooms, nil, hub, nil), userA)

	rooms.On("GetRoom", mock.Anything, roomID).Return(ownedRoom(userA), nil).Once()
	rooms.On("DeleteRoom", mock.Anything, roomID).Return(nil).Once()

	rec := doRequest(router, http.MethodDelete, "/rooms/"+roomID, "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, hub.ClientCount(roomID))
	rooms.AssertExpectations(t)
}

func TestListRoomsFilter(t *testing.T) {
	rooms := new(mocks.RoomRepositoryMock)
	router := setupRoomRouter(NewRoomHandler(rooms, nil, nil, nil), userA)

	active := true
	rooms.On("ListRooms", mock.Anything, repositories.RoomFilter{PlaceID: placeID, IsActive: &active, Limit: 10, Offset: 0}).
		Return([]models.RoomWithPlace{ownedRoom(userA)}, nil).Once()

	rec := doRequest(router, http.MethodGet, "/rooms?place_id="+placeID+"&is_active=true&limit=10", "")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, http.StatusBadRequest, doRequest(router, http.MethodGet, "/rooms?is_active=sometimes", "").Code)
	rooms.AssertExpectations(t)
}
