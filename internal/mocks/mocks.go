package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"placechat/internal/models"
	"placechat/internal/placesearch"
	"placechat/internal/repositories"
	"placechat/internal/telemetry"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) CreateUser(ctx context.Context, profile models.Profile) (models.Profile, error) {
	args := m.Called(ctx, profile)
	var created models.Profile
	if val := args.Get(0); val != nil {
		created = val.(models.Profile)
	}
	return created, args.Error(1)
}

func (m *UserRepositoryMock) GetUser(ctx context.Context, userID string) (models.Profile, error) {
	args := m.Called(ctx, userID)
	var profile models.Profile
	if val := args.Get(0); val != nil {
		profile = val.(models.Profile)
	}
	return profile, args.Error(1)
}

func (m *UserRepositoryMock) GetUserByEmail(ctx context.Context, email string) (models.Profile, error) {
	args := m.Called(ctx, email)
	var profile models.Profile
	if val := args.Get(0); val != nil {
		profile = val.(models.Profile)
	}
	return profile, args.Error(1)
}

func (m *UserRepositoryMock) BulkProfiles(ctx context.Context, ids []string) (map[string]models.ProfileSummary, error) {
	args := m.Called(ctx, ids)
	var profiles map[string]models.ProfileSummary
	if val := args.Get(0); val != nil {
		profiles = val.(map[string]models.ProfileSummary)
	}
	return profiles, args.Error(1)
}

type PlaceRepositoryMock struct {
	mock.Mock
}

func (m *PlaceRepositoryMock) ListPlaces(ctx context.Context, filter repositories.PlaceFilter) ([]models.Place, error) {
	args := m.Called(ctx, filter)
	var list []models.Place
	if val := args.Get(0); val != nil {
		list = val.([]models.Place)
	}
	return list, args.Error(1)
}

func (m *PlaceRepositoryMock) CreatePlace(ctx context.Context, place models.Place) (models.Place, error) {
	args := m.Called(ctx, place)
	var created models.Place
	if val := args.Get(0); val != nil {
		created = val.(models.Place)
	}
	return created, args.Error(1)
}

func (m *PlaceRepositoryMock) GetPlace(ctx context.Context, placeID string) (models.Place, error) {
	args := m.Called(ctx, placeID)
	var place models.Place
	if val := args.Get(0); val != nil {
		place = val.(models.Place)
	}
	return place, args.Error(1)
}

func (m *PlaceRepositoryMock) UpdatePlace(ctx context.Context, placeID string, update models.PlaceUpdate) (models.Place, error) {
	args := m.Called(ctx, placeID, update)
	var place models.Place
	if val := args.Get(0); val != nil {
		place = val.(models.Place)
	}
	return place, args.Error(1)
}

func (m *PlaceRepositoryMock) DeletePlace(ctx context.Context, placeID string) error {
	args := m.Called(ctx, placeID)
	return args.Error(0)
}

type RoomRepositoryMock struct {
	mock.Mock
}

func (m *RoomRepositoryMock) ListRooms(ctx context.Context, filter repositories.RoomFilter) ([]models.RoomWithPlace, error) {
	args := m.Called(ctx, filter)
	var list []models.RoomWithPlace
	if val := args.Get(0); val != nil {
		list = val.([]models.RoomWithPlace)
	}
	return list, args.Error(1)
}

func (m *RoomRepositoryMock) ListRoomsForPlaces(ctx context.Context, placeIDs []string) ([]models.Room, error) {
	args := m.Called(ctx, placeIDs)
	var list []models.Room
	if val := args.Get(0); val != nil {
		list = val.([]models.Room)
	}
	return list, args.Error(1)
}

func (m *RoomRepositoryMock) CreateRoom(ctx context.Context, room models.Room) (models.Room, error) {
	args := m.Called(ctx, room)
	var created models.Room
	if val := args.Get(0); val != nil {
		created = val.(models.Room)
	}
	return created, args.Error(1)
}

func (m *RoomRepositoryMock) GetRoom(ctx context.Context, roomID string) (models.RoomWithPlace, error) {
	args := m.Called(ctx, roomID)
	var room models.RoomWithPlace
	if val := args.Get(0); val != nil {
		room = val.(models.RoomWithPlace)
	}
	return room, args.Error(1)
}

func (m *RoomRepositoryMock) UpdateRoom(ctx context.Context, roomID string, update models.RoomUpdate) (models.Room, error) {
	args := m.Called(ctx, roomID, update)
	var room models.Room
	if val := args.Get(0); val != nil {
		room = val.(models.Room)
	}
	return room, args.Error(1)
}

func (m *RoomRepositoryMock) DeleteRoom(ctx context.Context, roomID string) error {
	args := m.Called(ctx, roomID)
	return args.Error(0)
}

func (m *RoomRepositoryMock) ListParticipants(ctx context.Context, roomID string) ([]models.ParticipantWithProfile, error) {
	args := m.Called(ctx, roomID)
	var list []models.ParticipantWithProfile
	if val := args.Get(0); val != nil {
		list = val.([]models.ParticipantWithProfile)
	}
	return list, args.Error(1)
}

func (m *RoomRepositoryMock) IsActiveParticipant(ctx context.Context, roomID, userID string) (bool, error) {
	args := m.Called(ctx, roomID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *RoomRepositoryMock) JoinRoom(ctx context.Context, roomID, userID string) (models.RoomParticipant, error) {
	args := m.Called(ctx, roomID, userID)
	var participant models.RoomParticipant
	if val := args.Get(0); val != nil {
		participant = val.(models.RoomParticipant)
	}
	return participant, args.Error(1)
}

func (m *RoomRepositoryMock) LeaveRoom(ctx context.Context, roomID, userID string) error {
	args := m.Called(ctx, roomID, userID)
	return args.Error(0)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) ListRoomMessages(ctx context.Context, roomID string, limit, offset int) ([]models.MessageWithSender, error) {
	args := m.Called(ctx, roomID, limit, offset)
	var list []models.MessageWithSender
	if val := args.Get(0); val != nil {
		list = val.([]models.MessageWithSender)
	}
	return list, args.Error(1)
}

func (m *MessageRepositoryMock) CreateRoomMessage(ctx context.Context, roomID, userID, content, messageType string) (models.MessageWithSender, error) {
	args := m.Called(ctx, roomID, userID, content, messageType)
	var msg models.MessageWithSender
	if val := args.Get(0); val != nil {
		msg = val.(models.MessageWithSender)
	}
	return msg, args.Error(1)
}

type InterestRepositoryMock struct {
	mock.Mock
}

func (m *InterestRepositoryMock) ListInterests(ctx context.Context, userID, direction, status string) ([]models.InterestView, error) {
	args := m.Called(ctx, userID, direction, status)
	var list []models.InterestView
	if val := args.Get(0); val != nil {
		list = val.([]models.InterestView)
	}
	return list, args.Error(1)
}

func (m *InterestRepositoryMock) GetInterest(ctx context.Context, interestID string) (models.Interest, error) {
	args := m.Called(ctx, interestID)
	var interest models.Interest
	if val := args.Get(0); val != nil {
		interest = val.(models.Interest)
	}
	return interest, args.Error(1)
}

func (m *InterestRepositoryMock) FindInterest(ctx context.Context, fromUserID, toUserID, roomID string) (models.Interest, error) {
	args := m.Called(ctx, fromUserID, toUserID, roomID)
	var interest models.Interest
	if val := args.Get(0); val != nil {
		interest = val.(models.Interest)
	}
	return interest, args.Error(1)
}

func (m *InterestRepositoryMock) CreateInterest(ctx context.Context, fromUserID, toUserID, roomID string) (models.Interest, error) {
	args := m.Called(ctx, fromUserID, toUserID, roomID)
	var interest models.Interest
	if val := args.Get(0); val != nil {
		interest = val.(models.Interest)
	}
	return interest, args.Error(1)
}

func (m *InterestRepositoryMock) UpdateInterestStatus(ctx context.Context, interestID, status string) (models.Interest, error) {
	args := m.Called(ctx, interestID, status)
	var interest models.Interest
	if val := args.Get(0); val != nil {
		interest = val.(models.Interest)
	}
	return interest, args.Error(1)
}

type MatchRepositoryMock struct {
	mock.Mock
}

func (m *MatchRepositoryMock) ReconcileMatch(ctx context.Context, fromUserID, toUserID, roomID string) (*models.Match, error) {
	args := m.Called(ctx, fromUserID, toUserID, roomID)
	var match *models.Match
	if val := args.Get(0); val != nil {
		match = val.(*models.Match)
	}
	return match, args.Error(1)
}

func (m *MatchRepositoryMock) ListActiveMatches(ctx context.Context, userID string) ([]models.MatchView, error) {
	args := m.Called(ctx, userID)
	var list []models.MatchView
	if val := args.Get(0); val != nil {
		list = val.([]models.MatchView)
	}
	return list, args.Error(1)
}

func (m *MatchRepositoryMock) GetMatch(ctx context.Context, matchID string) (models.Match, error) {
	args := m.Called(ctx, matchID)
	var match models.Match
	if val := args.Get(0); val != nil {
		match = val.(models.Match)
	}
	return match, args.Error(1)
}

func (m *MatchRepositoryMock) Unmatch(ctx context.Context, matchID string) (models.Match, error) {
	args := m.Called(ctx, matchID)
	var match models.Match
	if val := args.Get(0); val != nil {
		match = val.(models.Match)
	}
	return match, args.Error(1)
}

func (m *MatchRepositoryMock) UnmatchByInterest(ctx context.Context, interestID string) (*models.Match, error) {
	args := m.Called(ctx, interestID)
	var match *models.Match
	if val := args.Get(0); val != nil {
		match = val.(*models.Match)
	}
	return match, args.Error(1)
}

type PlaceSearcherMock struct {
	mock.Mock
}

func (m *PlaceSearcherMock) Search(ctx context.Context, q placesearch.Query) (placesearch.Result, error) {
	args := m.Called(ctx, q)
	var result placesearch.Result
	if val := args.Get(0); val != nil {
		result = val.(placesearch.Result)
	}
	return result, args.Error(1)
}

func (m *PlaceSearcherMock) Lookup(ctx context.Context, externalID string) (placesearch.Place, error) {
	args := m.Called(ctx, externalID)
	var place placesearch.Place
	if val := args.Get(0); val != nil {
		place = val.(placesearch.Place)
	}
	return place, args.Error(1)
}

// AuditPublisherMock stands in for the broker behind the audit emitter.
type AuditPublisherMock struct {
	mock.Mock
}

func (m *AuditPublisherMock) Publish(ctx context.Context, routingKey string, event any) error {
	return m.Called(ctx, routingKey, event).Error(0)
}

func (m *AuditPublisherMock) Close() error {
	return m.Called().Error(0)
}

var (
	_ repositories.UserRepository     = (*UserRepositoryMock)(nil)
	_ repositories.PlaceRepository    = (*PlaceRepositoryMock)(nil)
	_ repositories.RoomRepository     = (*RoomRepositoryMock)(nil)
	_ repositories.MessageRepository  = (*MessageRepositoryMock)(nil)
	_ repositories.InterestRepository = (*InterestRepositoryMock)(nil)
	_ repositories.MatchRepository    = (*MatchRepositoryMock)(nil)
	_ placesearch.Searcher            = (*PlaceSearcherMock)(nil)
	_ telemetry.Publisher             = (*AuditPublisherMock)(nil)
)
