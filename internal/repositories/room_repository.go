package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"placechat/internal/models"
)

var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrRoomFull           = errors.New("room is full")
	ErrRoomInactive       = errors.New("room is not active")
	ErrAlreadyParticipant = errors.New("already a participant")
	ErrCapacityTooLow     = errors.New("max_participants is below current participants")
)

// RoomFilter narrows ListRooms.
type RoomFilter struct {
	PlaceID  string
	IsActive *bool
	Limit    int
	Offset   int
}

// RoomRepository abstracts room and participant persistence.
type RoomRepository interface {
	ListRooms(ctx context.Context, filter RoomFilter) ([]models.RoomWithPlace, error)
	ListRoomsForPlaces(ctx context.Context, placeIDs []string) ([]models.Room, error)
	CreateRoom(ctx context.Context, room models.Room) (models.Room, error)
	GetRoom(ctx context.Context, roomID string) (models.RoomWithPlace, error)
	UpdateRoom(ctx context.Context, roomID string, update models.RoomUpdate) (models.Room, error)
	DeleteRoom(ctx context.Context, roomID string) error

	ListParticipants(ctx context.Context, roomID string) ([]models.ParticipantWithProfile, error)
	IsActiveParticipant(ctx context.Context, roomID, userID string) (bool, error)
	JoinRoom(ctx context.Context, roomID, userID string) (models.RoomParticipant, error)
	LeaveRoom(ctx context.Context, roomID, userID string) error
}

// RoomRepo is a sqlx implementation of RoomRepository.
type RoomRepo struct {
	db *sqlx.DB
}

// NewRoomRepo constructs a RoomRepo.
func NewRoomRepo(db *sqlx.DB) *RoomRepo {
	return &RoomRepo{db: db}
}

const roomColumns = `id, place_id, name, seat_number, description, max_participants, current_participants, is_active, room_type, created_by, created_at, updated_at`

const roomWithPlaceSelect = `SELECT r.id, r.place_id, r.name, r.seat_number, r.description, r.max_participants, r.current_participants,
            r.is_active, r.room_type, r.created_by, r.created_at, r.updated_at,
            p.name AS place_name, p.address AS place_address
        FROM rooms r
        INNER JOIN places p ON p.id = r.place_id`

type roomWithPlaceRow struct {
	models.Room
	PlaceName    string `db:"place_name"`
	PlaceAddress string `db:"place_address"`
}

func (row roomWithPlaceRow) view() models.RoomWithPlace {
	return models.RoomWithPlace{
		Room:  row.Room,
		Place: &models.PlaceSummary{ID: row.PlaceID, Name: row.PlaceName, Address: row.PlaceAddress},
	}
}

// ListRooms returns rooms newest first with their place summary.
func (r *RoomRepo) ListRooms(ctx context.Context, filter RoomFilter) ([]models.RoomWithPlace, error) {
	query := roomWithPlaceSelect + `
        WHERE ($1 = '' OR r.place_id::text = $1)
        AND ($2::boolean IS NULL OR r.is_active = $2)
        ORDER BY r.created_at DESC
        LIMIT $3 OFFSET $4`
	var rows []roomWithPlaceRow
	if err := r.db.SelectContext(ctx, &rows, query, filter.PlaceID, filter.IsActive, filter.Limit, filter.Offset); err != nil {
		return nil, err
	}
	rooms := make([]models.RoomWithPlace, 0, len(rows))
	for _, row := range rows {
		rooms = append(rooms, row.view())
	}
	return rooms, nil
}

// ListRoomsForPlaces returns the rooms of all given places.
func (r *RoomRepo) ListRoomsForPlaces(ctx context.Context, placeIDs []string) ([]models.Room, error) {
	if len(placeIDs) == 0 {
		return nil, nil
	}
	var rooms []models.Room
	err := r.db.SelectContext(ctx, &rooms, `SELECT `+roomColumns+` FROM rooms WHERE place_id = ANY($1) ORDER BY created_at ASC`, pq.Array(placeIDs))
	return rooms, err
}

// CreateRoom inserts a room. Fails with ErrPlaceNotFound when the place does not exist.
func (r *RoomRepo) CreateRoom(ctx context.Context, room models.Room) (models.Room, error) {
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	var created models.Room
	err := r.db.QueryRowxContext(ctx, `INSERT INTO rooms (id, place_id, name, seat_number, description, max_participants, is_active, room_type, created_by)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING `+roomColumns,
		room.ID, room.PlaceID, room.Name, room.SeatNumber, room.Description, room.MaxParticipants, room.IsActive, room.RoomType, room.CreatedBy).
		StructScan(&created)
	if _, ok := violatedForeignKey(err); ok {
		return models.Room{}, ErrPlaceNotFound
	}
	return created, err
}

// GetRoom fetches a room with its place summary.
func (r *RoomRepo) GetRoom(ctx context.Context, roomID string) (models.RoomWithPlace, error) {
	var row roomWithPlaceRow
	err := r.db.GetContext(ctx, &row, roomWithPlaceSelect+` WHERE r.id=$1`, roomID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.RoomWithPlace{}, ErrRoomNotFound
	}
	if err != nil {
		return models.RoomWithPlace{}, err
	}
	return row.view(), nil
}

// UpdateRoom applies the non-nil fields of update. The cap can never drop below
// the current participant count.
func (r *RoomRepo) UpdateRoom(ctx context.Context, roomID string, update models.RoomUpdate) (models.Room, error) {
	var room models.Room
	err := r.db.QueryRowxContext(ctx, `UPDATE rooms SET
            name = COALESCE($2, name),
            seat_number = COALESCE($3, seat_number),
            description = COALESCE($4, description),
            max_participants = COALESCE($5, max_participants),
            is_active = COALESCE($6, is_active),
            room_type = COALESCE($7, room_type),
            updated_at = NOW()
        WHERE id=$1 AND ($5::int IS NULL OR $5 >= current_participants)
        RETURNING `+roomColumns,
		roomID, update.Name, update.SeatNumber, update.Description, update.MaxParticipants, update.IsActive, update.RoomType).
		StructScan(&room)
	if errors.Is(err, sql.ErrNoRows) {
		// either missing or the new cap is too small
		var exists bool
		if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM rooms WHERE id=$1)`, roomID); err != nil {
			return models.Room{}, err
		}
		if !exists {
			return models.Room{}, ErrRoomNotFound
		}
		return models.Room{}, ErrCapacityTooLow
	}
	return room, err
}

// DeleteRoom removes a room and its participants, messages and interests.
func (r *RoomRepo) DeleteRoom(ctx context.Context, roomID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE id=$1`, roomID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrRoomNotFound
	}
	return nil
}

type participantRow struct {
	models.RoomParticipant
	ProfileName      *string `db:"profile_name"`
	ProfileAvatarURL *string `db:"profile_avatar_url"`
	ProfileBio       *string `db:"profile_bio"`
}

// ListParticipants returns the active participants of a room, earliest first.
func (r *RoomRepo) ListParticipants(ctx context.Context, roomID string) ([]models.ParticipantWithProfile, error) {
	var rows []participantRow
	err := r.db.SelectContext(ctx, &rows, `SELECT rp.id, rp.room_id, rp.user_id, rp.status, rp.joined_at, rp.last_active_at,
            p.name AS profile_name, p.avatar_url AS profile_avatar_url, p.bio AS profile_bio
        FROM room_participants rp
        INNER JOIN profiles p ON p.id = rp.user_id
        WHERE rp.room_id=$1 AND rp.status='active'
        ORDER BY rp.joined_at ASC`, roomID)
	if err != nil {
		return nil, err
	}
	participants := make([]models.ParticipantWithProfile, 0, len(rows))
	for _, row := range rows {
		participants = append(participants, models.ParticipantWithProfile{
			RoomParticipant: row.RoomParticipant,
			Profile: models.ProfileSummary{
				ID:        row.UserID,
				Name:      row.ProfileName,
				AvatarURL: row.ProfileAvatarURL,
				Bio:       row.ProfileBio,
			},
		})
	}
	return participants, nil
}

// IsActiveParticipant checks active membership of a room.
func (r *RoomRepo) IsActiveParticipant(ctx context.Context, roomID, userID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM room_participants WHERE room_id=$1 AND user_id=$2 AND status='active')`, roomID, userID)
	return exists, err
}

// JoinRoom adds the user to the room and bumps the participant counter atomically.
// A previously left participant row is reactivated.
func (r *RoomRepo) JoinRoom(ctx context.Context, roomID, userID string) (models.RoomParticipant, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.RoomParticipant{}, err
	}
	defer tx.Rollback()

	var room models.Room
	err = tx.GetContext(ctx, &room, `SELECT `+roomColumns+` FROM rooms WHERE id=$1 FOR UPDATE`, roomID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.RoomParticipant{}, ErrRoomNotFound
	}
	if err != nil {
		return models.RoomParticipant{}, err
	}
	if !room.IsActive {
		return models.RoomParticipant{}, ErrRoomInactive
	}

	var active bool
	if err = tx.GetContext(ctx, &active, `SELECT EXISTS(SELECT 1 FROM room_participants WHERE room_id=$1 AND user_id=$2 AND status='active')`, roomID, userID); err != nil {
		return models.RoomParticipant{}, err
	}
	if active {
		return models.RoomParticipant{}, ErrAlreadyParticipant
	}

	res, err := tx.ExecContext(ctx, `UPDATE rooms SET current_participants = current_participants + 1, updated_at = NOW()
        WHERE id=$1 AND current_participants < max_participants`, roomID)
	if err != nil {
		return models.RoomParticipant{}, err
	}
	if count, err := res.RowsAffected(); err != nil {
		return models.RoomParticipant{}, err
	} else if count == 0 {
		return models.RoomParticipant{}, ErrRoomFull
	}

	var participant models.RoomParticipant
	err = tx.QueryRowxContext(ctx, `INSERT INTO room_participants (id, room_id, user_id, status)
        VALUES ($1, $2, $3, 'active')
        ON CONFLICT (room_id, user_id) DO UPDATE SET status='active', joined_at=NOW(), last_active_at=NOW()
        RETURNING id, room_id, user_id, status, joined_at, last_active_at`, uuid.NewString(), roomID, userID).
		StructScan(&participant)
	if err != nil {
		return models.RoomParticipant{}, err
	}

	if err = tx.Commit(); err != nil {
		return models.RoomParticipant{}, err
	}
	return participant, nil
}

// LeaveRoom marks the participant as left and decrements the counter, never below zero.
// Leaving a room the user is not active in is a no-op.
func (r *RoomRepo) LeaveRoom(ctx context.Context, roomID, userID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists bool
	if err = tx.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM rooms WHERE id=$1)`, roomID); err != nil {
		return err
	}
	if !exists {
		return ErrRoomNotFound
	}

	res, err := tx.ExecContext(ctx, `UPDATE room_participants SET status='left', last_active_at=NOW()
        WHERE room_id=$1 AND user_id=$2 AND status='active'`, roomID, userID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return tx.Commit()
	}

	if _, err = tx.ExecContext(ctx, `UPDATE rooms SET current_participants = GREATEST(current_participants - 1, 0), updated_at = NOW() WHERE id=$1`, roomID); err != nil {
		return err
	}
	return tx.Commit()
}
