package models

import "time"

// Room types.
const (
	RoomTypePublic     = "public"
	RoomTypePrivate    = "private"
	RoomTypeInviteOnly = "invite_only"
)

// DefaultMaxParticipants applies when a room is created without a cap.
const DefaultMaxParticipants = 4

// ValidRoomType reports whether t is a known room type.
func ValidRoomType(t string) bool {
	return t == RoomTypePublic || t == RoomTypePrivate || t == RoomTypeInviteOnly
}

// Room is a seat-scoped chat channel inside a place.
type Room struct {
	ID                  string    `db:"id" json:"id"`
	PlaceID             string    `db:"place_id" json:"place_id"`
	Name                string    `db:"name" json:"name"`
	SeatNumber          *string   `db:"seat_number" json:"seat_number"`
	Description         *string   `db:"description" json:"description"`
	MaxParticipants     int       `db:"max_participants" json:"max_participants"`
	CurrentParticipants int       `db:"current_participants" json:"current_participants"`
	IsActive            bool      `db:"is_active" json:"is_active"`
	RoomType            string    `db:"room_type" json:"room_type"`
	CreatedBy           *string   `db:"created_by" json:"created_by"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time `db:"updated_at" json:"updated_at"`
}

// IsFull reports whether the room has reached its participant cap.
func (r Room) IsFull() bool {
	return r.CurrentParticipants >= r.MaxParticipants
}

// RoomWithPlace is the list view of a room.
type RoomWithPlace struct {
	Room
	Place *PlaceSummary `json:"place,omitempty"`
}

// RoomDetail is the detail view of a room.
type RoomDetail struct {
	RoomWithPlace
	Participants []ParticipantWithProfile `json:"participants"`
}

// RoomUpdate carries the mutable room fields; nil means unchanged.
type RoomUpdate struct {
	Name            *string `json:"name"`
	SeatNumber      *string `json:"seat_number"`
	Description     *string `json:"description"`
	MaxParticipants *int    `json:"max_participants"`
	IsActive        *bool   `json:"is_active"`
	RoomType        *string `json:"room_type"`
}

// Participant statuses.
const (
	ParticipantActive  = "active"
	ParticipantLeft    = "left"
	ParticipantRemoved = "removed"
)

// RoomParticipant links a user to a room.
type RoomParticipant struct {
	ID           string    `db:"id" json:"id"`
	RoomID       string    `db:"room_id" json:"room_id"`
	UserID       string    `db:"user_id" json:"user_id"`
	Status       string    `db:"status" json:"status"`
	JoinedAt     time.Time `db:"joined_at" json:"joined_at"`
	LastActiveAt time.Time `db:"last_active_at" json:"last_active_at"`
}

// ParticipantWithProfile adds the participant's public profile.
type ParticipantWithProfile struct {
	RoomParticipant
	Profile ProfileSummary `json:"profile"`
}
