package models

import "time"

// Interest statuses.
const (
	InterestPending   = "pending"
	InterestAccepted  = "accepted"
	InterestRejected  = "rejected"
	InterestWithdrawn = "withdrawn"
)

// Interest is a one-directional expression of interest within a room.
type Interest struct {
	ID         string    `db:"id" json:"id"`
	FromUserID string    `db:"from_user_id" json:"from_user_id"`
	ToUserID   string    `db:"to_user_id" json:"to_user_id"`
	RoomID     string    `db:"room_id" json:"room_id"`
	Status     string    `db:"status" json:"status"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// InterestView is the list view: the counterpart's profile and the room/place names.
type InterestView struct {
	Interest
	User      ProfileSummary `json:"user"`
	RoomName  string         `db:"room_name" json:"room_name"`
	PlaceID   string         `db:"place_id" json:"place_id"`
	PlaceName string         `db:"place_name" json:"place_name"`
}
