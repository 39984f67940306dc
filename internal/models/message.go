package models

import "time"

// Message types.
const (
	MessageTypeText   = "text"
	MessageTypeImage  = "image"
	MessageTypeSystem = "system"
)

// ValidMessageType reports whether t is a known message type.
func ValidMessageType(t string) bool {
	return t == MessageTypeText || t == MessageTypeImage || t == MessageTypeSystem
}

// Message is a chat line posted in a room.
type Message struct {
	ID          string    `db:"id" json:"id"`
	RoomID      string    `db:"room_id" json:"room_id"`
	UserID      string    `db:"user_id" json:"user_id"`
	Content     string    `db:"content" json:"content"`
	MessageType string    `db:"message_type" json:"message_type"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// MessageWithSender adds the sender's public profile.
type MessageWithSender struct {
	Message
	Sender ProfileSummary `json:"sender"`
}

// RoomEvent is broadcast to websocket subscribers of a room.
type RoomEvent struct {
	Type    string             `json:"type"`
	Message *MessageWithSender `json:"message,omitempty"`
	Match   *Match             `json:"match,omitempty"`
}
