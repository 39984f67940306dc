package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"placechat/internal/models"
)

// MessageRepository defines interactions for room chat messages.
type MessageRepository interface {
	ListRoomMessages(ctx context.Context, roomID string, limit, offset int) ([]models.MessageWithSender, error)
	CreateRoomMessage(ctx context.Context, roomID, userID, content, messageType string) (models.MessageWithSender, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

type messageRow struct {
	models.Message
	SenderName      *string `db:"sender_name"`
	SenderAvatarURL *string `db:"sender_avatar_url"`
}

func (row messageRow) withSender() models.MessageWithSender {
	return models.MessageWithSender{
		Message: row.Message,
		Sender:  models.ProfileSummary{ID: row.UserID, Name: row.SenderName, AvatarURL: row.SenderAvatarURL},
	}
}

// ListRoomMessages returns a page of the newest messages in chronological order.
func (r *MessageRepo) ListRoomMessages(ctx context.Context, roomID string, limit, offset int) ([]models.MessageWithSender, error) {
	query := `SELECT m.id, m.room_id, m.user_id, m.content, m.message_type, m.created_at,
            p.name AS sender_name, p.avatar_url AS sender_avatar_url
        FROM messages m
        INNER JOIN profiles p ON p.id = m.user_id
        WHERE m.room_id=$1
        ORDER BY m.created_at DESC
        LIMIT $2 OFFSET $3`
	var rows []messageRow
	if err := r.db.SelectContext(ctx, &rows, query, roomID, limit, offset); err != nil {
		return nil, err
	}
	msgs := make([]models.MessageWithSender, len(rows))
	for i, row := range rows {
		msgs[len(rows)-1-i] = row.withSender()
	}
	return msgs, nil
}

// CreateRoomMessage stores a message and returns it with the sender profile.
func (r *MessageRepo) CreateRoomMessage(ctx context.Context, roomID, userID, content, messageType string) (models.MessageWithSender, error) {
	var row messageRow
	err := r.db.QueryRowxContext(ctx, `WITH m AS (
            INSERT INTO messages (id, room_id, user_id, content, message_type) VALUES ($1, $2, $3, $4, $5)
            RETURNING id, room_id, user_id, content, message_type, created_at
        )
        SELECT m.id, m.room_id, m.user_id, m.content, m.message_type, m.created_at,
            p.name AS sender_name, p.avatar_url AS sender_avatar_url
        FROM m
        INNER JOIN profiles p ON p.id = m.user_id`,
		uuid.NewString(), roomID, userID, content, messageType).
		StructScan(&row)
	if err != nil {
		return models.MessageWithSender{}, err
	}
	return row.withSender(), nil
}
