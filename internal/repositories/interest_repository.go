package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"placechat/internal/models"
)

var (
	ErrInterestNotFound = errors.New("interest not found")
	ErrInterestExists   = errors.New("interest already expressed")
)

// Interest list directions.
const (
	InterestsSent     = "sent"
	InterestsReceived = "received"
)

// InterestRepository abstracts interest persistence.
type InterestRepository interface {
	ListInterests(ctx context.Context, userID, direction, status string) ([]models.InterestView, error)
	GetInterest(ctx context.Context, interestID string) (models.Interest, error)
	FindInterest(ctx context.Context, fromUserID, toUserID, roomID string) (models.Interest, error)
	CreateInterest(ctx context.Context, fromUserID, toUserID, roomID string) (models.Interest, error)
	UpdateInterestStatus(ctx context.Context, interestID, status string) (models.Interest, error)
}

// InterestRepo is a sqlx implementation of InterestRepository.
type InterestRepo struct {
	db *sqlx.DB
}

// NewInterestRepo constructs an InterestRepo.
func NewInterestRepo(db *sqlx.DB) *InterestRepo {
	return &InterestRepo{db: db}
}

const interestColumns = `id, from_user_id, to_user_id, room_id, status, created_at, updated_at`

type interestViewRow struct {
	models.Interest
	UserName      *string `db:"user_name"`
	UserAvatarURL *string `db:"user_avatar_url"`
	UserBio       *string `db:"user_bio"`
	RoomName      string  `db:"room_name"`
	PlaceID       string  `db:"place_id"`
	PlaceName     string  `db:"place_name"`
}

// ListInterests returns the user's sent or received interests, newest first.
// The embedded profile is always the other user.
func (r *InterestRepo) ListInterests(ctx context.Context, userID, direction, status string) ([]models.InterestView, error) {
	own, other := "to_user_id", "from_user_id"
	if direction == InterestsSent {
		own, other = "from_user_id", "to_user_id"
	}
	query := `SELECT i.id, i.from_user_id, i.to_user_id, i.room_id, i.status, i.created_at, i.updated_at,
            u.name AS user_name, u.avatar_url AS user_avatar_url, u.bio AS user_bio,
            r.name AS room_name, p.id AS place_id, p.name AS place_name
        FROM interests i
        INNER JOIN profiles u ON u.id = i.` + other + `
        INNER JOIN rooms r ON r.id = i.room_id
        INNER JOIN places p ON p.id = r.place_id
        WHERE i.` + own + `=$1 AND ($2 = '' OR i.status = $2)
        ORDER BY i.created_at DESC`
	var rows []interestViewRow
	if err := r.db.SelectContext(ctx, &rows, query, userID, status); err != nil {
		return nil, err
	}
	views := make([]models.InterestView, 0, len(rows))
	for _, row := range rows {
		otherID := row.FromUserID
		if direction == InterestsSent {
			otherID = row.ToUserID
		}
		views = append(views, models.InterestView{
			Interest:  row.Interest,
			User:      models.ProfileSummary{ID: otherID, Name: row.UserName, AvatarURL: row.UserAvatarURL, Bio: row.UserBio},
			RoomName:  row.RoomName,
			PlaceID:   row.PlaceID,
			PlaceName: row.PlaceName,
		})
	}
	return views, nil
}

// GetInterest fetches an interest by id.
func (r *InterestRepo) GetInterest(ctx context.Context, interestID string) (models.Interest, error) {
	var interest models.Interest
	err := r.db.GetContext(ctx, &interest, `SELECT `+interestColumns+` FROM interests WHERE id=$1`, interestID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Interest{}, ErrInterestNotFound
	}
	return interest, err
}

// FindInterest fetches the interest for a (from, to, room) triple.
func (r *InterestRepo) FindInterest(ctx context.Context, fromUserID, toUserID, roomID string) (models.Interest, error) {
	var interest models.Interest
	err := r.db.GetContext(ctx, &interest, `SELECT `+interestColumns+` FROM interests WHERE from_user_id=$1 AND to_user_id=$2 AND room_id=$3`,
		fromUserID, toUserID, roomID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Interest{}, ErrInterestNotFound
	}
	return interest, err
}

// CreateInterest inserts a pending interest. A missing recipient yields
// ErrUserNotFound and a missing room ErrRoomNotFound.
func (r *InterestRepo) CreateInterest(ctx context.Context, fromUserID, toUserID, roomID string) (models.Interest, error) {
	var interest models.Interest
	err := r.db.QueryRowxContext(ctx, `INSERT INTO interests (id, from_user_id, to_user_id, room_id, status)
        VALUES ($1, $2, $3, $4, 'pending')
        RETURNING `+interestColumns, uuid.NewString(), fromUserID, toUserID, roomID).
		StructScan(&interest)
	if isUniqueViolation(err) {
		return models.Interest{}, ErrInterestExists
	}
	if constraint, ok := violatedForeignKey(err); ok {
		if constraint == "interests_room_id_fkey" {
			return models.Interest{}, ErrRoomNotFound
		}
		return models.Interest{}, ErrUserNotFound
	}
	return interest, err
}

// UpdateInterestStatus sets the status and refreshes updated_at.
func (r *InterestRepo) UpdateInterestStatus(ctx context.Context, interestID, status string) (models.Interest, error) {
	var interest models.Interest
	err := r.db.QueryRowxContext(ctx, `UPDATE interests SET status=$2, updated_at=NOW() WHERE id=$1 RETURNING `+interestColumns, interestID, status).
		StructScan(&interest)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Interest{}, ErrInterestNotFound
	}
	return interest, err
}
