package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"placechat/internal/models"
)

var ErrMatchNotFound = errors.New("match not found")

// MatchRepository abstracts match persistence and interest reconciliation.
type MatchRepository interface {
	ReconcileMatch(ctx context.Context, fromUserID, toUserID, roomID string) (*models.Match, error)
	ListActiveMatches(ctx context.Context, userID string) ([]models.MatchView, error)
	GetMatch(ctx context.Context, matchID string) (models.Match, error)
	Unmatch(ctx context.Context, matchID string) (models.Match, error)
	UnmatchByInterest(ctx context.Context, interestID string) (*models.Match, error)
}

// MatchRepo is a sqlx implementation of MatchRepository.
type MatchRepo struct {
	db *sqlx.DB
}

// NewMatchRepo constructs a MatchRepo.
func NewMatchRepo(db *sqlx.DB) *MatchRepo {
	return &MatchRepo{db: db}
}

const matchColumns = `id, user1_id, user2_id, room_id, interest1_id, interest2_id, status, matched_at`

// ReconcileMatch checks whether the interest fromUserID -> toUserID in the room
// is reciprocated by a pending toUserID -> fromUserID interest. If so both
// interests become accepted and the canonical match is upserted as active, all in
// one transaction holding row locks on both interests. Returns nil when there is
// nothing to match.
//
// The triggering interest may be pending or already accepted; the reciprocal
// must be pending. Callers pass the interest that just changed as the trigger:
// a newly expressed interest, or the received interest being accepted, in which
// case the recipient's own interest back is the reciprocal. A reciprocal in
// any other state never produces a match.
func (r *MatchRepo) ReconcileMatch(ctx context.Context, fromUserID, toUserID, roomID string) (*models.Match, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// both directions locked in id order so concurrent reconciles of the same pair serialize
	var pair []models.Interest
	err = tx.SelectContext(ctx, &pair, `SELECT `+interestColumns+`
        FROM interests
        WHERE room_id=$1
        AND ((from_user_id=$2 AND to_user_id=$3) OR (from_user_id=$3 AND to_user_id=$2))
        ORDER BY id
        FOR UPDATE`, roomID, fromUserID, toUserID)
	if err != nil {
		return nil, fmt.Errorf("lock interests: %w", err)
	}

	var trigger, reciprocal *models.Interest
	for i := range pair {
		if pair[i].FromUserID == fromUserID {
			trigger = &pair[i]
		} else {
			reciprocal = &pair[i]
		}
	}
	if reciprocal == nil || reciprocal.Status != models.InterestPending {
		return nil, nil
	}
	if trigger == nil || (trigger.Status != models.InterestPending && trigger.Status != models.InterestAccepted) {
		return nil, nil
	}

	if _, err = tx.ExecContext(ctx, `UPDATE interests SET status='accepted', updated_at=NOW() WHERE id IN ($1, $2)`, trigger.ID, reciprocal.ID); err != nil {
		return nil, fmt.Errorf("accept interests: %w", err)
	}

	key := models.CanonicalMatchKey(trigger.FromUserID, trigger.ID, reciprocal.FromUserID, reciprocal.ID, roomID)
	var match models.Match
	err = tx.QueryRowxContext(ctx, `INSERT INTO matches (id, user1_id, user2_id, room_id, interest1_id, interest2_id, status)
        VALUES ($1, $2, $3, $4, $5, $6, 'active')
        ON CONFLICT (user1_id, user2_id, room_id) DO UPDATE SET
            interest1_id = EXCLUDED.interest1_id,
            interest2_id = EXCLUDED.interest2_id,
            matched_at = CASE WHEN matches.status = 'active' THEN matches.matched_at ELSE NOW() END,
            status = 'active'
        RETURNING `+matchColumns,
		uuid.NewString(), key.User1ID, key.User2ID, key.RoomID, key.Interest1ID, key.Interest2ID).
		StructScan(&match)
	if err != nil {
		return nil, fmt.Errorf("upsert match: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return &match, nil
}

type matchViewRow struct {
	ID               string    `db:"id"`
	User1ID          string    `db:"user1_id"`
	User2ID          string    `db:"user2_id"`
	MatchedAt        time.Time `db:"matched_at"`
	PartnerID        string    `db:"partner_id"`
	PartnerName      *string   `db:"partner_name"`
	PartnerAvatarURL *string   `db:"partner_avatar_url"`
	PartnerBio       *string   `db:"partner_bio"`
	RoomID           string    `db:"room_id"`
	RoomName         string    `db:"room_name"`
	PlaceID          string    `db:"place_id"`
	PlaceName        string    `db:"place_name"`
	PlaceAddress     string    `db:"place_address"`
}

// ListActiveMatches returns the user's active matches, newest first, seen from the user's side.
func (r *MatchRepo) ListActiveMatches(ctx context.Context, userID string) ([]models.MatchView, error) {
	query := `SELECT m.id, m.user1_id, m.user2_id, m.matched_at,
            u.id AS partner_id, u.name AS partner_name, u.avatar_url AS partner_avatar_url, u.bio AS partner_bio,
            r.id AS room_id, r.name AS room_name,
            p.id AS place_id, p.name AS place_name, p.address AS place_address
        FROM matches m
        INNER JOIN profiles u ON u.id = CASE WHEN m.user1_id=$1 THEN m.user2_id ELSE m.user1_id END
        INNER JOIN rooms r ON r.id = m.room_id
        INNER JOIN places p ON p.id = r.place_id
        WHERE (m.user1_id=$1 OR m.user2_id=$1) AND m.status='active'
        ORDER BY m.matched_at DESC`
	var rows []matchViewRow
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, err
	}
	views := make([]models.MatchView, 0, len(rows))
	for _, row := range rows {
		views = append(views, models.MatchView{
			ID: row.ID,
			Partner: models.ProfileSummary{
				ID:        row.PartnerID,
				Name:      row.PartnerName,
				AvatarURL: row.PartnerAvatarURL,
				Bio:       row.PartnerBio,
			},
			Room: models.MatchRoom{
				ID:    row.RoomID,
				Name:  row.RoomName,
				Place: models.PlaceSummary{ID: row.PlaceID, Name: row.PlaceName, Address: row.PlaceAddress},
			},
			MatchedAt: row.MatchedAt,
		})
	}
	return views, nil
}

// GetMatch fetches a match by id.
func (r *MatchRepo) GetMatch(ctx context.Context, matchID string) (models.Match, error) {
	var match models.Match
	err := r.db.GetContext(ctx, &match, `SELECT `+matchColumns+` FROM matches WHERE id=$1`, matchID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Match{}, ErrMatchNotFound
	}
	return match, err
}

// Unmatch marks a match as unmatched.
func (r *MatchRepo) Unmatch(ctx context.Context, matchID string) (models.Match, error) {
	var match models.Match
	err := r.db.QueryRowxContext(ctx, `UPDATE matches SET status='unmatched' WHERE id=$1 RETURNING `+matchColumns, matchID).
		StructScan(&match)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Match{}, ErrMatchNotFound
	}
	return match, err
}

// UnmatchByInterest unmatches the active match produced by the interest, if any.
func (r *MatchRepo) UnmatchByInterest(ctx context.Context, interestID string) (*models.Match, error) {
	var match models.Match
	err := r.db.QueryRowxContext(ctx, `UPDATE matches SET status='unmatched'
        WHERE (interest1_id=$1 OR interest2_id=$1) AND status='active'
        RETURNING `+matchColumns, interestID).
		StructScan(&match)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &match, nil
}
