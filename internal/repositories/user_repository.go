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
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

// UserRepository abstracts profile persistence.
type UserRepository interface {
	CreateUser(ctx context.Context, profile models.Profile) (models.Profile, error)
	GetUser(ctx context.Context, userID string) (models.Profile, error)
	GetUserByEmail(ctx context.Context, email string) (models.Profile, error)
	BulkProfiles(ctx context.Context, ids []string) (map[string]models.ProfileSummary, error)
}

// UserRepo is a sqlx implementation of UserRepository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

const profileColumns = `id, email, password_hash, name, avatar_url, bio, age, gender, interests, created_at, updated_at`

// CreateUser inserts a profile. The id is generated when empty.
func (r *UserRepo) CreateUser(ctx context.Context, profile models.Profile) (models.Profile, error) {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	var created models.Profile
	err := r.db.QueryRowxContext(ctx, `INSERT INTO profiles (id, email, password_hash, name, avatar_url, bio, age, gender, interests)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING `+profileColumns,
		profile.ID, profile.Email, profile.PasswordHash, profile.Name, profile.AvatarURL, profile.Bio, profile.Age, profile.Gender, profile.Interests).
		StructScan(&created)
	if isUniqueViolation(err) {
		return models.Profile{}, ErrEmailTaken
	}
	return created, err
}

// GetUser fetches a profile by id.
func (r *UserRepo) GetUser(ctx context.Context, userID string) (models.Profile, error) {
	var profile models.Profile
	err := r.db.GetContext(ctx, &profile, `SELECT `+profileColumns+` FROM profiles WHERE id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, ErrUserNotFound
	}
	return profile, err
}

// GetUserByEmail fetches a profile by its login email.
func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (models.Profile, error) {
	var profile models.Profile
	err := r.db.GetContext(ctx, &profile, `SELECT `+profileColumns+` FROM profiles WHERE lower(email)=lower($1)`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Profile{}, ErrUserNotFound
	}
	return profile, err
}

// BulkProfiles returns public profile summaries keyed by id. Unknown ids are omitted.
func (r *UserRepo) BulkProfiles(ctx context.Context, ids []string) (map[string]models.ProfileSummary, error) {
	result := make(map[string]models.ProfileSummary, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var rows []models.ProfileSummary
	if err := r.db.SelectContext(ctx, &rows, `SELECT id, name, avatar_url, bio FROM profiles WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return nil, err
	}
	for _, p := range rows {
		result[p.ID] = p
	}
	return result, nil
}
