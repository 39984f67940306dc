package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"placechat/internal/models"
)

var insertProfile = regexp.QuoteMeta(`INSERT INTO profiles`)

func TestCreateUserDuplicateEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepo(db)

	mock.ExpectQuery(insertProfile).WillReturnError(&pq.Error{Code: "23505", Constraint: "profiles_email_key"})

	_, err := repo.CreateUser(context.Background(), models.Profile{Email: "ana@example.com", PasswordHash: "hash"})
	require.ErrorIs(t, err, ErrEmailTaken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUserGeneratesID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepo(db)
	now := time.Now()

	mock.ExpectQuery(insertProfile).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "name", "avatar_url", "bio", "age", "gender", "interests", "created_at", "updated_at"}).
			AddRow(userA, "ana@example.com", "hash", nil, nil, nil, nil, nil, "{coffee}", now, now))

	profile, err := repo.CreateUser(context.Background(), models.Profile{Email: "ana@example.com", PasswordHash: "hash"})
	require.NoError(t, err)
	assert.Equal(t, userA, profile.ID)
	assert.Equal(t, []string{"coffee"}, []string(profile.Interests))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByEmailNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE lower(email)=lower($1)`)).
		WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.GetUserByEmail(context.Background(), "ghost@example.com")
	require.ErrorIs(t, err, ErrUserNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
