package models

import (
	"time"

	"github.com/lib/pq"
)

// Profile is a registered user.
type Profile struct {
	ID           string         `db:"id" json:"id"`
	Email        string         `db:"email" json:"email"`
	PasswordHash string         `db:"password_hash" json:"-"`
	Name         *string        `db:"name" json:"name"`
	AvatarURL    *string        `db:"avatar_url" json:"avatar_url"`
	Bio          *string        `db:"bio" json:"bio"`
	Age          *int           `db:"age" json:"age"`
	Gender       *string        `db:"gender" json:"gender"`
	Interests    pq.StringArray `db:"interests" json:"interests"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// ProfileSummary is the public view of a profile embedded in other resources.
type ProfileSummary struct {
	ID        string  `db:"id" json:"id"`
	Name      *string `db:"name" json:"name"`
	AvatarURL *string `db:"avatar_url" json:"avatar_url"`
	Bio       *string `db:"bio" json:"bio,omitempty"`
}

// Summary returns the public part of the profile.
func (p Profile) Summary() ProfileSummary {
	return ProfileSummary{ID: p.ID, Name: p.Name, AvatarURL: p.AvatarURL, Bio: p.Bio}
}
