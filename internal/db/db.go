package db

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Connect opens the PostgreSQL connection and applies the schema.
func Connect(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS profiles (
        id UUID PRIMARY KEY,
        email TEXT NOT NULL UNIQUE,
        password_hash TEXT NOT NULL,
        name TEXT,
        avatar_url TEXT,
        bio TEXT,
        age INT,
        gender TEXT,
        interests TEXT[],
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );`,
	`CREATE TABLE IF NOT EXISTS places (
        id UUID PRIMARY KEY,
        name TEXT NOT NULL,
        address TEXT NOT NULL,
        latitude DOUBLE PRECISION,
        longitude DOUBLE PRECISION,
        category TEXT NOT NULL DEFAULT 'cafe',
        description TEXT,
        total_seats INT NOT NULL DEFAULT 0,
        wifi_available BOOLEAN NOT NULL DEFAULT FALSE,
        power_outlets BOOLEAN NOT NULL DEFAULT FALSE,
        created_by UUID REFERENCES profiles(id) ON DELETE SET NULL,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );`,
	`CREATE TABLE IF NOT EXISTS rooms (
        id UUID PRIMARY KEY,
        place_id UUID NOT NULL REFERENCES places(id) ON DELETE CASCADE,
        name TEXT NOT NULL,
        seat_number TEXT,
        description TEXT,
        max_participants INT NOT NULL DEFAULT 4 CHECK (max_participants > 0),
        current_participants INT NOT NULL DEFAULT 0 CHECK (current_participants >= 0),
        is_active BOOLEAN NOT NULL DEFAULT TRUE,
        room_type TEXT NOT NULL DEFAULT 'public',
        created_by UUID REFERENCES profiles(id) ON DELETE SET NULL,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );`,
	`CREATE TABLE IF NOT EXISTS room_participants (
        id UUID PRIMARY KEY,
        room_id UUID NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
        user_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
        status TEXT NOT NULL DEFAULT 'active',
        joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        last_active_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        UNIQUE(room_id, user_id)
    );`,
	`CREATE TABLE IF NOT EXISTS messages (
        id UUID PRIMARY KEY,
        room_id UUID NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
        user_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
        content TEXT NOT NULL,
        message_type TEXT NOT NULL DEFAULT 'text',
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );`,
	`CREATE INDEX IF NOT EXISTS messages_room_created_idx ON messages (room_id, created_at DESC);`,
	`CREATE TABLE IF NOT EXISTS interests (
        id UUID PRIMARY KEY,
        from_user_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
        to_user_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
        room_id UUID NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
        status TEXT NOT NULL DEFAULT 'pending',
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        UNIQUE(from_user_id, to_user_id, room_id),
        CHECK (from_user_id <> to_user_id)
    );`,
	`CREATE TABLE IF NOT EXISTS matches (
        id UUID PRIMARY KEY,
        user1_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
        user2_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
        room_id UUID NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
        interest1_id UUID REFERENCES interests(id) ON DELETE SET NULL,
        interest2_id UUID REFERENCES interests(id) ON DELETE SET NULL,
        status TEXT NOT NULL DEFAULT 'active',
        matched_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        UNIQUE(user1_id, user2_id, room_id),
        CHECK (user1_id < user2_id)
    );`,
}

func runMigrations(db *sqlx.DB) error {
	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}
	log.Println("database migrations applied")
	return nil
}
