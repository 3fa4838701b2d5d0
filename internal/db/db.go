package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// Connect initializes the database connection and runs migrations.
func Connect(dsn string, log *zap.Logger) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	log.Info("database migrations applied")

	return db, nil
}

func runMigrations(db *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS profiles (
            id BIGSERIAL PRIMARY KEY,
            user_id BIGINT NOT NULL UNIQUE,
            first_name TEXT NOT NULL,
            last_name TEXT NOT NULL,
            nickname TEXT,
            age INT NOT NULL,
            gender TEXT,
            bio TEXT,
            region TEXT NOT NULL,
            city TEXT NOT NULL,
            pfp_path TEXT
        );`,
		`CREATE TABLE IF NOT EXISTS swipes (
            id BIGSERIAL PRIMARY KEY,
            actor_id BIGINT NOT NULL,
            target_id BIGINT NOT NULL,
            direction TEXT NOT NULL CHECK(direction IN ('interested', 'passed')),
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            UNIQUE(actor_id, target_id)
        );`,
		`CREATE TABLE IF NOT EXISTS matches (
            id BIGSERIAL PRIMARY KEY,
            user1_id BIGINT NOT NULL,
            user2_id BIGINT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            UNIQUE(user1_id, user2_id),
            CHECK(user1_id < user2_id)
        );`,
		`CREATE TABLE IF NOT EXISTS messages (
            id BIGSERIAL PRIMARY KEY,
            match_id BIGINT NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
            sender_id BIGINT NOT NULL,
            content TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE INDEX IF NOT EXISTS idx_messages_match_time ON messages (match_id, created_at, id);`,
		`CREATE INDEX IF NOT EXISTS idx_matches_user1 ON matches (user1_id);`,
		`CREATE INDEX IF NOT EXISTS idx_matches_user2 ON matches (user2_id);`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}
