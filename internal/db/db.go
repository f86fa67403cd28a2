package db

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Connect initializes the database connection and runs migrations.
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

func runMigrations(db *sqlx.DB) error {
	migrations := []string{
		// Written by the identity service; this service only reads it.
		`CREATE TABLE IF NOT EXISTS users (
            id SERIAL PRIMARY KEY,
            username TEXT NOT NULL UNIQUE,
            full_name TEXT NOT NULL DEFAULT '',
            is_pro BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMPTZ DEFAULT NOW()
        );`,
		`CREATE TABLE IF NOT EXISTS availability (
            id SERIAL PRIMARY KEY,
            user_id INT NOT NULL,
            day_of_week SMALLINT NOT NULL CHECK (day_of_week BETWEEN 0 AND 6),
            start_time TIME NOT NULL,
            end_time TIME NOT NULL,
            created_at TIMESTAMPTZ DEFAULT NOW(),
            CHECK (start_time < end_time)
        );`,
		`CREATE INDEX IF NOT EXISTS idx_availability_user ON availability (user_id);`,
		`CREATE TABLE IF NOT EXISTS hangout_requests (
            id SERIAL PRIMARY KEY,
            creator_id INT NOT NULL,
            day_of_week SMALLINT NOT NULL CHECK (day_of_week BETWEEN 0 AND 6),
            start_time TIME NOT NULL,
            end_time TIME NOT NULL,
            status TEXT NOT NULL DEFAULT 'pending',
            group_chat_id INT,
            created_at TIMESTAMPTZ DEFAULT NOW()
        );`,
		`CREATE TABLE IF NOT EXISTS hangout_participants (
            id SERIAL PRIMARY KEY,
            hangout_id INT NOT NULL REFERENCES hangout_requests(id) ON DELETE CASCADE,
            user_id INT NOT NULL,
            status TEXT NOT NULL DEFAULT 'pending',
            created_at TIMESTAMPTZ DEFAULT NOW(),
            UNIQUE(hangout_id, user_id)
        );`,
		// The UNIQUE on hangout_id is the guard against two racing
		// last-acceptors each provisioning a chat.
		`CREATE TABLE IF NOT EXISTS group_chats (
            id SERIAL PRIMARY KEY,
            hangout_id INT NOT NULL UNIQUE REFERENCES hangout_requests(id),
            expires_at TIMESTAMPTZ NOT NULL,
            is_permanent BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMPTZ DEFAULT NOW()
        );`,
		`CREATE TABLE IF NOT EXISTS chat_participants (
            chat_id INT NOT NULL REFERENCES group_chats(id) ON DELETE CASCADE,
            user_id INT NOT NULL,
            keep_chat BOOLEAN NOT NULL DEFAULT FALSE,
            joined_at TIMESTAMPTZ DEFAULT NOW(),
            PRIMARY KEY(chat_id, user_id)
        );`,
		`CREATE TABLE IF NOT EXISTS messages (
            id SERIAL PRIMARY KEY,
            chat_id INT NOT NULL REFERENCES group_chats(id) ON DELETE CASCADE,
            sender_id INT NOT NULL,
            content TEXT NOT NULL,
            created_at TIMESTAMPTZ DEFAULT NOW()
        );`,
		`CREATE INDEX IF NOT EXISTS idx_messages_chat ON messages (chat_id, created_at);`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}
	log.Println("database migrations applied")
	return nil
}
