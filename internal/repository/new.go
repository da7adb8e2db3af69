package repository

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	chat_id       INTEGER NOT NULL UNIQUE,
	is_authorized INTEGER NOT NULL DEFAULT 0,
	created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_users_chat_id ON users(chat_id);

CREATE TABLE IF NOT EXISTS transcriptions (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id            INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	file_name          TEXT NOT NULL,
	file_type          TEXT NOT NULL,
	duration_seconds   REAL,
	transcription_text TEXT,
	analysis_text      TEXT,
	cost_rubles        REAL,
	created_at         TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_transcriptions_user_id ON transcriptions(user_id);
`

type implRepository struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at path and applies the
// schema.
func New(path string) (Repository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &implRepository{db: db}, nil
}

func (r *implRepository) Close() error {
	return r.db.Close()
}
