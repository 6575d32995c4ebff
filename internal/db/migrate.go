package db

import (
	"context"

	"github.com/jmoiron/sqlx"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY,
    username TEXT UNIQUE NOT NULL,
    email TEXT UNIQUE NOT NULL,
    password_hash TEXT NOT NULL,
    is_active BOOLEAN NOT NULL DEFAULT true,
    is_email_verified BOOLEAN NOT NULL DEFAULT false,
    verification_token TEXT,
    verification_token_expires TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS records (
    id UUID PRIMARY KEY,
    user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    type TEXT NOT NULL CHECK (type IN ('mood', 'spark', 'thought')),
    content TEXT NOT NULL,
    audio_url TEXT,
    emotion_analysis JSONB,
    keywords JSONB,
    theme_cluster TEXT,
    color_hex TEXT,
    position_data JSONB,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_records_user_created ON records (user_id, created_at);
CREATE INDEX IF NOT EXISTS idx_records_user_type ON records (user_id, type);
CREATE INDEX IF NOT EXISTS idx_users_verification_token ON users (verification_token);
`

// SQLite runs one statement per Exec in some drivers; keep them separate.
var sqliteSchema = []string{
	`PRAGMA foreign_keys = ON`,
	`CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    username TEXT UNIQUE NOT NULL,
    email TEXT UNIQUE NOT NULL,
    password_hash TEXT NOT NULL,
    is_active BOOLEAN NOT NULL DEFAULT 1,
    is_email_verified BOOLEAN NOT NULL DEFAULT 0,
    verification_token TEXT,
    verification_token_expires DATETIME,
    created_at DATETIME NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS records (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    type TEXT NOT NULL CHECK (type IN ('mood', 'spark', 'thought')),
    content TEXT NOT NULL,
    audio_url TEXT,
    emotion_analysis TEXT,
    keywords TEXT,
    theme_cluster TEXT,
    color_hex TEXT,
    position_data TEXT,
    created_at DATETIME NOT NULL,
    updated_at DATETIME
)`,
	`CREATE INDEX IF NOT EXISTS idx_records_user_created ON records (user_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_records_user_type ON records (user_id, type)`,
	`CREATE INDEX IF NOT EXISTS idx_users_verification_token ON users (verification_token)`,
}

// RunMigrations creates the schema if it does not exist. It is safe to run on every start.
func RunMigrations(db *sqlx.DB) error {
	ctx := context.Background()
	if IsSQLite(db) {
		for _, stmt := range sqliteSchema {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	}
	_, err := db.ExecContext(ctx, postgresSchema)
	return err
}
