package database

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq" // Postgres driver
)

// NewDBConnection opens a pooled connection and proves it with a ping.
func NewDBConnection(connString string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connString)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	return db, nil
}

// InitLeadSchema creates the lead table and its identity index if they do
// not exist yet. Startup treats a failure here as degraded, not fatal —
// quoting works without the lead store.
func InitLeadSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS gtq_leads (
			id               TEXT PRIMARY KEY,
			email            TEXT NOT NULL,
			phone            TEXT NOT NULL,
			name             TEXT,
			stage            TEXT NOT NULL,           -- BROWSING | COMPLETED
			category         TEXT,
			mode             TEXT,
			selections       JSONB,
			quantity         INT,
			cash             INT,
			credit           INT,
			page             TEXT,
			consent_email    BOOLEAN NOT NULL DEFAULT FALSE,
			followup_due_at  TIMESTAMPTZ,
			followup_sent_at TIMESTAMPTZ,
			followup_error   TEXT,
			created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		CREATE UNIQUE INDEX IF NOT EXISTS gtq_leads_email_phone_uidx
		ON gtq_leads (email, phone)
	`)
	return err
}
