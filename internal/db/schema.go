package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Constraint names are matched by the postgres repos when translating
// violations, so keep them in sync with internal/repo/postgres/errors.go.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGSERIAL PRIMARY KEY,
		name          TEXT NOT NULL,
		email         TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		role          TEXT NOT NULL DEFAULT 'BLOGGER',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT users_name_key UNIQUE (name),
		CONSTRAINT users_email_key UNIQUE (email),
		CONSTRAINT users_role_check CHECK (role IN ('ADMIN', 'BLOGGER'))
	)`,
	`CREATE TABLE IF NOT EXISTS posts (
		id         BIGSERIAL PRIMARY KEY,
		title      TEXT NOT NULL,
		content    TEXT NOT NULL,
		hidden     BOOLEAN NOT NULL DEFAULT FALSE,
		author_id  BIGINT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT posts_title_key UNIQUE (title),
		CONSTRAINT posts_author_id_fkey FOREIGN KEY (author_id) REFERENCES users (id) ON DELETE CASCADE
	)`,
	// content can exceed the btree tuple limit, so uniqueness is on its hash.
	`CREATE UNIQUE INDEX IF NOT EXISTS posts_content_key ON posts (md5(content))`,
	`CREATE INDEX IF NOT EXISTS posts_author_id_idx ON posts (author_id)`,
}

// EnsureSchema creates the tables the service needs. It is idempotent.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for i, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}

	return nil
}
