package models

import (
	"context"
	"log/slog"

	"github.com/vdellis/inkpost/internal/query"
)

// TableSchema pairs a table name with its column definition. Tables are
// provisioned in slice order so foreign keys always reference tables that
// already exist.
type TableSchema struct {
	Name   string
	Schema string
}

var Tables = []TableSchema{
	{"users", `
		id BIGSERIAL PRIMARY KEY,
		username VARCHAR(50) UNIQUE NOT NULL,
		email VARCHAR(255) UNIQUE NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		first_name VARCHAR(100),
		last_name VARCHAR(100),
		role VARCHAR(20) NOT NULL DEFAULT 'user',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	`},
	{"posts", `
		id BIGSERIAL PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		content TEXT NOT NULL,
		author VARCHAR(255) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'draft',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	`},
	{"categories", `
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL,
		description TEXT,
		slug VARCHAR(100) UNIQUE NOT NULL,
		parent_id BIGINT REFERENCES categories(id) ON DELETE SET NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	`},
	{"comments", `
		id BIGSERIAL PRIMARY KEY,
		post_id BIGINT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		user_id BIGINT REFERENCES users(id) ON DELETE SET NULL,
		author_name VARCHAR(100),
		author_email VARCHAR(255),
		content TEXT NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	`},
	{"tags", `
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(50) NOT NULL,
		slug VARCHAR(50) UNIQUE NOT NULL,
		description TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	`},
	{"post_tags", `
		id BIGSERIAL PRIMARY KEY,
		post_id BIGINT NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
		tag_id BIGINT NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (post_id, tag_id)
	`},
	{"customers", `
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		email VARCHAR(255) UNIQUE NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	`},
	{"settings", `
		id BIGSERIAL PRIMARY KEY,
		setting_key VARCHAR(100) UNIQUE NOT NULL,
		setting_value TEXT,
		setting_type VARCHAR(20) NOT NULL DEFAULT 'string',
		description TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	`},
}

// writableColumns lists, per table, the columns a request payload may set.
// The generic handlers filter request bodies against these lists, so only
// schema-derived names ever appear in generated column lists or SET clauses.
var writableColumns = map[string][]string{
	"posts":      {"title", "content", "author", "status"},
	"users":      {"username", "email", "password_hash", "first_name", "last_name", "role", "is_active"},
	"customers":  {"name", "email"},
	"comments":   {"post_id", "user_id", "author_name", "author_email", "content", "status"},
	"tags":       {"name", "slug", "description"},
	"categories": {"name", "description", "slug", "parent_id"},
}

// WritableColumns returns the allowed payload columns for a table.
func WritableColumns(table string) []string {
	return writableColumns[table]
}

// EnsureTables provisions every known table at process start. Failures are
// logged per table and do not stop the remaining tables, matching the
// best-effort startup provisioning of the API.
func EnsureTables(ctx context.Context, store *query.Store, log *slog.Logger) {
	for _, t := range Tables {
		if err := store.CreateTable(ctx, t.Name, t.Schema); err != nil {
			log.Error("table provisioning failed", "table", t.Name, "err", err)
			continue
		}
		log.Info("table ready", "table", t.Name)
	}
}
