// Package migrations embeds the schema for the key store's sqlite sidecar
// tables (key records, audit trail, notification outbox) and applies them
// with goose on startup.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed files/*.sql
var schemaFS embed.FS

// Up applies every pending migration. Safe to call on every boot; goose
// tracks applied versions in the database itself.
func Up(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(schemaFS)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "files"); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
