package client

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/tuniguard/internal/client/migrations"
	"github.com/dmitrijs2005/tuniguard/internal/dbx"
	"github.com/pressly/goose/v3"
)

// RunMigrations applies the embedded goose migrations to db.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// InitDatabase opens the SQLite file at path and migrates it to the latest
// schema.
func InitDatabase(ctx context.Context, path string) (*sql.DB, error) {
	db, err := dbx.Open(ctx, path)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
