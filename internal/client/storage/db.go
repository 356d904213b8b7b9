// Package storage opens the client's local SQLite database and brings its
// schema up to date.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/classroom/internal/client/migrations"
	"github.com/dmitrijs2005/classroom/internal/client/repositories/localstorage"
	"github.com/dmitrijs2005/classroom/internal/filex"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Repositories bundles the client-side repositories over one database.
type Repositories struct {
	DB           *sql.DB
	LocalStorage localstorage.Repository
}

func (r *Repositories) Close() error {
	return r.DB.Close()
}

// RunMigrations applies the embedded SQLite migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	return gooseUpContext(ctx, db, ".")
}

// Open opens (creating if needed) the database at path. ":memory:" is
// accepted for tests and throwaway sessions.
func Open(ctx context.Context, path string) (*Repositories, error) {
	dsn := path
	if path != ":memory:" {
		abs, err := filex.EnsureParentDir(path)
		if err != nil {
			return nil, err
		}
		dsn = abs
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// one connection keeps :memory: databases alive and serialises writers
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}

	return &Repositories{
		DB:           db,
		LocalStorage: localstorage.NewSQLiteRepository(db),
	}, nil
}
