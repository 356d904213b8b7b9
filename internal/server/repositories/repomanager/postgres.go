// Package repomanager provides the PostgreSQL RepositoryManager and applies
// the embedded goose migrations.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/classroom/internal/dbx"
	"github.com/dmitrijs2005/classroom/internal/server/migrations"
	"github.com/dmitrijs2005/classroom/internal/server/repositories/analyses"
	"github.com/dmitrijs2005/classroom/internal/server/repositories/assignments"
	"github.com/dmitrijs2005/classroom/internal/server/repositories/classrooms"
	"github.com/dmitrijs2005/classroom/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/classroom/internal/server/repositories/submissions"
	"github.com/dmitrijs2005/classroom/internal/server/repositories/users"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type PostgresRepositoryManager struct{}

func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return refreshtokens.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Classrooms(db dbx.DBTX) classrooms.Repository {
	return classrooms.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Assignments(db dbx.DBTX) assignments.Repository {
	return assignments.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Submissions(db dbx.DBTX) submissions.Repository {
	return submissions.NewPostgresRepository(db)
}

func (m *PostgresRepositoryManager) Analyses(db dbx.DBTX) analyses.Repository {
	return analyses.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations brings the schema up to the latest embedded migration.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	return gooseUpContext(ctx, db, ".")
}

func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}
