package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/classroom/internal/dbx"
	"github.com/dmitrijs2005/classroom/internal/server/repositories/analyses"
	"github.com/dmitrijs2005/classroom/internal/server/repositories/assignments"
	"github.com/dmitrijs2005/classroom/internal/server/repositories/classrooms"
	"github.com/dmitrijs2005/classroom/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/classroom/internal/server/repositories/submissions"
	"github.com/dmitrijs2005/classroom/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to a connection or a
// transaction, so services can group writes with dbx.WithTx.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Classrooms(db dbx.DBTX) classrooms.Repository
	Assignments(db dbx.DBTX) assignments.Repository
	Submissions(db dbx.DBTX) submissions.Repository
	Analyses(db dbx.DBTX) analyses.Repository
}
