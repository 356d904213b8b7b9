package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/classroom/internal/common"
	"github.com/dmitrijs2005/classroom/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

const insertQ = `(?s)^INSERT\s+INTO\s+users\s*\(name,\s*email,\s*password_hash,\s*role\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)\s*RETURNING\s+id,\s*created_at\s*$`

func TestCreate_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	now := time.Now()
	mock.ExpectQuery(insertQ).
		WithArgs("Tess", "t@school.org", []byte("hash"), common.RoleTeacher).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("u-1", now))

	got, err := repo.Create(context.Background(), &models.User{Name: "Tess", Email: "t@school.org", PasswordHash: []byte("hash"), Role: common.RoleTeacher})
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.ID)
	assert.Equal(t, now, got.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(insertQ).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	_, err := repo.Create(context.Background(), &models.User{Email: "t@school.org"})
	require.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(insertQ).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.User{})
	require.Error(t, err)
	assert.Regexp(t, regexp.MustCompile(`db error: .*db down`), err.Error())
}

func TestGetByEmail(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	q := `(?s)^SELECT\s+id,\s*name,\s*email,\s*password_hash,\s*role,\s*created_at\s+FROM\s+users\s+WHERE\s+email\s*=\s*\$1\s*$`
	now := time.Now()
	mock.ExpectQuery(q).
		WithArgs("s@school.org").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "role", "created_at"}).
			AddRow("u-2", "Sam", "s@school.org", []byte("h"), "student", now))

	got, err := repo.GetByEmail(context.Background(), "s@school.org")
	require.NoError(t, err)
	assert.Equal(t, &models.User{ID: "u-2", Name: "Sam", Email: "s@school.org", PasswordHash: []byte("h"), Role: common.RoleStudent, CreatedAt: now}, got)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	q := `(?s)^SELECT\s+.*\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1\s*$`
	mock.ExpectQuery(q).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "ghost")
	require.ErrorIs(t, err, common.ErrorNotFound)
}
