package analyses

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/classroom/internal/common"
	"github.com/dmitrijs2005/classroom/internal/server/models"
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

func TestCreate_StoresLanguagesAsJSON(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	updated := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	now := time.Now()
	a := &models.Analysis{
		UserID: "u1", RepoURL: "https://github.com/acme/app", RepoName: "app",
		LinesOfCode: 1200, Commits: 80, Contributors: 3, LastUpdated: updated,
		Languages: []models.Language{{Name: "Go", Percentage: 100, Color: "#00ADD8"}},
		Branches:  2, Issues: 1, Stars: 5, Forks: 0, TestCoverage: 71, CodeQuality: "B",
	}

	mock.ExpectQuery(`(?s)INSERT\s+INTO\s+analyses.*RETURNING\s+id,\s*created_at`).
		WithArgs("u1", "https://github.com/acme/app", "app", 1200, 80, 3, updated,
			[]byte(`[{"name":"Go","percentage":100,"color":"#00ADD8"}]`), 2, 1, 5, 0, 71, "B").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(4), now))

	got, err := repo.Create(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, int64(4), got.ID)
	assert.Equal(t, now, got.CreatedAt)
}

func TestGetByID(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	q := `(?s)FROM\s+analyses\s+WHERE\s+id\s*=\s*\$1`
	now := time.Now()
	cols := []string{"id", "user_id", "repo_url", "repo_name", "lines_of_code", "commits", "contributors", "last_updated",
		"languages", "branches", "issues", "stars", "forks", "test_coverage", "code_quality", "archive_key", "created_at"}
	mock.ExpectQuery(q).WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(int64(4), "u1", "https://github.com/acme/app", "app", 1200, 80, 3, now,
			[]byte(`[{"name":"Go","percentage":100,"color":"#00ADD8"}]`), 2, 1, 5, 0, 71, "B", "reports/4.json", now))
	mock.ExpectQuery(q).WithArgs(int64(5)).WillReturnError(sql.ErrNoRows)

	a, err := repo.GetByID(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, []models.Language{{Name: "Go", Percentage: 100, Color: "#00ADD8"}}, a.Languages)
	assert.Equal(t, "reports/4.json", a.ArchiveKey)

	_, err = repo.GetByID(context.Background(), 5)
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestUpdateArchiveKey(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`UPDATE\s+analyses\s+SET\s+archive_key\s*=\s*\$2\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs(int64(4), "reports/4.json").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateArchiveKey(context.Background(), 4, "reports/4.json"))
}
