package submissions

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

var submissionCols = []string{
	"id", "assignment_id", "student_id", "repo_url", "status", "grade", "feedback",
	"submitted_at", "graded_at", "title", "classroom_id", "name", "email",
}

func TestUpsert_ResetsGrading(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	now := time.Now()
	mock.ExpectQuery(`(?s)INSERT\s+INTO\s+submissions.*ON\s+CONFLICT\s+ON\s+CONSTRAINT\s+submissions_assignment_student_key\s+DO\s+UPDATE.*grade\s*=\s*NULL.*RETURNING\s+id,\s*status,\s*submitted_at`).
		WithArgs(int64(11), "s1", "https://github.com/sam/lab1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "submitted_at"}).AddRow(int64(5), "submitted", now))

	grade := "A"
	in := &models.Submission{AssignmentID: 11, StudentID: "s1", RepoURL: "https://github.com/sam/lab1", Grade: &grade, Feedback: "old"}
	s, err := repo.Upsert(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, int64(5), s.ID)
	assert.Equal(t, models.SubmissionSubmitted, s.Status)
	assert.Nil(t, s.Grade)
	assert.Empty(t, s.Feedback)
}

func TestGetByID(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	q := `(?s)FROM\s+submissions\s+s\s+JOIN\s+assignments\s+a.*JOIN\s+users\s+u.*WHERE\s+s\.id\s*=\s*\$1`
	now := time.Now()
	mock.ExpectQuery(q).WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows(submissionCols).
			AddRow(int64(5), int64(11), "s1", "https://github.com/sam/lab1", "reviewed", "B+", "Nice", now, now, "Lab 1", int64(3), "Sam", "s@school.org"))
	mock.ExpectQuery(q).WithArgs(int64(6)).
		WillReturnRows(sqlmock.NewRows(submissionCols).
			AddRow(int64(6), int64(11), "s2", "https://github.com/kim/lab1", "submitted", nil, "", now, nil, "Lab 1", int64(3), "Kim", "k@school.org"))
	mock.ExpectQuery(q).WithArgs(int64(7)).WillReturnError(sql.ErrNoRows)

	s, err := repo.GetByID(context.Background(), 5)
	require.NoError(t, err)
	require.NotNil(t, s.Grade)
	assert.Equal(t, "B+", *s.Grade)
	require.NotNil(t, s.GradedAt)
	assert.Equal(t, int64(3), s.ClassroomID)

	s, err = repo.GetByID(context.Background(), 6)
	require.NoError(t, err)
	assert.Nil(t, s.Grade)
	assert.Nil(t, s.GradedAt)

	_, err = repo.GetByID(context.Background(), 7)
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestListByTeacher_FiltersByAssignment(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)WHERE\s+c\.teacher_id\s*=\s*\$1\s+AND\s+\(\$2\s*=\s*0\s+OR\s+s\.assignment_id\s*=\s*\$2\)`).
		WithArgs("t1", int64(11)).
		WillReturnRows(sqlmock.NewRows(submissionCols).
			AddRow(int64(5), int64(11), "s1", "https://github.com/sam/lab1", "submitted", nil, "", time.Now(), nil, "Lab 1", int64(3), "Sam", "s@school.org"))

	list, err := repo.ListByTeacher(context.Background(), "t1", 11)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Sam", list[0].StudentName)
}

func TestListByStudent(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)WHERE\s+s\.student_id\s*=\s*\$1\s+ORDER\s+BY\s+s\.submitted_at\s+DESC`).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows(submissionCols))

	list, err := repo.ListByStudent(context.Background(), "s1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRecent(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)WHERE\s+c\.teacher_id\s*=\s*\$1\s+ORDER\s+BY\s+s\.submitted_at\s+DESC\s+LIMIT\s+\$2`).
		WithArgs("t1", 5).
		WillReturnRows(sqlmock.NewRows(submissionCols))

	_, err := repo.Recent(context.Background(), "t1", 5)
	require.NoError(t, err)
}

func TestGrade(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	q := `(?s)UPDATE\s+submissions\s+SET\s+grade\s*=\s*\$2,\s*feedback\s*=\s*\$3,\s*status\s*=\s*'reviewed'`
	now := time.Now()
	mock.ExpectQuery(q).WithArgs(int64(5), "A", "Great").
		WillReturnRows(sqlmock.NewRows([]string{"graded_at"}).AddRow(now))
	mock.ExpectQuery(q).WithArgs(int64(9), "A", "").WillReturnError(sql.ErrNoRows)

	at, err := repo.Grade(context.Background(), 5, "A", "Great")
	require.NoError(t, err)
	assert.Equal(t, now, at)

	_, err = repo.Grade(context.Background(), 9, "A", "")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestCountByTeacher(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)SELECT\s+count\(\*\)\s+FROM\s+submissions`).WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	n, err := repo.CountByTeacher(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, 12, n)
}
