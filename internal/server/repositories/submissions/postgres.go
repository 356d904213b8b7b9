package submissions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/classroom/internal/common"
	"github.com/dmitrijs2005/classroom/internal/dbx"
	"github.com/dmitrijs2005/classroom/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectSubmission = `
	SELECT s.id, s.assignment_id, s.student_id, s.repo_url, s.status, s.grade, s.feedback,
	       s.submitted_at, s.graded_at, a.title, a.classroom_id, u.name, u.email
	FROM submissions s
	JOIN assignments a ON a.id = s.assignment_id
	JOIN users u ON u.id = s.student_id
`

func scanSubmission(row interface{ Scan(...any) error }) (*models.Submission, error) {
	s := &models.Submission{}
	var grade sql.NullString
	var gradedAt sql.NullTime
	err := row.Scan(&s.ID, &s.AssignmentID, &s.StudentID, &s.RepoURL, &s.Status, &grade, &s.Feedback,
		&s.SubmittedAt, &gradedAt, &s.AssignmentTitle, &s.ClassroomID, &s.StudentName, &s.StudentEmail)
	if err != nil {
		return nil, err
	}
	if grade.Valid {
		s.Grade = &grade.String
	}
	if gradedAt.Valid {
		s.GradedAt = &gradedAt.Time
	}
	return s, nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, s *models.Submission) (*models.Submission, error) {
	query := `
		INSERT INTO submissions (assignment_id, student_id, repo_url, status)
		VALUES ($1, $2, $3, 'submitted')
		ON CONFLICT ON CONSTRAINT submissions_assignment_student_key DO UPDATE
		SET repo_url = EXCLUDED.repo_url, status = 'submitted', grade = NULL, feedback = '',
		    submitted_at = now(), graded_at = NULL
		RETURNING id, status, submitted_at
	`
	err := r.db.QueryRowContext(ctx, query, s.AssignmentID, s.StudentID, s.RepoURL).Scan(&s.ID, &s.Status, &s.SubmittedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	s.Grade = nil
	s.Feedback = ""
	s.GradedAt = nil
	return s, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Submission, error) {
	s, err := scanSubmission(r.db.QueryRowContext(ctx, selectSubmission+`WHERE s.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) ListByTeacher(ctx context.Context, teacherID string, assignmentID int64) ([]*models.Submission, error) {
	query := selectSubmission + `
		JOIN classrooms c ON c.id = a.classroom_id
		WHERE c.teacher_id = $1 AND ($2 = 0 OR s.assignment_id = $2)
		ORDER BY s.submitted_at DESC
	`
	return r.list(ctx, query, teacherID, assignmentID)
}

func (r *PostgresRepository) ListByStudent(ctx context.Context, studentID string) ([]*models.Submission, error) {
	return r.list(ctx, selectSubmission+`WHERE s.student_id = $1 ORDER BY s.submitted_at DESC`, studentID)
}

func (r *PostgresRepository) Recent(ctx context.Context, teacherID string, limit int) ([]*models.Submission, error) {
	query := selectSubmission + `
		JOIN classrooms c ON c.id = a.classroom_id
		WHERE c.teacher_id = $1
		ORDER BY s.submitted_at DESC
		LIMIT $2
	`
	return r.list(ctx, query, teacherID, limit)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.Submission, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Submission, 0)
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Grade(ctx context.Context, id int64, grade, feedback string) (time.Time, error) {
	query := `
		UPDATE submissions
		SET grade = $2, feedback = $3, status = 'reviewed', graded_at = now()
		WHERE id = $1
		RETURNING graded_at
	`
	var at time.Time
	if err := r.db.QueryRowContext(ctx, query, id, grade, feedback).Scan(&at); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, common.ErrorNotFound
		}
		return time.Time{}, fmt.Errorf("db error: %w", err)
	}
	return at, nil
}

func (r *PostgresRepository) CountByTeacher(ctx context.Context, teacherID string) (int, error) {
	query := `
		SELECT count(*)
		FROM submissions s
		JOIN assignments a ON a.id = s.assignment_id
		JOIN classrooms c ON c.id = a.classroom_id
		WHERE c.teacher_id = $1
	`
	var n int
	if err := r.db.QueryRowContext(ctx, query, teacherID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
