package assignments

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

func (r *PostgresRepository) Create(ctx context.Context, a *models.Assignment) (*models.Assignment, error) {
	query := `
		INSERT INTO assignments (classroom_id, title, description, deadline)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, a.ClassroomID, a.Title, a.Description, a.Deadline).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Assignment, error) {
	query := `
		SELECT a.id, a.classroom_id, c.name, a.title, a.description, a.deadline, a.created_at
		FROM assignments a
		JOIN classrooms c ON c.id = a.classroom_id
		WHERE a.id = $1
	`
	a := &models.Assignment{}
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&a.ID, &a.ClassroomID, &a.ClassName, &a.Title, &a.Description, &a.Deadline, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

const selectWithCounts = `
	SELECT a.id, a.classroom_id, c.name, a.title, a.description, a.deadline, a.created_at,
	       (SELECT count(*) FROM submissions s WHERE s.assignment_id = a.id)
	FROM assignments a
	JOIN classrooms c ON c.id = a.classroom_id
	WHERE c.teacher_id = $1
`

func (r *PostgresRepository) ListByTeacher(ctx context.Context, teacherID string) ([]*models.Assignment, error) {
	return r.listWithCounts(ctx, selectWithCounts+`ORDER BY a.deadline DESC`, teacherID)
}

func (r *PostgresRepository) Recent(ctx context.Context, teacherID string, limit int) ([]*models.Assignment, error) {
	return r.listWithCounts(ctx, selectWithCounts+`ORDER BY a.created_at DESC LIMIT $2`, teacherID, limit)
}

func (r *PostgresRepository) listWithCounts(ctx context.Context, query string, args ...any) ([]*models.Assignment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Assignment, 0)
	for rows.Next() {
		a := &models.Assignment{}
		if err := rows.Scan(&a.ID, &a.ClassroomID, &a.ClassName, &a.Title, &a.Description, &a.Deadline, &a.CreatedAt, &a.SubmissionCount); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) ListByStudent(ctx context.Context, studentID string) ([]*models.Assignment, error) {
	query := `
		SELECT a.id, a.classroom_id, c.name, a.title, a.description, a.deadline, a.created_at,
		       EXISTS (SELECT 1 FROM submissions s WHERE s.assignment_id = a.id AND s.student_id = $1)
		FROM assignments a
		JOIN classrooms c ON c.id = a.classroom_id
		JOIN enrollments e ON e.classroom_id = c.id AND e.student_id = $1
		ORDER BY a.deadline
	`
	rows, err := r.db.QueryContext(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Assignment, 0)
	for rows.Next() {
		a := &models.Assignment{}
		if err := rows.Scan(&a.ID, &a.ClassroomID, &a.ClassName, &a.Title, &a.Description, &a.Deadline, &a.CreatedAt, &a.Submitted); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) CountByTeacher(ctx context.Context, teacherID string) (int, error) {
	query := `
		SELECT count(*)
		FROM assignments a
		JOIN classrooms c ON c.id = a.classroom_id
		WHERE c.teacher_id = $1
	`
	var n int
	if err := r.db.QueryRowContext(ctx, query, teacherID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
