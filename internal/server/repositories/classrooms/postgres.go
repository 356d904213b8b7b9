package classrooms

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

const selectClassroom = `
	SELECT c.id, c.teacher_id, u.name, c.name, c.description, c.code, c.created_at,
	       (SELECT count(*) FROM enrollments e WHERE e.classroom_id = c.id)
	FROM classrooms c
	JOIN users u ON u.id = c.teacher_id
`

func scanClassroom(row interface{ Scan(...any) error }) (*models.Classroom, error) {
	c := &models.Classroom{}
	err := row.Scan(&c.ID, &c.TeacherID, &c.TeacherName, &c.Name, &c.Description, &c.Code, &c.CreatedAt, &c.StudentCount)
	return c, err
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.Classroom) (*models.Classroom, error) {
	query := `
		INSERT INTO classrooms (teacher_id, name, description, code)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query, c.TeacherID, c.Name, c.Description, c.Code).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err, "classrooms_code_key") {
			return nil, common.ErrorAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Classroom, error) {
	return r.getOne(ctx, selectClassroom+`WHERE c.id = $1`, id)
}

func (r *PostgresRepository) GetByCode(ctx context.Context, code string) (*models.Classroom, error) {
	return r.getOne(ctx, selectClassroom+`WHERE c.code = $1`, code)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.Classroom, error) {
	c, err := scanClassroom(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) ListByTeacher(ctx context.Context, teacherID string) ([]*models.Classroom, error) {
	return r.list(ctx, selectClassroom+`WHERE c.teacher_id = $1 ORDER BY c.created_at DESC`, teacherID)
}

func (r *PostgresRepository) ListByStudent(ctx context.Context, studentID string) ([]*models.Classroom, error) {
	return r.list(ctx, selectClassroom+`
		WHERE EXISTS (SELECT 1 FROM enrollments e WHERE e.classroom_id = c.id AND e.student_id = $1)
		ORDER BY c.name`, studentID)
}

func (r *PostgresRepository) list(ctx context.Context, query string, arg any) ([]*models.Classroom, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Classroom, 0)
	for rows.Next() {
		c, err := scanClassroom(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Enroll(ctx context.Context, classroomID int64, studentID string) error {
	// A duplicate must not abort an enclosing transaction.
	query := `
		INSERT INTO enrollments (classroom_id, student_id)
		VALUES ($1, $2)
		ON CONFLICT (classroom_id, student_id) DO NOTHING
	`
	res, err := r.db.ExecContext(ctx, query, classroomID, studentID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorAlreadyExists
	}
	return nil
}

func (r *PostgresRepository) Unenroll(ctx context.Context, classroomID int64, studentID string) error {
	query := `
		DELETE FROM enrollments
		WHERE classroom_id = $1 AND student_id = $2
	`
	res, err := r.db.ExecContext(ctx, query, classroomID, studentID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) IsEnrolled(ctx context.Context, classroomID int64, studentID string) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM enrollments WHERE classroom_id = $1 AND student_id = $2)
	`
	var ok bool
	if err := r.db.QueryRowContext(ctx, query, classroomID, studentID).Scan(&ok); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return ok, nil
}

func (r *PostgresRepository) Students(ctx context.Context, classroomID int64) ([]*models.Enrollment, error) {
	query := `
		SELECT e.classroom_id, u.id, u.name, u.email, e.joined_at
		FROM enrollments e
		JOIN users u ON u.id = e.student_id
		WHERE e.classroom_id = $1
		ORDER BY u.name
	`
	rows, err := r.db.QueryContext(ctx, query, classroomID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Enrollment, 0)
	for rows.Next() {
		e := &models.Enrollment{}
		if err := rows.Scan(&e.ClassroomID, &e.StudentID, &e.StudentName, &e.StudentEmail, &e.JoinedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) CountByTeacher(ctx context.Context, teacherID string) (int, int, error) {
	query := `
		SELECT count(DISTINCT c.id), count(DISTINCT e.student_id)
		FROM classrooms c
		LEFT JOIN enrollments e ON e.classroom_id = c.id
		WHERE c.teacher_id = $1
	`
	var classes, students int
	if err := r.db.QueryRowContext(ctx, query, teacherID).Scan(&classes, &students); err != nil {
		return 0, 0, fmt.Errorf("db error: %w", err)
	}
	return classes, students, nil
}
