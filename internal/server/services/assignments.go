package services

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/dmitrijs2005/classroom/internal/common"
	"github.com/dmitrijs2005/classroom/internal/logging"
	"github.com/dmitrijs2005/classroom/internal/server/cache"
	"github.com/dmitrijs2005/classroom/internal/server/models"
	"github.com/dmitrijs2005/classroom/internal/server/repositories/repomanager"
)

type AssignmentInput struct {
	ClassroomID int64
	Title       string
	Description string
	Deadline    time.Time
}

type AssignmentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cache       cache.Cache
	logger      logging.Logger
}

func NewAssignmentService(db *sql.DB, m repomanager.RepositoryManager, c cache.Cache, logger logging.Logger) *AssignmentService {
	return &AssignmentService{db: db, repomanager: m, cache: c, logger: logger.With("module", "assignment_service")}
}

// Create adds an assignment to a class owned by teacherID.
func (s *AssignmentService) Create(ctx context.Context, teacherID string, in AssignmentInput) (*models.Assignment, error) {
	if in.Deadline.IsZero() {
		return nil, common.NewValidationError("Deadline is required")
	}

	c, err := s.repomanager.Classrooms(s.db).GetByID(ctx, in.ClassroomID)
	if err != nil {
		return nil, err
	}
	if c.TeacherID != teacherID {
		return nil, common.ErrorForbidden
	}

	a, err := s.repomanager.Assignments(s.db).Create(ctx, &models.Assignment{
		ClassroomID: in.ClassroomID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Deadline:    in.Deadline.UTC(),
	})
	if err != nil {
		return nil, err
	}
	a.ClassName = c.Name

	invalidate(ctx, s.cache, s.logger, teacherDashboardKey(teacherID))
	return a, nil
}

func (s *AssignmentService) ListForTeacher(ctx context.Context, teacherID string) ([]*models.Assignment, error) {
	return s.repomanager.Assignments(s.db).ListByTeacher(ctx, teacherID)
}

func (s *AssignmentService) ListForStudent(ctx context.Context, studentID string) ([]*models.Assignment, error) {
	return s.repomanager.Assignments(s.db).ListByStudent(ctx, studentID)
}
