package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/classroom/internal/common"
	"github.com/dmitrijs2005/classroom/internal/dbx"
	"github.com/dmitrijs2005/classroom/internal/logging"
	"github.com/dmitrijs2005/classroom/internal/server/cache"
	"github.com/dmitrijs2005/classroom/internal/server/gradebook"
	"github.com/dmitrijs2005/classroom/internal/server/models"
	"github.com/dmitrijs2005/classroom/internal/server/repositories/repomanager"
)

// joinCodeAttempts bounds retries on join code collisions.
const joinCodeAttempts = 5

// makeJoinCode is a seam for tests.
var makeJoinCode = common.MakeJoinCode

// RosterImport reports an XLSX roster upload.
type RosterImport struct {
	Enrolled int
	Skipped  []string
}

type ClassroomService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cache       cache.Cache
	logger      logging.Logger
}

func NewClassroomService(db *sql.DB, m repomanager.RepositoryManager, c cache.Cache, logger logging.Logger) *ClassroomService {
	return &ClassroomService{db: db, repomanager: m, cache: c, logger: logger.With("module", "classroom_service")}
}

// Create stores a new class with a fresh join code.
func (s *ClassroomService) Create(ctx context.Context, teacherID, name, description string) (*models.Classroom, error) {
	repo := s.repomanager.Classrooms(s.db)

	for range joinCodeAttempts {
		code, err := makeJoinCode(common.JoinCodeLength)
		if err != nil {
			return nil, common.ErrorInternal
		}

		c, err := repo.Create(ctx, &models.Classroom{
			TeacherID:   teacherID,
			Name:        strings.TrimSpace(name),
			Description: strings.TrimSpace(description),
			Code:        code,
		})
		if errors.Is(err, common.ErrorAlreadyExists) {
			s.logger.Debug(ctx, "join code collision, retrying", "code", code)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("error creating classroom: %w", err)
		}

		invalidate(ctx, s.cache, s.logger, teacherDashboardKey(teacherID))
		return c, nil
	}
	return nil, fmt.Errorf("error creating classroom: no free join code after %d attempts", joinCodeAttempts)
}

func (s *ClassroomService) ListForTeacher(ctx context.Context, teacherID string) ([]*models.Classroom, error) {
	return s.repomanager.Classrooms(s.db).ListByTeacher(ctx, teacherID)
}

func (s *ClassroomService) ListForStudent(ctx context.Context, studentID string) ([]*models.Classroom, error) {
	return s.repomanager.Classrooms(s.db).ListByStudent(ctx, studentID)
}

// Join enrolls the student in the class with the given join code.
func (s *ClassroomService) Join(ctx context.Context, studentID, code string) (*models.Classroom, error) {
	repo := s.repomanager.Classrooms(s.db)

	c, err := repo.GetByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidJoinCode
		}
		return nil, err
	}

	if err := repo.Enroll(ctx, c.ID, studentID); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrAlreadyJoined
		}
		return nil, err
	}
	c.StudentCount++

	invalidate(ctx, s.cache, s.logger, teacherDashboardKey(c.TeacherID), studentDashboardKey(studentID))
	return c, nil
}

// owned loads the class and checks that teacherID owns it.
func (s *ClassroomService) owned(ctx context.Context, db dbx.DBTX, teacherID string, classID int64) (*models.Classroom, error) {
	c, err := s.repomanager.Classrooms(db).GetByID(ctx, classID)
	if err != nil {
		return nil, err
	}
	if c.TeacherID != teacherID {
		return nil, common.ErrorForbidden
	}
	return c, nil
}

func (s *ClassroomService) Students(ctx context.Context, teacherID string, classID int64) ([]*models.Enrollment, error) {
	if _, err := s.owned(ctx, s.db, teacherID, classID); err != nil {
		return nil, err
	}
	return s.repomanager.Classrooms(s.db).Students(ctx, classID)
}

func (s *ClassroomService) RemoveStudent(ctx context.Context, teacherID string, classID int64, studentID string) error {
	if _, err := s.owned(ctx, s.db, teacherID, classID); err != nil {
		return err
	}
	if err := s.repomanager.Classrooms(s.db).Unenroll(ctx, classID, studentID); err != nil {
		return err
	}
	invalidate(ctx, s.cache, s.logger, teacherDashboardKey(teacherID), studentDashboardKey(studentID))
	return nil
}

// ImportRoster enrolls the registered students listed in an XLSX roster.
// Unknown emails, non-student accounts and existing members are reported
// as skipped.
func (s *ClassroomService) ImportRoster(ctx context.Context, teacherID string, classID int64, r io.Reader) (*RosterImport, error) {
	entries, err := gradebook.ParseRoster(r)
	if err != nil {
		return nil, common.NewValidationError("Roster must be an XLSX workbook")
	}

	res := &RosterImport{Skipped: make([]string, 0)}
	enrolled := make([]string, 0, len(entries))
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := s.owned(ctx, tx, teacherID, classID); err != nil {
			return err
		}
		users := s.repomanager.Users(tx)
		classes := s.repomanager.Classrooms(tx)

		for _, e := range entries {
			u, err := users.GetByEmail(ctx, e.Email)
			if errors.Is(err, common.ErrorNotFound) || (err == nil && u.Role != common.RoleStudent) {
				res.Skipped = append(res.Skipped, e.Email)
				continue
			}
			if err != nil {
				return err
			}

			err = classes.Enroll(ctx, classID, u.ID)
			if errors.Is(err, common.ErrorAlreadyExists) {
				res.Skipped = append(res.Skipped, e.Email)
				continue
			}
			if err != nil {
				return err
			}
			res.Enrolled++
			enrolled = append(enrolled, u.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	keys := []string{teacherDashboardKey(teacherID)}
	for _, id := range enrolled {
		keys = append(keys, studentDashboardKey(id))
	}
	invalidate(ctx, s.cache, s.logger, keys...)

	s.logger.Info(ctx, "roster imported", "classroom_id", classID, "enrolled", res.Enrolled, "skipped", len(res.Skipped))
	return res, nil
}

// Gradebook renders the class gradebook as an XLSX workbook.
func (s *ClassroomService) Gradebook(ctx context.Context, teacherID string, classID int64) ([]byte, *models.Classroom, error) {
	c, err := s.owned(ctx, s.db, teacherID, classID)
	if err != nil {
		return nil, nil, err
	}

	students, err := s.repomanager.Classrooms(s.db).Students(ctx, classID)
	if err != nil {
		return nil, nil, err
	}
	all, err := s.repomanager.Assignments(s.db).ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, nil, err
	}
	subs, err := s.repomanager.Submissions(s.db).ListByTeacher(ctx, teacherID, 0)
	if err != nil {
		return nil, nil, err
	}

	assignments := make([]*models.Assignment, 0, len(all))
	for _, a := range all {
		if a.ClassroomID == classID {
			assignments = append(assignments, a)
		}
	}
	classSubs := make([]*models.Submission, 0, len(subs))
	for _, sub := range subs {
		if sub.ClassroomID == classID {
			classSubs = append(classSubs, sub)
		}
	}

	data, err := gradebook.Export(c.Name, students, assignments, classSubs)
	if err != nil {
		return nil, nil, fmt.Errorf("error exporting gradebook: %w", err)
	}
	return data, c, nil
}
