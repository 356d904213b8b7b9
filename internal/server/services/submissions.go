package services

import (
	"context"
	"database/sql"
	"strings"

	"github.com/dmitrijs2005/classroom/internal/common"
	"github.com/dmitrijs2005/classroom/internal/logging"
	"github.com/dmitrijs2005/classroom/internal/server/cache"
	"github.com/dmitrijs2005/classroom/internal/server/models"
	"github.com/dmitrijs2005/classroom/internal/server/repositories/repomanager"
)

// Result is a reviewed submission with the analysis of its repository.
type Result struct {
	Submission *models.Submission
	Analysis   *models.Analysis
}

type SubmissionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cache       cache.Cache
	logger      logging.Logger
}

func NewSubmissionService(db *sql.DB, m repomanager.RepositoryManager, c cache.Cache, logger logging.Logger) *SubmissionService {
	return &SubmissionService{db: db, repomanager: m, cache: c, logger: logger.With("module", "submission_service")}
}

// Submit records the student's repository for an assignment of one of their
// classes. Resubmitting replaces the earlier answer.
func (s *SubmissionService) Submit(ctx context.Context, studentID string, assignmentID int64, repoURL string) (*models.Submission, error) {
	repoURL = strings.TrimSpace(repoURL)
	if err := common.ValidateRepoURL(repoURL); err != nil {
		return nil, err
	}

	a, err := s.repomanager.Assignments(s.db).GetByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	classes := s.repomanager.Classrooms(s.db)
	ok, err := classes.IsEnrolled(ctx, a.ClassroomID, studentID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.ErrNotEnrolled
	}

	sub, err := s.repomanager.Submissions(s.db).Upsert(ctx, &models.Submission{
		AssignmentID: assignmentID,
		StudentID:    studentID,
		RepoURL:      repoURL,
	})
	if err != nil {
		return nil, err
	}
	sub.AssignmentTitle = a.Title
	sub.ClassroomID = a.ClassroomID

	keys := []string{studentDashboardKey(studentID)}
	if c, err := classes.GetByID(ctx, a.ClassroomID); err == nil {
		keys = append(keys, teacherDashboardKey(c.TeacherID))
	}
	invalidate(ctx, s.cache, s.logger, keys...)
	return sub, nil
}

func (s *SubmissionService) ListForTeacher(ctx context.Context, teacherID string, assignmentID int64) ([]*models.Submission, error) {
	return s.repomanager.Submissions(s.db).ListByTeacher(ctx, teacherID, assignmentID)
}

func (s *SubmissionService) ListForStudent(ctx context.Context, studentID string) ([]*models.Submission, error) {
	return s.repomanager.Submissions(s.db).ListByStudent(ctx, studentID)
}

// Grade stores the grade and feedback and marks the submission reviewed.
// Only the teacher owning the class may grade.
func (s *SubmissionService) Grade(ctx context.Context, teacherID string, submissionID int64, grade, feedback string) (*models.Submission, error) {
	repo := s.repomanager.Submissions(s.db)
	sub, err := repo.GetByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	c, err := s.repomanager.Classrooms(s.db).GetByID(ctx, sub.ClassroomID)
	if err != nil {
		return nil, err
	}
	if c.TeacherID != teacherID {
		return nil, common.ErrorForbidden
	}

	grade = strings.TrimSpace(grade)
	feedback = strings.TrimSpace(feedback)
	at, err := repo.Grade(ctx, submissionID, grade, feedback)
	if err != nil {
		return nil, err
	}
	sub.Grade = &grade
	sub.Feedback = feedback
	sub.Status = models.SubmissionReviewed
	sub.GradedAt = &at

	invalidate(ctx, s.cache, s.logger, studentDashboardKey(sub.StudentID))
	return sub, nil
}

// Results lists the student's reviewed submissions with the simulated
// analysis of each repository.
func (s *SubmissionService) Results(ctx context.Context, studentID string) ([]Result, error) {
	subs, err := s.repomanager.Submissions(s.db).ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	out := make([]Result, 0, len(subs))
	for _, sub := range subs {
		if sub.Status != models.SubmissionReviewed {
			continue
		}
		out = append(out, Result{Submission: sub, Analysis: Simulate(sub.RepoURL, sub.SubmittedAt)})
	}
	return out, nil
}
