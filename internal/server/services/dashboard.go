package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/classroom/internal/logging"
	"github.com/dmitrijs2005/classroom/internal/server/cache"
	"github.com/dmitrijs2005/classroom/internal/server/models"
	"github.com/dmitrijs2005/classroom/internal/server/repositories/repomanager"
)

// recentLimit is the number of entries per recent activity list.
const recentLimit = 5

// upcomingLimit caps the student's upcoming deadlines.
const upcomingLimit = 5

func teacherDashboardKey(id string) string { return "dashboard:teacher:" + id }
func studentDashboardKey(id string) string { return "dashboard:student:" + id }

// invalidate drops cached entries; failures only cost freshness until the
// TTL runs out.
func invalidate(ctx context.Context, c cache.Cache, logger logging.Logger, keys ...string) {
	if err := c.Delete(ctx, keys...); err != nil {
		logger.Warn(ctx, "cache invalidation failed", "keys", keys, "error", err)
	}
}

type TeacherDashboard struct {
	TotalClasses      int                    `json:"totalClasses"`
	TotalAssignments  int                    `json:"totalAssignments"`
	TotalSubmissions  int                    `json:"totalSubmissions"`
	TotalStudents     int                    `json:"totalStudents"`
	RecentSubmissions []models.ActivityEntry `json:"recentSubmissions"`
	RecentAssignments []models.ActivityEntry `json:"recentAssignments"`
}

type StudentDashboard struct {
	JoinedClasses      int                  `json:"joinedClasses"`
	PendingAssignments int                  `json:"pendingAssignments"`
	Submitted          int                  `json:"submitted"`
	Graded             int                  `json:"graded"`
	Upcoming           []*models.Assignment `json:"upcoming"`
}

// DashboardService assembles dashboards and caches them for ttl.
type DashboardService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cache       cache.Cache
	ttl         time.Duration
	logger      logging.Logger
	now         func() time.Time
}

func NewDashboardService(db *sql.DB, m repomanager.RepositoryManager, c cache.Cache, ttl time.Duration, logger logging.Logger) *DashboardService {
	return &DashboardService{
		db:          db,
		repomanager: m,
		cache:       c,
		ttl:         ttl,
		logger:      logger.With("module", "dashboard_service"),
		now:         time.Now,
	}
}

func (s *DashboardService) Teacher(ctx context.Context, teacherID string) (*TeacherDashboard, error) {
	key := teacherDashboardKey(teacherID)
	if d := new(TeacherDashboard); s.cached(ctx, key, d) {
		return d, nil
	}
	d := &TeacherDashboard{}

	var err error
	if d.TotalClasses, d.TotalStudents, err = s.repomanager.Classrooms(s.db).CountByTeacher(ctx, teacherID); err != nil {
		return nil, err
	}
	assignments := s.repomanager.Assignments(s.db)
	if d.TotalAssignments, err = assignments.CountByTeacher(ctx, teacherID); err != nil {
		return nil, err
	}
	submissions := s.repomanager.Submissions(s.db)
	if d.TotalSubmissions, err = submissions.CountByTeacher(ctx, teacherID); err != nil {
		return nil, err
	}

	subs, err := submissions.Recent(ctx, teacherID, recentLimit)
	if err != nil {
		return nil, err
	}
	d.RecentSubmissions = make([]models.ActivityEntry, 0, len(subs))
	for _, sub := range subs {
		d.RecentSubmissions = append(d.RecentSubmissions, models.ActivityEntry{
			Type:  "submission",
			Title: fmt.Sprintf("%s submitted %s", sub.StudentName, sub.AssignmentTitle),
			Time:  sub.SubmittedAt,
		})
	}

	recent, err := assignments.Recent(ctx, teacherID, recentLimit)
	if err != nil {
		return nil, err
	}
	d.RecentAssignments = make([]models.ActivityEntry, 0, len(recent))
	for _, a := range recent {
		d.RecentAssignments = append(d.RecentAssignments, models.ActivityEntry{
			Type:  "assignment",
			Title: fmt.Sprintf("%s (%s)", a.Title, a.ClassName),
			Time:  a.CreatedAt,
		})
	}

	s.store(ctx, key, d)
	return d, nil
}

func (s *DashboardService) Student(ctx context.Context, studentID string) (*StudentDashboard, error) {
	key := studentDashboardKey(studentID)
	if d := new(StudentDashboard); s.cached(ctx, key, d) {
		return d, nil
	}
	d := &StudentDashboard{}

	classes, err := s.repomanager.Classrooms(s.db).ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	d.JoinedClasses = len(classes)

	assignments, err := s.repomanager.Assignments(s.db).ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	d.Upcoming = make([]*models.Assignment, 0, upcomingLimit)
	for _, a := range assignments {
		if a.Submitted {
			continue
		}
		d.PendingAssignments++
		// ListByStudent orders by deadline.
		if a.Deadline.After(now) && len(d.Upcoming) < upcomingLimit {
			d.Upcoming = append(d.Upcoming, a)
		}
	}

	subs, err := s.repomanager.Submissions(s.db).ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	d.Submitted = len(subs)
	for _, sub := range subs {
		if sub.Status == models.SubmissionReviewed {
			d.Graded++
		}
	}

	s.store(ctx, key, d)
	return d, nil
}

func (s *DashboardService) cached(ctx context.Context, key string, dst any) bool {
	ok, err := s.cache.Get(ctx, key, dst)
	if err != nil {
		s.logger.Warn(ctx, "dashboard cache read failed", "key", key, "error", err)
		return false
	}
	return ok
}

func (s *DashboardService) store(ctx context.Context, key string, v any) {
	if s.ttl <= 0 {
		return
	}
	if err := s.cache.Set(ctx, key, v, s.ttl); err != nil {
		s.logger.Warn(ctx, "dashboard cache write failed", "key", key, "error", err)
	}
}
