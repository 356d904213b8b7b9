package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/classroom/internal/logging"
	"github.com/dmitrijs2005/classroom/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeacherDashboard_ComputesAndCaches(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := newFakeRepoManager()
	rm.classrooms = newFakeClassrooms(&models.Classroom{ID: 3, TeacherID: "t1"}, &models.Classroom{ID: 4, TeacherID: "t1"})
	rm.classrooms.enrolled[enrollKey{3, "s1"}] = true
	rm.classrooms.enrolled[enrollKey{4, "s1"}] = true
	rm.classrooms.enrolled[enrollKey{4, "s2"}] = true
	rm.assignments.count = 2
	rm.submissions.count = 7

	created := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)
	rm.assignments.byTeacher = []*models.Assignment{{Title: "Lab 1", ClassName: "Go 101", CreatedAt: created}}
	rm.submissions.byTeacher = []*models.Submission{{StudentName: "Sam", AssignmentTitle: "Lab 1", SubmittedAt: created}}

	mc := newMemCache()
	s := NewDashboardService(db, rm, mc, time.Minute, logging.Nop{})

	d, err := s.Teacher(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, 2, d.TotalClasses)
	assert.Equal(t, 2, d.TotalStudents)
	assert.Equal(t, 2, d.TotalAssignments)
	assert.Equal(t, 7, d.TotalSubmissions)
	assert.Equal(t, []models.ActivityEntry{{Type: "submission", Title: "Sam submitted Lab 1", Time: created}}, d.RecentSubmissions)
	assert.Equal(t, []models.ActivityEntry{{Type: "assignment", Title: "Lab 1 (Go 101)", Time: created}}, d.RecentAssignments)
	assert.Contains(t, mc.items, "dashboard:teacher:t1")

	rm.submissions.count = 100
	cached, err := s.Teacher(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, 7, cached.TotalSubmissions)
}

func TestTeacherDashboard_CacheErrorFallsThrough(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := newFakeRepoManager()
	rm.submissions.count = 4
	mc := newMemCache()
	mc.getErr = errBoom

	s := NewDashboardService(db, rm, mc, time.Minute, logging.Nop{})
	d, err := s.Teacher(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, 4, d.TotalSubmissions)
}

func TestTeacherDashboard_RepoError(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := newFakeRepoManager()
	rm.assignments.err = errBoom

	s := NewDashboardService(db, rm, newMemCache(), 0, logging.Nop{})
	_, err := s.Teacher(context.Background(), "t1")
	require.ErrorIs(t, err, errBoom)
}

func TestStudentDashboard(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := newFakeRepoManager()
	rm.classrooms = newFakeClassrooms(&models.Classroom{ID: 3})
	rm.classrooms.enrolled[enrollKey{3, "s1"}] = true

	now := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)
	rm.assignments.byStudent = []*models.Assignment{
		{ID: 1, Deadline: now.Add(-time.Hour)},
		{ID: 2, Deadline: now.Add(time.Hour), Submitted: true},
		{ID: 3, Deadline: now.Add(2 * time.Hour)},
	}
	rm.submissions.byStudent = []*models.Submission{
		{ID: 1, Status: models.SubmissionReviewed},
		{ID: 2, Status: models.SubmissionSubmitted},
	}

	mc := newMemCache()
	s := NewDashboardService(db, rm, mc, 0, logging.Nop{})
	s.now = func() time.Time { return now }

	d, err := s.Student(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, d.JoinedClasses)
	assert.Equal(t, 2, d.PendingAssignments)
	assert.Equal(t, 2, d.Submitted)
	assert.Equal(t, 1, d.Graded)
	require.Len(t, d.Upcoming, 1)
	assert.Equal(t, int64(3), d.Upcoming[0].ID)
	assert.Empty(t, mc.items, "zero ttl disables caching")
}
