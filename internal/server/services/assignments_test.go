package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/classroom/internal/common"
	"github.com/dmitrijs2005/classroom/internal/logging"
	"github.com/dmitrijs2005/classroom/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignmentCreate(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := newFakeRepoManager()
	rm.classrooms = newFakeClassrooms(&models.Classroom{ID: 3, TeacherID: "t1", Name: "Go 101"})
	mc := newMemCache()
	s := NewAssignmentService(db, rm, mc, logging.Nop{})
	ctx := context.Background()

	deadline := time.Date(2026, 11, 1, 12, 0, 0, 0, time.FixedZone("EET", 2*3600))
	a, err := s.Create(ctx, "t1", AssignmentInput{ClassroomID: 3, Title: " Lab 1 ", Description: "CLI", Deadline: deadline})
	require.NoError(t, err)
	assert.Equal(t, "Lab 1", a.Title)
	assert.Equal(t, "Go 101", a.ClassName)
	assert.Equal(t, time.UTC, a.Deadline.Location())
	assert.True(t, a.Deadline.Equal(deadline))
	assert.Equal(t, []string{"dashboard:teacher:t1"}, mc.deleted)

	_, err = s.Create(ctx, "t2", AssignmentInput{ClassroomID: 3, Title: "x", Deadline: deadline})
	require.ErrorIs(t, err, common.ErrorForbidden)

	_, err = s.Create(ctx, "t1", AssignmentInput{ClassroomID: 9, Title: "x", Deadline: deadline})
	require.ErrorIs(t, err, common.ErrorNotFound)

	_, err = s.Create(ctx, "t1", AssignmentInput{ClassroomID: 3, Title: "x"})
	require.True(t, common.IsValidation(err))
}

func TestAssignmentLists(t *testing.T) {
	db, _ := newSQLMockDB(t)
	rm := newFakeRepoManager()
	rm.assignments.byTeacher = []*models.Assignment{{ID: 1}}
	rm.assignments.byStudent = []*models.Assignment{{ID: 2, Submitted: true}}
	s := NewAssignmentService(db, rm, newMemCache(), logging.Nop{})

	got, err := s.ListForTeacher(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, rm.assignments.byTeacher, got)

	got, err = s.ListForStudent(context.Background(), "s1")
	require.NoError(t, err)
	assert.True(t, got[0].Submitted)
}
