package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/classroom/internal/common"
	"github.com/dmitrijs2005/classroom/internal/dbx"
	"github.com/dmitrijs2005/classroom/internal/server/models"
	"github.com/dmitrijs2005/classroom/internal/server/repositories/analyses"
	"github.com/dmitrijs2005/classroom/internal/server/repositories/assignments"
	"github.com/dmitrijs2005/classroom/internal/server/repositories/classrooms"
	"github.com/dmitrijs2005/classroom/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/classroom/internal/server/repositories/submissions"
	"github.com/dmitrijs2005/classroom/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

// --- users ---

type fakeUsers struct {
	byEmail   map[string]*models.User
	nextID    int
	createErr error
	getErr    error
}

func newFakeUsers() *fakeUsers { return &fakeUsers{byEmail: map[string]*models.User{}} }

func (f *fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}
	f.nextID++
	u.ID = "u" + string(rune('0'+f.nextID))
	u.CreatedAt = time.Now()
	f.byEmail[u.Email] = u
	return u, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

// --- refresh tokens ---

type fakeRefresh struct {
	tokens    map[string]*models.RefreshToken
	createErr error
	findErr   error
	delErr    error
	purged    int64
}

func newFakeRefresh() *fakeRefresh { return &fakeRefresh{tokens: map[string]*models.RefreshToken{}} }

func (f *fakeRefresh) Create(_ context.Context, userID, token string, validity time.Duration) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.tokens[token] = &models.RefreshToken{UserID: userID, Token: token, Expires: time.Now().Add(validity)}
	return nil
}

func (f *fakeRefresh) Find(_ context.Context, token string) (*models.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	t, ok := f.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return t, nil
}

func (f *fakeRefresh) Delete(_ context.Context, token string) error {
	if f.delErr != nil {
		return f.delErr
	}
	delete(f.tokens, token)
	return nil
}

func (f *fakeRefresh) DeleteExpired(context.Context, time.Time) (int64, error) {
	return f.purged, nil
}

// --- classrooms ---

type enrollKey struct {
	class   int64
	student string
}

type fakeClassrooms struct {
	byID      map[int64]*models.Classroom
	enrolled  map[enrollKey]bool
	students  map[int64][]*models.Enrollment
	nextID    int64
	createErr []error
	err       error
}

func newFakeClassrooms(cs ...*models.Classroom) *fakeClassrooms {
	f := &fakeClassrooms{byID: map[int64]*models.Classroom{}, enrolled: map[enrollKey]bool{}, students: map[int64][]*models.Enrollment{}}
	for _, c := range cs {
		f.byID[c.ID] = c
		if c.ID > f.nextID {
			f.nextID = c.ID
		}
	}
	return f
}

func (f *fakeClassrooms) Create(_ context.Context, c *models.Classroom) (*models.Classroom, error) {
	if len(f.createErr) > 0 {
		err := f.createErr[0]
		f.createErr = f.createErr[1:]
		if err != nil {
			return nil, err
		}
	}
	f.nextID++
	c.ID = f.nextID
	f.byID[c.ID] = c
	return c, nil
}

func (f *fakeClassrooms) GetByID(_ context.Context, id int64) (*models.Classroom, error) {
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return c, nil
}

func (f *fakeClassrooms) GetByCode(_ context.Context, code string) (*models.Classroom, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, c := range f.byID {
		if c.Code == code {
			return c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeClassrooms) ListByTeacher(_ context.Context, teacherID string) ([]*models.Classroom, error) {
	out := make([]*models.Classroom, 0)
	for _, c := range f.byID {
		if c.TeacherID == teacherID {
			out = append(out, c)
		}
	}
	return out, f.err
}

func (f *fakeClassrooms) ListByStudent(_ context.Context, studentID string) ([]*models.Classroom, error) {
	out := make([]*models.Classroom, 0)
	for k := range f.enrolled {
		if k.student == studentID {
			out = append(out, f.byID[k.class])
		}
	}
	return out, f.err
}

func (f *fakeClassrooms) Enroll(_ context.Context, classID int64, studentID string) error {
	k := enrollKey{classID, studentID}
	if f.enrolled[k] {
		return common.ErrorAlreadyExists
	}
	f.enrolled[k] = true
	return nil
}

func (f *fakeClassrooms) Unenroll(_ context.Context, classID int64, studentID string) error {
	k := enrollKey{classID, studentID}
	if !f.enrolled[k] {
		return common.ErrorNotFound
	}
	delete(f.enrolled, k)
	return nil
}

func (f *fakeClassrooms) IsEnrolled(_ context.Context, classID int64, studentID string) (bool, error) {
	return f.enrolled[enrollKey{classID, studentID}], f.err
}

func (f *fakeClassrooms) Students(_ context.Context, classID int64) ([]*models.Enrollment, error) {
	return f.students[classID], f.err
}

func (f *fakeClassrooms) CountByTeacher(_ context.Context, teacherID string) (int, int, error) {
	classes := 0
	students := map[string]bool{}
	for _, c := range f.byID {
		if c.TeacherID != teacherID {
			continue
		}
		classes++
		for k := range f.enrolled {
			if k.class == c.ID {
				students[k.student] = true
			}
		}
	}
	return classes, len(students), f.err
}

// --- assignments ---

type fakeAssignments struct {
	byID      map[int64]*models.Assignment
	byTeacher []*models.Assignment
	byStudent []*models.Assignment
	count     int
	err       error
}

func newFakeAssignments(as ...*models.Assignment) *fakeAssignments {
	f := &fakeAssignments{byID: map[int64]*models.Assignment{}}
	for _, a := range as {
		f.byID[a.ID] = a
	}
	return f
}

func (f *fakeAssignments) Create(_ context.Context, a *models.Assignment) (*models.Assignment, error) {
	if f.err != nil {
		return nil, f.err
	}
	a.ID = int64(len(f.byID) + 1)
	f.byID[a.ID] = a
	return a, nil
}

func (f *fakeAssignments) GetByID(_ context.Context, id int64) (*models.Assignment, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return a, nil
}

func (f *fakeAssignments) ListByTeacher(context.Context, string) ([]*models.Assignment, error) {
	return f.byTeacher, f.err
}

func (f *fakeAssignments) ListByStudent(context.Context, string) ([]*models.Assignment, error) {
	return f.byStudent, f.err
}

func (f *fakeAssignments) CountByTeacher(context.Context, string) (int, error) {
	return f.count, f.err
}

func (f *fakeAssignments) Recent(_ context.Context, _ string, limit int) ([]*models.Assignment, error) {
	if len(f.byTeacher) > limit {
		return f.byTeacher[:limit], f.err
	}
	return f.byTeacher, f.err
}

// --- submissions ---

type fakeSubmissions struct {
	byID      map[int64]*models.Submission
	byTeacher []*models.Submission
	byStudent []*models.Submission
	upserted  []*models.Submission
	gradedAt  time.Time
	count     int
	err       error
}

func newFakeSubmissions(ss ...*models.Submission) *fakeSubmissions {
	f := &fakeSubmissions{byID: map[int64]*models.Submission{}}
	for _, s := range ss {
		f.byID[s.ID] = s
	}
	return f
}

func (f *fakeSubmissions) Upsert(_ context.Context, s *models.Submission) (*models.Submission, error) {
	if f.err != nil {
		return nil, f.err
	}
	s.ID = int64(len(f.upserted) + 1)
	s.Status = models.SubmissionSubmitted
	f.upserted = append(f.upserted, s)
	return s, nil
}

func (f *fakeSubmissions) GetByID(_ context.Context, id int64) (*models.Submission, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSubmissions) ListByTeacher(_ context.Context, _ string, assignmentID int64) ([]*models.Submission, error) {
	if assignmentID == 0 {
		return f.byTeacher, f.err
	}
	out := make([]*models.Submission, 0)
	for _, s := range f.byTeacher {
		if s.AssignmentID == assignmentID {
			out = append(out, s)
		}
	}
	return out, f.err
}

func (f *fakeSubmissions) ListByStudent(context.Context, string) ([]*models.Submission, error) {
	return f.byStudent, f.err
}

func (f *fakeSubmissions) Grade(_ context.Context, id int64, grade, feedback string) (time.Time, error) {
	s, ok := f.byID[id]
	if !ok {
		return time.Time{}, common.ErrorNotFound
	}
	s.Grade = &grade
	s.Feedback = feedback
	s.Status = models.SubmissionReviewed
	return f.gradedAt, nil
}

func (f *fakeSubmissions) CountByTeacher(context.Context, string) (int, error) {
	return f.count, f.err
}

func (f *fakeSubmissions) Recent(_ context.Context, _ string, limit int) ([]*models.Submission, error) {
	if len(f.byTeacher) > limit {
		return f.byTeacher[:limit], f.err
	}
	return f.byTeacher, f.err
}

// --- analyses ---

type fakeAnalyses struct {
	mu        sync.Mutex
	byID      map[int64]*models.Analysis
	createErr error
	keyErr    error
}

func newFakeAnalyses() *fakeAnalyses { return &fakeAnalyses{byID: map[int64]*models.Analysis{}} }

func (f *fakeAnalyses) Create(_ context.Context, a *models.Analysis) (*models.Analysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	a.ID = int64(len(f.byID) + 1)
	f.byID[a.ID] = a
	return a, nil
}

func (f *fakeAnalyses) GetByID(_ context.Context, id int64) (*models.Analysis, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return a, nil
}

func (f *fakeAnalyses) UpdateArchiveKey(_ context.Context, id int64, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.keyErr != nil {
		return f.keyErr
	}
	f.byID[id].ArchiveKey = key
	return nil
}

// --- manager ---

type fakeRepoManager struct {
	users       *fakeUsers
	refresh     *fakeRefresh
	classrooms  *fakeClassrooms
	assignments *fakeAssignments
	submissions *fakeSubmissions
	analyses    *fakeAnalyses
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		users:       newFakeUsers(),
		refresh:     newFakeRefresh(),
		classrooms:  newFakeClassrooms(),
		assignments: newFakeAssignments(),
		submissions: newFakeSubmissions(),
		analyses:    newFakeAnalyses(),
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository                 { return m.users }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return m.refresh }
func (m *fakeRepoManager) Classrooms(dbx.DBTX) classrooms.Repository       { return m.classrooms }
func (m *fakeRepoManager) Assignments(dbx.DBTX) assignments.Repository     { return m.assignments }
func (m *fakeRepoManager) Submissions(dbx.DBTX) submissions.Repository     { return m.submissions }
func (m *fakeRepoManager) Analyses(dbx.DBTX) analyses.Repository           { return m.analyses }

// --- cache ---

type memCache struct {
	items   map[string][]byte
	deleted []string
	getErr  error
	delErr  error
}

func newMemCache() *memCache { return &memCache{items: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string, dst any) (bool, error) {
	if c.getErr != nil {
		return false, c.getErr
	}
	b, ok := c.items[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *memCache) Set(_ context.Context, key string, v any, _ time.Duration) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.items[key] = b
	return nil
}

func (c *memCache) Delete(_ context.Context, keys ...string) error {
	c.deleted = append(c.deleted, keys...)
	for _, k := range keys {
		delete(c.items, k)
	}
	return c.delErr
}
