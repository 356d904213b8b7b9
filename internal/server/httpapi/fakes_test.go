package httpapi

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/classroom/internal/common"
	"github.com/dmitrijs2005/classroom/internal/server/auth"
	"github.com/dmitrijs2005/classroom/internal/server/models"
	"github.com/dmitrijs2005/classroom/internal/server/services"
	"github.com/dmitrijs2005/classroom/internal/session"
	"github.com/stretchr/testify/require"
)

var secretKey = []byte("test-secret")

type fakeUsers struct {
	res       *services.AuthResult
	err       error
	gotRole   common.Role
	gotClass  int64
	gotInput  services.SignupInput
	loggedOut []string
}

func (f *fakeUsers) SignupTeacher(_ context.Context, in services.SignupInput) (*services.AuthResult, error) {
	f.gotInput = in
	return f.res, f.err
}
func (f *fakeUsers) SignupStudent(_ context.Context, classroomID int64, in services.SignupInput) (*services.AuthResult, error) {
	f.gotClass, f.gotInput = classroomID, in
	return f.res, f.err
}
func (f *fakeUsers) Login(_ context.Context, role common.Role, _, _ string) (*services.AuthResult, error) {
	f.gotRole = role
	return f.res, f.err
}
func (f *fakeUsers) Refresh(context.Context, string) (*services.AuthResult, error) {
	return f.res, f.err
}
func (f *fakeUsers) Logout(_ context.Context, token string) error {
	f.loggedOut = append(f.loggedOut, token)
	return f.err
}

type fakeClassrooms struct {
	classes   []*models.Classroom
	class     *models.Classroom
	students  []*models.Enrollment
	roster    *services.RosterImport
	gotRoster []byte
	gradebook []byte
	err       error
}

func (f *fakeClassrooms) Create(_ context.Context, teacherID, name, description string) (*models.Classroom, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Classroom{ID: 1, TeacherID: teacherID, Name: name, Description: description, Code: "ABCDE1234"}, nil
}
func (f *fakeClassrooms) ListForTeacher(context.Context, string) ([]*models.Classroom, error) {
	return f.classes, f.err
}
func (f *fakeClassrooms) ListForStudent(context.Context, string) ([]*models.Classroom, error) {
	return f.classes, f.err
}
func (f *fakeClassrooms) Join(context.Context, string, string) (*models.Classroom, error) {
	return f.class, f.err
}
func (f *fakeClassrooms) Students(context.Context, string, int64) ([]*models.Enrollment, error) {
	return f.students, f.err
}
func (f *fakeClassrooms) RemoveStudent(context.Context, string, int64, string) error {
	return f.err
}
func (f *fakeClassrooms) ImportRoster(_ context.Context, _ string, _ int64, r io.Reader) (*services.RosterImport, error) {
	f.gotRoster, _ = io.ReadAll(r)
	return f.roster, f.err
}
func (f *fakeClassrooms) Gradebook(context.Context, string, int64) ([]byte, *models.Classroom, error) {
	return f.gradebook, f.class, f.err
}

type fakeAssignments struct {
	list []*models.Assignment
	got  services.AssignmentInput
	err  error
}

func (f *fakeAssignments) Create(_ context.Context, _ string, in services.AssignmentInput) (*models.Assignment, error) {
	f.got = in
	if f.err != nil {
		return nil, f.err
	}
	return &models.Assignment{ID: 3, ClassroomID: in.ClassroomID, Title: in.Title, Description: in.Description, Deadline: in.Deadline}, nil
}
func (f *fakeAssignments) ListForTeacher(context.Context, string) ([]*models.Assignment, error) {
	return f.list, f.err
}
func (f *fakeAssignments) ListForStudent(context.Context, string) ([]*models.Assignment, error) {
	return f.list, f.err
}

type fakeSubmissions struct {
	sub             *models.Submission
	list            []*models.Submission
	results         []services.Result
	gotAssignmentID int64
	err             error
}

func (f *fakeSubmissions) Submit(_ context.Context, studentID string, assignmentID int64, repoURL string) (*models.Submission, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Submission{ID: 9, AssignmentID: assignmentID, StudentID: studentID, RepoURL: repoURL, Status: models.SubmissionSubmitted}, nil
}
func (f *fakeSubmissions) ListForTeacher(_ context.Context, _ string, assignmentID int64) ([]*models.Submission, error) {
	f.gotAssignmentID = assignmentID
	return f.list, f.err
}
func (f *fakeSubmissions) ListForStudent(context.Context, string) ([]*models.Submission, error) {
	return f.list, f.err
}
func (f *fakeSubmissions) Grade(context.Context, string, int64, string, string) (*models.Submission, error) {
	return f.sub, f.err
}
func (f *fakeSubmissions) Results(context.Context, string) ([]services.Result, error) {
	return f.results, f.err
}

type fakeDashboards struct {
	teacher *services.TeacherDashboard
	student *services.StudentDashboard
	err     error
}

func (f *fakeDashboards) Teacher(context.Context, string) (*services.TeacherDashboard, error) {
	return f.teacher, f.err
}
func (f *fakeDashboards) Student(context.Context, string) (*services.StudentDashboard, error) {
	return f.student, f.err
}

type fakeAnalyses struct {
	report  *models.Analysis
	batch   *services.BatchResult
	gotURLs []string
	err     error
}

func (f *fakeAnalyses) Analyze(context.Context, string, string) (*models.Analysis, error) {
	return f.report, f.err
}
func (f *fakeAnalyses) AnalyzeBatch(_ context.Context, _ string, urls []string) (*services.BatchResult, error) {
	f.gotURLs = urls
	return f.batch, f.err
}
func (f *fakeAnalyses) Get(context.Context, string, int64) (*models.Analysis, error) {
	return f.report, f.err
}

type fixture struct {
	srv         *Server
	users       *fakeUsers
	classrooms  *fakeClassrooms
	assignments *fakeAssignments
	submissions *fakeSubmissions
	dashboards  *fakeDashboards
	analyses    *fakeAnalyses
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		users:       &fakeUsers{},
		classrooms:  &fakeClassrooms{},
		assignments: &fakeAssignments{},
		submissions: &fakeSubmissions{},
		dashboards:  &fakeDashboards{},
		analyses:    &fakeAnalyses{},
	}
	f.srv = NewServer(&Options{
		SecretKey:            secretKey,
		AccessTokenValidity:  15 * time.Minute,
		RefreshTokenValidity: time.Hour,
		Users:                f.users,
		Classrooms:           f.classrooms,
		Assignments:          f.assignments,
		Submissions:          f.submissions,
		Dashboards:           f.dashboards,
		Analyses:             f.analyses,
	})
	return f
}

// do sends a request, authenticated as rec when it is not nil.
func (f *fixture) do(t *testing.T, method, path string, rec *session.Record, body []byte, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType == "" && body != nil {
		contentType = "application/json"
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if rec != nil {
		token, err := auth.GenerateToken(rec, secretKey, time.Minute)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: common.SessionCookieName, Value: token})
	}
	w := httptest.NewRecorder()
	f.srv.ServeHTTP(w, req)
	return w
}

func (f *fixture) newRequest(t *testing.T, method, path string) *http.Request {
	t.Helper()
	return httptest.NewRequest(method, path, nil)
}

func (f *fixture) serve(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	f.srv.ServeHTTP(w, req)
	return w
}

func cookieByName(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

var (
	teacherRec = &session.Record{ID: "t-1", Email: "tess@school.org", Name: "Tess", Role: common.RoleTeacher}
	studentRec = &session.Record{ID: "s-1", Email: "sam@school.org", Name: "Sam", Role: common.RoleStudent}
)
