package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/classroom/internal/dto"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// TeacherDashboard fetches counts and recent activity for the teacher.
func (c *Client) TeacherDashboard(ctx context.Context) (*dto.DashboardData, error) {
	out := &dto.DashboardData{}
	if err := c.doAuthed(ctx, call{method: http.MethodGet, path: "/v1/main/teacher/dashboard", out: out, fallback: msgDashboardFailed}); err != nil {
		return nil, err
	}
	return out, nil
}

// StudentDashboard fetches counts and upcoming deadlines for the student.
func (c *Client) StudentDashboard(ctx context.Context) (*dto.StudentDashboardData, error) {
	out := &dto.StudentDashboardData{}
	if err := c.doAuthed(ctx, call{method: http.MethodGet, path: "/v1/main/student/dashboard", out: out, fallback: msgDashboardFailed}); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) TeacherClasses(ctx context.Context) ([]dto.Classroom, error) {
	var out []dto.Classroom
	err := c.doAuthed(ctx, call{method: http.MethodGet, path: "/v1/main/teacher/classes", out: &out, fallback: msgClassesFailed})
	return out, err
}

func (c *Client) CreateClass(ctx context.Context, req dto.CreateClassroomRequest) (*dto.Classroom, error) {
	out := &dto.Classroom{}
	if err := c.doAuthed(ctx, call{method: http.MethodPost, path: "/v1/main/teacher/classes", body: req, out: out, fallback: msgCreateClassFailed}); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ClassStudents(ctx context.Context, classID int64) ([]dto.Student, error) {
	var out []dto.Student
	path := fmt.Sprintf("/v1/main/teacher/classes/%d/students", classID)
	err := c.doAuthed(ctx, call{method: http.MethodGet, path: path, out: &out, fallback: msgStudentsFailed})
	return out, err
}

func (c *Client) RemoveStudent(ctx context.Context, classID int64, studentID string) error {
	path := fmt.Sprintf("/v1/main/teacher/classes/%d/students/%s", classID, url.PathEscape(studentID))
	return c.doAuthed(ctx, call{method: http.MethodDelete, path: path, fallback: msgRemoveFailed})
}

// ImportRoster uploads an XLSX roster (email in column A, name in column B)
// and enrolls the listed students.
func (c *Client) ImportRoster(ctx context.Context, classID int64, xlsx []byte) (*dto.RosterImportResult, error) {
	out := &dto.RosterImportResult{}
	path := fmt.Sprintf("/v1/main/teacher/classes/%d/roster", classID)
	err := c.doAuthed(ctx, call{
		method:      http.MethodPost,
		path:        path,
		raw:         bytes.NewReader(xlsx),
		contentType: xlsxContentType,
		out:         out,
		fallback:    msgRosterFailed,
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Gradebook downloads the class gradebook as an XLSX workbook.
func (c *Client) Gradebook(ctx context.Context, classID int64) ([]byte, error) {
	var out []byte
	path := fmt.Sprintf("/v1/main/teacher/classes/%d/gradebook", classID)
	if err := c.doAuthed(ctx, call{method: http.MethodGet, path: path, out: &out, fallback: msgGradebookFailed}); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) TeacherAssignments(ctx context.Context) ([]dto.Assignment, error) {
	var out []dto.Assignment
	err := c.doAuthed(ctx, call{method: http.MethodGet, path: "/v1/main/teacher/assignments", out: &out, fallback: msgAssignmentsFailed})
	return out, err
}

func (c *Client) CreateAssignment(ctx context.Context, req dto.CreateAssignmentRequest) (*dto.Assignment, error) {
	out := &dto.Assignment{}
	if err := c.doAuthed(ctx, call{method: http.MethodPost, path: "/v1/main/teacher/assignments", body: req, out: out, fallback: msgCreateAsgFailed}); err != nil {
		return nil, err
	}
	return out, nil
}

// TeacherSubmissions lists submissions, optionally for one assignment
// (assignmentID 0 means all).
func (c *Client) TeacherSubmissions(ctx context.Context, assignmentID int64) ([]dto.Submission, error) {
	path := "/v1/main/teacher/submissions"
	if assignmentID > 0 {
		path += fmt.Sprintf("?assignmentId=%d", assignmentID)
	}
	var out []dto.Submission
	err := c.doAuthed(ctx, call{method: http.MethodGet, path: path, out: &out, fallback: msgSubmissionsFailed})
	return out, err
}

func (c *Client) GradeSubmission(ctx context.Context, submissionID int64, req dto.GradeRequest) (*dto.Submission, error) {
	out := &dto.Submission{}
	path := fmt.Sprintf("/v1/main/teacher/submissions/%d/grade", submissionID)
	if err := c.doAuthed(ctx, call{method: http.MethodPut, path: path, body: req, out: out, fallback: msgGradeFailed}); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) StudentClasses(ctx context.Context) ([]dto.Classroom, error) {
	var out []dto.Classroom
	err := c.doAuthed(ctx, call{method: http.MethodGet, path: "/v1/main/student/classes", out: &out, fallback: msgClassesFailed})
	return out, err
}

func (c *Client) JoinClass(ctx context.Context, code string) (*dto.Classroom, error) {
	out := &dto.Classroom{}
	req := dto.JoinClassroomRequest{Code: code}
	if err := c.doAuthed(ctx, call{method: http.MethodPost, path: "/v1/main/student/classes/join", body: req, out: out, fallback: msgJoinFailed}); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) StudentAssignments(ctx context.Context) ([]dto.Assignment, error) {
	var out []dto.Assignment
	err := c.doAuthed(ctx, call{method: http.MethodGet, path: "/v1/main/student/assignments", out: &out, fallback: msgAssignmentsFailed})
	return out, err
}

func (c *Client) Submit(ctx context.Context, assignmentID int64, repoURL string) (*dto.Submission, error) {
	out := &dto.Submission{}
	path := fmt.Sprintf("/v1/main/student/assignments/%d/submit", assignmentID)
	if err := c.doAuthed(ctx, call{method: http.MethodPost, path: path, body: dto.SubmitRequest{RepoURL: repoURL}, out: out, fallback: msgSubmitFailed}); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) StudentSubmissions(ctx context.Context) ([]dto.Submission, error) {
	var out []dto.Submission
	err := c.doAuthed(ctx, call{method: http.MethodGet, path: "/v1/main/student/submissions", out: &out, fallback: msgSubmissionsFailed})
	return out, err
}

func (c *Client) StudentResults(ctx context.Context) ([]dto.Result, error) {
	var out []dto.Result
	err := c.doAuthed(ctx, call{method: http.MethodGet, path: "/v1/main/student/results", out: &out, fallback: msgResultsFailed})
	return out, err
}

// AnalyzeRepository runs the repository analysis for repoURL.
func (c *Client) AnalyzeRepository(ctx context.Context, repoURL string) (*dto.AnalysisReport, error) {
	out := &dto.AnalysisReport{}
	if err := c.doAuthed(ctx, call{method: http.MethodPost, path: "/v1/main/analysis", body: dto.AnalyzeRequest{RepoURL: repoURL}, out: out, fallback: msgAnalysisFailed}); err != nil {
		return nil, err
	}
	return out, nil
}

// AnalyzeRepositories runs a batch analysis. The call returns once every
// listed repository is completed or failed.
func (c *Client) AnalyzeRepositories(ctx context.Context, repoURLs []string) (*dto.BatchAnalysisResult, error) {
	out := &dto.BatchAnalysisResult{}
	if err := c.doAuthed(ctx, call{method: http.MethodPost, path: "/v1/main/analysis/batch", body: dto.BatchAnalyzeRequest{RepoURLs: repoURLs}, out: out, fallback: msgBatchFailed}); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AnalysisReport(ctx context.Context, id int64) (*dto.AnalysisReport, error) {
	out := &dto.AnalysisReport{}
	path := fmt.Sprintf("/v1/main/analysis/%d", id)
	if err := c.doAuthed(ctx, call{method: http.MethodGet, path: path, out: out, fallback: msgAnalysisFailed}); err != nil {
		return nil, err
	}
	return out, nil
}
