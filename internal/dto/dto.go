// Package dto holds the JSON bodies exchanged between the portal server and
// its clients.
package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ID is an identifier that decodes from either a JSON string or number.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

type SignupRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72,password"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by signup, login and refresh.
type AuthResponse struct {
	UserID  ID     `json:"userId"`
	Role    string `json:"role"`
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Message string `json:"message,omitempty"`
}

type DashboardStats struct {
	TotalClasses     int `json:"totalClasses"`
	TotalAssignments int `json:"totalAssignments"`
	TotalSubmissions int `json:"totalSubmissions"`
	TotalStudents    int `json:"totalStudents"`
}

type Activity struct {
	Type  string    `json:"type"`
	Time  time.Time `json:"time"`
	Title string    `json:"title"`
}

type RecentActivity struct {
	Submissions []Activity `json:"submissions"`
	Assignments []Activity `json:"assignments"`
}

// DashboardData is the teacher dashboard body.
type DashboardData struct {
	Stats          DashboardStats `json:"stats"`
	RecentActivity RecentActivity `json:"recentActivity"`
}

type StudentStats struct {
	JoinedClasses      int `json:"joinedClasses"`
	PendingAssignments int `json:"pendingAssignments"`
	Submitted          int `json:"submitted"`
	Graded             int `json:"graded"`
}

// StudentDashboardData is the student dashboard body.
type StudentDashboardData struct {
	Stats    StudentStats `json:"stats"`
	Upcoming []Assignment `json:"upcoming"`
}

type Classroom struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Code         string    `json:"code,omitempty"`
	TeacherName  string    `json:"teacherName,omitempty"`
	StudentCount int       `json:"studentCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

type CreateClassroomRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description" validate:"required,max=2000"`
}

type JoinClassroomRequest struct {
	Code string `json:"code" validate:"required,max=32"`
}

type Student struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	JoinedAt time.Time `json:"joinedAt"`
}

// RosterImportResult reports an XLSX roster upload.
type RosterImportResult struct {
	Enrolled int      `json:"enrolled"`
	Skipped  []string `json:"skipped"`
}

type Assignment struct {
	ID              int64     `json:"id"`
	ClassroomID     int64     `json:"classroomId"`
	ClassName       string    `json:"className,omitempty"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Deadline        time.Time `json:"deadline"`
	SubmissionCount int       `json:"submissionCount"`
	Submitted       bool      `json:"submitted,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

type CreateAssignmentRequest struct {
	ClassroomID int64     `json:"classroomId" validate:"required,gt=0"`
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description" validate:"required"`
	Deadline    time.Time `json:"deadline" validate:"required"`
}

type Submission struct {
	ID             int64      `json:"id"`
	AssignmentID   int64      `json:"assignmentId"`
	Assignment     string     `json:"assignment"`
	StudentName    string     `json:"studentName"`
	StudentEmail   string     `json:"studentEmail"`
	RepoURL        string     `json:"repoUrl"`
	SubmissionDate time.Time  `json:"submissionDate"`
	Status         string     `json:"status"`
	Grade          *string    `json:"grade"`
	Feedback       string     `json:"feedback,omitempty"`
	GradedAt       *time.Time `json:"gradedAt,omitempty"`
}

type SubmitRequest struct {
	RepoURL string `json:"repoUrl" validate:"required,githubrepo"`
}

type GradeRequest struct {
	Grade    string `json:"grade" validate:"required,max=10"`
	Feedback string `json:"feedback" validate:"max=5000"`
}

// Result is a graded submission as the student sees it.
type Result struct {
	SubmissionID    int64            `json:"submissionId"`
	Assignment      string           `json:"assignment"`
	RepoURL         string           `json:"repoUrl"`
	Grade           string           `json:"grade"`
	Feedback        string           `json:"feedback"`
	AnalysisResults *AnalysisSummary `json:"analysisResults,omitempty"`
}

type AnalysisSummary struct {
	LinesOfCode  int    `json:"linesOfCode"`
	Commits      int    `json:"commits"`
	TestCoverage int    `json:"testCoverage"`
	CodeQuality  string `json:"codeQuality"`
}

type AnalyzeRequest struct {
	RepoURL string `json:"repoUrl" validate:"required,githubrepo"`
}

type BatchAnalyzeRequest struct {
	RepoURLs []string `json:"repoUrls" validate:"required,max=50"`
}

// BatchItem is one repository of a batch analysis. Report is set when
// Status is "completed", Error when it is "failed".
type BatchItem struct {
	RepoURL  string          `json:"repoUrl"`
	RepoName string          `json:"repoName"`
	Status   string          `json:"status"`
	Error    string          `json:"error,omitempty"`
	Report   *AnalysisReport `json:"report,omitempty"`
}

type BatchAnalysisResult struct {
	Items   []BatchItem `json:"items"`
	Skipped []string    `json:"skipped"`
}

type Language struct {
	Name       string `json:"name"`
	Percentage int    `json:"percentage"`
	Color      string `json:"color"`
}

// AnalysisReport is the repository analysis screen body.
type AnalysisReport struct {
	ID           int64      `json:"id"`
	RepoURL      string     `json:"repoUrl"`
	RepoName     string     `json:"repoName"`
	LinesOfCode  int        `json:"linesOfCode"`
	Commits      int        `json:"commits"`
	Contributors int        `json:"contributors"`
	LastUpdated  time.Time  `json:"lastUpdated"`
	Languages    []Language `json:"languages"`
	Branches     int        `json:"branches"`
	Issues       int        `json:"issues"`
	Stars        int        `json:"stars"`
	Forks        int        `json:"forks"`
	TestCoverage int        `json:"testCoverage"`
	CodeQuality  string     `json:"codeQuality"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// Summary condenses the report for result listings.
func (r *AnalysisReport) Summary() *AnalysisSummary {
	return &AnalysisSummary{
		LinesOfCode:  r.LinesOfCode,
		Commits:      r.Commits,
		TestCoverage: r.TestCoverage,
		CodeQuality:  r.CodeQuality,
	}
}
