package httpapi

import (
	"github.com/dmitrijs2005/classroom/internal/dto"
	"github.com/dmitrijs2005/classroom/internal/server/models"
	"github.com/dmitrijs2005/classroom/internal/server/services"
)

func classroomDTO(c *models.Classroom, withCode bool) dto.Classroom {
	out := dto.Classroom{
		ID:           c.ID,
		Name:         c.Name,
		Description:  c.Description,
		TeacherName:  c.TeacherName,
		StudentCount: c.StudentCount,
		CreatedAt:    c.CreatedAt,
	}
	// only the owning teacher hands the code out
	if withCode {
		out.Code = c.Code
	}
	return out
}

func classroomDTOs(cs []*models.Classroom, withCode bool) []dto.Classroom {
	out := make([]dto.Classroom, 0, len(cs))
	for _, c := range cs {
		out = append(out, classroomDTO(c, withCode))
	}
	return out
}

func studentDTOs(es []*models.Enrollment) []dto.Student {
	out := make([]dto.Student, 0, len(es))
	for _, e := range es {
		out = append(out, dto.Student{
			ID:       e.StudentID,
			Name:     e.StudentName,
			Email:    e.StudentEmail,
			JoinedAt: e.JoinedAt,
		})
	}
	return out
}

func assignmentDTO(a *models.Assignment) dto.Assignment {
	return dto.Assignment{
		ID:              a.ID,
		ClassroomID:     a.ClassroomID,
		ClassName:       a.ClassName,
		Title:           a.Title,
		Description:     a.Description,
		Deadline:        a.Deadline,
		SubmissionCount: a.SubmissionCount,
		Submitted:       a.Submitted,
		CreatedAt:       a.CreatedAt,
	}
}

func assignmentDTOs(as []*models.Assignment) []dto.Assignment {
	out := make([]dto.Assignment, 0, len(as))
	for _, a := range as {
		out = append(out, assignmentDTO(a))
	}
	return out
}

func submissionDTO(s *models.Submission) dto.Submission {
	return dto.Submission{
		ID:             s.ID,
		AssignmentID:   s.AssignmentID,
		Assignment:     s.AssignmentTitle,
		StudentName:    s.StudentName,
		StudentEmail:   s.StudentEmail,
		RepoURL:        s.RepoURL,
		SubmissionDate: s.SubmittedAt,
		Status:         s.Status,
		Grade:          s.Grade,
		Feedback:       s.Feedback,
		GradedAt:       s.GradedAt,
	}
}

func submissionDTOs(ss []*models.Submission) []dto.Submission {
	out := make([]dto.Submission, 0, len(ss))
	for _, s := range ss {
		out = append(out, submissionDTO(s))
	}
	return out
}

func resultDTOs(rs []services.Result) []dto.Result {
	out := make([]dto.Result, 0, len(rs))
	for _, r := range rs {
		res := dto.Result{
			SubmissionID: r.Submission.ID,
			Assignment:   r.Submission.AssignmentTitle,
			RepoURL:      r.Submission.RepoURL,
			Feedback:     r.Submission.Feedback,
		}
		if r.Submission.Grade != nil {
			res.Grade = *r.Submission.Grade
		}
		if r.Analysis != nil {
			res.AnalysisResults = analysisDTO(r.Analysis).Summary()
		}
		out = append(out, res)
	}
	return out
}

func analysisDTO(a *models.Analysis) *dto.AnalysisReport {
	langs := make([]dto.Language, 0, len(a.Languages))
	for _, l := range a.Languages {
		langs = append(langs, dto.Language{Name: l.Name, Percentage: l.Percentage, Color: l.Color})
	}
	return &dto.AnalysisReport{
		ID:           a.ID,
		RepoURL:      a.RepoURL,
		RepoName:     a.RepoName,
		LinesOfCode:  a.LinesOfCode,
		Commits:      a.Commits,
		Contributors: a.Contributors,
		LastUpdated:  a.LastUpdated,
		Languages:    langs,
		Branches:     a.Branches,
		Issues:       a.Issues,
		Stars:        a.Stars,
		Forks:        a.Forks,
		TestCoverage: a.TestCoverage,
		CodeQuality:  a.CodeQuality,
		CreatedAt:    a.CreatedAt,
	}
}

func activityDTOs(es []models.ActivityEntry) []dto.Activity {
	out := make([]dto.Activity, 0, len(es))
	for _, e := range es {
		out = append(out, dto.Activity{Type: e.Type, Time: e.Time, Title: e.Title})
	}
	return out
}

func teacherDashboardDTO(d *services.TeacherDashboard) dto.DashboardData {
	return dto.DashboardData{
		Stats: dto.DashboardStats{
			TotalClasses:     d.TotalClasses,
			TotalAssignments: d.TotalAssignments,
			TotalSubmissions: d.TotalSubmissions,
			TotalStudents:    d.TotalStudents,
		},
		RecentActivity: dto.RecentActivity{
			Submissions: activityDTOs(d.RecentSubmissions),
			Assignments: activityDTOs(d.RecentAssignments),
		},
	}
}

func studentDashboardDTO(d *services.StudentDashboard) dto.StudentDashboardData {
	return dto.StudentDashboardData{
		Stats: dto.StudentStats{
			JoinedClasses:      d.JoinedClasses,
			PendingAssignments: d.PendingAssignments,
			Submitted:          d.Submitted,
			Graded:             d.Graded,
		},
		Upcoming: assignmentDTOs(d.Upcoming),
	}
}
