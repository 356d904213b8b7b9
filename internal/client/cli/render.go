package cli

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/classroom/internal/dto"
)

const timeLayout = "2006-01-02 15:04"

// table writes header and rows as aligned columns.
func table(w io.Writer, header []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(r, "\t"))
	}
	return tw.Flush()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

func formatGrade(g *string) string {
	if g == nil || *g == "" {
		return "-"
	}
	return *g
}

func title(w io.Writer, s string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, s)
	fmt.Fprintln(w, strings.Repeat("=", len(s)))
}

func renderTeacherDashboard(w io.Writer, d *dto.DashboardData) error {
	if err := table(w, []string{"Classes", "Assignments", "Submissions", "Students"}, [][]string{{
		fmt.Sprint(d.Stats.TotalClasses),
		fmt.Sprint(d.Stats.TotalAssignments),
		fmt.Sprint(d.Stats.TotalSubmissions),
		fmt.Sprint(d.Stats.TotalStudents),
	}}); err != nil {
		return err
	}

	var rows [][]string
	for _, act := range slices.Concat(d.RecentActivity.Submissions, d.RecentActivity.Assignments) {
		rows = append(rows, []string{act.Type, act.Title, formatTime(act.Time)})
	}
	if len(rows) == 0 {
		fmt.Fprintln(w, "\nNo recent activity.")
		return nil
	}
	fmt.Fprintln(w, "\nRecent activity")
	return table(w, []string{"TYPE", "TITLE", "TIME"}, rows)
}

func renderStudentDashboard(w io.Writer, d *dto.StudentDashboardData) error {
	if err := table(w, []string{"Classes", "Pending", "Submitted", "Graded"}, [][]string{{
		fmt.Sprint(d.Stats.JoinedClasses),
		fmt.Sprint(d.Stats.PendingAssignments),
		fmt.Sprint(d.Stats.Submitted),
		fmt.Sprint(d.Stats.Graded),
	}}); err != nil {
		return err
	}
	if len(d.Upcoming) == 0 {
		fmt.Fprintln(w, "\nNo upcoming deadlines.")
		return nil
	}
	fmt.Fprintln(w, "\nUpcoming deadlines")
	return renderAssignments(w, d.Upcoming)
}

func renderClasses(w io.Writer, classes []dto.Classroom) error {
	if len(classes) == 0 {
		fmt.Fprintln(w, "No classes yet.")
		return nil
	}
	rows := make([][]string, 0, len(classes))
	for _, c := range classes {
		owner := c.Code
		if owner == "" {
			owner = c.TeacherName
		}
		rows = append(rows, []string{fmt.Sprint(c.ID), c.Name, owner, fmt.Sprint(c.StudentCount), c.Description})
	}
	return table(w, []string{"ID", "NAME", "CODE/TEACHER", "STUDENTS", "DESCRIPTION"}, rows)
}

func renderStudents(w io.Writer, students []dto.Student) error {
	if len(students) == 0 {
		fmt.Fprintln(w, "No students enrolled.")
		return nil
	}
	rows := make([][]string, 0, len(students))
	for _, s := range students {
		rows = append(rows, []string{s.ID, s.Name, s.Email, formatTime(s.JoinedAt)})
	}
	return table(w, []string{"ID", "NAME", "EMAIL", "JOINED"}, rows)
}

func renderAssignments(w io.Writer, list []dto.Assignment) error {
	if len(list) == 0 {
		fmt.Fprintln(w, "No assignments.")
		return nil
	}
	rows := make([][]string, 0, len(list))
	for _, as := range list {
		state := fmt.Sprint(as.SubmissionCount)
		if as.Submitted {
			state = "submitted"
		}
		rows = append(rows, []string{fmt.Sprint(as.ID), as.Title, as.ClassName, formatTime(as.Deadline), state})
	}
	return table(w, []string{"ID", "TITLE", "CLASS", "DEADLINE", "SUBMISSIONS"}, rows)
}

func renderSubmissions(w io.Writer, list []dto.Submission) error {
	if len(list) == 0 {
		fmt.Fprintln(w, "No submissions.")
		return nil
	}
	rows := make([][]string, 0, len(list))
	for _, s := range list {
		rows = append(rows, []string{
			fmt.Sprint(s.ID), s.Assignment, s.StudentName, s.RepoURL,
			formatTime(s.SubmissionDate), s.Status, formatGrade(s.Grade),
		})
	}
	return table(w, []string{"ID", "ASSIGNMENT", "STUDENT", "REPOSITORY", "SUBMITTED", "STATUS", "GRADE"}, rows)
}

func renderResults(w io.Writer, list []dto.Result) error {
	if len(list) == 0 {
		fmt.Fprintln(w, "No graded work yet.")
		return nil
	}
	rows := make([][]string, 0, len(list))
	for _, r := range list {
		loc, quality := "-", "-"
		if r.AnalysisResults != nil {
			loc = fmt.Sprint(r.AnalysisResults.LinesOfCode)
			quality = r.AnalysisResults.CodeQuality
		}
		rows = append(rows, []string{r.Assignment, r.Grade, r.Feedback, loc, quality})
	}
	return table(w, []string{"ASSIGNMENT", "GRADE", "FEEDBACK", "LOC", "QUALITY"}, rows)
}

func renderReport(w io.Writer, r *dto.AnalysisReport) error {
	fmt.Fprintf(w, "%s (%s)\n", r.RepoName, r.RepoURL)
	if err := table(w, []string{"LOC", "COMMITS", "CONTRIBUTORS", "BRANCHES", "ISSUES", "STARS", "FORKS", "COVERAGE", "QUALITY", "UPDATED"}, [][]string{{
		fmt.Sprint(r.LinesOfCode), fmt.Sprint(r.Commits), fmt.Sprint(r.Contributors),
		fmt.Sprint(r.Branches), fmt.Sprint(r.Issues), fmt.Sprint(r.Stars), fmt.Sprint(r.Forks),
		fmt.Sprintf("%d%%", r.TestCoverage), r.CodeQuality, formatTime(r.LastUpdated),
	}}); err != nil {
		return err
	}
	rows := make([][]string, 0, len(r.Languages))
	for _, l := range r.Languages {
		rows = append(rows, []string{l.Name, fmt.Sprintf("%d%%", l.Percentage), l.Color})
	}
	fmt.Fprintln(w)
	return table(w, []string{"LANGUAGE", "SHARE", "COLOR"}, rows)
}
