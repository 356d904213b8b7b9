package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/classroom/internal/client/router"
	"github.com/dmitrijs2005/classroom/internal/common"
	"github.com/dmitrijs2005/classroom/internal/dto"
	"github.com/dmitrijs2005/classroom/internal/filex"
)

// getMultiline is an indirection used to facilitate testing.
var getMultiline = GetMultiline

// action runs fn on the screen at path. fn errors are shown as
// notifications; a refused screen is not an error.
func (a *App) action(ctx context.Context, path string, fn func(ctx context.Context) error) error {
	if !a.enter(ctx, path) {
		return nil
	}
	if err := fn(ctx); err != nil {
		a.notify(err)
		return err
	}
	return nil
}

// NewClass creates a classroom and prints its join code.
func (a *App) NewClass(ctx context.Context) error {
	return a.action(ctx, "/teacher/classes", func(ctx context.Context) error {
		name, err := GetRequiredText(a.reader, "Class name:", a.out)
		if err != nil {
			return err
		}
		desc, err := GetRequiredText(a.reader, "Description:", a.out)
		if err != nil {
			return err
		}
		c, err := a.portal.CreateClass(ctx, dto.CreateClassroomRequest{Name: name, Description: desc})
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Class %q created. Join code: %s\n", c.Name, c.Code)
		return nil
	})
}

// Join enrolls the student with a class code.
func (a *App) Join(ctx context.Context) error {
	return a.action(ctx, "/student/classes", func(ctx context.Context) error {
		code, err := GetRequiredText(a.reader, "Class code:", a.out)
		if err != nil {
			return err
		}
		c, err := a.portal.JoinClass(ctx, strings.ToUpper(code))
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Joined %q.\n", c.Name)
		return nil
	})
}

// NewAssignment creates an assignment in one of the teacher's classes.
func (a *App) NewAssignment(ctx context.Context) error {
	return a.action(ctx, "/teacher/assignments", func(ctx context.Context) error {
		classID, err := GetID(a.reader, "Class id:", a.out)
		if err != nil {
			return err
		}
		name, err := GetRequiredText(a.reader, "Title:", a.out)
		if err != nil {
			return err
		}
		desc, err := getMultiline(a.reader, "Description:", a.out)
		if err != nil {
			return err
		}
		if desc == "" {
			return common.NewValidationError("Description: value is required")
		}
		deadlineText, err := GetRequiredText(a.reader, "Deadline (YYYY-MM-DD HH:MM):", a.out)
		if err != nil {
			return err
		}
		deadline, err := time.ParseInLocation(timeLayout, deadlineText, time.Local)
		if err != nil {
			return common.NewValidationError("Deadline must look like 2025-01-31 23:59")
		}

		as, err := a.portal.CreateAssignment(ctx, dto.CreateAssignmentRequest{
			ClassroomID: classID,
			Title:       name,
			Description: desc,
			Deadline:    deadline,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Assignment %q created (id %d).\n", as.Title, as.ID)
		return nil
	})
}

// Submit hands in a GitHub repository for an assignment.
func (a *App) Submit(ctx context.Context) error {
	return a.action(ctx, "/student/assignments", func(ctx context.Context) error {
		id, err := GetID(a.reader, "Assignment id:", a.out)
		if err != nil {
			return err
		}
		repo, err := getSimpleText(a.reader, "Repository URL:", a.out)
		if err != nil {
			return err
		}
		if err := common.ValidateRepoURL(repo); err != nil {
			return err
		}
		s, err := a.portal.Submit(ctx, id, repo)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Submitted %s (status %s).\n", s.RepoURL, s.Status)
		return nil
	})
}

// Grade records a grade and feedback for a submission.
func (a *App) Grade(ctx context.Context) error {
	return a.action(ctx, "/teacher/submissions", func(ctx context.Context) error {
		id, err := GetID(a.reader, "Submission id:", a.out)
		if err != nil {
			return err
		}
		grade, err := GetRequiredText(a.reader, "Grade:", a.out)
		if err != nil {
			return err
		}
		feedback, err := getMultiline(a.reader, "Feedback:", a.out)
		if err != nil {
			return err
		}
		s, err := a.portal.GradeSubmission(ctx, id, dto.GradeRequest{Grade: grade, Feedback: feedback})
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Submission %d graded %s.\n", s.ID, formatGrade(s.Grade))
		return nil
	})
}

// Analyze runs the repository analysis and prints the report.
func (a *App) Analyze(ctx context.Context) error {
	return a.action(ctx, router.RepoAnalysisPath, func(ctx context.Context) error {
		repo, err := getSimpleText(a.reader, "Repository URL:", a.out)
		if err != nil {
			return err
		}
		if err := common.ValidateRepoURL(repo); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Analyzing...")
		report, err := a.portal.AnalyzeRepository(ctx, repo)
		if err != nil {
			return err
		}
		return renderReport(a.out, report)
	})
}

// RemoveStudent drops a student from a class.
func (a *App) RemoveStudent(ctx context.Context) error {
	return a.action(ctx, "/teacher/students", func(ctx context.Context) error {
		classID, err := GetID(a.reader, "Class id:", a.out)
		if err != nil {
			return err
		}
		studentID, err := GetRequiredText(a.reader, "Student id:", a.out)
		if err != nil {
			return err
		}
		if err := a.portal.RemoveStudent(ctx, classID, studentID); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Student removed.")
		return nil
	})
}

// ImportRoster enrolls the students listed in an XLSX file.
func (a *App) ImportRoster(ctx context.Context) error {
	return a.action(ctx, "/teacher/classes", func(ctx context.Context) error {
		classID, err := GetID(a.reader, "Class id:", a.out)
		if err != nil {
			return err
		}
		path, err := GetRequiredText(a.reader, "Roster file (.xlsx):", a.out)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		res, err := a.portal.ImportRoster(ctx, classID, data)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Enrolled %d student(s).\n", res.Enrolled)
		if len(res.Skipped) > 0 {
			fmt.Fprintf(a.out, "Skipped: %s\n", strings.Join(res.Skipped, ", "))
		}
		return nil
	})
}

// ExportGradebook saves a class gradebook as an XLSX file.
func (a *App) ExportGradebook(ctx context.Context) error {
	return a.action(ctx, "/teacher/classes", func(ctx context.Context) error {
		classID, err := GetID(a.reader, "Class id:", a.out)
		if err != nil {
			return err
		}
		def := fmt.Sprintf("gradebook-%d.xlsx", classID)
		path, err := getSimpleText(a.reader, fmt.Sprintf("Save as [%s]:", def), a.out)
		if err != nil {
			return err
		}
		if path == "" {
			path = def
		}

		data, err := a.portal.Gradebook(ctx, classID)
		if err != nil {
			return err
		}
		abs, err := filex.EnsureParentDir(path)
		if err != nil {
			return err
		}
		if err := os.WriteFile(abs, data, 0o640); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Gradebook saved to", abs)
		return nil
	})
}
