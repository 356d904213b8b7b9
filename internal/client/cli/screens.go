package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/classroom/internal/client/router"
	"github.com/dmitrijs2005/classroom/internal/common"
)

// Open navigates to path and renders the screen the gate lets through.
// When the gate redirects, only the final screen is rendered.
func (a *App) Open(ctx context.Context, path string) error {
	screen, err := a.router.Navigate(ctx, path)
	if err != nil {
		if errors.Is(err, router.ErrUnknownRoute) {
			fmt.Fprintln(a.out, "No such screen:", path)
			return err
		}
		a.notify(err)
		return err
	}

	title(a.out, screen.Route.Title)
	if err := a.render(ctx, screen.Route); err != nil {
		a.notify(err)
		return err
	}
	return nil
}

// enter opens path for an action. It reports false when the gate sent the
// user elsewhere; the landing screen has been rendered in that case.
func (a *App) enter(ctx context.Context, path string) bool {
	if err := a.Open(ctx, path); err != nil {
		return false
	}
	return a.router.Current() == path
}

func (a *App) render(ctx context.Context, rt router.Route) error {
	switch rt.Path {
	case common.HomePath:
		fmt.Fprintln(a.out, "Classroom repository portal.")
		if a.role() == "" {
			fmt.Fprintln(a.out, "Use 'login' or 'signup' to get started.")
		} else {
			fmt.Fprintln(a.out, "Use 'menu' to see your screens.")
		}
		return nil
	case common.LoginPath:
		fmt.Fprintln(a.out, "Use 'login' to sign in as a teacher or a student.")
		return nil
	case common.SignupPath:
		fmt.Fprintln(a.out, "Use 'signup' to create an account.")
		return nil

	case "/teacher/dashboard":
		d, err := a.portal.TeacherDashboard(ctx)
		if err != nil {
			return err
		}
		return renderTeacherDashboard(a.out, d)
	case "/teacher/classes":
		classes, err := a.portal.TeacherClasses(ctx)
		if err != nil {
			return err
		}
		return renderClasses(a.out, classes)
	case "/teacher/assignments":
		list, err := a.portal.TeacherAssignments(ctx)
		if err != nil {
			return err
		}
		return renderAssignments(a.out, list)
	case "/teacher/submissions":
		list, err := a.portal.TeacherSubmissions(ctx, 0)
		if err != nil {
			return err
		}
		return renderSubmissions(a.out, list)
	case "/teacher/students":
		return a.renderAllStudents(ctx)

	case "/student/dashboard":
		d, err := a.portal.StudentDashboard(ctx)
		if err != nil {
			return err
		}
		return renderStudentDashboard(a.out, d)
	case "/student/classes":
		classes, err := a.portal.StudentClasses(ctx)
		if err != nil {
			return err
		}
		return renderClasses(a.out, classes)
	case "/student/assignments":
		list, err := a.portal.StudentAssignments(ctx)
		if err != nil {
			return err
		}
		return renderAssignments(a.out, list)
	case "/student/submissions":
		list, err := a.portal.StudentSubmissions(ctx)
		if err != nil {
			return err
		}
		return renderSubmissions(a.out, list)
	case "/student/results":
		list, err := a.portal.StudentResults(ctx)
		if err != nil {
			return err
		}
		return renderResults(a.out, list)

	case router.RepoAnalysisPath:
		fmt.Fprintln(a.out, "Use 'analyze' to analyze a GitHub repository.")
		return nil
	case router.RepoListAnalysisPath:
		fmt.Fprintln(a.out, "Use 'batch' to analyze several repositories, 'drop <n>' to remove one and 'csv' to export.")
		return renderBatch(a.out, a.batch)
	}
	return nil
}

func (a *App) renderAllStudents(ctx context.Context) error {
	classes, err := a.portal.TeacherClasses(ctx)
	if err != nil {
		return err
	}
	if len(classes) == 0 {
		fmt.Fprintln(a.out, "No classes yet.")
		return nil
	}
	for _, c := range classes {
		students, err := a.portal.ClassStudents(ctx, c.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "\n%s (%d)\n", c.Name, c.ID)
		if err := renderStudents(a.out, students); err != nil {
			return err
		}
	}
	return nil
}

// Menu lists the screens available to the signed-in role.
func (a *App) Menu(ctx context.Context) error {
	role := a.role()
	if role == "" {
		fmt.Fprintln(a.out, "Not signed in. Screens: /, /login, /signup")
		return nil
	}
	var items []string
	for _, rt := range a.router.Menu(role) {
		items = append(items, fmt.Sprintf("  %-24s %s", rt.Path, rt.Title))
	}
	fmt.Fprintln(a.out, strings.Join(items, "\n"))
	return nil
}
