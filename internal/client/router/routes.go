// Package router is the portal client's navigation-state model: a table of
// screens, each guarded by a gate requirement, and a navigator that follows
// gate redirects until it reaches a screen that may be rendered.
package router

import (
	"github.com/dmitrijs2005/classroom/internal/common"
	"github.com/dmitrijs2005/classroom/internal/gate"
)

// Route is one screen.
type Route struct {
	Path  string
	Title string
	// Public routes skip the gate.
	Public      bool
	Requirement gate.Requirement
	// Menu marks routes listed in the sidebar.
	Menu bool
}

const (
	RepoAnalysisPath     = "/repo-analysis"
	RepoListAnalysisPath = "/repo-list-analysis"
)

var (
	teacherOnly = gate.Require(common.RoleTeacher)
	studentOnly = gate.Require(common.RoleStudent)
	anyRole     = gate.Require(common.RoleTeacher, common.RoleStudent)
)

// DefaultRoutes is the portal's screen table.
func DefaultRoutes() []Route {
	return []Route{
		{Path: common.HomePath, Title: "Home", Public: true},
		{Path: common.LoginPath, Title: "Login", Public: true},
		{Path: common.SignupPath, Title: "Sign up", Public: true},

		{Path: "/teacher/dashboard", Title: "Dashboard", Requirement: teacherOnly, Menu: true},
		{Path: "/teacher/classes", Title: "Classes", Requirement: teacherOnly, Menu: true},
		{Path: "/teacher/assignments", Title: "Assignments", Requirement: teacherOnly, Menu: true},
		{Path: "/teacher/submissions", Title: "Submissions", Requirement: teacherOnly, Menu: true},
		{Path: "/teacher/students", Title: "Students", Requirement: teacherOnly, Menu: true},

		{Path: "/student/dashboard", Title: "Dashboard", Requirement: studentOnly, Menu: true},
		{Path: "/student/classes", Title: "My Classes", Requirement: studentOnly, Menu: true},
		{Path: "/student/assignments", Title: "Assignments", Requirement: studentOnly, Menu: true},
		{Path: "/student/submissions", Title: "Submissions", Requirement: studentOnly, Menu: true},
		{Path: "/student/results", Title: "Results", Requirement: studentOnly, Menu: true},

		{Path: RepoAnalysisPath, Title: "Repository Analysis", Requirement: anyRole, Menu: true},
		{Path: RepoListAnalysisPath, Title: "Repository List Analysis", Requirement: anyRole},
	}
}
