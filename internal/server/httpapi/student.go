package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/classroom/internal/dto"
	"github.com/labstack/echo/v4"
)

func (s *Server) registerStudentAPI(g *echo.Group) {
	g.GET("/dashboard", s.studentDashboard)
	g.GET("/classes", s.studentClasses)
	g.POST("/classes/join", s.joinClass)
	g.GET("/assignments", s.studentAssignments)
	g.POST("/assignments/:id/submit", s.submit)
	g.GET("/submissions", s.studentSubmissions)
	g.GET("/results", s.studentResults)
}

func (s *Server) studentDashboard(c echo.Context) error {
	d, err := s.opts.Dashboards.Student(c.Request().Context(), currentRecord(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, studentDashboardDTO(d))
}

func (s *Server) studentClasses(c echo.Context) error {
	cs, err := s.opts.Classrooms.ListForStudent(c.Request().Context(), currentRecord(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, classroomDTOs(cs, false))
}

func (s *Server) joinClass(c echo.Context) error {
	var req dto.JoinClassroomRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	cl, err := s.opts.Classrooms.Join(c.Request().Context(), currentRecord(c).ID, req.Code)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, classroomDTO(cl, false))
}

func (s *Server) studentAssignments(c echo.Context) error {
	as, err := s.opts.Assignments.ListForStudent(c.Request().Context(), currentRecord(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, assignmentDTOs(as))
}

func (s *Server) submit(c echo.Context) error {
	assignmentID, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.SubmitRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	sub, err := s.opts.Submissions.Submit(c.Request().Context(), currentRecord(c).ID, assignmentID, req.RepoURL)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, submissionDTO(sub))
}

func (s *Server) studentSubmissions(c echo.Context) error {
	subs, err := s.opts.Submissions.ListForStudent(c.Request().Context(), currentRecord(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, submissionDTOs(subs))
}

func (s *Server) studentResults(c echo.Context) error {
	rs, err := s.opts.Submissions.Results(c.Request().Context(), currentRecord(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resultDTOs(rs))
}
