package httpapi

import (
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/classroom/internal/dto"
	"github.com/dmitrijs2005/classroom/internal/server/gradebook"
	"github.com/dmitrijs2005/classroom/internal/server/services"
	"github.com/labstack/echo/v4"
)

// rosterField is the multipart field carrying an uploaded roster.
const rosterField = "file"

var fileNameUnsafe = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

func (s *Server) registerTeacherAPI(g *echo.Group) {
	g.GET("/dashboard", s.teacherDashboard)

	g.GET("/classes", s.teacherClasses)
	g.POST("/classes", s.createClass)
	g.GET("/classes/:id/students", s.classStudents)
	g.DELETE("/classes/:id/students/:studentId", s.removeStudent)
	g.POST("/classes/:id/roster", s.importRoster)
	g.GET("/classes/:id/gradebook", s.exportGradebook)

	g.GET("/assignments", s.teacherAssignments)
	g.POST("/assignments", s.createAssignment)

	g.GET("/submissions", s.teacherSubmissions)
	g.PUT("/submissions/:id/grade", s.gradeSubmission)
}

// idParam parses a positive numeric path parameter.
func idParam(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+name)
	}
	return id, nil
}

func (s *Server) teacherDashboard(c echo.Context) error {
	d, err := s.opts.Dashboards.Teacher(c.Request().Context(), currentRecord(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, teacherDashboardDTO(d))
}

func (s *Server) teacherClasses(c echo.Context) error {
	cs, err := s.opts.Classrooms.ListForTeacher(c.Request().Context(), currentRecord(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, classroomDTOs(cs, true))
}

func (s *Server) createClass(c echo.Context) error {
	var req dto.CreateClassroomRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	cl, err := s.opts.Classrooms.Create(c.Request().Context(), currentRecord(c).ID, req.Name, req.Description)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, classroomDTO(cl, true))
}

func (s *Server) classStudents(c echo.Context) error {
	classID, err := idParam(c, "id")
	if err != nil {
		return err
	}
	es, err := s.opts.Classrooms.Students(c.Request().Context(), currentRecord(c).ID, classID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, studentDTOs(es))
}

func (s *Server) removeStudent(c echo.Context) error {
	classID, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := s.opts.Classrooms.RemoveStudent(c.Request().Context(), currentRecord(c).ID, classID, c.Param("studentId")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// importRoster accepts the workbook either as a multipart upload or as the
// raw request body.
func (s *Server) importRoster(c echo.Context) error {
	classID, err := idParam(c, "id")
	if err != nil {
		return err
	}

	var r io.Reader = c.Request().Body
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		fh, err := c.FormFile(rosterField)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Roster file is required")
		}
		f, err := fh.Open()
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	res, err := s.opts.Classrooms.ImportRoster(c.Request().Context(), currentRecord(c).ID, classID, r)
	if err != nil {
		return err
	}
	skipped := res.Skipped
	if skipped == nil {
		skipped = []string{}
	}
	return c.JSON(http.StatusOK, dto.RosterImportResult{Enrolled: res.Enrolled, Skipped: skipped})
}

func (s *Server) exportGradebook(c echo.Context) error {
	classID, err := idParam(c, "id")
	if err != nil {
		return err
	}
	data, cl, err := s.opts.Classrooms.Gradebook(c.Request().Context(), currentRecord(c).ID, classID)
	if err != nil {
		return err
	}
	name := strings.Trim(fileNameUnsafe.ReplaceAllString(cl.Name, "-"), "-")
	if name == "" {
		name = "class"
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s-gradebook.xlsx"`, name))
	return c.Blob(http.StatusOK, gradebook.ContentType, data)
}

func (s *Server) teacherAssignments(c echo.Context) error {
	as, err := s.opts.Assignments.ListForTeacher(c.Request().Context(), currentRecord(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, assignmentDTOs(as))
}

func (s *Server) createAssignment(c echo.Context) error {
	var req dto.CreateAssignmentRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	a, err := s.opts.Assignments.Create(c.Request().Context(), currentRecord(c).ID, services.AssignmentInput{
		ClassroomID: req.ClassroomID,
		Title:       req.Title,
		Description: req.Description,
		Deadline:    req.Deadline,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, assignmentDTO(a))
}

func (s *Server) teacherSubmissions(c echo.Context) error {
	var assignmentID int64
	if v := c.QueryParam("assignmentId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid assignmentId")
		}
		assignmentID = id
	}
	subs, err := s.opts.Submissions.ListForTeacher(c.Request().Context(), currentRecord(c).ID, assignmentID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, submissionDTOs(subs))
}

func (s *Server) gradeSubmission(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var req dto.GradeRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	sub, err := s.opts.Submissions.Grade(c.Request().Context(), currentRecord(c).ID, id, req.Grade, req.Feedback)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, submissionDTO(sub))
}
