// Package httpapi is the portal's JSON HTTP API. Every route in the table
// below is registered by Server.setup; role-restricted groups pass through
// the same access gate the client uses for its screens.
//
//	POST   /v1/api/main/auth/signup                          teacher signup
//	POST   /v1/api/main/auth/student/signup/:classroomId     student signup + enroll
//	POST   /:role/login                                      login
//	POST   /v1/api/main/auth/refresh                         rotate refresh token
//	POST   /v1/api/main/auth/logout                          clear cookies
//	GET    /v1/main/teacher/...                              teacher pages
//	GET    /v1/main/student/...                              student pages
//	POST   /v1/main/analysis, GET /v1/main/analysis/:id      repository analysis
//	GET    /health, /metrics
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/classroom/internal/common"
	"github.com/dmitrijs2005/classroom/internal/gate"
	"github.com/dmitrijs2005/classroom/internal/logging"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// bodyLimit caps request bodies, roster workbooks included.
const bodyLimit = "10M"

type Options struct {
	Address string
	Logger  logging.Logger

	SecretKey            []byte
	AccessTokenValidity  time.Duration
	RefreshTokenValidity time.Duration
	CookieSecure         bool
	CORSOrigins          []string

	// Registry collects the API metrics; a fresh one is made when nil.
	Registry *prometheus.Registry

	Users       UserService
	Classrooms  ClassroomService
	Assignments AssignmentService
	Submissions SubmissionService
	Dashboards  DashboardService
	Analyses    AnalysisService
}

type Server struct {
	opts      *Options
	app       *echo.Echo
	logger    logging.Logger
	metrics   *metrics
	registry  *prometheus.Registry
	validator *requestValidator
}

func NewServer(opts *Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop{}
	}
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	s := &Server{
		opts:      opts,
		app:       echo.New(),
		logger:    logger.With("module", "http_api"),
		registry:  reg,
		metrics:   newMetrics(reg),
		validator: newRequestValidator(),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	s.app.HideBanner = true
	s.app.HidePort = true
	s.app.HTTPErrorHandler = newHTTPErrorHandler(s.logger, s.validator)
	s.app.Validator = s.validator

	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(metricsMiddleware(s.metrics))
	s.app.Use(requestLogger(s.logger))
	s.app.Use(middleware.Recover())
	s.app.Use(middleware.BodyLimit(bodyLimit))
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     s.opts.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowCredentials: true,
	}))

	s.app.GET("/health", health)
	s.app.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	s.registerAuthAPI()

	authed := sessionMiddleware(s.opts.SecretKey)
	v1 := s.app.Group("/v1/main", authed)

	teacher := v1.Group("/teacher", requireMiddleware(gate.Require(common.RoleTeacher), s.metrics, s.logger))
	s.registerTeacherAPI(teacher)

	student := v1.Group("/student", requireMiddleware(gate.Require(common.RoleStudent), s.metrics, s.logger))
	s.registerStudentAPI(student)

	analysis := v1.Group("/analysis", requireMiddleware(gate.Require(), s.metrics, s.logger))
	analysis.POST("", s.analyze)
	analysis.POST("/batch", s.analyzeBatch)
	analysis.GET("/:id", s.getAnalysis)
}

// Start serves until Shutdown. A clean shutdown returns nil.
func (s *Server) Start() error {
	s.logger.Info(context.Background(), "http server listening", "address", s.opts.Address)
	if err := s.app.Start(s.opts.Address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
