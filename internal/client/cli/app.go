package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/dmitrijs2005/classroom/internal/client/api"
	"github.com/dmitrijs2005/classroom/internal/client/config"
	"github.com/dmitrijs2005/classroom/internal/client/router"
	"github.com/dmitrijs2005/classroom/internal/client/services"
	"github.com/dmitrijs2005/classroom/internal/client/storage"
	"github.com/dmitrijs2005/classroom/internal/common"
	"github.com/dmitrijs2005/classroom/internal/dto"
	"github.com/dmitrijs2005/classroom/internal/gate"
	"github.com/dmitrijs2005/classroom/internal/logging"
	"github.com/dmitrijs2005/classroom/internal/session"
)

// Portal is the set of portal API calls the screens use. *api.Client
// satisfies it.
type Portal interface {
	TeacherDashboard(ctx context.Context) (*dto.DashboardData, error)
	StudentDashboard(ctx context.Context) (*dto.StudentDashboardData, error)
	TeacherClasses(ctx context.Context) ([]dto.Classroom, error)
	CreateClass(ctx context.Context, req dto.CreateClassroomRequest) (*dto.Classroom, error)
	ClassStudents(ctx context.Context, classID int64) ([]dto.Student, error)
	RemoveStudent(ctx context.Context, classID int64, studentID string) error
	ImportRoster(ctx context.Context, classID int64, xlsx []byte) (*dto.RosterImportResult, error)
	Gradebook(ctx context.Context, classID int64) ([]byte, error)
	TeacherAssignments(ctx context.Context) ([]dto.Assignment, error)
	CreateAssignment(ctx context.Context, req dto.CreateAssignmentRequest) (*dto.Assignment, error)
	TeacherSubmissions(ctx context.Context, assignmentID int64) ([]dto.Submission, error)
	GradeSubmission(ctx context.Context, submissionID int64, req dto.GradeRequest) (*dto.Submission, error)
	StudentClasses(ctx context.Context) ([]dto.Classroom, error)
	JoinClass(ctx context.Context, code string) (*dto.Classroom, error)
	StudentAssignments(ctx context.Context) ([]dto.Assignment, error)
	Submit(ctx context.Context, assignmentID int64, repoURL string) (*dto.Submission, error)
	StudentSubmissions(ctx context.Context) ([]dto.Submission, error)
	StudentResults(ctx context.Context) ([]dto.Result, error)
	AnalyzeRepository(ctx context.Context, repoURL string) (*dto.AnalysisReport, error)
	AnalyzeRepositories(ctx context.Context, repoURLs []string) (*dto.BatchAnalysisResult, error)
}

type App struct {
	config   *config.Config
	auth     services.AuthService
	portal   Portal
	sessions *session.Manager
	router   *router.Router
	logger   logging.Logger
	reader   *bufio.Reader
	out      io.Writer

	// batch is the repository list of the batch analysis screen.
	batch []dto.BatchItem
}

// NewApp wires the client over already opened local repositories.
func NewApp(c *config.Config, repos *storage.Repositories, logger logging.Logger) (*App, error) {
	apiClient, err := api.New(c.ServerURL, c.RequestTimeout, logger)
	if err != nil {
		return nil, err
	}

	sessions := session.NewManager(session.NewStore(repos.LocalStorage), logger)
	r := router.New(router.DefaultRoutes(), gate.New(sessions, logger), logger)

	return &App{
		config:   c,
		auth:     services.NewAuthService(apiClient, sessions, logger),
		portal:   apiClient,
		sessions: sessions,
		router:   r,
		logger:   logger,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}, nil
}

// Run restores the stored session, opens the landing screen and serves the
// REPL until the user exits or ctx is done.
func (a *App) Run(ctx context.Context) error {
	if err := a.sessions.Init(ctx); err != nil {
		return fmt.Errorf("restore session: %w", err)
	}

	if err := a.auth.Ping(ctx); err != nil {
		log.Printf("Server %s is not reachable: %v", a.config.ServerURL, err)
	}

	fmt.Fprintln(a.out, "Welcome to the Classroom portal (type 'help' for commands)")
	_ = a.Open(ctx, a.landing())

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
	return nil
}

// landing is the screen opened at startup.
func (a *App) landing() string {
	if rec := a.sessions.Current(); rec != nil {
		return rec.Role.DashboardPath()
	}
	return common.HomePath
}

func (a *App) role() common.Role {
	if rec := a.sessions.Current(); rec != nil {
		return rec.Role
	}
	return ""
}

func (a *App) getStatus() string {
	s := a.router.Current()
	if rec := a.sessions.Current(); rec != nil {
		s = fmt.Sprintf("%s (%s) %s", rec.DisplayName(), rec.Role, s)
	}
	return s
}

// notify shows err the way the portal shows a toast.
func (a *App) notify(err error) {
	fmt.Fprintln(a.out, "Error:", err.Error())
}
