// Package server wires the portal server together: database, migrations,
// optional Redis cache and S3 report archive, the services, the HTTP API and
// the gRPC health endpoint. It also handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/classroom/internal/logging"
	"github.com/dmitrijs2005/classroom/internal/server/cache"
	"github.com/dmitrijs2005/classroom/internal/server/config"
	"github.com/dmitrijs2005/classroom/internal/server/health"
	"github.com/dmitrijs2005/classroom/internal/server/httpapi"
	"github.com/dmitrijs2005/classroom/internal/server/reports"
	"github.com/dmitrijs2005/classroom/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/classroom/internal/server/services"
)

const (
	shutdownTimeout     = 10 * time.Second
	healthProbeInterval = 15 * time.Second
	tokenPurgeInterval  = time.Hour
	cacheKeyPrefix      = "classroom:"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	closers []func() error
	users   *services.UserService
	api     *httpapi.Server
	health  *health.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	app := &App{config: c, logger: logger, closers: []func() error{db.Close}}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		app.close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	dashboardCache, err := app.initCache(ctx)
	if err != nil {
		app.close()
		return nil, err
	}

	archiver, err := app.initArchiver(ctx)
	if err != nil {
		app.close()
		return nil, err
	}

	app.users = services.NewUserService(db, rm, c)
	classrooms := services.NewClassroomService(db, rm, dashboardCache, logger)
	assignments := services.NewAssignmentService(db, rm, dashboardCache, logger)
	submissions := services.NewSubmissionService(db, rm, dashboardCache, logger)
	dashboards := services.NewDashboardService(db, rm, dashboardCache, c.DashboardCacheTTL, logger)
	analyzer := services.NewSimulatedAnalyzer(c.AnalysisDelay)
	analyzer.FailureRate = c.AnalysisFailureRate
	analyses := services.NewAnalysisService(db, rm, analyzer, archiver, services.BatchOptions{
		Concurrency: c.AnalysisConcurrency,
		Stagger:     c.AnalysisStagger,
	}, logger)

	app.api = httpapi.NewServer(&httpapi.Options{
		Address:              c.HTTPAddr,
		Logger:               logger,
		SecretKey:            []byte(c.SecretKey),
		AccessTokenValidity:  c.AccessTokenValidityDuration,
		RefreshTokenValidity: c.RefreshTokenValidityDuration,
		CookieSecure:         c.CookieSecure,
		CORSOrigins:          c.CORSOrigins,
		Users:                app.users,
		Classrooms:           classrooms,
		Assignments:          assignments,
		Submissions:          submissions,
		Dashboards:           dashboards,
		Analyses:             analyses,
	})
	app.health = health.NewServer(c.GRPCHealthAddr, db, healthProbeInterval, logger)

	return app, nil
}

// initCache connects to Redis when an address is configured.
func (app *App) initCache(ctx context.Context) (cache.Cache, error) {
	if app.config.RedisAddr == "" {
		return cache.Nop{}, nil
	}
	client, err := cache.NewRedisClient(ctx, app.config.RedisAddr, app.config.RedisPassword, app.config.RedisDB)
	if err != nil {
		return nil, fmt.Errorf("redis init error: %w", err)
	}
	app.closers = append(app.closers, client.Close)
	return cache.NewRedisCache(client, cacheKeyPrefix), nil
}

// initArchiver builds the S3 report archive when an endpoint is configured.
func (app *App) initArchiver(ctx context.Context) (reports.Archiver, error) {
	if app.config.S3BaseEndpoint == "" {
		return reports.Nop{}, nil
	}
	a, err := reports.NewS3Archiver(ctx, reports.Options{
		Bucket:       app.config.S3Bucket,
		Region:       app.config.S3Region,
		RootUser:     app.config.S3RootUser,
		RootPassword: app.config.S3RootPassword,
		BaseEndpoint: app.config.S3BaseEndpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 init error: %w", err)
	}
	return a, nil
}

func (app *App) close() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil {
			app.logger.Warn(context.Background(), "close failed", "error", err)
		}
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := app.api.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(shutdownCtx, "http shutdown failed", "error", err)
		}
	}()

	if err := app.api.Start(); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHealthServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.health.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// purgeExpiredTokens drops expired refresh tokens every tokenPurgeInterval.
func (app *App) purgeExpiredTokens(ctx context.Context) {
	ticker := time.NewTicker(tokenPurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := app.users.PurgeExpiredTokens(ctx)
			if err != nil {
				app.logger.Warn(ctx, "refresh token purge failed", "error", err)
				continue
			}
			app.logger.Debug(ctx, "refresh tokens purged", "count", n)
		}
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHealthServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.purgeExpiredTokens(ctx)
	}()

	wg.Wait()
	app.close()

	app.logger.Info(context.Background(), "App stopped")
}
