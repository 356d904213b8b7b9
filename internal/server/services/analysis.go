package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/classroom/internal/common"
	"github.com/dmitrijs2005/classroom/internal/logging"
	"github.com/dmitrijs2005/classroom/internal/server/models"
	"github.com/dmitrijs2005/classroom/internal/server/reports"
	"github.com/dmitrijs2005/classroom/internal/server/repositories/repomanager"
	"golang.org/x/sync/errgroup"
)

// Analyzer produces a report for a repository URL.
type Analyzer interface {
	Analyze(ctx context.Context, repoURL string) (*models.Analysis, error)
}

// SimulatedAnalyzer fabricates metrics after Delay. The metrics depend only
// on the URL and the day of the analysis.
type SimulatedAnalyzer struct {
	Delay time.Duration
	// FailureRate is the share of URLs, picked by hash, that fail with
	// common.ErrAnalysisFailed.
	FailureRate float64
	now         func() time.Time
}

func NewSimulatedAnalyzer(delay time.Duration) *SimulatedAnalyzer {
	return &SimulatedAnalyzer{Delay: delay, now: time.Now}
}

// Analyze waits for Delay or until ctx is done, whichever comes first.
func (a *SimulatedAnalyzer) Analyze(ctx context.Context, repoURL string) (*models.Analysis, error) {
	if a.Delay > 0 {
		t := time.NewTimer(a.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
		}
	}
	if a.FailureRate > 0 && failureRoll(repoURL) < a.FailureRate {
		return nil, common.ErrAnalysisFailed
	}
	return Simulate(repoURL, a.now()), nil
}

// failureRoll maps repoURL to [0, 1).
func failureRoll(repoURL string) float64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte("failure:" + repoURL))
	return float64(h.Sum32()%1000) / 1000
}

var simulatedLanguages = []models.Language{
	{Name: "JavaScript", Percentage: 45, Color: "#f1e05a"},
	{Name: "TypeScript", Percentage: 30, Color: "#2b7489"},
	{Name: "CSS", Percentage: 15, Color: "#563d7c"},
	{Name: "HTML", Percentage: 10, Color: "#e34c26"},
}

// Simulate derives a report for repoURL from an FNV-1a hash of the URL.
// LastUpdated falls within the 30 days before at.
func Simulate(repoURL string, at time.Time) *models.Analysis {
	h := fnv.New64a()
	_, _ = h.Write([]byte(repoURL))
	seed := h.Sum64()
	r := rand.New(rand.NewPCG(seed, seed>>32|seed<<32))

	coverage := 60 + r.IntN(40)
	langs := make([]models.Language, len(simulatedLanguages))
	copy(langs, simulatedLanguages)

	return &models.Analysis{
		RepoURL:      repoURL,
		RepoName:     common.RepoName(repoURL),
		LinesOfCode:  1000 + r.IntN(10000),
		Commits:      50 + r.IntN(200),
		Contributors: 1 + r.IntN(10),
		LastUpdated:  at.Add(-time.Duration(r.Int64N(int64(30 * 24 * time.Hour)))).Truncate(24 * time.Hour),
		Languages:    langs,
		Branches:     1 + r.IntN(10),
		Issues:       r.IntN(20),
		Stars:        r.IntN(100),
		Forks:        r.IntN(50),
		TestCoverage: coverage,
		CodeQuality:  qualityFor(coverage),
	}
}

func qualityFor(coverage int) string {
	switch {
	case coverage >= 90:
		return "Excellent"
	case coverage >= 75:
		return "Good"
	default:
		return "Fair"
	}
}

// MaxBatchSize is the most repositories one batch may list.
const MaxBatchSize = 10

// BatchOptions tunes AnalyzeBatch.
type BatchOptions struct {
	// Concurrency bounds the analyses running at once; values below 1
	// mean one at a time.
	Concurrency int
	// Stagger delays the start of the i-th repository by i*Stagger.
	Stagger time.Duration
}

type AnalysisService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	analyzer    Analyzer
	archiver    reports.Archiver
	batch       BatchOptions
	logger      logging.Logger
}

func NewAnalysisService(db *sql.DB, m repomanager.RepositoryManager, analyzer Analyzer, archiver reports.Archiver, batch BatchOptions, logger logging.Logger) *AnalysisService {
	if batch.Concurrency < 1 {
		batch.Concurrency = 1
	}
	return &AnalysisService{
		db:          db,
		repomanager: m,
		analyzer:    analyzer,
		archiver:    archiver,
		batch:       batch,
		logger:      logger.With("module", "analysis_service"),
	}
}

// Analyze runs the analyzer, stores the report and archives it. Archive
// failures are logged and do not fail the request.
func (s *AnalysisService) Analyze(ctx context.Context, userID, repoURL string) (*models.Analysis, error) {
	if err := common.ValidateRepoURL(repoURL); err != nil {
		return nil, err
	}

	a, err := s.analyzer.Analyze(ctx, repoURL)
	if err != nil {
		return nil, err
	}
	a.UserID = userID

	repo := s.repomanager.Analyses(s.db)
	a, err = repo.Create(ctx, a)
	if err != nil {
		return nil, err
	}

	key, err := s.archiver.Archive(ctx, a.ID, a)
	if err != nil {
		s.logger.Warn(ctx, "report archive failed", "analysis_id", a.ID, "error", err)
		return a, nil
	}
	if key != "" {
		if err := repo.UpdateArchiveKey(ctx, a.ID, key); err != nil {
			s.logger.Warn(ctx, "saving archive key failed", "analysis_id", a.ID, "error", err)
			return a, nil
		}
		a.ArchiveKey = key
	}
	return a, nil
}

// Get returns a report requested by userID. Reports of other users are
// reported as not found.
func (s *AnalysisService) Get(ctx context.Context, userID string, id int64) (*models.Analysis, error) {
	a, err := s.repomanager.Analyses(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return a, nil
}

type BatchStatus string

const (
	BatchPending   BatchStatus = "pending"
	BatchAnalyzing BatchStatus = "analyzing"
	BatchCompleted BatchStatus = "completed"
	BatchFailed    BatchStatus = "failed"
)

// BatchItem is the outcome for one repository of a batch.
type BatchItem struct {
	RepoURL string
	Status  BatchStatus
	Report  *models.Analysis
	Err     error
}

// BatchResult lists the analysed repositories in request order and the
// entries that were not GitHub repository URLs.
type BatchResult struct {
	Items   []*BatchItem
	Skipped []string
}

func (r *BatchResult) count(status BatchStatus) int {
	n := 0
	for _, it := range r.Items {
		if it.Status == status {
			n++
		}
	}
	return n
}

const (
	msgBatchEmpty   = "Please enter at least one repository URL"
	msgBatchInvalid = "Please enter valid GitHub repository URLs"
)

// AnalyzeBatch analyses every GitHub URL in repoURLs for userID. Blank
// entries are ignored and other non-GitHub entries are skipped. A failing
// repository is marked failed without affecting the others. When ctx ends
// before the batch is done, its error is returned.
func (s *AnalysisService) AnalyzeBatch(ctx context.Context, userID string, repoURLs []string) (*BatchResult, error) {
	res := &BatchResult{Items: make([]*BatchItem, 0, len(repoURLs)), Skipped: make([]string, 0)}
	listed := 0
	for _, u := range repoURLs {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		listed++
		if common.ValidateRepoURL(u) != nil {
			res.Skipped = append(res.Skipped, u)
			continue
		}
		res.Items = append(res.Items, &BatchItem{RepoURL: u, Status: BatchPending})
	}
	switch {
	case listed == 0:
		return nil, common.NewValidationError(msgBatchEmpty)
	case listed > MaxBatchSize:
		return nil, common.NewValidationError(fmt.Sprintf("A batch may list at most %d repositories", MaxBatchSize))
	case len(res.Items) == 0:
		return nil, common.NewValidationError(msgBatchInvalid)
	}

	var mu sync.Mutex
	setStatus := func(it *BatchItem, status BatchStatus) {
		mu.Lock()
		it.Status = status
		mu.Unlock()
	}

	var g errgroup.Group
	g.SetLimit(s.batch.Concurrency)
	for i, it := range res.Items {
		g.Go(func() error {
			if err := sleepCtx(ctx, time.Duration(i)*s.batch.Stagger); err != nil {
				return err
			}
			setStatus(it, BatchAnalyzing)

			a, err := s.Analyze(ctx, userID, it.RepoURL)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				it.Status, it.Err = BatchFailed, err
				if !errors.Is(err, common.ErrAnalysisFailed) {
					s.logger.Warn(ctx, "batch analysis failed", "repo_url", it.RepoURL, "error", err)
				}
				return nil
			}
			it.Status, it.Report = BatchCompleted, a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "batch analysed", "user_id", userID,
		"completed", res.count(BatchCompleted), "failed", res.count(BatchFailed), "skipped", len(res.Skipped))
	return res, nil
}

// sleepCtx waits for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
