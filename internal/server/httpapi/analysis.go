package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/classroom/internal/common"
	"github.com/dmitrijs2005/classroom/internal/dto"
	"github.com/labstack/echo/v4"
)

// analyze runs on the request context: a client that gives up cancels the
// simulated analysis.
func (s *Server) analyze(c echo.Context) error {
	var req dto.AnalyzeRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	a, err := s.opts.Analyses.Analyze(c.Request().Context(), currentRecord(c).ID, req.RepoURL)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, analysisDTO(a))
}

// analyzeBatch answers once every listed repository is done. A failed
// repository does not fail the request.
func (s *Server) analyzeBatch(c echo.Context) error {
	var req dto.BatchAnalyzeRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	res, err := s.opts.Analyses.AnalyzeBatch(c.Request().Context(), currentRecord(c).ID, req.RepoURLs)
	if err != nil {
		return err
	}

	out := dto.BatchAnalysisResult{Items: make([]dto.BatchItem, 0, len(res.Items)), Skipped: res.Skipped}
	if out.Skipped == nil {
		out.Skipped = []string{}
	}
	for _, it := range res.Items {
		item := dto.BatchItem{RepoURL: it.RepoURL, RepoName: common.RepoName(it.RepoURL), Status: string(it.Status)}
		if it.Report != nil {
			item.Report = analysisDTO(it.Report)
		}
		if it.Err != nil {
			_, item.Error = statusFor(it.Err)
		}
		out.Items = append(out.Items, item)
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) getAnalysis(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	a, err := s.opts.Analyses.Get(c.Request().Context(), currentRecord(c).ID, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, analysisDTO(a))
}
