package cli

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/classroom/internal/client/router"
	"github.com/dmitrijs2005/classroom/internal/common"
	"github.com/dmitrijs2005/classroom/internal/dto"
	"github.com/dmitrijs2005/classroom/internal/filex"
)

const (
	msgNoRepos       = "Please enter at least one repository URL"
	msgNoValidRepos  = "Please enter valid GitHub repository URLs"
	msgNothingToSave = "No completed analyses to export"
)

var csvHeader = []string{"Repository Name", "URL", "Lines of Code", "Commits", "Contributors", "Last Updated"}

// BatchAnalyze analyses a list of repositories, one URL per line, and adds
// the outcome to the list shown on the repository list screen.
func (a *App) BatchAnalyze(ctx context.Context) error {
	return a.action(ctx, router.RepoListAnalysisPath, func(ctx context.Context) error {
		text, err := getMultiline(a.reader, "Repository URLs, one per line:", a.out)
		if err != nil {
			return err
		}

		var urls []string
		for _, line := range strings.Split(text, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				urls = append(urls, line)
			}
		}
		if len(urls) == 0 {
			return common.NewValidationError(msgNoRepos)
		}
		valid := make([]string, 0, len(urls))
		for _, u := range urls {
			if common.IsGitHubURL(u) {
				valid = append(valid, u)
			}
		}
		if len(valid) == 0 {
			return common.NewValidationError(msgNoValidRepos)
		}
		if skipped := len(urls) - len(valid); skipped > 0 {
			fmt.Fprintf(a.out, "Warning: %d invalid URLs were skipped\n", skipped)
		}

		fmt.Fprintf(a.out, "Analyzing %d repositories...\n", len(valid))
		res, err := a.portal.AnalyzeRepositories(ctx, valid)
		if err != nil {
			return err
		}
		a.batch = append(a.batch, res.Items...)

		failed := 0
		for _, it := range res.Items {
			if it.Status != "completed" {
				failed++
			}
		}
		fmt.Fprintf(a.out, "Analyzed %d repositories, %d failed.\n", len(res.Items), failed)
		return renderBatch(a.out, a.batch)
	})
}

// DropRepository removes entry n (1-based) from the repository list.
func (a *App) DropRepository(ctx context.Context, n string) error {
	return a.action(ctx, router.RepoListAnalysisPath, func(ctx context.Context) error {
		i, err := strconv.Atoi(n)
		if err != nil || i < 1 || i > len(a.batch) {
			return common.NewValidationError(fmt.Sprintf("Pick an entry between 1 and %d", len(a.batch)))
		}
		a.batch = append(a.batch[:i-1], a.batch[i:]...)
		fmt.Fprintln(a.out, "Repository has been removed from the list.")
		return renderBatch(a.out, a.batch)
	})
}

// ExportBatch saves the completed analyses of the list as CSV.
func (a *App) ExportBatch(ctx context.Context) error {
	return a.action(ctx, router.RepoListAnalysisPath, func(ctx context.Context) error {
		completed := make([]dto.BatchItem, 0, len(a.batch))
		for _, it := range a.batch {
			if it.Status == "completed" && it.Report != nil {
				completed = append(completed, it)
			}
		}
		if len(completed) == 0 {
			return common.NewValidationError(msgNothingToSave)
		}

		def := fmt.Sprintf("repository-analysis-%s.csv", time.Now().Format("2006-01-02"))
		path, err := getSimpleText(a.reader, fmt.Sprintf("Save as [%s]:", def), a.out)
		if err != nil {
			return err
		}
		if path == "" {
			path = def
		}
		abs, err := filex.EnsureParentDir(path)
		if err != nil {
			return err
		}

		f, err := os.OpenFile(abs, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o640)
		if err != nil {
			return err
		}
		if err := writeBatchCSV(f, completed); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Analysis results have been exported to", abs)
		return nil
	})
}

func writeBatchCSV(w io.Writer, items []dto.BatchItem) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, it := range items {
		r := it.Report
		updated := ""
		if !r.LastUpdated.IsZero() {
			updated = r.LastUpdated.Format("2006-01-02")
		}
		if err := cw.Write([]string{
			it.RepoName, it.RepoURL,
			strconv.Itoa(r.LinesOfCode), strconv.Itoa(r.Commits), strconv.Itoa(r.Contributors),
			updated,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func renderBatch(w io.Writer, items []dto.BatchItem) error {
	if len(items) == 0 {
		fmt.Fprintln(w, "No repositories analysed yet. Use 'batch' to add some.")
		return nil
	}
	rows := make([][]string, 0, len(items))
	for i, it := range items {
		loc, commits, contributors := "-", "-", "-"
		if it.Report != nil {
			loc = strconv.Itoa(it.Report.LinesOfCode)
			commits = strconv.Itoa(it.Report.Commits)
			contributors = strconv.Itoa(it.Report.Contributors)
		}
		status := it.Status
		if it.Error != "" {
			status += ": " + it.Error
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), it.RepoName, status, loc, commits, contributors})
	}
	return table(w, []string{"#", "REPOSITORY", "STATUS", "LOC", "COMMITS", "CONTRIBUTORS"}, rows)
}
