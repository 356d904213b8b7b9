package analyses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/classroom/internal/common"
	"github.com/dmitrijs2005/classroom/internal/dbx"
	"github.com/dmitrijs2005/classroom/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, a *models.Analysis) (*models.Analysis, error) {
	langs, err := json.Marshal(a.Languages)
	if err != nil {
		return nil, fmt.Errorf("marshal languages: %w", err)
	}

	query := `
		INSERT INTO analyses (user_id, repo_url, repo_name, lines_of_code, commits, contributors,
		                      last_updated, languages, branches, issues, stars, forks, test_coverage, code_quality)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at
	`
	err = r.db.QueryRowContext(ctx, query,
		a.UserID, a.RepoURL, a.RepoName, a.LinesOfCode, a.Commits, a.Contributors,
		a.LastUpdated, langs, a.Branches, a.Issues, a.Stars, a.Forks, a.TestCoverage, a.CodeQuality,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Analysis, error) {
	query := `
		SELECT id, user_id, repo_url, repo_name, lines_of_code, commits, contributors, last_updated,
		       languages, branches, issues, stars, forks, test_coverage, code_quality, archive_key, created_at
		FROM analyses
		WHERE id = $1
	`
	a := &models.Analysis{}
	var langs []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&a.ID, &a.UserID, &a.RepoURL, &a.RepoName, &a.LinesOfCode, &a.Commits, &a.Contributors, &a.LastUpdated,
		&langs, &a.Branches, &a.Issues, &a.Stars, &a.Forks, &a.TestCoverage, &a.CodeQuality, &a.ArchiveKey, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if err := json.Unmarshal(langs, &a.Languages); err != nil {
		return nil, fmt.Errorf("unmarshal languages: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) UpdateArchiveKey(ctx context.Context, id int64, key string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE analyses SET archive_key = $2 WHERE id = $1`, id, key); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
