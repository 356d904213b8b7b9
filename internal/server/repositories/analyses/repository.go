// Package analyses stores repository analysis reports.
package analyses

import (
	"context"

	"github.com/dmitrijs2005/classroom/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, a *models.Analysis) (*models.Analysis, error)
	GetByID(ctx context.Context, id int64) (*models.Analysis, error)
	UpdateArchiveKey(ctx context.Context, id int64, key string) error
}
