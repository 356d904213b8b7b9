// Package users declares the repository contract for portal accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/classroom/internal/server/models"
)

type Repository interface {
	// Create inserts user and fills its ID and CreatedAt. A taken email
	// yields common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}
