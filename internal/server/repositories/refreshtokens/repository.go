// Package refreshtokens declares the server-side repository contract for
// managing refresh tokens in persistent storage.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/classroom/internal/server/models"
)

// Repository defines operations for issuing, retrieving, and revoking refresh tokens.
type Repository interface {
	// Create stores a new refresh token for userID with an expiry of now+validity.
	Create(ctx context.Context, userID string, token string, validity time.Duration) error

	// Find looks up a refresh token by its opaque token string and returns
	// common.ErrorNotFound when it is absent.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete removes a refresh token. Deleting a missing token is not an error.
	Delete(ctx context.Context, token string) error

	// DeleteExpired removes tokens that expired before now and reports how many.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
