// Package session owns the signed-in user's session record: its wire form,
// its persistence under a fixed local storage key and the in-memory session
// context handed to every screen.
package session

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/classroom/internal/common"
)

var (
	// ErrMalformedSession is returned when the stored record cannot be
	// trusted. The stored value is wiped before it is returned.
	ErrMalformedSession = errors.New("malformed session record")

	ErrEmptyUserID = errors.New("session record has no user id")
)

// Record identifies the signed-in user.
type Record struct {
	ID    string      `json:"id"`
	Email string      `json:"email"`
	Name  string      `json:"name"`
	Role  common.Role `json:"role"`
}

// Validate checks that r can drive access decisions.
func (r *Record) Validate() error {
	if r.ID == "" {
		return ErrEmptyUserID
	}
	if !r.Role.Valid() {
		return fmt.Errorf("%w: %q", common.ErrInvalidRole, r.Role)
	}
	return nil
}

// DisplayName is the name when known, otherwise the email.
func (r *Record) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.Email
}
