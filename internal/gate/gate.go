// Package gate decides whether a signed-in user may see a role-restricted
// screen. Decisions are pure: the only side effect the caller should take
// is navigating to Decision.Location when the state is Redirecting.
package gate

import (
	"context"
	"slices"

	"github.com/dmitrijs2005/classroom/internal/common"
	"github.com/dmitrijs2005/classroom/internal/logging"
	"github.com/dmitrijs2005/classroom/internal/session"
)

// State is the per-mount state of a gated screen.
type State int

const (
	Loading State = iota
	Authorized
	Redirecting
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Authorized:
		return "authorized"
	case Redirecting:
		return "redirecting"
	default:
		return "unknown"
	}
}

// Requirement is the set of roles allowed through. The zero value admits
// any signed-in user.
type Requirement struct {
	roles []common.Role
}

// Require builds a requirement satisfied by any of roles.
func Require(roles ...common.Role) Requirement {
	return Requirement{roles: slices.Clone(roles)}
}

// Allows reports whether role satisfies the requirement.
func (r Requirement) Allows(role common.Role) bool {
	if !role.Valid() {
		return false
	}
	return len(r.roles) == 0 || slices.Contains(r.roles, role)
}

// Roles returns the accepted roles; empty means any.
func (r Requirement) Roles() []common.Role {
	return slices.Clone(r.roles)
}

// Decision is the outcome of a gate check.
type Decision struct {
	State    State
	Location string
	Record   *session.Record
}

// Rendered reports whether the gated content may be shown.
func (d Decision) Rendered() bool { return d.State == Authorized }

// Evaluate applies req to rec. A missing record redirects to the login
// screen; a role outside req redirects to that role's own dashboard.
func Evaluate(req Requirement, rec *session.Record) Decision {
	if rec == nil {
		return Decision{State: Redirecting, Location: common.LoginPath}
	}
	if !rec.Role.Valid() {
		return Decision{State: Redirecting, Location: common.LoginPath}
	}
	if !req.Allows(rec.Role) {
		return Decision{State: Redirecting, Location: rec.Role.DashboardPath(), Record: rec}
	}
	return Decision{State: Authorized, Record: rec}
}

// SessionSource is the session context a Gate reads.
type SessionSource interface {
	Ready() bool
	Current() *session.Record
}

// Gate evaluates requirements against the live session context.
type Gate struct {
	sessions SessionSource
	logger   logging.Logger
}

func New(sessions SessionSource, logger logging.Logger) *Gate {
	return &Gate{sessions: sessions, logger: logger.With("module", "gate")}
}

// Check returns Loading until the session context is ready, then the
// result of Evaluate.
func (g *Gate) Check(ctx context.Context, req Requirement) Decision {
	if !g.sessions.Ready() {
		return Decision{State: Loading}
	}
	d := Evaluate(req, g.sessions.Current())
	if d.State == Redirecting {
		g.logger.Debug(ctx, "access redirected", "location", d.Location)
	}
	return d
}
