package router

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/classroom/internal/common"
	"github.com/dmitrijs2005/classroom/internal/gate"
	"github.com/dmitrijs2005/classroom/internal/logging"
)

// maxHops bounds redirects per navigation. The gate only redirects to a
// dashboard the session may open or to the public login screen, so one
// redirect is the legitimate maximum.
const maxHops = 1

var (
	ErrUnknownRoute   = errors.New("unknown route")
	ErrRedirectLoop   = errors.New("too many redirects")
	ErrSessionLoading = errors.New("session is still loading")
)

// Checker is the access gate as the router sees it.
type Checker interface {
	Check(ctx context.Context, req gate.Requirement) gate.Decision
}

// Screen is where navigation landed.
type Screen struct {
	Route Route
	// Redirected lists the paths that were refused on the way.
	Redirected []string
}

// Router resolves paths to screens.
type Router struct {
	routes  map[string]Route
	order   []string
	gate    Checker
	logger  logging.Logger
	current string
}

func New(routes []Route, g Checker, logger logging.Logger) *Router {
	r := &Router{
		routes: make(map[string]Route, len(routes)),
		gate:   g,
		logger: logger.With("module", "router"),
	}
	for _, rt := range routes {
		if _, dup := r.routes[rt.Path]; !dup {
			r.order = append(r.order, rt.Path)
		}
		r.routes[rt.Path] = rt
	}
	return r
}

// Lookup returns the route registered for path.
func (r *Router) Lookup(path string) (Route, bool) {
	rt, ok := r.routes[normalize(path)]
	return rt, ok
}

// Current is the path of the screen last navigated to.
func (r *Router) Current() string { return r.current }

// Navigate opens path, following gate redirects. Content of a refused
// screen is never returned.
func (r *Router) Navigate(ctx context.Context, path string) (Screen, error) {
	var refused []string
	target := normalize(path)

	for hop := 0; hop <= maxHops; hop++ {
		rt, ok := r.routes[target]
		if !ok {
			return Screen{}, fmt.Errorf("%w: %s", ErrUnknownRoute, target)
		}

		if rt.Public {
			r.current = rt.Path
			return Screen{Route: rt, Redirected: refused}, nil
		}

		d := r.gate.Check(ctx, rt.Requirement)
		switch d.State {
		case gate.Authorized:
			r.current = rt.Path
			return Screen{Route: rt, Redirected: refused}, nil
		case gate.Loading:
			return Screen{}, ErrSessionLoading
		case gate.Redirecting:
			r.logger.Debug(ctx, "redirect", "from", rt.Path, "to", d.Location)
			refused = append(refused, rt.Path)
			target = normalize(d.Location)
		}
	}

	return Screen{}, fmt.Errorf("%w: %s", ErrRedirectLoop, strings.Join(refused, " -> "))
}

// Menu returns the sidebar entries visible to role, in table order.
func (r *Router) Menu(role common.Role) []Route {
	var items []Route
	for _, p := range r.order {
		rt := r.routes[p]
		if rt.Menu && !rt.Public && rt.Requirement.Allows(role) {
			items = append(items, rt)
		}
	}
	return items
}

func normalize(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return common.HomePath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path
}
