package httpapi

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/classroom/internal/common"
	"github.com/dmitrijs2005/classroom/internal/gate"
	"github.com/dmitrijs2005/classroom/internal/logging"
	"github.com/dmitrijs2005/classroom/internal/server/auth"
	"github.com/dmitrijs2005/classroom/internal/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// recordKey is the echo context key of the authenticated session record.
const recordKey = "session_record"

func currentRecord(c echo.Context) *session.Record {
	rec, _ := c.Get(recordKey).(*session.Record)
	return rec
}

// sessionMiddleware authenticates the request from the session cookie.
func sessionMiddleware(secretKey []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(common.SessionCookieName)
			if err != nil || cookie.Value == "" {
				return errNotAuthenticated
			}
			claims, err := auth.ParseToken(cookie.Value, secretKey)
			if err != nil {
				if errors.Is(err, common.ErrTokenExpired) {
					return errSessionExpired
				}
				return errInvalidSession
			}
			c.Set(recordKey, claims.Record())
			return next(c)
		}
	}
}

// requireMiddleware runs the access gate for req. Requests the gate would
// redirect are refused with 403.
func requireMiddleware(req gate.Requirement, m *metrics, logger logging.Logger) echo.MiddlewareFunc {
	required := requirementLabel(req)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rec := currentRecord(c)
			d := gate.Evaluate(req, rec)
			if d.Rendered() {
				return next(c)
			}
			role := "none"
			if rec != nil {
				role = string(rec.Role)
			}
			m.gateDenials.WithLabelValues(required, role).Inc()
			logger.Debug(c.Request().Context(), "access denied", "path", c.Path(), "role", role, "required", required)
			return errForbidden
		}
	}
}

func requirementLabel(req gate.Requirement) string {
	roles := req.Roles()
	if len(roles) == 0 {
		return "any"
	}
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return strings.Join(names, ",")
}

// requestLogger writes one structured line per request.
func requestLogger(logger logging.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			args := []any{"method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency}
			if v.Error != nil {
				args = append(args, "error", v.Error)
			}
			logger.Info(c.Request().Context(), "request", args...)
			return nil
		},
	})
}

// metricsMiddleware counts requests and observes their latency per route.
func metricsMiddleware(m *metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			path := c.Path()
			if path == "" {
				path = "unmatched"
			}
			method := c.Request().Method
			m.requests.WithLabelValues(method, path, strconv.Itoa(c.Response().Status)).Inc()
			m.duration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}
