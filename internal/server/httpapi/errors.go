package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/classroom/internal/common"
	"github.com/dmitrijs2005/classroom/internal/logging"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var (
	errNotAuthenticated   = echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	errSessionExpired     = echo.NewHTTPError(http.StatusUnauthorized, "Session expired")
	errInvalidSession     = echo.NewHTTPError(http.StatusUnauthorized, "Invalid session")
	errMissingRefresh     = echo.NewHTTPError(http.StatusUnauthorized, "Missing refresh token")
	errForbidden          = echo.NewHTTPError(http.StatusForbidden, "Access denied")
	errEmailTaken         = echo.NewHTTPError(http.StatusConflict, "Email already registered")
	errClassroomNotFound  = echo.NewHTTPError(http.StatusNotFound, "Classroom not found")
	errInvalidRequestBody = echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
)

// statusFor maps domain errors to a status and a message safe to show.
func statusFor(err error) (int, string) {
	switch {
	case common.IsValidation(err):
		var v *common.ValidationError
		errors.As(err, &v)
		return http.StatusBadRequest, v.Message
	case errors.Is(err, common.ErrInvalidRole):
		return http.StatusBadRequest, common.ErrInvalidRole.Error()
	case errors.Is(err, common.ErrInvalidJoinCode):
		return http.StatusNotFound, common.ErrInvalidJoinCode.Error()
	case errors.Is(err, common.ErrAlreadyJoined):
		return http.StatusConflict, common.ErrAlreadyJoined.Error()
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, common.ErrorAlreadyExists):
		return http.StatusConflict, "Already exists"
	case errors.Is(err, common.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid email or password"
	case errors.Is(err, common.ErrTokenExpired), errors.Is(err, common.ErrRefreshTokenExpired):
		return http.StatusUnauthorized, errSessionExpired.Message.(string)
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized, errInvalidSession.Message.(string)
	case errors.Is(err, common.ErrorForbidden):
		return http.StatusForbidden, errForbidden.Message.(string)
	case errors.Is(err, common.ErrNotEnrolled):
		return http.StatusForbidden, "You are not enrolled in this class"
	case errors.Is(err, common.ErrAnalysisFailed):
		return http.StatusBadGateway, common.ErrAnalysisFailed.Error()
	default:
		return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
	}
}

// newHTTPErrorHandler returns an echo.HTTPErrorHandler writing every failure
// as {"error": message}.
func newHTTPErrorHandler(logger logging.Logger, rv *requestValidator) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		// already answered further down the middleware chain
		if c.Response().Committed {
			return
		}

		var (
			code    int
			message string
			httpErr *echo.HTTPError
			valErrs validator.ValidationErrors
		)

		switch {
		case errors.As(err, &httpErr):
			if herr, ok := httpErr.Internal.(*echo.HTTPError); ok {
				httpErr = herr
			}
			code = httpErr.Code
			if m, ok := httpErr.Message.(string); ok {
				message = m
			} else {
				message = http.StatusText(code)
			}
		case errors.As(err, &valErrs):
			code = http.StatusBadRequest
			message = rv.message(valErrs)
		default:
			code, message = statusFor(err)
			if code == http.StatusInternalServerError {
				args := []any{"error", err, "method", c.Request().Method, "path", c.Path()}
				if rec := currentRecord(c); rec != nil {
					args = append(args, "user_id", rec.ID)
				}
				logger.Error(c.Request().Context(), "request failed", args...)
			}
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, echo.Map{"error": message})
		}
		if err != nil {
			logger.Error(c.Request().Context(), "error response failed", "error", err)
		}
	}
}
