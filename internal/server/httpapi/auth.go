package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/classroom/internal/common"
	"github.com/dmitrijs2005/classroom/internal/dto"
	"github.com/dmitrijs2005/classroom/internal/server/services"
	"github.com/labstack/echo/v4"
)

func (s *Server) registerAuthAPI() {
	g := s.app.Group("/v1/api/main/auth")
	g.POST("/signup", s.signupTeacher)
	g.POST("/student/signup/:classroomId", s.signupStudent)
	g.POST("/refresh", s.refresh)
	g.POST("/logout", s.logout)

	s.app.POST("/:role/login", s.login)
}

// bind decodes the JSON body into dst and validates it.
func (s *Server) bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return errInvalidRequestBody
	}
	return c.Validate(dst)
}

func (s *Server) signupTeacher(c echo.Context) error {
	var req dto.SignupRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}

	res, err := s.opts.Users.SignupTeacher(c.Request().Context(), signupInput(req))
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return errEmailTaken
		}
		return err
	}
	return s.authenticated(c, http.StatusCreated, res, "Signup successful")
}

func (s *Server) signupStudent(c echo.Context) error {
	classroomID, err := strconv.ParseInt(c.Param("classroomId"), 10, 64)
	if err != nil || classroomID <= 0 {
		return errClassroomNotFound
	}

	var req dto.SignupRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}

	res, err := s.opts.Users.SignupStudent(c.Request().Context(), classroomID, signupInput(req))
	switch {
	case errors.Is(err, common.ErrorAlreadyExists):
		return errEmailTaken
	case errors.Is(err, common.ErrorNotFound):
		return errClassroomNotFound
	case err != nil:
		return err
	}
	return s.authenticated(c, http.StatusCreated, res, "Signup successful")
}

func (s *Server) login(c echo.Context) error {
	role, err := common.ParseRole(c.Param("role"))
	if err != nil {
		return err
	}

	var req dto.LoginRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}

	res, err := s.opts.Users.Login(c.Request().Context(), role, req.Email, req.Password)
	if err != nil {
		return err
	}
	return s.authenticated(c, http.StatusOK, res, "Login successful")
}

func (s *Server) refresh(c echo.Context) error {
	cookie, err := c.Cookie(common.RefreshCookieName)
	if err != nil || cookie.Value == "" {
		return errMissingRefresh
	}

	res, err := s.opts.Users.Refresh(c.Request().Context(), cookie.Value)
	if err != nil {
		if errors.Is(err, common.ErrInvalidToken) || errors.Is(err, common.ErrRefreshTokenExpired) {
			s.clearCookies(c)
		}
		return err
	}
	return s.authenticated(c, http.StatusOK, res, "")
}

// logout always clears the cookies; revoking the refresh token is best effort.
func (s *Server) logout(c echo.Context) error {
	if cookie, err := c.Cookie(common.RefreshCookieName); err == nil && cookie.Value != "" {
		if err := s.opts.Users.Logout(c.Request().Context(), cookie.Value); err != nil {
			s.logger.Warn(c.Request().Context(), "refresh token revocation failed", "error", err)
		}
	}
	s.clearCookies(c)
	return c.JSON(http.StatusOK, dto.AuthResponse{Message: "Logged out"})
}

func (s *Server) authenticated(c echo.Context, code int, res *services.AuthResult, message string) error {
	s.setCookie(c, common.SessionCookieName, res.AccessToken, s.opts.AccessTokenValidity)
	s.setCookie(c, common.RefreshCookieName, res.RefreshToken, s.opts.RefreshTokenValidity)
	return c.JSON(code, dto.AuthResponse{
		UserID:  dto.ID(res.User.ID),
		Role:    string(res.User.Role),
		Name:    res.User.Name,
		Email:   res.User.Email,
		Message: message,
	})
}

func (s *Server) setCookie(c echo.Context, name, value string, ttl time.Duration) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   s.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearCookies(c echo.Context) {
	for _, name := range []string{common.SessionCookieName, common.RefreshCookieName} {
		c.SetCookie(&http.Cookie{
			Name:     name,
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   s.opts.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

func signupInput(req dto.SignupRequest) services.SignupInput {
	return services.SignupInput{
		Name:     strings.TrimSpace(req.Name),
		Email:    req.Email,
		Password: req.Password,
	}
}
