package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/classroom/internal/common"
	"github.com/dmitrijs2005/classroom/internal/dto"
	"github.com/dmitrijs2005/classroom/internal/session"
)

// SignupData is what the signup form collects.
type SignupData struct {
	Role        string
	Name        string
	Email       string
	Password    string
	ClassroomID string
}

// LoginData is what the login form collects.
type LoginData struct {
	Email    string
	Password string
	Role     string
}

// AuthResponse is the parsed success body of signup and login.
type AuthResponse dto.AuthResponse

// Record turns the response into a session record. The role is lower-cased
// so "Teacher" becomes teacher.
func (r *AuthResponse) Record() (*session.Record, error) {
	role, err := common.ParseRole(r.Role)
	if err != nil {
		return nil, err
	}
	rec := &session.Record{ID: string(r.UserID), Email: r.Email, Name: r.Name, Role: role}
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return rec, nil
}

// SignupPath returns the endpoint for data, or an error when data cannot
// be sent at all.
func SignupPath(data SignupData) (string, error) {
	role, err := common.ParseRole(data.Role)
	if err != nil {
		return "", common.ErrInvalidRole
	}
	switch role {
	case common.RoleTeacher:
		return "/v1/api/main/auth/signup", nil
	default:
		classroomID := strings.TrimSpace(data.ClassroomID)
		if classroomID == "" {
			return "", ErrClassroomRequired
		}
		return "/v1/api/main/auth/student/signup/" + url.PathEscape(classroomID), nil
	}
}

// Signup registers a teacher, or a student into a classroom.
func (c *Client) Signup(ctx context.Context, data SignupData) (*AuthResponse, error) {
	path, err := SignupPath(data)
	if err != nil {
		return nil, err
	}

	req := dto.SignupRequest{Name: data.Name, Email: data.Email, Password: data.Password}

	out := &AuthResponse{}
	if err := c.do(ctx, call{method: http.MethodPost, path: path, body: req, out: out, fallback: msgSignupFailed}); err != nil {
		return nil, err
	}
	return out, nil
}

// Login authenticates against the role's login endpoint.
func (c *Client) Login(ctx context.Context, data LoginData) (*AuthResponse, error) {
	role, err := common.ParseRole(data.Role)
	if err != nil {
		return nil, common.ErrInvalidRole
	}

	req := dto.LoginRequest{Email: data.Email, Password: data.Password}

	out := &AuthResponse{}
	if err := c.do(ctx, call{method: http.MethodPost, path: "/" + string(role) + "/login", body: req, out: out, fallback: msgLoginFailed}); err != nil {
		return nil, err
	}
	return out, nil
}

// Refresh rotates the refresh cookie and obtains a new session cookie.
func (c *Client) Refresh(ctx context.Context) (*AuthResponse, error) {
	out := &AuthResponse{}
	if err := c.do(ctx, call{method: http.MethodPost, path: "/v1/api/main/auth/refresh", out: out, fallback: msgRefreshFailed}); err != nil {
		return nil, err
	}
	return out, nil
}

// Logout asks the server to drop the session cookies.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, call{method: http.MethodPost, path: "/v1/api/main/auth/logout", fallback: msgLogoutFailed})
}
