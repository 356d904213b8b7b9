// Package services contains the portal client's application services.
// AuthService ties the API calls to the session context: a successful
// signup or login persists the session record and names the screen to open.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/classroom/internal/client/api"
	"github.com/dmitrijs2005/classroom/internal/common"
	"github.com/dmitrijs2005/classroom/internal/logging"
	"github.com/dmitrijs2005/classroom/internal/session"
)

// AuthClient is the part of the API client AuthService needs.
type AuthClient interface {
	Signup(ctx context.Context, data api.SignupData) (*api.AuthResponse, error)
	Login(ctx context.Context, data api.LoginData) (*api.AuthResponse, error)
	Logout(ctx context.Context) error
	Ping(ctx context.Context) error
}

// AuthService defines authentication operations for the CLI. Signup and
// Login return the path of the landing screen.
type AuthService interface {
	Signup(ctx context.Context, data api.SignupData) (string, error)
	Login(ctx context.Context, data api.LoginData) (string, error)
	Logout(ctx context.Context) (string, error)
	Ping(ctx context.Context) error
}

type authService struct {
	client   AuthClient
	sessions *session.Manager
	logger   logging.Logger
}

func NewAuthService(client AuthClient, sessions *session.Manager, logger logging.Logger) AuthService {
	return &authService{client: client, sessions: sessions, logger: logger.With("module", "auth_service")}
}

func (a *authService) Signup(ctx context.Context, data api.SignupData) (string, error) {
	resp, err := a.client.Signup(ctx, data)
	if err != nil {
		return "", err
	}
	return a.begin(ctx, resp, data.Email, data.Name)
}

func (a *authService) Login(ctx context.Context, data api.LoginData) (string, error) {
	resp, err := a.client.Login(ctx, data)
	if err != nil {
		return "", err
	}
	return a.begin(ctx, resp, data.Email, "")
}

// Logout tells the server to drop its cookies and always clears the local
// record, even when the server cannot be reached.
func (a *authService) Logout(ctx context.Context) (string, error) {
	if err := a.client.Logout(ctx); err != nil {
		a.logger.Warn(ctx, "server logout failed", "error", err)
	}
	if err := a.sessions.End(ctx); err != nil {
		return "", err
	}
	return common.HomePath, nil
}

func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

func (a *authService) begin(ctx context.Context, resp *api.AuthResponse, email, name string) (string, error) {
	rec, err := resp.Record()
	if err != nil {
		if errors.Is(err, common.ErrInvalidRole) {
			return "", fmt.Errorf("server returned an unusable role: %w", err)
		}
		return "", fmt.Errorf("server returned an unusable session: %w", err)
	}
	if rec.Email == "" {
		rec.Email = email
	}
	if rec.Name == "" {
		rec.Name = name
	}

	if err := a.sessions.Begin(ctx, rec); err != nil {
		return "", err
	}
	return rec.Role.DashboardPath(), nil
}
