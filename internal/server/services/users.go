// Package services holds the portal server's business logic. Services work
// on repositories vended by a repomanager.RepositoryManager and group related
// writes in transactions.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/classroom/internal/common"
	"github.com/dmitrijs2005/classroom/internal/dbx"
	"github.com/dmitrijs2005/classroom/internal/server/auth"
	"github.com/dmitrijs2005/classroom/internal/server/config"
	"github.com/dmitrijs2005/classroom/internal/server/models"
	"github.com/dmitrijs2005/classroom/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/classroom/internal/session"
	"golang.org/x/crypto/bcrypt"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthResult is a signed-in user with fresh tokens.
type AuthResult struct {
	User *models.User
	TokenPair
}

// SignupInput carries the fields of a signup form.
type SignupInput struct {
	Name     string
	Email    string
	Password string
}

// UserService handles signup, login and token rotation.
type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	bcryptCost                   int
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		bcryptCost:                   bcrypt.DefaultCost,
	}
}

// SignupTeacher creates a teacher account. A taken email yields
// common.ErrorAlreadyExists.
func (s *UserService) SignupTeacher(ctx context.Context, in SignupInput) (*AuthResult, error) {
	var res *AuthResult
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		user, err := s.createUser(ctx, tx, in, common.RoleTeacher)
		if err != nil {
			return err
		}
		res, err = s.issue(ctx, tx, user)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// SignupStudent creates a student account and enrolls it in classroomID in
// one transaction. An unknown classroom yields common.ErrorNotFound.
func (s *UserService) SignupStudent(ctx context.Context, classroomID int64, in SignupInput) (*AuthResult, error) {
	var res *AuthResult
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		classes := s.repomanager.Classrooms(tx)
		if _, err := classes.GetByID(ctx, classroomID); err != nil {
			return err
		}

		user, err := s.createUser(ctx, tx, in, common.RoleStudent)
		if err != nil {
			return err
		}
		if err := classes.Enroll(ctx, classroomID, user.ID); err != nil {
			return fmt.Errorf("error enrolling student: %w", err)
		}

		res, err = s.issue(ctx, tx, user)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Login checks the password and that the account has the requested role.
// Every mismatch yields common.ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, role common.Role, email, password string) (*AuthResult, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, common.ErrorInternal
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, common.ErrInvalidCredentials
	}
	if user.Role != role {
		return nil, common.ErrInvalidCredentials
	}

	return s.issue(ctx, s.db, user)
}

// Refresh validates a refresh token, rotates it transactionally and returns
// the owner with a fresh TokenPair.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	token, err := s.repomanager.RefreshTokens(s.db).Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}
	if token.Expires.Before(time.Now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	var res *AuthResult
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.RefreshTokens(tx).Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("error deleting refresh token: %w", err)
		}
		user, err := s.repomanager.Users(tx).GetByID(ctx, token.UserID)
		if err != nil {
			return fmt.Errorf("error loading user: %w", err)
		}
		res, err = s.issue(ctx, tx, user)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Logout revokes the refresh token. An empty token is ignored.
func (s *UserService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.repomanager.RefreshTokens(s.db).Delete(ctx, refreshToken)
}

// PurgeExpiredTokens removes refresh tokens that are past their expiry.
func (s *UserService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	return s.repomanager.RefreshTokens(s.db).DeleteExpired(ctx, time.Now())
}

func (s *UserService) createUser(ctx context.Context, db dbx.DBTX, in SignupInput, role common.Role) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        normalizeEmail(in.Email),
		PasswordHash: hash,
		Role:         role,
	}
	user, err = s.repomanager.Users(db).Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return user, nil
}

func (s *UserService) issue(ctx context.Context, db dbx.DBTX, user *models.User) (*AuthResult, error) {
	rec := &session.Record{ID: user.ID, Email: user.Email, Name: user.Name, Role: user.Role}
	access, err := auth.GenerateToken(rec, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrorInternal
	}
	if err := s.repomanager.RefreshTokens(db).Create(ctx, user.ID, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrorInternal
	}
	return &AuthResult{User: user, TokenPair: TokenPair{AccessToken: access, RefreshToken: refresh}}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
