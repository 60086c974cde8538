package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/cx-tal-miterani/travel-desk/internal/gateway"
	"github.com/cx-tal-miterani/travel-desk/internal/logger"
	"github.com/cx-tal-miterani/travel-desk/internal/metrics"
	"github.com/cx-tal-miterani/travel-desk/internal/models"
)

// AuthService signs operators in and out
type AuthService interface {
	SignIn(ctx context.Context, req *models.SignInRequest) (*models.AuthResponse, error)
	SignUp(ctx context.Context, req *models.SignUpRequest) (*models.AuthResponse, error)
	SignOut(ctx context.Context, token string) error
}

type authServiceImpl struct {
	auth     gateway.Authenticator
	log      logger.Logger
	metrics  *metrics.Metrics
	validate *validator.Validate
}

// NewAuthService creates a new AuthService. m may be nil.
func NewAuthService(auth gateway.Authenticator, log logger.Logger, m *metrics.Metrics) AuthService {
	return &authServiceImpl{
		auth:     auth,
		log:      log,
		metrics:  m,
		validate: newValidator(),
	}
}

func (s *authServiceImpl) SignIn(ctx context.Context, req *models.SignInRequest) (*models.AuthResponse, error) {
	if err := check(s.validate, req); err != nil {
		return nil, err
	}
	session, user, err := s.auth.SignIn(ctx, req.Email, req.Password)
	s.record("sign_in", err)
	if err != nil {
		return nil, authError("sign in", err)
	}
	s.log.Info("operator signed in", "user", user.ID)
	return &models.AuthResponse{Session: session, User: user}, nil
}

func (s *authServiceImpl) SignUp(ctx context.Context, req *models.SignUpRequest) (*models.AuthResponse, error) {
	if err := check(s.validate, req); err != nil {
		return nil, err
	}
	if err := gateway.CheckPassword(req.Password); err != nil {
		s.record("sign_up", err)
		return nil, err
	}
	session, user, err := s.auth.SignUp(ctx, req.Email, req.Password, req.Name)
	s.record("sign_up", err)
	if err != nil {
		return nil, authError("sign up", err)
	}
	s.log.Info("operator signed up", "user", user.ID)
	return &models.AuthResponse{Session: session, User: user}, nil
}

func (s *authServiceImpl) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.auth.SignOut(ctx, token); err != nil {
		return fmt.Errorf("failed to sign out: %w", err)
	}
	return nil
}

func (s *authServiceImpl) record(action string, err error) {
	if s.metrics == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	s.metrics.AuthAttempts.WithLabelValues(action, outcome).Inc()
}

// authError passes policy errors through and wraps backend failures
func authError(action string, err error) error {
	if errors.Is(err, gateway.ErrInvalidCredentials) ||
		errors.Is(err, gateway.ErrWeakPassword) ||
		errors.Is(err, gateway.ErrEmailTaken) {
		return err
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}
