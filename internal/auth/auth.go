package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/minhasfinancas/financas-go/internal/transport"
	"github.com/minhasfinancas/financas-go/internal/types"
	pkgerrors "github.com/pkg/errors"
)

const (
	loginEndpoint    = "/auth/login"
	registerEndpoint = "/auth/register"

	loginFallback    = "Erro ao fazer login"
	registerFallback = "Erro ao criar conta"
)

// Executor performs a REST call. *transport.RESTTransport satisfies it.
type Executor interface {
	Execute(ctx context.Context, r *transport.Request, result interface{}) error
}

// Service handles the credential exchange with the auth endpoints
type Service struct {
	executor Executor
	logger   types.Logger
}

// NewService creates a new auth service
func NewService(executor Executor, logger types.Logger) *Service {
	return &Service{
		executor: executor,
		logger:   logger,
	}
}

// Login exchanges email and password for a token and user
func (s *Service) Login(ctx context.Context, email, password string) (*types.AuthResponse, error) {
	body := map[string]interface{}{
		"email":    email,
		"password": password,
	}

	if s.logger != nil {
		s.logger.Debug("Login request", "email", email)
	}

	resp, err := s.call(ctx, loginEndpoint, body, loginFallback)
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("Login successful", "email", email)
	}
	return resp, nil
}

// Register creates an account and returns its token and user
func (s *Service) Register(ctx context.Context, name, email, password string) (*types.AuthResponse, error) {
	body := map[string]interface{}{
		"name":     name,
		"email":    email,
		"password": password,
	}

	if s.logger != nil {
		s.logger.Debug("Register request", "email", email)
	}

	resp, err := s.call(ctx, registerEndpoint, body, registerFallback)
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("Registration successful", "email", email)
	}
	return resp, nil
}

// call posts credentials and normalizes failures into a LOGIN_FAILED error
// carrying either the server's message or the generic fallback.
func (s *Service) call(ctx context.Context, path string, body map[string]interface{}, fallback string) (*types.AuthResponse, error) {
	var resp types.AuthResponse

	err := s.executor.Execute(ctx, &transport.Request{
		Method: http.MethodPost,
		Path:   path,
		Body:   body,
	}, &resp)
	if err != nil {
		return nil, credentialError(err, fallback)
	}

	if resp.Token == "" {
		return nil, &types.Error{
			Code:    "LOGIN_FAILED",
			Message: fallback,
			Err:     types.ErrLoginFailed,
		}
	}

	return &resp, nil
}

func credentialError(err error, fallback string) error {
	var apiErr *types.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if generatedMessage(msg) {
			msg = fallback
		}
		return &types.Error{
			Code:       "LOGIN_FAILED",
			Message:    msg,
			StatusCode: apiErr.StatusCode,
			RequestID:  apiErr.RequestID,
			Err:        types.ErrLoginFailed,
		}
	}
	return &types.Error{
		Code:    "LOGIN_FAILED",
		Message: fallback,
		Err:     pkgerrors.Wrap(types.ErrLoginFailed, err.Error()),
	}
}

// generatedMessage reports whether msg was made up by the transport rather
// than sent by the server
func generatedMessage(msg string) bool {
	return msg == "" || strings.HasPrefix(msg, "server error:") || strings.HasPrefix(msg, "HTTP error:")
}

// TokenExpiry reads the exp claim of a JWT without verifying its signature.
// Tokens that are not JWTs, or carry no exp, report ok=false.
func TokenExpiry(token string) (expiresAt time.Time, ok bool) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
