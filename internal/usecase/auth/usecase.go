package auth

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"vet-clinic-service/internal/usecase/profile"
	pkgerrors "vet-clinic-service/pkg/errors"
	"vet-clinic-service/pkg/security"
)

// LoginRequest represents the credentials posted to the login endpoint.
type LoginRequest struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// SafeUser is the credential-free user view returned alongside the token.
type SafeUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

// LoginResponse carries the issued bearer token and the authenticated user.
type LoginResponse struct {
	Token string   `json:"token"`
	User  SafeUser `json:"user"`
}

// Usecase defines the interface for authentication operations.
type Usecase interface {
	Login(ctx context.Context, in LoginRequest) (*LoginResponse, error)
}

// Service implements login against the user repository and token manager.
type Service struct {
	repo     profile.Repository
	tokens   *security.TokenManager
	log      *zap.Logger
	validate *validator.Validate
}

// New creates a new auth Service.
func New(repo profile.Repository, tokens *security.TokenManager, log *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		tokens:   tokens,
		log:      log,
		validate: validator.New(),
	}
}

// Login verifies the credentials and issues a signed token. Unknown email
// and wrong password produce the same error so the endpoint does not leak
// which accounts exist.
func (s *Service) Login(ctx context.Context, in LoginRequest) (*LoginResponse, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, pkgerrors.NewValidationError("", "email and password are required")
	}

	u, err := s.repo.GetByEmail(ctx, in.Email)
	if err != nil {
		s.log.Error("failed to look up user for login", zap.Error(err))
		return nil, pkgerrors.NewInternalError("login failed", err)
	}
	if u == nil || !security.VerifyPassword(in.Password, u.PasswordHash) {
		s.log.Warn("login rejected", zap.String("email", in.Email))
		return nil, pkgerrors.NewAuthError("invalid credentials")
	}

	token, err := s.tokens.Issue(u.ID, string(u.Role))
	if err != nil {
		s.log.Error("failed to issue token", zap.Int64("id", u.ID), zap.Error(err))
		return nil, pkgerrors.NewInternalError("failed to issue token", err)
	}

	s.log.Info("user logged in", zap.Int64("id", u.ID), zap.String("role", string(u.Role)))

	return &LoginResponse{
		Token: token,
		User: SafeUser{
			ID:        u.ID,
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Email:     u.Email,
			Role:      string(u.Role),
		},
	}, nil
}
