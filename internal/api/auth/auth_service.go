package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/crypto/bcrypt"

	"github.com/workboard/go-job-board/app/observability/metrics"
	"github.com/workboard/go-job-board/internal/api"
	"github.com/workboard/go-job-board/internal/types"
)

var _ AuthService = (*AuthServiceImpl)(nil)

// AuthService owns the credential flow: password hashing at write time,
// credential verification, and token issuance.
type AuthService interface {
	// Register creates an identity and returns it with a fresh access token.
	Register(ctx context.Context, name, email, password, requestedRole string) (*types.User, string, error)

	// Login verifies credentials and returns the identity with a fresh access
	// token. An unknown email and a wrong password are indistinguishable to
	// the caller: both return api.ErrUnauthenticated.
	Login(ctx context.Context, email, password string) (*types.User, string, error)
}

type AuthServiceImpl struct {
	logger     *slog.Logger
	repo       AuthRepo
	tokens     *TokenService
	bcryptCost int
}

func NewAuthService(repo AuthRepo, tokens *TokenService, bcryptCost int, logger *slog.Logger) *AuthServiceImpl {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthServiceImpl{
		logger:     logger,
		repo:       repo,
		tokens:     tokens,
		bcryptCost: bcryptCost,
	}
}

func (s *AuthServiceImpl) Register(ctx context.Context, name, email, password, requestedRole string) (*types.User, string, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Register")
	defer span.End()

	// Requested roles are clamped; admin can never be self-assigned.
	role := types.ClampRequestedRole(requestedRole)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		span.SetStatus(codes.Error, "password hashing failed")
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.repo.CreateUser(ctx, name, email, string(hash), role)
	if err != nil {
		if errors.Is(err, api.ErrConflict) {
			s.logger.WarnContext(ctx, "Signup rejected, email already registered", slog.String("email", email))
		}
		span.SetStatus(codes.Error, "user creation failed")
		return nil, "", err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		span.SetStatus(codes.Error, "token issuance failed")
		return nil, "", err
	}

	metrics.Get().SignupRequestsTotal.Add(ctx, 1)
	s.logger.InfoContext(ctx, "User registered",
		slog.String("user_id", user.ID.String()),
		slog.String("role", string(user.Role)),
	)
	return user, token, nil
}

func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*types.User, string, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Login")
	defer span.End()

	metrics.Get().LoginRequestsTotal.Add(ctx, 1)

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			// Same outcome as a wrong password so callers cannot probe for
			// registered emails.
			metrics.Get().LoginFailuresTotal.Add(ctx, 1)
			return nil, "", fmt.Errorf("login for %q: %w", email, api.ErrUnauthenticated)
		}
		span.SetStatus(codes.Error, "user lookup failed")
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		metrics.Get().LoginFailuresTotal.Add(ctx, 1)
		s.logger.WarnContext(ctx, "Login rejected, password mismatch", slog.String("user_id", user.ID.String()))
		return nil, "", fmt.Errorf("login for %q: %w", email, api.ErrUnauthenticated)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		span.SetStatus(codes.Error, "token issuance failed")
		return nil, "", err
	}

	return user, token, nil
}
