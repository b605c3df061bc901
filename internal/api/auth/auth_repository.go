package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/workboard/go-job-board/app/observability/metrics"
	"github.com/workboard/go-job-board/internal/api"
	"github.com/workboard/go-job-board/internal/types"
)

var _ AuthRepo = (*PostgresAuthRepo)(nil)

// AuthRepo is the persistence contract for identity records.
type AuthRepo interface {
	// CreateUser persists a new identity. Returns api.ErrConflict when the
	// email is already registered.
	CreateUser(ctx context.Context, name, email, passwordHash string, role types.Role) (*types.User, error)

	// GetUserByEmail looks up an identity by email, case-insensitively.
	// Returns api.ErrNotFound when no such identity exists.
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)
}

type PostgresAuthRepo struct {
	logger *slog.Logger
	db     api.Querier
}

func NewPostgresAuthRepo(db api.Querier, logger *slog.Logger) *PostgresAuthRepo {
	return &PostgresAuthRepo{
		logger: logger,
		db:     db,
	}
}

func (r *PostgresAuthRepo) CreateUser(ctx context.Context, name, email, passwordHash string, role types.Role) (*types.User, error) {
	start := time.Now()
	var user types.User
	err := r.db.QueryRow(ctx,
		`INSERT INTO users (name, email, password_hash, role)
         VALUES ($1, $2, $3, $4)
         RETURNING id, name, email, password_hash, role, created_at, updated_at`,
		name, email, passwordHash, role,
	).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt, &user.UpdatedAt)
	metrics.Get().DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		if api.IsUniqueViolation(err) {
			return nil, fmt.Errorf("email %q already registered: %w", email, api.ErrConflict)
		}
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return &user, nil
}

func (r *PostgresAuthRepo) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	start := time.Now()
	var user types.User
	err := r.db.QueryRow(ctx,
		`SELECT id, name, email, password_hash, role, created_at, updated_at
         FROM users WHERE lower(email) = lower($1)`,
		email,
	).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt, &user.UpdatedAt)
	metrics.Get().DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %q: %w", email, api.ErrNotFound)
		}
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		return nil, fmt.Errorf("failed to query user by email: %w", err)
	}
	return &user, nil
}
