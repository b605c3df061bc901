package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/workboard/go-job-board/app/observability/metrics"
	"github.com/workboard/go-job-board/internal/api"
	"github.com/workboard/go-job-board/internal/types"
)

// Typed context keys keep request-scoped identity off global state and away
// from collisions with other packages.
type contextKey string

const UserIDKey contextKey = "userID"
const UserRoleKey contextKey = "userRole"

// Authenticate validates the bearer token on every request and attaches the
// subject id and role to the request context. It never touches the credential
// store: identity is read from the token alone.
func Authenticate(logger *slog.Logger, tokens *TokenService) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			l := logger.With(slog.String("middleware", "Authenticate"))

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				l.WarnContext(ctx, "Missing Authorization header")
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Authorization header required")
				return
			}

			headerParts := strings.Split(authHeader, " ")
			if len(headerParts) != 2 || !strings.EqualFold(headerParts[0], "bearer") {
				l.WarnContext(ctx, "Invalid Authorization header format")
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
				return
			}

			claims, err := tokens.Verify(headerParts[1])
			if err != nil {
				// The failure kind is logged but never shown to the caller.
				metrics.Get().TokenVerifyFailuresTotal.Add(ctx, 1)
				l.WarnContext(ctx, "Token verification failed",
					slog.String("kind", FailureKind(err)),
					slog.Any("error", err),
				)
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			userID, err := uuid.Parse(claims.UserID)
			if err != nil {
				l.WarnContext(ctx, "Token subject is not a valid UUID", slog.String("user_id", claims.UserID))
				api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			ctx = context.WithValue(ctx, UserIDKey, userID)
			ctx = context.WithValue(ctx, UserRoleKey, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole restricts an endpoint to a fixed set of roles. Membership is
// exact: there is no hierarchy between roles. It must run after Authenticate;
// a missing role in the context is a programming error and panics rather than
// silently allowing the request through.
func RequireRole(logger *slog.Logger, allowed ...types.Role) func(next http.Handler) http.Handler {
	allowedSet := make(map[types.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			role, ok := GetUserRoleFromContext(ctx)
			if !ok {
				panic("auth: RequireRole used on a route without Authenticate")
			}

			if _, allowed := allowedSet[role]; !allowed {
				logger.WarnContext(ctx, "Role check failed",
					slog.String("role", string(role)),
					slog.String("path", r.URL.Path),
				)
				api.ErrorResponse(w, r, http.StatusForbidden, "Access denied for your role")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetUserIDFromContext returns the authenticated subject id set by Authenticate.
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

// GetUserRoleFromContext returns the authenticated role set by Authenticate.
func GetUserRoleFromContext(ctx context.Context) (types.Role, bool) {
	role, ok := ctx.Value(UserRoleKey).(types.Role)
	return role, ok
}
