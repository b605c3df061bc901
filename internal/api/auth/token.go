package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/workboard/go-job-board/config"
	"github.com/workboard/go-job-board/internal/api"
	"github.com/workboard/go-job-board/internal/types"
)

// TokenService issues and verifies signed, time-limited access tokens.
// Tokens are stateless: verification is a signature plus registered-claims
// check, with no store round trip and no revocation list.
type TokenService struct {
	secretKey []byte
	issuer    string
	ttl       time.Duration
	now       func() time.Time
}

func NewTokenService(cfg config.JWTConfig) *TokenService {
	if len(cfg.SecretKey) == 0 {
		panic("JWT secret key cannot be empty")
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenService{
		secretKey: []byte(cfg.SecretKey),
		issuer:    cfg.Issuer,
		ttl:       ttl,
		now:       time.Now,
	}
}

// Issue signs an HS256 token embedding the user's id and role.
func (s *TokenService) Issue(user *types.User) (string, error) {
	now := s.now()
	claims := &types.Claims{
		UserID: user.ID.String(),
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token string. Any failure — bad signature,
// malformed payload, expired token, wrong issuer — maps to ErrUnauthenticated;
// the underlying jwt error stays wrapped for internal logging only.
func (s *TokenService) Verify(tokenString string) (*types.Claims, error) {
	claims := &types.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.secretKey, nil
		},
		jwt.WithTimeFunc(s.now),
		jwt.WithIssuer(s.issuer),
		// Lenient base64url decoding ignores the unused trailing bits of a
		// segment's last character, letting a tampered final signature byte
		// slip through. Strict decoding rejects any non-canonical segment.
		jwt.WithStrictDecoding(),
	)
	if err != nil {
		return nil, fmt.Errorf("token verification failed: %w: %w", err, api.ErrUnauthenticated)
	}
	if !token.Valid || claims.UserID == "" {
		return nil, fmt.Errorf("token claims invalid: %w", api.ErrUnauthenticated)
	}
	return claims, nil
}

// FailureKind names the verification failure class for logs. Callers must not
// surface the distinction to clients.
func FailureKind(err error) string {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "expired"
	case errors.Is(err, jwt.ErrTokenMalformed):
		return "malformed"
	case errors.Is(err, jwt.ErrSignatureInvalid):
		return "bad_signature"
	default:
		return "invalid"
	}
}
