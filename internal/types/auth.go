package types

import "github.com/golang-jwt/jwt/v5"

// Claims is the custom claim set embedded in access tokens. Role travels in
// the token so the auth gate never has to re-read the user record; a role
// change therefore only takes effect once the token expires and is reissued.
type Claims struct {
	UserID string `json:"user_id"`
	Role   Role   `json:"role"`
	jwt.RegisteredClaims
}
