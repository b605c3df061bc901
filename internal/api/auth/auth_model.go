package auth

import "github.com/workboard/go-job-board/internal/types"

// SignupRequest represents the expected JSON body for user signup.
type SignupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role,omitempty"`
}

// LoginRequest represents the expected JSON body for user login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by both signup and login: the signed access token
// plus the public view of the identity.
type AuthResponse struct {
	Token string      `json:"token"`
	User  *types.User `json:"user"`
}
