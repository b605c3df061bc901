package types

import (
	"time"

	"github.com/google/uuid"
)

// Role is a flat, exclusive role label. There is no hierarchy between roles:
// admin is not implicitly a superset of recruiter.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleRecruiter Role = "recruiter"
	RoleCandidate Role = "candidate"
)

// ClampRequestedRole maps a role requested at signup to the role actually
// stored. Only recruiter and candidate may be self-assigned; anything else
// (including admin) silently becomes candidate, which guards against
// privilege escalation through the public signup endpoint.
func ClampRequestedRole(requested string) Role {
	switch Role(requested) {
	case RoleRecruiter:
		return RoleRecruiter
	default:
		return RoleCandidate
	}
}

// User is an authenticated identity record. The password hash never leaves
// the backend; the json tag makes sure it cannot be marshalled by accident.
type User struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
