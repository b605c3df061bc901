package types

import (
	"time"

	"github.com/google/uuid"
)

// Job is a posting owned by the identity that created it. Every read, update
// and delete is scoped to the owner; other identities observe NotFound rather
// than Forbidden so the row's existence never leaks.
type Job struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Salary      *float64  `json:"salary,omitempty"`
	UserID      uuid.UUID `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateJobParams carries the validated fields for a new posting.
type CreateJobParams struct {
	Title       string
	Company     string
	Description string
	Location    string
	Salary      *float64
}

// UpdateJobParams updates any subset of job fields. Nil pointers leave the
// stored value untouched; supplied values obey the same constraints as
// creation.
type UpdateJobParams struct {
	Title       *string  `json:"title,omitempty" validate:"omitempty,min=1"`
	Company     *string  `json:"company,omitempty" validate:"omitempty,min=1"`
	Description *string  `json:"description,omitempty" validate:"omitempty,min=1"`
	Location    *string  `json:"location,omitempty" validate:"omitempty,min=1"`
	Salary      *float64 `json:"salary,omitempty" validate:"omitempty,gte=0"`
}

// JobFilter narrows and pages a job listing. Search matches title and
// description; company and location filter their respective columns.
type JobFilter struct {
	Page     int
	Limit    int
	Search   string
	Company  string
	Location string
}

// JobList is the paginated listing envelope.
type JobList struct {
	Jobs       []Job `json:"jobs"`
	Total      int   `json:"total"`
	Page       int   `json:"page"`
	TotalPages int   `json:"totalPages"`
}
