package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/workboard/go-job-board/config"
	"github.com/workboard/go-job-board/internal/api"
	"github.com/workboard/go-job-board/internal/api/auth"
	"github.com/workboard/go-job-board/internal/api/jobs"
	"github.com/workboard/go-job-board/internal/router"
	"github.com/workboard/go-job-board/internal/types"
)

// memAuthRepo is an in-memory AuthRepo so the full HTTP stack can run
// without Postgres.
type memAuthRepo struct {
	mu    sync.Mutex
	users map[string]*types.User
}

func newMemAuthRepo() *memAuthRepo {
	return &memAuthRepo{users: make(map[string]*types.User)}
}

func (r *memAuthRepo) CreateUser(_ context.Context, name, email, passwordHash string, role types.Role) (*types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(email)
	if _, exists := r.users[key]; exists {
		return nil, fmt.Errorf("email %q already registered: %w", email, api.ErrConflict)
	}
	now := time.Now()
	user := &types.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.users[key] = user
	return user, nil
}

func (r *memAuthRepo) GetUserByEmail(_ context.Context, email string) (*types.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[strings.ToLower(email)]
	if !ok {
		return nil, fmt.Errorf("user %q: %w", email, api.ErrNotFound)
	}
	copied := *user
	return &copied, nil
}

// memJobRepo is an in-memory JobRepository with the same owner scoping as
// the Postgres one.
type memJobRepo struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*types.Job
}

func newMemJobRepo() *memJobRepo {
	return &memJobRepo{entries: make(map[uuid.UUID]*types.Job)}
}

func (r *memJobRepo) CreateJob(_ context.Context, ownerID uuid.UUID, params types.CreateJobParams) (*types.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	job := &types.Job{
		ID:          uuid.New(),
		Title:       params.Title,
		Company:     params.Company,
		Description: params.Description,
		Location:    params.Location,
		Salary:      params.Salary,
		UserID:      ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.entries[job.ID] = job
	return job, nil
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func (r *memJobRepo) ListJobs(_ context.Context, ownerID uuid.UUID, filter types.JobFilter) ([]types.Job, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := []types.Job{}
	for _, job := range r.entries {
		if job.UserID != ownerID {
			continue
		}
		if filter.Search != "" && !containsFold(job.Title, filter.Search) && !containsFold(job.Description, filter.Search) {
			continue
		}
		if filter.Company != "" && !containsFold(job.Company, filter.Company) {
			continue
		}
		if filter.Location != "" && !containsFold(job.Location, filter.Location) {
			continue
		}
		matched = append(matched, *job)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	offset := (filter.Page - 1) * filter.Limit
	if offset >= total {
		return []types.Job{}, total, nil
	}
	end := offset + filter.Limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (r *memJobRepo) GetJob(_ context.Context, ownerID, jobID uuid.UUID) (*types.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.entries[jobID]
	if !ok || job.UserID != ownerID {
		return nil, fmt.Errorf("job %s: %w", jobID, api.ErrNotFound)
	}
	copied := *job
	return &copied, nil
}

func (r *memJobRepo) UpdateJob(_ context.Context, ownerID, jobID uuid.UUID, params types.UpdateJobParams) (*types.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.entries[jobID]
	if !ok || job.UserID != ownerID {
		return nil, fmt.Errorf("job %s: %w", jobID, api.ErrNotFound)
	}
	if params.Title != nil {
		job.Title = *params.Title
	}
	if params.Company != nil {
		job.Company = *params.Company
	}
	if params.Description != nil {
		job.Description = *params.Description
	}
	if params.Location != nil {
		job.Location = *params.Location
	}
	if params.Salary != nil {
		job.Salary = params.Salary
	}
	job.UpdatedAt = time.Now()
	copied := *job
	return &copied, nil
}

func (r *memJobRepo) DeleteJob(_ context.Context, ownerID, jobID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.entries[jobID]
	if !ok || job.UserID != ownerID {
		return fmt.Errorf("job %s: %w", jobID, api.ErrNotFound)
	}
	delete(r.entries, jobID)
	return nil
}

// E2ETestSuite runs complete signup-to-delete workflows over a live
// httptest server with the real middleware chain.
type E2ETestSuite struct {
	suite.Suite
	server *httptest.Server
	client *http.Client
}

func (s *E2ETestSuite) SetupSuite() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	tokenService := auth.NewTokenService(config.JWTConfig{
		SecretKey: "e2e-test-secret-key",
		Issuer:    "jobboard-api",
		TokenTTL:  time.Hour,
	})

	authService := auth.NewAuthService(newMemAuthRepo(), tokenService, bcrypt.MinCost, logger)
	jobService := jobs.NewJobService(newMemJobRepo(), logger)

	mux := router.SetupRouter(&router.Config{
		AuthHandler:            auth.NewAuthHandler(authService, logger),
		JobHandler:             jobs.NewJobHandler(jobService, logger),
		AuthenticateMiddleware: auth.Authenticate(logger, tokenService),
		RequireRoleMiddleware: func(allowed ...types.Role) func(http.Handler) http.Handler {
			return auth.RequireRole(logger, allowed...)
		},
	})

	s.server = httptest.NewServer(mux)
	s.client = s.server.Client()
}

func (s *E2ETestSuite) TearDownSuite() {
	s.server.Close()
}

func (s *E2ETestSuite) doJSON(method, path, token string, body any) (*http.Response, map[string]json.RawMessage) {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(s.T(), err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, s.server.URL+path, reader)
	require.NoError(s.T(), err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.client.Do(req)
	require.NoError(s.T(), err)
	defer resp.Body.Close()

	decoded := map[string]json.RawMessage{}
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	return resp, decoded
}

func (s *E2ETestSuite) signup(name, email, password, role string) string {
	resp, body := s.doJSON(http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
		"role":     role,
	})
	require.Equal(s.T(), http.StatusCreated, resp.StatusCode)

	var token string
	require.NoError(s.T(), json.Unmarshal(body["token"], &token))
	require.NotEmpty(s.T(), token)
	return token
}

func (s *E2ETestSuite) TestSignupLoginProtected() {
	s.signup("Alice", "alice@example.com", "password123", "candidate")

	// A fresh login must mint a working token too.
	resp, body := s.doJSON(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "password123",
	})
	s.Equal(http.StatusOK, resp.StatusCode)
	var loginToken string
	s.Require().NoError(json.Unmarshal(body["token"], &loginToken))

	resp, _ = s.doJSON(http.MethodGet, "/api/auth/protected", loginToken, nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	resp, _ = s.doJSON(http.MethodGet, "/api/auth/protected", "", nil)
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *E2ETestSuite) TestLoginRejectsWrongPassword() {
	s.signup("Bob", "bob@example.com", "password123", "candidate")

	resp, body := s.doJSON(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "bob@example.com",
		"password": "password456",
	})
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	// Same status and message as an unknown email.
	respUnknown, bodyUnknown := s.doJSON(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "nobody@example.com",
		"password": "password456",
	})
	s.Equal(resp.StatusCode, respUnknown.StatusCode)
	s.Equal(string(body["error"]), string(bodyUnknown["error"]))
}

func (s *E2ETestSuite) TestCandidateCannotPostJobs() {
	token := s.signup("Carol", "carol@example.com", "password123", "candidate")

	resp, _ := s.doJSON(http.MethodPost, "/api/jobs", token, map[string]string{
		"title":       "Go Engineer",
		"company":     "Acme",
		"description": "Build services",
		"location":    "Remote",
	})
	s.Equal(http.StatusForbidden, resp.StatusCode)
}

func (s *E2ETestSuite) TestRecruiterJobLifecycle() {
	token := s.signup("Dave", "dave@example.com", "password123", "recruiter")

	// Create
	resp, body := s.doJSON(http.MethodPost, "/api/jobs", token, map[string]string{
		"title":       "Go Engineer",
		"company":     "Acme",
		"description": "Build backend services",
		"location":    "Berlin",
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	var jobID string
	s.Require().NoError(json.Unmarshal(body["id"], &jobID))

	// List
	resp, body = s.doJSON(http.MethodGet, "/api/jobs", token, nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	var total int
	s.Require().NoError(json.Unmarshal(body["total"], &total))
	s.Equal(1, total)

	// Search that should miss
	resp, body = s.doJSON(http.MethodGet, "/api/jobs?search=rust", token, nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Require().NoError(json.Unmarshal(body["total"], &total))
	s.Equal(0, total)

	// Update
	resp, body = s.doJSON(http.MethodPut, "/api/jobs/"+jobID, token, map[string]string{
		"title": "Senior Go Engineer",
	})
	s.Equal(http.StatusOK, resp.StatusCode)
	var title string
	s.Require().NoError(json.Unmarshal(body["title"], &title))
	s.Equal("Senior Go Engineer", title)

	// Delete, then the read must 404
	resp, _ = s.doJSON(http.MethodDelete, "/api/jobs/"+jobID, token, nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	resp, _ = s.doJSON(http.MethodGet, "/api/jobs/"+jobID, token, nil)
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *E2ETestSuite) TestJobsAreInvisibleAcrossOwners() {
	ownerToken := s.signup("Erin", "erin@example.com", "password123", "recruiter")
	otherToken := s.signup("Frank", "frank@example.com", "password123", "recruiter")

	resp, body := s.doJSON(http.MethodPost, "/api/jobs", ownerToken, map[string]string{
		"title":       "Platform Engineer",
		"company":     "Acme",
		"description": "Own the deploy pipeline",
		"location":    "Remote",
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	var jobID string
	s.Require().NoError(json.Unmarshal(body["id"], &jobID))

	// The other recruiter sees 404, never 403, for reads, updates and deletes.
	resp, _ = s.doJSON(http.MethodGet, "/api/jobs/"+jobID, otherToken, nil)
	s.Equal(http.StatusNotFound, resp.StatusCode)

	resp, _ = s.doJSON(http.MethodPut, "/api/jobs/"+jobID, otherToken, map[string]string{"title": "Hijacked"})
	s.Equal(http.StatusNotFound, resp.StatusCode)

	resp, _ = s.doJSON(http.MethodDelete, "/api/jobs/"+jobID, otherToken, nil)
	s.Equal(http.StatusNotFound, resp.StatusCode)

	// Still intact for the owner.
	resp, _ = s.doJSON(http.MethodGet, "/api/jobs/"+jobID, ownerToken, nil)
	s.Equal(http.StatusOK, resp.StatusCode)
}

func TestE2ESuite(t *testing.T) {
	suite.Run(t, new(E2ETestSuite))
}
