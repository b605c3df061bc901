package jobs

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/workboard/go-job-board/internal/api"
	"github.com/workboard/go-job-board/internal/api/auth"
	"github.com/workboard/go-job-board/internal/types"
)

// CreateJobRequest represents the expected JSON body for a new posting.
type CreateJobRequest struct {
	Title       string   `json:"title" validate:"required"`
	Company     string   `json:"company" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Location    string   `json:"location" validate:"required"`
	Salary      *float64 `json:"salary,omitempty" validate:"omitempty,gte=0"`
}

type JobHandler struct {
	logger   *slog.Logger
	service  JobService
	validate *validator.Validate
}

func NewJobHandler(service JobService, logger *slog.Logger) *JobHandler {
	return &JobHandler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

// requesterID pulls the authenticated identity attached by the auth gate.
func requesterID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	ownerID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, false
	}
	return ownerID, true
}

// jobIDParam parses the {id} route parameter. A malformed id behaves like a
// missing job so probing with junk ids learns nothing.
func jobIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	jobID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusNotFound, "Resource not found")
		return uuid.Nil, false
	}
	return jobID, true
}

// Create handles POST /api/jobs.
func (h *JobHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requesterID(w, r)
	if !ok {
		return
	}

	var req CreateJobRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "title, company, description and location are required")
		return
	}

	job, err := h.service.CreateJob(r.Context(), ownerID, types.CreateJobParams{
		Title:       req.Title,
		Company:     req.Company,
		Description: req.Description,
		Location:    req.Location,
		Salary:      req.Salary,
	})
	if err != nil {
		api.HandleDomainError(w, r, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, job)
}

// List handles GET /api/jobs with page/limit/search/company/location query
// parameters.
func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requesterID(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	limit, _ := strconv.Atoi(query.Get("limit"))

	list, err := h.service.ListJobs(r.Context(), ownerID, types.JobFilter{
		Page:     page,
		Limit:    limit,
		Search:   query.Get("search"),
		Company:  query.Get("company"),
		Location: query.Get("location"),
	})
	if err != nil {
		api.HandleDomainError(w, r, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, list)
}

// Get handles GET /api/jobs/{id}.
func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requesterID(w, r)
	if !ok {
		return
	}
	jobID, ok := jobIDParam(w, r)
	if !ok {
		return
	}

	job, err := h.service.GetJob(r.Context(), ownerID, jobID)
	if err != nil {
		api.HandleDomainError(w, r, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, job)
}

// Update handles PUT /api/jobs/{id} with any subset of job fields.
func (h *JobHandler) Update(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requesterID(w, r)
	if !ok {
		return
	}
	jobID, ok := jobIDParam(w, r)
	if !ok {
		return
	}

	var params types.UpdateJobParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.validate.Struct(params); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "updated fields must be non-empty and salary must not be negative")
		return
	}

	job, err := h.service.UpdateJob(r.Context(), ownerID, jobID, params)
	if err != nil {
		api.HandleDomainError(w, r, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, job)
}

// Delete handles DELETE /api/jobs/{id}.
func (h *JobHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requesterID(w, r)
	if !ok {
		return
	}
	jobID, ok := jobIDParam(w, r)
	if !ok {
		return
	}

	if err := h.service.DeleteJob(r.Context(), ownerID, jobID); err != nil {
		api.HandleDomainError(w, r, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Job deleted",
	})
}
