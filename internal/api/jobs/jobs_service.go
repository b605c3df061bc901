package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/workboard/go-job-board/internal/api"
	"github.com/workboard/go-job-board/internal/types"
)

var _ JobService = (*JobServiceImpl)(nil)

// JobService fronts the job store with listing defaults and a short-lived
// read cache for single-job lookups.
type JobService interface {
	CreateJob(ctx context.Context, ownerID uuid.UUID, params types.CreateJobParams) (*types.Job, error)
	ListJobs(ctx context.Context, ownerID uuid.UUID, filter types.JobFilter) (*types.JobList, error)
	GetJob(ctx context.Context, ownerID, jobID uuid.UUID) (*types.Job, error)
	UpdateJob(ctx context.Context, ownerID, jobID uuid.UUID, params types.UpdateJobParams) (*types.Job, error)
	DeleteJob(ctx context.Context, ownerID, jobID uuid.UUID) error
}

const (
	defaultPageLimit = 10
	maxPageLimit     = 100

	jobCacheTTL     = 30 * time.Second
	jobCacheCleanup = 5 * time.Minute
)

type JobServiceImpl struct {
	logger *slog.Logger
	repo   JobRepository
	cache  *gocache.Cache
}

func NewJobService(repo JobRepository, logger *slog.Logger) *JobServiceImpl {
	return &JobServiceImpl{
		logger: logger,
		repo:   repo,
		cache:  gocache.New(jobCacheTTL, jobCacheCleanup),
	}
}

// cacheKey includes the owner so one tenant can never read another's cached
// entry, even for the same job id.
func cacheKey(ownerID, jobID uuid.UUID) string {
	return fmt.Sprintf("%s/%s", ownerID, jobID)
}

func (s *JobServiceImpl) CreateJob(ctx context.Context, ownerID uuid.UUID, params types.CreateJobParams) (*types.Job, error) {
	ctx, span := otel.Tracer("JobService").Start(ctx, "CreateJob")
	defer span.End()

	job, err := s.repo.CreateJob(ctx, ownerID, params)
	if err != nil {
		span.SetStatus(codes.Error, "job creation failed")
		return nil, err
	}

	s.logger.InfoContext(ctx, "Job created",
		slog.String("job_id", job.ID.String()),
		slog.String("owner_id", ownerID.String()),
	)
	return job, nil
}

func (s *JobServiceImpl) ListJobs(ctx context.Context, ownerID uuid.UUID, filter types.JobFilter) (*types.JobList, error) {
	ctx, span := otel.Tracer("JobService").Start(ctx, "ListJobs")
	defer span.End()

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultPageLimit
	}
	if filter.Limit > maxPageLimit {
		filter.Limit = maxPageLimit
	}

	jobsPage, total, err := s.repo.ListJobs(ctx, ownerID, filter)
	if err != nil {
		span.SetStatus(codes.Error, "job listing failed")
		return nil, err
	}

	return &types.JobList{
		Jobs:       jobsPage,
		Total:      total,
		Page:       filter.Page,
		TotalPages: api.TotalPages(total, filter.Limit),
	}, nil
}

func (s *JobServiceImpl) GetJob(ctx context.Context, ownerID, jobID uuid.UUID) (*types.Job, error) {
	ctx, span := otel.Tracer("JobService").Start(ctx, "GetJob")
	defer span.End()

	if cached, found := s.cache.Get(cacheKey(ownerID, jobID)); found {
		return cached.(*types.Job), nil
	}

	job, err := s.repo.GetJob(ctx, ownerID, jobID)
	if err != nil {
		return nil, err
	}

	s.cache.SetDefault(cacheKey(ownerID, jobID), job)
	return job, nil
}

func (s *JobServiceImpl) UpdateJob(ctx context.Context, ownerID, jobID uuid.UUID, params types.UpdateJobParams) (*types.Job, error) {
	ctx, span := otel.Tracer("JobService").Start(ctx, "UpdateJob")
	defer span.End()

	job, err := s.repo.UpdateJob(ctx, ownerID, jobID, params)
	if err != nil {
		return nil, err
	}

	// A stale cached copy must not outlive the write.
	s.cache.Delete(cacheKey(ownerID, jobID))
	return job, nil
}

func (s *JobServiceImpl) DeleteJob(ctx context.Context, ownerID, jobID uuid.UUID) error {
	ctx, span := otel.Tracer("JobService").Start(ctx, "DeleteJob")
	defer span.End()

	if err := s.repo.DeleteJob(ctx, ownerID, jobID); err != nil {
		return err
	}

	s.cache.Delete(cacheKey(ownerID, jobID))
	s.logger.InfoContext(ctx, "Job deleted",
		slog.String("job_id", jobID.String()),
		slog.String("owner_id", ownerID.String()),
	)
	return nil
}
