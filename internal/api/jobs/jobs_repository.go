package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/workboard/go-job-board/app/observability/metrics"
	"github.com/workboard/go-job-board/internal/api"
	"github.com/workboard/go-job-board/internal/types"
)

var _ JobRepository = (*PostgresJobRepository)(nil)

// JobRepository is the persistence contract for job postings. Every read,
// update and delete is scoped to the owning identity; a row owned by someone
// else behaves exactly like a missing row (api.ErrNotFound).
type JobRepository interface {
	CreateJob(ctx context.Context, ownerID uuid.UUID, params types.CreateJobParams) (*types.Job, error)
	ListJobs(ctx context.Context, ownerID uuid.UUID, filter types.JobFilter) ([]types.Job, int, error)
	GetJob(ctx context.Context, ownerID, jobID uuid.UUID) (*types.Job, error)
	UpdateJob(ctx context.Context, ownerID, jobID uuid.UUID, params types.UpdateJobParams) (*types.Job, error)
	DeleteJob(ctx context.Context, ownerID, jobID uuid.UUID) error
}

type PostgresJobRepository struct {
	logger *slog.Logger
	db     api.Querier
}

func NewPostgresJobRepository(db api.Querier, logger *slog.Logger) *PostgresJobRepository {
	return &PostgresJobRepository{
		logger: logger,
		db:     db,
	}
}

const jobColumns = "id, title, company, description, location, salary, user_id, created_at, updated_at"

func scanJob(row pgx.Row) (*types.Job, error) {
	var job types.Job
	err := row.Scan(&job.ID, &job.Title, &job.Company, &job.Description, &job.Location,
		&job.Salary, &job.UserID, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *PostgresJobRepository) CreateJob(ctx context.Context, ownerID uuid.UUID, params types.CreateJobParams) (*types.Job, error) {
	start := time.Now()
	job, err := scanJob(r.db.QueryRow(ctx,
		`INSERT INTO jobs (title, company, description, location, salary, user_id)
         VALUES ($1, $2, $3, $4, $5, $6)
         RETURNING `+jobColumns,
		params.Title, params.Company, params.Description, params.Location, params.Salary, ownerID,
	))
	metrics.Get().DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		return nil, fmt.Errorf("failed to insert job: %w", err)
	}
	return job, nil
}

// ListJobs returns one page of the owner's postings plus the total match
// count, so the handler can shape the pagination envelope.
func (r *PostgresJobRepository) ListJobs(ctx context.Context, ownerID uuid.UUID, filter types.JobFilter) ([]types.Job, int, error) {
	where, args := buildJobFilter(ownerID, filter)

	var total int
	start := time.Now()
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM jobs WHERE "+where, args...).Scan(&total)
	if err != nil {
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		return nil, 0, fmt.Errorf("failed to count jobs: %w", err)
	}

	limit := filter.Limit
	offset := (filter.Page - 1) * limit
	query := fmt.Sprintf(
		"SELECT %s FROM jobs WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		jobColumns, where, len(args)+1, len(args)+2,
	)
	rows, err := r.db.Query(ctx, query, append(args, limit, offset)...)
	metrics.Get().DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		return nil, 0, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer rows.Close()

	jobsList := make([]types.Job, 0, limit)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan job row: %w", err)
		}
		jobsList = append(jobsList, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("job rows iteration failed: %w", err)
	}

	return jobsList, total, nil
}

// buildJobFilter assembles the owner-scoped WHERE clause shared by the count
// and page queries.
func buildJobFilter(ownerID uuid.UUID, filter types.JobFilter) (string, []any) {
	clauses := []string{"user_id = $1"}
	args := []any{ownerID}

	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		clauses = append(clauses, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	if filter.Company != "" {
		args = append(args, "%"+filter.Company+"%")
		clauses = append(clauses, fmt.Sprintf("company ILIKE $%d", len(args)))
	}
	if filter.Location != "" {
		args = append(args, "%"+filter.Location+"%")
		clauses = append(clauses, fmt.Sprintf("location ILIKE $%d", len(args)))
	}

	return strings.Join(clauses, " AND "), args
}

func (r *PostgresJobRepository) GetJob(ctx context.Context, ownerID, jobID uuid.UUID) (*types.Job, error) {
	start := time.Now()
	job, err := scanJob(r.db.QueryRow(ctx,
		"SELECT "+jobColumns+" FROM jobs WHERE id = $1 AND user_id = $2",
		jobID, ownerID,
	))
	metrics.Get().DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("job %s: %w", jobID, api.ErrNotFound)
		}
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		return nil, fmt.Errorf("failed to query job: %w", err)
	}
	return job, nil
}

func (r *PostgresJobRepository) UpdateJob(ctx context.Context, ownerID, jobID uuid.UUID, params types.UpdateJobParams) (*types.Job, error) {
	set := []string{}
	args := []any{}

	appendSet := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if params.Title != nil {
		appendSet("title", *params.Title)
	}
	if params.Company != nil {
		appendSet("company", *params.Company)
	}
	if params.Description != nil {
		appendSet("description", *params.Description)
	}
	if params.Location != nil {
		appendSet("location", *params.Location)
	}
	if params.Salary != nil {
		appendSet("salary", *params.Salary)
	}
	if len(set) == 0 {
		// Nothing to change; behave like a plain read.
		return r.GetJob(ctx, ownerID, jobID)
	}
	set = append(set, "updated_at = now()")

	args = append(args, jobID, ownerID)
	query := fmt.Sprintf(
		"UPDATE jobs SET %s WHERE id = $%d AND user_id = $%d RETURNING %s",
		strings.Join(set, ", "), len(args)-1, len(args), jobColumns,
	)

	start := time.Now()
	job, err := scanJob(r.db.QueryRow(ctx, query, args...))
	metrics.Get().DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("job %s: %w", jobID, api.ErrNotFound)
		}
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		return nil, fmt.Errorf("failed to update job: %w", err)
	}
	return job, nil
}

func (r *PostgresJobRepository) DeleteJob(ctx context.Context, ownerID, jobID uuid.UUID) error {
	start := time.Now()
	tag, err := r.db.Exec(ctx,
		"DELETE FROM jobs WHERE id = $1 AND user_id = $2",
		jobID, ownerID,
	)
	metrics.Get().DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		return fmt.Errorf("failed to delete job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("job %s: %w", jobID, api.ErrNotFound)
	}
	return nil
}
