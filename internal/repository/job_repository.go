package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/admissions-backend/internal/model"
)

// JobRepository handles job posting data access.
type JobRepository struct {
	pool *pgxpool.Pool
}

// NewJobRepository creates a new JobRepository.
func NewJobRepository(pool *pgxpool.Pool) *JobRepository {
	return &JobRepository{pool: pool}
}

const jobColumns = `id, company_id, title, requirement, raw_requirement, created_at, updated_at`

func scanJob(row pgx.Row) (*model.Job, error) {
	j := &model.Job{}
	if err := row.Scan(&j.ID, &j.CompanyID, &j.Title, &j.Requirement, &j.RawRequirement, &j.CreatedAt, &j.UpdatedAt); err != nil {
		return nil, classify(err)
	}
	return j, nil
}

func collectJobs(rows pgx.Rows, err error) ([]model.Job, error) {
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	jobs := []model.Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *j)
	}
	return jobs, classify(rows.Err())
}

// Create inserts a new job posting.
func (r *JobRepository) Create(ctx context.Context, j *model.Job) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO jobs (company_id, title, requirement, raw_requirement)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		j.CompanyID, j.Title, j.Requirement, j.RawRequirement,
	).Scan(&j.ID, &j.CreatedAt, &j.UpdatedAt)
	return classify(err)
}

// GetByID retrieves a job posting by ID.
func (r *JobRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	return scanJob(r.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
}

// List retrieves every job posting.
func (r *JobRepository) List(ctx context.Context) ([]model.Job, error) {
	return collectJobs(r.pool.Query(ctx, `SELECT `+jobColumns+` FROM jobs ORDER BY title ASC, id ASC`))
}

// ListByCompany retrieves one company's postings.
func (r *JobRepository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]model.Job, error) {
	return collectJobs(r.pool.Query(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE company_id = $1 ORDER BY title ASC, id ASC`, companyID))
}

// UpdateRequirement replaces the raw and normalized requirement of a job.
func (r *JobRepository) UpdateRequirement(ctx context.Context, j *model.Job) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE jobs
		 SET requirement = $1, raw_requirement = $2, updated_at = $3
		 WHERE id = $4`,
		j.Requirement, j.RawRequirement, j.UpdatedAt, j.ID,
	)
	if err != nil {
		return classify(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
