package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/admissions-backend/internal/model"
)

// JobApplicationRepository handles job application data access.
type JobApplicationRepository struct {
	pool *pgxpool.Pool
}

// NewJobApplicationRepository creates a new JobApplicationRepository.
func NewJobApplicationRepository(pool *pgxpool.Pool) *JobApplicationRepository {
	return &JobApplicationRepository{pool: pool}
}

const jobApplicationColumns = `id, student_id, job_id, company_id, status, match_snapshot, applied_at, updated_at`

func collectJobApplications(rows pgx.Rows, err error) ([]model.JobApplication, error) {
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	apps := []model.JobApplication{}
	for rows.Next() {
		var a model.JobApplication
		if err := rows.Scan(&a.ID, &a.StudentID, &a.JobID, &a.CompanyID, &a.Status,
			&a.MatchScoreSnapshot, &a.AppliedAt, &a.UpdatedAt); err != nil {
			return nil, classify(err)
		}
		apps = append(apps, a)
	}
	return apps, classify(rows.Err())
}

// Create inserts a job application. The (student_id, job_id) unique key yields ErrDuplicate.
func (r *JobApplicationRepository) Create(ctx context.Context, a *model.JobApplication) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO job_applications
		   (id, student_id, job_id, company_id, status, match_snapshot, applied_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.StudentID, a.JobID, a.CompanyID, a.Status, a.MatchScoreSnapshot, a.AppliedAt, a.UpdatedAt,
	)
	return classify(err)
}

// GetByID retrieves a job application by ID.
func (r *JobApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.JobApplication, error) {
	apps, err := collectJobApplications(r.pool.Query(ctx,
		`SELECT `+jobApplicationColumns+` FROM job_applications WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	if len(apps) == 0 {
		return nil, ErrNotFound
	}
	return &apps[0], nil
}

// ListByStudent retrieves a student's job applications, newest first.
func (r *JobApplicationRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]model.JobApplication, error) {
	return collectJobApplications(r.pool.Query(ctx,
		`SELECT `+jobApplicationColumns+` FROM job_applications
		 WHERE student_id = $1
		 ORDER BY applied_at DESC, id ASC`, studentID))
}

// ListByCompany retrieves a company's job applications, best match first.
func (r *JobApplicationRepository) ListByCompany(ctx context.Context, companyID uuid.UUID, status *model.JobApplicationStatus) ([]model.JobApplication, error) {
	if status != nil {
		return collectJobApplications(r.pool.Query(ctx,
			`SELECT `+jobApplicationColumns+` FROM job_applications
			 WHERE company_id = $1 AND status = $2
			 ORDER BY (match_snapshot->>'score')::int DESC, applied_at ASC`, companyID, *status))
	}
	return collectJobApplications(r.pool.Query(ctx,
		`SELECT `+jobApplicationColumns+` FROM job_applications
		 WHERE company_id = $1
		 ORDER BY (match_snapshot->>'score')::int DESC, applied_at ASC`, companyID))
}

// UpdateStatus moves an application from one status to another, failing with ErrConflict
// when a concurrent writer changed it first.
func (r *JobApplicationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.JobApplicationStatus, at time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE job_applications SET status = $1, updated_at = $2
		 WHERE id = $3 AND status = $4`, to, at, id, from)
	if err != nil {
		return classify(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}
	return nil
}

// DeleteInStatus withdraws an application only while it is still in the given status.
func (r *JobApplicationRepository) DeleteInStatus(ctx context.Context, id uuid.UUID, status model.JobApplicationStatus) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM job_applications WHERE id = $1 AND status = $2`, id, status)
	if err != nil {
		return classify(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrConflict
	}
	return nil
}
