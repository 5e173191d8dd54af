package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/admissions-backend/internal/config"
	"github.com/stemsi/admissions-backend/internal/eligibility"
	"github.com/stemsi/admissions-backend/internal/model"
	"github.com/stemsi/admissions-backend/internal/repository"
)

var jobApplicationTransitions = map[model.JobApplicationStatus][]model.JobApplicationStatus{
	model.JobApplicationStatusPending:     {model.JobApplicationStatusShortlisted, model.JobApplicationStatusRejected},
	model.JobApplicationStatusShortlisted: {model.JobApplicationStatusHired, model.JobApplicationStatusRejected},
	model.JobApplicationStatusRejected:    {model.JobApplicationStatusPending},
}

func isAllowedJobTransition(from, to model.JobApplicationStatus) bool {
	for _, s := range jobApplicationTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// JobApplicationService creates job applications with a match score snapshot and moves them through hiring.
type JobApplicationService struct {
	jobApps repository.JobApplicationStore
	jobs    repository.JobStore
	records repository.StudentRecordStore
	scorer  *eligibility.Scorer
	cache   ProjectionCache
	retry   txRetrier
	log     zerolog.Logger
	now     func() time.Time
}

// NewJobApplicationService creates a new JobApplicationService.
func NewJobApplicationService(
	jobApps repository.JobApplicationStore,
	jobs repository.JobStore,
	records repository.StudentRecordStore,
	scorer *eligibility.Scorer,
	cache ProjectionCache,
	cfg *config.Config,
	log zerolog.Logger,
) *JobApplicationService {
	l := log.With().Str("component", "job_application_service").Logger()
	return &JobApplicationService{
		jobApps: jobApps,
		jobs:    jobs,
		records: records,
		scorer:  scorer,
		cache:   cache,
		retry:   newTxRetrier(cfg.TxMaxAttempts, l),
		log:     l,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Submit scores the student against the job and records the application with that score.
func (s *JobApplicationService) Submit(ctx context.Context, studentID, jobID uuid.UUID) (*model.JobApplication, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, mapStoreErr(err, "get job")
	}
	rec, err := recordOrEmpty(ctx, s.records, studentID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	app := &model.JobApplication{
		ID:        uuid.New(),
		StudentID: studentID,
		JobID:     job.ID,
		CompanyID: job.CompanyID,
		Status:    model.JobApplicationStatusPending,
		MatchScoreSnapshot: model.MatchScoreSnapshot{
			MatchResult: s.scorer.Score(rec, job.Requirement),
			ScoredAt:    now,
		},
		AppliedAt: now,
		UpdatedAt: now,
	}
	if err := s.jobApps.Create(ctx, app); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateApplication
		}
		return nil, mapStoreErr(err, "create job application")
	}

	s.evict(ctx, app)
	s.log.Info().Str("job_application_id", app.ID.String()).Int("score", app.MatchScoreSnapshot.Score).Msg("Job application submitted")
	return app, nil
}

// Withdraw deletes the student's job application while it is still pending.
func (s *JobApplicationService) Withdraw(ctx context.Context, studentID, id uuid.UUID) error {
	var withdrawn *model.JobApplication

	err := s.retry.do(ctx, "withdraw job application", func() error {
		app, err := s.jobApps.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if app.StudentID != studentID {
			return ErrNotFound
		}
		if app.Status != model.JobApplicationStatusPending {
			return ErrNotWithdrawable
		}
		if err := s.jobApps.DeleteInStatus(ctx, id, model.JobApplicationStatusPending); err != nil {
			return err
		}
		withdrawn = app
		return nil
	})
	if err != nil {
		return wrapTxErr(err, "withdraw job application")
	}

	s.evict(ctx, withdrawn)
	return nil
}

// Transition moves a company's job application along the hiring edges.
func (s *JobApplicationService) Transition(ctx context.Context, companyID, id uuid.UUID, to model.JobApplicationStatus) (*model.JobApplication, error) {
	var updated *model.JobApplication

	err := s.retry.do(ctx, "transition job application", func() error {
		app, err := s.jobApps.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if app.CompanyID != companyID {
			return ErrForbidden
		}
		if !isAllowedJobTransition(app.Status, to) {
			return &InvalidStateTransitionError{From: string(app.Status), To: string(to)}
		}
		now := s.now()
		if err := s.jobApps.UpdateStatus(ctx, id, app.Status, to, now); err != nil {
			return err
		}
		app.Status = to
		app.UpdatedAt = now
		updated = app
		return nil
	})
	if err != nil {
		return nil, wrapTxErr(err, "transition job application")
	}

	s.evict(ctx, updated)
	s.log.Info().Str("job_application_id", id.String()).Str("status", string(to)).Msg("Job application status changed")
	return updated, nil
}

func (s *JobApplicationService) evict(ctx context.Context, app *model.JobApplication) {
	evict(ctx, s.cache, s.log,
		config.CacheKey.StudentProjectionKey(app.StudentID),
		config.CacheKey.CompanyProjectionKey(app.CompanyID),
	)
}
