package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/admissions-backend/internal/config"
	"github.com/stemsi/admissions-backend/internal/model"
	"github.com/stemsi/admissions-backend/internal/repository"
)

// applicationTransitions are the edges staff may take on a single application.
// approved -> admitted is reachable only through Publish; admitted has no exits.
var applicationTransitions = map[model.ApplicationStatus][]model.ApplicationStatus{
	model.ApplicationStatusPending:  {model.ApplicationStatusApproved, model.ApplicationStatusRejected},
	model.ApplicationStatusRejected: {model.ApplicationStatusPending},
}

func isAllowedApplicationTransition(from, to model.ApplicationStatus) bool {
	for _, s := range applicationTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// AdmissionService is the admission state machine: single-application decisions and batch publish.
type AdmissionService struct {
	apps    repository.ApplicationStore
	courses repository.CourseStore
	cache   ProjectionCache
	notices NoticeQueue
	quota   int
	retry   txRetrier
	log     zerolog.Logger
	now     func() time.Time
}

// NewAdmissionService creates a new AdmissionService.
func NewAdmissionService(
	apps repository.ApplicationStore,
	courses repository.CourseStore,
	cache ProjectionCache,
	notices NoticeQueue,
	cfg *config.Config,
	log zerolog.Logger,
) *AdmissionService {
	l := log.With().Str("component", "admission_service").Logger()
	return &AdmissionService{
		apps:    apps,
		courses: courses,
		cache:   cache,
		notices: notices,
		quota:   cfg.ApplicationQuota,
		retry:   newTxRetrier(cfg.TxMaxAttempts, l),
		log:     l,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Transition moves one application owned by the institution to the requested status.
// Approval respects the course intake capacity; a reset to pending respects the student's quota.
func (s *AdmissionService) Transition(ctx context.Context, institutionID, applicationID uuid.UUID, to model.ApplicationStatus) (*model.Application, error) {
	var capacity *int
	if to == model.ApplicationStatusApproved {
		c, err := s.intakeCapacity(ctx, institutionID, applicationID)
		if err != nil {
			return nil, err
		}
		capacity = c
	}

	var updated *model.Application

	err := s.retry.do(ctx, "transition application", func() error {
		return s.apps.WithTx(ctx, func(tx repository.ApplicationTx) error {
			app, err := tx.GetForUpdate(ctx, applicationID)
			if err != nil {
				return err
			}
			if app.InstitutionID != institutionID {
				return ErrForbidden
			}
			if !isAllowedApplicationTransition(app.Status, to) {
				return &InvalidStateTransitionError{From: string(app.Status), To: string(to)}
			}

			switch to {
			case model.ApplicationStatusApproved:
				if err := checkCapacity(ctx, tx, app.CourseID, capacity); err != nil {
					return err
				}
			case model.ApplicationStatusPending:
				if err := tx.LockStudentInstitution(ctx, app.StudentID, app.InstitutionID); err != nil {
					return err
				}
				active, err := tx.CountActive(ctx, app.StudentID, app.InstitutionID)
				if err != nil {
					return err
				}
				if active >= s.quota {
					return &QuotaExceededError{InstitutionID: app.InstitutionID, Limit: s.quota, Active: active}
				}
			}

			now := s.now()
			if err := tx.UpdateStatus(ctx, app.ID, to, now); err != nil {
				return err
			}
			app.Status = to
			app.UpdatedAt = now
			updated = app
			return nil
		})
	})
	if err != nil {
		return nil, wrapTxErr(err, "transition application")
	}

	evictApplicationViews(ctx, s.cache, s.log, updated)
	dispatch(ctx, s.notices, s.log, []model.AdmissionNotice{noticeFor(updated, nil)})

	s.log.Info().Str("application_id", applicationID.String()).Str("status", string(to)).Msg("Application status changed")
	return updated, nil
}

// intakeCapacity resolves the capacity of the application's course ahead of the transaction.
// An application never changes course, so the lookup cannot go stale.
func (s *AdmissionService) intakeCapacity(ctx context.Context, institutionID, applicationID uuid.UUID) (*int, error) {
	app, err := s.apps.GetByID(ctx, applicationID)
	if err != nil {
		return nil, mapStoreErr(err, "get application")
	}
	if app.InstitutionID != institutionID {
		return nil, ErrForbidden
	}
	course, err := s.courses.GetByID(ctx, app.CourseID)
	if err != nil {
		return nil, mapStoreErr(err, "get course")
	}
	return course.Requirement.IntakeCapacity, nil
}

func checkCapacity(ctx context.Context, tx repository.ApplicationTx, courseID uuid.UUID, capacity *int) error {
	if capacity == nil {
		return nil
	}
	if err := tx.LockCourse(ctx, courseID); err != nil {
		return err
	}
	taken, err := tx.CountSeatsTaken(ctx, courseID)
	if err != nil {
		return err
	}
	if taken >= *capacity {
		return &CapacityReachedError{CourseID: courseID, Capacity: *capacity}
	}
	return nil
}

// Publish admits every approved application of the institution in one transaction and
// records the batch. With nothing approved it returns an empty, unpersisted batch.
func (s *AdmissionService) Publish(ctx context.Context, institutionID uuid.UUID) (*model.AdmissionBatch, error) {
	var (
		batch    *model.AdmissionBatch
		admitted []model.Application
	)

	err := s.retry.do(ctx, "publish admissions", func() error {
		admitted = nil
		return s.apps.WithTx(ctx, func(tx repository.ApplicationTx) error {
			if err := tx.LockInstitution(ctx, institutionID); err != nil {
				return err
			}

			approved, err := tx.ListApprovedForUpdate(ctx, institutionID)
			if err != nil {
				return err
			}

			now := s.now()
			batch = &model.AdmissionBatch{
				InstitutionID:          institutionID,
				PublishedAt:            now,
				AffectedApplicationIDs: make([]uuid.UUID, 0, len(approved)),
			}
			if len(approved) == 0 {
				return nil
			}

			for _, a := range approved {
				batch.AffectedApplicationIDs = append(batch.AffectedApplicationIDs, a.ID)
			}

			n, err := tx.MarkAdmitted(ctx, batch.AffectedApplicationIDs, now)
			if err != nil {
				return err
			}
			if n != int64(len(approved)) {
				return fmt.Errorf("admitted %d of %d approved applications: %w", n, len(approved), repository.ErrConflict)
			}

			batch.ID = uuid.New()
			if err := tx.InsertBatch(ctx, batch); err != nil {
				return err
			}

			for _, a := range approved {
				a.Status = model.ApplicationStatusAdmitted
				a.UpdatedAt = now
				admitted = append(admitted, a)
			}
			return nil
		})
	})
	if err != nil {
		return nil, wrapTxErr(err, "publish admissions")
	}

	if batch.Size() == 0 {
		s.log.Info().Str("institution_id", institutionID.String()).Msg("Publish found no approved applications")
		return batch, nil
	}

	views := make([]*model.Application, len(admitted))
	notices := make([]model.AdmissionNotice, len(admitted))
	for i := range admitted {
		views[i] = &admitted[i]
		notices[i] = noticeFor(&admitted[i], &batch.ID)
	}
	evictApplicationViews(ctx, s.cache, s.log, views...)
	dispatch(ctx, s.notices, s.log, notices)

	s.log.Info().Str("institution_id", institutionID.String()).Str("batch_id", batch.ID.String()).
		Int("admitted", batch.Size()).Msg("Admissions published")
	return batch, nil
}

// ListBatches returns the institution's persisted admission batches, newest first.
func (s *AdmissionService) ListBatches(ctx context.Context, institutionID uuid.UUID) ([]model.AdmissionBatch, error) {
	batches, err := s.apps.ListBatches(ctx, institutionID)
	if err != nil {
		return nil, fmt.Errorf("list admission batches: %w", err)
	}
	return batches, nil
}

func noticeFor(a *model.Application, batchID *uuid.UUID) model.AdmissionNotice {
	return model.AdmissionNotice{
		ApplicationID: a.ID,
		StudentID:     a.StudentID,
		InstitutionID: a.InstitutionID,
		CourseID:      a.CourseID,
		Status:        a.Status,
		BatchID:       batchID,
		OccurredAt:    a.UpdatedAt,
	}
}
