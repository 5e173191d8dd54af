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

// ApplicationService is the quota guard: it creates and withdraws course applications.
type ApplicationService struct {
	apps    repository.ApplicationStore
	courses repository.CourseStore
	records repository.StudentRecordStore
	cache   ProjectionCache
	quota   int
	retry   txRetrier
	log     zerolog.Logger
	now     func() time.Time
}

// NewApplicationService creates a new ApplicationService.
func NewApplicationService(
	apps repository.ApplicationStore,
	courses repository.CourseStore,
	records repository.StudentRecordStore,
	cache ProjectionCache,
	cfg *config.Config,
	log zerolog.Logger,
) *ApplicationService {
	l := log.With().Str("component", "application_service").Logger()
	return &ApplicationService{
		apps:    apps,
		courses: courses,
		records: records,
		cache:   cache,
		quota:   cfg.ApplicationQuota,
		retry:   newTxRetrier(cfg.TxMaxAttempts, l),
		log:     l,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Submit evaluates the student against the course and, if qualified, creates a pending
// application within the per-institution quota.
func (s *ApplicationService) Submit(ctx context.Context, studentID, courseID uuid.UUID) (*model.Application, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, mapStoreErr(err, "get course")
	}
	rec, err := recordOrEmpty(ctx, s.records, studentID)
	if err != nil {
		return nil, err
	}

	verdict := eligibility.Evaluate(rec, course.Requirement)
	if !verdict.Qualified {
		s.log.Debug().Str("student_id", studentID.String()).Str("course_id", courseID.String()).
			Strs("reasons", verdict.Reasons).Msg("Submission rejected: not qualified")
		return nil, &NotQualifiedError{Reasons: verdict.Reasons}
	}

	return s.create(ctx, studentID, course, model.QualificationSnapshot{
		Qualified: true,
		Reasons:   verdict.Reasons,
	})
}

// Override lets institution staff apply on behalf of a student regardless of the verdict.
// The snapshot still records the real verdict; quota and uniqueness still apply.
func (s *ApplicationService) Override(ctx context.Context, institutionID, studentID, courseID uuid.UUID) (*model.Application, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, mapStoreErr(err, "get course")
	}
	if course.InstitutionID != institutionID {
		return nil, ErrForbidden
	}
	rec, err := recordOrEmpty(ctx, s.records, studentID)
	if err != nil {
		return nil, err
	}

	verdict := eligibility.Evaluate(rec, course.Requirement)
	app, err := s.create(ctx, studentID, course, model.QualificationSnapshot{
		Qualified:  verdict.Qualified,
		Reasons:    verdict.Reasons,
		Overridden: !verdict.Qualified,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("application_id", app.ID.String()).Bool("overridden", app.QualificationSnapshot.Overridden).
		Msg("Application created by institution override")
	return app, nil
}

func (s *ApplicationService) create(ctx context.Context, studentID uuid.UUID, course *model.Course, snap model.QualificationSnapshot) (*model.Application, error) {
	var app *model.Application

	err := s.retry.do(ctx, "submit application", func() error {
		return s.apps.WithTx(ctx, func(tx repository.ApplicationTx) error {
			if err := tx.LockStudentInstitution(ctx, studentID, course.InstitutionID); err != nil {
				return err
			}

			_, err := tx.FindByStudentCourse(ctx, studentID, course.ID)
			switch {
			case err == nil:
				return ErrDuplicateApplication
			case !errors.Is(err, repository.ErrNotFound):
				return err
			}

			active, err := tx.CountActive(ctx, studentID, course.InstitutionID)
			if err != nil {
				return err
			}
			if active >= s.quota {
				return &QuotaExceededError{InstitutionID: course.InstitutionID, Limit: s.quota, Active: active}
			}

			now := s.now()
			snap.EvaluatedAt = now
			candidate := &model.Application{
				ID:                    uuid.New(),
				StudentID:             studentID,
				CourseID:              course.ID,
				InstitutionID:         course.InstitutionID,
				Status:                model.ApplicationStatusPending,
				QualificationSnapshot: snap,
				AppliedAt:             now,
				UpdatedAt:             now,
			}
			if err := tx.Insert(ctx, candidate); err != nil {
				if errors.Is(err, repository.ErrDuplicate) {
					return ErrDuplicateApplication
				}
				return err
			}
			app = candidate
			return nil
		})
	})
	if err != nil {
		return nil, wrapTxErr(err, "submit application")
	}

	evictApplicationViews(ctx, s.cache, s.log, app)
	s.log.Info().Str("application_id", app.ID.String()).Str("student_id", studentID.String()).
		Str("course_id", course.ID.String()).Msg("Application submitted")
	return app, nil
}

// Withdraw deletes a pending application owned by the student, freeing its quota slot.
func (s *ApplicationService) Withdraw(ctx context.Context, studentID, applicationID uuid.UUID) error {
	var withdrawn *model.Application

	err := s.retry.do(ctx, "withdraw application", func() error {
		return s.apps.WithTx(ctx, func(tx repository.ApplicationTx) error {
			app, err := tx.GetForUpdate(ctx, applicationID)
			if err != nil {
				return err
			}
			if app.StudentID != studentID {
				return ErrNotFound
			}
			if app.Status != model.ApplicationStatusPending {
				return ErrNotWithdrawable
			}
			if err := tx.Delete(ctx, app.ID); err != nil {
				return err
			}
			withdrawn = app
			return nil
		})
	})
	if err != nil {
		return wrapTxErr(err, "withdraw application")
	}

	evictApplicationViews(ctx, s.cache, s.log, withdrawn)
	s.log.Info().Str("application_id", applicationID.String()).Str("student_id", studentID.String()).Msg("Application withdrawn")
	return nil
}

// wrapTxErr passes domain errors through untouched and wraps infrastructure failures.
func wrapTxErr(err error, op string) error {
	if isDomainError(err) {
		return err
	}
	return mapStoreErr(err, op)
}

// isDomainError reports whether err is a business-rule outcome meant for the caller as is.
func isDomainError(err error) bool {
	var (
		nq  *NotQualifiedError
		qe  *QuotaExceededError
		ist *InvalidStateTransitionError
		cr  *CapacityReachedError
	)
	return errors.As(err, &nq) || errors.As(err, &qe) || errors.As(err, &ist) || errors.As(err, &cr) ||
		errors.Is(err, ErrNotFound) || errors.Is(err, ErrForbidden) ||
		errors.Is(err, ErrDuplicateApplication) || errors.Is(err, ErrNotWithdrawable) ||
		errors.Is(err, ErrConcurrentModification)
}

// evictApplicationViews drops the projections that include the application.
func evictApplicationViews(ctx context.Context, cache ProjectionCache, log zerolog.Logger, apps ...*model.Application) {
	keys := make([]string, 0, 2*len(apps))
	seen := make(map[string]struct{}, 2*len(apps))
	for _, a := range apps {
		for _, k := range []string{
			config.CacheKey.StudentProjectionKey(a.StudentID),
			config.CacheKey.InstitutionProjectionKey(a.InstitutionID),
		} {
			if _, dup := seen[k]; !dup {
				seen[k] = struct{}{}
				keys = append(keys, k)
			}
		}
	}
	evict(ctx, cache, log, keys...)
}
