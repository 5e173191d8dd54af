package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/admissions-backend/internal/eligibility"
	"github.com/stemsi/admissions-backend/internal/model"
	"github.com/stemsi/admissions-backend/internal/repository"
)

// CatalogService manages courses and job postings and their requirement text.
// Requirements are normalized on write so readers only ever see typed predicates.
type CatalogService struct {
	courses repository.CourseStore
	jobs    repository.JobStore
	cache   ProjectionCache
	log     zerolog.Logger
	now     func() time.Time
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(courses repository.CourseStore, jobs repository.JobStore, cache ProjectionCache, log zerolog.Logger) *CatalogService {
	return &CatalogService{
		courses: courses,
		jobs:    jobs,
		cache:   cache,
		log:     log.With().Str("component", "catalog_service").Logger(),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// CreateCourse normalizes the requirement text and adds the course to the institution's catalog.
func (s *CatalogService) CreateCourse(ctx context.Context, institutionID uuid.UUID, req model.CreateCourseRequest) (*model.Course, error) {
	normalized, err := eligibility.NormalizeCourseRequirement(req.Requirements)
	if err != nil {
		return nil, err
	}

	course := &model.Course{
		InstitutionID:  institutionID,
		Name:           req.Name,
		Requirement:    normalized,
		RawRequirement: req.Requirements,
	}
	if err := s.courses.Create(ctx, course); err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}

	s.bumpCatalog(ctx)
	s.log.Info().Str("course_id", course.ID.String()).Str("institution_id", institutionID.String()).Msg("Course created")
	return course, nil
}

// UpdateCourseRequirements replaces a course's requirements. Existing applications keep
// the qualification snapshot they were created with.
func (s *CatalogService) UpdateCourseRequirements(ctx context.Context, institutionID, courseID uuid.UUID, raw model.RawCourseRequirement) (*model.Course, error) {
	course, err := s.ownedCourse(ctx, institutionID, courseID)
	if err != nil {
		return nil, err
	}

	normalized, err := eligibility.NormalizeCourseRequirement(raw)
	if err != nil {
		return nil, err
	}

	course.Requirement = normalized
	course.RawRequirement = raw
	course.UpdatedAt = s.now()
	if err := s.courses.UpdateRequirement(ctx, course); err != nil {
		return nil, mapStoreErr(err, "update course requirements")
	}

	s.bumpCatalog(ctx)
	s.log.Info().Str("course_id", courseID.String()).Msg("Course requirements updated")
	return course, nil
}

// ListInstitutionCourses returns an institution's courses.
func (s *CatalogService) ListInstitutionCourses(ctx context.Context, institutionID uuid.UUID) ([]model.Course, error) {
	courses, err := s.courses.ListByInstitution(ctx, institutionID)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// CreateJob normalizes the requirement text and posts the job for the company.
func (s *CatalogService) CreateJob(ctx context.Context, companyID uuid.UUID, req model.CreateJobRequest) (*model.Job, error) {
	normalized, err := eligibility.NormalizeJobRequirement(req.Requirements)
	if err != nil {
		return nil, err
	}

	job := &model.Job{
		CompanyID:      companyID,
		Title:          req.Title,
		Requirement:    normalized,
		RawRequirement: req.Requirements,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	s.bumpCatalog(ctx)
	s.log.Info().Str("job_id", job.ID.String()).Str("company_id", companyID.String()).Msg("Job posted")
	return job, nil
}

// UpdateJobRequirements replaces a job's requirements. Existing job applications keep their score snapshot.
func (s *CatalogService) UpdateJobRequirements(ctx context.Context, companyID, jobID uuid.UUID, raw model.RawJobRequirement) (*model.Job, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, mapStoreErr(err, "get job")
	}
	if job.CompanyID != companyID {
		return nil, ErrForbidden
	}

	normalized, err := eligibility.NormalizeJobRequirement(raw)
	if err != nil {
		return nil, err
	}

	job.Requirement = normalized
	job.RawRequirement = raw
	job.UpdatedAt = s.now()
	if err := s.jobs.UpdateRequirement(ctx, job); err != nil {
		return nil, mapStoreErr(err, "update job requirements")
	}

	s.bumpCatalog(ctx)
	s.log.Info().Str("job_id", jobID.String()).Msg("Job requirements updated")
	return job, nil
}

// ListCompanyJobs returns a company's postings.
func (s *CatalogService) ListCompanyJobs(ctx context.Context, companyID uuid.UUID) ([]model.Job, error) {
	jobs, err := s.jobs.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}

func (s *CatalogService) ownedCourse(ctx context.Context, institutionID, courseID uuid.UUID) (*model.Course, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		return nil, mapStoreErr(err, "get course")
	}
	if course.InstitutionID != institutionID {
		return nil, ErrForbidden
	}
	return course, nil
}

func (s *CatalogService) bumpCatalog(ctx context.Context) {
	if _, err := s.cache.BumpCatalogVersion(ctx); err != nil {
		s.log.Warn().Err(err).Msg("Failed to bump catalog version")
	}
}

// mapStoreErr turns repository.ErrNotFound into ErrNotFound and wraps anything else.
func mapStoreErr(err error, op string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
