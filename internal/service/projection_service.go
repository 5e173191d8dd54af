package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/admissions-backend/internal/config"
	"github.com/stemsi/admissions-backend/internal/eligibility"
	"github.com/stemsi/admissions-backend/internal/model"
	"github.com/stemsi/admissions-backend/internal/repository"
	"golang.org/x/sync/singleflight"
)

// ProjectionService serves the read side: annotated listings and application views.
// Application views come from stored snapshots; only catalog listings evaluate live.
type ProjectionService struct {
	courses repository.CourseStore
	jobs    repository.JobStore
	records repository.StudentRecordStore
	apps    repository.ApplicationStore
	jobApps repository.JobApplicationStore
	scorer  *eligibility.Scorer
	cache   ProjectionCache
	group   singleflight.Group
	log     zerolog.Logger
}

// NewProjectionService creates a new ProjectionService.
func NewProjectionService(
	courses repository.CourseStore,
	jobs repository.JobStore,
	records repository.StudentRecordStore,
	apps repository.ApplicationStore,
	jobApps repository.JobApplicationStore,
	scorer *eligibility.Scorer,
	cache ProjectionCache,
	log zerolog.Logger,
) *ProjectionService {
	return &ProjectionService{
		courses: courses,
		jobs:    jobs,
		records: records,
		apps:    apps,
		jobApps: jobApps,
		scorer:  scorer,
		cache:   cache,
		log:     log.With().Str("component", "projection_service").Logger(),
	}
}

// StudentCourses lists every course annotated with the student's verdict.
func (s *ProjectionService) StudentCourses(ctx context.Context, studentID uuid.UUID) ([]model.CourseListing, error) {
	rec, err := recordOrEmpty(ctx, s.records, studentID)
	if err != nil {
		return nil, err
	}
	var key string
	if v, ok := s.catalogVersion(ctx); ok {
		key = config.CacheKey.StudentCourseListingKey(studentID, v, rec.Version())
	}

	return cached(ctx, s, key, func() ([]model.CourseListing, error) {
		courses, err := s.courses.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list courses: %w", err)
		}
		listing := make([]model.CourseListing, len(courses))
		for i, c := range courses {
			v := eligibility.Evaluate(rec, c.Requirement)
			listing[i] = model.CourseListing{Course: c, Qualified: v.Qualified, Reasons: v.Reasons}
		}
		return listing, nil
	})
}

// StudentJobs lists every job with the student's match score, best match first.
func (s *ProjectionService) StudentJobs(ctx context.Context, studentID uuid.UUID) ([]model.JobListing, error) {
	rec, err := recordOrEmpty(ctx, s.records, studentID)
	if err != nil {
		return nil, err
	}
	var key string
	if v, ok := s.catalogVersion(ctx); ok {
		key = config.CacheKey.StudentJobListingKey(studentID, v, rec.Version())
	}

	return cached(ctx, s, key, func() ([]model.JobListing, error) {
		jobs, err := s.jobs.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list jobs: %w", err)
		}
		listing := make([]model.JobListing, len(jobs))
		for i, j := range jobs {
			listing[i] = model.JobListing{Job: j, Match: s.scorer.Score(rec, j.Requirement)}
		}
		slices.SortStableFunc(listing, func(a, b model.JobListing) int {
			return cmp.Compare(b.Match.Score, a.Match.Score)
		})
		return listing, nil
	})
}

// StudentAdmissions returns the student's applications and job applications as stored.
func (s *ProjectionService) StudentAdmissions(ctx context.Context, studentID uuid.UUID) (*model.StudentAdmissions, error) {
	view, err := cached(ctx, s, config.CacheKey.StudentProjectionKey(studentID), func() (model.StudentAdmissions, error) {
		apps, err := s.apps.ListByStudent(ctx, studentID)
		if err != nil {
			return model.StudentAdmissions{}, fmt.Errorf("list applications: %w", err)
		}
		jobApps, err := s.jobApps.ListByStudent(ctx, studentID)
		if err != nil {
			return model.StudentAdmissions{}, fmt.Errorf("list job applications: %w", err)
		}
		return model.StudentAdmissions{Applications: apps, JobApplications: jobApps}, nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// InstitutionApplications returns one page of the institution's applications matching the filter,
// along with the filtered total.
func (s *ProjectionService) InstitutionApplications(ctx context.Context, institutionID uuid.UUID, filter repository.ApplicationFilter, page, perPage int) ([]model.Application, int, error) {
	all, err := cached(ctx, s, config.CacheKey.InstitutionProjectionKey(institutionID), func() ([]model.Application, error) {
		apps, err := s.apps.ListByInstitution(ctx, institutionID, repository.ApplicationFilter{})
		if err != nil {
			return nil, fmt.Errorf("list institution applications: %w", err)
		}
		return apps, nil
	})
	if err != nil {
		return nil, 0, err
	}

	matched := make([]model.Application, 0, len(all))
	for _, a := range all {
		if filter.Status != nil && a.Status != *filter.Status {
			continue
		}
		if filter.CourseID != nil && a.CourseID != *filter.CourseID {
			continue
		}
		matched = append(matched, a)
	}
	return paginate(matched, page, perPage), len(matched), nil
}

// CompanyJobApplications returns the company's job applications, best score first.
func (s *ProjectionService) CompanyJobApplications(ctx context.Context, companyID uuid.UUID, status *model.JobApplicationStatus) ([]model.JobApplication, error) {
	all, err := cached(ctx, s, config.CacheKey.CompanyProjectionKey(companyID), func() ([]model.JobApplication, error) {
		apps, err := s.jobApps.ListByCompany(ctx, companyID, nil)
		if err != nil {
			return nil, fmt.Errorf("list company job applications: %w", err)
		}
		return apps, nil
	})
	if err != nil {
		return nil, err
	}

	if status == nil {
		return all, nil
	}
	out := make([]model.JobApplication, 0, len(all))
	for _, a := range all {
		if a.Status == *status {
			out = append(out, a)
		}
	}
	return out, nil
}

// cached serves key from the projection cache, or builds it once for all concurrent callers
// and stores the result. An empty key bypasses the cache.
func cached[T any](ctx context.Context, s *ProjectionService, key string, build func() (T, error)) (T, error) {
	var out T
	if key == "" {
		return build()
	}
	if s.load(ctx, key, &out) {
		return out, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		built, err := build()
		if err != nil {
			return nil, err
		}
		s.store(ctx, key, built)
		return built, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// catalogVersion reports false when the version is unknown; listings are then built uncached.
func (s *ProjectionService) catalogVersion(ctx context.Context) (int64, bool) {
	v, err := s.cache.CatalogVersion(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to read catalog version")
		return 0, false
	}
	return v, true
}

func (s *ProjectionService) load(ctx context.Context, key string, dst any) bool {
	hit, err := s.cache.GetJSON(ctx, key, dst)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Projection cache read failed")
		return false
	}
	return hit
}

func (s *ProjectionService) store(ctx context.Context, key string, v any) {
	if err := s.cache.SetJSON(ctx, key, v); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Projection cache write failed")
	}
}

// paginate returns the 1-based page of items; out-of-range pages are empty.
func paginate[T any](items []T, page, perPage int) []T {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		return items
	}
	start := (page - 1) * perPage
	if start >= len(items) {
		return []T{}
	}
	end := min(start+perPage, len(items))
	return items[start:end]
}
