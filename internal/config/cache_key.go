package config

import (
	"fmt"

	"github.com/google/uuid"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// CatalogVersionKey holds a counter bumped on every course or job requirement change.
func (r *CacheKeyStruct) CatalogVersionKey() string {
	return "catalog:version"
}

// StudentCourseListingKey returns the cache key for a student's annotated course listing.
// Both versions are part of the key, so a requirement or record change makes old entries unreachable.
func (r *CacheKeyStruct) StudentCourseListingKey(studentID uuid.UUID, catalogVersion, recordVersion int64) string {
	return fmt.Sprintf("student:%s:courses:c%d:r%d", studentID, catalogVersion, recordVersion)
}

// StudentJobListingKey returns the cache key for a student's annotated job listing.
func (r *CacheKeyStruct) StudentJobListingKey(studentID uuid.UUID, catalogVersion, recordVersion int64) string {
	return fmt.Sprintf("student:%s:jobs:c%d:r%d", studentID, catalogVersion, recordVersion)
}

// StudentProjectionKey returns the cache key for a student's admissions projection.
func (r *CacheKeyStruct) StudentProjectionKey(studentID uuid.UUID) string {
	return fmt.Sprintf("projection:student:%s", studentID)
}

// InstitutionProjectionKey returns the cache key for an institution's applications projection.
func (r *CacheKeyStruct) InstitutionProjectionKey(institutionID uuid.UUID) string {
	return fmt.Sprintf("projection:institution:%s", institutionID)
}

// CompanyProjectionKey returns the cache key for a company's job applications projection.
func (r *CacheKeyStruct) CompanyProjectionKey(companyID uuid.UUID) string {
	return fmt.Sprintf("projection:company:%s", companyID)
}

// StudentAdmissionsChannel returns the Redis PubSub channel carrying a student's decision notices.
func (r *CacheKeyStruct) StudentAdmissionsChannel(studentID uuid.UUID) string {
	return fmt.Sprintf("student:%s:admissions", studentID)
}

// ApplyRateLimitKey returns the fixed-window counter key for a student's application submissions.
func (r *CacheKeyStruct) ApplyRateLimitKey(studentID uuid.UUID) string {
	return fmt.Sprintf("ratelimit:apply:%s", studentID)
}

var CacheKey = NewCacheKeyStruct()
