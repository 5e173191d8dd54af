package model

import (
	"time"

	"github.com/google/uuid"
)

// RawJobRequirement is the loosely structured requirement text a company enters.
type RawJobRequirement struct {
	RequiredEducation       string `json:"required_education" binding:"omitempty,max=32"`
	RequiredExperienceYears string `json:"required_experience_years" binding:"omitempty,max=16"`
	// RequiredSkills is a comma separated skill list, e.g. "Go, PostgreSQL, Docker".
	RequiredSkills  string `json:"required_skills" binding:"omitempty,max=2000"`
	ExperienceLevel string `json:"experience_level" binding:"omitempty,max=32"`
}

// JobRequirement is the normalized predicate of a job posting.
type JobRequirement struct {
	RequiredEducation       EducationLevel  `json:"required_education,omitempty"`
	RequiredExperienceYears float64         `json:"required_experience_years"`
	RequiredSkills          []string        `json:"required_skills"`
	ExperienceLevel         ExperienceLevel `json:"experience_level,omitempty"`
}

// Job is a job posting owned by a company.
type Job struct {
	ID             uuid.UUID         `json:"id"`
	CompanyID      uuid.UUID         `json:"company_id"`
	Title          string            `json:"title"`
	Requirement    JobRequirement    `json:"requirement"`
	RawRequirement RawJobRequirement `json:"raw_requirement"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// CreateJobRequest is the payload for posting a job.
type CreateJobRequest struct {
	Title        string            `json:"title" binding:"required,min=2,max=255"`
	Requirements RawJobRequirement `json:"requirements"`
}

// UpdateJobRequirementsRequest replaces a job's raw requirement fields.
type UpdateJobRequirementsRequest struct {
	Requirements RawJobRequirement `json:"requirements"`
}
