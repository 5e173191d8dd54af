package model

import (
	"time"

	"github.com/google/uuid"
)

// RawCourseRequirement is the loosely structured requirement text an institution enters.
// Every field may be empty, meaning the dimension is unconstrained.
type RawCourseRequirement struct {
	MinEducationLevel string `json:"min_education_level" binding:"omitempty,max=32"`
	MinGPA            string `json:"min_gpa" binding:"omitempty,max=16"`
	// RequiredSubjects lists "subject: grade" pairs, e.g. "Mathematics: B, English - C".
	RequiredSubjects string `json:"required_subjects" binding:"omitempty,max=2000"`
	// Prerequisites is a comma, semicolon or newline separated list of course names.
	Prerequisites  string `json:"prerequisites" binding:"omitempty,max=2000"`
	IntakeCapacity string `json:"intake_capacity" binding:"omitempty,max=16"`
}

// SubjectRequirement is a required subject with its minimum grade.
type SubjectRequirement struct {
	Subject  string `json:"subject"`
	MinGrade Grade  `json:"min_grade"`
}

// CourseRequirement is the normalized admission predicate of a course.
// Zero values (empty level, nil pointers, empty slices) mean "no constraint".
type CourseRequirement struct {
	MinEducationLevel EducationLevel       `json:"min_education_level,omitempty"`
	MinGPA            *float64             `json:"min_gpa,omitempty"`
	RequiredSubjects  []SubjectRequirement `json:"required_subjects"`
	Prerequisites     []string             `json:"prerequisites"`
	// IntakeCapacity is nil when the intake is unlimited.
	IntakeCapacity *int `json:"intake_capacity,omitempty"`
}

// Course is an academic course offered by an institution.
type Course struct {
	ID             uuid.UUID            `json:"id"`
	InstitutionID  uuid.UUID            `json:"institution_id"`
	Name           string               `json:"name"`
	Requirement    CourseRequirement    `json:"requirement"`
	RawRequirement RawCourseRequirement `json:"raw_requirement"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// CreateCourseRequest is the payload for adding a course to an institution's catalog.
type CreateCourseRequest struct {
	Name         string               `json:"name" binding:"required,min=2,max=255"`
	Requirements RawCourseRequirement `json:"requirements"`
}

// UpdateCourseRequirementsRequest replaces a course's raw requirement fields.
type UpdateCourseRequirementsRequest struct {
	Requirements RawCourseRequirement `json:"requirements"`
}
