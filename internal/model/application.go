package model

import (
	"time"

	"github.com/google/uuid"
)

// ApplicationStatus enumerates the admission lifecycle states of a course application.
type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusApproved ApplicationStatus = "approved"
	ApplicationStatusRejected ApplicationStatus = "rejected"
	ApplicationStatusAdmitted ApplicationStatus = "admitted"
)

// ActiveApplicationStatuses are the statuses counted against the per-institution quota.
var ActiveApplicationStatuses = []ApplicationStatus{ApplicationStatusPending, ApplicationStatusApproved}

// IsActive reports whether the status occupies a quota slot.
func (s ApplicationStatus) IsActive() bool {
	return s == ApplicationStatusPending || s == ApplicationStatusApproved
}

// QualificationSnapshot is the evaluator verdict captured when the application was created.
type QualificationSnapshot struct {
	Qualified bool     `json:"qualified"`
	Reasons   []string `json:"reasons"`
	// Overridden is set when institution staff submitted on behalf of a non-qualified student.
	Overridden  bool      `json:"overridden,omitempty"`
	EvaluatedAt time.Time `json:"evaluated_at"`
}

// Application is a student's application to a course.
type Application struct {
	ID                    uuid.UUID             `json:"id"`
	StudentID             uuid.UUID             `json:"student_id"`
	CourseID              uuid.UUID             `json:"course_id"`
	InstitutionID         uuid.UUID             `json:"institution_id"`
	Status                ApplicationStatus     `json:"status"`
	QualificationSnapshot QualificationSnapshot `json:"qualification_snapshot"`
	AppliedAt             time.Time             `json:"applied_at"`
	UpdatedAt             time.Time             `json:"updated_at"`
}

// SubmitApplicationRequest is the payload a student sends to apply for a course.
type SubmitApplicationRequest struct {
	CourseID uuid.UUID `json:"course_id" binding:"required"`
}

// OverrideApplicationRequest is the payload staff send to apply on behalf of a student.
type OverrideApplicationRequest struct {
	StudentID uuid.UUID `json:"student_id" binding:"required"`
	CourseID  uuid.UUID `json:"course_id" binding:"required"`
}

// UpdateApplicationStatusRequest is the payload staff send to move an application.
// "admitted" is accepted by binding but always rejected by the state machine: admission happens only via publish.
type UpdateApplicationStatusRequest struct {
	Status ApplicationStatus `json:"status" binding:"required,oneof=pending approved rejected admitted"`
}
