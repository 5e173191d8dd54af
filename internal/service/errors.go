package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrNotFound               = errors.New("resource not found")
	ErrRecordNotFound         = errors.New("academic record not found")
	ErrForbidden              = errors.New("resource belongs to another organization")
	ErrDuplicateApplication   = errors.New("an application for this course already exists")
	ErrNotWithdrawable        = errors.New("only pending applications can be withdrawn")
	ErrConcurrentModification = errors.New("concurrent modification, retry later")
)

// NotQualifiedError is returned when the evaluator verdict for the student is false.
type NotQualifiedError struct {
	Reasons []string
}

func (e *NotQualifiedError) Error() string {
	return "student does not meet course requirements: " + strings.Join(e.Reasons, "; ")
}

// QuotaExceededError is returned when the student already holds Limit active applications at the institution.
type QuotaExceededError struct {
	InstitutionID uuid.UUID
	Limit         int
	Active        int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("application quota exceeded for institution %s: %d of %d active", e.InstitutionID, e.Active, e.Limit)
}

// InvalidStateTransitionError is returned for a status change outside the allowed edges.
type InvalidStateTransitionError struct {
	From string
	To   string
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %s to %s", e.From, e.To)
}

// CapacityReachedError is returned when approving would exceed a course's intake capacity.
type CapacityReachedError struct {
	CourseID uuid.UUID
	Capacity int
}

func (e *CapacityReachedError) Error() string {
	return fmt.Sprintf("course %s intake capacity of %d reached", e.CourseID, e.Capacity)
}
