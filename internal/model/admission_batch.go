package model

import (
	"time"

	"github.com/google/uuid"
)

// AdmissionBatch records one publish invocation for an institution.
// An empty batch has a nil ID and is never persisted.
type AdmissionBatch struct {
	ID                     uuid.UUID   `json:"id"`
	InstitutionID          uuid.UUID   `json:"institution_id"`
	PublishedAt            time.Time   `json:"published_at"`
	AffectedApplicationIDs []uuid.UUID `json:"affected_application_ids"`
}

// Size returns the number of applications admitted by the batch.
func (b *AdmissionBatch) Size() int {
	return len(b.AffectedApplicationIDs)
}

// AdmissionNotice is a decision notification dispatched after a transition commits.
// The worker persists notices to an outbox for the external mailer and fans them out to live feeds.
type AdmissionNotice struct {
	ApplicationID uuid.UUID         `json:"application_id"`
	StudentID     uuid.UUID         `json:"student_id"`
	InstitutionID uuid.UUID         `json:"institution_id"`
	CourseID      uuid.UUID         `json:"course_id"`
	Status        ApplicationStatus `json:"status"`
	BatchID       *uuid.UUID        `json:"batch_id,omitempty"`
	OccurredAt    time.Time         `json:"occurred_at"`
}
