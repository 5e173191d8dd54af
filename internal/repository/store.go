package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/admissions-backend/internal/model"
)

// StudentRecordStore persists students' academic records.
type StudentRecordStore interface {
	Get(ctx context.Context, studentID uuid.UUID) (*model.StudentRecord, error)
	Upsert(ctx context.Context, rec *model.StudentRecord) error
}

// CourseStore persists the course catalog.
type CourseStore interface {
	Create(ctx context.Context, c *model.Course) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Course, error)
	List(ctx context.Context) ([]model.Course, error)
	ListByInstitution(ctx context.Context, institutionID uuid.UUID) ([]model.Course, error)
	UpdateRequirement(ctx context.Context, c *model.Course) error
}

// JobStore persists job postings.
type JobStore interface {
	Create(ctx context.Context, j *model.Job) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Job, error)
	List(ctx context.Context) ([]model.Job, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]model.Job, error)
	UpdateRequirement(ctx context.Context, j *model.Job) error
}

// ApplicationFilter narrows institution application listings.
type ApplicationFilter struct {
	Status   *model.ApplicationStatus
	CourseID *uuid.UUID
}

// ApplicationStore persists course applications and admission batches.
// Every read-modify-write goes through WithTx.
type ApplicationStore interface {
	// WithTx runs fn as one atomic unit. A returned error rolls everything back.
	// Serialization failures and deadlocks surface as ErrConflict so callers can retry the whole unit.
	WithTx(ctx context.Context, fn func(tx ApplicationTx) error) error

	GetByID(ctx context.Context, id uuid.UUID) (*model.Application, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]model.Application, error)
	ListByInstitution(ctx context.Context, institutionID uuid.UUID, f ApplicationFilter) ([]model.Application, error)
	ListBatches(ctx context.Context, institutionID uuid.UUID) ([]model.AdmissionBatch, error)
}

// ApplicationTx is the transactional view used by the quota guard and the admission state machine.
type ApplicationTx interface {
	// LockStudentInstitution serializes quota decisions for one (student, institution) pair.
	LockStudentInstitution(ctx context.Context, studentID, institutionID uuid.UUID) error
	// LockCourse serializes capacity decisions for one course.
	LockCourse(ctx context.Context, courseID uuid.UUID) error
	// LockInstitution serializes publish runs for one institution.
	LockInstitution(ctx context.Context, institutionID uuid.UUID) error

	FindByStudentCourse(ctx context.Context, studentID, courseID uuid.UUID) (*model.Application, error)
	CountActive(ctx context.Context, studentID, institutionID uuid.UUID) (int, error)
	CountSeatsTaken(ctx context.Context, courseID uuid.UUID) (int, error)
	Insert(ctx context.Context, a *model.Application) error

	GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Application, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.ApplicationStatus, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error

	ListApprovedForUpdate(ctx context.Context, institutionID uuid.UUID) ([]model.Application, error)
	// MarkAdmitted moves the given approved applications to admitted and returns how many rows changed.
	MarkAdmitted(ctx context.Context, ids []uuid.UUID, at time.Time) (int64, error)
	InsertBatch(ctx context.Context, b *model.AdmissionBatch) error
}

// JobApplicationStore persists job applications. Status changes are compare-and-set.
type JobApplicationStore interface {
	Create(ctx context.Context, a *model.JobApplication) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.JobApplication, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]model.JobApplication, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID, status *model.JobApplicationStatus) ([]model.JobApplication, error)
	// UpdateStatus returns ErrConflict when the row is no longer in status from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.JobApplicationStatus, at time.Time) error
	// DeleteInStatus returns ErrConflict when the row is no longer in status.
	DeleteInStatus(ctx context.Context, id uuid.UUID, status model.JobApplicationStatus) error
}

// NoticeStore is the outbox for admission decision notices.
type NoticeStore interface {
	InsertMany(ctx context.Context, notices []model.AdmissionNotice) error
	Insert(ctx context.Context, n model.AdmissionNotice) error
	ListByStudent(ctx context.Context, studentID uuid.UUID, limit int) ([]model.AdmissionNotice, error)
}

var (
	_ StudentRecordStore  = (*StudentRecordRepository)(nil)
	_ CourseStore         = (*CourseRepository)(nil)
	_ JobStore            = (*JobRepository)(nil)
	_ ApplicationStore    = (*ApplicationRepository)(nil)
	_ JobApplicationStore = (*JobApplicationRepository)(nil)
	_ NoticeStore         = (*NoticeRepository)(nil)
)
