package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/admissions-backend/internal/model"
	"github.com/stemsi/admissions-backend/internal/repository"
)

// ApplicationStore implements repository.ApplicationStore.
type ApplicationStore struct{ db *DB }

// WithTx holds the DB lock for the whole unit of work, so every lock method on the tx is a no-op.
func (s *ApplicationStore) WithTx(ctx context.Context, fn func(tx repository.ApplicationTx) error) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &applicationTx{
		applications: make(map[uuid.UUID]model.Application, len(s.db.applications)),
		batches:      make([]model.AdmissionBatch, 0, len(s.db.batches)+1),
	}
	for id, a := range s.db.applications {
		tx.applications[id] = cloneApplication(a)
	}
	for _, b := range s.db.batches {
		tx.batches = append(tx.batches, cloneBatch(b))
	}

	if err := fn(tx); err != nil {
		return err
	}

	s.db.applications = tx.applications
	s.db.batches = tx.batches
	return nil
}

func (s *ApplicationStore) GetByID(_ context.Context, id uuid.UUID) (*model.Application, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	a, ok := s.db.applications[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := cloneApplication(a)
	return &out, nil
}

func (s *ApplicationStore) ListByStudent(_ context.Context, studentID uuid.UUID) ([]model.Application, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	out := selectApplications(s.db.applications, func(a model.Application) bool { return a.StudentID == studentID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].AppliedAt.After(out[j].AppliedAt) })
	return out, nil
}

func (s *ApplicationStore) ListByInstitution(_ context.Context, institutionID uuid.UUID, f repository.ApplicationFilter) ([]model.Application, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	return selectApplications(s.db.applications, func(a model.Application) bool {
		if a.InstitutionID != institutionID {
			return false
		}
		if f.Status != nil && a.Status != *f.Status {
			return false
		}
		if f.CourseID != nil && a.CourseID != *f.CourseID {
			return false
		}
		return true
	}), nil
}

func (s *ApplicationStore) ListBatches(_ context.Context, institutionID uuid.UUID) ([]model.AdmissionBatch, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	out := []model.AdmissionBatch{}
	for i := len(s.db.batches) - 1; i >= 0; i-- {
		if b := s.db.batches[i]; b.InstitutionID == institutionID {
			out = append(out, cloneBatch(b))
		}
	}
	return out, nil
}

// selectApplications returns matching rows ordered by applied_at, then ID.
func selectApplications(rows map[uuid.UUID]model.Application, keep func(model.Application) bool) []model.Application {
	out := []model.Application{}
	for _, a := range rows {
		if keep(a) {
			out = append(out, cloneApplication(a))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AppliedAt.Equal(out[j].AppliedAt) {
			return out[i].AppliedAt.Before(out[j].AppliedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

// applicationTx is a private working copy of the applications table.
type applicationTx struct {
	applications map[uuid.UUID]model.Application
	batches      []model.AdmissionBatch
}

func (t *applicationTx) LockStudentInstitution(context.Context, uuid.UUID, uuid.UUID) error { return nil }
func (t *applicationTx) LockCourse(context.Context, uuid.UUID) error                        { return nil }
func (t *applicationTx) LockInstitution(context.Context, uuid.UUID) error                   { return nil }

func (t *applicationTx) FindByStudentCourse(_ context.Context, studentID, courseID uuid.UUID) (*model.Application, error) {
	for _, a := range t.applications {
		if a.StudentID == studentID && a.CourseID == courseID {
			out := cloneApplication(a)
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (t *applicationTx) CountActive(_ context.Context, studentID, institutionID uuid.UUID) (int, error) {
	n := 0
	for _, a := range t.applications {
		if a.StudentID == studentID && a.InstitutionID == institutionID && a.Status.IsActive() {
			n++
		}
	}
	return n, nil
}

func (t *applicationTx) CountSeatsTaken(_ context.Context, courseID uuid.UUID) (int, error) {
	n := 0
	for _, a := range t.applications {
		if a.CourseID == courseID &&
			(a.Status == model.ApplicationStatusApproved || a.Status == model.ApplicationStatusAdmitted) {
			n++
		}
	}
	return n, nil
}

func (t *applicationTx) Insert(_ context.Context, a *model.Application) error {
	if _, exists := t.applications[a.ID]; exists {
		return repository.ErrDuplicate
	}
	for _, cur := range t.applications {
		if cur.StudentID == a.StudentID && cur.CourseID == a.CourseID {
			return repository.ErrDuplicate
		}
	}
	t.applications[a.ID] = cloneApplication(*a)
	return nil
}

func (t *applicationTx) GetForUpdate(_ context.Context, id uuid.UUID) (*model.Application, error) {
	a, ok := t.applications[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := cloneApplication(a)
	return &out, nil
}

func (t *applicationTx) UpdateStatus(_ context.Context, id uuid.UUID, status model.ApplicationStatus, at time.Time) error {
	a, ok := t.applications[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.Status = status
	a.UpdatedAt = at
	t.applications[id] = a
	return nil
}

func (t *applicationTx) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := t.applications[id]; !ok {
		return repository.ErrNotFound
	}
	delete(t.applications, id)
	return nil
}

func (t *applicationTx) ListApprovedForUpdate(_ context.Context, institutionID uuid.UUID) ([]model.Application, error) {
	return selectApplications(t.applications, func(a model.Application) bool {
		return a.InstitutionID == institutionID && a.Status == model.ApplicationStatusApproved
	}), nil
}

func (t *applicationTx) MarkAdmitted(_ context.Context, ids []uuid.UUID, at time.Time) (int64, error) {
	var n int64
	for _, id := range ids {
		a, ok := t.applications[id]
		if !ok || a.Status != model.ApplicationStatusApproved {
			continue
		}
		a.Status = model.ApplicationStatusAdmitted
		a.UpdatedAt = at
		t.applications[id] = a
		n++
	}
	return n, nil
}

func (t *applicationTx) InsertBatch(_ context.Context, b *model.AdmissionBatch) error {
	t.batches = append(t.batches, cloneBatch(*b))
	return nil
}
