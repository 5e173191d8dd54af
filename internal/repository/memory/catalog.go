package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/admissions-backend/internal/model"
	"github.com/stemsi/admissions-backend/internal/repository"
)

// StudentRecordStore implements repository.StudentRecordStore.
type StudentRecordStore struct{ db *DB }

func (s *StudentRecordStore) Get(_ context.Context, studentID uuid.UUID) (*model.StudentRecord, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	rec, ok := s.db.records[studentID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := cloneRecord(rec)
	return &out, nil
}

func (s *StudentRecordStore) Upsert(_ context.Context, rec *model.StudentRecord) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	s.db.records[rec.StudentID] = cloneRecord(*rec)
	return nil
}

// CourseStore implements repository.CourseStore.
type CourseStore struct{ db *DB }

func (s *CourseStore) Create(_ context.Context, c *model.Course) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	s.db.courses[c.ID] = cloneCourse(*c)
	return nil
}

func (s *CourseStore) GetByID(_ context.Context, id uuid.UUID) (*model.Course, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	c, ok := s.db.courses[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := cloneCourse(c)
	return &out, nil
}

func (s *CourseStore) List(_ context.Context) ([]model.Course, error) {
	return s.filter(func(model.Course) bool { return true }), nil
}

func (s *CourseStore) ListByInstitution(_ context.Context, institutionID uuid.UUID) ([]model.Course, error) {
	return s.filter(func(c model.Course) bool { return c.InstitutionID == institutionID }), nil
}

func (s *CourseStore) filter(keep func(model.Course) bool) []model.Course {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	out := []model.Course{}
	for _, c := range s.db.courses {
		if keep(c) {
			out = append(out, cloneCourse(c))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

func (s *CourseStore) UpdateRequirement(_ context.Context, c *model.Course) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	cur, ok := s.db.courses[c.ID]
	if !ok {
		return repository.ErrNotFound
	}
	cur.Requirement = c.Requirement
	cur.RawRequirement = c.RawRequirement
	cur.UpdatedAt = c.UpdatedAt
	s.db.courses[c.ID] = cloneCourse(cur)
	return nil
}

// JobStore implements repository.JobStore.
type JobStore struct{ db *DB }

func (s *JobStore) Create(_ context.Context, j *model.Job) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	now := time.Now().UTC()
	j.CreatedAt, j.UpdatedAt = now, now
	s.db.jobs[j.ID] = cloneJob(*j)
	return nil
}

func (s *JobStore) GetByID(_ context.Context, id uuid.UUID) (*model.Job, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	j, ok := s.db.jobs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := cloneJob(j)
	return &out, nil
}

func (s *JobStore) List(_ context.Context) ([]model.Job, error) {
	return s.filter(func(model.Job) bool { return true }), nil
}

func (s *JobStore) ListByCompany(_ context.Context, companyID uuid.UUID) ([]model.Job, error) {
	return s.filter(func(j model.Job) bool { return j.CompanyID == companyID }), nil
}

func (s *JobStore) filter(keep func(model.Job) bool) []model.Job {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	out := []model.Job{}
	for _, j := range s.db.jobs {
		if keep(j) {
			out = append(out, cloneJob(j))
		}
	}
	sort.Slice(out, func(i, k int) bool {
		if out[i].Title != out[k].Title {
			return out[i].Title < out[k].Title
		}
		return out[i].ID.String() < out[k].ID.String()
	})
	return out
}

func (s *JobStore) UpdateRequirement(_ context.Context, j *model.Job) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	cur, ok := s.db.jobs[j.ID]
	if !ok {
		return repository.ErrNotFound
	}
	cur.Requirement = j.Requirement
	cur.RawRequirement = j.RawRequirement
	cur.UpdatedAt = j.UpdatedAt
	s.db.jobs[j.ID] = cloneJob(cur)
	return nil
}
