package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/admissions-backend/internal/model"
	"github.com/stemsi/admissions-backend/internal/repository"
)

// JobApplicationStore implements repository.JobApplicationStore.
type JobApplicationStore struct{ db *DB }

func (s *JobApplicationStore) Create(_ context.Context, a *model.JobApplication) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	for _, cur := range s.db.jobApps {
		if cur.ID == a.ID || (cur.StudentID == a.StudentID && cur.JobID == a.JobID) {
			return repository.ErrDuplicate
		}
	}
	s.db.jobApps[a.ID] = *a
	return nil
}

func (s *JobApplicationStore) GetByID(_ context.Context, id uuid.UUID) (*model.JobApplication, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	a, ok := s.db.jobApps[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (s *JobApplicationStore) ListByStudent(_ context.Context, studentID uuid.UUID) ([]model.JobApplication, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	out := []model.JobApplication{}
	for _, a := range s.db.jobApps {
		if a.StudentID == studentID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AppliedAt.Equal(out[j].AppliedAt) {
			return out[i].AppliedAt.After(out[j].AppliedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (s *JobApplicationStore) ListByCompany(_ context.Context, companyID uuid.UUID, status *model.JobApplicationStatus) ([]model.JobApplication, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	out := []model.JobApplication{}
	for _, a := range s.db.jobApps {
		if a.CompanyID != companyID || (status != nil && a.Status != *status) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MatchScoreSnapshot.Score != out[j].MatchScoreSnapshot.Score {
			return out[i].MatchScoreSnapshot.Score > out[j].MatchScoreSnapshot.Score
		}
		if !out[i].AppliedAt.Equal(out[j].AppliedAt) {
			return out[i].AppliedAt.Before(out[j].AppliedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (s *JobApplicationStore) UpdateStatus(_ context.Context, id uuid.UUID, from, to model.JobApplicationStatus, at time.Time) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	a, ok := s.db.jobApps[id]
	if !ok || a.Status != from {
		return repository.ErrConflict
	}
	a.Status = to
	a.UpdatedAt = at
	s.db.jobApps[id] = a
	return nil
}

func (s *JobApplicationStore) DeleteInStatus(_ context.Context, id uuid.UUID, status model.JobApplicationStatus) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	a, ok := s.db.jobApps[id]
	if !ok || a.Status != status {
		return repository.ErrConflict
	}
	delete(s.db.jobApps, id)
	return nil
}

// NoticeStore implements repository.NoticeStore.
type NoticeStore struct{ db *DB }

func (s *NoticeStore) InsertMany(_ context.Context, notices []model.AdmissionNotice) error {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	s.db.notices = append(s.db.notices, notices...)
	return nil
}

func (s *NoticeStore) Insert(ctx context.Context, n model.AdmissionNotice) error {
	return s.InsertMany(ctx, []model.AdmissionNotice{n})
}

func (s *NoticeStore) ListByStudent(_ context.Context, studentID uuid.UUID, limit int) ([]model.AdmissionNotice, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	out := []model.AdmissionNotice{}
	for i := len(s.db.notices) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if s.db.notices[i].StudentID == studentID {
			out = append(out, s.db.notices[i])
		}
	}
	return out, nil
}
