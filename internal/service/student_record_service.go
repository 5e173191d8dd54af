package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/admissions-backend/internal/eligibility"
	"github.com/stemsi/admissions-backend/internal/model"
	"github.com/stemsi/admissions-backend/internal/repository"
)

// StudentRecordService manages students' academic records.
type StudentRecordService struct {
	records repository.StudentRecordStore
	log     zerolog.Logger
	now     func() time.Time
}

// NewStudentRecordService creates a new StudentRecordService.
func NewStudentRecordService(records repository.StudentRecordStore, log zerolog.Logger) *StudentRecordService {
	return &StudentRecordService{
		records: records,
		log:     log.With().Str("component", "student_record_service").Logger(),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Get returns the student's record or ErrRecordNotFound.
func (s *StudentRecordService) Get(ctx context.Context, studentID uuid.UUID) (*model.StudentRecord, error) {
	rec, err := s.records.Get(ctx, studentID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get academic record: %w", err)
	}
	return rec, nil
}

// Update validates and replaces the student's record. Cached listings keyed on
// the old record version become unreachable once UpdatedAt moves.
func (s *StudentRecordService) Update(ctx context.Context, studentID uuid.UUID, req model.UpdateAcademicRecordRequest) (*model.StudentRecord, error) {
	rec, err := eligibility.NormalizeStudentRecord(studentID, req, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.records.Upsert(ctx, &rec); err != nil {
		return nil, fmt.Errorf("save academic record: %w", err)
	}

	s.log.Info().Str("student_id", studentID.String()).Int("subjects", len(rec.SubjectGrades)).Msg("Academic record updated")
	return &rec, nil
}

// recordOrEmpty loads the record, treating a missing one as an empty profile so
// that every constraint reports its own "missing" reason.
func recordOrEmpty(ctx context.Context, records repository.StudentRecordStore, studentID uuid.UUID) (*model.StudentRecord, error) {
	rec, err := records.Get(ctx, studentID)
	if errors.Is(err, repository.ErrNotFound) {
		return &model.StudentRecord{StudentID: studentID, SubjectGrades: map[string]model.Grade{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get academic record: %w", err)
	}
	return rec, nil
}
