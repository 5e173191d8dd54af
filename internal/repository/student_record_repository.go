package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/admissions-backend/internal/model"
)

// StudentRecordRepository handles academic record data access.
type StudentRecordRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRecordRepository creates a new StudentRecordRepository.
func NewStudentRecordRepository(pool *pgxpool.Pool) *StudentRecordRepository {
	return &StudentRecordRepository{pool: pool}
}

// Get retrieves a student's academic record.
func (r *StudentRecordRepository) Get(ctx context.Context, studentID uuid.UUID) (*model.StudentRecord, error) {
	rec := &model.StudentRecord{}
	err := r.pool.QueryRow(ctx,
		`SELECT student_id, subject_grades, COALESCE(education_level, ''), gpa,
		        work_experience_years, skills, completed_courses, updated_at
		 FROM student_records
		 WHERE student_id = $1`, studentID,
	).Scan(&rec.StudentID, &rec.SubjectGrades, &rec.EducationLevel, &rec.GPA,
		&rec.WorkExperienceYears, &rec.Skills, &rec.CompletedCourses, &rec.UpdatedAt)
	if err != nil {
		return nil, classify(err)
	}
	return rec, nil
}

// Upsert inserts or replaces a student's academic record.
func (r *StudentRecordRepository) Upsert(ctx context.Context, rec *model.StudentRecord) error {
	var level *string
	if rec.EducationLevel != "" {
		s := string(rec.EducationLevel)
		level = &s
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO student_records
		   (student_id, subject_grades, education_level, gpa, work_experience_years, skills, completed_courses, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (student_id) DO UPDATE SET
		   subject_grades = EXCLUDED.subject_grades,
		   education_level = EXCLUDED.education_level,
		   gpa = EXCLUDED.gpa,
		   work_experience_years = EXCLUDED.work_experience_years,
		   skills = EXCLUDED.skills,
		   completed_courses = EXCLUDED.completed_courses,
		   updated_at = EXCLUDED.updated_at`,
		rec.StudentID, rec.SubjectGrades, level, rec.GPA, rec.WorkExperienceYears,
		rec.Skills, rec.CompletedCourses, rec.UpdatedAt,
	)
	return classify(err)
}
