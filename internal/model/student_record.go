package model

import (
	"time"

	"github.com/google/uuid"
)

// StudentRecord is a student's academic profile as consumed by the eligibility engine.
type StudentRecord struct {
	StudentID           uuid.UUID        `json:"student_id"`
	SubjectGrades       map[string]Grade `json:"subject_grades"`
	EducationLevel      EducationLevel   `json:"education_level,omitempty"`
	GPA                 *float64         `json:"gpa,omitempty"`
	WorkExperienceYears float64          `json:"work_experience_years"`
	Skills              []string         `json:"skills"`
	CompletedCourses    []string         `json:"completed_courses"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

// Version identifies the record revision for cache keys; 0 for a record never saved.
func (r *StudentRecord) Version() int64 {
	if r.UpdatedAt.IsZero() {
		return 0
	}
	return r.UpdatedAt.UnixNano()
}

// UpdateAcademicRecordRequest is the payload a student sends to replace their academic record.
type UpdateAcademicRecordRequest struct {
	SubjectGrades       map[string]string `json:"subject_grades" binding:"omitempty,max=40,dive,keys,min=1,max=100,endkeys,required,max=3"`
	EducationLevel      string            `json:"education_level" binding:"omitempty,max=32"`
	GPA                 *float64          `json:"gpa" binding:"omitempty,min=0,max=4"`
	WorkExperienceYears float64           `json:"work_experience_years" binding:"min=0,max=80"`
	Skills              []string          `json:"skills" binding:"omitempty,max=100,dive,min=1,max=100"`
	CompletedCourses    []string          `json:"completed_courses" binding:"omitempty,max=200,dive,min=1,max=200"`
}
