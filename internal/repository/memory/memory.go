// Package memory provides in-process implementations of the repository stores.
// One mutex guards every table; ApplicationStore transactions work on a copy that
// replaces the live tables only on commit.
package memory

import (
	"sync"

	"github.com/google/uuid"
	"github.com/stemsi/admissions-backend/internal/model"
)

// DB is a process-local database shared by the memory stores.
type DB struct {
	mu sync.Mutex

	records      map[uuid.UUID]model.StudentRecord
	courses      map[uuid.UUID]model.Course
	jobs         map[uuid.UUID]model.Job
	applications map[uuid.UUID]model.Application
	batches      []model.AdmissionBatch
	jobApps      map[uuid.UUID]model.JobApplication
	notices      []model.AdmissionNotice
}

// New returns an empty DB.
func New() *DB {
	return &DB{
		records:      make(map[uuid.UUID]model.StudentRecord),
		courses:      make(map[uuid.UUID]model.Course),
		jobs:         make(map[uuid.UUID]model.Job),
		applications: make(map[uuid.UUID]model.Application),
		jobApps:      make(map[uuid.UUID]model.JobApplication),
	}
}

// StudentRecords returns the student record store.
func (db *DB) StudentRecords() *StudentRecordStore { return &StudentRecordStore{db: db} }

// Courses returns the course store.
func (db *DB) Courses() *CourseStore { return &CourseStore{db: db} }

// Jobs returns the job store.
func (db *DB) Jobs() *JobStore { return &JobStore{db: db} }

// Applications returns the application store.
func (db *DB) Applications() *ApplicationStore { return &ApplicationStore{db: db} }

// JobApplications returns the job application store.
func (db *DB) JobApplications() *JobApplicationStore { return &JobApplicationStore{db: db} }

// Notices returns the notice outbox store.
func (db *DB) Notices() *NoticeStore { return &NoticeStore{db: db} }

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}

func cloneIDs(s []uuid.UUID) []uuid.UUID {
	if s == nil {
		return nil
	}
	return append([]uuid.UUID(nil), s...)
}

func cloneRecord(r model.StudentRecord) model.StudentRecord {
	grades := make(map[string]model.Grade, len(r.SubjectGrades))
	for k, v := range r.SubjectGrades {
		grades[k] = v
	}
	r.SubjectGrades = grades
	if r.GPA != nil {
		v := *r.GPA
		r.GPA = &v
	}
	r.Skills = cloneStrings(r.Skills)
	r.CompletedCourses = cloneStrings(r.CompletedCourses)
	return r
}

func cloneCourse(c model.Course) model.Course {
	req := c.Requirement
	req.RequiredSubjects = append([]model.SubjectRequirement(nil), req.RequiredSubjects...)
	req.Prerequisites = cloneStrings(req.Prerequisites)
	if req.MinGPA != nil {
		v := *req.MinGPA
		req.MinGPA = &v
	}
	if req.IntakeCapacity != nil {
		v := *req.IntakeCapacity
		req.IntakeCapacity = &v
	}
	c.Requirement = req
	return c
}

func cloneJob(j model.Job) model.Job {
	j.Requirement.RequiredSkills = cloneStrings(j.Requirement.RequiredSkills)
	return j
}

func cloneApplication(a model.Application) model.Application {
	a.QualificationSnapshot.Reasons = cloneStrings(a.QualificationSnapshot.Reasons)
	return a
}

func cloneBatch(b model.AdmissionBatch) model.AdmissionBatch {
	b.AffectedApplicationIDs = cloneIDs(b.AffectedApplicationIDs)
	return b
}
