package model

import (
	"time"

	"github.com/google/uuid"
)

// JobApplicationStatus enumerates the hiring states of a job application.
type JobApplicationStatus string

const (
	JobApplicationStatusPending     JobApplicationStatus = "pending"
	JobApplicationStatusShortlisted JobApplicationStatus = "shortlisted"
	JobApplicationStatusRejected    JobApplicationStatus = "rejected"
	JobApplicationStatusHired       JobApplicationStatus = "hired"
)

// MatchBreakdown is the per-dimension contribution to a match score.
type MatchBreakdown struct {
	Education  int `json:"education"`
	Skills     int `json:"skills"`
	Experience int `json:"experience"`
}

// MatchResult is the scorer output for a student and a job.
type MatchResult struct {
	Score     int            `json:"score"`
	Breakdown MatchBreakdown `json:"breakdown"`
}

// MatchScoreSnapshot is the match result captured when the job application was created.
type MatchScoreSnapshot struct {
	MatchResult
	ScoredAt time.Time `json:"scored_at"`
}

// JobApplication is a student's application to a job.
type JobApplication struct {
	ID                 uuid.UUID            `json:"id"`
	StudentID          uuid.UUID            `json:"student_id"`
	JobID              uuid.UUID            `json:"job_id"`
	CompanyID          uuid.UUID            `json:"company_id"`
	Status             JobApplicationStatus `json:"status"`
	MatchScoreSnapshot MatchScoreSnapshot   `json:"match_score_snapshot"`
	AppliedAt          time.Time            `json:"applied_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
}

// SubmitJobApplicationRequest is the payload a student sends to apply for a job.
type SubmitJobApplicationRequest struct {
	JobID uuid.UUID `json:"job_id" binding:"required"`
}

// UpdateJobApplicationStatusRequest is the payload company staff send to move a job application.
type UpdateJobApplicationStatusRequest struct {
	Status JobApplicationStatus `json:"status" binding:"required,oneof=pending shortlisted rejected hired"`
}
