package model

// CourseListing is a course annotated with the student's current qualification verdict.
type CourseListing struct {
	Course
	Qualified bool     `json:"qualified"`
	Reasons   []string `json:"reasons"`
}

// JobListing is a job annotated with the student's current match score.
type JobListing struct {
	Job
	Match MatchResult `json:"match"`
}

// StudentAdmissions is a student's view of every application they hold, with stored snapshots.
type StudentAdmissions struct {
	Applications    []Application    `json:"applications"`
	JobApplications []JobApplication `json:"job_applications"`
}

// ApplicationListQuery filters and pages an institution's applications.
type ApplicationListQuery struct {
	Status   string `form:"status" binding:"omitempty,oneof=pending approved rejected admitted"`
	CourseID string `form:"course_id" binding:"omitempty,uuid"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PerPage  int    `form:"per_page" binding:"omitempty,min=1,max=100"`
}

// JobApplicationListQuery filters a company's job applications.
type JobApplicationListQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=pending shortlisted rejected hired"`
}
