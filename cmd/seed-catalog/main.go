package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/admissions-backend/internal/cache"
	"github.com/stemsi/admissions-backend/internal/config"
	"github.com/stemsi/admissions-backend/internal/database"
	"github.com/stemsi/admissions-backend/internal/logger"
	"github.com/stemsi/admissions-backend/internal/model"
	"github.com/stemsi/admissions-backend/internal/repository"
	"github.com/stemsi/admissions-backend/internal/service"
)

var courses = []model.CreateCourseRequest{
	{Name: "Computer Science", Requirements: model.RawCourseRequirement{
		MinEducationLevel: "High School", MinGPA: "3.0",
		RequiredSubjects: "Mathematics: B, Physics: C", IntakeCapacity: "40",
	}},
	{Name: "Data Engineering", Requirements: model.RawCourseRequirement{
		MinEducationLevel: "high_school", MinGPA: "3.2",
		RequiredSubjects: "Mathematics - A", Prerequisites: "Computer Science", IntakeCapacity: "25",
	}},
	{Name: "Business Administration", Requirements: model.RawCourseRequirement{
		MinEducationLevel: "High School", MinGPA: "2.5", RequiredSubjects: "English: C",
	}},
	{Name: "Medicine", Requirements: model.RawCourseRequirement{
		MinEducationLevel: "High School", MinGPA: "3.8",
		RequiredSubjects: "Biology: A, Chemistry: A, Physics: B", IntakeCapacity: "10",
	}},
}

var jobs = []model.CreateJobRequest{
	{Title: "Backend Engineer", Requirements: model.RawJobRequirement{
		RequiredEducation: "Bachelors", RequiredExperienceYears: "2", RequiredSkills: "Go, PostgreSQL, Redis",
	}},
	{Title: "Junior Data Analyst", Requirements: model.RawJobRequirement{
		RequiredEducation: "diploma", RequiredSkills: "SQL, Excel", ExperienceLevel: "entry",
	}},
	{Title: "Platform Lead", Requirements: model.RawJobRequirement{
		RequiredEducation: "Masters", RequiredSkills: "Kubernetes, Go, Terraform", ExperienceLevel: "senior",
	}},
}

func gpa(v float64) *float64 { return &v }

var records = []model.UpdateAcademicRecordRequest{
	{
		EducationLevel: "High School", GPA: gpa(3.9),
		SubjectGrades:    map[string]string{"Mathematics": "A", "Physics": "A", "Biology": "A", "Chemistry": "A", "English": "B"},
		CompletedCourses: []string{"Computer Science"},
		Skills:           []string{"Go", "SQL"},
	},
	{
		EducationLevel: "Bachelors", GPA: gpa(3.4), WorkExperienceYears: 3,
		SubjectGrades: map[string]string{"Mathematics": "B", "Physics": "C", "English": "A"},
		Skills:        []string{"Go", "PostgreSQL", "Redis", "Docker"},
	},
	{
		EducationLevel: "High School", GPA: gpa(2.7),
		SubjectGrades: map[string]string{"English": "C", "Mathematics": "D"},
		Skills:        []string{"Excel"},
	},
}

func main() {
	var instFlag, companyFlag string
	flag.StringVar(&instFlag, "institution", "", "Institution ID owning the seeded courses (random when empty)")
	flag.StringVar(&companyFlag, "company", "", "Company ID owning the seeded jobs (random when empty)")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	institutionID := parseOrNew(instFlag)
	companyID := parseOrNew(companyFlag)

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	projections := cache.NewProjectionCache(rdb, cfg.ProjectionCacheTTL)
	catalog := service.NewCatalogService(repository.NewCourseRepository(pool), repository.NewJobRepository(pool), projections, log)
	recordService := service.NewStudentRecordService(repository.NewStudentRecordRepository(pool), log)

	fmt.Printf("=== Seeding catalog for institution %s and company %s ===\n", institutionID, companyID)

	for _, req := range courses {
		c, err := catalog.CreateCourse(ctx, institutionID, req)
		if err != nil {
			fmt.Printf("Error creating course %q: %v\n", req.Name, err)
			continue
		}
		fmt.Printf("Course  %s  %s\n", c.ID, c.Name)
	}

	for _, req := range jobs {
		j, err := catalog.CreateJob(ctx, companyID, req)
		if err != nil {
			fmt.Printf("Error creating job %q: %v\n", req.Title, err)
			continue
		}
		fmt.Printf("Job     %s  %s\n", j.ID, j.Title)
	}

	for _, req := range records {
		rec, err := recordService.Update(ctx, uuid.New(), req)
		if err != nil {
			fmt.Printf("Error creating academic record: %v\n", err)
			continue
		}
		fmt.Printf("Student %s  %s\n", rec.StudentID, rec.EducationLevel)
	}

	fmt.Println("\nSeed completed. Use mint-token with the IDs above to call the API.")
}

func parseOrNew(raw string) uuid.UUID {
	if raw == "" {
		return uuid.New()
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		panic(fmt.Sprintf("invalid UUID %q: %v", raw, err))
	}
	return id
}
