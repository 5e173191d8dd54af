package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/admissions-backend/internal/model"
)

// CourseRepository handles course catalog data access.
type CourseRepository struct {
	pool *pgxpool.Pool
}

// NewCourseRepository creates a new CourseRepository.
func NewCourseRepository(pool *pgxpool.Pool) *CourseRepository {
	return &CourseRepository{pool: pool}
}

const courseColumns = `id, institution_id, name, requirement, raw_requirement, created_at, updated_at`

func scanCourse(row pgx.Row) (*model.Course, error) {
	c := &model.Course{}
	if err := row.Scan(&c.ID, &c.InstitutionID, &c.Name, &c.Requirement, &c.RawRequirement, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, classify(err)
	}
	return c, nil
}

func collectCourses(rows pgx.Rows, err error) ([]model.Course, error) {
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	courses := []model.Course{}
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, *c)
	}
	return courses, classify(rows.Err())
}

// Create inserts a new course and fills its ID and timestamps.
func (r *CourseRepository) Create(ctx context.Context, c *model.Course) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO courses (institution_id, name, requirement, raw_requirement)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		c.InstitutionID, c.Name, c.Requirement, c.RawRequirement,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return classify(err)
}

// GetByID retrieves a course by ID.
func (r *CourseRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	return scanCourse(r.pool.QueryRow(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE id = $1`, id))
}

// List retrieves the whole active catalog.
func (r *CourseRepository) List(ctx context.Context) ([]model.Course, error) {
	return collectCourses(r.pool.Query(ctx,
		`SELECT `+courseColumns+` FROM courses ORDER BY name ASC, id ASC`))
}

// ListByInstitution retrieves one institution's courses.
func (r *CourseRepository) ListByInstitution(ctx context.Context, institutionID uuid.UUID) ([]model.Course, error) {
	return collectCourses(r.pool.Query(ctx,
		`SELECT `+courseColumns+` FROM courses WHERE institution_id = $1 ORDER BY name ASC, id ASC`, institutionID))
}

// UpdateRequirement replaces the raw and normalized requirement of a course.
func (r *CourseRepository) UpdateRequirement(ctx context.Context, c *model.Course) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE courses
		 SET requirement = $1, raw_requirement = $2, updated_at = $3
		 WHERE id = $4`,
		c.Requirement, c.RawRequirement, c.UpdatedAt, c.ID,
	)
	if err != nil {
		return classify(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
