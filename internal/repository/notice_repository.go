package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/admissions-backend/internal/model"
)

// NoticeRepository is the admission_notices outbox read by the external mailer.
type NoticeRepository struct {
	pool *pgxpool.Pool
}

// NewNoticeRepository creates a new NoticeRepository.
func NewNoticeRepository(pool *pgxpool.Pool) *NoticeRepository {
	return &NoticeRepository{pool: pool}
}

// InsertMany writes a batch of notices in one statement using UNNEST.
func (r *NoticeRepository) InsertMany(ctx context.Context, notices []model.AdmissionNotice) error {
	if len(notices) == 0 {
		return nil
	}

	n := len(notices)
	appIDs := make([]uuid.UUID, n)
	studentIDs := make([]uuid.UUID, n)
	institutionIDs := make([]uuid.UUID, n)
	courseIDs := make([]uuid.UUID, n)
	statuses := make([]string, n)
	batchIDs := make([]*uuid.UUID, n)
	occurredAts := make([]time.Time, n)

	for i, nt := range notices {
		appIDs[i] = nt.ApplicationID
		studentIDs[i] = nt.StudentID
		institutionIDs[i] = nt.InstitutionID
		courseIDs[i] = nt.CourseID
		statuses[i] = string(nt.Status)
		batchIDs[i] = nt.BatchID
		occurredAts[i] = nt.OccurredAt
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO admission_notices
			(application_id, student_id, institution_id, course_id, status, batch_id, occurred_at)
		SELECT u.application_id, u.student_id, u.institution_id, u.course_id, u.status, u.batch_id, u.occurred_at
		FROM UNNEST(
			$1::uuid[],
			$2::uuid[],
			$3::uuid[],
			$4::uuid[],
			$5::text[],
			$6::uuid[],
			$7::timestamptz[]
		) AS u (application_id, student_id, institution_id, course_id, status, batch_id, occurred_at)`,
		appIDs, studentIDs, institutionIDs, courseIDs, statuses, batchIDs, occurredAts,
	)
	return classify(err)
}

// Insert writes a single notice.
func (r *NoticeRepository) Insert(ctx context.Context, nt model.AdmissionNotice) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO admission_notices
		   (application_id, student_id, institution_id, course_id, status, batch_id, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		nt.ApplicationID, nt.StudentID, nt.InstitutionID, nt.CourseID, nt.Status, nt.BatchID, nt.OccurredAt,
	)
	return classify(err)
}

// ListByStudent retrieves a student's most recent notices.
func (r *NoticeRepository) ListByStudent(ctx context.Context, studentID uuid.UUID, limit int) ([]model.AdmissionNotice, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT application_id, student_id, institution_id, course_id, status, batch_id, occurred_at
		 FROM admission_notices
		 WHERE student_id = $1
		 ORDER BY occurred_at DESC
		 LIMIT $2`, studentID, limit)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	notices := []model.AdmissionNotice{}
	for rows.Next() {
		var nt model.AdmissionNotice
		if err := rows.Scan(&nt.ApplicationID, &nt.StudentID, &nt.InstitutionID, &nt.CourseID,
			&nt.Status, &nt.BatchID, &nt.OccurredAt); err != nil {
			return nil, classify(err)
		}
		notices = append(notices, nt)
	}
	return notices, classify(rows.Err())
}
