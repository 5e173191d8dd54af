package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/admissions-backend/internal/model"
)

// ApplicationRepository handles course application and admission batch data access.
type ApplicationRepository struct {
	pool *pgxpool.Pool
}

// NewApplicationRepository creates a new ApplicationRepository.
func NewApplicationRepository(pool *pgxpool.Pool) *ApplicationRepository {
	return &ApplicationRepository{pool: pool}
}

const applicationColumns = `id, student_id, course_id, institution_id, status, qualification_snapshot, applied_at, updated_at`

func scanApplication(row pgx.Row) (*model.Application, error) {
	a := &model.Application{}
	err := row.Scan(&a.ID, &a.StudentID, &a.CourseID, &a.InstitutionID, &a.Status,
		&a.QualificationSnapshot, &a.AppliedAt, &a.UpdatedAt)
	if err != nil {
		return nil, classify(err)
	}
	return a, nil
}

func collectApplications(rows pgx.Rows, err error) ([]model.Application, error) {
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	apps := []model.Application{}
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, *a)
	}
	return apps, classify(rows.Err())
}

// WithTx runs fn in a read-committed transaction. Consistency comes from the explicit
// advisory and row locks the callers take through ApplicationTx: every statement after
// a lock sees the latest committed state, so no snapshot predates the lock wait.
func (r *ApplicationRepository) WithTx(ctx context.Context, fn func(tx ApplicationTx) error) error {
	return withTx(ctx, r.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		return fn(&applicationTx{tx: tx})
	})
}

// GetByID retrieves an application by ID.
func (r *ApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Application, error) {
	return scanApplication(r.pool.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE id = $1`, id))
}

// ListByStudent retrieves a student's applications, newest first.
func (r *ApplicationRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]model.Application, error) {
	return collectApplications(r.pool.Query(ctx,
		`SELECT `+applicationColumns+` FROM applications
		 WHERE student_id = $1
		 ORDER BY applied_at DESC, id ASC`, studentID))
}

// ListByInstitution retrieves an institution's applications with optional filters.
func (r *ApplicationRepository) ListByInstitution(ctx context.Context, institutionID uuid.UUID, f ApplicationFilter) ([]model.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE institution_id = $1`
	args := []any{institutionID}

	if f.Status != nil {
		args = append(args, *f.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if f.CourseID != nil {
		args = append(args, *f.CourseID)
		query += fmt.Sprintf(" AND course_id = $%d", len(args))
	}
	query += ` ORDER BY applied_at ASC, id ASC`

	return collectApplications(r.pool.Query(ctx, query, args...))
}

// ListBatches retrieves an institution's persisted admission batches, newest first.
func (r *ApplicationRepository) ListBatches(ctx context.Context, institutionID uuid.UUID) ([]model.AdmissionBatch, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, institution_id, published_at, affected_application_ids
		 FROM admission_batches
		 WHERE institution_id = $1
		 ORDER BY published_at DESC`, institutionID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	batches := []model.AdmissionBatch{}
	for rows.Next() {
		var b model.AdmissionBatch
		if err := rows.Scan(&b.ID, &b.InstitutionID, &b.PublishedAt, &b.AffectedApplicationIDs); err != nil {
			return nil, classify(err)
		}
		batches = append(batches, b)
	}
	return batches, classify(rows.Err())
}

// applicationTx implements ApplicationTx on a pgx transaction.
type applicationTx struct {
	tx pgx.Tx
}

func (t *applicationTx) LockStudentInstitution(ctx context.Context, studentID, institutionID uuid.UUID) error {
	return advisoryLock(ctx, t.tx, "quota:"+studentID.String()+":"+institutionID.String())
}

func (t *applicationTx) LockCourse(ctx context.Context, courseID uuid.UUID) error {
	return advisoryLock(ctx, t.tx, "course:"+courseID.String())
}

func (t *applicationTx) LockInstitution(ctx context.Context, institutionID uuid.UUID) error {
	return advisoryLock(ctx, t.tx, "publish:"+institutionID.String())
}

func (t *applicationTx) FindByStudentCourse(ctx context.Context, studentID, courseID uuid.UUID) (*model.Application, error) {
	return scanApplication(t.tx.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM applications
		 WHERE student_id = $1 AND course_id = $2`, studentID, courseID))
}

func (t *applicationTx) CountActive(ctx context.Context, studentID, institutionID uuid.UUID) (int, error) {
	var n int
	err := t.tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM applications
		 WHERE student_id = $1 AND institution_id = $2 AND status = ANY($3)`,
		studentID, institutionID, model.ActiveApplicationStatuses,
	).Scan(&n)
	return n, classify(err)
}

func (t *applicationTx) CountSeatsTaken(ctx context.Context, courseID uuid.UUID) (int, error) {
	var n int
	err := t.tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM applications
		 WHERE course_id = $1 AND status IN ('approved', 'admitted')`, courseID,
	).Scan(&n)
	return n, classify(err)
}

func (t *applicationTx) Insert(ctx context.Context, a *model.Application) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO applications
		   (id, student_id, course_id, institution_id, status, qualification_snapshot, applied_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.StudentID, a.CourseID, a.InstitutionID, a.Status, a.QualificationSnapshot, a.AppliedAt, a.UpdatedAt,
	)
	return classify(err)
}

func (t *applicationTx) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Application, error) {
	return scanApplication(t.tx.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE id = $1 FOR UPDATE`, id))
}

func (t *applicationTx) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ApplicationStatus, at time.Time) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE applications SET status = $1, updated_at = $2 WHERE id = $3`, status, at, id)
	if err != nil {
		return classify(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *applicationTx) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM applications WHERE id = $1`, id)
	if err != nil {
		return classify(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *applicationTx) ListApprovedForUpdate(ctx context.Context, institutionID uuid.UUID) ([]model.Application, error) {
	return collectApplications(t.tx.Query(ctx,
		`SELECT `+applicationColumns+` FROM applications
		 WHERE institution_id = $1 AND status = 'approved'
		 ORDER BY applied_at ASC, id ASC
		 FOR UPDATE`, institutionID))
}

func (t *applicationTx) MarkAdmitted(ctx context.Context, ids []uuid.UUID, at time.Time) (int64, error) {
	tag, err := t.tx.Exec(ctx,
		`UPDATE applications
		 SET status = 'admitted', updated_at = $2
		 WHERE id = ANY($1) AND status = 'approved'`, ids, at)
	if err != nil {
		return 0, classify(err)
	}
	return tag.RowsAffected(), nil
}

func (t *applicationTx) InsertBatch(ctx context.Context, b *model.AdmissionBatch) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO admission_batches (id, institution_id, published_at, affected_application_ids)
		 VALUES ($1, $2, $3, $4)`,
		b.ID, b.InstitutionID, b.PublishedAt, b.AffectedApplicationIDs)
	return classify(err)
}
