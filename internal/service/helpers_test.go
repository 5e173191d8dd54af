package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/admissions-backend/internal/cache"
	"github.com/stemsi/admissions-backend/internal/config"
	"github.com/stemsi/admissions-backend/internal/eligibility"
	"github.com/stemsi/admissions-backend/internal/model"
	"github.com/stemsi/admissions-backend/internal/repository/memory"
)

type fakeQueue struct {
	mu      sync.Mutex
	notices []model.AdmissionNotice
	err     error
}

func (q *fakeQueue) Enqueue(_ context.Context, notices []model.AdmissionNotice) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.notices = append(q.notices, notices...)
	return nil
}

func (q *fakeQueue) batched() []model.AdmissionNotice {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []model.AdmissionNotice
	for _, n := range q.notices {
		if n.BatchID != nil {
			out = append(out, n)
		}
	}
	return out
}

// tickingClock returns strictly increasing instants so record versions always move.
func tickingClock() func() time.Time {
	var n atomic.Int64
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	return func() time.Time {
		return base.Add(time.Duration(n.Add(1)) * time.Millisecond)
	}
}

type testEnv struct {
	db    *memory.DB
	cache *cache.Local
	queue *fakeQueue
	cfg   *config.Config

	records     *StudentRecordService
	catalog     *CatalogService
	apps        *ApplicationService
	admissions  *AdmissionService
	jobApps     *JobApplicationService
	projections *ProjectionService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := memory.New()
	local := cache.NewLocal()
	queue := &fakeQueue{}
	cfg := &config.Config{ApplicationQuota: 2, TxMaxAttempts: 3}
	log := zerolog.Nop()

	scorer, err := eligibility.NewScorer(eligibility.DefaultWeights)
	require.NoError(t, err)

	records := NewStudentRecordService(db.StudentRecords(), log)
	records.now = tickingClock()

	return &testEnv{
		db:          db,
		cache:       local,
		queue:       queue,
		cfg:         cfg,
		records:     records,
		catalog:     NewCatalogService(db.Courses(), db.Jobs(), local, log),
		apps:        NewApplicationService(db.Applications(), db.Courses(), db.StudentRecords(), local, cfg, log),
		admissions:  NewAdmissionService(db.Applications(), db.Courses(), local, queue, cfg, log),
		jobApps:     NewJobApplicationService(db.JobApplications(), db.Jobs(), db.StudentRecords(), scorer, local, cfg, log),
		projections: NewProjectionService(db.Courses(), db.Jobs(), db.StudentRecords(), db.Applications(), db.JobApplications(), scorer, local, log),
	}
}

func (e *testEnv) course(t *testing.T, institutionID uuid.UUID, raw model.RawCourseRequirement) *model.Course {
	t.Helper()
	c, err := e.catalog.CreateCourse(context.Background(), institutionID, model.CreateCourseRequest{
		Name:         "Course " + uuid.NewString()[:8],
		Requirements: raw,
	})
	require.NoError(t, err)
	return c
}

func (e *testEnv) job(t *testing.T, companyID uuid.UUID, raw model.RawJobRequirement) *model.Job {
	t.Helper()
	j, err := e.catalog.CreateJob(context.Background(), companyID, model.CreateJobRequest{
		Title:        "Job " + uuid.NewString()[:8],
		Requirements: raw,
	})
	require.NoError(t, err)
	return j
}

func (e *testEnv) student(t *testing.T, req model.UpdateAcademicRecordRequest) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := e.records.Update(context.Background(), id, req)
	require.NoError(t, err)
	return id
}

func (e *testEnv) submit(t *testing.T, studentID, courseID uuid.UUID) *model.Application {
	t.Helper()
	app, err := e.apps.Submit(context.Background(), studentID, courseID)
	require.NoError(t, err)
	return app
}

func (e *testEnv) transition(t *testing.T, institutionID uuid.UUID, app *model.Application, to model.ApplicationStatus) *model.Application {
	t.Helper()
	out, err := e.admissions.Transition(context.Background(), institutionID, app.ID, to)
	require.NoError(t, err)
	return out
}

func openCourse(t *testing.T, e *testEnv, institutionID uuid.UUID) *model.Course {
	t.Helper()
	return e.course(t, institutionID, model.RawCourseRequirement{})
}
