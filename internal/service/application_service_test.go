package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/admissions-backend/internal/model"
)

func TestSubmit_NotQualifiedCarriesReasons(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	inst := uuid.New()
	course := e.course(t, inst, model.RawCourseRequirement{RequiredSubjects: "Math: B, English: B"})
	stu := e.student(t, model.UpdateAcademicRecordRequest{SubjectGrades: map[string]string{"Math": "B", "English": "C"}})

	_, err := e.apps.Submit(ctx, stu, course.ID)

	var nq *NotQualifiedError
	require.ErrorAs(t, err, &nq)
	assert.Equal(t, []string{"Grade in English below required B"}, nq.Reasons)

	apps, err := e.db.Applications().ListByStudent(ctx, stu)
	require.NoError(t, err)
	assert.Empty(t, apps)
}

func TestSubmit_MissingRecordReportsEveryConstraint(t *testing.T) {
	e := newTestEnv(t)
	course := e.course(t, uuid.New(), model.RawCourseRequirement{MinEducationLevel: "high school", MinGPA: "3.0"})

	_, err := e.apps.Submit(context.Background(), uuid.New(), course.ID)

	var nq *NotQualifiedError
	require.ErrorAs(t, err, &nq)
	assert.Equal(t, []string{"Missing education level", "Missing GPA"}, nq.Reasons)
}

func TestSubmit_UnknownCourse(t *testing.T) {
	e := newTestEnv(t)
	_, err := e.apps.Submit(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubmit_QuotaWithdrawAndResubmit(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	inst := uuid.New()
	c1, c2, c3 := openCourse(t, e, inst), openCourse(t, e, inst), openCourse(t, e, inst)
	stu := uuid.New()

	first := e.submit(t, stu, c1.ID)
	second := e.submit(t, stu, c2.ID)
	e.transition(t, inst, second, model.ApplicationStatusApproved)

	_, err := e.apps.Submit(ctx, stu, c3.ID)
	var qe *QuotaExceededError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, 2, qe.Limit)
	assert.Equal(t, 2, qe.Active)
	assert.Equal(t, inst, qe.InstitutionID)

	require.NoError(t, e.apps.Withdraw(ctx, stu, first.ID))

	third, err := e.apps.Submit(ctx, stu, c3.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationStatusPending, third.Status)
}

func TestSubmit_QuotaIsPerInstitution(t *testing.T) {
	e := newTestEnv(t)
	x, y := uuid.New(), uuid.New()
	stu := uuid.New()

	e.submit(t, stu, openCourse(t, e, x).ID)
	e.submit(t, stu, openCourse(t, e, x).ID)

	app, err := e.apps.Submit(context.Background(), stu, openCourse(t, e, y).ID)
	require.NoError(t, err)
	assert.Equal(t, y, app.InstitutionID)
}

func TestSubmit_RejectedApplicationsFreeTheirSlot(t *testing.T) {
	e := newTestEnv(t)
	inst := uuid.New()
	stu := uuid.New()

	a := e.submit(t, stu, openCourse(t, e, inst).ID)
	e.submit(t, stu, openCourse(t, e, inst).ID)
	e.transition(t, inst, a, model.ApplicationStatusRejected)

	_, err := e.apps.Submit(context.Background(), stu, openCourse(t, e, inst).ID)
	assert.NoError(t, err)
}

func TestSubmit_Duplicate(t *testing.T) {
	e := newTestEnv(t)
	course := openCourse(t, e, uuid.New())
	stu := uuid.New()
	e.submit(t, stu, course.ID)

	_, err := e.apps.Submit(context.Background(), stu, course.ID)
	assert.ErrorIs(t, err, ErrDuplicateApplication)
}

func TestSubmit_ConcurrentAttemptsNeverExceedQuota(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	inst := uuid.New()
	stu := uuid.New()

	const attempts = 12
	courses := make([]*model.Course, attempts)
	for i := range courses {
		courses[i] = openCourse(t, e, inst)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
		other     []error
	)
	for _, c := range courses {
		wg.Add(1)
		go func(courseID uuid.UUID) {
			defer wg.Done()
			_, err := e.apps.Submit(ctx, stu, courseID)

			mu.Lock()
			defer mu.Unlock()
			var qe *QuotaExceededError
			switch {
			case err == nil:
				succeeded++
			case errors.As(err, &qe):
				rejected++
			default:
				other = append(other, err)
			}
		}(c.ID)
	}
	wg.Wait()

	assert.Empty(t, other)
	assert.Equal(t, e.cfg.ApplicationQuota, succeeded)
	assert.Equal(t, attempts-e.cfg.ApplicationQuota, rejected)

	apps, err := e.db.Applications().ListByStudent(ctx, stu)
	require.NoError(t, err)
	assert.Len(t, apps, e.cfg.ApplicationQuota)
}

func TestSubmit_SnapshotSurvivesRequirementChange(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	inst := uuid.New()
	course := e.course(t, inst, model.RawCourseRequirement{MinGPA: "3.0"})
	g := 3.2
	stu := e.student(t, model.UpdateAcademicRecordRequest{GPA: &g})

	app := e.submit(t, stu, course.ID)
	require.True(t, app.QualificationSnapshot.Qualified)

	_, err := e.catalog.UpdateCourseRequirements(ctx, inst, course.ID, model.RawCourseRequirement{MinGPA: "3.8"})
	require.NoError(t, err)

	stored, err := e.db.Applications().GetByID(ctx, app.ID)
	require.NoError(t, err)
	assert.True(t, stored.QualificationSnapshot.Qualified)
	assert.Empty(t, stored.QualificationSnapshot.Reasons)
	assert.Equal(t, app.QualificationSnapshot.EvaluatedAt, stored.QualificationSnapshot.EvaluatedAt)

	listing, err := e.projections.StudentCourses(ctx, stu)
	require.NoError(t, err)
	require.Len(t, listing, 1)
	assert.False(t, listing[0].Qualified)
	assert.Equal(t, []string{"GPA 3.20 below required minimum 3.80"}, listing[0].Reasons)
}

func TestWithdraw_Rules(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	inst := uuid.New()
	stu := uuid.New()

	pending := e.submit(t, stu, openCourse(t, e, inst).ID)
	approved := e.transition(t, inst, e.submit(t, stu, openCourse(t, e, inst).ID), model.ApplicationStatusApproved)

	assert.ErrorIs(t, e.apps.Withdraw(ctx, uuid.New(), pending.ID), ErrNotFound, "another student's application")
	assert.ErrorIs(t, e.apps.Withdraw(ctx, stu, approved.ID), ErrNotWithdrawable)
	assert.ErrorIs(t, e.apps.Withdraw(ctx, stu, uuid.New()), ErrNotFound)

	require.NoError(t, e.apps.Withdraw(ctx, stu, pending.ID))
	_, err := e.db.Applications().GetByID(ctx, pending.ID)
	assert.Error(t, err)
}

func TestOverride_KeepsRealVerdict(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	inst := uuid.New()
	course := e.course(t, inst, model.RawCourseRequirement{RequiredSubjects: "Physics: A"})
	stu := e.student(t, model.UpdateAcademicRecordRequest{SubjectGrades: map[string]string{"Physics": "C"}})

	_, err := e.apps.Override(ctx, uuid.New(), stu, course.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	app, err := e.apps.Override(ctx, inst, stu, course.ID)
	require.NoError(t, err)
	assert.False(t, app.QualificationSnapshot.Qualified)
	assert.True(t, app.QualificationSnapshot.Overridden)
	assert.Equal(t, []string{"Grade in Physics below required A"}, app.QualificationSnapshot.Reasons)

	_, err = e.apps.Override(ctx, inst, stu, course.ID)
	assert.ErrorIs(t, err, ErrDuplicateApplication)
}

func TestOverride_QualifiedStudentIsNotMarkedOverridden(t *testing.T) {
	e := newTestEnv(t)
	inst := uuid.New()
	course := openCourse(t, e, inst)

	app, err := e.apps.Override(context.Background(), inst, uuid.New(), course.ID)
	require.NoError(t, err)
	assert.True(t, app.QualificationSnapshot.Qualified)
	assert.False(t, app.QualificationSnapshot.Overridden)
}
