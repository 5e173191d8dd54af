package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/admissions-backend/internal/model"
)

func backendJob() model.RawJobRequirement {
	return model.RawJobRequirement{
		RequiredEducation:       "bachelors",
		RequiredExperienceYears: "2",
		RequiredSkills:          "Go, SQL",
	}
}

func TestJobSubmit_StoresScoreSnapshot(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	company := uuid.New()
	job := e.job(t, company, backendJob())
	stu := e.student(t, model.UpdateAcademicRecordRequest{
		EducationLevel:      "bachelors",
		WorkExperienceYears: 1,
		Skills:              []string{"go"},
	})

	app, err := e.jobApps.Submit(ctx, stu, job.ID)
	require.NoError(t, err)
	assert.Equal(t, company, app.CompanyID)
	assert.Equal(t, model.JobApplicationStatusPending, app.Status)
	assert.Equal(t, 65, app.MatchScoreSnapshot.Score)
	assert.Equal(t, model.MatchBreakdown{Education: 30, Skills: 20, Experience: 15}, app.MatchScoreSnapshot.Breakdown)

	_, err = e.catalog.UpdateJobRequirements(ctx, company, job.ID, model.RawJobRequirement{RequiredSkills: "Rust"})
	require.NoError(t, err)

	stored, err := e.db.JobApplications().GetByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, 65, stored.MatchScoreSnapshot.Score)
}

func TestJobSubmit_DuplicateAndUnknownJob(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	job := e.job(t, uuid.New(), backendJob())
	stu := uuid.New()

	_, err := e.jobApps.Submit(ctx, stu, job.ID)
	require.NoError(t, err)

	_, err = e.jobApps.Submit(ctx, stu, job.ID)
	assert.ErrorIs(t, err, ErrDuplicateApplication)

	_, err = e.jobApps.Submit(ctx, stu, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJobTransition_HiringFlow(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	company := uuid.New()
	job := e.job(t, company, backendJob())
	app, err := e.jobApps.Submit(ctx, uuid.New(), job.ID)
	require.NoError(t, err)

	_, err = e.jobApps.Transition(ctx, uuid.New(), app.ID, model.JobApplicationStatusShortlisted)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = e.jobApps.Transition(ctx, company, app.ID, model.JobApplicationStatusHired)
	var ist *InvalidStateTransitionError
	require.ErrorAs(t, err, &ist)
	assert.Equal(t, "pending", ist.From)

	out, err := e.jobApps.Transition(ctx, company, app.ID, model.JobApplicationStatusShortlisted)
	require.NoError(t, err)
	assert.Equal(t, model.JobApplicationStatusShortlisted, out.Status)

	out, err = e.jobApps.Transition(ctx, company, app.ID, model.JobApplicationStatusHired)
	require.NoError(t, err)
	assert.Equal(t, model.JobApplicationStatusHired, out.Status)

	_, err = e.jobApps.Transition(ctx, company, app.ID, model.JobApplicationStatusRejected)
	assert.ErrorAs(t, err, &ist, "hired is terminal")
}

func TestJobTransition_RejectedCanReset(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	company := uuid.New()
	app, err := e.jobApps.Submit(ctx, uuid.New(), e.job(t, company, backendJob()).ID)
	require.NoError(t, err)

	_, err = e.jobApps.Transition(ctx, company, app.ID, model.JobApplicationStatusRejected)
	require.NoError(t, err)
	out, err := e.jobApps.Transition(ctx, company, app.ID, model.JobApplicationStatusPending)
	require.NoError(t, err)
	assert.Equal(t, model.JobApplicationStatusPending, out.Status)
}

func TestJobWithdraw(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	company := uuid.New()
	job := e.job(t, company, backendJob())
	stu := uuid.New()

	shortlisted, err := e.jobApps.Submit(ctx, stu, job.ID)
	require.NoError(t, err)
	_, err = e.jobApps.Transition(ctx, company, shortlisted.ID, model.JobApplicationStatusShortlisted)
	require.NoError(t, err)
	assert.ErrorIs(t, e.jobApps.Withdraw(ctx, stu, shortlisted.ID), ErrNotWithdrawable)

	pending, err := e.jobApps.Submit(ctx, stu, e.job(t, company, backendJob()).ID)
	require.NoError(t, err)
	assert.ErrorIs(t, e.jobApps.Withdraw(ctx, uuid.New(), pending.ID), ErrNotFound)
	require.NoError(t, e.jobApps.Withdraw(ctx, stu, pending.ID))

	_, err = e.db.JobApplications().GetByID(ctx, pending.ID)
	assert.Error(t, err)
}
