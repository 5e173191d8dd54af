package eligibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/admissions-backend/internal/model"
)

func newDefaultScorer(t *testing.T) *Scorer {
	t.Helper()
	s, err := NewScorer(DefaultWeights)
	require.NoError(t, err)
	return s
}

func TestNewScorer_RejectsBadWeights(t *testing.T) {
	_, err := NewScorer(Weights{Education: 50, Skills: 40, Experience: 30})
	assert.Error(t, err)

	_, err = NewScorer(Weights{Education: -10, Skills: 80, Experience: 30})
	assert.Error(t, err)
}

func TestScore_PerfectMatch(t *testing.T) {
	s := newDefaultScorer(t)
	stu := &model.StudentRecord{
		EducationLevel:      model.EducationMasters,
		WorkExperienceYears: 6,
		Skills:              []string{"Go", "SQL", "Kubernetes"},
	}
	job := model.JobRequirement{
		RequiredEducation:       model.EducationBachelors,
		RequiredExperienceYears: 5,
		RequiredSkills:          []string{"go", "sql"},
	}

	res := s.Score(stu, job)

	assert.Equal(t, 100, res.Score)
	assert.Equal(t, model.MatchBreakdown{Education: 30, Skills: 40, Experience: 30}, res.Breakdown)
}

func TestScore_PartialCredit(t *testing.T) {
	s := newDefaultScorer(t)
	stu := &model.StudentRecord{
		EducationLevel:      model.EducationDiploma, // rank 2 of masters 4
		WorkExperienceYears: 1,
		Skills:              []string{"Go"},
	}
	job := model.JobRequirement{
		RequiredEducation:       model.EducationMasters,
		RequiredExperienceYears: 4,
		RequiredSkills:          []string{"Go", "SQL", "Docker", "Redis"},
	}

	res := s.Score(stu, job)

	assert.Equal(t, model.MatchBreakdown{Education: 15, Skills: 10, Experience: 8}, res.Breakdown)
	assert.Equal(t, 33, res.Score)
}

func TestScore_ExcessDoesNotOffsetDeficiency(t *testing.T) {
	s := newDefaultScorer(t)
	stu := &model.StudentRecord{EducationLevel: model.EducationPhD, WorkExperienceYears: 40}
	job := model.JobRequirement{
		RequiredEducation:       model.EducationHighSchool,
		RequiredExperienceYears: 1,
		RequiredSkills:          []string{"Go"},
	}

	res := s.Score(stu, job)

	assert.Equal(t, 0, res.Breakdown.Skills)
	assert.Equal(t, 60, res.Score)
}

func TestScore_NoRequirementsGivesFullCredit(t *testing.T) {
	s := newDefaultScorer(t)
	res := s.Score(&model.StudentRecord{}, model.JobRequirement{})
	assert.Equal(t, 100, res.Score)
}

func TestScore_MissingEducationScoresZeroForThatDimension(t *testing.T) {
	s := newDefaultScorer(t)
	res := s.Score(&model.StudentRecord{}, model.JobRequirement{RequiredEducation: model.EducationDiploma})
	assert.Equal(t, 0, res.Breakdown.Education)
	assert.Equal(t, 70, res.Score)
}

func TestScore_Deterministic(t *testing.T) {
	s := newDefaultScorer(t)
	stu := &model.StudentRecord{EducationLevel: model.EducationBachelors, WorkExperienceYears: 2.5, Skills: []string{"c", "b", "a"}}
	job := model.JobRequirement{RequiredEducation: model.EducationMasters, RequiredExperienceYears: 3, RequiredSkills: []string{"a", "d", "c"}}

	first := s.Score(stu, job)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, s.Score(stu, job))
	}
	assert.GreaterOrEqual(t, first.Score, 0)
	assert.LessOrEqual(t, first.Score, 100)
}

func TestScore_CustomWeights(t *testing.T) {
	s, err := NewScorer(Weights{Education: 0, Skills: 100, Experience: 0})
	require.NoError(t, err)
	res := s.Score(&model.StudentRecord{Skills: []string{"a"}}, model.JobRequirement{RequiredSkills: []string{"a", "b", "c"}})
	assert.Equal(t, 33, res.Score)
}
