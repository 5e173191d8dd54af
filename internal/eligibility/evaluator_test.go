package eligibility

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/admissions-backend/internal/model"
)

func gpa(v float64) *float64 { return &v }

func student(grades map[string]model.Grade) *model.StudentRecord {
	return &model.StudentRecord{
		StudentID:      uuid.New(),
		SubjectGrades:  grades,
		EducationLevel: model.EducationHighSchool,
	}
}

func TestEvaluate_GradeBelowRequired(t *testing.T) {
	s := student(map[string]model.Grade{"Math": model.GradeB, "English": model.GradeC})
	req := model.CourseRequirement{RequiredSubjects: []model.SubjectRequirement{
		{Subject: "Math", MinGrade: model.GradeB},
		{Subject: "English", MinGrade: model.GradeB},
	}}

	v := Evaluate(s, req)

	assert.False(t, v.Qualified)
	assert.Equal(t, []string{"Grade in English below required B"}, v.Reasons)
}

func TestEvaluate_MissingGradeIsDistinctFromLowGrade(t *testing.T) {
	s := student(map[string]model.Grade{"Math": model.GradeD})
	req := model.CourseRequirement{RequiredSubjects: []model.SubjectRequirement{
		{Subject: "Math", MinGrade: model.GradeC},
		{Subject: "Physics", MinGrade: model.GradeC},
	}}

	v := Evaluate(s, req)

	assert.Equal(t, []string{
		"Grade in Math below required C",
		"Missing grade for Physics",
	}, v.Reasons)
}

func TestEvaluate_GPABoundary(t *testing.T) {
	req := model.CourseRequirement{MinGPA: gpa(3.5)}

	tests := []struct {
		name      string
		gpa       *float64
		qualified bool
		reasons   []string
	}{
		{"equal qualifies", gpa(3.5), true, []string{}},
		{"just below fails", gpa(3.49), false, []string{"GPA 3.49 below required minimum 3.50"}},
		{"above qualifies", gpa(3.9), true, []string{}},
		{"missing fails", nil, false, []string{"Missing GPA"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := student(nil)
			s.GPA = tt.gpa
			v := Evaluate(s, req)
			assert.Equal(t, tt.qualified, v.Qualified)
			assert.Equal(t, tt.reasons, v.Reasons)
		})
	}
}

func TestEvaluate_GPAFloatNoise(t *testing.T) {
	s := student(nil)
	hi, lo := 0.7, 0.4
	s.GPA = gpa(hi - lo) // 0.29999999999999993
	v := Evaluate(s, model.CourseRequirement{MinGPA: gpa(0.3)})
	assert.True(t, v.Qualified)
}

func TestEvaluate_CollectsEveryFailureInOrder(t *testing.T) {
	s := &model.StudentRecord{
		SubjectGrades:    map[string]model.Grade{"biology": model.GradeE},
		EducationLevel:   model.EducationHighSchool,
		GPA:              gpa(2.0),
		CompletedCourses: []string{"Intro to Chemistry"},
	}
	req := model.CourseRequirement{
		MinEducationLevel: model.EducationDiploma,
		MinGPA:            gpa(3.0),
		RequiredSubjects:  []model.SubjectRequirement{{Subject: "Biology", MinGrade: model.GradeC}},
		Prerequisites:     []string{"intro to chemistry", "Lab Safety"},
	}

	v := Evaluate(s, req)

	require.False(t, v.Qualified)
	assert.Equal(t, []string{
		"Education level high_school below required diploma",
		"GPA 2.00 below required minimum 3.00",
		"Grade in Biology below required C",
		"Missing prerequisite course Lab Safety",
	}, v.Reasons)
}

func TestEvaluate_MissingEducationLevel(t *testing.T) {
	s := &model.StudentRecord{}
	v := Evaluate(s, model.CourseRequirement{MinEducationLevel: model.EducationHighSchool})
	assert.Equal(t, []string{"Missing education level"}, v.Reasons)
}

func TestEvaluate_UnconstrainedRequirementQualifiesAnyone(t *testing.T) {
	v := Evaluate(&model.StudentRecord{}, model.CourseRequirement{})
	assert.True(t, v.Qualified)
	assert.Empty(t, v.Reasons)
}

func TestEvaluate_SubjectNamesMatchCaseAndSpacingInsensitively(t *testing.T) {
	s := student(map[string]model.Grade{"  further   MATHS ": model.GradeA})
	req := model.CourseRequirement{RequiredSubjects: []model.SubjectRequirement{{Subject: "Further Maths", MinGrade: model.GradeB}}}
	assert.True(t, Evaluate(s, req).Qualified)
}

func TestEvaluate_QualifiedIffNoReasons(t *testing.T) {
	levels := []model.EducationLevel{"", model.EducationHighSchool, model.EducationBachelors, model.EducationPhD}
	grades := []model.Grade{model.GradeAStar, model.GradeB, model.GradeF}
	gpas := []*float64{nil, gpa(2.0), gpa(3.5), gpa(4.0)}

	req := model.CourseRequirement{
		MinEducationLevel: model.EducationBachelors,
		MinGPA:            gpa(3.0),
		RequiredSubjects:  []model.SubjectRequirement{{Subject: "Math", MinGrade: model.GradeB}},
	}
	for _, lvl := range levels {
		for _, g := range grades {
			for _, p := range gpas {
				s := &model.StudentRecord{EducationLevel: lvl, GPA: p, SubjectGrades: map[string]model.Grade{"Math": g}}
				v := Evaluate(s, req)
				assert.Equal(t, len(v.Reasons) == 0, v.Qualified, "level=%s grade=%s", lvl, g)
			}
		}
	}
}

func TestGradeOrderIsExplicit(t *testing.T) {
	for i := 0; i < len(model.GradeScale)-1; i++ {
		better, worse := model.GradeScale[i], model.GradeScale[i+1]
		assert.True(t, better.AtLeast(worse), "%s >= %s", better, worse)
		assert.False(t, worse.AtLeast(better), "%s < %s", worse, better)
	}
	assert.True(t, model.GradeAStar.AtLeast(model.GradeA))
}
