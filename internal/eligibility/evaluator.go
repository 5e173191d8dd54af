package eligibility

import (
	"fmt"

	"github.com/stemsi/admissions-backend/internal/model"
)

// gpaEpsilon absorbs float noise so that a GPA equal to the minimum qualifies.
const gpaEpsilon = 1e-9

// Verdict is the outcome of evaluating a student against a course.
// Qualified is true exactly when Reasons is empty.
type Verdict struct {
	Qualified bool     `json:"qualified"`
	Reasons   []string `json:"reasons"`
}

// Evaluate checks every constraint of req against the student's record and collects all failures.
// Reasons are ordered: education, GPA, subjects in requirement order, then prerequisites in requirement order.
func Evaluate(student *model.StudentRecord, req model.CourseRequirement) Verdict {
	reasons := []string{}

	if req.MinEducationLevel != "" {
		switch {
		case student.EducationLevel.Rank() == 0:
			reasons = append(reasons, "Missing education level")
		case student.EducationLevel.Rank() < req.MinEducationLevel.Rank():
			reasons = append(reasons, fmt.Sprintf("Education level %s below required %s",
				student.EducationLevel, req.MinEducationLevel))
		}
	}

	if req.MinGPA != nil {
		switch {
		case student.GPA == nil:
			reasons = append(reasons, "Missing GPA")
		case *student.GPA+gpaEpsilon < *req.MinGPA:
			reasons = append(reasons, fmt.Sprintf("GPA %.2f below required minimum %.2f", *student.GPA, *req.MinGPA))
		}
	}

	if len(req.RequiredSubjects) > 0 {
		grades := make(map[string]model.Grade, len(student.SubjectGrades))
		for subject, g := range student.SubjectGrades {
			grades[Key(subject)] = g
		}
		for _, sr := range req.RequiredSubjects {
			g, ok := grades[Key(sr.Subject)]
			switch {
			case !ok:
				reasons = append(reasons, fmt.Sprintf("Missing grade for %s", sr.Subject))
			case g.Rank() == 0:
				reasons = append(reasons, fmt.Sprintf("Unrecognized grade %q for %s", g, sr.Subject))
			case !g.AtLeast(sr.MinGrade):
				reasons = append(reasons, fmt.Sprintf("Grade in %s below required %s", sr.Subject, sr.MinGrade))
			}
		}
	}

	if len(req.Prerequisites) > 0 {
		done := keySet(student.CompletedCourses)
		for _, p := range req.Prerequisites {
			if _, ok := done[Key(p)]; !ok {
				reasons = append(reasons, fmt.Sprintf("Missing prerequisite course %s", p))
			}
		}
	}

	return Verdict{Qualified: len(reasons) == 0, Reasons: reasons}
}
