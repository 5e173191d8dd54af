package eligibility

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/admissions-backend/internal/model"
)

// MaxGPA is the top of the GPA scale.
const MaxGPA = 4.0

// splitList splits loosely separated text on commas, semicolons and newlines.
func splitList(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n' || r == '\r'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = displayName(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// displayName trims and collapses inner whitespace, keeping the original casing.
func displayName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// uniqueNames drops later entries whose canonical key was already seen.
func uniqueNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		k := Key(n)
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, displayName(n))
	}
	return out
}

// splitSubjectGrade splits "Mathematics: B", "Mathematics = B" or "Mathematics - B".
func splitSubjectGrade(item string) (string, string, bool) {
	if i := strings.IndexAny(item, ":="); i >= 0 {
		return item[:i], item[i+1:], true
	}
	if i := strings.LastIndex(item, " - "); i >= 0 {
		return item[:i], item[i+3:], true
	}
	return "", "", false
}

func parseGPA(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("must be a number between 0 and %.1f", MaxGPA)
	}
	if v < 0 || v > MaxGPA {
		return nil, fmt.Errorf("must be between 0 and %.1f", MaxGPA)
	}
	return &v, nil
}

// NormalizeCourseRequirement turns an institution's raw requirement text into a typed predicate.
// Empty fields become "no constraint"; malformed ones fail with *ValidationError.
func NormalizeCourseRequirement(raw model.RawCourseRequirement) (model.CourseRequirement, error) {
	var verr ValidationError
	req := model.CourseRequirement{
		RequiredSubjects: []model.SubjectRequirement{},
		Prerequisites:    []string{},
	}

	if s := strings.TrimSpace(raw.MinEducationLevel); s != "" {
		lvl, ok := model.ParseEducationLevel(s)
		if !ok {
			verr.add("min_education_level", fmt.Sprintf("unknown education level %q", s))
		}
		req.MinEducationLevel = lvl
	}

	gpa, err := parseGPA(raw.MinGPA)
	if err != nil {
		verr.add("min_gpa", err.Error())
	}
	req.MinGPA = gpa

	seen := make(map[string]struct{})
	for _, item := range splitList(raw.RequiredSubjects) {
		subject, grade, ok := splitSubjectGrade(item)
		subject = displayName(subject)
		if !ok || subject == "" {
			verr.add("required_subjects", fmt.Sprintf("expected \"subject: grade\", got %q", item))
			continue
		}
		g, ok := model.ParseGrade(grade)
		if !ok {
			verr.add("required_subjects", fmt.Sprintf("unknown grade %q for %s", strings.TrimSpace(grade), subject))
			continue
		}
		k := Key(subject)
		if _, dup := seen[k]; dup {
			verr.add("required_subjects", fmt.Sprintf("subject %s listed more than once", subject))
			continue
		}
		seen[k] = struct{}{}
		req.RequiredSubjects = append(req.RequiredSubjects, model.SubjectRequirement{Subject: subject, MinGrade: g})
	}

	req.Prerequisites = uniqueNames(splitList(raw.Prerequisites))

	switch c := strings.ToLower(strings.TrimSpace(raw.IntakeCapacity)); c {
	case "", "unlimited":
	default:
		n, err := strconv.Atoi(c)
		if err != nil || n <= 0 {
			verr.add("intake_capacity", "must be a positive integer or \"unlimited\"")
			break
		}
		req.IntakeCapacity = &n
	}

	if err := verr.orNil(); err != nil {
		return model.CourseRequirement{}, err
	}
	return req, nil
}

// NormalizeJobRequirement turns a company's raw requirement text into a typed predicate.
// When years are absent but a seniority band is given, the band's implied minimum applies.
func NormalizeJobRequirement(raw model.RawJobRequirement) (model.JobRequirement, error) {
	var verr ValidationError
	req := model.JobRequirement{RequiredSkills: []string{}}

	if s := strings.TrimSpace(raw.RequiredEducation); s != "" {
		lvl, ok := model.ParseEducationLevel(s)
		if !ok {
			verr.add("required_education", fmt.Sprintf("unknown education level %q", s))
		}
		req.RequiredEducation = lvl
	}

	if s := strings.TrimSpace(raw.ExperienceLevel); s != "" {
		lvl, ok := model.ParseExperienceLevel(s)
		if !ok {
			verr.add("experience_level", fmt.Sprintf("unknown experience level %q", s))
		}
		req.ExperienceLevel = lvl
	}

	if s := strings.TrimSpace(raw.RequiredExperienceYears); s != "" {
		years, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(years) || math.IsInf(years, 0) || years < 0 {
			verr.add("required_experience_years", "must be a non-negative number")
		} else {
			req.RequiredExperienceYears = years
		}
	} else {
		req.RequiredExperienceYears = req.ExperienceLevel.ImpliedYears()
	}

	req.RequiredSkills = uniqueNames(splitList(raw.RequiredSkills))

	if err := verr.orNil(); err != nil {
		return model.JobRequirement{}, err
	}
	return req, nil
}

// NormalizeStudentRecord validates a record update against the grade scale and education enum.
func NormalizeStudentRecord(studentID uuid.UUID, in model.UpdateAcademicRecordRequest, now time.Time) (model.StudentRecord, error) {
	var verr ValidationError
	rec := model.StudentRecord{
		StudentID:           studentID,
		SubjectGrades:       make(map[string]model.Grade, len(in.SubjectGrades)),
		GPA:                 in.GPA,
		WorkExperienceYears: in.WorkExperienceYears,
		Skills:              uniqueNames(in.Skills),
		CompletedCourses:    uniqueNames(in.CompletedCourses),
		UpdatedAt:           now,
	}

	seen := make(map[string]string, len(in.SubjectGrades))
	for subject, grade := range in.SubjectGrades {
		name := displayName(subject)
		if name == "" {
			verr.add("subject_grades", "subject name must not be empty")
			continue
		}
		g, ok := model.ParseGrade(grade)
		if !ok {
			verr.add("subject_grades", fmt.Sprintf("unknown grade %q for %s", strings.TrimSpace(grade), name))
			continue
		}
		if prev, dup := seen[Key(name)]; dup {
			verr.add("subject_grades", fmt.Sprintf("subjects %s and %s are the same", prev, name))
			continue
		}
		seen[Key(name)] = name
		rec.SubjectGrades[name] = g
	}

	if s := strings.TrimSpace(in.EducationLevel); s != "" {
		lvl, ok := model.ParseEducationLevel(s)
		if !ok {
			verr.add("education_level", fmt.Sprintf("unknown education level %q", s))
		}
		rec.EducationLevel = lvl
	}

	if in.GPA != nil && (*in.GPA < 0 || *in.GPA > MaxGPA) {
		verr.add("gpa", fmt.Sprintf("must be between 0 and %.1f", MaxGPA))
	}
	if in.WorkExperienceYears < 0 {
		verr.add("work_experience_years", "must not be negative")
	}

	if err := verr.orNil(); err != nil {
		return model.StudentRecord{}, err
	}
	return rec, nil
}
