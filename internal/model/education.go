package model

import "strings"

// EducationLevel is the highest completed level of education.
type EducationLevel string

const (
	EducationHighSchool EducationLevel = "high_school"
	EducationDiploma    EducationLevel = "diploma"
	EducationBachelors  EducationLevel = "bachelors"
	EducationMasters    EducationLevel = "masters"
	EducationPhD        EducationLevel = "phd"
)

var educationRank = map[EducationLevel]int{
	EducationHighSchool: 1,
	EducationDiploma:    2,
	EducationBachelors:  3,
	EducationMasters:    4,
	EducationPhD:        5,
}

// ParseEducationLevel accepts the canonical values plus spaced/hyphenated variants ("High School").
func ParseEducationLevel(raw string) (EducationLevel, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.NewReplacer(" ", "_", "-", "_", "'", "").Replace(s)
	switch s {
	case "bachelor":
		s = "bachelors"
	case "master":
		s = "masters"
	}
	lvl := EducationLevel(s)
	_, ok := educationRank[lvl]
	return lvl, ok
}

// Rank returns the level's ordinal (1 = high_school), or 0 when unset or unknown.
func (l EducationLevel) Rank() int {
	return educationRank[l]
}

// ExperienceLevel is the seniority band a job is posted for.
type ExperienceLevel string

const (
	ExperienceEntry     ExperienceLevel = "entry"
	ExperienceMid       ExperienceLevel = "mid"
	ExperienceSenior    ExperienceLevel = "senior"
	ExperienceExecutive ExperienceLevel = "executive"
)

// experienceLevelYears is the minimum experience implied by a band when a job gives no explicit years.
var experienceLevelYears = map[ExperienceLevel]float64{
	ExperienceEntry:     0,
	ExperienceMid:       2,
	ExperienceSenior:    5,
	ExperienceExecutive: 8,
}

// ParseExperienceLevel canonicalises a seniority band.
func ParseExperienceLevel(raw string) (ExperienceLevel, bool) {
	lvl := ExperienceLevel(strings.ToLower(strings.TrimSpace(raw)))
	_, ok := experienceLevelYears[lvl]
	return lvl, ok
}

// ImpliedYears returns the minimum years of experience implied by the band.
func (l ExperienceLevel) ImpliedYears() float64 {
	return experienceLevelYears[l]
}
