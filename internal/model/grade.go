package model

import "strings"

// Grade is a letter grade on the fixed A*..F scale.
type Grade string

const (
	GradeAStar Grade = "A*"
	GradeA     Grade = "A"
	GradeB     Grade = "B"
	GradeC     Grade = "C"
	GradeD     Grade = "D"
	GradeE     Grade = "E"
	GradeF     Grade = "F"
)

// gradeRank orders the scale explicitly; a higher rank is a better grade.
var gradeRank = map[Grade]int{
	GradeAStar: 7,
	GradeA:     6,
	GradeB:     5,
	GradeC:     4,
	GradeD:     3,
	GradeE:     2,
	GradeF:     1,
}

// GradeScale lists the grades from best to worst.
var GradeScale = []Grade{GradeAStar, GradeA, GradeB, GradeC, GradeD, GradeE, GradeF}

// ParseGrade canonicalises user input ("a*", " b ") into a Grade.
func ParseGrade(raw string) (Grade, bool) {
	g := Grade(strings.ToUpper(strings.TrimSpace(raw)))
	_, ok := gradeRank[g]
	return g, ok
}

// Rank returns the grade's position on the scale, or 0 for an unknown grade.
func (g Grade) Rank() int {
	return gradeRank[g]
}

// AtLeast reports whether g is the same as or better than min.
func (g Grade) AtLeast(min Grade) bool {
	r := g.Rank()
	return r > 0 && r >= min.Rank()
}
