// Package eligibility holds the pure decision logic: requirement normalization,
// course qualification and job match scoring. Nothing here performs I/O.
package eligibility

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var folder = cases.Fold()

// Key returns the comparison key for a subject, skill or course name.
// "  Further   MATHS " and "further maths" share a key; the display name is kept elsewhere.
func Key(name string) string {
	s := norm.NFKC.String(strings.TrimSpace(name))
	s = folder.String(s)
	return strings.Join(strings.Fields(s), " ")
}

// keySet builds a lookup of canonical keys.
func keySet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		if k := Key(n); k != "" {
			set[k] = struct{}{}
		}
	}
	return set
}
