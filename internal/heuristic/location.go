package heuristic

import (
	"regexp"
	"strings"
)

// US-convention location matching. International addresses intentionally fall
// through to absent fields for the review workflow to fill; widening these
// patterns without a locale model raises the false-positive rate.

var cityStatePatterns = []*regexp.Regexp{
	// "Austin, TX" / "Austin, TX 78701"
	regexp.MustCompile(`([A-Z][A-Za-z.'-]*(?:\s+[A-Z][A-Za-z.'-]*){0,3}),\s*([A-Z]{2})\b(?:\s+\d{5}(?:-\d{4})?)?`),
	// "Austin TX" / "Austin TX 78701"
	regexp.MustCompile(`([A-Z][A-Za-z.'-]*(?:\s+[A-Z][A-Za-z.'-]*){0,3})\s+([A-Z]{2})\b(?:\s+\d{5}(?:-\d{4})?)?`),
}

// noiseWords mark venue names masquerading as cities ("San Francisco
// Convention Center" must not become a city).
var noiseWords = []string{
	"hotel", "convention", "center", "centre", "conference", "expo",
	"arena", "stadium", "theater", "theatre", "hall", "auditorium",
	"university", "college", "campus", "plaza", "resort", "ballroom",
	"suite", "room", "floor", "street", "avenue", "boulevard", "blvd",
	"building", "pavilion",
}

var usStates = map[string]struct{}{
	"AL": {}, "AK": {}, "AZ": {}, "AR": {}, "CA": {}, "CO": {}, "CT": {},
	"DE": {}, "DC": {}, "FL": {}, "GA": {}, "HI": {}, "ID": {}, "IL": {},
	"IN": {}, "IA": {}, "KS": {}, "KY": {}, "LA": {}, "ME": {}, "MD": {},
	"MA": {}, "MI": {}, "MN": {}, "MS": {}, "MO": {}, "MT": {}, "NE": {},
	"NV": {}, "NH": {}, "NJ": {}, "NM": {}, "NY": {}, "NC": {}, "ND": {},
	"OH": {}, "OK": {}, "OR": {}, "PA": {}, "RI": {}, "SC": {}, "SD": {},
	"TN": {}, "TX": {}, "UT": {}, "VT": {}, "VA": {}, "WA": {}, "WV": {},
	"WI": {}, "WY": {},
}

// cityState scans text for the first valid-looking "City, ST" occurrence.
// Candidates whose city portion carries a venue noise word are rejected and
// scanning continues.
func cityState(text string) (city, state string, ok bool) {
	for _, pattern := range cityStatePatterns {
		for _, m := range pattern.FindAllStringSubmatch(text, -1) {
			c, s := strings.TrimSpace(m[1]), m[2]
			if _, valid := usStates[s]; !valid {
				continue
			}
			if hasNoiseWord(c) {
				continue
			}
			return c, s, true
		}
	}
	return "", "", false
}

func hasNoiseWord(candidate string) bool {
	lower := strings.ToLower(candidate)
	for _, w := range noiseWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}
