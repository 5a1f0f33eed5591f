package heuristic

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Free-text date recovery. Month-name dates may omit the year; resolution is
// forward-biased against the reference clock because events are almost always
// upcoming relative to the scrape.

const monthPat = `Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|Jun(?:e)?|Jul(?:y)?|Aug(?:ust)?|Sep(?:t(?:ember)?)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?`

var (
	// "March 1-3, 2026", "March 1 – April 2", "June 5 through June 7, 2026"
	rangeRe = regexp.MustCompile(`(?i)\b(` + monthPat + `)\.?\s+(\d{1,2})(?:st|nd|rd|th)?\s*(?:-|–|—|to|through)\s*(?:(` + monthPat + `)\.?\s+)?(\d{1,2})(?:st|nd|rd|th)?(?:,?\s*(\d{4}))?`)
	// "March 1, 2026", "Sept 3rd"
	singleRe = regexp.MustCompile(`(?i)\b(` + monthPat + `)\.?\s+(\d{1,2})(?:st|nd|rd|th)?(?:,?\s*(\d{4}))?\b`)
	// "2026-03-01", "3/1/2026"
	numericRe = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b|\b\d{1,2}/\d{1,2}/\d{4}\b`)
)

var monthsByPrefix = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

// dates scans text for the first date range, falling back to the first single
// date (used for both endpoints). Times are midnight UTC; the heuristic does
// not attempt clock-time recovery.
func dates(text string, ref time.Time) (start, end time.Time, ok bool) {
	if m := rangeRe.FindStringSubmatch(text); m != nil {
		startMonth := monthFromName(m[1])
		endMonth := startMonth
		if m[3] != "" {
			endMonth = monthFromName(m[3])
		}
		startDay, err1 := strconv.Atoi(m[2])
		endDay, err2 := strconv.Atoi(m[4])
		if startMonth != 0 && endMonth != 0 && err1 == nil && err2 == nil &&
			validDay(startDay) && validDay(endDay) {
			start = resolveDate(startMonth, startDay, m[5], ref)
			end = time.Date(start.Year(), endMonth, endDay, 0, 0, 0, 0, time.UTC)
			if end.Before(start) {
				// "Dec 30 – Jan 2" wraps into the next year.
				end = end.AddDate(1, 0, 0)
			}
			return start, end, true
		}
	}

	if d, ok := firstSingleDate(text, ref); ok {
		return d, d, true
	}
	return time.Time{}, time.Time{}, false
}

// firstSingleDate picks whichever single-date form appears earliest in text.
func firstSingleDate(text string, ref time.Time) (time.Time, bool) {
	nameIdx := singleRe.FindStringSubmatchIndex(text)
	numIdx := numericRe.FindStringIndex(text)

	if nameIdx != nil && (numIdx == nil || nameIdx[0] <= numIdx[0]) {
		m := singleRe.FindStringSubmatch(text[nameIdx[0]:nameIdx[1]])
		month := monthFromName(m[1])
		day, err := strconv.Atoi(m[2])
		if month != 0 && err == nil && validDay(day) {
			return resolveDate(month, day, m[3], ref), true
		}
	}
	if numIdx != nil {
		if t, err := dateparse.ParseIn(text[numIdx[0]:numIdx[1]], time.UTC); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// resolveDate builds a midnight-UTC date. Year-less dates take the reference
// year and roll forward one year when that puts them in the past.
func resolveDate(month time.Month, day int, yearStr string, ref time.Time) time.Time {
	if yearStr != "" {
		year, err := strconv.Atoi(yearStr)
		if err == nil {
			return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
		}
	}
	refDay := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)
	d := time.Date(ref.Year(), month, day, 0, 0, 0, 0, time.UTC)
	if d.Before(refDay) {
		d = d.AddDate(1, 0, 0)
	}
	return d
}

func monthFromName(name string) time.Month {
	name = strings.ToLower(name)
	if len(name) < 3 {
		return 0
	}
	return monthsByPrefix[name[:3]]
}

func validDay(d int) bool {
	return d >= 1 && d <= 31
}
