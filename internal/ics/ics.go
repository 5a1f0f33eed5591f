// Package ics parses iCalendar payloads into a partial event record.
package ics

import (
	"bytes"
	"strings"

	ical "github.com/arran4/golang-ical"

	"github.com/provdir/eventextract/internal/event"
)

// Extract parses body as iCalendar and maps the first VEVENT onto a partial
// payload. Multi-event calendars are not expanded; only the first VEVENT is
// used. Any parse problem yields nil — "no signal", never an error.
func Extract(body []byte, sourceURL string) *event.Payload {
	if len(body) == 0 {
		return nil
	}
	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil
	}
	events := cal.Events()
	if len(events) == 0 {
		return nil
	}
	ve := events[0]

	p := &event.Payload{}
	if v := propValue(ve, ical.ComponentPropertySummary); v != "" {
		p.Title = v
	}
	if v := propValue(ve, ical.ComponentPropertyDescription); v != "" {
		p.Description = unescapeText(v)
	}
	if v := propValue(ve, ical.ComponentPropertyLocation); v != "" {
		p.Venue = unescapeText(v)
	}
	if v := propValue(ve, ical.ComponentPropertyUrl); v != "" {
		p.CanonicalURL = v
	}

	if start, err := ve.GetStartAt(); err == nil {
		p.StartsAt = event.ISO(start)
	} else if start, err := ve.GetAllDayStartAt(); err == nil {
		p.StartsAt = event.ISO(start)
	}
	if end, err := ve.GetEndAt(); err == nil {
		p.EndsAt = event.ISO(end)
	} else if end, err := ve.GetAllDayEndAt(); err == nil {
		p.EndsAt = event.ISO(end)
	}

	if p.Title == "" && p.Description == "" && p.StartsAt == "" {
		return nil
	}
	return p
}

func propValue(ve *ical.VEvent, name ical.ComponentProperty) string {
	if prop := ve.GetProperty(name); prop != nil {
		return strings.TrimSpace(prop.Value)
	}
	return ""
}

// unescapeText undoes RFC 5545 TEXT escaping for the few sequences that show
// up in SUMMARY/DESCRIPTION/LOCATION values.
func unescapeText(s string) string {
	r := strings.NewReplacer(`\n`, "\n", `\N`, "\n", `\,`, ",", `\;`, ";", `\\`, `\`)
	return r.Replace(s)
}
