package ics

import "testing"

const sampleICS = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//test//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:evt-1@example.com\r\n" +
	"SUMMARY:Annual Conference\r\n" +
	"DESCRIPTION:Two days of talks\\, workshops\\, and networking.\r\n" +
	"DTSTART:20260601T090000Z\r\n" +
	"DTEND:20260602T170000Z\r\n" +
	"LOCATION:Grand Ballroom\r\n" +
	"URL:https://example.com/conf\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func TestExtract_MapsFirstVEvent(t *testing.T) {
	p := Extract([]byte(sampleICS), "https://example.com/conf.ics")
	if p == nil {
		t.Fatalf("expected a payload")
	}
	if p.Title != "Annual Conference" {
		t.Fatalf("title = %q", p.Title)
	}
	if p.Description != "Two days of talks, workshops, and networking." {
		t.Fatalf("description = %q", p.Description)
	}
	if p.StartsAt != "2026-06-01T09:00:00.000Z" {
		t.Fatalf("startsAt = %q", p.StartsAt)
	}
	if p.EndsAt != "2026-06-02T17:00:00.000Z" {
		t.Fatalf("endsAt = %q", p.EndsAt)
	}
	if p.Venue != "Grand Ballroom" {
		t.Fatalf("venue = %q", p.Venue)
	}
	if p.CanonicalURL != "https://example.com/conf" {
		t.Fatalf("canonicalUrl = %q", p.CanonicalURL)
	}
}

func TestExtract_FirstOfManyOnly(t *testing.T) {
	multi := "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//test//EN\r\n" +
		"BEGIN:VEVENT\r\nUID:a\r\nSUMMARY:First\r\nDTSTART:20260101T100000Z\r\nEND:VEVENT\r\n" +
		"BEGIN:VEVENT\r\nUID:b\r\nSUMMARY:Second\r\nDTSTART:20260201T100000Z\r\nEND:VEVENT\r\n" +
		"END:VCALENDAR\r\n"
	p := Extract([]byte(multi), "https://example.com/multi.ics")
	if p == nil || p.Title != "First" {
		t.Fatalf("expected first VEVENT only, got %+v", p)
	}
}

func TestExtract_MalformedYieldsNil(t *testing.T) {
	if p := Extract([]byte("not a calendar at all"), "https://example.com/x"); p != nil {
		t.Fatalf("expected nil for malformed input, got %+v", p)
	}
	if p := Extract(nil, "https://example.com/x"); p != nil {
		t.Fatalf("expected nil for empty input, got %+v", p)
	}
}

func TestExtract_NoEventsYieldsNil(t *testing.T) {
	empty := "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//test//EN\r\nEND:VCALENDAR\r\n"
	if p := Extract([]byte(empty), "https://example.com/x"); p != nil {
		t.Fatalf("expected nil for event-free calendar, got %+v", p)
	}
}
