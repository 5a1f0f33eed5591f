package event

import "time"

// Payload is the single shape this subsystem produces. SourceURL is always
// populated; every other field is optional because partial or failed
// extraction is a normal outcome, not an exceptional one.
type Payload struct {
	SourceURL    string         `json:"sourceUrl"`
	CanonicalURL string         `json:"canonicalUrl,omitempty"`
	Title        string         `json:"title,omitempty"`
	Description  string         `json:"description,omitempty"`
	StartsAt     string         `json:"startsAt,omitempty"`
	EndsAt       string         `json:"endsAt,omitempty"`
	City         string         `json:"city,omitempty"`
	State        string         `json:"state,omitempty"`
	Country      string         `json:"country,omitempty"`
	Venue        string         `json:"venue,omitempty"`
	Organizer    string         `json:"organizer,omitempty"`
	Raw          map[string]any `json:"raw,omitempty"`
}

// ISO renders t in the one date-time format the payload carries: UTC with
// millisecond precision. Zero times render as empty so callers can assign
// unconditionally.
func ISO(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

// SetRaw records a diagnostic entry, allocating the bag on first use.
func (p *Payload) SetRaw(key string, value any) {
	if p.Raw == nil {
		p.Raw = make(map[string]any)
	}
	p.Raw[key] = value
}
