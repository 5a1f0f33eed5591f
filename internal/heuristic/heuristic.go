// Package heuristic is the best-effort parser used when a page carries no
// structured signal. It is the lowest-precedence extractor and the only one
// guaranteed to return a result for arbitrary pages, however thin.
package heuristic

import (
	"bytes"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"

	"github.com/provdir/eventextract/internal/event"
)

// minDescriptionChars is the threshold below which a paragraph is considered
// too thin to serve as an event description.
const minDescriptionChars = 50

const maxVenueChars = 120
const maxOrganizerChars = 80

// Extractor holds the reference clock for forward-biased date parsing.
type Extractor struct {
	// Clock supplies "now" for resolving ambiguous dates. Nil means wall
	// clock; tests pin it to keep extraction deterministic.
	Clock func() time.Time
}

// descriptionSelectors are probed in order for the first substantial
// paragraph, preferring content areas over arbitrary page text.
var descriptionSelectors = []string{
	"main p",
	"article p",
	`[class*="description"] p`,
	`[class*="content"] p`,
	`[class*="about"] p`,
	"p",
}

var locationSelectors = []string{
	"address",
	`[class*="venue"]`,
	`[class*="location"]`,
	`[class*="where"]`,
	`[data-venue]`,
	`[data-location]`,
}

var organizerSelectors = []string{
	`[class*="organizer"]`,
	`[class*="host"]`,
	`[class*="sponsor"]`,
	`[class*="presented-by"]`,
	`[data-testid*="organizer"]`,
	`[data-testid*="host"]`,
}

// Extract pulls best-effort fields from input. It never returns nil: every
// field is individually optional, and an unparsable document still yields a
// payload with the canonical-URL fallback.
func (e *Extractor) Extract(input []byte, finalURL string) *event.Payload {
	p := &event.Payload{CanonicalURL: finalURL}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(input))
	if err != nil {
		return p
	}

	if href, ok := doc.Find(`link[rel="canonical"]`).First().Attr("href"); ok && strings.TrimSpace(href) != "" {
		p.CanonicalURL = strings.TrimSpace(href)
	}

	p.Title = cleanText(doc.Find("h1").First().Text())
	if p.Title == "" {
		p.Title = cleanText(doc.Find("title").First().Text())
	}

	p.Description = firstParagraph(doc)

	ref := time.Now()
	if e.Clock != nil {
		ref = e.Clock()
	}
	bodyText := cleanText(doc.Find("body").Text())
	if start, end, ok := dates(bodyText, ref); ok {
		p.StartsAt = event.ISO(start)
		p.EndsAt = event.ISO(end)
	}

	e.extractLocation(doc, bodyText, p)

	for _, sel := range organizerSelectors {
		if text := firstNonEmpty(doc, sel); text != "" && len(text) <= maxOrganizerChars {
			p.Organizer = text
			break
		}
	}

	return p
}

// extractLocation probes venue/location selectors first. The first non-empty
// hit becomes the venue candidate; each hit is also tried as a "City, ST"
// string. When no selector yields a city, the same patterns run over the
// entire page text as a last resort.
func (e *Extractor) extractLocation(doc *goquery.Document, bodyText string, p *event.Payload) {
	for _, sel := range locationSelectors {
		var done bool
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := cleanText(s.Text())
			if text == "" {
				return true
			}
			if p.Venue == "" && len(text) <= maxVenueChars {
				p.Venue = text
			}
			if city, state, ok := cityState(text); ok {
				p.City = city
				p.State = state
				done = true
				return false
			}
			return true
		})
		if done {
			return
		}
	}
	if city, state, ok := cityState(bodyText); ok {
		p.City = city
		p.State = state
	}
}

func firstParagraph(doc *goquery.Document) string {
	for _, sel := range descriptionSelectors {
		var found string
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			text := cleanText(s.Text())
			if len(text) > minDescriptionChars {
				found = text
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
	}
	return ""
}

func firstNonEmpty(doc *goquery.Document, selector string) string {
	var found string
	doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if text := cleanText(s.Text()); text != "" {
			found = text
			return false
		}
		return true
	})
	return found
}

// cleanText NFC-normalizes s and collapses all whitespace runs to single
// spaces so regex matching sees one predictable form.
func cleanText(s string) string {
	s = norm.NFC.String(s)
	return strings.Join(strings.Fields(s), " ")
}
