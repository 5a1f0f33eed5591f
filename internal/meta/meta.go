// Package meta reads Open Graph, Twitter, and canonical-link metadata.
package meta

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/provdir/eventextract/internal/event"
)

// Extract reads social/preview metadata as a partial payload. It never
// supplies dates or location; those belong to the heuristic extractor.
// Returns nil when neither a title nor a description can be found, since a
// partial without either carries no signal worth merging.
func Extract(input []byte, pageURL string) *event.Payload {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(input))
	if err != nil {
		return nil
	}

	title := metaContent(doc, "property", "og:title")
	if title == "" {
		title = metaContent(doc, "name", "twitter:title")
	}
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	desc := metaContent(doc, "property", "og:description")
	if desc == "" {
		desc = metaContent(doc, "name", "twitter:description")
	}
	if desc == "" {
		desc = metaContent(doc, "name", "description")
	}

	if title == "" && desc == "" {
		return nil
	}

	p := &event.Payload{Title: title, Description: desc}

	// og:site_name is a weak organizer signal; structured data wins over it.
	p.Organizer = metaContent(doc, "property", "og:site_name")

	if href, ok := doc.Find(`link[rel="canonical"]`).First().Attr("href"); ok && strings.TrimSpace(href) != "" {
		p.CanonicalURL = strings.TrimSpace(href)
	} else if og := metaContent(doc, "property", "og:url"); og != "" {
		p.CanonicalURL = og
	} else {
		p.CanonicalURL = pageURL
	}
	return p
}

func metaContent(doc *goquery.Document, attr, value string) string {
	sel := doc.Find(`meta[` + attr + `="` + value + `"]`).First()
	if content, ok := sel.Attr("content"); ok {
		return strings.TrimSpace(content)
	}
	return ""
}
