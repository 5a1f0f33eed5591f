// Package jsonld extracts schema.org Event structured data embedded in HTML.
package jsonld

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"golang.org/x/net/html"

	"github.com/provdir/eventextract/internal/event"
)

// Extract scans every application/ld+json script block in input and maps the
// first schema.org node whose @type contains "event" onto a partial payload.
// Malformed blocks are skipped silently; no match yields nil. This is the
// highest-precedence extractor in the pipeline.
func Extract(input []byte, pageURL string) *event.Payload {
	node, err := html.Parse(bytes.NewReader(input))
	if err != nil || node == nil {
		return nil
	}
	for _, block := range scriptBlocks(node) {
		for _, candidate := range flatten(block) {
			if !isEventNode(candidate) {
				continue
			}
			return mapEvent(candidate, pageURL)
		}
	}
	return nil
}

// scriptBlocks returns the text content of every JSON-LD script element.
func scriptBlocks(root *html.Node) []string {
	var blocks []string
	var dfs func(*html.Node)
	dfs = func(n *html.Node) {
		if n.Type == html.ElementNode && strings.EqualFold(n.Data, "script") {
			for _, attr := range n.Attr {
				if strings.EqualFold(attr.Key, "type") && strings.EqualFold(strings.TrimSpace(attr.Val), "application/ld+json") {
					if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
						blocks = append(blocks, n.FirstChild.Data)
					}
					break
				}
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			dfs(c)
		}
	}
	dfs(root)
	return blocks
}

// flatten decodes one JSON-LD block into candidate nodes, tolerating a single
// object, a top-level array, and objects nested under @graph.
func flatten(block string) []map[string]any {
	var raw any
	if err := json.Unmarshal([]byte(block), &raw); err != nil {
		return nil
	}
	var out []map[string]any
	var add func(v any)
	add = func(v any) {
		switch t := v.(type) {
		case map[string]any:
			out = append(out, t)
			if graph, ok := t["@graph"]; ok {
				add(graph)
			}
		case []any:
			for _, item := range t {
				add(item)
			}
		}
	}
	add(raw)
	return out
}

func isEventNode(node map[string]any) bool {
	switch t := node["@type"].(type) {
	case string:
		return strings.Contains(strings.ToLower(t), "event")
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && strings.Contains(strings.ToLower(s), "event") {
				return true
			}
		}
	}
	return false
}

func mapEvent(node map[string]any, pageURL string) *event.Payload {
	p := &event.Payload{
		Title:       str(node["name"]),
		Description: str(node["description"]),
		StartsAt:    isoDate(str(node["startDate"])),
		EndsAt:      isoDate(str(node["endDate"])),
	}

	if loc, ok := node["location"].(map[string]any); ok {
		p.Venue = str(loc["name"])
		if addr, ok := loc["address"].(map[string]any); ok {
			p.City = str(addr["addressLocality"])
			p.State = str(addr["addressRegion"])
			p.Country = str(addr["addressCountry"])
		}
	}

	switch org := node["organizer"].(type) {
	case map[string]any:
		p.Organizer = str(org["name"])
	case string:
		p.Organizer = strings.TrimSpace(org)
	}

	p.CanonicalURL = str(node["url"])
	if p.CanonicalURL == "" {
		p.CanonicalURL = refURL(node["mainEntityOfPage"])
	}
	if p.CanonicalURL == "" {
		p.CanonicalURL = pageURL
	}
	return p
}

// refURL pulls a URL out of a value that may be a bare string or a node with
// @id/url, the two forms mainEntityOfPage takes in the wild.
func refURL(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case map[string]any:
		if s := str(t["@id"]); s != "" {
			return s
		}
		return str(t["url"])
	}
	return ""
}

func str(v any) string {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// isoDate normalizes a schema.org date or date-time string to the payload's
// canonical ISO form. Unparseable values are dropped rather than passed through,
// so the payload never carries an ambiguous date.
func isoDate(s string) string {
	if s == "" {
		return ""
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return ""
	}
	return event.ISO(t)
}
