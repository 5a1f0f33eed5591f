// Package pipeline runs the deterministic extraction chain: fetch, dispatch
// on content type, and merge partial records by fixed field precedence.
package pipeline

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/provdir/eventextract/internal/event"
	"github.com/provdir/eventextract/internal/fetch"
	"github.com/provdir/eventextract/internal/heuristic"
	"github.com/provdir/eventextract/internal/ics"
	"github.com/provdir/eventextract/internal/jsonld"
	"github.com/provdir/eventextract/internal/meta"
)

// Pipeline is the deterministic extraction entry point. It never returns an
// error to the caller; every failure mode collapses into a payload with
// diagnostics under raw.
type Pipeline struct {
	Fetcher   *fetch.Client
	Heuristic *heuristic.Extractor
}

// New wires a pipeline around a shared fetch client.
func New(fetcher *fetch.Client) *Pipeline {
	return &Pipeline{Fetcher: fetcher, Heuristic: &heuristic.Extractor{}}
}

type source int

const (
	srcStructured source = iota
	srcMeta
	srcHeuristic
)

// mergeRules is the full precedence table, one row per payload field with its
// sources in winning order. Adding an extractor or reordering precedence is a
// change to this table only.
var mergeRules = []struct {
	field func(*event.Payload) *string
	order []source
}{
	{func(p *event.Payload) *string { return &p.Title }, []source{srcStructured, srcMeta, srcHeuristic}},
	{func(p *event.Payload) *string { return &p.Description }, []source{srcStructured, srcMeta, srcHeuristic}},
	{func(p *event.Payload) *string { return &p.Organizer }, []source{srcStructured, srcMeta, srcHeuristic}},
	{func(p *event.Payload) *string { return &p.CanonicalURL }, []source{srcStructured, srcMeta, srcHeuristic}},
	{func(p *event.Payload) *string { return &p.StartsAt }, []source{srcStructured, srcHeuristic}},
	{func(p *event.Payload) *string { return &p.EndsAt }, []source{srcStructured, srcHeuristic}},
	{func(p *event.Payload) *string { return &p.City }, []source{srcStructured, srcHeuristic}},
	{func(p *event.Payload) *string { return &p.State }, []source{srcStructured, srcHeuristic}},
	{func(p *event.Payload) *string { return &p.Venue }, []source{srcStructured, srcHeuristic}},
	{func(p *event.Payload) *string { return &p.Country }, []source{srcStructured}},
}

// Extract recovers event metadata from rawURL. The result always carries
// SourceURL; everything else is best effort.
func (pl *Pipeline) Extract(ctx context.Context, rawURL string) event.Payload {
	out := event.Payload{SourceURL: rawURL}

	res, err := pl.Fetcher.Fetch(ctx, rawURL)
	if err != nil {
		log.Warn().Err(err).Str("url", rawURL).Msg("fetch failed")
		out.CanonicalURL = rawURL
		out.SetRaw("error", err.Error())
		return out
	}
	if res.Status >= 400 {
		log.Debug().Int("status", res.Status).Str("url", rawURL).Msg("non-success status; returning minimal payload")
		out.CanonicalURL = res.FinalURL
		out.SetRaw("status", res.Status)
		return out
	}

	if fetch.IsCalendar(res.ContentType) {
		cal := ics.Extract(res.Body, rawURL)
		if cal == nil {
			out.CanonicalURL = res.FinalURL
			out.SetRaw("method", "calendar")
			return out
		}
		copyFields(&out, cal)
		if out.CanonicalURL == "" {
			out.CanonicalURL = res.FinalURL
		}
		out.SetRaw("method", "calendar")
		return out
	}

	heur := pl.Heuristic
	if heur == nil {
		heur = &heuristic.Extractor{}
	}
	partials := map[source]*event.Payload{
		srcStructured: jsonld.Extract(res.Body, res.FinalURL),
		srcMeta:       meta.Extract(res.Body, res.FinalURL),
		srcHeuristic:  heur.Extract(res.Body, res.FinalURL),
	}

	for _, rule := range mergeRules {
		for _, src := range rule.order {
			partial := partials[src]
			if partial == nil {
				continue
			}
			if v := *rule.field(partial); v != "" {
				*rule.field(&out) = v
				break
			}
		}
	}
	if out.CanonicalURL == "" {
		out.CanonicalURL = res.FinalURL
	}

	methods := make([]string, 0, 3)
	if partials[srcStructured] != nil {
		methods = append(methods, "structured")
	}
	if partials[srcMeta] != nil {
		methods = append(methods, "meta")
	}
	methods = append(methods, "heuristic")
	out.SetRaw("methods", methods)

	log.Debug().Str("url", rawURL).Str("title", out.Title).Strs("methods", methods).Msg("extraction complete")
	return out
}

func copyFields(dst *event.Payload, src *event.Payload) {
	dst.CanonicalURL = src.CanonicalURL
	dst.Title = src.Title
	dst.Description = src.Description
	dst.StartsAt = src.StartsAt
	dst.EndsAt = src.EndsAt
	dst.City = src.City
	dst.State = src.State
	dst.Country = src.Country
	dst.Venue = src.Venue
	dst.Organizer = src.Organizer
}
