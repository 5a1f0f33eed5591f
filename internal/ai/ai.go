// Package ai is the alternate, model-backed extraction strategy. It shares
// the pipeline's fetcher and output contract but is never merged with the
// deterministic extractors; callers pick one strategy per request.
package ai

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/provdir/eventextract/internal/event"
	"github.com/provdir/eventextract/internal/fetch"
	"github.com/provdir/eventextract/internal/llm"
)

// DefaultMaxHTMLChars bounds how much page HTML is sent to the model.
const DefaultMaxHTMLChars = 16000

const systemPrompt = "You extract event details from web page HTML. " +
	"Respond with strict JSON only, no prose and no markdown fences."

// Extractor drives one model-backed extraction per call. All failure modes
// collapse into a minimal payload with raw.error; it never returns an error.
type Extractor struct {
	Client  llm.Client
	Model   string
	Fetcher *fetch.Client
	// MaxHTMLChars truncates page HTML before prompting. Zero means default.
	MaxHTMLChars int
}

// aiResult is the fixed schema the model is instructed to fill. Pointers keep
// JSON null distinct from empty.
type aiResult struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	StartsAt     *string `json:"startsAt"`
	EndsAt       *string `json:"endsAt"`
	Venue        *string `json:"venue"`
	City         *string `json:"city"`
	State        *string `json:"state"`
	Country      *string `json:"country"`
	Organizer    *string `json:"organizer"`
	CanonicalURL *string `json:"canonicalUrl"`
}

// Extract fetches rawURL and asks the model for a fixed-schema JSON object.
func (x *Extractor) Extract(ctx context.Context, rawURL string) event.Payload {
	out := event.Payload{SourceURL: rawURL, CanonicalURL: rawURL}
	out.SetRaw("method", "llm")

	if x.Client == nil || strings.TrimSpace(x.Model) == "" {
		out.SetRaw("error", "ai extractor not configured")
		return out
	}

	res, err := x.Fetcher.Fetch(ctx, rawURL)
	if err != nil {
		log.Warn().Err(err).Str("url", rawURL).Msg("ai fetch failed")
		out.SetRaw("error", err.Error())
		return out
	}
	if res.Status >= 400 {
		out.CanonicalURL = res.FinalURL
		out.SetRaw("status", res.Status)
		return out
	}

	max := x.MaxHTMLChars
	if max <= 0 {
		max = DefaultMaxHTMLChars
	}
	page := truncatePreservingRunes(string(res.Body), max)

	req := openai.ChatCompletionRequest{
		Model: x.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildUserMessage(res.FinalURL, page)},
		},
		Temperature: 0.1,
		N:           1,
	}
	resp, err := x.Client.CreateChatCompletion(ctx, req)
	if err != nil {
		// One short retry on a transient model error before giving up.
		sleep(100)
		resp, err = x.Client.CreateChatCompletion(ctx, req)
		if err != nil {
			log.Warn().Err(err).Str("url", rawURL).Msg("ai extraction call failed")
			out.SetRaw("error", err.Error())
			return out
		}
	}
	if len(resp.Choices) == 0 {
		out.SetRaw("error", "model returned no choices")
		return out
	}

	out.SetRaw("model", x.Model)
	out.SetRaw("promptTokens", resp.Usage.PromptTokens)
	out.SetRaw("completionTokens", resp.Usage.CompletionTokens)

	var parsed aiResult
	content := stripFences(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		log.Warn().Err(err).Str("url", rawURL).Msg("ai response was not valid JSON")
		out.SetRaw("error", "parse model response: "+err.Error())
		return out
	}

	out.Title = deref(parsed.Title)
	out.Description = deref(parsed.Description)
	out.StartsAt = deref(parsed.StartsAt)
	out.EndsAt = deref(parsed.EndsAt)
	out.Venue = deref(parsed.Venue)
	out.City = deref(parsed.City)
	out.State = deref(parsed.State)
	out.Country = deref(parsed.Country)
	out.Organizer = deref(parsed.Organizer)
	if c := deref(parsed.CanonicalURL); c != "" {
		out.CanonicalURL = c
	} else {
		out.CanonicalURL = res.FinalURL
	}
	return out
}

func buildUserMessage(pageURL, page string) string {
	var sb strings.Builder
	sb.WriteString("Extract the event described by this page into a JSON object with exactly these keys:\n")
	sb.WriteString(`{"title","description","startsAt","endsAt","venue","city","state","country","organizer","canonicalUrl"}`)
	sb.WriteString("\n\nRules:")
	sb.WriteString("\n- Dates must be ISO-8601 date-time strings in UTC, e.g. 2026-03-01T09:00:00.000Z")
	sb.WriteString("\n- Use null for any field the page does not state")
	sb.WriteString("\n- If the page lists several events, extract only the single most prominent one")
	sb.WriteString("\n- Ignore ancillary or side events (receptions, pre-conference workshops)")
	sb.WriteString("\n- Output only the JSON object")
	sb.WriteString("\n\nPage URL: ")
	sb.WriteString(pageURL)
	sb.WriteString("\n\nPage HTML (may be truncated):\n")
	sb.WriteString(page)
	return sb.String()
}

// stripFences tolerates models that wrap JSON in a markdown code fence despite
// instructions.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

// truncatePreservingRunes returns a prefix of s no longer than max bytes that
// never splits a UTF-8 rune.
func truncatePreservingRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	var idx int
	for i := range s {
		if i > max {
			break
		}
		idx = i
	}
	return s[:idx]
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// sleepFunc lets tests replace the retry backoff with a no-op.
var sleepFunc func(ms int)

func sleep(ms int) {
	if sleepFunc != nil {
		sleepFunc(ms)
		return
	}
	time.Sleep(time.Duration(ms) * time.Millisecond)
}
