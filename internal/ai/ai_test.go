package ai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/provdir/eventextract/internal/fetch"
)

type fakeClient struct {
	responses []string
	errs      []error
	calls     int
	lastReq   openai.ChatCompletionRequest
}

func (f *fakeClient) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	i := f.calls
	f.calls++
	f.lastReq = req
	if i < len(f.errs) && f.errs[i] != nil {
		return openai.ChatCompletionResponse{}, f.errs[i]
	}
	content := ""
	if i < len(f.responses) {
		content = f.responses[i]
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: content}}},
		Usage:   openai.Usage{PromptTokens: 120, CompletionTokens: 40},
	}, nil
}

func pageServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(body))
	}))
}

func testExtractor(client *fakeClient) *Extractor {
	return &Extractor{
		Client:  client,
		Model:   "test-model",
		Fetcher: &fetch.Client{Timeout: 2 * time.Second},
	}
}

func TestExtract_ParsesModelJSON(t *testing.T) {
	srv := pageServer(t, "<html><body>Summit page</body></html>")
	defer srv.Close()

	client := &fakeClient{responses: []string{
		`{"title":"Tax Summit 2026","description":"Premier summit.","startsAt":"2026-03-01T09:00:00.000Z",` +
			`"endsAt":null,"venue":"Expo Hall","city":"San Diego","state":"CA","country":"US",` +
			`"organizer":"Summit Partners","canonicalUrl":"https://summit.example.com"}`,
	}}
	out := testExtractor(client).Extract(context.Background(), srv.URL)
	if out.Title != "Tax Summit 2026" || out.City != "San Diego" {
		t.Fatalf("unexpected payload: %+v", out)
	}
	if out.EndsAt != "" {
		t.Fatalf("null field must stay empty, got %q", out.EndsAt)
	}
	if out.CanonicalURL != "https://summit.example.com" {
		t.Fatalf("canonicalUrl = %q", out.CanonicalURL)
	}
	if out.Raw["promptTokens"] != 120 || out.Raw["completionTokens"] != 40 {
		t.Fatalf("token accounting missing: %+v", out.Raw)
	}
}

func TestExtract_ToleratesFencedJSON(t *testing.T) {
	srv := pageServer(t, "<html><body>x</body></html>")
	defer srv.Close()

	client := &fakeClient{responses: []string{"```json\n{\"title\":\"Fenced\"}\n```"}}
	out := testExtractor(client).Extract(context.Background(), srv.URL)
	if out.Title != "Fenced" {
		t.Fatalf("title = %q", out.Title)
	}
}

func TestExtract_GarbageResponseBecomesMinimalPayload(t *testing.T) {
	srv := pageServer(t, "<html><body>x</body></html>")
	defer srv.Close()

	client := &fakeClient{responses: []string{"Sure! The event looks like a conference."}}
	out := testExtractor(client).Extract(context.Background(), srv.URL)
	if out.Title != "" {
		t.Fatalf("expected no fields, got %+v", out)
	}
	if out.SourceURL != srv.URL {
		t.Fatalf("sourceUrl = %q", out.SourceURL)
	}
	if _, ok := out.Raw["error"]; !ok {
		t.Fatalf("expected raw.error, got %+v", out.Raw)
	}
}

func TestExtract_RetriesOnceThenGivesUp(t *testing.T) {
	srv := pageServer(t, "<html><body>x</body></html>")
	defer srv.Close()

	sleepFunc = func(int) {}
	defer func() { sleepFunc = nil }()

	client := &fakeClient{
		errs:      []error{errors.New("boom"), nil},
		responses: []string{"", `{"title":"After Retry"}`},
	}
	out := testExtractor(client).Extract(context.Background(), srv.URL)
	if out.Title != "After Retry" {
		t.Fatalf("expected retry success, got %+v", out)
	}
	if client.calls != 2 {
		t.Fatalf("calls = %d", client.calls)
	}

	failing := &fakeClient{errs: []error{errors.New("a"), errors.New("b")}}
	out = testExtractor(failing).Extract(context.Background(), srv.URL)
	if _, ok := out.Raw["error"]; !ok {
		t.Fatalf("expected raw.error after both attempts failed, got %+v", out.Raw)
	}
}

func TestExtract_TruncatesPromptHTML(t *testing.T) {
	srv := pageServer(t, "<html><body>"+strings.Repeat("a", 5000)+"</body></html>")
	defer srv.Close()

	client := &fakeClient{responses: []string{`{"title":"T"}`}}
	x := testExtractor(client)
	x.MaxHTMLChars = 1000
	_ = x.Extract(context.Background(), srv.URL)

	user := client.lastReq.Messages[1].Content
	idx := strings.Index(user, "Page HTML (may be truncated):\n")
	if idx < 0 {
		t.Fatalf("prompt missing HTML section")
	}
	if got := len(user) - idx; got > 1200 {
		t.Fatalf("HTML not truncated, %d bytes after marker", got)
	}
}

func TestExtract_FetchFailureNeverThrows(t *testing.T) {
	client := &fakeClient{}
	out := testExtractor(client).Extract(context.Background(), "http://127.0.0.1:1/x")
	if out.SourceURL != "http://127.0.0.1:1/x" || out.CanonicalURL != "http://127.0.0.1:1/x" {
		t.Fatalf("minimal payload expected, got %+v", out)
	}
	if client.calls != 0 {
		t.Fatalf("model must not be called when fetch fails")
	}
}

func TestExtract_UnconfiguredClient(t *testing.T) {
	x := &Extractor{Fetcher: &fetch.Client{Timeout: time.Second}}
	out := x.Extract(context.Background(), "https://example.com/e")
	if _, ok := out.Raw["error"]; !ok {
		t.Fatalf("expected raw.error for unconfigured extractor")
	}
}
