package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/provdir/eventextract/internal/event"
	"github.com/provdir/eventextract/internal/fetch"
	"github.com/provdir/eventextract/internal/pipeline"
)

func TestHandleExtract_Pipeline(t *testing.T) {
	page := `<html><head><meta property="og:title" content="Spring Workshop"></head><body></body></html>`
	fixture := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(page))
	}))
	defer fixture.Close()

	s := &Server{Pipeline: pipeline.New(&fetch.Client{Timeout: 2 * time.Second})}
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/extract?url=" + fixture.URL)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	var p event.Payload
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Title != "Spring Workshop" || p.SourceURL != fixture.URL {
		t.Fatalf("unexpected payload: %+v", p)
	}
}

func TestHandleExtract_MissingURL(t *testing.T) {
	s := &Server{Pipeline: pipeline.New(&fetch.Client{Timeout: time.Second})}
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/extract")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestHandleExtract_AIUnconfigured(t *testing.T) {
	s := &Server{Pipeline: pipeline.New(&fetch.Client{Timeout: time.Second})}
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/extract?url=https://example.com&strategy=ai")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestHandleExtract_UnknownStrategy(t *testing.T) {
	s := &Server{Pipeline: pipeline.New(&fetch.Client{Timeout: time.Second})}
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/extract?url=https://example.com&strategy=psychic")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}
