package app

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/provdir/eventextract/internal/ai"
	"github.com/provdir/eventextract/internal/pipeline"
)

// Server is the demo HTTP surface: one endpoint that runs either extraction
// strategy and returns the payload as JSON. The production API layer that
// fronts this subsystem lives elsewhere; this handler mirrors its contract.
type Server struct {
	Pipeline *pipeline.Pipeline
	// AI is nil when the model backend is not configured; requests asking
	// for it then get 503 rather than a silent fallback.
	AI *ai.Extractor
}

// Handler returns the route table for the demo listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/extract", s.handleExtract)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "use GET or POST")
		return
	}
	url := strings.TrimSpace(r.FormValue("url"))
	if url == "" {
		writeError(w, http.StatusBadRequest, "missing url parameter")
		return
	}
	strategy := strings.TrimSpace(r.FormValue("strategy"))

	var payload any
	switch strategy {
	case "", "pipeline":
		payload = s.Pipeline.Extract(r.Context(), url)
	case "ai":
		if s.AI == nil {
			writeError(w, http.StatusServiceUnavailable, "ai strategy is not configured")
			return
		}
		payload = s.AI.Extract(r.Context(), url)
	default:
		writeError(w, http.StatusBadRequest, "unknown strategy: "+strategy)
		return
	}

	log.Info().Str("url", url).Str("strategy", strategyName(strategy)).Msg("extraction served")
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

func strategyName(s string) string {
	if s == "" {
		return "pipeline"
	}
	return s
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
