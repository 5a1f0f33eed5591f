// openai-stub is a local OpenAI-compatible server returning canned event JSON
// so the ai strategy can be exercised without a real model backend:
//
//	ADDR=:8081 go run ./cmd/openai-stub
//	eventextract -url https://example.com/event -strategy ai -llm.base http://localhost:8081/v1 -llm.model test-model
package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func main() {
	model := os.Getenv("MODEL_ID")
	if strings.TrimSpace(model) == "" {
		model = "test-model"
	}
	addr := os.Getenv("ADDR")
	if strings.TrimSpace(addr) == "" {
		addr = ":8081"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"id": model, "object": "model"}},
		})
	})
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var req chatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		sys := ""
		if len(req.Messages) > 0 {
			sys = strings.TrimSpace(req.Messages[0].Content)
		}
		if !strings.Contains(sys, "extract event details") {
			http.Error(w, "unexpected system prompt", http.StatusBadRequest)
			return
		}
		result := map[string]any{
			"title":        "Stubbed Summit",
			"description":  "A canned event from the stub backend.",
			"startsAt":     "2026-03-01T09:00:00.000Z",
			"endsAt":       "2026-03-03T17:00:00.000Z",
			"venue":        "Stub Hall",
			"city":         "Austin",
			"state":        "TX",
			"country":      "US",
			"organizer":    "Stub Org",
			"canonicalUrl": nil,
		}
		content, _ := json.Marshal(result)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": string(content)}},
			},
			"usage": map[string]int{"prompt_tokens": 100, "completion_tokens": 50},
		})
	})

	log.Printf("openai-stub listening on %s (model=%s)", addr, model)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal(err)
	}
}
