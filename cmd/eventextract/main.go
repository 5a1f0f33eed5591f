package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/provdir/eventextract/internal/ai"
	"github.com/provdir/eventextract/internal/app"
	"github.com/provdir/eventextract/internal/event"
	"github.com/provdir/eventextract/internal/fetch"
	"github.com/provdir/eventextract/internal/llm"
	"github.com/provdir/eventextract/internal/pipeline"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		rawURL       string
		strategy     string
		listenAddr   string
		configPath   string
		userAgent    string
		fetchTimeout time.Duration
		llmBaseURL   string
		llmModel     string
		llmKey       string
		maxHTMLChars int
		verbose      bool
	)

	flag.StringVar(&rawURL, "url", "", "URL to extract event details from (one-shot mode)")
	flag.StringVar(&strategy, "strategy", "pipeline", "Extraction strategy: pipeline (deterministic) or ai")
	flag.StringVar(&listenAddr, "listen", "", "Serve the demo HTTP endpoint on this address instead of one-shot mode, e.g. :8080")
	flag.StringVar(&configPath, "config", "", "Optional YAML/JSON config file")
	flag.StringVar(&userAgent, "ua", app.DefaultUserAgent, "User-Agent for page fetches")
	flag.DurationVar(&fetchTimeout, "fetch.timeout", 0, "Page fetch timeout (default 10s)")
	flag.StringVar(&llmBaseURL, "llm.base", os.Getenv("LLM_BASE_URL"), "OpenAI-compatible base URL")
	flag.StringVar(&llmModel, "llm.model", os.Getenv("LLM_MODEL"), "Model name for the ai strategy")
	flag.StringVar(&llmKey, "llm.key", os.Getenv("LLM_API_KEY"), "API key for the OpenAI-compatible server")
	flag.IntVar(&maxHTMLChars, "llm.maxHTMLChars", 0, "Maximum page HTML characters sent to the model")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.Parse()

	cfg := app.Config{
		URL:          rawURL,
		Strategy:     strategy,
		ListenAddr:   listenAddr,
		UserAgent:    userAgent,
		FetchTimeout: fetchTimeout,
		LLMBaseURL:   llmBaseURL,
		LLMModel:     llmModel,
		LLMAPIKey:    llmKey,
		MaxHTMLChars: maxHTMLChars,
		Verbose:      verbose,
	}
	if strings.TrimSpace(configPath) != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			log.Error().Err(err).Str("path", configPath).Msg("config file")
			os.Exit(1)
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	if err := app.ValidateConfig(cfg); err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		os.Exit(1)
	}

	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	fetcher := &fetch.Client{UserAgent: cfg.UserAgent, Timeout: cfg.FetchTimeout}
	pl := pipeline.New(fetcher)

	var aiExtractor *ai.Extractor
	if strings.TrimSpace(cfg.LLMModel) != "" {
		aiExtractor = &ai.Extractor{
			Client:       llm.NewOpenAIProvider(cfg.LLMBaseURL, cfg.LLMAPIKey),
			Model:        cfg.LLMModel,
			Fetcher:      fetcher,
			MaxHTMLChars: cfg.MaxHTMLChars,
		}
	}

	if cfg.ListenAddr != "" {
		srv := &app.Server{Pipeline: pl, AI: aiExtractor}
		log.Info().Str("addr", cfg.ListenAddr).Msg("listening")
		if err := http.ListenAndServe(cfg.ListenAddr, srv.Handler()); err != nil {
			log.Error().Err(err).Msg("server stopped")
			os.Exit(1)
		}
		return
	}

	ctx := context.Background()
	var payload event.Payload
	if cfg.Strategy == "ai" {
		payload = aiExtractor.Extract(ctx, cfg.URL)
	} else {
		payload = pl.Extract(ctx, cfg.URL)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(payload); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
