package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// Config holds runtime configuration for the extraction service.
type Config struct {
	// One-shot mode: the URL to extract. Empty when serving.
	URL string
	// Strategy selects "pipeline" (deterministic, default) or "ai".
	Strategy string

	// Serve mode: address for the demo HTTP listener, e.g. ":8080".
	ListenAddr string

	// Fetch
	UserAgent    string
	FetchTimeout time.Duration

	// LLM (AI strategy only)
	LLMBaseURL   string
	LLMModel     string
	LLMAPIKey    string
	MaxHTMLChars int

	Verbose bool
}

// FileConfig is the optional single-file configuration schema. Nested
// sections map naturally to flags.
type FileConfig struct {
	Listen string `yaml:"listen" json:"listen"`

	Fetch struct {
		UserAgent string        `yaml:"userAgent" json:"userAgent"`
		Timeout   time.Duration `yaml:"timeout" json:"timeout"`
	} `yaml:"fetch" json:"fetch"`

	LLM struct {
		BaseURL      string `yaml:"base" json:"base"`
		Model        string `yaml:"model" json:"model"`
		APIKey       string `yaml:"key" json:"key"`
		MaxHTMLChars int    `yaml:"maxHTMLChars" json:"maxHTMLChars"`
	} `yaml:"llm" json:"llm"`

	Verbose bool `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays file values into cfg for fields the flags left at
// their defaults, so explicit flags always win.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	if cfg.ListenAddr == "" && fc.Listen != "" {
		cfg.ListenAddr = fc.Listen
	}
	if (cfg.UserAgent == "" || cfg.UserAgent == DefaultUserAgent) && fc.Fetch.UserAgent != "" {
		cfg.UserAgent = fc.Fetch.UserAgent
	}
	if cfg.FetchTimeout == 0 && fc.Fetch.Timeout > 0 {
		cfg.FetchTimeout = fc.Fetch.Timeout
	}
	if cfg.LLMBaseURL == "" && fc.LLM.BaseURL != "" {
		cfg.LLMBaseURL = fc.LLM.BaseURL
	}
	if cfg.LLMModel == "" && fc.LLM.Model != "" {
		cfg.LLMModel = fc.LLM.Model
	}
	if cfg.LLMAPIKey == "" && fc.LLM.APIKey != "" {
		cfg.LLMAPIKey = fc.LLM.APIKey
	}
	if cfg.MaxHTMLChars == 0 && fc.LLM.MaxHTMLChars > 0 {
		cfg.MaxHTMLChars = fc.LLM.MaxHTMLChars
	}
	if !cfg.Verbose && fc.Verbose {
		cfg.Verbose = true
	}
}

// DefaultUserAgent identifies the extractor to the sites it fetches.
const DefaultUserAgent = "eventextract/1.0 (+https://github.com/provdir/eventextract)"

// ValidateConfig performs minimal schema validation for required settings.
func ValidateConfig(cfg Config) error {
	if cfg.ListenAddr == "" && strings.TrimSpace(cfg.URL) == "" {
		return errors.New("config: either a URL or a listen address is required")
	}
	switch cfg.Strategy {
	case "", "pipeline", "ai":
	default:
		return fmt.Errorf("config: unknown strategy %q", cfg.Strategy)
	}
	if cfg.Strategy == "ai" && strings.TrimSpace(cfg.LLMModel) == "" {
		return errors.New("config: llm.model is required for the ai strategy (or set LLM_MODEL)")
	}
	if cfg.FetchTimeout < 0 || cfg.MaxHTMLChars < 0 {
		return errors.New("config: negative limits are not allowed")
	}
	return nil
}
