package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigFile_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := "listen: \":9090\"\nfetch:\n  userAgent: custom-agent\n  timeout: 5s\nllm:\n  model: gpt-4o-mini\n  maxHTMLChars: 9000\nverbose: true\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	fc, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if fc.Listen != ":9090" || fc.Fetch.UserAgent != "custom-agent" {
		t.Fatalf("unexpected config: %+v", fc)
	}
	if fc.Fetch.Timeout != 5*time.Second {
		t.Fatalf("timeout = %v", fc.Fetch.Timeout)
	}
	if fc.LLM.Model != "gpt-4o-mini" || fc.LLM.MaxHTMLChars != 9000 || !fc.Verbose {
		t.Fatalf("unexpected config: %+v", fc)
	}
}

func TestApplyFileConfig_FlagsWin(t *testing.T) {
	cfg := Config{UserAgent: "explicit-agent", LLMModel: ""}
	var fc FileConfig
	fc.Fetch.UserAgent = "file-agent"
	fc.LLM.Model = "file-model"

	ApplyFileConfig(&cfg, fc)
	if cfg.UserAgent != "explicit-agent" {
		t.Fatalf("explicit flag overridden: %q", cfg.UserAgent)
	}
	if cfg.LLMModel != "file-model" {
		t.Fatalf("file default not applied: %q", cfg.LLMModel)
	}

	cfg = Config{UserAgent: DefaultUserAgent}
	ApplyFileConfig(&cfg, fc)
	if cfg.UserAgent != "file-agent" {
		t.Fatalf("default should yield to file config, got %q", cfg.UserAgent)
	}
}

func TestValidateConfig(t *testing.T) {
	if err := ValidateConfig(Config{}); err == nil {
		t.Fatalf("expected error without url or listen addr")
	}
	if err := ValidateConfig(Config{URL: "https://example.com"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateConfig(Config{URL: "u", Strategy: "ai"}); err == nil {
		t.Fatalf("expected error for ai strategy without model")
	}
	if err := ValidateConfig(Config{URL: "u", Strategy: "ai", LLMModel: "m"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateConfig(Config{URL: "u", Strategy: "magic"}); err == nil {
		t.Fatalf("expected error for unknown strategy")
	}
}
