package config

import (
	"os"
	"testing"
	"time"
)

func loadForTest(t *testing.T) *Config {
	t.Helper()
	Reset()
	t.Cleanup(Reset)

	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(wd) })

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return cfg
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	cfg := loadForTest(t)

	if cfg.AI.Gemini.Model != "gemini-1.5-flash" {
		t.Errorf("gemini model = %q", cfg.AI.Gemini.Model)
	}
	if cfg.AI.GPTOSS.Kind != "ollama" {
		t.Errorf("gptoss kind = %q", cfg.AI.GPTOSS.Kind)
	}
	if cfg.Content.Tone != "친근한" || cfg.Content.Audience != "일반 대중" {
		t.Errorf("content defaults = %q/%q", cfg.Content.Tone, cfg.Content.Audience)
	}
	if cfg.Image.Source != "none" {
		t.Errorf("image source = %q, want none", cfg.Image.Source)
	}
	if cfg.Server.Addr != ":5000" {
		t.Errorf("server addr = %q", cfg.Server.Addr)
	}
	if len(cfg.YouTube.Languages) == 0 || cfg.YouTube.Languages[0] != "ko" {
		t.Errorf("languages = %v, want Korean first", cfg.YouTube.Languages)
	}
}

func TestLoad_EnvironmentAliases(t *testing.T) {
	t.Setenv("GOOGLE_AI_API_KEY", "alias-key")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_GEMINI_API_KEY", "")
	t.Setenv("PEXELS_API_KEY", "pexels-key")
	cfg := loadForTest(t)

	if cfg.AI.Gemini.APIKey != "alias-key" {
		t.Errorf("gemini api key = %q, want alias pickup", cfg.AI.Gemini.APIKey)
	}
	if cfg.Image.PexelsAPIKey != "pexels-key" {
		t.Errorf("pexels api key = %q", cfg.Image.PexelsAPIKey)
	}
}

func TestLoad_PrimaryEnvWinsOverAlias(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "primary")
	t.Setenv("GOOGLE_AI_API_KEY", "alias")
	cfg := loadForTest(t)

	if cfg.AI.Gemini.APIKey != "primary" {
		t.Errorf("gemini api key = %q, want primary env to win", cfg.AI.Gemini.APIKey)
	}
}

func TestValidateConfig(t *testing.T) {
	valid := &Config{
		AI:    AI{GPTOSS: GPTOSSConfig{Kind: "ollama"}},
		Image: Image{Source: "none"},
	}
	if err := validateConfig(valid); err != nil {
		t.Errorf("validateConfig(valid) = %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad preferred backend", func(c *Config) { c.AI.PreferredBackend = "claude" }},
		{"bad gptoss kind", func(c *Config) { c.AI.GPTOSS.Kind = "probe" }},
		{"bad image source", func(c *Config) { c.Image.Source = "unsplash" }},
		{"bad duration", func(c *Config) { c.Batch.Delay = "soon" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				AI:    AI{GPTOSS: GPTOSSConfig{Kind: "ollama"}},
				Image: Image{Source: "none"},
			}
			tt.mutate(cfg)
			if err := validateConfig(cfg); err == nil {
				t.Error("validateConfig() = nil, want error")
			}
		})
	}
}

func TestDuration(t *testing.T) {
	if got := Duration("30s", time.Minute); got != 30*time.Second {
		t.Errorf("Duration(30s) = %v", got)
	}
	if got := Duration("", time.Minute); got != time.Minute {
		t.Errorf("Duration(empty) = %v, want default", got)
	}
	if got := Duration("bogus", time.Minute); got != time.Minute {
		t.Errorf("Duration(bogus) = %v, want default", got)
	}
}
