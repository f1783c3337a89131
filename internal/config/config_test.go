package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("NEWSVANI_SPEECH_GEMINI_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("NEWSVANI_FETCH_PROVIDER", "")
	os.Unsetenv("NEWSVANI_SPEECH_GEMINI_KEY")
	os.Unsetenv("GEMINI_API_KEY")
	os.Unsetenv("NEWSVANI_FETCH_PROVIDER")
}

// ── Load / Defaults ──

func TestLoadReturnsDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	// Fetch defaults
	if cfg.Fetch.Provider != "auto" {
		t.Errorf("Fetch.Provider: got %q, want %q", cfg.Fetch.Provider, "auto")
	}
	if cfg.Fetch.NumArticles != 10 {
		t.Errorf("Fetch.NumArticles: got %d, want 10", cfg.Fetch.NumArticles)
	}
	if cfg.Fetch.TimeoutSec != 30 {
		t.Errorf("Fetch.TimeoutSec: got %d, want 30", cfg.Fetch.TimeoutSec)
	}
	if cfg.Fetch.CacheTTL != 600 {
		t.Errorf("Fetch.CacheTTL: got %d, want 600", cfg.Fetch.CacheTTL)
	}
	if cfg.Fetch.RateLimit != 2 {
		t.Errorf("Fetch.RateLimit: got %d, want 2", cfg.Fetch.RateLimit)
	}

	// Analysis defaults
	if cfg.Analysis.Classifier != "vader" {
		t.Errorf("Analysis.Classifier: got %q, want vader", cfg.Analysis.Classifier)
	}
	if !cfg.Analysis.ExtendedSummary {
		t.Error("Analysis.ExtendedSummary should be true by default")
	}
	if cfg.Analysis.TrendingTopN != 5 {
		t.Errorf("Analysis.TrendingTopN: got %d, want 5", cfg.Analysis.TrendingTopN)
	}
	if cfg.Analysis.KeywordsTopN != 5 {
		t.Errorf("Analysis.KeywordsTopN: got %d, want 5", cfg.Analysis.KeywordsTopN)
	}
	if cfg.Analysis.NarrativeArticles != 5 {
		t.Errorf("Analysis.NarrativeArticles: got %d, want 5", cfg.Analysis.NarrativeArticles)
	}

	// Speech defaults
	if cfg.Speech.Language != "hi" {
		t.Errorf("Speech.Language: got %q, want %q", cfg.Speech.Language, "hi")
	}
	if cfg.Speech.Translator != "google" {
		t.Errorf("Speech.Translator: got %q, want %q", cfg.Speech.Translator, "google")
	}
	if cfg.Speech.TTSConcurrency != 4 {
		t.Errorf("Speech.TTSConcurrency: got %d, want 4", cfg.Speech.TTSConcurrency)
	}
	if cfg.Speech.OutputPath() != "hindi_news_summary.mp3" {
		t.Errorf("Speech.OutputPath: got %q", cfg.Speech.OutputPath())
	}

	// API defaults
	if cfg.API.Port != 8080 {
		t.Errorf("API.Port: got %d, want 8080", cfg.API.Port)
	}
	if cfg.API.Addr() != "0.0.0.0:8080" {
		t.Errorf("API.Addr: got %q", cfg.API.Addr())
	}

	// Logging defaults
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Errorf("Logging: got %+v", cfg.Logging)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("NEWSVANI_FETCH_PROVIDER", "rss")
	t.Setenv("NEWSVANI_API_PORT", "9191")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Fetch.Provider != "rss" {
		t.Errorf("Fetch.Provider: got %q, want rss", cfg.Fetch.Provider)
	}
	if cfg.API.Port != 9191 {
		t.Errorf("API.Port: got %d, want 9191", cfg.API.Port)
	}
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)

	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "test_config.yaml")
	content := []byte(`
fetch:
  provider: "bing"
  num_articles: 20
  cache_ttl: 0
analysis:
  extended_summary: false
  trending_top_n: 8
speech:
  translator: "gemini"
  gemini_key: "AIzaTestKey1234567890"
  output_dir: "/tmp/audio"
api:
  port: 9090
logging:
  level: "debug"
  format: "json"
`)
	if err := os.WriteFile(cfgPath, content, 0644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := LoadFromFile(cfgPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}
	if cfg.Fetch.Provider != "bing" {
		t.Errorf("Fetch.Provider: got %q", cfg.Fetch.Provider)
	}
	if cfg.Fetch.NumArticles != 20 {
		t.Errorf("Fetch.NumArticles: got %d", cfg.Fetch.NumArticles)
	}
	if cfg.Fetch.TTL() != 0 {
		t.Errorf("Fetch.TTL: got %v", cfg.Fetch.TTL())
	}
	if cfg.Fetch.TimeoutSec != 30 {
		t.Errorf("unset keys should keep defaults, Fetch.TimeoutSec = %d", cfg.Fetch.TimeoutSec)
	}
	if cfg.Analysis.ExtendedSummary {
		t.Error("Analysis.ExtendedSummary should be false")
	}
	if cfg.Analysis.TrendingTopN != 8 {
		t.Errorf("Analysis.TrendingTopN: got %d", cfg.Analysis.TrendingTopN)
	}
	if cfg.Speech.Translator != "gemini" || cfg.Speech.GeminiKey != "AIzaTestKey1234567890" {
		t.Errorf("Speech: got %+v", cfg.Speech)
	}
	if cfg.Speech.OutputPath() != "/tmp/audio/hindi_news_summary.mp3" {
		t.Errorf("Speech.OutputPath: got %q", cfg.Speech.OutputPath())
	}
	if cfg.API.Port != 9090 {
		t.Errorf("API.Port: got %d, want 9090", cfg.API.Port)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging: got %+v", cfg.Logging)
	}
}

func TestLoadFromFileNotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("LoadFromFile() with nonexistent path should return error")
	}
}

func TestSaveToFileRoundTrip(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	cfg.Fetch.Provider = "merge"
	cfg.Speech.GeminiKey = "AIzaSaved1234567890"
	cfg.API.Port = 7070

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	if err := SaveToFile(cfg, path); err != nil {
		t.Fatalf("SaveToFile: %v", err)
	}

	got, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if got.Fetch.Provider != "merge" || got.API.Port != 7070 || got.Speech.GeminiKey != "AIzaSaved1234567890" {
		t.Errorf("round trip lost values: %+v", got)
	}
}

// ── Env helpers ──

func TestOverrideFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("NEWSVANI_SPEECH_GEMINI_KEY", "gemini-key-789")

	cfg := &Config{Speech: SpeechConfig{GeminiKey: "from-config"}}
	overrideFromEnv(cfg)
	if cfg.Speech.GeminiKey != "gemini-key-789" {
		t.Errorf("GeminiKey: got %q", cfg.Speech.GeminiKey)
	}
}

func TestOverrideFromEnvFallbackKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "google-style-key")

	cfg := &Config{}
	overrideFromEnv(cfg)
	if cfg.Speech.GeminiKey != "google-style-key" {
		t.Errorf("GeminiKey: got %q", cfg.Speech.GeminiKey)
	}

	cfg = &Config{Speech: SpeechConfig{GeminiKey: "from-config"}}
	overrideFromEnv(cfg)
	if cfg.Speech.GeminiKey != "from-config" {
		t.Errorf("config value should win over GEMINI_API_KEY, got %q", cfg.Speech.GeminiKey)
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("NEWSVANI_SPEECH_GEMINI_KEY=from-dotenv\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("NEWSVANI_SPEECH_GEMINI_KEY") })

	if got := os.Getenv("NEWSVANI_SPEECH_GEMINI_KEY"); got != "from-dotenv" {
		t.Errorf("env after LoadDotEnv: %q", got)
	}
}

// ── Keys ──

func TestMaskKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "***"},
		{"abc", "***"},
		{"12345678", "***"},
		{"AIzaSyD-1234567xyz", "AIz...xyz"},
	}
	for _, tt := range tests {
		if got := maskKey(tt.in); got != tt.want {
			t.Errorf("maskKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCheckAPIKeysEmpty(t *testing.T) {
	clearEnv(t)
	keys := CheckAPIKeys(&Config{Speech: SpeechConfig{Translator: "google"}})
	if len(keys) != 1 {
		t.Fatalf("expected 1 key, got %d", len(keys))
	}
	k := keys[0]
	if k.IsSet || k.Source != KeySourceNone || k.Required || k.Masked != "" {
		t.Errorf("unexpected status: %+v", k)
	}
}

func TestCheckAPIKeysSource(t *testing.T) {
	clearEnv(t)
	cfg := &Config{Speech: SpeechConfig{Translator: "gemini", GeminiKey: "AIzaConfigKey123"}}
	k := CheckAPIKeys(cfg)[0]
	if !k.IsSet || k.Source != KeySourceConfig || !k.Required || k.Masked != "AIz...123" {
		t.Errorf("config key status: %+v", k)
	}

	t.Setenv("GEMINI_API_KEY", "AIzaConfigKey123")
	if k := CheckAPIKeys(cfg)[0]; k.Source != KeySourceEnv {
		t.Errorf("expected env source, got %+v", k)
	}
}
