// Package config handles configuration loading for newsvani.
// It supports YAML config files, a .env file, and environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment override, e.g. NEWSVANI_FETCH_PROVIDER.
const EnvPrefix = "NEWSVANI"

// Config represents the complete application configuration.
type Config struct {
	Fetch    FetchConfig    `mapstructure:"fetch"    yaml:"fetch"`
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis"`
	Speech   SpeechConfig   `mapstructure:"speech"   yaml:"speech"`
	API      APIConfig      `mapstructure:"api"      yaml:"api"`
	Logging  LoggingConfig  `mapstructure:"logging"  yaml:"logging"`
}

// FetchConfig holds news source settings.
type FetchConfig struct {
	Provider    string `mapstructure:"provider"     yaml:"provider"` // "bing", "rss", "merge", "auto"
	NumArticles int    `mapstructure:"num_articles" yaml:"num_articles"`
	TimeoutSec  int    `mapstructure:"timeout_sec"  yaml:"timeout_sec"`
	CacheTTL    int    `mapstructure:"cache_ttl"    yaml:"cache_ttl"`  // seconds; 0 disables caching
	RateLimit   int    `mapstructure:"rate_limit"   yaml:"rate_limit"` // requests per second; 0 disables
	UserAgent   string `mapstructure:"user_agent"   yaml:"user_agent"`
}

// Timeout returns TimeoutSec as a duration.
func (f FetchConfig) Timeout() time.Duration { return time.Duration(f.TimeoutSec) * time.Second }

// TTL returns CacheTTL as a duration.
func (f FetchConfig) TTL() time.Duration { return time.Duration(f.CacheTTL) * time.Second }

// AnalysisConfig holds analysis engine settings.
type AnalysisConfig struct {
	Classifier        string `mapstructure:"classifier"         yaml:"classifier"` // vader, lexicon
	ExtendedSummary   bool   `mapstructure:"extended_summary"   yaml:"extended_summary"`
	TrendingTopN      int    `mapstructure:"trending_top_n"     yaml:"trending_top_n"`
	KeywordsTopN      int    `mapstructure:"keywords_top_n"     yaml:"keywords_top_n"`
	NarrativeArticles int    `mapstructure:"narrative_articles" yaml:"narrative_articles"`
}

// SpeechConfig holds translation and text-to-speech settings.
type SpeechConfig struct {
	Language       string `mapstructure:"language"        yaml:"language"`
	Translator     string `mapstructure:"translator"      yaml:"translator"` // "google" or "gemini"
	GeminiKey      string `mapstructure:"gemini_key"      yaml:"gemini_key"      json:"-"`
	GeminiModel    string `mapstructure:"gemini_model"    yaml:"gemini_model"`
	TTSConcurrency int    `mapstructure:"tts_concurrency" yaml:"tts_concurrency"`
	OutputDir      string `mapstructure:"output_dir"      yaml:"output_dir"`
	Filename       string `mapstructure:"filename"        yaml:"filename"`
}

// OutputPath joins OutputDir and Filename.
func (s SpeechConfig) OutputPath() string { return filepath.Join(s.OutputDir, s.Filename) }

// APIConfig holds HTTP server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// Addr returns host:port.
func (a APIConfig) Addr() string { return fmt.Sprintf("%s:%d", a.Host, a.Port) }

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.newsvani/config.yaml (home directory)
//  3. /etc/newsvani/config.yaml (system)
//
// Environment variables override config file values.
// Format: NEWSVANI_<SECTION>_<KEY>, e.g., NEWSVANI_SPEECH_GEMINI_KEY
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".newsvani"))
	v.AddConfigPath("/etc/newsvani")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return unmarshal(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return unmarshal(v)
}

// SaveToFile writes cfg as YAML to path, creating parent directories.
// Secrets are written only when they did not come from the environment.
func SaveToFile(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.Set("fetch.provider", cfg.Fetch.Provider)
	v.Set("fetch.num_articles", cfg.Fetch.NumArticles)
	v.Set("fetch.timeout_sec", cfg.Fetch.TimeoutSec)
	v.Set("fetch.cache_ttl", cfg.Fetch.CacheTTL)
	v.Set("fetch.rate_limit", cfg.Fetch.RateLimit)
	v.Set("fetch.user_agent", cfg.Fetch.UserAgent)
	v.Set("analysis.classifier", cfg.Analysis.Classifier)
	v.Set("analysis.extended_summary", cfg.Analysis.ExtendedSummary)
	v.Set("analysis.trending_top_n", cfg.Analysis.TrendingTopN)
	v.Set("analysis.keywords_top_n", cfg.Analysis.KeywordsTopN)
	v.Set("analysis.narrative_articles", cfg.Analysis.NarrativeArticles)
	v.Set("speech.language", cfg.Speech.Language)
	v.Set("speech.translator", cfg.Speech.Translator)
	v.Set("speech.gemini_model", cfg.Speech.GeminiModel)
	v.Set("speech.tts_concurrency", cfg.Speech.TTSConcurrency)
	v.Set("speech.output_dir", cfg.Speech.OutputDir)
	v.Set("speech.filename", cfg.Speech.Filename)
	if os.Getenv(EnvPrefix+"_SPEECH_GEMINI_KEY") == "" {
		v.Set("speech.gemini_key", cfg.Speech.GeminiKey)
	}
	v.Set("api.host", cfg.API.Host)
	v.Set("api.port", cfg.API.Port)
	v.Set("api.cors_origins", cfg.API.CORSOrigins)
	v.Set("logging.level", cfg.Logging.Level)
	v.Set("logging.format", cfg.Logging.Format)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// ConfigFilePath returns the first existing config file in the search
// order, or ~/.newsvani/config.yaml when none exists.
func ConfigFilePath() string {
	candidates := []string{
		filepath.Join("config", "config.yaml"),
		filepath.Join(homeDir(), ".newsvani", "config.yaml"),
		filepath.Join("/etc", "newsvani", "config.yaml"),
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return candidates[1]
}

// LoadDotEnv loads environment variables from .env files. Missing files are
// ignored; variables already set in the process environment win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	overrideFromEnv(&cfg)
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Fetch defaults
	v.SetDefault("fetch.provider", "auto")
	v.SetDefault("fetch.num_articles", 10)
	v.SetDefault("fetch.timeout_sec", 30)
	v.SetDefault("fetch.cache_ttl", 600) // 10 minutes
	v.SetDefault("fetch.rate_limit", 2)
	v.SetDefault("fetch.user_agent", "")

	// Analysis defaults
	v.SetDefault("analysis.classifier", "vader")
	v.SetDefault("analysis.extended_summary", true)
	v.SetDefault("analysis.trending_top_n", 5)
	v.SetDefault("analysis.keywords_top_n", 5)
	v.SetDefault("analysis.narrative_articles", 5)

	// Speech defaults
	v.SetDefault("speech.language", "hi")
	v.SetDefault("speech.translator", "google")
	v.SetDefault("speech.gemini_key", "")
	v.SetDefault("speech.gemini_model", "gemini-2.0-flash")
	v.SetDefault("speech.tts_concurrency", 4)
	v.SetDefault("speech.output_dir", ".")
	v.SetDefault("speech.filename", "hindi_news_summary.mp3")

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"*"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
// GEMINI_API_KEY is honoured as a fallback since that is the name Google's
// tooling uses.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv(EnvPrefix + "_SPEECH_GEMINI_KEY"); key != "" {
		cfg.Speech.GeminiKey = key
	} else if cfg.Speech.GeminiKey == "" {
		cfg.Speech.GeminiKey = os.Getenv("GEMINI_API_KEY")
	}
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
