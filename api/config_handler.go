package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/seenimoa/newsvani/internal/config"
)

// configMu serialises writes to the config file.
var configMu sync.Mutex

// ConfigResponse is the JSON envelope returned by GET /api/v1/config.
type ConfigResponse struct {
	Config     *config.Config `json:"config"`
	ConfigFile string         `json:"config_file"` // path to the active config file
}

// handleGetConfig returns the running configuration. The Gemini key is
// excluded by its json:"-" tag.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	configMu.Lock()
	defer configMu.Unlock()
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: ConfigResponse{
			Config:     s.cfg,
			ConfigFile: config.ConfigFilePath(),
		},
	})
}

// handleUpdateConfig merges a partial configuration into the running config
// and persists it. Changes apply to the next server start.
func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var incoming config.Config
	if err := json.NewDecoder(r.Body).Decode(&incoming); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	configMu.Lock()
	defer configMu.Unlock()

	mergeConfig(s.cfg, &incoming)

	cfgPath := config.ConfigFilePath()
	if err := config.SaveToFile(s.cfg, cfgPath); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save config: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: ConfigResponse{
			Config:     s.cfg,
			ConfigFile: cfgPath,
		},
	})
}

// handleGetConfigKeys returns the masked status of API keys.
func (s *Server) handleGetConfigKeys(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    config.CheckAPIKeys(s.cfg),
	})
}

// mergeConfig copies non-zero values from src into dst. Booleans cannot be
// distinguished from "unset" in a partial body, so ExtendedSummary is only
// switched on, never off, through this endpoint.
func mergeConfig(dst, src *config.Config) {
	// Fetch
	if src.Fetch.Provider != "" {
		dst.Fetch.Provider = src.Fetch.Provider
	}
	if src.Fetch.NumArticles != 0 {
		dst.Fetch.NumArticles = src.Fetch.NumArticles
	}
	if src.Fetch.TimeoutSec != 0 {
		dst.Fetch.TimeoutSec = src.Fetch.TimeoutSec
	}
	if src.Fetch.CacheTTL != 0 {
		dst.Fetch.CacheTTL = src.Fetch.CacheTTL
	}
	if src.Fetch.RateLimit != 0 {
		dst.Fetch.RateLimit = src.Fetch.RateLimit
	}
	if src.Fetch.UserAgent != "" {
		dst.Fetch.UserAgent = src.Fetch.UserAgent
	}

	// Analysis
	if src.Analysis.Classifier != "" {
		dst.Analysis.Classifier = src.Analysis.Classifier
	}
	if src.Analysis.ExtendedSummary {
		dst.Analysis.ExtendedSummary = true
	}
	if src.Analysis.TrendingTopN != 0 {
		dst.Analysis.TrendingTopN = src.Analysis.TrendingTopN
	}
	if src.Analysis.KeywordsTopN != 0 {
		dst.Analysis.KeywordsTopN = src.Analysis.KeywordsTopN
	}
	if src.Analysis.NarrativeArticles != 0 {
		dst.Analysis.NarrativeArticles = src.Analysis.NarrativeArticles
	}

	// Speech
	if src.Speech.Translator != "" {
		dst.Speech.Translator = src.Speech.Translator
	}
	if src.Speech.GeminiModel != "" {
		dst.Speech.GeminiModel = src.Speech.GeminiModel
	}
	if src.Speech.TTSConcurrency != 0 {
		dst.Speech.TTSConcurrency = src.Speech.TTSConcurrency
	}
	if src.Speech.OutputDir != "" {
		dst.Speech.OutputDir = src.Speech.OutputDir
	}
	if src.Speech.Filename != "" {
		dst.Speech.Filename = src.Speech.Filename
	}

	// API
	if src.API.Host != "" {
		dst.API.Host = src.API.Host
	}
	if src.API.Port != 0 {
		dst.API.Port = src.API.Port
	}
	if len(src.API.CORSOrigins) > 0 {
		dst.API.CORSOrigins = src.API.CORSOrigins
	}

	// Logging
	if src.Logging.Level != "" {
		dst.Logging.Level = src.Logging.Level
	}
	if src.Logging.Format != "" {
		dst.Logging.Format = src.Logging.Format
	}
}
