// Package api provides the HTTP server for newsvani.
//
// It exposes endpoints for company news analysis, Hindi audio generation,
// configuration, WebSocket progress streaming, and the embedded web form.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"regexp"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	"github.com/seenimoa/newsvani/internal/config"
	"github.com/seenimoa/newsvani/internal/datasource"
	"github.com/seenimoa/newsvani/internal/narrative"
	"github.com/seenimoa/newsvani/internal/pipeline"
	"github.com/seenimoa/newsvani/pkg/utils"
	"github.com/seenimoa/newsvani/web"
)

// Version is reported by the health endpoint; the CLI overrides it at startup.
var Version = "dev"

// Server is the HTTP API server.
type Server struct {
	router   chi.Router
	cfg      *config.Config
	pipe     *pipeline.Pipeline
	wsHub    *WSHub
	logger   *slog.Logger
	audioDir string
	serveUI  bool // when true, serve the embedded web form at /
}

// NewServer creates a configured API server with all routes and middleware.
// Pipeline progress is broadcast to WebSocket clients.
func NewServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	hub := NewWSHub()
	p, err := pipeline.FromConfig(ctx, cfg, logger, hub.Progress)
	if err != nil {
		return nil, fmt.Errorf("pipeline setup failed: %w", err)
	}
	return newServer(cfg, p, hub, logger), nil
}

func newServer(cfg *config.Config, p *pipeline.Pipeline, hub *WSHub, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	srv := &Server{
		cfg:      cfg,
		pipe:     p,
		wsHub:    hub,
		logger:   logger,
		audioDir: filepath.Join(cfg.Speech.OutputDir, "audio"),
		serveUI:  true,
	}
	srv.router = srv.buildRouter()
	return srv
}

// SetServeUI controls whether the embedded web form is served.
// Must be called before ListenAndServe.
func (s *Server) SetServeUI(enabled bool) {
	s.serveUI = enabled
	s.router = s.buildRouter()
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server and shuts it down gracefully on
// SIGINT/SIGTERM.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go s.wsHub.Run()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case <-done:
	}
	s.logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(ctx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/audio/{file}", s.handleAudio)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.With(middleware.Timeout(2*time.Minute)).Post("/analyze", s.handleAnalyze)
		r.With(middleware.Timeout(3*time.Minute)).Post("/speak", s.handleSpeak)

		r.Get("/config", s.handleGetConfig)
		r.Put("/config", s.handleUpdateConfig)
		r.Get("/config/keys", s.handleGetConfigKeys)

		r.Get("/ws", s.handleWebSocket)
	})

	if s.serveUI {
		s.mountUI(r, web.DistFS())
	}
	return r
}

// mountUI serves the embedded single-page form; unknown paths fall back to index.html.
func (s *Server) mountUI(r chi.Router, distFS fs.FS) {
	fileServer := http.FileServerFS(distFS)

	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		rPath := strings.TrimPrefix(r.URL.Path, "/")
		if rPath == "" || rPath == web.IndexFile {
			serveIndexHTML(w, distFS)
			return
		}
		f, err := distFS.Open(rPath)
		if err != nil {
			serveIndexHTML(w, distFS)
			return
		}
		f.Close()
		fileServer.ServeHTTP(w, r)
	})
}

func serveIndexHTML(w http.ResponseWriter, distFS fs.FS) {
	data, err := fs.ReadFile(distFS, web.IndexFile)
	if err != nil {
		http.Error(w, "web UI not available", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// AnalyzeRequest is the body of POST /api/v1/analyze.
type AnalyzeRequest struct {
	Company string `json:"company"`
}

// SpeakRequest is the body of POST /api/v1/speak. Narrative is the text the
// page is showing; when it is empty the company is analyzed again.
type SpeakRequest struct {
	Company   string `json:"company"`
	Narrative string `json:"narrative,omitempty"`
}

// SpeakResponse is returned by POST /api/v1/speak. Warning is set, and
// AudioURL left empty, when translation or synthesis failed.
type SpeakResponse struct {
	Company   string `json:"company"`
	Narrative string `json:"narrative"`
	AudioURL  string `json:"audio_url,omitempty"`
	Warning   string `json:"warning,omitempty"`
}

// Messages shown by the web form.
const (
	msgEmptyCompany = "Please enter a company name."
	msgFetchFailed  = "Failed to fetch news. Please try again."
	msgSpeechFailed = "Failed to generate the Hindi audio summary."
)

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":     "ok",
			"version":    Version,
			"time_ist":   utils.FormatDateTimeIST(utils.NowIST()),
			"ws_clients": s.wsHub.ClientCount(),
		},
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	company, ok := decodeCompany(w, r)
	if !ok {
		return
	}

	report, err := s.pipe.Analyze(r.Context(), company)
	if err != nil {
		s.writeAnalyzeError(w, err)
		return
	}

	s.wsHub.Broadcast(WSMessage{
		Type: "analysis_complete",
		Data: map[string]interface{}{
			"company": report.Company,
			"trend":   report.Summary.OverallTrend,
		},
	})
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: report})
}

// handleSpeak voices the narrative the client already shows, so the audio
// matches the report on screen. Without one it re-runs the analysis, which
// only reproduces the earlier report while the fetch cache holds it. The
// audio goes to a fresh file under the audio directory.
func (s *Server) handleSpeak(w http.ResponseWriter, r *http.Request) {
	var req SpeakRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	company := utils.NormalizeCompany(req.Company)
	if company == "" {
		writeError(w, http.StatusBadRequest, msgEmptyCompany)
		return
	}

	report := &pipeline.Report{Company: company, Narrative: strings.TrimSpace(req.Narrative)}
	if report.Narrative == "" {
		var err error
		if report, err = s.pipe.Analyze(r.Context(), company); err != nil {
			s.writeAnalyzeError(w, err)
			return
		}
	}

	resp := SpeakResponse{Company: report.Company, Narrative: report.Narrative}
	if err := os.MkdirAll(s.audioDir, 0o755); err != nil {
		s.logger.Error("create audio dir", "dir", s.audioDir, "error", err)
		resp.Warning = msgSpeechFailed
		writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: resp})
		return
	}

	name := uuid.NewString() + ".mp3"
	if err := s.pipe.Speak(r.Context(), report, filepath.Join(s.audioDir, name)); err != nil {
		resp.Warning = msgSpeechFailed
	} else {
		resp.AudioURL = "/audio/" + name
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: resp})
}

var audioName = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\.mp3$`)

func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "file")
	if !audioName.MatchString(name) {
		writeError(w, http.StatusNotFound, "audio not found")
		return
	}
	path := filepath.Join(s.audioDir, name)
	if _, err := os.Stat(path); err != nil {
		writeError(w, http.StatusNotFound, "audio not found")
		return
	}
	w.Header().Set("Content-Type", "audio/mpeg")
	http.ServeFile(w, r, path)
}

// writeAnalyzeError maps pipeline errors onto HTTP statuses.
func (s *Server) writeAnalyzeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, datasource.ErrEmptyCompany):
		writeError(w, http.StatusBadRequest, msgEmptyCompany)
	case errors.Is(err, datasource.ErrFetchUnavailable):
		writeError(w, http.StatusBadGateway, msgFetchFailed)
	case errors.Is(err, narrative.ErrTrendMappingMissing):
		s.logger.Error("narrative configuration error", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		writeError(w, http.StatusGatewayTimeout, "analysis timed out")
	default:
		s.logger.Error("analysis failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func decodeCompany(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req AnalyzeRequest
	if !decodeJSON(w, r, &req) {
		return "", false
	}
	company := utils.NormalizeCompany(req.Company)
	if company == "" {
		writeError(w, http.StatusBadRequest, msgEmptyCompany)
		return "", false
	}
	return company, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
