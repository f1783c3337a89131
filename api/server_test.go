package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/seenimoa/newsvani/internal/analysis/sentiment"
	"github.com/seenimoa/newsvani/internal/config"
	"github.com/seenimoa/newsvani/internal/datasource"
	"github.com/seenimoa/newsvani/internal/pipeline"
	"github.com/seenimoa/newsvani/internal/speech"
	"github.com/seenimoa/newsvani/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Test Helpers
// ════════════════════════════════════════════════════════════════════

type stubFetcher struct {
	frags []models.Fragment
	err   error
}

func (s stubFetcher) Name() string { return "stub" }

func (s stubFetcher) Fetch(context.Context, string, int) ([]models.Fragment, error) {
	return s.frags, s.err
}

type stubTranslator struct{ err error }

func (stubTranslator) Name() string { return "stub" }

func (s stubTranslator) Translate(_ context.Context, text, _ string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "हिंदी: " + text, nil
}

type fileSynth struct{ err error }

func (f fileSynth) Synthesize(_ context.Context, text, _, path string) error {
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(path, []byte("ID3"+text), 0o644)
}

var testFragments = []models.Fragment{
	{Title: "Acme rallies", Link: "https://www.reuters.com/acme", Snippet: "Acme shares rally on strong growth. More inside."},
	{Title: "Acme probe", Link: "https://www.livemint.com/acme", Snippet: "Regulators open a fraud probe into Acme."},
	{Title: "Acme board", Link: "https://www.thehindu.com/acme"},
}

type serverOpts struct {
	fetcher     datasource.Fetcher
	translator  speech.Translator
	synthesizer speech.Synthesizer
}

func testServer(t *testing.T, o serverOpts) *Server {
	t.Helper()
	if o.fetcher == nil {
		o.fetcher = stubFetcher{frags: testFragments}
	}
	if o.translator == nil {
		o.translator = stubTranslator{}
	}
	if o.synthesizer == nil {
		o.synthesizer = fileSynth{}
	}

	cfg := &config.Config{}
	cfg.Speech.OutputDir = t.TempDir()
	cfg.Speech.Translator = "google"

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := NewWSHub()
	go hub.Run()

	p, err := pipeline.New(pipeline.Config{
		Fetcher:     o.fetcher,
		Classifier:  sentiment.NewLexicon(),
		Translator:  o.translator,
		Synthesizer: o.synthesizer,
		Logger:      logger,
		Progress:    hub.Progress,
	})
	if err != nil {
		t.Fatalf("pipeline.New: %v", err)
	}
	return newServer(cfg, p, hub, logger)
}

func do(t *testing.T, srv *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

// decodeData re-decodes the envelope's data field into v.
func decodeData(t *testing.T, resp APIResponse, v interface{}) {
	t.Helper()
	data, err := json.Marshal(resp.Data)
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

// ════════════════════════════════════════════════════════════════════
// Health / UI
// ════════════════════════════════════════════════════════════════════

func TestHealth(t *testing.T) {
	srv := testServer(t, serverOpts{})
	for _, path := range []string{"/health", "/api/v1/health"} {
		rec := do(t, srv, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status %d", path, rec.Code)
		}
		resp := decodeResponse(t, rec)
		data, _ := resp.Data.(map[string]interface{})
		if !resp.Success || data["status"] != "ok" {
			t.Errorf("%s: %+v", path, resp)
		}
	}
}

func TestServesForm(t *testing.T) {
	srv := testServer(t, serverOpts{})
	for _, path := range []string{"/", "/some/client/route"} {
		rec := do(t, srv, http.MethodGet, path, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status %d", path, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Analyze News") {
			t.Errorf("%s: form not served", path)
		}
	}
}

func TestServeUIDisabled(t *testing.T) {
	srv := testServer(t, serverOpts{})
	srv.SetServeUI(false)
	if rec := do(t, srv, http.MethodGet, "/", nil); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 with UI disabled, got %d", rec.Code)
	}
}

// ════════════════════════════════════════════════════════════════════
// Analyze
// ════════════════════════════════════════════════════════════════════

func TestAnalyze(t *testing.T) {
	srv := testServer(t, serverOpts{})
	rec := do(t, srv, http.MethodPost, "/api/v1/analyze", AnalyzeRequest{Company: " Acme  Corp "})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	var report pipeline.Report
	decodeData(t, decodeResponse(t, rec), &report)

	if report.Company != "Acme Corp" {
		t.Errorf("company = %q", report.Company)
	}
	if len(report.Articles) != 3 {
		t.Fatalf("articles = %d", len(report.Articles))
	}
	if report.Articles[0].Summary != "Acme shares rally on strong growth." {
		t.Errorf("summary = %q", report.Articles[0].Summary)
	}
	if report.Articles[2].Summary != "No summary available." {
		t.Errorf("missing snippet summary = %q", report.Articles[2].Summary)
	}
	c := report.Summary.SentimentCounts
	if c.Positive != 1 || c.Negative != 1 || c.Neutral != 1 || report.Summary.OverallTrend != models.TrendNeutral {
		t.Errorf("summary = %+v", report.Summary)
	}
	if len(strings.Split(report.Narrative, "\n")) != 4 {
		t.Errorf("narrative = %q", report.Narrative)
	}
}

func TestAnalyzeErrors(t *testing.T) {
	tests := []struct {
		name    string
		fetcher datasource.Fetcher
		body    interface{}
		status  int
		msg     string
	}{
		{"invalid body", nil, "{not json", http.StatusBadRequest, "invalid request body"},
		{"empty company", nil, AnalyzeRequest{Company: "   "}, http.StatusBadRequest, msgEmptyCompany},
		{
			"fetch failure",
			stubFetcher{err: fmt.Errorf("bing: %w", datasource.ErrFetchUnavailable)},
			AnalyzeRequest{Company: "Acme"},
			http.StatusBadGateway, msgFetchFailed,
		},
		{
			"empty company from fetcher",
			stubFetcher{err: datasource.ErrEmptyCompany},
			AnalyzeRequest{Company: "Acme"},
			http.StatusBadRequest, msgEmptyCompany,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := testServer(t, serverOpts{fetcher: tt.fetcher})
			rec := do(t, srv, http.MethodPost, "/api/v1/analyze", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			resp := decodeResponse(t, rec)
			if resp.Success || resp.Error != tt.msg {
				t.Errorf("response = %+v", resp)
			}
		})
	}
}

func TestAnalyzeEmptyBatch(t *testing.T) {
	srv := testServer(t, serverOpts{fetcher: stubFetcher{frags: []models.Fragment{}}})
	rec := do(t, srv, http.MethodPost, "/api/v1/analyze", AnalyzeRequest{Company: "Acme"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var report pipeline.Report
	decodeData(t, decodeResponse(t, rec), &report)
	if report.Summary.TotalArticles != 0 || report.Summary.OverallTrend != models.TrendNeutral {
		t.Errorf("summary = %+v", report.Summary)
	}
}

// ════════════════════════════════════════════════════════════════════
// Speak / audio
// ════════════════════════════════════════════════════════════════════

func TestSpeakAndServeAudio(t *testing.T) {
	srv := testServer(t, serverOpts{})
	rec := do(t, srv, http.MethodPost, "/api/v1/speak", SpeakRequest{Company: "Acme"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	var sr SpeakResponse
	decodeData(t, decodeResponse(t, rec), &sr)
	if sr.Warning != "" || !strings.HasPrefix(sr.AudioURL, "/audio/") || !strings.HasSuffix(sr.AudioURL, ".mp3") {
		t.Fatalf("speak response = %+v", sr)
	}

	audio := do(t, srv, http.MethodGet, sr.AudioURL, nil)
	if audio.Code != http.StatusOK {
		t.Fatalf("audio status %d", audio.Code)
	}
	if ct := audio.Header().Get("Content-Type"); ct != "audio/mpeg" {
		t.Errorf("content type = %q", ct)
	}
	if !strings.HasPrefix(audio.Body.String(), "ID3हिंदी: ") {
		t.Errorf("unexpected audio body %q", audio.Body.String())
	}
}

func TestSpeakFailureIsWarning(t *testing.T) {
	tests := []struct {
		name string
		opts serverOpts
	}{
		{"translation", serverOpts{translator: stubTranslator{err: speech.ErrTranslation}}},
		{"synthesis", serverOpts{synthesizer: fileSynth{err: speech.ErrSynthesis}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := testServer(t, tt.opts)
			rec := do(t, srv, http.MethodPost, "/api/v1/speak", SpeakRequest{Company: "Acme"})
			if rec.Code != http.StatusOK {
				t.Fatalf("status %d", rec.Code)
			}
			var sr SpeakResponse
			decodeData(t, decodeResponse(t, rec), &sr)
			if sr.Warning != msgSpeechFailed || sr.AudioURL != "" || sr.Narrative == "" {
				t.Errorf("speak response = %+v", sr)
			}
		})
	}
}

type countingFetcher struct {
	calls atomic.Int32
	frags []models.Fragment
}

func (c *countingFetcher) Name() string { return "counting" }

func (c *countingFetcher) Fetch(context.Context, string, int) ([]models.Fragment, error) {
	c.calls.Add(1)
	return c.frags, nil
}

func TestSpeakUsesShownNarrative(t *testing.T) {
	f := &countingFetcher{frags: testFragments}
	srv := testServer(t, serverOpts{fetcher: f})

	shown := "कुल 3 लेख\n1. Acme shares rally on strong growth."
	rec := do(t, srv, http.MethodPost, "/api/v1/speak", SpeakRequest{Company: " Acme ", Narrative: shown})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var sr SpeakResponse
	decodeData(t, decodeResponse(t, rec), &sr)
	if sr.Narrative != shown || sr.Company != "Acme" || sr.Warning != "" {
		t.Fatalf("speak response = %+v", sr)
	}
	if n := f.calls.Load(); n != 0 {
		t.Errorf("speaking a supplied narrative fetched news %d times", n)
	}

	audio := do(t, srv, http.MethodGet, sr.AudioURL, nil)
	if want := "ID3हिंदी: " + shown; audio.Body.String() != want {
		t.Errorf("audio body = %q, want %q", audio.Body.String(), want)
	}
}

func TestSpeakWithoutNarrativeAnalyzes(t *testing.T) {
	f := &countingFetcher{frags: testFragments}
	srv := testServer(t, serverOpts{fetcher: f})

	rec := do(t, srv, http.MethodPost, "/api/v1/speak", SpeakRequest{Company: "Acme", Narrative: "  "})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if n := f.calls.Load(); n != 1 {
		t.Errorf("fetch calls = %d, want 1", n)
	}
}

func TestSpeakRequiresCompany(t *testing.T) {
	srv := testServer(t, serverOpts{})
	rec := do(t, srv, http.MethodPost, "/api/v1/speak", SpeakRequest{Narrative: "text"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
	if resp := decodeResponse(t, rec); resp.Error != msgEmptyCompany {
		t.Errorf("error = %q", resp.Error)
	}
}

func TestAudioRejectsBadNames(t *testing.T) {
	srv := testServer(t, serverOpts{})
	if err := os.MkdirAll(srv.audioDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(srv.audioDir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	for _, path := range []string{
		"/audio/notes.txt",
		"/audio/..%2Fsecret.mp3",
		"/audio/123e4567-e89b-12d3-a456-426614174000.mp3",
	} {
		if rec := do(t, srv, http.MethodGet, path, nil); rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", path, rec.Code)
		}
	}
}

// ════════════════════════════════════════════════════════════════════
// Config
// ════════════════════════════════════════════════════════════════════

func TestGetConfigHidesKey(t *testing.T) {
	srv := testServer(t, serverOpts{})
	srv.cfg.Speech.GeminiKey = "AIzaSecretKey123456"

	rec := do(t, srv, http.MethodGet, "/api/v1/config", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "AIzaSecretKey123456") {
		t.Error("config response leaks the Gemini key")
	}

	rec = do(t, srv, http.MethodGet, "/api/v1/config/keys", nil)
	var keys []config.KeyStatus
	decodeData(t, decodeResponse(t, rec), &keys)
	if len(keys) != 1 || !keys[0].IsSet || keys[0].Masked != "AIz...456" {
		t.Errorf("keys = %+v", keys)
	}
}

func TestMergeConfig(t *testing.T) {
	dst := &config.Config{}
	dst.Fetch.Provider = "auto"
	dst.Fetch.NumArticles = 10
	dst.API.Port = 8080

	src := &config.Config{}
	src.Fetch.Provider = "rss"
	src.Analysis.ExtendedSummary = true
	src.Analysis.Classifier = "lexicon"
	src.Logging.Level = "debug"

	mergeConfig(dst, src)
	if dst.Fetch.Provider != "rss" || dst.Fetch.NumArticles != 10 || dst.API.Port != 8080 {
		t.Errorf("fetch/api = %+v %+v", dst.Fetch, dst.API)
	}
	if !dst.Analysis.ExtendedSummary || dst.Analysis.Classifier != "lexicon" || dst.Logging.Level != "debug" {
		t.Errorf("analysis/logging = %+v %+v", dst.Analysis, dst.Logging)
	}
}

// ════════════════════════════════════════════════════════════════════
// WebSocket
// ════════════════════════════════════════════════════════════════════

func TestWebSocketStreamsProgress(t *testing.T) {
	srv := testServer(t, serverOpts{})
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for srv.wsHub.ClientCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("client never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	resp, err := http.Post(ts.URL+"/api/v1/analyze", "application/json", strings.NewReader(`{"company":"Acme"}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var stages []string
	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read: %v (stages so far %v)", err, stages)
		}
		if msg.Type == "progress" {
			data, _ := msg.Data.(map[string]interface{})
			stage, _ := data["stage"].(string)
			stages = append(stages, stage)
			continue
		}
		if msg.Type == "analysis_complete" {
			break
		}
	}
	if len(stages) == 0 || stages[0] != pipeline.StageFetch {
		t.Errorf("stages = %v", stages)
	}
}

func TestWSHubBroadcastDropsWhenFull(t *testing.T) {
	hub := NewWSHub() // not running: the queue fills up
	for i := 0; i < 300; i++ {
		hub.Broadcast(WSMessage{Type: "progress"})
	}
	if hub.ClientCount() != 0 {
		t.Errorf("clients = %d", hub.ClientCount())
	}
}

func TestWSHubReplyAfterSlowClientDropped(t *testing.T) {
	hub := NewWSHub()
	go hub.Run()

	client := &WSClient{hub: hub, send: make(chan WSMessage, 1)}
	hub.Register(client)
	waitClients(t, hub, 1)
	client.send <- WSMessage{Type: "progress"} // queue now full

	hub.Broadcast(WSMessage{Type: "progress"})
	waitClients(t, hub, 0)

	if hub.Reply(client, WSMessage{Type: "pong"}) {
		t.Error("reply to a dropped client should be refused")
	}
	if _, ok := <-client.send; !ok {
		t.Fatal("buffered message lost")
	}
	if _, ok := <-client.send; ok {
		t.Error("send channel should be closed after the drop")
	}
}

func TestWSHubReplyToLiveClient(t *testing.T) {
	hub := NewWSHub()
	go hub.Run()

	client := &WSClient{hub: hub, send: make(chan WSMessage, 1)}
	hub.Register(client)
	waitClients(t, hub, 1)
	if !hub.Reply(client, WSMessage{Type: "pong"}) {
		t.Fatal("reply to a live client should be queued")
	}
	if msg := <-client.send; msg.Type != "pong" {
		t.Errorf("got %q, want pong", msg.Type)
	}
}

func waitClients(t *testing.T, hub *WSHub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("clients = %d, want %d", hub.ClientCount(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
