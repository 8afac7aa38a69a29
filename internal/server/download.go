package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/trackdl/internal/models"
	"github.com/desertthunder/trackdl/internal/repositories"
	"github.com/desertthunder/trackdl/internal/shared"
	"github.com/desertthunder/trackdl/internal/tasks"
)

// DownloadHandler serves the download API. A POST to /api/download runs one
// acquisition and streams its progress events back as newline-delimited
// JSON; the terminal complete event carries a data URL the client can save
// directly. Closing the connection cancels the acquisition.
type DownloadHandler struct {
	engine  *tasks.Engine
	history *repositories.DownloadRepository
	logger  *log.Logger
}

// NewDownloadHandler creates a handler over the given engine. history may be
// nil, disabling persistence.
func NewDownloadHandler(engine *tasks.Engine, history *repositories.DownloadRepository, logger *log.Logger) *DownloadHandler {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &DownloadHandler{engine: engine, history: history, logger: logger}
}

// Routes implements [Handler].
func (h *DownloadHandler) Routes() []string {
	return []string{"/api/download", "/health"}
}

// ServeHTTP dispatches to the endpoint handlers.
func (h *DownloadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/health":
		h.handleHealth(w, r)
	case "/api/download":
		h.handleDownload(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *DownloadHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleDownload runs one acquisition and streams [tasks.ProgressEvent]
// records as NDJSON. The request context is passed through to the engine, so
// a client disconnect aborts the in-flight strategy.
func (h *DownloadHandler) handleDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req models.DownloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("invalid request body: %v", err)})
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	events := make(chan tasks.ProgressEvent, 64)
	type outcome struct {
		res *tasks.Result
		err error
	}
	resCh := make(chan outcome, 1)
	go func() {
		res, err := h.engine.Run(r.Context(), req, events)
		close(events)
		resCh <- outcome{res: res, err: err}
	}()

	enc := json.NewEncoder(w)
	for ev := range events {
		if err := enc.Encode(ev); err != nil {
			// Client went away; the canceled context stops the engine.
			h.logger.Debug("stream write failed", "error", err)
			continue
		}
		flusher.Flush()
	}

	out := <-resCh
	h.record(req, out.res, out.err)
}

// record persists the history row for a finished request. Failures to write
// history are logged, never surfaced to the client.
func (h *DownloadHandler) record(req models.DownloadRequest, res *tasks.Result, runErr error) {
	if h.history == nil {
		return
	}
	if err := h.history.Create(tasks.HistoryRecord(req, res, runErr)); err != nil {
		h.logger.Warn("failed to record download history", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		shared.NewLogger(nil).Warn("failed to encode response", "error", err)
	}
}

// Serve runs the HTTP server until ctx is canceled, then shuts down
// gracefully with a short drain window.
func Serve(ctx context.Context, addr string, handler http.Handler, logger *log.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	}
}
