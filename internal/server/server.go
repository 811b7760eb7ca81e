// Package server exposes the transcription HTTP API: a health probe and the
// transcribe endpoint that admits jobs into the scheduler.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"subforge/internal/logging"
	"subforge/internal/scheduler"
)

// TranscriptionRequest is the transcribe endpoint's JSON body. Field names
// follow the Jellyfin webhook payload shape.
type TranscriptionRequest struct {
	Title             string `json:"title"`
	ItemID            string `json:"itemId"`
	DownloadURL       string `json:"downloadUrl,omitempty"`
	FilePath          string `json:"filePath"`
	OverwriteExisting bool   `json:"overwriteExisting"`
}

// TranscriptionResponse reports the admission decision to the caller.
type TranscriptionResponse struct {
	Accepted   bool   `json:"accepted"`
	Message    string `json:"message"`
	MappedPath string `json:"mappedPath"`
}

// Server wraps the HTTP listener around the scheduler.
type Server struct {
	bind      string
	scheduler *scheduler.Scheduler
	logger    *slog.Logger

	listener net.Listener
	server   *http.Server
}

// New constructs the API server bound to the given address.
func New(bind string, sched *scheduler.Scheduler, logger *slog.Logger) *Server {
	srv := &Server{
		bind:      bind,
		scheduler: sched,
		logger:    logging.NewComponentLogger(logger, "api-server"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", srv.handleHealth)
	mux.HandleFunc("/transcribe", srv.handleTranscribe)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

// Handler exposes the route table (for httptest).
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start begins serving and shuts down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Stop shuts the listener down, waiting briefly for in-flight requests.
func (s *Server) Stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	// Webhook payloads carry many fields beyond the ones used here; unknown
	// keys are ignored.
	var req TranscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		s.writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if strings.TrimSpace(req.ItemID) == "" {
		s.writeError(w, http.StatusBadRequest, "itemId is required")
		return
	}
	if strings.TrimSpace(req.FilePath) == "" {
		s.writeError(w, http.StatusBadRequest, "filePath is required")
		return
	}

	decision := s.scheduler.Submit(scheduler.Request{
		Title:             req.Title,
		ItemID:            req.ItemID,
		DownloadURL:       req.DownloadURL,
		FilePath:          req.FilePath,
		OverwriteExisting: req.OverwriteExisting,
	})

	switch decision.Outcome {
	case scheduler.OutcomeNotFound:
		s.writeError(w, http.StatusNotFound, "file not found after mapping: "+decision.MediaPath)
	case scheduler.OutcomeDeclined:
		s.writeJSON(w, http.StatusOK, TranscriptionResponse{
			Accepted:   false,
			Message:    "subtitle already exists, skipping: " + decision.SubtitlePath,
			MappedPath: decision.MediaPath,
		})
	default:
		s.writeJSON(w, http.StatusOK, TranscriptionResponse{
			Accepted:   true,
			Message:    "transcription started",
			MappedPath: decision.MediaPath,
		})
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
