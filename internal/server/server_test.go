package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"subforge/internal/config"
	"subforge/internal/scheduler"
)

type noopHandler struct{}

func (noopHandler) Handle(ctx context.Context, job scheduler.Job) {}

func testServer(t *testing.T) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.SRTSuffix = ".ja.srt"
	cfg.PathMappings = []config.PathMapping{
		{Source: "/mnt/media/", Target: dir},
	}
	sched := scheduler.New(cfg, noopHandler{}, nil)
	return New("127.0.0.1:0", sched, nil), dir
}

func postTranscribe(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/transcribe", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) TranscriptionResponse {
	t.Helper()
	var resp TranscriptionResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestHealth(t *testing.T) {
	srv, _ := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var payload map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["status"] != "ok" {
		t.Errorf("payload = %v", payload)
	}
}

func TestHealthMethodNotAllowed(t *testing.T) {
	srv, _ := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

func TestTranscribeAccepted(t *testing.T) {
	srv, dir := testServer(t)
	if err := os.WriteFile(filepath.Join(dir, "ep1.mkv"), []byte("media"), 0o644); err != nil {
		t.Fatalf("write media: %v", err)
	}

	rec := postTranscribe(t, srv, `{"title":"Show","itemId":"item-1","filePath":"/mnt/media/ep1.mkv"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}
	resp := decodeResponse(t, rec)
	if !resp.Accepted {
		t.Errorf("accepted = false: %s", resp.Message)
	}
	if resp.MappedPath != filepath.Join(dir, "ep1.mkv") {
		t.Errorf("mappedPath = %q", resp.MappedPath)
	}
}

func TestTranscribeIgnoresUnknownFields(t *testing.T) {
	srv, dir := testServer(t)
	if err := os.WriteFile(filepath.Join(dir, "ep1.mkv"), []byte("media"), 0o644); err != nil {
		t.Fatalf("write media: %v", err)
	}

	// Webhook payloads include fields beyond the ones this endpoint reads.
	body := `{"title":"Show","itemId":"item-1","filePath":"/mnt/media/ep1.mkv","ServerId":"abc","NotificationType":"PlaybackStart"}`
	rec := postTranscribe(t, srv, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}
	if resp := decodeResponse(t, rec); !resp.Accepted {
		t.Errorf("accepted = false: %s", resp.Message)
	}
}

func TestTranscribeNotFound(t *testing.T) {
	srv, dir := testServer(t)

	rec := postTranscribe(t, srv, `{"title":"Show","itemId":"item-1","filePath":"/mnt/media/missing.mkv"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404: %s", rec.Code, rec.Body)
	}
	if !strings.Contains(rec.Body.String(), filepath.Join(dir, "missing.mkv")) {
		t.Errorf("error does not name mapped path: %s", rec.Body)
	}
}

func TestTranscribeDeclined(t *testing.T) {
	srv, dir := testServer(t)
	for _, name := range []string{"ep1.mkv", "ep1.ja.srt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	rec := postTranscribe(t, srv, `{"title":"Show","itemId":"item-1","filePath":"/mnt/media/ep1.mkv"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}
	resp := decodeResponse(t, rec)
	if resp.Accepted {
		t.Error("accepted = true for existing subtitle")
	}
	if !strings.Contains(resp.Message, "already exists") {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestTranscribeOverwriteAccepted(t *testing.T) {
	srv, dir := testServer(t)
	for _, name := range []string{"ep1.mkv", "ep1.ja.srt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	rec := postTranscribe(t, srv, `{"title":"Show","itemId":"item-1","filePath":"/mnt/media/ep1.mkv","overwriteExisting":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if resp := decodeResponse(t, rec); !resp.Accepted {
		t.Errorf("accepted = false: %s", resp.Message)
	}
}

func TestTranscribeValidation(t *testing.T) {
	srv, _ := testServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing title", `{"itemId":"item-1","filePath":"/mnt/media/ep1.mkv"}`},
		{"missing itemId", `{"title":"Show","filePath":"/mnt/media/ep1.mkv"}`},
		{"missing filePath", `{"title":"Show","itemId":"item-1"}`},
		{"malformed json", `{"itemId":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := postTranscribe(t, srv, tt.body); rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400: %s", rec.Code, rec.Body)
			}
		})
	}
}

func TestTranscribeMethodNotAllowed(t *testing.T) {
	srv, _ := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/transcribe", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}
