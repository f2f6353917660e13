package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
)

// DefaultMaxUploadBytes caps a single upload request body.
const DefaultMaxUploadBytes = 100 << 20 // 100MB

// Config is the service configuration, constructed explicitly and passed to
// the handlers instead of living in package globals.
type Config struct {
	Addr           string
	UploadDir      string
	OutputDir      string
	MaxUploadBytes int64
	DPI            int
}

type Server struct {
	cfg Config
}

// NewServer validates the config and creates the staging and output dirs.
func NewServer(cfg Config) (*Server, error) {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 200
	}
	for _, dir := range []string{cfg.UploadDir, cfg.OutputDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return &Server{cfg: cfg}, nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/upload", s.handleUpload)
	mux.HandleFunc("/api/upload-batch", s.handleUploadBatch)
	mux.HandleFunc("/api/download/", s.handleDownload)
	mux.HandleFunc("/api/download-all", s.handleDownloadAll)
	return s.recoverPanic(mux)
}

// recoverPanic turns any otherwise-uncaught panic into a 500 JSON body so a
// single bad request cannot take the service down.
func (s *Server) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if e := recover(); e != nil {
				slog.Error("handler panic", "url", r.URL.Path, "panic", e)
				writeError(w, http.StatusInternalServerError, fmt.Sprintf("internal error: %v", e))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write json", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// sanitizeFilename strips any path components and replaces characters
// outside [A-Za-z0-9._-] so uploads cannot escape the staging dirs.
func sanitizeFilename(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "upload"
	}
	return out
}
