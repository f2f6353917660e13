package main

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"ab1png/pkg/chromatogram"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "service running",
	})
}

func (s *Server) requestDPI(r *http.Request) int {
	if v := r.FormValue("dpi"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return s.cfg.DPI
}

func saveUpload(src multipart.File, dst string) error {
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, "no file selected")
		return
	}
	if !chromatogram.IsTraceFile(header.Filename) {
		writeError(w, http.StatusBadRequest, "unsupported file type, expect .ab1 or .abi")
		return
	}

	name := sanitizeFilename(header.Filename)
	staged := filepath.Join(s.cfg.UploadDir, name)
	if err := saveUpload(file, staged); err != nil {
		writeError(w, http.StatusInternalServerError, "save upload: "+err.Error())
		return
	}

	res := chromatogram.Convert(staged, s.cfg.OutputDir, chromatogram.Options{DPI: s.requestDPI(r)})
	if !res.Ok {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("conversion failed: %v", res.Err))
		return
	}

	out := filepath.Base(res.Output)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"filename":     out,
		"download_url": "/api/download/" + out,
	})
}

type batchItem struct {
	Filename    string `json:"filename"`
	Success     bool   `json:"success"`
	OutputName  string `json:"output_name,omitempty"`
	DownloadURL string `json:"download_url,omitempty"`
	Error       string `json:"error,omitempty"`
}

func (s *Server) handleUploadBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid upload: "+err.Error())
		return
	}
	files := r.MultipartForm.File["files[]"]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "no files uploaded")
		return
	}

	tempDir, err := os.MkdirTemp("", "ab1png-batch-")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "staging dir: "+err.Error())
		return
	}
	defer os.RemoveAll(tempDir)

	dpi := s.requestDPI(r)
	var items []batchItem
	var success int
	for _, header := range files {
		if header.Filename == "" {
			continue
		}
		if !chromatogram.IsTraceFile(header.Filename) {
			items = append(items, batchItem{Filename: header.Filename, Error: "unsupported file type"})
			continue
		}

		src, err := header.Open()
		if err != nil {
			items = append(items, batchItem{Filename: header.Filename, Error: err.Error()})
			continue
		}
		staged := filepath.Join(tempDir, sanitizeFilename(header.Filename))
		err = saveUpload(src, staged)
		src.Close()
		if err != nil {
			items = append(items, batchItem{Filename: header.Filename, Error: err.Error()})
			continue
		}

		res := chromatogram.Convert(staged, s.cfg.OutputDir, chromatogram.Options{DPI: dpi})
		if !res.Ok {
			items = append(items, batchItem{Filename: header.Filename, Error: res.Err.Error()})
			continue
		}
		out := filepath.Base(res.Output)
		items = append(items, batchItem{
			Filename:    header.Filename,
			Success:     true,
			OutputName:  out,
			DownloadURL: "/api/download/" + out,
		})
		success++
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"message":       fmt.Sprintf("batch done, converted %d/%d", success, len(items)),
		"results":       items,
		"success_count": success,
		"total_count":   len(items),
	})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/api/download/")
	if name == "" || name != sanitizeFilename(name) {
		writeError(w, http.StatusBadRequest, "invalid file name")
		return
	}

	path := filepath.Join(s.cfg.OutputDir, name)
	if _, err := os.Stat(path); err != nil {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}

	w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(name))
	http.ServeFile(w, r, path)
}

func (s *Server) handleDownloadAll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var req struct {
		Filenames []string `json:"filenames"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req.Filenames) == 0 {
		writeError(w, http.StatusBadRequest, "no files to download")
		return
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	var added int
	for _, name := range req.Filenames {
		name = sanitizeFilename(name)
		path := filepath.Join(s.cfg.OutputDir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			slog.Warn("zip skip", "file", name, "err", err)
			continue
		}
		entry, err := zw.Create(name)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "zip: "+err.Error())
			return
		}
		if _, err := entry.Write(data); err != nil {
			writeError(w, http.StatusInternalServerError, "zip: "+err.Error())
			return
		}
		added++
	}
	if err := zw.Close(); err != nil {
		writeError(w, http.StatusInternalServerError, "zip: "+err.Error())
		return
	}
	if added == 0 {
		writeError(w, http.StatusNotFound, "none of the requested files exist")
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="ab1_converted.zip"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("write zip", "err", err)
	}
}
