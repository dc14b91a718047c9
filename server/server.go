// Package server exposes the breakdown pipeline over HTTP.
//
//	POST /generate   multipart: excel (required), date YYYY-MM-DD (required), logo (optional)
//	GET  /healthz
//
// The template, catalog and default logo come from the configured artifact
// paths. Input and format errors answer 400; catalog and render errors
// answer 500.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/tsawler/desglose"
	"github.com/tsawler/desglose/config"
	"github.com/tsawler/desglose/internal/logger"
	"github.com/tsawler/desglose/model"
)

// maxUpload bounds the multipart body.
const maxUpload = 32 << 20

// Server handles breakdown requests.
type Server struct {
	cfg *config.Config
	log *logger.Logger
}

// New creates a server. cfg must be valid.
func New(cfg *config.Config, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	return &Server{cfg: cfg, log: log}
}

// Routes returns the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Post("/generate", s.handleGenerate)
	return r
}

// ListenAndServe serves on the configured address until ctx is done, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("server starting", "addr", s.cfg.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err, ok := <-errc:
		if ok {
			return fmt.Errorf("listen %s: %w", s.cfg.Listen, err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.log.Info("server stopped")
	return nil
}

// handleGenerate builds the breakdown PDF of an uploaded spreadsheet.
// POST /generate
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	runID := uuid.NewString()
	log := s.log.With("run_id", runID)
	w.Header().Set("X-Run-ID", runID)

	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid multipart body: %w", err))
		return
	}

	excel, err := formFile(r, "excel")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if excel == nil {
		writeError(w, http.StatusBadRequest, model.MissingArtifact("excel"))
		return
	}

	date, err := time.Parse(time.DateOnly, r.FormValue("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("date must be YYYY-MM-DD, got %q", r.FormValue("date")))
		return
	}

	logo, err := formFile(r, "logo")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	p := desglose.Open(excel).
		Config(s.cfg).
		Logger(log.Zap()).
		Date(date)
	if logo != nil {
		p = p.Logo(logo)
	}

	pdf, warnings, err := p.Build()
	if err != nil {
		code := statusFor(err)
		if code >= http.StatusInternalServerError {
			log.Error("generate failed", "error", err)
		} else {
			log.Info("generate rejected", "error", err)
		}
		writeError(w, code, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="desglose.pdf"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.Header().Set("X-Warnings", strconv.Itoa(len(warnings)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		log.Warn("writing response", "error", err)
	}
}

// statusFor maps the error taxonomy to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrInput), errors.Is(err, model.ErrFormat):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// formFile returns the content of an uploaded file, or nil when the field
// is absent.
func formFile(r *http.Request, field string) ([]byte, error) {
	f, _, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", field, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", field, err)
	}
	return data, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
