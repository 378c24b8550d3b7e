package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/himanishpuri/EmotionRelay/pkg/logger"
	"github.com/himanishpuri/EmotionRelay/pkg/models"
	"github.com/himanishpuri/EmotionRelay/pkg/relay"
	"github.com/himanishpuri/EmotionRelay/pkg/relay/storage"
)

// multipart parts above this size spill to disk while parsing
const maxFormMemory = 10 << 20

// Server encapsulates the HTTP server and its dependencies
type Server struct {
	relay  *relay.Relay
	config *ServerConfig
	log    relay.Logger
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	ModelURL       string
	CredentialSet  bool
	MaxUploadBytes int64
	AllowedOrigins []string
}

// NewServer creates a new server instance
func NewServer(r *relay.Relay, config *ServerConfig) *Server {
	return &Server{
		relay:  r,
		config: config,
		log:    logger.GetLogger(),
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Errorf("Failed to encode JSON response: %v", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, statusCode int, message string) {
	s.respondJSON(w, statusCode, ErrorResponse{Error: message})
}

func (s *Server) respondRelayError(w http.ResponseWriter, err error) {
	rerr := relay.AsError(err)
	s.respondError(w, rerr.Status, rerr.Message)
}

// handleRoot handles GET /
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"service": "EmotionRelay",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"health":   "GET /health",
			"metrics":  "GET /api/health/metrics",
			"analyze":  "POST /analyze",
			"history":  "GET /api/analyses",
			"analysis": "GET /api/analyses/{id}",
		},
	})
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// handleMetrics handles GET /api/health/metrics
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	resp := MetricsResponse{
		Status:         "healthy",
		ModelURL:       s.config.ModelURL,
		CredentialSet:  s.config.CredentialSet,
		MaxUploadBytes: s.config.MaxUploadBytes,
	}

	if st := s.relay.Storage(); st != nil {
		resp.HistoryEnabled = true
		n, err := st.CountAnalyses()
		if err != nil {
			s.log.Errorf("Failed to count analyses: %v", err)
			resp.Status = "degraded"
		}
		resp.AnalysisCount = n
	}

	s.respondJSON(w, http.StatusOK, resp)
}

// handleAnalyze handles POST /analyze (multipart upload, field "audio")
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	// the remote call is not abandoned when the client goes away
	ctx := context.WithoutCancel(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, http.StatusRequestEntityTooLarge, "Audio file too large")
			return
		}
		s.log.Debugf("Failed to parse form: %v", err)
		s.respondRelayError(w, relay.ErrMissingFile)
		return
	}
	defer r.MultipartForm.RemoveAll()

	upload, err := uploadFromForm(r)
	if err != nil {
		s.respondRelayError(w, err)
		return
	}
	if c, ok := upload.Body.(interface{ Close() error }); ok {
		defer c.Close()
	}

	preds, err := s.relay.Analyze(ctx, upload)
	if err != nil {
		s.respondRelayError(w, err)
		return
	}

	if preds == nil {
		preds = []models.Prediction{}
	}
	s.respondJSON(w, http.StatusOK, AnalyzeResponse{Predictions: preds})
}

// uploadFromForm pulls the "audio" part out of a parsed multipart form.
// Browsers send an empty filename when no file was chosen; such a part is
// parsed as a plain value and becomes an upload without a name.
func uploadFromForm(r *http.Request) (relay.Upload, error) {
	file, header, err := r.FormFile("audio")
	if err == nil {
		return relay.Upload{Filename: header.Filename, Body: file}, nil
	}

	if vals, ok := r.MultipartForm.Value["audio"]; ok {
		return relay.Upload{Body: strings.NewReader(strings.Join(vals, ""))}, nil
	}
	return relay.Upload{}, relay.ErrMissingFile
}

// handleAnalyses handles GET /api/analyses
func (s *Server) handleAnalyses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	st := s.relay.Storage()
	if st == nil {
		s.respondError(w, http.StatusNotFound, "history disabled")
		return
	}

	limit := DefaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			s.respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, MaxHistoryLimit)
	}

	recs, err := st.ListAnalyses(limit)
	if err != nil {
		s.log.Errorf("Failed to list analyses: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to list analyses")
		return
	}

	dtos := make([]AnalysisDTO, len(recs))
	for i, a := range recs {
		dtos[i] = toAnalysisDTO(a)
	}
	s.respondJSON(w, http.StatusOK, ListAnalysesResponse{Analyses: dtos, Count: len(dtos)})
}

// handleAnalysis handles GET /api/analyses/{id}
func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/analyses/")
	if id == "" || strings.Contains(id, "/") {
		s.respondError(w, http.StatusBadRequest, "Invalid analysis ID")
		return
	}

	st := s.relay.Storage()
	if st == nil {
		s.respondError(w, http.StatusNotFound, "history disabled")
		return
	}

	a, err := st.GetAnalysis(id)
	if errors.Is(err, storage.ErrNotFound) {
		s.respondError(w, http.StatusNotFound, "Analysis not found")
		return
	}
	if err != nil {
		s.log.Errorf("Failed to get analysis %s: %v", id, err)
		s.respondError(w, http.StatusInternalServerError, "Failed to get analysis")
		return
	}

	s.respondJSON(w, http.StatusOK, toAnalysisDTO(*a))
}
