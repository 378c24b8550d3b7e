package main

import (
	"time"

	"github.com/himanishpuri/EmotionRelay/pkg/models"
)

// Limits for GET /api/analyses
const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 500
)

// AnalyzeResponse is the success body of POST /analyze
type AnalyzeResponse struct {
	Predictions []models.Prediction `json:"predictions"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

// AnalysisDTO represents one history record in API responses
type AnalysisDTO struct {
	ID              string    `json:"id"`
	Filename        string    `json:"filename"`
	Status          int       `json:"status"`
	TopLabel        string    `json:"top_label,omitempty"`
	TopScore        float64   `json:"top_score,omitempty"`
	PredictionCount int       `json:"prediction_count"`
	Error           string    `json:"error,omitempty"`
	SizeBytes       int64     `json:"size_bytes"`
	AudioDurationMs int       `json:"audio_duration_ms,omitempty"`
	ElapsedMs       int64     `json:"elapsed_ms"`
	CreatedAt       time.Time `json:"created_at"`
}

func toAnalysisDTO(a models.Analysis) AnalysisDTO {
	return AnalysisDTO{
		ID:              a.ID,
		Filename:        a.Filename,
		Status:          a.Status,
		TopLabel:        a.TopLabel,
		TopScore:        a.TopScore,
		PredictionCount: a.PredictionCount,
		Error:           a.Error,
		SizeBytes:       a.SizeBytes,
		AudioDurationMs: a.AudioDurationMs,
		ElapsedMs:       a.ElapsedMs,
		CreatedAt:       a.CreatedAt,
	}
}

// ListAnalysesResponse is the response for GET /api/analyses
type ListAnalysesResponse struct {
	Analyses []AnalysisDTO `json:"analyses"`
	Count    int           `json:"count"`
}

// MetricsResponse provides server health and history metrics
type MetricsResponse struct {
	Status         string `json:"status"`
	ModelURL       string `json:"model_url"`
	CredentialSet  bool   `json:"credential_set"`
	HistoryEnabled bool   `json:"history_enabled"`
	AnalysisCount  int64  `json:"analysis_count"`
	MaxUploadBytes int64  `json:"max_upload_bytes"`
}
