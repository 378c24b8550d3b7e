package models

import "time"

// Prediction is one label/score pair returned by the classification model.
type Prediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Analysis is the history record kept for a single /analyze request.
type Analysis struct {
	ID              string    `json:"id"`               // UUID
	Filename        string    `json:"filename"`         // client-supplied name
	Ext             string    `json:"ext"`              // extension used for staging
	SizeBytes       int64     `json:"size_bytes"`       // staged upload size
	Status          int       `json:"status"`           // HTTP status returned to the caller
	TopLabel        string    `json:"top_label,omitempty"`
	TopScore        float64   `json:"top_score,omitempty"`
	PredictionCount int       `json:"prediction_count"`
	Error           string    `json:"error,omitempty"`
	AudioDurationMs int       `json:"audio_duration_ms,omitempty"` // 0 unless the WAV probe succeeded
	ElapsedMs       int64     `json:"elapsed_ms"`
	CreatedAt       time.Time `json:"created_at"`
}
