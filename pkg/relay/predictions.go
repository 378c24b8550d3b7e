package relay

import (
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/himanishpuri/EmotionRelay/pkg/models"
)

type rawPrediction struct {
	Label string   `json:"label"`
	Score *float64 `json:"score"`
}

// ParsePredictions decodes the model's answer and ranks it by score, highest
// first. The model normally answers [{label, score}, ...] but sometimes wraps
// that list in another one; a single level of nesting is unwrapped.
func ParsePredictions(body []byte) ([]models.Prediction, error) {
	var outer []json.RawMessage
	if err := json.Unmarshal(body, &outer); err != nil {
		return nil, fmt.Errorf("decoding model response: %w", err)
	}
	if outer == nil {
		return nil, fmt.Errorf("decoding model response: expected a JSON array, got %s", bytes.TrimSpace(body))
	}

	if len(outer) > 0 && bytes.HasPrefix(bytes.TrimSpace(outer[0]), []byte("[")) {
		var inner []json.RawMessage
		if err := json.Unmarshal(outer[0], &inner); err != nil {
			return nil, fmt.Errorf("decoding nested model response: %w", err)
		}
		outer = inner
	}

	preds := make([]models.Prediction, 0, len(outer))
	for i, raw := range outer {
		var rp rawPrediction
		if err := json.Unmarshal(raw, &rp); err != nil {
			return nil, fmt.Errorf("decoding prediction %d: %w", i, err)
		}
		if rp.Score == nil {
			return nil, fmt.Errorf("prediction %d has no score", i)
		}
		preds = append(preds, models.Prediction{Label: rp.Label, Score: *rp.Score})
	}

	RankPredictions(preds)
	return preds, nil
}

// RankPredictions sorts preds in place by descending score. Ties keep their
// original order.
func RankPredictions(preds []models.Prediction) {
	slices.SortStableFunc(preds, func(a, b models.Prediction) int {
		return cmp.Compare(b.Score, a.Score)
	})
}
