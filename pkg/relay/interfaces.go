package relay

import (
	"context"

	"github.com/himanishpuri/EmotionRelay/pkg/models"
)

// Classifier sends audio to the remote model and returns its raw answer.
// A non-nil error means no answer was obtained at all; a non-200 status is
// reported through status with err == nil.
type Classifier interface {
	Classify(ctx context.Context, audio []byte, contentType string) (status int, body []byte, err error)
}

type Storage interface {
	SaveAnalysis(a *models.Analysis) error
	GetAnalysis(id string) (*models.Analysis, error)
	ListAnalyses(limit int) ([]models.Analysis, error)
	CountAnalyses() (int64, error)
	Close() error
}

type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	Debugf(format string, args ...any)
}
