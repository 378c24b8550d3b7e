package relay

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/himanishpuri/EmotionRelay/pkg/logger"
	"github.com/himanishpuri/EmotionRelay/pkg/models"
	"github.com/himanishpuri/EmotionRelay/pkg/relay/audio"
	"github.com/himanishpuri/EmotionRelay/pkg/utils"
)

// Upload is one audio file received from a client.
type Upload struct {
	Filename string
	Body     io.Reader
}

// Relay forwards uploads to the remote classifier and ranks its answer.
type Relay struct {
	classifier Classifier
	storage    Storage
	log        Logger
	config     *Config
}

func New(opts ...Option) (*Relay, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.Logger == nil {
		cfg.Logger = logger.GetLogger()
	}
	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}
	if cfg.ModelURL == "" && cfg.Classifier == nil {
		return nil, fmt.Errorf("model URL is required")
	}

	cl := cfg.Classifier
	if cl == nil {
		cl = NewHTTPClassifier(cfg)
	}

	return &Relay{
		classifier: cl,
		storage:    cfg.Storage,
		log:        cfg.Logger,
		config:     cfg,
	}, nil
}

// Storage returns the history backend, or nil when history is disabled.
func (r *Relay) Storage() Storage {
	return r.storage
}

func (r *Relay) Close() error {
	if r.storage == nil {
		return nil
	}
	return r.storage.Close()
}

// Analyze stages the upload, sends it to the classifier and returns the
// predictions ranked by score. Failures are always *Error. The staged file
// is removed before Analyze returns, whatever the outcome.
func (r *Relay) Analyze(ctx context.Context, up Upload) ([]models.Prediction, error) {
	rec := &models.Analysis{
		ID:        utils.GenerateUUID(),
		Filename:  up.Filename,
		Ext:       utils.AudioExt(up.Filename),
		CreatedAt: time.Now(),
	}

	preds, err := r.analyze(ctx, up, rec)

	rec.ElapsedMs = time.Since(rec.CreatedAt).Milliseconds()
	if err != nil {
		rerr := AsError(err)
		rec.Status = rerr.Status
		rec.Error = rerr.Message
		r.log.Warnf("analysis %s of %q failed (%s, %d): %s", rec.ID, up.Filename, rerr.Kind, rerr.Status, rerr.Message)
		r.record(rec)
		return nil, rerr
	}

	rec.Status = http.StatusOK
	rec.PredictionCount = len(preds)
	if len(preds) > 0 {
		rec.TopLabel = preds[0].Label
		rec.TopScore = preds[0].Score
		r.log.Infof("analysis %s of %q: %s (%.3f) in %dms", rec.ID, up.Filename, rec.TopLabel, rec.TopScore, rec.ElapsedMs)
	} else {
		r.log.Infof("analysis %s of %q: no predictions in %dms", rec.ID, up.Filename, rec.ElapsedMs)
	}
	r.record(rec)
	return preds, nil
}

func (r *Relay) analyze(ctx context.Context, up Upload, rec *models.Analysis) (preds []models.Prediction, err error) {
	defer func() {
		if p := recover(); p != nil {
			preds = nil
			err = Unexpected(fmt.Errorf("panic: %v", p))
		}
	}()

	if up.Body == nil {
		return nil, ErrMissingFile
	}
	if up.Filename == "" {
		return nil, ErrNoFileSelected
	}
	if r.config.Token == "" {
		return nil, ErrMissingCredential
	}

	path, size, release, err := utils.StageTempFile(r.config.TempDir, rec.Ext, up.Body)
	if err != nil {
		return nil, Unexpected(err)
	}
	defer func() {
		if rerr := release(); rerr != nil {
			r.log.Debugf("removing %s: %v", filepath.Base(path), rerr)
		}
	}()
	rec.SizeBytes = size

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Unexpected(fmt.Errorf("reading staged upload: %w", err))
	}

	if rec.Ext == ".wav" {
		if info, perr := audio.ProbeWAV(data); perr == nil {
			rec.AudioDurationMs = info.DurationMs()
			r.log.Debugf("analysis %s: %d Hz, %d ch, %s", rec.ID, info.SampleRate, info.Channels, info.Duration)
		}
	}

	status, body, err := r.classifier.Classify(ctx, data, utils.AudioContentType(rec.Ext))
	if err != nil {
		return nil, Unexpected(err)
	}
	if status != http.StatusOK {
		return nil, RemoteError(status, body)
	}

	preds, err = ParsePredictions(body)
	if err != nil {
		return nil, Unexpected(err)
	}
	return preds, nil
}

func (r *Relay) record(rec *models.Analysis) {
	if r.storage == nil {
		return
	}
	if err := r.storage.SaveAnalysis(rec); err != nil {
		r.log.Warnf("saving analysis %s: %v", rec.ID, err)
	}
}
