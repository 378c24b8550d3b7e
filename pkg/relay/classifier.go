package relay

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
)

// HTTPClassifier posts raw audio to a hosted inference endpoint.
type HTTPClassifier struct {
	url           string
	token         string
	client        *http.Client
	retryAttempts int
	retryDelay    time.Duration
	log           Logger
}

func NewHTTPClassifier(cfg *Config) *HTTPClassifier {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	return &HTTPClassifier{
		url:           cfg.ModelURL,
		token:         cfg.Token,
		client:        client,
		retryAttempts: cfg.RetryAttempts,
		retryDelay:    cfg.RetryDelay,
		log:           cfg.Logger,
	}
}

func (c *HTTPClassifier) Classify(ctx context.Context, audio []byte, contentType string) (int, []byte, error) {
	if c.retryAttempts <= 0 {
		return c.post(ctx, audio, contentType)
	}

	delay := c.retryDelay
	if delay <= 0 {
		delay = time.Millisecond
	}
	backoff := retry.WithMaxRetries(uint64(c.retryAttempts), retry.NewConstant(delay))

	var (
		status  int
		body    []byte
		attempt int
	)
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		status, body = 0, nil

		s, b, err := c.post(ctx, audio, contentType)
		if err != nil {
			return err
		}
		status, body = s, b

		if s == http.StatusServiceUnavailable {
			if c.log != nil {
				c.log.Debugf("model unavailable (attempt %d/%d), retrying in %s", attempt, c.retryAttempts+1, delay)
			}
			return retry.RetryableError(fmt.Errorf("model unavailable: status %d", s))
		}
		return nil
	})
	if err != nil && status == 0 {
		return 0, nil, err
	}
	return status, body, nil
}

func (c *HTTPClassifier) post(ctx context.Context, audio []byte, contentType string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(audio))
	if err != nil {
		return 0, nil, fmt.Errorf("building model request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("calling model: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("reading model response: %w", err)
	}
	return resp.StatusCode, body, nil
}
