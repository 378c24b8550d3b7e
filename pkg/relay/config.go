package relay

import (
	"net/http"
	"time"
)

// DefaultModelURL is the hosted speech-emotion classifier.
const DefaultModelURL = "https://api-inference.huggingface.co/models/prithivMLmods/Speech-Emotion-Classification"

type Config struct {
	Token         string
	ModelURL      string
	TempDir       string
	HTTPTimeout   time.Duration // 0 keeps the client default (no timeout)
	RetryAttempts int           // extra attempts on 503; 0 means a single call
	RetryDelay    time.Duration
	HTTPClient    *http.Client
	Classifier    Classifier
	Storage       Storage
	Logger        Logger
}

type Option func(*Config)

func WithToken(token string) Option {
	return func(c *Config) {
		c.Token = token
	}
}

func WithModelURL(url string) Option {
	return func(c *Config) {
		c.ModelURL = url
	}
}

func WithTempDir(dir string) Option {
	return func(c *Config) {
		c.TempDir = dir
	}
}

func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.HTTPTimeout = d
	}
}

// WithRetry enables retrying a 503 (model still loading) up to attempts extra
// times, waiting delay between calls.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Config) {
		c.RetryAttempts = attempts
		c.RetryDelay = delay
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(c *Config) {
		c.HTTPClient = client
	}
}

// WithClassifier replaces the HTTP classifier entirely.
func WithClassifier(cl Classifier) Option {
	return func(c *Config) {
		c.Classifier = cl
	}
}

func WithStorage(storage Storage) Option {
	return func(c *Config) {
		c.Storage = storage
	}
}

func WithLogger(log Logger) Option {
	return func(c *Config) {
		c.Logger = log
	}
}

func defaultConfig() *Config {
	return &Config{
		ModelURL:   DefaultModelURL,
		RetryDelay: 2 * time.Second,
	}
}
