package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/himanishpuri/EmotionRelay/pkg/logger"
	"github.com/himanishpuri/EmotionRelay/pkg/relay"
)

// DefaultFile is picked up from the working directory when no config path is
// given. Its absence is not an error.
const DefaultFile = "emotionrelay.toml"

type Config struct {
	Server  ServerConfig  `toml:"server"`
	Relay   RelayConfig   `toml:"relay"`
	Storage StorageConfig `toml:"storage"`
	Log     LogConfig     `toml:"log"`
}

type ServerConfig struct {
	Port           int      `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
	MaxUploadMB    int64    `toml:"max_upload_mb"`
}

type RelayConfig struct {
	Token         string   `toml:"token"`
	ModelURL      string   `toml:"model_url"`
	TempDir       string   `toml:"temp_dir"`
	HTTPTimeout   Duration `toml:"http_timeout"`
	RetryAttempts int      `toml:"retry_attempts"`
	RetryDelay    Duration `toml:"retry_delay"`
}

type StorageConfig struct {
	DBPath string `toml:"db_path"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// Duration accepts Go duration strings ("1m30s") in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           5002,
			AllowedOrigins: []string{"*"},
			MaxUploadMB:    50,
		},
		Relay: RelayConfig{
			ModelURL:   relay.DefaultModelURL,
			TempDir:    os.TempDir(),
			RetryDelay: Duration{2 * time.Second},
		},
		Log: LogConfig{Level: "INFO"},
	}
}

// Load builds the configuration from defaults, then the TOML file at path,
// then environment variables. An empty path falls back to $EMOTION_CONFIG and
// then DefaultFile; only an explicitly named file is required to exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		if p := os.Getenv("EMOTION_CONFIG"); p != "" {
			path, explicit = p, true
		} else {
			path = DefaultFile
		}
	}

	_, err := toml.DecodeFile(path, cfg)
	if err != nil && (explicit || !errors.Is(err, fs.ErrNotExist)) {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("EMOTION_ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = ParseOrigins(v)
	}
	if v := os.Getenv("EMOTION_MAX_UPLOAD_MB"); v != "" {
		mb, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid EMOTION_MAX_UPLOAD_MB %q: %w", v, err)
		}
		c.Server.MaxUploadMB = mb
	}

	if v := os.Getenv("HF_TOKEN"); v != "" {
		c.Relay.Token = v
	}
	if v := os.Getenv("EMOTION_MODEL_URL"); v != "" {
		c.Relay.ModelURL = v
	}
	if v := os.Getenv("EMOTION_TEMP_DIR"); v != "" {
		c.Relay.TempDir = v
	}
	if v := os.Getenv("EMOTION_HTTP_TIMEOUT"); v != "" {
		if err := c.Relay.HTTPTimeout.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("invalid EMOTION_HTTP_TIMEOUT %q: %w", v, err)
		}
	}
	if v := os.Getenv("EMOTION_RETRY_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid EMOTION_RETRY_ATTEMPTS %q: %w", v, err)
		}
		c.Relay.RetryAttempts = n
	}
	if v := os.Getenv("EMOTION_RETRY_DELAY"); v != "" {
		if err := c.Relay.RetryDelay.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("invalid EMOTION_RETRY_DELAY %q: %w", v, err)
		}
	}

	if v := os.Getenv("EMOTION_DB_PATH"); v != "" {
		c.Storage.DBPath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

// ParseOrigins splits a comma-separated origin list. "*" allows every origin.
func ParseOrigins(s string) []string {
	if strings.TrimSpace(s) == "*" {
		return []string{"*"}
	}
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// LogLevel returns the configured level, INFO for unknown names.
func (c *Config) LogLevel() logger.Level {
	lvl, _ := logger.ParseLevel(c.Log.Level)
	return lvl
}

// RelayOptions translates the relay section into relay.New options.
// Storage is opened separately so the caller owns its lifetime.
func (c *Config) RelayOptions() []relay.Option {
	return []relay.Option{
		relay.WithToken(c.Relay.Token),
		relay.WithModelURL(c.Relay.ModelURL),
		relay.WithTempDir(c.Relay.TempDir),
		relay.WithHTTPTimeout(c.Relay.HTTPTimeout.Duration),
		relay.WithRetry(c.Relay.RetryAttempts, c.Relay.RetryDelay.Duration),
	}
}

func (c *Config) MaxUploadBytes() int64 {
	if c.Server.MaxUploadMB <= 0 {
		return 50 << 20
	}
	return c.Server.MaxUploadMB << 20
}
