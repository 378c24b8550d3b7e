package main

import (
	"flag"

	"github.com/himanishpuri/EmotionRelay/internal/config"
	"github.com/himanishpuri/EmotionRelay/pkg/logger"
	"github.com/himanishpuri/EmotionRelay/pkg/relay"
)

var (
	configPath     string
	port           int
	dbPath         string
	tempDir        string
	modelURL       string
	allowedOrigins string
	maxUploadMB    int64
)

func init() {
	flag.StringVar(&configPath, "config", "", "Path to TOML config file (default $EMOTION_CONFIG or ./"+config.DefaultFile+")")
	flag.IntVar(&port, "port", 5002, "HTTP server port")
	flag.StringVar(&dbPath, "db", "", "Path to SQLite analysis history (empty disables history)")
	flag.StringVar(&tempDir, "temp", "", "Directory for staged uploads")
	flag.StringVar(&modelURL, "model", relay.DefaultModelURL, "Inference endpoint URL")
	flag.StringVar(&allowedOrigins, "origins", "*", "Comma-separated list of allowed CORS origins (use * for all)")
	flag.Int64Var(&maxUploadMB, "max-upload", 50, "Maximum upload size in MiB")
}

// applyFlags copies explicitly set flags over the loaded configuration.
func applyFlags(cfg *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Server.Port = port
		case "db":
			cfg.Storage.DBPath = dbPath
		case "temp":
			cfg.Relay.TempDir = tempDir
		case "model":
			cfg.Relay.ModelURL = modelURL
		case "origins":
			cfg.Server.AllowedOrigins = config.ParseOrigins(allowedOrigins)
		case "max-upload":
			cfg.Server.MaxUploadMB = maxUploadMB
		}
	})
}

func main() {
	flag.Parse()
	log := logger.GetLogger()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	applyFlags(cfg)
	log.SetLevel(cfg.LogLevel())

	opts := cfg.RelayOptions()
	if cfg.Storage.DBPath != "" {
		store, err := relay.NewSQLiteStorage(cfg.Storage.DBPath)
		if err != nil {
			log.Fatalf("Failed to open history database: %v", err)
		}
		opts = append(opts, relay.WithStorage(store))
	}

	rl, err := relay.New(opts...)
	if err != nil {
		log.Fatalf("Failed to create relay: %v", err)
	}
	defer rl.Close()

	server := NewServer(rl, &ServerConfig{
		Port:           cfg.Server.Port,
		ModelURL:       cfg.Relay.ModelURL,
		CredentialSet:  cfg.Relay.Token != "",
		MaxUploadBytes: cfg.MaxUploadBytes(),
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})
	if err := server.Start(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
