package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/himanishpuri/EmotionRelay/internal/config"
	"github.com/himanishpuri/EmotionRelay/pkg/logger"
	"github.com/himanishpuri/EmotionRelay/pkg/models"
	"github.com/himanishpuri/EmotionRelay/pkg/relay"
)

// Global flags
var (
	configPath string
	dbPath     string
	modelURL   string
)

func init() {
	flag.StringVar(&configPath, "config", "", "Path to TOML config file")
	flag.StringVar(&dbPath, "db", "", "Path to SQLite analysis history (overrides config)")
	flag.StringVar(&modelURL, "model", "", "Inference endpoint URL (overrides config)")
}

func loadConfig() *config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if dbPath != "" {
		cfg.Storage.DBPath = dbPath
	}
	if modelURL != "" {
		cfg.Relay.ModelURL = modelURL
	}
	logger.SetLevel(cfg.LogLevel())
	return cfg
}

// createRelay builds a relay from cfg, attaching history when configured.
func createRelay(cfg *config.Config) (*relay.Relay, error) {
	opts := cfg.RelayOptions()
	if cfg.Storage.DBPath != "" {
		store, err := relay.NewSQLiteStorage(cfg.Storage.DBPath)
		if err != nil {
			return nil, fmt.Errorf("opening history: %w", err)
		}
		opts = append(opts, relay.WithStorage(store))
	}
	return relay.New(opts...)
}

func main() {
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "analyze":
		os.Exit(handleAnalyze(args[1:]))
	case "history":
		os.Exit(handleHistory(args[1:]))
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprint(os.Stderr, `Usage: emotion-cli [global flags] <command> [args]

Commands:
  analyze [-json] <audio-file>   Classify the emotion in a local audio file
  history [-limit N]             Show recent analyses (requires -db or storage.db_path)

Global flags:
`)
	flag.PrintDefaults()
}

func handleAnalyze(args []string) int {
	cmd := flag.NewFlagSet("analyze", flag.ExitOnError)
	asJSON := cmd.Bool("json", false, "Print predictions as JSON")
	cmd.Parse(args)

	if cmd.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: analyze takes exactly one audio file")
		return 1
	}
	path := cmd.Arg(0)

	cfg := loadConfig()
	rl, err := createRelay(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer rl.Close()

	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer f.Close()

	preds, err := rl.Analyze(context.Background(), relay.Upload{Filename: filepath.Base(path), Body: f})
	if err != nil {
		rerr := relay.AsError(err)
		fmt.Fprintf(os.Stderr, "Error (%s, %d): %s\n", rerr.Kind, rerr.Status, rerr.Message)
		return 1
	}

	if err := printPredictions(os.Stdout, preds, *asJSON); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func handleHistory(args []string) int {
	cmd := flag.NewFlagSet("history", flag.ExitOnError)
	limit := cmd.Int("limit", 20, "Number of analyses to show")
	cmd.Parse(args)

	cfg := loadConfig()
	if cfg.Storage.DBPath == "" {
		fmt.Fprintln(os.Stderr, "Error: history is disabled; pass -db or set storage.db_path")
		return 1
	}

	store, err := relay.NewSQLiteStorage(cfg.Storage.DBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer store.Close()

	recs, err := store.ListAnalyses(*limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	printHistory(os.Stdout, recs)
	return 0
}

func printPredictions(w io.Writer, preds []models.Prediction, asJSON bool) error {
	if asJSON {
		if preds == nil {
			preds = []models.Prediction{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"predictions": preds})
	}

	if len(preds) == 0 {
		_, err := fmt.Fprintln(w, "No predictions returned.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, p := range preds {
		fmt.Fprintf(tw, "%s\t%.4f\n", p.Label, p.Score)
	}
	return tw.Flush()
}

func printHistory(w io.Writer, recs []models.Analysis) {
	if len(recs) == 0 {
		fmt.Fprintln(w, "No analyses recorded.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tFILE\tSTATUS\tRESULT")
	for _, a := range recs {
		result := a.Error
		if a.Status == 200 {
			result = fmt.Sprintf("%s (%.3f)", a.TopLabel, a.TopScore)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", a.CreatedAt.Format("2006-01-02 15:04:05"), a.Filename, a.Status, result)
	}
	tw.Flush()
}
