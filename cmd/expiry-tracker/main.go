package main

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/zombor/expiry-tracker/internal/inventory"
	"github.com/zombor/expiry-tracker/internal/observability"
	"github.com/zombor/expiry-tracker/internal/scanning"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

// detectorConfig carries the flags of every text detection backend
type detectorConfig struct {
	kind              string
	visionCredentials string
	geminiKey         string
	geminiModel       string
	anthropicKey      string
	anthropicModel    string
	ollamaURL         string
	ollamaModel       string
	tesseractLangs    string
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	fs := ff.NewFlagSet("expiry-tracker")
	var (
		port               = fs.IntLong("port", 8080, "HTTP server port")
		dbPath             = fs.StringLong("db", "expiry-tracker.db", "Database file path")
		detectorType       = fs.StringLong("detector", "vision", "Text detector: 'vision', 'gemini', 'anthropic', 'ollama' or 'tesseract'")
		visionCredentials  = fs.StringLong("vision-credentials", "", "Google Cloud credentials file for Vision (defaults to application default credentials)")
		geminiKey          = fs.StringLong("gemini-key", "", "Google Gemini API key (or set GEMINI_API_KEY env var)")
		geminiModel        = fs.StringLong("gemini-model", "gemini-2.5-flash", "Google Gemini model name")
		anthropicKey       = fs.StringLong("anthropic-key", "", "Anthropic API key (or set ANTHROPIC_API_KEY env var)")
		anthropicModel     = fs.StringLong("anthropic-model", "", "Anthropic model name")
		ollamaURL          = fs.StringLong("ollama-url", "http://localhost:11434", "Ollama API base URL")
		ollamaModel        = fs.StringLong("ollama-model", "llava", "Ollama vision model name (e.g., llava, qwen2.5vl, minicpm-v)")
		tesseractLangs     = fs.StringLong("tesseract-langs", "spa,eng", "Comma separated Tesseract languages")
		authUser           = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass           = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		defaultAlertMonths = fs.IntLong("default-alert-months", 3, "Expiration alert window in months until one is saved in settings (1-12)")
		otelEndpoint       = fs.StringLong("otel-endpoint", "", "OTLP/HTTP endpoint for traces (host:port)")
		otelInsecure       = fs.BoolLong("otel-insecure", "Send traces without TLS")
		otelStdout         = fs.BoolLong("otel-stdout", "Print traces to stdout")
		otelSampleRatio    = fs.Float64Long("otel-sample-ratio", 1, "Fraction of traces to sample (0-1]")
		showVersion        = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("EXPIRY_TRACKER"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.Init(ctx, observability.Config{
		ServiceName: "expiry-tracker",
		Version:     version,
		Endpoint:    *otelEndpoint,
		Insecure:    *otelInsecure,
		Stdout:      *otelStdout,
		SampleRatio: *otelSampleRatio,
	})
	if err != nil {
		slog.Error("Failed to initialize tracing", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			slog.Warn("Failed to flush traces", "error", err)
		}
	}()

	slog.Info("Initializing database...")
	db, err := inventory.NewBoltDB(*dbPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	detector, err := newDetector(ctx, detectorConfig{
		kind:              *detectorType,
		visionCredentials: *visionCredentials,
		geminiKey:         *geminiKey,
		geminiModel:       *geminiModel,
		anthropicKey:      *anthropicKey,
		anthropicModel:    *anthropicModel,
		ollamaURL:         *ollamaURL,
		ollamaModel:       *ollamaModel,
		tesseractLangs:    *tesseractLangs,
	})
	if err != nil {
		slog.Error("Failed to initialize text detector", "detector", *detectorType, "error", err)
		os.Exit(1)
	}
	defer detector.Close()

	service := inventory.NewService(db, detector, inventory.LogAnnouncer{})
	if err := service.SetDefaultAlertMonths(*defaultAlertMonths); err != nil {
		slog.Error("Invalid default alert window", "months", *defaultAlertMonths, "error", err)
		os.Exit(1)
	}

	server := inventory.NewServer(service, inventory.BasicAuth{
		Username: *authUser,
		Password: *authPass,
	})

	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr), "version", version)
	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}

	<-ctx.Done()
	slog.Info("Shutting down...")
}

// newDetector builds the configured text detection backend
func newDetector(ctx context.Context, cfg detectorConfig) (scanning.Detector, error) {
	switch cfg.kind {
	case "vision":
		slog.Info("Initializing Cloud Vision detector...")
		return scanning.NewVision(ctx, cfg.visionCredentials)
	case "gemini":
		apiKey := cfg.geminiKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("gemini API key is required, set --gemini-key or GEMINI_API_KEY")
		}
		slog.Info("Initializing Gemini detector...", "model", cfg.geminiModel)
		return scanning.NewGemini(ctx, apiKey, cfg.geminiModel)
	case "anthropic":
		apiKey := cfg.anthropicKey
		if apiKey == "" {
			apiKey = os.Getenv("ANTHROPIC_API_KEY")
		}
		if apiKey == "" {
			return nil, fmt.Errorf("anthropic API key is required, set --anthropic-key or ANTHROPIC_API_KEY")
		}
		slog.Info("Initializing Anthropic detector...", "model", cfg.anthropicModel)
		return scanning.NewAnthropic(apiKey, cfg.anthropicModel)
	case "ollama":
		slog.Info("Initializing Ollama detector...", "url", cfg.ollamaURL, "model", cfg.ollamaModel)
		return scanning.NewOllama(cfg.ollamaURL, cfg.ollamaModel)
	case "tesseract":
		var langs []string
		for _, l := range strings.Split(cfg.tesseractLangs, ",") {
			if l = strings.TrimSpace(l); l != "" {
				langs = append(langs, l)
			}
		}
		slog.Info("Initializing Tesseract detector...", "languages", langs)
		return scanning.NewTesseract(langs...), nil
	default:
		return nil, fmt.Errorf("unknown detector %q, valid: vision, gemini, anthropic, ollama, tesseract", cfg.kind)
	}
}
