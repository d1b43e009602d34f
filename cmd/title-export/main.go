package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ukwa-discovery/title-export/act"
	"github.com/ukwa-discovery/title-export/cdx"
	"github.com/ukwa-discovery/title-export/config"
	"github.com/ukwa-discovery/title-export/exporter"
	"github.com/ukwa-discovery/title-export/models"
	"github.com/ukwa-discovery/title-export/writer"
)

func main() {
	_ = godotenv.Load()

	defaultCfg := config.DefaultConfig()
	actURLDefault := defaultCfg.ActBaseURL
	if value, ok := config.EnvString("W3ACT_URL"); ok {
		actURLDefault = value
	}
	cdxURLDefault := defaultCfg.CdxBaseURL
	if value, ok := config.EnvString("CDX_URL"); ok {
		cdxURLDefault = value
	}
	outputDefault := defaultCfg.OutputFile
	if value, ok := config.EnvString("EXPORT_OUTPUT"); ok {
		outputDefault = value
	}
	metricsDefault := defaultCfg.MetricsAddr
	if value, ok := config.EnvString("EXPORT_METRICS_ADDR"); ok {
		metricsDefault = value
	}
	embargoDefault := defaultCfg.EmbargoDays
	if value, ok, err := config.EnvInt("EXPORT_EMBARGO_DAYS"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid EXPORT_EMBARGO_DAYS: %v\n", err)
		os.Exit(1)
	} else if ok {
		embargoDefault = value
	}

	actURL := flag.String("act-url", actURLDefault, "W3ACT base URL")
	frequency := flag.String("frequency", defaultCfg.ExportFrequency, "Target export crawl frequency (daily, weekly, ..., or all)")
	cdxURL := flag.String("cdx-url", cdxURLDefault, "Capture index (CDX server) base URL")
	embargoDays := flag.Int("embargo-days", embargoDefault, "Minimum days since first capture before a record is published")
	timeoutSec := flag.Int("timeout", int(defaultCfg.Timeout/time.Second), "HTTP timeout (seconds)")
	outputFile := flag.String("output", outputDefault, "Output file path")
	outputFormat := flag.String("format", defaultCfg.OutputFormat, "Output format: xml, json, or dual")
	metricsAddr := flag.String("metrics-addr", metricsDefault, "Prometheus metrics listen address (e.g. :9090)")
	verbose := flag.Bool("v", false, "Enable verbose logging")

	flag.Parse()

	logger, level := newLogger(*verbose)
	logger = logger.With(slog.String("run_id", uuid.NewString()))
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	cfg := defaultCfg
	cfg.ActBaseURL = *actURL
	cfg.ExportFrequency = strings.ToLower(*frequency)
	cfg.CdxBaseURL = *cdxURL
	cfg.EmbargoDays = *embargoDays
	cfg.Timeout = time.Duration(*timeoutSec) * time.Second
	cfg.OutputFile = *outputFile
	cfg.OutputFormat = strings.ToLower(*outputFormat)
	cfg.MetricsAddr = *metricsAddr
	cfg.Verbose = *verbose
	if value, ok := config.EnvString("W3ACT_EMAIL"); ok {
		cfg.ActEmail = value
	}
	if value, ok := config.EnvString("W3ACT_PASSWORD"); ok {
		cfg.ActPassword = value
	}

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}
	if cfg.ActEmail == "" || cfg.ActPassword == "" {
		slog.Error("W3ACT_EMAIL and W3ACT_PASSWORD must be set")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("starting title-level export",
		slog.String("act_url", cfg.ActBaseURL),
		slog.String("frequency", cfg.ExportFrequency),
		slog.String("output", cfg.OutputFile),
	)

	metrics := exporter.NewMetrics()
	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		metricsServer = &http.Server{
			Addr:    cfg.MetricsAddr,
			Handler: promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}),
		}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics server failed", slog.Any("error", err))
			}
		}()
		slog.Info("metrics server enabled", slog.String("addr", cfg.MetricsAddr))
	}

	result, err := run(ctx, cfg, metrics)
	if err != nil {
		slog.Error("export failed", slog.Any("error", err))
		os.Exit(1)
	}

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("metrics server shutdown failed", slog.Any("error", err))
		}
		cancel()
	}

	printSummary(result, cfg.OutputFile)
}

func run(ctx context.Context, cfg *config.Config, metrics *exporter.Metrics) (*models.ExportResult, error) {
	client, err := act.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("initialise w3act client: %w", err)
	}
	if err := client.Login(ctx); err != nil {
		return nil, err
	}

	targets, err := client.Targets(ctx)
	if err != nil {
		return nil, err
	}
	collections, err := client.Collections(ctx)
	if err != nil {
		return nil, err
	}
	subjects, err := client.Subjects(ctx)
	if err != nil {
		return nil, err
	}

	index, err := cdx.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("initialise capture index client: %w", err)
	}

	result, err := exporter.New(cfg, index).Build(ctx, targets, collections, subjects)
	if err != nil {
		return nil, err
	}
	metrics.Set(result.Counters)

	out, err := createWriter(cfg.OutputFormat, cfg.OutputFile)
	if err != nil {
		return nil, fmt.Errorf("creating writer: %w", err)
	}
	if err := out.Write(result); err != nil {
		out.Close()
		return nil, fmt.Errorf("writing export: %w", err)
	}
	if err := out.Close(); err != nil {
		return nil, fmt.Errorf("closing writer: %w", err)
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("output validation failed: %w", err)
	}

	return result, nil
}

func createWriter(format, filename string) (writer.OutputWriter, error) {
	switch format {
	case "xml":
		return writer.NewXMLWriter(filename)
	case "json":
		return writer.NewJSONWriter(filename)
	case "dual":
		jsonFilename := strings.TrimSuffix(filename, ".xml") + ".jsonl"
		return writer.NewDualWriter(filename, jsonFilename)
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

func printSummary(result *models.ExportResult, outputFile string) {
	c := result.Counters
	duration := result.EndTime.Sub(result.StartTime)

	separator := "--------------------------------------------------"
	fmt.Println("\n" + separator)
	fmt.Println("Export complete")
	fmt.Printf("  Targets:       %d\n", c.Targets)
	fmt.Printf("  Published:     %d\n", c.Published)
	fmt.Printf("  Blocked:       %d\n", c.Blocked)
	fmt.Printf("  Missing:       %d\n", c.Missing)
	fmt.Printf("  Embargoed:     %d\n", c.Embargoed)
	fmt.Printf("  Skipped:       %d\n", c.Skipped)
	fmt.Printf("  Collections:   %d (%d published)\n", c.Collections, c.CollectionsPublished)
	fmt.Printf("  Subjects:      %d (%d published)\n", c.Subjects, c.SubjectsPublished)
	fmt.Printf("  Duration:      %v\n", duration)
	fmt.Printf("  Output file:   %s\n", outputFile)
	fmt.Println(separator)
}

func newLogger(verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(os.Stdout) {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
