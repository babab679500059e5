package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-verifier/internal/config"
	"github.com/jonathan/resume-verifier/internal/fetch"
	"github.com/jonathan/resume-verifier/internal/llm"
	"github.com/jonathan/resume-verifier/internal/logger"
	"github.com/jonathan/resume-verifier/internal/observability"
	"github.com/jonathan/resume-verifier/internal/pipeline"
	"github.com/jonathan/resume-verifier/internal/store"
)

// app holds the process-wide collaborators built from configuration
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *observability.Metrics
	printer *observability.Printer

	client        llm.Client
	metricsServer *http.Server
	shutdownTrace observability.ShutdownFunc
}

// newApp loads configuration, applies global flags and starts logging, tracing and metrics
func newApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Log.Debug = true
	}
	if jsonLogs {
		cfg.Log.JSON = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	reader, err := config.NewVaultReader(cfg.Vault, log)
	if err != nil {
		return nil, err
	}
	if err := config.ApplyVaultSecrets(ctx, cfg, reader, log); err != nil {
		return nil, err
	}

	a := &app{
		cfg:     cfg,
		logger:  log,
		printer: observability.NewPrinter(cmd.ErrOrStderr()),
	}

	a.shutdownTrace, err = observability.SetupTracing(ctx, observability.TracingConfig{
		Enabled:    cfg.Tracing.Enabled,
		Exporter:   cfg.Tracing.Exporter,
		Endpoint:   cfg.Tracing.Endpoint,
		SampleRate: cfg.Tracing.SampleRate,
		Version:    version,
		Output:     os.Stderr,
	})
	if err != nil {
		return nil, err
	}

	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		if a.metrics, err = observability.NewMetrics(reg); err != nil {
			return nil, err
		}
		a.metricsServer = observability.StartMetricsServer(cfg.Metrics.Addr, reg)
		log.Info("serving metrics", zap.String("addr", cfg.Metrics.Addr))
	}
	return a, nil
}

// extractor builds the structured extraction client over the configured provider
func (a *app) extractor(ctx context.Context) (*llm.Extractor, error) {
	client, err := llm.NewClient(ctx, a.cfg.LLM.ModelConfig(), a.cfg.LLM.APIKey)
	if err != nil {
		return nil, err
	}
	a.client = client

	// WithLogger goes first so the breaker logs through it
	opts := []llm.ExtractorOption{llm.WithLogger(a.logger), llm.WithMetrics(a.metrics)}
	opts = append(opts, a.cfg.LLM.ExtractorOptions()...)
	return llm.NewExtractor(client, opts...)
}

func (a *app) scraper() fetch.Scraper {
	return fetch.NewScraper(a.cfg.Scraper.ScraperSettings(), a.logger)
}

// openStore connects when a database URL is configured. A nil store disables persistence.
func (a *app) openStore(ctx context.Context, override string) (*store.Store, error) {
	url := override
	if url == "" {
		url = a.cfg.DatabaseURL
	}
	if url == "" {
		return nil, nil
	}
	s, err := store.Connect(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// progress logs stage events at debug level, and prints them when --verbose is set
func (a *app) progress(cmd *cobra.Command) pipeline.ProgressCallback {
	return func(e pipeline.ProgressEvent) {
		a.logger.Debug("stage finished",
			zap.String(logger.FieldPipeline, e.Pipeline),
			zap.String(logger.FieldStage, e.Step),
			zap.String("status", string(e.Status)),
			zap.Duration("duration", e.Duration))
		if verbose && !jsonLogs {
			fmt.Fprintf(cmd.ErrOrStderr(), "  [%s] %-28s %-9s %s\n", e.Pipeline, e.Step, e.Status, e.Duration.Round(time.Millisecond))
		}
	}
}

// close releases the provider client, flushes spans and stops the metrics server
func (a *app) close() {
	if a.client != nil {
		if err := a.client.Close(); err != nil {
			a.logger.Warn("failed to close LLM client", zap.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if a.shutdownTrace != nil {
		if err := a.shutdownTrace(ctx); err != nil {
			a.logger.Warn("failed to flush traces", zap.Error(err))
		}
	}
	if a.metricsServer != nil {
		if err := a.metricsServer.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Warn("failed to stop metrics server", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}
