package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/c360studio/semtimeline/config"
	timelinedocuments "github.com/c360studio/semtimeline/output/timeline-documents"
	linkenricher "github.com/c360studio/semtimeline/processor/link-enricher"
	sourcewatcher "github.com/c360studio/semtimeline/processor/source-watcher"
	"github.com/c360studio/semtimeline/source/tabular"
	"github.com/c360studio/semtimeline/timeline"
)

// App wires the source, resolver, parser and outputs together.
type App struct {
	cfg    *config.Config
	logger *slog.Logger
	stdout io.Writer
	format timelinedocuments.Format

	registry  *prometheus.Registry
	resolver  timeline.Resolver
	publisher *timelinedocuments.Publisher
}

// NewApp creates a new application instance. When NATS is configured the
// connection is established here so misconfiguration fails before any fetch.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout io.Writer) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	format, err := timelinedocuments.ParseFormat(cfg.Output.Format)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	app := &App{
		cfg:      cfg,
		logger:   logger,
		stdout:   stdout,
		format:   format,
		registry: registry,
		resolver: timeline.StaticResolver,
	}

	if !cfg.Timeline.Offline {
		metrics := linkenricher.NewMetrics(registry)
		fetcher := linkenricher.NewFetcher(cfg.Fetch, logger)
		app.resolver = linkenricher.NewResolver(fetcher, metrics, logger)
	}

	if cfg.NATS.URL != "" {
		logger.Info("Connecting to NATS", "url", cfg.NATS.URL)
		pub, err := timelinedocuments.Connect(cfg.NATS.URL, cfg.NATS.Subject, cfg.NATS.Timeout, logger)
		if err != nil {
			return nil, err
		}
		app.publisher = pub
		logger.Info("Connected to NATS", "url", cfg.NATS.URL)
	}

	return app, nil
}

// Close releases the NATS connection, if any.
func (a *App) Close() {
	if a.publisher != nil {
		a.publisher.Close()
	}
}

// Build loads the source, builds the timeline and writes the document.
func (a *App) Build(ctx context.Context) (*timelinedocuments.Document, error) {
	start := time.Now()

	src, err := tabular.Load(a.cfg.Timeline.Source, tabular.Options{Header: !a.cfg.Timeline.NoHeader})
	if err != nil {
		return nil, err
	}

	parser := timeline.NewParser(a.resolver, a.cfg.Timeline.Concurrency, a.logger)
	events, err := parser.Parse(ctx, src.Rows)
	if err != nil {
		return nil, fmt.Errorf("build timeline: %w", err)
	}

	doc := timelinedocuments.NewDocument(a.cfg.Timeline.Title, events)
	if err := a.write(doc); err != nil {
		return nil, err
	}

	if a.publisher != nil {
		if err := a.publisher.Publish(ctx, doc); err != nil {
			return nil, err
		}
	}

	a.logger.Info("Timeline built",
		"build_id", doc.BuildID,
		"files", len(src.Paths),
		"events", len(doc.Events),
		"output", a.outputName(),
		"duration", time.Since(start).Round(time.Millisecond))

	return doc, nil
}

func (a *App) write(doc *timelinedocuments.Document) error {
	if a.cfg.Output.Path == "" {
		return timelinedocuments.Encode(a.stdout, doc, a.format)
	}
	format := timelinedocuments.FormatForPath(a.cfg.Output.Path, a.format)
	return timelinedocuments.WriteFile(a.cfg.Output.Path, doc, format)
}

func (a *App) outputName() string {
	if a.cfg.Output.Path == "" {
		return "stdout"
	}
	return a.cfg.Output.Path
}

// Watch builds once, then rebuilds whenever the source files change, until
// ctx is done. Failed rebuilds are logged and the previous output is kept.
func (a *App) Watch(ctx context.Context) error {
	if a.cfg.Metrics.Addr != "" {
		srv := a.metricsServer()
		go func() {
			a.logger.Info("Serving metrics", "addr", a.cfg.Metrics.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("Metrics server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	watcher, err := sourcewatcher.NewWatcher(sourcewatcher.Config{
		Pattern:  a.cfg.Timeline.Source,
		Debounce: a.cfg.Watch.Debounce,
		Logger:   a.logger,
	})
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Stop()

	if err := watcher.Start(ctx); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}

	a.rebuild(ctx)

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("Watch stopped")
			return nil
		case cs, ok := <-watcher.Changes():
			if !ok {
				return nil
			}
			a.logger.Info("Source changed, rebuilding", "files", cs.Paths)
			a.rebuild(ctx)
		}
	}
}

func (a *App) rebuild(ctx context.Context) {
	if _, err := a.Build(ctx); err != nil && ctx.Err() == nil {
		a.logger.Error("Timeline build failed", "error", err)
	}
}

func (a *App) metricsServer() *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return &http.Server{
		Addr:              a.cfg.Metrics.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
