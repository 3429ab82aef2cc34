// Package main provides the semtimeline binary entry point.
// Semtimeline turns a CSV event log into an enriched, date-ordered timeline
// document for static site renderers.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/c360studio/semtimeline/config"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "semtimeline"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// flags are the command-line overrides shared by build and watch.
type flags struct {
	configPath string
	logLevel   string
	source     string
	out        string
	format     string
	title      string
	noHeader   bool
	offline    bool
}

func rootCmd(stdout, stderr io.Writer) *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Build enriched timelines from CSV event logs",
		Long: `Semtimeline reads dated events from CSV files and builds a timeline
document ordered by date.

Each row holds a date (M/D/YYYY), a summary and any number of references.
References starting with "http" are fetched and enriched with the page
title, description and preview image; anything else is kept as text.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.PersistentFlags().StringVarP(&f.configPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&f.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&f.source, "source", "", "CSV file or glob (overrides timeline.source)")
	cmd.PersistentFlags().StringVarP(&f.out, "out", "o", "", "Output file (default stdout)")
	cmd.PersistentFlags().StringVar(&f.format, "format", "", "Output format (json, yaml)")
	cmd.PersistentFlags().StringVar(&f.title, "title", "", "Timeline title")
	cmd.PersistentFlags().BoolVar(&f.noHeader, "no-header", false, "Treat the first CSV row as data")
	cmd.PersistentFlags().BoolVar(&f.offline, "offline", false, "Do not fetch references")

	cmd.AddCommand(&cobra.Command{
		Use:   "build",
		Short: "Build the timeline once",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(cmd, f)
			if err != nil {
				return err
			}
			defer app.Close()

			_, err = app.Build(cmd.Context())
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "watch",
		Short: "Rebuild the timeline whenever its source files change",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(cmd, f)
			if err != nil {
				return err
			}
			defer app.Close()

			return app.Watch(cmd.Context())
		},
	})

	// Version command
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}

// setup configures logging, loads configuration and creates the app.
func setup(cmd *cobra.Command, f flags) (*App, error) {
	logger := newLogger(cmd.ErrOrStderr(), f.logLevel)
	slog.SetDefault(logger)

	cfg, err := config.NewLoader(logger).Load(f.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	applyFlags(cfg, f)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return NewApp(cmd.Context(), cfg, logger, cmd.OutOrStdout())
}

// applyFlags layers command-line flags over the loaded configuration.
func applyFlags(cfg *config.Config, f flags) {
	cfg.Merge(&config.Config{
		Timeline: config.TimelineConfig{
			Source:   f.source,
			Title:    f.title,
			NoHeader: f.noHeader,
			Offline:  f.offline,
		},
		Output: config.OutputConfig{
			Path:   f.out,
			Format: f.format,
		},
	})
}

func newLogger(w io.Writer, logLevel string) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
