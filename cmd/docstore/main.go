package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"docstore/internal/backend"
	"docstore/internal/client"
	"docstore/internal/config"
	"docstore/internal/logging"
	"docstore/internal/ops"
)

var logger = logging.For("main")

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// run parses args, opens the configured backend and dispatches one command.
// It returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fset := flag.NewFlagSet("docstore", flag.ContinueOnError)
	fset.SetOutput(stderr)
	configPath := fset.String("config", "", "path to config file")
	backendName := fset.String("backend", "", "storage backend: fs, bolt, sqlite, s3, memory (overrides config)")
	dataDir := fset.String("data-dir", "", "data directory (overrides config)")
	bucket := fset.String("bucket", "", "S3 bucket (overrides config)")
	noCache := fset.Bool("no-cache", false, "disable the read cache")
	logLevel := fset.String("log-level", "", "log level: debug, info, warn, error (overrides config)")

	reg := NewCommandRegistry()
	registerCommands(reg)
	fset.Usage = func() {
		fmt.Fprintf(stderr, "Usage: docstore [flags] <command> [args]\n\nFlags:\n")
		fset.PrintDefaults()
		fmt.Fprintf(stderr, "\n%s", reg.HelpText())
	}

	if err := fset.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	// Load config (TOML file with defaults)
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}

	// CLI flags override config file values
	if *backendName != "" {
		cfg.Store.Backend = *backendName
	}
	if *dataDir != "" {
		cfg.Store.DataDir = *dataDir
	}
	if *bucket != "" {
		cfg.S3.Bucket = *bucket
	}
	if *noCache {
		cfg.Cache.Enabled = false
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	logging.Init(stderr, cfg.Log.Level, cfg.Log.Format)

	if fset.NArg() == 0 {
		fset.Usage()
		return 2
	}

	var metrics *prometheus.Registry
	if cfg.Cache.Metrics {
		metrics = prometheus.NewRegistry()
	}

	b, err := backend.Open(ctx, cfg, registerer(metrics))
	if err != nil {
		fmt.Fprintf(stderr, "backend: %v\n", err)
		return 1
	}
	defer b.Close()

	o := ops.New(b, ops.WithConcurrency(cfg.Ops.MaxConcurrency))
	c := client.New(o, nil)

	err = reg.Dispatch(ctx, c, stdout, fset.Args())
	logMetrics(metrics)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		if errors.Is(err, errUsage) {
			return 2
		}
		return 1
	}
	return 0
}

// registerer avoids handing backend.Open a typed nil.
func registerer(r *prometheus.Registry) prometheus.Registerer {
	if r == nil {
		return nil
	}
	return r
}

func logMetrics(r *prometheus.Registry) {
	if r == nil {
		return
	}
	families, err := r.Gather()
	if err != nil {
		logger.Warn("gathering metrics failed", "err", err)
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			if c := m.GetCounter(); c != nil {
				logger.Info("metric", "name", mf.GetName(), "value", c.GetValue())
			}
		}
	}
}
