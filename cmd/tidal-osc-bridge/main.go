// Package main is the tidal-osc-bridge command. It receives highlight
// events from TidalCycles over OSC and forwards them to the editor plugin.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/hightidelight/osc-bridge/internal/bridge"
	"github.com/hightidelight/osc-bridge/internal/config"
	"github.com/hightidelight/osc-bridge/internal/metrics"
)

const appName = "tidal-osc-bridge"

// Version is overridden at build time with -ldflags "-X main.Version=...".
var Version = "0.3.0"

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(os.Args[1:]); err != nil {
		slog.Error("Bridge failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run(args []string) error {
	cli, err := parseFlags(args, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	if cli.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil
	}

	cfg, err := loadConfig(cli, os.LookupEnv)
	if err != nil {
		return err
	}

	logger := setupLogger(os.Stdout, cfg.Debug, cfg.LogFormat)
	slog.SetDefault(logger)
	logBanner(logger, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var m *metrics.Metrics
	var reg *prometheus.Registry
	if cfg.MetricsAddr != "" {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		if m, err = metrics.New(reg); err != nil {
			return err
		}
	}

	b := bridge.New(cfg, logger, m)
	if err := b.Open(); err != nil {
		return err
	}
	defer func() {
		if err := b.Close(); err != nil {
			logger.Warn("Closing sockets", "error", err)
		}
	}()
	logger.Info("Bound receive socket", "addr", b.ListenAddr().String())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return b.Run(gctx)
	})
	if reg != nil {
		g.Go(func() error {
			return metrics.ListenAndServe(gctx, cfg.MetricsAddr, reg, logger)
		})
	}

	err = g.Wait()
	if ctx.Err() != nil {
		logger.Info("Received interrupt signal, shutting down")
	}
	if err != nil {
		return err
	}
	logger.Info("Bridge shut down")
	return nil
}

func logBanner(logger *slog.Logger, cfg config.Config) {
	mode := "concurrent"
	if cfg.BatchIntervalMS == 0 {
		mode = "serial"
	}
	logger.Info("TidalCycles OSC bridge starting",
		"listen", cfg.ListenAddr(),
		"address", cfg.Address,
		"forward", cfg.ForwardAddr(),
		"forward_address", cfg.ForwardAddress,
		"batch_interval_ms", cfg.BatchIntervalMS,
		"mode", mode,
		"schema", cfg.Schema.String(),
	)
}
