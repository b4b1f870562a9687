package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/hightidelight/osc-bridge/internal/config"
)

// CLIConfig holds the parsed command line.
type CLIConfig struct {
	ConfigPath  string
	EnvFile     string
	ShowVersion bool

	values config.Config
	set    map[string]bool
}

// overrides copies one flag's value into the effective config. Short and
// long forms of a flag share an entry.
var overrides = map[string]func(dst, src *config.Config){
	"port":              func(d, s *config.Config) { d.ListenPort = s.ListenPort },
	"p":                 func(d, s *config.Config) { d.ListenPort = s.ListenPort },
	"listen-host":       func(d, s *config.Config) { d.ListenHost = s.ListenHost },
	"debug":             func(d, s *config.Config) { d.Debug = s.Debug },
	"d":                 func(d, s *config.Config) { d.Debug = s.Debug },
	"address":           func(d, s *config.Config) { d.Address = s.Address },
	"neovim-port":       func(d, s *config.Config) { d.ForwardPort = s.ForwardPort },
	"forward-host":      func(d, s *config.Config) { d.ForwardHost = s.ForwardHost },
	"forward-address":   func(d, s *config.Config) { d.ForwardAddress = s.ForwardAddress },
	"batch-interval-ms": func(d, s *config.Config) { d.BatchIntervalMS = s.BatchIntervalMS },
	"schema":            func(d, s *config.Config) { d.Schema = s.Schema },
	"log-format":        func(d, s *config.Config) { d.LogFormat = s.LogFormat },
	"metrics-addr":      func(d, s *config.Config) { d.MetricsAddr = s.MetricsAddr },
}

func parseFlags(args []string, output io.Writer) (*CLIConfig, error) {
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(output)

	cli := &CLIConfig{}
	v := config.Default()

	fs.StringVar(&cli.ConfigPath, "config", os.Getenv(config.EnvPrefix+"CONFIG"),
		"Path to a YAML config file (env: OSC_BRIDGE_CONFIG)")
	fs.StringVar(&cli.EnvFile, "env-file", ".env",
		"Environment file loaded before reading OSC_BRIDGE_* variables; skipped if missing")

	fs.IntVar(&v.ListenPort, "port", v.ListenPort, "Port to listen for OSC messages on (env: OSC_BRIDGE_LISTEN_PORT)")
	fs.IntVar(&v.ListenPort, "p", v.ListenPort, "Shorthand for --port")
	fs.StringVar(&v.ListenHost, "listen-host", v.ListenHost, "Interface to listen on (env: OSC_BRIDGE_LISTEN_HOST)")
	fs.BoolVar(&v.Debug, "debug", v.Debug, "Enable debug logging (env: OSC_BRIDGE_DEBUG)")
	fs.BoolVar(&v.Debug, "d", v.Debug, "Shorthand for --debug")
	fs.StringVar(&v.Address, "address", v.Address, "OSC address to listen for (env: OSC_BRIDGE_ADDRESS)")
	fs.IntVar(&v.ForwardPort, "neovim-port", v.ForwardPort, "Editor plugin port to forward highlights to (env: OSC_BRIDGE_FORWARD_PORT)")
	fs.StringVar(&v.ForwardHost, "forward-host", v.ForwardHost, "Editor plugin host (env: OSC_BRIDGE_FORWARD_HOST)")
	fs.StringVar(&v.ForwardAddress, "forward-address", v.ForwardAddress, "OSC address of forwarded highlights (env: OSC_BRIDGE_FORWARD_ADDRESS)")
	fs.IntVar(&v.BatchIntervalMS, "batch-interval-ms", v.BatchIntervalMS, "Batch interval in milliseconds, 0 for serial mode (env: OSC_BRIDGE_BATCH_INTERVAL_MS)")
	fs.TextVar(&v.Schema, "schema", v.Schema, "Argument schema: auto, extended or canonical (env: OSC_BRIDGE_SCHEMA)")
	fs.StringVar(&v.LogFormat, "log-format", v.LogFormat, "Log format: text, json (env: OSC_BRIDGE_LOG_FORMAT)")
	fs.StringVar(&v.MetricsAddr, "metrics-addr", v.MetricsAddr, "Serve Prometheus metrics on this address, empty to disable (env: OSC_BRIDGE_METRICS_ADDR)")

	fs.BoolVar(&cli.ShowVersion, "version", false, "Show version information")

	fs.Usage = func() {
		_, _ = fmt.Fprintf(output, `%s - forward TidalCycles highlights to the editor

Usage: %s [options]

Options:
`, appName, appName)
		fs.PrintDefaults()
		_, _ = fmt.Fprintf(output, `
Precedence: defaults < --config file < OSC_BRIDGE_* environment < flags.

Version: %s
`, Version)
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	cli.values = v
	cli.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		cli.set[f.Name] = true
	})
	return cli, nil
}

// apply copies every flag given on the command line into cfg.
func (c *CLIConfig) apply(cfg *config.Config) {
	for name := range c.set {
		if override, ok := overrides[name]; ok {
			override(cfg, &c.values)
		}
	}
}

// loadConfig layers defaults, the config file, the environment and the
// command line, then validates the result.
func loadConfig(cli *CLIConfig, lookup func(string) (string, bool)) (config.Config, error) {
	cfg := config.Default()

	if cli.EnvFile != "" {
		if err := config.LoadDotEnv(cli.EnvFile); err != nil {
			return cfg, err
		}
	}
	if cli.ConfigPath != "" {
		if err := cfg.LoadFile(cli.ConfigPath); err != nil {
			return cfg, err
		}
	}
	if err := cfg.ApplyEnv(lookup); err != nil {
		return cfg, fmt.Errorf("environment: %w", err)
	}
	cli.apply(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
