// Package config loads bridge settings from defaults, an optional YAML file
// and OSC_BRIDGE_* environment variables. Command-line flags are layered on
// top by the caller.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/hightidelight/osc-bridge/internal/highlight"
)

// EnvPrefix prefixes every environment variable the bridge reads.
const EnvPrefix = "OSC_BRIDGE_"

const (
	DefaultListenHost      = "127.0.0.1"
	DefaultListenPort      = 6013
	DefaultForwardHost     = "127.0.0.1"
	DefaultForwardPort     = 6011
	DefaultBatchIntervalMS = 10
	DefaultLogFormat       = "text"
)

// Config is the complete bridge configuration.
type Config struct {
	ListenHost      string           `yaml:"listen_host"`
	ListenPort      int              `yaml:"listen_port"`
	Address         string           `yaml:"address"`
	ForwardHost     string           `yaml:"forward_host"`
	ForwardPort     int              `yaml:"forward_port"`
	ForwardAddress  string           `yaml:"forward_address"`
	BatchIntervalMS int              `yaml:"batch_interval_ms"` // 0 selects the serial model
	Schema          highlight.Schema `yaml:"schema"`
	Debug           bool             `yaml:"debug"`
	LogFormat       string           `yaml:"log_format"`
	MetricsAddr     string           `yaml:"metrics_addr"` // empty disables the endpoint
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		ListenHost:      DefaultListenHost,
		ListenPort:      DefaultListenPort,
		Address:         highlight.DefaultAddress,
		ForwardHost:     DefaultForwardHost,
		ForwardPort:     DefaultForwardPort,
		ForwardAddress:  highlight.DefaultForwardAddress,
		BatchIntervalMS: DefaultBatchIntervalMS,
		Schema:          highlight.SchemaAuto,
		LogFormat:       DefaultLogFormat,
	}
}

// LoadFile overlays the YAML file at path onto c. Keys missing from the file
// keep their current values; unknown keys are an error.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// LoadDotEnv loads the given .env files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overlays OSC_BRIDGE_* variables found through lookup, which is
// normally os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	var errs []error

	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			return
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
			return
		}
		*dst = n
	}

	str("LISTEN_HOST", &c.ListenHost)
	num("LISTEN_PORT", &c.ListenPort)
	str("ADDRESS", &c.Address)
	str("FORWARD_HOST", &c.ForwardHost)
	num("FORWARD_PORT", &c.ForwardPort)
	str("FORWARD_ADDRESS", &c.ForwardAddress)
	num("BATCH_INTERVAL_MS", &c.BatchIntervalMS)
	str("LOG_FORMAT", &c.LogFormat)
	str("METRICS_ADDR", &c.MetricsAddr)

	if v, ok := lookup(EnvPrefix + "SCHEMA"); ok {
		if err := c.Schema.UnmarshalText([]byte(v)); err != nil {
			errs = append(errs, fmt.Errorf("%sSCHEMA: %w", EnvPrefix, err))
		}
	}
	if v, ok := lookup(EnvPrefix + "DEBUG"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("%sDEBUG: %w", EnvPrefix, err))
		} else {
			c.Debug = b
		}
	}

	return errors.Join(errs...)
}

// Validate reports every invalid field.
func (c Config) Validate() error {
	var errs []error

	if c.ListenPort < 0 || c.ListenPort > 65535 {
		errs = append(errs, fmt.Errorf("listen_port %d out of range 0-65535", c.ListenPort))
	}
	if c.ForwardPort < 1 || c.ForwardPort > 65535 {
		errs = append(errs, fmt.Errorf("forward_port %d out of range 1-65535", c.ForwardPort))
	}
	if c.ForwardHost == "" {
		errs = append(errs, errors.New("forward_host is empty"))
	}
	if err := checkAddress("address", c.Address); err != nil {
		errs = append(errs, err)
	}
	if err := checkAddress("forward_address", c.ForwardAddress); err != nil {
		errs = append(errs, err)
	}
	if c.BatchIntervalMS < 0 {
		errs = append(errs, fmt.Errorf("batch_interval_ms %d is negative", c.BatchIntervalMS))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format %q (want text or json)", c.LogFormat))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// reservedAddressChars may not appear in a literal OSC address. They are
// pattern syntax, separators or padding in the OSC 1.0 grammar.
const reservedAddressChars = "*?,[]{}# "

func checkAddress(field, addr string) error {
	if !strings.HasPrefix(addr, "/") {
		return fmt.Errorf("%s %q must start with /", field, addr)
	}
	if strings.ContainsRune(addr, 0) {
		return fmt.Errorf("%s contains a NUL byte", field)
	}
	if i := strings.IndexAny(addr, reservedAddressChars); i >= 0 {
		return fmt.Errorf("%s %q contains reserved character %q", field, addr, addr[i])
	}
	return nil
}

// BatchInterval is BatchIntervalMS as a duration. Zero means serial mode.
func (c Config) BatchInterval() time.Duration {
	return time.Duration(c.BatchIntervalMS) * time.Millisecond
}

// ListenAddr is the host:port the bridge receives on.
func (c Config) ListenAddr() string {
	return net.JoinHostPort(c.ListenHost, strconv.Itoa(c.ListenPort))
}

// ForwardAddr is the host:port highlights are sent to.
func (c Config) ForwardAddr() string {
	return net.JoinHostPort(c.ForwardHost, strconv.Itoa(c.ForwardPort))
}
