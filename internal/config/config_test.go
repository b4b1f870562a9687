package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hightidelight/osc-bridge/internal/highlight"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestDefault(t *testing.T) {
	c := Default()

	require.NoError(t, c.Validate())
	assert.Equal(t, "127.0.0.1:6013", c.ListenAddr())
	assert.Equal(t, "127.0.0.1:6011", c.ForwardAddr())
	assert.Equal(t, "/editor/highlights", c.Address)
	assert.Equal(t, "/editor/highlights", c.ForwardAddress)
	assert.Equal(t, 10*time.Millisecond, c.BatchInterval())
	assert.Equal(t, highlight.SchemaAuto, c.Schema)
	assert.False(t, c.Debug)
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, "bridge.yaml", `
listen_port: 7000
address: /tidal/hl
forward_port: 7001
batch_interval_ms: 0
schema: canonical
log_format: json
`)

	c := Default()
	require.NoError(t, c.LoadFile(path))

	assert.Equal(t, 7000, c.ListenPort)
	assert.Equal(t, "/tidal/hl", c.Address)
	assert.Equal(t, 7001, c.ForwardPort)
	assert.Equal(t, time.Duration(0), c.BatchInterval())
	assert.Equal(t, highlight.SchemaCanonical, c.Schema)
	assert.Equal(t, "json", c.LogFormat)

	// Untouched keys keep their defaults.
	assert.Equal(t, DefaultListenHost, c.ListenHost)
	assert.Equal(t, highlight.DefaultForwardAddress, c.ForwardAddress)
}

func TestLoadFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown key", "listen_prot: 1\n"},
		{"bad schema", "schema: tidal\n"},
		{"wrong type", "listen_port: many\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			assert.Error(t, c.LoadFile(writeFile(t, "c.yaml", tt.content)))
		})
	}

	c := Default()
	err := c.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadFile_Empty(t *testing.T) {
	c := Default()
	require.NoError(t, c.LoadFile(writeFile(t, "empty.yaml", "")))
	assert.Equal(t, Default(), c)
}

func TestApplyEnv(t *testing.T) {
	c := Default()
	err := c.ApplyEnv(envMap(map[string]string{
		"OSC_BRIDGE_LISTEN_PORT":       "6100",
		"OSC_BRIDGE_FORWARD_HOST":      "10.0.0.2",
		"OSC_BRIDGE_BATCH_INTERVAL_MS": " 25 ",
		"OSC_BRIDGE_SCHEMA":            "extended",
		"OSC_BRIDGE_DEBUG":             "true",
		"OSC_BRIDGE_METRICS_ADDR":      ":9464",
		"LISTEN_PORT":                  "1",
	}))
	require.NoError(t, err)

	assert.Equal(t, 6100, c.ListenPort)
	assert.Equal(t, "10.0.0.2", c.ForwardHost)
	assert.Equal(t, 25*time.Millisecond, c.BatchInterval())
	assert.Equal(t, highlight.SchemaExtended, c.Schema)
	assert.True(t, c.Debug)
	assert.Equal(t, ":9464", c.MetricsAddr)
}

func TestApplyEnv_Errors(t *testing.T) {
	c := Default()
	err := c.ApplyEnv(envMap(map[string]string{
		"OSC_BRIDGE_LISTEN_PORT": "high",
		"OSC_BRIDGE_DEBUG":       "maybe",
		"OSC_BRIDGE_SCHEMA":      "tidal",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OSC_BRIDGE_LISTEN_PORT")
	assert.Contains(t, err.Error(), "OSC_BRIDGE_DEBUG")
	assert.Contains(t, err.Error(), "OSC_BRIDGE_SCHEMA")
	assert.Equal(t, DefaultListenPort, c.ListenPort)
}

func TestLoadDotEnv(t *testing.T) {
	path := writeFile(t, ".env", "OSC_BRIDGE_TEST_DOTENV=from-file\nOSC_BRIDGE_TEST_PRESET=from-file\n")
	t.Setenv("OSC_BRIDGE_TEST_PRESET", "from-env")
	t.Cleanup(func() { os.Unsetenv("OSC_BRIDGE_TEST_DOTENV") })

	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "absent.env"), path))

	assert.Equal(t, "from-file", os.Getenv("OSC_BRIDGE_TEST_DOTENV"))
	assert.Equal(t, "from-env", os.Getenv("OSC_BRIDGE_TEST_PRESET"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"listen port negative", func(c *Config) { c.ListenPort = -1 }, "listen_port"},
		{"listen port too high", func(c *Config) { c.ListenPort = 70000 }, "listen_port"},
		{"forward port zero", func(c *Config) { c.ForwardPort = 0 }, "forward_port"},
		{"empty forward host", func(c *Config) { c.ForwardHost = "" }, "forward_host"},
		{"relative address", func(c *Config) { c.Address = "editor/highlights" }, "address"},
		{"empty forward address", func(c *Config) { c.ForwardAddress = "" }, "forward_address"},
		{"nul in address", func(c *Config) { c.Address = "/a\x00b" }, "NUL"},
		{"pattern in address", func(c *Config) { c.Address = "/editor/*" }, "reserved character '*'"},
		{"space in address", func(c *Config) { c.Address = "/editor/high lights" }, "reserved character ' '"},
		{"braces in forward address", func(c *Config) { c.ForwardAddress = "/editor/{a,b}" }, "forward_address"},
		{"negative interval", func(c *Config) { c.BatchIntervalMS = -5 }, "batch_interval_ms"},
		{"log format", func(c *Config) { c.LogFormat = "xml" }, "log_format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.modify(&c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	c := Default()
	c.ListenPort = 0
	assert.NoError(t, c.Validate(), "port 0 lets the OS choose")
}
