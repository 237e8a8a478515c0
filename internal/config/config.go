// Package config defines the run configuration of dplace2cldf.
//
// A configuration is assembled in layers: Default values, an optional YAML
// file (Load), environment overrides (ApplyEnv) and finally command-line
// flags set by the caller. Validate lints the result.
//
// Example:
//
//	job: dplace-nightly
//	source: { root: ./dplace-data }
//	target: { root: ./cldf }
//	log:    { level: info, format: json }
//	metrics:
//	  backend: prompush
//	  pushgateway_url: http://pushgateway:9091
//	export:
//	  kind: sqlite
//	  dsn: ./cldf/dplace.sqlite
package config

import (
	"bytes"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"dplace2cldf/internal/errs"
)

// Config is the top-level configuration object.
type Config struct {
	// Job labels metrics and log lines of one run.
	Job     string  `yaml:"job"`
	Source  Source  `yaml:"source"`
	Target  Target  `yaml:"target"`
	Log     Log     `yaml:"log"`
	Metrics Metrics `yaml:"metrics"`
	Export  Export  `yaml:"export"`
}

// Source locates the D-PLACE repository.
type Source struct {
	Root string `yaml:"root"`
}

// Target locates the directory receiving one CLDF dataset per source dataset.
type Target struct {
	Root string `yaml:"root"`
}

// Log configures the process logger.
type Log struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Metrics selects the metrics backend.
type Metrics struct {
	Backend        string   `yaml:"backend"` // "", none, prompush, datadog
	PushgatewayURL string   `yaml:"pushgateway_url"`
	DatadogAddr    string   `yaml:"datadog_addr"`
	Namespace      string   `yaml:"namespace"`
	Tags           []string `yaml:"tags"`
}

// Export optionally loads every validated dataset into a SQL database.
type Export struct {
	// Kind names a registered storage backend; empty disables export.
	Kind        string `yaml:"kind"`
	DSN         string `yaml:"dsn"`
	TablePrefix string `yaml:"table_prefix"`
	BatchSize   int    `yaml:"batch_size"`
}

// Enabled reports whether database export is configured.
func (e Export) Enabled() bool { return strings.TrimSpace(e.Kind) != "" }

// Default returns the built-in configuration: read from the parent directory
// and write to ../cldf.
func Default() Config {
	return Config{
		Job:    "dplace2cldf",
		Source: Source{Root: ".."},
		Target: Target{Root: "../cldf"},
		Log:    Log{Level: "info", Format: "text"},
		Export: Export{BatchSize: 500},
	}
}

// Load reads a YAML file over the defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, errs.E("config.load", errs.KindIO, path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, errs.E("config.load", errs.KindConfig, path, err)
	}
	return cfg, nil
}

// Environment variables consulted by ApplyEnv.
const (
	EnvMetricsBackend = "METRICS_BACKEND"
	EnvPushgatewayURL = "PUSHGATEWAY_URL"
	EnvDatadogAddr    = "DD_AGENT_ADDR"
	EnvExportDSN      = "DPLACE2CLDF_EXPORT_DSN"
)

// ApplyEnv overrides cfg from the environment. getenv is usually os.Getenv.
func ApplyEnv(cfg *Config, getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&cfg.Metrics.Backend, EnvMetricsBackend)
	set(&cfg.Metrics.PushgatewayURL, EnvPushgatewayURL)
	set(&cfg.Metrics.DatadogAddr, EnvDatadogAddr)
	set(&cfg.Export.DSN, EnvExportDSN)
}
