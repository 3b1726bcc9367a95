package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// EnvConfigFile names the environment variable holding an optional overlay
// config file path. The stage binaries take no command-line arguments, so
// this is the only external knob.
const EnvConfigFile = "WEBCORPUS_CONFIG"

// Config holds the per-run settings shared by the pipeline stages. It is
// constructed once in main and passed down; components never consult
// process-wide globals.
type Config struct {
	// Directory layout of the shared artifact tree.
	RawDir       string
	ProcessedDir string
	StatusDir    string
	AnalysisDir  string

	// Marker polling interval for the wait primitive.
	PollInterval time.Duration

	// Pacing delay between documents in the extraction driver.
	PacingDelay time.Duration

	// Fetcher stage inputs.
	SeedFile       string
	UserAgent      string
	RequestTimeout time.Duration

	// Optional PDF rendering of the final report; empty disables it.
	ReportPDFPath string

	Verbose bool
}

// Default returns the configuration matching the original shared-volume
// layout.
func Default() Config {
	return Config{
		RawDir:         "/shared/raw",
		ProcessedDir:   "/shared/processed",
		StatusDir:      "/shared/status",
		AnalysisDir:    "/shared/analysis",
		PollInterval:   2 * time.Second,
		PacingDelay:    200 * time.Millisecond,
		SeedFile:       "/shared/seeds.txt",
		UserAgent:      "webcorpus/1.0 (+https://github.com/corpustools/webcorpus)",
		RequestTimeout: 10 * time.Second,
	}
}

// FetchMarkerPath is the artifact whose existence signals that the fetch
// stage deposited all raw documents.
func (c Config) FetchMarkerPath() string {
	return filepath.Join(c.StatusDir, "fetch_complete.json")
}

// ProcessMarkerPath is the artifact whose existence signals that the
// extraction stage persisted all records.
func (c Config) ProcessMarkerPath() string {
	return filepath.Join(c.StatusDir, "process_complete.json")
}

// ReportPath is the final corpus report artifact.
func (c Config) ReportPath() string {
	return filepath.Join(c.AnalysisDir, "final_report.json")
}

// Duration accepts human-readable values like "2s" or "200ms" in the
// overlay file, from YAML or JSON, plus raw nanosecond numbers.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		v, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("parse duration %q: %w", s, err)
		}
		*d = Duration(v)
		return nil
	}
	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("parse duration: %w", err)
	}
	*d = Duration(n)
	return nil
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		v, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("parse duration %q: %w", s, err)
		}
		*d = Duration(v)
		return nil
	}
	var n int64
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("parse duration: %w", err)
	}
	*d = Duration(n)
	return nil
}

// FileConfig is the overlay file schema. Zero values leave the corresponding
// Config field untouched.
type FileConfig struct {
	Raw       string `yaml:"raw" json:"raw"`
	Processed string `yaml:"processed" json:"processed"`
	Status    string `yaml:"status" json:"status"`
	Analysis  string `yaml:"analysis" json:"analysis"`

	PollInterval Duration `yaml:"pollInterval" json:"pollInterval"`
	PacingDelay  Duration `yaml:"pacingDelay" json:"pacingDelay"`

	Fetch struct {
		Seeds     string   `yaml:"seeds" json:"seeds"`
		UserAgent string   `yaml:"userAgent" json:"userAgent"`
		Timeout   Duration `yaml:"timeout" json:"timeout"`
	} `yaml:"fetch" json:"fetch"`

	ReportPDF string `yaml:"reportPDF" json:"reportPDF"`
	Verbose   bool   `yaml:"verbose" json:"verbose"`
}

// LoadFile reads YAML or JSON into FileConfig.
func LoadFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch filepath.Ext(path) {
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	}
	return fc, nil
}

// Apply overlays non-zero file values onto cfg.
func Apply(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	if fc.Raw != "" {
		cfg.RawDir = fc.Raw
	}
	if fc.Processed != "" {
		cfg.ProcessedDir = fc.Processed
	}
	if fc.Status != "" {
		cfg.StatusDir = fc.Status
	}
	if fc.Analysis != "" {
		cfg.AnalysisDir = fc.Analysis
	}
	if fc.PollInterval > 0 {
		cfg.PollInterval = time.Duration(fc.PollInterval)
	}
	if fc.PacingDelay > 0 {
		cfg.PacingDelay = time.Duration(fc.PacingDelay)
	}
	if fc.Fetch.Seeds != "" {
		cfg.SeedFile = fc.Fetch.Seeds
	}
	if fc.Fetch.UserAgent != "" {
		cfg.UserAgent = fc.Fetch.UserAgent
	}
	if fc.Fetch.Timeout > 0 {
		cfg.RequestTimeout = time.Duration(fc.Fetch.Timeout)
	}
	if fc.ReportPDF != "" {
		cfg.ReportPDFPath = fc.ReportPDF
	}
	if fc.Verbose {
		cfg.Verbose = true
	}
}

// Load builds the effective configuration: defaults, then the overlay file
// named by WEBCORPUS_CONFIG when set.
func Load() (Config, error) {
	cfg := Default()
	path := os.Getenv(EnvConfigFile)
	if path == "" {
		return cfg, nil
	}
	fc, err := LoadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("load config file %s: %w", path, err)
	}
	Apply(&cfg, fc)
	return cfg, Validate(cfg)
}

// Validate checks the handful of settings a stage cannot run without.
func Validate(cfg Config) error {
	if cfg.RawDir == "" || cfg.ProcessedDir == "" || cfg.StatusDir == "" || cfg.AnalysisDir == "" {
		return errors.New("config: all artifact directories are required")
	}
	if cfg.PollInterval <= 0 {
		return errors.New("config: poll interval must be positive")
	}
	return nil
}
