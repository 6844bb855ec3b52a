// Package config provides configuration management for the analysis
// pipeline and the submission client.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrMissingInputDir          = errors.New("input.dir is required")
	ErrMissingOutputDir         = errors.New("output.dir is required")
	ErrInvalidWorkers           = errors.New("analysis.workers must be non-negative")
	ErrInvalidCompare           = errors.New("analysis.compare must name exactly two regions")
	ErrInvalidLogLevel          = errors.New("logging.level must be one of: debug, info, warn, error")
	ErrInvalidLogFormat         = errors.New("logging.format must be 'text' or 'json'")
	ErrMissingServerURL         = errors.New("submission.server_url is required")
	ErrMissingQueueDir          = errors.New("submission.queue_dir is required")
	ErrInvalidMaxAttempts       = errors.New("retry.max_attempts must be at least 1")
	ErrInvalidInitialDelay      = errors.New("retry.initial_delay_ms must be non-negative")
	ErrInvalidBackoffMultiplier = errors.New("retry.backoff_multiplier must be >= 1.0")
	ErrInvalidTimeout           = errors.New("retry.timeout_sec must be at least 1")
)

// Config represents the complete pipeline configuration.
type Config struct {
	Input      InputConfig      `yaml:"input"`
	Output     OutputConfig     `yaml:"output"`
	Analysis   AnalysisConfig   `yaml:"analysis"`
	Submission SubmissionConfig `yaml:"submission"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// InputConfig locates the crawl output files.
type InputConfig struct {
	// Dir holds tranco-<region>.json/.zip data files and
	// errors-<region>.json logs.
	Dir string `yaml:"dir"`
}

// OutputConfig defines which export sinks run and where they write.
type OutputConfig struct {
	Dir    string `yaml:"dir"`
	CSV    bool   `yaml:"csv"`
	Excel  bool   `yaml:"excel"`
	Report bool   `yaml:"report"`
}

// AnalysisConfig tunes the aggregation engine.
type AnalysisConfig struct {
	// Workers is the aggregation worker count; 0 means one per CPU.
	Workers int `yaml:"workers"`
	// Compare names the two regions to join, e.g. [germany, us].
	Compare []string `yaml:"compare"`
	// Keywords overrides the button categorizer's keyword lists,
	// keyed by category name (accept, reject, settings).
	Keywords map[string][]string `yaml:"keywords"`
}

// SubmissionConfig drives the website submission client.
type SubmissionConfig struct {
	ServerURL  string      `yaml:"server_url"`
	Ports      []int       `yaml:"ports"`
	Email      string      `yaml:"email"`
	Ruleset    string      `yaml:"ruleset"`
	Gatherers  []string    `yaml:"gatherers"`
	QueueDir   string      `yaml:"queue_dir"`
	TimeoutSec int         `yaml:"timeout_sec"`
	Retry      RetryPolicy `yaml:"retry"`
}

// RetryPolicy defines retry behavior for submission requests.
type RetryPolicy struct {
	MaxAttempts       int     `yaml:"max_attempts"`
	InitialDelayMs    int     `yaml:"initial_delay_ms"`
	MaxDelayMs        int     `yaml:"max_delay_ms"`
	BackoffMultiplier float64 `yaml:"backoff_multiplier"`
	TimeoutSec        int     `yaml:"timeout_sec"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file is given: current
// conventions of the consent-observatory server and crawl runners.
func Default() *Config {
	return &Config{
		Input:  InputConfig{Dir: "data/examples"},
		Output: OutputConfig{Dir: "data/output", CSV: true, Excel: true, Report: true},
		Analysis: AnalysisConfig{
			Workers: 0,
		},
		Submission: SubmissionConfig{
			ServerURL: "http://localhost:5173",
			Ports:     []int{5173, 3000, 80},
			Email:     "researcher@example.com",
			Ruleset:   "Scrape-O-Matic Data Gatherers",
			Gatherers: []string{
				"CMPGatherer",
				"ButtonGatherer",
				"CookieGatherer",
				"VisibilityAnalyzer",
				"InspectorAnalyzer",
				"EventListenerGatherer",
				"WordBoxGatherer",
			},
			QueueDir:   "data/queue",
			TimeoutSec: 240,
			Retry: RetryPolicy{
				MaxAttempts:       3,
				InitialDelayMs:    500,
				MaxDelayMs:        30000,
				BackoffMultiplier: 2.0,
				TimeoutSec:        60,
			},
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// LoadConfig loads configuration from a YAML file, applied on top of
// the defaults.
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Input.Dir == "" {
		return ErrMissingInputDir
	}

	if c.Output.Dir == "" {
		return ErrMissingOutputDir
	}

	if c.Analysis.Workers < 0 {
		return ErrInvalidWorkers
	}

	if len(c.Analysis.Compare) != 0 && len(c.Analysis.Compare) != 2 {
		return ErrInvalidCompare
	}

	if c.Submission.ServerURL == "" {
		return ErrMissingServerURL
	}

	if c.Submission.QueueDir == "" {
		return ErrMissingQueueDir
	}

	if err := c.Submission.Retry.validate(); err != nil {
		return err
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return ErrInvalidLogLevel
	}

	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return ErrInvalidLogFormat
	}

	return nil
}

func (rp *RetryPolicy) validate() error {
	if rp.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}

	if rp.InitialDelayMs < 0 {
		return ErrInvalidInitialDelay
	}

	if rp.BackoffMultiplier < 1.0 {
		return ErrInvalidBackoffMultiplier
	}

	if rp.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}

	return nil
}

// GetRetryDelay calculates exponential backoff delay for attempt number.
func (rp *RetryPolicy) GetRetryDelay(attempt int) time.Duration {
	if attempt <= 1 {
		return 0
	}

	delayMs := float64(rp.InitialDelayMs)
	for i := 1; i < attempt; i++ {
		delayMs *= rp.BackoffMultiplier
	}

	if int(delayMs) > rp.MaxDelayMs {
		delayMs = float64(rp.MaxDelayMs)
	}

	return time.Duration(int(delayMs)) * time.Millisecond
}

// GetTimeout returns the per-request timeout duration.
func (rp *RetryPolicy) GetTimeout() time.Duration {
	return time.Duration(rp.TimeoutSec) * time.Second
}

// GetSubmissionTimeout returns the overall submission wait budget.
func (c *SubmissionConfig) GetSubmissionTimeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Input: %s, Output: %s, Workers: %d}",
		c.Input.Dir,
		c.Output.Dir,
		c.Analysis.Workers,
	)
}
