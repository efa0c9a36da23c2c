// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/poiesic/notevec/notes"
	"github.com/poiesic/notevec/sentence"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// EnvDSN names the environment variable supplying the source DSN when the
// configuration leaves it empty.
const EnvDSN = "NOTEVEC_DSN"

// Index mode names accepted in configuration.
const (
	IndexPositional      = "positional"
	IndexFirstOccurrence = "first_occurrence"
)

// SourceConfig selects the notes database.
type SourceConfig struct {
	// Driver is the database/sql driver name: "mysql" or "sqlite3".
	Driver string `yaml:"driver"`

	// DSN is the driver-specific data source name.
	// Example: "user:pass@tcp(localhost:3306)/mimic"
	DSN string `yaml:"dsn"`

	// Table is the notes table. Default: NOTEEVENTS
	Table string `yaml:"table"`
}

// Config holds configuration for a training run.
type Config struct {
	Source SourceConfig `yaml:"source"`

	// Artifact is the path of the saved model. Default: d2v-200
	Artifact string `yaml:"artifact"`

	// StateDir is the badger directory for run records and exported vectors.
	// Empty disables both.
	StateDir string `yaml:"state_dir"`

	// MetricsFile is where Prometheus textfile metrics are written.
	// Empty disables metrics.
	MetricsFile string `yaml:"metrics_file"`

	// Epochs is the number of training passes. 0 builds the vocabulary only.
	Epochs int `yaml:"epochs"`

	// Language is the BCP 47 tag used for sentence boundaries. Default: en
	Language string `yaml:"language"`

	// IndexMode is "positional" or "first_occurrence". Default: positional
	IndexMode string `yaml:"index_mode"`
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithDriver sets the database/sql driver name.
func WithDriver(driver string) ConfigOption {
	return func(c *Config) {
		c.Source.Driver = driver
	}
}

// WithDSN sets the data source name.
func WithDSN(dsn string) ConfigOption {
	return func(c *Config) {
		c.Source.DSN = dsn
	}
}

// WithTable sets the notes table.
func WithTable(table string) ConfigOption {
	return func(c *Config) {
		c.Source.Table = table
	}
}

// WithArtifact sets the model artifact path.
func WithArtifact(path string) ConfigOption {
	return func(c *Config) {
		c.Artifact = path
	}
}

// WithStateDir sets the state directory.
func WithStateDir(dir string) ConfigOption {
	return func(c *Config) {
		c.StateDir = dir
	}
}

// WithMetricsFile sets the metrics textfile path.
func WithMetricsFile(path string) ConfigOption {
	return func(c *Config) {
		c.MetricsFile = path
	}
}

// WithEpochs sets the number of training epochs.
func WithEpochs(epochs int) ConfigOption {
	return func(c *Config) {
		c.Epochs = epochs
	}
}

// WithLanguage sets the sentence boundary language.
func WithLanguage(lang string) ConfigOption {
	return func(c *Config) {
		c.Language = lang
	}
}

// WithIndexMode sets the sentence index mode.
func WithIndexMode(mode string) ConfigOption {
	return func(c *Config) {
		c.IndexMode = mode
	}
}

// DefaultConfig returns a Config reading NOTEEVENTS from MySQL and writing
// d2v-200 in the working directory.
func DefaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			Driver: "mysql",
			Table:  notes.DefaultTable,
		},
		Artifact:  "d2v-200",
		Language:  "en",
		IndexMode: IndexPositional,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Load reads a YAML configuration file. Keys missing from the file keep
// their default values.
func Load(path string, opts ...ConfigOption) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg, nil
}

// LoadEnv loads environment variables from .env files. Missing files are
// ignored. With no arguments it loads ".env" in the working directory.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

// Normalize ensures the configuration is in a canonical form.
// An empty DSN is taken from the NOTEVEC_DSN environment variable.
func (c *Config) Normalize() {
	c.Source.Driver = strings.ToLower(strings.TrimSpace(c.Source.Driver))
	c.Source.DSN = strings.TrimSpace(c.Source.DSN)
	if c.Source.DSN == "" {
		c.Source.DSN = strings.TrimSpace(os.Getenv(EnvDSN))
	}
	c.Source.Table = strings.TrimSpace(c.Source.Table)
	if c.Source.Table == "" {
		c.Source.Table = notes.DefaultTable
	}
	c.IndexMode = strings.ToLower(strings.TrimSpace(c.IndexMode))
	if c.IndexMode == "" {
		c.IndexMode = IndexPositional
	}
	if strings.TrimSpace(c.Language) == "" {
		c.Language = "en"
	}
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.Source.Driver == "" {
		return errors.New("config: source.driver is required")
	}
	if c.Source.DSN == "" {
		return fmt.Errorf("config: source.dsn is required (or set %s)", EnvDSN)
	}
	if c.Artifact == "" {
		return errors.New("config: artifact is required")
	}
	if c.Epochs < 0 {
		return errors.New("config: epochs must not be negative")
	}
	if _, err := c.LanguageTag(); err != nil {
		return err
	}
	if _, err := c.SentenceIndexMode(); err != nil {
		return err
	}
	return nil
}

// LanguageTag parses the configured language.
func (c *Config) LanguageTag() (language.Tag, error) {
	tag, err := language.Parse(c.Language)
	if err != nil {
		return language.Und, fmt.Errorf("config: invalid language %q: %w", c.Language, err)
	}
	return tag, nil
}

// SentenceIndexMode maps the configured index mode.
func (c *Config) SentenceIndexMode() (sentence.IndexMode, error) {
	switch c.IndexMode {
	case IndexPositional:
		return sentence.PositionalIndex, nil
	case IndexFirstOccurrence:
		return sentence.FirstOccurrenceIndex, nil
	default:
		return 0, fmt.Errorf("config: index_mode must be %q or %q", IndexPositional, IndexFirstOccurrence)
	}
}
