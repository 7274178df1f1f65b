// Package config provides configuration loading and validation for the CLI
// and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Prerequisite sources served by GET /api/{course}.
const (
	SourceStatic   = "static"
	SourcePostgres = "postgres"
	SourceNeo4j    = "neo4j"
)

// Config represents the configuration that can be loaded from a JSON or YAML
// file. All fields are optional; missing values use defaults or must be
// provided via CLI flags.
type Config struct {
	// Server
	Port int `json:"port,omitempty" yaml:"port,omitempty" validate:"gte=0,lte=65535"`

	// Catalog
	CatalogDir string `json:"catalog_dir,omitempty" yaml:"catalog_dir,omitempty"` // Directory holding programs.json; empty uses the built-in catalog

	// Prerequisite data served by this process
	PrereqSource  string `json:"prereq_source,omitempty" yaml:"prereq_source,omitempty" validate:"omitempty,oneof=static postgres neo4j"`
	PrereqFixture string `json:"prereq_fixture,omitempty" yaml:"prereq_fixture,omitempty"` // Fixture file for the static source

	// Prerequisite lookups made while assembling graphs
	LookupBaseURL     string `json:"lookup_base_url,omitempty" yaml:"lookup_base_url,omitempty" validate:"omitempty,url"`
	LookupTimeout     string `json:"lookup_timeout,omitempty" yaml:"lookup_timeout,omitempty"` // Go duration, e.g. "10s"; "0" means transport default
	LookupConcurrency int    `json:"lookup_concurrency,omitempty" yaml:"lookup_concurrency,omitempty" validate:"gte=0,lte=32"`

	// Storage
	DatabaseURL   string `json:"database_url,omitempty" yaml:"database_url,omitempty"` // PostgreSQL connection URL
	Neo4jURI      string `json:"neo4j_uri,omitempty" yaml:"neo4j_uri,omitempty"`
	Neo4jUser     string `json:"neo4j_user,omitempty" yaml:"neo4j_user,omitempty"`
	Neo4jPassword string `json:"neo4j_password,omitempty" yaml:"neo4j_password,omitempty"`
	Neo4jDatabase string `json:"neo4j_database,omitempty" yaml:"neo4j_database,omitempty"`

	// Behavior
	Verbose bool `json:"verbose,omitempty" yaml:"verbose,omitempty"` // Print box summaries for each step
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Port:              8080,
		PrereqSource:      SourceStatic,
		LookupTimeout:     "10s",
		LookupConcurrency: 0,
		Neo4jDatabase:     "neo4j",
	}
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by
// extension (.yaml / .yml, anything else is JSON).
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// ApplyEnv overrides fields from the environment. Unset variables leave the
// field alone; malformed numbers are reported.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("COURSEMATE_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid COURSEMATE_PORT: %w", err)
		}
		c.Port = port
	}
	if v := os.Getenv("COURSEMATE_LOOKUP_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid COURSEMATE_LOOKUP_CONCURRENCY: %w", err)
		}
		c.LookupConcurrency = n
	}

	setString(&c.CatalogDir, "COURSEMATE_CATALOG_DIR")
	setString(&c.PrereqSource, "COURSEMATE_PREREQ_SOURCE")
	setString(&c.PrereqFixture, "COURSEMATE_PREREQ_FIXTURE")
	setString(&c.LookupBaseURL, "COURSEMATE_LOOKUP_BASE_URL")
	setString(&c.LookupTimeout, "COURSEMATE_LOOKUP_TIMEOUT")
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.Neo4jURI, "NEO4J_URI")
	setString(&c.Neo4jUser, "NEO4J_USER")
	setString(&c.Neo4jPassword, "NEO4J_PASSWORD")
	setString(&c.Neo4jDatabase, "NEO4J_DATABASE")

	if v := os.Getenv("COURSEMATE_VERBOSE"); v != "" {
		verbose, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid COURSEMATE_VERBOSE: %w", err)
		}
		c.Verbose = verbose
	}
	return nil
}

func setString(field *string, key string) {
	if v := os.Getenv(key); v != "" {
		*field = v
	}
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if _, err := c.Timeout(); err != nil {
		return fmt.Errorf("config error: 'lookup_timeout' %w", err)
	}

	switch c.PrereqSource {
	case SourcePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config error: prereq_source %q requires 'database_url'", c.PrereqSource)
		}
	case SourceNeo4j:
		if c.Neo4jURI == "" {
			return fmt.Errorf("config error: prereq_source %q requires 'neo4j_uri'", c.PrereqSource)
		}
	}

	// Validate file paths exist (if specified)
	if c.CatalogDir != "" {
		if info, err := os.Stat(c.CatalogDir); err != nil || !info.IsDir() {
			return fmt.Errorf("config error: catalog directory not found: %s", c.CatalogDir)
		}
	}
	if c.PrereqFixture != "" {
		if _, err := os.Stat(c.PrereqFixture); os.IsNotExist(err) {
			return fmt.Errorf("config error: prerequisite fixture not found: %s", c.PrereqFixture)
		}
	}

	return nil
}

// Timeout parses LookupTimeout. Empty means the default; "0" means no
// client-side timeout.
func (c *Config) Timeout() (time.Duration, error) {
	if c.LookupTimeout == "" {
		return 10 * time.Second, nil
	}
	if c.LookupTimeout == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.LookupTimeout)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("must be non-negative, got %s", d)
	}
	return d, nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.CatalogDir == "" {
		result.CatalogDir = defaults.CatalogDir
	}
	if result.PrereqSource == "" {
		result.PrereqSource = defaults.PrereqSource
	}
	if result.PrereqFixture == "" {
		result.PrereqFixture = defaults.PrereqFixture
	}
	if result.LookupBaseURL == "" {
		result.LookupBaseURL = defaults.LookupBaseURL
	}
	if result.LookupTimeout == "" {
		result.LookupTimeout = defaults.LookupTimeout
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.Neo4jURI == "" {
		result.Neo4jURI = defaults.Neo4jURI
	}
	if result.Neo4jUser == "" {
		result.Neo4jUser = defaults.Neo4jUser
	}
	if result.Neo4jPassword == "" {
		result.Neo4jPassword = defaults.Neo4jPassword
	}
	if result.Neo4jDatabase == "" {
		result.Neo4jDatabase = defaults.Neo4jDatabase
	}

	// Int fields: use default if zero
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.LookupConcurrency == 0 {
		result.LookupConcurrency = defaults.LookupConcurrency
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// Resolve loads path (when non-empty), applies the environment, and merges
// defaults. The result is validated.
func Resolve(path string) (Config, error) {
	cfg := &Config{}
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return Config{}, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return Config{}, err
	}
	merged := cfg.MergeWithDefaults(Defaults())
	if err := merged.Validate(); err != nil {
		return Config{}, err
	}
	return merged, nil
}
