// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"shipping-cost/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Catalog locates the rate catalog file
	Catalog CatalogConfig `json:"catalog"`

	// Locations locates the zone table
	Locations LocationsConfig `json:"locations"`

	// Snapshot controls reference data refresh
	Snapshot SnapshotConfig `json:"snapshot"`

	// Calculator controls calculation model selection
	Calculator CalculatorConfig `json:"calculator"`

	// Server contains HTTP server settings
	Server ServerConfig `json:"server"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// CatalogConfig contains rate catalog settings
type CatalogConfig struct {
	// Path is the .hcl or .json catalog file
	Path string `json:"path"`

	// ItemRatesCSV optionally replaces the catalog's items with a CSV export
	ItemRatesCSV string `json:"item_rates_csv,omitempty"`
}

// LocationsConfig contains zone table settings
type LocationsConfig struct {
	// CSVPath is the zone table export
	CSVPath string `json:"csv_path"`

	// Delimiter is the CSV field separator
	Delimiter string `json:"delimiter"`

	// StrictLookup rejects duplicate postal codes instead of taking the first match
	StrictLookup bool `json:"strict_lookup"`

	// PostgresDSN switches the zone table and item rates to PostgreSQL
	PostgresDSN string `json:"postgres_dsn,omitempty"`
}

// SnapshotConfig contains reference data refresh settings
type SnapshotConfig struct {
	// TTLSeconds is how long a loaded snapshot is served before reloading
	TTLSeconds int `json:"ttl_seconds"`

	// MaxStaleSeconds is how long a stale snapshot may be served after failed reloads
	MaxStaleSeconds int `json:"max_stale_seconds"`

	// RefreshTimeoutSeconds bounds a single reload
	RefreshTimeoutSeconds int `json:"refresh_timeout_seconds"`
}

// CalculatorConfig contains calculation settings
type CalculatorConfig struct {
	// Model overrides the catalog's model ("distance" or "flat")
	Model string `json:"model,omitempty"`

	// FreeRadiusPolicy is "waive_order" or "waive_delivery"
	FreeRadiusPolicy string `json:"free_radius_policy"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	// Address to listen on
	Address string `json:"address"`

	// ReadTimeoutSeconds for requests
	ReadTimeoutSeconds int `json:"read_timeout_seconds"`

	// WriteTimeoutSeconds for responses
	WriteTimeoutSeconds int `json:"write_timeout_seconds"`

	// MaxBodyBytes limits request body size
	MaxBodyBytes int64 `json:"max_body_bytes"`

	// EnableCORS enables CORS headers
	EnableCORS bool `json:"enable_cors"`

	// AllowedOrigins for CORS
	AllowedOrigins []string `json:"allowed_origins,omitempty"`

	// EnableMetrics exposes GET /metrics
	EnableMetrics bool `json:"enable_metrics"`
}

// Default returns a default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".shipping-cost")

	return &Config{
		Version: "1.0",
		Catalog: CatalogConfig{
			Path: filepath.Join(dataDir, "catalog.hcl"),
		},
		Locations: LocationsConfig{
			CSVPath:      filepath.Join(dataDir, "distance.csv"),
			Delimiter:    ";",
			StrictLookup: false,
		},
		Snapshot: SnapshotConfig{
			TTLSeconds:            300, // 5 minutes
			MaxStaleSeconds:       3600,
			RefreshTimeoutSeconds: 30,
		},
		Calculator: CalculatorConfig{
			FreeRadiusPolicy: "waive_order",
		},
		Server: ServerConfig{
			Address:             ":8080",
			ReadTimeoutSeconds:  10,
			WriteTimeoutSeconds: 30,
			MaxBodyBytes:        1 << 20,
			EnableCORS:          true,
			AllowedOrigins:      []string{"*"},
			EnableMetrics:       true,
		},
		Logging: logging.DefaultConfig(),
	}
}

// TTL returns the snapshot TTL as a duration
func (s SnapshotConfig) TTL() time.Duration {
	return time.Duration(s.TTLSeconds) * time.Second
}

// MaxStale returns the stale window as a duration
func (s SnapshotConfig) MaxStale() time.Duration {
	return time.Duration(s.MaxStaleSeconds) * time.Second
}

// RefreshTimeout returns the reload bound as a duration
func (s SnapshotConfig) RefreshTimeout() time.Duration {
	return time.Duration(s.RefreshTimeoutSeconds) * time.Second
}

// Load loads configuration from a file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, err
	}

	// Relative data paths are resolved against the config file's directory
	base := filepath.Dir(path)
	config.Catalog.Path = resolvePath(base, config.Catalog.Path)
	config.Catalog.ItemRatesCSV = resolvePath(base, config.Catalog.ItemRatesCSV)
	config.Locations.CSVPath = resolvePath(base, config.Locations.CSVPath)

	return config, nil
}

func resolvePath(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
