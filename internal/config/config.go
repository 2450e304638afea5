// Package config provides configuration types and defaults for pitcrew.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// Config holds all configuration options for pitcrew.
type Config struct {
	// RegistryURL is the base URL of the bot artifact registry.
	RegistryURL string `mapstructure:"registry_url"`

	// Workspace is the bot workspace root. Default: current directory.
	Workspace string `mapstructure:"workspace"`

	// Target is the build/deployment profile attached to uploaded artifacts.
	Target string `mapstructure:"target"`

	// AutoRefresh re-reconciles when the workspace changes on disk.
	AutoRefresh bool `mapstructure:"auto_refresh"`

	// AutoRefreshDebounce is the watcher debounce window.
	AutoRefreshDebounce time.Duration `mapstructure:"auto_refresh_debounce"`

	// CapabilityCacheTTL bounds how long a capability probe result may be
	// reused across refreshes. Zero disables the cache.
	CapabilityCacheTTL time.Duration `mapstructure:"capability_cache_ttl"`

	UI      UIConfig        `mapstructure:"ui"`
	Tracing TracingConfig   `mapstructure:"tracing"`
	Flags   map[string]bool `mapstructure:"flags"`
}

// UIConfig holds user interface configuration options.
type UIConfig struct {
	ShowStatusBar bool `mapstructure:"show_status_bar"`
	ShowOwners    bool `mapstructure:"show_owners"` // Show artifact owner names in the registry section
}

// TracingConfig holds distributed tracing configuration.
type TracingConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects where spans go: "none", "stdout", or "otlp".
	Exporter string `mapstructure:"exporter"`

	// OTLPEndpoint is the gRPC collector endpoint, required when
	// exporter is "otlp".
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate is the trace sampling ratio in [0.0, 1.0].
	SampleRate float64 `mapstructure:"sample_rate"`
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		RegistryURL:         "http://localhost:8780",
		Target:              "riscv32i-unknown-none-elf",
		AutoRefresh:         true,
		AutoRefreshDebounce: time.Second,
		CapabilityCacheTTL:  30 * time.Second,
		UI: UIConfig{
			ShowStatusBar: true,
			ShowOwners:    true,
		},
		Tracing: TracingConfig{
			Enabled:    false,
			Exporter:   "none",
			SampleRate: 1.0,
		},
	}
}

// Validate checks the configuration for inconsistencies.
func Validate(cfg Config) error {
	if cfg.RegistryURL == "" {
		return fmt.Errorf("registry_url is required")
	}
	if _, err := url.Parse(cfg.RegistryURL); err != nil {
		return fmt.Errorf("registry_url is not a valid URL: %w", err)
	}
	if cfg.Target == "" {
		return fmt.Errorf("target must not be empty")
	}
	if cfg.AutoRefreshDebounce < 0 {
		return fmt.Errorf("auto_refresh_debounce must not be negative, got %v", cfg.AutoRefreshDebounce)
	}
	if cfg.CapabilityCacheTTL < 0 {
		return fmt.Errorf("capability_cache_ttl must not be negative, got %v", cfg.CapabilityCacheTTL)
	}
	return ValidateTracing(cfg.Tracing)
}

// ValidateTracing checks the tracing section.
func ValidateTracing(tracing TracingConfig) error {
	if tracing.SampleRate < 0.0 || tracing.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tracing.SampleRate)
	}

	if tracing.Exporter != "" {
		switch tracing.Exporter {
		case "none", "stdout", "otlp":
			// Valid
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"stdout\", or \"otlp\", got %q", tracing.Exporter)
		}
	}

	if tracing.Enabled && tracing.Exporter == "otlp" && tracing.OTLPEndpoint == "" {
		return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
	}

	return nil
}

// SessionDBPath returns the path of the session database.
// Default: ~/.config/pitcrew/sessions.db
func SessionDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pitcrew/sessions.db"
	}
	return filepath.Join(home, ".config", "pitcrew", "sessions.db")
}

// IsFlagEnabled reports whether a named feature flag is set.
func (c Config) IsFlagEnabled(name string) bool {
	return c.Flags[name]
}

// DefaultConfigTemplate returns the commented starter config file content.
func DefaultConfigTemplate() string {
	return `# Pitcrew Configuration

# Base URL of the bot artifact registry
registry_url: http://localhost:8780

# Bot workspace root (default: current directory)
# workspace: /path/to/bots

# Build/deployment target attached to uploaded artifacts
target: riscv32i-unknown-none-elf

# Re-reconcile when the workspace changes on disk
auto_refresh: true
auto_refresh_debounce: 1s

# How long a capability probe result may be reused (0s disables the cache)
capability_cache_ttl: 30s

# UI settings
ui:
  show_status_bar: true   # Show status bar at bottom
  show_owners: true       # Show artifact owner names in the registry section

# Distributed tracing (spans around refresh and lifecycle workflows)
tracing:
  enabled: false
  # exporter: stdout      # "none", "stdout", or "otlp"
  # otlp_endpoint: localhost:4317
  sample_rate: 1.0
`
}
