// Package config provides process-wide configuration for sparkbridge.
// Values come from environment variables, optionally pre-seeded from a YAML
// file; environment values always win. The required set is validated once at
// startup and the resulting Config is immutable for the process lifetime.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrMissingConfig marks a fatal pre-flight configuration failure. A process
// must not reach the dispatch phase with this error outstanding.
var ErrMissingConfig = errors.New("missing required configuration")

// Config holds runtime configuration for the bridge.
//
// APIURL, TenantName and SyntheticKey form the endpoint configuration of the
// remote calculation API. ServeAsTool selects the execution mode: tool-server
// (MCP over stdio) when true, one-shot file run when false. RequestFile is
// only consulted in one-shot mode. AuditDB is optional; when empty the
// invocation log is disabled.
type Config struct {
	APIURL       string `yaml:"api_url"`       // API_URL
	TenantName   string `yaml:"tenant_name"`   // TENANT_NAME — default: "presales"
	SyntheticKey string `yaml:"synthetic_key"` // SYNTHETIC_KEY (secret)
	ServeAsTool  *bool  `yaml:"serve_as_tool"` // SERVE_AS_TOOL — required, no default
	RequestFile  string `yaml:"request_file"`  // API_JSON — input envelope path
	AuditDB      string `yaml:"audit_db"`      // AUDIT_DB — SQLite path, optional
}

const (
	envKeyAPIURL       = "API_URL"
	envKeyTenantName   = "TENANT_NAME"
	envKeySyntheticKey = "SYNTHETIC_KEY"
	envKeyServeAsTool  = "SERVE_AS_TOOL"
	envKeyRequestFile  = "API_JSON"
	envKeyAuditDB      = "AUDIT_DB"

	defaultTenantName = "presales"
)

// Load builds the configuration from the optional YAML file at path (skipped
// when path is empty) overlaid with environment variables.
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" {
		fileCfg, err := fromFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg = fileCfg
	}
	overlayEnv(&cfg)

	if cfg.TenantName == "" {
		cfg.TenantName = defaultTenantName
	}
	return cfg, nil
}

// Validate checks the fatal-if-absent set: endpoint URL, secret, mode flag,
// and (one-shot mode only) the request file path. It reports every missing
// key at once so operators fix the environment in a single pass.
func (c Config) Validate() error {
	var missing []string
	if c.APIURL == "" {
		missing = append(missing, envKeyAPIURL)
	}
	if c.SyntheticKey == "" {
		missing = append(missing, envKeySyntheticKey)
	}
	if c.ServeAsTool == nil {
		missing = append(missing, envKeyServeAsTool)
	} else if !*c.ServeAsTool && c.RequestFile == "" {
		missing = append(missing, envKeyRequestFile)
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingConfig, strings.Join(missing, ", "))
	}
	return nil
}

// ToolMode reports whether the process runs as a long-lived tool server.
// Only meaningful after Validate has passed.
func (c Config) ToolMode() bool {
	return c.ServeAsTool != nil && *c.ServeAsTool
}

// fromFile parses a YAML configuration file.
func fromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// overlayEnv applies environment variables on top of cfg. Set variables win
// over file values; unset variables leave the file values intact.
func overlayEnv(cfg *Config) {
	cfg.APIURL = envOr(envKeyAPIURL, cfg.APIURL)
	cfg.TenantName = envOr(envKeyTenantName, cfg.TenantName)
	cfg.SyntheticKey = envOr(envKeySyntheticKey, cfg.SyntheticKey)
	cfg.RequestFile = envOr(envKeyRequestFile, cfg.RequestFile)
	cfg.AuditDB = envOr(envKeyAuditDB, cfg.AuditDB)

	if raw := os.Getenv(envKeyServeAsTool); raw != "" {
		// Invalid booleans count as unset rather than silently defaulting;
		// Validate then rejects the configuration.
		if v, err := strconv.ParseBool(raw); err == nil {
			cfg.ServeAsTool = &v
		} else {
			cfg.ServeAsTool = nil
		}
	}
}

// envOr returns the value of the environment variable key, or fallback if not set.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
