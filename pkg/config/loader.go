package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Overrides carries command-line values. Nil fields were not set and leave
// the lower layers untouched.
type Overrides struct {
	Host         *string
	Port         *int
	UpstreamHost *string
	UpstreamPort *int
	UpstreamType *string
	LogLevel     *string
}

// Load loads configuration from a layered set of sources.
//
// The loading order is:
//  1. Built-in defaults
//  2. YAML config file (explicit path, AZPROXY_CONFIG env, ./config.yaml, /etc/azproxy/config.yaml)
//  3. Environment variable overrides
//  4. Command-line overrides
//  5. File reference resolution (_file suffix)
//  6. Validation
func Load(configPath string, flags Overrides) (*Config, error) {
	cfg := Defaults()

	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}

	applyFlagOverrides(&cfg, flags)

	if err := resolveFileReferences(&cfg); err != nil {
		return nil, fmt.Errorf("resolving file references: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// discoverConfigFile finds the config file path using the discovery order:
// 1. Explicit configPath argument
// 2. AZPROXY_CONFIG environment variable
// 3. ./config.yaml in the current directory
// 4. /etc/azproxy/config.yaml
//
// Returns empty string if no config file is found.
func discoverConfigFile(configPath string) string {
	if configPath != "" {
		return configPath
	}

	if envPath := os.Getenv("AZPROXY_CONFIG"); envPath != "" {
		return envPath
	}

	candidates := []string{
		"config.yaml",
		"/etc/azproxy/config.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadYAMLFile reads and parses a YAML file into the Config struct.
// Fields not present in the YAML retain their current (default) values.
// Unknown keys are rejected so that typos do not silently fall back to defaults.
func loadYAMLFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// applyEnvOverrides maps environment variables to config fields. The
// unprefixed names are the ones container images have always used.
func applyEnvOverrides(cfg *Config) error {
	var errs []error

	if v := os.Getenv("UPSTREAM_HOST"); v != "" {
		cfg.Upstream.Host = v
	}
	if v := os.Getenv("UPSTREAM_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("UPSTREAM_PORT: %q is not a number", v))
		} else {
			cfg.Upstream.Port = port
		}
	}
	if v := os.Getenv("UPSTREAM_TYPE"); v != "" {
		cfg.Upstream.Type = v
	}
	if v := os.Getenv("AZPROXY_UPSTREAM_API_KEY"); v != "" {
		cfg.Upstream.APIKey = v
	}
	if v := os.Getenv("HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("PORT: %q is not a number", v))
		} else {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("AZPROXY_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	return errors.Join(errs...)
}

// applyFlagOverrides copies every set command-line value into cfg.
func applyFlagOverrides(cfg *Config, flags Overrides) {
	if flags.Host != nil {
		cfg.Server.Host = *flags.Host
	}
	if flags.Port != nil {
		cfg.Server.Port = *flags.Port
	}
	if flags.UpstreamHost != nil {
		cfg.Upstream.Host = *flags.UpstreamHost
	}
	if flags.UpstreamPort != nil {
		cfg.Upstream.Port = *flags.UpstreamPort
	}
	if flags.UpstreamType != nil {
		cfg.Upstream.Type = *flags.UpstreamType
	}
	if flags.LogLevel != nil {
		cfg.Logging.Level = *flags.LogLevel
	}
}

// resolveFileReferences reads _file fields and populates the corresponding value fields.
// The file is only read when the value field is empty.
func resolveFileReferences(cfg *Config) error {
	// upstream.api_key_file -> upstream.api_key
	if cfg.Upstream.APIKeyFile != "" && cfg.Upstream.APIKey == "" {
		val, err := readSecretFile(cfg.Upstream.APIKeyFile)
		if err != nil {
			return fmt.Errorf("upstream.api_key_file: %w", err)
		}
		cfg.Upstream.APIKey = val
	}
	return nil
}

// readSecretFile reads a file and returns its content with surrounding whitespace trimmed.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
