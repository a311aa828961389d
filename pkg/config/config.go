// Package config provides unified configuration for the proxy.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (a .env file is loaded first)
//  4. Command-line flag overrides
//  5. File reference resolution (_file suffix fields)
//  6. Validation
package config

import (
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/rhuss/azproxy/pkg/api"
	"github.com/rhuss/azproxy/pkg/provider/openaicompat"
)

// Upstream types.
const (
	UpstreamTypeChatCompletions = "chat-completions"
	UpstreamTypeEmbeddings      = "embeddings"
)

// Config holds all configuration for the proxy.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Upstream      UpstreamConfig      `yaml:"upstream"`
	Logging       LoggingConfig       `yaml:"logging"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"`             // default: "0.0.0.0"
	Port            int           `yaml:"port"`             // default: 80
	ReadTimeout     time.Duration `yaml:"read_timeout"`     // default: 30s
	WriteTimeout    time.Duration `yaml:"write_timeout"`    // default: 120s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // default: 30s
	MaxBodySize     int64         `yaml:"max_body_size"`    // default: 10 MB
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// UpstreamConfig describes the OpenAI-compatible service behind the proxy.
type UpstreamConfig struct {
	Host       string        `yaml:"host"`         // default: "http://localhost"
	Port       int           `yaml:"port"`         // optional, 0 keeps the host's port
	Type       string        `yaml:"type"`         // "chat-completions" or "embeddings"
	Timeout    time.Duration `yaml:"timeout"`      // wait for response headers, default: 120s
	APIKey     string        `yaml:"api_key"`      // optional
	APIKeyFile string        `yaml:"api_key_file"` // _file variant for api_key
}

// BaseURL resolves the upstream base URI.
func (u UpstreamConfig) BaseURL() (*url.URL, error) {
	return openaicompat.ParseBaseURL(u.Host, u.Port)
}

// ModelType returns the model type reported by the info endpoint.
func (u UpstreamConfig) ModelType() api.ModelType {
	if u.Type == UpstreamTypeEmbeddings {
		return api.ModelTypeEmbeddings
	}
	return api.ModelTypeChatCompletion
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // TRACE, DEBUG, INFO, WARN, ERROR; default: INFO
	Debug  string `yaml:"debug"`  // comma-separated debug categories
	Format string `yaml:"format"` // "text" or "json", default: "text"
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            80,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    120 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			MaxBodySize:     10 << 20,
		},
		Upstream: UpstreamConfig{
			Host:    "http://localhost",
			Type:    UpstreamTypeChatCompletions,
			Timeout: 120 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "INFO",
			Format: "text",
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
	}
}
