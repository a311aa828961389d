package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rhuss/azproxy/pkg/api"
)

// clearEnv blanks every variable the loader reads so the host environment
// cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"AZPROXY_CONFIG", "UPSTREAM_HOST", "UPSTREAM_PORT", "UPSTREAM_TYPE",
		"AZPROXY_UPSTREAM_API_KEY", "HOST", "PORT", "AZPROXY_LOG_LEVEL",
	} {
		t.Setenv(name, "")
	}
}

func ptr[T any](v T) *T { return &v }

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 80 {
		t.Errorf("default server address = %s, want 0.0.0.0:80", cfg.Server.Addr())
	}
	if cfg.Server.ReadTimeout != 30*time.Second {
		t.Errorf("default server.read_timeout = %v, want 30s", cfg.Server.ReadTimeout)
	}
	if cfg.Server.WriteTimeout != 120*time.Second {
		t.Errorf("default server.write_timeout = %v, want 120s", cfg.Server.WriteTimeout)
	}
	if cfg.Server.MaxBodySize != 10<<20 {
		t.Errorf("default server.max_body_size = %d, want 10 MB", cfg.Server.MaxBodySize)
	}
	if cfg.Upstream.Host != "http://localhost" {
		t.Errorf("default upstream.host = %q, want http://localhost", cfg.Upstream.Host)
	}
	if cfg.Upstream.Type != UpstreamTypeChatCompletions {
		t.Errorf("default upstream.type = %q, want %q", cfg.Upstream.Type, UpstreamTypeChatCompletions)
	}
	if !cfg.Observability.Metrics.Enabled || cfg.Observability.Metrics.Path != "/metrics" {
		t.Errorf("default metrics = %+v, want enabled at /metrics", cfg.Observability.Metrics)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFromYAML(t *testing.T) {
	clearEnv(t)
	yamlContent := `
server:
  host: 127.0.0.1
  port: 9090
  read_timeout: 60s
  write_timeout: 180s
  shutdown_timeout: 5s
  max_body_size: 1048576
upstream:
  host: https://vllm.internal/v1
  port: 8000
  type: embeddings
  timeout: 30s
  api_key: sk-test-key
logging:
  level: DEBUG
  debug: proxy,upstream
  format: json
observability:
  metrics:
    enabled: false
    path: /stats
`
	cfg, err := Load(writeTemp(t, "config-*.yaml", yamlContent), Overrides{})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Addr() != "127.0.0.1:9090" {
		t.Errorf("server addr = %q, want 127.0.0.1:9090", cfg.Server.Addr())
	}
	if cfg.Server.ReadTimeout != 60*time.Second || cfg.Server.WriteTimeout != 180*time.Second || cfg.Server.ShutdownTimeout != 5*time.Second {
		t.Errorf("server timeouts = %+v", cfg.Server)
	}
	if cfg.Server.MaxBodySize != 1048576 {
		t.Errorf("server.max_body_size = %d, want 1048576", cfg.Server.MaxBodySize)
	}
	if cfg.Upstream.Port != 8000 || cfg.Upstream.Type != UpstreamTypeEmbeddings || cfg.Upstream.Timeout != 30*time.Second {
		t.Errorf("upstream = %+v", cfg.Upstream)
	}
	if cfg.Upstream.APIKey != "sk-test-key" {
		t.Errorf("upstream.api_key = %q, want sk-test-key", cfg.Upstream.APIKey)
	}
	if cfg.Logging.Level != "DEBUG" || cfg.Logging.Debug != "proxy,upstream" || cfg.Logging.Format != "json" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	if cfg.Observability.Metrics.Enabled || cfg.Observability.Metrics.Path != "/stats" {
		t.Errorf("metrics = %+v", cfg.Observability.Metrics)
	}

	base, err := cfg.Upstream.BaseURL()
	if err != nil {
		t.Fatalf("BaseURL() error: %v", err)
	}
	if base.String() != "https://vllm.internal:8000" {
		t.Errorf("BaseURL() = %q, want https://vllm.internal:8000", base)
	}
	if cfg.Upstream.ModelType() != api.ModelTypeEmbeddings {
		t.Errorf("ModelType() = %q, want embeddings", cfg.Upstream.ModelType())
	}
}

func TestLoadRejectsUnknownYAMLKeys(t *testing.T) {
	clearEnv(t)
	path := writeTemp(t, "config-*.yaml", "upstream:\n  hots: typo\n")
	if _, err := Load(path, Overrides{}); err == nil {
		t.Fatal("Load() should reject unknown key upstream.hots")
	}
}

func TestLoadEmptyYAML(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(writeTemp(t, "config-*.yaml", ""), Overrides{})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Port != 80 {
		t.Errorf("server.port = %d, want default 80", cfg.Server.Port)
	}
}

func TestEnvOverride(t *testing.T) {
	clearEnv(t)
	path := writeTemp(t, "config-*.yaml", "upstream:\n  host: http://from-yaml\n  port: 1111\n")

	t.Setenv("UPSTREAM_HOST", "from-env")
	t.Setenv("UPSTREAM_PORT", "8000")
	t.Setenv("UPSTREAM_TYPE", "embeddings")
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("PORT", "7070")
	t.Setenv("AZPROXY_UPSTREAM_API_KEY", "sk-env")
	t.Setenv("AZPROXY_LOG_LEVEL", "WARN")

	cfg, err := Load(path, Overrides{})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Upstream.Host != "from-env" || cfg.Upstream.Port != 8000 || cfg.Upstream.Type != UpstreamTypeEmbeddings {
		t.Errorf("upstream = %+v, want env values", cfg.Upstream)
	}
	if cfg.Server.Addr() != "127.0.0.1:7070" {
		t.Errorf("server addr = %q, want 127.0.0.1:7070", cfg.Server.Addr())
	}
	if cfg.Upstream.APIKey != "sk-env" {
		t.Errorf("upstream.api_key = %q, want sk-env", cfg.Upstream.APIKey)
	}
	if cfg.Logging.Level != "WARN" {
		t.Errorf("logging.level = %q, want WARN", cfg.Logging.Level)
	}

	base, _ := cfg.Upstream.BaseURL()
	if base.String() != "http://from-env:8000" {
		t.Errorf("BaseURL() = %q, want http://from-env:8000", base)
	}
}

func TestEnvOverrideInvalidNumber(t *testing.T) {
	clearEnv(t)
	t.Setenv("UPSTREAM_PORT", "eighty")

	_, err := Load("", Overrides{})
	if err == nil || !strings.Contains(err.Error(), "UPSTREAM_PORT") {
		t.Errorf("Load() error = %v, want UPSTREAM_PORT complaint", err)
	}
}

func TestFlagOverridesEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("UPSTREAM_HOST", "from-env")
	t.Setenv("PORT", "7070")

	cfg, err := Load("", Overrides{
		UpstreamHost: ptr("http://from-flag"),
		UpstreamPort: ptr(9000),
		UpstreamType: ptr(UpstreamTypeEmbeddings),
		Port:         ptr(8081),
		LogLevel:     ptr("DEBUG"),
	})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Upstream.Host != "http://from-flag" || cfg.Upstream.Port != 9000 || cfg.Upstream.Type != UpstreamTypeEmbeddings {
		t.Errorf("upstream = %+v, want flag values", cfg.Upstream)
	}
	if cfg.Server.Port != 8081 {
		t.Errorf("server.port = %d, want 8081", cfg.Server.Port)
	}
	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("logging.level = %q, want DEBUG", cfg.Logging.Level)
	}
}

func TestFileReference(t *testing.T) {
	clearEnv(t)
	secret := writeTemp(t, "key-*", "  sk-from-file\n")
	path := writeTemp(t, "config-*.yaml", "upstream:\n  api_key_file: "+secret+"\n")

	cfg, err := Load(path, Overrides{})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Upstream.APIKey != "sk-from-file" {
		t.Errorf("upstream.api_key = %q, want sk-from-file", cfg.Upstream.APIKey)
	}
}

func TestFileReferenceDoesNotOverrideExplicitValue(t *testing.T) {
	clearEnv(t)
	secret := writeTemp(t, "key-*", "sk-from-file")
	t.Setenv("AZPROXY_UPSTREAM_API_KEY", "sk-explicit")
	path := writeTemp(t, "config-*.yaml", "upstream:\n  api_key_file: "+secret+"\n")

	cfg, err := Load(path, Overrides{})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Upstream.APIKey != "sk-explicit" {
		t.Errorf("upstream.api_key = %q, want sk-explicit", cfg.Upstream.APIKey)
	}
}

func TestFileReferenceMissingFile(t *testing.T) {
	clearEnv(t)
	path := writeTemp(t, "config-*.yaml", "upstream:\n  api_key_file: /nonexistent/key\n")

	_, err := Load(path, Overrides{})
	if err == nil || !strings.Contains(err.Error(), "upstream.api_key_file") {
		t.Errorf("Load() error = %v, want upstream.api_key_file complaint", err)
	}
}

func TestFileDiscovery(t *testing.T) {
	clearEnv(t)
	envFile := writeTemp(t, "env-*.yaml", "server:\n  port: 6060\n")
	t.Setenv("AZPROXY_CONFIG", envFile)

	cfg, err := Load("", Overrides{})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Port != 6060 {
		t.Errorf("server.port = %d, want 6060 from AZPROXY_CONFIG", cfg.Server.Port)
	}

	explicit := writeTemp(t, "explicit-*.yaml", "server:\n  port: 5050\n")
	cfg, err = Load(explicit, Overrides{})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Port != 5050 {
		t.Errorf("server.port = %d, want 5050 from explicit path", cfg.Server.Port)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), Overrides{}); err == nil {
		t.Error("Load() should fail for a missing explicit config file")
	}
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(c *Config) {}, ""},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"body size", func(c *Config) { c.Server.MaxBodySize = 0 }, "server.max_body_size"},
		{"empty upstream host", func(c *Config) { c.Upstream.Host = " " }, "upstream.host is required"},
		{"upstream host without hostname", func(c *Config) { c.Upstream.Host = "http://" }, "upstream.host"},
		{"upstream port", func(c *Config) { c.Upstream.Port = -1 }, "upstream.port"},
		{"upstream type", func(c *Config) { c.Upstream.Type = "completions" }, "upstream.type"},
		{"negative timeout", func(c *Config) { c.Upstream.Timeout = -time.Second }, "upstream.timeout"},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"metrics path", func(c *Config) { c.Observability.Metrics.Path = "metrics" }, "observability.metrics.path"},
		{"metrics path collides", func(c *Config) { c.Observability.Metrics.Path = "/health" }, "collides"},
		{"metrics path pattern", func(c *Config) { c.Observability.Metrics.Path = "/{x}" }, "braces"},
		{"custom metrics path", func(c *Config) { c.Observability.Metrics.Path = "/internal/metrics" }, ""},
		{"metrics path ignored when disabled", func(c *Config) {
			c.Observability.Metrics.Enabled = false
			c.Observability.Metrics.Path = ""
		}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidationJoinsErrors(t *testing.T) {
	cfg := Defaults()
	cfg.Server.Port = 0
	cfg.Upstream.Type = "bogus"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil, want errors")
	}
	for _, want := range []string{"server.port", "upstream.type"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() = %v, missing %q", err, want)
		}
	}
}

func TestModelType(t *testing.T) {
	if got := (UpstreamConfig{Type: UpstreamTypeChatCompletions}).ModelType(); got != api.ModelTypeChatCompletion {
		t.Errorf("ModelType(chat-completions) = %q", got)
	}
	if got := (UpstreamConfig{Type: UpstreamTypeEmbeddings}).ModelType(); got != api.ModelTypeEmbeddings {
		t.Errorf("ModelType(embeddings) = %q", got)
	}
}

func TestLoadDotenv(t *testing.T) {
	clearEnv(t)
	envFile := writeTemp(t, "dotenv-*", "UPSTREAM_HOST=from-dotenv\nPORT=9999\n")
	t.Setenv("NO_DOTENV", "")
	t.Setenv("ENV_FILE", envFile)
	t.Setenv("DOTENV_OVERLOAD", "1")

	if err := loadDotenv(); err != nil {
		t.Fatalf("loadDotenv() error: %v", err)
	}
	t.Cleanup(func() {
		os.Unsetenv("UPSTREAM_HOST")
		os.Unsetenv("PORT")
	})

	if got := os.Getenv("UPSTREAM_HOST"); got != "from-dotenv" {
		t.Errorf("UPSTREAM_HOST = %q, want from-dotenv", got)
	}
	if got := os.Getenv("PORT"); got != "9999" {
		t.Errorf("PORT = %q, want 9999", got)
	}
}

func TestLoadDotenvKeepsExistingValues(t *testing.T) {
	clearEnv(t)
	envFile := writeTemp(t, "dotenv-*", "AZPROXY_LOG_LEVEL=TRACE\n")
	t.Setenv("NO_DOTENV", "")
	t.Setenv("ENV_FILE", envFile)
	t.Setenv("DOTENV_OVERLOAD", "")
	t.Setenv("AZPROXY_LOG_LEVEL", "ERROR")

	if err := loadDotenv(); err != nil {
		t.Fatalf("loadDotenv() error: %v", err)
	}

	if got := os.Getenv("AZPROXY_LOG_LEVEL"); got != "ERROR" {
		t.Errorf("AZPROXY_LOG_LEVEL = %q, want existing ERROR", got)
	}
}

func TestLoadDotenvDisabled(t *testing.T) {
	clearEnv(t)
	envFile := writeTemp(t, "dotenv-*", "UPSTREAM_TYPE=embeddings\n")
	t.Setenv("NO_DOTENV", "1")
	t.Setenv("ENV_FILE", envFile)

	if err := loadDotenv(); err != nil {
		t.Fatalf("loadDotenv() error: %v", err)
	}

	if got := os.Getenv("UPSTREAM_TYPE"); got != "" {
		t.Errorf("UPSTREAM_TYPE = %q, want unset with NO_DOTENV=1", got)
	}
}

func TestLoadDotenvMissingFile(t *testing.T) {
	t.Setenv("NO_DOTENV", "")
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "absent.env"))

	if err := loadDotenv(); err != nil {
		t.Errorf("loadDotenv() = %v, want nil for a missing file", err)
	}
}

func TestLoadDotenvMalformed(t *testing.T) {
	envFile := writeTemp(t, "dotenv-*", "BAD-KEY=1\n")
	t.Setenv("NO_DOTENV", "")
	t.Setenv("ENV_FILE", envFile)

	err := loadDotenv()
	if err == nil {
		t.Fatal("loadDotenv() = nil, want parse error")
	}
	if !strings.Contains(err.Error(), envFile) {
		t.Errorf("error %q does not name the file", err)
	}
}

// writeTemp creates a temporary file with the given content and returns its path.
func writeTemp(t *testing.T, pattern, content string) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), pattern)
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	defer f.Close()

	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("writing temp file: %v", err)
	}
	return f.Name()
}
