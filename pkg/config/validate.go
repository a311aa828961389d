package config

import (
	"errors"
	"fmt"
	"strings"
)

// reservedPaths are served by the proxy itself.
var reservedPaths = map[string]bool{
	"/chat/completions": true,
	"/embeddings":       true,
	"/info":             true,
	"/models":           true,
	"/health":           true,
}

// Validate checks the configuration for required fields and valid values.
// Returns an error with a descriptive field path on failure.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.MaxBodySize <= 0 {
		errs = append(errs, fmt.Errorf("server.max_body_size must be > 0, got %d", c.Server.MaxBodySize))
	}

	// upstream.host is required and must resolve to a base URI.
	if strings.TrimSpace(c.Upstream.Host) == "" {
		errs = append(errs, fmt.Errorf("upstream.host is required"))
	} else if _, err := c.Upstream.BaseURL(); err != nil {
		errs = append(errs, fmt.Errorf("upstream.host: %w", err))
	}

	if c.Upstream.Port < 0 || c.Upstream.Port > 65535 {
		errs = append(errs, fmt.Errorf("upstream.port must be between 0 and 65535, got %d", c.Upstream.Port))
	}

	switch c.Upstream.Type {
	case UpstreamTypeChatCompletions, UpstreamTypeEmbeddings:
		// valid
	default:
		errs = append(errs, fmt.Errorf("upstream.type must be %q or %q, got %q",
			UpstreamTypeChatCompletions, UpstreamTypeEmbeddings, c.Upstream.Type))
	}

	if c.Upstream.Timeout < 0 {
		errs = append(errs, fmt.Errorf("upstream.timeout must not be negative, got %s", c.Upstream.Timeout))
	}

	switch strings.ToLower(c.Logging.Format) {
	case "", "text", "json":
		// valid
	default:
		errs = append(errs, fmt.Errorf("logging.format must be \"text\" or \"json\", got %q", c.Logging.Format))
	}

	if c.Observability.Metrics.Enabled {
		path := c.Observability.Metrics.Path
		switch {
		case !strings.HasPrefix(path, "/"):
			errs = append(errs, fmt.Errorf("observability.metrics.path must start with \"/\", got %q", path))
		case strings.ContainsAny(path, " {}"):
			errs = append(errs, fmt.Errorf("observability.metrics.path must not contain spaces or braces, got %q", path))
		case reservedPaths[path]:
			errs = append(errs, fmt.Errorf("observability.metrics.path %q collides with an API route", path))
		}
	}

	return errors.Join(errs...)
}
