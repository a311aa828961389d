package provider

import (
	"context"
	"io"
	"net/http"
	"net/url"
)

// Upstream forwards requests to a single OpenAI-compatible inference server.
//
// Implementations must be safe for concurrent use by multiple goroutines.
type Upstream interface {
	// Forward issues method against path on the upstream with the caller's
	// headers and body. Any HTTP status is returned as a response; only
	// transport failures produce an error. The caller closes the body.
	Forward(ctx context.Context, method, path string, header http.Header, body io.Reader) (*http.Response, error)

	// BaseURL returns a copy of the upstream base URI.
	BaseURL() *url.URL

	// Close releases idle connections.
	Close() error
}
