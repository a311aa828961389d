package transport

import (
	"context"
	"net/http"
)

// Operation identifies a proxied endpoint.
type Operation string

const (
	OperationChatCompletions Operation = "chat-completions"
	OperationEmbeddings      Operation = "embeddings"
	OperationInfo            Operation = "info"
)

// ProxyRequest is an inbound request that passed the api-version gate.
// Body is nil for the info operation.
type ProxyRequest struct {
	Operation Operation
	Method    string
	Header    http.Header
	Body      []byte
}

// Proxy handles the proxied operations. An implementation either writes
// exactly one result to w or returns an error for the transport to convert
// into an error envelope. Errors returned after w.Written() is true can
// only be logged.
type Proxy interface {
	Handle(ctx context.Context, req *ProxyRequest, w ResponseWriter) error
}

// ProxyFunc is an adapter that allows using an ordinary function as a Proxy.
type ProxyFunc func(ctx context.Context, req *ProxyRequest, w ResponseWriter) error

// Handle calls f(ctx, req, w).
func (f ProxyFunc) Handle(ctx context.Context, req *ProxyRequest, w ResponseWriter) error {
	return f(ctx, req, w)
}

// ResponseWriter abstracts the output side of a proxied request.
//
// WriteUpstream and WriteJSON are mutually exclusive on a single writer
// instance; the second call returns an error.
type ResponseWriter interface {
	// WriteUpstream relays an upstream response: status, end-to-end headers
	// and body. Event streams are flushed as they arrive. The body is closed.
	WriteUpstream(ctx context.Context, resp *http.Response) error

	// WriteJSON writes v as a JSON document with the given status.
	WriteJSON(ctx context.Context, status int, v any) error

	// Written reports whether a response has been started.
	Written() bool

	// Status returns the status code that was written, or 0.
	Status() int
}
