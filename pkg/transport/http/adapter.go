package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rhuss/azproxy/pkg/api"
	"github.com/rhuss/azproxy/pkg/observability"
	"github.com/rhuss/azproxy/pkg/transport"
)

// Adapter serves the Azure AI Model Inference API over HTTP.
// It gates requests on api-version, reads bodies and hands them to the Proxy.
type Adapter struct {
	proxy    transport.Proxy
	inflight *transport.InFlightRegistry
	mux      *http.ServeMux
	config   Config
	logger   *slog.Logger
}

// Config holds configuration for the HTTP adapter.
type Config struct {
	MaxBodySize int64
	// MetricsPath mounts the Prometheus handler. Empty disables it.
	MetricsPath string
	Logger      *slog.Logger
}

// DefaultConfig returns the default adapter configuration.
func DefaultConfig() Config {
	return Config{
		MaxBodySize: 10 << 20, // 10 MB
		MetricsPath: "/metrics",
	}
}

// NewAdapter creates an HTTP adapter for proxy.
// Middleware is applied to the Proxy in the given order.
func NewAdapter(proxy transport.Proxy, cfg Config, middlewares ...transport.Middleware) *Adapter {
	if len(middlewares) > 0 {
		proxy = transport.Chain(middlewares...)(proxy)
	}
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = DefaultConfig().MaxBodySize
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	a := &Adapter{
		proxy:    proxy,
		inflight: transport.NewInFlightRegistry(),
		mux:      http.NewServeMux(),
		config:   cfg,
		logger:   logger,
	}

	a.mux.HandleFunc("POST /chat/completions", a.handleProxy(transport.OperationChatCompletions))
	a.mux.HandleFunc("POST /embeddings", a.handleProxy(transport.OperationEmbeddings))
	a.mux.HandleFunc("GET /info", a.handleProxy(transport.OperationInfo))
	a.mux.HandleFunc("GET /models", a.handleProxy(transport.OperationInfo))
	a.mux.HandleFunc("GET /health", handleHealth)
	if cfg.MetricsPath != "" {
		a.mux.Handle("GET "+cfg.MetricsPath, promhttp.Handler())
	}

	return a
}

// Handler returns the http.Handler for this adapter. Use this to integrate
// with an http.Server or test with httptest. The returned handler records
// request metrics and propagates the X-Request-ID header.
func (a *Adapter) Handler() http.Handler {
	return observability.MetricsMiddleware(httpRequestIDMiddleware(a.mux))
}

// InFlight returns the registry of requests currently being proxied.
func (a *Adapter) InFlight() *transport.InFlightRegistry {
	return a.inflight
}

// httpRequestIDMiddleware puts the caller's X-Request-ID, or a fresh one,
// into the request context and echoes it on the response. The header is
// also rewritten on the inbound request so it reaches the upstream.
func httpRequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(transport.RequestIDHeader)
		if id == "" {
			id = transport.NewRequestID()
			r.Header.Set(transport.RequestIDHeader, id)
		}
		r = r.WithContext(transport.ContextWithRequestID(r.Context(), id))
		w.Header().Set(transport.RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// handleProxy returns the handler for a proxied operation. The api-version
// gate runs before the body is read.
func (a *Adapter) handleProxy(op transport.Operation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := api.CheckAPIVersionRawQuery(r.URL.RawQuery); err != nil {
			transport.WriteAPIError(w, err)
			return
		}

		var body []byte
		if op != transport.OperationInfo {
			var err error
			body, err = a.readBody(w, r)
			if err != nil {
				transport.WriteAPIError(w, err)
				return
			}
		}

		ctx, done := a.inflight.Track(r.Context(), transport.RequestIDFromContext(r.Context()))
		defer done()

		req := &transport.ProxyRequest{
			Operation: op,
			Method:    r.Method,
			Header:    r.Header,
			Body:      body,
		}
		rw := newRelayResponseWriter(w)
		if err := a.proxy.Handle(ctx, req, rw); err != nil {
			a.writeHandlerError(w, r, rw, err)
		}
	}
}

// readBody reads the request body within the configured size limit.
func (a *Adapter) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, a.config.MaxBodySize)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, api.NewInternalParsingError(fmt.Sprintf("request body too large (max %d bytes)", a.config.MaxBodySize))
		}
		return nil, api.NewInternalParsingError(fmt.Sprintf("failed to read request body: %s", err.Error()))
	}
	return body, nil
}

// writeHandlerError writes the error envelope, unless the response has
// already started, in which case the error can only be logged.
func (a *Adapter) writeHandlerError(w http.ResponseWriter, r *http.Request, rw *relayResponseWriter, err error) {
	if rw.Written() {
		a.logger.Warn("response interrupted after headers were sent",
			slog.String("request_id", transport.RequestIDFromContext(r.Context())),
			slog.Int("status", rw.Status()),
			slog.String("error", err.Error()),
		)
		return
	}
	transport.WriteAPIError(w, err)
}

// handleHealth handles GET /health.
func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
