// Package transport defines the handler interface and middleware chain that
// sit between the HTTP adapter and the proxy engine.
//
// # Handler Interface
//
// Proxy handles one inbound request that already passed the api-version
// gate. The ResponseWriter abstracts how the result reaches the caller:
// an upstream response relayed verbatim, or a JSON document produced by the
// proxy itself (the reshaped model info).
//
// # Middleware
//
// The middleware chain wraps Proxy with cross-cutting concerns. Built-in
// middleware provides panic recovery, request ID assignment (X-Request-ID)
// and structured logging via log/slog.
//
// # Errors
//
// Every error is converted with api.AsAPIError and written as the
// {"error":{"code","message"}} envelope by WriteAPIError, so no internal
// error type reaches the caller.
package transport
