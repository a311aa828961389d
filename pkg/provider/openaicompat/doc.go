// Package openaicompat talks to the OpenAI-compatible upstream behind the
// proxy. It resolves the upstream base URI, builds endpoint URIs, forwards
// requests with filtered headers, and reshapes the /v1/models listing into
// the single-model info response.
//
// A Client is created once at startup and shared read-only by all requests.
package openaicompat
