package openaicompat

import (
	"net/http"
	"strings"

	"github.com/rhuss/azproxy/pkg/api"
)

// hopHeaders are connection-scoped or recomputed by the forwarding client.
// Accept-Encoding is left to the Go transport so compressed bodies are
// decoded transparently.
var hopHeaders = []string{
	"Connection",
	"Proxy-Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
	"Content-Length",
	"Accept-Encoding",
	"Host",
}

// ForwardHeaders returns a copy of h suitable for the upstream request: the
// extra-parameters header, hop-by-hop headers and framing headers are
// removed, as is any header named in Connection.
func ForwardHeaders(h http.Header) http.Header {
	out := h.Clone()
	if out == nil {
		out = http.Header{}
	}
	for _, v := range h.Values("Connection") {
		for _, name := range strings.Split(v, ",") {
			if name = strings.TrimSpace(name); name != "" {
				out.Del(name)
			}
		}
	}
	for _, name := range hopHeaders {
		out.Del(name)
	}
	out.Del(api.ExtraParametersHeader)
	return out
}

// CopyResponseHeaders copies upstream response headers to dst, skipping
// hop-by-hop and framing headers the local server sets itself.
func CopyResponseHeaders(dst, src http.Header) {
	for name, values := range src {
		if isHopHeader(name) {
			continue
		}
		for _, v := range values {
			dst.Add(name, v)
		}
	}
}

func isHopHeader(name string) bool {
	name = http.CanonicalHeaderKey(name)
	if name == "Accept-Encoding" || name == "Host" {
		return false
	}
	for _, h := range hopHeaders {
		if h == name {
			return true
		}
	}
	return false
}
