package openaicompat

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Upstream endpoint paths.
const (
	PathChatCompletions = "/v1/chat/completions"
	PathEmbeddings      = "/v1/embeddings"
	PathModels          = "/v1/models"
)

// ParseBaseURL resolves the configured upstream host and port into the base
// URI all endpoint URIs are built from. A host without a scheme defaults to
// http, a trailing /v1 (or any other path) is dropped, and a non-zero port
// replaces whatever port the host carried.
func ParseBaseURL(host string, port int) (*url.URL, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		return nil, fmt.Errorf("upstream host is empty")
	}
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}

	u, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("parsing upstream host %q: %w", host, err)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("upstream host %q has no hostname", host)
	}
	if port < 0 || port > 65535 {
		return nil, fmt.Errorf("upstream port %d out of range", port)
	}
	if port != 0 {
		u.Host = joinHostPort(u.Hostname(), port)
	}

	u.Path = ""
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	u.User = nil
	return u, nil
}

func joinHostPort(hostname string, port int) string {
	if strings.Contains(hostname, ":") {
		hostname = "[" + hostname + "]"
	}
	return hostname + ":" + strconv.Itoa(port)
}

// BuildURI replaces the path and query of base with path. Scheme, host and
// port are kept; an empty scheme becomes http. The base is not modified.
//
// path must be an absolute path without a query. Anything else is a
// programming error and panics.
func BuildURI(base *url.URL, path string) *url.URL {
	if !strings.HasPrefix(path, "/") {
		panic(fmt.Sprintf("openaicompat: endpoint path %q is not absolute", path))
	}
	p, err := url.Parse(path)
	if err != nil || p.RawQuery != "" || p.Fragment != "" || p.Host != "" {
		panic(fmt.Sprintf("openaicompat: malformed endpoint path %q", path))
	}

	u := *base
	if u.Scheme == "" {
		u.Scheme = "http"
	}
	u.Path = p.Path
	u.RawPath = p.RawPath
	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""
	return &u
}
