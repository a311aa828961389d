package openaicompat

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rhuss/azproxy/pkg/api"
	"github.com/rhuss/azproxy/pkg/provider"
)

// Client forwards requests to an OpenAI-compatible upstream. It is safe for
// concurrent use and never mutated after construction.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	apiKey     string
}

// Ensure Client implements provider.Upstream at compile time.
var _ provider.Upstream = (*Client)(nil)

// NewClient creates a Client for the upstream at baseURL. When apiKey is set
// it replaces any caller Authorization header with a bearer token.
//
// timeout bounds the wait for upstream response headers only. Response
// bodies are not bounded so that streamed completions can run to the end;
// their lifetime follows the inbound request context instead.
func NewClient(baseURL *url.URL, apiKey string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 120 * time.Second
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = timeout

	base := *baseURL
	return &Client{
		httpClient: &http.Client{
			Transport: transport,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		baseURL: &base,
		apiKey:  apiKey,
	}
}

// BaseURL returns a copy of the resolved upstream base URI.
func (c *Client) BaseURL() *url.URL {
	u := *c.baseURL
	return &u
}

// Forward issues method against the upstream endpoint at path with the
// filtered caller headers and body. Any status is returned as a response;
// only transport failures produce an error. The caller closes the body.
func (c *Client) Forward(ctx context.Context, method, path string, header http.Header, body io.Reader) (*http.Response, error) {
	target := BuildURI(c.baseURL, path)

	httpReq, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, api.NewInternalParsingError(fmt.Sprintf("failed to create upstream request: %s", err.Error()))
	}

	httpReq.Header = ForwardHeaders(header)
	if body != nil && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, MapNetworkError(err)
	}
	return httpResp, nil
}

// DecodeModelsResponse reads a /v1/models response and closes its body.
// Non-2xx responses become UpstreamApi errors carrying the upstream status;
// undecodable bodies become InternalProxyParsing errors.
func DecodeModelsResponse(httpResp *http.Response) (*ModelsResponse, error) {
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, MapHTTPError(httpResp)
	}

	var modelsResp ModelsResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&modelsResp); err != nil {
		return nil, api.NewInternalParsingError(fmt.Sprintf("failed to parse models response: %s", err.Error()))
	}
	return &modelsResp, nil
}

// Close releases idle upstream connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
