package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rhuss/azproxy/pkg/api"
	"github.com/rhuss/azproxy/pkg/debug"
	"github.com/rhuss/azproxy/pkg/observability"
	"github.com/rhuss/azproxy/pkg/provider"
	"github.com/rhuss/azproxy/pkg/provider/openaicompat"
	"github.com/rhuss/azproxy/pkg/transport"
)

// Engine dispatches proxied requests to the upstream. It implements
// transport.Proxy.
type Engine struct {
	upstream provider.Upstream
	cfg      Config
}

// Ensure Engine implements transport.Proxy at compile time.
var _ transport.Proxy = (*Engine)(nil)

// New creates a new Engine. The upstream must not be nil.
func New(upstream provider.Upstream, cfg Config) (*Engine, error) {
	if upstream == nil {
		return nil, fmt.Errorf("engine: upstream must not be nil")
	}
	return &Engine{
		upstream: upstream,
		cfg:      cfg,
	}, nil
}

// Handle dispatches req by operation.
func (e *Engine) Handle(ctx context.Context, req *transport.ProxyRequest, w transport.ResponseWriter) error {
	switch req.Operation {
	case transport.OperationChatCompletions:
		return e.chatCompletions(ctx, req, w)
	case transport.OperationEmbeddings:
		return e.embeddings(ctx, req, w)
	case transport.OperationInfo:
		return e.info(ctx, req, w)
	default:
		return api.NewInternalParsingError(fmt.Sprintf("unknown operation %q", req.Operation))
	}
}

// chatCompletions transcodes the chat payload under the caller's
// extra-parameters policy and relays the upstream response verbatim.
func (e *Engine) chatCompletions(ctx context.Context, req *transport.ProxyRequest, w transport.ResponseWriter) error {
	policy := extraParametersPolicy(req.Header)

	chatReq, err := api.ParseChatRequest(req.Body, api.ExtraParametersPassThrough)
	if err != nil {
		return err
	}
	if chatReq.ExtraParameters, err = applyPolicy(ctx, policy, chatReq.ExtraParameters); err != nil {
		return err
	}

	body, err := json.Marshal(chatReq)
	if err != nil {
		return api.NewInternalParsingError(fmt.Sprintf("failed to serialize chat request: %s", err.Error()))
	}

	return e.relay(ctx, req, w, openaicompat.PathChatCompletions, body)
}

// embeddings does for embeddings payloads what chatCompletions does for chat.
func (e *Engine) embeddings(ctx context.Context, req *transport.ProxyRequest, w transport.ResponseWriter) error {
	policy := extraParametersPolicy(req.Header)

	embReq, err := api.ParseEmbeddingsRequest(req.Body, api.ExtraParametersPassThrough)
	if err != nil {
		return err
	}
	if embReq.ExtraParameters, err = applyPolicy(ctx, policy, embReq.ExtraParameters); err != nil {
		return err
	}

	body, err := json.Marshal(embReq)
	if err != nil {
		return api.NewInternalParsingError(fmt.Sprintf("failed to serialize embeddings request: %s", err.Error()))
	}

	return e.relay(ctx, req, w, openaicompat.PathEmbeddings, body)
}

// info queries the upstream model listing and reshapes its first entry.
func (e *Engine) info(ctx context.Context, req *transport.ProxyRequest, w transport.ResponseWriter) error {
	// A HEAD is answered like a GET; net/http omits the body when writing.
	listing := *req
	listing.Method = http.MethodGet
	resp, err := e.forward(ctx, &listing, openaicompat.PathModels, nil)
	if err != nil {
		return err
	}

	models, err := openaicompat.DecodeModelsResponse(resp)
	if err != nil {
		return err
	}

	info, err := openaicompat.TranslateModelInfo(models, e.cfg.modelType())
	if err != nil {
		return err
	}

	debug.Log("proxy", "model info",
		"model_name", info.ModelName,
		"model_provider_name", info.ModelProviderName,
		"model_type", info.ModelType,
	)
	return w.WriteJSON(ctx, http.StatusOK, info)
}

// relay forwards body to path and writes the upstream response, whatever
// its status, back to the caller unchanged.
func (e *Engine) relay(ctx context.Context, req *transport.ProxyRequest, w transport.ResponseWriter, path string, body []byte) error {
	debug.Raw("upstream", string(body))

	resp, err := e.forward(ctx, req, path, body)
	if err != nil {
		return err
	}
	return w.WriteUpstream(ctx, resp)
}

// forward issues the upstream call with the caller's method and headers and
// records upstream metrics.
func (e *Engine) forward(ctx context.Context, req *transport.ProxyRequest, path string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	debug.Log("upstream", "forwarding",
		"request_id", transport.RequestIDFromContext(ctx),
		"method", req.Method,
		"url", openaicompat.BuildURI(e.upstream.BaseURL(), path).String(),
		"bytes", len(body),
	)

	start := time.Now()
	resp, err := e.upstream.Forward(ctx, req.Method, path, req.Header, reader)
	observability.UpstreamLatency.WithLabelValues(path).Observe(time.Since(start).Seconds())
	if err != nil {
		observability.UpstreamRequestsTotal.WithLabelValues(path, "error").Inc()
		debug.Log("upstream", "upstream call failed", "url", path, "error", err.Error())
		return nil, err
	}
	observability.UpstreamRequestsTotal.WithLabelValues(path, observability.StatusClass(resp.StatusCode)).Inc()

	debug.Log("upstream", "upstream responded",
		"request_id", transport.RequestIDFromContext(ctx),
		"status", resp.StatusCode,
		"content_type", resp.Header.Get("Content-Type"),
	)
	return resp, nil
}
