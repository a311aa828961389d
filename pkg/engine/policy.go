package engine

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rhuss/azproxy/pkg/api"
	"github.com/rhuss/azproxy/pkg/debug"
	"github.com/rhuss/azproxy/pkg/observability"
	"github.com/rhuss/azproxy/pkg/transport"
)

// extraParametersPolicy reads the caller's policy. A malformed header
// value counts as no preference.
func extraParametersPolicy(h http.Header) api.ExtraParameters {
	policy := api.ExtraParametersFromHeader(h)
	if raw := h.Get(api.ExtraParametersHeader); raw != "" {
		if _, err := api.ParseExtraParameters(raw); err != nil {
			debug.Log("proxy", "ignoring malformed extra-parameters header", "value", raw)
		}
	}
	observability.ExtraParametersTotal.WithLabelValues(string(policy)).Inc()
	return policy
}

// applyPolicy applies policy to the captured extra fields and records what
// was dropped.
func applyPolicy(ctx context.Context, policy api.ExtraParameters, extra map[string]json.RawMessage) (map[string]json.RawMessage, error) {
	out, err := policy.Apply(extra)
	if err != nil {
		return nil, err
	}
	if dropped := len(extra) - len(out); dropped > 0 {
		observability.ExtraFieldsDroppedTotal.Add(float64(dropped))
		debug.Log("proxy", "dropped extra parameters",
			"request_id", transport.RequestIDFromContext(ctx),
			"fields", api.ExtraFieldNames(extra),
		)
	} else if len(out) > 0 {
		debug.Trace("proxy", "passing extra parameters through",
			"request_id", transport.RequestIDFromContext(ctx),
			"fields", api.ExtraFieldNames(out),
		)
	}
	return out, nil
}
