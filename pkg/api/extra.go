package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strings"
)

// ExtraParametersHeader selects how fields outside the contract schema are handled.
const ExtraParametersHeader = "extra-parameters"

// ExtraParameters is the policy applied to request fields that the Azure AI
// Model Inference schema does not define.
type ExtraParameters string

const (
	// ExtraParametersPassThrough forwards extra fields to the upstream unchanged.
	ExtraParametersPassThrough ExtraParameters = "pass-through"
	// ExtraParametersDrop removes extra fields before forwarding.
	ExtraParametersDrop ExtraParameters = "drop"
	// ExtraParametersError rejects requests that carry extra fields.
	ExtraParametersError ExtraParameters = "error"
)

// ParseExtraParameters parses a kebab-case policy name.
func ParseExtraParameters(s string) (ExtraParameters, error) {
	switch p := ExtraParameters(strings.TrimSpace(s)); p {
	case ExtraParametersPassThrough, ExtraParametersDrop, ExtraParametersError:
		return p, nil
	default:
		return "", fmt.Errorf("unknown extra-parameters value %q", s)
	}
}

// ExtraParametersFromHeader derives the policy from request headers. A missing
// or unparseable header means "no preference" and yields pass-through.
func ExtraParametersFromHeader(h http.Header) ExtraParameters {
	v := h.Get(ExtraParametersHeader)
	if v == "" {
		return ExtraParametersPassThrough
	}
	p, err := ParseExtraParameters(v)
	if err != nil {
		return ExtraParametersPassThrough
	}
	return p
}

// Apply enforces the policy on a decoded extra-fields map and returns the map
// to forward. Drop always yields an empty map; Error fails when any field is present.
func (p ExtraParameters) Apply(extra map[string]json.RawMessage) (map[string]json.RawMessage, error) {
	switch p {
	case ExtraParametersDrop:
		return map[string]json.RawMessage{}, nil
	case ExtraParametersError:
		if len(extra) > 0 {
			return nil, NewInternalParsingError(fmt.Sprintf(
				"the header `%s` is set to `error` and the request provides parameters that the Azure AI Model Inference API does not define: %s",
				ExtraParametersHeader, strings.Join(ExtraFieldNames(extra), ",")))
		}
		return map[string]json.RawMessage{}, nil
	default:
		return extra, nil
	}
}

// ExtraFieldNames returns the keys of an extra-fields map in sorted order.
func ExtraFieldNames(extra map[string]json.RawMessage) []string {
	names := make([]string, 0, len(extra))
	for k := range extra {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}
