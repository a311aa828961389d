package api

import (
	"encoding/json"
	"fmt"
)

// ChatRequest is the recognized subset of an Azure AI Model Inference
// chat-completions payload. Every other top-level field is kept in
// ExtraParameters and flattened back into the object when encoding.
type ChatRequest struct {
	Model            *string                         `json:"model,omitempty"`
	Messages         []ChatRequestMessage            `json:"messages"`
	FrequencyPenalty *float64                        `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64                        `json:"presence_penalty,omitempty"`
	Temperature      *float64                        `json:"temperature,omitempty"`
	TopP             *float64                        `json:"top_p,omitempty"`
	MaxTokens        *int                            `json:"max_tokens,omitempty"`
	Seed             *int64                          `json:"seed,omitempty"`
	Stop             []string                        `json:"stop,omitempty"`
	Stream           *bool                           `json:"stream,omitempty"`
	Modalities       []Modality                      `json:"modalities,omitempty"`
	ResponseFormat   *ResponseFormat                 `json:"response_format,omitempty"`
	Tools            []ChatCompletionsToolDefinition `json:"tools,omitempty"`
	ToolChoice       *ToolChoice                     `json:"tool_choice,omitempty"`

	// ExtraParameters holds every field the schema above does not define.
	ExtraParameters map[string]json.RawMessage `json:"-"`
}

// chatRequestFields are the wire names of the recognized ChatRequest fields.
var chatRequestFields = []string{
	"model", "messages", "frequency_penalty", "presence_penalty", "temperature",
	"top_p", "max_tokens", "seed", "stop", "stream", "modalities",
	"response_format", "tools", "tool_choice",
}

// UnmarshalJSON decodes the recognized fields and captures the remaining
// top-level keys into ExtraParameters.
func (r *ChatRequest) UnmarshalJSON(data []byte) error {
	type wire ChatRequest
	var w wire
	extra, err := decodeWithExtras(data, chatRequestFields, &w)
	if err != nil {
		return err
	}
	if w.Messages == nil {
		return fmt.Errorf("missing field `messages`")
	}
	w.ExtraParameters = extra
	*r = ChatRequest(w)
	return nil
}

// MarshalJSON encodes the recognized fields under their wire names and
// flattens ExtraParameters into the same object.
func (r ChatRequest) MarshalJSON() ([]byte, error) {
	type wire ChatRequest
	w := wire(r)
	if w.Messages == nil {
		w.Messages = []ChatRequestMessage{}
	}
	return encodeWithExtras(w, r.ExtraParameters)
}

// ParseChatRequest decodes a raw chat-completions body and applies the
// extra-parameters policy. All failures are reported as InternalProxyParsing.
func ParseChatRequest(body []byte, policy ExtraParameters) (*ChatRequest, error) {
	var req ChatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, NewInternalParsingError(err.Error())
	}
	extra, err := policy.Apply(req.ExtraParameters)
	if err != nil {
		return nil, err
	}
	req.ExtraParameters = extra
	return &req, nil
}

// decodeWithExtras splits a JSON object into its known keys, which are
// decoded into v, and the remaining keys, which are returned untouched.
// Keys are matched exactly so that a differently cased duplicate of a known
// field stays an extra field instead of being folded into the typed one.
func decodeWithExtras(data []byte, known []string, v any) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("expected a JSON object, got null")
	}

	typed := make(map[string]json.RawMessage, len(known))
	for _, k := range known {
		if val, ok := raw[k]; ok {
			typed[k] = val
			delete(raw, k)
		}
	}

	data, err := json.Marshal(typed)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return nil, err
	}
	return raw, nil
}

// decodeObject is decodeWithExtras for objects nested inside a request.
// An object without unknown keys leaves the returned map nil.
func decodeObject(data []byte, known []string, v any) (map[string]json.RawMessage, error) {
	extra, err := decodeWithExtras(data, known, v)
	if err != nil || len(extra) == 0 {
		return nil, err
	}
	return extra, nil
}

// encodeWithExtras marshals v and merges extra into the resulting object.
// Extra keys never override a recognized field.
func encodeWithExtras(v any, extra map[string]json.RawMessage) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if len(extra) == 0 {
		return data, nil
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}
	for k, val := range extra {
		if _, ok := merged[k]; !ok {
			merged[k] = val
		}
	}
	return json.Marshal(merged)
}
