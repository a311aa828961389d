package api

import (
	"encoding/json"
	"fmt"
)

// EmbeddingInput is either a single string or a batch of strings.
type EmbeddingInput struct {
	Single *string
	Batch  []string
}

// MarshalJSON emits the batch when set, otherwise the single string.
func (in EmbeddingInput) MarshalJSON() ([]byte, error) {
	if in.Batch != nil {
		return json.Marshal(in.Batch)
	}
	if in.Single != nil {
		return json.Marshal(*in.Single)
	}
	return nil, fmt.Errorf("embedding input is empty")
}

// UnmarshalJSON accepts a JSON string or an array of strings.
func (in *EmbeddingInput) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		in.Single = &s
		in.Batch = nil
		return nil
	}
	var batch []string
	if err := json.Unmarshal(data, &batch); err != nil {
		return fmt.Errorf("input must be a string or an array of strings: %w", err)
	}
	if batch == nil {
		batch = []string{}
	}
	in.Single = nil
	in.Batch = batch
	return nil
}

// EmbeddingEncodingFormat is the requested representation of the returned vectors.
type EmbeddingEncodingFormat string

const (
	EmbeddingEncodingBase64  EmbeddingEncodingFormat = "base64"
	EmbeddingEncodingBinary  EmbeddingEncodingFormat = "binary"
	EmbeddingEncodingFloat   EmbeddingEncodingFormat = "float"
	EmbeddingEncodingInt8    EmbeddingEncodingFormat = "int8"
	EmbeddingEncodingUBinary EmbeddingEncodingFormat = "ubinary"
	EmbeddingEncodingUInt8   EmbeddingEncodingFormat = "uint8"
)

// UnmarshalJSON accepts only the known encoding formats.
func (f *EmbeddingEncodingFormat) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch v := EmbeddingEncodingFormat(s); v {
	case EmbeddingEncodingBase64, EmbeddingEncodingBinary, EmbeddingEncodingFloat,
		EmbeddingEncodingInt8, EmbeddingEncodingUBinary, EmbeddingEncodingUInt8:
		*f = v
		return nil
	default:
		return fmt.Errorf("unknown encoding_format %q", s)
	}
}

// EmbeddingInputType tells the model what the input will be used for.
type EmbeddingInputType string

const (
	EmbeddingInputDocument EmbeddingInputType = "document"
	EmbeddingInputQuery    EmbeddingInputType = "query"
	EmbeddingInputText     EmbeddingInputType = "text"
)

// UnmarshalJSON accepts only the known input types.
func (t *EmbeddingInputType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch v := EmbeddingInputType(s); v {
	case EmbeddingInputDocument, EmbeddingInputQuery, EmbeddingInputText:
		*t = v
		return nil
	default:
		return fmt.Errorf("unknown input_type %q", s)
	}
}

// EmbeddingsRequest is the recognized subset of an embeddings payload.
type EmbeddingsRequest struct {
	Input          EmbeddingInput           `json:"input"`
	Model          *string                  `json:"model,omitempty"`
	Dimensions     *int                     `json:"dimensions,omitempty"`
	EncodingFormat *EmbeddingEncodingFormat `json:"encoding_format,omitempty"`
	InputType      *EmbeddingInputType      `json:"input_type,omitempty"`

	ExtraParameters map[string]json.RawMessage `json:"-"`
}

var embeddingsRequestFields = []string{"input", "model", "dimensions", "encoding_format", "input_type"}

// UnmarshalJSON decodes the recognized fields and captures the rest into ExtraParameters.
func (r *EmbeddingsRequest) UnmarshalJSON(data []byte) error {
	type wire EmbeddingsRequest
	var w wire
	extra, err := decodeWithExtras(data, embeddingsRequestFields, &w)
	if err != nil {
		return err
	}
	if w.Input.Single == nil && w.Input.Batch == nil {
		return fmt.Errorf("missing field `input`")
	}
	w.ExtraParameters = extra
	*r = EmbeddingsRequest(w)
	return nil
}

// MarshalJSON flattens ExtraParameters into the encoded object.
func (r EmbeddingsRequest) MarshalJSON() ([]byte, error) {
	type wire EmbeddingsRequest
	return encodeWithExtras(wire(r), r.ExtraParameters)
}

// ParseEmbeddingsRequest decodes a raw embeddings body and applies the
// extra-parameters policy.
func ParseEmbeddingsRequest(body []byte, policy ExtraParameters) (*EmbeddingsRequest, error) {
	var req EmbeddingsRequest
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
