package api

import (
	"encoding/json"
	"fmt"
)

// ---------------------------------------------------------------------------
// Chat messages
// ---------------------------------------------------------------------------

// ChatRole is the discriminant of a ChatRequestMessage.
type ChatRole string

const (
	ChatRoleSystem    ChatRole = "system"
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
	ChatRoleTool      ChatRole = "tool"
)

// ChatRequestMessage is one entry of the chat-completions messages array. The
// role decides which fields apply: assistant messages may carry audio and tool
// calls, tool messages carry the tool_call_id they answer.
type ChatRequestMessage struct {
	Role       ChatRole                   `json:"role"`
	Content    *MessageContent            `json:"content,omitempty"`
	Name       string                     `json:"name,omitempty"`
	Audio      *ChatRequestAudioReference `json:"audio,omitempty"`
	ToolCalls  []ChatCompletionsToolCall  `json:"tool_calls,omitempty"`
	ToolCallID string                     `json:"tool_call_id,omitempty"`

	// Extra holds message keys outside the fields above.
	Extra map[string]json.RawMessage `json:"-"`
}

var chatRequestMessageFields = []string{"role", "content", "name", "audio", "tool_calls", "tool_call_id"}

// UnmarshalJSON decodes a message and enforces the per-role shape. Fields that
// do not belong to the decoded role are discarded. Unknown keys are kept in
// Extra.
func (m *ChatRequestMessage) UnmarshalJSON(data []byte) error {
	type wire ChatRequestMessage
	var w wire
	extra, err := decodeObject(data, chatRequestMessageFields, &w)
	if err != nil {
		return err
	}
	w.Extra = extra

	switch w.Role {
	case ChatRoleSystem, ChatRoleUser:
		if w.Content == nil {
			return fmt.Errorf("%s message requires content", w.Role)
		}
		w.Audio, w.ToolCalls, w.ToolCallID = nil, nil, ""
	case ChatRoleAssistant:
		w.ToolCallID = ""
	case ChatRoleTool:
		if w.Content == nil {
			return fmt.Errorf("tool message requires content")
		}
		if w.ToolCallID == "" {
			return fmt.Errorf("tool message requires tool_call_id")
		}
		w.Name, w.Audio, w.ToolCalls = "", nil, nil
	case "":
		return fmt.Errorf("message is missing role")
	default:
		return fmt.Errorf("unknown message role %q, expected one of system, user, assistant, tool", w.Role)
	}

	*m = ChatRequestMessage(w)
	return nil
}

// MarshalJSON flattens Extra into the encoded message.
func (m ChatRequestMessage) MarshalJSON() ([]byte, error) {
	type wire ChatRequestMessage
	return encodeWithExtras(wire(m), m.Extra)
}

// NewSystemMessage creates a system message with text content.
func NewSystemMessage(text string) ChatRequestMessage {
	return ChatRequestMessage{Role: ChatRoleSystem, Content: NewTextContent(text)}
}

// NewUserMessage creates a user message with text content.
func NewUserMessage(text string) ChatRequestMessage {
	return ChatRequestMessage{Role: ChatRoleUser, Content: NewTextContent(text)}
}

// NewToolMessage creates a tool message answering the given tool call.
func NewToolMessage(toolCallID, text string) ChatRequestMessage {
	return ChatRequestMessage{Role: ChatRoleTool, Content: NewTextContent(text), ToolCallID: toolCallID}
}

// MessageContent is either a plain string or an ordered list of content parts.
type MessageContent struct {
	Text  string
	Parts []ContentPart
}

// NewTextContent creates string content.
func NewTextContent(text string) *MessageContent {
	return &MessageContent{Text: text}
}

// MarshalJSON emits a JSON array when parts are set, otherwise a JSON string.
func (c MessageContent) MarshalJSON() ([]byte, error) {
	if c.Parts != nil {
		return json.Marshal(c.Parts)
	}
	return json.Marshal(c.Text)
}

// UnmarshalJSON accepts a JSON string or an array of content parts.
func (c *MessageContent) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		c.Text = s
		c.Parts = nil
		return nil
	}

	var parts []ContentPart
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("content must be a string or an array of content parts: %w", err)
	}
	if parts == nil {
		parts = []ContentPart{}
	}
	c.Text = ""
	c.Parts = parts
	return nil
}

// ContentPartType identifies a structured content part.
type ContentPartType string

const (
	ContentPartText       ContentPartType = "text"
	ContentPartImageURL   ContentPartType = "image_url"
	ContentPartInputAudio ContentPartType = "input_audio"
)

// ContentPart is a single element of multi-part message content.
type ContentPart struct {
	Type       ContentPartType `json:"type"`
	Text       *string         `json:"text,omitempty"`
	ImageURL   *ImageURL       `json:"image_url,omitempty"`
	InputAudio *InputAudio     `json:"input_audio,omitempty"`

	// Extra holds part keys such as cache_control that are forwarded as-is.
	Extra map[string]json.RawMessage `json:"-"`
}

var contentPartFields = []string{"type", "text", "image_url", "input_audio"}

// UnmarshalJSON validates the part type and its required payload.
func (p *ContentPart) UnmarshalJSON(data []byte) error {
	type wire ContentPart
	var w wire
	extra, err := decodeObject(data, contentPartFields, &w)
	if err != nil {
		return err
	}
	w.Extra = extra
	switch w.Type {
	case ContentPartText:
		if w.Text == nil {
			return fmt.Errorf("text content part requires text")
		}
	case ContentPartImageURL:
		if w.ImageURL == nil {
			return fmt.Errorf("image_url content part requires image_url")
		}
	case ContentPartInputAudio:
		if w.InputAudio == nil {
			return fmt.Errorf("input_audio content part requires input_audio")
		}
	default:
		return fmt.Errorf("unknown content part type %q", w.Type)
	}
	*p = ContentPart(w)
	return nil
}

func (p ContentPart) MarshalJSON() ([]byte, error) {
	type wire ContentPart
	return encodeWithExtras(wire(p), p.Extra)
}

// ImageURL references an image by URL or data URI.
type ImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

var imageURLFields = []string{"url", "detail"}

func (u *ImageURL) UnmarshalJSON(data []byte) error {
	type wire ImageURL
	var w wire
	extra, err := decodeObject(data, imageURLFields, &w)
	if err != nil {
		return err
	}
	w.Extra = extra
	*u = ImageURL(w)
	return nil
}

func (u ImageURL) MarshalJSON() ([]byte, error) {
	type wire ImageURL
	return encodeWithExtras(wire(u), u.Extra)
}

// InputAudio carries base64-encoded audio.
type InputAudio struct {
	Data   string `json:"data"`
	Format string `json:"format"`

	Extra map[string]json.RawMessage `json:"-"`
}

var inputAudioFields = []string{"data", "format"}

func (a *InputAudio) UnmarshalJSON(data []byte) error {
	type wire InputAudio
	var w wire
	extra, err := decodeObject(data, inputAudioFields, &w)
	if err != nil {
		return err
	}
	w.Extra = extra
	*a = InputAudio(w)
	return nil
}

func (a InputAudio) MarshalJSON() ([]byte, error) {
	type wire InputAudio
	return encodeWithExtras(wire(a), a.Extra)
}

// ChatRequestAudioReference points at audio produced by an earlier assistant turn.
type ChatRequestAudioReference struct {
	ID string `json:"id"`
}

// ---------------------------------------------------------------------------
// Tools
// ---------------------------------------------------------------------------

// ChatCompletionsToolCall is a function call previously emitted by the assistant.
type ChatCompletionsToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`

	Extra map[string]json.RawMessage `json:"-"`
}

var toolCallFields = []string{"id", "type", "function"}

// UnmarshalJSON rejects tool calls whose type is not "function".
func (c *ChatCompletionsToolCall) UnmarshalJSON(data []byte) error {
	type wire ChatCompletionsToolCall
	var w wire
	extra, err := decodeObject(data, toolCallFields, &w)
	if err != nil {
		return err
	}
	w.Extra = extra
	if w.Type != "function" {
		return fmt.Errorf("unsupported tool call type %q", w.Type)
	}
	*c = ChatCompletionsToolCall(w)
	return nil
}

func (c ChatCompletionsToolCall) MarshalJSON() ([]byte, error) {
	type wire ChatCompletionsToolCall
	return encodeWithExtras(wire(c), c.Extra)
}

// FunctionCall holds the function name and its JSON-encoded arguments.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`

	Extra map[string]json.RawMessage `json:"-"`
}

var functionCallFields = []string{"name", "arguments"}

func (f *FunctionCall) UnmarshalJSON(data []byte) error {
	type wire FunctionCall
	var w wire
	extra, err := decodeObject(data, functionCallFields, &w)
	if err != nil {
		return err
	}
	w.Extra = extra
	*f = FunctionCall(w)
	return nil
}

func (f FunctionCall) MarshalJSON() ([]byte, error) {
	type wire FunctionCall
	return encodeWithExtras(wire(f), f.Extra)
}

// ChatCompletionsToolDefinition declares a function tool the model may call.
type ChatCompletionsToolDefinition struct {
	Type     string             `json:"type"`
	Function FunctionDefinition `json:"function"`

	Extra map[string]json.RawMessage `json:"-"`
}

var toolDefinitionFields = []string{"type", "function"}

// UnmarshalJSON rejects tool definitions whose type is not "function".
func (d *ChatCompletionsToolDefinition) UnmarshalJSON(data []byte) error {
	type wire ChatCompletionsToolDefinition
	var w wire
	extra, err := decodeObject(data, toolDefinitionFields, &w)
	if err != nil {
		return err
	}
	w.Extra = extra
	if w.Type != "function" {
		return fmt.Errorf("unsupported tool type %q", w.Type)
	}
	if w.Function.Name == "" {
		return fmt.Errorf("function tool requires a name")
	}
	*d = ChatCompletionsToolDefinition(w)
	return nil
}

func (d ChatCompletionsToolDefinition) MarshalJSON() ([]byte, error) {
	type wire ChatCompletionsToolDefinition
	return encodeWithExtras(wire(d), d.Extra)
}

// FunctionDefinition describes a callable function.
type FunctionDefinition struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
	Strict      *bool           `json:"strict,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

var functionDefinitionFields = []string{"name", "description", "parameters", "strict"}

func (f *FunctionDefinition) UnmarshalJSON(data []byte) error {
	type wire FunctionDefinition
	var w wire
	extra, err := decodeObject(data, functionDefinitionFields, &w)
	if err != nil {
		return err
	}
	w.Extra = extra
	*f = FunctionDefinition(w)
	return nil
}

func (f FunctionDefinition) MarshalJSON() ([]byte, error) {
	type wire FunctionDefinition
	return encodeWithExtras(wire(f), f.Extra)
}

// ---------------------------------------------------------------------------
// ToolChoice union type
// ---------------------------------------------------------------------------

// ToolChoiceMode is one of the bare-string tool choice values.
type ToolChoiceMode string

const (
	ToolChoiceModeNone     ToolChoiceMode = "none"
	ToolChoiceModeAuto     ToolChoiceMode = "auto"
	ToolChoiceModeRequired ToolChoiceMode = "required"
)

// ToolChoice selects how the model uses tools. Exactly one of Mode or
// Function is set.
type ToolChoice struct {
	Mode     ToolChoiceMode
	Function *FunctionTool
}

// FunctionTool forces a call to the named function.
type FunctionTool struct {
	Type     string           `json:"type"`
	Function FunctionToolName `json:"function"`
}

// FunctionToolName names the function a FunctionTool selects.
type FunctionToolName struct {
	Name string `json:"name"`
}

var (
	// ToolChoiceNone prevents the model from calling tools.
	ToolChoiceNone = ToolChoice{Mode: ToolChoiceModeNone}
	// ToolChoiceAuto lets the model decide.
	ToolChoiceAuto = ToolChoice{Mode: ToolChoiceModeAuto}
	// ToolChoiceRequired forces the model to call at least one tool.
	ToolChoiceRequired = ToolChoice{Mode: ToolChoiceModeRequired}
)

// NewToolChoiceFunction creates a ToolChoice that selects a specific function by name.
func NewToolChoiceFunction(name string) ToolChoice {
	return ToolChoice{
		Function: &FunctionTool{
			Type:     "function",
			Function: FunctionToolName{Name: name},
		},
	}
}

// MarshalJSON serializes ToolChoice as either a JSON string or a JSON object.
func (tc ToolChoice) MarshalJSON() ([]byte, error) {
	if tc.Mode != "" {
		return json.Marshal(string(tc.Mode))
	}
	if tc.Function != nil {
		return json.Marshal(tc.Function)
	}
	return nil, fmt.Errorf("tool_choice has neither a mode nor a function")
}

// UnmarshalJSON deserializes ToolChoice from either a JSON string or a JSON object.
func (tc *ToolChoice) UnmarshalJSON(data []byte) error {
	// Try string first.
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		switch mode := ToolChoiceMode(s); mode {
		case ToolChoiceModeNone, ToolChoiceModeAuto, ToolChoiceModeRequired:
			tc.Mode = mode
			tc.Function = nil
			return nil
		default:
			return fmt.Errorf(`tool_choice must be "none", "auto", "required", or a function tool object, got %q`, s)
		}
	}

	// Then a function tool object.
	var f FunctionTool
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf(`tool_choice must be "none", "auto", "required", or a function tool object: %w`, err)
	}
	if f.Type != "function" || f.Function.Name == "" {
		return fmt.Errorf(`tool_choice object must have type "function" and a function name`)
	}
	tc.Mode = ""
	tc.Function = &f
	return nil
}

// ---------------------------------------------------------------------------
// Response format and modalities
// ---------------------------------------------------------------------------

// ResponseFormatType is the discriminant of ResponseFormat.
type ResponseFormatType string

const (
	ResponseFormatText       ResponseFormatType = "text"
	ResponseFormatJSONObject ResponseFormatType = "json_object"
	ResponseFormatJSONSchema ResponseFormatType = "json_schema"
)

// ResponseFormat specifies the format the model must output.
type ResponseFormat struct {
	Type       ResponseFormatType `json:"type"`
	JSONSchema *JSONSchemaFormat  `json:"json_schema,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

var responseFormatFields = []string{"type", "json_schema"}

// UnmarshalJSON validates the format type; json_schema requires a named schema.
func (f *ResponseFormat) UnmarshalJSON(data []byte) error {
	type wire ResponseFormat
	var w wire
	extra, err := decodeObject(data, responseFormatFields, &w)
	if err != nil {
		return err
	}
	w.Extra = extra
	switch w.Type {
	case ResponseFormatText, ResponseFormatJSONObject:
		w.JSONSchema = nil
	case ResponseFormatJSONSchema:
		if w.JSONSchema == nil || w.JSONSchema.Name == "" {
			return fmt.Errorf("json_schema response format requires json_schema.name")
		}
	default:
		return fmt.Errorf("unknown response_format type %q", w.Type)
	}
	*f = ResponseFormat(w)
	return nil
}

func (f ResponseFormat) MarshalJSON() ([]byte, error) {
	type wire ResponseFormat
	return encodeWithExtras(wire(f), f.Extra)
}

// JSONSchemaFormat enables structured outputs against the given schema.
type JSONSchemaFormat struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Schema      json.RawMessage `json:"schema,omitempty"`
	Strict      *bool           `json:"strict,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

var jsonSchemaFormatFields = []string{"name", "description", "schema", "strict"}

func (f *JSONSchemaFormat) UnmarshalJSON(data []byte) error {
	type wire JSONSchemaFormat
	var w wire
	extra, err := decodeObject(data, jsonSchemaFormatFields, &w)
	if err != nil {
		return err
	}
	w.Extra = extra
	*f = JSONSchemaFormat(w)
	return nil
}

func (f JSONSchemaFormat) MarshalJSON() ([]byte, error) {
	type wire JSONSchemaFormat
	return encodeWithExtras(wire(f), f.Extra)
}

// Modality is an output modality the model may use.
type Modality string

const (
	ModalityText  Modality = "text"
	ModalityAudio Modality = "audio"
)

// UnmarshalJSON accepts only the known modalities.
func (m *Modality) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch Modality(s) {
	case ModalityText, ModalityAudio:
		*m = Modality(s)
		return nil
	default:
		return fmt.Errorf("unknown modality %q", s)
	}
}
