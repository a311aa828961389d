package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
)

// receivedFieldsHeader lists the top-level request keys the mock saw.
const receivedFieldsHeader = "X-Mock-Received-Fields"

// newMux builds the mock upstream routes for the given model id.
func newMux(model string) *http.ServeMux {
	b := &backend{model: model}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/chat/completions", b.handleChatCompletions)
	mux.HandleFunc("POST /v1/embeddings", b.handleEmbeddings)
	mux.HandleFunc("GET /v1/models", b.handleModels)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})
	return mux
}

type backend struct {
	model string
}

// --- Request types ---

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Tools    []any         `json:"tools,omitempty"`
	Stream   bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type embeddingsRequest struct {
	Model      string          `json:"model"`
	Input      json.RawMessage `json:"input"`
	Dimensions int             `json:"dimensions"`
}

// --- Response types ---

type chatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   usage        `json:"usage"`
}

type chatChoice struct {
	Index        int     `json:"index"`
	Message      chatMsg `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type chatMsg struct {
	Role      string     `json:"role"`
	Content   *string    `json:"content"`
	ToolCalls []toolCall `json:"tool_calls,omitempty"`
}

type toolCall struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Function funcCall `json:"function"`
}

type funcCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens"`
}

type embeddingsResponse struct {
	Object string      `json:"object"`
	Model  string      `json:"model"`
	Data   []embedding `json:"data"`
	Usage  usage       `json:"usage"`
}

type embedding struct {
	Object    string    `json:"object"`
	Index     int       `json:"index"`
	Embedding []float64 `json:"embedding"`
}

// --- Chat completions ---

func (b *backend) handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	var req chatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "messages must not be empty")
		return
	}

	model := req.Model
	if model == "" {
		model = b.model
	}

	if req.Stream {
		streamChat(w, model, replyText(&req))
		return
	}

	var resp chatResponse
	if len(req.Tools) > 0 {
		resp = toolCallResponse()
	} else {
		resp = textResponse(replyText(&req))
	}
	resp.Model = model

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// replyText picks a deterministic reply from the conversation.
func replyText(req *chatRequest) string {
	if strings.Contains(strings.ToLower(lastUserMessage(req)), "count from 1 to 5") {
		return "1, 2, 3, 4, 5"
	}
	for _, msg := range req.Messages {
		if msg.Role == "system" {
			return "Ahoy there, matey! Welcome aboard!"
		}
	}
	return "Hello, nice day!"
}

func toolCallResponse() chatResponse {
	return chatResponse{
		ID:     "chatcmpl-mock-tool",
		Object: "chat.completion",
		Choices: []chatChoice{{
			Message: chatMsg{
				Role: "assistant",
				ToolCalls: []toolCall{{
					ID:   "call_mock_1",
					Type: "function",
					Function: funcCall{
						Name:      "get_weather",
						Arguments: `{"location":"San Francisco","unit":"celsius"}`,
					},
				}},
			},
			FinishReason: "tool_calls",
		}},
		Usage: usage{PromptTokens: 20, CompletionTokens: 15, TotalTokens: 35},
	}
}

func textResponse(text string) chatResponse {
	return chatResponse{
		ID:     "chatcmpl-mock-text",
		Object: "chat.completion",
		Choices: []chatChoice{{
			Message:      chatMsg{Role: "assistant", Content: &text},
			FinishReason: "stop",
		}},
		Usage: usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}
}

// streamChat sends text as one chunk per word followed by [DONE].
func streamChat(w http.ResponseWriter, model, text string) {
	rc := http.NewResponseController(w)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")

	writeChunk(w, model, map[string]any{"role": "assistant"}, nil)
	rc.Flush()

	words := strings.SplitAfter(text, " ")
	for _, word := range words {
		writeChunk(w, model, map[string]any{"content": word}, nil)
		rc.Flush()
	}

	stop := "stop"
	writeChunk(w, model, map[string]any{}, &stop)
	fmt.Fprint(w, "data: [DONE]\n\n")
	rc.Flush()
}

func writeChunk(w io.Writer, model string, delta map[string]any, finishReason *string) {
	chunk := map[string]any{
		"id":     "chatcmpl-mock-stream",
		"object": "chat.completion.chunk",
		"model":  model,
		"choices": []any{map[string]any{
			"index":         0,
			"delta":         delta,
			"finish_reason": finishReason,
		}},
	}
	data, _ := json.Marshal(chunk)
	fmt.Fprintf(w, "data: %s\n\n", data)
}

// --- Embeddings ---

func (b *backend) handleEmbeddings(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	var req embeddingsRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	inputs, err := embeddingInputs(req.Input)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	dims := req.Dimensions
	if dims <= 0 {
		dims = 4
	}

	resp := embeddingsResponse{Object: "list", Model: req.Model}
	if resp.Model == "" {
		resp.Model = b.model
	}
	tokens := 0
	for i, in := range inputs {
		resp.Data = append(resp.Data, embedding{
			Object:    "embedding",
			Index:     i,
			Embedding: fakeVector(in, dims),
		})
		tokens += len(strings.Fields(in))
	}
	resp.Usage = usage{PromptTokens: tokens, TotalTokens: tokens}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func embeddingInputs(raw json.RawMessage) ([]string, error) {
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return []string{single}, nil
	}
	var batch []string
	if err := json.Unmarshal(raw, &batch); err != nil {
		return nil, fmt.Errorf("input must be a string or an array of strings")
	}
	return batch, nil
}

// fakeVector derives a stable vector from the input bytes.
func fakeVector(s string, dims int) []float64 {
	v := make([]float64, dims)
	for i := 0; i < len(s); i++ {
		v[i%dims] += float64(s[i]) / 1000
	}
	return v
}

// --- Models ---

func (b *backend) handleModels(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"object": "list",
		"data": []map[string]any{
			{"id": b.model, "object": "model", "created": 1700000000, "owned_by": "azproxy-mock"},
		},
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// --- Helpers ---

// readBody reads the body and sets the received-fields header.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading body: "+err.Error())
		return nil, false
	}
	var fields map[string]json.RawMessage
	if json.Unmarshal(body, &fields) == nil {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		w.Header().Set(receivedFieldsHeader, strings.Join(keys, ","))
	}
	return body, true
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"message": msg, "type": "invalid_request_error"},
	})
}

func lastUserMessage(req *chatRequest) string {
	for i := len(req.Messages) - 1; i >= 0; i-- {
		if req.Messages[i].Role != "user" {
			continue
		}
		switch v := req.Messages[i].Content.(type) {
		case string:
			return v
		case []any:
			for _, part := range v {
				if m, ok := part.(map[string]any); ok && m["type"] == "text" {
					if text, ok := m["text"].(string); ok {
						return text
					}
				}
			}
		}
	}
	return ""
}
