// Package api defines the Azure AI Model Inference wire contract served by
// the proxy.
//
// It provides the request types callers send (chat completions and
// embeddings), the model-info response, the api-version gate, the
// extra-parameters policy, and the error taxonomy every failure is mapped
// to before it reaches a caller.
//
// The package performs no I/O.
//
// Core types:
//   - [ChatRequest]: chat-completions payload with an open bag of extra fields
//   - [ChatRequestMessage]: role-tagged message (system, user, assistant, tool)
//   - [ToolChoice]: "none" | "auto" | "required" | function tool object
//   - [ExtraParameters]: pass-through, drop, or error policy for unknown fields
//   - [APIError]: status, machine-readable code, and message
//
// Extra fields:
//
// Top-level request fields outside the schema are captured verbatim as raw
// JSON during decode and flattened back into the same object during encode,
// so under the pass-through policy the upstream receives an object with the
// same field set the caller sent.
package api
