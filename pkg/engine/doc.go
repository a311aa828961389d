// Package engine implements the per-request proxy orchestration. The Engine
// implements transport.Proxy: it applies the extra-parameters policy,
// transcodes chat-completions and embeddings payloads, forwards them to the
// OpenAI-compatible upstream and reshapes the model listing into the
// single-model info response.
//
// An Engine holds only immutable state (the upstream client and the
// configured model type) and is shared by all concurrent requests.
package engine
