package engine

import "github.com/rhuss/azproxy/pkg/api"

// Config holds configuration for the proxy engine.
type Config struct {
	// ModelType is reported by the info operation. It comes from the
	// configured upstream type, never from upstream data. Empty means
	// chat-completion.
	ModelType api.ModelType
}

// modelType returns the effective model type.
func (c Config) modelType() api.ModelType {
	if c.ModelType == "" {
		return api.ModelTypeChatCompletion
	}
	return c.ModelType
}
