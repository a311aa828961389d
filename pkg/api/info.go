package api

// ModelType is the kind of model an endpoint serves.
type ModelType string

const (
	// ModelTypeChatCompletion takes chat-formatted messages and generates responses.
	ModelTypeChatCompletion ModelType = "chat-completion"
	// ModelTypeEmbeddings generates embeddings from text.
	ModelTypeEmbeddings ModelType = "embeddings"
)

// ModelInfo is the body of a successful GET /info response.
type ModelInfo struct {
	ModelName         string    `json:"model_name"`
	ModelType         ModelType `json:"model_type"`
	ModelProviderName string    `json:"model_provider_name"`
}
