package openaicompat

import (
	"net/http"
	"strings"

	"github.com/rhuss/azproxy/pkg/api"
)

// SplitModelID splits a composite "<provider>/<name>" identifier on its first
// slash. An identifier without a slash is used for both parts.
func SplitModelID(id string) (provider, name string) {
	if p, n, ok := strings.Cut(id, "/"); ok {
		return p, n
	}
	return id, id
}

// TranslateModelInfo reshapes the upstream model listing into the info
// response for the first listed model. The model type comes from proxy
// configuration, not from upstream data.
func TranslateModelInfo(resp *ModelsResponse, modelType api.ModelType) (*api.ModelInfo, error) {
	if resp == nil || len(resp.Data) == 0 {
		return nil, api.NewUpstreamError(http.StatusBadGateway, "upstream returned an empty model list")
	}

	id := resp.Data[0].ID
	if id == "" {
		return nil, api.NewInternalParsingError("upstream model entry has no id")
	}

	provider, name := SplitModelID(id)
	return &api.ModelInfo{
		ModelName:         name,
		ModelType:         modelType,
		ModelProviderName: provider,
	}, nil
}
