package openaicompat

import (
	"net/http"
	"testing"

	"github.com/rhuss/azproxy/pkg/api"
)

func TestSplitModelID(t *testing.T) {
	tests := []struct {
		id           string
		wantProvider string
		wantName     string
	}{
		{"meta-llama/Llama-3-8B", "meta-llama", "Llama-3-8B"},
		{"gpt-4", "gpt-4", "gpt-4"},
		{"org/team/model", "org", "team/model"},
		{"/model", "", "model"},
		{"provider/", "provider", ""},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			provider, name := SplitModelID(tt.id)
			if provider != tt.wantProvider || name != tt.wantName {
				t.Errorf("SplitModelID(%q) = (%q, %q), want (%q, %q)", tt.id, provider, name, tt.wantProvider, tt.wantName)
			}
		})
	}
}

func TestTranslateModelInfo(t *testing.T) {
	resp := &ModelsResponse{Data: []Model{
		{ID: "meta-llama/Llama-3-8B", Object: "model", OwnedBy: "vllm"},
		{ID: "other/ignored"},
	}}

	got, err := TranslateModelInfo(resp, api.ModelTypeChatCompletion)
	if err != nil {
		t.Fatalf("TranslateModelInfo() error: %v", err)
	}
	want := api.ModelInfo{ModelName: "Llama-3-8B", ModelType: api.ModelTypeChatCompletion, ModelProviderName: "meta-llama"}
	if *got != want {
		t.Errorf("TranslateModelInfo() = %+v, want %+v", *got, want)
	}
}

func TestTranslateModelInfoUsesConfiguredType(t *testing.T) {
	resp := &ModelsResponse{Data: []Model{{ID: "e5-large"}}}
	got, err := TranslateModelInfo(resp, api.ModelTypeEmbeddings)
	if err != nil {
		t.Fatalf("TranslateModelInfo() error: %v", err)
	}
	if got.ModelType != api.ModelTypeEmbeddings || got.ModelName != "e5-large" || got.ModelProviderName != "e5-large" {
		t.Errorf("TranslateModelInfo() = %+v", *got)
	}
}

func TestTranslateModelInfoEmptyList(t *testing.T) {
	for _, resp := range []*ModelsResponse{nil, {}, {Data: []Model{}}} {
		_, err := TranslateModelInfo(resp, api.ModelTypeChatCompletion)
		apiErr := api.AsAPIError(err)
		if apiErr == nil || apiErr.Code != api.ErrorCodeUpstream || apiErr.Status != http.StatusBadGateway {
			t.Errorf("TranslateModelInfo(%v) error = %v, want UpstreamApi/502", resp, err)
		}
	}
}

func TestTranslateModelInfoMissingID(t *testing.T) {
	_, err := TranslateModelInfo(&ModelsResponse{Data: []Model{{Object: "model"}}}, api.ModelTypeChatCompletion)
	if apiErr := api.AsAPIError(err); apiErr == nil || apiErr.Code != api.ErrorCodeInternalParsing {
		t.Errorf("error = %v, want InternalProxyParsing", err)
	}
}
