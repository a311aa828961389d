package transport

import (
	"encoding/json"
	"net/http"

	"github.com/rhuss/azproxy/pkg/api"
	"github.com/rhuss/azproxy/pkg/observability"
)

// WriteAPIError converts err into the contract error envelope and writes it
// with the error's HTTP status.
func WriteAPIError(w http.ResponseWriter, err error) {
	apiErr := api.AsAPIError(err)
	if apiErr == nil {
		apiErr = api.NewInternalParsingError("unknown error")
	}
	observability.ErrorsTotal.WithLabelValues(string(apiErr.Code)).Inc()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.Status)
	json.NewEncoder(w).Encode(api.ErrorResponse{Error: apiErr})
}
