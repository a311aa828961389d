package openaicompat

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rhuss/azproxy/pkg/api"
	"github.com/rhuss/azproxy/pkg/debug"
)

const (
	// maxErrorBody bounds how much of an upstream error body is inspected.
	maxErrorBody = 4096
	// maxErrorText bounds a plain-text upstream body used as the message.
	maxErrorText = 512
)

// MapHTTPError converts an upstream response with a non-2xx status code into
// an UpstreamApi error carrying the upstream's own status.
func MapHTTPError(resp *http.Response) *api.APIError {
	message := ExtractErrorMessage(resp.Body)
	if message == "" {
		message = fmt.Sprintf("upstream returned HTTP %d", resp.StatusCode)
	}
	return api.NewUpstreamError(resp.StatusCode, message)
}

// MapNetworkError converts a transport-level failure (connection refused,
// timeout, DNS resolution failure) into a 502 UpstreamApi error.
func MapNetworkError(err error) *api.APIError {
	return api.NewUpstreamError(http.StatusBadGateway, fmt.Sprintf("upstream connection error: %s", err.Error()))
}

// ExtractErrorMessage reads the start of an upstream error body and returns
// the most descriptive message it finds. The OpenAI error envelope is tried
// first, then the flat {"error": "..."}, {"message": "..."} and
// {"detail": "..."} shapes used by other servers, and finally the body text,
// truncated to maxErrorText bytes.
func ExtractErrorMessage(body io.Reader) string {
	if body == nil {
		return ""
	}

	data, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return ""
	}

	var errResp ChatErrorResponse
	if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error.Message != "" {
		return errResp.Error.Message
	}

	var flat map[string]json.RawMessage
	if err := json.Unmarshal(data, &flat); err == nil {
		for _, key := range []string{"error", "message", "detail"} {
			var s string
			if raw, ok := flat[key]; ok && json.Unmarshal(raw, &s) == nil && s != "" {
				return s
			}
		}
		return ""
	}

	return debug.Truncate(strings.TrimSpace(string(data)), maxErrorText)
}
