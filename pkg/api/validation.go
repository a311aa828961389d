package api

import (
	"net/url"
	"slices"
)

// APIVersionParam is the query parameter every contract request must carry.
const APIVersionParam = "api-version"

// SupportedAPIVersions lists the Azure AI Model Inference API versions the proxy accepts.
var SupportedAPIVersions = []string{"2024-05-01-preview", "2025-04-01"}

// CheckAPIVersion validates an optional api-version value. A nil value means
// the parameter was absent from the query.
func CheckAPIVersion(version *string) *APIError {
	if version == nil {
		return NewMissingAPIVersionError()
	}
	if !slices.Contains(SupportedAPIVersions, *version) {
		return NewUnsupportedAPIVersionError(*version)
	}
	return nil
}

// CheckAPIVersionQuery validates the api-version parameter of a parsed query.
// A key that is present with an empty value counts as present.
func CheckAPIVersionQuery(query url.Values) *APIError {
	values, ok := query[APIVersionParam]
	if !ok || len(values) == 0 {
		return CheckAPIVersion(nil)
	}
	return CheckAPIVersion(&values[0])
}

// CheckAPIVersionRawQuery parses a raw query string and validates its api-version.
// Malformed pairs elsewhere in the query are ignored.
func CheckAPIVersionRawQuery(rawQuery string) *APIError {
	query, _ := url.ParseQuery(rawQuery)
	return CheckAPIVersionQuery(query)
}
