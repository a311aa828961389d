// Package provider defines the interface between the proxy engine and the
// inference server behind it. The engine works in terms of upstream paths
// and raw HTTP responses; protocol details such as URI building, header
// filtering and error mapping stay in the adapter (see openaicompat).
package provider
