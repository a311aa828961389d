// Command server runs azproxy, a reverse proxy that exposes the Azure AI
// Model Inference API in front of an OpenAI-compatible upstream.
//
// Usage:
//
//	# Start with discovered configuration
//	azproxy
//
//	# Point at an upstream
//	azproxy serve --upstream-host http://vllm --upstream-port 8000
//
//	# Show version information
//	azproxy version
//
// Configuration precedence, lowest first: defaults, YAML file, .env file,
// environment variables, flags.
package main

func main() {
	Execute()
}
