// Command mock-backend runs a deterministic OpenAI-compatible server for
// exercising the proxy locally and in integration tests. It serves chat
// completions (plain and streamed), embeddings and a one-entry model list.
//
// Every response carries X-Mock-Received-Fields, the sorted top-level keys
// of the request body, so callers can see what the proxy forwarded.
//
// Configuration:
//
//	MOCK_PORT  - Listen port (default: 9090)
//	MOCK_MODEL - Model id reported by /v1/models (default: mock/mock-model)
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	port := envOrDefault("MOCK_PORT", "9090")
	model := envOrDefault("MOCK_MODEL", "mock/mock-model")

	srv := &http.Server{Addr: ":" + port, Handler: newMux(model)}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("mock backend starting", "port", port, "model", model)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("mock backend failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("mock backend shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}

func envOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
