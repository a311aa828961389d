package http

import (
	"context"
	"encoding/json"
	"net"
	gohttp "net/http"
	"strings"
	"testing"
	"time"

	"github.com/rhuss/azproxy/pkg/api"
	"github.com/rhuss/azproxy/pkg/transport"
)

func startServer(t *testing.T, proxy transport.Proxy, opts ...ServerOption) (string, context.CancelFunc, <-chan error) {
	t.Helper()
	srv := NewServer(proxy, opts...)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ctx, ln) }()
	t.Cleanup(cancel)

	return "http://" + ln.Addr().String(), cancel, errCh
}

func TestServerStartsAndAcceptsRequests(t *testing.T) {
	proxy := transport.ProxyFunc(func(ctx context.Context, _ *transport.ProxyRequest, w transport.ResponseWriter) error {
		return w.WriteJSON(ctx, gohttp.StatusOK, &api.ModelInfo{
			ModelName:         "Llama-3.1-8B",
			ModelType:         api.ModelTypeChatCompletion,
			ModelProviderName: "meta-llama",
		})
	})
	base, cancel, errCh := startServer(t, proxy)

	resp, err := gohttp.Get(base + "/info?api-version=2025-04-01")
	if err != nil {
		t.Fatalf("GET error: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != gohttp.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, gohttp.StatusOK)
	}
	var got api.ModelInfo
	json.NewDecoder(resp.Body).Decode(&got)
	if got.ModelName != "Llama-3.1-8B" {
		t.Errorf("model_name = %q, want Llama-3.1-8B", got.ModelName)
	}

	cancel()
	if err := <-errCh; err != nil {
		t.Errorf("Serve() = %v, want nil after clean shutdown", err)
	}
}

func TestServerRecoversFromPanic(t *testing.T) {
	proxy := transport.ProxyFunc(func(context.Context, *transport.ProxyRequest, transport.ResponseWriter) error {
		panic("boom")
	})
	base, _, _ := startServer(t, proxy)

	for i := 0; i < 2; i++ {
		resp, err := gohttp.Post(base+"/chat/completions?api-version=2025-04-01", "application/json", strings.NewReader(`{"messages":[]}`))
		if err != nil {
			t.Fatalf("POST error: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != gohttp.StatusInternalServerError {
			t.Errorf("status = %d, want 500", resp.StatusCode)
		}
	}
}

func TestServerGracefulShutdown(t *testing.T) {
	slow := transport.ProxyFunc(func(ctx context.Context, _ *transport.ProxyRequest, w transport.ResponseWriter) error {
		select {
		case <-time.After(200 * time.Millisecond):
			return w.WriteJSON(ctx, gohttp.StatusOK, map[string]string{"status": "done"})
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	base, cancel, errCh := startServer(t, slow, WithShutdownTimeout(5*time.Second))

	responseCh := make(chan int, 1)
	go func() {
		resp, err := gohttp.Get(base + "/info?api-version=2025-04-01")
		if err != nil {
			responseCh <- 0
			return
		}
		defer resp.Body.Close()
		responseCh <- resp.StatusCode
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	if status := <-responseCh; status != gohttp.StatusOK {
		t.Errorf("slow request status = %d, want %d", status, gohttp.StatusOK)
	}
	if err := <-errCh; err != nil {
		t.Errorf("Serve() = %v, want nil", err)
	}
}

func TestServerShutdownDeadlineCancelsInFlight(t *testing.T) {
	cancelled := make(chan struct{})
	stuck := transport.ProxyFunc(func(ctx context.Context, _ *transport.ProxyRequest, _ transport.ResponseWriter) error {
		<-ctx.Done()
		close(cancelled)
		return ctx.Err()
	})
	base, cancel, errCh := startServer(t, stuck, WithShutdownTimeout(100*time.Millisecond))

	go func() {
		resp, err := gohttp.Get(base + "/info?api-version=2025-04-01")
		if err == nil {
			resp.Body.Close()
		}
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-cancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("in-flight request not cancelled after shutdown deadline")
	}
	if err := <-errCh; err == nil {
		t.Error("Serve() = nil, want deadline error")
	}
}

func TestServerFunctionalOptions(t *testing.T) {
	srv := NewServer(transport.ProxyFunc(nil),
		WithAddr(":9999"),
		WithMaxBodySize(1024),
		WithReadTimeout(5*time.Second),
		WithWriteTimeout(0),
		WithShutdownTimeout(10*time.Second),
		WithMetricsPath(""),
	)

	if srv.config.Addr != ":9999" {
		t.Errorf("addr = %q, want %q", srv.config.Addr, ":9999")
	}
	if srv.config.MaxBodySize != 1024 {
		t.Errorf("max body size = %d, want %d", srv.config.MaxBodySize, 1024)
	}
	if srv.config.ShutdownTimeout != 10*time.Second {
		t.Errorf("shutdown timeout = %v, want %v", srv.config.ShutdownTimeout, 10*time.Second)
	}
	if srv.httpServer.ReadTimeout != 5*time.Second || srv.httpServer.WriteTimeout != 0 {
		t.Errorf("timeouts = %v/%v", srv.httpServer.ReadTimeout, srv.httpServer.WriteTimeout)
	}
	if srv.adapter.config.MetricsPath != "" {
		t.Errorf("metrics path = %q, want disabled", srv.adapter.config.MetricsPath)
	}
}
