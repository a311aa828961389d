package transport

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/rhuss/azproxy/pkg/api"
)

// Recovery returns middleware that catches panics in the handler and
// converts them to InternalProxyParsing errors. The stack is logged, never
// sent to the caller. The server keeps accepting requests after a panic.
func Recovery(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next Proxy) Proxy {
		return ProxyFunc(func(ctx context.Context, req *ProxyRequest, w ResponseWriter) (retErr error) {
			defer func() {
				if r := recover(); r != nil {
					logger.LogAttrs(ctx, slog.LevelError, "panic in handler",
						slog.String("request_id", RequestIDFromContext(ctx)),
						slog.String("operation", string(req.Operation)),
						slog.Any("panic", r),
						slog.String("stack", string(debug.Stack())),
					)
					retErr = api.NewInternalParsingError(fmt.Sprintf("internal error: %v", r))
				}
			}()
			return next.Handle(ctx, req, w)
		})
	}
}
