package transport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/rhuss/azproxy/pkg/api"
)

// Logging returns middleware that emits one structured log entry per
// request with the request ID, operation, method, status and duration.
// 5xx outcomes are logged at ERROR, 4xx at WARN, everything else at INFO.
func Logging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next Proxy) Proxy {
		return ProxyFunc(func(ctx context.Context, req *ProxyRequest, w ResponseWriter) error {
			start := time.Now()

			err := next.Handle(ctx, req, w)

			status := w.Status()
			attrs := []slog.Attr{
				slog.String("request_id", RequestIDFromContext(ctx)),
				slog.String("operation", string(req.Operation)),
				slog.String("method", req.Method),
				slog.Duration("duration", time.Since(start)),
			}
			if err != nil {
				apiErr := api.AsAPIError(err)
				if !w.Written() {
					status = apiErr.Status
				}
				attrs = append(attrs,
					slog.String("code", string(apiErr.Code)),
					slog.String("error", apiErr.Message),
				)
			}
			attrs = append(attrs, slog.Int("status", status))

			level := slog.LevelInfo
			msg := "request completed"
			switch {
			case status >= http.StatusInternalServerError:
				level, msg = slog.LevelError, "request failed"
			case status >= http.StatusBadRequest:
				level, msg = slog.LevelWarn, "request rejected"
			}
			logger.LogAttrs(ctx, level, msg, attrs...)

			return err
		})
	}
}
