package loggingmw

import (
	"log/slog"
	"strings"
	"time"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/labstack/echo/v4"
)

// RequestLogger puts a request-scoped logger into the context and logs one
// http_request line per request. Probe and scrape paths log at debug.
func RequestLogger(base *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			r := c.Request()
			rid := r.Header.Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = c.Response().Header().Get(echo.HeaderXRequestID)
			}

			l := base.With("method", r.Method, "route", c.Path(), "remote_ip", c.RealIP())
			if rid != "" {
				l = l.With("request_id", rid)
				c.Response().Header().Set(echo.HeaderXRequestID, rid)
			}
			c.SetRequest(r.WithContext(logging.IntoContext(r.Context(), l)))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			attrs := []any{"status", status, "duration_ms", time.Since(start).Milliseconds(), "bytes", c.Response().Size}
			if uid, ok := c.Get("userID").(string); ok && uid != "" {
				attrs = append(attrs, "user_id", uid)
			}

			switch {
			case err != nil && status >= 500:
				l.Error("http_request", append(attrs, "error", err.Error())...)
			case status >= 500:
				l.Error("http_request", attrs...)
			case status >= 400:
				l.Warn("http_request", attrs...)
			case quiet(r.URL.Path):
				l.Debug("http_request", attrs...)
			default:
				l.Info("http_request", attrs...)
			}
			return nil
		}
	}
}

func quiet(path string) bool {
	return strings.HasPrefix(path, "/health/") || path == "/metrics"
}
