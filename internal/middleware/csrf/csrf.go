// Package csrf guards cookie-authenticated state-changing requests by
// checking where they come from.
package csrf

import (
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
)

type Config struct {
	// AllowedOrigins are scheme://host[:port] values, e.g. the frontend URL.
	AllowedOrigins []string
	SkipPaths      []string
}

// Middleware rejects unsafe requests whose Origin (or Referer) is neither an
// allowed origin nor the API's own. Requests carrying neither header are
// only accepted with a JSON body, which browsers cannot send cross-site
// without a preflight.
func Middleware(cfg Config) echo.MiddlewareFunc {
	allowed := map[string]struct{}{}
	for _, o := range cfg.AllowedOrigins {
		if n := normalize(o); n != "" {
			allowed[n] = struct{}{}
		}
	}
	skip := map[string]struct{}{}
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			if _, ok := skip[req.URL.Path]; ok {
				return next(c)
			}

			switch strings.ToUpper(req.Method) {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				return next(c)
			}

			origin := req.Header.Get("Origin")
			if origin == "" {
				origin = req.Header.Get("Referer")
			}
			if origin == "" {
				if isJSON(req) {
					return next(c)
				}
				return echo.NewHTTPError(http.StatusForbidden, "missing origin")
			}

			o := normalize(origin)
			if _, ok := allowed[o]; ok {
				return next(c)
			}
			if strings.EqualFold(o, schemeOf(req)+"://"+req.Host) {
				return next(c)
			}
			return echo.NewHTTPError(http.StatusForbidden, "invalid origin")
		}
	}
}

func normalize(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return strings.ToLower(u.Scheme + "://" + u.Host)
}

func isJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get(echo.HeaderContentType))
	return err == nil && mt == echo.MIMEApplicationJSON
}

func schemeOf(r *http.Request) string {
	if r.Header.Get("X-Forwarded-Proto") != "" {
		return r.Header.Get("X-Forwarded-Proto")
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}
