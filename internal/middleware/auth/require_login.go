package auth

import (
	"net/http"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/permissions"
	"github.com/Skotchmaster/storefront/internal/session"
	"github.com/labstack/echo/v4"
)

func RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !session.FromContext(c.Request().Context()).Authenticated() {
			return echo.NewHTTPError(http.StatusUnauthorized, "you must be logged in")
		}
		return next(c)
	}
}

// RequirePermission lets through users holding any of roles.
func RequirePermission(roles ...permissions.Permission) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			req := session.FromContext(ctx)
			if !req.Authenticated() {
				return echo.NewHTTPError(http.StatusUnauthorized, "you must be logged in")
			}
			if err := permissions.Check(req.User, roles...); err != nil {
				logging.FromContext(ctx).Warn("permission_denied", "status", 403, "path", c.Path(), "error", err)
				return echo.NewHTTPError(http.StatusForbidden, "you do not have sufficient permissions")
			}
			return next(c)
		}
	}
}
