package auth

import (
	"context"
	"net/http"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/session"
	"github.com/Skotchmaster/storefront/internal/tokens"
	"github.com/labstack/echo/v4"
)

// Identity resolves a verified session to its user.
type Identity interface {
	SessionRevoked(ctx context.Context, jti string) (bool, error)
	CurrentUser(ctx context.Context, userID string) (*models.User, error)
}

type SessionAuth struct {
	Codec        *tokens.Codec
	Identity     Identity
	CookieSecure bool
}

// Middleware attaches a session.Request to every request. A missing cookie
// means anonymous; an unverifiable, revoked or orphaned token is treated as
// anonymous too and its cookie is cleared.
func (a *SessionAuth) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("mw", "session")
		req := session.NewRequest(c.SetCookie)

		if ck, err := c.Cookie(session.CookieName); err == nil && ck.Value != "" {
			if err := a.identify(ctx, req, ck.Value); err != nil {
				l.Error("session_lookup_failed", "status", 503, "error", err)
				return echo.NewHTTPError(http.StatusServiceUnavailable, "cannot load session")
			}
			if !req.Authenticated() {
				l.Warn("session_dropped", "reason", "invalid, revoked or orphaned token")
				c.SetCookie(session.DeleteCookie(a.CookieSecure))
			}
		}

		if req.Authenticated() {
			l = logging.FromContext(ctx).With("user_id", req.UserID)
			ctx = logging.IntoContext(ctx, l)
			c.Set("userID", req.UserID)
		}
		c.SetRequest(c.Request().WithContext(session.IntoContext(ctx, req)))
		return next(c)
	}
}

// identify fills req from a raw token. It only returns an error when the
// store could not be asked.
func (a *SessionAuth) identify(ctx context.Context, req *session.Request, raw string) error {
	claims, err := a.Codec.Verify(raw)
	if err != nil {
		logging.FromContext(ctx).Debug("session_token_rejected", "error", err)
		return nil
	}

	revoked, err := a.Identity.SessionRevoked(ctx, claims.ID)
	if err != nil {
		return err
	}
	if revoked {
		return nil
	}

	user, err := a.Identity.CurrentUser(ctx, claims.UserID)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	req.UserID = claims.UserID
	req.JTI = claims.ID
	req.User = user
	return nil
}
