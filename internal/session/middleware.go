package session

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/retail_shop/internal/logging"
)

type Resolver interface {
	Resolve(ctx context.Context, token string) (*Principal, error)
}

// Load attaches the principal of a valid session cookie to the request
// context. Invalid cookies are cleared and the request continues anonymously.
func Load(r Resolver, secureCookie bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ck, err := c.Cookie(CookieName)
			if err != nil || ck.Value == "" {
				return next(c)
			}

			ctx := c.Request().Context()
			p, err := r.Resolve(ctx, ck.Value)
			if err != nil {
				logging.FromContext(ctx).Debug("session_rejected", "error", err)
				c.SetCookie(DeleteCookie(secureCookie))
				return next(c)
			}

			l := logging.FromContext(ctx).With("user_id", p.UserID.String())
			ctx = logging.IntoContext(IntoContext(ctx, p), l)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !FromContext(c.Request().Context()).IsAdmin() {
			return echo.NewHTTPError(http.StatusForbidden, "Admins only.")
		}
		return next(c)
	}
}

// RequireCustomer sends anonymous visitors to the login page and refuses admins.
func RequireCustomer(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		p := FromContext(c.Request().Context())
		if p == nil {
			return c.Redirect(http.StatusSeeOther, "/login")
		}
		if p.IsAdmin() {
			return echo.NewHTTPError(http.StatusForbidden, "Admins cannot shop.")
		}
		return next(c)
	}
}
