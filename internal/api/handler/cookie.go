package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/viatero/expense-system/internal/api/middleware"
)

// setSessionCookie attaches the session token to the response. When persist
// is false the cookie carries no expiry and dies with the browser session;
// otherwise it lives until the token itself expires.
func setSessionCookie(c echo.Context, token string, expiresAt time.Time, persist, secure bool) {
	cookie := &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	}
	if persist {
		cookie.Expires = expiresAt
	}
	c.SetCookie(cookie)
}

// clearSessionCookie expires the session cookie immediately.
func clearSessionCookie(c echo.Context, secure bool) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})
}
