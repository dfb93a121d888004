package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/viatero/expense-system/internal/core/ports"
)

// SessionCookieName is the cookie the browser client stores the session
// token in. The Authorization header takes precedence when both are present.
const SessionCookieName = "session_token"

// Auth resolves the presented session token to a user and injects it into
// context. Requests without a usable session are rejected with 401.
func Auth(auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := ExtractToken(c)
			if token == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing session token")
			}

			user := auth.CurrentUser(c.Request().Context(), token)
			if user == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired session")
			}

			c.Set("user", user)
			c.Set("user_id", user.ID)
			c.Set("role", user.Role)
			c.Set("session_token", token)

			return next(c)
		}
	}
}

// ExtractToken reads the session token from the Authorization header first,
// then falls back to the session cookie. Returns "" when neither carries one.
func ExtractToken(c echo.Context) string {
	if authHeader := c.Request().Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}

	cookie, err := c.Cookie(SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
