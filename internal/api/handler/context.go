package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/viatero/expense-system/internal/core/domain"
)

// ctxUser extracts the authenticated user injected by the Auth middleware and
// performs a fast-fail check before any service call: the user must be
// present and carry a known role, otherwise the middleware did not run.
func ctxUser(c echo.Context) (*domain.User, error) {
	user, _ := c.Get("user").(*domain.User)
	if user == nil || !domain.ValidRole(user.Role) {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return user, nil
}
