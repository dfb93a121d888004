package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/viatero/expense-system/internal/api/metrics"
	"github.com/viatero/expense-system/internal/api/middleware"
	"github.com/viatero/expense-system/internal/core/domain"
	"github.com/viatero/expense-system/internal/core/ports"
)

// AuthHandler handles account registration, sessions, and password recovery.
type AuthHandler struct {
	auth   ports.AuthService
	resets ports.ResetService

	secureCookies bool
	// exposeResetCode echoes recovery codes in API responses. Useful for
	// demos and local runs without a mail relay.
	exposeResetCode bool
}

func NewAuthHandler(auth ports.AuthService, resets ports.ResetService, secureCookies, exposeResetCode bool) *AuthHandler {
	return &AuthHandler{
		auth:            auth,
		resets:          resets,
		secureCookies:   secureCookies,
		exposeResetCode: exposeResetCode,
	}
}

// SignUp creates an account and signs the new user in.
//
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signUpRequest  true  "Account details"
// @Success      201   {object}  sessionResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /auth/signup [post]
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req signUpRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	session, err := h.auth.SignUp(c.Request().Context(), ports.SignUpInput{
		Login:       req.Login,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		return err
	}

	metrics.SignUpsTotal.Inc()
	setSessionCookie(c, session.Token, session.ExpiresAt, false, h.secureCookies)

	return c.JSON(http.StatusCreated, sessionResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      toUserResponse(session.User),
	})
}

// SignIn authenticates a user and starts a session.
//
// @Summary      Sign in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signInRequest  true  "Credentials"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/signin [post]
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req signInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	session, err := h.auth.SignIn(c.Request().Context(), req.Login, req.Password)
	if err != nil {
		// Unknown login and wrong password are indistinguishable to the
		// caller; a distinct 404 would leak which logins exist.
		if errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.SignInsTotal.WithLabelValues("denied").Inc()
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
		}
		return err
	}

	metrics.SignInsTotal.WithLabelValues("ok").Inc()
	setSessionCookie(c, session.Token, session.ExpiresAt, req.Remember, h.secureCookies)

	return c.JSON(http.StatusOK, sessionResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      toUserResponse(session.User),
	})
}

// SignOut ends the current session. Idempotent: succeeds even when no valid
// session is presented.
//
// @Summary      Sign out
// @Tags         auth
// @Produce      json
// @Success      200  {object}  messageResponse
// @Router       /auth/signout [post]
func (h *AuthHandler) SignOut(c echo.Context) error {
	if token := middleware.ExtractToken(c); token != "" {
		h.auth.SignOut(c.Request().Context(), token)
	}
	clearSessionCookie(c, h.secureCookies)
	return c.JSON(http.StatusOK, messageResponse{Message: "signed out"})
}

// Me returns the authenticated user.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  userResponse
// @Failure      401  {object}  errorResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// UpdateProfile changes the caller's display name.
//
// @Summary      Update own profile
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateProfileRequest  true  "Profile fields"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/me [put]
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	user, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	updated, err := h.auth.UpdateProfile(c.Request().Context(), user.ID, req.DisplayName)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(updated))
}

// RequestReset issues a password recovery code.
//
// @Summary      Request a password recovery code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      resetRequestBody  true  "Account login"
// @Success      200   {object}  resetRequestResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /auth/reset/request [post]
func (h *AuthHandler) RequestReset(c echo.Context) error {
	var req resetRequestBody
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	issue, err := h.resets.RequestReset(c.Request().Context(), req.Login)
	if err != nil {
		countResetFailure(err)
		return err
	}

	mode := "stored"
	if issue.Degraded {
		mode = "degraded"
	}
	metrics.ResetCodesIssuedTotal.WithLabelValues(mode).Inc()

	resp := resetRequestResponse{
		Message:   "recovery code issued",
		ExpiresAt: issue.ExpiresAt,
		Degraded:  issue.Degraded,
	}
	if h.exposeResetCode {
		resp.Code = issue.Code
	}
	return c.JSON(http.StatusOK, resp)
}

// VerifyReset checks a recovery code without consuming it.
//
// @Summary      Verify a password recovery code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      resetVerifyBody  true  "Login and recovery code"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      410   {object}  errorResponse
// @Router       /auth/reset/verify [post]
func (h *AuthHandler) VerifyReset(c echo.Context) error {
	var req resetVerifyBody
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if _, err := h.resets.VerifyCode(c.Request().Context(), req.Login, req.Code); err != nil {
		countResetFailure(err)
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "code valid"})
}

// ConfirmReset sets a new password using a recovery code.
//
// @Summary      Reset password with a recovery code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      resetConfirmBody  true  "Login, code, and new password"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      410   {object}  errorResponse
// @Router       /auth/reset/confirm [post]
func (h *AuthHandler) ConfirmReset(c echo.Context) error {
	var req resetConfirmBody
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.resets.ResetPassword(c.Request().Context(), req.Login, req.Code, req.NewPassword); err != nil {
		countResetFailure(err)
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "password updated"})
}

// UpdateRole changes another user's role. Manager only.
//
// @Summary      Update a user's role
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                true  "User ID"
// @Param        body  body      updateRoleRequest  true  "New role"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/users/{id}/role [put]
func (h *AuthHandler) UpdateRole(c echo.Context) error {
	userID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || userID <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	var req updateRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.auth.UpdateRole(c.Request().Context(), userID, req.Role); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "role updated"})
}

// ListUsers returns all accounts. Manager only.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listUsersResponse
// @Failure      403  {object}  errorResponse
// @Router       /v1/users [get]
func (h *AuthHandler) ListUsers(c echo.Context) error {
	users, err := h.auth.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}

	data := make([]userResponse, 0, len(users))
	for _, u := range users {
		data = append(data, toUserResponse(u))
	}
	return c.JSON(http.StatusOK, listUsersResponse{Data: data})
}

// countResetFailure classifies a recovery error for metrics. Unknown errors
// are not counted; they surface as 500s elsewhere.
func countResetFailure(err error) {
	switch {
	case errors.Is(err, domain.ErrResetForbidden):
		metrics.ResetFailuresTotal.WithLabelValues("forbidden").Inc()
	case errors.Is(err, domain.ErrInvalidCodeFormat):
		metrics.ResetFailuresTotal.WithLabelValues("bad_format").Inc()
	case errors.Is(err, domain.ErrInvalidResetCode):
		metrics.ResetFailuresTotal.WithLabelValues("invalid_code").Inc()
	case errors.Is(err, domain.ErrExpiredResetCode):
		metrics.ResetFailuresTotal.WithLabelValues("expired").Inc()
	}
}
