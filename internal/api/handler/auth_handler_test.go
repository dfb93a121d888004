package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/viatero/expense-system/internal/api/middleware"
	"github.com/viatero/expense-system/internal/core/domain"
	"github.com/viatero/expense-system/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Stub services
// ---------------------------------------------------------------------------

type stubAuthService struct {
	signInErr    error
	signedOut    []string
	lastRoleArgs struct {
		userID int64
		role   string
	}
}

func sessionFor(login string) *ports.SessionResult {
	return &ports.SessionResult{
		Token:     "token-" + login,
		ExpiresAt: time.Now().UTC().Add(time.Hour),
		User:      &domain.User{ID: 1, Login: login, Role: domain.RoleEmployee},
	}
}

func (s *stubAuthService) SignUp(_ context.Context, input ports.SignUpInput) (*ports.SessionResult, error) {
	return sessionFor(input.Login), nil
}

func (s *stubAuthService) SignIn(_ context.Context, login, _ string) (*ports.SessionResult, error) {
	if s.signInErr != nil {
		return nil, s.signInErr
	}
	return sessionFor(login), nil
}

func (s *stubAuthService) SignOut(_ context.Context, token string) {
	s.signedOut = append(s.signedOut, token)
}

func (s *stubAuthService) CurrentUser(context.Context, string) *domain.User { return nil }

func (s *stubAuthService) UpdateRole(_ context.Context, userID int64, role string) error {
	s.lastRoleArgs.userID = userID
	s.lastRoleArgs.role = role
	return nil
}

func (s *stubAuthService) UpdateProfile(_ context.Context, userID int64, displayName string) (*domain.User, error) {
	return &domain.User{ID: userID, Login: "alice@example.com", DisplayName: displayName, Role: domain.RoleEmployee}, nil
}

func (s *stubAuthService) ListUsers(context.Context) ([]*domain.User, error) {
	return []*domain.User{{ID: 1, Login: "alice@example.com", Role: domain.RoleEmployee}}, nil
}

type stubResetService struct {
	issue      *ports.ResetIssue
	requestErr error
}

func (s *stubResetService) RequestReset(context.Context, string) (*ports.ResetIssue, error) {
	if s.requestErr != nil {
		return nil, s.requestErr
	}
	return s.issue, nil
}

func (s *stubResetService) VerifyCode(context.Context, string, string) (*ports.ResetVerification, error) {
	return &ports.ResetVerification{ResetID: "reset-1"}, nil
}

func (s *stubResetService) ResetPassword(context.Context, string, string, string) error {
	return nil
}

// ---------------------------------------------------------------------------

func newTestContext(t *testing.T, method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	res := &http.Response{Header: rec.Header()}
	for _, c := range res.Cookies() {
		if c.Name == middleware.SessionCookieName {
			return c
		}
	}
	return nil
}

func TestAuthHandler_SignUp(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, &stubResetService{}, false, false)
	c, rec := newTestContext(t, http.MethodPost, "/auth/signup",
		`{"login":"alice@example.com","password":"pw","display_name":"Alice"}`)

	if err := h.SignUp(c); err != nil {
		t.Fatalf("SignUp returned error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp sessionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Token == "" || resp.User.Login != "alice@example.com" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	cookie := sessionCookie(rec)
	if cookie == nil || cookie.Value != resp.Token {
		t.Fatalf("session cookie not set")
	}
	if !cookie.HttpOnly {
		t.Fatalf("session cookie must be http-only")
	}
}

func TestAuthHandler_SignUp_MissingFields(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, &stubResetService{}, false, false)
	c, _ := newTestContext(t, http.MethodPost, "/auth/signup", `{"login":"","password":""}`)

	err := h.SignUp(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestAuthHandler_SignIn_IndistinguishableFailures(t *testing.T) {
	// Unknown login and wrong password must produce byte-identical responses.
	bodies := make([]string, 0, 2)
	for _, serviceErr := range []error{domain.ErrUserNotFound, domain.ErrInvalidCredentials} {
		h := NewAuthHandler(&stubAuthService{signInErr: serviceErr}, &stubResetService{}, false, false)
		c, rec := newTestContext(t, http.MethodPost, "/auth/signin",
			`{"login":"alice@example.com","password":"pw"}`)

		if err := h.SignIn(c); err != nil {
			t.Fatalf("SignIn returned error: %v", err)
		}
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		bodies = append(bodies, rec.Body.String())
	}
	if bodies[0] != bodies[1] {
		t.Fatalf("failure responses differ: %q vs %q", bodies[0], bodies[1])
	}
}

func TestAuthHandler_SignIn_RememberSetsPersistentCookie(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, &stubResetService{}, false, false)

	c, rec := newTestContext(t, http.MethodPost, "/auth/signin",
		`{"login":"alice@example.com","password":"pw","remember":true}`)
	if err := h.SignIn(c); err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}
	cookie := sessionCookie(rec)
	if cookie == nil || cookie.Expires.IsZero() {
		t.Fatalf("remembered session must carry an expiry")
	}

	c, rec = newTestContext(t, http.MethodPost, "/auth/signin",
		`{"login":"alice@example.com","password":"pw"}`)
	if err := h.SignIn(c); err != nil {
		t.Fatalf("SignIn returned error: %v", err)
	}
	cookie = sessionCookie(rec)
	if cookie == nil || !cookie.Expires.IsZero() {
		t.Fatalf("default session cookie must die with the browser session")
	}
}

func TestAuthHandler_SignOut(t *testing.T) {
	auth := &stubAuthService{}
	h := NewAuthHandler(auth, &stubResetService{}, false, false)

	c, rec := newTestContext(t, http.MethodPost, "/auth/signout", "")
	c.Request().Header.Set("Authorization", "Bearer some-token")

	if err := h.SignOut(c); err != nil {
		t.Fatalf("SignOut returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(auth.signedOut) != 1 || auth.signedOut[0] != "some-token" {
		t.Fatalf("token not passed to service: %+v", auth.signedOut)
	}

	cookie := sessionCookie(rec)
	if cookie == nil || cookie.MaxAge != -1 {
		t.Fatalf("session cookie not cleared")
	}
}

func TestAuthHandler_SignOut_WithoutSession(t *testing.T) {
	auth := &stubAuthService{}
	h := NewAuthHandler(auth, &stubResetService{}, false, false)

	c, rec := newTestContext(t, http.MethodPost, "/auth/signout", "")
	if err := h.SignOut(c); err != nil {
		t.Fatalf("SignOut returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("sign-out must succeed without a session, got %d", rec.Code)
	}
	if len(auth.signedOut) != 0 {
		t.Fatalf("no token should reach the service")
	}
}

func TestAuthHandler_Me(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, &stubResetService{}, false, false)

	c, rec := newTestContext(t, http.MethodGet, "/auth/me", "")
	c.Set("user", &domain.User{ID: 42, Login: "alice@example.com", Role: domain.RoleEmployee})

	if err := h.Me(c); err != nil {
		t.Fatalf("Me returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp userResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.ID != 42 {
		t.Fatalf("unexpected user: %+v", resp)
	}
}

func TestAuthHandler_Me_Unauthenticated(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, &stubResetService{}, false, false)
	c, _ := newTestContext(t, http.MethodGet, "/auth/me", "")

	err := h.Me(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestAuthHandler_RequestReset_CodeExposure(t *testing.T) {
	issue := &ports.ResetIssue{Code: "123456", ExpiresAt: time.Now().UTC().Add(time.Hour)}

	// Demo mode echoes the code in the response.
	h := NewAuthHandler(&stubAuthService{}, &stubResetService{issue: issue}, false, true)
	c, rec := newTestContext(t, http.MethodPost, "/auth/reset/request", `{"login":"alice@example.com"}`)
	if err := h.RequestReset(c); err != nil {
		t.Fatalf("RequestReset returned error: %v", err)
	}
	var exposed resetRequestResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &exposed); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if exposed.Code != "123456" {
		t.Fatalf("expected code in demo mode, got %+v", exposed)
	}

	// Production mode relies on out-of-band delivery.
	h = NewAuthHandler(&stubAuthService{}, &stubResetService{issue: issue}, false, false)
	c, rec = newTestContext(t, http.MethodPost, "/auth/reset/request", `{"login":"alice@example.com"}`)
	if err := h.RequestReset(c); err != nil {
		t.Fatalf("RequestReset returned error: %v", err)
	}
	var hidden resetRequestResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &hidden); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if hidden.Code != "" {
		t.Fatalf("code must not leak outside demo mode: %+v", hidden)
	}
}

func TestAuthHandler_UpdateProfile(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, &stubResetService{}, false, false)

	c, rec := newTestContext(t, http.MethodPut, "/auth/me", `{"display_name":"Alice Smith"}`)
	c.Set("user", &domain.User{ID: 42, Login: "alice@example.com", Role: domain.RoleEmployee})

	if err := h.UpdateProfile(c); err != nil {
		t.Fatalf("UpdateProfile returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp userResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.ID != 42 || resp.DisplayName != "Alice Smith" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAuthHandler_UpdateProfile_BadInput(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, &stubResetService{}, false, false)

	c, _ := newTestContext(t, http.MethodPut, "/auth/me", `{"display_name":""}`)
	c.Set("user", &domain.User{ID: 42, Login: "alice@example.com", Role: domain.RoleEmployee})

	err := h.UpdateProfile(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}

	c, _ = newTestContext(t, http.MethodPut, "/auth/me", `{"display_name":"Alice"}`)
	err = h.UpdateProfile(c)
	he, ok = err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without claims, got %v", err)
	}
}

func TestAuthHandler_UpdateRole(t *testing.T) {
	auth := &stubAuthService{}
	h := NewAuthHandler(auth, &stubResetService{}, false, false)

	c, rec := newTestContext(t, http.MethodPut, "/v1/users/42/role", `{"role":"manager"}`)
	c.SetParamNames("id")
	c.SetParamValues("42")

	if err := h.UpdateRole(c); err != nil {
		t.Fatalf("UpdateRole returned error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if auth.lastRoleArgs.userID != 42 || auth.lastRoleArgs.role != domain.RoleManager {
		t.Fatalf("unexpected service args: %+v", auth.lastRoleArgs)
	}
}

func TestAuthHandler_UpdateRole_BadInput(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, &stubResetService{}, false, false)

	c, _ := newTestContext(t, http.MethodPut, "/v1/users/nan/role", `{"role":"manager"}`)
	c.SetParamNames("id")
	c.SetParamValues("nan")
	if err := h.UpdateRole(c); err == nil {
		t.Fatalf("expected error for non-numeric id")
	}

	c, _ = newTestContext(t, http.MethodPut, "/v1/users/42/role", `{"role":"root"}`)
	c.SetParamNames("id")
	c.SetParamValues("42")
	err := h.UpdateRole(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown role, got %v", err)
	}
}
