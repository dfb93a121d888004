package ports

import (
	"context"
	"time"

	"github.com/viatero/expense-system/internal/core/domain"
)

// SignUpInput carries everything needed to create an account.
type SignUpInput struct {
	Login       string
	Password    string
	DisplayName string
}

// SessionResult is returned on successful sign-up or sign-in. User is always
// sanitized.
type SessionResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// AuthService implements the credential lifecycle: sign-up, sign-in,
// sign-out, and session lookup.
type AuthService interface {
	SignUp(ctx context.Context, input SignUpInput) (*SessionResult, error)
	SignIn(ctx context.Context, login, password string) (*SessionResult, error)
	// SignOut is idempotent and never fails; revocation errors are logged
	// and swallowed.
	SignOut(ctx context.Context, token string)
	// CurrentUser resolves the presented token to a sanitized user, or nil
	// when there is no usable session. It never returns an error: every
	// failure path degrades to unauthenticated.
	CurrentUser(ctx context.Context, token string) *domain.User
	UpdateRole(ctx context.Context, userID int64, role string) error
	// UpdateProfile changes the caller's display name and returns the
	// refreshed, sanitized user.
	UpdateProfile(ctx context.Context, userID int64, displayName string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
}

// ResetIssue is returned when a recovery code is issued. Code is the
// plaintext code; the HTTP layer only exposes it when the service runs in
// demo mode.
type ResetIssue struct {
	Code      string
	ExpiresAt time.Time
	// Degraded is true when the bookkeeping row could not be persisted and
	// the fallback mode kept the flow alive anyway.
	Degraded bool
}

// ResetVerification identifies the matched recovery request.
type ResetVerification struct {
	ResetID string
}

// ResetService implements the password-reset protocol.
type ResetService interface {
	RequestReset(ctx context.Context, login string) (*ResetIssue, error)
	VerifyCode(ctx context.Context, login, code string) (*ResetVerification, error)
	ResetPassword(ctx context.Context, login, code, newPassword string) error
}
