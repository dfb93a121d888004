package ports

import (
	"context"
	"time"

	"github.com/viatero/expense-system/internal/core/domain"
)

// UserRepository is the credential store gateway. Implementations translate
// store-level errors into domain errors; raw driver errors never cross this
// boundary on the not-found and conflict paths.
type UserRepository interface {
	FindByLogin(ctx context.Context, login string) (*domain.User, error)
	FindByID(ctx context.Context, userID int64) (*domain.User, error)
	// ExistsByLogin is a cheap existence check; it must not fetch the row.
	ExistsByLogin(ctx context.Context, login string) (bool, error)
	// Insert returns domain.ErrLoginTaken on a login conflict and
	// domain.ErrUserIDConflict on an id conflict.
	Insert(ctx context.Context, user *domain.User) error
	UpdatePasswordHash(ctx context.Context, userID int64, newHash string, ts time.Time) error
	UpdateRole(ctx context.Context, userID int64, role string, ts time.Time) error
	UpdateDisplayName(ctx context.Context, userID int64, displayName string, ts time.Time) error
	// List returns all users; callers are expected to sanitize before
	// returning them anywhere.
	List(ctx context.Context) ([]*domain.User, error)
}

// ResetRepository persists password recovery codes.
type ResetRepository interface {
	Insert(ctx context.Context, req *domain.ResetRequest) error
	// FindActive returns the unconsumed request matching user and code, or
	// domain.ErrInvalidResetCode. Expiry is the caller's concern.
	FindActive(ctx context.Context, userID int64, code string) (*domain.ResetRequest, error)
	MarkConsumed(ctx context.Context, resetID string) error
	// InvalidateForUser consumes every outstanding unconsumed request for the
	// user, so at most one code is live at a time.
	InvalidateForUser(ctx context.Context, userID int64) error
}

// SessionRevoker invalidates issued session tokens. Individual tokens are
// revoked by jti on sign-out; a per-user cutoff invalidates every token
// issued before a given instant, used on password reset.
type SessionRevoker interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
	SetUserCutoff(ctx context.Context, userID int64, at time.Time, ttl time.Duration) error
	// UserCutoff returns the zero time when no cutoff is set.
	UserCutoff(ctx context.Context, userID int64) (time.Time, error)
}
