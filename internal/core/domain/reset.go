package domain

import (
	"errors"
	"time"
)

// ResetCodeLength is the fixed width of recovery codes. The storage column is
// six characters wide, so the length is enforced at generation time as well
// as at verification.
const ResetCodeLength = 6

// ResetCodeTTL is how long an issued code stays valid.
const ResetCodeTTL = time.Hour

var (
	ErrResetForbidden    = errors.New("password reset not allowed for this account")
	ErrInvalidCodeFormat = errors.New("malformed recovery code")
	ErrInvalidResetCode  = errors.New("invalid recovery code")
	ErrExpiredResetCode  = errors.New("recovery code expired")
	ErrPasswordUpdate    = errors.New("failed to update password")
)

// ResetRequest is one issued recovery code. Codes are single-use: Consumed
// flips to true exactly once, when the password change succeeds. Expired rows
// are not swept; verification rejects them on read.
type ResetRequest struct {
	ID        string    `json:"reset_id"`
	UserID    int64     `json:"user_id"`
	Code      string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	Consumed  bool      `json:"consumed"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the code is past its expiry at the given instant.
func (r *ResetRequest) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// ValidResetCodeFormat reports whether code has the exact required shape:
// ResetCodeLength decimal digits.
func ValidResetCodeFormat(code string) bool {
	if len(code) != ResetCodeLength {
		return false
	}
	for _, c := range code {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
