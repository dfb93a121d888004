package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/viatero/expense-system/internal/core/domain"
	"github.com/viatero/expense-system/internal/core/ports"
)

// ResetService implements the password-reset protocol: issue a short-lived
// numeric code, verify it, and gate the password replacement on it.
type ResetService struct {
	users   ports.UserRepository
	resets  ports.ResetRepository
	hasher  *PasswordHasher
	codec   *TokenCodec
	cache   *SessionCache
	revoker ports.SessionRevoker
	queue   ports.NotificationQueue
	logger  zerolog.Logger

	// fallback keeps the reset flow alive when the bookkeeping insert
	// fails. Off by default: production fails closed.
	fallback bool
}

func NewResetService(
	users ports.UserRepository,
	resets ports.ResetRepository,
	hasher *PasswordHasher,
	codec *TokenCodec,
	cache *SessionCache,
	revoker ports.SessionRevoker,
	queue ports.NotificationQueue,
	fallback bool,
	logger zerolog.Logger,
) *ResetService {
	return &ResetService{
		users:    users,
		resets:   resets,
		hasher:   hasher,
		codec:    codec,
		cache:    cache,
		revoker:  revoker,
		queue:    queue,
		fallback: fallback,
		logger:   logger,
	}
}

// RequestReset issues a fresh recovery code for the login. The plaintext
// code is returned to the caller; delivering it out of band is the
// notification queue's job.
func (s *ResetService) RequestReset(ctx context.Context, login string) (*ports.ResetIssue, error) {
	if strings.EqualFold(login, domain.AdminLogin) {
		return nil, domain.ErrResetForbidden
	}

	user, err := s.users.FindByLogin(ctx, login)
	if err != nil {
		return nil, err
	}

	code, err := generateResetCode()
	if err != nil {
		return nil, fmt.Errorf("request reset: %w", err)
	}

	now := time.Now().UTC()
	req := &domain.ResetRequest{
		UserID:    user.ID,
		Code:      code,
		ExpiresAt: now.Add(domain.ResetCodeTTL),
		CreatedAt: now,
	}

	// Only one code should be live per user; consume any stragglers first.
	// Best effort: a failure here never blocks issuing the new code.
	if err := s.resets.InvalidateForUser(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Int64("user_id", user.ID).Msg("failed to invalidate prior reset codes")
	}

	degraded := false
	if err := s.resets.Insert(ctx, req); err != nil {
		if !s.fallback {
			return nil, fmt.Errorf("request reset: %w", err)
		}
		degraded = true
		s.logger.Warn().Err(err).Int64("user_id", user.ID).
			Msg("reset bookkeeping insert failed, continuing in fallback mode")
	}

	s.queue.Enqueue(ports.Notification{
		Recipient: user.Login,
		Kind:      ports.NotifyResetCode,
		Subject:   "Your password recovery code",
		Body:      fmt.Sprintf("Your recovery code is %s. It expires in one hour.", code),
	})

	s.logger.Info().Int64("user_id", user.ID).Bool("degraded", degraded).Msg("reset code issued")

	return &ports.ResetIssue{
		Code:      code,
		ExpiresAt: req.ExpiresAt,
		Degraded:  degraded,
	}, nil
}

// VerifyCode checks a recovery code without consuming it. The shape check
// runs before any store access.
func (s *ResetService) VerifyCode(ctx context.Context, login, code string) (*ports.ResetVerification, error) {
	if !domain.ValidResetCodeFormat(code) {
		return nil, domain.ErrInvalidCodeFormat
	}

	user, err := s.users.FindByLogin(ctx, login)
	if err != nil {
		return nil, err
	}

	req, err := s.resets.FindActive(ctx, user.ID, code)
	if err != nil {
		return nil, err
	}
	if req.Expired(time.Now().UTC()) {
		return nil, domain.ErrExpiredResetCode
	}

	return &ports.ResetVerification{ResetID: req.ID}, nil
}

// ResetPassword replaces the user's password after verifying the code, then
// invalidates every session the user holds.
func (s *ResetService) ResetPassword(ctx context.Context, login, code, newPassword string) error {
	if strings.EqualFold(login, domain.AdminLogin) {
		return domain.ErrResetForbidden
	}
	if newPassword == "" {
		return domain.ErrInvalidInput
	}

	verification, err := s.VerifyCode(ctx, login, code)
	if err != nil {
		return err
	}

	// Re-read the record: it may have changed between verify and reset.
	user, err := s.users.FindByLogin(ctx, login)
	if err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}

	now := time.Now().UTC()
	if err := s.users.UpdatePasswordHash(ctx, user.ID, hash, now); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPasswordUpdate, err)
	}

	// The password change already succeeded; a bookkeeping failure must not
	// roll it back.
	if err := s.resets.MarkConsumed(ctx, verification.ResetID); err != nil {
		s.logger.Warn().Err(err).Str("reset_id", verification.ResetID).Msg("failed to mark reset code consumed")
	}

	// Every outstanding session for this user is now invalid.
	if err := s.revoker.SetUserCutoff(ctx, user.ID, now, s.codec.TTL()); err != nil {
		s.logger.Warn().Err(err).Int64("user_id", user.ID).Msg("failed to set session cutoff")
	}
	s.cache.EvictUser(user.ID)

	s.queue.Enqueue(ports.Notification{
		Recipient: user.Login,
		Kind:      ports.NotifyPasswordChanged,
		Subject:   "Your password was changed",
		Body:      "The password for your account was just reset. If this was not you, contact your manager.",
	})

	s.logger.Info().Int64("user_id", user.ID).Msg("password reset completed")
	return nil
}

// generateResetCode returns a uniformly random code of exactly
// domain.ResetCodeLength decimal digits, zero-padded.
func generateResetCode() (string, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	n := binary.BigEndian.Uint64(b[:]) % 1_000_000
	return fmt.Sprintf("%06d", n), nil
}
