package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"

	"github.com/viatero/expense-system/internal/core/domain"
	"github.com/viatero/expense-system/internal/core/ports"
)

// AuthService implements sign-up, sign-in, sign-out, and session lookup.
type AuthService struct {
	users   ports.UserRepository
	hasher  *PasswordHasher
	codec   *TokenCodec
	cache   *SessionCache
	revoker ports.SessionRevoker
	logger  zerolog.Logger
}

func NewAuthService(
	users ports.UserRepository,
	hasher *PasswordHasher,
	codec *TokenCodec,
	cache *SessionCache,
	revoker ports.SessionRevoker,
	logger zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:   users,
		hasher:  hasher,
		codec:   codec,
		cache:   cache,
		revoker: revoker,
		logger:  logger,
	}
}

// SignUp creates the account and immediately signs it in. The chained
// sign-in re-verifies the stored hash round-trips before declaring success
// and populates the session in one call.
func (s *AuthService) SignUp(ctx context.Context, input ports.SignUpInput) (*ports.SessionResult, error) {
	if err := validateSignUp(input); err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsByLogin(ctx, input.Login)
	if err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}
	if exists {
		return nil, domain.ErrLoginTaken
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}

	user := &domain.User{
		ID:           randomUserID(),
		Login:        input.Login,
		DisplayName:  input.DisplayName,
		PasswordHash: hash,
		Role:         domain.RoleEmployee,
		UpdatedAt:    time.Now().UTC(),
	}

	if err := s.users.Insert(ctx, user); err != nil {
		// An id collision is astronomically unlikely but cheap to absorb:
		// one retry with a fresh id before giving up.
		if errors.Is(err, domain.ErrUserIDConflict) {
			user.ID = randomUserID()
			err = s.users.Insert(ctx, user)
		}
		if err != nil {
			return nil, fmt.Errorf("sign up: %w", err)
		}
	}

	// Wait until the insert is readable before the chained sign-in, with
	// bounded backoff rather than a fixed sleep.
	if err := s.awaitReadable(ctx, input.Login); err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}

	s.logger.Info().Str("login", input.Login).Int64("user_id", user.ID).Msg("user signed up")
	return s.SignIn(ctx, input.Login, input.Password)
}

// SignIn authenticates the login/password pair and mints a session.
func (s *AuthService) SignIn(ctx context.Context, login, password string) (*ports.SessionResult, error) {
	user, err := s.users.FindByLogin(ctx, login)
	if err != nil {
		return nil, err
	}

	if user.PasswordHash == "" {
		// Data integrity problem, not a wrong password.
		s.logger.Error().Str("login", login).Msg("user record has no password hash")
		return nil, domain.ErrAuthConfiguration
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}

	now := time.Now().UTC()
	sanitized := user.Sanitized()
	token, claims, err := s.codec.Mint(sanitized, now)
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}

	s.cache.Put(token, sanitized, now)
	s.logger.Info().Str("login", login).Msg("user signed in")

	return &ports.SessionResult{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		User:      sanitized,
	}, nil
}

// SignOut revokes the token and drops it from the cache. Calling it twice,
// or with a garbage token, is a no-op.
func (s *AuthService) SignOut(ctx context.Context, token string) {
	defer s.cache.Evict(token)
	if token == "" {
		return
	}

	claims, err := s.codec.Parse(token)
	if err != nil {
		return
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return
	}
	if err := s.revoker.RevokeToken(ctx, claims.ID, ttl); err != nil {
		s.logger.Warn().Err(err).Str("login", claims.Login).Msg("failed to revoke session token")
	}
}

// CurrentUser resolves token to a sanitized user. The cache answers within
// its TTL; otherwise the token itself is re-verified and checked against the
// revocation store. Nil means no session; this method never errors.
func (s *AuthService) CurrentUser(ctx context.Context, token string) *domain.User {
	if token == "" {
		return nil
	}

	now := time.Now().UTC()
	if user := s.cache.Get(token, now); user != nil {
		return user
	}

	claims, err := s.codec.Parse(token)
	if err != nil {
		return nil
	}

	revoked, err := s.revoker.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		// Revocation store unavailable: log and treat the signed token as
		// authoritative, matching the availability bias elsewhere.
		s.logger.Warn().Err(err).Msg("revocation check failed, trusting token")
	} else if revoked {
		return nil
	}

	cutoff, err := s.revoker.UserCutoff(ctx, claims.UserID)
	if err != nil {
		s.logger.Warn().Err(err).Msg("cutoff check failed, trusting token")
	} else if !cutoff.IsZero() && claims.IssuedAt != nil && claims.IssuedAt.Time.Before(cutoff) {
		return nil
	}

	user := claims.User()
	s.cache.Put(token, user, now)
	return user
}

// UpdateRole stores a new role for the user. Authorization happens in the
// transport layer; this only validates the role value.
func (s *AuthService) UpdateRole(ctx context.Context, userID int64, role string) error {
	if !domain.ValidRole(role) {
		return domain.ErrInvalidInput
	}
	if err := s.users.UpdateRole(ctx, userID, role, time.Now().UTC()); err != nil {
		return err
	}
	s.logger.Info().Int64("user_id", userID).Str("role", role).Msg("role updated")
	return nil
}

// UpdateProfile stores a new display name for the user and returns the
// refreshed record. Sessions stay valid; tokens minted before the change
// keep their embedded name until they are re-issued.
func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, displayName string) (*domain.User, error) {
	if displayName == "" || len(displayName) > domain.MaxDisplayNameLength {
		return nil, domain.ErrInvalidInput
	}

	if err := s.users.UpdateDisplayName(ctx, userID, displayName, time.Now().UTC()); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", userID).Msg("profile updated")
	return user.Sanitized(), nil
}

// ListUsers returns all users, sanitized.
func (s *AuthService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.User, len(users))
	for i, u := range users {
		out[i] = u.Sanitized()
	}
	return out, nil
}

// awaitReadable polls FindByLogin until the just-inserted record is visible.
// Stores without read-after-write consistency need a few tries.
func (s *AuthService) awaitReadable(ctx context.Context, login string) error {
	backoff := retry.WithMaxRetries(4, retry.NewFibonacci(50*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if _, err := s.users.FindByLogin(ctx, login); err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				return retry.RetryableError(err)
			}
			return err
		}
		return nil
	})
}

func validateSignUp(input ports.SignUpInput) error {
	if input.Login == "" || len(input.Login) > domain.MaxLoginLength {
		return domain.ErrInvalidInput
	}
	if len(input.DisplayName) > domain.MaxDisplayNameLength {
		return domain.ErrInvalidInput
	}
	if input.Password == "" {
		return domain.ErrInvalidInput
	}
	return nil
}

// randomUserID draws a positive id that fits a 32-bit signed integer column.
func randomUserID() int64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return time.Now().UnixNano()%(domain.MaxUserID-1) + 1
	}
	n := int64(binary.BigEndian.Uint64(b[:]) % uint64(domain.MaxUserID-1))
	return n + 1
}
