package service

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/viatero/expense-system/internal/core/domain"
)

// DefaultSessionCacheTTL bounds how long a cached session entry is trusted
// before the token is re-verified.
const DefaultSessionCacheTTL = time.Minute

// SessionClaims is the payload of a signed session token. The token itself
// is the durable client-side copy of the session; it carries everything
// needed to rebuild the sanitized user without a store read.
type SessionClaims struct {
	UserID      int64  `json:"uid"`
	Login       string `json:"login"`
	DisplayName string `json:"name"`
	Role        string `json:"role"`
	jwt.RegisteredClaims
}

// TokenCodec mints and verifies HS256 session tokens.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenCodec returns a codec signing with secret. If ttl <= 0 a 24 hour
// default is used.
func NewTokenCodec(secret string, ttl time.Duration) *TokenCodec {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenCodec{secret: []byte(secret), ttl: ttl}
}

// TTL returns the configured token lifetime.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Mint issues a signed token for the user. The jti is a fresh UUID so
// individual tokens can be revoked.
func (c *TokenCodec) Mint(user *domain.User, now time.Time) (string, *SessionClaims, error) {
	claims := &SessionClaims{
		UserID:      user.ID,
		Login:       user.Login,
		DisplayName: user.DisplayName,
		Role:        user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", nil, err
	}
	return token, claims, nil
}

// Parse verifies the token signature and expiry and returns its claims.
func (c *TokenCodec) Parse(token string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return c.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, domain.ErrInvalidCredentials
	}
	return claims, nil
}

// User rebuilds the sanitized user the claims were minted from.
func (sc *SessionClaims) User() *domain.User {
	return &domain.User{
		ID:          sc.UserID,
		Login:       sc.Login,
		DisplayName: sc.DisplayName,
		Role:        sc.Role,
	}
}

type cacheEntry struct {
	user      *domain.User
	userID    int64
	expiresAt time.Time
}

// SessionCache is a process-local, time-bounded cache of verified sessions
// keyed by token. It only ever holds sanitized users and is purely an
// optimization over re-verifying the token: entries past their TTL are
// ignored, and the persisted token remains the source of truth.
type SessionCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

// NewSessionCache returns a cache with the given entry TTL, defaulting to
// DefaultSessionCacheTTL when ttl <= 0.
func NewSessionCache(ttl time.Duration) *SessionCache {
	if ttl <= 0 {
		ttl = DefaultSessionCacheTTL
	}
	return &SessionCache{ttl: ttl, entries: make(map[string]cacheEntry)}
}

// Get returns the cached user for token, or nil when absent or expired.
func (c *SessionCache) Get(token string, now time.Time) *domain.User {
	c.mu.RLock()
	entry, ok := c.entries[token]
	c.mu.RUnlock()
	if !ok || now.After(entry.expiresAt) {
		return nil
	}
	return entry.user
}

// Put caches the sanitized user under token.
func (c *SessionCache) Put(token string, user *domain.User, now time.Time) {
	c.mu.Lock()
	c.entries[token] = cacheEntry{
		user:      user.Sanitized(),
		userID:    user.ID,
		expiresAt: now.Add(c.ttl),
	}
	c.mu.Unlock()
}

// Evict removes the entry for one token. Evicting an absent token is a
// no-op.
func (c *SessionCache) Evict(token string) {
	c.mu.Lock()
	delete(c.entries, token)
	c.mu.Unlock()
}

// EvictUser removes every cached session belonging to the user. Used when a
// password reset invalidates all of the user's tokens at once.
func (c *SessionCache) EvictUser(userID int64) {
	c.mu.Lock()
	for token, entry := range c.entries {
		if entry.userID == userID {
			delete(c.entries, token)
		}
	}
	c.mu.Unlock()
}
