package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viatero/expense-system/internal/core/domain"
)

func testUser() *domain.User {
	return &domain.User{
		ID:          42,
		Login:       "alice@example.com",
		DisplayName: "Alice",
		Role:        domain.RoleEmployee,
	}
}

func TestTokenCodec_MintParseRoundTrip(t *testing.T) {
	codec := NewTokenCodec("secret", time.Hour)
	now := time.Now().UTC()

	token, minted, err := codec.Mint(testUser(), now)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.NotEmpty(t, minted.ID, "every token needs a jti")

	claims, err := codec.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Login)
	assert.Equal(t, domain.RoleEmployee, claims.Role)
	assert.Equal(t, minted.ID, claims.ID)

	rebuilt := claims.User()
	assert.Equal(t, "Alice", rebuilt.DisplayName)
	assert.Empty(t, rebuilt.PasswordHash)
}

func TestTokenCodec_UniqueJTIPerToken(t *testing.T) {
	codec := NewTokenCodec("secret", time.Hour)
	now := time.Now().UTC()

	_, first, err := codec.Mint(testUser(), now)
	require.NoError(t, err)
	_, second, err := codec.Mint(testUser(), now)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}

func TestTokenCodec_RejectsTamperedToken(t *testing.T) {
	codec := NewTokenCodec("secret", time.Hour)

	token, _, err := codec.Mint(testUser(), time.Now().UTC())
	require.NoError(t, err)

	_, err = codec.Parse(token + "x")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestTokenCodec_RejectsForeignSecret(t *testing.T) {
	minter := NewTokenCodec("secret-a", time.Hour)
	parser := NewTokenCodec("secret-b", time.Hour)

	token, _, err := minter.Mint(testUser(), time.Now().UTC())
	require.NoError(t, err)

	_, err = parser.Parse(token)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestTokenCodec_RejectsExpiredToken(t *testing.T) {
	codec := NewTokenCodec("secret", time.Minute)

	token, _, err := codec.Mint(testUser(), time.Now().UTC().Add(-time.Hour))
	require.NoError(t, err)

	_, err = codec.Parse(token)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestSessionCache_PutGetEvict(t *testing.T) {
	cache := NewSessionCache(time.Minute)
	now := time.Now().UTC()

	assert.Nil(t, cache.Get("tok", now))

	cache.Put("tok", testUser(), now)
	got := cache.Get("tok", now)
	require.NotNil(t, got)
	assert.Equal(t, int64(42), got.ID)

	cache.Evict("tok")
	assert.Nil(t, cache.Get("tok", now))

	// Evicting again is harmless.
	cache.Evict("tok")
}

func TestSessionCache_EntriesExpire(t *testing.T) {
	cache := NewSessionCache(time.Minute)
	now := time.Now().UTC()

	cache.Put("tok", testUser(), now)
	assert.NotNil(t, cache.Get("tok", now.Add(30*time.Second)))
	assert.Nil(t, cache.Get("tok", now.Add(2*time.Minute)))
}

func TestSessionCache_StoresSanitizedCopies(t *testing.T) {
	cache := NewSessionCache(time.Minute)
	now := time.Now().UTC()

	dirty := testUser()
	dirty.PasswordHash = "$2a$10$something"
	cache.Put("tok", dirty, now)

	got := cache.Get("tok", now)
	require.NotNil(t, got)
	assert.Empty(t, got.PasswordHash)
}

func TestSessionCache_EvictUser(t *testing.T) {
	cache := NewSessionCache(time.Minute)
	now := time.Now().UTC()

	other := testUser()
	other.ID = 99

	cache.Put("tok-a", testUser(), now)
	cache.Put("tok-b", testUser(), now)
	cache.Put("tok-c", other, now)

	cache.EvictUser(42)

	assert.Nil(t, cache.Get("tok-a", now))
	assert.Nil(t, cache.Get("tok-b", now))
	assert.NotNil(t, cache.Get("tok-c", now), "other users' sessions must survive")
}
