package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventdeck/eventdeck-client/internal/domain"
	domainerrors "github.com/eventdeck/eventdeck-client/internal/errors"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("alice-pass", FastParams)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=8192,t=1,p=1$"))

	assert.True(t, VerifyPassword(hash, "alice-pass"))
	assert.False(t, VerifyPassword(hash, "alice-pass "))
	assert.False(t, VerifyPassword("not-a-hash", "alice-pass"))

	other, err := HashPassword("alice-pass", FastParams)
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "salted")
}

func TestHashPassword_Rejects(t *testing.T) {
	_, err := HashPassword("", FastParams)
	assert.Error(t, err)

	_, err = HashPassword(strings.Repeat("x", maxPasswordLength+1), FastParams)
	assert.Error(t, err)
}

func TestTokenService_RoundTrip(t *testing.T) {
	svc, err := NewTokenService("s3cret", time.Hour)
	require.NoError(t, err)

	token, err := svc.Issue(domain.UserDetail{ID: "1", Username: "alice", Authorities: []string{domain.AuthorityAdmin}})
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "1", claims.Subject)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, []string{domain.AuthorityAdmin}, claims.Authorities)
	assert.NotEmpty(t, claims.ID)
}

func TestTokenService_Verify(t *testing.T) {
	issued := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	svc, err := NewTokenService("s3cret", time.Hour)
	require.NoError(t, err)
	svc.now = func() time.Time { return issued }
	token, err := svc.Issue(domain.UserDetail{ID: "2", Username: "bob"})
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		svc.now = func() time.Time { return issued.Add(2 * time.Hour) }
		t.Cleanup(func() { svc.now = func() time.Time { return issued } })

		_, err := svc.Verify(token)
		assert.ErrorIs(t, err, domainerrors.ErrTokenExpired)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewTokenService("different", time.Hour)
		require.NoError(t, err)
		other.now = svc.now

		_, err = other.Verify(token)
		assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.Verify("abc.def.ghi")
		assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
	})
}

func TestNewTokenService(t *testing.T) {
	svc, err := NewTokenService("", time.Minute)
	require.NoError(t, err)
	assert.Len(t, svc.secret, secretBytes)
	assert.Equal(t, time.Minute, svc.TTL())

	_, err = NewTokenService("x", 0)
	assert.Error(t, err)
}
