package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", hash)

	assert.True(t, CheckPassword(hash, "s3cret!"))
	assert.False(t, CheckPassword(hash, "wrong"))
	assert.False(t, CheckPassword("not-a-hash", "s3cret!"))
}

func TestHashPasswordTooShort(t *testing.T) {
	_, err := HashPassword("short")
	assert.ErrorContains(t, err, "at least 6 characters")
}

func TestNewManagerRequiresSecret(t *testing.T) {
	_, err := NewManager("", time.Hour)
	assert.Error(t, err)
}

func TestTokenRoundtrip(t *testing.T) {
	mgr, err := NewManager("test-secret", time.Hour)
	require.NoError(t, err)

	token, err := mgr.IssueToken(42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := mgr.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	issuer, err := NewManager("secret-one", time.Hour)
	require.NoError(t, err)
	verifier, err := NewManager("secret-two", time.Hour)
	require.NoError(t, err)

	token, err := issuer.IssueToken(1)
	require.NoError(t, err)

	_, err = verifier.VerifyToken(token)
	assert.Error(t, err)
}

func TestVerifyTokenExpired(t *testing.T) {
	// NewManager floors non-positive TTLs, so build one with a tiny TTL
	mgr, err := NewManager("test-secret", time.Millisecond)
	require.NoError(t, err)

	token, err := mgr.IssueToken(1)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	_, err = mgr.VerifyToken(token)
	assert.Error(t, err)
}

func TestVerifyTokenGarbage(t *testing.T) {
	mgr, err := NewManager("test-secret", time.Hour)
	require.NoError(t, err)

	_, err = mgr.VerifyToken("not.a.token")
	assert.Error(t, err)

	_, err = mgr.VerifyToken("")
	assert.Error(t, err)
}
