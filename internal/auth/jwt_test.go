package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_IssueDecodeRoundTrip(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	for _, id := range []int64{1, 2, 42, 1 << 40} {
		token, err := m.Issue(id)
		require.NoError(t, err)

		assert.True(t, m.Verify(token))

		got, err := m.Decode(token)
		require.NoError(t, err)
		assert.Equal(t, id, got)
	}
}

func TestManager_IssueSetsClaims(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	token, err := m.Issue(7)
	require.NoError(t, err)

	claims, err := m.DecodeClaims(token)
	require.NoError(t, err)

	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "7", claims.Subject)
	assert.NotEmpty(t, claims.ID)
	require.NotNil(t, claims.IssuedAt)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, claims.IssuedAt.Add(time.Hour), claims.ExpiresAt.Time, time.Second)
}

func TestManager_ZeroTTLHasNoExpiry(t *testing.T) {
	m := NewManager("test-secret", 0)

	token, err := m.Issue(3)
	require.NoError(t, err)

	claims, err := m.DecodeClaims(token)
	require.NoError(t, err)
	assert.Nil(t, claims.ExpiresAt)
	assert.True(t, m.Verify(token))
}

func TestManager_VerifyRejects(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	good, err := m.Issue(1)
	require.NoError(t, err)

	otherSecret, err := NewManager("other-secret", time.Hour).Issue(1)
	require.NoError(t, err)

	parts := strings.Split(good, ".")
	require.Len(t, parts, 3)
	tamperedSig := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	forgedClaims, err := NewManager("test-secret", time.Hour).Issue(2)
	require.NoError(t, err)
	swappedPayload := parts[0] + "." + strings.Split(forgedClaims, ".")[1] + "." + parts[2]

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 1}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"empty":           "",
		"garbage":         "not-a-token",
		"other secret":    otherSecret,
		"tampered sig":    tamperedSig,
		"swapped payload": swappedPayload,
		"alg none":        noneAlg,
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			assert.False(t, m.Verify(token))
		})
	}
}

func TestManager_VerifyRejectsExpired(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := m.Issue(1)
	require.NoError(t, err)

	m.now = time.Now
	assert.False(t, m.Verify(token))

	// decode still works: it never looks at validity
	id, err := m.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
}

func TestManager_DecodeMalformed(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	_, err := m.Decode("definitely.not.jwt")
	assert.ErrorIs(t, err, ErrMalformedToken)

	_, err = m.Decode("")
	assert.ErrorIs(t, err, ErrMalformedToken)

	noID, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "x"}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = m.Decode(noID)
	assert.ErrorIs(t, err, ErrMalformedToken)
}
