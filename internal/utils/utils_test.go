package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

func TestTokenRoundTrip(t *testing.T) {
	userID := uuid.New()
	pair, err := IssuePair(testSecret, userID, time.Hour, 30*24*time.Hour)
	require.NoError(t, err)

	got, err := ParseToken(testSecret, pair.AccessToken, AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	got, err = ParseToken(testSecret, pair.RefreshToken, RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestParseTokenRejectsWrongType(t *testing.T) {
	token, err := GenerateToken(testSecret, uuid.New(), AccessToken, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(testSecret, token, RefreshToken)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestParseTokenRejectsExpiredAndForeign(t *testing.T) {
	expired, err := GenerateToken(testSecret, uuid.New(), AccessToken, -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(testSecret, expired, AccessToken)
	assert.Error(t, err)

	foreign, err := GenerateToken("other-secret", uuid.New(), AccessToken, time.Hour)
	require.NoError(t, err)
	_, err = ParseToken(testSecret, foreign, AccessToken)
	assert.Error(t, err)

	_, err = ParseToken(testSecret, "not-a-token", AccessToken)
	assert.Error(t, err)
}

func TestGenerateOTP(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := GenerateOTP()
		require.NoError(t, err)
		assert.Len(t, code, OTPLength)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9')
		}
	}
}

func TestHashSecret(t *testing.T) {
	hashed, err := HashSecret("123456", bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, CheckSecret(hashed, "123456"))
	assert.False(t, CheckSecret(hashed, "654321"))
	assert.False(t, CheckSecret("", "123456"))
}

func TestNewPagination(t *testing.T) {
	assert.Equal(t, Pagination{Skip: 0, Limit: DefaultLimit}, NewPagination("", "", false))
	assert.Equal(t, Pagination{Skip: 20, Limit: 5}, NewPagination("20", "5", false))
	assert.Equal(t, Pagination{Skip: 0, Limit: DefaultLimit}, NewPagination("-4", "abc", false))
	assert.Equal(t, Pagination{Skip: 0, Limit: DefaultLimit}, NewPagination("", Unlimited, false))

	p := NewPagination("3", Unlimited, true)
	assert.True(t, p.IsUnlimited())
	assert.Equal(t, Unlimited, p.LimitValue())
	assert.Equal(t, 3, p.Skip)
}
