package auth

import (
	"testing"
	"time"

	"tasktracker/internal/domain/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "shouldbeinVaultsecret"

func TestTokenManagerIssueAndVerify(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := issuedAt
	manager := NewTokenManager(testSecret, 0).WithClock(func() time.Time { return clock })

	token, expiresAt, err := manager.Issue("user123")
	require.NoError(t, err)
	assert.Equal(t, issuedAt.Add(DefaultTokenTTL), expiresAt)

	tests := []struct {
		name string
		now  time.Time
		want struct {
			userID string
			err    error
		}
	}{
		{
			name: "fresh token",
			now:  issuedAt.Add(time.Minute),
			want: struct {
				userID string
				err    error
			}{userID: "user123"},
		},
		{
			name: "just before expiry",
			now:  issuedAt.Add(DefaultTokenTTL - time.Minute),
			want: struct {
				userID string
				err    error
			}{userID: "user123"},
		},
		{
			name: "after expiry",
			now:  issuedAt.Add(DefaultTokenTTL + time.Minute),
			want: struct {
				userID string
				err    error
			}{err: errors.ErrTokenExpired},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock = tt.now
			userID, err := manager.Verify(token)
			if tt.want.err != nil {
				assert.ErrorIs(t, err, tt.want.err)
				assert.Empty(t, userID)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want.userID, userID)
		})
	}
}

func TestTokenManagerRejectsForeignTokens(t *testing.T) {
	manager := NewTokenManager(testSecret, time.Hour)
	other := NewTokenManager("another-secret", time.Hour)

	foreign, _, err := other.Issue("user123")
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "user123",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user123",
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "signed with another secret", token: foreign},
		{name: "unsigned token", token: noneToken},
		{name: "token without expiry", token: noExpiry},
		{name: "token without subject", token: noSubject},
		{name: "garbage", token: "not-a-token"},
		{name: "empty", token: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userID, err := manager.Verify(tt.token)
			assert.ErrorIs(t, err, errors.ErrInvalidToken)
			assert.Empty(t, userID)
		})
	}
}

func TestTokenManagerAcceptsLegacyIDClaim(t *testing.T) {
	manager := NewTokenManager(testSecret, time.Hour)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  "user123",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	userID, err := manager.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user123", userID)
}
