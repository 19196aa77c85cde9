// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/comicvault/internal/platform/sec"
)

/*
TestTokenService_RoundTrip signs a token and verifies it back.
*/
func TestTokenService_RoundTrip(t *testing.T) {
	service, err := sec.NewTokenService("test-secret", "comicvault")
	require.NoError(t, err)

	token, err := service.GenerateToken("ops", sec.RoleAdmin, time.Minute)
	require.NoError(t, err)

	claims, err := service.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Operator)
	assert.Equal(t, string(sec.RoleAdmin), claims.Role)
}

/*
TestTokenService_Rejects covers the token shapes that must fail verification.
*/
func TestTokenService_Rejects(t *testing.T) {
	service, err := sec.NewTokenService("test-secret", "comicvault")
	require.NoError(t, err)

	other, err := sec.NewTokenService("other-secret", "comicvault")
	require.NoError(t, err)

	foreignIssuer, err := sec.NewTokenService("test-secret", "someone-else")
	require.NoError(t, err)

	expired, err := service.GenerateToken("ops", sec.RoleAdmin, -time.Minute)
	require.NoError(t, err)
	wrongKey, err := other.GenerateToken("ops", sec.RoleAdmin, time.Minute)
	require.NoError(t, err)
	wrongIssuer, err := foreignIssuer.GenerateToken("ops", sec.RoleAdmin, time.Minute)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"expired", expired},
		{"wrong_key", wrongKey},
		{"wrong_issuer", wrongIssuer},
		{"garbage", "not.a.token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.VerifyToken(tt.token)
			assert.Error(t, err)
		})
	}
}

/*
TestNewTokenService_EmptySecret refuses to build an unsigned service.
*/
func TestNewTokenService_EmptySecret(t *testing.T) {
	_, err := sec.NewTokenService("", "comicvault")
	assert.ErrorIs(t, err, sec.ErrEmptySecret)
}

/*
TestUserRole_AtLeast checks the role hierarchy.
*/
func TestUserRole_AtLeast(t *testing.T) {
	assert.True(t, sec.RoleAdmin.AtLeast(sec.RoleViewer))
	assert.True(t, sec.RoleAdmin.AtLeast(sec.RoleAdmin))
	assert.False(t, sec.RoleViewer.AtLeast(sec.RoleAdmin))
	assert.False(t, sec.UserRole("root").Valid())
}
