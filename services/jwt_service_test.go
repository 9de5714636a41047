package services

import (
	"testing"

	"github.com/chinaharsle/stock-machine/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndExtractToken(t *testing.T) {
	svc := NewJWTService(&config.Config{JWTSecretKey: "test-secret"})

	token, err := svc.GenerateToken("user-1", "admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ExtractClaims(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "stock-machine", claims.Issuer)
}

func TestExtractClaimsRejectsBadToken(t *testing.T) {
	svc := NewJWTService(&config.Config{JWTSecretKey: "test-secret"})

	// 垃圾字符串
	_, err := svc.ExtractClaims("not-a-token")
	assert.Error(t, err)

	// 不同密钥签发的令牌
	other := NewJWTService(&config.Config{JWTSecretKey: "other-secret"})
	token, err := other.GenerateToken("user-1", "admin")
	require.NoError(t, err)
	_, err = svc.ExtractClaims(token)
	assert.Error(t, err)
}
