package jwtmanager

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"strings"
	"telehealth-service/internal/app/config"
	"telehealth-service/internal/app/models"
	"telehealth-service/internal/pkg/constvars"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() *config.InternalConfig {
	cfg := &config.InternalConfig{}
	cfg.JWT.Secret = "access-secret"
	cfg.JWT.RefreshSecret = "refresh-secret"
	cfg.JWT.AccessTokenTTL = 15 * time.Minute
	cfg.JWT.RefreshTokenTTL = time.Hour
	return cfg
}

func testUser() *models.UserContext {
	return &models.UserContext{
		ID:         "user-1",
		Email:      "jane@example.com",
		Name:       "Jane Doe",
		Role:       constvars.RolePatient,
		ResourceID: "patient-1",
	}
}

func publicKeyPEM(t *testing.T, key interface{}) string {
	der, err := x509.MarshalPKIXPublicKey(key)
	require.NoError(t, err)
	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
}

func TestIssueAndVerifyAccessToken(t *testing.T) {
	jm, err := NewJWTManager(testConfig(), zap.NewNop())
	require.NoError(t, err)

	issued, err := jm.IssueAccessToken(context.Background(), testUser())
	require.NoError(t, err)
	assert.NotEmpty(t, issued.ID)

	claims, err := jm.VerifyAccessToken(context.Background(), issued.Token)
	require.NoError(t, err)

	user := claims.User()
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, constvars.RolePatient, user.Role)
	assert.Equal(t, "patient-1", user.ResourceID)
	assert.Equal(t, issued.ID, user.TokenID)
	assert.WithinDuration(t, issued.ExpiresAt, user.ExpiresAt, time.Second)
}

func TestRefreshTokenIsNotAnAccessToken(t *testing.T) {
	cfg := testConfig()
	cfg.JWT.RefreshSecret = cfg.JWT.Secret
	jm, err := NewJWTManager(cfg, zap.NewNop())
	require.NoError(t, err)

	refresh, err := jm.IssueRefreshToken(context.Background(), testUser())
	require.NoError(t, err)

	_, err = jm.VerifyAccessToken(context.Background(), refresh.Token)
	assert.ErrorIs(t, err, ErrWrongTokenType)

	claims, err := jm.VerifyRefreshToken(context.Background(), refresh.Token)
	require.NoError(t, err)
	assert.Equal(t, constvars.TokenTypeRefresh, claims.TokenType)
}

func TestVerifyRefreshTokenRejectsAccessSecret(t *testing.T) {
	jm, err := NewJWTManager(testConfig(), zap.NewNop())
	require.NoError(t, err)

	access, err := jm.IssueAccessToken(context.Background(), testUser())
	require.NoError(t, err)

	_, err = jm.VerifyRefreshToken(context.Background(), access.Token)
	assert.Error(t, err)
}

func TestVerifyRejectsTokenWithoutExpiry(t *testing.T) {
	jm, err := NewJWTManager(testConfig(), zap.NewNop())
	require.NoError(t, err)

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Role:             constvars.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "admin-1"},
	}).SignedString([]byte("access-secret"))
	require.NoError(t, err)

	_, err = jm.VerifyAccessToken(context.Background(), raw)
	assert.ErrorIs(t, err, ErrTokenExpiryMissing)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	jm, err := NewJWTManager(testConfig(), zap.NewNop())
	require.NoError(t, err)
	jm.now = func() time.Time { return time.Now().Add(-time.Hour) }

	issued, err := jm.IssueAccessToken(context.Background(), testUser())
	require.NoError(t, err)

	_, err = jm.VerifyAccessToken(context.Background(), issued.Token)
	assert.Error(t, err)
}

func TestVerifyChecksAudienceAndIssuer(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.Audience = "telehealth-api"
	cfg.Auth.Issuer = "https://auth.example.com"
	jm, err := NewJWTManager(cfg, zap.NewNop())
	require.NoError(t, err)

	issued, err := jm.IssueAccessToken(context.Background(), testUser())
	require.NoError(t, err)
	_, err = jm.VerifyAccessToken(context.Background(), issued.Token)
	require.NoError(t, err)

	sign := func(aud, iss string) string {
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
			Role: constvars.RoleAdmin,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "admin-1",
				Audience:  jwt.ClaimStrings{aud},
				Issuer:    iss,
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
			},
		}).SignedString([]byte("access-secret"))
		require.NoError(t, err)
		return raw
	}

	_, err = jm.VerifyAccessToken(context.Background(), sign("another-api", "https://auth.example.com"))
	assert.ErrorContains(t, err, "audience")

	_, err = jm.VerifyAccessToken(context.Background(), sign("telehealth-api", "https://evil.example.com"))
	assert.ErrorContains(t, err, "issuer")
}

func TestVerifyRS256WithPublicKey(t *testing.T) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	cfg := testConfig()
	// Keys read from a single-line env var keep literal \n sequences.
	cfg.Auth.PublicKey = strings.ReplaceAll(publicKeyPEM(t, &privateKey.PublicKey), "\n", `\n`)
	jm, err := NewJWTManager(cfg, zap.NewNop())
	require.NoError(t, err)

	raw, err := jwt.NewWithClaims(jwt.SigningMethodRS256, &Claims{
		Role: constvars.RoleProvider,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti-1",
			Subject:   "practitioner-user",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}).SignedString(privateKey)
	require.NoError(t, err)

	claims, err := jm.VerifyAccessToken(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, constvars.RoleProvider, claims.Role)
	assert.Equal(t, "jti-1", claims.ID)
}

func TestVerifyES256WithPublicKey(t *testing.T) {
	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	cfg := testConfig()
	cfg.Auth.PublicKey = publicKeyPEM(t, &privateKey.PublicKey)
	jm, err := NewJWTManager(cfg, zap.NewNop())
	require.NoError(t, err)

	raw, err := jwt.NewWithClaims(jwt.SigningMethodES256, &Claims{
		Role: constvars.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "admin-user",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}).SignedString(privateKey)
	require.NoError(t, err)

	claims, err := jm.VerifyAccessToken(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "admin-user", claims.Subject)
}

func TestRS256RejectedWithoutPublicKey(t *testing.T) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	jm, err := NewJWTManager(testConfig(), zap.NewNop())
	require.NoError(t, err)

	raw, err := jwt.NewWithClaims(jwt.SigningMethodRS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "someone",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}).SignedString(privateKey)
	require.NoError(t, err)

	_, err = jm.VerifyAccessToken(context.Background(), raw)
	assert.Error(t, err)
}

func TestNewJWTManagerRejectsGarbagePEM(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.PublicKey = "not a pem"
	_, err := NewJWTManager(cfg, zap.NewNop())
	assert.Error(t, err)
}
