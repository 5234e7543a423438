package jwtmanager

import (
	"context"
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"
	"telehealth-service/internal/app/config"
	"telehealth-service/internal/app/models"
	"telehealth-service/internal/pkg/constvars"
	"telehealth-service/internal/pkg/utils"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrTokenExpiryMissing = errors.New("token has no expiry")
	ErrWrongTokenType     = errors.New("unexpected token type")
)

// Claims carried by access and refresh tokens.
type Claims struct {
	Email      string `json:"email,omitempty"`
	Name       string `json:"name,omitempty"`
	Role       string `json:"role"`
	ResourceID string `json:"resource_id,omitempty"`
	TokenType  string `json:"token_type,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) User() *models.UserContext {
	user := &models.UserContext{
		ID:         c.Subject,
		Email:      c.Email,
		Name:       c.Name,
		Role:       c.Role,
		ResourceID: c.ResourceID,
		TokenID:    c.ID,
	}
	if c.ExpiresAt != nil {
		user.ExpiresAt = c.ExpiresAt.Time
	}
	return user
}

type IssuedToken struct {
	Token     string
	ID        string
	ExpiresAt time.Time
}

// JWTManager signs session tokens with the shared secrets and verifies
// access tokens signed either by those secrets or by the identity
// provider's public key.
type JWTManager struct {
	log           *zap.Logger
	secret        []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
	audience      string
	rsaPub        *rsa.PublicKey
	ecPub         *ecdsa.PublicKey
	now           func() time.Time
}

func NewJWTManager(cfg *config.InternalConfig, log *zap.Logger) (*JWTManager, error) {
	jm := &JWTManager{
		log:           log,
		secret:        []byte(cfg.JWT.Secret),
		refreshSecret: []byte(cfg.JWT.RefreshSecret),
		accessTTL:     cfg.JWT.AccessTokenTTL,
		refreshTTL:    cfg.JWT.RefreshTokenTTL,
		issuer:        cfg.Auth.Issuer,
		audience:      cfg.Auth.Audience,
		now:           time.Now,
	}

	pemKey := strings.TrimSpace(strings.ReplaceAll(cfg.Auth.PublicKey, `\n`, "\n"))
	if pemKey == "" {
		return jm, nil
	}
	block, _ := pem.Decode([]byte(pemKey))
	if block == nil {
		return nil, fmt.Errorf("failed to decode PEM for AUTH_JWT_PUBLIC_KEY")
	}
	publicKey, err := parsePublicKey(block)
	if err != nil {
		return nil, err
	}
	switch key := publicKey.(type) {
	case *rsa.PublicKey:
		jm.rsaPub = key
	case *ecdsa.PublicKey:
		jm.ecPub = key
	default:
		return nil, fmt.Errorf("unsupported public key type %T", publicKey)
	}
	return jm, nil
}

func (j *JWTManager) IssueAccessToken(ctx context.Context, user *models.UserContext) (*IssuedToken, error) {
	return j.issue(ctx, user, constvars.TokenTypeAccess, j.secret, j.accessTTL)
}

func (j *JWTManager) IssueRefreshToken(ctx context.Context, user *models.UserContext) (*IssuedToken, error) {
	return j.issue(ctx, user, constvars.TokenTypeRefresh, j.refreshSecret, j.refreshTTL)
}

func (j *JWTManager) issue(ctx context.Context, user *models.UserContext, tokenType string, secret []byte, ttl time.Duration) (*IssuedToken, error) {
	j.log.Info("JWTManager.issue called",
		zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
		zap.String(constvars.LoggingUserIDKey, user.ID),
		zap.String("token_type", tokenType),
	)
	if strings.TrimSpace(user.ID) == "" {
		return nil, fmt.Errorf("subject is required")
	}

	now := j.now().UTC()
	expiresAt := now.Add(ttl)
	claims := &Claims{
		Email:      user.Email,
		Name:       user.Name,
		Role:       user.Role,
		ResourceID: user.ResourceID,
		TokenType:  tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	if j.audience != "" {
		claims.Audience = jwt.ClaimStrings{j.audience}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return nil, err
	}
	return &IssuedToken{Token: signed, ID: claims.ID, ExpiresAt: expiresAt}, nil
}

// VerifyAccessToken checks signature, expiry, audience and issuer.
func (j *JWTManager) VerifyAccessToken(ctx context.Context, rawToken string) (*Claims, error) {
	claims, err := j.verify(rawToken, j.accessKeyFunc)
	if err != nil {
		j.log.Warn("JWTManager.VerifyAccessToken rejected token",
			zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
			zap.Error(err),
		)
		return nil, err
	}
	if claims.TokenType == constvars.TokenTypeRefresh {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

func (j *JWTManager) VerifyRefreshToken(ctx context.Context, rawToken string) (*Claims, error) {
	claims, err := j.verify(rawToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return j.refreshSecret, nil
	})
	if err != nil {
		j.log.Warn("JWTManager.VerifyRefreshToken rejected token",
			zap.String(constvars.LoggingRequestIDKey, utils.GetRequestID(ctx)),
			zap.Error(err),
		)
		return nil, err
	}
	if claims.TokenType != constvars.TokenTypeRefresh {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

func (j *JWTManager) verify(rawToken string, keyFunc jwt.Keyfunc) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256", "RS256", "ES256"}))
	if _, err := parser.ParseWithClaims(rawToken, claims, keyFunc); err != nil {
		return nil, err
	}
	if claims.ExpiresAt == nil {
		return nil, ErrTokenExpiryMissing
	}
	if j.audience != "" && !claims.VerifyAudience(j.audience, true) {
		return nil, fmt.Errorf("token audience does not include %s", j.audience)
	}
	if j.issuer != "" && !claims.VerifyIssuer(j.issuer, true) {
		return nil, fmt.Errorf("token issuer is not %s", j.issuer)
	}
	return claims, nil
}

func (j *JWTManager) accessKeyFunc(t *jwt.Token) (interface{}, error) {
	switch t.Method.(type) {
	case *jwt.SigningMethodHMAC:
		return j.secret, nil
	case *jwt.SigningMethodRSA:
		if j.rsaPub != nil {
			return j.rsaPub, nil
		}
	case *jwt.SigningMethodECDSA:
		if j.ecPub != nil {
			return j.ecPub, nil
		}
	}
	return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
}

func parsePublicKey(block *pem.Block) (interface{}, error) {
	switch block.Type {
	case "PUBLIC KEY":
		key, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("parse PKIX public key: %w", err)
		}
		return key, nil
	case "RSA PUBLIC KEY":
		key, err := x509.ParsePKCS1PublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("parse PKCS1 public key: %w", err)
		}
		return key, nil
	case "CERTIFICATE":
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("parse certificate: %w", err)
		}
		return cert.PublicKey, nil
	default:
		return nil, fmt.Errorf("unsupported public key PEM type: %s", block.Type)
	}
}
