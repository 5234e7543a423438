package auth

import (
	"context"
	"errors"
	"telehealth-service/internal/app/config"
	"telehealth-service/internal/app/models"
	"telehealth-service/internal/app/services/shared/jwtmanager"
	"telehealth-service/internal/app/services/shared/tokenstore"
	"telehealth-service/internal/pkg/constvars"
	"telehealth-service/internal/pkg/dto/requests"
	"telehealth-service/internal/pkg/exceptions"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type failingRevocationList struct{}

func (failingRevocationList) Revoke(ctx context.Context, tokenID string, until time.Time) (bool, error) {
	return false, errors.New("redis down")
}

func (failingRevocationList) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	return false, nil
}

func newTestJWTManager(t *testing.T) *jwtmanager.JWTManager {
	cfg := &config.InternalConfig{}
	cfg.JWT.Secret = "access-secret"
	cfg.JWT.RefreshSecret = "refresh-secret"
	cfg.JWT.AccessTokenTTL = 15 * time.Minute
	cfg.JWT.RefreshTokenTTL = time.Hour
	jm, err := jwtmanager.NewJWTManager(cfg, zap.NewNop())
	require.NoError(t, err)
	return jm
}

func provider() *models.UserContext {
	return &models.UserContext{ID: "user-7", Role: constvars.RoleProvider, ResourceID: "mock-practitioner-1"}
}

func assertStatus(t *testing.T, err error, status int) {
	t.Helper()
	customErr, ok := exceptions.AsCustomError(err)
	require.True(t, ok, "expected CustomError, got %v", err)
	assert.Equal(t, status, customErr.StatusCode)
}

func TestAuthenticate(t *testing.T) {
	jm := newTestJWTManager(t)
	uc := NewAuthUsecase(jm, tokenstore.NewMemoryRevocationList(), zap.NewNop())

	access, err := jm.IssueAccessToken(context.Background(), provider())
	require.NoError(t, err)

	user, err := uc.Authenticate(context.Background(), access.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-7", user.ID)
	assert.Equal(t, constvars.RoleProvider, user.Role)
	assert.Equal(t, access.ID, user.TokenID)

	_, err = uc.Authenticate(context.Background(), "")
	assertStatus(t, err, constvars.StatusUnauthorized)

	_, err = uc.Authenticate(context.Background(), "not.a.token")
	assertStatus(t, err, constvars.StatusUnauthorized)
}

func TestAuthenticateRejectsRevokedToken(t *testing.T) {
	jm := newTestJWTManager(t)
	revocations := tokenstore.NewMemoryRevocationList()
	uc := NewAuthUsecase(jm, revocations, zap.NewNop())

	access, err := jm.IssueAccessToken(context.Background(), provider())
	require.NoError(t, err)

	user, err := uc.Authenticate(context.Background(), access.Token)
	require.NoError(t, err)
	require.NoError(t, uc.Logout(context.Background(), user))

	_, err = uc.Authenticate(context.Background(), access.Token)
	assertStatus(t, err, constvars.StatusUnauthorized)
	customErr, _ := exceptions.AsCustomError(err)
	assert.Equal(t, constvars.ErrDevAuthTokenRevoked, customErr.DevMessage)
}

func TestRefreshTokenRotatesPair(t *testing.T) {
	jm := newTestJWTManager(t)
	uc := NewAuthUsecase(jm, tokenstore.NewMemoryRevocationList(), zap.NewNop())

	refresh, err := jm.IssueRefreshToken(context.Background(), provider())
	require.NoError(t, err)

	pair, err := uc.RefreshToken(context.Background(), &requests.RefreshToken{RefreshToken: refresh.Token})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEqual(t, refresh.Token, pair.RefreshToken)
	assert.InDelta(t, (15 * time.Minute).Seconds(), float64(pair.ExpiresIn), 5)

	user, err := uc.Authenticate(context.Background(), pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "mock-practitioner-1", user.ResourceID)

	// the consumed refresh token cannot be replayed
	_, err = uc.RefreshToken(context.Background(), &requests.RefreshToken{RefreshToken: refresh.Token})
	assertStatus(t, err, constvars.StatusUnauthorized)
}

func TestRefreshTokenConcurrentReplay(t *testing.T) {
	jm := newTestJWTManager(t)
	uc := NewAuthUsecase(jm, tokenstore.NewMemoryRevocationList(), zap.NewNop())

	refresh, err := jm.IssueRefreshToken(context.Background(), provider())
	require.NoError(t, err)

	var wg sync.WaitGroup
	var succeeded, rejected int32
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.RefreshToken(context.Background(), &requests.RefreshToken{RefreshToken: refresh.Token})
			if err == nil {
				atomic.AddInt32(&succeeded, 1)
				return
			}
			if customErr, ok := exceptions.AsCustomError(err); ok && customErr.StatusCode == constvars.StatusUnauthorized {
				atomic.AddInt32(&rejected, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), succeeded, "a refresh token yields exactly one new pair")
	assert.Equal(t, int32(15), rejected)
}

func TestRefreshTokenRejectsAccessToken(t *testing.T) {
	jm := newTestJWTManager(t)
	uc := NewAuthUsecase(jm, tokenstore.NewMemoryRevocationList(), zap.NewNop())

	access, err := jm.IssueAccessToken(context.Background(), provider())
	require.NoError(t, err)

	_, err = uc.RefreshToken(context.Background(), &requests.RefreshToken{RefreshToken: access.Token})
	assertStatus(t, err, constvars.StatusUnauthorized)
}

func TestLogout(t *testing.T) {
	jm := newTestJWTManager(t)

	uc := NewAuthUsecase(jm, failingRevocationList{}, zap.NewNop())
	err := uc.Logout(context.Background(), &models.UserContext{ID: "u", TokenID: "jti", ExpiresAt: time.Now().Add(time.Minute)})
	assert.EqualError(t, err, "redis down")

	// tokens without a jti have nothing to revoke
	assert.NoError(t, uc.Logout(context.Background(), &models.UserContext{ID: "u"}))
}
