package tokenstore

import (
	"context"
	"telehealth-service/internal/app/contracts"
	"telehealth-service/internal/app/models"
	"telehealth-service/internal/pkg/exceptions"
	"time"

	"github.com/goccy/go-json"
)

const (
	medplumTokenKey       = "telehealth:medplum:access_token"
	revokedTokenKeyPrefix = "telehealth:auth:revoked:"
)

var (
	_ contracts.TokenStore          = (*RedisTokenStore)(nil)
	_ contracts.TokenRevocationList = (*RedisRevocationList)(nil)
)

// RedisTokenStore shares one upstream token between gateway replicas.
type RedisTokenStore struct {
	repository contracts.RedisRepository
	now        func() time.Time
}

func NewRedisTokenStore(repository contracts.RedisRepository) *RedisTokenStore {
	return &RedisTokenStore{repository: repository, now: time.Now}
}

func (s *RedisTokenStore) Load(ctx context.Context) (*models.AccessToken, error) {
	raw, err := s.repository.Get(ctx, medplumTokenKey)
	if err != nil || raw == "" {
		return nil, err
	}
	var token models.AccessToken
	if err := json.Unmarshal([]byte(raw), &token); err != nil {
		return nil, exceptions.ErrCannotParseJSON(err)
	}
	return &token, nil
}

func (s *RedisTokenStore) Save(ctx context.Context, token *models.AccessToken) error {
	ttl := token.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	return s.repository.Set(ctx, medplumTokenKey, token, ttl)
}

type RedisRevocationList struct {
	repository contracts.RedisRepository
	now        func() time.Time
}

func NewRedisRevocationList(repository contracts.RedisRepository) *RedisRevocationList {
	return &RedisRevocationList{repository: repository, now: time.Now}
}

func (l *RedisRevocationList) Revoke(ctx context.Context, tokenID string, until time.Time) (bool, error) {
	ttl := until.Sub(l.now())
	if ttl <= 0 {
		return false, nil
	}
	return l.repository.SetNX(ctx, revokedTokenKeyPrefix+tokenID, true, ttl)
}

func (l *RedisRevocationList) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	return l.repository.Exists(ctx, revokedTokenKeyPrefix+tokenID)
}
