package tokenstore

import (
	"context"
	"sync"
	"telehealth-service/internal/app/contracts"
	"telehealth-service/internal/app/models"
	"time"
)

var (
	_ contracts.TokenStore          = (*MemoryTokenStore)(nil)
	_ contracts.TokenRevocationList = (*MemoryRevocationList)(nil)
)

type MemoryTokenStore struct {
	mu    sync.RWMutex
	token *models.AccessToken
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (s *MemoryTokenStore) Load(ctx context.Context) (*models.AccessToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == nil {
		return nil, nil
	}
	token := *s.token
	return &token, nil
}

func (s *MemoryTokenStore) Save(ctx context.Context, token *models.AccessToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *token
	s.token = &copied
	return nil
}

// MemoryRevocationList forgets entries once their token would have expired anyway.
type MemoryRevocationList struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewMemoryRevocationList() *MemoryRevocationList {
	return &MemoryRevocationList{revoked: make(map[string]time.Time), now: time.Now}
}

func (l *MemoryRevocationList) Revoke(ctx context.Context, tokenID string, until time.Time) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.purge(now)
	if !until.After(now) {
		return false, nil
	}
	if _, ok := l.revoked[tokenID]; ok {
		return false, nil
	}
	l.revoked[tokenID] = until
	return true, nil
}

func (l *MemoryRevocationList) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.purge(l.now())
	_, ok := l.revoked[tokenID]
	return ok, nil
}

func (l *MemoryRevocationList) purge(now time.Time) {
	for id, until := range l.revoked {
		if !until.After(now) {
			delete(l.revoked, id)
		}
	}
}
