package contracts

import (
	"context"
	"telehealth-service/internal/app/models"
	"time"
)

// TokenStore keeps the upstream access token. Load returns nil when nothing is stored.
type TokenStore interface {
	Load(ctx context.Context) (*models.AccessToken, error)
	Save(ctx context.Context, token *models.AccessToken) error
}

// TokenRevocationList reports from Revoke whether this call was the one that revoked tokenID.
type TokenRevocationList interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) (bool, error)
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
