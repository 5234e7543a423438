package contracts

import (
	"context"
	"telehealth-service/internal/app/models"
)

type AuditRepository interface {
	InsertChange(ctx context.Context, change *models.ResourceChange) error
}

type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{}) error
}

type UpstreamStatusReader interface {
	LastStatus() *models.UpstreamStatus
}
