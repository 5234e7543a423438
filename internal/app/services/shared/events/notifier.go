package events

import (
	"context"
	"fmt"
	"strings"
	"telehealth-service/internal/app/contracts"
	"telehealth-service/internal/app/models"
	"telehealth-service/internal/pkg/constvars"
	"time"

	"go.uber.org/zap"
)

type ResourceChangedEvent struct {
	ResourceType string    `json:"resourceType"`
	ResourceID   string    `json:"resourceId"`
	Action       string    `json:"action"`
	OccurredAt   time.Time `json:"occurredAt"`
}

// RoutingKey is fhir.<type>.<action>, with the type lower-cased.
func RoutingKey(resourceType, action string) string {
	return fmt.Sprintf("fhir.%s.%s", strings.ToLower(resourceType), action)
}

type Notifier struct {
	Publisher contracts.EventPublisher
	Log       *zap.Logger
}

func NewNotifier(publisher contracts.EventPublisher, logger *zap.Logger) *Notifier {
	return &Notifier{Publisher: publisher, Log: logger}
}

func (n *Notifier) ResourceChanged(ctx context.Context, change *models.ResourceChange) error {
	routingKey := RoutingKey(change.ResourceType, change.Action)
	event := ResourceChangedEvent{
		ResourceType: change.ResourceType,
		ResourceID:   change.ResourceID,
		Action:       change.Action,
		OccurredAt:   change.OccurredAt,
	}
	if err := n.Publisher.Publish(ctx, routingKey, event); err != nil {
		return err
	}
	n.Log.Debug("events.Notifier.ResourceChanged published",
		zap.String(constvars.LoggingRequestIDKey, change.RequestID),
		zap.String("routing_key", routingKey),
	)
	return nil
}
