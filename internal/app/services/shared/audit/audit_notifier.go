package audit

import (
	"context"
	"telehealth-service/internal/app/contracts"
	"telehealth-service/internal/app/models"
	"telehealth-service/internal/pkg/constvars"

	"go.uber.org/zap"
)

// Notifier records every FHIR write in the audit collection.
type Notifier struct {
	Repository contracts.AuditRepository
	Log        *zap.Logger
}

func NewNotifier(repository contracts.AuditRepository, logger *zap.Logger) *Notifier {
	return &Notifier{Repository: repository, Log: logger}
}

func (n *Notifier) ResourceChanged(ctx context.Context, change *models.ResourceChange) error {
	if err := n.Repository.InsertChange(ctx, change); err != nil {
		return err
	}
	n.Log.Debug("audit.Notifier.ResourceChanged recorded",
		zap.String(constvars.LoggingRequestIDKey, change.RequestID),
		zap.String(constvars.LoggingResourceTypeKey, change.ResourceType),
		zap.String(constvars.LoggingResourceIDKey, change.ResourceID),
		zap.String("action", change.Action),
	)
	return nil
}
