package gateway

import (
	"context"
	"errors"
	"telehealth-service/internal/app/contracts"
	"telehealth-service/internal/app/models"
)

type changeNotifiers []contracts.ResourceChangeNotifier

// NewChangeNotifiers fans a change out to every non-nil notifier.
func NewChangeNotifiers(notifiers ...contracts.ResourceChangeNotifier) contracts.ResourceChangeNotifier {
	fanout := make(changeNotifiers, 0, len(notifiers))
	for _, notifier := range notifiers {
		if notifier != nil {
			fanout = append(fanout, notifier)
		}
	}
	return fanout
}

func (n changeNotifiers) ResourceChanged(ctx context.Context, change *models.ResourceChange) error {
	var errs []error
	for _, notifier := range n {
		if err := notifier.ResourceChanged(ctx, change); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
