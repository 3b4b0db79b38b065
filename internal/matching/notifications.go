package matching

import (
	"context"

	"github.com/HuNTer8272/surplus2share-project/internal/models"
)

// Notifications lists what was recorded for the caller, newest first.
func (e *Engine) Notifications(ctx context.Context, caller models.Caller) ([]models.Notification, error) {
	if err := caller.Authenticated(); err != nil {
		return nil, err
	}
	return e.repo.Notifications().ListForUser(ctx, caller.UserID)
}
