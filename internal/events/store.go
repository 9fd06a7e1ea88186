package events

import (
	"context"

	"portfolio-cms/internal/logger"

	"go.uber.org/zap"
)

// Store persists auth events.
type Store interface {
	Append(ctx context.Context, event *AuthEvent) error
}

// StoreRecorder writes events to a Store.
type StoreRecorder struct {
	store Store
}

func NewStoreRecorder(store Store) *StoreRecorder {
	return &StoreRecorder{store: store}
}

func (r *StoreRecorder) Record(ctx context.Context, event AuthEvent) {
	if err := r.store.Append(context.WithoutCancel(ctx), &event); err != nil {
		logger.Error("Failed to store auth event",
			zap.String("event_id", event.ID.String()),
			zap.String("type", string(event.Type)),
			zap.Error(err),
			zap.String("event", "auth_event_store_failed"),
		)
	}
}
