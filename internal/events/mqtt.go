package events

import (
	"context"
	"encoding/json"
	"time"

	"portfolio-cms/internal/logger"

	"go.uber.org/zap"
)

// Publisher delivers a payload to a broker topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

// MQTTRecorder publishes events as JSON to a broker topic.
type MQTTRecorder struct {
	publisher Publisher
	topic     string
	timeout   time.Duration
}

func NewMQTTRecorder(publisher Publisher, topic string, timeout time.Duration) *MQTTRecorder {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &MQTTRecorder{publisher: publisher, topic: topic, timeout: timeout}
}

func (r *MQTTRecorder) Record(ctx context.Context, event AuthEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to encode auth event", zap.Error(err), zap.String("event", "auth_event_encode_failed"))
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	if err := r.publisher.Publish(ctx, r.topic, payload); err != nil {
		logger.Warn("Failed to publish auth event",
			zap.String("event_id", event.ID.String()),
			zap.String("type", string(event.Type)),
			zap.String("topic", r.topic),
			zap.Error(err),
			zap.String("event", "auth_event_publish_failed"),
		)
	}
}
