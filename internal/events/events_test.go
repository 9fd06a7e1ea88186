package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"portfolio-cms/internal/events"
	"portfolio-cms/internal/events/mocks"
	"portfolio-cms/internal/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type memoryStore struct {
	events []*events.AuthEvent
	err    error
}

func (s *memoryStore) Append(_ context.Context, event *events.AuthEvent) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

type capturePublisher struct {
	topic   string
	payload []byte
	err     error
}

func (p *capturePublisher) Publish(_ context.Context, topic string, payload []byte) error {
	p.topic = topic
	p.payload = payload
	return p.err
}

func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	logger.SetLogger(zap.New(core))
	t.Cleanup(func() { logger.SetLogger(nil) })
	return logs
}

func TestNewCarriesClientIP(t *testing.T) {
	ctx := events.WithClientIP(context.Background(), "10.0.0.1")
	id := uuid.New()
	actor := uuid.New()

	event := events.New(ctx, events.LoginSucceeded, id, "jane@example.com").WithActor(actor)

	require.Equal(t, events.LoginSucceeded, event.Type)
	require.Equal(t, id, event.UserID)
	require.Equal(t, actor, event.ActorID)
	require.Equal(t, "10.0.0.1", event.IP)
	require.NotEqual(t, uuid.Nil, event.ID)
	require.False(t, event.OccurredAt.IsZero())
	require.Empty(t, events.ClientIP(context.Background()))
}

func TestStoreRecorder(t *testing.T) {
	store := &memoryStore{}
	events.NewStoreRecorder(store).Record(context.Background(), events.New(context.Background(), events.UserCreated, uuid.New(), ""))
	require.Len(t, store.events, 1)
	require.Equal(t, events.UserCreated, store.events[0].Type)
}

func TestStoreRecorderLogsFailure(t *testing.T) {
	logs := observeLogs(t)
	store := &memoryStore{err: errors.New("db down")}

	events.NewStoreRecorder(store).Record(context.Background(), events.New(context.Background(), events.UserDeleted, uuid.New(), ""))

	require.Equal(t, 1, logs.FilterField(zap.String("event", "auth_event_store_failed")).Len())
}

func TestMQTTRecorder(t *testing.T) {
	pub := &capturePublisher{}
	event := events.New(context.Background(), events.PasswordResetRequested, uuid.New(), "jane@example.com")

	events.NewMQTTRecorder(pub, "cms/auth/events", 0).Record(context.Background(), event)

	require.Equal(t, "cms/auth/events", pub.topic)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(pub.payload, &decoded))
	require.Equal(t, "password_reset_requested", decoded["type"])
	require.Equal(t, "jane@example.com", decoded["email"])
}

func TestMQTTRecorderLogsFailure(t *testing.T) {
	logs := observeLogs(t)
	pub := &capturePublisher{err: errors.New("not connected")}

	events.NewMQTTRecorder(pub, "t", 0).Record(context.Background(), events.New(context.Background(), events.LoginFailed, uuid.Nil, "x@y.z"))

	require.Equal(t, 1, logs.FilterField(zap.String("event", "auth_event_publish_failed")).Len())
}

func TestMultiFansOut(t *testing.T) {
	ctrl := gomock.NewController(t)
	first := mocks.NewMockRecorder(ctrl)
	second := mocks.NewMockRecorder(ctrl)

	event := events.New(context.Background(), events.UserUpdated, uuid.New(), "")
	gomock.InOrder(
		first.EXPECT().Record(gomock.Any(), event),
		second.EXPECT().Record(gomock.Any(), event),
	)

	events.Multi(first, nil, second).Record(context.Background(), event)
}

func TestNop(t *testing.T) {
	events.Nop().Record(context.Background(), events.AuthEvent{})
}
