package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	LoginSucceeded         Type = "login_succeeded"
	LoginFailed            Type = "login_failed"
	PasswordResetRequested Type = "password_reset_requested"
	PasswordResetCompleted Type = "password_reset_completed"
	PasswordChanged        Type = "password_changed"
	UserCreated            Type = "user_created"
	UserUpdated            Type = "user_updated"
	UserDeleted            Type = "user_deleted"
)

// AuthEvent is an audit record of an authentication or account change.
// It never carries passwords or reset tokens.
type AuthEvent struct {
	ID         uuid.UUID `json:"id"`
	Type       Type      `json:"type"`
	UserID     uuid.UUID `json:"user_id"`
	Email      string    `json:"email,omitempty"`
	ActorID    uuid.UUID `json:"actor_id"`
	IP         string    `json:"ip,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Recorder stores or forwards auth events. Implementations log their own
// failures; recording never fails the operation that produced the event.
//
//go:generate mockgen -destination=mocks/mock_recorder.go -package=mocks portfolio-cms/internal/events Recorder
type Recorder interface {
	Record(ctx context.Context, event AuthEvent)
}

// New builds an event stamped with a fresh id, the current time and the client IP carried by ctx.
func New(ctx context.Context, eventType Type, userID uuid.UUID, email string) AuthEvent {
	return AuthEvent{
		ID:         uuid.New(),
		Type:       eventType,
		UserID:     userID,
		Email:      email,
		IP:         ClientIP(ctx),
		OccurredAt: time.Now().UTC(),
	}
}

// WithActor returns a copy of e attributed to actorID.
func (e AuthEvent) WithActor(actorID uuid.UUID) AuthEvent {
	e.ActorID = actorID
	return e
}

type multi []Recorder

// Multi fans an event out to every recorder in order.
func Multi(recorders ...Recorder) Recorder {
	var out multi
	for _, r := range recorders {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

func (m multi) Record(ctx context.Context, event AuthEvent) {
	for _, r := range m {
		r.Record(ctx, event)
	}
}

type nop struct{}

func Nop() Recorder { return nop{} }

func (nop) Record(context.Context, AuthEvent) {}

type clientIPKey struct{}

func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

func ClientIP(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey{}).(string)
	return ip
}
