package postgres

import (
	"context"
	"fmt"

	"portfolio-cms/internal/events"
	"portfolio-cms/internal/infrastructure/database/postgres/models"

	"github.com/google/uuid"
)

// AuthEventRepository implements events.Store
type AuthEventRepository struct {
	db *DB
}

func NewAuthEventRepository(db *DB) *AuthEventRepository {
	return &AuthEventRepository{db: db}
}

func (r *AuthEventRepository) Append(ctx context.Context, event *events.AuthEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}

	dbModel := &models.AuthEventModel{
		ID:         event.ID,
		Type:       string(event.Type),
		UserID:     event.UserID,
		Email:      event.Email,
		ActorID:    event.ActorID,
		IP:         event.IP,
		OccurredAt: event.OccurredAt,
	}
	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		return fmt.Errorf("failed to store auth event: %w", err)
	}
	return nil
}
