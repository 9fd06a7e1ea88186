package models

import (
	"time"

	"github.com/google/uuid"
)

// AuthEventModel represents the database model for an auth audit event
type AuthEventModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Type       string    `gorm:"type:varchar(50);not null;index"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Email      string    `gorm:"type:varchar(255)"`
	ActorID    uuid.UUID `gorm:"type:uuid;not null"`
	IP         string    `gorm:"type:varchar(64)"`
	OccurredAt time.Time `gorm:"not null;index"`
}

func (AuthEventModel) TableName() string {
	return "auth_events"
}
