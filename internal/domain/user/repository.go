package user

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for user persistence
type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, userID uuid.UUID) (*User, error)
	GetAll(ctx context.Context) ([]*User, error)
	Update(ctx context.Context, userID uuid.UUID, update Update) (*User, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, credential Credential) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

// ResetTokenRepository defines the interface for password reset token persistence
type ResetTokenRepository interface {
	Create(ctx context.Context, token *PasswordResetToken) error
	// FindValid returns the unused, unexpired token whose hash matches tokenHash.
	FindValid(ctx context.Context, tokenHash string, now time.Time) (*PasswordResetToken, error)
	// CountSince counts tokens issued to userID at or after since.
	CountSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error)
	// Redeem marks the valid token matching tokenHash as used and stores credential
	// as its owner's password in one atomic step. Only one caller can redeem a given
	// token; every other caller gets ErrResetTokenInvalid.
	Redeem(ctx context.Context, tokenHash string, credential Credential, now time.Time) (*PasswordResetToken, error)
}
