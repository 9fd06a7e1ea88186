package user

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User represents a CMS account
type User struct {
	ID        uuid.UUID
	Email     string
	Password  Credential
	Name      string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Update carries the fields of a partial user update. Nil fields are left untouched.
type Update struct {
	Email    *string
	Name     *string
	Password *Credential
	Role     *Role
}

// IsEmpty reports whether the update changes nothing.
func (u Update) IsEmpty() bool {
	return u.Email == nil && u.Name == nil && u.Password == nil && u.Role == nil
}

// PasswordResetToken is a single-use, time-boxed reset capability bound to one user.
// Only the hash of the token is ever stored.
type PasswordResetToken struct {
	ID        string
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

// IsValid reports whether the token can still be consumed at now.
func (t *PasswordResetToken) IsValid(now time.Time) bool {
	return !t.Used && t.ExpiresAt.After(now)
}
