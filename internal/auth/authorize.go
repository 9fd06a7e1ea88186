package auth

import (
	"time"

	domainUser "portfolio-cms/internal/domain/user"

	"github.com/google/uuid"
)

// Authorize reports whether the session is still live at now and satisfies required.
// An empty required role accepts any authenticated user; admins satisfy every role.
func (c *Claims) Authorize(required domainUser.Role, now time.Time) bool {
	if c == nil || c.ExpiresAt == nil || !c.ExpiresAt.After(now) {
		return false
	}
	if required == "" || c.Role == required {
		return true
	}
	return c.Role == domainUser.RoleAdmin
}

func (c *Claims) IsAdmin() bool {
	return c != nil && c.Role == domainUser.RoleAdmin
}

// CanAccessUser reports whether the session may read or modify the given user.
func (c *Claims) CanAccessUser(target uuid.UUID) bool {
	if c == nil {
		return false
	}
	return c.UserID == target || c.IsAdmin()
}
