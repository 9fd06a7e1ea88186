package auth

import (
	"testing"
	"time"

	domainUser "portfolio-cms/internal/domain/user"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func claimsFor(role domainUser.Role, expiresAt time.Time) *Claims {
	return &Claims{
		UserID: uuid.New(),
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
}

func TestAuthorize(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	live := now.Add(time.Hour)

	tests := []struct {
		name     string
		claims   *Claims
		required domainUser.Role
		want     bool
	}{
		{"user any role", claimsFor(domainUser.RoleUser, live), "", true},
		{"user requires admin", claimsFor(domainUser.RoleUser, live), domainUser.RoleAdmin, false},
		{"admin requires admin", claimsFor(domainUser.RoleAdmin, live), domainUser.RoleAdmin, true},
		{"admin requires user", claimsFor(domainUser.RoleAdmin, live), domainUser.RoleUser, true},
		{"expired", claimsFor(domainUser.RoleAdmin, now), domainUser.RoleAdmin, false},
		{"nil claims", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.claims.Authorize(tt.required, now))
		})
	}
}

func TestCanAccessUser(t *testing.T) {
	live := time.Now().Add(time.Hour)
	user := claimsFor(domainUser.RoleUser, live)
	admin := claimsFor(domainUser.RoleAdmin, live)
	other := uuid.New()

	require.True(t, user.CanAccessUser(user.UserID))
	require.False(t, user.CanAccessUser(other))
	require.True(t, admin.CanAccessUser(other))
	require.False(t, (*Claims)(nil).CanAccessUser(other))
}
