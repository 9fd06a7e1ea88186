package auth

import (
	"testing"

	domainUser "portfolio-cms/internal/domain/user"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	cred, err := HashPassword("Secret123")
	require.NoError(t, err)
	require.Equal(t, domainUser.SchemeBcrypt, cred.Scheme)
	require.NotEqual(t, "Secret123", cred.Value)
	require.Equal(t, cred, domainUser.ParseCredential(cred.Encode()))

	ok, err := VerifyPassword("Secret123", cred)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = VerifyPassword("secret123", cred)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerifyPasswordLegacy(t *testing.T) {
	cred := domainUser.ParseCredential("plain-old-password")
	require.True(t, cred.IsLegacy())

	ok, err := VerifyPassword("plain-old-password", cred)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = VerifyPassword("plain-old-passwor", cred)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = VerifyPassword("", domainUser.LegacyCredential(""))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	_, err := VerifyPassword("anything", domainUser.BcryptCredential("$2a$10$short"))
	require.Error(t, err)
}

func TestCredentialStringRedacts(t *testing.T) {
	cred := domainUser.LegacyCredential("hunter2")
	require.NotContains(t, cred.String(), "hunter2")
	require.Equal(t, "legacy:[redacted]", cred.String())
}

func TestVerifyDummyPasswordUsesCredentialCost(t *testing.T) {
	VerifyDummyPassword("Secret123")

	cost, err := bcrypt.Cost(dummyHash)
	require.NoError(t, err)
	require.Equal(t, PasswordCost, cost)
}
