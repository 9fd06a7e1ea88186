package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"sync"

	domainUser "portfolio-cms/internal/domain/user"

	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor for newly hashed credentials.
const PasswordCost = 10

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

func HashPassword(password string) (domainUser.Credential, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return domainUser.Credential{}, fmt.Errorf("failed to hash password: %w", err)
	}
	return domainUser.BcryptCredential(string(hashed)), nil
}

// VerifyPassword compares a plaintext password against a stored credential.
// A mismatch is reported as false with a nil error.
func VerifyPassword(password string, credential domainUser.Credential) (bool, error) {
	switch credential.Scheme {
	case domainUser.SchemeBcrypt:
		err := bcrypt.CompareHashAndPassword([]byte(credential.Value), []byte(password))
		if err == nil {
			return true, nil
		}
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, fmt.Errorf("failed to compare password: %w", err)
	case domainUser.SchemeLegacy:
		if credential.Value == "" {
			return false, nil
		}
		return subtle.ConstantTimeCompare([]byte(password), []byte(credential.Value)) == 1, nil
	default:
		return false, fmt.Errorf("unknown credential scheme %d", credential.Scheme)
	}
}

// VerifyDummyPassword runs a bcrypt comparison against a fixed hash of the same
// cost, so a login for an unknown email takes as long as a wrong password.
func VerifyDummyPassword(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("unused placeholder credential"), PasswordCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}
