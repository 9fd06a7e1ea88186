package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

const (
	// ResetTokenTTL is the fixed lifetime of a password reset token.
	ResetTokenTTL = time.Hour

	resetTokenBytes   = 32
	resetTokenHexSize = resetTokenBytes * 2
	tokenIDPrefix     = "rst_"
)

// GenerateResetToken returns a fresh random token and the SHA-256 hash that is stored in its place.
func GenerateResetToken() (plaintext, hash string, err error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	plaintext = hex.EncodeToString(buf)
	return plaintext, HashToken(plaintext), nil
}

// HashToken returns the hex encoded SHA-256 digest of a plaintext token.
func HashToken(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

// GenerateTokenID returns a record identifier unrelated to the token secret.
func GenerateTokenID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand.Read does not fail on supported platforms
		panic(fmt.Sprintf("failed to read random bytes: %v", err))
	}
	return fmt.Sprintf("%s%d_%s", tokenIDPrefix, time.Now().UnixMilli(), hex.EncodeToString(buf))
}

func ResetTokenExpiration(now time.Time) time.Time {
	return now.Add(ResetTokenTTL)
}

// ValidResetTokenFormat reports whether s looks like a token produced by GenerateResetToken.
func ValidResetTokenFormat(s string) bool {
	if len(s) != resetTokenHexSize {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
