package user

import "strings"

// Scheme identifies how a stored credential was produced.
type Scheme int

const (
	// SchemeLegacy marks a credential stored as plaintext by older deployments.
	SchemeLegacy Scheme = iota
	SchemeBcrypt
)

func (s Scheme) String() string {
	switch s {
	case SchemeLegacy:
		return "legacy"
	case SchemeBcrypt:
		return "bcrypt"
	default:
		return "unknown"
	}
}

var bcryptPrefixes = []string{"$2a$", "$2b$", "$2y$"}

// Credential is the stored form of a user's password.
type Credential struct {
	Scheme Scheme
	Value  string
}

func LegacyCredential(plaintext string) Credential {
	return Credential{Scheme: SchemeLegacy, Value: plaintext}
}

func BcryptCredential(hash string) Credential {
	return Credential{Scheme: SchemeBcrypt, Value: hash}
}

// ParseCredential classifies a value read from the password column.
func ParseCredential(stored string) Credential {
	for _, prefix := range bcryptPrefixes {
		if strings.HasPrefix(stored, prefix) {
			return BcryptCredential(stored)
		}
	}
	return LegacyCredential(stored)
}

// Encode returns the value persisted in the password column.
func (c Credential) Encode() string {
	return c.Value
}

func (c Credential) IsLegacy() bool {
	return c.Scheme == SchemeLegacy
}

// String never prints the credential value.
func (c Credential) String() string {
	return c.Scheme.String() + ":[redacted]"
}

// GoString keeps %#v from leaking the value too.
func (c Credential) GoString() string {
	return c.String()
}
