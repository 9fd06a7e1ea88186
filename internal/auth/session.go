package auth

import (
	"errors"
	"fmt"
	"time"

	domainUser "portfolio-cms/internal/domain/user"
	appErrors "portfolio-cms/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultSessionTTL is the session lifetime used when none is configured.
const DefaultSessionTTL = 30 * 24 * time.Hour

// Claims is the payload of a session token.
type Claims struct {
	UserID uuid.UUID       `json:"user_id"`
	Email  string          `json:"email"`
	Role   domainUser.Role `json:"role"`
	jwt.RegisteredClaims
}

// Session is an issued session token.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// SessionManager issues and parses HS256 session tokens.
type SessionManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionManager(secret, issuer string, ttl time.Duration) *SessionManager {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock returns a copy of m that reads the time from now.
func (m *SessionManager) WithClock(now func() time.Time) *SessionManager {
	clone := *m
	clone.now = now
	return &clone
}

func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

func (m *SessionManager) Issue(user *domainUser.User) (*Session, error) {
	if user == nil {
		return nil, errors.New("cannot issue session for nil user")
	}

	issuedAt := m.now()
	expiresAt := issuedAt.Add(m.ttl)

	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	return &Session{Token: signed, ExpiresAt: expiresAt.Truncate(time.Second)}, nil
}

// Parse validates a session token and returns its claims. Every failure maps to ErrInvalidSession.
func (m *SessionManager) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return nil, appErrors.ErrInvalidSession
	}
	if claims.UserID == uuid.Nil || !claims.Role.Valid() {
		return nil, appErrors.ErrInvalidSession
	}
	return claims, nil
}
