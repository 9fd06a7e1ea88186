// Package memory provides mutex guarded in-memory implementations of the user
// repositories. Every method copies values in and out so callers never share state.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"portfolio-cms/internal/domain/user"

	"github.com/google/uuid"
)

type Store struct {
	mu     sync.Mutex
	users  map[uuid.UUID]user.User
	tokens map[string]user.PasswordResetToken

	// Errors injected into the next matching call.
	CreateTokenErr    error
	UpdatePasswordErr error
}

func NewStore() *Store {
	return &Store{
		users:  make(map[uuid.UUID]user.User),
		tokens: make(map[string]user.PasswordResetToken),
	}
}

// Users returns the user repository view of the store.
func (s *Store) Users() user.Repository { return userRepo{s} }

// ResetTokens returns the reset token repository view of the store.
func (s *Store) ResetTokens() user.ResetTokenRepository { return tokenRepo{s} }

// Tokens returns a snapshot of every stored reset token.
func (s *Store) Tokens() []user.PasswordResetToken {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]user.PasswordResetToken, 0, len(s.tokens))
	for _, t := range s.tokens {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, u *user.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return user.ErrUserAlreadyExists
		}
	}

	now := time.Now().UTC()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	r.s.users[u.ID] = *u
	return nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			found := u
			return &found, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r userRepo) GetByID(_ context.Context, userID uuid.UUID) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[userID]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return &u, nil
}

func (r userRepo) GetAll(_ context.Context) ([]*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]*user.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		u := u
		out = append(out, &u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r userRepo) Update(_ context.Context, userID uuid.UUID, update user.Update) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[userID]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	if update.Email != nil {
		for id, existing := range r.s.users {
			if id != userID && strings.EqualFold(existing.Email, *update.Email) {
				return nil, user.ErrUserAlreadyExists
			}
		}
		u.Email = *update.Email
	}
	if update.Name != nil {
		u.Name = *update.Name
	}
	if update.Password != nil {
		u.Password = *update.Password
	}
	if update.Role != nil {
		u.Role = *update.Role
	}
	u.UpdatedAt = time.Now().UTC()
	r.s.users[userID] = u
	return &u, nil
}

func (r userRepo) UpdatePassword(_ context.Context, userID uuid.UUID, credential user.Credential) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.UpdatePasswordErr; err != nil {
		r.s.UpdatePasswordErr = nil
		return err
	}

	u, ok := r.s.users[userID]
	if !ok {
		return user.ErrUserNotFound
	}
	u.Password = credential
	u.UpdatedAt = time.Now().UTC()
	r.s.users[userID] = u
	return nil
}

func (r userRepo) Delete(_ context.Context, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[userID]; !ok {
		return user.ErrUserNotFound
	}
	delete(r.s.users, userID)
	return nil
}

type tokenRepo struct{ s *Store }

func (r tokenRepo) Create(_ context.Context, token *user.PasswordResetToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.s.CreateTokenErr; err != nil {
		r.s.CreateTokenErr = nil
		return err
	}
	r.s.tokens[token.TokenHash] = *token
	return nil
}

func (r tokenRepo) FindValid(_ context.Context, tokenHash string, now time.Time) (*user.PasswordResetToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.tokens[tokenHash]
	if !ok || !t.IsValid(now) {
		return nil, user.ErrResetTokenInvalid
	}
	return &t, nil
}

func (r tokenRepo) CountSince(_ context.Context, userID uuid.UUID, since time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var count int64
	for _, t := range r.s.tokens {
		if t.UserID == userID && !t.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r tokenRepo) Redeem(_ context.Context, tokenHash string, credential user.Credential, now time.Time) (*user.PasswordResetToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.tokens[tokenHash]
	if !ok || !t.IsValid(now) {
		return nil, user.ErrResetTokenInvalid
	}
	u, ok := r.s.users[t.UserID]
	if !ok {
		return nil, user.ErrResetTokenInvalid
	}

	t.Used = true
	r.s.tokens[tokenHash] = t
	u.Password = credential
	u.UpdatedAt = now
	r.s.users[u.ID] = u
	return &t, nil
}
