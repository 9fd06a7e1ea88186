package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"portfolio-cms/internal/auth"
	domainUser "portfolio-cms/internal/domain/user"
	"portfolio-cms/internal/events"
	"portfolio-cms/internal/events/mocks"
	"portfolio-cms/internal/infrastructure/database/memory"
	"portfolio-cms/internal/logger"
	appErrors "portfolio-cms/pkg/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fixture struct {
	store    *memory.Store
	sessions *auth.SessionManager
	service  *Service
}

func newFixture(t *testing.T, recorder events.Recorder) *fixture {
	t.Helper()
	store := memory.NewStore()
	sessions := auth.NewSessionManager("test-secret", "portfolio-cms", time.Hour)
	return &fixture{
		store:    store,
		sessions: sessions,
		service:  NewService(store.Users(), sessions, recorder),
	}
}

func (f *fixture) seed(t *testing.T, email, password string, role domainUser.Role) *domainUser.User {
	t.Helper()
	credential, err := auth.HashPassword(password)
	require.NoError(t, err)
	u := &domainUser.User{Email: email, Password: credential, Name: "Seeded", Role: role}
	require.NoError(t, f.store.Users().Create(context.Background(), u))
	return u
}

func (f *fixture) seedLegacy(t *testing.T, email, password string) *domainUser.User {
	t.Helper()
	u := &domainUser.User{Email: email, Password: domainUser.LegacyCredential(password), Name: "Legacy", Role: domainUser.RoleUser}
	require.NoError(t, f.store.Users().Create(context.Background(), u))
	return u
}

func claimsOf(u *domainUser.User) *auth.Claims {
	return &auth.Claims{UserID: u.ID, Email: u.Email, Role: u.Role}
}

func TestLogin(t *testing.T) {
	ctrl := gomock.NewController(t)
	recorder := mocks.NewMockRecorder(ctrl)
	f := newFixture(t, recorder)
	u := f.seed(t, "jane@example.com", "Secret123", domainUser.RoleAdmin)

	recorder.EXPECT().Record(gomock.Any(), gomock.Any()).Do(func(_ context.Context, e events.AuthEvent) {
		require.Equal(t, events.LoginSucceeded, e.Type)
		require.Equal(t, u.ID, e.UserID)
	})

	resp, err := f.service.Login(context.Background(), &LoginRequest{Email: "  JANE@example.com ", Password: "Secret123"})
	require.NoError(t, err)
	require.Equal(t, u.ID, resp.User.ID)

	claims, err := f.sessions.Parse(resp.Token)
	require.NoError(t, err)
	require.Equal(t, domainUser.RoleAdmin, claims.Role)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	f := newFixture(t, events.Nop())
	f.seed(t, "jane@example.com", "Secret123", domainUser.RoleUser)

	_, errUnknown := f.service.Login(context.Background(), &LoginRequest{Email: "nobody@example.com", Password: "Secret123"})
	_, errWrong := f.service.Login(context.Background(), &LoginRequest{Email: "jane@example.com", Password: "wrong"})

	require.ErrorIs(t, errUnknown, appErrors.ErrInvalidCredentials)
	require.ErrorIs(t, errWrong, appErrors.ErrInvalidCredentials)
	require.Equal(t, errUnknown.Error(), errWrong.Error())
}

func TestLoginUnknownEmailPaysPasswordComparison(t *testing.T) {
	f := newFixture(t, nil)
	f.seed(t, "jane@example.com", "Secret123", domainUser.RoleUser)

	var compared []string
	f.service.verifyDummy = func(password string) { compared = append(compared, password) }

	_, err := f.service.Login(context.Background(), &LoginRequest{Email: "nobody@example.com", Password: "guess-1"})
	require.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
	require.Equal(t, []string{"guess-1"}, compared)

	_, err = f.service.Login(context.Background(), &LoginRequest{Email: "jane@example.com", Password: "guess-2"})
	require.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
	require.Equal(t, []string{"guess-1"}, compared)
}

func TestLoginMissingFields(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.service.Login(context.Background(), &LoginRequest{Email: "jane@example.com"})
	var appErr *appErrors.AppError
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, appErrors.CodeValidation, appErr.Code)
}

func TestLoginUpgradesLegacyCredential(t *testing.T) {
	f := newFixture(t, nil)
	u := f.seedLegacy(t, "old@example.com", "plain-pass")

	_, err := f.service.Login(context.Background(), &LoginRequest{Email: "old@example.com", Password: "plain-pass"})
	require.NoError(t, err)

	stored, err := f.store.Users().GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	require.Equal(t, domainUser.SchemeBcrypt, stored.Password.Scheme)

	_, err = f.service.Login(context.Background(), &LoginRequest{Email: "old@example.com", Password: "plain-pass"})
	require.NoError(t, err)
}

func TestLoginUpgradeFailureIsNotFatal(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger.SetLogger(zap.New(core))
	t.Cleanup(func() { logger.SetLogger(nil) })

	f := newFixture(t, nil)
	u := f.seedLegacy(t, "old@example.com", "plain-pass")
	f.store.UpdatePasswordErr = errors.New("db down")

	_, err := f.service.Login(context.Background(), &LoginRequest{Email: "old@example.com", Password: "plain-pass"})
	require.NoError(t, err)
	require.Equal(t, 1, logs.FilterField(zap.String("event", "credential_upgrade_failed")).Len())

	stored, err := f.store.Users().GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	require.True(t, stored.Password.IsLegacy())
}

func TestListUsersRequiresAdmin(t *testing.T) {
	f := newFixture(t, nil)
	admin := f.seed(t, "admin@example.com", "Secret123", domainUser.RoleAdmin)
	member := f.seed(t, "member@example.com", "Secret123", domainUser.RoleUser)

	_, err := f.service.ListUsers(context.Background(), claimsOf(member))
	require.ErrorIs(t, err, appErrors.ErrForbidden)

	users, err := f.service.ListUsers(context.Background(), claimsOf(admin))
	require.NoError(t, err)
	require.Len(t, users, 2)
}

func TestGetUserSelfOrAdmin(t *testing.T) {
	f := newFixture(t, nil)
	admin := f.seed(t, "admin@example.com", "Secret123", domainUser.RoleAdmin)
	member := f.seed(t, "member@example.com", "Secret123", domainUser.RoleUser)
	other := f.seed(t, "other@example.com", "Secret123", domainUser.RoleUser)

	got, err := f.service.GetUser(context.Background(), claimsOf(member), member.ID)
	require.NoError(t, err)
	require.Equal(t, "member@example.com", got.Email)

	_, err = f.service.GetUser(context.Background(), claimsOf(member), other.ID)
	require.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = f.service.GetUser(context.Background(), claimsOf(admin), other.ID)
	require.NoError(t, err)

	_, err = f.service.GetUser(context.Background(), claimsOf(admin), uuid.New())
	require.ErrorIs(t, err, appErrors.ErrUserNotFound)
}

func TestCreateUser(t *testing.T) {
	f := newFixture(t, nil)
	admin := f.seed(t, "admin@example.com", "Secret123", domainUser.RoleAdmin)
	member := f.seed(t, "member@example.com", "Secret123", domainUser.RoleUser)

	req := func() *CreateUserRequest {
		return &CreateUserRequest{Name: "New Person", Email: " New@Example.com", Password: "Secret123", Role: "user"}
	}

	_, err := f.service.CreateUser(context.Background(), claimsOf(member), req())
	require.ErrorIs(t, err, appErrors.ErrForbidden)

	created, err := f.service.CreateUser(context.Background(), claimsOf(admin), req())
	require.NoError(t, err)
	require.Equal(t, "new@example.com", created.Email)

	stored, err := f.store.Users().GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, domainUser.SchemeBcrypt, stored.Password.Scheme)

	_, err = f.service.CreateUser(context.Background(), claimsOf(admin), req())
	require.ErrorIs(t, err, appErrors.ErrUserAlreadyExists)

	weak := req()
	weak.Email = "weak@example.com"
	weak.Password = "alllowercase1"
	_, err = f.service.CreateUser(context.Background(), claimsOf(admin), weak)
	var appErr *appErrors.AppError
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, appErrors.CodeWeakPassword, appErr.Code)

	badRole := req()
	badRole.Email = "role@example.com"
	badRole.Role = "root"
	_, err = f.service.CreateUser(context.Background(), claimsOf(admin), badRole)
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, appErrors.CodeValidation, appErr.Code)
}

func TestUpdateUser(t *testing.T) {
	f := newFixture(t, nil)
	admin := f.seed(t, "admin@example.com", "Secret123", domainUser.RoleAdmin)
	member := f.seed(t, "member@example.com", "Secret123", domainUser.RoleUser)
	other := f.seed(t, "other@example.com", "Secret123", domainUser.RoleUser)

	name := "Renamed"
	updated, err := f.service.UpdateUser(context.Background(), claimsOf(member), member.ID, &UpdateUserRequest{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Renamed", updated.Name)

	_, err = f.service.UpdateUser(context.Background(), claimsOf(member), other.ID, &UpdateUserRequest{Name: &name})
	require.ErrorIs(t, err, appErrors.ErrForbidden)

	role := "admin"
	_, err = f.service.UpdateUser(context.Background(), claimsOf(member), member.ID, &UpdateUserRequest{Role: &role})
	require.ErrorIs(t, err, appErrors.ErrRoleChangeForbidden)

	promoted, err := f.service.UpdateUser(context.Background(), claimsOf(admin), other.ID, &UpdateUserRequest{Role: &role})
	require.NoError(t, err)
	require.Equal(t, "admin", promoted.Role)

	taken := "ADMIN@example.com"
	_, err = f.service.UpdateUser(context.Background(), claimsOf(member), member.ID, &UpdateUserRequest{Email: &taken})
	require.ErrorIs(t, err, appErrors.ErrUserAlreadyExists)

	password := "NewSecret1"
	_, err = f.service.UpdateUser(context.Background(), claimsOf(member), member.ID, &UpdateUserRequest{Password: &password})
	require.NoError(t, err)
	_, err = f.service.Login(context.Background(), &LoginRequest{Email: "member@example.com", Password: "NewSecret1"})
	require.NoError(t, err)

	unchanged, err := f.service.UpdateUser(context.Background(), claimsOf(member), member.ID, &UpdateUserRequest{})
	require.NoError(t, err)
	require.Equal(t, "Renamed", unchanged.Name)
}

func TestDeleteUser(t *testing.T) {
	f := newFixture(t, nil)
	admin := f.seed(t, "admin@example.com", "Secret123", domainUser.RoleAdmin)
	member := f.seed(t, "member@example.com", "Secret123", domainUser.RoleUser)

	require.ErrorIs(t, f.service.DeleteUser(context.Background(), claimsOf(member), admin.ID), appErrors.ErrForbidden)
	require.ErrorIs(t, f.service.DeleteUser(context.Background(), claimsOf(admin), admin.ID), appErrors.ErrCannotDeleteSelf)
	require.NoError(t, f.service.DeleteUser(context.Background(), claimsOf(admin), member.ID))
	require.ErrorIs(t, f.service.DeleteUser(context.Background(), claimsOf(admin), member.ID), appErrors.ErrUserNotFound)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t, nil)
	member := f.seed(t, "member@example.com", "Secret123", domainUser.RoleUser)
	other := f.seed(t, "other@example.com", "Secret123", domainUser.RoleUser)

	err := f.service.ChangePassword(context.Background(), claimsOf(member), other.ID,
		&ChangePasswordRequest{CurrentPassword: "Secret123", NewPassword: "Another123"})
	require.ErrorIs(t, err, appErrors.ErrForbidden)

	err = f.service.ChangePassword(context.Background(), claimsOf(member), member.ID,
		&ChangePasswordRequest{CurrentPassword: "wrong", NewPassword: "Another123"})
	require.ErrorIs(t, err, appErrors.ErrCurrentPasswordIncorrect)

	err = f.service.ChangePassword(context.Background(), claimsOf(member), member.ID,
		&ChangePasswordRequest{CurrentPassword: "Secret123", NewPassword: "short"})
	var appErr *appErrors.AppError
	require.True(t, errors.As(err, &appErr))
	require.Equal(t, appErrors.CodeWeakPassword, appErr.Code)

	err = f.service.ChangePassword(context.Background(), claimsOf(member), member.ID,
		&ChangePasswordRequest{CurrentPassword: "Secret123", NewPassword: "Another123"})
	require.NoError(t, err)

	_, err = f.service.Login(context.Background(), &LoginRequest{Email: "member@example.com", Password: "Secret123"})
	require.ErrorIs(t, err, appErrors.ErrInvalidCredentials)
	_, err = f.service.Login(context.Background(), &LoginRequest{Email: "member@example.com", Password: "Another123"})
	require.NoError(t, err)
}

func TestMigrateLegacyPasswords(t *testing.T) {
	f := newFixture(t, nil)
	f.seed(t, "hashed@example.com", "Secret123", domainUser.RoleUser)
	legacy := f.seedLegacy(t, "legacy@example.com", "plain-pass")

	migrated, err := f.service.MigrateLegacyPasswords(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, migrated)

	stored, err := f.store.Users().GetByID(context.Background(), legacy.ID)
	require.NoError(t, err)
	require.False(t, stored.Password.IsLegacy())
	ok, err := auth.VerifyPassword("plain-pass", stored.Password)
	require.NoError(t, err)
	require.True(t, ok)

	migrated, err = f.service.MigrateLegacyPasswords(context.Background())
	require.NoError(t, err)
	require.Zero(t, migrated)
}

func TestEnsureAdmin(t *testing.T) {
	f := newFixture(t, nil)

	created, err := f.service.EnsureAdmin(context.Background(), "", "Secret123", "Admin")
	require.NoError(t, err)
	require.False(t, created)

	created, err = f.service.EnsureAdmin(context.Background(), "Admin@Example.com", "Secret123", "Admin")
	require.NoError(t, err)
	require.True(t, created)

	created, err = f.service.EnsureAdmin(context.Background(), "admin@example.com", "Secret123", "Admin")
	require.NoError(t, err)
	require.False(t, created)

	u, err := f.store.Users().GetByEmail(context.Background(), "admin@example.com")
	require.NoError(t, err)
	require.Equal(t, domainUser.RoleAdmin, u.Role)

	_, err = f.service.EnsureAdmin(context.Background(), "weak@example.com", "weak", "Admin")
	require.Error(t, err)
}
