package user

import (
	"context"
	"errors"
	"fmt"

	"portfolio-cms/internal/auth"
	domainUser "portfolio-cms/internal/domain/user"
	"portfolio-cms/internal/events"
	"portfolio-cms/internal/logger"
	appErrors "portfolio-cms/pkg/errors"
	"portfolio-cms/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service implements login and user management use cases
type Service struct {
	userRepo domainUser.Repository
	sessions *auth.SessionManager
	events   events.Recorder

	verifyDummy func(password string)
}

// NewService creates a new user service
func NewService(userRepo domainUser.Repository, sessions *auth.SessionManager, recorder events.Recorder) *Service {
	if recorder == nil {
		recorder = events.Nop()
	}
	return &Service{
		userRepo:    userRepo,
		sessions:    sessions,
		events:      recorder,
		verifyDummy: auth.VerifyDummyPassword,
	}
}

func (s *Service) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	req.Email = utils.NormalizeEmail(req.Email)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "Email and password are required", err)
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domainUser.ErrUserNotFound) {
			s.verifyDummy(req.Password)
			logger.Warn("Login attempt with non-existent email",
				zap.String("email", req.Email),
				zap.String("event", "login_failed_unknown_email"),
			)
			s.events.Record(ctx, events.New(ctx, events.LoginFailed, uuid.Nil, req.Email))
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := auth.VerifyPassword(req.Password, user.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password for user %s: %w", user.ID, err)
	}
	if !ok {
		logger.Warn("Login attempt with invalid password",
			zap.String("user_id", user.ID.String()),
			zap.String("email", user.Email),
			zap.String("event", "login_failed_invalid_password"),
		)
		s.events.Record(ctx, events.New(ctx, events.LoginFailed, user.ID, user.Email))
		return nil, appErrors.ErrInvalidCredentials
	}

	if user.Password.IsLegacy() {
		s.upgradeLegacyCredential(ctx, user, req.Password)
	}

	session, err := s.sessions.Issue(user)
	if err != nil {
		return nil, err
	}

	logger.Info("User logged in successfully",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email),
		zap.String("role", string(user.Role)),
		zap.String("event", "login_success"),
	)
	s.events.Record(ctx, events.New(ctx, events.LoginSucceeded, user.ID, user.Email))

	return &LoginResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      ToUserResponse(user),
	}, nil
}

// upgradeLegacyCredential rehashes a plaintext credential that just matched.
// Failure leaves the legacy credential in place.
func (s *Service) upgradeLegacyCredential(ctx context.Context, user *domainUser.User, password string) {
	credential, err := auth.HashPassword(password)
	if err == nil {
		err = s.userRepo.UpdatePassword(ctx, user.ID, credential)
	}
	if err != nil {
		logger.Error("Failed to upgrade legacy credential",
			zap.String("user_id", user.ID.String()),
			zap.Error(err),
			zap.String("event", "credential_upgrade_failed"),
		)
		return
	}

	user.Password = credential
	logger.Info("Legacy credential upgraded to bcrypt",
		zap.String("user_id", user.ID.String()),
		zap.String("event", "credential_upgraded"),
	)
}

func (s *Service) ListUsers(ctx context.Context, actor *auth.Claims) ([]*UserResponse, error) {
	if !actor.IsAdmin() {
		return nil, appErrors.ErrForbidden
	}

	users, err := s.userRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]*UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, ToUserResponse(user))
	}

	return responses, nil
}

func (s *Service) GetUser(ctx context.Context, actor *auth.Claims, userID uuid.UUID) (*UserResponse, error) {
	if !actor.CanAccessUser(userID) {
		return nil, appErrors.ErrForbidden
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return ToUserResponse(user), nil
}

func (s *Service) CreateUser(ctx context.Context, actor *auth.Claims, req *CreateUserRequest) (*UserResponse, error) {
	if !actor.IsAdmin() {
		return nil, appErrors.ErrForbidden
	}

	req.Email = utils.NormalizeEmail(req.Email)
	req.Name = utils.SanitizeString(req.Name)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, utils.ValidationMessage(err), err)
	}

	if err := utils.ValidatePassword(req.Password, utils.ManagedPasswordPolicy); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeWeakPassword, err.Error(), nil)
	}

	credential, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &domainUser.User{
		Email:    req.Email,
		Password: credential,
		Name:     req.Name,
		Role:     domainUser.Role(req.Role),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domainUser.ErrUserAlreadyExists) {
			logger.Warn("User creation with existing email",
				zap.String("email", req.Email),
				zap.String("event", "user_create_failed_duplicate_email"),
			)
		}
		return nil, err
	}

	logger.Info("User created successfully",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email),
		zap.String("role", string(user.Role)),
		zap.String("actor_id", actor.UserID.String()),
		zap.String("event", "user_created"),
	)
	s.events.Record(ctx, events.New(ctx, events.UserCreated, user.ID, user.Email).WithActor(actor.UserID))

	return ToUserResponse(user), nil
}

func (s *Service) UpdateUser(ctx context.Context, actor *auth.Claims, userID uuid.UUID, req *UpdateUserRequest) (*UserResponse, error) {
	if !actor.CanAccessUser(userID) {
		return nil, appErrors.ErrForbidden
	}
	if req.Role != nil && !actor.IsAdmin() {
		return nil, appErrors.ErrRoleChangeForbidden
	}

	if req.Email != nil {
		email := utils.NormalizeEmail(*req.Email)
		req.Email = &email
	}
	if req.Name != nil {
		name := utils.SanitizeString(*req.Name)
		req.Name = &name
	}
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, utils.ValidationMessage(err), err)
	}

	update := domainUser.Update{
		Email: req.Email,
		Name:  req.Name,
	}
	if req.Role != nil {
		role := domainUser.Role(*req.Role)
		update.Role = &role
	}
	if req.Password != nil {
		if err := utils.ValidatePassword(*req.Password, utils.ManagedPasswordPolicy); err != nil {
			return nil, appErrors.NewAppError(appErrors.CodeWeakPassword, err.Error(), nil)
		}
		credential, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		update.Password = &credential
	}

	if update.IsEmpty() {
		return s.GetUser(ctx, actor, userID)
	}

	user, err := s.userRepo.Update(ctx, userID, update)
	if err != nil {
		return nil, err
	}

	logger.Info("User updated successfully",
		zap.String("user_id", user.ID.String()),
		zap.String("actor_id", actor.UserID.String()),
		zap.Bool("email_changed", update.Email != nil),
		zap.Bool("password_changed", update.Password != nil),
		zap.Bool("role_changed", update.Role != nil),
		zap.String("event", "user_updated"),
	)
	s.events.Record(ctx, events.New(ctx, events.UserUpdated, user.ID, user.Email).WithActor(actor.UserID))

	return ToUserResponse(user), nil
}

func (s *Service) DeleteUser(ctx context.Context, actor *auth.Claims, userID uuid.UUID) error {
	if !actor.IsAdmin() {
		return appErrors.ErrForbidden
	}
	if actor.UserID == userID {
		return appErrors.ErrCannotDeleteSelf
	}

	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}

	logger.Info("User deleted successfully",
		zap.String("user_id", userID.String()),
		zap.String("actor_id", actor.UserID.String()),
		zap.String("event", "user_deleted"),
	)
	s.events.Record(ctx, events.New(ctx, events.UserDeleted, userID, "").WithActor(actor.UserID))

	return nil
}

func (s *Service) ChangePassword(ctx context.Context, actor *auth.Claims, userID uuid.UUID, req *ChangePasswordRequest) error {
	if !actor.CanAccessUser(userID) {
		return appErrors.ErrForbidden
	}

	if err := utils.ValidateStruct(req); err != nil {
		return appErrors.NewAppError(appErrors.CodeValidation, "Current password and new password are required", err)
	}

	if err := utils.ValidatePassword(req.NewPassword, utils.ManagedPasswordPolicy); err != nil {
		return appErrors.NewAppError(appErrors.CodeWeakPassword, err.Error(), nil)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	ok, err := auth.VerifyPassword(req.CurrentPassword, user.Password)
	if err != nil {
		return fmt.Errorf("failed to verify password for user %s: %w", user.ID, err)
	}
	if !ok {
		logger.Warn("Password change attempt with invalid current password",
			zap.String("user_id", user.ID.String()),
			zap.String("actor_id", actor.UserID.String()),
			zap.String("event", "password_change_failed_invalid_current_password"),
		)
		return appErrors.ErrCurrentPasswordIncorrect
	}

	credential, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, credential); err != nil {
		return err
	}

	logger.Info("Password changed successfully",
		zap.String("user_id", user.ID.String()),
		zap.String("actor_id", actor.UserID.String()),
		zap.String("event", "password_change_success"),
	)
	s.events.Record(ctx, events.New(ctx, events.PasswordChanged, user.ID, user.Email).WithActor(actor.UserID))

	return nil
}

// MigrateLegacyPasswords rehashes every legacy credential and returns how many were converted.
func (s *Service) MigrateLegacyPasswords(ctx context.Context) (int, error) {
	users, err := s.userRepo.GetAll(ctx)
	if err != nil {
		return 0, err
	}

	migrated := 0
	for _, user := range users {
		if !user.Password.IsLegacy() {
			continue
		}

		credential, err := auth.HashPassword(user.Password.Value)
		if err != nil {
			return migrated, err
		}
		if err := s.userRepo.UpdatePassword(ctx, user.ID, credential); err != nil {
			return migrated, fmt.Errorf("failed to migrate password for user %s: %w", user.ID, err)
		}

		migrated++
		logger.Info("Legacy password migrated",
			zap.String("user_id", user.ID.String()),
			zap.String("email", user.Email),
			zap.String("event", "legacy_password_migrated"),
		)
	}

	return migrated, nil
}

// EnsureAdmin creates an admin account for email unless a user with that email exists.
// It reports whether an account was created.
func (s *Service) EnsureAdmin(ctx context.Context, email, password, name string) (bool, error) {
	email = utils.NormalizeEmail(email)
	if email == "" {
		return false, nil
	}

	_, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, domainUser.ErrUserNotFound) {
		return false, err
	}

	if err := utils.ValidatePassword(password, utils.ManagedPasswordPolicy); err != nil {
		return false, appErrors.NewAppError(appErrors.CodeWeakPassword, err.Error(), nil)
	}

	credential, err := auth.HashPassword(password)
	if err != nil {
		return false, err
	}

	admin := &domainUser.User{
		Email:    email,
		Password: credential,
		Name:     utils.SanitizeString(name),
		Role:     domainUser.RoleAdmin,
	}
	if err := s.userRepo.Create(ctx, admin); err != nil {
		if errors.Is(err, domainUser.ErrUserAlreadyExists) {
			return false, nil
		}
		return false, err
	}

	logger.Info("Admin account seeded",
		zap.String("user_id", admin.ID.String()),
		zap.String("email", admin.Email),
		zap.String("event", "admin_seeded"),
	)
	s.events.Record(ctx, events.New(ctx, events.UserCreated, admin.ID, admin.Email))

	return true, nil
}
