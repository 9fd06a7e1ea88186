package passwordreset

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"portfolio-cms/internal/auth"
	domainUser "portfolio-cms/internal/domain/user"
	"portfolio-cms/internal/events"
	"portfolio-cms/internal/infrastructure/mail"
	"portfolio-cms/internal/logger"
	appErrors "portfolio-cms/pkg/errors"
	"portfolio-cms/pkg/utils"

	"go.uber.org/zap"
)

const defaultMailTimeout = 10 * time.Second

// Policy holds the deployment dependent behavior of the reset flow.
type Policy struct {
	// RevealUnknownEmail makes a request for an unknown email fail with ErrAccountNotFound.
	// Production deployments leave it off so responses never reveal which accounts exist.
	RevealUnknownEmail bool
	// BaseURL is the public origin reset links point at.
	BaseURL string
	// MaxRequestsPerHour caps tokens issued per user per hour. Zero disables the cap.
	MaxRequestsPerHour int
	MailTimeout        time.Duration
}

// Service orchestrates password reset requests, token verification and redemption
type Service struct {
	users  domainUser.Repository
	tokens domainUser.ResetTokenRepository
	mailer mail.Sender
	events events.Recorder
	policy Policy
	now    func() time.Time

	mailWG sync.WaitGroup
}

func NewService(
	users domainUser.Repository,
	tokens domainUser.ResetTokenRepository,
	mailer mail.Sender,
	recorder events.Recorder,
	policy Policy,
) *Service {
	if recorder == nil {
		recorder = events.Nop()
	}
	if policy.MailTimeout <= 0 {
		policy.MailTimeout = defaultMailTimeout
	}
	return &Service{
		users:  users,
		tokens: tokens,
		mailer: mailer,
		events: recorder,
		policy: policy,
		now:    time.Now,
	}
}

func (s *Service) RequestReset(ctx context.Context, req *RequestResetRequest) (*ResultResponse, error) {
	req.Email = utils.NormalizeEmail(req.Email)
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "Email is required", err)
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if !errors.Is(err, domainUser.ErrUserNotFound) {
			return nil, err
		}
		logger.Info("Password reset requested for non-existent email",
			zap.String("event", "password_reset_requested_unknown_email"),
		)
		if s.policy.RevealUnknownEmail {
			return nil, appErrors.ErrAccountNotFound
		}
		return genericRequestResponse(), nil
	}

	now := s.now()

	if s.policy.MaxRequestsPerHour > 0 {
		count, err := s.tokens.CountSince(ctx, user.ID, now.Add(-time.Hour))
		if err != nil {
			return nil, err
		}
		if count >= int64(s.policy.MaxRequestsPerHour) {
			logger.Warn("Password reset request throttled",
				zap.String("user_id", user.ID.String()),
				zap.Int64("recent_requests", count),
				zap.String("event", "password_reset_throttled"),
			)
			return genericRequestResponse(), nil
		}
	}

	plaintext, hash, err := auth.GenerateResetToken()
	if err != nil {
		return nil, err
	}

	token := &domainUser.PasswordResetToken{
		ID:        auth.GenerateTokenID(),
		UserID:    user.ID,
		TokenHash: hash,
		ExpiresAt: auth.ResetTokenExpiration(now),
		CreatedAt: now,
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		return nil, fmt.Errorf("failed to create reset token: %w", err)
	}

	logger.Info("Password reset token generated",
		zap.String("user_id", user.ID.String()),
		zap.String("token_id", token.ID),
		zap.Time("expires_at", token.ExpiresAt),
		zap.String("event", "password_reset_token_generated"),
	)

	// The response never waits on the mailer.
	resetURL := s.resetURL(plaintext)
	mailCtx := context.WithoutCancel(ctx)
	s.mailWG.Add(1)
	go func() {
		defer s.mailWG.Done()
		s.sendResetEmail(mailCtx, user, token.ID, resetURL)
	}()
	s.events.Record(ctx, events.New(ctx, events.PasswordResetRequested, user.ID, user.Email))

	return genericRequestResponse(), nil
}

// Wait blocks until every reset email started so far has been attempted.
func (s *Service) Wait() {
	s.mailWG.Wait()
}

func (s *Service) resetURL(plaintext string) string {
	return fmt.Sprintf("%s/reset-password/%s", s.policy.BaseURL, plaintext)
}

// sendResetEmail delivers the reset link. Failures are logged and never reach the caller.
func (s *Service) sendResetEmail(ctx context.Context, user *domainUser.User, tokenID, resetURL string) {
	msg, err := mail.PasswordResetEmail(user.Email, user.Name, resetURL, "1 hour")
	if err == nil {
		sendCtx, cancel := context.WithTimeout(ctx, s.policy.MailTimeout)
		err = s.mailer.Send(sendCtx, msg)
		cancel()
	}
	if err != nil {
		logger.Error("Failed to send password reset email",
			zap.String("user_id", user.ID.String()),
			zap.String("token_id", tokenID),
			zap.Error(err),
			zap.String("event", "password_reset_email_failed"),
		)
		return
	}

	logger.Info("Password reset email sent",
		zap.String("user_id", user.ID.String()),
		zap.String("token_id", tokenID),
		zap.String("event", "password_reset_email_sent"),
	)
}

// VerifyToken reports whether token can still be redeemed. It never changes state.
func (s *Service) VerifyToken(ctx context.Context, req *VerifyTokenRequest) (*VerifyTokenResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "Token is required", err)
	}

	if !auth.ValidResetTokenFormat(req.Token) {
		return invalidTokenResponse(), nil
	}

	token, err := s.tokens.FindValid(ctx, auth.HashToken(req.Token), s.now())
	if err != nil {
		if errors.Is(err, domainUser.ErrResetTokenInvalid) {
			return invalidTokenResponse(), nil
		}
		return nil, err
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, domainUser.ErrUserNotFound) {
			return invalidTokenResponse(), nil
		}
		return nil, err
	}

	return &VerifyTokenResponse{
		Valid: true,
		Email: user.Email,
		Name:  user.Name,
	}, nil
}

// UpdatePassword redeems token and sets the owner's password. Only one of any
// number of concurrent calls with the same token can succeed.
func (s *Service) UpdatePassword(ctx context.Context, req *UpdatePasswordRequest) (*ResultResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "Token and password are required", err)
	}

	if err := utils.ValidatePassword(req.Password, utils.ResetPasswordPolicy); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeWeakPassword, err.Error(), nil)
	}

	if !auth.ValidResetTokenFormat(req.Token) {
		return nil, appErrors.ErrResetTokenInvalid
	}

	credential, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Redeem(ctx, auth.HashToken(req.Token), credential, s.now())
	if err != nil {
		if errors.Is(err, domainUser.ErrResetTokenInvalid) {
			logger.Warn("Password reset attempt with invalid token",
				zap.String("event", "password_reset_failed_invalid_token"),
			)
		}
		return nil, err
	}

	logger.Info("Password reset successfully",
		zap.String("user_id", token.UserID.String()),
		zap.String("token_id", token.ID),
		zap.String("event", "password_reset_success"),
	)
	s.events.Record(ctx, events.New(ctx, events.PasswordResetCompleted, token.UserID, ""))

	return &ResultResponse{Success: true, Message: PasswordUpdatedMessage}, nil
}
