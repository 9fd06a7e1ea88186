package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"portfolio-cms/internal/domain/user"
	"portfolio-cms/internal/infrastructure/database/postgres/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ResetTokenRepository implements user.ResetTokenRepository
type ResetTokenRepository struct {
	db *DB
}

func NewResetTokenRepository(db *DB) *ResetTokenRepository {
	return &ResetTokenRepository{db: db}
}

func (r *ResetTokenRepository) Create(ctx context.Context, token *user.PasswordResetToken) error {
	if err := r.db.DB.WithContext(ctx).Create(toResetTokenModel(token)).Error; err != nil {
		return fmt.Errorf("failed to create password reset token: %w", err)
	}
	return nil
}

func (r *ResetTokenRepository) FindValid(ctx context.Context, tokenHash string, now time.Time) (*user.PasswordResetToken, error) {
	var dbModel models.PasswordResetTokenModel
	err := r.db.DB.WithContext(ctx).
		Where("token = ? AND used = ? AND expires_at > ?", tokenHash, false, now).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, user.ErrResetTokenInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get password reset token: %w", err)
	}

	return toResetTokenEntity(&dbModel), nil
}

func (r *ResetTokenRepository) CountSince(ctx context.Context, userID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	err := r.db.DB.WithContext(ctx).Model(&models.PasswordResetTokenModel{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count password reset tokens: %w", err)
	}
	return count, nil
}

// Redeem consumes the token and writes the new credential in one transaction.
// The conditional update on used/expires_at lets exactly one concurrent caller win;
// the losers see zero affected rows once the winner commits.
func (r *ResetTokenRepository) Redeem(ctx context.Context, tokenHash string, credential user.Credential, now time.Time) (*user.PasswordResetToken, error) {
	var redeemed *user.PasswordResetToken

	err := r.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var dbModel models.PasswordResetTokenModel
		err := tx.Where("token = ? AND used = ? AND expires_at > ?", tokenHash, false, now).
			First(&dbModel).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return user.ErrResetTokenInvalid
		}
		if err != nil {
			return fmt.Errorf("failed to get password reset token: %w", err)
		}

		result := tx.Model(&models.PasswordResetTokenModel{}).
			Where("id = ? AND used = ? AND expires_at > ?", dbModel.ID, false, now).
			Update("used", true)
		if result.Error != nil {
			return fmt.Errorf("failed to mark password reset token as used: %w", result.Error)
		}
		if result.RowsAffected != 1 {
			return user.ErrResetTokenInvalid
		}

		result = tx.Model(&models.UserModel{}).
			Where("id = ?", dbModel.UserID).
			Updates(map[string]interface{}{
				"password":   credential.Encode(),
				"updated_at": now,
			})
		if result.Error != nil {
			return fmt.Errorf("failed to update password: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return user.ErrResetTokenInvalid
		}

		dbModel.Used = true
		redeemed = toResetTokenEntity(&dbModel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return redeemed, nil
}

func toResetTokenModel(t *user.PasswordResetToken) *models.PasswordResetTokenModel {
	return &models.PasswordResetTokenModel{
		ID:        t.ID,
		UserID:    t.UserID,
		Token:     t.TokenHash,
		ExpiresAt: t.ExpiresAt,
		Used:      t.Used,
		CreatedAt: t.CreatedAt,
	}
}

func toResetTokenEntity(m *models.PasswordResetTokenModel) *user.PasswordResetToken {
	return &user.PasswordResetToken{
		ID:        m.ID,
		UserID:    m.UserID,
		TokenHash: m.Token,
		ExpiresAt: m.ExpiresAt,
		Used:      m.Used,
		CreatedAt: m.CreatedAt,
	}
}
