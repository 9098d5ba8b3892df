package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/virtualstage/backlot/internal/models"
	"github.com/virtualstage/backlot/pkg/crypto"
	apperrors "github.com/virtualstage/backlot/pkg/errors"
	"github.com/virtualstage/backlot/pkg/mail"
)

const (
	defaultResetExpiry     = time.Hour
	defaultResetTokenBytes = 32
)

// ErrResetTokenInvalid covers unknown, expired and consumed reset tokens so
// responses never reveal which case was hit.
var ErrResetTokenInvalid = apperrors.New("RESET_TOKEN_INVALID", "Invalid or expired reset token", http.StatusBadRequest)

// PasswordResetOption customises PasswordResetService behaviour.
type PasswordResetOption func(*PasswordResetService)

// WithResetBaseURL configures the frontend URL used in reset links.
func WithResetBaseURL(url string) PasswordResetOption {
	return func(s *PasswordResetService) {
		s.baseURL = strings.TrimRight(url, "/")
	}
}

// WithResetExpiry overrides the reset token lifetime.
func WithResetExpiry(d time.Duration) PasswordResetOption {
	return func(s *PasswordResetService) {
		if d > 0 {
			s.expiry = d
		}
	}
}

// WithResetClock injects a custom time source.
func WithResetClock(clock func() time.Time) PasswordResetOption {
	return func(s *PasswordResetService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// PasswordResetService manages forgot-password tokens.
type PasswordResetService struct {
	db      *gorm.DB
	mailer  mail.Mailer
	baseURL string
	expiry  time.Duration
	now     func() time.Time
}

// NewPasswordResetService constructs a PasswordResetService.
func NewPasswordResetService(db *gorm.DB, mailer mail.Mailer, opts ...PasswordResetOption) (*PasswordResetService, error) {
	if db == nil {
		return nil, errors.New("password reset service: db is required")
	}

	service := &PasswordResetService{
		db:     db,
		mailer: mailer,
		expiry: defaultResetExpiry,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(service)
	}

	return service, nil
}

// RequestReset issues a reset token for the account matching the email and
// dispatches the reset link. Unknown addresses return no error and no token
// so the endpoint cannot be used to probe for accounts.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) (string, error) {
	ctx = ensureContext(ctx)

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", apperrors.NewBadRequest("email is required")
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("LOWER(email) = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("password reset service: find user: %w", err)
	}

	token, err := crypto.GenerateToken(defaultResetTokenBytes)
	if err != nil {
		return "", fmt.Errorf("password reset service: generate token: %w", err)
	}

	now := s.now()
	reset := models.PasswordResetToken{
		UserID:    user.ID,
		Token:     resetTokenHash(token),
		ExpiresAt: now.Add(s.expiry),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", user.ID).
			Delete(&models.PasswordResetToken{}).Error; err != nil {
			return fmt.Errorf("password reset service: cleanup existing: %w", err)
		}
		if err := tx.Create(&reset).Error; err != nil {
			return fmt.Errorf("password reset service: create token: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	if s.mailer != nil {
		message := mail.Message{
			To:      []string{user.Email},
			Subject: "Reset your Backlot password",
			Body:    s.resetBody(token),
		}
		if mailErr := s.mailer.Send(ctx, message); mailErr != nil && !errors.Is(mailErr, mail.ErrSMTPDisabled) {
			return "", fmt.Errorf("password reset service: send email: %w", mailErr)
		}
	}

	return token, nil
}

// ResetPassword consumes a reset token and sets the new password. Every
// session of the user is revoked afterwards.
func (s *PasswordResetService) ResetPassword(ctx context.Context, token, newPassword string) error {
	ctx = ensureContext(ctx)

	token = strings.TrimSpace(token)
	if token == "" {
		return apperrors.NewBadRequest("token is required")
	}
	if newPassword == "" {
		return apperrors.NewBadRequest("new password is required")
	}

	var reset models.PasswordResetToken
	if err := s.db.WithContext(ctx).
		Where("token = ?", resetTokenHash(token)).
		First(&reset).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrResetTokenInvalid
		}
		return fmt.Errorf("password reset service: find token: %w", err)
	}

	now := s.now()
	if reset.UsedAt != nil || reset.ExpiresAt.Before(now) {
		return ErrResetTokenInvalid
	}

	hashed, err := crypto.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("password reset service: hash password: %w", err)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.User{}).
			Where("id = ?", reset.UserID).
			Updates(map[string]any{
				"password":        hashed,
				"failed_attempts": 0,
				"locked_until":    nil,
			})
		if result.Error != nil {
			return fmt.Errorf("password reset service: update password: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrResetTokenInvalid
		}

		if err := tx.Model(&models.PasswordResetToken{}).
			Where("id = ?", reset.ID).
			Update("used_at", now).Error; err != nil {
			return fmt.Errorf("password reset service: mark used: %w", err)
		}

		if err := tx.Model(&models.Session{}).
			Where("user_id = ? AND revoked_at IS NULL", reset.UserID).
			Update("revoked_at", now).Error; err != nil {
			return fmt.Errorf("password reset service: revoke sessions: %w", err)
		}
		return nil
	})
}

// CleanupExpired removes expired and consumed reset tokens.
func (s *PasswordResetService) CleanupExpired(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)

	result := s.db.WithContext(ctx).
		Where("expires_at < ? OR used_at IS NOT NULL", s.now()).
		Delete(&models.PasswordResetToken{})
	if result.Error != nil {
		return 0, fmt.Errorf("password reset service: cleanup tokens: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (s *PasswordResetService) resetBody(token string) string {
	link := token
	if s.baseURL != "" {
		link = fmt.Sprintf("%s/reset-password/%s/", s.baseURL, token)
	}
	return fmt.Sprintf("Hello,\n\nA password reset was requested for your Backlot account. Use the link below to choose a new password:\n%s\n\nThe link expires in one hour. If you did not request a reset, you can ignore this email.\n", link)
}

func resetTokenHash(token string) string {
	digest := sha256.Sum256([]byte(token))
	return hex.EncodeToString(digest[:])
}
