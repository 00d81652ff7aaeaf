package service

import (
	"errors"
	"time"

	"training-portal/internal/config"
	"training-portal/internal/model"
	"training-portal/internal/pkg/utils"

	"gorm.io/gorm"
)

// TokenService manages the single-use credentials behind email
// verification, password reset and two-factor login. Every token is
// (email, token, expiry): consumed on successful validation, rejected
// when expired even if it otherwise matches.
type TokenService struct {
	db *gorm.DB
}

func NewTokenService(db *gorm.DB) *TokenService {
	return &TokenService{db: db}
}

func (s *TokenService) expiry() time.Time {
	return time.Now().Add(time.Duration(config.Get().Security.TokenExpiryMinutes) * time.Minute)
}

// IssueVerification replaces any outstanding verification token for the
// address with a fresh one.
func (s *TokenService) IssueVerification(email string) (*model.VerificationToken, error) {
	s.db.Where("email = ?", email).Delete(&model.VerificationToken{})

	token := model.VerificationToken{
		Email:     email,
		Token:     utils.GenerateUUID(),
		ExpiresAt: s.expiry(),
	}
	if err := s.db.Create(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

// ConsumeVerification validates and deletes a verification token,
// returning the verified email.
func (s *TokenService) ConsumeVerification(tokenValue string) (string, error) {
	var token model.VerificationToken
	if err := s.db.First(&token, "token = ?", tokenValue).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidToken
		}
		return "", err
	}
	if token.Expired() {
		return "", ErrTokenExpired
	}
	if err := s.db.Delete(&token).Error; err != nil {
		return "", err
	}
	return token.Email, nil
}

// IssuePasswordReset replaces any outstanding reset token for the
// address with a fresh one.
func (s *TokenService) IssuePasswordReset(email string) (*model.PasswordResetToken, error) {
	s.db.Where("email = ?", email).Delete(&model.PasswordResetToken{})

	token := model.PasswordResetToken{
		Email:     email,
		Token:     utils.GenerateUUID(),
		ExpiresAt: s.expiry(),
	}
	if err := s.db.Create(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

// ConsumePasswordReset validates and deletes a reset token, returning
// the email it authorizes.
func (s *TokenService) ConsumePasswordReset(tokenValue string) (string, error) {
	var token model.PasswordResetToken
	if err := s.db.First(&token, "token = ?", tokenValue).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidToken
		}
		return "", err
	}
	if token.Expired() {
		return "", ErrTokenExpired
	}
	if err := s.db.Delete(&token).Error; err != nil {
		return "", err
	}
	return token.Email, nil
}

// IssueTwoFactor replaces any outstanding second-factor code for the
// address with a fresh six-digit code.
func (s *TokenService) IssueTwoFactor(email string) (*model.TwoFactorToken, error) {
	s.db.Where("email = ?", email).Delete(&model.TwoFactorToken{})

	token := model.TwoFactorToken{
		Email:     email,
		Token:     utils.GenerateOTP(),
		ExpiresAt: s.expiry(),
	}
	if err := s.db.Create(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

// ConsumeTwoFactor validates and deletes a second-factor code.
func (s *TokenService) ConsumeTwoFactor(email, code string) error {
	var token model.TwoFactorToken
	if err := s.db.First(&token, "email = ? AND token = ?", email, code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvalidToken
		}
		return err
	}
	if token.Expired() {
		return ErrTokenExpired
	}
	return s.db.Delete(&token).Error
}

// ConfirmTwoFactor marks the user as having passed the second factor.
func (s *TokenService) ConfirmTwoFactor(userID string) error {
	s.db.Where("user_id = ?", userID).Delete(&model.TwoFactorConfirmation{})
	return s.db.Create(&model.TwoFactorConfirmation{UserID: userID}).Error
}

// ConsumeTwoFactorConfirmation reports whether a confirmation exists
// and removes it.
func (s *TokenService) ConsumeTwoFactorConfirmation(userID string) bool {
	var confirmation model.TwoFactorConfirmation
	if err := s.db.First(&confirmation, "user_id = ?", userID).Error; err != nil {
		return false
	}
	s.db.Delete(&confirmation)
	return true
}
