package model

import (
	"time"
)

// Single-use credential rows. Each is (email, token, expiry), deleted
// immediately after successful validation; expired tokens are rejected
// even when they otherwise match.

// VerificationToken confirms ownership of a registration email.
type VerificationToken struct {
	BaseModel
	Email     string    `gorm:"type:varchar(100);not null;index" json:"email"`
	Token     string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"token"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
}

func (VerificationToken) TableName() string {
	return "verification_tokens"
}

func (t *VerificationToken) Expired() bool {
	return time.Now().After(t.ExpiresAt)
}

// PasswordResetToken authorizes a single password change.
type PasswordResetToken struct {
	BaseModel
	Email     string    `gorm:"type:varchar(100);not null;index" json:"email"`
	Token     string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"token"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
}

func (PasswordResetToken) TableName() string {
	return "password_reset_tokens"
}

func (t *PasswordResetToken) Expired() bool {
	return time.Now().After(t.ExpiresAt)
}

// TwoFactorToken is the emailed second-factor code.
type TwoFactorToken struct {
	BaseModel
	Email     string    `gorm:"type:varchar(100);not null;index" json:"email"`
	Token     string    `gorm:"type:varchar(100);not null" json:"token"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
}

func (TwoFactorToken) TableName() string {
	return "two_factor_tokens"
}

func (t *TwoFactorToken) Expired() bool {
	return time.Now().After(t.ExpiresAt)
}

// TwoFactorConfirmation marks a session as having passed the second
// factor. Consumed on the next credential login.
type TwoFactorConfirmation struct {
	BaseModel
	UserID string `gorm:"type:varchar(36);uniqueIndex;not null" json:"user_id"`
}

func (TwoFactorConfirmation) TableName() string {
	return "two_factor_confirmations"
}
