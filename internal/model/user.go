package model

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User is a portal account. Password is empty for OAuth-only accounts.
type User struct {
	BaseModel
	Email            string      `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`
	Password         string      `gorm:"type:varchar(255)" json:"-"`
	Name             string      `gorm:"type:varchar(100);not null" json:"name"`
	Phone            string      `gorm:"type:varchar(20)" json:"phone"`
	Avatar           string      `gorm:"type:varchar(500)" json:"avatar"`
	NationalID       string      `gorm:"type:varchar(30)" json:"national_id"`
	Role             UserRole    `gorm:"type:varchar(20);default:user" json:"role"`
	Citizenship      Citizenship `gorm:"type:varchar(20);default:citizen" json:"citizenship"`
	EmailVerifiedAt  *time.Time  `json:"email_verified_at"`
	TwoFactorEnabled bool        `gorm:"default:false" json:"two_factor_enabled"`
	LastLoginAt      *time.Time  `json:"last_login_at"`
	// Associations
	Organizations []OrganizationUser `gorm:"foreignKey:UserID" json:"organizations,omitempty"`
}

type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleUser  UserRole = "user"
)

// Citizenship determines the fee tier and slot pool of a participant.
type Citizenship string

const (
	CitizenshipCitizen     Citizenship = "citizen"
	CitizenshipEastAfrican Citizenship = "east_african"
	CitizenshipGlobal      Citizenship = "global"
)

func (User) TableName() string {
	return "users"
}

// SetPassword hashes and stores the password.
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword verifies a candidate password against the stored hash.
func (u *User) CheckPassword(password string) bool {
	if u.Password == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// EmailVerified reports whether the account completed email verification.
func (u *User) EmailVerified() bool {
	return u.EmailVerifiedAt != nil
}
