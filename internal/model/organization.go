package model

import (
	"time"
)

// Organization groups users that apply for training together.
type Organization struct {
	BaseModel
	Name    string `gorm:"type:varchar(150);uniqueIndex;not null" json:"name"`
	County  string `gorm:"type:varchar(100)" json:"county"`
	Address string `gorm:"type:varchar(255)" json:"address"`
	Email   string `gorm:"type:varchar(100)" json:"email"`
	Phone   string `gorm:"type:varchar(20)" json:"phone"`
	// Associations
	Members []OrganizationUser   `gorm:"foreignKey:OrganizationID" json:"members,omitempty"`
	Invites []OrganizationInvite `gorm:"foreignKey:OrganizationID" json:"invites,omitempty"`
}

func (Organization) TableName() string {
	return "organizations"
}

// OrganizationUser is the membership join table.
type OrganizationUser struct {
	BaseModel
	OrganizationID string  `gorm:"type:varchar(36);not null;uniqueIndex:idx_org_user" json:"organization_id"`
	UserID         string  `gorm:"type:varchar(36);not null;uniqueIndex:idx_org_user" json:"user_id"`
	Role           OrgRole `gorm:"type:varchar(20);default:member" json:"role"`
	// Associations
	Organization *Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	User         *User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

type OrgRole string

const (
	OrgRoleOwner  OrgRole = "owner"
	OrgRoleMember OrgRole = "member"
)

func (OrganizationUser) TableName() string {
	return "organization_users"
}

// OrganizationInvite is a time-boxed, single-use membership credential.
// It is deleted when the invitee accepts or declines; there is at most
// one usable invite per (email, organization).
type OrganizationInvite struct {
	BaseModel
	OrganizationID string    `gorm:"type:varchar(36);not null;index" json:"organization_id"`
	Email          string    `gorm:"type:varchar(100);not null;index" json:"email"`
	Token          string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"token"`
	InvitedBy      string    `gorm:"type:varchar(36);not null" json:"invited_by"`
	ExpiresAt      time.Time `gorm:"not null" json:"expires_at"`
	// Associations
	Organization *Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
}

func (OrganizationInvite) TableName() string {
	return "organization_invites"
}

// Expired reports whether the invite can no longer be accepted.
func (i *OrganizationInvite) Expired() bool {
	return time.Now().After(i.ExpiresAt)
}
