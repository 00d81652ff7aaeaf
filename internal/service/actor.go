package service

import (
	"errors"

	"training-portal/internal/model"

	"gorm.io/gorm"
)

// Actor is the resolved caller identity. Handlers build it from the
// session middleware and pass it into every lifecycle function, so the
// business rules never reach into ambient request state.
type Actor struct {
	ID    string
	Email string
	Role  model.UserRole
}

// IsAdmin reports whether the actor holds the global admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == model.UserRoleAdmin
}

// Lifecycle errors. Handlers map these onto HTTP responses; the
// messages are user-facing prose.
var (
	ErrNotAuthorized = errors.New("not authorized to perform this action")
	ErrNotFound      = errors.New("the requested record does not exist")
	ErrExpired       = errors.New("this invite has expired")
	ErrEmailMismatch = errors.New("this invite email does not match your email")
	ErrInvalidToken  = errors.New("invalid token")
	ErrTokenExpired  = errors.New("this token has expired")
)

// orgRole returns the actor's role in an organization, or "" when the
// actor is not a member.
func orgRole(db *gorm.DB, orgID, userID string) model.OrgRole {
	var membership model.OrganizationUser
	err := db.Where("organization_id = ? AND user_id = ?", orgID, userID).First(&membership).Error
	if err != nil {
		return ""
	}
	return membership.Role
}

// canManageOrg reports whether the actor may administer an organization:
// global admin or organization owner.
func canManageOrg(db *gorm.DB, actor Actor, orgID string) bool {
	if actor.IsAdmin() {
		return true
	}
	return orgRole(db, orgID, actor.ID) == model.OrgRoleOwner
}
