package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"training-portal/internal/config"
	"training-portal/internal/model"
	"training-portal/internal/pkg/utils"

	"gorm.io/gorm"
)

// txTimeout bounds every multi-statement write.
const txTimeout = 20 * time.Second

// InviteService implements the organization-invite lifecycle:
// CREATED -> (RESENT)* -> ACCEPTED | DECLINED | REVOKED | EXPIRED.
type InviteService struct {
	db     *gorm.DB
	mailer Mailer
}

func NewInviteService(db *gorm.DB, mailer Mailer) *InviteService {
	return &InviteService{db: db, mailer: mailer}
}

var (
	ErrInviteNotAuthorized = errors.New("Not authorized to send invites for this organization")
	ErrAlreadyMember       = errors.New("This email already belongs to a member of the organization")
	ErrInvitePending       = errors.New("An invite for this email is already pending")
)

// Send creates an invite for email to join the organization and mails
// the call to action. Only an organization owner or a global admin may
// send; duplicates against current members and unexpired invites are
// rejected.
func (s *InviteService) Send(actor Actor, orgID, email string) (string, error) {
	var org model.Organization
	if err := s.db.First(&org, "id = ?", orgID).Error; err != nil {
		return "", ErrNotFound
	}

	if !canManageOrg(s.db, actor, orgID) {
		return "", ErrInviteNotAuthorized
	}

	// Reject if the address already belongs to a member.
	var memberCount int64
	s.db.Model(&model.OrganizationUser{}).
		Joins("JOIN users ON users.id = organization_users.user_id").
		Where("organization_users.organization_id = ? AND users.email = ?", orgID, email).
		Count(&memberCount)
	if memberCount > 0 {
		return "", ErrAlreadyMember
	}

	// Reject if an unexpired invite is already outstanding.
	var inviteCount int64
	s.db.Model(&model.OrganizationInvite{}).
		Where("organization_id = ? AND email = ? AND expires_at > ?", orgID, email, time.Now()).
		Count(&inviteCount)
	if inviteCount > 0 {
		return "", ErrInvitePending
	}

	invite := model.OrganizationInvite{
		OrganizationID: orgID,
		Email:          email,
		Token:          utils.GenerateInviteToken(),
		InvitedBy:      actor.ID,
		ExpiresAt:      time.Now().AddDate(0, 0, config.Get().Security.InviteExpiryDays),
	}
	if err := s.db.Create(&invite).Error; err != nil {
		return "", fmt.Errorf("create invite: %w", err)
	}

	if err := s.sendInviteEmail(&invite, org.Name); err != nil {
		log.Printf("[invite] email to %s failed: %v", utils.MaskEmail(email), err)
		return "Invite created, but the email could not be delivered", nil
	}

	return "Invite sent to " + email, nil
}

// Resend extends the expiry of the selected invites and re-sends their
// emails. A failed email does not roll back the expiry bump that
// already succeeded; failures are reported in aggregate.
func (s *InviteService) Resend(actor Actor, orgID string, inviteIDs []string) (string, error) {
	var org model.Organization
	if err := s.db.First(&org, "id = ?", orgID).Error; err != nil {
		return "", ErrNotFound
	}

	if !canManageOrg(s.db, actor, orgID) {
		return "", ErrInviteNotAuthorized
	}

	var invites []model.OrganizationInvite
	s.db.Where("organization_id = ? AND id IN ?", orgID, inviteIDs).Find(&invites)
	if len(invites) == 0 {
		return "", ErrNotFound
	}

	expiry := time.Now().AddDate(0, 0, config.Get().Security.InviteExpiryDays)

	var failed []string
	for _, invite := range invites {
		if err := s.db.Model(&invite).Update("expires_at", expiry).Error; err != nil {
			failed = append(failed, invite.Email)
			continue
		}
		invite.ExpiresAt = expiry
		if err := s.sendInviteEmail(&invite, org.Name); err != nil {
			log.Printf("[invite] resend to %s failed: %v", utils.MaskEmail(invite.Email), err)
			failed = append(failed, invite.Email)
		}
	}

	if len(failed) > 0 {
		return fmt.Sprintf("Resent %d invites; delivery failed for: %s",
			len(invites)-len(failed), strings.Join(failed, ", ")), nil
	}
	return fmt.Sprintf("Resent %d invites", len(invites)), nil
}

// Respond accepts or declines an invite on behalf of the invitee. The
// session email must equal the invite email exactly (case sensitive)
// and the invite must not be expired. Accepting creates the membership
// and deletes the invite in one transaction; declining only deletes.
func (s *InviteService) Respond(actor Actor, inviteID string, accepted bool) (string, error) {
	var invite model.OrganizationInvite
	if err := s.db.Preload("Organization").First(&invite, "id = ?", inviteID).Error; err != nil {
		return "", ErrNotFound
	}

	if invite.Email != actor.Email {
		return "", ErrEmailMismatch
	}

	if invite.Expired() {
		return "", ErrExpired
	}

	ctx, cancel := context.WithTimeout(context.Background(), txTimeout)
	defer cancel()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if accepted {
			membership := model.OrganizationUser{
				OrganizationID: invite.OrganizationID,
				UserID:         actor.ID,
				Role:           model.OrgRoleMember,
			}
			if err := tx.Create(&membership).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&invite).Error
	})
	if err != nil {
		return "", fmt.Errorf("respond to invite: %w", err)
	}

	s.notifyFirstOwner(&invite, actor, accepted)

	if accepted {
		return "You have joined the organization", nil
	}
	return "Invite declined", nil
}

// Revoke bulk-deletes invites by id, scoped to the organization. Ids
// belonging to other organizations are silently excluded.
func (s *InviteService) Revoke(actor Actor, orgID string, inviteIDs []string) (string, error) {
	if !canManageOrg(s.db, actor, orgID) {
		return "", ErrInviteNotAuthorized
	}

	res := s.db.Where("organization_id = ? AND id IN ?", orgID, inviteIDs).
		Delete(&model.OrganizationInvite{})
	if res.Error != nil {
		return "", fmt.Errorf("revoke invites: %w", res.Error)
	}

	return fmt.Sprintf("Revoked %d invites", res.RowsAffected), nil
}

// Validate looks up an invite by its emailed token. Expiry is left to
// the caller so the landing page can distinguish expired from missing.
func (s *InviteService) Validate(token string) (*model.OrganizationInvite, error) {
	var invite model.OrganizationInvite
	err := s.db.Preload("Organization").First(&invite, "token = ?", token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &invite, nil
}

// sendInviteEmail routes registered invitees to login and everyone else
// to registration.
func (s *InviteService) sendInviteEmail(invite *model.OrganizationInvite, orgName string) error {
	baseURL := config.Get().Server.BaseURL

	var existing model.User
	registered := s.db.Where("email = ?", invite.Email).First(&existing).Error == nil

	actionURL := fmt.Sprintf("%s/register?invite=%s", baseURL, invite.Token)
	if registered {
		actionURL = fmt.Sprintf("%s/login?invite=%s", baseURL, invite.Token)
	}

	body := fmt.Sprintf("<p>You have been invited to join <strong>%s</strong> on the training portal.</p>"+
		"<p>The invite expires on %s.</p>",
		orgName, invite.ExpiresAt.Format("2 Jan 2006"))

	html, err := RenderEmail("Organization Invite", body, actionURL, "Respond to Invite")
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Invitation to join %s", orgName)
	return s.mailer.SendEmail(invite.Email, subject, html)
}

// notifyFirstOwner tells the first owner on record about the response.
// Delivery is best effort; the membership change is already committed.
func (s *InviteService) notifyFirstOwner(invite *model.OrganizationInvite, actor Actor, accepted bool) {
	var owner model.OrganizationUser
	err := s.db.Preload("User").
		Where("organization_id = ? AND role = ?", invite.OrganizationID, model.OrgRoleOwner).
		Order("created_at ASC").First(&owner).Error
	if err != nil || owner.User == nil {
		return
	}

	orgName := ""
	if invite.Organization != nil {
		orgName = invite.Organization.Name
	}

	verb := "declined"
	if accepted {
		verb = "accepted"
	}

	body := fmt.Sprintf("<p><strong>%s</strong> has %s the invitation to join %s.</p>", invite.Email, verb, orgName)
	html, err := RenderEmail("Invite Response", body, "", "")
	if err != nil {
		return
	}

	subject := fmt.Sprintf("Invite %s: %s", verb, invite.Email)
	if err := s.mailer.SendEmail(owner.User.Email, subject, html); err != nil {
		log.Printf("[invite] owner notification failed: %v", err)
	}
}
