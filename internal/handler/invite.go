package handler

import (
	"training-portal/internal/model"
	"training-portal/internal/pkg/response"
	"training-portal/internal/service"

	"github.com/gin-gonic/gin"
)

type InviteHandler struct {
	invites *service.InviteService
}

func NewInviteHandler() *InviteHandler {
	return &InviteHandler{
		invites: service.NewInviteService(model.DB, service.NewEmailService()),
	}
}

// SendInviteRequest invites an email address into an organization.
type SendInviteRequest struct {
	Email          string `json:"email" binding:"required,email"`
	OrganizationID string `json:"organization_id" binding:"required"`
}

// Send creates and emails an organization invite.
func (h *InviteHandler) Send(c *gin.Context) {
	var req SendInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	msg, err := h.invites.Send(currentActor(c), req.OrganizationID, req.Email)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.SuccessWithMessage(c, msg, nil)
}

// BatchInviteRequest selects invites within one organization.
type BatchInviteRequest struct {
	OrganizationID string   `json:"organization_id" binding:"required"`
	InviteIDs      []string `json:"invite_ids" binding:"required,min=1"`
}

// Resend extends and re-emails the selected invites.
func (h *InviteHandler) Resend(c *gin.Context) {
	var req BatchInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	msg, err := h.invites.Resend(currentActor(c), req.OrganizationID, req.InviteIDs)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.SuccessWithMessage(c, msg, nil)
}

// Revoke bulk-deletes the selected invites.
func (h *InviteHandler) Revoke(c *gin.Context) {
	var req BatchInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	msg, err := h.invites.Revoke(currentActor(c), req.OrganizationID, req.InviteIDs)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.SuccessWithMessage(c, msg, nil)
}

// RespondInviteRequest accepts or declines an invite.
type RespondInviteRequest struct {
	ID       string `json:"id" binding:"required"`
	Accepted *bool  `json:"accepted" binding:"required"`
}

// Respond consumes an invite on behalf of the authenticated invitee.
func (h *InviteHandler) Respond(c *gin.Context) {
	var req RespondInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	msg, err := h.invites.Respond(currentActor(c), req.ID, *req.Accepted)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.SuccessWithMessage(c, msg, nil)
}

// Validate resolves an emailed invite token for the landing page. The
// page distinguishes valid, expired and missing invites.
func (h *InviteHandler) Validate(c *gin.Context) {
	token := c.Param("token")

	invite, err := h.invites.Validate(token)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	orgName := ""
	if invite.Organization != nil {
		orgName = invite.Organization.Name
	}

	response.Success(c, gin.H{
		"id":           invite.ID,
		"email":        invite.Email,
		"organization": orgName,
		"expires_at":   invite.ExpiresAt,
		"expired":      invite.Expired(),
	})
}

// List returns the outstanding invites of an organization.
func (h *InviteHandler) List(c *gin.Context) {
	orgID := c.Param("id")
	actor := currentActor(c)

	if !actor.IsAdmin() && !isOrgOwner(orgID, actor.ID) {
		response.Forbidden(c, "Not authorized to view invites for this organization")
		return
	}

	var invites []model.OrganizationInvite
	model.DB.Where("organization_id = ?", orgID).Order("created_at DESC").Find(&invites)

	result := make([]gin.H, 0, len(invites))
	for _, inv := range invites {
		result = append(result, gin.H{
			"id":         inv.ID,
			"email":      inv.Email,
			"expires_at": inv.ExpiresAt,
			"expired":    inv.Expired(),
			"created_at": inv.CreatedAt,
		})
	}

	response.Success(c, result)
}
