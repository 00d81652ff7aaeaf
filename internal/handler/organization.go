package handler

import (
	"training-portal/internal/middleware"
	"training-portal/internal/model"
	"training-portal/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type OrganizationHandler struct{}

func NewOrganizationHandler() *OrganizationHandler {
	return &OrganizationHandler{}
}

// CreateOrganizationRequest registers a new organization; the creator
// becomes its owner.
type CreateOrganizationRequest struct {
	Name    string `json:"name" binding:"required"`
	County  string `json:"county"`
	Address string `json:"address"`
	Email   string `json:"email" binding:"omitempty,email"`
	Phone   string `json:"phone"`
}

// Create registers an organization and makes the caller its owner in
// one transaction.
func (h *OrganizationHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	var existing model.Organization
	if err := model.DB.Where("name = ?", req.Name).First(&existing).Error; err == nil {
		response.Error(c, 400, "An organization with this name already exists")
		return
	}

	org := model.Organization{
		Name:    req.Name,
		County:  req.County,
		Address: req.Address,
		Email:   req.Email,
		Phone:   req.Phone,
	}

	tx := model.DB.Begin()

	if err := tx.Create(&org).Error; err != nil {
		tx.Rollback()
		response.ServerError(c, "Failed to create organization")
		return
	}

	owner := model.OrganizationUser{
		OrganizationID: org.ID,
		UserID:         userID,
		Role:           model.OrgRoleOwner,
	}
	if err := tx.Create(&owner).Error; err != nil {
		tx.Rollback()
		response.ServerError(c, "Failed to create organization")
		return
	}

	tx.Commit()

	response.Success(c, gin.H{
		"id":   org.ID,
		"name": org.Name,
	})
}

// List returns the organizations the caller belongs to; admins see all.
func (h *OrganizationHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)
	role := middleware.GetUserRole(c)

	page, pageSize := parsePage(c)

	query := model.DB.Model(&model.Organization{})
	if role != string(model.UserRoleAdmin) {
		query = query.Joins("JOIN organization_users ON organization_users.organization_id = organizations.id").
			Where("organization_users.user_id = ?", userID)
	}

	var total int64
	query.Count(&total)

	var orgs []model.Organization
	query.Offset((page - 1) * pageSize).Limit(pageSize).Order("organizations.created_at DESC").Find(&orgs)

	response.SuccessPage(c, orgs, total, page, pageSize)
}

// Get returns one organization with its members.
func (h *OrganizationHandler) Get(c *gin.Context) {
	orgID := c.Param("id")

	var org model.Organization
	err := model.DB.Preload("Members.User").First(&org, "id = ?", orgID).Error
	if err != nil {
		response.NotFound(c, "Organization not found")
		return
	}

	members := make([]gin.H, 0, len(org.Members))
	for _, m := range org.Members {
		entry := gin.H{
			"id":        m.ID,
			"user_id":   m.UserID,
			"role":      m.Role,
			"joined_at": m.CreatedAt,
		}
		if m.User != nil {
			entry["name"] = m.User.Name
			entry["email"] = m.User.Email
		}
		members = append(members, entry)
	}

	response.Success(c, gin.H{
		"id":      org.ID,
		"name":    org.Name,
		"county":  org.County,
		"address": org.Address,
		"email":   org.Email,
		"phone":   org.Phone,
		"members": members,
	})
}

// UpdateOrganizationRequest edits organization contact details.
type UpdateOrganizationRequest struct {
	Name    string `json:"name"`
	County  string `json:"county"`
	Address string `json:"address"`
	Email   string `json:"email" binding:"omitempty,email"`
	Phone   string `json:"phone"`
}

// Update edits an organization. Owners and admins only.
func (h *OrganizationHandler) Update(c *gin.Context) {
	orgID := c.Param("id")
	actor := currentActor(c)

	var req UpdateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	var org model.Organization
	if err := model.DB.First(&org, "id = ?", orgID).Error; err != nil {
		response.NotFound(c, "Organization not found")
		return
	}

	if !actor.IsAdmin() && !isOrgOwner(orgID, actor.ID) {
		response.Forbidden(c, "Only an organization owner can update it")
		return
	}

	if req.Name != "" && req.Name != org.Name {
		var existing model.Organization
		if err := model.DB.Where("name = ? AND id != ?", req.Name, orgID).First(&existing).Error; err == nil {
			response.Error(c, 400, "An organization with this name already exists")
			return
		}
		org.Name = req.Name
	}
	if req.County != "" {
		org.County = req.County
	}
	if req.Address != "" {
		org.Address = req.Address
	}
	if req.Email != "" {
		org.Email = req.Email
	}
	if req.Phone != "" {
		org.Phone = req.Phone
	}

	if err := model.DB.Save(&org).Error; err != nil {
		response.ServerError(c, "Failed to update organization")
		return
	}

	response.SuccessWithMessage(c, "Organization updated", nil)
}

// RemoveMember deletes a membership. Owners and admins only; the last
// owner cannot be removed.
func (h *OrganizationHandler) RemoveMember(c *gin.Context) {
	orgID := c.Param("id")
	memberID := c.Param("member_id")
	actor := currentActor(c)

	if !actor.IsAdmin() && !isOrgOwner(orgID, actor.ID) {
		response.Forbidden(c, "Only an organization owner can remove members")
		return
	}

	var membership model.OrganizationUser
	if err := model.DB.Where("id = ? AND organization_id = ?", memberID, orgID).First(&membership).Error; err != nil {
		response.NotFound(c, "Member not found")
		return
	}

	if membership.Role == model.OrgRoleOwner {
		var owners int64
		model.DB.Model(&model.OrganizationUser{}).
			Where("organization_id = ? AND role = ?", orgID, model.OrgRoleOwner).
			Count(&owners)
		if owners <= 1 {
			response.Error(c, 400, "Cannot remove the only owner")
			return
		}
	}

	if err := model.DB.Delete(&membership).Error; err != nil {
		response.ServerError(c, "Failed to remove member")
		return
	}

	response.SuccessWithMessage(c, "Member removed", nil)
}

func isOrgOwner(orgID, userID string) bool {
	var membership model.OrganizationUser
	err := model.DB.Where("organization_id = ? AND user_id = ? AND role = ?",
		orgID, userID, model.OrgRoleOwner).First(&membership).Error
	return err == nil
}
