package handler

import (
	"training-portal/internal/middleware"
	"training-portal/internal/model"
	"training-portal/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct{}

func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// List returns portal accounts with filters. Admin only.
func (h *UserHandler) List(c *gin.Context) {
	page, pageSize := parsePage(c)
	search := c.Query("search")
	role := c.Query("role")

	query := model.DB.Model(&model.User{})

	if search != "" {
		query = query.Where("name LIKE ? OR email LIKE ?", "%"+search+"%", "%"+search+"%")
	}
	if role != "" {
		query = query.Where("role = ?", role)
	}

	var total int64
	query.Count(&total)

	var users []model.User
	query.Offset((page - 1) * pageSize).Limit(pageSize).Order("created_at DESC").Find(&users)

	response.SuccessPage(c, users, total, page, pageSize)
}

// Get returns one account with its memberships.
func (h *UserHandler) Get(c *gin.Context) {
	id := c.Param("id")

	var user model.User
	if err := model.DB.Preload("Organizations.Organization").First(&user, "id = ?", id).Error; err != nil {
		response.NotFound(c, "User not found")
		return
	}

	response.Success(c, user)
}

// UpdateRoleRequest changes an account's portal role.
type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=user admin"`
}

// UpdateRole changes a user's role. Admins cannot demote themselves, so
// the portal always keeps at least one administrator.
func (h *UserHandler) UpdateRole(c *gin.Context) {
	id := c.Param("id")

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	if id == middleware.GetUserID(c) {
		response.Error(c, 400, "You cannot change your own role")
		return
	}

	var user model.User
	if err := model.DB.First(&user, "id = ?", id).Error; err != nil {
		response.NotFound(c, "User not found")
		return
	}

	if err := model.DB.Model(&user).Update("role", model.UserRole(req.Role)).Error; err != nil {
		response.ServerError(c, "Failed to update role")
		return
	}

	response.SuccessWithMessage(c, "Role updated", nil)
}
