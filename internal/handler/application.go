package handler

import (
	"training-portal/internal/model"
	"training-portal/internal/pkg/response"
	"training-portal/internal/service"

	"github.com/gin-gonic/gin"
)

type ApplicationHandler struct {
	applications *service.ApplicationService
}

func NewApplicationHandler() *ApplicationHandler {
	return &ApplicationHandler{
		applications: service.NewApplicationService(
			model.DB,
			service.NewEmailService(),
			service.NewDocsService(),
			service.NewStorageService(),
		),
	}
}

// ParticipantRequest is one roster entry on a submission.
type ParticipantRequest struct {
	UserID      *string `json:"user_id"`
	Name        string  `json:"name" binding:"required"`
	Email       string  `json:"email" binding:"omitempty,email"`
	NationalID  string  `json:"national_id"`
	Citizenship string  `json:"citizenship" binding:"required,oneof=citizen east_african global"`
}

// SubmitApplicationRequest enrolls a participant roster into a session.
type SubmitApplicationRequest struct {
	OrganizationID   *string              `json:"organization_id"`
	SessionID        string               `json:"session_id" binding:"required"`
	Mode             string               `json:"mode" binding:"required,oneof=online on_premise"`
	CitizenSlots     int                  `json:"citizen_slots" binding:"min=0"`
	EastAfricanSlots int                  `json:"east_african_slots" binding:"min=0"`
	GlobalSlots      int                  `json:"global_slots" binding:"min=0"`
	Participants     []ParticipantRequest `json:"participants" binding:"required,min=1,dive"`
}

// Submit creates a pending application.
func (h *ApplicationHandler) Submit(c *gin.Context) {
	var req SubmitApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	in := service.SubmitInput{
		OrganizationID:   req.OrganizationID,
		SessionID:        req.SessionID,
		Mode:             model.DeliveryMode(req.Mode),
		CitizenSlots:     req.CitizenSlots,
		EastAfricanSlots: req.EastAfricanSlots,
		GlobalSlots:      req.GlobalSlots,
	}
	for _, p := range req.Participants {
		in.Participants = append(in.Participants, service.ParticipantInput{
			UserID:      p.UserID,
			Name:        p.Name,
			Email:       p.Email,
			NationalID:  p.NationalID,
			Citizenship: model.Citizenship(p.Citizenship),
		})
	}

	app, err := h.applications.Submit(currentActor(c), in)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, gin.H{
		"id":       app.ID,
		"status":   app.Status,
		"fee":      app.Fee,
		"currency": app.Currency,
	})
}

// List returns the caller's applications; admins see all and can filter
// by status, session or organization.
func (h *ApplicationHandler) List(c *gin.Context) {
	actor := currentActor(c)
	page, pageSize := parsePage(c)

	query := model.DB.Model(&model.Application{}).
		Preload("Session.Program").Preload("Organization")

	if actor.IsAdmin() {
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}
		if sessionID := c.Query("session_id"); sessionID != "" {
			query = query.Where("session_id = ?", sessionID)
		}
		if orgID := c.Query("organization_id"); orgID != "" {
			query = query.Where("organization_id = ?", orgID)
		}
	} else {
		query = query.Where("owner_id = ?", actor.ID)
	}

	var total int64
	query.Count(&total)

	var apps []model.Application
	query.Offset((page - 1) * pageSize).Limit(pageSize).Order("created_at DESC").Find(&apps)

	response.SuccessPage(c, apps, total, page, pageSize)
}

// Get returns the view of one application the caller is entitled to.
func (h *ApplicationHandler) Get(c *gin.Context) {
	proj, err := h.applications.Fetch(currentActor(c), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, proj)
}

// Approve decides a pending application in the applicant's favor,
// generating and mailing the offer letter and pro-forma invoice.
func (h *ApplicationHandler) Approve(c *gin.Context) {
	msg, err := h.applications.Approve(currentActor(c), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.SuccessWithMessage(c, msg, nil)
}

// RejectApplicationRequest optionally carries a reason for the applicant.
type RejectApplicationRequest struct {
	Message string `json:"message"`
}

// Reject declines a pending application.
func (h *ApplicationHandler) Reject(c *gin.Context) {
	var req RejectApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	msg, err := h.applications.Reject(currentActor(c), c.Param("id"), req.Message)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.SuccessWithMessage(c, msg, nil)
}

// Delete withdraws an application, notifying the roster before any state
// changes.
func (h *ApplicationHandler) Delete(c *gin.Context) {
	msg, err := h.applications.Delete(currentActor(c), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.SuccessWithMessage(c, msg, nil)
}

// Pay returns the payment provider payload for an application along
// with its pending invoices.
func (h *ApplicationHandler) Pay(c *gin.Context) {
	result, err := h.applications.Pay(currentActor(c), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, result)
}
