package handler

import (
	"time"

	"training-portal/internal/model"
	"training-portal/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct{}

func NewSessionHandler() *SessionHandler {
	return &SessionHandler{}
}

// SessionRequest schedules or edits a training session.
type SessionRequest struct {
	ProgramID      string `json:"program_id" binding:"required"`
	StartsAt       string `json:"starts_at" binding:"required"`
	EndsAt         string `json:"ends_at" binding:"required"`
	Venue          string `json:"venue"`
	Mode           string `json:"mode" binding:"required,oneof=online on_premise both_modes"`
	CitizenFee     int64  `json:"citizen_fee" binding:"min=0"`
	EastAfricanFee int64  `json:"east_african_fee" binding:"min=0"`
	GlobalFee      int64  `json:"global_fee" binding:"min=0"`
	Currency       string `json:"currency"`
	OnlineSlots    int    `json:"online_slots" binding:"min=0"`
	OnPremiseSlots int    `json:"on_premise_slots" binding:"min=0"`
}

func (r *SessionRequest) window() (start, end time.Time, ok bool) {
	start, err := time.Parse(time.RFC3339, r.StartsAt)
	if err != nil {
		return start, end, false
	}
	end, err = time.Parse(time.RFC3339, r.EndsAt)
	if err != nil || !end.After(start) {
		return start, end, false
	}
	return start, end, true
}

// Create schedules a session under a program.
func (h *SessionHandler) Create(c *gin.Context) {
	var req SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	start, end, ok := req.window()
	if !ok {
		response.BadRequest(c, "Invalid session window: starts_at and ends_at must be RFC3339 and end after start")
		return
	}

	var program model.Program
	if err := model.DB.First(&program, "id = ?", req.ProgramID).Error; err != nil {
		response.NotFound(c, "Program not found")
		return
	}

	mode := model.DeliveryMode(req.Mode)
	if mode == model.DeliveryOnPremise && req.Venue == "" {
		response.BadRequest(c, "An on-premise session needs a venue")
		return
	}

	session := model.TrainingSession{
		ProgramID:      req.ProgramID,
		StartsAt:       start,
		EndsAt:         end,
		Venue:          req.Venue,
		Mode:           mode,
		CitizenFee:     req.CitizenFee,
		EastAfricanFee: req.EastAfricanFee,
		GlobalFee:      req.GlobalFee,
		OnlineSlots:    req.OnlineSlots,
		OnPremiseSlots: req.OnPremiseSlots,
	}
	if req.Currency != "" {
		session.Currency = req.Currency
	}

	if err := model.DB.Create(&session).Error; err != nil {
		response.ServerError(c, "Failed to create session")
		return
	}

	response.Success(c, session)
}

// List returns sessions, optionally filtered by program and time.
// Public; the catalogue shows upcoming sessions by default.
func (h *SessionHandler) List(c *gin.Context) {
	page, pageSize := parsePage(c)

	query := model.DB.Model(&model.TrainingSession{}).Preload("Program")

	if programID := c.Query("program_id"); programID != "" {
		query = query.Where("program_id = ?", programID)
	}
	if c.Query("include_past") != "true" {
		query = query.Where("ends_at > ?", time.Now())
	}

	var total int64
	query.Count(&total)

	var sessions []model.TrainingSession
	query.Offset((page - 1) * pageSize).Limit(pageSize).Order("starts_at ASC").Find(&sessions)

	response.SuccessPage(c, sessions, total, page, pageSize)
}

// Get returns one session with its program.
func (h *SessionHandler) Get(c *gin.Context) {
	id := c.Param("id")

	var session model.TrainingSession
	if err := model.DB.Preload("Program").First(&session, "id = ?", id).Error; err != nil {
		response.NotFound(c, "Session not found")
		return
	}

	response.Success(c, session)
}

// Update edits a session. Capacity cannot be lowered below what is
// already taken.
func (h *SessionHandler) Update(c *gin.Context) {
	id := c.Param("id")

	var req SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	start, end, ok := req.window()
	if !ok {
		response.BadRequest(c, "Invalid session window: starts_at and ends_at must be RFC3339 and end after start")
		return
	}

	var session model.TrainingSession
	if err := model.DB.First(&session, "id = ?", id).Error; err != nil {
		response.NotFound(c, "Session not found")
		return
	}

	if req.OnlineSlots < session.OnlineSlotsTaken || req.OnPremiseSlots < session.OnPremiseSlotsTaken {
		response.Error(c, 400, "Cannot reduce capacity below the slots already taken")
		return
	}

	mode := model.DeliveryMode(req.Mode)
	if mode == model.DeliveryOnPremise && req.Venue == "" {
		response.BadRequest(c, "An on-premise session needs a venue")
		return
	}

	session.StartsAt = start
	session.EndsAt = end
	session.Venue = req.Venue
	session.Mode = mode
	session.CitizenFee = req.CitizenFee
	session.EastAfricanFee = req.EastAfricanFee
	session.GlobalFee = req.GlobalFee
	session.OnlineSlots = req.OnlineSlots
	session.OnPremiseSlots = req.OnPremiseSlots
	if req.Currency != "" {
		session.Currency = req.Currency
	}

	if err := model.DB.Save(&session).Error; err != nil {
		response.ServerError(c, "Failed to update session")
		return
	}

	response.SuccessWithMessage(c, "Session updated", nil)
}

// Delete removes a session that has no applications.
func (h *SessionHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	var session model.TrainingSession
	if err := model.DB.First(&session, "id = ?", id).Error; err != nil {
		response.NotFound(c, "Session not found")
		return
	}

	var applications int64
	model.DB.Model(&model.Application{}).Where("session_id = ?", id).Count(&applications)
	if applications > 0 {
		response.Error(c, 400, "Cannot delete a session with applications")
		return
	}

	if err := model.DB.Delete(&session).Error; err != nil {
		response.ServerError(c, "Failed to delete session")
		return
	}

	response.SuccessWithMessage(c, "Session deleted", nil)
}
