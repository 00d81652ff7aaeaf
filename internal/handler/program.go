package handler

import (
	"training-portal/internal/model"
	"training-portal/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type ProgramHandler struct{}

func NewProgramHandler() *ProgramHandler {
	return &ProgramHandler{}
}

// ProgramRequest creates or updates a program.
type ProgramRequest struct {
	Code            string   `json:"code" binding:"required"`
	Title           string   `json:"title" binding:"required"`
	Summary         string   `json:"summary"`
	Image           string   `json:"image"`
	PrerequisiteIDs []string `json:"prerequisite_ids"`
}

// Create registers a program. Code and title are globally unique.
func (h *ProgramHandler) Create(c *gin.Context) {
	var req ProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	var existing model.Program
	if err := model.DB.Where("code = ? OR title = ?", req.Code, req.Title).First(&existing).Error; err == nil {
		response.Error(c, 400, "A program with this code or title already exists")
		return
	}

	program := model.Program{
		Code:    req.Code,
		Title:   req.Title,
		Summary: req.Summary,
		Image:   req.Image,
	}

	if err := model.DB.Create(&program).Error; err != nil {
		response.ServerError(c, "Failed to create program")
		return
	}

	if len(req.PrerequisiteIDs) > 0 {
		if err := h.setPrerequisites(&program, req.PrerequisiteIDs); err != nil {
			response.ServerError(c, "Failed to link prerequisites")
			return
		}
	}

	response.Success(c, gin.H{
		"id":    program.ID,
		"code":  program.Code,
		"title": program.Title,
	})
}

// List returns the program catalogue. Public.
func (h *ProgramHandler) List(c *gin.Context) {
	page, pageSize := parsePage(c)
	search := c.Query("search")

	query := model.DB.Model(&model.Program{})
	if search != "" {
		query = query.Where("title LIKE ? OR code LIKE ?", "%"+search+"%", "%"+search+"%")
	}

	var total int64
	query.Count(&total)

	var programs []model.Program
	query.Offset((page - 1) * pageSize).Limit(pageSize).Order("title ASC").Find(&programs)

	response.SuccessPage(c, programs, total, page, pageSize)
}

// Get returns one program with topics, prerequisites and sessions.
func (h *ProgramHandler) Get(c *gin.Context) {
	id := c.Param("id")

	var program model.Program
	err := model.DB.Preload("Topics").Preload("Prerequisites").Preload("Sessions").
		First(&program, "id = ?", id).Error
	if err != nil {
		response.NotFound(c, "Program not found")
		return
	}

	response.Success(c, program)
}

// Update edits a program.
func (h *ProgramHandler) Update(c *gin.Context) {
	id := c.Param("id")

	var req ProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	var program model.Program
	if err := model.DB.First(&program, "id = ?", id).Error; err != nil {
		response.NotFound(c, "Program not found")
		return
	}

	var existing model.Program
	if err := model.DB.Where("(code = ? OR title = ?) AND id != ?", req.Code, req.Title, id).
		First(&existing).Error; err == nil {
		response.Error(c, 400, "A program with this code or title already exists")
		return
	}

	program.Code = req.Code
	program.Title = req.Title
	program.Summary = req.Summary
	if req.Image != "" {
		program.Image = req.Image
	}

	if err := model.DB.Save(&program).Error; err != nil {
		response.ServerError(c, "Failed to update program")
		return
	}

	if req.PrerequisiteIDs != nil {
		if err := h.setPrerequisites(&program, req.PrerequisiteIDs); err != nil {
			response.ServerError(c, "Failed to link prerequisites")
			return
		}
	}

	response.SuccessWithMessage(c, "Program updated", nil)
}

// Delete removes a program with no sessions.
func (h *ProgramHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	var program model.Program
	if err := model.DB.First(&program, "id = ?", id).Error; err != nil {
		response.NotFound(c, "Program not found")
		return
	}

	var sessions int64
	model.DB.Model(&model.TrainingSession{}).Where("program_id = ?", id).Count(&sessions)
	if sessions > 0 {
		response.Error(c, 400, "Cannot delete a program with scheduled sessions")
		return
	}

	if err := model.DB.Delete(&program).Error; err != nil {
		response.ServerError(c, "Failed to delete program")
		return
	}

	response.SuccessWithMessage(c, "Program deleted", nil)
}

// TopicRequest adds a syllabus topic to a program.
type TopicRequest struct {
	Title   string `json:"title" binding:"required"`
	Summary string `json:"summary"`
}

// AddTopic attaches a topic to a program.
func (h *ProgramHandler) AddTopic(c *gin.Context) {
	programID := c.Param("id")

	var req TopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	var program model.Program
	if err := model.DB.First(&program, "id = ?", programID).Error; err != nil {
		response.NotFound(c, "Program not found")
		return
	}

	topic := model.Topic{
		ProgramID: programID,
		Title:     req.Title,
		Summary:   req.Summary,
	}
	if err := model.DB.Create(&topic).Error; err != nil {
		response.ServerError(c, "Failed to add topic")
		return
	}

	response.Success(c, topic)
}

func (h *ProgramHandler) setPrerequisites(program *model.Program, ids []string) error {
	var prereqs []*model.Program
	if len(ids) > 0 {
		if err := model.DB.Where("id IN ?", ids).Find(&prereqs).Error; err != nil {
			return err
		}
	}
	return model.DB.Model(program).Association("Prerequisites").Replace(prereqs)
}
