package handler

import (
	"fmt"
	"io"
	"path/filepath"

	"training-portal/internal/model"
	"training-portal/internal/pkg/response"
	"training-portal/internal/pkg/utils"
	"training-portal/internal/service"

	"github.com/gin-gonic/gin"
)

type CompletionHandler struct {
	completions *service.CompletionService
	storage     service.Storage
}

func NewCompletionHandler() *CompletionHandler {
	return &CompletionHandler{
		completions: service.NewCompletionService(model.DB, service.NewEmailService()),
		storage:     service.NewStorageService(),
	}
}

// Submit records a completion claim. The form is multipart: the
// participant and program ids plus at least one evidence file, stored
// before the claim is created.
func (h *CompletionHandler) Submit(c *gin.Context) {
	participantID := c.PostForm("participant_id")
	programID := c.PostForm("program_id")
	if participantID == "" || programID == "" {
		response.BadRequest(c, "participant_id and program_id are required")
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	files := form.File["evidence"]
	if len(files) == 0 {
		respondServiceError(c, service.ErrNoEvidence)
		return
	}

	folder := utils.GenerateUUID()
	evidence := make([]model.CompletionEvidence, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			response.BadRequest(c, "Could not read evidence file: "+fh.Filename)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			response.BadRequest(c, "Could not read evidence file: "+fh.Filename)
			return
		}

		name := filepath.Base(fh.Filename)
		url, err := h.storage.Upload(data, fmt.Sprintf("completions/%s/%s", folder, name))
		if err != nil {
			response.ServerError(c, "Failed to store evidence")
			return
		}
		evidence = append(evidence, model.CompletionEvidence{
			FileName: name,
			FileURL:  url,
		})
	}

	claim, err := h.completions.Submit(currentActor(c), service.CompletionInput{
		ParticipantID: participantID,
		ProgramID:     programID,
		Evidence:      evidence,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, gin.H{
		"id":     claim.ID,
		"status": claim.Status,
	})
}

// RespondCompletionRequest bulk-decides completion claims.
type RespondCompletionRequest struct {
	IDs      []string `json:"ids" binding:"required,min=1"`
	Approved *bool    `json:"approved" binding:"required"`
	Message  string   `json:"message"`
}

// Respond approves or rejects the selected claims.
func (h *CompletionHandler) Respond(c *gin.Context) {
	var req RespondCompletionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	msg, err := h.completions.Respond(currentActor(c), req.IDs, *req.Approved, req.Message)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.SuccessWithMessage(c, msg, nil)
}

// Get returns one claim with its evidence.
func (h *CompletionHandler) Get(c *gin.Context) {
	claim, err := h.completions.Get(currentActor(c), c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, claim)
}

// List returns claims: admins see all with an optional status filter,
// everyone else sees claims they appear on.
func (h *CompletionHandler) List(c *gin.Context) {
	actor := currentActor(c)
	page, pageSize := parsePage(c)

	query := model.DB.Model(&model.CompletedProgram{}).
		Preload("Participant").Preload("Program")

	if actor.IsAdmin() {
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}
	} else {
		query = query.Where("participant_id = ? OR creator_id = ?", actor.ID, actor.ID)
	}

	var total int64
	query.Count(&total)

	var claims []model.CompletedProgram
	query.Offset((page - 1) * pageSize).Limit(pageSize).Order("created_at DESC").Find(&claims)

	response.SuccessPage(c, claims, total, page, pageSize)
}
