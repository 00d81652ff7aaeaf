package handler

import (
	"training-portal/internal/config"
	"training-portal/internal/model"
	"training-portal/internal/pkg/response"
	"training-portal/internal/service"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	payments *service.PaymentService
}

func NewPaymentHandler() *PaymentHandler {
	return &PaymentHandler{
		payments: service.NewPaymentService(
			model.DB,
			service.NewEmailService(),
			service.NewDocsService(),
			service.NewStorageService(),
		),
	}
}

// CallbackRequest is the payment provider's settlement report.
type CallbackRequest struct {
	InvoiceRef string `json:"invoice_ref" binding:"required"`
	Amount     int64  `json:"amount" binding:"min=0"`
	Status     string `json:"status" binding:"required,oneof=settled failed"`
}

// Callback receives the provider webhook for one application. The
// request authenticates with the shared client id header, not a user
// session.
func (h *PaymentHandler) Callback(c *gin.Context) {
	cfg := config.Get()
	if cfg.Payment.APIClientID == "" || c.GetHeader("X-Api-Client") != cfg.Payment.APIClientID {
		response.Unauthorized(c, "Unknown payment client")
		return
	}

	var req CallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	msg, err := h.payments.Settle(service.SettlementInput{
		ApplicationID: c.Param("application_id"),
		InvoiceRef:    req.InvoiceRef,
		Amount:        req.Amount,
		Failed:        req.Status == "failed",
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.SuccessWithMessage(c, msg, nil)
}

// List returns payments. Admins see all with optional filters; other
// callers see payments on their own applications.
func (h *PaymentHandler) List(c *gin.Context) {
	actor := currentActor(c)
	page, pageSize := parsePage(c)

	query := model.DB.Model(&model.Payment{}).Preload("Application")

	if actor.IsAdmin() {
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}
		if appID := c.Query("application_id"); appID != "" {
			query = query.Where("application_id = ?", appID)
		}
	} else {
		query = query.Joins("JOIN applications ON applications.id = payments.application_id").
			Where("applications.owner_id = ?", actor.ID)
	}

	var total int64
	query.Count(&total)

	var payments []model.Payment
	query.Offset((page - 1) * pageSize).Limit(pageSize).Order("payments.created_at DESC").Find(&payments)

	response.SuccessPage(c, payments, total, page, pageSize)
}
