package handler

import (
	"training-portal/internal/model"
	"training-portal/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct{}

func NewAuditHandler() *AuditHandler {
	return &AuditHandler{}
}

// List returns audit-log entries with filters.
func (h *AuditHandler) List(c *gin.Context) {
	page, pageSize := parsePage(c)
	userID := c.Query("user_id")
	action := c.Query("action")
	resource := c.Query("resource")
	startDate := c.Query("start_date")
	endDate := c.Query("end_date")

	query := model.DB.Model(&model.AuditLog{})

	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if action != "" {
		query = query.Where("action = ?", action)
	}
	if resource != "" {
		query = query.Where("resource = ?", resource)
	}
	if startDate != "" {
		query = query.Where("created_at >= ?", startDate+" 00:00:00")
	}
	if endDate != "" {
		query = query.Where("created_at <= ?", endDate+" 23:59:59")
	}

	var total int64
	query.Count(&total)

	var logs []model.AuditLog
	query.Offset((page - 1) * pageSize).Limit(pageSize).Order("created_at DESC").Find(&logs)

	response.SuccessPage(c, logs, total, page, pageSize)
}

// Get returns one audit-log entry.
func (h *AuditHandler) Get(c *gin.Context) {
	id := c.Param("id")

	var entry model.AuditLog
	if err := model.DB.First(&entry, "id = ?", id).Error; err != nil {
		response.NotFound(c, "Log entry not found")
		return
	}

	response.Success(c, entry)
}

// GetStats aggregates recent audit activity.
func (h *AuditHandler) GetStats(c *gin.Context) {
	days := c.DefaultQuery("days", "7")

	var actionStats []struct {
		Action string `json:"action"`
		Count  int64  `json:"count"`
	}
	model.DB.Model(&model.AuditLog{}).
		Select("action, count(*) as count").
		Where("created_at >= DATE_SUB(NOW(), INTERVAL ? DAY)", days).
		Group("action").
		Find(&actionStats)

	var resourceStats []struct {
		Resource string `json:"resource"`
		Count    int64  `json:"count"`
	}
	model.DB.Model(&model.AuditLog{}).
		Select("resource, count(*) as count").
		Where("created_at >= DATE_SUB(NOW(), INTERVAL ? DAY)", days).
		Group("resource").
		Find(&resourceStats)

	var userStats []struct {
		UserEmail string `json:"user_email"`
		Count     int64  `json:"count"`
	}
	model.DB.Model(&model.AuditLog{}).
		Select("user_email, count(*) as count").
		Where("created_at >= DATE_SUB(NOW(), INTERVAL ? DAY)", days).
		Where("user_email != ''").
		Group("user_email").
		Order("count DESC").
		Limit(10).
		Find(&userStats)

	response.Success(c, gin.H{
		"action_stats":   actionStats,
		"resource_stats": resourceStats,
		"user_stats":     userStats,
	})
}
