package handler

import (
	"encoding/csv"
	"fmt"
	"time"

	"training-portal/internal/model"

	"github.com/gin-gonic/gin"
)

type ExportHandler struct{}

func NewExportHandler() *ExportHandler {
	return &ExportHandler{}
}

func writeCSVHeaders(c *gin.Context, name string) *csv.Writer {
	filename := fmt.Sprintf("%s_%s.csv", name, time.Now().Format("20060102_150405"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Transfer-Encoding", "binary")

	// BOM so Excel detects UTF-8.
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	return csv.NewWriter(c.Writer)
}

// ExportApplications streams applications as CSV.
func (h *ExportHandler) ExportApplications(c *gin.Context) {
	status := c.Query("status")
	sessionID := c.Query("session_id")

	query := model.DB.Model(&model.Application{}).
		Preload("Owner").Preload("Organization").Preload("Session.Program")

	if status != "" {
		query = query.Where("status = ?", status)
	}
	if sessionID != "" {
		query = query.Where("session_id = ?", sessionID)
	}

	var apps []model.Application
	query.Order("created_at DESC").Limit(10000).Find(&apps)

	writer := writeCSVHeaders(c, "applications")
	defer writer.Flush()

	writer.Write([]string{
		"Application ID", "Program", "Session Start", "Owner", "Owner Email",
		"Organization", "Mode", "Status", "Roster Size", "Fee", "Currency", "Submitted",
	})

	for _, app := range apps {
		program := ""
		sessionStart := ""
		if app.Session != nil {
			sessionStart = app.Session.StartsAt.Format("2006-01-02")
			if app.Session.Program != nil {
				program = app.Session.Program.Title
			}
		}
		ownerName, ownerEmail := "", ""
		if app.Owner != nil {
			ownerName = app.Owner.Name
			ownerEmail = app.Owner.Email
		}
		orgName := ""
		if app.Organization != nil {
			orgName = app.Organization.Name
		}

		writer.Write([]string{
			app.ID,
			program,
			sessionStart,
			ownerName,
			ownerEmail,
			orgName,
			string(app.Mode),
			string(app.Status),
			fmt.Sprintf("%d", app.RosterSize()),
			fmt.Sprintf("%d", app.Fee),
			app.Currency,
			app.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
}

// ExportParticipants streams roster entries as CSV, optionally for one
// session.
func (h *ExportHandler) ExportParticipants(c *gin.Context) {
	sessionID := c.Query("session_id")

	query := model.DB.Model(&model.ApplicationParticipant{}).Preload("Application.Session.Program")

	if sessionID != "" {
		query = query.Joins("JOIN applications ON applications.id = application_participants.application_id").
			Where("applications.session_id = ?", sessionID)
	}

	var participants []model.ApplicationParticipant
	query.Order("application_participants.created_at DESC").Limit(10000).Find(&participants)

	writer := writeCSVHeaders(c, "participants")
	defer writer.Flush()

	writer.Write([]string{
		"Name", "Email", "National ID", "Citizenship", "Attendance",
		"Program", "Application ID", "Application Status",
	})

	for _, p := range participants {
		program := ""
		appStatus := ""
		if p.Application != nil {
			appStatus = string(p.Application.Status)
			if p.Application.Session != nil && p.Application.Session.Program != nil {
				program = p.Application.Session.Program.Title
			}
		}
		attendance := "no"
		if p.Attendance {
			attendance = "yes"
		}

		writer.Write([]string{
			p.Name,
			p.Email,
			p.NationalID,
			string(p.Citizenship),
			attendance,
			program,
			p.ApplicationID,
			appStatus,
		})
	}
}

// ExportPayments streams payments as CSV.
func (h *ExportHandler) ExportPayments(c *gin.Context) {
	status := c.Query("status")

	query := model.DB.Model(&model.Payment{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var payments []model.Payment
	query.Order("created_at DESC").Limit(10000).Find(&payments)

	writer := writeCSVHeaders(c, "payments")
	defer writer.Flush()

	writer.Write([]string{
		"Invoice Ref", "Application ID", "Amount", "Amount Paid", "Currency",
		"Status", "Payee", "Payee Email", "Created",
	})

	for _, p := range payments {
		writer.Write([]string{
			p.InvoiceRef,
			p.ApplicationID,
			fmt.Sprintf("%d", p.Amount),
			fmt.Sprintf("%d", p.AmountPaid),
			p.Currency,
			string(p.Status),
			p.PayeeName,
			p.PayeeEmail,
			p.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
}

// ExportAuditLogs streams the audit trail as CSV within a date range.
func (h *ExportHandler) ExportAuditLogs(c *gin.Context) {
	startDate := c.Query("start_date")
	endDate := c.Query("end_date")

	query := model.DB.Model(&model.AuditLog{})

	if startDate != "" {
		query = query.Where("created_at >= ?", startDate+" 00:00:00")
	}
	if endDate != "" {
		query = query.Where("created_at <= ?", endDate+" 23:59:59")
	}

	var logs []model.AuditLog
	query.Order("created_at DESC").Limit(10000).Find(&logs)

	writer := writeCSVHeaders(c, "audit_logs")
	defer writer.Flush()

	writer.Write([]string{
		"Time", "User Email", "Action", "Resource", "Resource ID", "IP Address", "Status Code", "Duration (ms)",
	})

	for _, entry := range logs {
		writer.Write([]string{
			entry.CreatedAt.Format("2006-01-02 15:04:05"),
			entry.UserEmail,
			entry.Action,
			entry.Resource,
			entry.ResourceID,
			entry.IPAddress,
			fmt.Sprintf("%d", entry.ResponseCode),
			fmt.Sprintf("%d", entry.Duration),
		})
	}
}
