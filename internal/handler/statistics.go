package handler

import (
	"time"

	"training-portal/internal/model"
	"training-portal/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type StatisticsHandler struct{}

func NewStatisticsHandler() *StatisticsHandler {
	return &StatisticsHandler{}
}

// Dashboard returns the admin landing-page counters.
func (h *StatisticsHandler) Dashboard(c *gin.Context) {
	var totalApplications int64
	model.DB.Model(&model.Application{}).Count(&totalApplications)

	var pendingApplications int64
	model.DB.Model(&model.Application{}).Where("status = ?", model.ApplicationStatusPending).Count(&pendingApplications)

	var approvedApplications int64
	model.DB.Model(&model.Application{}).Where("status = ?", model.ApplicationStatusApproved).Count(&approvedApplications)

	var completedApplications int64
	model.DB.Model(&model.Application{}).Where("status = ?", model.ApplicationStatusCompleted).Count(&completedApplications)

	var rejectedApplications int64
	model.DB.Model(&model.Application{}).Where("status = ?", model.ApplicationStatusRejected).Count(&rejectedApplications)

	var totalUsers int64
	model.DB.Model(&model.User{}).Count(&totalUsers)

	var totalOrganizations int64
	model.DB.Model(&model.Organization{}).Count(&totalOrganizations)

	var totalPrograms int64
	model.DB.Model(&model.Program{}).Count(&totalPrograms)

	var upcomingSessions int64
	model.DB.Model(&model.TrainingSession{}).Where("starts_at > ?", time.Now()).Count(&upcomingSessions)

	var pendingCompletions int64
	model.DB.Model(&model.CompletedProgram{}).Where("status = ?", model.CompletionStatusPending).Count(&pendingCompletions)

	var settledPayments int64
	model.DB.Model(&model.Payment{}).Where("status = ?", model.PaymentStatusSettled).Count(&settledPayments)

	var revenue int64
	model.DB.Model(&model.Payment{}).Where("status = ?", model.PaymentStatusSettled).
		Select("COALESCE(SUM(amount_paid), 0)").Scan(&revenue)

	// Today's movement.
	today := time.Now().Truncate(24 * time.Hour)

	var todayUsers int64
	model.DB.Model(&model.User{}).Where("created_at >= ?", today).Count(&todayUsers)

	var todayApplications int64
	model.DB.Model(&model.Application{}).Where("created_at >= ?", today).Count(&todayApplications)

	response.Success(c, gin.H{
		"applications": gin.H{
			"total":     totalApplications,
			"pending":   pendingApplications,
			"approved":  approvedApplications,
			"completed": completedApplications,
			"rejected":  rejectedApplications,
			"today_new": todayApplications,
		},
		"users": gin.H{
			"total":     totalUsers,
			"today_new": todayUsers,
		},
		"organizations": gin.H{
			"total": totalOrganizations,
		},
		"programs": gin.H{
			"total":             totalPrograms,
			"upcoming_sessions": upcomingSessions,
		},
		"completions": gin.H{
			"pending": pendingCompletions,
		},
		"payments": gin.H{
			"settled": settledPayments,
			"revenue": revenue,
		},
	})
}

// ApplicationTrend returns daily application counts for the last 30 days.
func (h *StatisticsHandler) ApplicationTrend(c *gin.Context) {
	sessionID := c.Query("session_id")

	type DayCount struct {
		Date  string `json:"date"`
		Count int64  `json:"count"`
	}

	var results []DayCount

	query := model.DB.Model(&model.Application{}).
		Select("DATE(created_at) as date, COUNT(*) as count").
		Where("created_at >= ?", time.Now().AddDate(0, 0, -30)).
		Group("DATE(created_at)").
		Order("date ASC")

	if sessionID != "" {
		query = query.Where("session_id = ?", sessionID)
	}

	query.Scan(&results)

	response.Success(c, results)
}

// SessionStatistics returns enrollment figures for one session.
func (h *StatisticsHandler) SessionStatistics(c *gin.Context) {
	sessionID := c.Param("id")

	var session model.TrainingSession
	if err := model.DB.Preload("Program").First(&session, "id = ?", sessionID).Error; err != nil {
		response.NotFound(c, "Session not found")
		return
	}

	var applications int64
	model.DB.Model(&model.Application{}).Where("session_id = ?", sessionID).Count(&applications)

	var participants int64
	model.DB.Model(&model.ApplicationParticipant{}).
		Joins("JOIN applications ON applications.id = application_participants.application_id").
		Where("applications.session_id = ?", sessionID).Count(&participants)

	var confirmed int64
	model.DB.Model(&model.ApplicationParticipant{}).
		Joins("JOIN applications ON applications.id = application_participants.application_id").
		Where("applications.session_id = ? AND application_participants.attendance = ?", sessionID, true).
		Count(&confirmed)

	title := ""
	if session.Program != nil {
		title = session.Program.Title
	}

	response.Success(c, gin.H{
		"session": gin.H{
			"id":        session.ID,
			"program":   title,
			"starts_at": session.StartsAt,
			"ends_at":   session.EndsAt,
		},
		"slots": gin.H{
			"online":           session.OnlineSlots,
			"online_taken":     session.OnlineSlotsTaken,
			"on_premise":       session.OnPremiseSlots,
			"on_premise_taken": session.OnPremiseSlotsTaken,
		},
		"applications": applications,
		"participants": gin.H{
			"total":     participants,
			"confirmed": confirmed,
		},
	})
}

// CitizenshipDistribution breaks participants down by fee tier.
func (h *StatisticsHandler) CitizenshipDistribution(c *gin.Context) {
	type TierCount struct {
		Citizenship string `json:"citizenship"`
		Count       int64  `json:"count"`
	}

	var results []TierCount

	model.DB.Model(&model.ApplicationParticipant{}).
		Select("citizenship, COUNT(*) as count").
		Group("citizenship").
		Scan(&results)

	response.Success(c, results)
}
