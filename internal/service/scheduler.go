package service

import (
	"fmt"
	"log"
	"time"

	"training-portal/internal/model"
)

// SchedulerService runs background maintenance: purging expired invites
// and tokens, and reminding applicants of upcoming sessions.
type SchedulerService struct {
	emailService *EmailService
}

func NewSchedulerService() *SchedulerService {
	return &SchedulerService{
		emailService: NewEmailService(),
	}
}

// Start launches the background loops.
func (s *SchedulerService) Start() {
	// Purge expired credentials nightly.
	go s.runDaily(2, 0, s.PurgeExpired)

	// Remind applicants of sessions starting soon.
	go s.runDaily(7, 0, s.SendSessionReminders)

	log.Println("scheduler started")
}

func (s *SchedulerService) runDaily(hour, minute int, task func()) {
	for {
		now := time.Now()
		next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
		if next.Before(now) {
			next = next.Add(24 * time.Hour)
		}
		time.Sleep(next.Sub(now))
		task()
	}
}

// PurgeExpired removes invites and single-use tokens past their expiry.
func (s *SchedulerService) PurgeExpired() {
	now := time.Now()

	res := model.DB.Where("expires_at < ?", now).Delete(&model.OrganizationInvite{})
	if res.RowsAffected > 0 {
		log.Printf("purged %d expired invites", res.RowsAffected)
	}

	model.DB.Where("expires_at < ?", now).Delete(&model.VerificationToken{})
	model.DB.Where("expires_at < ?", now).Delete(&model.PasswordResetToken{})
	model.DB.Where("expires_at < ?", now).Delete(&model.TwoFactorToken{})
}

// SendSessionReminders emails the owner of every approved application
// whose session starts in the configured lead times.
func (s *SchedulerService) SendSessionReminders() {
	reminderDays := []int{7, 3, 1}
	for _, days := range reminderDays {
		s.sendRemindersForDays(days)
	}
}

func (s *SchedulerService) sendRemindersForDays(days int) {
	now := time.Now()
	targetStart := now.AddDate(0, 0, days)
	targetEnd := targetStart.Add(24 * time.Hour)

	var sessions []model.TrainingSession
	model.DB.Preload("Program").
		Where("starts_at >= ? AND starts_at < ?", targetStart, targetEnd).
		Find(&sessions)

	for _, session := range sessions {
		var apps []model.Application
		model.DB.Preload("Owner").
			Where("session_id = ? AND status = ?", session.ID, model.ApplicationStatusApproved).
			Find(&apps)

		for _, app := range apps {
			if app.Owner == nil {
				continue
			}
			s.sendSessionReminder(&session, app.Owner, days)
		}
	}
}

func (s *SchedulerService) sendSessionReminder(session *model.TrainingSession, owner *model.User, days int) {
	title := ""
	if session.Program != nil {
		title = session.Program.Title
	}

	body := fmt.Sprintf("<p>Your training <strong>%s</strong> starts on %s.</p>",
		title, session.StartsAt.Format("2 Jan 2006"))
	if session.Venue != "" && session.Mode != model.DeliveryOnline {
		body += fmt.Sprintf("<p>Venue: %s</p>", session.Venue)
	}

	html, err := RenderEmail("Upcoming Training", body, "", "")
	if err != nil {
		return
	}

	subject := fmt.Sprintf("Reminder: %s starts in %d day(s)", title, days)
	if err := s.emailService.SendEmail(owner.Email, subject, html); err != nil {
		log.Printf("session reminder to %s failed: %v", owner.Email, err)
	}
}
