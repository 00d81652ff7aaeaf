package service

import (
	"errors"
	"fmt"
	"log"

	"training-portal/internal/model"

	"gorm.io/gorm"
)

// CompletionService implements completed-program review:
// PENDING -> APPROVED | REJECTED, terminal once decided.
type CompletionService struct {
	db     *gorm.DB
	mailer Mailer
}

func NewCompletionService(db *gorm.DB, mailer Mailer) *CompletionService {
	return &CompletionService{db: db, mailer: mailer}
}

var ErrNoEvidence = errors.New("at least one evidence attachment is required")

// Submit records a completion claim with its evidence attachments.
type CompletionInput struct {
	ParticipantID string
	ProgramID     string
	Evidence      []model.CompletionEvidence
}

func (s *CompletionService) Submit(actor Actor, in CompletionInput) (*model.CompletedProgram, error) {
	if in.ParticipantID != actor.ID && !actor.IsAdmin() {
		return nil, ErrNotAuthorized
	}

	if len(in.Evidence) == 0 {
		return nil, ErrNoEvidence
	}

	var program model.Program
	if err := s.db.First(&program, "id = ?", in.ProgramID).Error; err != nil {
		return nil, ErrNotFound
	}

	claim := model.CompletedProgram{
		ParticipantID: in.ParticipantID,
		CreatorID:     actor.ID,
		ProgramID:     in.ProgramID,
		Status:        model.CompletionStatusPending,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&claim).Error; err != nil {
			return err
		}
		for i := range in.Evidence {
			in.Evidence[i].CompletedProgramID = claim.ID
			if err := tx.Create(&in.Evidence[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("submit completion claim: %w", err)
	}

	return &claim, nil
}

// Respond bulk-decides completion claims. The status change is a single
// bulk update and therefore atomic; the per-record notification fan-out
// is best effort and never rolls the decision back.
func (s *CompletionService) Respond(actor Actor, ids []string, approved bool, message string) (string, error) {
	if !actor.IsAdmin() {
		return "", ErrNotAuthorized
	}

	status := model.CompletionStatusRejected
	if approved {
		status = model.CompletionStatusApproved
	}

	res := s.db.Model(&model.CompletedProgram{}).
		Where("id IN ?", ids).
		Update("status", status)
	if res.Error != nil {
		return "", fmt.Errorf("update completion claims: %w", res.Error)
	}

	var claims []model.CompletedProgram
	s.db.Preload("Participant").Preload("Creator").Preload("Program").
		Where("id IN ?", ids).Find(&claims)

	var failures int
	for _, claim := range claims {
		if err := s.notifyDecision(&claim, approved, message); err != nil {
			failures++
			log.Printf("[completion] notification for %s failed: %v", claim.ID, err)
		}
	}

	msg := fmt.Sprintf("Updated %d completion records to %s", res.RowsAffected, status)
	if failures > 0 {
		msg += fmt.Sprintf("; %d notifications could not be delivered", failures)
	}
	return msg, nil
}

// Get returns one claim. Allowed for admins, members of at least one
// organization, and the participant themself.
func (s *CompletionService) Get(actor Actor, id string) (*model.CompletedProgram, error) {
	var claim model.CompletedProgram
	err := s.db.Preload("Participant").Preload("Creator").Preload("Program").Preload("Evidence").
		First(&claim, "id = ?", id).Error
	if err != nil {
		return nil, ErrNotFound
	}

	if actor.IsAdmin() || claim.ParticipantID == actor.ID {
		return &claim, nil
	}

	var memberships int64
	s.db.Model(&model.OrganizationUser{}).Where("user_id = ?", actor.ID).Count(&memberships)
	if memberships > 0 {
		return &claim, nil
	}

	return nil, ErrNotAuthorized
}

// notifyDecision emails the participant and the creator individually.
func (s *CompletionService) notifyDecision(claim *model.CompletedProgram, approved bool, message string) error {
	verb := "rejected"
	heading := "Completion Rejected"
	if approved {
		verb = "approved"
		heading = "Completion Approved"
	}

	title := ""
	if claim.Program != nil {
		title = claim.Program.Title
	}

	body := fmt.Sprintf("<p>The completion record for <strong>%s</strong> has been %s.</p>", title, verb)
	if message != "" {
		body += fmt.Sprintf("<p>%s</p>", message)
	}
	html, err := RenderEmail(heading, body, "", "")
	if err != nil {
		return err
	}

	subject := fmt.Sprintf("Program completion %s: %s", verb, title)

	recipients := make(map[string]bool)
	if claim.Participant != nil {
		recipients[claim.Participant.Email] = true
	}
	if claim.Creator != nil {
		recipients[claim.Creator.Email] = true
	}

	for email := range recipients {
		if email == "" {
			continue
		}
		if err := s.mailer.SendEmail(email, subject, html); err != nil {
			return err
		}
	}
	return nil
}
