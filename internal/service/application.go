package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"training-portal/internal/model"
	"training-portal/internal/pkg/utils"

	"gorm.io/gorm"
)

// ApplicationService implements the application lifecycle:
// PENDING -> APPROVED -> COMPLETED, or PENDING -> REJECTED, with delete
// available to the owner or an admin from any non-terminal state.
type ApplicationService struct {
	db      *gorm.DB
	mailer  Mailer
	docs    DocsRenderer
	storage Storage
}

func NewApplicationService(db *gorm.DB, mailer Mailer, docs DocsRenderer, storage Storage) *ApplicationService {
	return &ApplicationService{db: db, mailer: mailer, docs: docs, storage: storage}
}

var (
	ErrNotOwner           = errors.New("You are not the owner of this application")
	ErrRosterMismatch     = errors.New("participant roster does not match the declared slot counts")
	ErrSessionMode        = errors.New("the selected delivery mode is not offered by this session")
	ErrNotPending         = errors.New("only pending applications can be decided")
	ErrTerminalState      = errors.New("completed or rejected applications cannot be deleted")
	ErrNoCurrency         = errors.New("this application has no currency set")
	ErrNoFee              = errors.New("this application has no fee set")
	ErrNoApplicationOwner = errors.New("this application has no owner on record")
)

// ParticipantInput is one roster entry on a submission.
type ParticipantInput struct {
	UserID      *string
	Name        string
	Email       string
	NationalID  string
	Citizenship model.Citizenship
}

// SubmitInput is the validated application form.
type SubmitInput struct {
	OrganizationID   *string
	SessionID        string
	Mode             model.DeliveryMode
	CitizenSlots     int
	EastAfricanSlots int
	GlobalSlots      int
	Participants     []ParticipantInput
}

// Submit creates a pending application, reserving session slots
// atomically so concurrent submissions cannot oversubscribe a session.
func (s *ApplicationService) Submit(actor Actor, in SubmitInput) (*model.Application, error) {
	var session model.TrainingSession
	if err := s.db.Preload("Program").First(&session, "id = ?", in.SessionID).Error; err != nil {
		return nil, ErrNotFound
	}

	if session.Mode != model.DeliveryBothModes && session.Mode != in.Mode {
		return nil, ErrSessionMode
	}

	if in.OrganizationID != nil && !actor.IsAdmin() {
		if orgRole(s.db, *in.OrganizationID, actor.ID) == "" {
			return nil, ErrNotAuthorized
		}
	}

	declared := in.CitizenSlots + in.EastAfricanSlots + in.GlobalSlots
	if declared == 0 || declared != len(in.Participants) {
		return nil, ErrRosterMismatch
	}

	fee := int64(in.CitizenSlots)*session.CitizenFee +
		int64(in.EastAfricanSlots)*session.EastAfricanFee +
		int64(in.GlobalSlots)*session.GlobalFee

	app := model.Application{
		OwnerID:          actor.ID,
		OrganizationID:   in.OrganizationID,
		SessionID:        session.ID,
		Status:           model.ApplicationStatusPending,
		Mode:             in.Mode,
		Fee:              fee,
		Currency:         session.Currency,
		CitizenSlots:     in.CitizenSlots,
		EastAfricanSlots: in.EastAfricanSlots,
		GlobalSlots:      in.GlobalSlots,
	}

	ctx, cancel := context.WithTimeout(context.Background(), txTimeout)
	defer cancel()

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := model.ReserveSessionSlots(tx, session.ID, in.Mode, declared); err != nil {
			return err
		}
		if err := tx.Create(&app).Error; err != nil {
			return err
		}
		for _, p := range in.Participants {
			participant := model.ApplicationParticipant{
				ApplicationID: app.ID,
				UserID:        p.UserID,
				Name:          p.Name,
				Email:         p.Email,
				NationalID:    p.NationalID,
				Citizenship:   p.Citizenship,
			}
			if err := tx.Create(&participant).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, model.ErrNoCapacity) {
			return nil, err
		}
		return nil, fmt.Errorf("submit application: %w", err)
	}

	return &app, nil
}

// Approve transitions a pending application to approved, renders the
// offer letter and pro-forma invoice, stores them and emails both to
// the owner in one message.
func (s *ApplicationService) Approve(actor Actor, appID string) (string, error) {
	if !actor.IsAdmin() {
		return "", ErrNotAuthorized
	}

	var app model.Application
	err := s.db.Preload("Owner").Preload("Session.Program").Preload("Organization").
		First(&app, "id = ?", appID).Error
	if err != nil {
		return "", ErrNotFound
	}

	if app.Status != model.ApplicationStatusPending {
		return "", ErrNotPending
	}

	docData := documentData(&app)

	offer, err := s.docs.Render(DocOffer, docData)
	if err != nil {
		return "", fmt.Errorf("render offer letter: %w", err)
	}
	proforma, err := s.docs.Render(DocProforma, docData)
	if err != nil {
		return "", fmt.Errorf("render pro-forma invoice: %w", err)
	}

	offerURL, err := s.storage.Upload(offer, fmt.Sprintf("applications/%s/offer-letter.pdf", app.ID))
	if err != nil {
		return "", fmt.Errorf("store offer letter: %w", err)
	}
	proformaURL, err := s.storage.Upload(proforma, fmt.Sprintf("applications/%s/proforma-invoice.pdf", app.ID))
	if err != nil {
		return "", fmt.Errorf("store pro-forma invoice: %w", err)
	}

	err = s.db.Model(&app).Updates(map[string]interface{}{
		"status":               model.ApplicationStatusApproved,
		"offer_letter_url":     offerURL,
		"proforma_invoice_url": proformaURL,
	}).Error
	if err != nil {
		return "", fmt.Errorf("approve application: %w", err)
	}

	if app.Owner != nil {
		body := "<p>Your training application has been approved. " +
			"Your offer letter and pro-forma invoice are attached.</p>"
		html, rerr := RenderEmail("Application Approved", body, "", "")
		if rerr == nil {
			rerr = s.mailer.SendEmailWithAttachments(
				[]string{app.Owner.Email},
				"Your training application has been approved",
				html,
				[]Attachment{
					{Filename: "offer-letter.pdf", Content: offer},
					{Filename: "proforma-invoice.pdf", Content: proforma},
				},
			)
		}
		if rerr != nil {
			log.Printf("[application] approval email for %s failed: %v", app.ID, rerr)
			return "Application approved, but the notification email could not be delivered", nil
		}
	}

	return "Application approved", nil
}

// Reject transitions a pending application to rejected and notifies the
// owner. The authorization check precedes any mutation.
func (s *ApplicationService) Reject(actor Actor, appID, message string) (string, error) {
	if !actor.IsAdmin() {
		return "", ErrNotAuthorized
	}

	var app model.Application
	if err := s.db.Preload("Owner").First(&app, "id = ?", appID).Error; err != nil {
		return "", ErrNotFound
	}

	if app.Status != model.ApplicationStatusPending {
		return "", ErrNotPending
	}

	if err := s.db.Model(&app).Update("status", model.ApplicationStatusRejected).Error; err != nil {
		return "", fmt.Errorf("reject application: %w", err)
	}

	if app.Owner != nil {
		body := "<p>Your training application has been rejected.</p>"
		if message != "" {
			body += fmt.Sprintf("<p>%s</p>", message)
		}
		html, rerr := RenderEmail("Application Rejected", body, "", "")
		if rerr == nil {
			rerr = s.mailer.SendEmail(app.Owner.Email, "Your training application was not successful", html)
		}
		if rerr != nil {
			log.Printf("[application] rejection email for %s failed: %v", app.ID, rerr)
			return "Application rejected, but the notification email could not be delivered", nil
		}
	}

	return "Application rejected", nil
}

// PayResult is the payload returned to the payment form: the provider
// request plus any still-pending invoices for idempotent re-display.
type PayResult struct {
	Request         PaymentRequest  `json:"request"`
	PendingInvoices []model.Payment `json:"pending_invoices"`
}

// Pay composes the payment request for an application. Only the owner
// or an admin may pay; the application must carry a currency, a fee and
// an owner. A pending invoice is recorded when none exists yet so a
// repeated call re-displays the same one.
func (s *ApplicationService) Pay(actor Actor, appID string) (*PayResult, error) {
	var app model.Application
	err := s.db.Preload("Owner").Preload("Session.Program").
		First(&app, "id = ?", appID).Error
	if err != nil {
		return nil, ErrNotFound
	}

	if app.Owner == nil {
		return nil, ErrNoApplicationOwner
	}
	if !actor.IsAdmin() && app.Owner.ID != actor.ID {
		return nil, ErrNotOwner
	}
	if app.Currency == "" {
		return nil, ErrNoCurrency
	}
	if app.Fee <= 0 {
		return nil, ErrNoFee
	}

	var pending []model.Payment
	s.db.Where("application_id = ? AND status = ?", app.ID, model.PaymentStatusPending).
		Order("created_at ASC").Find(&pending)

	if len(pending) == 0 {
		invoice := model.Payment{
			ApplicationID: app.ID,
			InvoiceRef:    utils.GenerateInvoiceRef(),
			Amount:        app.Fee,
			Currency:      app.Currency,
			Status:        model.PaymentStatusPending,
			PayeeName:     app.Owner.Name,
			PayeeEmail:    app.Owner.Email,
			PayeePhone:    app.Owner.Phone,
		}
		if err := s.db.Create(&invoice).Error; err != nil {
			return nil, fmt.Errorf("record invoice: %w", err)
		}
		pending = append(pending, invoice)
	}

	return &PayResult{
		Request:         ComposePaymentRequest(&app),
		PendingInvoices: pending,
	}, nil
}

// Delete removes an application. Every participant email plus the owner
// email is notified first, deduplicated and nil-filtered; if that
// notification cannot be delivered the delete does not proceed. The row
// removal and the slot release happen in one transaction.
func (s *ApplicationService) Delete(actor Actor, appID string) (string, error) {
	var app model.Application
	err := s.db.Preload("Owner").Preload("Participants").Preload("Session.Program").
		First(&app, "id = ?", appID).Error
	if err != nil {
		return "", ErrNotFound
	}

	if !actor.IsAdmin() && app.OwnerID != actor.ID {
		return "", ErrNotOwner
	}

	if app.Terminal() {
		return "", ErrTerminalState
	}

	emails := make([]string, 0, len(app.Participants)+1)
	for _, p := range app.Participants {
		emails = append(emails, p.Email)
	}
	if app.Owner != nil {
		emails = append(emails, app.Owner.Email)
	}
	recipients := utils.DedupeEmails(emails)

	if len(recipients) > 0 {
		title := ""
		if app.Session != nil && app.Session.Program != nil {
			title = app.Session.Program.Title
		}
		body := fmt.Sprintf("<p>The application for <strong>%s</strong> has been withdrawn and its enrollment cancelled.</p>", title)
		html, rerr := RenderEmail("Application Withdrawn", body, "", "")
		if rerr != nil {
			return "", rerr
		}
		if err := s.mailer.SendEmailWithAttachments(recipients, "Training application withdrawn", html, nil); err != nil {
			return "", fmt.Errorf("notify participants: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), txTimeout)
	defer cancel()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := model.ReleaseSessionSlots(tx, app.SessionID, app.Mode, app.RosterSize()); err != nil {
			return err
		}
		if err := tx.Where("application_id = ?", app.ID).Delete(&model.ApplicationParticipant{}).Error; err != nil {
			return err
		}
		return tx.Delete(&app).Error
	})
	if err != nil {
		return "", fmt.Errorf("delete application: %w", err)
	}

	return "Application deleted", nil
}

// Projection is the authorization-scoped read model of an application.
// The administrative fields are only present on the full view.
type Projection struct {
	ID           string                         `json:"id"`
	Status       model.ApplicationStatus        `json:"status"`
	Mode         model.DeliveryMode             `json:"mode"`
	SessionID    string                         `json:"session_id"`
	Session      *model.TrainingSession         `json:"session,omitempty"`
	Organization *model.Organization            `json:"organization,omitempty"`
	Participants []model.ApplicationParticipant `json:"participants"`

	// Administrative fields, full view only.
	Fee                *int64          `json:"fee,omitempty"`
	Currency           string          `json:"currency,omitempty"`
	OfferLetterURL     string          `json:"offer_letter_url,omitempty"`
	ProformaInvoiceURL string          `json:"proforma_invoice_url,omitempty"`
	Owner              *model.User     `json:"owner,omitempty"`
	Payments           []model.Payment `json:"payments,omitempty"`
}

// Fetch returns the projection the actor is entitled to: the full view
// for admins and the owner, a limited view for anyone matching a roster
// entry by user id, email or name, and an authorization error otherwise.
func (s *ApplicationService) Fetch(actor Actor, appID string) (*Projection, error) {
	var app model.Application
	err := s.db.Preload("Owner").Preload("Organization").Preload("Session.Program").
		Preload("Participants").Preload("Payments").
		First(&app, "id = ?", appID).Error
	if err != nil {
		return nil, ErrNotFound
	}

	proj := Projection{
		ID:           app.ID,
		Status:       app.Status,
		Mode:         app.Mode,
		SessionID:    app.SessionID,
		Session:      app.Session,
		Organization: app.Organization,
		Participants: app.Participants,
	}

	if actor.IsAdmin() || app.OwnerID == actor.ID {
		fee := app.Fee
		proj.Fee = &fee
		proj.Currency = app.Currency
		proj.OfferLetterURL = app.OfferLetterURL
		proj.ProformaInvoiceURL = app.ProformaInvoiceURL
		proj.Owner = app.Owner
		proj.Payments = app.Payments
		return &proj, nil
	}

	for _, p := range app.Participants {
		if (p.UserID != nil && *p.UserID == actor.ID) || p.Email == actor.Email || p.Name == actorName(s.db, actor) {
			return &proj, nil
		}
	}

	return nil, ErrNotAuthorized
}

// actorName resolves the caller's stored display name for the roster
// name match.
func actorName(db *gorm.DB, actor Actor) string {
	var user model.User
	if err := db.Select("name").First(&user, "id = ?", actor.ID).Error; err != nil {
		return ""
	}
	return user.Name
}

// documentData is the payload shared by the offer letter and pro-forma
// invoice templates.
func documentData(app *model.Application) map[string]interface{} {
	data := map[string]interface{}{
		"application_id": app.ID,
		"fee":            app.Fee,
		"currency":       app.Currency,
		"mode":           app.Mode,
		"roster_size":    app.RosterSize(),
	}
	if app.Owner != nil {
		data["owner_name"] = app.Owner.Name
		data["owner_email"] = app.Owner.Email
	}
	if app.Organization != nil {
		data["organization"] = app.Organization.Name
	}
	if app.Session != nil {
		data["starts_at"] = app.Session.StartsAt.Format("2 Jan 2006")
		data["ends_at"] = app.Session.EndsAt.Format("2 Jan 2006")
		data["venue"] = app.Session.Venue
		if app.Session.Program != nil {
			data["program"] = app.Session.Program.Title
			data["program_code"] = app.Session.Program.Code
		}
	}
	return data
}
