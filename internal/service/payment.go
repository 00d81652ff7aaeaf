package service

import (
	"fmt"
	"strings"

	"training-portal/internal/model"
)

// PayeeDetails identifies the person paying an application's fee.
// Missing fields are omitted from the JSON payload rather than sent as
// null, matching the provider form's expected shape.
type PayeeDetails struct {
	Name       string `json:"name,omitempty"`
	NationalID string `json:"national_id,omitempty"`
	Phone      int64  `json:"phone,omitempty"`
	Email      string `json:"email,omitempty"`
	PhotoURL   string `json:"photo_url,omitempty"`
}

// PaymentRequest is the payload handed to the payment provider form.
type PaymentRequest struct {
	ApplicationID   string       `json:"application_id"`
	Amount          int64        `json:"amount"`
	Currency        string       `json:"currency"`
	BillDescription string       `json:"bill_description"`
	Payee           PayeeDetails `json:"payee"`
}

// BillDescription renders the human-readable line shown on the bill.
// The venue is included only for on-premise attendance when the session
// has one set.
func BillDescription(session *model.TrainingSession, mode model.DeliveryMode) string {
	title := ""
	if session.Program != nil {
		title = session.Program.Title
	}

	desc := fmt.Sprintf("Training on %s from %s to %s",
		title,
		session.StartsAt.Format("2 Jan 2006"),
		session.EndsAt.Format("2 Jan 2006"))

	if mode == model.DeliveryOnPremise && session.Venue != "" {
		desc += " at " + session.Venue
	}

	return desc
}

// ComposePaymentRequest assembles the provider payload from an
// application and its owner. Pure transformation over fetched state.
func ComposePaymentRequest(app *model.Application) PaymentRequest {
	req := PaymentRequest{
		ApplicationID: app.ID,
		Amount:        app.Fee,
		Currency:      app.Currency,
	}

	if app.Session != nil {
		req.BillDescription = BillDescription(app.Session, app.Mode)
	}

	if owner := app.Owner; owner != nil {
		req.Payee = PayeeDetails{
			Name:       owner.Name,
			NationalID: owner.NationalID,
			Phone:      phoneAsInteger(owner.Phone),
			Email:      owner.Email,
			PhotoURL:   owner.Avatar,
		}
	}

	return req
}

// phoneAsInteger strips formatting and parses the digits, returning 0
// when no usable number remains.
func phoneAsInteger(phone string) int64 {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0
	}
	var n int64
	fmt.Sscanf(digits.String(), "%d", &n)
	return n
}
