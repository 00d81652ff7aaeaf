package service

import (
	"strings"
	"testing"
	"time"

	"training-portal/internal/model"
)

func testSession(venue string) *model.TrainingSession {
	return &model.TrainingSession{
		StartsAt: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		EndsAt:   time.Date(2026, 3, 6, 17, 0, 0, 0, time.UTC),
		Venue:    venue,
		Program:  &model.Program{Title: "Advanced Irrigation"},
	}
}

func TestBillDescriptionOnPremiseWithVenue(t *testing.T) {
	got := BillDescription(testSession("Nakuru Campus"), model.DeliveryOnPremise)
	want := "Training on Advanced Irrigation from 2 Mar 2026 to 6 Mar 2026 at Nakuru Campus"
	if got != want {
		t.Errorf("BillDescription = %q, want %q", got, want)
	}
}

func TestBillDescriptionOnlineOmitsVenue(t *testing.T) {
	got := BillDescription(testSession("Nakuru Campus"), model.DeliveryOnline)
	if strings.Contains(got, "Nakuru Campus") {
		t.Errorf("online bill %q should not mention the venue", got)
	}
}

func TestBillDescriptionOnPremiseNoVenue(t *testing.T) {
	got := BillDescription(testSession(""), model.DeliveryOnPremise)
	if strings.Contains(got, " at ") {
		t.Errorf("bill %q should not carry an empty venue clause", got)
	}
}

func TestComposePaymentRequest(t *testing.T) {
	owner := &model.User{
		Name:       "Alice",
		Email:      "alice@example.com",
		Phone:      "+254 712-345678",
		NationalID: "12345678",
	}
	app := &model.Application{
		Fee:      150000,
		Currency: "KES",
		Mode:     model.DeliveryOnline,
		Session:  testSession(""),
		Owner:    owner,
	}
	app.ID = "A1"

	req := ComposePaymentRequest(app)

	if req.ApplicationID != "A1" {
		t.Errorf("ApplicationID = %q, want A1", req.ApplicationID)
	}
	if req.Amount != 150000 || req.Currency != "KES" {
		t.Errorf("amount = %d %s, want 150000 KES", req.Amount, req.Currency)
	}
	if req.Payee.Name != "Alice" || req.Payee.Email != "alice@example.com" {
		t.Errorf("unexpected payee: %+v", req.Payee)
	}
	if req.Payee.Phone != 254712345678 {
		t.Errorf("payee phone = %d, want 254712345678", req.Payee.Phone)
	}
	if req.BillDescription == "" {
		t.Error("bill description should be set when the session is present")
	}
}

func TestComposePaymentRequestNoOwner(t *testing.T) {
	app := &model.Application{Fee: 100, Currency: "KES"}
	req := ComposePaymentRequest(app)

	if req.Payee != (PayeeDetails{}) {
		t.Errorf("payee should be empty without an owner, got %+v", req.Payee)
	}
	if req.BillDescription != "" {
		t.Errorf("bill description should be empty without a session, got %q", req.BillDescription)
	}
}

func TestPhoneAsInteger(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"+254712345678", 254712345678},
		{"0712 345 678", 712345678},
		{"", 0},
		{"no digits", 0},
	}
	for _, tc := range cases {
		if got := phoneAsInteger(tc.in); got != tc.want {
			t.Errorf("phoneAsInteger(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
