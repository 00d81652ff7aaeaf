package service

import (
	"errors"
	"strings"
	"testing"

	"training-portal/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestCompletionRespondRequiresAdmin(t *testing.T) {
	svc := NewCompletionService(nil, &recordingMailer{})

	actor := Actor{ID: "U1", Email: "user@x.com", Role: model.UserRoleUser}
	if _, err := svc.Respond(actor, []string{"C1"}, true, ""); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("err = %v, want ErrNotAuthorized", err)
	}
}

func TestCompletionSubmitForAnotherUser(t *testing.T) {
	svc := NewCompletionService(nil, &recordingMailer{})

	actor := Actor{ID: "U1", Email: "user@x.com", Role: model.UserRoleUser}
	in := CompletionInput{
		ParticipantID: "U2",
		ProgramID:     "P1",
		Evidence:      []model.CompletionEvidence{{FileURL: "http://files/x.pdf"}},
	}
	if _, err := svc.Submit(actor, in); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("err = %v, want ErrNotAuthorized", err)
	}
}

func TestCompletionSubmitNeedsEvidence(t *testing.T) {
	svc := NewCompletionService(nil, &recordingMailer{})

	actor := Actor{ID: "U1", Email: "user@x.com", Role: model.UserRoleUser}
	in := CompletionInput{ParticipantID: "U1", ProgramID: "P1"}
	if _, err := svc.Submit(actor, in); !errors.Is(err, ErrNoEvidence) {
		t.Fatalf("err = %v, want ErrNoEvidence", err)
	}
}

func TestCompletionRespondBulkApprove(t *testing.T) {
	db, mock := newMockDB(t)
	mailer := &recordingMailer{}
	svc := NewCompletionService(db, mailer)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `completed_programs` SET `status`").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	mock.ExpectQuery("SELECT (.+) FROM `completed_programs`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "participant_id", "creator_id", "program_id", "status"}).
			AddRow("C1", "U1", "U2", "P1", "approved").
			AddRow("C2", "U3", "U3", "P1", "approved"))
	mock.ExpectQuery("SELECT (.+) FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).
			AddRow("U2", "creator@x.com").AddRow("U3", "self@x.com"))
	mock.ExpectQuery("SELECT (.+) FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).
			AddRow("U1", "participant@x.com").AddRow("U3", "self@x.com"))
	mock.ExpectQuery("SELECT (.+) FROM `programs`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).AddRow("P1", "Advanced Irrigation"))

	admin := Actor{ID: "A1", Email: "admin@x.com", Role: model.UserRoleAdmin}
	msg, err := svc.Respond(admin, []string{"C1", "C2"}, true, "well done")
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}

	if !strings.Contains(msg, "2 completion records") || !strings.Contains(msg, "approved") {
		t.Errorf("unexpected message: %q", msg)
	}
	// C1 notifies participant and creator, C2 notifies one deduplicated
	// address.
	if len(mailer.sent) != 3 {
		t.Errorf("sent %d notifications (%v), want 3", len(mailer.sent), mailer.sent)
	}
}
