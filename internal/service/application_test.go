package service

import (
	"errors"
	"testing"

	"training-portal/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
)

func expectApplicationFetch(mock sqlmock.Sqlmock, ownerID, currency string, fee int64) {
	mock.ExpectQuery("SELECT (.+) FROM `applications`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "session_id", "status", "mode", "fee", "currency"}).
			AddRow("A1", ownerID, "S1", "approved", "online", fee, currency))
	mock.ExpectQuery("SELECT (.+) FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).
			AddRow(ownerID, "Owner", "owner@x.com"))
	mock.ExpectQuery("SELECT (.+) FROM `training_sessions`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "program_id"}).AddRow("S1", ""))
}

func TestPayNotOwner(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewApplicationService(db, &recordingMailer{}, nil, nil)

	expectApplicationFetch(mock, "U1", "KES", 150000)

	actor := Actor{ID: "U2", Email: "other@x.com", Role: model.UserRoleUser}
	_, err := svc.Pay(actor, "A1")

	if !errors.Is(err, ErrNotOwner) {
		t.Fatalf("err = %v, want ErrNotOwner", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("no invoice should be recorded: %v", err)
	}
}

func TestPayNoCurrency(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewApplicationService(db, &recordingMailer{}, nil, nil)

	expectApplicationFetch(mock, "U1", "", 150000)

	actor := Actor{ID: "U1", Email: "owner@x.com", Role: model.UserRoleUser}
	_, err := svc.Pay(actor, "A1")

	if !errors.Is(err, ErrNoCurrency) {
		t.Fatalf("err = %v, want ErrNoCurrency", err)
	}
}

func TestPayNoFee(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewApplicationService(db, &recordingMailer{}, nil, nil)

	expectApplicationFetch(mock, "U1", "KES", 0)

	actor := Actor{ID: "U1", Email: "owner@x.com", Role: model.UserRoleUser}
	_, err := svc.Pay(actor, "A1")

	if !errors.Is(err, ErrNoFee) {
		t.Fatalf("err = %v, want ErrNoFee", err)
	}
}

func TestApproveRequiresAdmin(t *testing.T) {
	svc := NewApplicationService(nil, &recordingMailer{}, nil, nil)

	actor := Actor{ID: "U1", Email: "user@x.com", Role: model.UserRoleUser}
	if _, err := svc.Approve(actor, "A1"); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("err = %v, want ErrNotAuthorized", err)
	}
}

func TestRejectRequiresAdmin(t *testing.T) {
	svc := NewApplicationService(nil, &recordingMailer{}, nil, nil)

	actor := Actor{ID: "U1", Email: "user@x.com", Role: model.UserRoleUser}
	if _, err := svc.Reject(actor, "A1", "nope"); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("err = %v, want ErrNotAuthorized", err)
	}
}

func TestDeleteAbortsWhenNotificationFails(t *testing.T) {
	db, mock := newMockDB(t)
	mailer := &recordingMailer{fail: true}
	svc := NewApplicationService(db, mailer, nil, nil)

	mock.ExpectQuery("SELECT (.+) FROM `applications`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "session_id", "status", "mode", "citizen_slots"}).
			AddRow("A1", "U1", "S1", "pending", "online", 2))
	mock.ExpectQuery("SELECT (.+) FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).
			AddRow("U1", "Owner", "owner@x.com"))
	mock.ExpectQuery("SELECT (.+) FROM `application_participants`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "application_id", "name", "email"}).
			AddRow("P1", "A1", "Alice", "alice@x.com").
			AddRow("P2", "A1", "Bob", "bob@x.com"))
	mock.ExpectQuery("SELECT (.+) FROM `training_sessions`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "program_id"}).AddRow("S1", ""))

	actor := Actor{ID: "U1", Email: "owner@x.com", Role: model.UserRoleUser}
	_, err := svc.Delete(actor, "A1")

	if err == nil {
		t.Fatal("delete should fail when the notification cannot be delivered")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("no rows should be deleted after a failed notification: %v", err)
	}
}

func TestDeleteNotifiesRosterAndOwnerOnce(t *testing.T) {
	db, mock := newMockDB(t)
	mailer := &recordingMailer{}
	svc := NewApplicationService(db, mailer, nil, nil)

	mock.ExpectQuery("SELECT (.+) FROM `applications`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "session_id", "status", "mode", "citizen_slots"}).
			AddRow("A1", "U1", "S1", "pending", "online", 3))
	mock.ExpectQuery("SELECT (.+) FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).
			AddRow("U1", "Owner", "owner@x.com"))
	// The owner also sits on the roster, and one entry has no email.
	mock.ExpectQuery("SELECT (.+) FROM `application_participants`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "application_id", "name", "email"}).
			AddRow("P1", "A1", "Alice", "alice@x.com").
			AddRow("P2", "A1", "Owner", "owner@x.com").
			AddRow("P3", "A1", "Walk-in", ""))
	mock.ExpectQuery("SELECT (.+) FROM `training_sessions`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "program_id"}).AddRow("S1", ""))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `training_sessions` SET `online_slots_taken`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE `application_participants` SET `deleted_at`").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("UPDATE `applications` SET `deleted_at`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	actor := Actor{ID: "U1", Email: "owner@x.com", Role: model.UserRoleUser}
	if _, err := svc.Delete(actor, "A1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	want := []string{"alice@x.com", "owner@x.com"}
	if len(mailer.sent) != len(want) {
		t.Fatalf("notified %v, want %v", mailer.sent, want)
	}
	for i, addr := range want {
		if mailer.sent[i] != addr {
			t.Errorf("recipient[%d] = %s, want %s", i, mailer.sent[i], addr)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("slot release and row removal should run in one transaction: %v", err)
	}
}

func expectProjectionFetch(mock sqlmock.Sqlmock) {
	mock.ExpectQuery("SELECT (.+) FROM `applications`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "session_id", "status", "mode", "fee", "currency"}).
			AddRow("A1", "U1", "S1", "approved", "online", 150000, "KES"))
	mock.ExpectQuery("SELECT (.+) FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email"}).
			AddRow("U1", "Owner", "owner@x.com"))
	mock.ExpectQuery("SELECT (.+) FROM `application_participants`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "application_id", "name", "email"}).
			AddRow("P1", "A1", "Alice", "alice@x.com"))
	mock.ExpectQuery("SELECT (.+) FROM `payments`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery("SELECT (.+) FROM `training_sessions`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "program_id"}).AddRow("S1", ""))
}

func TestFetchParticipantViewRepeatable(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewApplicationService(db, &recordingMailer{}, nil, nil)

	actor := Actor{ID: "U9", Email: "alice@x.com", Role: model.UserRoleUser}

	expectProjectionFetch(mock)
	first, err := svc.Fetch(actor, "A1")
	if err != nil {
		t.Fatalf("first Fetch: %v", err)
	}

	expectProjectionFetch(mock)
	second, err := svc.Fetch(actor, "A1")
	if err != nil {
		t.Fatalf("second Fetch: %v", err)
	}

	if first.Fee != nil || first.Currency != "" || first.Owner != nil || first.Payments != nil {
		t.Error("participant view should omit administrative fields")
	}
	if first.ID != second.ID || first.Status != second.Status ||
		len(first.Participants) != len(second.Participants) {
		t.Error("repeated fetches should return the same projection")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("fetch must not write: %v", err)
	}
}

func TestDeleteTerminalState(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewApplicationService(db, &recordingMailer{}, nil, nil)

	mock.ExpectQuery("SELECT (.+) FROM `applications`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "session_id", "status", "mode"}).
			AddRow("A1", "U1", "S1", "completed", "online"))
	mock.ExpectQuery("SELECT (.+) FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).AddRow("U1", "owner@x.com"))
	mock.ExpectQuery("SELECT (.+) FROM `application_participants`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery("SELECT (.+) FROM `training_sessions`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "program_id"}).AddRow("S1", ""))

	actor := Actor{ID: "U1", Email: "owner@x.com", Role: model.UserRoleUser}
	_, err := svc.Delete(actor, "A1")

	if !errors.Is(err, ErrTerminalState) {
		t.Fatalf("err = %v, want ErrTerminalState", err)
	}
}
