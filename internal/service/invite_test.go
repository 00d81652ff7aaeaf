package service

import (
	"errors"
	"testing"
	"time"

	"training-portal/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newMockDB opens GORM over a sqlmock connection so lifecycle rules can
// be exercised without a running database.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}

	return db, mock
}

// recordingMailer captures sends so tests can assert on side effects.
type recordingMailer struct {
	sent []string
	fail bool
}

func (m *recordingMailer) SendEmail(to, subject, body string) error {
	if m.fail {
		return errors.New("smtp unavailable")
	}
	m.sent = append(m.sent, to)
	return nil
}

func (m *recordingMailer) SendEmailWithAttachments(to []string, subject, body string, attachments []Attachment) error {
	if m.fail {
		return errors.New("smtp unavailable")
	}
	m.sent = append(m.sent, to...)
	return nil
}

func TestSendInviteNotAuthorized(t *testing.T) {
	db, mock := newMockDB(t)
	mailer := &recordingMailer{}
	svc := NewInviteService(db, mailer)

	mock.ExpectQuery("SELECT (.+) FROM `organizations`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow("O1", "Org One"))
	// Membership lookup finds no owner row for the caller.
	mock.ExpectQuery("SELECT (.+) FROM `organization_users`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	actor := Actor{ID: "U1", Email: "user@x.com", Role: model.UserRoleUser}
	_, err := svc.Send(actor, "O1", "a@x.com")

	if !errors.Is(err, ErrInviteNotAuthorized) {
		t.Fatalf("err = %v, want ErrInviteNotAuthorized", err)
	}
	if len(mailer.sent) != 0 {
		t.Errorf("no email should be sent, got %v", mailer.sent)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unexpected database access: %v", err)
	}
}

func TestRespondInviteEmailMismatch(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewInviteService(db, &recordingMailer{})

	future := time.Now().Add(24 * time.Hour)
	mock.ExpectQuery("SELECT (.+) FROM `organization_invites`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "organization_id", "email", "token", "expires_at"}).
			AddRow("I1", "O1", "a@x.com", "tok", future))
	mock.ExpectQuery("SELECT (.+) FROM `organizations`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow("O1", "Org One"))

	actor := Actor{ID: "U1", Email: "b@x.com", Role: model.UserRoleUser}
	_, err := svc.Respond(actor, "I1", true)

	if !errors.Is(err, ErrEmailMismatch) {
		t.Fatalf("err = %v, want ErrEmailMismatch", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("no transaction should run on a mismatch: %v", err)
	}
}

func TestRespondInviteExpired(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewInviteService(db, &recordingMailer{})

	past := time.Now().Add(-time.Hour)
	mock.ExpectQuery("SELECT (.+) FROM `organization_invites`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "organization_id", "email", "token", "expires_at"}).
			AddRow("I1", "O1", "a@x.com", "tok", past))
	mock.ExpectQuery("SELECT (.+) FROM `organizations`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow("O1", "Org One"))

	actor := Actor{ID: "U1", Email: "a@x.com", Role: model.UserRoleUser}

	for _, accepted := range []bool{true, false} {
		_, err := svc.Respond(actor, "I1", accepted)
		if !errors.Is(err, ErrExpired) {
			t.Fatalf("accepted=%v: err = %v, want ErrExpired", accepted, err)
		}

		// Re-arm the lookup for the second pass.
		if accepted {
			mock.ExpectQuery("SELECT (.+) FROM `organization_invites`").
				WillReturnRows(sqlmock.NewRows([]string{"id", "organization_id", "email", "token", "expires_at"}).
					AddRow("I1", "O1", "a@x.com", "tok", past))
			mock.ExpectQuery("SELECT (.+) FROM `organizations`").
				WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow("O1", "Org One"))
		}
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("no membership should be created for an expired invite: %v", err)
	}
}

func TestRespondInviteAlreadyConsumed(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewInviteService(db, &recordingMailer{})

	// The first response deleted the invite; the second lookup finds
	// nothing.
	mock.ExpectQuery("SELECT (.+) FROM `organization_invites`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	actor := Actor{ID: "U1", Email: "a@x.com", Role: model.UserRoleUser}
	_, err := svc.Respond(actor, "I1", true)

	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unexpected database access: %v", err)
	}
}

func TestRevokeInviteNotAuthorized(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewInviteService(db, &recordingMailer{})

	mock.ExpectQuery("SELECT (.+) FROM `organization_users`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	actor := Actor{ID: "U1", Email: "user@x.com", Role: model.UserRoleUser}
	_, err := svc.Revoke(actor, "O1", []string{"I1", "I2"})

	if !errors.Is(err, ErrInviteNotAuthorized) {
		t.Fatalf("err = %v, want ErrInviteNotAuthorized", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("no delete should run: %v", err)
	}
}

func TestValidateInviteNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewInviteService(db, &recordingMailer{})

	mock.ExpectQuery("SELECT (.+) FROM `organization_invites`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if _, err := svc.Validate("no-such-token"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
