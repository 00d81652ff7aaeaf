package service

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestConsumePasswordResetTampered(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewTokenService(db)

	mock.ExpectQuery("SELECT (.+) FROM `password_reset_tokens`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := svc.ConsumePasswordReset("tampered-value")
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("nothing should be deleted for an invalid token: %v", err)
	}
}

func TestConsumePasswordResetExpired(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewTokenService(db)

	past := time.Now().Add(-time.Minute)
	mock.ExpectQuery("SELECT (.+) FROM `password_reset_tokens`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "token", "expires_at"}).
			AddRow("T1", "a@x.com", "tok", past))

	_, err := svc.ConsumePasswordReset("tok")
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("err = %v, want ErrTokenExpired", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("an expired token must not be deleted: %v", err)
	}
}

func TestConsumeVerification(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewTokenService(db)

	future := time.Now().Add(time.Hour)
	mock.ExpectQuery("SELECT (.+) FROM `verification_tokens`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "token", "expires_at"}).
			AddRow("T1", "a@x.com", "tok", future))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `verification_tokens` SET `deleted_at`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	email, err := svc.ConsumeVerification("tok")
	if err != nil {
		t.Fatalf("ConsumeVerification: %v", err)
	}
	if email != "a@x.com" {
		t.Errorf("email = %q, want a@x.com", email)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("the token row should be consumed: %v", err)
	}
}

func TestConsumeTwoFactorWrongCode(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewTokenService(db)

	mock.ExpectQuery("SELECT (.+) FROM `two_factor_tokens`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if err := svc.ConsumeTwoFactor("a@x.com", "000000"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}
