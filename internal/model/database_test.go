package model

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

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

func TestSlotColumns(t *testing.T) {
	taken, capacity := slotColumns(DeliveryOnline)
	if taken != "online_slots_taken" || capacity != "online_slots" {
		t.Errorf("online columns = %s/%s", taken, capacity)
	}

	taken, capacity = slotColumns(DeliveryOnPremise)
	if taken != "on_premise_slots_taken" || capacity != "on_premise_slots" {
		t.Errorf("on-premise columns = %s/%s", taken, capacity)
	}
}

func TestReserveSessionSlots(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `training_sessions` SET `online_slots_taken`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := ReserveSessionSlots(db, "S1", DeliveryOnline, 3); err != nil {
		t.Fatalf("ReserveSessionSlots: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestReserveSessionSlotsNoCapacity(t *testing.T) {
	db, mock := newMockDB(t)

	// The capacity condition in the WHERE clause matched no row.
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `training_sessions` SET `online_slots_taken`").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := ReserveSessionSlots(db, "S1", DeliveryOnline, 5)
	if !errors.Is(err, ErrNoCapacity) {
		t.Fatalf("err = %v, want ErrNoCapacity", err)
	}
}

func TestReleaseSessionSlots(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `training_sessions` SET `on_premise_slots_taken`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := ReleaseSessionSlots(db, "S1", DeliveryOnPremise, 2); err != nil {
		t.Fatalf("ReleaseSessionSlots: %v", err)
	}
}

func TestParticipantApplicationPreload(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT (.+) FROM `application_participants`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "application_id", "name"}).
			AddRow("P1", "A1", "Alice"))
	mock.ExpectQuery("SELECT (.+) FROM `applications`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow("A1", "approved"))

	var participants []ApplicationParticipant
	if err := db.Preload("Application").Find(&participants).Error; err != nil {
		t.Fatalf("preload application: %v", err)
	}
	if len(participants) != 1 || participants[0].Application == nil {
		t.Fatal("participant should carry its application")
	}
	if participants[0].Application.Status != ApplicationStatusApproved {
		t.Errorf("status = %s, want approved", participants[0].Application.Status)
	}
}

func TestApplicationRosterSize(t *testing.T) {
	app := Application{CitizenSlots: 3, EastAfricanSlots: 2, GlobalSlots: 1}
	if got := app.RosterSize(); got != 6 {
		t.Errorf("RosterSize = %d, want 6", got)
	}
}

func TestApplicationTerminal(t *testing.T) {
	cases := []struct {
		status ApplicationStatus
		want   bool
	}{
		{ApplicationStatusPending, false},
		{ApplicationStatusApproved, false},
		{ApplicationStatusCompleted, true},
		{ApplicationStatusRejected, true},
	}
	for _, tc := range cases {
		app := Application{Status: tc.status}
		if got := app.Terminal(); got != tc.want {
			t.Errorf("Terminal(%s) = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestSessionFeeFor(t *testing.T) {
	s := TrainingSession{CitizenFee: 100, EastAfricanFee: 200, GlobalFee: 300}

	if got := s.FeeFor(CitizenshipCitizen); got != 100 {
		t.Errorf("citizen fee = %d", got)
	}
	if got := s.FeeFor(CitizenshipEastAfrican); got != 200 {
		t.Errorf("east african fee = %d", got)
	}
	if got := s.FeeFor(CitizenshipGlobal); got != 300 {
		t.Errorf("global fee = %d", got)
	}
}
