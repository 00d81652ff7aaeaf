package model

import (
	"errors"

	"training-portal/internal/config"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// ErrNoCapacity is returned when a slot reservation would exceed a
// session's capacity.
var ErrNoCapacity = errors.New("training session has no remaining slots")

// InitDB opens the database connection pool.
func InitDB(cfg *config.DatabaseConfig) error {
	var logLevel logger.LogLevel
	if config.Get().Server.Mode == "debug" {
		logLevel = logger.Info
	} else {
		logLevel = logger.Silent
	}

	db, err := gorm.Open(mysql.Open(cfg.DSN()), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logLevel),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)

	DB = db
	return nil
}

// AutoMigrate creates or updates all tables.
func AutoMigrate() error {
	return DB.AutoMigrate(
		// Identity
		&User{},
		&VerificationToken{},
		&PasswordResetToken{},
		&TwoFactorToken{},
		&TwoFactorConfirmation{},
		// Organizations
		&Organization{},
		&OrganizationUser{},
		&OrganizationInvite{},
		// Catalogue
		&Program{},
		&Topic{},
		&TrainingSession{},
		// Enrollment
		&Application{},
		&ApplicationParticipant{},
		&Payment{},
		&CompletedProgram{},
		&CompletionEvidence{},
		// Operations
		&AuditLog{},
	)
}

// slotColumns maps a delivery mode to its counter and capacity columns.
func slotColumns(mode DeliveryMode) (taken, capacity string) {
	if mode == DeliveryOnPremise {
		return "on_premise_slots_taken", "on_premise_slots"
	}
	return "online_slots_taken", "online_slots"
}

// ReserveSessionSlots atomically consumes n slots on a session. The
// capacity check happens inside the UPDATE so concurrent submissions
// cannot oversubscribe the session.
func ReserveSessionSlots(db *gorm.DB, sessionID string, mode DeliveryMode, n int) error {
	taken, capacity := slotColumns(mode)
	res := db.Model(&TrainingSession{}).
		Where("id = ? AND "+taken+" + ? <= "+capacity, sessionID, n).
		Update(taken, gorm.Expr(taken+" + ?", n))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNoCapacity
	}
	return nil
}

// ReleaseSessionSlots returns n slots to a session, clamping at zero.
func ReleaseSessionSlots(db *gorm.DB, sessionID string, mode DeliveryMode, n int) error {
	taken, _ := slotColumns(mode)
	return db.Model(&TrainingSession{}).
		Where("id = ? AND "+taken+" >= ?", sessionID, n).
		Update(taken, gorm.Expr(taken+" - ?", n)).Error
}
