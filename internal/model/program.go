package model

import (
	"time"
)

// Program is a capacity-building course offered through scheduled
// training sessions. Code and title are globally unique.
type Program struct {
	BaseModel
	Code    string `gorm:"type:varchar(20);uniqueIndex;not null" json:"code"`
	Title   string `gorm:"type:varchar(200);uniqueIndex;not null" json:"title"`
	Summary string `gorm:"type:text" json:"summary"`
	Image   string `gorm:"type:varchar(500)" json:"image"`
	// Associations
	Prerequisites []*Program        `gorm:"many2many:program_prerequisites;joinForeignKey:ProgramID;joinReferences:PrerequisiteID" json:"prerequisites,omitempty"`
	Topics        []Topic           `gorm:"foreignKey:ProgramID" json:"topics,omitempty"`
	Sessions      []TrainingSession `gorm:"foreignKey:ProgramID" json:"sessions,omitempty"`
}

func (Program) TableName() string {
	return "programs"
}

// Topic is a syllabus item under a program.
type Topic struct {
	BaseModel
	ProgramID string `gorm:"type:varchar(36);not null;index" json:"program_id"`
	Title     string `gorm:"type:varchar(200);not null" json:"title"`
	Summary   string `gorm:"type:text" json:"summary"`
}

func (Topic) TableName() string {
	return "topics"
}

// DeliveryMode is how a session (or an application against it) is attended.
type DeliveryMode string

const (
	DeliveryOnline    DeliveryMode = "online"
	DeliveryOnPremise DeliveryMode = "on_premise"
	DeliveryBothModes DeliveryMode = "both_modes"
)

// TrainingSession is a scheduled offering of a program with finite slot
// capacity per delivery mode and a fee schedule per citizenship tier.
// Slot counters are mutated only through atomic conditional updates so
// that slots_taken never exceeds capacity.
type TrainingSession struct {
	BaseModel
	ProgramID string       `gorm:"type:varchar(36);not null;index" json:"program_id"`
	StartsAt  time.Time    `gorm:"not null" json:"starts_at"`
	EndsAt    time.Time    `gorm:"not null" json:"ends_at"`
	Venue     string       `gorm:"type:varchar(200)" json:"venue"`
	Mode      DeliveryMode `gorm:"type:varchar(20);default:both_modes" json:"mode"`

	// Fee schedule, smallest currency unit.
	CitizenFee     int64  `json:"citizen_fee"`
	EastAfricanFee int64  `json:"east_african_fee"`
	GlobalFee      int64  `json:"global_fee"`
	Currency       string `gorm:"type:varchar(3);default:KES" json:"currency"`

	// Capacity accounting per delivery mode.
	OnlineSlots         int `gorm:"default:0" json:"online_slots"`
	OnlineSlotsTaken    int `gorm:"default:0" json:"online_slots_taken"`
	OnPremiseSlots      int `gorm:"default:0" json:"on_premise_slots"`
	OnPremiseSlotsTaken int `gorm:"default:0" json:"on_premise_slots_taken"`

	// Associations
	Program *Program `gorm:"foreignKey:ProgramID" json:"program,omitempty"`
}

func (TrainingSession) TableName() string {
	return "training_sessions"
}

// FeeFor returns the session fee for a citizenship tier.
func (s *TrainingSession) FeeFor(citizenship Citizenship) int64 {
	switch citizenship {
	case CitizenshipEastAfrican:
		return s.EastAfricanFee
	case CitizenshipGlobal:
		return s.GlobalFee
	default:
		return s.CitizenFee
	}
}
