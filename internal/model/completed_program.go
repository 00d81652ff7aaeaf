package model

// CompletionStatus is the review state of a completed-program claim.
type CompletionStatus string

const (
	CompletionStatusPending  CompletionStatus = "pending"
	CompletionStatusApproved CompletionStatus = "approved"
	CompletionStatusRejected CompletionStatus = "rejected"
)

// CompletedProgram is a participant's claim of having finished a
// program. It stays pending until an administrator approves or rejects
// it; the decision is terminal.
type CompletedProgram struct {
	BaseModel
	ParticipantID string           `gorm:"type:varchar(36);not null;index" json:"participant_id"`
	CreatorID     string           `gorm:"type:varchar(36);not null" json:"creator_id"`
	ProgramID     string           `gorm:"type:varchar(36);not null;index" json:"program_id"`
	Status        CompletionStatus `gorm:"type:varchar(20);default:pending" json:"status"`
	// Associations
	Participant *User                `gorm:"foreignKey:ParticipantID" json:"participant,omitempty"`
	Creator     *User                `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Program     *Program             `gorm:"foreignKey:ProgramID" json:"program,omitempty"`
	Evidence    []CompletionEvidence `gorm:"foreignKey:CompletedProgramID;constraint:OnDelete:CASCADE" json:"evidence,omitempty"`
}

func (CompletedProgram) TableName() string {
	return "completed_programs"
}

// CompletionEvidence is an uploaded attachment backing a claim.
type CompletionEvidence struct {
	BaseModel
	CompletedProgramID string `gorm:"type:varchar(36);not null;index" json:"completed_program_id"`
	FileName           string `gorm:"type:varchar(200)" json:"file_name"`
	FileURL            string `gorm:"type:varchar(500);not null" json:"file_url"`
}

func (CompletionEvidence) TableName() string {
	return "completion_evidence"
}
