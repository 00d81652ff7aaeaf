package model

// AuditLog records every write operation against the API.
type AuditLog struct {
	BaseModel
	UserID       string `gorm:"type:varchar(36);index" json:"user_id"`
	UserEmail    string `gorm:"type:varchar(100)" json:"user_email"`
	Action       string `gorm:"type:varchar(50);not null" json:"action"`
	Resource     string `gorm:"type:varchar(50);not null" json:"resource"`
	ResourceID   string `gorm:"type:varchar(36)" json:"resource_id"`
	IPAddress    string `gorm:"type:varchar(45)" json:"ip_address"`
	UserAgent    string `gorm:"type:varchar(500)" json:"user_agent"`
	RequestBody  string `gorm:"type:text" json:"request_body"`
	ResponseCode int    `gorm:"type:int" json:"response_code"`
	Duration     int64  `gorm:"type:bigint" json:"duration"` // milliseconds
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// Action constants.
const (
	ActionCreate  = "create"
	ActionUpdate  = "update"
	ActionDelete  = "delete"
	ActionLogin   = "login"
	ActionApprove = "approve"
	ActionReject  = "reject"
	ActionRevoke  = "revoke"
	ActionExport  = "export"
)

// Resource constants.
const (
	ResourceUser         = "user"
	ResourceOrganization = "organization"
	ResourceInvite       = "invite"
	ResourceProgram      = "program"
	ResourceSession      = "session"
	ResourceApplication  = "application"
	ResourcePayment      = "payment"
	ResourceCompletion   = "completion"
)
