package model

// ApplicationStatus is the lifecycle state of a training application.
type ApplicationStatus string

const (
	ApplicationStatusPending   ApplicationStatus = "pending"
	ApplicationStatusApproved  ApplicationStatus = "approved"
	ApplicationStatusCompleted ApplicationStatus = "completed"
	ApplicationStatusRejected  ApplicationStatus = "rejected"
)

// Application is a request to enroll a participant roster into a
// training session. Fee and currency are fixed at submission from the
// session's fee schedule.
type Application struct {
	BaseModel
	OwnerID        string            `gorm:"type:varchar(36);not null;index" json:"owner_id"`
	OrganizationID *string           `gorm:"type:varchar(36);index" json:"organization_id"`
	SessionID      string            `gorm:"type:varchar(36);not null;index" json:"session_id"`
	Status         ApplicationStatus `gorm:"type:varchar(20);default:pending" json:"status"`
	Mode           DeliveryMode      `gorm:"type:varchar(20);not null" json:"mode"`

	Fee      int64  `json:"fee"`
	Currency string `gorm:"type:varchar(3)" json:"currency"`

	// Slot counts per citizenship tier. Their sum equals the roster size.
	CitizenSlots     int `gorm:"default:0" json:"citizen_slots"`
	EastAfricanSlots int `gorm:"default:0" json:"east_african_slots"`
	GlobalSlots      int `gorm:"default:0" json:"global_slots"`

	// Documents generated on approval.
	OfferLetterURL     string `gorm:"type:varchar(500)" json:"offer_letter_url,omitempty"`
	ProformaInvoiceURL string `gorm:"type:varchar(500)" json:"proforma_invoice_url,omitempty"`

	// Associations
	Owner        *User                    `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Organization *Organization            `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
	Session      *TrainingSession         `gorm:"foreignKey:SessionID" json:"session,omitempty"`
	Participants []ApplicationParticipant `gorm:"foreignKey:ApplicationID;constraint:OnDelete:CASCADE" json:"participants,omitempty"`
	Payments     []Payment                `gorm:"foreignKey:ApplicationID" json:"payments,omitempty"`
}

func (Application) TableName() string {
	return "applications"
}

// RosterSize is the declared participant head count.
func (a *Application) RosterSize() int {
	return a.CitizenSlots + a.EastAfricanSlots + a.GlobalSlots
}

// Terminal reports whether the application can no longer be deleted by
// its owner.
func (a *Application) Terminal() bool {
	return a.Status == ApplicationStatusCompleted || a.Status == ApplicationStatusRejected
}

// ApplicationParticipant is one person on an application's roster. It
// may reference a registered user but carries its own contact fields so
// unregistered participants can be enrolled.
type ApplicationParticipant struct {
	BaseModel
	ApplicationID string      `gorm:"type:varchar(36);not null;index" json:"application_id"`
	UserID        *string     `gorm:"type:varchar(36);index" json:"user_id"`
	Name          string      `gorm:"type:varchar(100);not null" json:"name"`
	Email         string      `gorm:"type:varchar(100)" json:"email"`
	NationalID    string      `gorm:"type:varchar(30)" json:"national_id"`
	Citizenship   Citizenship `gorm:"type:varchar(20);default:citizen" json:"citizenship"`
	Attendance    bool        `gorm:"default:false" json:"attendance"`
	// Associations
	Application *Application `gorm:"foreignKey:ApplicationID" json:"application,omitempty"`
	User        *User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (ApplicationParticipant) TableName() string {
	return "application_participants"
}
