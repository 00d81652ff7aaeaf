package model

// PaymentStatus tracks a payment-provider invoice.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusSettled PaymentStatus = "settled"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// Payment is one provider invoice raised against an application. An
// application may accumulate several payments; it is marked completed
// once the settled total reaches the fee.
type Payment struct {
	BaseModel
	ApplicationID string        `gorm:"type:varchar(36);not null;index" json:"application_id"`
	InvoiceRef    string        `gorm:"type:varchar(100);uniqueIndex;not null" json:"invoice_ref"`
	Amount        int64         `json:"amount"`
	AmountPaid    int64         `gorm:"default:0" json:"amount_paid"`
	Currency      string        `gorm:"type:varchar(3)" json:"currency"`
	Status        PaymentStatus `gorm:"type:varchar(20);default:pending" json:"status"`
	PayeeName     string        `gorm:"type:varchar(100)" json:"payee_name"`
	PayeeEmail    string        `gorm:"type:varchar(100)" json:"payee_email"`
	PayeePhone    string        `gorm:"type:varchar(20)" json:"payee_phone"`
	ReceiptURL    string        `gorm:"type:varchar(500)" json:"receipt_url,omitempty"`
	// Associations
	Application *Application `gorm:"foreignKey:ApplicationID" json:"application,omitempty"`
}

func (Payment) TableName() string {
	return "payments"
}
