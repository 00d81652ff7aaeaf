package service

import (
	"errors"
	"fmt"
	"log"

	"training-portal/internal/model"

	"gorm.io/gorm"
)

// PaymentService settles provider invoices reported by the payment
// callback and rolls the application forward once the fee is covered.
type PaymentService struct {
	db      *gorm.DB
	mailer  Mailer
	docs    DocsRenderer
	storage Storage
}

func NewPaymentService(db *gorm.DB, mailer Mailer, docs DocsRenderer, storage Storage) *PaymentService {
	return &PaymentService{db: db, mailer: mailer, docs: docs, storage: storage}
}

var (
	ErrUnknownInvoice = errors.New("no matching invoice for this application")
	ErrInvoiceClosed  = errors.New("this invoice has already been settled")
)

// SettlementInput is the normalized provider callback.
type SettlementInput struct {
	ApplicationID string
	InvoiceRef    string
	Amount        int64
	Failed        bool
}

// Settle records the provider's result against a pending invoice. On a
// successful payment the receipt is rendered and stored before the
// invoice flips to settled; the application is marked completed once
// the settled total reaches its fee. The receipt email is best effort.
func (s *PaymentService) Settle(in SettlementInput) (string, error) {
	var payment model.Payment
	err := s.db.Preload("Application.Owner").Preload("Application.Session.Program").
		Where("application_id = ? AND invoice_ref = ?", in.ApplicationID, in.InvoiceRef).
		First(&payment).Error
	if err != nil {
		return "", ErrUnknownInvoice
	}

	if payment.Status != model.PaymentStatusPending {
		return "", ErrInvoiceClosed
	}

	if in.Failed {
		if err := s.db.Model(&payment).Update("status", model.PaymentStatusFailed).Error; err != nil {
			return "", fmt.Errorf("mark invoice failed: %w", err)
		}
		return "Payment recorded as failed", nil
	}

	app := payment.Application

	receipt, err := s.docs.Render(DocReceipt, s.receiptData(&payment, in.Amount))
	if err != nil {
		return "", fmt.Errorf("render receipt: %w", err)
	}
	receiptURL, err := s.storage.Upload(receipt, fmt.Sprintf("payments/%s/receipt.pdf", payment.ID))
	if err != nil {
		return "", fmt.Errorf("store receipt: %w", err)
	}

	err = s.db.Model(&payment).Updates(map[string]interface{}{
		"amount_paid": payment.AmountPaid + in.Amount,
		"status":      model.PaymentStatusSettled,
		"receipt_url": receiptURL,
	}).Error
	if err != nil {
		return "", fmt.Errorf("settle invoice: %w", err)
	}

	if app != nil {
		var paid int64
		s.db.Model(&model.Payment{}).
			Where("application_id = ? AND status = ?", app.ID, model.PaymentStatusSettled).
			Select("COALESCE(SUM(amount_paid), 0)").Scan(&paid)

		if paid >= app.Fee && app.Status == model.ApplicationStatusApproved {
			if err := s.db.Model(app).Update("status", model.ApplicationStatusCompleted).Error; err != nil {
				return "", fmt.Errorf("complete application: %w", err)
			}
		}
	}

	if payment.PayeeEmail != "" {
		body := fmt.Sprintf("<p>We received your payment of %d %s. Your receipt is attached.</p>",
			in.Amount, payment.Currency)
		html, rerr := RenderEmail("Payment Received", body, "", "")
		if rerr == nil {
			rerr = s.mailer.SendEmailWithAttachments(
				[]string{payment.PayeeEmail},
				"Your payment receipt",
				html,
				[]Attachment{{Filename: "receipt.pdf", Content: receipt}},
			)
		}
		if rerr != nil {
			log.Printf("[payment] receipt email for %s failed: %v", payment.ID, rerr)
			return "Payment settled, but the receipt email could not be delivered", nil
		}
	}

	return "Payment settled", nil
}

// receiptData is the payload for the receipt template.
func (s *PaymentService) receiptData(payment *model.Payment, amount int64) map[string]interface{} {
	data := map[string]interface{}{
		"invoice_ref": payment.InvoiceRef,
		"amount":      amount,
		"currency":    payment.Currency,
		"payee_name":  payment.PayeeName,
		"payee_email": payment.PayeeEmail,
	}
	if app := payment.Application; app != nil {
		data["application_id"] = app.ID
		if app.Session != nil && app.Session.Program != nil {
			data["program"] = app.Session.Program.Title
		}
	}
	return data
}
