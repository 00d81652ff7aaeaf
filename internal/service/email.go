package service

import (
	"bytes"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"html/template"
	"mime"
	"net/smtp"
	"path/filepath"
	"strings"

	"training-portal/internal/config"
)

// Attachment is a file sent along with an email.
type Attachment struct {
	Filename string
	Content  []byte
}

// Mailer is the outbound email dependency of the lifecycle services.
type Mailer interface {
	SendEmail(to, subject, body string) error
	SendEmailWithAttachments(to []string, subject, body string, attachments []Attachment) error
}

// EmailService delivers transactional mail over SMTP.
type EmailService struct {
	host     string
	port     int
	username string
	password string
	from     string
	enabled  bool
}

// NewEmailService reads the mail transport from config.
func NewEmailService() *EmailService {
	cfg := config.Get()
	return &EmailService{
		host:     cfg.Email.SMTPHost,
		port:     cfg.Email.SMTPPort,
		username: cfg.Email.Username,
		password: cfg.Email.Password,
		from:     cfg.Email.From,
		enabled:  cfg.Email.Enabled,
	}
}

// SendEmail sends a single HTML message.
func (s *EmailService) SendEmail(to, subject, body string) error {
	if !s.enabled || s.host == "" {
		return fmt.Errorf("email transport is not configured")
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.from, to, subject, body)

	return s.deliver([]string{to}, []byte(msg))
}

// SendEmailWithAttachments sends a multipart HTML message.
func (s *EmailService) SendEmailWithAttachments(to []string, subject, body string, attachments []Attachment) error {
	if !s.enabled || s.host == "" {
		return fmt.Errorf("email transport is not configured")
	}

	boundary := "training-portal-boundary"

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", s.from)
	fmt.Fprintf(&buf, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%s\r\n\r\n", boundary)

	fmt.Fprintf(&buf, "--%s\r\n", boundary)
	buf.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	buf.WriteString(body)
	buf.WriteString("\r\n")

	for _, att := range attachments {
		contentType := mime.TypeByExtension(filepath.Ext(att.Filename))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		fmt.Fprintf(&buf, "--%s\r\n", boundary)
		fmt.Fprintf(&buf, "Content-Type: %s\r\n", contentType)
		buf.WriteString("Content-Transfer-Encoding: base64\r\n")
		fmt.Fprintf(&buf, "Content-Disposition: attachment; filename=%q\r\n\r\n", att.Filename)

		encoded := base64.StdEncoding.EncodeToString(att.Content)
		for len(encoded) > 76 {
			buf.WriteString(encoded[:76] + "\r\n")
			encoded = encoded[76:]
		}
		buf.WriteString(encoded + "\r\n")
	}
	fmt.Fprintf(&buf, "--%s--\r\n", boundary)

	return s.deliver(to, buf.Bytes())
}

func (s *EmailService) deliver(to []string, msg []byte) error {
	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	auth := smtp.PlainAuth("", s.username, s.password, s.host)

	if s.port == 465 {
		return s.deliverTLS(to, msg)
	}

	return smtp.SendMail(addr, auth, s.from, to, msg)
}

func (s *EmailService) deliverTLS(to []string, msg []byte) error {
	tlsConfig := &tls.Config{
		InsecureSkipVerify: true,
		ServerName:         s.host,
	}

	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	conn, err := tls.Dial("tcp", addr, tlsConfig)
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		return err
	}
	defer client.Close()

	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	if err = client.Auth(auth); err != nil {
		return err
	}

	if err = client.Mail(s.from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err = client.Rcpt(rcpt); err != nil {
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		return err
	}

	if _, err = w.Write(msg); err != nil {
		return err
	}

	return w.Close()
}

const baseEmailTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #00573f; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background: #f9f9f9; }
        .footer { padding: 20px; text-align: center; color: #999; font-size: 12px; }
        .btn { display: inline-block; padding: 10px 20px; background: #00573f; color: white; text-decoration: none; border-radius: 4px; }
        .warning { color: #ff4d4f; font-weight: bold; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>{{.Heading}}</h1>
        </div>
        <div class="content">
            {{.Body}}
            {{if .ActionURL}}
            <p style="text-align: center; margin-top: 30px;">
                <a href="{{.ActionURL}}" class="btn">{{.ActionLabel}}</a>
            </p>
            {{end}}
        </div>
        <div class="footer">
            <p>This email was sent automatically, please do not reply.</p>
        </div>
    </div>
</body>
</html>
`

type emailData struct {
	Heading     string
	Body        template.HTML
	ActionURL   string
	ActionLabel string
}

// RenderEmail fills the shared layout with a heading, an HTML body
// fragment and an optional call to action.
func RenderEmail(heading, bodyHTML, actionURL, actionLabel string) (string, error) {
	tmpl, err := template.New("email").Parse(baseEmailTemplate)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, emailData{
		Heading:     heading,
		Body:        template.HTML(bodyHTML),
		ActionURL:   actionURL,
		ActionLabel: actionLabel,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
