package channel

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/educonnect/reengage-engine/internal/models"
	"github.com/educonnect/reengage-engine/internal/repository"
)

// EmailAdapter sends messages over the organization's own SMTP relay.
// Incomplete settings fail the attempt without opening a connection.
type EmailAdapter struct {
	orgRepo repository.OrgSettingsRepository
	subject string

	// sendMail is swappable in tests; the default talks real SMTP
	sendMail func(settings *models.OrgSMTPSettings, to, subject, htmlBody string) error
}

// NewEmailAdapter creates a new email adapter
func NewEmailAdapter(orgRepo repository.OrgSettingsRepository, subject string) *EmailAdapter {
	return &EmailAdapter{
		orgRepo:  orgRepo,
		subject:  subject,
		sendMail: smtpSend,
	}
}

// Send delivers the message as an HTML email to the lead's address
func (a *EmailAdapter) Send(ctx context.Context, lead *models.Lead, message string) models.DispatchOutcome {
	if lead.Email == "" {
		return failure(lead, models.ChannelEmail, message, "lead has no email address")
	}

	settings, err := a.orgRepo.GetSMTPSettings(ctx, lead.OrgID)
	if err != nil {
		return failure(lead, models.ChannelEmail, message, fmt.Sprintf("smtp settings lookup failed: %v", err))
	}
	if !settings.Complete() {
		return failure(lead, models.ChannelEmail, message, "smtp settings missing or incomplete for organization")
	}

	if err := a.sendMail(settings, lead.Email, a.subject, htmlBody(message)); err != nil {
		return failure(lead, models.ChannelEmail, message, fmt.Sprintf("smtp send failed: %v", err))
	}

	return success(lead, models.ChannelEmail, message, "")
}

// htmlBody wraps the rendered text in a minimal HTML envelope, preserving
// line breaks
func htmlBody(message string) string {
	return "<html><body><p>" + strings.ReplaceAll(message, "\n", "<br>") + "</p></body></html>"
}

// smtpSend performs one SMTP transaction: implicit TLS when the settings ask
// for it, otherwise plain with opportunistic STARTTLS via smtp.SendMail.
func smtpSend(settings *models.OrgSMTPSettings, to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", settings.Host, settings.Port)
	auth := smtp.PlainAuth("", settings.Username, settings.Password, settings.Host)

	var msg strings.Builder
	msg.WriteString("From: " + settings.FromAddress + "\r\n")
	msg.WriteString("To: " + to + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	if !settings.UseTLS {
		return smtp.SendMail(addr, auth, settings.FromAddress, []string{to}, []byte(msg.String()))
	}

	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: settings.Host})
	if err != nil {
		return fmt.Errorf("tls dial failed: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, settings.Host)
	if err != nil {
		return fmt.Errorf("smtp handshake failed: %w", err)
	}
	defer client.Close()

	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth failed: %w", err)
	}
	if err := client.Mail(settings.FromAddress); err != nil {
		return fmt.Errorf("smtp MAIL failed: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp RCPT failed: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA failed: %w", err)
	}
	if _, err := w.Write([]byte(msg.String())); err != nil {
		return fmt.Errorf("smtp write failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close failed: %w", err)
	}

	return client.Quit()
}
