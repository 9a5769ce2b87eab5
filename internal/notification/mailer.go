package notification

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/rentledger/rentledger-api/internal/config"
)

// InviteMailer delivers invitation emails. The invite URL it receives is
// the only channel on which a raw invitation token ever leaves the server.
type InviteMailer interface {
	SendInvite(recipientEmail, inviteURL string) error
}

// SMTPInviteMailer sends invitation emails through an SMTP server.
type SMTPInviteMailer struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// NewSMTPInviteMailer constructs a new SMTPInviteMailer from config.
func NewSMTPInviteMailer(cfg config.EmailConfig) (*SMTPInviteMailer, error) {
	if strings.TrimSpace(cfg.SMTPHost) == "" {
		return nil, fmt.Errorf("smtp_host is required")
	}
	if cfg.SMTPPort == 0 {
		cfg.SMTPPort = 587
	}
	if strings.TrimSpace(cfg.From) == "" {
		return nil, fmt.Errorf("email from address is required")
	}

	return &SMTPInviteMailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.Username,
		password: cfg.Password,
		from:     cfg.From,
	}, nil
}

// SendInvite dispatches an invitation email to a prospective account owner.
func (m *SMTPInviteMailer) SendInvite(recipientEmail, inviteURL string) error {
	headers := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n",
		m.from, recipientEmail, "You have been invited to RentLedger")

	body := strings.Builder{}
	body.WriteString("Hello,\n\n")
	body.WriteString("You've been invited to create your own RentLedger account.\n")
	body.WriteString("Click the link below to register:\n\n")
	body.WriteString(inviteURL + "\n\n")
	body.WriteString("The link expires in 24 hours. If you did not expect this email, you can safely ignore it.\n\n")
	body.WriteString("Thanks,\nThe RentLedger Team\n")

	message := []byte(headers + body.String())

	addr := fmt.Sprintf("%s:%d", m.host, m.port)

	var auth smtp.Auth
	if strings.TrimSpace(m.username) != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	return smtp.SendMail(addr, auth, m.from, []string{recipientEmail}, message)
}
