package mailer

import (
	"fmt"

	gomail "gopkg.in/gomail.v2"

	"github.com/sushilghimire07/Social-Media-App/internal/config"
	"github.com/sushilghimire07/Social-Media-App/internal/domain"
)

// Mailer sends worker notification emails.
type Mailer interface {
	SendConnectionRequest(to *domain.User, from *domain.User) error
	SendConnectionReminder(to *domain.User, from *domain.User) error
	SendUnseenDigest(to *domain.User, unseenCount int) error
}

// SMTPMailer implements Mailer over plain SMTP.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
	appURL string
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		appURL: cfg.AppURL,
	}
}

func (m *SMTPMailer) send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}

// SendConnectionRequest notifies the recipient of a new connection request.
func (m *SMTPMailer) SendConnectionRequest(to *domain.User, from *domain.User) error {
	subject := "New connection request"
	body := fmt.Sprintf(
		`<p>Hi %s,</p>
<p><strong>%s</strong> (@%s) wants to connect with you.</p>
<p><a href="%s/connections">View the request</a></p>`,
		to.FullName, from.FullName, from.Username, m.appURL,
	)
	return m.send(to.Email, subject, body)
}

// SendConnectionReminder reminds the recipient of a request still pending
// after 24 hours.
func (m *SMTPMailer) SendConnectionReminder(to *domain.User, from *domain.User) error {
	subject := "Reminder: connection request pending"
	body := fmt.Sprintf(
		`<p>Hi %s,</p>
<p>The connection request from <strong>%s</strong> (@%s) is still waiting for you.</p>
<p><a href="%s/connections">View the request</a></p>`,
		to.FullName, from.FullName, from.Username, m.appURL,
	)
	return m.send(to.Email, subject, body)
}

// SendUnseenDigest tells the recipient how many unread messages they have.
func (m *SMTPMailer) SendUnseenDigest(to *domain.User, unseenCount int) error {
	subject := fmt.Sprintf("You have %d unread messages", unseenCount)
	body := fmt.Sprintf(
		`<p>Hi %s,</p>
<p>You have <strong>%d</strong> unread messages waiting for you.</p>
<p><a href="%s/messages">Open your inbox</a></p>`,
		to.FullName, unseenCount, m.appURL,
	)
	return m.send(to.Email, subject, body)
}

var _ Mailer = (*SMTPMailer)(nil)
