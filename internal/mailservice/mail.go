package mailservice

import (
	"fmt"
	"time"

	"github.com/go-mail/mail/v2"
)

// NewMailer creates a mailer that renders templates with tp and delivers them over SMTP.
func NewMailer(host string, port int, username, password, sender string, tp *Template) *Mail {
	dialer := mail.NewDialer(host, port, username, password)
	dialer.Timeout = 5 * time.Second

	return &Mail{
		dialer: dialer,
		sender: sender,
		parser: tp,
	}
}

// send renders templateFile with data and mails it to recipient as a
// multipart message with plain text and HTML alternatives.
func (m *Mail) send(recipient string, data any, templateFile string) error {
	subject, plainBody, htmlBody, err := m.parser.ParseTemplate(templateFile, data)
	if err != nil {
		return err
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", m.sender)
	msg.SetHeader("To", recipient)
	msg.SetHeader("Subject", subject.String())
	msg.SetBody("text/plain", plainBody.String())
	msg.AddAlternative("text/html", htmlBody.String())

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("could not send email to %s: %w", recipient, err)
	}

	return nil
}
