package notifier

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Mailer is the delivery boundary; notifications are best-effort so senders
// report errors for logging only.
type Mailer interface {
	Send(to []string, subject, body string) error
}

// SMTPMailer sends through a plain SMTP relay with no auth, which is how the
// local mailhog and the internal relay are both fronted.
type SMTPMailer struct {
	Addr string
	From string
}

func (m *SMTPMailer) Send(to []string, subject, body string) error {
	if len(to) == 0 {
		return nil
	}
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		m.From, strings.Join(to, ", "), subject, body)
	return smtp.SendMail(m.Addr, nil, m.From, to, []byte(msg))
}
