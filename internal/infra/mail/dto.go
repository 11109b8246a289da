package mail

import "gopkg.in/gomail.v2"

type TaskReminderData struct {
	LeadName  string
	LeadPhone string
	TaskTitle string
	DueDate   string
	ChatLink  string
}

// Dialer is satisfied by *gomail.Dialer.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	To       string

	dialer Dialer
}
