package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"

	"github.com/xavierca1/leadbridge/internal/entity"
	"github.com/xavierca1/leadbridge/internal/usecase"
)

var reminderTemplate = template.Must(template.New("reminder").Parse(`<p>A follow-up task is overdue.</p>
<ul>
  <li><strong>Task:</strong> {{.TaskTitle}}</li>
  <li><strong>Due:</strong> {{.DueDate}}</li>
  <li><strong>Lead:</strong> {{.LeadName}}{{if .LeadPhone}} ({{.LeadPhone}}){{end}}</li>
</ul>
{{if .ChatLink}}<p><a href="{{.ChatLink}}">Open chat</a></p>{{end}}
`))

// NewEmailSender sends reminders from "from" to "to" through the given SMTP server.
func NewEmailSender(host string, port int, user, password, from, to string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
		To:       to,
		dialer:   gomail.NewDialer(host, port, user, password),
	}
}

// WithDialer troca o dialer SMTP (usado nos testes)
func (s *EmailSender) WithDialer(d Dialer) *EmailSender {
	s.dialer = d
	return s
}

// SendTaskReminder mails the overdue task together with its lead's contact details.
func (s *EmailSender) SendTaskReminder(ctx context.Context, task entity.Task, lead entity.Lead) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data := TaskReminderData{
		LeadName:  lead.Name,
		LeadPhone: lead.Phone,
		TaskTitle: task.Title,
		DueDate:   entity.FormatDisplayDateTime(task.DueDate),
		ChatLink:  usecase.ChatLink(lead.Phone),
	}
	if data.LeadName == "" {
		data.LeadName = "Unknown lead"
	}

	// 1. Monta o corpo
	var body bytes.Buffer
	if err := reminderTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render reminder: %w", err)
	}

	// 2. Envia
	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", s.To)
	m.SetHeader("Subject", fmt.Sprintf("Overdue: %s", task.Title))
	m.SetBody("text/html", body.String())

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send reminder over SMTP: %w", err)
	}

	return nil
}
