package mail

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/xavierca1/leadbridge/internal/entity"
)

type captureDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *captureDialer) DialAndSend(m ...*gomail.Message) error {
	d.sent = append(d.sent, m...)
	return d.err
}

func TestSendTaskReminder(t *testing.T) {
	d := &captureDialer{}
	s := NewEmailSender("smtp.test", 587, "bot", "secret", "bot@test", "sales@test").WithDialer(d)

	task := entity.Task{ID: "1", Title: "Call <John>", DueDate: "2023-09-25T10:00:00", LeadID: "1"}
	lead := entity.Lead{ID: "1", Name: "John Smith", Phone: "+1 (555) 123-4567"}

	require.NoError(t, s.SendTaskReminder(context.Background(), task, lead))
	require.Len(t, d.sent, 1)

	m := d.sent[0]
	assert.Equal(t, []string{"sales@test"}, m.GetHeader("To"))
	assert.Equal(t, []string{"Overdue: Call <John>"}, m.GetHeader("Subject"))

	var raw bytes.Buffer
	_, err := m.WriteTo(&raw)
	require.NoError(t, err)
	assert.Contains(t, raw.String(), "John Smith")
	assert.Contains(t, raw.String(), "https://wa.me/15551234567")
}

func TestSendTaskReminderSMTPFailure(t *testing.T) {
	d := &captureDialer{err: errors.New("connection refused")}
	s := NewEmailSender("smtp.test", 587, "", "", "a@test", "b@test").WithDialer(d)

	err := s.SendTaskReminder(context.Background(), entity.Task{Title: "x"}, entity.Lead{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}
