package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"text/template"

	"crewshift/internal/domain/auth"
	"crewshift/internal/domain/calendar"
	"crewshift/internal/domain/payroll"
	"crewshift/internal/domain/shifts"
)

// MailMessage is the queue payload consumed by the mailer.
type MailMessage struct {
	Type string            `json:"type"`
	To   string            `json:"to"`
	Data map[string]string `json:"data"`
}

type Publisher interface {
	Publish(ctx context.Context, body []byte) error
}

// Mailer delivers a rendered message.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type Service struct {
	publisher Publisher
	users     auth.UserLookup
}

func New(publisher Publisher, users auth.UserLookup) *Service {
	return &Service{publisher: publisher, users: users}
}

// ShiftDecided queues a mail to the worker whose shift was decided.
func (s *Service) ShiftDecided(ctx context.Context, sub shifts.Submission, rec *payroll.Record) error {
	worker, err := s.users.FindUserByID(ctx, sub.WorkerID)
	if err != nil {
		return err
	}
	if worker.Email == "" {
		return nil
	}

	msg := MailMessage{
		Type: TypeShiftRejected,
		To:   worker.Email,
		Data: map[string]string{
			"name":    worker.Name,
			"shiftId": sub.ID,
			"date":    calendar.FormatDate(sub.Date),
			"hours":   sub.HoursWorked.String(),
		},
	}
	if sub.Status == shifts.StatusApproved {
		msg.Type = TypeShiftApproved
		if rec != nil {
			msg.Data["total"] = rec.TotalAmount.StringFixed(2)
			msg.Data["weekStart"] = calendar.FormatDate(rec.WeekStart)
		}
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return s.publisher.Publish(ctx, body)
}

var templates = map[string]struct {
	subject string
	body    *template.Template
}{
	TypeShiftApproved: {
		subject: "Your shift was approved",
		body: template.Must(template.New(TypeShiftApproved).Parse(
			"Hi {{.name}},\n\nYour shift on {{.date}} ({{.hours}} hours) was approved.\n" +
				"{{with .total}}It adds {{.}} to your payroll for the week of {{$.weekStart}}.\n{{end}}")),
	},
	TypeShiftRejected: {
		subject: "Your shift was rejected",
		body: template.Must(template.New(TypeShiftRejected).Parse(
			"Hi {{.name}},\n\nYour shift on {{.date}} ({{.hours}} hours) was rejected. Contact your manager for details.\n")),
	},
}

// Render returns the subject and plain-text body for a queued message.
func Render(msg MailMessage) (string, string, error) {
	tmpl, ok := templates[msg.Type]
	if !ok {
		return "", "", fmt.Errorf("unsupported mail type %q", msg.Type)
	}
	var buf bytes.Buffer
	if err := tmpl.body.Execute(&buf, msg.Data); err != nil {
		return "", "", err
	}
	return tmpl.subject, buf.String(), nil
}

// Deliver renders msg and hands it to mailer.
func Deliver(ctx context.Context, mailer Mailer, msg MailMessage) error {
	if msg.To == "" {
		return fmt.Errorf("mail message has no recipient")
	}
	subject, body, err := Render(msg)
	if err != nil {
		return err
	}
	return mailer.Send(ctx, msg.To, subject, body)
}
