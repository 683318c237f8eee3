package email

import (
	"context"
	"strings"

	"github.com/wneessen/go-mail"

	"crewshift/internal/platform/config"
)

type Mailer struct {
	client *mail.Client
	from   string
}

// New builds an SMTP client from cfg.SMTP. It does not dial until Send.
func New(cfg config.Config) (*Mailer, error) {
	opts := []mail.Option{mail.WithPort(cfg.SMTP.Port)}
	if cfg.SMTP.UseSSL {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSOpportunistic))
	}
	if cfg.SMTP.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.SMTP.Username),
			mail.WithPassword(cfg.SMTP.Password),
		)
	}
	client, err := mail.NewClient(cfg.SMTP.Host, opts...)
	if err != nil {
		return nil, err
	}
	return &Mailer{client: client, from: cfg.SMTP.From}, nil
}

func (m *Mailer) Send(ctx context.Context, to, subject, body string) error {
	msg, err := buildMessage(m.from, to, subject, body)
	if err != nil {
		return err
	}
	return m.client.DialAndSendWithContext(ctx, msg)
}

func (m *Mailer) Close() error {
	return m.client.Close()
}

func buildMessage(from, to, subject, body string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, err
	}
	if err := msg.To(strings.TrimSpace(to)); err != nil {
		return nil, err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)
	return msg, nil
}
