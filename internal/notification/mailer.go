// Package notification renders shop emails and hands them to an SMTP relay.
package notification

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"strconv"

	"github.com/ToslinRazafy/Cosm-tique-E-commerce/internal/domain"
	"github.com/ToslinRazafy/Cosm-tique-E-commerce/pkg/circuitbreaker"
	"github.com/jordan-wright/email"
	"github.com/rs/zerolog"
)

type Mailer interface {
	OrderPlaced(ctx context.Context, e domain.OrderPlacedEvent) error
	OrderStatusChanged(ctx context.Context, e domain.OrderStatusChangedEvent) error
	ContactSubmitted(ctx context.Context, e domain.ContactSubmittedEvent) error
}

// Sender delivers a fully built message.
type Sender interface {
	Send(msg *email.Email) error
}

type SMTPConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	From         string
	ContactInbox string
}

type smtpSender struct {
	addr string
	auth smtp.Auth
}

func (s smtpSender) Send(msg *email.Email) error {
	return msg.Send(s.addr, s.auth)
}

type SMTPMailer struct {
	sender       Sender
	from         string
	contactInbox string
	breaker      *circuitbreaker.Breaker[struct{}]
	log          zerolog.Logger
}

func NewSMTPMailer(cfg SMTPConfig, log zerolog.Logger) *SMTPMailer {
	var auth smtp.Auth
	if cfg.User != "" {
		auth = smtp.PlainAuth("", cfg.User, cfg.Password, cfg.Host)
	}
	sender := smtpSender{addr: cfg.Host + ":" + strconv.Itoa(cfg.Port), auth: auth}
	return NewMailer(sender, cfg.From, cfg.ContactInbox, log)
}

// NewMailer builds a mailer around any Sender.
func NewMailer(sender Sender, from, contactInbox string, log zerolog.Logger) *SMTPMailer {
	return &SMTPMailer{
		sender:       sender,
		from:         from,
		contactInbox: contactInbox,
		breaker:      circuitbreaker.New[struct{}](circuitbreaker.DefaultSettings("smtp"), log),
		log:          log,
	}
}

func (m *SMTPMailer) OrderPlaced(ctx context.Context, e domain.OrderPlacedEvent) error {
	subject := fmt.Sprintf("Confirmation de votre commande #%d", e.OrderID)
	return m.deliver(ctx, orderPlacedTemplate, e, subject, e.Email, "")
}

func (m *SMTPMailer) OrderStatusChanged(ctx context.Context, e domain.OrderStatusChangedEvent) error {
	subject := fmt.Sprintf("Commande #%d : %s", e.OrderID, statusLabel(e.To))
	return m.deliver(ctx, statusChangedTemplate, statusView{OrderStatusChangedEvent: e}, subject, e.Email, "")
}

// ContactSubmitted forwards a visitor message to the shop inbox with the
// visitor as reply-to.
func (m *SMTPMailer) ContactSubmitted(ctx context.Context, e domain.ContactSubmittedEvent) error {
	subject := "Contact : " + e.Subject
	return m.deliver(ctx, contactTemplate, e, subject, m.contactInbox, e.Email)
}

func (m *SMTPMailer) deliver(ctx context.Context, tmpl *template.Template, data any, subject, to, replyTo string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if to == "" {
		return fmt.Errorf("no recipient for %q", subject)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("render %s: %w", tmpl.Name(), err)
	}

	msg := email.NewEmail()
	msg.From = m.from
	msg.To = []string{to}
	msg.Subject = subject
	msg.HTML = body.Bytes()
	if replyTo != "" {
		msg.ReplyTo = []string{replyTo}
	}

	_, err := m.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, m.sender.Send(msg)
	})
	if err != nil {
		return fmt.Errorf("send %s to %s: %w", tmpl.Name(), to, err)
	}
	m.log.Info().Str("template", tmpl.Name()).Str("to", to).Msg("email sent")
	return nil
}
