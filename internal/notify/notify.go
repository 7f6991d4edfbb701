// Package notify emails portfolio owners when a contact message arrives.
package notify

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/sakif/flexfolio/internal/model"
)

// Sender delivers composed messages. *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPConfig is the outgoing mail server. An empty Host disables email.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

func (c SMTPConfig) Enabled() bool { return c.Host != "" && c.From != "" }

// Mailer sends one plain-text email per new message to the owner's
// registered address, with Reply-To set to the visitor.
type Mailer struct {
	sender Sender
	from   string
}

func NewMailer(cfg SMTPConfig) *Mailer {
	return NewMailerWithSender(gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password), cfg.From)
}

func NewMailerWithSender(sender Sender, from string) *Mailer {
	return &Mailer{sender: sender, from: from}
}

func (m *Mailer) NewMessage(ctx context.Context, owner *model.User, msg *model.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	mail := gomail.NewMessage()
	mail.SetHeader("From", m.from)
	mail.SetHeader("To", owner.Email)
	mail.SetAddressHeader("Reply-To", msg.SenderEmail, msg.SenderName)
	mail.SetHeader("Subject", subject(msg))
	mail.SetBody("text/plain", body(owner, msg))

	if err := m.sender.DialAndSend(mail); err != nil {
		return fmt.Errorf("notify: sending to %s: %w", owner.Username, err)
	}
	return nil
}

func subject(msg *model.Message) string {
	if msg.Subject == "" {
		return "New message from " + msg.SenderName
	}
	return "New message: " + msg.Subject
}

func body(owner *model.User, msg *model.Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", owner.Name)
	fmt.Fprintf(&b, "%s <%s> sent you a message through your portfolio:\n\n", msg.SenderName, msg.SenderEmail)
	b.WriteString(msg.Body)
	b.WriteString("\n\nReply to this email to answer them directly.\n")
	return b.String()
}

// Nop is used when SMTP is not configured.
type Nop struct{}

func (Nop) NewMessage(context.Context, *model.User, *model.Message) error { return nil }
