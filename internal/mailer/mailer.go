package mailer

import (
	"context"
	"errors"
	"fmt"
	"html"

	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/wneessen/go-mail"
)

type SMTPMailer struct {
	cfg config.MailConfig
}

func NewSMTP(cfg config.MailConfig) (*SMTPMailer, error) {
	if cfg.Host == "" {
		return nil, errors.New("mailer: MAIL_HOST is empty")
	}
	return &SMTPMailer{cfg: cfg}, nil
}

func (m *SMTPMailer) SendMail(ctx context.Context, to, subject, htmlBody string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("mailer: from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("mailer: to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if m.cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.User),
			mail.WithPassword(m.cfg.Password),
		)
	}
	c, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("mailer: client: %w", err)
	}
	if err := c.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("mailer: send: %w", err)
	}
	return nil
}

// EmailTemplate wraps text in the shop's plain mail layout.
func EmailTemplate(text string) string {
	return `<div class="email" style="border: 1px solid black; padding: 20px; font-family: sans-serif; line-height: 2; font-size: 20px;">` +
		`<h2>Hello There!</h2><p>` + text + `</p><p>😘, The Storefront</p></div>`
}

func ResetLink(frontendURL, token string) string {
	return frontendURL + "/reset?resetToken=" + token
}

func ResetEmail(frontendURL, token string) string {
	link := html.EscapeString(ResetLink(frontendURL, token))
	return EmailTemplate(`Your Password Reset Token is here!<br/><br/><a href="` + link + `">Click Here to Reset</a>`)
}
