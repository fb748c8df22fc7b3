package mailer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mailersend/mailersend-go"
)

// MailerSendClient sends through the MailerSend API.
type MailerSendClient struct {
	client *mailersend.Mailersend
	from   mailersend.From
}

func NewMailerSend(apiKey, fromName, fromEmail string) (*MailerSendClient, error) {
	if apiKey == "" || fromEmail == "" {
		return nil, fmt.Errorf("mailersend requires an API key and a from address")
	}
	return &MailerSendClient{
		client: mailersend.NewMailersend(apiKey),
		from:   mailersend.From{Name: fromName, Email: fromEmail},
	}, nil
}

func (m *MailerSendClient) SendVerificationCode(ctx context.Context, toEmail, code string) error {
	text, html := verificationBodies(code)
	return m.send(ctx, toEmail, verificationSubject, text, html)
}

func (m *MailerSendClient) SendWelcome(ctx context.Context, toEmail, displayName, teamName string) error {
	text, html := welcomeBodies(displayName, teamName)
	return m.send(ctx, toEmail, welcomeSubject, text, html)
}

func (m *MailerSendClient) send(ctx context.Context, toEmail, subject, text, html string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	msg := m.client.Email.NewMessage()
	msg.SetFrom(m.from)
	msg.SetRecipients([]mailersend.Recipient{{Email: toEmail}})
	msg.SetSubject(subject)

	if strings.TrimSpace(text) != "" {
		msg.SetText(text)
	}
	if strings.TrimSpace(html) != "" {
		msg.SetHTML(html)
	}

	_, err := m.client.Email.Send(ctx, msg)
	return err
}
