package mailer

import (
	"context"

	"github.com/diagnosis/teamtodo/pkg/logger"
)

// DevMailer logs messages instead of sending them.
type DevMailer struct{}

func NewDevMailer() *DevMailer {
	return &DevMailer{}
}

func (d *DevMailer) SendVerificationCode(ctx context.Context, toEmail, code string) error {
	logger.InfoContext(ctx, "📧 [DEV MAIL] verification code",
		"to", toEmail,
		"code", code,
	)
	return nil
}

func (d *DevMailer) SendWelcome(ctx context.Context, toEmail, displayName, teamName string) error {
	logger.InfoContext(ctx, "📧 [DEV MAIL] welcome",
		"to", toEmail,
		"name", displayName,
		"team", teamName,
	)
	return nil
}
