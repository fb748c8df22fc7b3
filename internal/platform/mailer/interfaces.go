package mailer

import "context"

// Service is the outbound email gateway for the auth flow. Sending is
// synchronous on the request path; a transport failure fails the
// request that triggered it.
type Service interface {
	SendVerificationCode(ctx context.Context, toEmail, code string) error
	SendWelcome(ctx context.Context, toEmail, displayName, teamName string) error
}
