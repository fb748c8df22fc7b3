package mailer

import (
	"fmt"
	"time"

	"github.com/diagnosis/teamtodo/internal/domain"
)

const (
	verificationSubject = "Your TeamTodo verification code"
	welcomeSubject      = "Welcome to TeamTodo!"
)

func verificationBodies(code string) (text, html string) {
	minutes := int(domain.CodeTTL / time.Minute)

	text = fmt.Sprintf("Your verification code is: %s\nIt expires in %d minutes.\n\nIf you didn't request this code, please ignore this email.", code, minutes)
	html = fmt.Sprintf(`
		<h2>Welcome to TeamTodo!</h2>
		<p>Your verification code is:</p>
		<h1 style="font-size: 32px; letter-spacing: 8px; font-family: monospace; background-color: #f4f4f4; padding: 20px; text-align: center;">%s</h1>
		<p>This code will expire in %d minutes.</p>
		<p>If you didn't request this code, please ignore this email.</p>
	`, code, minutes)
	return text, html
}

func welcomeBodies(displayName, teamName string) (text, html string) {
	text = fmt.Sprintf("Welcome to TeamTodo, %s!\nYou've created your account and joined the team %q.\nYou can now start creating and managing todos with your team.", displayName, teamName)
	html = fmt.Sprintf(`
		<h2>Welcome to TeamTodo, %s!</h2>
		<p>You've successfully created your account and joined the team "%s".</p>
		<p>You can now start creating and managing todos with your team.</p>
		<br>
		<p>Best regards,<br>The TeamTodo Team</p>
	`, displayName, teamName)
	return text, html
}
