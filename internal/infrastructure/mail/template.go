package mail

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
)

const PasswordResetSubject = "Reset your password"

var (
	resetHTMLTemplate = htmltemplate.Must(htmltemplate.New("reset_html").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333; max-width: 600px; margin: 0 auto;">
  <h2>Password reset</h2>
  <p>Hello {{.Name}},</p>
  <p>We received a request to reset the password for your account. Click the button below to choose a new one.</p>
  <p style="text-align: center; margin: 32px 0;">
    <a href="{{.ResetURL}}" style="background: #2563eb; color: #fff; padding: 12px 24px; border-radius: 6px; text-decoration: none;">Reset password</a>
  </p>
  <p>Or copy this link into your browser:<br><a href="{{.ResetURL}}">{{.ResetURL}}</a></p>
  <p>This link expires in {{.ExpiresIn}}. If you did not request a reset, you can ignore this email.</p>
</body>
</html>
`))

	resetTextTemplate = texttemplate.Must(texttemplate.New("reset_text").Parse(`Hello {{.Name}},

We received a request to reset the password for your account.
Open the link below to choose a new one:

{{.ResetURL}}

This link expires in {{.ExpiresIn}}. If you did not request a reset, you can ignore this email.
`))
)

type resetEmailData struct {
	Name      string
	ResetURL  string
	ExpiresIn string
}

// PasswordResetEmail renders the reset message addressed to one user.
func PasswordResetEmail(to, name, resetURL, expiresIn string) (Message, error) {
	if name == "" {
		name = "there"
	}
	data := resetEmailData{Name: name, ResetURL: resetURL, ExpiresIn: expiresIn}

	var html, text bytes.Buffer
	if err := resetHTMLTemplate.Execute(&html, data); err != nil {
		return Message{}, fmt.Errorf("failed to render reset email: %w", err)
	}
	if err := resetTextTemplate.Execute(&text, data); err != nil {
		return Message{}, fmt.Errorf("failed to render reset email: %w", err)
	}

	return Message{
		To:      to,
		Subject: PasswordResetSubject,
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}
