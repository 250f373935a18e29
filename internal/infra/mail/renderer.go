// Package mail renders account emails and hands them to a delivery transport.
package mail

import (
	"bytes"
	htmltemplate "html/template"
	texttemplate "text/template"

	"accounts/internal/domain/service"

	"github.com/pkg/errors"
)

// ErrUnknownTemplate is returned for an event whose template has no layout.
var ErrUnknownTemplate = errors.New("unknown mail template")

// ErrRenderFailed is returned when a known template fails to execute.
var ErrRenderFailed = errors.New("failed to render mail")

type layout struct {
	subject string
	text    *texttemplate.Template
	html    *htmltemplate.Template
}

// templateData is what the layouts can reference.
type templateData struct {
	Name      string
	Link      string
	NewEmail  string
	OldEmail  string
	Recipient string
}

var layouts = map[service.NotificationTemplate]layout{
	service.TemplateVerifyEmail: {
		subject: "Verify Your Email Address",
		text: texttemplate.Must(texttemplate.New("verify_email").Parse(
			"Hi {{.Name}},\n\nPlease verify your email address by opening the link below:\n\n{{.Link}}\n\n" +
				"This link can only be used once. If you did not create an account, you can ignore this email.\n")),
		html: htmltemplate.Must(htmltemplate.New("verify_email").Parse(
			`<p>Hi {{.Name}},</p><p>Please verify your email address.</p>` +
				`<p><a href="{{.Link}}">Verify Email</a></p>` +
				`<p>This link can only be used once. If you did not create an account, you can ignore this email.</p>`)),
	},
	service.TemplateResetPassword: {
		subject: "Reset Your Password",
		text: texttemplate.Must(texttemplate.New("reset_password").Parse(
			"Hi {{.Name}},\n\nWe received a request to reset your password. Open the link below to choose a new one:\n\n{{.Link}}\n\n" +
				"This link can only be used once. If you did not request a reset, you can ignore this email.\n")),
		html: htmltemplate.Must(htmltemplate.New("reset_password").Parse(
			`<p>Hi {{.Name}},</p><p>We received a request to reset your password.</p>` +
				`<p><a href="{{.Link}}">Reset Password</a></p>` +
				`<p>This link can only be used once. If you did not request a reset, you can ignore this email.</p>`)),
	},
	service.TemplateChangeEmailConfirm: {
		subject: "Verify Your New Email Address",
		text: texttemplate.Must(texttemplate.New("change_email_confirm").Parse(
			"Hi {{.Name}},\n\nConfirm {{.Recipient}} as the new address of your account by opening the link below:\n\n{{.Link}}\n\n" +
				"This link can only be used once.\n")),
		html: htmltemplate.Must(htmltemplate.New("change_email_confirm").Parse(
			`<p>Hi {{.Name}},</p><p>Confirm {{.Recipient}} as the new address of your account.</p>` +
				`<p><a href="{{.Link}}">Confirm Email Change</a></p><p>This link can only be used once.</p>`)),
	},
	service.TemplateChangeEmailCancel: {
		subject: "Email Change Request",
		text: texttemplate.Must(texttemplate.New("change_email_cancel").Parse(
			"Hi {{.Name}},\n\nA request was made to change the email address of your account to {{.NewEmail}}.\n\n" +
				"If this was not you, cancel the change here:\n\n{{.Link}}\n")),
		html: htmltemplate.Must(htmltemplate.New("change_email_cancel").Parse(
			`<p>Hi {{.Name}},</p><p>A request was made to change the email address of your account to {{.NewEmail}}.</p>` +
				`<p>If this was not you, <a href="{{.Link}}">cancel the change</a>.</p>`)),
	},
}

// Render builds the message for a mail event.
func Render(event *service.MailEvent) (*service.MailMessage, error) {
	l, ok := layouts[event.Template]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownTemplate, "template %q", event.Template)
	}

	data := templateData{
		Name:      event.Context["name"],
		Link:      event.Link,
		NewEmail:  event.Context["new_email"],
		OldEmail:  event.Context["old_email"],
		Recipient: event.Recipient,
	}
	if data.Name == "" {
		data.Name = event.Recipient
	}

	var text, html bytes.Buffer
	if err := l.text.Execute(&text, data); err != nil {
		return nil, errors.WithMessagef(ErrRenderFailed, "text body: %v", err)
	}
	if err := l.html.Execute(&html, data); err != nil {
		return nil, errors.WithMessagef(ErrRenderFailed, "html body: %v", err)
	}

	return &service.MailMessage{
		To:       event.Recipient,
		Subject:  l.subject,
		TextBody: text.String(),
		HTMLBody: html.String(),
	}, nil
}
