package service

import "context"

// NotificationTemplate selects which message the notifier sends.
type NotificationTemplate string

const (
	TemplateVerifyEmail        NotificationTemplate = "verify_email"
	TemplateResetPassword      NotificationTemplate = "reset_password"
	TemplateChangeEmailConfirm NotificationTemplate = "change_email_confirm"
	TemplateChangeEmailCancel  NotificationTemplate = "change_email_cancel"
)

// Notification is what the account flows hand to the notifier: the recipient and
// the token value to embed. Link structure is owned by the notifier.
type Notification struct {
	Template  NotificationTemplate
	Recipient string
	Token     string
	Context   map[string]string
}

// Notifier delivers account flow messages.
type Notifier interface {
	Notify(ctx context.Context, notification *Notification) error
}
