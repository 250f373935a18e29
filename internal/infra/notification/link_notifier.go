package notification

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	deliverycontext "accounts/internal/delivery/context"
	"accounts/internal/domain/service"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrUnknownTemplate is returned for a template without a link route.
var ErrUnknownTemplate = errors.New("no link route for notification template")

//nolint:gochecknoglobals
var linkPaths = map[service.NotificationTemplate]string{
	service.TemplateVerifyEmail:        "/verify-email",
	service.TemplateResetPassword:      "/reset-password",
	service.TemplateChangeEmailConfirm: "/change-email-confirm",
	service.TemplateChangeEmailCancel:  "/change-email-cancel",
}

// linkNotifier turns a notification into a frontend link and publishes it as a mail event
type linkNotifier struct {
	baseURL   string
	publisher service.EventPublisher
	logger    *slog.Logger
}

// NewLinkNotifier creates a Notifier that links into the frontend at baseURL
func NewLinkNotifier(baseURL string, publisher service.EventPublisher, logger *slog.Logger) service.Notifier {
	return &linkNotifier{
		baseURL:   strings.TrimRight(baseURL, "/"),
		publisher: publisher,
		logger:    logger,
	}
}

func (n *linkNotifier) Notify(ctx context.Context, notification *service.Notification) error {
	link, err := n.link(notification.Template, notification.Token)
	if err != nil {
		return err
	}

	event := &service.MailEvent{
		RequestID: deliverycontext.GetRequestIDFromContext(ctx),
		EventID:   uuid.NewString(),
		Template:  notification.Template,
		Recipient: notification.Recipient,
		Link:      link,
		Context:   notification.Context,
	}

	if err := n.publisher.PublishMailEvent(ctx, event); err != nil {
		return errors.Wrap(err, "failed to publish mail event")
	}

	deliverycontext.GetLoggerOrDefault(ctx, n.logger).Debug("Mail event queued",
		slog.String("event_id", event.EventID),
		slog.String("template", string(event.Template)),
	)

	return nil
}

func (n *linkNotifier) link(template service.NotificationTemplate, token string) (string, error) {
	path, ok := linkPaths[template]
	if !ok {
		return "", errors.Wrapf(ErrUnknownTemplate, "template %q", template)
	}

	return n.baseURL + path + "?token=" + url.QueryEscape(token), nil
}
