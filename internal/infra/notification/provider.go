package notification

import (
	"context"
	"log/slog"

	"accounts/config"
	"accounts/internal/domain/service"

	"go.uber.org/fx"
)

// NotifierParams holds dependencies for the Notifier, injected by Fx
type NotifierParams struct {
	fx.In

	Lc        fx.Lifecycle
	Config    *config.Config
	Publisher service.EventPublisher
	Logger    *slog.Logger
}

// NewNotifier creates the link notifier, queued behind a background worker when mail.async is set
func NewNotifier(params NotifierParams) service.Notifier {
	notifier := NewLinkNotifier(params.Config.Frontend.BaseURL, params.Publisher, params.Logger)

	mailCfg := params.Config.Mail
	if mailCfg == nil || !mailCfg.Async {
		return notifier
	}

	async := NewAsyncNotifier(notifier, mailCfg.QueueSize, params.Logger)
	params.Lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			params.Logger.Info("Draining notification queue")

			return async.Close(ctx)
		},
	})

	params.Logger.Info("Notifications queued in background", slog.Int("queue_size", mailCfg.QueueSize))

	return async
}

// Module provides the notification FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(NewNotifier),
)
