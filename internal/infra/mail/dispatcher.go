package mail

import (
	"context"
	"log/slog"

	"accounts/config"
	"accounts/internal/domain/constants"
	"accounts/internal/domain/service"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// Dispatcher renders mail events and delivers them through the configured sender.
type Dispatcher struct {
	sender service.MailSender
}

// NewDispatcher creates a Dispatcher over sender.
func NewDispatcher(sender service.MailSender) *Dispatcher {
	return &Dispatcher{sender: sender}
}

// Deliver renders and sends one event. Render failures wrap ErrUnknownTemplate
// or ErrRenderFailed and will not succeed on retry.
func (d *Dispatcher) Deliver(ctx context.Context, event *service.MailEvent) error {
	message, err := Render(event)
	if err != nil {
		return err
	}

	return errors.Wrap(d.sender.Send(ctx, message), "failed to send mail")
}

// SenderParams holds dependencies for the MailSender, injected by Fx
type SenderParams struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

// NewMailSender creates a MailSender based on mail.provider
func NewMailSender(params SenderParams) (service.MailSender, error) {
	cfg := params.Config.Mail
	if cfg == nil {
		return NewLogSender(params.Logger), nil
	}

	switch cfg.Provider {
	case constants.MailProviderLog, "":
		params.Logger.Info("Using log mail sender")

		return NewLogSender(params.Logger), nil
	case constants.MailProviderSES:
		return NewSESSender(params.Ctx, cfg, params.Logger)
	default:
		return nil, errors.Errorf("unknown mail provider: %s", cfg.Provider)
	}
}

// Module provides the mail FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(NewMailSender, NewDispatcher),
)
