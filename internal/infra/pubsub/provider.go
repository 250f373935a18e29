package pubsub

import (
	"context"
	"log/slog"

	"accounts/config"
	"accounts/internal/domain/constants"
	"accounts/internal/domain/service"
	"accounts/internal/infra/mail"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// MailDeliverer renders and sends a mail event
type MailDeliverer interface {
	Deliver(ctx context.Context, event *service.MailEvent) error
}

// inlinePublisher delivers mail events in-process when no broker is configured
type inlinePublisher struct {
	deliverer MailDeliverer
	logger    *slog.Logger
}

// NewInlinePublisher creates a publisher that hands events straight to the deliverer
func NewInlinePublisher(deliverer MailDeliverer, logger *slog.Logger) service.EventPublisher {
	return &inlinePublisher{deliverer: deliverer, logger: logger}
}

func (p *inlinePublisher) PublishMailEvent(ctx context.Context, event *service.MailEvent) error {
	p.logger.Debug("[InlinePubSub] Delivering mail event in-process",
		slog.String("event_id", event.EventID),
		slog.String("template", string(event.Template)),
	)

	return p.deliverer.Deliver(ctx, event)
}

func (p *inlinePublisher) Close() error {
	return nil
}

// PublisherParams holds dependencies for EventPublisher, injected by Fx
type PublisherParams struct {
	fx.In

	Lc        fx.Lifecycle
	Ctx       context.Context
	Config    *config.Config
	Deliverer MailDeliverer
	Logger    *slog.Logger
}

// NewEventPublisher creates an EventPublisher based on configuration
func NewEventPublisher(params PublisherParams) (service.EventPublisher, error) {
	cfg := params.Config.PubSub
	logger := params.Logger

	if cfg == nil || cfg.Provider == constants.PubSubProviderInline {
		logger.Info("PubSub not configured, delivering mail inline")

		return NewInlinePublisher(params.Deliverer, logger), nil
	}

	var publisher service.EventPublisher
	var err error

	switch cfg.Provider {
	case constants.PubSubProviderLocal:
		if cfg.LocalEndpoint == "" {
			return nil, errors.New("local endpoint is required for local provider")
		}
		logger.Info("Using local HTTP publisher for Pub/Sub",
			slog.String("endpoint", cfg.LocalEndpoint),
		)

		publisher = NewLocalHTTPPublisher(cfg.LocalEndpoint, logger)

	case constants.PubSubProviderGoogle:
		if cfg.ProjectID == "" {
			return nil, errors.New("project ID is required for google provider")
		}
		if cfg.TopicID == "" {
			return nil, errors.New("topic ID is required for google provider")
		}
		logger.Info("Using Google Pub/Sub publisher",
			slog.String("project_id", cfg.ProjectID),
			slog.String("topic_id", cfg.TopicID),
		)

		publisher, err = NewGooglePubSubPublisher(params.Ctx, cfg.ProjectID, cfg.TopicID, logger)
		if err != nil {
			return nil, err
		}

	default:
		return nil, errors.Errorf("unknown pubsub provider: %s", cfg.Provider)
	}

	params.Lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Info("Closing EventPublisher")

			return publisher.Close()
		},
	})

	return publisher, nil
}

// Module provides the Pub/Sub FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(
		NewEventPublisher,
		func(d *mail.Dispatcher) MailDeliverer { return d },
	),
)
