// Package cleanup runs the periodic purge of expired tokens and sessions.
package cleanup

import (
	"context"
	"log/slog"
	"time"

	"accounts/config"
	"accounts/internal/delivery"
	"accounts/internal/usecase"

	"go.uber.org/fx"
)

// JobParams holds dependencies for the cleanup job, injected by Fx
type JobParams struct {
	fx.In

	Lc          fx.Lifecycle
	Config      *config.Config
	Maintenance usecase.MaintenanceUsecase
	Logger      *slog.Logger
}

type job struct {
	interval    time.Duration
	retention   time.Duration
	maintenance usecase.MaintenanceUsecase
	logger      *slog.Logger
	stop        chan struct{}
	done        chan struct{}
}

// NewJob creates the purge loop. It does nothing when storage.cleanupInterval is zero.
func NewJob(params JobParams) delivery.Delivery {
	j := &job{
		interval:    params.Config.Storage.CleanupInterval,
		retention:   params.Config.Storage.CleanupRetention,
		maintenance: params.Maintenance,
		logger:      params.Logger,
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}

	params.Lc.Append(fx.Hook{
		OnStop: j.shutdown,
	})

	return j
}

// Serve purges on every tick until the job is stopped.
func (j *job) Serve(ctx context.Context) error {
	defer close(j.done)

	if j.interval <= 0 {
		j.logger.Info("Expired record cleanup disabled")

		return nil
	}

	j.logger.Info("Starting expired record cleanup",
		slog.Duration("interval", j.interval),
		slog.Duration("retention", j.retention),
	)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-j.stop:
			return nil
		case <-ticker.C:
			j.runOnce(ctx)
		}
	}
}

func (j *job) runOnce(ctx context.Context) {
	if _, err := j.maintenance.PurgeExpired(ctx, j.retention); err != nil {
		j.logger.Error("Expired record cleanup failed", slog.Any("error", err))
	}
}

func (j *job) shutdown(ctx context.Context) error {
	close(j.stop)

	select {
	case <-j.done:
	case <-ctx.Done():
	}

	return nil
}
