package impl

import (
	"context"
	"log/slog"
	"time"

	"accounts/internal/domain/repository"
	"accounts/internal/domain/service"
	"accounts/internal/usecase"

	"github.com/pkg/errors"
)

type maintenanceService struct {
	txManager repository.TransactionManager
	clock     service.Clock
	logger    *slog.Logger
}

// NewMaintenanceService is the constructor for the expired record purge.
func NewMaintenanceService(txManager repository.TransactionManager, clock service.Clock, logger *slog.Logger) usecase.MaintenanceUsecase {
	return &maintenanceService{
		txManager: txManager,
		clock:     clock,
		logger:    logger,
	}
}

// PurgeExpired deletes tokens and sessions whose expiry is older than retention.
func (srv *maintenanceService) PurgeExpired(ctx context.Context, retention time.Duration) (*usecase.PurgeResult, error) {
	cutoff := srv.clock.Now().Add(-retention)
	result := &usecase.PurgeResult{}

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		tokens, err := repoFactory.TokenRepo().DeleteExpired(ctx, cutoff)
		if err != nil {
			return errors.Wrap(err, "failed to purge tokens")
		}
		sessions, err := repoFactory.RefreshTokenRepo().DeleteExpired(ctx, cutoff)
		if err != nil {
			return errors.Wrap(err, "failed to purge sessions")
		}
		result.Tokens = tokens
		result.Sessions = sessions

		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to purge expired records")
	}

	if result.Tokens > 0 || result.Sessions > 0 {
		srv.logger.Info("Purged expired records",
			slog.Int64("tokens", result.Tokens),
			slog.Int64("sessions", result.Sessions),
		)
	}

	return result, nil
}
