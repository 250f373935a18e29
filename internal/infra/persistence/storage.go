// Package persistence selects the repository backend configured under storage.driver.
package persistence

import (
	"log/slog"

	"accounts/config"
	"accounts/internal/domain/constants"
	"accounts/internal/domain/repository"
	"accounts/internal/infra/persistence/memory"
	"accounts/internal/infra/persistence/postgres"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// StorageParams holds dependencies for the TransactionManager, injected by Fx
type StorageParams struct {
	fx.In

	Lc     fx.Lifecycle
	Config *config.Config
	Logger *slog.Logger
}

// NewTransactionManager opens the configured backend and returns its transaction manager
func NewTransactionManager(params StorageParams) (repository.TransactionManager, error) {
	switch params.Config.Storage.Driver {
	case constants.StorageDriverMemory:
		params.Logger.Warn("Using in-memory storage, data is lost on restart")

		return memory.NewTransactionManager(memory.NewStore()), nil

	case constants.StorageDriverPostgres, "":
		if params.Config.Postgres == nil {
			return nil, errors.New("postgres configuration is required for the postgres driver")
		}

		db, err := postgres.New(postgres.Params{
			Lifecycle: params.Lc,
			Config:    params.Config,
			Logger:    params.Logger,
		})
		if err != nil {
			return nil, err
		}
		params.Logger.Info("Using PostgreSQL storage")

		return postgres.NewTransactionManager(db), nil

	default:
		return nil, errors.Errorf("unknown storage driver: %s", params.Config.Storage.Driver)
	}
}

// Module provides the storage FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(NewTransactionManager),
)
