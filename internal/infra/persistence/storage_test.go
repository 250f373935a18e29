package persistence

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"accounts/config"
	"accounts/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
)

func TestNewTransactionManager(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("memory", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Storage.Driver = "memory"

		txManager, err := NewTransactionManager(StorageParams{Lc: fxtest.NewLifecycle(t), Config: cfg, Logger: logger})
		require.NoError(t, err)

		err = txManager.Execute(context.Background(), func(repoFactory repository.RepositoryFactory) error {
			exists, err := repoFactory.AccountRepo().ExistsByEmail(context.Background(), "a@x.com")
			assert.False(t, exists)

			return err
		})
		assert.NoError(t, err)
	})

	t.Run("postgres without config", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Storage.Driver = "postgres"

		_, err := NewTransactionManager(StorageParams{Lc: fxtest.NewLifecycle(t), Config: cfg, Logger: logger})
		assert.ErrorContains(t, err, "postgres configuration is required")
	})

	t.Run("unknown driver", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Storage.Driver = "sqlite"

		_, err := NewTransactionManager(StorageParams{Lc: fxtest.NewLifecycle(t), Config: cfg, Logger: logger})
		assert.ErrorContains(t, err, "unknown storage driver")
	})
}
