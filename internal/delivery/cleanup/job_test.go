package cleanup

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"accounts/config"
	"accounts/internal/usecase"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
)

type countingMaintenance struct {
	calls     atomic.Int32
	retention atomic.Int64
	err       error
}

func (m *countingMaintenance) PurgeExpired(_ context.Context, retention time.Duration) (*usecase.PurgeResult, error) {
	m.calls.Add(1)
	m.retention.Store(int64(retention))
	if m.err != nil {
		return nil, m.err
	}

	return &usecase.PurgeResult{}, nil
}

func newTestJob(t *testing.T, interval time.Duration, maintenance usecase.MaintenanceUsecase) (*fxtest.Lifecycle, *job) {
	t.Helper()

	cfg := &config.Config{}
	cfg.Storage.CleanupInterval = interval
	cfg.Storage.CleanupRetention = time.Hour

	lc := fxtest.NewLifecycle(t)
	j, ok := NewJob(JobParams{
		Lc:          lc,
		Config:      cfg,
		Maintenance: maintenance,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}).(*job)
	require.True(t, ok)

	return lc, j
}

func TestJob_PurgesOnTick(t *testing.T) {
	maintenance := &countingMaintenance{}
	lc, j := newTestJob(t, 5*time.Millisecond, maintenance)
	lc.RequireStart()

	go func() { _ = j.Serve(context.Background()) }()

	assert.Eventually(t, func() bool { return maintenance.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int64(time.Hour), maintenance.retention.Load())

	lc.RequireStop()
}

func TestJob_KeepsRunningAfterFailure(t *testing.T) {
	maintenance := &countingMaintenance{err: errors.New("db down")}
	lc, j := newTestJob(t, 5*time.Millisecond, maintenance)
	lc.RequireStart()

	go func() { _ = j.Serve(context.Background()) }()

	assert.Eventually(t, func() bool { return maintenance.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	lc.RequireStop()
}

func TestJob_Disabled(t *testing.T) {
	maintenance := &countingMaintenance{}
	lc, j := newTestJob(t, 0, maintenance)
	lc.RequireStart()

	require.NoError(t, j.Serve(context.Background()))
	assert.Zero(t, maintenance.calls.Load())

	lc.RequireStop()
}
