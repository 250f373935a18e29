package usecase

import (
	"context"
	"time"
)

// PurgeResult reports how many expired records a cleanup pass removed.
type PurgeResult struct {
	Tokens   int64
	Sessions int64
}

// MaintenanceUsecase removes records that can no longer be redeemed.
type MaintenanceUsecase interface {
	// PurgeExpired deletes tokens and sessions that expired more than retention ago.
	PurgeExpired(ctx context.Context, retention time.Duration) (*PurgeResult, error)
}
