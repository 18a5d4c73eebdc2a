package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/inkstone-labs/reader-backend/internal/store"
)

// StartSweeper runs a periodic hard cleanup of expired sessions and rotation
// records. This is the terminal transition: swept rows are gone regardless of
// the soft grace window lookups apply.
func StartSweeper(sessions store.SessionStore, rotations store.RotationLedger, interval time.Duration, done chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				ctx := context.Background()

				sessionCount, err := sessions.SweepExpired(ctx)
				if err != nil {
					slog.Error("session sweep failed", "error", err)
				}

				rotationCount, err := rotations.SweepExpired(ctx)
				if err != nil {
					slog.Error("rotation sweep failed", "error", err)
				}

				if sessionCount > 0 || rotationCount > 0 {
					slog.Info("expiry sweep completed",
						"sessions", sessionCount,
						"rotations", rotationCount,
					)
				}
			case <-done:
				return
			}
		}
	}()
}
