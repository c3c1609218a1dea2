package app

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/five82/hoverdeck/internal/state"
)

const (
	defaultPollInterval = 2 * time.Second
	maxBackoff          = 30 * time.Second
)

// StartPoller launches a background goroutine that refreshes the status,
// main info and server state slices. While the proxy is unreachable the
// cadence doubles per failed poll up to maxBackoff. It returns immediately.
func StartPoller(ctx context.Context, store *state.Store, interval time.Duration, logger logrus.FieldLogger) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	go func() {
		timer := time.NewTimer(0)
		defer timer.Stop()

		failures := 0
		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}
			if refresh(ctx, store, logger) {
				failures = 0
			} else {
				failures++
			}
			timer.Reset(calculateBackoff(failures, interval))
		}
	}()
}

// refresh polls status first; main info and server state are only fetched
// when the proxy answered. It reports whether the status poll succeeded.
func refresh(ctx context.Context, store *state.Store, logger logrus.FieldLogger) bool {
	status := store.Status.Do(ctx, struct{}{})
	if err := status.Err(); err != nil {
		if ctx.Err() == nil {
			logger.WithError(err).Warn("status poll failed")
		}
		return false
	}

	mainDone := store.Main.Trigger(ctx, struct{}{})
	stateDone := store.ServerState.Trigger(ctx, struct{}{})
	if err := (<-mainDone).Err(); err != nil && ctx.Err() == nil {
		logger.WithError(err).Warn("main info poll failed")
	}
	if err := (<-stateDone).Err(); err != nil && ctx.Err() == nil {
		logger.WithError(err).Warn("server state poll failed")
	}
	return true
}

func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	d := base
	for i := 0; i < failures; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}
