package app

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/five82/hoverdeck/internal/state"
)

// Controller turns operator input into slice triggers. Every method returns
// immediately; results land in the store.
type Controller struct {
	ctx   context.Context
	store *state.Store
	logs  *LogsPoller
	log   logrus.FieldLogger
}

// NewController wires a controller to the store and logs poller.
func NewController(ctx context.Context, store *state.Store, logs *LogsPoller, logger logrus.FieldLogger) *Controller {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Controller{ctx: ctx, store: store, logs: logs, log: logger}
}

// Refresh polls status, main info and server state once.
func (c *Controller) Refresh() {
	go refresh(c.ctx, c.store, c.log)
}

// ClearCache issues one DELETE /cache and refetches main info on success.
func (c *Controller) ClearCache() {
	go func() {
		res := c.store.Cache.Do(c.ctx, struct{}{})
		if err := res.Err(); err != nil {
			c.log.WithError(err).Warn("clear cache failed")
			return
		}
		c.log.Info("cache cleared")
		c.store.Main.Trigger(c.ctx, struct{}{})
	}()
}

// Shutdown asks the proxy to stop.
func (c *Controller) Shutdown() {
	go func() {
		res := c.store.Shutdown.Do(c.ctx, struct{}{})
		if err := res.Err(); err != nil {
			c.log.WithError(err).Warn("shutdown request failed")
			return
		}
		c.log.Info("shutdown requested")
		// The status poll flips the console offline once the proxy is gone.
		go refresh(c.ctx, c.store, c.log)
	}()
}

// SetLogsFrom changes the logs filter; nil clears it.
func (c *Controller) SetLogsFrom(from *time.Time) {
	if c.logs == nil {
		return
	}
	if from == nil {
		c.log.Debug("logs filter cleared")
	} else {
		c.log.WithField("from", from.Unix()).Debug("logs filter set")
	}
	c.logs.SetFrom(from)
}
