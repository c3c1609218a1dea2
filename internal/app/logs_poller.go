package app

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/five82/hoverdeck/internal/hoverfly"
	"github.com/five82/hoverdeck/internal/state"
)

const defaultLogsInterval = 10 * time.Second

// LogsPoller re-fetches logs on a fixed interval while the proxy is online,
// immediately when it comes online, and whenever the from filter changes.
type LogsPoller struct {
	store    *state.Store
	interval time.Duration
	log      logrus.FieldLogger

	mu      sync.Mutex
	query   hoverfly.LogsQuery
	changed chan struct{}
	enabled atomic.Bool
}

// NewLogsPoller builds a poller; call Run to start it.
func NewLogsPoller(store *state.Store, interval time.Duration, logger logrus.FieldLogger) *LogsPoller {
	if interval <= 0 {
		interval = defaultLogsInterval
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LogsPoller{
		store:    store,
		interval: interval,
		log:      logger,
		changed:  make(chan struct{}, 1),
	}
}

// SetFrom changes the filter. A nil from removes it.
func (p *LogsPoller) SetFrom(from *time.Time) {
	next := hoverfly.LogsQuery{}
	if from != nil {
		next = hoverfly.LogsFrom(*from)
	}

	p.mu.Lock()
	same := p.query.Equal(next)
	p.query = next
	p.mu.Unlock()

	if same {
		return
	}
	select {
	case p.changed <- struct{}{}:
	default:
	}
}

// Query returns the active filter.
func (p *LogsPoller) Query() hoverfly.LogsQuery {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.query
}

// Enabled reports whether polling is active.
func (p *LogsPoller) Enabled() bool {
	return p.enabled.Load()
}

// Run blocks until ctx is done. The ticker only exists while polling is
// enabled and is stopped as soon as the proxy goes offline.
func (p *LogsPoller) Run(ctx context.Context) {
	changes, unsubscribe := p.store.Subscribe()
	defer unsubscribe()

	var ticker *time.Ticker
	var tick <-chan time.Time
	stop := func() {
		if ticker != nil {
			ticker.Stop()
			ticker, tick = nil, nil
		}
	}
	defer stop()

	reconcile := func() {
		online := p.store.Snapshot().Online
		switch {
		case online && !p.enabled.Load():
			p.enabled.Store(true)
			p.log.Debug("logs polling enabled")
			p.fetch(ctx)
			ticker = time.NewTicker(p.interval)
			tick = ticker.C
		case !online && p.enabled.Load():
			p.enabled.Store(false)
			p.log.Debug("logs polling disabled")
			stop()
		}
	}
	reconcile()

	for {
		select {
		case <-ctx.Done():
			p.enabled.Store(false)
			return
		case <-changes:
			reconcile()
		case <-p.changed:
			if p.enabled.Load() {
				p.fetch(ctx)
			}
		case <-tick:
			p.fetch(ctx)
		}
	}
}

func (p *LogsPoller) fetch(ctx context.Context) {
	query := p.Query()
	done := p.store.Logs.Trigger(ctx, query)
	go func() {
		if err := (<-done).Err(); err != nil && ctx.Err() == nil {
			p.log.WithError(err).WithField("query", query.String()).Warn("logs poll failed")
		}
	}()
}
