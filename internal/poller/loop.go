package poller

import (
	"context"
	"sync"
	"time"

	"github.com/ecocharge/console/internal/api"
	"github.com/ecocharge/console/internal/logging"
	"go.uber.org/zap"
)

// DefaultInterval is the cadence between dashboard fetches.
const DefaultInterval = 2 * time.Second

// FetchFunc retrieves one dashboard snapshot. *api.Client.DashboardStats
// satisfies it.
type FetchFunc func(ctx context.Context) (*api.DashboardSnapshot, error)

// Loop polls the dashboard endpoint at a fixed cadence and keeps the latest
// successful snapshot.
//
// The cadence is fixed: a tick dispatches a fetch whether or not the previous
// one has returned, so a slow server never stretches the interval. A failed
// fetch is skipped silently and the previous snapshot stays current. After
// Stop, results from fetches still in flight are discarded; the loop never
// publishes a stale update.
type Loop struct {
	fetch    FetchFunc
	interval time.Duration

	mu         sync.Mutex
	cancel     context.CancelFunc
	generation uint64
	latest     *api.DashboardSnapshot

	updates chan *api.DashboardSnapshot
}

// Option configures a Loop.
type Option func(*Loop)

// WithInterval overrides the fetch cadence. Used by tests.
func WithInterval(d time.Duration) Option {
	return func(l *Loop) { l.interval = d }
}

// NewLoop creates a stopped loop around the given fetch function.
func NewLoop(fetch FetchFunc, opts ...Option) *Loop {
	l := &Loop{
		fetch:    fetch,
		interval: DefaultInterval,
		updates:  make(chan *api.DashboardSnapshot, 1),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Start begins polling. The first fetch is dispatched immediately, then one
// per interval. Starting a running loop restarts it.
func (l *Loop) Start() {
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.generation++
	gen := l.generation
	l.mu.Unlock()

	logging.Info("Starting dashboard sync loop", zap.Duration("interval", l.interval))
	go l.run(ctx, gen)
}

// Stop halts the cadence and discards any fetch still in flight. The retained
// snapshot survives so the view keeps showing the last known data. Safe to
// call on a stopped loop.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cancel == nil {
		return
	}
	l.cancel()
	l.cancel = nil
	l.generation++

	logging.Info("Stopped dashboard sync loop")
}

// Latest returns the most recent successful snapshot, or nil before the first
// success.
func (l *Loop) Latest() *api.DashboardSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.latest
}

// Updates delivers fresh snapshots as they arrive. The channel holds only the
// newest value: a slow consumer sees the latest snapshot, not a backlog.
func (l *Loop) Updates() <-chan *api.DashboardSnapshot {
	return l.updates
}

func (l *Loop) run(ctx context.Context, gen uint64) {
	// Each tick dispatches its own fetch so the cadence never waits on a
	// slow response.
	go l.dispatch(ctx, gen)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			go l.dispatch(ctx, gen)
		}
	}
}

func (l *Loop) dispatch(ctx context.Context, gen uint64) {
	snapshot, err := l.fetch(ctx)
	if err != nil {
		// Skip the cycle; the retained snapshot stays current.
		logging.Debug("Dashboard fetch failed, keeping previous snapshot", zap.Error(err))
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if gen != l.generation {
		// Loop was stopped or restarted while this fetch was in flight.
		return
	}
	l.latest = snapshot

	// Replace any undelivered update with the fresh one. Publishing stays
	// under the generation guard so a Stop cannot slip in between accepting
	// the snapshot and delivering it; the sends never block, so holding the
	// lock here is safe.
	select {
	case l.updates <- snapshot:
	default:
		select {
		case <-l.updates:
		default:
		}
		select {
		case l.updates <- snapshot:
		default:
		}
	}
}
