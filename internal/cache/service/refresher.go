package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	cacheDomain "github.com/allisson/entitygate/internal/cache/domain"
	"github.com/allisson/entitygate/internal/config"
	apperrors "github.com/allisson/entitygate/internal/errors"
	"github.com/allisson/entitygate/internal/metrics"
)

// Fetcher is the downstream fetch capability consumed by the refresher.
type Fetcher interface {
	Fetch(ctx context.Context) (map[string]cacheDomain.Entity, error)
}

// Refresher states. Ticks that arrive while a refresh is in flight are
// dropped, never queued.
const (
	stateIdle int32 = iota
	stateFetching
	statePublishing
)

// Refresher periodically rebuilds the snapshot from the downstream dataset
// and publishes it to the store. At most one fetch is in flight at a time;
// concurrent force-refreshes coalesce onto the in-flight fetch. A failed
// refresh keeps the previous snapshot serving and is retried on the next
// tick.
type Refresher struct {
	fetcher  Fetcher
	store    *Store
	ttl      time.Duration
	interval time.Duration
	policy   string
	timeout  time.Duration
	logger   *slog.Logger
	business metrics.BusinessMetrics

	state    atomic.Int32
	group    singleflight.Group
	now      func() time.Time
	running  bool
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewRefresher creates a refresher. Start must be called before the store
// serves traffic so the initial fetch policy is applied.
func NewRefresher(
	fetcher Fetcher,
	store *Store,
	cfg *config.Config,
	logger *slog.Logger,
	business metrics.BusinessMetrics,
) *Refresher {
	return &Refresher{
		fetcher:  fetcher,
		store:    store,
		ttl:      cfg.CacheTTL,
		interval: cfg.RefreshInterval,
		policy:   cfg.InitialFetchPolicy,
		timeout:  cfg.InitialFetchTimeout,
		logger:   logger,
		business: business,
		now:      time.Now,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start performs the initial fetch according to the configured policy and
// then launches the background refresh loop.
//
//   - fail-fast: returns an error when the initial fetch fails; the caller
//     refuses to become ready.
//   - degrade: becomes ready immediately; until the first successful refresh
//     the store stays empty and reads report unavailable.
//   - bounded-retry: retries the initial fetch until it succeeds or the
//     configured timeout elapses, then degrades.
func (r *Refresher) Start(ctx context.Context) error {
	switch r.policy {
	case config.InitialFetchFailFast:
		if _, err := r.Refresh(ctx); err != nil {
			return apperrors.Wrap(err, "initial fetch failed (fail-fast)")
		}

	case config.InitialFetchDegrade:
		if _, err := r.Refresh(ctx); err != nil {
			r.logger.Warn("initial fetch failed, serving degraded until next refresh",
				slog.Any("error", err))
		}

	case config.InitialFetchBoundedRetry:
		r.initialFetchWithRetry(ctx)

	default:
		return fmt.Errorf("unknown initial fetch policy %q", r.policy)
	}

	r.running = true
	go r.run()

	return nil
}

// initialFetchWithRetry retries the initial fetch with a short backoff until
// success or the bounded-retry timeout, then degrades.
func (r *Refresher) initialFetchWithRetry(ctx context.Context) {
	deadline := r.now().Add(r.timeout)
	backoff := time.Second

	for {
		if _, err := r.Refresh(ctx); err == nil {
			return
		} else if r.now().Add(backoff).After(deadline) {
			r.logger.Warn("initial fetch did not succeed within timeout, degrading",
				slog.Duration("timeout", r.timeout),
				slog.Any("error", err))
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}

		if backoff < 10*time.Second {
			backoff *= 2
		}
	}
}

// run is the background refresh loop. A tick fires a refresh only when the
// refresher is idle; ticks during an in-flight refresh are dropped.
func (r *Refresher) run() {
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			if r.state.Load() != stateIdle {
				r.logger.Debug("refresh tick dropped, refresh already in flight")
				continue
			}
			if _, err := r.Refresh(context.Background()); err != nil {
				r.logger.Error("background refresh failed, serving previous snapshot",
					slog.Any("error", err))
			}
		}
	}
}

// Stop terminates the background loop and waits for it to exit. It is a
// no-op when Start was never called or failed.
func (r *Refresher) Stop() {
	if !r.running {
		return
	}
	r.stopOnce.Do(func() {
		close(r.stop)
		<-r.done
	})
}

// Refresh fetches the downstream dataset, builds a new snapshot and
// publishes it. Concurrent callers share a single in-flight refresh.
// Returns the number of entities in the published snapshot.
func (r *Refresher) Refresh(ctx context.Context) (int, error) {
	result, err, _ := r.group.Do("refresh", func() (any, error) {
		return r.doRefresh(ctx)
	})
	if err != nil {
		return 0, err
	}
	return result.(int), nil
}

func (r *Refresher) doRefresh(ctx context.Context) (int, error) {
	r.state.Store(stateFetching)
	defer r.state.Store(stateIdle)

	start := r.now()
	cycleID := uuid.NewString()

	entities, err := r.fetcher.Fetch(ctx)
	if err != nil {
		r.business.RecordOperation(ctx, "cache", "refresh", "error")
		r.business.RecordDuration(ctx, "cache", "refresh", r.now().Sub(start), "error")
		r.logger.Error("refresh cycle failed",
			slog.String("cycle_id", cycleID),
			slog.Any("error", err))
		return 0, err
	}

	if len(entities) == 0 {
		// An empty dataset is a valid downstream state, but worth noticing.
		r.logger.Warn("downstream returned an empty dataset",
			slog.String("cycle_id", cycleID))
	}

	r.state.Store(statePublishing)

	snapshot := cacheDomain.NewSnapshot(entities, r.now(), r.ttl)
	r.store.Publish(snapshot)

	r.business.RecordOperation(ctx, "cache", "refresh", "success")
	r.business.RecordDuration(ctx, "cache", "refresh", r.now().Sub(start), "success")

	r.logger.Info("snapshot published",
		slog.String("cycle_id", cycleID),
		slog.Int("entities", snapshot.Len()),
		slog.Time("fetched_at", snapshot.FetchedAt()))

	return snapshot.Len(), nil
}
