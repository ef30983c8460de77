// Package scheduler drives the periodic refresh loop and owns the
// atomically published result bundle.
package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sawpanic/gridpulse/internal/config"
	"github.com/sawpanic/gridpulse/internal/market"
	"github.com/sawpanic/gridpulse/internal/metrics"
)

// Builder produces one complete result bundle per cycle. The engine
// implements it; tests inject failing builders.
type Builder interface {
	BuildBundle(seq uint64) (*market.Bundle, error)
}

// Sink consumes each published bundle (Redis publisher, history
// store, websocket hub). Sink failures are logged and counted but
// never fail a cycle or disturb the published bundle.
type Sink interface {
	Name() string
	Publish(ctx context.Context, b *market.Bundle) error
}

// Scheduler regenerates the bundle on a fixed cadence. One background
// task performs generation sequentially; readers never block on it
// and always see either the fully-previous or fully-new bundle.
type Scheduler struct {
	builder  Builder
	interval time.Duration
	backoff  time.Duration
	metrics  *metrics.Metrics
	sinks    []Sink

	bundle  atomic.Pointer[market.Bundle]
	seq     atomic.Uint64
	cycleMu sync.Mutex
	trigger chan struct{}
}

func New(builder Builder, cfg config.SchedulerConfig, m *metrics.Metrics, sinks ...Sink) *Scheduler {
	return &Scheduler{
		builder:  builder,
		interval: cfg.Interval.D(),
		backoff:  cfg.Backoff.D(),
		metrics:  m,
		sinks:    sinks,
		trigger:  make(chan struct{}, 1),
	}
}

// Run executes cycles until the context is cancelled. The first cycle
// runs immediately. A failed cycle keeps the previous bundle, logs,
// and retries after the backoff; the loop itself never terminates on
// a cycle error.
func (s *Scheduler) Run(ctx context.Context) error {
	log.Info().Dur("interval", s.interval).Msg("Refresh scheduler starting")

	s.cycle(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	var retry <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Refresh scheduler stopping")
			return ctx.Err()
		case <-ticker.C:
		case <-s.trigger:
		case <-retry:
			retry = nil
		}
		if err := s.cycle(ctx); err != nil && retry == nil {
			retry = time.After(s.backoff)
		}
	}
}

// TriggerRefresh requests an immediate cycle. Requests are coalesced:
// at most one trigger is queued, and a trigger that lands while a
// cycle is in flight folds into it. Returns whether the request was
// newly queued.
func (s *Scheduler) TriggerRefresh() bool {
	select {
	case s.trigger <- struct{}{}:
		return true
	default:
		return false
	}
}

// Latest returns the most recently published bundle, or ErrNotReady
// before the first successful cycle.
func (s *Scheduler) Latest() (*market.Bundle, error) {
	b := s.bundle.Load()
	if b == nil {
		return nil, market.ErrNotReady
	}
	return b, nil
}

// cycle runs one generation pass and atomically publishes the result.
// The mutex guarantees manual and scheduled refreshes never generate
// concurrently; a losing caller simply skips, its request satisfied
// by the in-flight cycle.
func (s *Scheduler) cycle(ctx context.Context) error {
	if !s.cycleMu.TryLock() {
		return nil
	}
	defer s.cycleMu.Unlock()

	seq := s.seq.Add(1)
	start := time.Now()

	b, err := s.builder.BuildBundle(seq)
	if s.metrics != nil {
		s.metrics.ObserveCycle(b, time.Since(start), err)
	}
	if err != nil {
		log.Error().Err(err).Uint64("sequence", seq).
			Dur("backoff", s.backoff).
			Msg("Refresh cycle failed, previous bundle retained")
		return err
	}

	s.bundle.Store(b)
	log.Debug().Uint64("sequence", seq).
		Int("signals", len(b.Signals)).
		Int("alerts", len(b.Alerts)).
		Dur("elapsed", time.Since(start)).
		Msg("Bundle published")

	for _, sink := range s.sinks {
		if err := sink.Publish(ctx, b); err != nil {
			if s.metrics != nil {
				s.metrics.PublishFailures.WithLabelValues(sink.Name()).Inc()
			}
			log.Warn().Err(err).Str("sink", sink.Name()).Msg("Bundle fan-out failed")
		}
	}
	return nil
}
