// Package refresh runs course aggregation passes off the interactive goroutine.
//
// A Scheduler owns the interactive loop (Run). Passes start at startup, every
// Interval, and on Trigger. Each pass runs on its own worker goroutine; its
// result comes back through a single-slot channel and is delivered on the loop
// goroutine. Passes never overlap: triggers that arrive while a pass is running
// are dropped.
package refresh

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/Sternrassler/canvaspal/pkg/canvas"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var (
	refreshPassesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "canvas_refresh_passes_total",
		Help: "Completed aggregation passes by result",
	}, []string{"result"})

	refreshDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "canvas_refresh_duration_seconds",
		Help:    "Duration of a full aggregation pass",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	})

	triggersDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "canvas_refresh_triggers_dropped_total",
		Help: "Refresh triggers ignored because a pass was already running",
	})

	datasetCourses = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "canvas_dataset_courses",
		Help: "Number of courses in the last delivered dataset",
	})
)

// State of the scheduler.
type State int32

const (
	// Idle means no pass is running; the next trigger starts one.
	Idle State = iota
	// Fetching means a pass is running; triggers are dropped.
	Fetching
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Fetching:
		return "fetching"
	default:
		return "unknown"
	}
}

// Aggregator runs one full aggregation pass.
type Aggregator interface {
	FetchAllCourses(ctx context.Context) (canvas.Dataset, error)
}

// Config holds scheduler configuration
type Config struct {
	// Interval between periodic passes.
	Interval time.Duration
}

// DefaultConfig returns the default scheduler configuration
func DefaultConfig() Config {
	return Config{
		Interval: time.Hour,
	}
}

type passResult struct {
	dataset  canvas.Dataset
	err      error
	trigger  string
	duration time.Duration
}

// Scheduler drives aggregation passes and hands results to deliver.
type Scheduler struct {
	agg     Aggregator
	deliver func(canvas.Dataset)
	config  Config
	logger  zerolog.Logger

	triggers chan struct{}
	posts    chan func()
	done     chan struct{}
	state    atomic.Int32
}

// New creates a scheduler. deliver is called on the Run goroutine with every
// successfully fetched dataset and may keep it.
func New(agg Aggregator, deliver func(canvas.Dataset), config Config, logger zerolog.Logger) *Scheduler {
	if config.Interval <= 0 {
		config.Interval = DefaultConfig().Interval
	}

	return &Scheduler{
		agg:      agg,
		deliver:  deliver,
		config:   config,
		logger:   logger,
		triggers: make(chan struct{}),
		posts:    make(chan func()),
		done:     make(chan struct{}),
	}
}

// Run is the interactive loop. It starts a pass immediately and blocks until
// ctx is done. Run must be called at most once.
//
// A pass in flight when ctx is cancelled is not interrupted; its result is
// discarded.
func (s *Scheduler) Run(ctx context.Context) error {
	defer close(s.done)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	results := make(chan passResult, 1)

	s.logger.Info().Dur("interval", s.config.Interval).Msg("Refresh scheduler started")
	s.request(ctx, results, "startup")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Refresh scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.request(ctx, results, "interval")
		case <-s.triggers:
			s.request(ctx, results, "manual")
		case fn := <-s.posts:
			fn()
		case res := <-results:
			s.finish(res)
		}
	}
}

// Trigger asks for a pass now. It returns once the loop has accepted or dropped
// the request, or immediately after Run has returned.
func (s *Scheduler) Trigger() {
	select {
	case s.triggers <- struct{}{}:
	case <-s.done:
	}
}

// Post runs fn on the loop goroutine, serialized with dataset delivery.
// It returns once the loop has taken fn; fn is dropped after Run has returned.
func (s *Scheduler) Post(fn func()) {
	select {
	case s.posts <- fn:
	case <-s.done:
	}
}

// State reports whether a pass is running.
func (s *Scheduler) State() State {
	return State(s.state.Load())
}

// Interval returns the configured refresh interval.
func (s *Scheduler) Interval() time.Duration {
	return s.config.Interval
}

// request starts a pass unless one is already running.
func (s *Scheduler) request(ctx context.Context, results chan<- passResult, trigger string) {
	if s.State() == Fetching {
		triggersDroppedTotal.Inc()
		s.logger.Warn().Str("trigger", trigger).Msg("Refresh already in progress, trigger dropped")
		return
	}

	s.state.Store(int32(Fetching))
	s.logger.Debug().Str("trigger", trigger).Msg("Starting refresh pass")

	workCtx := context.WithoutCancel(ctx)
	start := time.Now()

	go func() {
		ds, err := s.agg.FetchAllCourses(workCtx)
		results <- passResult{
			dataset:  ds,
			err:      err,
			trigger:  trigger,
			duration: time.Since(start),
		}
	}()
}

// finish handles a completed pass on the loop goroutine.
func (s *Scheduler) finish(res passResult) {
	s.state.Store(int32(Idle))
	refreshDuration.Observe(res.duration.Seconds())

	if res.err != nil {
		refreshPassesTotal.WithLabelValues("failure").Inc()
		s.logger.Error().
			Err(res.err).
			Str("trigger", res.trigger).
			Dur("duration", res.duration).
			Msg("Refresh failed, keeping previous dataset")
		return
	}

	refreshPassesTotal.WithLabelValues("success").Inc()
	datasetCourses.Set(float64(len(res.dataset)))

	s.logger.Info().
		Str("trigger", res.trigger).
		Int("courses", len(res.dataset)).
		Dur("duration", res.duration).
		Msg("Dataset delivered")

	if s.deliver != nil {
		s.deliver(res.dataset)
	}
}
