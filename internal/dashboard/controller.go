package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Phase is the loading state of the dashboard.
type Phase string

// Dashboard phases.
const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
)

// Trigger names what started a refresh.
type Trigger string

// Refresh triggers.
const (
	TriggerMount Trigger = "mount"
	TriggerRange Trigger = "range"
)

// Refresh outcomes reported to the RefreshObserver.
const (
	OutcomeApplied = "applied"
	OutcomeStale   = "stale"
	OutcomeFailed  = "failed"
)

// RefreshObserver records refresh outcomes.
type RefreshObserver interface {
	ObserveRefresh(trigger, outcome string, elapsed time.Duration)
}

// ControllerConfig tunes the artificial refresh delays.
type ControllerConfig struct {
	MountDelay  time.Duration
	RangeDelay  time.Duration
	DefaultDays int
	LoadTimeout time.Duration
}

// Default refresh settings.
const (
	DefaultMountDelay  = time.Second
	DefaultRangeDelay  = 800 * time.Millisecond
	DefaultDays        = 30
	DefaultLoadTimeout = 5 * time.Second
)

func (c ControllerConfig) withDefaults() ControllerConfig {
	if c.MountDelay < 0 {
		c.MountDelay = DefaultMountDelay
	}
	if c.RangeDelay < 0 {
		c.RangeDelay = DefaultRangeDelay
	}
	if c.DefaultDays <= 0 {
		c.DefaultDays = DefaultDays
	}
	if c.LoadTimeout <= 0 {
		c.LoadTimeout = DefaultLoadTimeout
	}
	return c
}

// Snapshot is a copy of the controller state. Dataset slices are shared with the
// controller and must be treated as read-only.
type Snapshot struct {
	Phase      Phase     `json:"phase"`
	Generation uint64    `json:"generation"`
	Range      DateRange `json:"range"`
	Datasets   Datasets  `json:"datasets"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Loading reports whether a refresh is pending.
func (s Snapshot) Loading() bool {
	return s.Phase == PhaseLoading
}

// Controller owns the page state: the selected range, the loading flag and the current
// datasets. Each request bumps a generation counter; a completing refresh is applied
// only if its generation is still current.
type Controller struct {
	provider Provider
	clock    Clock
	logger   *slog.Logger
	observer RefreshObserver
	cfg      ControllerConfig

	mu      sync.Mutex
	state   Snapshot
	pending Timer
	mounted bool
	closed  bool
	changed chan struct{}
}

// ControllerOption customises a Controller.
type ControllerOption func(*Controller)

// WithClock replaces the system clock.
func WithClock(clock Clock) ControllerOption {
	return func(c *Controller) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithObserver registers a refresh observer.
func WithObserver(observer RefreshObserver) ControllerOption {
	return func(c *Controller) {
		c.observer = observer
	}
}

// NewController builds a controller in the loading phase with the default range.
func NewController(provider Provider, cfg ControllerConfig, opts ...ControllerOption) *Controller {
	c := &Controller{
		provider: provider,
		clock:    SystemClock(),
		logger:   slog.Default(),
		cfg:      cfg.withDefaults(),
		changed:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.state = Snapshot{
		Phase: PhaseLoading,
		Range: DefaultRange(c.clock.Now(), c.cfg.DefaultDays),
	}
	return c
}

// Mount loads the initial datasets and schedules the mount refresh. Calling it again
// is a no-op.
func (c *Controller) Mount(ctx context.Context) error {
	c.mu.Lock()
	if c.mounted || c.closed {
		c.mu.Unlock()
		return nil
	}
	c.mounted = true
	gen := c.state.Generation
	rng := c.state.Range
	c.mu.Unlock()

	data, err := Load(ctx, c.provider, rng.Days())
	if err != nil {
		return fmt.Errorf("dashboard: initial load: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.state.Generation != gen {
		// a range selection already superseded the mount refresh
		if c.state.Datasets.Metrics == nil {
			c.state.Datasets = data
		}
		return nil
	}
	c.state.Generation++
	c.state.Datasets = data
	c.state.UpdatedAt = c.clock.Now()
	c.schedule(c.state.Generation, TriggerMount, rng, c.cfg.MountDelay)
	c.notify()
	return nil
}

// SelectRange starts a refresh for the given range. It is ignored unless both
// endpoints are set. The returned generation identifies the request.
func (c *Controller) SelectRange(from, to *time.Time) (uint64, bool) {
	if from == nil || to == nil {
		return 0, false
	}
	rng := DateRange{From: *from, To: *to}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, false
	}
	c.state.Generation++
	c.stopPending()
	c.state.Phase = PhaseLoading
	c.state.Range = rng
	c.schedule(c.state.Generation, TriggerRange, rng, c.cfg.RangeDelay)
	c.notify()
	return c.state.Generation, true
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Changed returns a channel that is closed on the next state change.
func (c *Controller) Changed() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.changed
}

// WaitIdle blocks until no refresh is pending or ctx is done.
func (c *Controller) WaitIdle(ctx context.Context) (Snapshot, error) {
	for {
		c.mu.Lock()
		snap := c.state
		ch := c.changed
		closed := c.closed
		c.mu.Unlock()
		if snap.Phase == PhaseIdle || closed {
			return snap, nil
		}
		select {
		case <-ctx.Done():
			return snap, ctx.Err()
		case <-ch:
		}
	}
}

// Close cancels any pending refresh. Later requests are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.stopPending()
	c.notify()
}

func (c *Controller) schedule(gen uint64, trigger Trigger, rng DateRange, delay time.Duration) {
	refreshID := uuid.New()
	started := c.clock.Now()
	c.logger.Debug("refresh scheduled",
		slog.String("refresh_id", refreshID.String()),
		slog.Uint64("generation", gen),
		slog.String("trigger", string(trigger)),
		slog.Duration("delay", delay),
	)
	c.pending = c.clock.AfterFunc(delay, func() {
		c.complete(gen, trigger, rng, refreshID, started)
	})
}

func (c *Controller) complete(gen uint64, trigger Trigger, rng DateRange, refreshID uuid.UUID, started time.Time) {
	logger := c.logger.With(
		slog.String("refresh_id", refreshID.String()),
		slog.Uint64("generation", gen),
		slog.String("trigger", string(trigger)),
	)

	if !c.isCurrent(gen) {
		c.discard(logger, trigger, started)
		return
	}

	days := rng.Days()
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.LoadTimeout)
	defer cancel()
	data, err := Load(ctx, c.provider, days)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || gen != c.state.Generation {
		c.discardLocked(logger, trigger, started)
		return
	}
	c.pending = nil
	c.state.Phase = PhaseIdle
	if err != nil {
		logger.Error("refresh failed", slog.Any("error", err))
		c.observe(trigger, OutcomeFailed, started)
		c.notify()
		return
	}
	c.state.Datasets = data
	c.state.UpdatedAt = c.clock.Now()
	c.observe(trigger, OutcomeApplied, started)
	c.notify()
	logger.Info("refresh applied", slog.Int("days", days))
}

func (c *Controller) isCurrent(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed && gen == c.state.Generation
}

func (c *Controller) discard(logger *slog.Logger, trigger Trigger, started time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.discardLocked(logger, trigger, started)
}

func (c *Controller) discardLocked(logger *slog.Logger, trigger Trigger, started time.Time) {
	logger.Debug("stale refresh discarded", slog.Uint64("current_generation", c.state.Generation))
	c.observe(trigger, OutcomeStale, started)
}

func (c *Controller) observe(trigger Trigger, outcome string, started time.Time) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveRefresh(string(trigger), outcome, c.clock.Now().Sub(started))
}

func (c *Controller) stopPending() {
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
}

func (c *Controller) notify() {
	close(c.changed)
	c.changed = make(chan struct{})
}
