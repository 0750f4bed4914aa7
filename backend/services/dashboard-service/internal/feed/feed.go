// Package feed drives the refresh cycle: it owns the timing policy, asks the
// generator for a new tick and hands the result to every publisher.
package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"evdash/backend/services/dashboard-service/internal/models"
)

const (
	MinInterval     = 5 * time.Second
	MaxInterval     = 60 * time.Second
	DefaultInterval = 10 * time.Second

	defaultPublishTimeout = 3 * time.Second
)

var (
	// ErrIntervalOutOfRange rejects refresh intervals outside [5s, 60s].
	ErrIntervalOutOfRange = errors.New("refresh interval out of range")
	// ErrNoTick is returned before the first tick has been produced.
	ErrNoTick = errors.New("no tick generated yet")
)

// TickSource produces the data of one refresh cycle.
type TickSource interface {
	Tick(now time.Time) models.Tick
}

// Publisher receives every tick. The tick must be treated as read-only.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, tick *models.Tick) error
}

// Observer is notified about tick generation and publish failures.
type Observer interface {
	ObserveGeneration(d time.Duration)
	ObservePublishError(publisher string)
}

// Settings is the operator adjustable refresh policy.
type Settings struct {
	Interval    time.Duration
	AutoRefresh bool
}

// ValidateInterval checks the interval against the allowed range.
func ValidateInterval(d time.Duration) error {
	if d < MinInterval || d > MaxInterval {
		return fmt.Errorf("%w: %s not in [%s, %s]", ErrIntervalOutOfRange, d, MinInterval, MaxInterval)
	}
	return nil
}

// IntervalFromSeconds converts an operator supplied number of seconds,
// checking the range before the conversion so huge values cannot wrap.
func IntervalFromSeconds(seconds int) (time.Duration, error) {
	if seconds < int(MinInterval/time.Second) || seconds > int(MaxInterval/time.Second) {
		return 0, fmt.Errorf("%w: %ds not in [%s, %s]", ErrIntervalOutOfRange, seconds, MinInterval, MaxInterval)
	}
	return time.Duration(seconds) * time.Second, nil
}

// TickerFunc starts a periodic trigger and returns its channel and stop func.
type TickerFunc func(d time.Duration) (<-chan time.Time, func())

func newTimeTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// Options tunes a Feed. Zero values select defaults.
type Options struct {
	Settings       Settings
	PublishTimeout time.Duration
	Observer       Observer
	Clock          func() time.Time
	NewID          func() string
	NewTicker      TickerFunc
}

// Feed runs the refresh loop. Only the Run goroutine calls the tick source.
type Feed struct {
	source         TickSource
	publishers     []Publisher
	observer       Observer
	logger         *zap.Logger
	clock          func() time.Time
	newID          func() string
	newTicker      TickerFunc
	publishTimeout time.Duration

	mu       sync.RWMutex
	latest   *models.Tick
	settings Settings

	refreshCh  chan struct{}
	settingsCh chan struct{}
}

// New validates the options and builds a feed.
func New(source TickSource, opts Options, logger *zap.Logger, publishers ...Publisher) (*Feed, error) {
	if source == nil {
		return nil, errors.New("feed: tick source is nil")
	}
	if opts.Settings.Interval == 0 {
		opts.Settings.Interval = DefaultInterval
	}
	if err := ValidateInterval(opts.Settings.Interval); err != nil {
		return nil, err
	}
	if opts.PublishTimeout <= 0 {
		opts.PublishTimeout = defaultPublishTimeout
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.NewTicker == nil {
		opts.NewTicker = newTimeTicker
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Feed{
		source:         source,
		publishers:     publishers,
		observer:       opts.Observer,
		logger:         logger.With(zap.String("component", "feed")),
		clock:          opts.Clock,
		newID:          opts.NewID,
		newTicker:      opts.NewTicker,
		publishTimeout: opts.PublishTimeout,
		settings:       opts.Settings,
		refreshCh:      make(chan struct{}, 1),
		settingsCh:     make(chan struct{}, 1),
	}, nil
}

// Run produces a first tick immediately, then one tick per interval while
// auto refresh is on, plus one per RefreshNow call. It returns when ctx is done.
func (f *Feed) Run(ctx context.Context) error {
	var (
		tickC <-chan time.Time
		stop  func()
	)
	stopTicker := func() {
		if stop != nil {
			stop()
			tickC, stop = nil, nil
		}
	}
	applySettings := func() {
		stopTicker()
		s := f.Settings()
		if s.AutoRefresh {
			tickC, stop = f.newTicker(s.Interval)
		}
		f.logger.Info("refresh policy applied",
			zap.Duration("interval", s.Interval),
			zap.Bool("auto_refresh", s.AutoRefresh))
	}
	defer stopTicker()

	f.step(ctx)
	applySettings()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tickC:
			f.step(ctx)
		case <-f.refreshCh:
			f.step(ctx)
		case <-f.settingsCh:
			applySettings()
		}
	}
}

func (f *Feed) step(ctx context.Context) *models.Tick {
	started := time.Now()
	tick := f.source.Tick(f.clock())
	tick.ID = f.newID()

	f.mu.Lock()
	f.latest = &tick
	f.mu.Unlock()

	if f.observer != nil {
		f.observer.ObserveGeneration(time.Since(started))
	}

	for _, p := range f.publishers {
		pubCtx, cancel := context.WithTimeout(ctx, f.publishTimeout)
		err := p.Publish(pubCtx, &tick)
		cancel()
		if err != nil {
			f.logger.Warn("publish tick failed",
				zap.String("publisher", p.Name()),
				zap.String("tick_id", tick.ID),
				zap.Error(err))
			if f.observer != nil {
				f.observer.ObservePublishError(p.Name())
			}
		}
	}

	f.logger.Debug("tick generated",
		zap.String("tick_id", tick.ID),
		zap.Int("active_sessions", tick.Metrics.ActiveSessions),
		zap.Int("current_power_kw", tick.Metrics.CurrentPowerKW))
	return &tick
}

// Latest returns the most recent tick.
func (f *Feed) Latest() (*models.Tick, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.latest == nil {
		return nil, ErrNoTick
	}
	return f.latest, nil
}

// Settings returns the current refresh policy.
func (f *Feed) Settings() Settings {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.settings
}

// UpdateSettings replaces the refresh policy; Run picks it up without
// producing an extra tick.
func (f *Feed) UpdateSettings(s Settings) error {
	if err := ValidateInterval(s.Interval); err != nil {
		return err
	}
	f.mu.Lock()
	f.settings = s
	f.mu.Unlock()

	select {
	case f.settingsCh <- struct{}{}:
	default:
	}
	return nil
}

// RefreshNow asks Run for an immediate tick. Requests made while one is
// already pending collapse into it.
func (f *Feed) RefreshNow() {
	select {
	case f.refreshCh <- struct{}{}:
	default:
	}
}
