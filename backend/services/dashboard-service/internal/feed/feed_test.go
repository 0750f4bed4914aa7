package feed

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"evdash/backend/services/dashboard-service/internal/models"
)

type countingSource struct {
	mu    sync.Mutex
	calls int
}

func (s *countingSource) Tick(now time.Time) models.Tick {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return models.Tick{
		GeneratedAt: now,
		Metrics:     models.RealtimeMetrics{ActiveSessions: s.calls},
	}
}

type recordingPublisher struct {
	name string
	err  error

	mu    sync.Mutex
	ticks []string
}

func (p *recordingPublisher) Name() string { return p.name }

func (p *recordingPublisher) Publish(ctx context.Context, tick *models.Tick) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("publish context has no deadline")
	}
	p.mu.Lock()
	p.ticks = append(p.ticks, tick.ID)
	p.mu.Unlock()
	return p.err
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.ticks)
}

type recordingObserver struct {
	mu          sync.Mutex
	generations int
	failures    map[string]int
}

func (o *recordingObserver) ObserveGeneration(time.Duration) {
	o.mu.Lock()
	o.generations++
	o.mu.Unlock()
}

func (o *recordingObserver) ObservePublishError(name string) {
	o.mu.Lock()
	if o.failures == nil {
		o.failures = map[string]int{}
	}
	o.failures[name]++
	o.mu.Unlock()
}

func sequentialIDs() func() string {
	ids := []string{"t-1", "t-2", "t-3", "t-4", "t-5", "t-6"}
	i := 0
	return func() string {
		id := ids[i%len(ids)]
		i++
		return id
	}
}

func TestValidateInterval(t *testing.T) {
	assert.NoError(t, ValidateInterval(5*time.Second))
	assert.NoError(t, ValidateInterval(60*time.Second))
	assert.ErrorIs(t, ValidateInterval(4*time.Second), ErrIntervalOutOfRange)
	assert.ErrorIs(t, ValidateInterval(61*time.Second), ErrIntervalOutOfRange)
}

func TestNewDefaultsAndValidation(t *testing.T) {
	_, err := New(nil, Options{}, nil)
	require.Error(t, err)

	_, err = New(&countingSource{}, Options{Settings: Settings{Interval: time.Second}}, nil)
	require.ErrorIs(t, err, ErrIntervalOutOfRange)

	f, err := New(&countingSource{}, Options{}, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultInterval, f.Settings().Interval)

	_, err = f.Latest()
	assert.ErrorIs(t, err, ErrNoTick)
}

func TestStepPublishesToEveryPublisher(t *testing.T) {
	now := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	failing := &recordingPublisher{name: "redis", err: errors.New("down")}
	ok := &recordingPublisher{name: "ws"}
	obs := &recordingObserver{}

	f, err := New(&countingSource{}, Options{
		Observer: obs,
		Clock:    func() time.Time { return now },
		NewID:    sequentialIDs(),
	}, zap.NewNop(), failing, ok)
	require.NoError(t, err)

	first := f.step(context.Background())
	second := f.step(context.Background())

	assert.Equal(t, "t-1", first.ID)
	assert.Equal(t, "t-2", second.ID)
	assert.Equal(t, now, second.GeneratedAt)
	assert.Equal(t, []string{"t-1", "t-2"}, ok.ticks)
	assert.Equal(t, []string{"t-1", "t-2"}, failing.ticks)
	assert.Equal(t, 2, obs.generations)
	assert.Equal(t, 2, obs.failures["redis"])
	assert.Zero(t, obs.failures["ws"])

	latest, err := f.Latest()
	require.NoError(t, err)
	assert.Equal(t, "t-2", latest.ID)
	assert.Equal(t, 2, latest.Metrics.ActiveSessions)
}

func TestUpdateSettings(t *testing.T) {
	f, err := New(&countingSource{}, Options{Settings: Settings{Interval: 10 * time.Second, AutoRefresh: true}}, nil)
	require.NoError(t, err)

	require.ErrorIs(t, f.UpdateSettings(Settings{Interval: 4 * time.Second}), ErrIntervalOutOfRange)
	require.ErrorIs(t, f.UpdateSettings(Settings{Interval: 61 * time.Second}), ErrIntervalOutOfRange)
	assert.Equal(t, Settings{Interval: 10 * time.Second, AutoRefresh: true}, f.Settings())

	require.NoError(t, f.UpdateSettings(Settings{Interval: 30 * time.Second}))
	assert.Equal(t, Settings{Interval: 30 * time.Second}, f.Settings())

	// a second update before Run drains the signal must not block
	require.NoError(t, f.UpdateSettings(Settings{Interval: 5 * time.Second, AutoRefresh: true}))
}

func TestRunRefreshNowAndCancel(t *testing.T) {
	src := &countingSource{}
	pub := &recordingPublisher{name: "ws"}
	f, err := New(src, Options{Settings: Settings{Interval: MaxInterval, AutoRefresh: false}}, zap.NewNop(), pub)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.Run(ctx) }()

	require.Eventually(t, func() bool { return pub.count() == 1 }, time.Second, 5*time.Millisecond)

	f.RefreshNow()
	require.Eventually(t, func() bool { return pub.count() == 2 }, time.Second, 5*time.Millisecond)

	require.NoError(t, f.UpdateSettings(Settings{Interval: MaxInterval, AutoRefresh: true}))
	f.RefreshNow()
	require.Eventually(t, func() bool { return pub.count() == 3 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("feed did not stop after cancel")
	}

	latest, err := f.Latest()
	require.NoError(t, err)
	assert.NotEmpty(t, latest.ID)
}

type fakeTickers struct {
	mu        sync.Mutex
	intervals []time.Duration
	channels  []chan time.Time
	stops     int
}

func (f *fakeTickers) start(d time.Duration) (<-chan time.Time, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan time.Time, 1)
	f.intervals = append(f.intervals, d)
	f.channels = append(f.channels, ch)
	return ch, func() {
		f.mu.Lock()
		f.stops++
		f.mu.Unlock()
	}
}

func (f *fakeTickers) started() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.intervals)
}

func (f *fakeTickers) stopped() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stops
}

func (f *fakeTickers) fire(i int) {
	f.mu.Lock()
	ch := f.channels[i]
	f.mu.Unlock()
	ch <- time.Now()
}

func TestRunAutoRefreshFollowsTicker(t *testing.T) {
	tickers := &fakeTickers{}
	pub := &recordingPublisher{name: "rec"}
	f, err := New(&countingSource{}, Options{
		Settings:  Settings{Interval: 10 * time.Second, AutoRefresh: true},
		NewTicker: tickers.start,
	}, zap.NewNop(), pub)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.Run(ctx) }()

	require.Eventually(t, func() bool { return pub.count() == 1 && tickers.started() == 1 }, time.Second, 5*time.Millisecond)

	tickers.fire(0)
	require.Eventually(t, func() bool { return pub.count() == 2 }, time.Second, 5*time.Millisecond)
	tickers.fire(0)
	require.Eventually(t, func() bool { return pub.count() == 3 }, time.Second, 5*time.Millisecond)

	require.NoError(t, f.UpdateSettings(Settings{Interval: 20 * time.Second, AutoRefresh: true}))
	require.Eventually(t, func() bool { return tickers.started() == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, tickers.stopped())
	assert.Equal(t, []time.Duration{10 * time.Second, 20 * time.Second}, tickers.intervals)
	assert.Equal(t, 3, pub.count())

	tickers.fire(1)
	require.Eventually(t, func() bool { return pub.count() == 4 }, time.Second, 5*time.Millisecond)

	require.NoError(t, f.UpdateSettings(Settings{Interval: 20 * time.Second, AutoRefresh: false}))
	require.Eventually(t, func() bool { return tickers.stopped() == 2 }, time.Second, 5*time.Millisecond)

	tickers.fire(1)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 4, pub.count())
	assert.Equal(t, 2, tickers.started())

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("feed did not stop after cancel")
	}
}

func TestRunAutoRefreshOffStartsNoTicker(t *testing.T) {
	tickers := &fakeTickers{}
	pub := &recordingPublisher{name: "rec"}
	f, err := New(&countingSource{}, Options{
		Settings:  Settings{Interval: 5 * time.Second, AutoRefresh: false},
		NewTicker: tickers.start,
	}, zap.NewNop(), pub)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = f.Run(ctx) }()

	require.Eventually(t, func() bool { return pub.count() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 0, tickers.started())
	assert.Equal(t, 1, pub.count())
}

func TestIntervalFromSeconds(t *testing.T) {
	d, err := IntervalFromSeconds(5)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, d)

	d, err = IntervalFromSeconds(60)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, d)

	for _, n := range []int{4, 61, 0, -5, 36028797018963978} {
		_, err := IntervalFromSeconds(n)
		assert.ErrorIs(t, err, ErrIntervalOutOfRange, n)
	}
}
