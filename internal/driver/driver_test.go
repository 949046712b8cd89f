package driver

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/j-veylop/codetime-dashboard-tui/internal/ledger"
	"github.com/j-veylop/codetime-dashboard-tui/internal/session"
	"github.com/j-veylop/codetime-dashboard-tui/internal/store"
)

var t0 = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeTicker struct {
	c       chan time.Time
	stopped chan struct{}
	once    sync.Once
}

func (f *fakeTicker) Chan() <-chan time.Time { return f.c }
func (f *fakeTicker) Stop()                  { f.once.Do(func() { close(f.stopped) }) }

// tickers hands out fake tickers keyed by interval.
type tickers struct {
	mu sync.Mutex
	by map[time.Duration]*fakeTicker
}

func (ts *tickers) new(d time.Duration) Ticker {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ft := &fakeTicker{c: make(chan time.Time), stopped: make(chan struct{})}
	ts.by[d] = ft
	return ft
}

func (ts *tickers) get(t *testing.T, d time.Duration) *fakeTicker {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		ts.mu.Lock()
		ft := ts.by[d]
		ts.mu.Unlock()
		if ft != nil {
			return ft
		}
		select {
		case <-deadline:
			t.Fatalf("ticker %v never created", d)
		case <-time.After(time.Millisecond):
		}
	}
}

type failingStore struct {
	err error
}

func (f *failingStore) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (f *failingStore) Set(context.Context, string, []byte) error        { return f.err }
func (f *failingStore) Close() error                                     { return nil }

// blockingStore holds every Set until release is closed.
type blockingStore struct {
	*store.MemoryStore
	entered chan struct{}
	release chan struct{}
}

func (b *blockingStore) Set(ctx context.Context, key string, value []byte) error {
	select {
	case b.entered <- struct{}{}:
	default:
	}
	<-b.release
	return b.MemoryStore.Set(ctx, key, value)
}

const (
	settleEvery  = time.Second
	persistEvery = time.Minute
)

type harness struct {
	driver   *Driver
	tracker  *session.Tracker
	gateway  *store.Gateway
	clock    *fakeClock
	tickers  *tickers
	statuses chan session.Status
	persists chan error
	cancel   context.CancelFunc
	done     chan error
}

func newHarness(t *testing.T, blobs store.BlobStore) *harness {
	t.Helper()

	h := &harness{
		tracker:  session.NewTracker(ledger.New(), session.Config{}),
		gateway:  store.NewGateway(blobs, ""),
		clock:    &fakeClock{now: t0},
		tickers:  &tickers{by: make(map[time.Duration]*fakeTicker)},
		statuses: make(chan session.Status, 64),
		persists: make(chan error, 64),
		done:     make(chan error, 1),
	}
	h.driver = New(h.tracker, h.gateway,
		Config{SettleInterval: settleEvery, PersistInterval: persistEvery},
		WithClock(h.clock.Now),
		WithTickers(h.tickers.new),
		OnSettle(func(s session.Status) { h.statuses <- s }),
		OnPersist(func(err error) { h.persists <- err }),
	)

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() { h.done <- h.driver.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-h.done:
		case <-time.After(2 * time.Second):
		}
	})
	return h
}

func (h *harness) status(t *testing.T) session.Status {
	t.Helper()
	select {
	case s := <-h.statuses:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("no status reported")
		return session.Status{}
	}
}

func (h *harness) persisted(t *testing.T) error {
	t.Helper()
	select {
	case err := <-h.persists:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("no persist reported")
		return nil
	}
}

func (h *harness) stop(t *testing.T) error {
	t.Helper()
	h.cancel()
	select {
	case err := <-h.done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("driver did not stop")
		return nil
	}
}

func (h *harness) focus(t *testing.T, category string) session.Status {
	t.Helper()
	if !h.driver.Post(FocusEvent{Category: category, Trackable: category != ""}) {
		t.Fatal("Post dropped focus event")
	}
	return h.status(t)
}

func TestDriver_SettleTickCommits(t *testing.T) {
	h := newHarness(t, store.NewMemoryStore())

	st := h.focus(t, "python")
	if !st.Active || st.Category != "python" {
		t.Fatalf("status after focus = %+v", st)
	}

	settle := h.tickers.get(t, settleEvery)

	h.clock.Advance(5 * time.Second)
	settle.c <- time.Time{}
	if st := h.status(t); st.Seconds != 5 {
		t.Errorf("live seconds = %d, want 5", st.Seconds)
	}
	if got := h.tracker.Ledger().TotalSeconds(); got != 0 {
		t.Errorf("committed before settle period = %d", got)
	}

	h.clock.Advance(5 * time.Second)
	settle.c <- time.Time{}
	h.status(t)
	if got := h.tracker.Ledger().TotalSeconds(); got != 10 {
		t.Errorf("committed after settle period = %d, want 10", got)
	}
}

func TestDriver_FocusSwitchAccumulates(t *testing.T) {
	h := newHarness(t, store.NewMemoryStore())

	h.focus(t, "python")
	h.clock.Advance(15 * time.Second)
	h.focus(t, "go")
	h.clock.Advance(3 * time.Second)

	if err := h.stop(t); err != nil {
		t.Fatalf("Run returned %v", err)
	}

	l := h.tracker.Ledger()
	py, _ := l.Category("python")
	goStat, _ := l.Category("go")
	if py.TotalTime != 15 || goStat.TotalTime != 3 {
		t.Errorf("python = %d, go = %d, want 15 and 3", py.TotalTime, goStat.TotalTime)
	}
}

func TestDriver_UntrackableFocusGoesIdle(t *testing.T) {
	h := newHarness(t, store.NewMemoryStore())

	h.focus(t, "go")
	h.clock.Advance(4 * time.Second)

	st := h.focus(t, "")
	if st.Active {
		t.Errorf("status = %+v, want idle", st)
	}
	if got := h.tracker.Ledger().TotalSeconds(); got != 4 {
		t.Errorf("TotalSeconds = %d, want 4", got)
	}

	h.clock.Advance(time.Hour)
	if err := h.stop(t); err != nil {
		t.Fatal(err)
	}
	if got := h.tracker.Ledger().TotalSeconds(); got != 4 {
		t.Errorf("idle time was counted: TotalSeconds = %d", got)
	}
}

func TestDriver_PersistTickSaves(t *testing.T) {
	mem := store.NewMemoryStore()
	h := newHarness(t, mem)

	h.focus(t, "go")
	h.clock.Advance(12 * time.Second)
	h.tickers.get(t, settleEvery).c <- time.Time{}
	h.status(t)

	h.tickers.get(t, persistEvery).c <- time.Time{}
	if err := h.persisted(t); err != nil {
		t.Fatalf("persist failed: %v", err)
	}

	loaded, err := store.NewGateway(mem, "").Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if loaded.TotalSeconds() != 12 {
		t.Errorf("persisted TotalSeconds = %d, want 12", loaded.TotalSeconds())
	}
}

func TestDriver_SlowSaveDoesNotStallTimeline(t *testing.T) {
	slow := &blockingStore{
		MemoryStore: store.NewMemoryStore(),
		entered:     make(chan struct{}, 1),
		release:     make(chan struct{}),
	}
	h := newHarness(t, slow)
	t.Cleanup(func() { close(slow.release) })

	h.focus(t, "go")
	persist := h.tickers.get(t, persistEvery)

	persist.c <- time.Time{}
	select {
	case <-slow.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("saver never reached the store")
	}
	persist.c <- time.Time{}

	start := time.Now()
	if !h.driver.Post(FocusEvent{Category: "python", Trackable: true}) {
		t.Fatal("Post dropped focus event")
	}
	select {
	case st := <-h.statuses:
		if st.Category != "python" {
			t.Errorf("status category = %q, want python", st.Category)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("focus event not handled while a save was in flight")
	}
	if waited := time.Since(start); waited > 500*time.Millisecond {
		t.Errorf("focus handled after %v", waited)
	}
}

func TestDriver_ShutdownFlushesAndSaves(t *testing.T) {
	mem := store.NewMemoryStore()
	h := newHarness(t, mem)

	h.focus(t, "rust")
	h.clock.Advance(7 * time.Second)

	if err := h.stop(t); err != nil {
		t.Fatalf("Run returned %v", err)
	}

	select {
	case <-h.tickers.get(t, settleEvery).stopped:
	default:
		t.Error("settle ticker not stopped")
	}
	select {
	case <-h.tickers.get(t, persistEvery).stopped:
	default:
		t.Error("persist ticker not stopped")
	}

	loaded, err := store.NewGateway(mem, "").Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	stat, ok := loaded.Category("rust")
	if !ok || stat.TotalTime != 7 {
		t.Errorf("rust = %+v, %v; want 7 seconds", stat, ok)
	}
}

func TestDriver_ShutdownDrainsQueuedEvents(t *testing.T) {
	mem := store.NewMemoryStore()
	tr := session.NewTracker(ledger.New(), session.Config{})
	clock := &fakeClock{now: t0}
	ts := &tickers{by: make(map[time.Duration]*fakeTicker)}
	d := New(tr, store.NewGateway(mem, ""), Config{}, WithClock(clock.Now), WithTickers(ts.new))

	d.Post(FocusEvent{Category: "go", Trackable: true, Time: t0})
	d.Post(DocumentEvent{Category: "go", Time: t0})
	clock.Advance(9 * time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := d.Run(ctx); err != nil {
		t.Fatalf("Run returned %v", err)
	}

	stat, ok := tr.Ledger().Category("go")
	if !ok {
		t.Fatal("queued focus event was not processed")
	}
	if stat.TotalTime != 9 || stat.FileCount != 1 {
		t.Errorf("go = %+v, want 9 seconds and 1 file", stat)
	}
}

func TestDriver_ResetRequest(t *testing.T) {
	mem := store.NewMemoryStore()
	h := newHarness(t, mem)

	h.focus(t, "go")
	h.clock.Advance(30 * time.Second)
	h.tickers.get(t, settleEvery).c <- time.Time{}
	h.status(t)

	req := NewResetRequest()
	h.driver.Post(req)
	select {
	case err := <-req.Done:
		if err != nil {
			t.Fatalf("reset save failed: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("reset never answered")
	}

	if st := h.tracker.Status(h.clock.Now()); st.Active {
		t.Errorf("status after reset = %+v, want idle", st)
	}

	loaded, err := store.NewGateway(mem, "").Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !loaded.IsEmpty() {
		t.Error("stored ledger not empty after reset")
	}
}

func TestDriver_SaveRequestFlushes(t *testing.T) {
	mem := store.NewMemoryStore()
	h := newHarness(t, mem)

	h.focus(t, "go")
	h.clock.Advance(3 * time.Second)

	req := NewSaveRequest()
	h.driver.Post(req)
	if err := <-req.Done; err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, _ := store.NewGateway(mem, "").Load(context.Background())
	if loaded.TotalSeconds() != 3 {
		t.Errorf("saved TotalSeconds = %d, want 3", loaded.TotalSeconds())
	}
}

func TestDriver_PersistFailureReported(t *testing.T) {
	boom := errors.New("disk full")
	h := newHarness(t, &failingStore{err: boom})

	h.focus(t, "go")
	h.tickers.get(t, persistEvery).c <- time.Time{}
	if err := h.persisted(t); !errors.Is(err, boom) {
		t.Errorf("persist error = %v, want %v", err, boom)
	}

	if err := h.stop(t); !errors.Is(err, boom) {
		t.Errorf("Run error = %v, want %v", err, boom)
	}
}

func TestDriver_PostDropsWhenFull(t *testing.T) {
	d := New(session.NewTracker(nil, session.Config{}), store.NewGateway(store.NewMemoryStore(), ""),
		Config{QueueSize: 1})

	if !d.Post(DocumentEvent{Category: "go"}) {
		t.Fatal("first Post should be queued")
	}
	if d.Post(DocumentEvent{Category: "go"}) {
		t.Error("second Post should be dropped")
	}
}

func TestDriver_RunTwice(t *testing.T) {
	h := newHarness(t, store.NewMemoryStore())
	h.focus(t, "go")

	if err := h.driver.Run(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Run = %v, want ErrAlreadyRunning", err)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.SettleInterval != time.Second {
		t.Errorf("SettleInterval = %v", cfg.SettleInterval)
	}
	if cfg.PersistInterval != 5*time.Minute {
		t.Errorf("PersistInterval = %v", cfg.PersistInterval)
	}
}
