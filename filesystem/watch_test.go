package filesystem

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sandgrid/sandgrid-go/apierror"
)

// eventSink collects callback invocations thread-safely
type eventSink struct {
	mu      sync.Mutex
	batches [][]ChangeEvent
}

func (s *eventSink) callback(events []ChangeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch := make([]ChangeEvent, len(events))
	copy(batch, events)
	s.batches = append(s.batches, batch)
}

func (s *eventSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.batches)
}

func (s *eventSink) all() [][]ChangeEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]ChangeEvent, len(s.batches))
	copy(out, s.batches)
	return out
}

// waitFor polls cond until it holds or the deadline passes
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(2 * time.Millisecond)
	}
	return cond()
}

func TestWatcher_BatchDelivery(t *testing.T) {
	caller := newFakeCaller()
	caller.pollScript = []pollResponse{
		{events: []ChangeEvent{
			{EventType: EventCreate, Path: "/ws/a.txt", PathType: PathTypeFile},
			{EventType: EventModify, Path: "/ws/a.txt", PathType: PathTypeFile},
		}},
		{events: []ChangeEvent{
			{EventType: EventModify, Path: "/ws/a.txt", PathType: PathTypeFile},
		}},
		{events: []ChangeEvent{
			{EventType: EventCreate, Path: "/ws/b.txt", PathType: PathTypeFile},
			{EventType: EventModify, Path: "/ws/b.txt", PathType: PathTypeFile},
		}},
		// then empty responses: no further callbacks
	}
	fs := newTestFS(caller)

	sink := &eventSink{}
	w, err := fs.NewWatcher("/ws", 3*time.Millisecond, sink.callback)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if !waitFor(t, time.Second, func() bool { return sink.count() >= 3 }) {
		t.Fatalf("expected 3 deliveries, got %d", sink.count())
	}

	// Let a few empty polls happen: no extra callbacks
	if !waitFor(t, 200*time.Millisecond, func() bool { return w.Status().Polls >= 5 }) {
		t.Fatal("watcher did not keep polling after the script was exhausted")
	}
	if err := w.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	batches := sink.all()
	if len(batches) != 3 {
		t.Fatalf("expected exactly 3 callback invocations, got %d", len(batches))
	}

	total := 0
	for _, b := range batches {
		total += len(b)
	}
	if total != 5 {
		t.Errorf("expected 5 events across deliveries, got %d", total)
	}

	// Grouping and order preserved exactly as polled
	if len(batches[0]) != 2 || batches[0][0].EventType != EventCreate || batches[0][1].EventType != EventModify {
		t.Errorf("unexpected first batch: %+v", batches[0])
	}
	if len(batches[1]) != 1 || batches[1][0].Path != "/ws/a.txt" {
		t.Errorf("unexpected second batch: %+v", batches[1])
	}
	if len(batches[2]) != 2 || batches[2][0].Path != "/ws/b.txt" {
		t.Errorf("unexpected third batch: %+v", batches[2])
	}
}

func TestWatcher_CancellationLatency(t *testing.T) {
	caller := newFakeCaller()
	fs := newTestFS(caller)

	sink := &eventSink{}
	// Interval far larger than the test's deadline: cancellation must
	// interrupt the wait instead of sleeping it out
	w, err := fs.NewWatcher("/ws", time.Hour, sink.callback)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// First poll fires immediately; wait for it
	if !waitFor(t, time.Second, func() bool { return w.Status().Polls == 1 }) {
		t.Fatal("first poll never happened")
	}

	start := time.Now()
	cancel()
	w.Wait()

	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("shutdown took %v; the inter-poll wait must be interruptible", elapsed)
	}
	if polls := w.Status().Polls; polls != 1 {
		t.Errorf("no further polls may happen after cancellation, got %d", polls)
	}
	if w.Status().Running {
		t.Error("watcher should not report running after shutdown")
	}
}

func TestWatcher_PollFailureContinues(t *testing.T) {
	caller := newFakeCaller()
	caller.pollScript = []pollResponse{
		{err: errors.New("transient transport failure")},
		{events: []ChangeEvent{{EventType: EventModify, Path: "/ws/a.txt", PathType: PathTypeFile}}},
	}
	fs := newTestFS(caller)

	sink := &eventSink{}
	w, err := fs.NewWatcher("/ws", 3*time.Millisecond, sink.callback)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if !waitFor(t, time.Second, func() bool { return sink.count() >= 1 }) {
		t.Fatal("watcher did not survive the failed poll")
	}
	if err := w.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	status := w.Status()
	if status.TotalFailures != 1 {
		t.Errorf("expected 1 recorded failure, got %d", status.TotalFailures)
	}
	if status.ConsecutiveFailures != 0 {
		t.Errorf("consecutive failures should reset after a success, got %d", status.ConsecutiveFailures)
	}
	if status.Events != 1 {
		t.Errorf("expected 1 delivered event, got %d", status.Events)
	}
}

func TestWatcher_EmptyBatchSkipsCallback(t *testing.T) {
	caller := newFakeCaller()
	caller.pollScript = []pollResponse{
		{events: nil},
		{events: []ChangeEvent{{EventType: EventCreate, Path: "/ws/new", PathType: PathTypeDirectory}}},
	}
	fs := newTestFS(caller)

	sink := &eventSink{}
	w, err := fs.NewWatcher("/ws", 3*time.Millisecond, sink.callback)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if !waitFor(t, time.Second, func() bool { return sink.count() >= 1 }) {
		t.Fatal("second poll's events never delivered")
	}
	if err := w.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if sink.count() != 1 {
		t.Errorf("empty batches must not invoke the callback; got %d invocations", sink.count())
	}
	if w.Status().Deliveries != 1 {
		t.Errorf("expected 1 delivery, got %d", w.Status().Deliveries)
	}
}

func TestWatcher_CannotRestart(t *testing.T) {
	caller := newFakeCaller()
	fs := newTestFS(caller)

	w, err := fs.NewWatcher("/ws", 3*time.Millisecond, func([]ChangeEvent) {})
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}

	ctx := context.Background()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := w.Start(ctx); err == nil {
		t.Error("second Start while running should fail")
	}
	if err := w.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if err := w.Start(ctx); !errors.Is(err, apierror.ErrWatcherStopped) {
		t.Errorf("expected ErrWatcherStopped on restart, got %v", err)
	}
}

func TestNewWatcher_Validation(t *testing.T) {
	fs := newTestFS(newFakeCaller())

	if _, err := fs.NewWatcher("", time.Second, func([]ChangeEvent) {}); !errors.Is(err, apierror.ErrEmptyPath) {
		t.Errorf("expected ErrEmptyPath, got %v", err)
	}
	if _, err := fs.NewWatcher("/ws", time.Second, nil); err == nil {
		t.Error("nil callback should be rejected")
	}
	if _, err := fs.NewWatcher("/ws", -time.Second, func([]ChangeEvent) {}); err == nil {
		t.Error("negative interval should be rejected")
	}

	w, err := fs.NewWatcher("/ws", 0, func([]ChangeEvent) {})
	if err != nil {
		t.Fatalf("zero interval should select the default: %v", err)
	}
	if w.interval != DefaultPollInterval {
		t.Errorf("expected default interval %v, got %v", DefaultPollInterval, w.interval)
	}
}

func TestWatchDirectory_BlocksUntilCancelled(t *testing.T) {
	caller := newFakeCaller()
	caller.pollScript = []pollResponse{
		{events: []ChangeEvent{{EventType: EventCreate, Path: "/ws/x", PathType: PathTypeFile}}},
	}
	fs := newTestFS(caller)

	ctx, cancel := context.WithCancel(context.Background())
	sink := &eventSink{}

	done := make(chan error, 1)
	go func() {
		done <- fs.WatchDirectory(ctx, "/ws", 3*time.Millisecond, sink.callback)
	}()

	if !waitFor(t, time.Second, func() bool { return sink.count() >= 1 }) {
		t.Fatal("watch never delivered events")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("clean shutdown should return nil, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("WatchDirectory did not return after cancellation")
	}
}

func TestWatcher_IndependentSessions(t *testing.T) {
	callerA := newFakeCaller()
	callerA.pollScript = []pollResponse{
		{events: []ChangeEvent{{EventType: EventCreate, Path: "/a/1", PathType: PathTypeFile}}},
	}
	callerB := newFakeCaller()
	callerB.pollScript = []pollResponse{
		{events: []ChangeEvent{{EventType: EventDelete, Path: "/b/1", PathType: PathTypeFile}}},
	}

	fsA := newTestFS(callerA)
	fsB := newTestFS(callerB)

	sinkA, sinkB := &eventSink{}, &eventSink{}
	wA, _ := fsA.NewWatcher("/a", 3*time.Millisecond, sinkA.callback)
	wB, _ := fsB.NewWatcher("/b", 3*time.Millisecond, sinkB.callback)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := wA.Start(ctx); err != nil {
		t.Fatalf("Start A failed: %v", err)
	}
	if err := wB.Start(ctx); err != nil {
		t.Fatalf("Start B failed: %v", err)
	}

	ok := waitFor(t, time.Second, func() bool { return sinkA.count() >= 1 && sinkB.count() >= 1 })
	if !ok {
		t.Fatal("both watchers should deliver independently")
	}

	_ = wA.Stop()
	_ = wB.Stop()

	if sinkA.all()[0][0].Path != "/a/1" || sinkB.all()[0][0].Path != "/b/1" {
		t.Error("watchers crossed their event streams")
	}
}
