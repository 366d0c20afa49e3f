package filesystem

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sandgrid/sandgrid-go/apierror"
	"github.com/sandgrid/sandgrid-go/internal/logger"
)

// DefaultPollInterval is the poll cadence used when none is given
const DefaultPollInterval = 500 * time.Millisecond

// WatchCallback receives one non-empty batch of change events per poll
// cycle that produced any. Batches preserve the remote's event order and
// grouping. Invocations are sequential, never concurrent with each other
// or with an in-flight poll.
type WatchCallback func(events []ChangeEvent)

// WatchStatus is a snapshot of a watcher's runtime state
type WatchStatus struct {
	Running             bool
	Polls               int
	Deliveries          int
	Events              int
	ConsecutiveFailures int
	TotalFailures       int
	LastError           string
	LastPollTime        time.Time
}

// Watcher polls the remote change feed for one directory at a fixed
// interval and delivers event batches to its callback until stopped.
// A stopped watcher cannot be restarted; watch sessions share no state,
// so concurrent watchers on the same or different paths are independent.
//
// Poll failures are logged and counted but do not terminate the watch:
// the remote cursor survives a missed poll, so the next cycle picks up
// the same changes. Callers who want a failure threshold can build one on
// Status().ConsecutiveFailures.
type Watcher struct {
	fs       *FileSystem
	path     string
	interval time.Duration
	callback WatchCallback
	log      logger.Logger

	// Runtime state
	mu          sync.RWMutex
	running     bool
	stopped     bool
	stopOnce    sync.Once // Stop() is idempotent
	closeOnce   sync.Once // stoppedChan closes exactly once
	stopChan    chan struct{}
	stoppedChan chan struct{}

	stats struct {
		polls               int
		deliveries          int
		events              int
		consecutiveFailures int
		totalFailures       int
		lastError           string
		lastPollTime        time.Time
	}
}

// NewWatcher creates a watcher for path. A zero interval selects
// DefaultPollInterval; a negative interval is rejected.
func (f *FileSystem) NewWatcher(path string, interval time.Duration, callback WatchCallback) (*Watcher, error) {
	op := "filesystem.watch"

	if path == "" {
		return nil, apierror.Wrap(apierror.CodeInvalidInput, op, "empty path", apierror.ErrEmptyPath)
	}
	if callback == nil {
		return nil, apierror.New(apierror.CodeInvalidInput, op, "callback cannot be nil")
	}
	if interval < 0 {
		return nil, apierror.New(apierror.CodeInvalidInput, op, fmt.Sprintf("interval must be non-negative, got %v", interval))
	}
	if interval == 0 {
		interval = DefaultPollInterval
	}

	return &Watcher{
		fs:          f,
		path:        path,
		interval:    interval,
		callback:    callback,
		log:         f.log.With("watch_path", path),
		stopChan:    make(chan struct{}),
		stoppedChan: make(chan struct{}),
	}, nil
}

// Start begins the polling loop in a goroutine
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("watcher is already running")
	}
	if w.stopped {
		return apierror.Wrap(apierror.CodeInvalidInput, "filesystem.watch",
			"start after stop", apierror.ErrWatcherStopped)
	}

	w.running = true
	go w.run(ctx)

	return nil
}

// run is the polling loop: one poll per cycle, then an interruptible wait.
// The stop signal is checked both before each poll and during the wait, so
// shutdown latency is bounded by the select, not by a full interval.
func (w *Watcher) run(ctx context.Context) {
	defer w.closeOnce.Do(func() {
		w.mu.Lock()
		w.stopped = true
		w.running = false
		w.mu.Unlock()
		close(w.stoppedChan)
	})

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		default:
		}

		w.poll(ctx)

		timer := time.NewTimer(w.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-w.stopChan:
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// poll performs one change-feed call and delivers any events
func (w *Watcher) poll(ctx context.Context) {
	events, err := w.fs.GetFileChange(ctx, w.path)

	w.mu.Lock()
	w.stats.polls++
	w.stats.lastPollTime = time.Now()

	if err != nil {
		w.stats.consecutiveFailures++
		w.stats.totalFailures++
		w.stats.lastError = err.Error()
		w.mu.Unlock()

		// A single failed poll never terminates the watch
		w.log.Warn("change poll failed, continuing", "error", err)
		return
	}

	w.stats.consecutiveFailures = 0
	w.stats.lastError = ""

	if len(events) == 0 {
		w.mu.Unlock()
		return
	}

	w.stats.deliveries++
	w.stats.events += len(events)
	w.mu.Unlock()

	// Callback runs outside the lock and synchronously with the loop
	w.callback(events)
}

// Stop signals the loop to exit and waits for it to finish
func (w *Watcher) Stop() error {
	w.mu.RLock()
	if !w.running {
		w.mu.RUnlock()
		return fmt.Errorf("watcher is not running")
	}
	w.mu.RUnlock()

	w.stopOnce.Do(func() {
		close(w.stopChan)
	})

	<-w.stoppedChan
	return nil
}

// Wait blocks until the watcher has fully stopped
func (w *Watcher) Wait() {
	<-w.stoppedChan
}

// Status returns a snapshot of the watcher's state
func (w *Watcher) Status() *WatchStatus {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return &WatchStatus{
		Running:             w.running,
		Polls:               w.stats.polls,
		Deliveries:          w.stats.deliveries,
		Events:              w.stats.events,
		ConsecutiveFailures: w.stats.consecutiveFailures,
		TotalFailures:       w.stats.totalFailures,
		LastError:           w.stats.lastError,
		LastPollTime:        w.stats.lastPollTime,
	}
}

// WatchDirectory polls path until ctx is cancelled, delivering non-empty
// event batches to callback. It blocks for the life of the watch and
// returns nil after a clean shutdown.
func (f *FileSystem) WatchDirectory(ctx context.Context, path string, interval time.Duration, callback WatchCallback) error {
	w, err := f.NewWatcher(path, interval, callback)
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	w.Wait()
	return nil
}
