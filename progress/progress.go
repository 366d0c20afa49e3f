// Package progress reports transfer progress for chunked file operations.
package progress

import (
	"fmt"
	"sync"
	"time"
)

// Reporter receives progress updates during a transfer
type Reporter interface {
	// Start begins tracking a transfer of totalBytes for path
	Start(path string, totalBytes int64)
	// Update reports the bytes transferred so far
	Update(bytesTransferred int64)
	// Complete marks the transfer as finished
	Complete()
	// Error reports a failed transfer
	Error(err error)
}

// Callback receives progress updates as values
type Callback func(update Update)

// UpdateType indicates what an update describes
type UpdateType int

const (
	UpdateStart UpdateType = iota
	UpdateProgress
	UpdateComplete
	UpdateError
)

// Update is one progress notification
type Update struct {
	Type           UpdateType
	Path           string
	Bytes          int64
	Total          int64
	BytesPerSecond float64
	Error          error
}

// CallbackReporter implements Reporter by invoking a callback
type CallbackReporter struct {
	callback  Callback
	mu        sync.Mutex
	path      string
	total     int64
	bytes     int64
	startTime time.Time
}

// NewCallbackReporter creates a reporter that forwards updates to callback
func NewCallbackReporter(callback Callback) *CallbackReporter {
	return &CallbackReporter{callback: callback}
}

// Start begins tracking a transfer
func (r *CallbackReporter) Start(path string, totalBytes int64) {
	r.mu.Lock()
	r.path = path
	r.total = totalBytes
	r.bytes = 0
	r.startTime = time.Now()

	update := Update{Type: UpdateStart, Path: path, Total: totalBytes}
	callback := r.callback
	r.mu.Unlock()

	// Callback runs outside the lock to prevent deadlock
	if callback != nil {
		callback(update)
	}
}

// Update reports transferred bytes
func (r *CallbackReporter) Update(bytesTransferred int64) {
	r.mu.Lock()
	r.bytes = bytesTransferred

	var bytesPerSecond float64
	if elapsed := time.Since(r.startTime).Seconds(); elapsed > 0 {
		bytesPerSecond = float64(bytesTransferred) / elapsed
	}

	update := Update{
		Type:           UpdateProgress,
		Path:           r.path,
		Bytes:          bytesTransferred,
		Total:          r.total,
		BytesPerSecond: bytesPerSecond,
	}
	callback := r.callback
	r.mu.Unlock()

	if callback != nil {
		callback(update)
	}
}

// Complete marks the transfer finished
func (r *CallbackReporter) Complete() {
	r.mu.Lock()
	update := Update{Type: UpdateComplete, Path: r.path, Bytes: r.total, Total: r.total}
	callback := r.callback
	r.mu.Unlock()

	if callback != nil {
		callback(update)
	}
}

// Error reports a failed transfer
func (r *CallbackReporter) Error(err error) {
	r.mu.Lock()
	update := Update{Type: UpdateError, Path: r.path, Bytes: r.bytes, Total: r.total, Error: err}
	callback := r.callback
	r.mu.Unlock()

	if callback != nil {
		callback(update)
	}
}

// NullReporter is a no-op reporter
type NullReporter struct{}

func (NullReporter) Start(path string, totalBytes int64) {}
func (NullReporter) Update(bytesTransferred int64)       {}
func (NullReporter) Complete()                           {}
func (NullReporter) Error(err error)                     {}

// FormatBytes formats a byte count into a human-readable string
func FormatBytes(bytes int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case bytes >= GB:
		return fmt.Sprintf("%.1f GB", float64(bytes)/GB)
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/MB)
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/KB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// FormatSpeed formats bytes per second into a human-readable string
func FormatSpeed(bytesPerSecond float64) string {
	return FormatBytes(int64(bytesPerSecond)) + "/s"
}
