package watch

import (
	"log/slog"
	"sync"
	"time"
)

// Debouncer coalesces bursts of file events into one callback. The callback
// receives the path of the last event of the burst.
type Debouncer struct {
	interval time.Duration
	callback func(path string)

	// runMu serializes callbacks: a slow run delays the next one instead of
	// overlapping it.
	runMu sync.Mutex

	mu      sync.Mutex
	timer   *time.Timer
	pending string
	gen     uint64
}

// NewDebouncer creates a debouncer that waits for interval of quiet before
// firing callback.
func NewDebouncer(interval time.Duration, callback func(path string)) *Debouncer {
	return &Debouncer{
		interval: interval,
		callback: callback,
	}
}

// Trigger records an event for path and restarts the quiet period.
func (d *Debouncer) Trigger(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = path
	d.gen++
	gen := d.gen

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.interval, func() { d.fire(gen) })
}

// fire runs the callback unless a later Trigger or Stop superseded gen.
func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen {
		d.mu.Unlock()
		return
	}

	path := d.pending
	d.pending = ""
	d.mu.Unlock()

	d.runMu.Lock()
	defer d.runMu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("debounced callback panicked", slog.String("path", path), slog.Any("error", r))
		}
	}()

	d.callback(path)
}

// Pending reports whether an event is waiting for its quiet period to end.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.pending != ""
}

// Stop cancels any pending callback.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	d.pending = ""

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
