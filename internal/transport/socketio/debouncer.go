package socketio

import (
	"sync"
	"time"
)

// PushDebouncer collapses rapid state transitions into batched pushes.
// Track skips and command follow-up polls can change the state several
// times within a few hundred milliseconds; clients only need the final
// snapshot of each burst.
type PushDebouncer struct {
	window   time.Duration
	callback func()

	mu      sync.Mutex
	pending bool
	timer   *time.Timer
	stopped bool
}

// NewPushDebouncer creates a debouncer with the given window duration.
// callback is invoked once per burst, after the window elapses without
// further triggers.
func NewPushDebouncer(window time.Duration, callback func()) *PushDebouncer {
	return &PushDebouncer{
		window:   window,
		callback: callback,
	}
}

// Trigger records that the state changed. The push is deferred until the
// debounce window elapses without further triggers.
func (d *PushDebouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.pending = true

	// Reset the timer
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.flush)
}

// flush fires the callback if a push is pending and resets the flag.
func (d *PushDebouncer) flush() {
	d.mu.Lock()
	doPush := d.pending
	d.pending = false
	d.mu.Unlock()

	if doPush && d.callback != nil {
		d.callback()
	}
}

// Stop prevents any further callbacks from firing.
func (d *PushDebouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = false
}
