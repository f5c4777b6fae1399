package socketio

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerRapidTriggersCollapseToOne(t *testing.T) {
	var pushes int32

	d := NewPushDebouncer(50*time.Millisecond,
		func() { atomic.AddInt32(&pushes, 1) },
	)
	defer d.Stop()

	// Fire 10 rapid state changes
	for i := 0; i < 10; i++ {
		d.Trigger()
	}

	// Wait for debounce window to elapse
	time.Sleep(100 * time.Millisecond)

	if got := atomic.LoadInt32(&pushes); got != 1 {
		t.Errorf("expected 1 push, got %d", got)
	}
}

func TestDebouncerSustainedBurstCollapsesToOne(t *testing.T) {
	var pushes int32

	d := NewPushDebouncer(50*time.Millisecond,
		func() { atomic.AddInt32(&pushes, 1) },
	)
	defer d.Stop()

	// Simulate rapid track skipping
	for i := 0; i < 20; i++ {
		d.Trigger()
		time.Sleep(5 * time.Millisecond)
	}

	// Wait for debounce window
	time.Sleep(100 * time.Millisecond)

	if got := atomic.LoadInt32(&pushes); got != 1 {
		t.Errorf("expected 1 push for a sustained burst, got %d", got)
	}
}

func TestDebouncerSeparateWindowsFireIndependently(t *testing.T) {
	var pushes int32

	d := NewPushDebouncer(50*time.Millisecond,
		func() { atomic.AddInt32(&pushes, 1) },
	)
	defer d.Stop()

	// First burst
	d.Trigger()
	time.Sleep(100 * time.Millisecond) // Wait for first flush

	// Second burst (separate window)
	d.Trigger()
	time.Sleep(100 * time.Millisecond) // Wait for second flush

	if got := atomic.LoadInt32(&pushes); got != 2 {
		t.Errorf("expected 2 pushes for separate windows, got %d", got)
	}
}

func TestDebouncerStopPreventsCallbacks(t *testing.T) {
	var pushes int32

	d := NewPushDebouncer(50*time.Millisecond,
		func() { atomic.AddInt32(&pushes, 1) },
	)

	d.Trigger()
	d.Stop()

	time.Sleep(100 * time.Millisecond)

	if got := atomic.LoadInt32(&pushes); got != 0 {
		t.Errorf("expected 0 pushes after stop, got %d", got)
	}
}

func TestDebouncerTriggerAfterStopIsIgnored(t *testing.T) {
	var pushes int32

	d := NewPushDebouncer(50*time.Millisecond,
		func() { atomic.AddInt32(&pushes, 1) },
	)

	d.Stop()
	d.Trigger()

	time.Sleep(100 * time.Millisecond)

	if got := atomic.LoadInt32(&pushes); got != 0 {
		t.Errorf("expected 0 pushes after stop+trigger, got %d", got)
	}
}
