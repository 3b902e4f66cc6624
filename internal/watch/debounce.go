package watch

import "time"

// DefaultDebounce is the quiet period after the last trigger before a
// debounced rescan fires.
const DefaultDebounce = 300 * time.Millisecond

// Debouncer collapses bursts of triggers into one firing. It holds at most
// one pending timer: Schedule while pending restarts the window from now
// rather than queueing another firing.
//
// Typical use inside a select loop:
//
//	case <-signals:
//		d.Schedule()
//	case <-d.C():
//		d.Fired()
//		scan()
type Debouncer struct {
	delay   time.Duration
	timer   *time.Timer
	pending bool
}

// NewDebouncer creates a Debouncer with the given quiet period.
// A non-positive delay uses DefaultDebounce.
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{delay: delay}
}

// Delay returns the quiet period.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Schedule starts the window, or restarts it if a firing is pending.
func (d *Debouncer) Schedule() {
	if d.timer == nil {
		d.timer = time.NewTimer(d.delay)
	} else {
		// Since Go 1.23 Reset discards any undelivered expiry, so a
		// restarted window never fires early.
		d.timer.Reset(d.delay)
	}
	d.pending = true
}

// C returns the channel that receives when the window elapses. It returns nil
// when nothing is pending, which blocks forever in a select.
func (d *Debouncer) C() <-chan time.Time {
	if !d.pending {
		return nil
	}
	return d.timer.C
}

// Fired acknowledges a receive from C.
func (d *Debouncer) Fired() {
	d.pending = false
}

// Pending reports whether a firing is scheduled.
func (d *Debouncer) Pending() bool {
	return d.pending
}

// Stop cancels any pending firing.
func (d *Debouncer) Stop() {
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = false
}
