package watch

import "time"

// DefaultPollInterval is how often the current address is compared with the
// last observed one.
const DefaultPollInterval = time.Second

// AddressPoller detects address changes by comparison with the last observed
// value. It does no timing itself; the owner calls Check on every tick.
type AddressPoller struct {
	current func() string
	last    string
}

// NewAddressPoller creates a poller reading the address from current.
// The address at creation time is the baseline.
func NewAddressPoller(current func() string) *AddressPoller {
	return &AddressPoller{current: current, last: current()}
}

// Check reads the address and reports whether it differs from the last
// observed one. The new address becomes the baseline.
func (p *AddressPoller) Check() (string, bool) {
	addr := p.current()
	if addr == p.last {
		return addr, false
	}
	p.last = addr
	return addr, true
}

// Last returns the last observed address.
func (p *AddressPoller) Last() string {
	return p.last
}

// Interval normalizes a poll interval, using DefaultPollInterval for
// non-positive values.
func Interval(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultPollInterval
	}
	return d
}
