package gosqs

import "time"

// cancellableTimer wraps time.AfterFunc so callers can stop a possibly-nil timer without a nil check at
// every call site -- DeleteBatcher and TimeoutExtender both hold a "timer or nil" field. DeleteBatcher
// clears its field on fire and on explicit flush (spec §9: "must be cleared on fire AND on explicit flush
// to avoid a ghost flush firing after stop"); TimeoutExtender stops and replaces its field on every
// re-arm.
type cancellableTimer struct {
	t *time.Timer
}

func afterFunc(d time.Duration, f func()) *cancellableTimer {
	return &cancellableTimer{t: time.AfterFunc(d, f)}
}

func (c *cancellableTimer) stop() {
	if c == nil || c.t == nil {
		return
	}
	c.t.Stop()
}
