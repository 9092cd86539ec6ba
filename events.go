package gosqs

import "sync"

// events is the typed multi-subscriber observable surface described by the event names in spec §4.1.
// Subscriber registration is safe to call from any goroutine; emission always happens from the
// consumer's single owner goroutine, so callbacks for a single emission run to completion in
// registration order before the owner loop takes its next step (§5). Events are fire-and-forget: the
// engine does not wait on or react to what a subscriber does.
type events struct {
	mu sync.RWMutex

	onMessage       []func(*Message)
	onGotMessages   []func(int)
	onQueueEmpty    []func()
	onMaxInFlight   []func()
	onAborted       []func()
	onDrained       []func()
	onError         []func(error)
	onDelError      []func(DeleteFailure)
	onDelQueued     []func(*Message)
	onDeleted       []func(*Message)
	onHandled       []func(*Message)
	onTimeoutReach  []func(*Message)
}

func (e *events) OnMessage(f func(*Message)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onMessage = append(e.onMessage, f)
}

func (e *events) OnGotMessages(f func(int)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onGotMessages = append(e.onGotMessages, f)
}

func (e *events) OnQueueEmpty(f func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onQueueEmpty = append(e.onQueueEmpty, f)
}

func (e *events) OnMaxInFlight(f func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onMaxInFlight = append(e.onMaxInFlight, f)
}

func (e *events) OnAborted(f func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onAborted = append(e.onAborted, f)
}

func (e *events) OnDrained(f func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onDrained = append(e.onDrained, f)
}

func (e *events) OnError(f func(error)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onError = append(e.onError, f)
}

func (e *events) OnDelError(f func(DeleteFailure)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onDelError = append(e.onDelError, f)
}

func (e *events) OnDelQueued(f func(*Message)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onDelQueued = append(e.onDelQueued, f)
}

func (e *events) OnDeleted(f func(*Message)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onDeleted = append(e.onDeleted, f)
}

func (e *events) OnHandled(f func(*Message)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onHandled = append(e.onHandled, f)
}

func (e *events) OnTimeoutReached(f func(*Message)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onTimeoutReach = append(e.onTimeoutReach, f)
}

func (e *events) emitMessage(m *Message) {
	e.mu.RLock()
	subs := e.onMessage
	e.mu.RUnlock()
	for _, f := range subs {
		f(m)
	}
}

func (e *events) emitGotMessages(n int) {
	e.mu.RLock()
	subs := e.onGotMessages
	e.mu.RUnlock()
	for _, f := range subs {
		f(n)
	}
}

func (e *events) emitQueueEmpty() {
	e.mu.RLock()
	subs := e.onQueueEmpty
	e.mu.RUnlock()
	for _, f := range subs {
		f()
	}
}

func (e *events) emitMaxInFlight() {
	e.mu.RLock()
	subs := e.onMaxInFlight
	e.mu.RUnlock()
	for _, f := range subs {
		f()
	}
}

func (e *events) emitAborted() {
	e.mu.RLock()
	subs := e.onAborted
	e.mu.RUnlock()
	for _, f := range subs {
		f()
	}
}

func (e *events) emitDrained() {
	e.mu.RLock()
	subs := e.onDrained
	e.mu.RUnlock()
	for _, f := range subs {
		f()
	}
}

func (e *events) emitError(err error) {
	e.mu.RLock()
	subs := e.onError
	e.mu.RUnlock()
	for _, f := range subs {
		f(err)
	}
}

func (e *events) emitDelError(df DeleteFailure) {
	e.mu.RLock()
	subs := e.onDelError
	e.mu.RUnlock()
	for _, f := range subs {
		f(df)
	}
}

func (e *events) emitDelQueued(m *Message) {
	e.mu.RLock()
	subs := e.onDelQueued
	e.mu.RUnlock()
	for _, f := range subs {
		f(m)
	}
}

func (e *events) emitDeleted(m *Message) {
	e.mu.RLock()
	subs := e.onDeleted
	e.mu.RUnlock()
	for _, f := range subs {
		f(m)
	}
}

func (e *events) emitHandled(m *Message) {
	e.mu.RLock()
	subs := e.onHandled
	e.mu.RUnlock()
	for _, f := range subs {
		f(m)
	}
}

func (e *events) emitTimeoutReached(m *Message) {
	e.mu.RLock()
	subs := e.onTimeoutReach
	e.mu.RUnlock()
	for _, f := range subs {
		f(m)
	}
}
