package gosqs

import (
	"context"
	"time"
)

// timeoutExtender implements TimeoutExtender (spec §4.6): a set of tracked messages keyed by receipt
// handle, each renewed just before its visibility deadline, up to a wall-clock ceiling. All state here
// is owner-only.
type timeoutExtender struct {
	items map[string]*extenderItem
	timer *cancellableTimer
}

type extenderItem struct {
	msg             *Message
	receivedAt      time.Time
	currentDeadline time.Time
	backoff         time.Duration
}

func newTimeoutExtender() *timeoutExtender {
	return &timeoutExtender{items: make(map[string]*extenderItem)}
}

// track begins auto-extension bookkeeping for msg, starting its deadline clock at the consumer's
// configured visibility timeout.
func (t *timeoutExtender) track(c *Consumer, msg *Message) {
	now := time.Now()
	t.items[msg.ReceiptHandle] = &extenderItem{
		msg:             msg,
		receivedAt:      now,
		currentDeadline: now.Add(time.Duration(c.cfg.visibilityTimeoutSecs()) * time.Second),
	}
	c.extenderRearm()
}

// untrack stops auto-extension bookkeeping for msg, called once it's been handled.
func (t *timeoutExtender) untrack(c *Consumer, msg *Message) {
	if _, ok := t.items[msg.ReceiptHandle]; !ok {
		return
	}
	delete(t.items, msg.ReceiptHandle)
	c.extenderRearm()
}

// extenderRearm re-arms the single extension timer to the earliest upcoming renewal across all tracked
// messages. A single shared timer stands in for the "timer wheel keyed by message" in spec §4.6: with
// typically few messages in flight relative to the poll/delete cadence, recomputing the minimum on every
// track/untrack/fire is cheaper than maintaining a full wheel.
func (c *Consumer) extenderRearm() {
	e := c.extender
	e.timer.stop()
	e.timer = nil

	if len(e.items) == 0 {
		return
	}

	advance := millis(c.cfg.AdvancedCallMs)

	var earliestHandle string
	var earliestAt time.Time
	first := true
	for handle, it := range e.items {
		fireAt := it.currentDeadline.Add(-advance)
		if first || fireAt.Before(earliestAt) {
			earliestAt = fireAt
			earliestHandle = handle
			first = false
		}
	}

	d := time.Until(earliestAt)
	if d < 0 {
		d = 0
	}

	e.timer = afterFunc(d, func() {
		c.enqueue(func() {
			c.extenderFire(earliestHandle)
		})
	})
}

func (c *Consumer) extenderFire(handle string) {
	e := c.extender
	it, ok := e.items[handle]
	if !ok {
		// untracked between arming and firing; nothing to do, the rearm on untrack already recomputed.
		return
	}

	if time.Since(it.receivedAt) >= time.Duration(c.cfg.NoExtensionsAfterSecs)*time.Second {
		c.events.emitTimeoutReached(it.msg)
		delete(e.items, handle)
		c.extenderRearm()
		return
	}

	vis := c.cfg.visibilityTimeoutSecs()
	url := c.resolvedURL

	go func() {
		err := c.transport.ChangeMessageVisibility(context.Background(), &ChangeMessageVisibilityInput{
			QueueURL:          url,
			ReceiptHandle:     handle,
			VisibilityTimeout: vis,
		})
		c.enqueue(func() {
			c.extenderFireResult(handle, vis, err)
		})
	}()
}

func (c *Consumer) extenderFireResult(handle string, vis int, err error) {
	e := c.extender
	it, ok := e.items[handle]
	if !ok {
		return
	}

	c.metrics.extensions.Inc()

	if err != nil {
		c.events.emitError(err)

		remaining := time.Duration(c.cfg.NoExtensionsAfterSecs)*time.Second - time.Since(it.receivedAt)
		if remaining <= 0 {
			delete(e.items, handle)
			c.extenderRearm()
			return
		}

		if it.backoff == 0 {
			it.backoff = time.Second
		} else {
			it.backoff *= 2
		}
		if it.backoff > remaining {
			it.backoff = remaining
		}
		it.currentDeadline = time.Now().Add(it.backoff)
		c.extenderRearm()
		return
	}

	it.currentDeadline = it.currentDeadline.Add(time.Duration(vis) * time.Second)
	it.backoff = 0
	c.extenderRearm()
}
