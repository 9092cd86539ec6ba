package gosqs

import (
	"context"
	"errors"
	"time"
)

// maybeStartPoll computes the effective batch size per spec §4.2 and, if polling is currently allowed,
// starts one. It is always called from the owner goroutine.
func (c *Consumer) maybeStartPoll() {
	if c.stopRequested || c.pollActive || !c.running {
		return
	}

	effective := c.cfg.ReceiveBatchSize

	if c.cfg.maxInFlight() > 0 {
		slots := c.inflight.slots()
		if slots <= 0 {
			c.paused = true
			return
		}
		if slots < c.cfg.MinReceiveBatchSize {
			c.paused = true
			return
		}
		if effective > slots {
			effective = slots
		}
	}

	c.paused = false
	c.startPoll(effective)
}

func (c *Consumer) startPoll(maxMessages int) {
	ctx, cancel := context.WithCancel(context.Background())
	c.pollActive = true
	c.pollCancel = cancel

	req := &ReceiveMessageInput{
		QueueURL:              c.resolvedURL,
		MaxNumberOfMessages:   maxMessages,
		WaitTimeSeconds:       c.cfg.ReceiveWaitTimeSecs,
		VisibilityTimeout:     c.cfg.VisibilityTimeoutSecs,
		MessageAttributeNames: c.cfg.ReceiveAttributes,
		AttributeNames:        c.cfg.ReceiveSqsAttributes,
	}

	go func() {
		out, err := c.transport.ReceiveMessage(ctx, req)
		cancelled := errors.Is(ctx.Err(), context.Canceled)
		c.enqueue(func() {
			c.onPollResult(out, err, cancelled)
		})
	}()
}

func (c *Consumer) onPollResult(out *ReceiveMessageOutput, err error, cancelled bool) {
	c.pollActive = false
	c.pollCancel = nil

	if cancelled {
		c.events.emitAborted()
		return
	}

	if err != nil {
		c.events.emitError(err)
		c.metrics.pollErrors.Inc()
		c.schedulePollAfter(c.cfg.PollRetryMs)
		return
	}

	n := len(out.Messages)
	if n > 0 {
		c.events.emitGotMessages(n)
		c.metrics.received.Add(float64(n))

		for _, raw := range out.Messages {
			msg := c.buildMessage(raw)
			capReached := c.inflight.increment()
			c.metrics.inflight.Set(float64(c.inflight.value))
			c.events.emitMessage(msg)
			if c.cfg.AutoExtendTimeout {
				c.extender.track(c, msg)
			}
			if capReached {
				c.events.emitMaxInFlight()
			}
		}

		if c.inflight.atCap() {
			c.paused = true
			return
		}
		if c.stopRequested {
			return
		}
		c.schedulePollAfter(c.cfg.ActivePollIntervalMs)
		return
	}

	if c.inflight.value == 0 {
		c.events.emitQueueEmpty()
	}
	if c.stopRequested {
		return
	}
	c.schedulePollAfter(c.cfg.IdlePollIntervalMs)
}

func (c *Consumer) schedulePollAfter(ms int) {
	if ms <= 0 {
		c.maybeStartPoll()
		return
	}
	time.AfterFunc(millis(ms), func() {
		c.enqueue(c.maybeStartPoll)
	})
}

func (c *Consumer) buildMessage(raw RawMessage) *Message {
	return &Message{
		ID:                      raw.MessageID,
		ReceiptHandle:           raw.ReceiptHandle,
		Body:                    raw.Body,
		Attributes:              raw.Attributes,
		SystemAttributes:        raw.SystemAttributes,
		ApproximateReceiveCount: raw.ApproximateReceiveCount,
		consumer:                c,
	}
}
