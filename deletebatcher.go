package gosqs

import (
	"context"
)

// deleteBatcher implements spec §4.4. Its pending queue and timer are owner-only state; every method
// here is only ever invoked from the consumer's owner goroutine.
type deleteBatcher struct {
	pending  []pendingDelete
	timer    *cancellableTimer
	flushing bool
}

type pendingDelete struct {
	msg      *Message
	resultCh chan DeleteResult
}

func newDeleteBatcher() *deleteBatcher {
	return &deleteBatcher{}
}

// enqueue appends a delete request and flushes immediately once the size threshold is crossed,
// otherwise arms a one-shot timer for the time threshold if one isn't already running.
func (b *deleteBatcher) enqueue(c *Consumer, msg *Message, resultCh chan DeleteResult) {
	b.pending = append(b.pending, pendingDelete{msg: msg, resultCh: resultCh})

	if len(b.pending) >= c.cfg.DeleteBatchSize {
		b.timer.stop()
		b.timer = nil
		c.flushDeletes()
		return
	}

	if b.timer == nil {
		b.timer = afterFunc(millis(c.cfg.DeleteWaitMs), func() {
			c.enqueue(func() {
				b.timer = nil
				c.flushDeletes()
			})
		})
	}
}

// flushDeletes drains up to 10 pending entries (the service cap) and issues one DeleteMessageBatch call.
// Only one flush is ever outstanding at a time. Once the outstanding call completes, onDeleteFlushResult
// flushes again at once if at least DeleteBatchSize entries are pending, and otherwise leaves any
// remainder to the DeleteWaitMs timer.
func (c *Consumer) flushDeletes() {
	b := c.deleteBatcher
	if b.flushing || len(b.pending) == 0 {
		return
	}

	n := len(b.pending)
	if n > 10 {
		n = 10
	}
	batch := make([]pendingDelete, n)
	copy(batch, b.pending[:n])
	b.pending = b.pending[n:]
	b.flushing = true

	entries := make([]DeleteEntry, len(batch))
	for i, p := range batch {
		entries[i] = DeleteEntry{ID: p.msg.ID, ReceiptHandle: p.msg.ReceiptHandle}
	}
	queueURL := c.resolvedURL

	go func() {
		out, err := c.transport.DeleteMessageBatch(context.Background(), &DeleteMessageBatchInput{
			QueueURL: queueURL,
			Entries:  entries,
		})
		c.enqueue(func() {
			c.onDeleteFlushResult(batch, out, err)
		})
	}()
}

func (c *Consumer) onDeleteFlushResult(batch []pendingDelete, out *DeleteMessageBatchOutput, err error) {
	b := c.deleteBatcher
	b.flushing = false
	c.metrics.deleteBatches.Inc()
	c.metrics.deleteBatchSize.Observe(float64(len(batch)))

	if err != nil {
		c.events.emitError(err)
		for _, p := range batch {
			p.resultCh <- DeleteResult{Err: err}
			close(p.resultCh)
		}
	} else {
		byID := make(map[string]pendingDelete, len(batch))
		for _, p := range batch {
			byID[p.msg.ID] = p
		}

		for _, id := range out.Successful {
			p, ok := byID[id]
			if !ok {
				continue
			}
			c.events.emitDeleted(p.msg)
			p.resultCh <- DeleteResult{}
			close(p.resultCh)
			delete(byID, id)
		}

		for _, f := range out.Failed {
			p, ok := byID[f.ID]
			if !ok {
				continue
			}
			c.events.emitDelError(f)
			failure := f
			p.resultCh <- DeleteResult{Err: &failure}
			close(p.resultCh)
			delete(byID, f.ID)
		}

		// anything left in byID was not acknowledged either way by the transport; treat as a transport
		// failure for that entry rather than silently dropping its promise.
		for _, p := range byID {
			p.resultCh <- DeleteResult{Err: ErrUnableToDelete}
			close(p.resultCh)
		}
	}

	if len(b.pending) == 0 {
		return
	}
	if len(b.pending) >= c.cfg.DeleteBatchSize {
		c.flushDeletes()
		return
	}
	if b.timer == nil {
		b.timer = afterFunc(millis(c.cfg.DeleteWaitMs), func() {
			c.enqueue(func() {
				b.timer = nil
				c.flushDeletes()
			})
		})
	}
}
