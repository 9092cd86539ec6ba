package gosqs

import (
	"context"
	"sync"
	"time"
)

// Consumer is the observable object wiring together the QueueResolver, InflightCounter, DeleteBatcher,
// TimeoutExtender and ReceiveLoop described in spec §2, and is the application-facing surface for
// consuming and publishing messages against a single queue.
//
// All state that the receive loop, delete batcher and timeout extender share (inflight count, pending
// delete queue, tracked-message set, pause/stop flags) is mutated exclusively by the consumer's single
// owner goroutine (§5). Every other method marshals its work onto that goroutine by posting a closure
// to the actions channel; the owner goroutine does nothing but drain that channel and run timers that
// post further closures back onto it. This realizes the "single cooperative owner" scheduling model with
// an actor-style command queue instead of a lock.
type Consumer struct {
	cfg       ConsumerConfig
	transport Transport
	logger    Logger
	events    events
	metrics   *consumerMetrics
	handlers  map[string]Handler

	actions chan func()

	// owner-only state below; touched only inside closures executed by the owner goroutine
	running       bool
	stopRequested bool
	resolvedURL   string

	inflight      *inflightCounter
	deleteBatcher *deleteBatcher
	extender      *timeoutExtender

	pollActive bool
	paused     bool
	pollCancel context.CancelFunc

	stopWaiters []*stopWaiter

	// resolverMu guards resolverCached for callers that resolve the queue URL without going
	// through the owner (SendMessage, the thin passthrough operations). Reads/writes of resolvedURL from
	// inside the owner still only ever happen on the owner goroutine, so this mutex is only contended by
	// concurrent non-owner callers.
	resolverMu     sync.Mutex
	resolverCached string
}

type stopWaiter struct {
	ch       chan bool
	resolved bool
}

// NewConsumer builds a Consumer and starts its owner goroutine. The consumer does not begin polling
// until Start is called.
func NewConsumer(cfg ConsumerConfig) (*Consumer, error) {
	cfg = cfg.withDefaults()

	if cfg.QueueURL == "" && cfg.QueueName == "" {
		return nil, ErrConfig.Context(ErrQueueURL)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = newDefaultLogger()
	}

	transport := cfg.Transport
	if transport == nil {
		t, err := newSQSTransport(cfg.Config)
		if err != nil {
			return nil, err
		}
		transport = t
	}

	c := &Consumer{
		cfg:           cfg,
		transport:     transport,
		logger:        logger,
		metrics:       newConsumerMetrics(),
		handlers:      make(map[string]Handler),
		actions:       make(chan func(), 64),
		inflight:      newInflightCounter(cfg.maxInFlight()),
		deleteBatcher: newDeleteBatcher(),
		extender:      newTimeoutExtender(),
	}

	if cfg.QueueURL != "" {
		c.resolvedURL = cfg.QueueURL
		c.resolverCached = cfg.QueueURL
	}

	go c.ownerLoop()

	return c, nil
}

func (c *Consumer) ownerLoop() {
	for fn := range c.actions {
		fn()
	}
}

// enqueue posts fn to run on the owner goroutine and returns immediately.
func (c *Consumer) enqueue(fn func()) {
	c.actions <- fn
}

// Logger exposes the configured logger, defaulting if none was supplied.
func (c *Consumer) Logger() Logger {
	if c.logger == nil {
		return newDefaultLogger()
	}
	return c.logger
}

// Start resolves the queue URL if needed and begins the receive loop. Start is idempotent: calling it
// again while already running is a no-op that resolves immediately. The returned channel receives nil
// once URL resolution has completed successfully, or the resolution error otherwise.
func (c *Consumer) Start(ctx context.Context) <-chan error {
	resultCh := make(chan error, 1)

	c.enqueue(func() {
		if c.running {
			resultCh <- nil
			return
		}
		c.running = true
		c.stopRequested = false

		go func() {
			url, err := c.resolveQueueURL(ctx)
			c.enqueue(func() {
				if err != nil {
					c.running = false
					resultCh <- err
					return
				}
				c.resolvedURL = url
				resultCh <- nil
				c.maybeStartPoll()
			})
		}()
	})

	return resultCh
}

// Stop requests that the receive loop halt. If soft is false (the default per spec §4.1), any active
// long poll is cancelled immediately, emitting aborted. If soft is true, the active poll is allowed to
// complete naturally. Either way Stop waits for in-flight messages to drain to zero, up to
// drainDeadline (0 means wait forever). The returned channel resolves to true if the consumer drained
// before the deadline, false otherwise, and resolves at most once.
func (c *Consumer) Stop(soft bool, drainDeadline time.Duration) <-chan bool {
	resultCh := make(chan bool, 1)

	c.enqueue(func() {
		c.stopRequested = true

		if !soft && c.pollActive && c.pollCancel != nil {
			c.pollCancel()
		}

		if c.inflight.value == 0 {
			resultCh <- true
			return
		}

		waiter := &stopWaiter{ch: resultCh}
		c.stopWaiters = append(c.stopWaiters, waiter)

		if drainDeadline > 0 {
			time.AfterFunc(drainDeadline, func() {
				c.enqueue(func() {
					if !waiter.resolved {
						waiter.resolved = true
						waiter.ch <- false
					}
				})
			})
		}
	})

	return resultCh
}

func (c *Consumer) resolveStopWaiters(v bool) {
	for _, w := range c.stopWaiters {
		if !w.resolved {
			w.resolved = true
			w.ch <- v
		}
	}
	c.stopWaiters = nil
}

// deleteMessage is the engine half of Message.Delete / ConsumerFacade.deleteMessage: it immediately
// marks msg handled (so it stops counting against MaxInFlight) and submits it to the DeleteBatcher.
func (c *Consumer) deleteMessage(ctx context.Context, msg *Message) <-chan DeleteResult {
	resultCh := make(chan DeleteResult, 1)

	c.enqueue(func() {
		c.handledMessageLocked(msg)
		c.events.emitDelQueued(msg)
		c.deleteBatcher.enqueue(c, msg, resultCh)
	})

	return resultCh
}

// releaseMessage marks msg handled and sets its visibility timeout to zero so another consumer can pick
// it up immediately.
func (c *Consumer) releaseMessage(ctx context.Context, msg *Message) error {
	done := make(chan struct{})
	c.enqueue(func() {
		c.handledMessageLocked(msg)
		close(done)
	})
	<-done

	return c.ChangeMessageVisibility(ctx, msg.ReceiptHandle, 0)
}

// handledMessageLocked decrements the inflight counter, stops visibility tracking, fires handled, and --
// if this was the transition to zero in-flight while a stop is pending -- fires drained and resolves any
// pending Stop promises. It also un-pauses the receive loop if backpressure had suspended it. Must only
// be called from the owner goroutine.
func (c *Consumer) handledMessageLocked(msg *Message) {
	drained := c.inflight.decrement()
	c.metrics.inflight.Set(float64(c.inflight.value))
	c.extender.untrack(c, msg)
	c.events.emitHandled(msg)
	c.metrics.handled.Inc()

	if drained && c.stopRequested {
		c.events.emitDrained()
		c.resolveStopWaiters(true)
	}

	if c.paused {
		c.paused = false
		c.maybeStartPoll()
	}
}

// RegisterHandler registers a route-based handler invoked for messages whose "route" attribute matches
// name, wrapped by any supplied adapters. This is a convenience layered over the primitive OnMessage
// event stream for callers migrating from the route-dispatch API; it is not required to consume
// messages. Like the teacher's original route table, all RegisterHandler calls are expected before
// Start -- the handler map itself isn't synchronized against the owner goroutine's read in dispatch.
func (c *Consumer) RegisterHandler(name string, h Handler, adapters ...Adapter) {
	for i := len(adapters) - 1; i >= 0; i-- {
		h = adapters[i](h)
	}

	if len(c.handlers) == 0 {
		c.events.OnMessage(c.dispatch)
	}
	c.handlers[name] = h
}

// dispatch is invoked synchronously on the owner goroutine via the message event (events.go), so the
// handler lookup itself is race-free. The handler call is then run on its own goroutine -- running it
// inline here would block the owner loop (and therefore every other in-flight message, poll, and Stop
// request) for as long as that one handler takes.
func (c *Consumer) dispatch(m *Message) {
	h, ok := c.handlers[m.Route()]
	if !ok {
		return
	}

	go func() {
		ctx := context.Background()
		if err := h(ctx, m); err != nil {
			c.Logger().Println(err.Error())
			return
		}

		<-m.Delete(ctx)
	}()
}
