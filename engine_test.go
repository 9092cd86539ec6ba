package gosqs

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/qhenkart/gosqs/sqstesting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawMessageWithRoute(body, route string) RawMessage {
	return RawMessage{
		Body:       []byte(body),
		Attributes: map[string]Attribute{"route": StringAttr(route)},
	}
}

func TestConsumerReceivesDispatchesAndDeletes(t *testing.T) {
	stub := sqstesting.NewStubTransport("https://sqs.stub.local/000000000000/test")
	stub.Enqueue(
		rawMessageWithRoute(`"one"`, "greet"),
		rawMessageWithRoute(`"two"`, "greet"),
	)

	c := newTestConsumer(t, stub, func(cfg *ConsumerConfig) {
		cfg.DeleteBatchSize = 1
		cfg.IdlePollIntervalMs = 50
	})

	var mu sync.Mutex
	var handled []string

	c.RegisterHandler("greet", func(ctx context.Context, m *Message) error {
		var s string
		if err := m.Decode(&s); err != nil {
			return err
		}
		mu.Lock()
		handled = append(handled, s)
		mu.Unlock()
		return nil
	})

	require.NoError(t, <-c.Start(context.Background()))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(handled) == 2
	}, 2*time.Second, 20*time.Millisecond)

	require.Eventually(t, func() bool {
		return len(stub.Deleted) == 2
	}, 2*time.Second, 20*time.Millisecond)

	assert.ElementsMatch(t, []string{"one", "two"}, handled)
}

func TestConsumerEmitsMaxInFlightAndResumesAfterDrain(t *testing.T) {
	stub := sqstesting.NewStubTransport("https://sqs.stub.local/000000000000/test")
	for i := 0; i < 15; i++ {
		stub.Enqueue(rawMessageWithRoute(`"x"`, "noop"))
	}

	maxInFlight := 10
	c := newTestConsumer(t, stub, func(cfg *ConsumerConfig) {
		cfg.MaxInFlight = &maxInFlight
		cfg.ReceiveBatchSize = 10
		cfg.DeleteBatchSize = 1
		cfg.IdlePollIntervalMs = 20
		cfg.ActivePollIntervalMs = 0
	})

	maxInFlightHit := make(chan struct{}, 1)
	c.events.OnMaxInFlight(func() {
		select {
		case maxInFlightHit <- struct{}{}:
		default:
		}
	})

	var releaseOnce sync.Once
	gate := make(chan struct{})
	c.RegisterHandler("noop", func(ctx context.Context, m *Message) error {
		<-gate
		return nil
	})

	require.NoError(t, <-c.Start(context.Background()))

	select {
	case <-maxInFlightHit:
	case <-time.After(2 * time.Second):
		t.Fatal("expected maxInFlight to fire once 10 messages were inflight")
	}

	releaseOnce.Do(func() { close(gate) })

	require.Eventually(t, func() bool {
		return len(stub.Deleted) == 15
	}, 3*time.Second, 20*time.Millisecond)
}

func TestConsumerHardStopWithNothingInFlightResolvesDrained(t *testing.T) {
	stub := sqstesting.NewStubTransport("https://sqs.stub.local/000000000000/test")
	c := newTestConsumer(t, stub, func(cfg *ConsumerConfig) {
		cfg.IdlePollIntervalMs = 20
	})

	require.NoError(t, <-c.Start(context.Background()))

	select {
	case drained := <-c.Stop(false, time.Second):
		assert.True(t, drained)
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not resolve")
	}
}

func TestConsumerStopWaitsForDrainDeadline(t *testing.T) {
	stub := sqstesting.NewStubTransport("https://sqs.stub.local/000000000000/test")
	stub.Enqueue(rawMessageWithRoute(`"x"`, "slow"))

	c := newTestConsumer(t, stub, func(cfg *ConsumerConfig) {
		cfg.DeleteBatchSize = 1
		cfg.IdlePollIntervalMs = 20
	})

	gate := make(chan struct{})
	c.RegisterHandler("slow", func(ctx context.Context, m *Message) error {
		<-gate
		return nil
	})

	require.NoError(t, <-c.Start(context.Background()))

	require.Eventually(t, func() bool {
		done := make(chan int, 1)
		c.enqueue(func() { done <- c.inflight.value })
		return <-done == 1
	}, time.Second, 10*time.Millisecond)

	select {
	case drained := <-c.Stop(true, 100*time.Millisecond):
		assert.False(t, drained, "expected Stop to time out before the handler released its message")
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not resolve within the test timeout")
	}

	close(gate)
}
