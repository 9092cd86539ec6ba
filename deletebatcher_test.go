package gosqs

import (
	"context"
	"testing"
	"time"

	"github.com/qhenkart/gosqs/sqstesting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestConsumer builds a minimally-wired Consumer around a stub transport, with its owner loop
// running, for exercising DeleteBatcher/TimeoutExtender/ReceiveLoop logic directly.
func newTestConsumer(t *testing.T, stub *sqstesting.StubTransport, overrides func(*ConsumerConfig)) *Consumer {
	t.Helper()

	cfg := ConsumerConfig{
		QueueURL:    "https://sqs.stub.local/000000000000/test",
		Transport:   stub,
		DeleteBatchSize: 10,
		DeleteWaitMs:    50,
	}
	if overrides != nil {
		overrides(&cfg)
	}

	c, err := NewConsumer(cfg)
	require.NoError(t, err)

	t.Cleanup(func() { close(c.actions) })

	return c
}

func newMessageForTest(c *Consumer, id string) *Message {
	return &Message{ID: id, ReceiptHandle: "rh-" + id, consumer: c}
}

func TestDeleteBatcherFlushesAtSizeThreshold(t *testing.T) {
	stub := sqstesting.NewStubTransport("https://sqs.stub.local/000000000000/test")
	c := newTestConsumer(t, stub, func(cfg *ConsumerConfig) {
		cfg.DeleteBatchSize = 3
		cfg.DeleteWaitMs = 10_000 // large enough that the time threshold never fires in this test
	})

	results := make([]<-chan DeleteResult, 3)
	for i := 0; i < 3; i++ {
		results[i] = c.deleteMessage(context.Background(), newMessageForTest(c, string(rune('a'+i))))
	}

	for _, r := range results {
		select {
		case res := <-r:
			assert.NoError(t, res.Err)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for delete result")
		}
	}

	assert.Len(t, stub.Deleted, 3)
}

func TestDeleteBatcherFlushesAtTimeThreshold(t *testing.T) {
	stub := sqstesting.NewStubTransport("https://sqs.stub.local/000000000000/test")
	c := newTestConsumer(t, stub, func(cfg *ConsumerConfig) {
		cfg.DeleteBatchSize = 10
		cfg.DeleteWaitMs = 20
	})

	r := c.deleteMessage(context.Background(), newMessageForTest(c, "solo"))

	select {
	case res := <-r:
		assert.NoError(t, res.Err)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for time-threshold flush")
	}

	assert.Len(t, stub.Deleted, 1)
}

func TestDeleteBatcherSurfacesBatchCallFailure(t *testing.T) {
	stub := sqstesting.NewStubTransport("https://sqs.stub.local/000000000000/test")
	c := newTestConsumer(t, stub, func(cfg *ConsumerConfig) {
		cfg.DeleteBatchSize = 1
		cfg.DeleteWaitMs = 10_000
	})

	stub.FailNext("delete", ErrUnableToDelete)

	r := c.deleteMessage(context.Background(), newMessageForTest(c, "x"))

	select {
	case res := <-r:
		assert.Error(t, res.Err)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for failed delete result")
	}
}
