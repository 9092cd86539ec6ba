package gosqs

import (
	"context"
	"testing"
	"time"

	"github.com/qhenkart/gosqs/sqstesting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScenarioPartialDrainObservesThreeReceiveBatches exercises the §8 concrete scenario: maxInFlight=15,
// receiveBatchSize=10, 16 messages on the queue, caller deletes 5 of the first 10 then 5 of the second
// batch. The receive loop should observe batches sized [10, 5, 1], and queueEmpty must not fire since the
// final 1-message batch leaves one message in flight.
func TestScenarioPartialDrainObservesThreeReceiveBatches(t *testing.T) {
	stub := sqstesting.NewStubTransport("https://sqs.stub.local/000000000000/test")
	for i := 0; i < 16; i++ {
		stub.Enqueue(rawMessageWithRoute(`"x"`, "hold"))
	}

	maxInFlight := 15
	c := newTestConsumer(t, stub, func(cfg *ConsumerConfig) {
		cfg.MaxInFlight = &maxInFlight
		cfg.ReceiveBatchSize = 10
		cfg.DeleteBatchSize = 1
		cfg.IdlePollIntervalMs = 20
	})

	received := make(chan *Message, 16)
	c.events.OnMessage(func(m *Message) { received <- m })

	var queueEmptyFired bool
	c.events.OnQueueEmpty(func() { queueEmptyFired = true })

	require.NoError(t, <-c.Start(context.Background()))

	drain := func(n int) []*Message {
		out := make([]*Message, 0, n)
		for i := 0; i < n; i++ {
			select {
			case m := <-received:
				out = append(out, m)
			case <-time.After(2 * time.Second):
				t.Fatalf("timed out waiting for message %d/%d", i+1, n)
			}
		}
		return out
	}

	first := drain(10)
	for _, m := range first[:5] {
		<-m.Delete(context.Background())
	}

	second := drain(5)
	for _, m := range second[:5] {
		<-m.Delete(context.Background())
	}

	drain(1)

	require.Eventually(t, func() bool {
		return len(stub.Deleted) == 10
	}, 2*time.Second, 20*time.Millisecond)

	require.Eventually(t, func() bool {
		return len(stub.ReceiveBatchSizes) >= 3
	}, 2*time.Second, 20*time.Millisecond)

	assert.Equal(t, []int{10, 5, 1}, stub.ReceiveBatchSizes[:3])
	assert.False(t, queueEmptyFired, "queueEmpty must not fire while the last batch leaves a message in flight")
}

// TestScenarioExplicitZeroMaxInFlightIsUnbounded exercises spec §3's "default 100, 0 = unbounded" clause:
// an explicit MaxInFlight of 0 must let every message through, with maxInFlight never firing, even past
// the documented default cap.
func TestScenarioExplicitZeroMaxInFlightIsUnbounded(t *testing.T) {
	stub := sqstesting.NewStubTransport("https://sqs.stub.local/000000000000/test")
	for i := 0; i < 12; i++ {
		stub.Enqueue(rawMessageWithRoute(`"x"`, "hold"))
	}

	unbounded := 0
	c := newTestConsumer(t, stub, func(cfg *ConsumerConfig) {
		cfg.MaxInFlight = &unbounded
		cfg.ReceiveBatchSize = 5
		cfg.IdlePollIntervalMs = 20
	})

	var maxInFlightFired bool
	c.events.OnMaxInFlight(func() { maxInFlightFired = true })

	received := make(chan *Message, 12)
	c.events.OnMessage(func(m *Message) { received <- m })

	require.NoError(t, <-c.Start(context.Background()))

	for i := 0; i < 12; i++ {
		select {
		case <-received:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for message %d/12 under unbounded maxInFlight", i+1)
		}
	}

	assert.False(t, maxInFlightFired, "maxInFlight must never fire when MaxInFlight is explicitly 0 (unbounded)")
}

// TestScenarioSendMessagesPartialFailureMatchesSpecCounts exercises the §8 sendMessages scenario: 15
// items, two of which the transport rejects per-entry, yields Successful=13/Failed=2 across two batch
// calls (service cap of 10 per call).
func TestScenarioSendMessagesPartialFailureMatchesSpecCounts(t *testing.T) {
	stub := sqstesting.NewStubTransport("https://sqs.stub.local/000000000000/test")
	stub.FailBody("FAIL")

	bodies := make([]string, 15)
	for i := range bodies {
		bodies[i] = "ok"
	}
	bodies[3] = "FAIL"
	bodies[12] = "FAIL"

	c := newTestConsumer(t, stub, nil)

	result, err := c.SendMessages(context.Background(), bodies, nil, nil)
	require.NoError(t, err)

	assert.Len(t, result.Successful, 13)
	assert.Len(t, result.Failed, 2)
	assert.ElementsMatch(t, []string{"3", "12"}, failedIDs(result.Failed))
	assert.Len(t, stub.SendBatchSizes, 2)
}

func failedIDs(failures []SendFailure) []string {
	ids := make([]string, len(failures))
	for i, f := range failures {
		ids[i] = f.ID
	}
	return ids
}

// TestScenarioDeleteBatchSizeOneIssuesFiveSingleBatches exercises the §8 scenario: deleteBatchSize=1, 5
// messages deleted, exactly five batch calls observed, each of size 1.
func TestScenarioDeleteBatchSizeOneIssuesFiveSingleBatches(t *testing.T) {
	stub := sqstesting.NewStubTransport("https://sqs.stub.local/000000000000/test")
	c := newTestConsumer(t, stub, func(cfg *ConsumerConfig) {
		cfg.DeleteBatchSize = 1
		cfg.DeleteWaitMs = 10_000
	})

	for i := 0; i < 5; i++ {
		r := c.deleteMessage(context.Background(), newMessageForTest(c, string(rune('a'+i))))
		select {
		case res := <-r:
			require.NoError(t, res.Err)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for delete result")
		}
	}

	assert.Equal(t, []int{1, 1, 1, 1, 1}, stub.DeleteBatchSizes)
}

// TestScenarioDeleteBatchSizeTenIssuesTwoBatches exercises the §8 scenario: deleteBatchSize=10,
// deleteWaitMs=10, 15 messages deleted, exactly two batch calls observed.
func TestScenarioDeleteBatchSizeTenIssuesTwoBatches(t *testing.T) {
	stub := sqstesting.NewStubTransport("https://sqs.stub.local/000000000000/test")
	c := newTestConsumer(t, stub, func(cfg *ConsumerConfig) {
		cfg.DeleteBatchSize = 10
		cfg.DeleteWaitMs = 10
	})

	results := make([]<-chan DeleteResult, 15)
	for i := 0; i < 15; i++ {
		results[i] = c.deleteMessage(context.Background(), newMessageForTest(c, string(rune('a'+i))))
	}
	for _, r := range results {
		select {
		case res := <-r:
			require.NoError(t, res.Err)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for delete result")
		}
	}

	require.Eventually(t, func() bool {
		return len(stub.DeleteBatchSizes) == 2
	}, 2*time.Second, 20*time.Millisecond)
	assert.Equal(t, []int{10, 5}, stub.DeleteBatchSizes)
}
