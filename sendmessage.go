package gosqs

import (
	"context"
	"encoding/json"
	"strconv"
)

// SendMessage enqueues a single message for publish. Per spec §4.1 this would route through a
// SendBatcher when one is configured; ConsumerConfig exposes no send-batch-size/wait knobs (unlike
// DeleteBatcher), so batching is always disabled for single sends and this bypasses straight to a
// single SendMessage call, matching the "bypasses the batcher if batching is disabled" clause.
// Non-string bodies are JSON-serialized.
func (c *Consumer) SendMessage(ctx context.Context, body interface{}, delaySecs *int, attrs map[string]Attribute) (string, error) {
	text, err := bodyToString(body)
	if err != nil {
		return "", ErrMarshal.Context(err)
	}

	url, err := c.resolveQueueURL(ctx)
	if err != nil {
		return "", err
	}

	out, err := c.transport.SendMessage(ctx, &SendMessageInput{
		QueueURL:     url,
		Body:         text,
		DelaySeconds: delaySecs,
		Attributes:   attrs,
	})
	if err != nil {
		c.events.emitError(err)
		return "", ErrPublish.Context(err)
	}

	c.metrics.sent.Inc()

	return out.MessageID, nil
}

// SendMessages accepts a single body or a slice of bodies, splits them into chunks of at most 10
// (the service cap), dispatches one SendMessageBatch call per chunk in parallel, and merges the results
// preserving the caller's input order: ids are assigned as the contiguous range "0".."N-1" over the
// flattened input, so |Successful|+|Failed| == N for any N >= 1 once every chunk has reported back.
func (c *Consumer) SendMessages(ctx context.Context, bodies interface{}, delaySecs *int, attrs map[string]Attribute) (*MergedSendResult, error) {
	list, err := toBodyList(bodies)
	if err != nil {
		return nil, err
	}

	n := len(list)
	if n == 0 {
		return &MergedSendResult{}, nil
	}

	url, err := c.resolveQueueURL(ctx)
	if err != nil {
		return nil, err
	}

	type chunkResult struct {
		out *SendMessageBatchOutput
		err error
	}

	chunks := chunkIndices(n, 10)
	resultsCh := make(chan chunkResult, len(chunks))

	for _, idxs := range chunks {
		idxs := idxs
		go func() {
			entries := make([]SendEntry, len(idxs))
			for i, idx := range idxs {
				text, berr := bodyToString(list[idx])
				if berr != nil {
					resultsCh <- chunkResult{err: ErrMarshal.Context(berr)}
					return
				}
				entries[i] = SendEntry{
					ID:           strconv.Itoa(idx),
					Body:         text,
					DelaySeconds: delaySecs,
					Attributes:   attrs,
				}
			}

			out, serr := c.transport.SendMessageBatch(ctx, &SendMessageBatchInput{QueueURL: url, Entries: entries})
			resultsCh <- chunkResult{out: out, err: serr}
		}()
	}

	merged := &MergedSendResult{}
	for range chunks {
		r := <-resultsCh
		if r.err != nil {
			c.events.emitError(r.err)
			return nil, r.err
		}
		merged.Successful = append(merged.Successful, r.out.Successful...)
		merged.Failed = append(merged.Failed, r.out.Failed...)
	}

	c.metrics.sentBatches.Inc()
	c.metrics.sendBatchSize.Observe(float64(n))

	return merged, nil
}

func bodyToString(body interface{}) (string, error) {
	if s, ok := body.(string); ok {
		return s, nil
	}
	out, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// toBodyList normalizes the sendMessages "single value or sequence" argument into a slice.
func toBodyList(bodies interface{}) ([]interface{}, error) {
	if list, ok := bodies.([]interface{}); ok {
		return list, nil
	}
	if strs, ok := bodies.([]string); ok {
		out := make([]interface{}, len(strs))
		for i, s := range strs {
			out[i] = s
		}
		return out, nil
	}
	return []interface{}{bodies}, nil
}

// chunkIndices splits [0,n) into groups of at most size, preserving order.
func chunkIndices(n, size int) [][]int {
	var chunks [][]int
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		idxs := make([]int, 0, end-start)
		for i := start; i < end; i++ {
			idxs = append(idxs, i)
		}
		chunks = append(chunks, idxs)
	}
	return chunks
}
