package sqstesting

import (
	"context"
	"testing"

	"github.com/qhenkart/gosqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubTransportReceiveRespectsMax(t *testing.T) {
	s := NewStubTransport("https://sqs.stub.local/000000000000/test")
	s.Enqueue(
		gosqs.RawMessage{Body: []byte("one")},
		gosqs.RawMessage{Body: []byte("two")},
		gosqs.RawMessage{Body: []byte("three")},
	)

	out, err := s.ReceiveMessage(context.Background(), &gosqs.ReceiveMessageInput{MaxNumberOfMessages: 2})
	require.NoError(t, err)
	assert.Len(t, out.Messages, 2)
	assert.NotEmpty(t, out.Messages[0].ReceiptHandle)

	out, err = s.ReceiveMessage(context.Background(), &gosqs.ReceiveMessageInput{MaxNumberOfMessages: 10})
	require.NoError(t, err)
	assert.Len(t, out.Messages, 1)
}

func TestStubTransportFailNext(t *testing.T) {
	s := NewStubTransport("q")
	s.FailNext("receive", gosqs.ErrGetMessage)

	_, err := s.ReceiveMessage(context.Background(), &gosqs.ReceiveMessageInput{MaxNumberOfMessages: 1})
	assert.Equal(t, gosqs.ErrGetMessage, err)

	out, err := s.ReceiveMessage(context.Background(), &gosqs.ReceiveMessageInput{MaxNumberOfMessages: 1})
	require.NoError(t, err)
	assert.Empty(t, out.Messages)
}

func TestStubTransportDeleteMessageBatch(t *testing.T) {
	s := NewStubTransport("q")
	out, err := s.DeleteMessageBatch(context.Background(), &gosqs.DeleteMessageBatchInput{
		QueueURL: "q",
		Entries: []gosqs.DeleteEntry{
			{ID: "0", ReceiptHandle: "r0"},
			{ID: "1", ReceiptHandle: "r1"},
		},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"0", "1"}, out.Successful)
	assert.Len(t, s.Deleted, 2)
}

func TestStubTransportSendMessageBatch(t *testing.T) {
	s := NewStubTransport("q")
	out, err := s.SendMessageBatch(context.Background(), &gosqs.SendMessageBatchInput{
		QueueURL: "q",
		Entries: []gosqs.SendEntry{
			{ID: "0", Body: "hello"},
			{ID: "1", Body: "world"},
		},
	})
	require.NoError(t, err)
	assert.Len(t, out.Successful, 2)
	assert.Len(t, s.Sent, 2)
}

func TestStubTransportPublishSNS(t *testing.T) {
	s := NewStubTransport("q")
	_, err := s.PublishSNS(context.Background(), "arn:aws:sns:us-east-1:000000000000:test", "hello", map[string]gosqs.Attribute{
		"route": gosqs.StringAttr("card_created"),
	})
	require.NoError(t, err)
	require.Len(t, s.Broadcasts, 1)
	assert.Equal(t, "hello", s.Broadcasts[0].Body)
	assert.Equal(t, "card_created", s.Broadcasts[0].Attributes["route"].Text)
}

func TestStubTransportCreateQueueRewritesURL(t *testing.T) {
	s := NewStubTransport("")
	url, err := s.CreateQueue(context.Background(), &gosqs.CreateQueueInput{QueueName: "orders"})
	require.NoError(t, err)
	assert.Contains(t, url, "orders")

	resolved, err := s.GetQueueURL(context.Background(), &gosqs.GetQueueURLInput{QueueName: "orders"})
	require.NoError(t, err)
	assert.Equal(t, url, resolved)
}
